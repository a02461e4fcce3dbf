// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package bpass exposes a canonical BPASS grid file as a model.
//
// Load reads the grid, registers the configured parameter columns and the
// configured line columns (as scaled predictions) and derives LOGZ_ZSUN,
// the metallicity relative to the solar value of the abundance set:
//
//	g, err := bpass.Load(
//	    bpass.WithPath("BPASS_grid.fits"),
//	    bpass.WithFixed(map[string]float64{"CO": 0.38}),
//	)
//
// Without a path the grid is looked up as BPASS_grid.fits in the working
// directory. The abundance reference file is looked up next to the grid.
package bpass
