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

// Package abundance converts per-element number abundances relative to
// hydrogen into bulk mass fractions X (hydrogen), Y (helium) and Z (metals).
//
// Grids are parameterized by absolute metallicity; the solar mass fraction
// from this package turns it into metallicity relative to solar. By default
// the published solar values are used. A reference abundance table can be
// read instead:
//
//	set, err := abundance.Setup(true, "/data/bpass")
//	if err != nil {
//	    return err
//	}
//	slog.Info("solar composition", "X", set.X, "Y", set.Y, "Z", set.Z)
package abundance
