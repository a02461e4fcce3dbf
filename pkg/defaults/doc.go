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

// Package defaults provides centralized constants for grid preparation,
// model loading, target preparation and fitting.
//
// # Categories
//
//   - Solar composition: published mass fractions used when abundances are
//     not recomputed
//   - File names: default grid, abundance and results locations
//   - Label matching: similarity thresholds per call site
//   - Target selection: signal-to-noise gate
//   - Grid derivation: SII doublet split factors
//
// # Usage
//
//	import "github.com/NVIDIA/bpass-gridfit/pkg/defaults"
//
//	t := target.New(id, catalog, lines, target.WithSNR(defaults.SNRThreshold))
package defaults
