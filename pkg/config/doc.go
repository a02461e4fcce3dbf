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

// Package config provides the grid build configuration.
//
// A build is described by a YAML file naming the raw archive, the sampled
// values of every grid axis and the column names of the raw per-slice
// arrays:
//
//	archive: /data/bpass/bpass_cloudy.h5
//	output: BPASS_grid.fits
//	axes:
//	  Z:   [0.001, 0.002, 0.004, 0.008, 0.014, 0.02]
//	  CO:  [0.1, 0.38, 1.0]
//	  U:   [-3.0, -2.0, -1.0]
//	  xsi: [0.1, 0.3, 0.5]
//	  nH:  [1.0, 2.0, 3.0]
//	  age: [1.0e6, 3.0e6, 1.0e7]
//	columns: [Z, n_H, ha, hb, o3_5007, o3_4959, o2_3727, s2_6716_6731]
//
// Loaded configurations are validated before use; CLI flags may override the
// archive and output through Options.
package config
