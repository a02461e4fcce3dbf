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

// Package gridfile reads and writes the canonical grid table.
//
// The codec is chosen from the file extension: .fits, .fit and .fts select
// a FITS binary table with one double precision column per grid column in
// an extension named GRID; .csv selects a CSV file with a header row. Other
// extensions fall back to FITS.
//
// Every Write also writes a manifest next to the grid at
// <path>.manifest.yaml:
//
//	kind: ModelGrid
//	apiVersion: gridfit.nvidia.com/v1
//	metadata:
//	  timestamp: "2026-01-02T10:30:00Z"
//	  version: v0.3.0
//	buildID: 0b5c5a5e-...
//	source: BPASS_raw.h5
//	format: fits
//	rows: 1620
//	columns: [CO, LOGU, ...]
//	axes:
//	  Z: [0.001, 0.002, ...]
//	checksum: 9f86d08...
//
// Read verifies the grid against its manifest when one is present.
// Grids without a manifest are read as is.
package gridfile
