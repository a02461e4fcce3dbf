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

// Package hdf5source reads raw grid slices from an HDF5 archive.
//
// The archive nests groups as CO_<frac>/<logU>/<xi>/<nH>/<age>. The leaf
// group holds a single dataset, a two-dimensional array with one row per
// metallicity and one column per raw column name. The file is opened and
// closed on every Slice call, so a Source holds no handles between calls.
//
// The package links against the HDF5 C library through cgo.
package hdf5source
