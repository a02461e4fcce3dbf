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

// Package grid builds the canonical photoionization grid from a raw
// hierarchical archive.
//
// The raw archive stores one numeric array per combination of C/O fraction,
// log U, dust-to-metal ratio, log density and stellar age. Each array has one
// row per metallicity and one column per configured raw column name. The
// builder reads every age for a parameter combination, stacks the slices
// into a table tagged with the age, integrates every line over age per
// metallicity with the trapezoidal rule and concatenates the results:
//
//	src, _ := hdf5source.New(cfg.Archive)
//	b, err := grid.NewBuilder(cfg, src, grid.WithVersion(version))
//	if err != nil {
//	    return err
//	}
//	if _, err := b.BuildFullGrid(ctx); err != nil {
//	    return err
//	}
//	manifest, err := b.Save(cfg.Output)
//
// Finalize renames the raw line identifiers to the public naming scheme
// (o3_5007 becomes OIII5007, ha becomes HA and so on), adds LOGZ and keeps
// only the configured metallicities.
//
// # Slice Sources
//
// Raw slices are addressed by a typed SliceKey. SliceKey.Path renders the
// archive path, including the C/O convention of dropping every "0." from
// the decimal rendering (0.38 becomes CO_38). Sources implement SliceSource:
// hdf5source reads HDF5 archives and MemorySource serves slices held in memory.
//
// # Metrics
//
// Build duration, slice reads by status and the row count of the last build
// are exported through the default prometheus registry.
package grid
