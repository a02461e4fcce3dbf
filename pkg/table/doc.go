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

// Package table provides Frame, a small column-major table of float64
// columns addressed by name.
//
// Frames back every tabular stage of the pipeline: per-age slices read from
// the archive, age-integrated rows, the canonical grid written to disk and the
// grid held by the model. Rows carry no index; grouping and filtering are done
// by value on named columns.
//
//	f, _ := table.FromDense([]string{"Z", "ha", "hb"}, raw)
//	f.SetColumn("age", ages)
//	for _, z := range f.Unique("Z") {
//	    group := f.Where("Z", z)
//	    ...
//	}
package table
