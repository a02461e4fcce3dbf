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

// Package model defines the parametrized model abstraction the fitter
// consumes and a column registry implementing it.
//
// A model is a set of grid nodes. Each node carries one value per
// parameter (CO, LOGZ, ...) and one value per predicted quantity (line
// fluxes). Concrete models compose a Registry rather than reimplementing
// the bookkeeping:
//
//	r := model.NewRegistry("bpass")
//	_ = r.AddParameter("LOGU", logU)
//	_ = r.AddPredicted("HA", ha, true)
//	pred, err := r.Predict(map[string]float64{"LOGU": -2.5})
package model
