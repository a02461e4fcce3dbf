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

// Package fit runs a nested-sampling fit of one target against a model
// and persists its summary.
//
// The sampler itself is external. It is reached through the Fitter
// interface; ExecFitter runs a command that reads a JSON request on stdin
// and writes a JSON summary on stdout:
//
//	stdin:  {"model": "bpass", "modelPath": "BPASS_grid.fits",
//	         "parameters": ["CO", "LOGZ", ...], "lines": ["HA", "HB"],
//	         "fluxes": [9.1, 3.2], "dfluxes": [0.4, 0.3],
//	         "fitDust": false, "basename": "results/12/v1_12"}
//	stdout: {"summary": {"LOGU_mean": -2.4, ...}, "triangle": "results/12/v1_12_corner.png"}
//
// A Fit translates the requested line labels to the model vocabulary
// (similarity at or above 0.4), reads and classifies the target fluxes,
// calls the fitter with the usable lines and writes one CSV row to
// <dir>/<id>/v<version>_<id>_summary.csv:
//
//	f, err := fit.New(tg, grid, fit.WithFitter(fitter), fit.WithVersion(2))
//	summary, err := f.Run(ctx)
//	if summary == nil {
//	    // nothing to fit
//	}
//	path, err := f.Persist()
//
// A target without usable lines is not an error: Run logs a warning and
// returns a nil summary without creating any directory.
package fit
