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

package fit

import (
	"context"
	"io"

	"github.com/NVIDIA/bpass-gridfit/pkg/model"
)

// Request is one call to the external sampler.
type Request struct {
	// Model is the model to fit against.
	Model model.Model

	// Lines are model line names, parallel to Fluxes and Errors.
	Lines  []string
	Fluxes []float64
	Errors []float64

	// FitDust enables fitting a dust attenuation parameter.
	FitDust bool

	// Basename prefixes every file the sampler writes.
	Basename string
}

// Result is the outcome of a fit.
type Result interface {
	// SummarisedResults returns the posterior summary keyed by field name.
	SummarisedResults() (map[string]float64, error)

	// ShowTriangle renders the corner plot of the posterior to w.
	ShowTriangle(w io.Writer) error
}

// Fitter runs the sampler.
type Fitter interface {
	Fit(ctx context.Context, req Request) (Result, error)
}
