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

package model

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
	"github.com/NVIDIA/bpass-gridfit/pkg/table"

	"gonum.org/v1/gonum/floats"
)

// Model is a grid of parameter values with predicted quantities per node.
type Model interface {
	// Name identifies the model.
	Name() string

	// AddParameter registers a parameter column.
	AddParameter(name string, values []float64) error

	// AddPredicted registers a predicted quantity. Scaled quantities are
	// fit up to a free normalization.
	AddPredicted(name string, values []float64, scale bool) error

	// Parameters returns parameter names in registration order.
	Parameters() []string

	// Predicted returns predicted quantity names in registration order.
	Predicted() []string

	// Predict returns the predicted quantities at point.
	Predict(point map[string]float64) (map[string]float64, error)

	// Subset keeps only the nodes whose parameters equal the fixed values.
	Subset(fixed map[string]float64) error
}

// Registry is a column store implementing Model. Parameters and predicted
// quantities are parallel columns over the same nodes.
// A Registry is not safe for concurrent use.
type Registry struct {
	name       string
	parameters *table.Frame
	predicted  *table.Frame
	scaled     map[string]bool
}

var _ Model = (*Registry)(nil)

// NewRegistry returns an empty Registry.
func NewRegistry(name string) *Registry {
	return &Registry{
		name:       name,
		parameters: table.New(),
		predicted:  table.New(),
		scaled:     make(map[string]bool),
	}
}

// Name implements Model.
func (r *Registry) Name() string {
	return r.name
}

// Len returns the number of grid nodes.
func (r *Registry) Len() int {
	if len(r.parameters.Names()) > 0 {
		return r.parameters.Len()
	}
	return r.predicted.Len()
}

func (r *Registry) checkLength(name string, values []float64) error {
	if len(r.parameters.Names()) == 0 && len(r.predicted.Names()) == 0 {
		return nil
	}
	if n := r.Len(); len(values) != n {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("column %s has %d values, model has %d nodes", name, len(values), n))
	}
	return nil
}

// AddParameter implements Model. Registering a name again replaces its
// values and keeps its position.
func (r *Registry) AddParameter(name string, values []float64) error {
	if err := r.checkLength(name, values); err != nil {
		return err
	}
	if r.predicted.Has(name) {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("%s is already a predicted quantity", name))
	}
	if err := r.parameters.SetColumn(name, values); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "failed to add parameter", err)
	}
	return nil
}

// AddPredicted implements Model.
func (r *Registry) AddPredicted(name string, values []float64, scale bool) error {
	if err := r.checkLength(name, values); err != nil {
		return err
	}
	if r.parameters.Has(name) {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("%s is already a parameter", name))
	}
	if err := r.predicted.SetColumn(name, values); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "failed to add predicted quantity", err)
	}
	r.scaled[name] = scale
	return nil
}

// Parameters implements Model.
func (r *Registry) Parameters() []string {
	return r.parameters.Names()
}

// Predicted implements Model.
func (r *Registry) Predicted() []string {
	return r.predicted.Names()
}

// Parameter returns the values of a parameter.
func (r *Registry) Parameter(name string) ([]float64, bool) {
	v, ok := r.parameters.Column(name)
	return slices.Clone(v), ok
}

// Prediction returns the values of a predicted quantity.
func (r *Registry) Prediction(name string) ([]float64, bool) {
	v, ok := r.predicted.Column(name)
	return slices.Clone(v), ok
}

// Scaled reports whether a predicted quantity is fit up to a normalization.
func (r *Registry) Scaled(name string) bool {
	return r.scaled[name]
}

// Range returns the smallest and largest value of a parameter.
func (r *Registry) Range(name string) (lo, hi float64, ok bool) {
	v, ok := r.parameters.Column(name)
	if !ok || len(v) == 0 {
		return 0, 0, false
	}
	return floats.Min(v), floats.Max(v), true
}

// Predict implements Model. It returns the predictions of the node nearest
// to point, measuring distance over the parameters present in point with
// each axis scaled to its range. Ties go to the first node.
func (r *Registry) Predict(point map[string]float64) (map[string]float64, error) {
	if r.Len() == 0 {
		return nil, cnserrors.New(cnserrors.ErrCodeNotFound, fmt.Sprintf("model %s has no nodes", r.name))
	}

	names := make([]string, 0, len(point))
	for _, n := range r.parameters.Names() {
		if _, ok := point[n]; ok {
			names = append(names, n)
		}
	}
	if len(names) != len(point) {
		for n := range point {
			if !r.parameters.Has(n) {
				return nil, cnserrors.New(cnserrors.ErrCodeNotFound,
					fmt.Sprintf("parameter %s not found in model %s", n, r.name))
			}
		}
	}

	target := make([]float64, len(names))
	spans := make([]float64, len(names))
	cols := make([][]float64, len(names))
	for j, n := range names {
		cols[j], _ = r.parameters.Column(n)
		lo, hi, _ := r.Range(n)
		spans[j] = hi - lo
		if spans[j] == 0 {
			spans[j] = 1
		}
		target[j] = point[n] / spans[j]
	}

	best, bestDist := 0, math.Inf(1)
	node := make([]float64, len(names))
	for i := 0; i < r.Len(); i++ {
		for j := range names {
			node[j] = cols[j][i] / spans[j]
		}
		if d := floats.Distance(node, target, 2); d < bestDist {
			best, bestDist = i, d
		}
	}

	out := make(map[string]float64, len(r.predicted.Names()))
	for _, n := range r.predicted.Names() {
		col, _ := r.predicted.Column(n)
		out[n] = col[best]
	}
	return out, nil
}

// Subset implements Model. It replaces the nodes with those matching every
// fixed value. A value absent from the grid leaves the model empty, which
// is logged but not an error; an unknown parameter is.
func (r *Registry) Subset(fixed map[string]float64) error {
	if len(fixed) == 0 {
		return nil
	}
	cols := make(map[string][]float64, len(fixed))
	for n := range fixed {
		col, ok := r.parameters.Column(n)
		if !ok {
			return cnserrors.New(cnserrors.ErrCodeNotFound,
				fmt.Sprintf("parameter %s not found in model %s", n, r.name))
		}
		cols[n] = col
	}

	keep := func(i int) bool {
		for n, v := range fixed {
			if !table.Equal(cols[n][i], v) {
				return false
			}
		}
		return true
	}
	before := r.Len()
	r.parameters = r.parameters.Filter(keep)
	r.predicted = r.predicted.Filter(keep)

	slog.Debug("model subset", "model", r.name, "fixed", fixed, "before", before, "after", r.Len())
	return nil
}
