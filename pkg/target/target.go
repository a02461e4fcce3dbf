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

package target

import (
	"log/slog"
	"slices"

	"github.com/NVIDIA/bpass-gridfit/pkg/defaults"
	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
	"github.com/NVIDIA/bpass-gridfit/pkg/label"
)

// State is the preparation step a Target has reached.
type State int

const (
	StateConstructed State = iota
	StateFluxResolved
	StateClassified
	StateFiltered
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateFluxResolved:
		return "flux_resolved"
	case StateClassified:
		return "lines_classified"
	case StateFiltered:
		return "filtered"
	default:
		return "unknown"
	}
}

// Target is one observed object. It is not safe for concurrent use.
type Target struct {
	id       string
	catalog  *Catalog
	lines    []string
	snr      float64
	resolver *label.Resolver
	blends   []Blend

	state    State
	resolved []string
	flux     []float64
	errs     []float64
	usable   []bool

	filteredLines []string
	filteredFlux  []float64
	filteredErrs  []float64
}

// Option configures a Target.
type Option func(*Target)

// WithSNR sets the signal-to-noise threshold a line must exceed.
func WithSNR(snr float64) Option {
	return func(t *Target) {
		t.snr = snr
	}
}

// WithResolver sets the resolver for labels absent from the catalog.
func WithResolver(r *label.Resolver) Option {
	return func(t *Target) {
		if r != nil {
			t.resolver = r
		}
	}
}

// WithBlends replaces the doublet rules.
func WithBlends(blends ...Blend) Option {
	return func(t *Target) {
		t.blends = slices.Clone(blends)
	}
}

// New returns a Target for object id. With no lines every flux column of
// the catalog is requested.
func New(id string, catalog *Catalog, lines []string, opts ...Option) (*Target, error) {
	if catalog == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "catalog is required")
	}
	if len(lines) == 0 {
		lines = catalog.FluxColumns()
	}
	t := &Target{
		id:       id,
		catalog:  catalog,
		lines:    slices.Clone(lines),
		snr:      defaults.SNRThreshold,
		resolver: label.CatalogResolver(),
		blends:   DefaultBlends(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// ID returns the object identifier.
func (t *Target) ID() string { return t.id }

// Lines returns the requested line labels.
func (t *Target) Lines() []string { return slices.Clone(t.lines) }

// SNR returns the signal-to-noise threshold.
func (t *Target) SNR() float64 { return t.snr }

// State returns the preparation step reached.
func (t *Target) State() State { return t.state }

// Resolved returns the catalog column or doublet each requested label was
// read from, parallel to Lines. Nil before ReadFlux.
func (t *Target) Resolved() []string { return slices.Clone(t.resolved) }

// Flux returns the fluxes parallel to Lines. Nil before ReadFlux.
func (t *Target) Flux() []float64 { return slices.Clone(t.flux) }

// Errors returns the flux errors parallel to Lines. Nil before ReadFlux.
func (t *Target) Errors() []float64 { return slices.Clone(t.errs) }

// Usable returns the SNR mask parallel to Lines. Nil before Classify.
func (t *Target) Usable() []bool { return slices.Clone(t.usable) }

// ReadFlux resolves every requested label and reads its flux and error.
// An unresolvable label or unknown object fails with ErrCodeNotFound.
// Reading again resets classification.
func (t *Target) ReadFlux() ([]float64, []float64, error) {
	vocabulary := t.catalog.FluxColumns()
	resolved := make([]string, len(t.lines))
	flux := make([]float64, len(t.lines))
	errs := make([]float64, len(t.lines))

	for i, requested := range t.lines {
		name, f, e, err := t.readLine(requested, vocabulary)
		if err != nil {
			return nil, nil, err
		}
		resolved[i], flux[i], errs[i] = name, f, e
	}

	t.resolved, t.flux, t.errs = resolved, flux, errs
	t.usable = nil
	t.filteredLines, t.filteredFlux, t.filteredErrs = nil, nil, nil
	t.state = StateFluxResolved

	slog.Debug("target fluxes read", "id", t.id, "lines", t.lines, "resolved", resolved)
	return t.Flux(), t.Errors(), nil
}

func (t *Target) readLine(requested string, vocabulary []string) (string, float64, float64, error) {
	name := requested
	blend, isBlend := findBlend(t.blends, requested)
	if !isBlend {
		res, err := t.resolver.Resolve(requested, vocabulary)
		if err != nil {
			return "", 0, 0, cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound,
				"line not found in catalog", err, map[string]any{"id": t.id, "line": requested})
		}
		name = res.Resolved
		blend, isBlend = findBlend(t.blends, name)
	}

	if !isBlend {
		f, e, err := t.catalog.Measurement(t.id, name)
		return name, f, e, err
	}

	slog.Warn("line is an unresolved doublet, summing its components; check your input if this was not intended",
		"id", t.id,
		"line", name,
		"doublet", blend.Name,
		"components", blend.Components)

	f1, e1, err := t.catalog.Measurement(t.id, blend.Components[0])
	if err != nil {
		return "", 0, 0, err
	}
	f2, e2, err := t.catalog.Measurement(t.id, blend.Components[1])
	if err != nil {
		return "", 0, 0, err
	}
	f, e := Combine(f1, e1, f2, e2)
	return name, f, e, nil
}

// Classify marks each line usable when flux/error is strictly greater than
// the SNR threshold. Before ReadFlux it warns and returns nil.
func (t *Target) Classify() []bool {
	if t.state < StateFluxResolved {
		slog.Warn("fluxes have not been read, nothing to classify", "id", t.id)
		return nil
	}

	usable := make([]bool, len(t.flux))
	for i := range t.flux {
		usable[i] = t.flux[i]/t.errs[i] > t.snr
	}
	t.usable = usable
	t.state = StateClassified

	slog.Debug("target lines classified", "id", t.id, "snr", t.snr, "usable", usable)
	return t.Usable()
}

// Filter returns the usable lines with their fluxes and errors. Before
// Classify it warns and returns nils.
func (t *Target) Filter() ([]string, []float64, []float64) {
	if t.state < StateClassified {
		slog.Warn("lines have not been classified, nothing to filter", "id", t.id)
		return nil, nil, nil
	}

	lines := make([]string, 0, len(t.lines))
	flux := make([]float64, 0, len(t.lines))
	errs := make([]float64, 0, len(t.lines))
	for i, ok := range t.usable {
		if !ok {
			continue
		}
		lines = append(lines, t.lines[i])
		flux = append(flux, t.flux[i])
		errs = append(errs, t.errs[i])
	}
	t.filteredLines, t.filteredFlux, t.filteredErrs = lines, flux, errs
	t.state = StateFiltered

	return slices.Clone(lines), slices.Clone(flux), slices.Clone(errs)
}

// UsableLines returns the requested labels marked usable, or nil before
// Classify.
func (t *Target) UsableLines() []string {
	if t.usable == nil {
		return nil
	}
	var out []string
	for i, ok := range t.usable {
		if ok {
			out = append(out, t.lines[i])
		}
	}
	return out
}

// Filtered returns the result of the last Filter call, or nils.
func (t *Target) Filtered() ([]string, []float64, []float64) {
	return slices.Clone(t.filteredLines), slices.Clone(t.filteredFlux), slices.Clone(t.filteredErrs)
}
