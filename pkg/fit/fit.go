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
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/NVIDIA/bpass-gridfit/pkg/defaults"
	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
	"github.com/NVIDIA/bpass-gridfit/pkg/label"
	"github.com/NVIDIA/bpass-gridfit/pkg/model"
	"github.com/NVIDIA/bpass-gridfit/pkg/target"

	"github.com/google/uuid"
)

// Fit fits one target against one model. It is not safe for concurrent use.
type Fit struct {
	target   *target.Target
	model    model.Model
	fitter   Fitter
	resolver *label.Resolver
	dir      string
	version  int
	runID    string

	// lines are model line names parallel to the target's requested lines.
	lines      []string
	translated bool

	fitted  []string
	flux    []float64
	errs    []float64
	result  Result
	summary map[string]float64
}

// Option configures a Fit.
type Option func(*Fit)

// WithFitter sets the external sampler.
func WithFitter(f Fitter) Option {
	return func(ft *Fit) {
		ft.fitter = f
	}
}

// WithLines sets the model line names, parallel to the target's lines.
// By default the target's own labels are used.
func WithLines(lines ...string) Option {
	return func(ft *Fit) {
		if len(lines) > 0 {
			ft.lines = slices.Clone(lines)
		}
	}
}

// WithOutputDir sets the results directory.
func WithOutputDir(dir string) Option {
	return func(ft *Fit) {
		if dir != "" {
			ft.dir = dir
		}
	}
}

// WithVersion sets the version tag of the fit.
func WithVersion(v int) Option {
	return func(ft *Fit) {
		ft.version = v
	}
}

// WithResolver sets the resolver translating labels to the model vocabulary.
func WithResolver(r *label.Resolver) Option {
	return func(ft *Fit) {
		if r != nil {
			ft.resolver = r
		}
	}
}

// New returns a Fit of t against m. A missing output directory is logged
// and created when the fit runs.
func New(t *target.Target, m model.Model, opts ...Option) (*Fit, error) {
	if t == nil || m == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "target and model are required")
	}
	ft := &Fit{
		target:   t,
		model:    m,
		resolver: label.ModelResolver(),
		dir:      defaults.ResultsDir,
		version:  defaults.FitVersion,
		runID:    uuid.NewString(),
		lines:    t.Lines(),
	}
	for _, opt := range opts {
		opt(ft)
	}

	if ft.fitter == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "fitter is required")
	}
	if len(ft.lines) != len(t.Lines()) {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("got %d model lines for %d target lines", len(ft.lines), len(t.Lines())))
	}

	if _, err := os.Stat(ft.dir); errors.Is(err, fs.ErrNotExist) {
		slog.Warn("results directory does not exist and will be created", "path", ft.dir)
	}
	return ft, nil
}

// RunID identifies this fit in logs and reports.
func (f *Fit) RunID() string { return f.runID }

// Lines returns the model line names, translated once TranslateLineLabels ran.
func (f *Fit) Lines() []string { return slices.Clone(f.lines) }

// FittedLines returns the lines passed to the fitter by the last Run.
func (f *Fit) FittedLines() []string { return slices.Clone(f.fitted) }

// Summary returns the fit summary, or nil before a successful Run.
func (f *Fit) Summary() map[string]float64 { return maps.Clone(f.summary) }

// Basename returns the prefix of the files the fitter writes:
// <dir>/<id>/v<version>_<id>. Integral numeric ids are written without a
// fraction, so 12.0 and 12 share results/12.
func (f *Fit) Basename() string {
	id := pathID(f.target.ID())
	return filepath.Join(f.dir, id, fmt.Sprintf("v%d_%s", f.version, id))
}

func pathID(id string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(id), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) || v != math.Trunc(v) {
		return id
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

// SummaryPath returns <dir>/<id>/v<version>_<id>_summary.csv.
func (f *Fit) SummaryPath() string {
	return f.Basename() + "_summary.csv"
}

// TranslateLineLabels replaces every line absent from the model vocabulary
// with its closest model line. A line with no candidate at or above the
// threshold fails with ErrCodeNotFound.
func (f *Fit) TranslateLineLabels() error {
	vocabulary := f.model.Predicted()
	for i, l := range f.lines {
		res, err := f.resolver.Resolve(l, vocabulary)
		if err != nil {
			return cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound,
				fmt.Sprintf("line %s not found in model %s", l, f.model.Name()), err,
				map[string]any{"id": f.target.ID()})
		}
		f.lines[i] = res.Resolved
	}
	f.translated = true
	return nil
}

// Run reads and classifies the target, then fits its usable lines. When no
// line is usable it logs a warning and returns a nil summary and no error,
// and creates no directory.
func (f *Fit) Run(ctx context.Context) (map[string]float64, error) {
	if !f.translated {
		if err := f.TranslateLineLabels(); err != nil {
			fitTotal.WithLabelValues("error").Inc()
			return nil, err
		}
	}

	if _, _, err := f.target.ReadFlux(); err != nil {
		fitTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	usable := f.target.Classify()
	_, flux, errs := f.target.Filter()

	var lines []string
	for i, ok := range usable {
		if ok {
			lines = append(lines, f.lines[i])
		}
	}
	if len(lines) == 0 {
		fitTotal.WithLabelValues("empty").Inc()
		slog.Warn("no lines pass the SNR threshold, nothing to fit",
			"id", f.target.ID(),
			"snr", f.target.SNR(),
			"lines", f.target.Lines())
		return nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(f.Basename()), 0o755); err != nil {
		fitTotal.WithLabelValues("error").Inc()
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeIO,
			"failed to create results directory", err, map[string]any{"path": f.dir})
	}

	req := Request{
		Model:    f.model,
		Lines:    lines,
		Fluxes:   flux,
		Errors:   errs,
		FitDust:  false,
		Basename: f.Basename(),
	}

	slog.Info("fitting target",
		"id", f.target.ID(),
		"run", f.runID,
		"version", f.version,
		"lines", lines)

	start := time.Now()
	result, err := f.fitter.Fit(ctx, req)
	fitDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		fitTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	summary, err := result.SummarisedResults()
	if err != nil {
		fitTotal.WithLabelValues("error").Inc()
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to summarise fit", err)
	}
	fitTotal.WithLabelValues("success").Inc()

	f.fitted, f.flux, f.errs = lines, flux, errs
	f.result, f.summary = result, summary
	return maps.Clone(summary), nil
}

// ShowCorner renders the corner plot of the fit to w. Before a successful
// Run it logs a warning and does nothing.
func (f *Fit) ShowCorner(w io.Writer) error {
	if f.result == nil {
		slog.Warn("no fit result, nothing to plot", "id", f.target.ID())
		return nil
	}
	return f.result.ShowTriangle(w)
}
