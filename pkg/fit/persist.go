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
	"log/slog"
	"slices"
	"strconv"
	"strings"

	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
	"github.com/NVIDIA/bpass-gridfit/pkg/header"
	"github.com/NVIDIA/bpass-gridfit/pkg/serializer"
)

// Summary field names added to the fitter summary.
const (
	FieldID      = "id"
	FieldVersion = "version"
	FieldLines   = "lines"
	FieldSNR     = "snr"
	FieldFlux    = "flux"
	FieldError   = "error"
)

// summaryRecord is the persisted CSV row: the sorted fitter summary
// followed by the target fields.
type summaryRecord struct {
	summary map[string]float64
	id      string
	version int
	lines   []string
	snr     float64
	flux    []float64
	errs    []float64
}

var _ serializer.Record = summaryRecord{}

func (r summaryRecord) keys() []string {
	keys := make([]string, 0, len(r.summary))
	for k := range r.summary {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (r summaryRecord) Header() []string {
	return append(r.keys(), FieldID, FieldVersion, FieldLines, FieldSNR, FieldFlux, FieldError)
}

func (r summaryRecord) Values() []string {
	keys := r.keys()
	values := make([]string, 0, len(keys)+6)
	for _, k := range keys {
		values = append(values, formatFloat(r.summary[k]))
	}
	return append(values,
		r.id,
		strconv.Itoa(r.version),
		strings.Join(r.lines, ","),
		formatFloat(r.snr),
		formatList(r.flux),
		formatList(r.errs),
	)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatList renders values as [v1, v2].
func formatList(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatFloat(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Persist writes the summary, augmented with the target fields, as one
// CSV row to SummaryPath and returns the path. Before a successful Run it
// logs a warning, writes nothing and returns an empty path.
func (f *Fit) Persist() (string, error) {
	if f.summary == nil {
		slog.Warn("no fit summary, nothing to persist", "id", f.target.ID())
		return "", nil
	}

	path := f.SummaryPath()
	w, err := serializer.NewFileWriter(serializer.FormatCSV, path)
	if err != nil {
		return "", cnserrors.WrapWithContext(cnserrors.ErrCodeIO, "failed to create summary file", err,
			map[string]any{"path": path})
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			slog.Warn("failed to close summary file", "path", path, "error", closeErr)
		}
	}()

	rec := summaryRecord{
		summary: f.summary,
		id:      f.target.ID(),
		version: f.version,
		lines:   f.fitted,
		snr:     f.target.SNR(),
		// The vectors passed to the fitter, parallel to lines. Values below
		// the SNR cut are not part of the fit and are left out.
		flux:    f.flux,
		errs:    f.errs,
	}
	if err := w.Serialize(context.Background(), rec); err != nil {
		return "", cnserrors.WrapWithContext(cnserrors.ErrCodeIO, "failed to write summary", err,
			map[string]any{"path": path})
	}

	slog.Info("fit summary saved", "id", f.target.ID(), "path", path)
	return path, nil
}

// Report describes a finished fit for display.
type Report struct {
	header.Header `json:",inline" yaml:",inline"`

	RunID   string             `json:"runID" yaml:"runID"`
	ID      string             `json:"id" yaml:"id"`
	Version int                `json:"version" yaml:"version"`
	Model   string             `json:"model" yaml:"model"`
	Lines   []string           `json:"lines" yaml:"lines"`
	Skipped bool               `json:"skipped" yaml:"skipped"`
	Summary map[string]float64 `json:"summary,omitempty" yaml:"summary,omitempty"`
	Path    string             `json:"path,omitempty" yaml:"path,omitempty"`
}

// Report returns a description of the fit. path is the persisted summary,
// if any. toolVersion is recorded in the header.
func (f *Fit) Report(path, toolVersion string) *Report {
	r := &Report{
		RunID:   f.runID,
		ID:      f.target.ID(),
		Version: f.version,
		Model:   f.model.Name(),
		Lines:   f.FittedLines(),
		Skipped: f.summary == nil,
		Summary: f.Summary(),
		Path:    path,
	}
	r.Init(header.KindFitSummary, header.APIVersion, toolVersion)
	return r
}
