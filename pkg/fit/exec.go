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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"strings"

	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
)

// ExecFitter runs the sampler as an external command speaking JSON over
// stdin and stdout.
type ExecFitter struct {
	// Command is the executable.
	Command string

	// Args are passed to Command.
	Args []string

	// Env is appended to the environment of the current process.
	Env []string

	// Dir is the working directory of the command. Empty means the current one.
	Dir string
}

var _ Fitter = (*ExecFitter)(nil)

// NewExecFitter splits a command line on whitespace into an ExecFitter.
func NewExecFitter(cmdline string) (*ExecFitter, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "fitter command cannot be empty")
	}
	return &ExecFitter{Command: fields[0], Args: fields[1:]}, nil
}

type execRequest struct {
	Model      string    `json:"model"`
	ModelPath  string    `json:"modelPath,omitempty"`
	Parameters []string  `json:"parameters"`
	Lines      []string  `json:"lines"`
	Fluxes     []float64 `json:"fluxes"`
	Errors     []float64 `json:"dfluxes"`
	FitDust    bool      `json:"fitDust"`
	Basename   string    `json:"basename"`
}

type execResponse struct {
	Summary  map[string]float64 `json:"summary"`
	Triangle string             `json:"triangle,omitempty"`
}

// Fit implements Fitter.
func (e *ExecFitter) Fit(ctx context.Context, req Request) (Result, error) {
	wire := execRequest{
		Lines:    req.Lines,
		Fluxes:   req.Fluxes,
		Errors:   req.Errors,
		FitDust:  req.FitDust,
		Basename: req.Basename,
	}
	if req.Model != nil {
		wire.Model = req.Model.Name()
		wire.Parameters = req.Model.Parameters()
		if p, ok := req.Model.(interface{ Path() string }); ok {
			wire.ModelPath = p.Path()
		}
	}
	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to encode fit request", err)
	}

	cmd := exec.CommandContext(ctx, e.Command, e.Args...)
	cmd.Dir = e.Dir
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running fitter", "command", e.Command, "basename", req.Basename, "lines", req.Lines)
	if err := cmd.Run(); err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInternal, "fitter failed", err,
			map[string]any{"command": e.Command, "stderr": strings.TrimSpace(stderr.String())})
	}

	var resp execResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInternal, "failed to decode fitter output", err,
			map[string]any{"command": e.Command})
	}
	if resp.Summary == nil {
		return nil, cnserrors.NewWithContext(cnserrors.ErrCodeInternal, "fitter returned no summary",
			map[string]any{"command": e.Command})
	}
	return &execResult{summary: resp.Summary, triangle: resp.Triangle}, nil
}

type execResult struct {
	summary  map[string]float64
	triangle string
}

func (r *execResult) SummarisedResults() (map[string]float64, error) {
	return maps.Clone(r.summary), nil
}

// ShowTriangle copies the corner plot the fitter rendered to w.
func (r *execResult) ShowTriangle(w io.Writer) error {
	if r.triangle == "" {
		return cnserrors.New(cnserrors.ErrCodeNotFound, "fitter rendered no corner plot")
	}
	f, err := os.Open(r.triangle)
	if err != nil {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound, "failed to open corner plot", err,
			map[string]any{"path": r.triangle})
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to copy corner plot: %w", err)
	}
	return nil
}
