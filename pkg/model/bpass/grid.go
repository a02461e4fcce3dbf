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

package bpass

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/NVIDIA/bpass-gridfit/pkg/abundance"
	"github.com/NVIDIA/bpass-gridfit/pkg/defaults"
	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
	"github.com/NVIDIA/bpass-gridfit/pkg/gridfile"
	"github.com/NVIDIA/bpass-gridfit/pkg/model"
)

// Model defaults.
const (
	DefaultName = "bpass"

	// ParameterLogZSun is the derived metallicity relative to solar.
	ParameterLogZSun = "LOGZ_ZSUN"

	columnLogZ = "LOGZ"
)

var (
	// DefaultParameters are the grid axes registered when none are configured.
	DefaultParameters = []string{"CO", "LOGZ", "LOGU", "XI", "NH"}

	// DefaultLines are the lines registered when none are configured.
	DefaultLines = []string{"OIII4959", "OIII5007", "HB", "HA", "OII3727"}
)

// Grid is a BPASS grid model. It composes a model.Registry holding the
// registered columns.
type Grid struct {
	*model.Registry

	path       string
	root       string
	abundances *abundance.Set
	manifest   *gridfile.Manifest
}

type options struct {
	name        string
	path        string
	parameters  []string
	lines       []string
	fixed       map[string]float64
	recalculate bool
}

// Option configures Load.
type Option func(*options)

// WithName sets the model name.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithPath sets the grid file path.
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithParameters sets the parameter columns to register, in order.
func WithParameters(names ...string) Option {
	return func(o *options) {
		if len(names) > 0 {
			o.parameters = slices.Clone(names)
		}
	}
}

// WithLines sets the line columns to register.
func WithLines(names ...string) Option {
	return func(o *options) {
		if len(names) > 0 {
			o.lines = slices.Clone(names)
		}
	}
}

// WithFixed pins parameters; the grid is restricted to matching rows on load.
func WithFixed(fixed map[string]float64) Option {
	return func(o *options) {
		o.fixed = fixed
	}
}

// WithRecalculate recomputes the solar abundances from the reference file
// next to the grid instead of using the published constants.
func WithRecalculate(recalculate bool) Option {
	return func(o *options) {
		o.recalculate = recalculate
	}
}

// Load reads the grid and registers its columns.
func Load(opts ...Option) (*Grid, error) {
	o := &options{
		name:       DefaultName,
		parameters: slices.Clone(DefaultParameters),
		lines:      slices.Clone(DefaultLines),
	}
	for _, opt := range opts {
		opt(o)
	}

	path, root, err := resolvePath(o.path)
	if err != nil {
		return nil, err
	}

	abund, err := abundance.Setup(o.recalculate, root)
	if err != nil {
		return nil, err
	}

	frame, manifest, err := gridfile.Read(path)
	if err != nil {
		if cnserrors.IsCode(err, cnserrors.ErrCodeNotFound) {
			return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound,
				"BPASS grid file not found. Please provide a valid path.", err, map[string]any{"path": path})
		}
		return nil, err
	}

	g := &Grid{
		Registry:   model.NewRegistry(o.name),
		path:       path,
		root:       root,
		abundances: abund,
		manifest:   manifest,
	}

	for _, p := range o.parameters {
		col, ok := frame.Column(p)
		if !ok {
			return nil, cnserrors.NewWithContext(cnserrors.ErrCodeNotFound,
				fmt.Sprintf("parameter %s not found in grid", p), map[string]any{"path": path})
		}
		if err := g.AddParameter(p, col); err != nil {
			return nil, err
		}
	}
	for _, l := range o.lines {
		col, ok := frame.Column(l)
		if !ok {
			return nil, cnserrors.NewWithContext(cnserrors.ErrCodeNotFound,
				fmt.Sprintf("line %s not found in grid", l), map[string]any{"path": path})
		}
		if err := g.AddPredicted(l, col, true); err != nil {
			return nil, err
		}
	}

	logZ, ok := frame.Column(columnLogZ)
	if !ok {
		return nil, cnserrors.NewWithContext(cnserrors.ErrCodeNotFound,
			fmt.Sprintf("column %s not found in grid", columnLogZ), map[string]any{"path": path})
	}
	logZSun := abund.LogZSun()
	relative := make([]float64, len(logZ))
	for i, v := range logZ {
		relative[i] = v - logZSun
	}
	if err := g.AddParameter(ParameterLogZSun, relative); err != nil {
		return nil, err
	}

	slog.Debug("grid model loaded",
		"path", path,
		"rows", g.Len(),
		"parameters", g.Parameters(),
		"lines", g.Predicted())

	if len(o.fixed) > 0 {
		if err := g.Restrict(o.fixed); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func resolvePath(path string) (string, string, error) {
	if path != "" {
		return path, filepath.Dir(path), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", "", cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to resolve working directory", err)
	}
	return filepath.Join(wd, defaults.GridFileName), wd, nil
}

// Restrict keeps only the rows whose parameters equal the fixed values.
// It is destructive. An empty result is logged, not returned as an error.
func (g *Grid) Restrict(fixed map[string]float64) error {
	if err := g.Subset(fixed); err != nil {
		return err
	}
	if g.Len() == 0 {
		slog.Warn("fixed parameters match no grid rows", "fixed", fixed, "path", g.path)
	}
	return nil
}

// Lines returns the registered line names.
func (g *Grid) Lines() []string {
	return g.Predicted()
}

// Path returns the grid file path.
func (g *Grid) Path() string {
	return g.path
}

// Root returns the directory the grid and abundance file are read from.
func (g *Grid) Root() string {
	return g.root
}

// Abundances returns the abundance set of the model.
func (g *Grid) Abundances() *abundance.Set {
	return g.abundances
}

// ZSun returns the solar metal mass fraction of the model.
func (g *Grid) ZSun() float64 {
	return g.abundances.Z
}

// Manifest returns the manifest the grid was verified against, or nil.
func (g *Grid) Manifest() *gridfile.Manifest {
	return g.manifest
}

// LogZSun returns log10 of the solar metal mass fraction.
func (g *Grid) LogZSun() float64 {
	return g.abundances.LogZSun()
}
