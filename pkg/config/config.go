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

package config

import (
	"fmt"
	"slices"

	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
	"github.com/NVIDIA/bpass-gridfit/pkg/serializer"
)

// Raw column names the builder depends on.
const (
	// ColumnMetallicity is the raw metallicity column rows are grouped by.
	ColumnMetallicity = "Z"
	// ColumnDensity is the raw density column, constant within a slice.
	ColumnDensity = "n_H"
)

// Axes holds the sampled values of every grid axis, in build order.
type Axes struct {
	// Z is the absolute metallicity (not relative to solar).
	Z []float64 `json:"Z" yaml:"Z"`
	// CO is the C/O fraction.
	CO []float64 `json:"CO" yaml:"CO"`
	// U is log of the ionization parameter.
	U []float64 `json:"U" yaml:"U"`
	// Xsi is the dust-to-metal ratio.
	Xsi []float64 `json:"xsi" yaml:"xsi"`
	// NH is log of the hydrogen density.
	NH []float64 `json:"nH" yaml:"nH"`
	// Age is the stellar population age in years.
	Age []float64 `json:"age" yaml:"age"`
}

// GridConfig describes one grid build.
type GridConfig struct {
	// Archive is the path to the raw hierarchical grid.
	Archive string `json:"archive" yaml:"archive"`

	// Output is the canonical grid file to write.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// Axes are the sampled grid values.
	Axes Axes `json:"axes" yaml:"axes"`

	// Columns names the columns of every raw slice, including Z and n_H.
	Columns []string `json:"columns" yaml:"columns"`
}

// Option overrides a loaded GridConfig.
type Option func(*GridConfig)

// WithArchive sets the raw archive path.
func WithArchive(path string) Option {
	return func(c *GridConfig) {
		if path != "" {
			c.Archive = path
		}
	}
}

// WithOutput sets the canonical grid output path.
func WithOutput(path string) Option {
	return func(c *GridConfig) {
		if path != "" {
			c.Output = path
		}
	}
}

// Load reads a YAML or JSON build configuration, applies options and
// validates the result.
func Load(path string, options ...Option) (*GridConfig, error) {
	r, err := serializer.NewFileReaderAuto(path)
	if err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound,
			"failed to open grid configuration", err, map[string]any{"path": path})
	}
	defer r.Close()

	var c GridConfig
	if err := r.Deserialize(&c); err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"failed to parse grid configuration", err, map[string]any{"path": path})
	}
	for _, opt := range options {
		opt(&c)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every axis is sampled and the raw columns include the
// identifier columns the builder relies on.
func (c *GridConfig) Validate() error {
	if c.Archive == "" {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "archive path cannot be empty")
	}

	axes := []struct {
		name   string
		values []float64
	}{
		{"Z", c.Axes.Z},
		{"CO", c.Axes.CO},
		{"U", c.Axes.U},
		{"xsi", c.Axes.Xsi},
		{"nH", c.Axes.NH},
		{"age", c.Axes.Age},
	}
	for _, a := range axes {
		if len(a.values) == 0 {
			return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
				fmt.Sprintf("axis %s has no values", a.name))
		}
		if hasDuplicates(a.values) {
			return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
				fmt.Sprintf("axis %s has duplicate values", a.name))
		}
	}
	for _, z := range c.Axes.Z {
		if z <= 0 {
			return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
				fmt.Sprintf("metallicity %v must be positive", z))
		}
	}

	for _, required := range []string{ColumnMetallicity, ColumnDensity} {
		if !slices.Contains(c.Columns, required) {
			return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
				fmt.Sprintf("columns must include %q", required))
		}
	}
	seen := make(map[string]bool, len(c.Columns))
	for _, col := range c.Columns {
		if seen[col] {
			return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
				fmt.Sprintf("column %q listed twice", col))
		}
		seen[col] = true
	}
	return nil
}

func hasDuplicates(values []float64) bool {
	seen := make(map[float64]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return true
		}
		seen[v] = true
	}
	return false
}
