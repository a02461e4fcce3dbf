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

package grid

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/NVIDIA/bpass-gridfit/pkg/config"
	"github.com/NVIDIA/bpass-gridfit/pkg/defaults"
	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
	"github.com/NVIDIA/bpass-gridfit/pkg/gridfile"
	"github.com/NVIDIA/bpass-gridfit/pkg/table"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"
)

// Builder turns raw archive slices into the canonical grid table.
// A Builder is not safe for concurrent use.
type Builder struct {
	cfg     *config.GridConfig
	source  SliceSource
	version string

	// grid holds the output of the last BuildFullGrid call.
	grid *table.Frame
}

// Option configures a Builder.
type Option func(*Builder)

// WithVersion sets the tool version recorded in the manifest of saved grids.
func WithVersion(version string) Option {
	return func(b *Builder) {
		b.version = version
	}
}

// NewBuilder returns a Builder reading slices for the axes of cfg from source.
func NewBuilder(cfg *config.GridConfig, source SliceSource, opts ...Option) (*Builder, error) {
	if cfg == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "grid configuration is required")
	}
	if source == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "slice source is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &Builder{cfg: cfg, source: source}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// FetchSlice reads the raw slice addressed by key.
func (b *Builder) FetchSlice(ctx context.Context, key SliceKey) (*mat.Dense, error) {
	raw, err := b.source.Slice(ctx, key)
	if err != nil {
		gridSlicesRead.WithLabelValues("error").Inc()
		return nil, err
	}
	gridSlicesRead.WithLabelValues("success").Inc()

	if _, c := raw.Data.Dims(); c != len(b.cfg.Columns) {
		return nil, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("slice %s has %d columns, configuration names %d", key.Path(), c, len(b.cfg.Columns)),
			map[string]any{"path": key.Path(), "dataset": raw.Name})
	}
	return raw.Data, nil
}

// LoadAllAges reads one slice per configured age, in configured order.
func (b *Builder) LoadAllAges(ctx context.Context, co, logU, xi, nH float64) ([]*mat.Dense, error) {
	out := make([]*mat.Dense, 0, len(b.cfg.Axes.Age))
	for _, age := range b.cfg.Axes.Age {
		data, err := b.FetchSlice(ctx, SliceKey{CO: co, LogU: logU, Xi: xi, NH: nH, Age: age})
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

// Flatten stacks per-age slices into one table with an age column.
// The density column is dropped; it is constant for the slices of one
// parameter combination and reattached by IntegrateOverAge.
func (b *Builder) Flatten(raws []*mat.Dense, ages []float64) (*table.Frame, error) {
	if len(raws) != len(ages) {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("got %d slices for %d ages", len(raws), len(ages)))
	}

	frames := make([]*table.Frame, 0, len(raws))
	for i, raw := range raws {
		f, err := table.FromDense(b.cfg.Columns, raw)
		if err != nil {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "failed to read slice", err)
		}
		f.Drop(config.ColumnDensity)
		if err := f.SetConstant(ColumnAge, ages[i]); err != nil {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to tag slice age", err)
		}
		frames = append(frames, f)
	}

	if len(frames) == 0 {
		names := slices.DeleteFunc(slices.Clone(b.cfg.Columns), func(n string) bool {
			return n == config.ColumnDensity
		})
		return table.New(append(names, ColumnAge)...), nil
	}
	return table.Concat(frames...), nil
}

// IntegrateOverAge integrates every line column of a flattened table over
// age, once per metallicity. The result has one row per distinct
// metallicity in ascending order, with the four fixed parameter values
// attached as CO, LOGU, XI and NH.
func (b *Builder) IntegrateOverAge(f *table.Frame, co, logU, xi, nH float64) (*table.Frame, error) {
	zCol, ok := f.Column(config.ColumnMetallicity)
	if !ok {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("table has no %s column", config.ColumnMetallicity))
	}
	ageCol, ok := f.Column(ColumnAge)
	if !ok {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("table has no %s column", ColumnAge))
	}

	fixed := map[string]float64{ColumnCO: co, ColumnLogU: logU, ColumnXi: xi, ColumnNH: nH}
	var lines []string
	for _, n := range f.Names() {
		if _, isFixed := fixed[n]; isFixed || n == ColumnAge || n == config.ColumnMetallicity {
			continue
		}
		lines = append(lines, n)
	}

	metallicities := f.Unique(config.ColumnMetallicity)
	out := make([][]float64, len(lines))
	for _, z := range metallicities {
		var rows []int
		for i, v := range zCol {
			if table.Equal(v, z) {
				rows = append(rows, i)
			}
		}
		sort.SliceStable(rows, func(a, c int) bool { return ageCol[rows[a]] < ageCol[rows[c]] })

		x := make([]float64, len(rows))
		for i, r := range rows {
			x[i] = ageCol[r]
		}
		y := make([]float64, len(rows))
		for j, name := range lines {
			col, _ := f.Column(name)
			for i, r := range rows {
				y[i] = col[r]
			}
			out[j] = append(out[j], trapezoid(x, y))
		}
	}

	result := table.New()
	if err := result.SetColumn(config.ColumnMetallicity, metallicities); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to build integrated table", err)
	}
	for j, name := range lines {
		if err := result.SetColumn(name, out[j]); err != nil {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to build integrated table", err)
		}
	}
	for _, name := range []string{ColumnCO, ColumnLogU, ColumnXi, ColumnNH} {
		if err := result.SetConstant(name, fixed[name]); err != nil {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to build integrated table", err)
		}
	}
	return result, nil
}

// trapezoid integrates y over ascending x. Fewer than two samples
// integrate to zero.
func trapezoid(x, y []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return integrate.Trapezoidal(x, y)
}

// BuildFullGrid runs load, flatten and integrate for every combination of
// the configured CO, U, xsi and nH values and concatenates the results.
// The blended SII column is then split into its two components.
func (b *Builder) BuildFullGrid(ctx context.Context) (*table.Frame, error) {
	start := time.Now()
	defer func() {
		gridBuildDuration.Observe(time.Since(start).Seconds())
	}()

	axes := b.cfg.Axes
	slog.Info("building grid",
		"archive", b.cfg.Archive,
		"combinations", len(axes.CO)*len(axes.U)*len(axes.Xsi)*len(axes.NH),
		"ages", len(axes.Age))

	var parts []*table.Frame
	for _, co := range axes.CO {
		for _, logU := range axes.U {
			for _, xi := range axes.Xsi {
				for _, nH := range axes.NH {
					if err := ctx.Err(); err != nil {
						return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "grid build cancelled", err)
					}
					raws, err := b.LoadAllAges(ctx, co, logU, xi, nH)
					if err != nil {
						return nil, err
					}
					flat, err := b.Flatten(raws, axes.Age)
					if err != nil {
						return nil, err
					}
					integrated, err := b.IntegrateOverAge(flat, co, logU, xi, nH)
					if err != nil {
						return nil, err
					}
					parts = append(parts, integrated)
				}
			}
		}
	}

	full := table.Concat(parts...)
	if err := splitSII(full); err != nil {
		return nil, err
	}
	b.grid = full

	slog.Debug("grid built", "rows", full.Len(), "columns", len(full.Names()))
	return full, nil
}

// splitSII derives the two SII components from the blended column:
// s2_6716 = blend / 3.96 and s2_6731 = s2_6716 × 2.96.
func splitSII(f *table.Frame) error {
	blend, ok := f.Column(ColumnSIIBlend)
	if !ok {
		slog.Warn("grid has no blended SII column, components not derived", "column", ColumnSIIBlend)
		return nil
	}

	s6716 := make([]float64, len(blend))
	floats.ScaleTo(s6716, 1/defaults.SIIBlendDivisor, blend)
	s6731 := make([]float64, len(blend))
	floats.ScaleTo(s6731, defaults.SIIRatio, s6716)

	if err := f.SetColumn(ColumnSII6716, s6716); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to derive SII components", err)
	}
	if err := f.SetColumn(ColumnSII6731, s6731); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to derive SII components", err)
	}
	return nil
}

// Grid returns the table of the last BuildFullGrid call, or nil.
func (b *Builder) Grid() *table.Frame {
	return b.grid
}

// Finalize renames the built grid to public names per configured
// metallicity, adds LOGZ = log10(ZMET) and concatenates the subsets in
// configured metallicity order. Rows of unconfigured metallicities are
// dropped.
func (b *Builder) Finalize() (*table.Frame, error) {
	if b.grid == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "grid has not been built")
	}

	parts := make([]*table.Frame, 0, len(b.cfg.Axes.Z))
	kept := 0
	for _, z := range b.cfg.Axes.Z {
		sub := b.grid.Where(config.ColumnMetallicity, z)
		if sub.Len() == 0 {
			slog.Warn("no grid rows for configured metallicity", "Z", z)
		}
		sub.Rename(publicNames)

		zmet, _ := sub.Column(ColumnZMet)
		logZ := make([]float64, len(zmet))
		for i, v := range zmet {
			logZ[i] = math.Log10(v)
		}
		if err := sub.SetColumn(ColumnLogZ, logZ); err != nil {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to derive LOGZ", err)
		}
		kept += sub.Len()
		parts = append(parts, sub)
	}

	if dropped := b.grid.Len() - kept; dropped > 0 {
		slog.Warn("dropped grid rows of unconfigured metallicities", "rows", dropped)
	}

	final := table.Concat(parts...)
	gridRows.Set(float64(final.Len()))
	return final, nil
}

// Save finalizes the built grid and writes it to path, replacing any
// existing file, together with its manifest.
func (b *Builder) Save(path string) (*gridfile.Manifest, error) {
	if path == "" {
		path = defaults.GridFileName
	}

	final, err := b.Finalize()
	if err != nil {
		return nil, err
	}

	axes := b.cfg.Axes
	manifest, err := gridfile.Write(path, final,
		gridfile.WithSource(b.cfg.Archive),
		gridfile.WithVersion(b.version),
		gridfile.WithAxes(map[string][]float64{
			"Z":   axes.Z,
			"CO":  axes.CO,
			"U":   axes.U,
			"xsi": axes.Xsi,
			"nH":  axes.NH,
			"age": axes.Age,
		}),
	)
	if err != nil {
		return nil, err
	}

	slog.Info("grid saved", "path", path, "rows", final.Len(), "build", manifest.BuildID)
	return manifest, nil
}
