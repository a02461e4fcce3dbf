/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/urfave/cli/v3"
	"gonum.org/v1/gonum/floats"

	"github.com/NVIDIA/bpass-gridfit/pkg/defaults"
	"github.com/NVIDIA/bpass-gridfit/pkg/grid"
	"github.com/NVIDIA/bpass-gridfit/pkg/gridfile"
	"github.com/NVIDIA/bpass-gridfit/pkg/model"
	"github.com/NVIDIA/bpass-gridfit/pkg/table"
)

// ColumnRange summarizes the values of one grid column.
type ColumnRange struct {
	Min      float64 `json:"min" yaml:"min"`
	Max      float64 `json:"max" yaml:"max"`
	Distinct int     `json:"distinct" yaml:"distinct"`
}

// Inspection describes a canonical grid file.
type Inspection struct {
	Path     string                 `json:"path" yaml:"path"`
	Rows     int                    `json:"rows" yaml:"rows"`
	Columns  []string               `json:"columns" yaml:"columns"`
	Fixed    map[string]float64     `json:"fixed,omitempty" yaml:"fixed,omitempty"`
	Ranges   map[string]ColumnRange `json:"ranges,omitempty" yaml:"ranges,omitempty"`
	Nearest  *Prediction            `json:"nearest,omitempty" yaml:"nearest,omitempty"`
	Manifest *gridfile.Manifest     `json:"manifest,omitempty" yaml:"manifest,omitempty"`
}

// Prediction holds the line values of the grid node nearest to a point.
type Prediction struct {
	At    map[string]float64 `json:"at" yaml:"at"`
	Lines map[string]float64 `json:"lines" yaml:"lines"`
}

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:                  "inspect",
		EnableShellCompletion: true,
		Usage:                 "Describe a canonical grid file.",
		Description: `Reads a canonical grid, verifying it against its manifest when one is
present, and prints its columns together with the range of every column.
Repeated --fix flags restrict the grid to rows matching the given values.
Repeated --at flags print the line values of the grid node nearest to the
given parameter point, each axis scaled to its range.

Examples:

  gridfit inspect --grid BPASS_grid.fits
  gridfit inspect --grid BPASS_grid.fits --fix CO=0.38 --fix LOGU=-2 --format table
  gridfit inspect --grid BPASS_grid.fits --at LOGU=-2.2 --at LOGZ=-2.5`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "grid",
				Aliases: []string{"g"},
				Value:   defaults.GridFileName,
				Usage:   "canonical grid file",
				Sources: cli.EnvVars("GRIDFIT_GRID"),
			},
			fixFlag(),
			&cli.StringSliceFlag{
				Name:  "at",
				Usage: "parameter point, as NAME=VALUE (repeatable), whose nearest node is printed",
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}

			fixed, err := parseFixed(cmd.StringSlice("fix"))
			if err != nil {
				return err
			}

			path := cmd.String("grid")
			frame, manifest, err := gridfile.Read(path)
			if err != nil {
				return fmt.Errorf("failed to read grid: %w", err)
			}

			frame, err = restrictFrame(frame, fixed)
			if err != nil {
				return err
			}

			at, err := parseFixed(cmd.StringSlice("at"))
			if err != nil {
				return err
			}

			in := inspect(path, frame, fixed, manifest)
			if len(at) > 0 {
				if in.Nearest, err = nearest(frame, at); err != nil {
					return fmt.Errorf("failed to locate nearest grid node: %w", err)
				}
			}

			return writeOutput(ctx, cmd, in)
		},
	}
}

// restrictFrame keeps the rows equal to every fixed value.
func restrictFrame(f *table.Frame, fixed map[string]float64) (*table.Frame, error) {
	keys := make([]string, 0, len(fixed))
	for k := range fixed {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if !f.Has(k) {
			return nil, fmt.Errorf("grid has no column %s", k)
		}
		f = f.Where(k, fixed[k])
	}
	if len(fixed) > 0 && f.Len() == 0 {
		slog.Warn("no grid rows match the fixed values", "fixed", fixed)
	}
	return f, nil
}

func inspect(path string, f *table.Frame, fixed map[string]float64, m *gridfile.Manifest) *Inspection {
	in := &Inspection{
		Path:     path,
		Rows:     f.Len(),
		Columns:  f.Names(),
		Fixed:    fixed,
		Manifest: m,
	}
	if f.Len() == 0 {
		return in
	}

	in.Ranges = make(map[string]ColumnRange, len(in.Columns))
	for _, name := range in.Columns {
		col, _ := f.Column(name)
		in.Ranges[name] = ColumnRange{
			Min:      floats.Min(col),
			Max:      floats.Max(col),
			Distinct: len(f.Unique(name)),
		}
	}
	return in
}

// nearest registers the canonical parameter columns of f as model parameters
// and every other column as a prediction, then predicts at the point.
func nearest(f *table.Frame, at map[string]float64) (*Prediction, error) {
	reg := model.NewRegistry("grid")
	for _, name := range f.Names() {
		col, _ := f.Column(name)
		var err error
		if slices.Contains(grid.CanonicalParameters, name) {
			err = reg.AddParameter(name, col)
		} else {
			err = reg.AddPredicted(name, col, false)
		}
		if err != nil {
			return nil, err
		}
	}

	lines, err := reg.Predict(at)
	if err != nil {
		return nil, err
	}
	return &Prediction{At: at, Lines: lines}, nil
}
