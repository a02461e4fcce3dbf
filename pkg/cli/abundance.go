/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/bpass-gridfit/pkg/abundance"
)

// Composition is the printed form of a solar abundance set.
type Composition struct {
	X        float64            `json:"X" yaml:"X"`
	Y        float64            `json:"Y" yaml:"Y"`
	Z        float64            `json:"Z" yaml:"Z"`
	LogZSun  float64            `json:"logZsun" yaml:"logZsun"`
	Elements map[string]float64 `json:"elements,omitempty" yaml:"elements,omitempty"`
}

func abundanceCmd() *cli.Command {
	return &cli.Command{
		Name:                  "abundance",
		EnableShellCompletion: true,
		Usage:                 "Print the solar composition used to scale metallicities.",
		Description: `Prints the solar mass fractions X, Y and Z. By default the published
constants are used; with --recalculate they are derived from the
reference abundance table found in --root.

Examples:

  gridfit abundance
  gridfit abundance --recalculate --root ./data --format json`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "recalculate",
				Usage: "derive mass fractions from the reference abundance table",
			},
			&cli.StringFlag{
				Name:    "root",
				Value:   ".",
				Usage:   "directory holding the reference abundance table",
				Sources: cli.EnvVars("GRIDFIT_ROOT"),
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}

			set, err := abundance.Setup(cmd.Bool("recalculate"), cmd.String("root"))
			if err != nil {
				return fmt.Errorf("failed to set up abundances: %w", err)
			}

			return writeOutput(ctx, cmd, composition(set))
		},
	}
}

func composition(set *abundance.Set) *Composition {
	c := &Composition{
		X:       set.X,
		Y:       set.Y,
		Z:       set.Z,
		LogZSun: set.LogZSun(),
	}
	if elements := set.Elements(); len(elements) > 0 {
		c.Elements = make(map[string]float64, len(elements))
		for _, e := range elements {
			c.Elements[e], _ = set.Abundance(e)
		}
	}
	return c
}
