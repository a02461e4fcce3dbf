/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/bpass-gridfit/pkg/config"
	"github.com/NVIDIA/bpass-gridfit/pkg/defaults"
	"github.com/NVIDIA/bpass-gridfit/pkg/grid"
	"github.com/NVIDIA/bpass-gridfit/pkg/grid/hdf5source"
)

func buildCmd() *cli.Command {
	return &cli.Command{
		Name:                  "build",
		EnableShellCompletion: true,
		Usage:                 "Build a canonical grid file from a raw BPASS archive.",
		Description: `Reads every (CO, U, xsi, nH, age) slice of the raw HDF5 archive named in
the build configuration, integrates the line fluxes over age, splits the
blended SII doublet and writes the canonical grid with its manifest.
The manifest is printed on success.

Examples:

  gridfit build --config grid.yaml
  gridfit build --config grid.yaml --grid BPASS_grid.csv --format json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "build configuration file (YAML or JSON)",
				Required: true,
				Sources:  cli.EnvVars("GRIDFIT_BUILD_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "archive",
				Usage: "raw HDF5 archive, overrides the configured one",
			},
			&cli.StringFlag{
				Name:  "grid",
				Usage: fmt.Sprintf("canonical grid file to write (.fits or .csv, default: configured output or %s)", defaults.GridFileName),
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}

			cfg, err := config.Load(cmd.String("config"),
				config.WithArchive(cmd.String("archive")),
				config.WithOutput(cmd.String("grid")))
			if err != nil {
				return fmt.Errorf("failed to load build configuration: %w", err)
			}

			src, err := hdf5source.New(cfg.Archive)
			if err != nil {
				return fmt.Errorf("failed to open archive: %w", err)
			}

			b, err := grid.NewBuilder(cfg, src, grid.WithVersion(version))
			if err != nil {
				return fmt.Errorf("failed to create grid builder: %w", err)
			}

			if _, err := b.BuildFullGrid(ctx); err != nil {
				return fmt.Errorf("failed to build grid: %w", err)
			}

			manifest, err := b.Save(cfg.Output)
			if err != nil {
				return fmt.Errorf("failed to save grid: %w", err)
			}

			slog.Debug("grid build finished", "build", manifest.BuildID, "rows", manifest.Rows)
			return writeOutput(ctx, cmd, manifest)
		},
	}
}
