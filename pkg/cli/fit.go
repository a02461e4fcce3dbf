/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/bpass-gridfit/pkg/defaults"
	"github.com/NVIDIA/bpass-gridfit/pkg/fit"
	"github.com/NVIDIA/bpass-gridfit/pkg/label"
	"github.com/NVIDIA/bpass-gridfit/pkg/model/bpass"
	"github.com/NVIDIA/bpass-gridfit/pkg/target"
)

// cornerSuffix is appended to the fit basename for saved corner plots.
const cornerSuffix = "_corner.png"

func fitCmd() *cli.Command {
	return &cli.Command{
		Name:                  "fit",
		EnableShellCompletion: true,
		Usage:                 "Fit catalog targets against a canonical grid.",
		Description: `Loads the grid model and the catalog, then fits every requested target in
turn. Each target's line fluxes are read from the catalog, blended doublets
are combined, lines below the SNR threshold are dropped, and the remaining
lines are passed to the external fitter. Summaries are saved to
<results>/<id>/v<version>_<id>_summary.csv and a report is printed.

The fitter command receives a JSON request on stdin and must print a JSON
object with a "summary" map (and optionally a "triangle" plot path) on stdout.

Examples:

  gridfit fit --catalog cat.csv --id 12 --fitter-cmd "python pifit_bridge.py"
  gridfit fit --grid BPASS_grid.fits --catalog cat.csv --id 12 --id 13 \
    --line OIII_5007 --line HBETA --model-line OIII5007 --model-line HB --snr 5`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "grid",
				Aliases: []string{"g"},
				Usage:   fmt.Sprintf("canonical grid file (default: ./%s)", defaults.GridFileName),
				Sources: cli.EnvVars("GRIDFIT_GRID"),
			},
			&cli.StringFlag{
				Name:     "catalog",
				Usage:    "CSV catalog with an ID column and one flux and error column per line",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "id",
				Usage: "target to fit (repeatable, default: every catalog row)",
			},
			&cli.StringSliceFlag{
				Name:  "line",
				Usage: "catalog line label to fit (repeatable, default: every flux column)",
			},
			&cli.StringSliceFlag{
				Name:  "model-line",
				Usage: "grid line paired with each --line, in order (default: matched by name)",
			},
			fixFlag(),
			&cli.FloatFlag{
				Name:  "snr",
				Value: defaults.SNRThreshold,
				Usage: "minimum signal-to-noise ratio of a fitted line",
			},
			&cli.IntFlag{
				Name:  "fit-version",
				Value: defaults.FitVersion,
				Usage: "fit version recorded in output file names",
			},
			&cli.StringFlag{
				Name:  "results",
				Value: defaults.ResultsDir,
				Usage: "directory receiving per-target results",
			},
			&cli.StringFlag{
				Name:     "fitter-cmd",
				Usage:    "external fitter command line",
				Required: true,
				Sources:  cli.EnvVars("GRIDFIT_FITTER_CMD"),
			},
			&cli.StringFlag{
				Name:  "matcher",
				Value: label.MatcherSequence,
				Usage: fmt.Sprintf("label similarity strategy (%s)", strings.Join(label.MatcherNames(), ", ")),
			},
			&cli.BoolFlag{
				Name:  "fold-case",
				Usage: "ignore letter case when matching line labels",
			},
			&cli.StringFlag{
				Name:  "sii-pair",
				Value: siiPairDefault,
				Usage: fmt.Sprintf("catalog columns summed for the SII doublet: %s (s2_6716 + s2_6731) or %s (s2_6718 + s2_6733)", siiPairDefault, siiPairAlt),
			},
			&cli.BoolFlag{
				Name:  "recalculate",
				Usage: "derive solar mass fractions from the reference abundance table next to the grid",
			},
			&cli.BoolFlag{
				Name:  "corner",
				Usage: "save the corner plot of every fit next to its summary",
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

			matcher, err := parseMatcher(cmd)
			if err != nil {
				return err
			}

			blends, err := parseSIIPair(cmd.String("sii-pair"))
			if err != nil {
				return err
			}

			fitter, err := fit.NewExecFitter(cmd.String("fitter-cmd"))
			if err != nil {
				return err
			}

			lines := cmd.StringSlice("line")
			modelLines := cmd.StringSlice("model-line")
			if len(modelLines) > 0 && len(modelLines) != len(lines) {
				return fmt.Errorf("got %d --model-line values for %d --line values", len(modelLines), len(lines))
			}

			gridOpts := []bpass.Option{
				bpass.WithPath(cmd.String("grid")),
				bpass.WithFixed(fixed),
				bpass.WithRecalculate(cmd.Bool("recalculate")),
			}
			if len(modelLines) > 0 {
				gridOpts = append(gridOpts, bpass.WithLines(modelLines...))
			}
			model, err := bpass.Load(gridOpts...)
			if err != nil {
				return fmt.Errorf("failed to load grid model: %w", err)
			}

			catalog, err := target.LoadCatalog(cmd.String("catalog"))
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}

			ids := cmd.StringSlice("id")
			if len(ids) == 0 {
				ids = catalog.IDs()
			}

			fitOpts := []fit.Option{
				fit.WithFitter(fitter),
				fit.WithOutputDir(cmd.String("results")),
				fit.WithVersion(int(cmd.Int("fit-version"))),
				fit.WithResolver(label.ModelResolver().WithMatcher(matcher)),
			}
			if len(modelLines) > 0 {
				fitOpts = append(fitOpts, fit.WithLines(modelLines...))
			}

			reports := make([]*fit.Report, 0, len(ids))
			for _, id := range ids {
				if err := ctx.Err(); err != nil {
					return fmt.Errorf("fit cancelled: %w", err)
				}

				t, err := target.New(id, catalog, lines,
					target.WithSNR(cmd.Float("snr")),
					target.WithResolver(label.CatalogResolver().WithMatcher(matcher)),
					target.WithBlends(blends...))
				if err != nil {
					return err
				}

				report, err := fitTarget(ctx, t, model, cmd.Bool("corner"), fitOpts...)
				if err != nil {
					return fmt.Errorf("failed to fit target %s: %w", id, err)
				}
				reports = append(reports, report)
			}

			return writeOutput(ctx, cmd, reports)
		},
	}
}

// fitTarget runs one fit and persists its summary. A target with no usable
// line yields a skipped report.
func fitTarget(ctx context.Context, t *target.Target, m *bpass.Grid, corner bool, opts ...fit.Option) (*fit.Report, error) {
	f, err := fit.New(t, m, opts...)
	if err != nil {
		return nil, err
	}

	if _, err := f.Run(ctx); err != nil {
		return nil, err
	}

	path, err := f.Persist()
	if err != nil {
		return nil, err
	}

	if corner && path != "" {
		if err := saveCorner(f); err != nil {
			slog.Warn("failed to save corner plot", "id", t.ID(), "error", err)
		}
	}

	return f.Report(path, version), nil
}

func saveCorner(f *fit.Fit) error {
	path := f.Basename() + cornerSuffix
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create corner plot file: %w", err)
	}
	defer out.Close()

	if err := f.ShowCorner(out); err != nil {
		return err
	}
	slog.Info("corner plot saved", "path", path)
	return nil
}
