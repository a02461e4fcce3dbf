/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/bpass-gridfit/pkg/label"
	"github.com/NVIDIA/bpass-gridfit/pkg/serializer"
	"github.com/NVIDIA/bpass-gridfit/pkg/target"
)

// Flags are built per command so repeated runs start from their defaults.

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output file path (default: stdout)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatYAML),
		Usage:   "output format (json, yaml, table)",
	}
}

func fixFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "fix",
		Usage: "restrict the grid to a parameter value, as NAME=VALUE (repeatable)",
	}
}

// parseOutputFormat returns the --format value. CSV is refused because
// command output is structured; fit summaries are written as CSV on their own.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	outFormat := serializer.Format(cmd.String("format"))
	if outFormat.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q", outFormat)
	}
	if outFormat == serializer.FormatCSV {
		return "", fmt.Errorf("output format %q is not supported by %s, use one of json, yaml, table", outFormat, cmd.Name)
	}
	return outFormat, nil
}

// SII doublet wavelength pairs accepted by --sii-pair.
const (
	siiPairDefault = "6716"
	siiPairAlt     = "6718"
)

// parseSIIPair returns the doublet rules for the SII pair a catalog uses.
func parseSIIPair(pair string) ([]target.Blend, error) {
	switch strings.TrimSpace(pair) {
	case "", siiPairDefault:
		return []target.Blend{target.OIIBlend, target.SIIBlend}, nil
	case siiPairAlt:
		return []target.Blend{target.OIIBlend, target.SIIBlendAlt}, nil
	default:
		return nil, fmt.Errorf("invalid SII pair %q, expected %s or %s", pair, siiPairDefault, siiPairAlt)
	}
}

// parseMatcher returns the label matcher selected by --matcher and --fold-case.
func parseMatcher(cmd *cli.Command) (label.Matcher, error) {
	m, err := label.ParseMatcher(cmd.String("matcher"))
	if err != nil {
		return nil, err
	}
	if cmd.Bool("fold-case") {
		m = label.FoldCase(m)
	}
	return m, nil
}

// parseFixed turns NAME=VALUE pairs into a parameter restriction.
func parseFixed(values []string) (map[string]float64, error) {
	if len(values) == 0 {
		return nil, nil
	}
	fixed := make(map[string]float64, len(values))
	for _, v := range values {
		k, raw, ok := strings.Cut(v, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid fix %q, expected NAME=VALUE", v)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", k, err)
		}
		fixed[k] = f
	}
	return fixed, nil
}

// writeOutput serializes data in the requested format to --output or stdout.
func writeOutput(ctx context.Context, cmd *cli.Command, data any) error {
	outFormat, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
	defer func() {
		if err := ser.Close(); err != nil {
			slog.Warn("failed to close serializer", "error", err)
		}
	}()

	return ser.Serialize(ctx, data)
}
