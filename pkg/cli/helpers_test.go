/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/bpass-gridfit/pkg/label"
	"github.com/NVIDIA/bpass-gridfit/pkg/serializer"
	"github.com/NVIDIA/bpass-gridfit/pkg/target"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		want    serializer.Format
		wantErr bool
	}{
		{name: "yaml", format: "yaml", want: serializer.FormatYAML},
		{name: "json", format: "json", want: serializer.FormatJSON},
		{name: "table", format: "table", want: serializer.FormatTable},
		{name: "unknown", format: "xml", wantErr: true},
		{name: "csv", format: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got serializer.Format
			var gotErr error
			cmd := &cli.Command{
				Name: "test",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: tt.format},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					got, gotErr = parseOutputFormat(cmd)
					return nil
				},
			}
			if err := cmd.Run(context.Background(), []string{"test"}); err != nil {
				t.Fatalf("command failed: %v", err)
			}
			if tt.wantErr {
				if gotErr == nil {
					t.Errorf("expected error for format %q", tt.format)
				}
				return
			}
			if gotErr != nil {
				t.Fatalf("unexpected error: %v", gotErr)
			}
			if got != tt.want {
				t.Errorf("parseOutputFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseFixed(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    map[string]float64
		wantErr bool
	}{
		{name: "none", values: nil, want: nil},
		{name: "single", values: []string{"CO=0.38"}, want: map[string]float64{"CO": 0.38}},
		{name: "spaces", values: []string{" LOGU = -2.5 "}, want: map[string]float64{"LOGU": -2.5}},
		{name: "multiple", values: []string{"CO=1", "NH=2"}, want: map[string]float64{"CO": 1, "NH": 2}},
		{name: "missing separator", values: []string{"CO"}, wantErr: true},
		{name: "missing name", values: []string{"=1"}, wantErr: true},
		{name: "bad value", values: []string{"CO=abc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFixed(tt.values)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %v", tt.values)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseFixed() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("parseFixed()[%s] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestParseSIIPair(t *testing.T) {
	tests := []struct {
		pair    string
		want    []target.Blend
		wantErr bool
	}{
		{pair: "", want: []target.Blend{target.OIIBlend, target.SIIBlend}},
		{pair: "6716", want: []target.Blend{target.OIIBlend, target.SIIBlend}},
		{pair: "6718", want: []target.Blend{target.OIIBlend, target.SIIBlendAlt}},
		{pair: "6731", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.pair, func(t *testing.T) {
			got, err := parseSIIPair(tt.pair)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for pair %q", tt.pair)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseSIIPair(%q) = %v, want %v", tt.pair, got, tt.want)
			}
		})
	}
}

func TestParseMatcher(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		candidate string
		requested string
		want      float64
		wantErr   bool
	}{
		{name: "default", args: nil, candidate: "HA", requested: "ha", want: 0},
		{name: "fold case", args: []string{"--fold-case"}, candidate: "HA", requested: "ha", want: 1},
		{name: "levenshtein", args: []string{"--matcher", "levenshtein"}, candidate: "HBETA", requested: "HBET", want: 0.8},
		{name: "unknown", args: []string{"--matcher", "soundex"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got label.Matcher
			var gotErr error
			cmd := &cli.Command{
				Name: "test",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "matcher"},
					&cli.BoolFlag{Name: "fold-case"},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					got, gotErr = parseMatcher(cmd)
					return nil
				},
			}
			if err := cmd.Run(context.Background(), append([]string{"test"}, tt.args...)); err != nil {
				t.Fatalf("command failed: %v", err)
			}
			if tt.wantErr {
				if gotErr == nil {
					t.Error("expected error")
				}
				return
			}
			if gotErr != nil {
				t.Fatalf("unexpected error: %v", gotErr)
			}
			if score := got.Score(tt.candidate, tt.requested); math.Abs(score-tt.want) > 1e-12 {
				t.Errorf("Score(%q, %q) = %v, want %v", tt.candidate, tt.requested, score, tt.want)
			}
		})
	}
}
