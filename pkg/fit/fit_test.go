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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
	"github.com/NVIDIA/bpass-gridfit/pkg/header"
	"github.com/NVIDIA/bpass-gridfit/pkg/model"
	"github.com/NVIDIA/bpass-gridfit/pkg/target"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResult struct {
	summary map[string]float64
}

func (r fakeResult) SummarisedResults() (map[string]float64, error) {
	return r.summary, nil
}

func (r fakeResult) ShowTriangle(w io.Writer) error {
	_, err := io.WriteString(w, "corner")
	return err
}

type fakeFitter struct {
	requests []Request
	err      error
}

func (f *fakeFitter) Fit(_ context.Context, req Request) (Result, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return fakeResult{summary: map[string]float64{"LOGU_mean": -2.5, "CO_mean": 0.38}}, nil
}

func testModel(t *testing.T) *model.Registry {
	t.Helper()
	m := model.NewRegistry("bpass")
	require.NoError(t, m.AddParameter("LOGU", []float64{-3, -2}))
	for _, l := range []string{"OIII5007", "HB", "HA", "OII3727"} {
		require.NoError(t, m.AddPredicted(l, []float64{1, 2}, true))
	}
	return m
}

// testTarget has HA at SNR 10, HB at SNR 3 (not usable) and OII at SNR 9.01/3.
func testTarget(t *testing.T, lines []string) *target.Target {
	t.Helper()
	c, err := target.NewCatalog([]string{"12"},
		[]string{"HA", "HA_err_new", "HB", "HB_err_new", "OII", "OII_err_new"},
		[][]float64{{10}, {1}, {9}, {3}, {9.01}, {3}})
	require.NoError(t, err)
	tg, err := target.New("12", c, lines)
	require.NoError(t, err)
	return tg
}

func TestNewValidation(t *testing.T) {
	tg := testTarget(t, []string{"HA"})
	m := testModel(t)

	_, err := New(nil, m, WithFitter(&fakeFitter{}))
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest))

	_, err = New(tg, m)
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest))

	_, err = New(tg, m, WithFitter(&fakeFitter{}), WithLines("HA", "HB"))
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest))

	f, err := New(tg, m, WithFitter(&fakeFitter{}))
	require.NoError(t, err)
	assert.NotEmpty(t, f.RunID())
	assert.Equal(t, filepath.Join("results", "12", "v1_12"), f.Basename())
}

func TestTranslateLineLabels(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		want    []string
		wantErr bool
	}{
		{"exact", []string{"HA", "HB", "OII3727"}, []string{"HA", "HB", "OII3727"}, false},
		{"fuzzy", []string{"H_A", "HB", "OII_3727"}, []string{"HA", "HB", "OII3727"}, false},
		{"unresolvable", []string{"HA", "HB", "XYZ_9999"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// the target requests its three catalog columns
			f, err := New(testTarget(t, nil), testModel(t), WithFitter(&fakeFitter{}), WithLines(tt.lines...))
			require.NoError(t, err)

			err = f.TranslateLineLabels()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeNotFound))
				assert.Contains(t, err.Error(), "XYZ_9999")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Lines())
		})
	}
}

func TestRunAndPersist(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	fitter := &fakeFitter{}
	tg := testTarget(t, []string{"HA", "HB", "OII"})

	f, err := New(tg, testModel(t),
		WithFitter(fitter),
		WithLines("HA", "HB", "OII3727"),
		WithOutputDir(dir),
		WithVersion(2))
	require.NoError(t, err)

	summary, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -2.5, summary["LOGU_mean"])
	assert.Equal(t, target.StateFiltered, tg.State())

	require.Len(t, fitter.requests, 1)
	req := fitter.requests[0]
	assert.Equal(t, []string{"HA", "OII3727"}, req.Lines)
	assert.Equal(t, []float64{10, 9.01}, req.Fluxes)
	assert.Equal(t, []float64{1, 3}, req.Errors)
	assert.False(t, req.FitDust)
	assert.Equal(t, filepath.Join(dir, "12", "v2_12"), req.Basename)
	assert.Equal(t, []string{"HA", "OII3727"}, f.FittedLines())

	path, err := f.Persist()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "12", "v2_12_summary.csv"), path)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"CO_mean", "LOGU_mean", "id", "version", "lines", "snr", "flux", "error"}, records[0])
	assert.Equal(t, []string{"0.38", "-2.5", "12", "2", "HA,OII3727", "3", "[10, 9.01]", "[1, 3]"}, records[1])

	var buf bytes.Buffer
	require.NoError(t, f.ShowCorner(&buf))
	assert.Equal(t, "corner", buf.String())

	report := f.Report(path, "v0.1.0")
	assert.Equal(t, header.KindFitSummary, report.Kind)
	assert.False(t, report.Skipped)
	assert.Equal(t, "bpass", report.Model)
	assert.Equal(t, path, report.Path)
}

func TestPersistedVectorsMatchFittedLines(t *testing.T) {
	dir := t.TempDir()
	tg := testTarget(t, []string{"HA", "HB"})
	f, err := New(tg, testModel(t), WithFitter(&fakeFitter{}), WithOutputDir(dir))
	require.NoError(t, err)

	_, err = f.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 9}, tg.Flux(), "target keeps every requested line")

	path, err := f.Persist()
	require.NoError(t, err)
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	row := make(map[string]string, len(records[0]))
	for i, h := range records[0] {
		row[h] = records[1][i]
	}
	assert.Equal(t, "HA", row["lines"])
	assert.Equal(t, "[10]", row["flux"])
	assert.Equal(t, "[1]", row["error"])
}

func TestPathID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{id: "12", want: "12"},
		{id: "12.0", want: "12"},
		{id: "1e3", want: "1000"},
		{id: "12.5", want: "12.5"},
		{id: "NaN", want: "NaN"},
		{id: "J0123-45", want: "J0123-45"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, pathID(tt.id))
		})
	}
}

func TestBasenameIntegralFloatID(t *testing.T) {
	c, err := target.NewCatalog([]string{"12.0"},
		[]string{"HA", "HA_err_new"},
		[][]float64{{10}, {1}})
	require.NoError(t, err)
	tg, err := target.New("12.0", c, []string{"HA"})
	require.NoError(t, err)

	f, err := New(tg, testModel(t), WithFitter(&fakeFitter{}), WithOutputDir("results"), WithVersion(1))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("results", "12", "v1_12"), f.Basename())
	assert.Equal(t, filepath.Join("results", "12", "v1_12_summary.csv"), f.SummaryPath())
}

func TestRunNothingToFit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	fitter := &fakeFitter{}
	tg := testTarget(t, []string{"HB"})

	f, err := New(tg, testModel(t), WithFitter(fitter), WithOutputDir(dir))
	require.NoError(t, err)

	summary, err := f.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, summary)
	assert.Empty(t, fitter.requests)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "results directory must not be created")

	path, err := f.Persist()
	require.NoError(t, err)
	assert.Empty(t, path)
	require.NoError(t, f.ShowCorner(io.Discard))
	assert.True(t, f.Report("", "").Skipped)
}

func TestRunFitterError(t *testing.T) {
	fitter := &fakeFitter{err: fmt.Errorf("sampler crashed")}
	f, err := New(testTarget(t, []string{"HA"}), testModel(t),
		WithFitter(fitter), WithOutputDir(t.TempDir()))
	require.NoError(t, err)

	_, err = f.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, f.Summary())
}

func TestRunUnknownModelLine(t *testing.T) {
	f, err := New(testTarget(t, []string{"HA"}), testModel(t),
		WithFitter(&fakeFitter{}), WithLines("XYZ_9999"), WithOutputDir(t.TempDir()))
	require.NoError(t, err)

	_, err = f.Run(context.Background())
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeNotFound))
}

func TestFormatList(t *testing.T) {
	assert.Equal(t, "[]", formatList(nil))
	assert.Equal(t, "[1.5]", formatList([]float64{1.5}))
	assert.Equal(t, "[1e-20, 3]", formatList([]float64{1e-20, 3}))
}

// TestHelperProcess is not a real test. It stands in for the external
// fitter when ExecFitter runs the test binary.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	var req execRequest
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if os.Getenv("HELPER_FAIL") == "1" {
		fmt.Fprintln(os.Stderr, "sampler failed")
		os.Exit(1)
	}

	triangle := req.Basename + "_corner.txt"
	if err := os.WriteFile(triangle, []byte("plot:"+req.Model), 0600); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	resp := execResponse{
		Summary: map[string]float64{
			"nlines":  float64(len(req.Lines)),
			"flux0":   req.Fluxes[0],
			"dflux0":  req.Errors[0],
			"nparams": float64(len(req.Parameters)),
		},
		Triangle: triangle,
	}
	_ = json.NewEncoder(os.Stdout).Encode(resp)
}

func helperFitter(env ...string) *ExecFitter {
	return &ExecFitter{
		Command: os.Args[0],
		Args:    []string{"-test.run=TestHelperProcess", "--"},
		Env:     append([]string{"GO_WANT_HELPER_PROCESS=1"}, env...),
	}
}

func TestExecFitter(t *testing.T) {
	dir := t.TempDir()
	req := Request{
		Model:    testModel(t),
		Lines:    []string{"HA", "HB"},
		Fluxes:   []float64{10, 4},
		Errors:   []float64{1, 0.5},
		Basename: filepath.Join(dir, "v1_12"),
	}

	res, err := helperFitter().Fit(context.Background(), req)
	require.NoError(t, err)

	summary, err := res.SummarisedResults()
	require.NoError(t, err)
	assert.Equal(t, 2.0, summary["nlines"])
	assert.Equal(t, 10.0, summary["flux0"])
	assert.Equal(t, 1.0, summary["dflux0"])
	assert.Equal(t, 1.0, summary["nparams"])

	var buf bytes.Buffer
	require.NoError(t, res.ShowTriangle(&buf))
	assert.Equal(t, "plot:bpass", buf.String())
}

func TestExecFitterFailure(t *testing.T) {
	req := Request{
		Lines:    []string{"HA"},
		Fluxes:   []float64{10},
		Errors:   []float64{1},
		Basename: filepath.Join(t.TempDir(), "v1_12"),
	}
	_, err := helperFitter("HELPER_FAIL=1").Fit(context.Background(), req)
	require.Error(t, err)
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInternal))
}

func TestNewExecFitter(t *testing.T) {
	f, err := NewExecFitter("python3  pifit_bridge.py --live 400")
	require.NoError(t, err)
	assert.Equal(t, "python3", f.Command)
	assert.Equal(t, []string{"pifit_bridge.py", "--live", "400"}, f.Args)

	_, err = NewExecFitter("   ")
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest))
}
