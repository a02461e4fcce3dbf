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
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/NVIDIA/bpass-gridfit/pkg/defaults"
	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
	"github.com/NVIDIA/bpass-gridfit/pkg/gridfile"
	"github.com/NVIDIA/bpass-gridfit/pkg/model"
	"github.com/NVIDIA/bpass-gridfit/pkg/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ model.Model = (*Grid)(nil)

func writeGrid(t *testing.T, dir, name string) (string, *table.Frame) {
	t.Helper()
	f, err := table.FromColumns(
		[]string{"CO", "LOGU", "XI", "NH", "ZMET", "LOGZ", "OIII4959", "OIII5007", "HB", "HA", "OII3727", "SII6716"},
		[][]float64{
			{0.1, 0.38, 0.38},
			{-2, -2, -3},
			{0.3, 0.3, 0.3},
			{2, 2, 2},
			{0.002, 0.02, 0.02},
			{math.Log10(0.002), math.Log10(0.02), math.Log10(0.02)},
			{1, 2, 3},
			{3, 6, 9},
			{1, 1, 1},
			{2.86, 2.86, 2.86},
			{4, 5, 6},
			{0.5, 0.6, 0.7},
		},
	)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	_, err = gridfile.Write(path, f)
	require.NoError(t, err)
	return path, f
}

func TestLoadRoundTrip(t *testing.T) {
	path, want := writeGrid(t, t.TempDir(), "grid.fits")

	g, err := Load(WithPath(path))
	require.NoError(t, err)
	assert.Equal(t, DefaultName, g.Name())
	assert.Equal(t, path, g.Path())
	assert.Equal(t, filepath.Dir(path), g.Root())
	assert.NotNil(t, g.Manifest())

	assert.Equal(t, append(append([]string{}, DefaultParameters...), ParameterLogZSun), g.Parameters())
	assert.Equal(t, DefaultLines, g.Lines())
	assert.Equal(t, 3, g.Len())

	for _, n := range DefaultParameters {
		w, _ := want.Column(n)
		got, ok := g.Parameter(n)
		require.True(t, ok, n)
		assert.InDeltaSlice(t, w, got, 1e-12, n)
	}
	for _, n := range DefaultLines {
		w, _ := want.Column(n)
		got, ok := g.Prediction(n)
		require.True(t, ok, n)
		assert.InDeltaSlice(t, w, got, 1e-12, n)
		assert.True(t, g.Scaled(n))
	}

	assert.Equal(t, defaults.SolarZ, g.ZSun())
	rel, _ := g.Parameter(ParameterLogZSun)
	assert.InDelta(t, math.Log10(0.02/defaults.SolarZ), rel[1], 1e-12)
	assert.InDelta(t, math.Log10(defaults.SolarZ), g.LogZSun(), 1e-12)
	assert.Equal(t, defaults.SolarX, g.Abundances().X)
}

func TestLoadDefaultPath(t *testing.T) {
	dir := t.TempDir()
	writeGrid(t, dir, defaults.GridFileName)
	chdir(t, dir)

	g, err := Load()
	require.NoError(t, err)
	assert.Equal(t, defaults.GridFileName, filepath.Base(g.Path()))
}

func TestLoadMissingGrid(t *testing.T) {
	_, err := Load(WithPath(filepath.Join(t.TempDir(), "nope.fits")))
	require.Error(t, err)
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeNotFound))
	assert.Contains(t, err.Error(), "Please provide a valid path")

	chdir(t, t.TempDir())
	_, err = Load()
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeNotFound))
}

func TestLoadUnknownColumns(t *testing.T) {
	path, _ := writeGrid(t, t.TempDir(), "grid.csv")

	_, err := Load(WithPath(path), WithLines("HA", "NeIII3869"))
	require.Error(t, err)
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeNotFound))
	assert.Contains(t, err.Error(), "NeIII3869")

	_, err = Load(WithPath(path), WithParameters("CO", "AGE"))
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeNotFound))
}

func TestLoadCustomColumns(t *testing.T) {
	path, _ := writeGrid(t, t.TempDir(), "grid.csv")

	g, err := Load(WithPath(path), WithName("bpass-sii"), WithParameters("LOGU", "LOGZ"), WithLines("SII6716"))
	require.NoError(t, err)
	assert.Equal(t, "bpass-sii", g.Name())
	assert.Equal(t, []string{"LOGU", "LOGZ", ParameterLogZSun}, g.Parameters())
	assert.Equal(t, []string{"SII6716"}, g.Lines())
}

func TestRestrict(t *testing.T) {
	path, _ := writeGrid(t, t.TempDir(), "grid.fits")

	g, err := Load(WithPath(path), WithFixed(map[string]float64{"CO": 0.38}))
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())

	require.NoError(t, g.Restrict(map[string]float64{"LOGU": -3}))
	assert.Equal(t, 1, g.Len())
	ha, _ := g.Prediction("OII3727")
	assert.Equal(t, []float64{6}, ha)

	// absent value empties the grid without failing
	require.NoError(t, g.Restrict(map[string]float64{"XI": 0.9}))
	assert.Equal(t, 0, g.Len())
}

func TestLoadRecalculate(t *testing.T) {
	dir := t.TempDir()
	path, _ := writeGrid(t, dir, "grid.fits")

	_, err := Load(WithPath(path), WithRecalculate(true))
	require.Error(t, err)
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeNotFound))

	abun := "element abundance\nH 1.0\nHe 0.1\nO 4.9e-4\nC 2.7e-4\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, defaults.AbundanceFileName), []byte(abun), 0600))

	g, err := Load(WithPath(path), WithRecalculate(true))
	require.NoError(t, err)
	a := g.Abundances()
	assert.InDelta(t, 1.0, a.X+a.Y+a.Z, 1e-9)
	assert.NotEqual(t, defaults.SolarZ, g.ZSun())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
