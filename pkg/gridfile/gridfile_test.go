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

package gridfile

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
	"github.com/NVIDIA/bpass-gridfit/pkg/header"
	"github.com/NVIDIA/bpass-gridfit/pkg/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(t *testing.T) *table.Frame {
	t.Helper()
	f, err := table.FromColumns(
		[]string{"CO", "LOGU", "ZMET", "LOGZ", "OIII5007", "HA"},
		[][]float64{
			{0.1, 0.38, 0.1},
			{-2, -2, -3.5},
			{0.002, 0.02, 0.02},
			{math.Log10(0.002), math.Log10(0.02), math.Log10(0.02)},
			{1.25e-3, 2.5e38, 1.0 / 3.0},
			{0, 1e-300, 42},
		},
	)
	require.NoError(t, err)
	return f
}

func assertFramesEqual(t *testing.T, want, got *table.Frame) {
	t.Helper()
	require.Equal(t, want.Names(), got.Names())
	require.Equal(t, want.Len(), got.Len())
	for _, n := range want.Names() {
		w, _ := want.Column(n)
		g, _ := got.Column(n)
		assert.Equal(t, w, g, n)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"BPASS_grid.fits", FormatFITS},
		{"grid.FIT", FormatFITS},
		{"grid.fts", FormatFITS},
		{"grid.csv", FormatCSV},
		{"grid", FormatFITS},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFromPath(tt.path))
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	for _, name := range []string{"grid.fits", "grid.csv"} {
		t.Run(name, func(t *testing.T) {
			want := testFrame(t)
			path := filepath.Join(t.TempDir(), name)

			m, err := Write(path, want,
				WithSource("raw.h5"),
				WithVersion("v1.0.0"),
				WithAxes(map[string][]float64{"Z": {0.002, 0.02}}))
			require.NoError(t, err)
			assert.Equal(t, header.KindModelGrid, m.Kind)
			assert.Equal(t, "v1.0.0", m.Metadata["version"])
			assert.NotEmpty(t, m.BuildID)
			assert.Len(t, m.Checksum, 64)

			got, manifest, err := Read(path)
			require.NoError(t, err)
			require.NotNil(t, manifest)
			assert.Equal(t, m.BuildID, manifest.BuildID)
			assert.Equal(t, "raw.h5", manifest.Source)
			assert.Equal(t, FormatFromPath(path), manifest.Format)
			assert.Equal(t, []float64{0.002, 0.02}, manifest.Axes["Z"])
			assertFramesEqual(t, want, got)
		})
	}
}

func TestWriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0600))

	_, err := Write(path, testFrame(t))
	require.NoError(t, err)

	got, _, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())
}

func TestReadWithoutManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.fits")
	_, err := Write(path, testFrame(t))
	require.NoError(t, err)
	require.NoError(t, os.Remove(ManifestPath(path)))

	got, m, err := Read(path)
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Equal(t, 3, got.Len())
}

func TestReadChecksumMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.csv")
	_, err := Write(path, testFrame(t))
	require.NoError(t, err)

	// replace the grid behind the manifest's back
	other, err := table.FromColumns([]string{"CO"}, [][]float64{{0.5}})
	require.NoError(t, err)
	require.NoError(t, encodeToPath(path, other))

	_, _, err = Read(path)
	require.Error(t, err)
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest))
}

func encodeToPath(path string, f *table.Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return encodeCSV(file, f)
}

func TestReadMissing(t *testing.T) {
	_, _, err := Read(filepath.Join(t.TempDir(), "missing.fits"))
	require.Error(t, err)
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeNotFound))
}

func TestReadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.csv")
	require.NoError(t, os.WriteFile(path, []byte("CO,HA\n0.1,abc\n"), 0600))

	_, _, err := Read(path)
	require.Error(t, err)
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest))
}

func TestWriteUnwritable(t *testing.T) {
	_, err := Write(filepath.Join(t.TempDir(), "no", "such", "grid.fits"), testFrame(t))
	require.Error(t, err)
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeIO))

	_, err = Write(filepath.Join(t.TempDir(), "grid.fits"), nil)
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest))
}
