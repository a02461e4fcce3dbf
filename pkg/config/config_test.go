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

package config

import (
	"os"
	"path/filepath"
	"testing"

	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
)

func validConfig() *GridConfig {
	return &GridConfig{
		Archive: "grid.h5",
		Axes: Axes{
			Z:   []float64{0.001, 0.02},
			CO:  []float64{0.38},
			U:   []float64{-2.0},
			Xsi: []float64{0.3},
			NH:  []float64{2.0},
			Age: []float64{1e6, 2e6},
		},
		Columns: []string{"Z", "n_H", "ha", "hb"},
	}
}

func TestGridConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GridConfig)
		wantErr bool
	}{
		{
			name:   "valid config",
			mutate: func(*GridConfig) {},
		},
		{
			name:    "missing archive",
			mutate:  func(c *GridConfig) { c.Archive = "" },
			wantErr: true,
		},
		{
			name:    "empty age axis",
			mutate:  func(c *GridConfig) { c.Axes.Age = nil },
			wantErr: true,
		},
		{
			name:    "duplicate CO values",
			mutate:  func(c *GridConfig) { c.Axes.CO = []float64{0.38, 0.38} },
			wantErr: true,
		},
		{
			name:    "non-positive metallicity",
			mutate:  func(c *GridConfig) { c.Axes.Z = []float64{0, 0.02} },
			wantErr: true,
		},
		{
			name:    "missing density column",
			mutate:  func(c *GridConfig) { c.Columns = []string{"Z", "ha"} },
			wantErr: true,
		},
		{
			name:    "missing metallicity column",
			mutate:  func(c *GridConfig) { c.Columns = []string{"n_H", "ha"} },
			wantErr: true,
		},
		{
			name:    "duplicate column",
			mutate:  func(c *GridConfig) { c.Columns = []string{"Z", "n_H", "ha", "ha"} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest) {
				t.Errorf("Validate() error code = %v, want %s", err, cnserrors.ErrCodeInvalidRequest)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grid.yaml")
	content := `archive: /data/raw.h5
output: out.fits
axes:
  Z: [0.001, 0.02]
  CO: [0.1, 0.38]
  U: [-3.0, -2.0]
  xsi: [0.3]
  nH: [2.0]
  age: [1.0e6, 3.0e6]
columns: [Z, n_H, ha, hb, s2_6716_6731]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path, WithOutput("override.fits"), WithArchive(""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Archive != "/data/raw.h5" {
		t.Errorf("Archive = %q, empty override must keep loaded value", c.Archive)
	}
	if c.Output != "override.fits" {
		t.Errorf("Output = %q, want override.fits", c.Output)
	}
	if len(c.Axes.CO) != 2 || c.Axes.CO[1] != 0.38 {
		t.Errorf("Axes.CO = %v", c.Axes.CO)
	}
	if len(c.Axes.Age) != 2 || c.Axes.Age[1] != 3e6 {
		t.Errorf("Axes.Age = %v", c.Axes.Age)
	}
	if len(c.Columns) != 5 {
		t.Errorf("Columns = %v", c.Columns)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	if !cnserrors.IsCode(err, cnserrors.ErrCodeNotFound) {
		t.Errorf("missing file error = %v, want NOT_FOUND", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("axes: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err = Load(bad)
	if !cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest) {
		t.Errorf("malformed file error = %v, want INVALID_REQUEST", err)
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("archive: x.h5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err = Load(invalid)
	if !cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest) {
		t.Errorf("invalid config error = %v, want INVALID_REQUEST", err)
	}
}
