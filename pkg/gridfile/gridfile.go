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
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/bpass-gridfit/pkg/checksum"
	"github.com/NVIDIA/bpass-gridfit/pkg/defaults"
	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
	"github.com/NVIDIA/bpass-gridfit/pkg/header"
	"github.com/NVIDIA/bpass-gridfit/pkg/serializer"
	"github.com/NVIDIA/bpass-gridfit/pkg/table"

	"github.com/google/uuid"
)

// Format is the on-disk encoding of a grid.
type Format string

const (
	FormatFITS Format = "fits"
	FormatCSV  Format = "csv"
)

// FormatFromPath selects the codec for path by extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".fits", ".fit", ".fts":
		return FormatFITS
	default:
		slog.Debug("unknown grid extension, using FITS", "path", path)
		return FormatFITS
	}
}

// ManifestPath returns the manifest path of the grid at path.
func ManifestPath(path string) string {
	return path + defaults.ManifestSuffix
}

// Manifest describes a written grid.
type Manifest struct {
	header.Header `json:",inline" yaml:",inline"`

	// BuildID identifies the build that wrote the grid.
	BuildID string `json:"buildID" yaml:"buildID"`

	// Source is the raw archive the grid was built from.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	Format  Format   `json:"format" yaml:"format"`
	Rows    int      `json:"rows" yaml:"rows"`
	Columns []string `json:"columns" yaml:"columns"`

	// Axes are the sampled values the grid was built from, keyed by axis name.
	Axes map[string][]float64 `json:"axes,omitempty" yaml:"axes,omitempty"`

	// Checksum is the hex SHA256 of the grid file.
	Checksum string `json:"checksum" yaml:"checksum"`
}

// Option sets manifest fields on Write.
type Option func(*Manifest)

// WithSource records the raw archive path.
func WithSource(source string) Option {
	return func(m *Manifest) {
		m.Source = source
	}
}

// WithAxes records the sampled axis values.
func WithAxes(axes map[string][]float64) Option {
	return func(m *Manifest) {
		m.Axes = axes
	}
}

// WithVersion records the tool version in the manifest header.
func WithVersion(version string) Option {
	return func(m *Manifest) {
		if version != "" {
			m.Metadata["version"] = version
		}
	}
}

// Write encodes f to path, replacing any existing file, then writes the
// manifest. Failure to create either file is an ErrCodeIO error.
func Write(path string, f *table.Frame, opts ...Option) (*Manifest, error) {
	if f == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "grid table is required")
	}

	format := FormatFromPath(path)
	if err := writeTable(path, format, f); err != nil {
		return nil, err
	}

	sum, err := checksum.File(path)
	if err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeIO, "failed to checksum grid", err,
			map[string]any{"path": path})
	}

	m := &Manifest{
		BuildID:  uuid.NewString(),
		Format:   format,
		Rows:     f.Len(),
		Columns:  f.Names(),
		Checksum: sum,
	}
	m.Init(header.KindModelGrid, header.APIVersion, "")
	for _, opt := range opts {
		opt(m)
	}

	if err := writeManifest(ManifestPath(path), m); err != nil {
		return nil, err
	}

	slog.Debug("grid written", "path", path, "format", format, "rows", m.Rows, "checksum", sum)
	return m, nil
}

func writeTable(path string, format Format, f *table.Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeIO, "failed to create grid file", err,
			map[string]any{"path": path})
	}

	switch format {
	case FormatCSV:
		err = encodeCSV(file, f)
	default:
		err = encodeFITS(file, f)
	}
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeIO, "failed to write grid file", err,
			map[string]any{"path": path, "format": string(format)})
	}
	return nil
}

func writeManifest(path string, m *Manifest) error {
	w, err := serializer.NewFileWriter(serializer.FormatYAML, path)
	if err != nil {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeIO, "failed to create grid manifest", err,
			map[string]any{"path": path})
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			slog.Warn("failed to close grid manifest", "path", path, "error", closeErr)
		}
	}()

	if err := w.Serialize(context.Background(), m); err != nil {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeIO, "failed to write grid manifest", err,
			map[string]any{"path": path})
	}
	return nil
}

// ReadManifest reads the manifest of the grid at path.
func ReadManifest(path string) (*Manifest, error) {
	m, err := serializer.FromFile[Manifest](ManifestPath(path))
	if err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"failed to read grid manifest", err, map[string]any{"path": path})
	}
	if err := m.Validate(header.KindModelGrid); err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"invalid grid manifest", err, map[string]any{"path": path})
	}
	return m, nil
}

// Read decodes the grid at path. When a manifest is present the grid is
// verified against its checksum, row count and columns, and the manifest
// is returned; otherwise the returned manifest is nil.
func Read(path string) (*table.Frame, *Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound,
				"grid file not found", err, map[string]any{"path": path})
		}
		return nil, nil, cnserrors.WrapWithContext(cnserrors.ErrCodeIO,
			"failed to open grid file", err, map[string]any{"path": path})
	}
	defer file.Close()

	format := FormatFromPath(path)
	var f *table.Frame
	switch format {
	case FormatCSV:
		f, err = decodeCSV(file)
	default:
		f, err = decodeFITS(file)
	}
	if err != nil {
		return nil, nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"failed to decode grid file", err, map[string]any{"path": path, "format": string(format)})
	}

	if _, statErr := os.Stat(ManifestPath(path)); statErr != nil {
		slog.Debug("grid has no manifest", "path", path)
		return f, nil, nil
	}

	m, err := ReadManifest(path)
	if err != nil {
		return nil, nil, err
	}
	if err := verify(path, f, m); err != nil {
		return nil, nil, err
	}
	return f, m, nil
}

func verify(path string, f *table.Frame, m *Manifest) error {
	if err := checksum.Verify(path, m.Checksum); err != nil {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"grid does not match its manifest", err, map[string]any{"path": path, "build": m.BuildID})
	}
	if f.Len() != m.Rows {
		return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("grid has %d rows, manifest records %d", f.Len(), m.Rows),
			map[string]any{"path": path, "build": m.BuildID})
	}
	names := f.Names()
	if len(names) != len(m.Columns) {
		return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("grid has %d columns, manifest records %d", len(names), len(m.Columns)),
			map[string]any{"path": path, "build": m.BuildID})
	}
	for i, n := range names {
		if n != m.Columns[i] {
			return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
				fmt.Sprintf("grid column %d is %q, manifest records %q", i, n, m.Columns[i]),
				map[string]any{"path": path, "build": m.BuildID})
		}
	}
	return nil
}
