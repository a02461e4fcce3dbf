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

package hdf5source

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
	"github.com/NVIDIA/bpass-gridfit/pkg/grid"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/hdf5"
)

// Source implements grid.SliceSource over an HDF5 file.
type Source struct {
	path string
}

var _ grid.SliceSource = (*Source)(nil)

// New returns a Source for the archive at path. The file must exist.
func New(path string) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound,
			"grid archive not found", err, map[string]any{"path": path})
	}
	return &Source{path: path}, nil
}

// Path returns the archive path.
func (s *Source) Path() string {
	return s.path
}

// Slice reads the first dataset of the group addressed by key.
func (s *Source) Slice(ctx context.Context, key grid.SliceKey) (*grid.RawSlice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := hdf5.OpenFile(s.path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to open grid archive", err, map[string]any{"path": s.path})
	}
	defer closeLogged("file", f.Close)

	path := key.Path()
	g, err := f.OpenGroup(path)
	if err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound,
			fmt.Sprintf("slice %s not found", path), err, map[string]any{"archive": s.path, "path": path})
	}
	defer closeLogged("group", g.Close)

	n, err := g.NumObjects()
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to list slice group", err)
	}
	if n == 0 {
		return nil, cnserrors.NewWithContext(cnserrors.ErrCodeNotFound,
			fmt.Sprintf("slice %s holds no dataset", path), map[string]any{"archive": s.path, "path": path})
	}
	name, err := g.ObjectNameByIndex(0)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to read dataset name", err)
	}

	data, err := readMatrix(g, name)
	if err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to read slice dataset", err, map[string]any{"path": path, "dataset": name})
	}

	slog.Debug("read grid slice", "path", path, "dataset", name)
	return &grid.RawSlice{Name: name, Data: data}, nil
}

func readMatrix(g *hdf5.Group, name string) (*mat.Dense, error) {
	ds, err := g.OpenDataset(name)
	if err != nil {
		return nil, err
	}
	defer closeLogged("dataset", ds.Close)

	space := ds.Space()
	defer closeLogged("dataspace", space.Close)

	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, err
	}

	var rows, cols int
	switch len(dims) {
	case 1:
		rows, cols = 1, int(dims[0])
	case 2:
		rows, cols = int(dims[0]), int(dims[1])
	default:
		return nil, fmt.Errorf("dataset has rank %d, want 1 or 2", len(dims))
	}
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	values := make([]float64, rows*cols)
	if err := ds.Read(&values); err != nil {
		return nil, err
	}
	return mat.NewDense(rows, cols, values), nil
}

func closeLogged(what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		slog.Warn("failed to close hdf5 object", "object", what, "error", err)
	}
}
