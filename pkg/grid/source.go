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

package grid

import (
	"context"
	"fmt"

	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// RawSlice is one leaf of the archive: a rows × columns array named after
// the dataset it was read from.
type RawSlice struct {
	Name string
	Data *mat.Dense
}

// SliceSource resolves slice keys to raw slices.
// A key with no slice must yield an ErrCodeNotFound error naming the path.
type SliceSource interface {
	Slice(ctx context.Context, key SliceKey) (*RawSlice, error)
}

// MemorySource serves slices held in memory.
type MemorySource struct {
	slices map[SliceKey]*RawSlice
}

// NewMemorySource returns an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{slices: make(map[SliceKey]*RawSlice)}
}

// Add stores rows under key, replacing any previous slice.
func (s *MemorySource) Add(key SliceKey, rows [][]float64) error {
	if len(rows) == 0 {
		return fmt.Errorf("slice %s has no rows", key.Path())
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return fmt.Errorf("slice %s row %d has %d values, want %d", key.Path(), i, len(r), cols)
		}
		data = append(data, r...)
	}
	s.slices[key] = &RawSlice{
		Name: "data",
		Data: mat.NewDense(len(rows), cols, data),
	}
	return nil
}

// Len returns the number of stored slices.
func (s *MemorySource) Len() int {
	return len(s.slices)
}

// Slice implements SliceSource.
func (s *MemorySource) Slice(ctx context.Context, key SliceKey) (*RawSlice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, ok := s.slices[key]
	if !ok {
		return nil, cnserrors.NewWithContext(cnserrors.ErrCodeNotFound,
			fmt.Sprintf("slice %s not found", key.Path()),
			map[string]any{"path": key.Path()})
	}
	return &RawSlice{Name: raw.Name, Data: mat.DenseCopyOf(raw.Data)}, nil
}
