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

package table

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

// Frame is a column-major table of float64 values.
// All columns have the same length.
type Frame struct {
	names []string
	index map[string]int
	cols  [][]float64
	rows  int
}

// New returns an empty frame with the given columns and no rows.
func New(names ...string) *Frame {
	f := &Frame{index: make(map[string]int, len(names))}
	for _, n := range names {
		f.addColumn(n, nil)
	}
	return f
}

// FromColumns builds a frame from parallel name and value slices.
// The values are copied.
func FromColumns(names []string, cols [][]float64) (*Frame, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("got %d column names for %d columns", len(names), len(cols))
	}
	f := &Frame{index: make(map[string]int, len(names))}
	for i, n := range names {
		if _, dup := f.index[n]; dup {
			return nil, fmt.Errorf("duplicate column %q", n)
		}
		if i > 0 && len(cols[i]) != len(cols[0]) {
			return nil, fmt.Errorf("column %q has %d rows, want %d", n, len(cols[i]), len(cols[0]))
		}
		f.addColumn(n, slices.Clone(cols[i]))
	}
	if len(cols) > 0 {
		f.rows = len(cols[0])
	}
	return f, nil
}

// FromDense builds a frame from a matrix whose columns are named by names.
func FromDense(names []string, m mat.Matrix) (*Frame, error) {
	r, c := m.Dims()
	if c != len(names) {
		return nil, fmt.Errorf("matrix has %d columns, got %d names", c, len(names))
	}
	cols := make([][]float64, c)
	for j := 0; j < c; j++ {
		cols[j] = mat.Col(nil, j, m)
	}
	f, err := FromColumns(names, cols)
	if err != nil {
		return nil, err
	}
	f.rows = r
	return f, nil
}

func (f *Frame) addColumn(name string, values []float64) {
	f.index[name] = len(f.names)
	f.names = append(f.names, name)
	f.cols = append(f.cols, values)
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return f.rows
}

// Names returns the column names in order.
func (f *Frame) Names() []string {
	return slices.Clone(f.names)
}

// Has reports whether the frame has a column called name.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the values of a column. The slice is shared with the frame
// and must not be modified.
func (f *Frame) Column(name string) ([]float64, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// SetColumn adds or replaces a column. On a frame with no columns the length
// of values sets the row count.
func (f *Frame) SetColumn(name string, values []float64) error {
	if len(f.names) == 0 {
		f.rows = len(values)
	} else if len(values) != f.rows {
		return fmt.Errorf("column %q has %d rows, want %d", name, len(values), f.rows)
	}
	if i, ok := f.index[name]; ok {
		f.cols[i] = slices.Clone(values)
		return nil
	}
	f.addColumn(name, slices.Clone(values))
	return nil
}

// SetConstant adds or replaces a column holding v on every row.
func (f *Frame) SetConstant(name string, v float64) error {
	values := make([]float64, f.rows)
	for i := range values {
		values[i] = v
	}
	return f.SetColumn(name, values)
}

// Drop removes a column if present.
func (f *Frame) Drop(name string) {
	i, ok := f.index[name]
	if !ok {
		return
	}
	f.names = slices.Delete(f.names, i, i+1)
	f.cols = slices.Delete(f.cols, i, i+1)
	delete(f.index, name)
	for j := i; j < len(f.names); j++ {
		f.index[f.names[j]] = j
	}
}

// Rename renames columns using the from → to mapping, all at once. Names
// absent from the frame are ignored. A renamed column replaces an existing
// column that already carries the target name.
func (f *Frame) Rename(mapping map[string]string) {
	names := make([]string, 0, len(f.names))
	cols := make([][]float64, 0, len(f.cols))
	index := make(map[string]int, len(f.names))
	for i, n := range f.names {
		to, renamed := mapping[n]
		if !renamed {
			to = n
		}
		if j, exists := index[to]; exists {
			if renamed {
				cols[j] = f.cols[i]
			}
			continue
		}
		index[to] = len(names)
		names = append(names, to)
		cols = append(cols, f.cols[i])
	}
	f.names, f.cols, f.index = names, cols, index
}

// Row returns the values of row i keyed by column name.
func (f *Frame) Row(i int) map[string]float64 {
	row := make(map[string]float64, len(f.names))
	for j, n := range f.names {
		row[n] = f.cols[j][i]
	}
	return row
}

// Filter returns a new frame holding the rows for which keep returns true.
func (f *Frame) Filter(keep func(row int) bool) *Frame {
	out := New(f.names...)
	for j := range f.cols {
		out.cols[j] = make([]float64, 0, f.rows)
	}
	for i := 0; i < f.rows; i++ {
		if !keep(i) {
			continue
		}
		for j := range f.cols {
			out.cols[j] = append(out.cols[j], f.cols[j][i])
		}
		out.rows++
	}
	return out
}

// Where returns the rows whose column name equals v within tol.
// A missing column yields an empty frame.
func (f *Frame) Where(name string, v float64) *Frame {
	col, ok := f.Column(name)
	if !ok {
		return f.Filter(func(int) bool { return false })
	}
	return f.Filter(func(i int) bool { return Equal(col[i], v) })
}

// Unique returns the distinct values of a column in ascending order.
func (f *Frame) Unique(name string) []float64 {
	col, ok := f.Column(name)
	if !ok {
		return nil
	}
	sorted := slices.Clone(col)
	sort.Float64s(sorted)
	out := make([]float64, 0, len(sorted))
	for _, v := range sorted {
		if len(out) == 0 || !Equal(out[len(out)-1], v) {
			out = append(out, v)
		}
	}
	return out
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out, _ := FromColumns(f.names, f.cols)
	out.rows = f.rows
	return out
}

// Dense returns the frame as a rows × columns matrix in column order.
func (f *Frame) Dense() *mat.Dense {
	if f.rows == 0 || len(f.cols) == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(f.rows, len(f.cols), nil)
	for j, col := range f.cols {
		m.SetCol(j, col)
	}
	return m
}

// Concat stacks frames vertically. The result has the union of all columns
// in first-seen order; cells of columns missing from a frame are NaN.
func Concat(frames ...*Frame) *Frame {
	out := New()
	for _, fr := range frames {
		if fr == nil {
			continue
		}
		for _, n := range fr.names {
			if !out.Has(n) {
				out.addColumn(n, nanSlice(out.rows))
			}
		}
		for j, n := range out.names {
			src, ok := fr.Column(n)
			if !ok {
				src = nanSlice(fr.rows)
			}
			out.cols[j] = append(out.cols[j], src...)
		}
		out.rows += fr.rows
	}
	return out
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// Equal reports whether two grid values are the same sample point.
func Equal(a, b float64) bool {
	return scalar.EqualWithinAbsOrRel(a, b, 1e-12, 1e-9)
}
