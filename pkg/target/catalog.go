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

package target

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/NVIDIA/bpass-gridfit/pkg/defaults"
	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
	"github.com/NVIDIA/bpass-gridfit/pkg/table"
)

// ColumnID names the object identifier column of a catalog.
const ColumnID = "ID"

// Catalog holds observed fluxes and errors keyed by object identifier.
type Catalog struct {
	ids   []string
	rows  map[string]int
	frame *table.Frame
}

// NewCatalog builds a catalog from identifiers and parallel value columns.
// Identifiers must be unique.
func NewCatalog(ids []string, names []string, cols [][]float64) (*Catalog, error) {
	frame, err := table.FromColumns(names, cols)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "invalid catalog columns", err)
	}
	if len(names) > 0 && frame.Len() != len(ids) {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("catalog has %d identifiers for %d rows", len(ids), frame.Len()))
	}
	if frame.Has(ColumnID) {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "ID is not a value column")
	}

	rows := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := rows[id]; dup {
			return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest,
				fmt.Sprintf("catalog lists object %s twice", id))
		}
		rows[id] = i
	}
	return &Catalog{ids: slices.Clone(ids), rows: rows, frame: frame}, nil
}

// LoadCatalog reads a CSV catalog with an ID column. Empty cells read as NaN.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound,
				"catalog file not found", err, map[string]any{"path": path})
		}
		return nil, cnserrors.Wrap(cnserrors.ErrCodeIO, "failed to open catalog", err)
	}
	defer f.Close()

	c, err := ReadCatalog(f)
	if err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"failed to read catalog", err, map[string]any{"path": path})
	}
	return c, nil
}

// ReadCatalog reads a CSV catalog from r.
func ReadCatalog(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	idCol := slices.Index(header, ColumnID)
	if idCol < 0 {
		return nil, fmt.Errorf("header has no %s column", ColumnID)
	}

	names := make([]string, 0, len(header)-1)
	for j, h := range header {
		if j != idCol {
			names = append(names, strings.TrimSpace(h))
		}
	}
	cols := make([][]float64, len(names))
	var ids []string

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		k := 0
		for j, cell := range record {
			if j == idCol {
				ids = append(ids, strings.TrimSpace(cell))
				continue
			}
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("line %d column %q: %w", line, names[k], err)
			}
			cols[k] = append(cols[k], v)
			k++
		}
	}

	return NewCatalog(ids, names, cols)
}

func parseCell(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// Len returns the number of objects.
func (c *Catalog) Len() int {
	return len(c.ids)
}

// IDs returns the object identifiers in catalog order.
func (c *Catalog) IDs() []string {
	return slices.Clone(c.ids)
}

// Columns returns the value column names in catalog order.
func (c *Catalog) Columns() []string {
	return c.frame.Names()
}

// FluxColumns returns the value columns that are not error columns.
func (c *Catalog) FluxColumns() []string {
	var out []string
	for _, n := range c.frame.Names() {
		if !strings.HasSuffix(n, defaults.ErrorColumnSuffix) {
			out = append(out, n)
		}
	}
	return out
}

// Has reports whether the catalog has a value column called name.
func (c *Catalog) Has(name string) bool {
	return c.frame.Has(name)
}

// Value returns the value of column for object id.
func (c *Catalog) Value(id, column string) (float64, error) {
	row, ok := c.rows[id]
	if !ok {
		return 0, cnserrors.New(cnserrors.ErrCodeNotFound, fmt.Sprintf("object %s not found in catalog", id))
	}
	col, ok := c.frame.Column(column)
	if !ok {
		return 0, cnserrors.New(cnserrors.ErrCodeNotFound, fmt.Sprintf("column %s not found in catalog", column))
	}
	return col[row], nil
}

// Measurement returns the flux of line for object id and its error from the
// <line>_err_new column.
func (c *Catalog) Measurement(id, line string) (flux, sigma float64, err error) {
	if flux, err = c.Value(id, line); err != nil {
		return 0, 0, err
	}
	if sigma, err = c.Value(id, ErrorColumn(line)); err != nil {
		return 0, 0, err
	}
	return flux, sigma, nil
}

// ErrorColumn returns the error column name of a flux column.
func ErrorColumn(line string) string {
	return line + defaults.ErrorColumnSuffix
}
