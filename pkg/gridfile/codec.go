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
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/NVIDIA/bpass-gridfit/pkg/table"

	"github.com/astrogo/fitsio"
)

// ExtensionName is the name of the FITS binary table holding the grid.
const ExtensionName = "GRID"

func encodeFITS(w io.Writer, f *table.Frame) error {
	out, err := fitsio.Create(w)
	if err != nil {
		return fmt.Errorf("failed to create FITS stream: %w", err)
	}

	phdu, err := fitsio.NewPrimaryHDU(nil)
	if err != nil {
		return fmt.Errorf("failed to create primary HDU: %w", err)
	}
	if err := out.Write(phdu); err != nil {
		return fmt.Errorf("failed to write primary HDU: %w", err)
	}

	names := f.Names()
	cols := make([]fitsio.Column, len(names))
	for i, n := range names {
		cols[i] = fitsio.Column{Name: n, Format: "D"}
	}
	tbl, err := fitsio.NewTable(ExtensionName, cols, fitsio.BINARY_TBL)
	if err != nil {
		return fmt.Errorf("failed to create FITS table: %w", err)
	}
	defer tbl.Close()

	data := make([][]float64, len(names))
	for j, n := range names {
		data[j], _ = f.Column(n)
	}
	row := make([]float64, len(names))
	ptrs := make([]any, len(names))
	for j := range row {
		ptrs[j] = &row[j]
	}
	for i := 0; i < f.Len(); i++ {
		for j := range names {
			row[j] = data[j][i]
		}
		if err := tbl.Write(ptrs...); err != nil {
			return fmt.Errorf("failed to write FITS row %d: %w", i, err)
		}
	}

	if err := out.Write(tbl); err != nil {
		return fmt.Errorf("failed to write FITS table: %w", err)
	}
	return out.Close()
}

func decodeFITS(r io.Reader) (*table.Frame, error) {
	in, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open FITS stream: %w", err)
	}
	defer in.Close()

	var tbl *fitsio.Table
	for _, hdu := range in.HDUs() {
		if t, ok := hdu.(*fitsio.Table); ok {
			tbl = t
			break
		}
	}
	if tbl == nil {
		return nil, fmt.Errorf("FITS stream has no table extension")
	}

	cols := tbl.Cols()
	names := make([]string, len(cols))
	for j, c := range cols {
		names[j] = c.Name
	}

	n := tbl.NumRows()
	data := make([][]float64, len(cols))
	for j := range data {
		data[j] = make([]float64, 0, n)
	}

	rows, err := tbl.Read(0, n)
	if err != nil {
		return nil, fmt.Errorf("failed to read FITS table: %w", err)
	}
	defer rows.Close()

	row := make([]float64, len(cols))
	ptrs := make([]any, len(cols))
	for j := range row {
		ptrs[j] = &row[j]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan FITS row: %w", err)
		}
		for j, v := range row {
			data[j] = append(data[j], v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate FITS rows: %w", err)
	}

	return table.FromColumns(names, data)
}

func encodeCSV(w io.Writer, f *table.Frame) error {
	cw := csv.NewWriter(w)
	names := f.Names()
	if err := cw.Write(names); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	data := make([][]float64, len(names))
	for j, n := range names {
		data[j], _ = f.Column(n)
	}
	record := make([]string, len(names))
	for i := 0; i < f.Len(); i++ {
		for j := range names {
			record[j] = strconv.FormatFloat(data[j][i], 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func decodeCSV(r io.Reader) (*table.Frame, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	names := append([]string(nil), header...)
	data := make([][]float64, len(names))

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		for j, s := range record {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %q: %w", line, names[j], err)
			}
			data[j] = append(data[j], v)
		}
	}

	return table.FromColumns(names, data)
}
