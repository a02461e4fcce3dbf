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
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SliceKey addresses one raw slice of the archive.
type SliceKey struct {
	CO   float64
	LogU float64
	Xi   float64
	NH   float64
	Age  float64
}

// Path returns the archive path of the slice:
// CO_<frac>/<logU>/<xi>/<nH>/<age>.
//
// Values are rendered the way archives written by Python tooling name their
// groups: the shortest round-trip decimal with a trailing ".0" for integral
// values. The C/O component additionally drops every "0." substring and the
// age uses two-digit scientific notation.
func (k SliceKey) Path() string {
	return strings.Join([]string{
		"CO_" + strings.ReplaceAll(formatValue(k.CO), "0.", ""),
		formatValue(k.LogU),
		formatValue(k.Xi),
		formatValue(k.NH),
		FormatAge(k.Age),
	}, "/")
}

// String implements fmt.Stringer.
func (k SliceKey) String() string {
	return k.Path()
}

// FormatAge renders an age as the archive names its age groups.
func FormatAge(age float64) string {
	return fmt.Sprintf("%.2e", age)
}

// formatValue renders v as a Python float repr.
func formatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	abs := math.Abs(v)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
