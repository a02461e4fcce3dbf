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

package abundance

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/NVIDIA/bpass-gridfit/pkg/defaults"
	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
)

// atomicMass holds standard atomic weights (IUPAC abridged values).
var atomicMass = map[string]float64{
	"H": 1.008, "He": 4.0026, "Li": 6.94, "Be": 9.0122, "B": 10.81,
	"C": 12.011, "N": 14.007, "O": 15.999, "F": 18.998, "Ne": 20.180,
	"Na": 22.990, "Mg": 24.305, "Al": 26.982, "Si": 28.085, "P": 30.974,
	"S": 32.06, "Cl": 35.45, "Ar": 39.948, "K": 39.098, "Ca": 40.078,
	"Sc": 44.956, "Ti": 47.867, "V": 50.942, "Cr": 51.996, "Mn": 54.938,
	"Fe": 55.845, "Co": 58.933, "Ni": 58.693, "Cu": 63.546, "Zn": 65.38,
}

// Set is an immutable mapping of element → number abundance relative to
// hydrogen together with the derived mass fractions. X+Y+Z = 1.
type Set struct {
	elements   []string
	abundances map[string]float64

	X float64 `json:"X" yaml:"X"`
	Y float64 `json:"Y" yaml:"Y"`
	Z float64 `json:"Z" yaml:"Z"`
}

// Solar returns the published solar composition without element detail.
func Solar() *Set {
	return &Set{
		abundances: map[string]float64{},
		X:          defaults.SolarX,
		Y:          defaults.SolarY,
		Z:          defaults.SolarZ,
	}
}

// Calculate derives mass fractions by stoichiometric summation of
// abundance × atomic mass, normalized over all listed elements. Hydrogen is
// assumed to have abundance 1 when not listed.
func Calculate(elements []string, abundances []float64) (*Set, error) {
	if len(elements) != len(abundances) {
		return nil, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"element and abundance lists differ in length",
			map[string]any{"elements": len(elements), "abundances": len(abundances)})
	}

	s := &Set{abundances: make(map[string]float64, len(elements)+1)}
	for i, raw := range elements {
		el := normalizeSymbol(raw)
		if _, ok := atomicMass[el]; !ok {
			return nil, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
				fmt.Sprintf("unknown element %q", raw), map[string]any{"row": i})
		}
		n := abundances[i]
		if n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid abundance %v for %s", n, el), map[string]any{"row": i})
		}
		if _, dup := s.abundances[el]; dup {
			return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest,
				fmt.Sprintf("element %s listed twice", el))
		}
		s.abundances[el] = n
		s.elements = append(s.elements, el)
	}
	if _, ok := s.abundances["H"]; !ok {
		s.abundances["H"] = 1
		s.elements = append([]string{"H"}, s.elements...)
	}

	var total, metals float64
	for _, el := range s.elements {
		m := s.abundances[el] * atomicMass[el]
		total += m
		if el != "H" && el != "He" {
			metals += m
		}
	}
	if total <= 0 {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "abundances sum to zero mass")
	}

	s.X = s.abundances["H"] * atomicMass["H"] / total
	s.Y = s.abundances["He"] * atomicMass["He"] / total
	s.Z = metals / total
	return s, nil
}

// Elements returns the element symbols in input order.
func (s *Set) Elements() []string {
	return slices.Clone(s.elements)
}

// Abundance returns the number abundance of an element relative to hydrogen.
func (s *Set) Abundance(element string) (float64, bool) {
	v, ok := s.abundances[normalizeSymbol(element)]
	return v, ok
}

// LogZSun returns log10 of the solar metal mass fraction.
func (s *Set) LogZSun() float64 {
	return math.Log10(s.Z)
}

func normalizeSymbol(s string) string {
	// Casers carry state, so one is made per call.
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}
