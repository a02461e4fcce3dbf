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
	"math"
	"strings"
)

// Blend recognizes labels of an unresolved doublet and names the two
// catalog columns whose fluxes are summed for it.
type Blend struct {
	// Name is used in logs.
	Name string

	// Wavelength must appear in the label.
	Wavelength string

	// Species lists spellings of the ion, one of which must appear in the label.
	Species []string

	// Components are the catalog flux columns of the two lines.
	Components [2]string
}

// Doublet rules.
var (
	// OIIBlend sums the 3726 and 3729 lines.
	OIIBlend = Blend{
		Name:       "OII",
		Wavelength: "372",
		Species:    []string{"O2", "o2", "OII", "oII"},
		Components: [2]string{"o2_3726", "o2_3729"},
	}

	// SIIBlend sums the 6716 and 6731 lines.
	SIIBlend = Blend{
		Name:       "SII",
		Wavelength: "671",
		Species:    []string{"S2", "s2", "SII", "sII"},
		Components: [2]string{"s2_6716", "s2_6731"},
	}

	// SIIBlendAlt sums the SII doublet for catalogs that label the lines
	// by their 6718 and 6733 wavelengths.
	SIIBlendAlt = Blend{
		Name:       "SII",
		Wavelength: "671",
		Species:    []string{"S2", "s2", "SII", "sII"},
		Components: [2]string{"s2_6718", "s2_6733"},
	}
)

// DefaultBlends are the doublet rules applied when none are configured.
func DefaultBlends() []Blend {
	return []Blend{OIIBlend, SIIBlend}
}

// Matches reports whether label names this doublet.
func (b Blend) Matches(label string) bool {
	if !strings.Contains(label, b.Wavelength) {
		return false
	}
	for _, s := range b.Species {
		if strings.Contains(label, s) {
			return true
		}
	}
	return false
}

// Combine sums two fluxes and adds their errors in quadrature.
func Combine(f1, e1, f2, e2 float64) (flux, err float64) {
	return f1 + f2, math.Hypot(e1, e2)
}

func findBlend(blends []Blend, label string) (Blend, bool) {
	for _, b := range blends {
		if b.Matches(label) {
			return b, true
		}
	}
	return Blend{}, false
}
