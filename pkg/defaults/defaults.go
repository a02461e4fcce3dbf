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

package defaults

// Solar composition (Gutkin et al. 2016) used when abundances are not
// recomputed from a reference file.
const (
	// SolarX is the hydrogen mass fraction.
	SolarX = 0.70919985
	// SolarY is the helium mass fraction.
	SolarY = 0.27556015
	// SolarZ is the metal mass fraction.
	SolarZ = 0.01524
)

// File and directory names.
const (
	// GridFileName is the canonical grid looked up when no path is given.
	GridFileName = "BPASS_grid.fits"

	// AbundanceFileName is the reference abundance table.
	AbundanceFileName = "gutkin_abun.dat"

	// ResultsDir is the default output directory for fit summaries.
	ResultsDir = "./results/"

	// ManifestSuffix is appended to a canonical grid path to name its manifest.
	ManifestSuffix = ".manifest.yaml"
)

// Label matching thresholds.
const (
	// CatalogMatchThreshold is the similarity a catalog column must exceed
	// to stand in for a requested line label.
	CatalogMatchThreshold = 0.8

	// ModelMatchThreshold is the similarity a model line must reach to stand
	// in for a requested line label.
	ModelMatchThreshold = 0.4
)

// Target selection.
const (
	// SNRThreshold is the signal-to-noise ratio a line must exceed to be fit.
	SNRThreshold = 3.0

	// ErrorColumnSuffix names a catalog error column: <line>_err_new.
	ErrorColumnSuffix = "_err_new"
)

// SII doublet split applied to the blended grid column. The blend is divided
// by SIIBlendDivisor for the 6716 component, which is then multiplied by
// SIIRatio for the 6731 component.
const (
	SIIBlendDivisor = 3.96
	SIIRatio        = 2.96
)

// FitVersion is the default version tag of a fit.
const FitVersion = 1
