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

// Identifier columns of the integrated grid.
const (
	ColumnAge  = "age"
	ColumnCO   = "CO"
	ColumnLogU = "LOGU"
	ColumnXi   = "XI"
	ColumnNH   = "NH"
	ColumnZMet = "ZMET"
	ColumnLogZ = "LOGZ"
)

// Raw SII columns. The blended column is split into its two components
// after the full grid is built.
const (
	ColumnSIIBlend = "s2_6716_6731"
	ColumnSII6716  = "s2_6716"
	ColumnSII6731  = "s2_6731"
)

// CanonicalParameters are the parameter columns of a finalized grid.
var CanonicalParameters = []string{ColumnCO, ColumnLogU, ColumnXi, ColumnNH, ColumnZMet, ColumnLogZ}

// publicNames maps raw archive identifiers to public column names.
var publicNames = map[string]string{
	"n_H":          "NH",
	"o1_6300":      "OI6300",
	"o2_3727":      "OII3727",
	"o3_1666":      "OIII1666",
	"o3_4959":      "OIII4959",
	"o3_5007":      "OIII5007",
	"s2_6716_6731": "SII6716",
	"n2_6548":      "NII6548",
	"n2_6584":      "NII6584",
	"n5_1243":      "NII1240",
	"he1_3965":     "HeI3965",
	"he1_4471":     "HeI4471",
	"he1_5876":     "HeI5876",
	"he1_6678":     "HeI6678",
	"he2_1640":     "HeII1640",
	"he2_4686":     "HeII4686",
	"c3_1909":      "CIII1909",
	"c4_1551":      "CIV1551",
	"si3_1892":     "SiIII1892",
	"he1_1083":     "HeI1083",
	"ha":           "HA",
	"hb":           "HB",
	"Z":            "ZMET",
	"Age":          "AGE",
	"s2_6716":      "SII6717",
	"s2_6731":      "SII6731",
}

// PublicName returns the public name of a raw column, or raw itself when
// it is not renamed.
func PublicName(raw string) string {
	if name, ok := publicNames[raw]; ok {
		return name
	}
	return raw
}

// PublicNames returns a copy of the raw → public renaming table.
func PublicNames() map[string]string {
	out := make(map[string]string, len(publicNames))
	for k, v := range publicNames {
		out[k] = v
	}
	return out
}
