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

// Package target prepares the observed line fluxes of one object for a fit.
//
// A Target moves through four states:
//
//	constructed → flux resolved → lines classified → filtered
//
// ReadFlux resolves every requested label against the catalog columns,
// exactly or by similarity above 0.8, and reads the flux and its
// <line>_err_new error. Labels recognized as an unresolved doublet (OII 3727,
// SII 6716/6731) are satisfied by summing the two component columns and
// combining their errors in quadrature. Classify marks a line usable when
// flux/error is strictly greater than the SNR threshold, and Filter keeps the
// usable lines.
//
// Calling a step before the one it depends on logs a warning and does
// nothing.
//
//	cat, err := target.LoadCatalog("catalog.csv")
//	t, err := target.New("12", cat, []string{"OII3727", "HB", "OIII5007"})
//	if _, _, err := t.ReadFlux(); err != nil {
//	    return err
//	}
//	t.Classify()
//	lines, flux, errs := t.Filter()
package target
