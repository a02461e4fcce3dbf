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

// Package label resolves requested emission-line labels against a vocabulary
// of available labels.
//
// Catalogs and the model grid name lines differently (o3_5007, OIII5007,
// OIII_5007). A Resolver returns the exact label when it is present and
// otherwise the most similar label whose score clears the resolver's
// threshold, logging the substitution. When nothing qualifies it fails with
// a NOT_FOUND error naming the label.
//
// Two resolvers are used by the pipeline, each with its own threshold:
//
//	label.CatalogResolver() // similarity > 0.8, target catalog columns
//	label.ModelResolver()   // similarity >= 0.4, model line vocabulary
//
// The similarity measure is pluggable through the Matcher interface.
package label
