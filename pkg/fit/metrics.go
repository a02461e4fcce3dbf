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

package fit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gridfit_fit_duration_seconds",
			Help:    "Duration of one external fit in seconds",
			Buckets: []float64{1, 10, 60, 300, 900, 3600},
		},
	)

	fitTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridfit_fit_total",
			Help: "Total number of fit attempts",
		},
		[]string{"outcome"}, // success, error or empty
	)
)
