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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Grid build metrics
	gridBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gridfit_grid_build_duration_seconds",
			Help:    "Duration of a full grid build in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 300, 900},
		},
	)

	gridSlicesRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridfit_grid_slices_read_total",
			Help: "Total number of raw slice reads",
		},
		[]string{"status"}, // success or error
	)

	gridRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gridfit_grid_rows",
			Help: "Number of rows in the last finalized grid",
		},
	)
)
