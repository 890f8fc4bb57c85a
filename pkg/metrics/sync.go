// Copyright 2025 Orgsync Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SyncRunsTotal counts completed reconciliation runs per tenant and result.
	SyncRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgsync_runs_total",
			Help: "Total number of reconciliation runs",
		},
		[]string{"tenant", "result"},
	)

	// SyncRunDurationSeconds measures the duration of reconciliation runs.
	SyncRunDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orgsync_run_duration_seconds",
			Help:    "Duration of reconciliation runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.5min
		},
		[]string{"tenant"},
	)

	// SyncEntitiesTotal counts entities written per tenant, kind and action.
	SyncEntitiesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgsync_entities_total",
			Help: "Total number of entities touched by reconciliation runs",
		},
		[]string{"tenant", "kind", "action"},
	)
)

// Register registers all orgsync collectors with the given registerer.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(SyncRunsTotal, SyncRunDurationSeconds, SyncEntitiesTotal)
}

// ObserveRun records the outcome of one reconciliation run.
func ObserveRun(tenant, result string, elapsed time.Duration) {
	SyncRunsTotal.WithLabelValues(tenant, result).Inc()
	SyncRunDurationSeconds.WithLabelValues(tenant).Observe(elapsed.Seconds())
}

// AddEntities records entity counts for one phase of a run.
func AddEntities(tenant, kind, action string, n int) {
	if n > 0 {
		SyncEntitiesTotal.WithLabelValues(tenant, kind, action).Add(float64(n))
	}
}
