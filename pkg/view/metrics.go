// Copyright 2024 The dataviews Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package view

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/clane9/dataviews/pkg/metrics"
)

// Result label values.
const (
	resultOk  = "ok"
	resultErr = "err"
)

// Metrics are the optional metrics recorded by views. A nil *Metrics and
// nil fields are valid and record nothing.
type Metrics struct {
	// Materializations counts materializations, labeled by result.
	Materializations metrics.Counter
	// Exports counts exports and solidifications, labeled by result.
	Exports metrics.Counter
	// MaterializeDuration observes the materialization time in seconds.
	MaterializeDuration metrics.Histogram
}

// NewMetrics creates the view metrics and registers them with reg. A nil reg
// means the prometheus default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Materializations: metrics.NewPromCounterFrom(reg, prometheus.CounterOpts{
			Namespace: "dataviews",
			Subsystem: "view",
			Name:      "materializations_total",
			Help:      "The number of view materializations.",
		}, []string{"result"}),
		Exports: metrics.NewPromCounterFrom(reg, prometheus.CounterOpts{
			Namespace: "dataviews",
			Subsystem: "view",
			Name:      "exports_total",
			Help:      "The number of data exports through views.",
		}, []string{"result"}),
		MaterializeDuration: metrics.NewPromHistogramFrom(reg, prometheus.HistogramOpts{
			Namespace: "dataviews",
			Subsystem: "view",
			Name:      "materialize_duration_seconds",
			Help:      "Time to materialize a view.",
			Buckets:   prometheus.DefBuckets,
		}, nil),
	}
}

func (m *Metrics) materialized(seconds float64, err error) {
	if m == nil {
		return
	}
	metrics.CounterInc(metrics.CounterWith(m.Materializations, "result", result(err)))
	metrics.HistogramObserve(m.MaterializeDuration, seconds)
}

func (m *Metrics) exported(err error) {
	if m == nil {
		return
	}
	metrics.CounterInc(metrics.CounterWith(m.Exports, "result", result(err)))
}

func result(err error) string {
	if err != nil {
		return resultErr
	}
	return resultOk
}
