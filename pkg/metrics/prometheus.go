// Copyright 2020 Anapaya Systems
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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// NewPromCounter wraps a prometheus counter vector as a counter.
// Returns nil if cv is nil.
func NewPromCounter(cv *prometheus.CounterVec) Counter {
	if cv == nil {
		return nil
	}
	return &counter{cv: cv}
}

// NewPromHistogram wraps a prometheus histogram vector as a histogram.
// Returns nil if hv is nil.
func NewPromHistogram(hv *prometheus.HistogramVec) Histogram {
	if hv == nil {
		return nil
	}
	return &histogram{hv: hv}
}

// NewPromCounterFrom creates a counter vector, registers it with reg and
// wraps it. A nil reg means prometheus.DefaultRegisterer.
func NewPromCounterFrom(
	reg prometheus.Registerer,
	opts prometheus.CounterOpts,
	labelNames []string,
) Counter {
	cv := prometheus.NewCounterVec(opts, labelNames)
	registerer(reg).MustRegister(cv)
	return NewPromCounter(cv)
}

// NewPromHistogramFrom creates a histogram vector, registers it with reg and
// wraps it. A nil reg means prometheus.DefaultRegisterer.
func NewPromHistogramFrom(
	reg prometheus.Registerer,
	opts prometheus.HistogramOpts,
	labelNames []string,
) Histogram {
	hv := prometheus.NewHistogramVec(opts, labelNames)
	registerer(reg).MustRegister(hv)
	return NewPromHistogram(hv)
}

func registerer(reg prometheus.Registerer) prometheus.Registerer {
	if reg == nil {
		return prometheus.DefaultRegisterer
	}
	return reg
}

// The types below follow the go-kit/kit prometheus package (MIT License,
// Copyright (c) 2015 Peter Bourgon), adapted to stay unexported.

// labelValuesSlice accumulates alternating label names and values.
type labelValuesSlice []string

// With returns a copy extended by labelValues. A dangling name gets the
// value "unknown".
func (lvs labelValuesSlice) With(labelValues ...string) labelValuesSlice {
	if len(labelValues)%2 != 0 {
		labelValues = append(labelValues, "unknown")
	}
	result := make(labelValuesSlice, len(lvs), len(lvs)+len(labelValues))
	copy(result, lvs)
	return append(result, labelValues...)
}

func (lvs labelValuesSlice) labels() prometheus.Labels {
	labels := prometheus.Labels{}
	for i := 0; i+1 < len(lvs); i += 2 {
		labels[lvs[i]] = lvs[i+1]
	}
	return labels
}

type counter struct {
	cv  *prometheus.CounterVec
	lvs labelValuesSlice
}

func (c *counter) With(labelValues ...string) Counter {
	return &counter{cv: c.cv, lvs: c.lvs.With(labelValues...)}
}

func (c *counter) Add(delta float64) {
	c.cv.With(c.lvs.labels()).Add(delta)
}

type histogram struct {
	hv  *prometheus.HistogramVec
	lvs labelValuesSlice
}

func (h *histogram) With(labelValues ...string) Histogram {
	return &histogram{hv: h.hv, lvs: h.lvs.With(labelValues...)}
}

func (h *histogram) Observe(value float64) {
	h.hv.With(h.lvs.labels()).Observe(value)
}
