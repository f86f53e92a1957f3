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

// Package metrics defines label-aware metric interfaces. Consumers hold the
// interfaces and call the nil-safe helpers, so that an unset metric is a no-op.
package metrics

// Counter describes a metric that accumulates values monotonically.
type Counter interface {
	With(labelValues ...string) Counter
	Add(delta float64)
}

// Histogram describes a metric that takes repeated observations of the same
// kind of thing, and produces a statistical summary of those observations.
type Histogram interface {
	With(labelValues ...string) Histogram
	Observe(value float64)
}

// CounterAdd increases the passed in counter by the amount specified.
// This is a no-op if c is nil.
func CounterAdd(c Counter, delta float64) {
	if c != nil {
		c.Add(delta)
	}
}

// CounterInc increases the passed in counter by 1.
// This is a no-op if c is nil.
func CounterInc(c Counter) {
	CounterAdd(c, 1)
}

// CounterWith returns a Counter with the labels, or nil if c is nil.
func CounterWith(c Counter, labelValues ...string) Counter {
	if c == nil {
		return nil
	}
	return c.With(labelValues...)
}

// HistogramObserve adds an observation to the histogram.
// This is a no-op if h is nil.
func HistogramObserve(h Histogram, value float64) {
	if h != nil {
		h.Observe(value)
	}
}

// HistogramWith returns a Histogram with the labels, or nil if h is nil.
func HistogramWith(h Histogram, labelValues ...string) Histogram {
	if h == nil {
		return nil
	}
	return h.With(labelValues...)
}
