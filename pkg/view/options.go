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
	"github.com/clane9/dataviews/pkg/view/op"
)

type options struct {
	registry *op.Registry
	metrics  *Metrics
}

func applyOptions(base options, opts []Option) options {
	for _, opt := range opts {
		opt(&base)
	}
	if base.registry == nil {
		base.registry = op.DefaultRegistry
	}
	return base
}

// Option configures the runtime state of a view. Options are never
// persisted.
type Option func(*options)

// WithRegistry sets the registry operation descriptors are resolved against
// when loading a definition. The default is op.DefaultRegistry.
func WithRegistry(r *op.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithMetrics sets the metrics the view records to.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
