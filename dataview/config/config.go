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

// Package config contains the configuration of the dataview tool.
package config

import (
	"io"
	"strings"

	"github.com/clane9/dataviews/pkg/log"
	"github.com/clane9/dataviews/pkg/private/serrors"
	"github.com/clane9/dataviews/pkg/view"
	"github.com/clane9/dataviews/pkg/view/op"
	"github.com/clane9/dataviews/private/config"
)

// DefaultReader is the operation used by create when no reader is given.
const DefaultReader = "delim"

var _ config.Config = (*Config)(nil)

// Config is the configuration of the dataview tool.
type Config struct {
	Logging log.Config    `toml:"log,omitempty"`
	View    ViewConfig    `toml:"view,omitempty"`
	Metrics MetricsConfig `toml:"metrics,omitempty"`
	Tracing TracingConfig `toml:"tracing,omitempty"`
}

// InitDefaults initializes the default values for all parts of the config.
func (cfg *Config) InitDefaults() {
	config.InitAll(
		&cfg.Logging,
		&cfg.View,
		&cfg.Metrics,
		&cfg.Tracing,
	)
}

// Validate validates all parts of the config.
func (cfg *Config) Validate() error {
	return config.ValidateAll(
		&cfg.Logging,
		&cfg.View,
		&cfg.Metrics,
		&cfg.Tracing,
	)
}

// Sample generates a sample config file for the dataview tool.
func (cfg *Config) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteSample(dst, path, nil,
		&cfg.Logging,
		&cfg.View,
		&cfg.Metrics,
		&cfg.Tracing,
	)
}

// ViewConfig holds the defaults used when creating views.
type ViewConfig struct {
	// Extension is appended to the first target to name new definitions.
	Extension string `toml:"extension,omitempty"`
	// Reader is the operation used when create is called without --reader.
	Reader string `toml:"reader,omitempty"`
}

// InitDefaults sets the extension and reader if unset.
func (cfg *ViewConfig) InitDefaults() {
	if cfg.Extension == "" {
		cfg.Extension = view.Extension
	}
	if cfg.Reader == "" {
		cfg.Reader = DefaultReader
	}
}

// Validate checks that the extension starts with a dot and that the reader
// is a registered operation.
func (cfg *ViewConfig) Validate() error {
	if !strings.HasPrefix(cfg.Extension, ".") {
		return serrors.New("extension must start with a dot", "extension", cfg.Extension)
	}
	if _, err := op.DefaultRegistry.Lookup(cfg.Reader); err != nil {
		return err
	}
	return nil
}

// Sample writes the sample of the view block.
func (cfg *ViewConfig) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, viewSample)
}

// ConfigName returns "view".
func (cfg *ViewConfig) ConfigName() string {
	return "view"
}

// MetricsConfig configures metrics output. Metrics of a single run are
// written in the Prometheus text format, for collection by the node
// exporter's textfile collector.
type MetricsConfig struct {
	// Textfile is the file metrics are written to after every command. No
	// metrics are written if it is empty.
	Textfile string `toml:"textfile,omitempty"`
}

// InitDefaults is a no-op; metrics are disabled by default.
func (cfg *MetricsConfig) InitDefaults() {}

// Validate checks the textfile name.
func (cfg *MetricsConfig) Validate() error {
	if cfg.Textfile != "" && !strings.HasSuffix(cfg.Textfile, ".prom") {
		return serrors.New("metrics textfile must end in .prom", "textfile", cfg.Textfile)
	}
	return nil
}

// Sample writes the sample of the metrics block.
func (cfg *MetricsConfig) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, metricsSample)
}

// ConfigName returns "metrics".
func (cfg *MetricsConfig) ConfigName() string {
	return "metrics"
}

const viewSample = `
# Extension of new view definitions (default ".view")
extension = ".view"

# Operation reading the targets when none is given (default "delim")
reader = "delim"
`

const metricsSample = `
# File the metrics of each run are written to in Prometheus text format.
# Metrics are not written if unset. (default "")
textfile = ""
`
