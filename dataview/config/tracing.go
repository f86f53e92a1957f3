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

package config

import (
	"io"
	"net"
	"strconv"

	"github.com/opentracing/opentracing-go"
	jaeger "github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"

	"github.com/clane9/dataviews/pkg/private/serrors"
	"github.com/clane9/dataviews/private/config"
)

// TracingConfig configures the tracer that receives the spans of view
// materialization and export.
type TracingConfig struct {
	// Enabled enables tracing.
	Enabled bool `toml:"enabled,omitempty"`
	// Debug samples every trace.
	Debug bool `toml:"debug,omitempty"`
	// Agent is the address of the local agent that handles the reported
	// traces. (default: localhost:6831)
	Agent string `toml:"agent,omitempty"`
}

// InitDefaults sets the agent address to the jaeger default.
func (cfg *TracingConfig) InitDefaults() {
	if cfg.Agent == "" {
		cfg.Agent = net.JoinHostPort(
			jaeger.DefaultUDPSpanServerHost,
			strconv.Itoa(jaeger.DefaultUDPSpanServerPort),
		)
	}
}

// Validate checks that the agent is a host:port address.
func (cfg *TracingConfig) Validate() error {
	if _, _, err := net.SplitHostPort(cfg.Agent); err != nil {
		return serrors.Wrap("invalid tracing agent", err, "agent", cfg.Agent)
	}
	return nil
}

// Sample writes the sample of the tracing block.
func (cfg *TracingConfig) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, tracingSample)
}

// ConfigName returns "tracing".
func (cfg *TracingConfig) ConfigName() string {
	return "tracing"
}

// NewTracer creates a tracer reporting as service id. If tracing is
// disabled, a no-op tracer is returned, so callers need not check.
func (cfg *TracingConfig) NewTracer(id string) (opentracing.Tracer, io.Closer, error) {
	traceConfig := jaegercfg.Configuration{
		ServiceName: id,
		Disabled:    !cfg.Enabled,
		Reporter: &jaegercfg.ReporterConfig{
			LocalAgentHostPort: cfg.Agent,
		},
	}
	if cfg.Debug {
		traceConfig.Sampler = &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		}
	}
	tracer, closer, err := traceConfig.NewTracer()
	if err != nil {
		return nil, nil, serrors.Wrap("creating tracer", err, "agent", cfg.Agent)
	}
	return tracer, closer, nil
}

const tracingSample = `
# Enable tracing of view materialization and export. (default false)
enabled = false

# Sample every trace. (default false)
debug = false

# Address of the local agent that handles the reported traces.
# (default "localhost:6831")
agent = "localhost:6831"
`
