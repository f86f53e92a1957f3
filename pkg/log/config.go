// Copyright 2019 Anapaya Systems
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

package log

import (
	"io"

	"github.com/clane9/dataviews/pkg/private/serrors"
	"github.com/clane9/dataviews/private/config"
)

const (
	// DefaultConsoleLevel is the default log level for the console.
	DefaultConsoleLevel = "info"
	// DefaultConsoleFormat is the default console format.
	DefaultConsoleFormat = "human"
)

var _ config.Config = (*Config)(nil)

// Config is the configuration for the logger.
type Config struct {
	// Console is the configuration for the console logging.
	Console ConsoleConfig `toml:"console,omitempty"`
}

// InitDefaults populates unset fields in cfg to their default values (if they
// have one).
func (c *Config) InitDefaults() {
	c.Console.InitDefaults()
}

// Validate checks the console block.
func (c *Config) Validate() error {
	return c.Console.Validate()
}

// Sample writes the sample configuration to the dst writer.
func (c *Config) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteSample(dst, path, ctx, &c.Console)
}

// ConfigName returns the name this config should have in a TOML file.
func (c *Config) ConfigName() string {
	return "log"
}

// ConsoleConfig is the config for the console logger.
type ConsoleConfig struct {
	// Level of console logging (defaults to DefaultConsoleLevel).
	Level string `toml:"level,omitempty"`
	// Format of the console logging. (human|json)
	Format string `toml:"format,omitempty"`
	// DisableCaller stops annotating logs with the calling function's file
	// name and line number.
	DisableCaller bool `toml:"disable_caller,omitempty"`
}

// InitDefaults populates unset fields in cfg to their default values (if they
// have one).
func (c *ConsoleConfig) InitDefaults() {
	if c.Level == "" {
		c.Level = DefaultConsoleLevel
	}
	if c.Format == "" {
		c.Format = DefaultConsoleFormat
	}
}

// Validate checks level and format.
func (c *ConsoleConfig) Validate() error {
	if _, err := parseLevel(c.Level); err != nil {
		return err
	}
	switch c.Format {
	case "human", "json":
		return nil
	default:
		return serrors.New("unsupported log format", "format", c.Format)
	}
}

// Sample writes the sample configuration to the dst writer.
func (c *ConsoleConfig) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, consoleSample)
}

// ConfigName returns the name this config should have in a TOML file.
func (c *ConsoleConfig) ConfigName() string {
	return "console"
}

const consoleSample = `
# Console logging level (debug|info|error) (default info)
level = "info"

# Console logging format (human|json) (default human)
format = "human"

# Disable caller information in log entries (default false)
disable_caller = false
`
