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

// Package config provides an unified pattern for configuration structs.
//
// # Usage
//
// Every configuration struct should implement the Config interface. There
// are three parts to a configuration: Initialization, validation and
// sample generation.
//
// # Initialization
//
// A config struct is initialized by calling InitDefaults. This recursively
// initializes all uninitialized fields. Fields that should not be
// initialized to default must be set before calling InitDefaults.
//
// # Validation
//
// A config struct is validated by calling Validate. This recursively
// validates all fields.
//
// # Sample Generation
//
// A config struct can be used to generate a commented sample toml config
// by calling Sample. Unit tests guarantee the consistency between
// implementation and the generated sample. To this end, each config struct
// has to provide a composable unit test to check that the sample is
// parsable and consistent with the default values.
//
// Warning: The method Sample is allowed to panic if an error occurs during
// sample generation.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/clane9/dataviews/pkg/private/serrors"
)

// Config is the interface that config structs should implement to allow for
// streamlined initialization, validation and sample generation.
type Config interface {
	Sampler
	Validator
	Defaulter
}

// Validator defines the validation part of Config.
type Validator interface {
	// Validate recursively checks that all fields contain valid values.
	Validate() error
}

// Defaulter defines the initialization part of Config.
type Defaulter interface {
	// InitDefaults recursively initializes the default values of all
	// uninitialized fields.
	InitDefaults()
}

// Sampler defines the sample generation part of Config.
type Sampler interface {
	// Sample creates a sample config and writes it to dst. Ctx provides
	// additional information. Sample is allowed to panic if an error
	// occurs.
	Sample(dst io.Writer, path Path, ctx CtxMap)
}

// TableSampler is used to write a table to the sample.
type TableSampler interface {
	Sampler
	// ConfigName returns the name of the config block. This forces
	// consistency between samples for different services for the same
	// config block.
	ConfigName() string
}

// Path is the header of a config block possibly consisting of multiple parts.
type Path []string

// Extend creates a copy of the path with string s appended.
func (p Path) Extend(s string) Path {
	c := append(Path(nil), p...)
	return append(c, s)
}

// ValidateAll validates all validators. The first error encountered is returned.
func ValidateAll(validators ...Validator) error {
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return serrors.Wrap("Unable to validate", err, "type", fmt.Sprintf("%T", v))
		}
	}
	return nil
}

// InitAll initializes all defaulters.
func InitAll(defaulters ...Defaulter) {
	for _, v := range defaulters {
		v.InitDefaults()
	}
}

// Decode decodes a raw config.
func Decode(raw []byte, cfg any) error {
	return toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields().Decode(cfg)
}

// LoadFile loads the config from file. The error carries the file name.
func LoadFile(file string, cfg any) error {
	raw, err := os.ReadFile(file)
	if err != nil {
		return serrors.Wrap("reading config file", err, "file", file)
	}
	if err := Decode(raw, cfg); err != nil {
		return serrors.Wrap("decoding config file", err, "file", file)
	}
	return nil
}
