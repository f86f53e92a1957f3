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

// Package formats provides the read and write operations for common data
// formats. Register adds all of them to an operation registry:
//
//	reg := op.NewRegistry()
//	if err := formats.Register(reg); err != nil {
//		...
//	}
//	tsv := reg.MustBind(formats.Delim, op.Args{"sep": "\t"})
//
// Every operation opens and closes its files within a single call, and
// writes whole files at once.
package formats

import (
	"fmt"
	"os"

	"github.com/clane9/dataviews/pkg/private/serrors"
	"github.com/clane9/dataviews/pkg/view/op"
)

// Names of the registered operations.
const (
	Delim  = "delim"
	JSON   = "json"
	YAML   = "yaml"
	TOML   = "toml"
	Text   = "text"
	Bytes  = "bytes"
	Sqlite = "sqlite"
	Bolt   = "bolt"
)

var (
	// ErrInput indicates that a reader got inputs it cannot handle, for
	// example a nested value where a path is expected.
	ErrInput = serrors.New("unsupported input")
	// ErrData indicates that a writer got a data value of the wrong type.
	ErrData = serrors.New("unsupported data")
)

// Register registers all formats in r.
func Register(r *op.Registry) error {
	factories := map[string]op.Factory{
		Delim:  newDelim,
		JSON:   newJSON,
		YAML:   newYAML,
		TOML:   newTOML,
		Text:   newText,
		Bytes:  newBytes,
		Sqlite: newSqlite,
		Bolt:   newBolt,
	}
	for _, name := range []string{Delim, JSON, YAML, TOML, Text, Bytes, Sqlite, Bolt} {
		if err := r.Register(name, factories[name]); err != nil {
			return err
		}
	}
	return nil
}

// pathInputs returns the inputs as paths. It requires at least one input.
func pathInputs(inputs []any) ([]string, error) {
	if len(inputs) == 0 {
		return nil, serrors.JoinNoStack(ErrInput, nil, "reason", "no inputs")
	}
	paths := make([]string, 0, len(inputs))
	for i, in := range inputs {
		p, ok := in.(string)
		if !ok {
			return nil, serrors.JoinNoStack(ErrInput, nil,
				"index", i, "type", fmt.Sprintf("%T", in), "reason", "expected path")
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// singlePath returns the only input as path.
func singlePath(inputs []any) (string, error) {
	paths, err := pathInputs(inputs)
	if err != nil {
		return "", err
	}
	if len(paths) != 1 {
		return "", serrors.JoinNoStack(ErrInput, nil,
			"inputs", len(paths), "reason", "expected exactly one path")
	}
	return paths[0], nil
}

func dataError(want string, data any) error {
	return serrors.JoinNoStack(ErrData, nil, "want", want, "got", fmt.Sprintf("%T", data))
}

func readFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, serrors.Wrap("reading file", err, "path", path)
	}
	return raw, nil
}

func writeFile(path string, raw []byte, mode os.FileMode) error {
	if err := os.WriteFile(path, raw, mode); err != nil {
		return serrors.Wrap("writing file", err, "path", path)
	}
	return nil
}
