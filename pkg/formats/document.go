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

package formats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v2"

	"github.com/clane9/dataviews/pkg/private/serrors"
	"github.com/clane9/dataviews/pkg/view/op"
)

// document reads one structured document into generic Go values and writes
// any value the codec can encode.
type document struct {
	name      string
	unmarshal func([]byte) (any, error)
	marshal   func(any) ([]byte, error)
}

func (d document) Read(ctx context.Context, inputs ...any) (any, error) {
	p, err := singlePath(inputs)
	if err != nil {
		return nil, err
	}
	raw, err := readFile(p)
	if err != nil {
		return nil, err
	}
	v, err := d.unmarshal(raw)
	if err != nil {
		return nil, serrors.Wrap("decoding document", err, "format", d.name, "path", p)
	}
	return v, nil
}

func (d document) Write(_ context.Context, data any, path string) error {
	raw, err := d.marshal(data)
	if err != nil {
		return serrors.Wrap("encoding document", err, "format", d.name, "path", path)
	}
	return writeFile(path, raw, 0644)
}

// newJSON returns the json format. The indent argument is used for writing;
// by default the output is compact.
func newJSON(args op.Args) (op.Format, error) {
	indent, err := args.String("indent", "")
	if err != nil {
		return nil, err
	}
	return document{
		name: JSON,
		unmarshal: func(raw []byte) (any, error) {
			var v any
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.UseNumber()
			if err := dec.Decode(&v); err != nil {
				return nil, err
			}
			return normalizeNumbers(v), nil
		},
		marshal: func(v any) ([]byte, error) {
			if indent == "" {
				return json.Marshal(v)
			}
			return json.MarshalIndent(v, "", indent)
		},
	}, nil
}

// normalizeNumbers turns json numbers into int64 where possible and float64
// otherwise, matching the other document formats.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = normalizeNumbers(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalizeNumbers(t[k])
		}
		return t
	default:
		return v
	}
}

func newYAML(op.Args) (op.Format, error) {
	return document{
		name: YAML,
		unmarshal: func(raw []byte) (any, error) {
			var v any
			if err := yaml.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
			return stringKeys(v), nil
		},
		marshal: yaml.Marshal,
	}, nil
}

// stringKeys converts the map[interface{}]interface{} values produced by
// yaml.v2 into map[string]any.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = stringKeys(e)
		}
		return m
	case []any:
		for i := range t {
			t[i] = stringKeys(t[i])
		}
		return t
	case int:
		return int64(t)
	default:
		return v
	}
}

func newTOML(op.Args) (op.Format, error) {
	return document{
		name: TOML,
		unmarshal: func(raw []byte) (any, error) {
			var v map[string]any
			if err := toml.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
			return v, nil
		},
		marshal: toml.Marshal,
	}, nil
}
