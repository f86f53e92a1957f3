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

package op

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/clane9/dataviews/pkg/private/serrors"
)

var (
	// ErrInvalidArgument indicates that a bound argument has the wrong type
	// or value for the operation.
	ErrInvalidArgument = serrors.New("invalid argument")
	// ErrUnserializable indicates that a bound argument cannot be persisted.
	ErrUnserializable = serrors.New("unserializable argument")
)

// Args are the keyword arguments bound to an operation. Values are limited
// to strings, booleans, numbers, time.Time, and slices and string-keyed maps
// of those. After a persistence round trip integers are int64, floats are
// float64 and slices are []any; the typed getters accept all of these.
type Args map[string]any

// Clone returns a deep copy of a.
func (a Args) Clone() Args {
	if a == nil {
		return nil
	}
	c := make(Args, len(a))
	for k, v := range a {
		c[k] = cloneValue(v)
	}
	return c
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		c := make([]any, len(t))
		for i := range t {
			c[i] = cloneValue(t[i])
		}
		return c
	case []string:
		return append([]string(nil), t...)
	case map[string]any:
		c := make(map[string]any, len(t))
		for k, e := range t {
			c[k] = cloneValue(e)
		}
		return c
	default:
		return v
	}
}

// Keys returns the argument names in sorted order.
func (a Args) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks that all values can be persisted.
func (a Args) Validate() error {
	for _, k := range a.Keys() {
		if err := validateValue(reflect.ValueOf(a[k])); err != nil {
			return serrors.JoinNoStack(ErrUnserializable, err, "arg", k)
		}
	}
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

func validateValue(v reflect.Value) error {
	if !v.IsValid() {
		return serrors.New("nil value")
	}
	if v.Type() == timeType {
		return nil
	}
	switch v.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Float32, reflect.Float64:
		return nil
	case reflect.Uint, reflect.Uint64:
		if v.Uint() > math.MaxInt64 {
			return serrors.New("integer out of range", "value", v.Uint())
		}
		return nil
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := validateValue(v.Index(i)); err != nil {
				return serrors.WrapNoStack("element", err, "index", i)
			}
		}
		return nil
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return serrors.New("map key is not a string", "type", v.Type().String())
		}
		iter := v.MapRange()
		for iter.Next() {
			if err := validateValue(iter.Value()); err != nil {
				return serrors.WrapNoStack("entry", err, "key", iter.Key().String())
			}
		}
		return nil
	case reflect.Interface:
		return validateValue(v.Elem())
	default:
		return serrors.New("unsupported type", "type", v.Type().String())
	}
}

// String returns the string argument key, or def if it is not set.
func (a Args) String(key, def string) (string, error) {
	v, ok := a[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", a.typeError(key, "string")
	}
	return s, nil
}

// Bool returns the boolean argument key, or def if it is not set.
func (a Args) Bool(key string, def bool) (bool, error) {
	v, ok := a[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, a.typeError(key, "bool")
	}
	return b, nil
}

// Int returns the integer argument key, or def if it is not set. Floats
// without fractional part are accepted.
func (a Args) Int(key string, def int) (int, error) {
	v, ok := a[key]
	if !ok {
		return def, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint, reflect.Uint64:
		if rv.Uint() > math.MaxInt64 {
			return 0, a.typeError(key, "int")
		}
		return int(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) {
			return 0, a.typeError(key, "int")
		}
		return int(f), nil
	default:
		return 0, a.typeError(key, "int")
	}
}

// Strings returns the string list argument key, or nil if it is not set.
func (a Args) Strings(key string) ([]string, error) {
	v, ok := a[key]
	if !ok {
		return nil, nil
	}
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...), nil
	case []any:
		r := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, a.typeError(key, "[]string")
			}
			r = append(r, s)
		}
		return r, nil
	default:
		return nil, a.typeError(key, "[]string")
	}
}

func (a Args) typeError(key, want string) error {
	return serrors.JoinNoStack(ErrInvalidArgument, nil,
		"arg", key, "want", want, "got", fmt.Sprintf("%T", a[key]))
}

// ParseArgs parses arguments of the form key=value. Values are interpreted
// as bool, integer or float when they parse as such. Integers follow Go
// literal syntax, so 0644 and 0o644 are octal and 0x1f is hex. Double quoted values
// are unquoted with Go syntax (so "\t" is a tab); everything else is a
// string. A key given more than once collects its values in a list.
func ParseArgs(raw []string) (Args, error) {
	args := make(Args, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, serrors.JoinNoStack(ErrInvalidArgument, nil, "arg", kv,
				"reason", "expected key=value")
		}
		val, err := parseValue(v)
		if err != nil {
			return nil, serrors.JoinNoStack(ErrInvalidArgument, err, "arg", k)
		}
		switch prev := args[k].(type) {
		case nil:
			args[k] = val
		case []any:
			args[k] = append(prev, val)
		default:
			args[k] = []any{prev, val}
		}
	}
	return args, nil
}

func parseValue(v string) (any, error) {
	if strings.HasPrefix(v, `"`) {
		return strconv.Unquote(v)
	}
	switch v {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if i, err := strconv.ParseInt(v, 0, 64); err == nil {
		return i, nil
	}
	if !strings.ContainsAny(v, "0123456789") {
		return v, nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f, nil
	}
	return v, nil
}
