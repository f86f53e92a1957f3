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

package op_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clane9/dataviews/pkg/view/op"
)

// echo returns its single input, prefixed by the "prefix" argument.
type echo struct {
	prefix string
	writes *[]string
}

func (e echo) Read(_ context.Context, inputs ...any) (any, error) {
	return e.prefix + inputs[0].(string), nil
}

func (e echo) Write(_ context.Context, data any, path string) error {
	*e.writes = append(*e.writes, path+"="+data.(string))
	return nil
}

func newEchoRegistry(t *testing.T, writes *[]string) *op.Registry {
	reg := op.NewRegistry()
	require.NoError(t, reg.Register("echo", func(args op.Args) (op.Format, error) {
		prefix, err := args.String("prefix", "")
		if err != nil {
			return nil, err
		}
		return echo{prefix: prefix, writes: writes}, nil
	}))
	return reg
}

func TestRegistry(t *testing.T) {
	reg := newEchoRegistry(t, nil)

	t.Run("duplicate", func(t *testing.T) {
		err := reg.Register("echo", func(op.Args) (op.Format, error) { return nil, nil })
		assert.ErrorIs(t, err, op.ErrDuplicateOperation)
	})
	t.Run("empty name", func(t *testing.T) {
		assert.Error(t, reg.Register("", func(op.Args) (op.Format, error) { return nil, nil }))
	})
	t.Run("nil factory", func(t *testing.T) {
		assert.Error(t, reg.Register("nil", nil))
	})
	t.Run("unknown", func(t *testing.T) {
		_, err := reg.Resolve(op.Ref{Name: "nope"})
		assert.ErrorIs(t, err, op.ErrUnknownOperation)
	})
	t.Run("names", func(t *testing.T) {
		require.NoError(t, reg.Register("abc", func(op.Args) (op.Format, error) {
			return nil, nil
		}))
		assert.Equal(t, []string{"abc", "echo"}, reg.Names())
	})
	t.Run("must register panics", func(t *testing.T) {
		assert.Panics(t, func() {
			reg.MustRegister("echo", func(op.Args) (op.Format, error) { return nil, nil })
		})
	})
}

func TestBound(t *testing.T) {
	var writes []string
	reg := newEchoRegistry(t, &writes)
	ctx := context.Background()

	b, err := reg.Bind("echo", op.Args{"prefix": "> "})
	require.NoError(t, err)

	got, err := b.Read(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "> hello", got)

	require.NoError(t, b.Write(ctx, "data", "/tmp/out"))
	assert.Equal(t, []string{"/tmp/out=data"}, writes)

	assert.Equal(t, op.Ref{Name: "echo", Args: op.Args{"prefix": "> "}}, b.Ref())
}

func TestBoundIsolatedFromCaller(t *testing.T) {
	reg := newEchoRegistry(t, nil)
	args := op.Args{"prefix": "a"}
	b := reg.MustBind("echo", args)
	args["prefix"] = "b"

	ref := b.Ref()
	assert.Equal(t, "a", ref.Args["prefix"])
	ref.Args["prefix"] = "c"
	assert.Equal(t, "a", b.Ref().Args["prefix"])
}

func TestBoundArgumentErrorAtCallTime(t *testing.T) {
	reg := newEchoRegistry(t, nil)
	// Resolution succeeds, the wrong type only shows when reading.
	b, err := reg.Bind("echo", op.Args{"prefix": 42})
	require.NoError(t, err)

	_, err = b.Read(context.Background(), "x")
	assert.ErrorIs(t, err, op.ErrInvalidArgument)
}

func TestFuncAdapters(t *testing.T) {
	errRead := errors.New("read failed")
	r := op.ReadFunc(func(context.Context, ...any) (any, error) { return nil, errRead })
	_, err := r.Read(context.Background())
	assert.Same(t, errRead, err)

	var wrote string
	w := op.WriteFunc(func(_ context.Context, data any, path string) error {
		wrote = path
		return nil
	})
	require.NoError(t, w.Write(context.Background(), 1, "p"))
	assert.Equal(t, "p", wrote)

	_, ok := any(r).(op.Encoder)
	assert.False(t, ok, "function adapters must not be persistable")
}

func TestArgsGetters(t *testing.T) {
	args := op.Args{
		"s":      "x",
		"b":      true,
		"i64":    int64(3),
		"f":      float64(4),
		"frac":   4.5,
		"list":   []any{"a", "b"},
		"strs":   []string{"c"},
		"mixed":  []any{"a", 1},
		"number": 1,
	}

	s, err := args.String("s", "")
	require.NoError(t, err)
	assert.Equal(t, "x", s)
	s, err = args.String("missing", "def")
	require.NoError(t, err)
	assert.Equal(t, "def", s)
	_, err = args.String("number", "")
	assert.ErrorIs(t, err, op.ErrInvalidArgument)

	b, err := args.Bool("b", false)
	require.NoError(t, err)
	assert.True(t, b)
	_, err = args.Bool("s", false)
	assert.ErrorIs(t, err, op.ErrInvalidArgument)

	i, err := args.Int("i64", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, i)
	i, err = args.Int("f", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, i)
	_, err = args.Int("frac", 0)
	assert.ErrorIs(t, err, op.ErrInvalidArgument)

	l, err := args.Strings("list")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, l)
	l, err = args.Strings("strs")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, l)
	_, err = args.Strings("mixed")
	assert.ErrorIs(t, err, op.ErrInvalidArgument)
}

func TestArgsValidate(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "handle")
	require.NoError(t, err)
	defer f.Close()

	tests := map[string]struct {
		args      op.Args
		assertErr assert.ErrorAssertionFunc
	}{
		"nil args": {
			args:      nil,
			assertErr: assert.NoError,
		},
		"plain values": {
			args: op.Args{
				"s": "x", "i": 1, "f": 1.5, "b": true, "t": time.Unix(0, 0),
				"l": []any{"a", int64(2)}, "m": map[string]any{"k": []string{"v"}},
			},
			assertErr: assert.NoError,
		},
		"open file": {
			args:      op.Args{"handle": f},
			assertErr: assert.Error,
		},
		"channel": {
			args:      op.Args{"ch": make(chan int)},
			assertErr: assert.Error,
		},
		"function": {
			args:      op.Args{"fn": func() {}},
			assertErr: assert.Error,
		},
		"nested pointer": {
			args:      op.Args{"l": []any{"a", &struct{}{}}},
			assertErr: assert.Error,
		},
		"nil value": {
			args:      op.Args{"n": nil},
			assertErr: assert.Error,
		},
		"int keyed map": {
			args:      op.Args{"m": map[int]string{1: "a"}},
			assertErr: assert.Error,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := tc.args.Validate()
			tc.assertErr(t, err)
			if err != nil {
				assert.ErrorIs(t, err, op.ErrUnserializable)
			}
		})
	}
}

func TestParseArgs(t *testing.T) {
	args, err := op.ParseArgs([]string{
		`sep="\t"`, "header=false", "skip=2", "ratio=0.5", "name=rows",
		"col=a", "col=b", "inf=inf", "empty=", "mode=0644", "mask=0o755", "flags=0x1f",
	})
	require.NoError(t, err)
	assert.Equal(t, op.Args{
		"sep":    "\t",
		"header": false,
		"skip":   int64(2),
		"ratio":  0.5,
		"name":   "rows",
		"col":    []any{"a", "b"},
		"inf":    "inf",
		"empty":  "",
		"mode":   int64(0644),
		"mask":   int64(0755),
		"flags":  int64(0x1f),
	}, args)

	_, err = op.ParseArgs([]string{"novalue"})
	assert.ErrorIs(t, err, op.ErrInvalidArgument)
	_, err = op.ParseArgs([]string{`q="unterminated`})
	assert.ErrorIs(t, err, op.ErrInvalidArgument)
}
