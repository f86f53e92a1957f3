// Copyright 2016 ETH Zurich
// Copyright 2019 ETH Zurich, Anapaya Systems
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

package serrors_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/clane9/dataviews/pkg/private/serrors"
)

type testErrType struct {
	msg string
}

func (e *testErrType) Error() string {
	return e.msg
}

type testTimeoutErr struct {
	timeout bool
	cause   error
}

func (e *testTimeoutErr) Error() string { return "timeout err" }
func (e *testTimeoutErr) Timeout() bool { return e.timeout }
func (e *testTimeoutErr) Unwrap() error { return e.cause }

func newJSONLogger(b io.Writer) *zap.Logger {
	encoderCfg := zapcore.EncoderConfig{
		MessageKey:  "msg",
		LevelKey:    "level",
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
	return zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(b), zapcore.DebugLevel))
}

func TestIsTimeout(t *testing.T) {
	assert.False(t, serrors.IsTimeout(serrors.New("no timeout")))
	assert.True(t, serrors.IsTimeout(
		serrors.Wrap("reading", &testTimeoutErr{timeout: true})))
	assert.False(t, serrors.IsTimeout(serrors.Wrap("reading", &testTimeoutErr{
		cause: &testTimeoutErr{timeout: true},
	})))
}

func TestWrap(t *testing.T) {
	t.Run("Is", func(t *testing.T) {
		err := serrors.New("simple err")
		wrapped := serrors.Wrap("msg", err, "path", "/tmp/x")
		assert.ErrorIs(t, wrapped, err)
		assert.ErrorIs(t, wrapped, wrapped)
	})
	t.Run("As", func(t *testing.T) {
		err := &testErrType{msg: "test err"}
		wrapped := serrors.WrapNoStack("msg", err, "path", "/tmp/x")
		var errAs *testErrType
		require.True(t, errors.As(wrapped, &errAs))
		assert.Equal(t, err, errAs)
	})
	t.Run("stdlib cause", func(t *testing.T) {
		wrapped := serrors.Wrap("opening", fs.ErrNotExist, "path", "/tmp/x")
		assert.ErrorIs(t, wrapped, fs.ErrNotExist)
		assert.Equal(t, "opening {path=/tmp/x}: file does not exist", wrapped.Error())
	})
}

func TestJoin(t *testing.T) {
	sentinel := serrors.New("sentinel")
	cause := &testErrType{msg: "cause"}
	joined := serrors.Join(sentinel, cause, "k", 1)
	assert.ErrorIs(t, joined, sentinel)
	assert.ErrorIs(t, joined, joined)
	var errAs *testErrType
	require.True(t, errors.As(joined, &errAs))
	assert.Equal(t, "sentinel {k=1}: cause", joined.Error())

	assert.Nil(t, serrors.Join(nil, nil))
	assert.Nil(t, serrors.JoinNoStack(nil, nil))
}

func TestNew(t *testing.T) {
	err1 := serrors.New("err msg", "someCtx", "value")
	err2 := serrors.New("err msg", "someCtx", "value")
	assert.ErrorIs(t, err1, err1)
	assert.False(t, errors.Is(err1, err2))
	assert.Equal(t, "err msg {someCtx=value}", err1.Error())
}

func TestContextSorted(t *testing.T) {
	err := serrors.New("msg", "b", 2, "a", 1)
	assert.Equal(t, "msg {a=1; b=2}", err.Error())
}

func TestList(t *testing.T) {
	var list serrors.List
	assert.Nil(t, list.ToError())
	first := serrors.New("err1")
	list = serrors.List{first, serrors.New("err2")}
	err := list.ToError()
	require.Error(t, err)
	assert.ErrorIs(t, err, first)
	assert.Equal(t, "[ err1; err2 ]", err.Error())
}

func TestAtMostOneStacktrace(t *testing.T) {
	err := errors.New("core")
	for i := range [20]int{} {
		err = serrors.Wrap("wrap", err, "level", i)
	}
	var b bytes.Buffer
	newJSONLogger(&b).Sugar().Infow("Failed to do thing", "err", err)
	require.Equal(t, 1, bytes.Count(b.Bytes(), []byte("stacktrace")))
}

func TestLogEncoding(t *testing.T) {
	err := serrors.WrapNoStack("saving view", errors.New("disk full"), "path", "a.view")
	var b bytes.Buffer
	newJSONLogger(&b).Sugar().Infow("Failed", "err", err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(b.Bytes(), &parsed))
	encoded, ok := parsed["err"].(map[string]any)
	require.True(t, ok, "err should be encoded as object: %s", b.String())
	assert.Equal(t, "saving view", encoded["msg"])
	assert.Equal(t, "disk full", encoded["cause"])
	assert.Equal(t, "a.view", encoded["path"])
	assert.NotContains(t, encoded, "stacktrace")
}

func TestStackTrace(t *testing.T) {
	err := serrors.New("with stack")
	var st interface{ StackTrace() serrors.StackTrace }
	require.True(t, errors.As(err, &st))
	require.NotEmpty(t, st.StackTrace())
	text, mErr := st.StackTrace()[0].MarshalText()
	require.NoError(t, mErr)
	assert.Contains(t, string(text), "TestStackTrace")
}

func ExampleWrap() {
	var ErrNoSpace = serrors.New("no space", "dev", "sd0")
	wrappedErr := serrors.Wrap("wrap with more context", ErrNoSpace, "ctx", 1)

	fmt.Println(errors.Is(wrappedErr, ErrNoSpace))
	fmt.Printf("\n%v", wrappedErr)
	// Output:
	// true
	//
	// wrap with more context {ctx=1}: no space {dev=sd0}
}

func ExampleJoin() {
	var cause = fmt.Errorf("sd0 unresponsive: %w", io.ErrNoProgress)
	var ErrDB = errors.New("db")
	wrapped := serrors.Join(ErrDB, cause, "ctx", 1)

	fmt.Println(errors.Is(wrapped, io.ErrNoProgress))
	fmt.Println(errors.Is(wrapped, ErrDB))
	fmt.Printf("\n%v", wrapped)
	// Output:
	// true
	// true
	//
	// db {ctx=1}: sd0 unresponsive: multiple Read calls return no data or error
}
