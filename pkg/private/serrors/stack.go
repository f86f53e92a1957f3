// Copyright 2020 Anapaya Systems
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

package serrors

import (
	"fmt"
	"path"
	"runtime"

	"go.uber.org/zap/zapcore"
)

const maxDepth = 32

// Frame is a program counter inside a stack frame.
type Frame uintptr

func (f Frame) pc() uintptr { return uintptr(f) - 1 }

func (f Frame) location() (string, string, int) {
	fn := runtime.FuncForPC(f.pc())
	if fn == nil {
		return "unknown", "unknown", 0
	}
	file, line := fn.FileLine(f.pc())
	return fn.Name(), file, line
}

// MarshalText formats the frame as "function file:line".
func (f Frame) MarshalText() ([]byte, error) {
	name, file, line := f.location()
	if name == "unknown" {
		return []byte(name), nil
	}
	return []byte(fmt.Sprintf("%s %s:%d", path.Base(name), file, line)), nil
}

// StackTrace is a stack of Frames, innermost first.
type StackTrace []Frame

type stack []uintptr

// StackTrace returns the frames of the stack.
func (s *stack) StackTrace() StackTrace {
	f := make([]Frame, len(*s))
	for i := range f {
		f[i] = Frame((*s)[i])
	}
	return f
}

// MarshalLogArray implements zapcore.ArrayMarshaler.
func (s *stack) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, pc := range *s {
		t, err := Frame(pc).MarshalText()
		if err != nil {
			return err
		}
		enc.AppendByteString(t)
	}
	return nil
}

func callers() *stack {
	var pcs [maxDepth]uintptr
	// Skip runtime.Callers, callers, newErrorInfo and the exported constructor.
	n := runtime.Callers(4, pcs[:])
	var st stack = pcs[0:n]
	return &st
}
