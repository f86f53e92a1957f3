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

// Package op describes the read and write operations of a view.
//
// An operation is referenced by name and a set of bound keyword arguments
// (a Ref). Refs are plain data and can be persisted. At load time a Ref is
// resolved against a Registry that maps names to factories; the factory
// builds the actual Format from the arguments on every call.
//
// Plain Go functions can be used through ReadFunc and WriteFunc. They work
// for materialization and export, but cannot be persisted.
package op

import (
	"context"
)

// Reader produces a data value from its inputs. For every target of a view
// the inputs hold either the target path (string) or the materialized value
// of a nested view, in target order.
type Reader interface {
	Read(ctx context.Context, inputs ...any) (any, error)
}

// Writer persists data to path.
type Writer interface {
	Write(ctx context.Context, data any, path string) error
}

// Format is a Reader and a Writer for one external data format.
type Format interface {
	Reader
	Writer
}

// Encoder is implemented by operations that can be described by a Ref.
type Encoder interface {
	Ref() Ref
}

// Factory builds a Format from bound arguments. Factories must not keep
// state across calls.
type Factory func(args Args) (Format, error)

// Ref references a registered operation together with its bound arguments.
type Ref struct {
	Name string `toml:"name" json:"name" yaml:"name"`
	Args Args   `toml:"args,omitempty" json:"args,omitempty" yaml:"args,omitempty"`
}

// ReadFunc adapts a function to the Reader interface.
type ReadFunc func(ctx context.Context, inputs ...any) (any, error)

// Read calls f.
func (f ReadFunc) Read(ctx context.Context, inputs ...any) (any, error) {
	return f(ctx, inputs...)
}

// WriteFunc adapts a function to the Writer interface.
type WriteFunc func(ctx context.Context, data any, path string) error

// Write calls f.
func (f WriteFunc) Write(ctx context.Context, data any, path string) error {
	return f(ctx, data, path)
}

// Bound is a resolved Ref. It implements Reader, Writer and Encoder.
type Bound struct {
	ref     Ref
	factory Factory
}

// Ref returns a copy of the reference this operation was resolved from.
func (b *Bound) Ref() Ref {
	return Ref{Name: b.ref.Name, Args: b.ref.Args.Clone()}
}

// Read builds the format and reads from it. Argument errors surface here.
func (b *Bound) Read(ctx context.Context, inputs ...any) (any, error) {
	f, err := b.factory(b.ref.Args.Clone())
	if err != nil {
		return nil, err
	}
	return f.Read(ctx, inputs...)
}

// Write builds the format and writes to it. Argument errors surface here.
func (b *Bound) Write(ctx context.Context, data any, path string) error {
	f, err := b.factory(b.ref.Args.Clone())
	if err != nil {
		return err
	}
	return f.Write(ctx, data, path)
}

func (b *Bound) String() string {
	return b.ref.Name
}
