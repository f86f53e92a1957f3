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

// Package view implements views: small, serializable proxies for data that
// is cheap to reload from a canonical location but expensive to store.
//
// A view pairs one or more targets with a reader and an optional writer. It
// never holds the data itself. Materializing a view invokes the reader on
// every call; exporting invokes the writer. The definition of a view (its
// targets and operations, never the data) can be saved to a small artifact
// and loaded again in another process:
//
//	reg := op.NewRegistry()
//	formats.Register(reg)
//	tsv := reg.MustBind("delim", op.Args{"sep": "\t"})
//	v, err := view.New(tsv, tsv, view.Path("data.tsv"))
//	...
//	err = v.Save("data.tsv.view")
//	...
//	loaded, err := view.FromPath("data.tsv.view", view.WithRegistry(reg))
//	table, err := loaded.Materialize(ctx)
//
// Only operations resolved from an op.Registry can be saved. Views over
// op.ReadFunc or op.WriteFunc work in-process but fail to save with
// ErrSerialization.
package view

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"github.com/clane9/dataviews/pkg/log"
	"github.com/clane9/dataviews/pkg/private/serrors"
	"github.com/clane9/dataviews/pkg/view/op"
)

// Target is a single input of a view: either a path or a nested view.
type Target struct {
	path string
	view *View
}

// Path returns a path target. Filesystem paths are made absolute when the
// view is constructed; strings containing "://" are treated as URIs and
// kept verbatim.
func Path(p string) Target {
	return Target{path: p}
}

// Nested returns a target whose input is the materialized value of v.
func Nested(v *View) Target {
	return Target{view: v}
}

// Path returns the path of a path target and "" for a nested target.
func (t Target) Path() string {
	return t.path
}

// View returns the nested view, or nil for a path target.
func (t Target) View() *View {
	return t.view
}

// IsURI reports whether the target is a URI path.
func (t Target) IsURI() bool {
	return t.view == nil && isURI(t.path)
}

func (t Target) String() string {
	if t.view != nil {
		return "view(" + strings.Join(t.view.paths(), ",") + ")"
	}
	return t.path
}

func isURI(p string) bool {
	return strings.Contains(p, "://")
}

// View is a lazy proxy for data. A View is immutable and safe for
// concurrent use, as far as its reader and writer are.
type View struct {
	targets []Target
	reader  op.Reader
	writer  op.Writer

	// origin is the absolute path of the artifact the view was loaded from.
	origin  string
	metrics *Metrics
}

// New creates a view over targets. The writer may be nil, in which case the
// view can be materialized and saved but not exported. New does no I/O; the
// targets need not exist.
func New(reader op.Reader, writer op.Writer, targets ...Target) (*View, error) {
	return newView(reader, writer, targets, "", applyOptions(options{}, nil))
}

// Must is like New but panics on error.
func Must(reader op.Reader, writer op.Writer, targets ...Target) *View {
	v, err := New(reader, writer, targets...)
	if err != nil {
		panic(err)
	}
	return v
}

// newView validates and normalizes the targets. Relative filesystem paths
// are resolved against baseDir, or the working directory if baseDir is empty.
func newView(reader op.Reader, writer op.Writer, targets []Target, baseDir string,
	o options) (*View, error) {

	if reader == nil {
		return nil, serrors.JoinNoStack(ErrInvalidTarget, nil, "reason", "nil reader")
	}
	if len(targets) == 0 {
		return nil, serrors.JoinNoStack(ErrInvalidTarget, nil, "reason", "no targets")
	}
	normalized := make([]Target, 0, len(targets))
	for i, t := range targets {
		switch {
		case t.view != nil:
			normalized = append(normalized, t)
		case t.path == "":
			return nil, serrors.JoinNoStack(ErrInvalidTarget, nil,
				"index", i, "reason", "neither path nor view")
		case isURI(t.path):
			normalized = append(normalized, Target{path: t.path})
		case filepath.IsAbs(t.path):
			normalized = append(normalized, Target{path: filepath.Clean(t.path)})
		case baseDir != "":
			normalized = append(normalized, Target{path: filepath.Join(baseDir, t.path)})
		default:
			abs, err := filepath.Abs(t.path)
			if err != nil {
				return nil, serrors.Wrap("resolving target path", err, "path", t.path)
			}
			normalized = append(normalized, Target{path: abs})
		}
	}
	return &View{
		targets: normalized,
		reader:  reader,
		writer:  writer,
		metrics: o.metrics,
	}, nil
}

// With returns a copy of the view with the options applied. Only options
// affecting the runtime behavior, such as WithMetrics, have an effect.
func (v *View) With(opts ...Option) *View {
	c := *v
	c.metrics = applyOptions(options{metrics: v.metrics}, opts).metrics
	return &c
}

// Targets returns the targets of the view in order.
func (v *View) Targets() []Target {
	return append([]Target(nil), v.targets...)
}

// Reader returns the reader of the view.
func (v *View) Reader() op.Reader {
	return v.reader
}

// Writer returns the writer of the view, or nil.
func (v *View) Writer() op.Writer {
	return v.writer
}

// Path returns the first path target, or "" if all targets are nested views.
func (v *View) Path() string {
	for _, t := range v.targets {
		if t.view == nil {
			return t.path
		}
	}
	return ""
}

// Origin returns the absolute path of the definition artifact the view was
// loaded from, or "" for views constructed in-process. Save records the
// origin in the artifact only; it does not change the receiver.
func (v *View) Origin() string {
	return v.origin
}

func (v *View) paths() []string {
	var paths []string
	for _, t := range v.targets {
		if t.view != nil {
			paths = append(paths, t.view.paths()...)
			continue
		}
		paths = append(paths, t.path)
	}
	return paths
}

// Materialize reads the data of the view. Nested views are materialized
// first, in target order; then the reader is called with one input per
// target. Every call reads afresh. Errors of the reader are returned
// unchanged.
func (v *View) Materialize(ctx context.Context) (any, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "view.materialize")
	defer span.Finish()
	start := time.Now()

	data, err := v.materialize(ctx)

	elapsed := time.Since(start)
	v.metrics.materialized(elapsed.Seconds(), err)
	logger := log.FromCtx(ctx)
	if err != nil {
		ext.Error.Set(span, true)
		logger.Debug("Materializing view failed", "targets", v.paths(), "err", err)
		return nil, err
	}
	logger.Debug("Materialized view", "targets", v.paths(), "duration", elapsed)
	return data, nil
}

func (v *View) materialize(ctx context.Context) (any, error) {
	inputs := make([]any, 0, len(v.targets))
	for _, t := range v.targets {
		if t.view == nil {
			inputs = append(inputs, t.path)
			continue
		}
		data, err := t.view.Materialize(ctx)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, data)
	}
	return v.reader.Read(ctx, inputs...)
}

// Export writes data to the path of the view through its writer. Errors of
// the writer are returned unchanged.
func (v *View) Export(ctx context.Context, data any) error {
	if v.writer == nil {
		return ErrNoWriter
	}
	p := v.Path()
	if p == "" {
		return ErrNoPath
	}
	return v.write(ctx, data, p)
}

// Solidify materializes the view and writes the result to dst through the
// writer of the view.
func (v *View) Solidify(ctx context.Context, dst string) error {
	if v.writer == nil {
		return ErrNoWriter
	}
	data, err := v.Materialize(ctx)
	if err != nil {
		return err
	}
	return v.write(ctx, data, dst)
}

func (v *View) write(ctx context.Context, data any, path string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "view.export")
	defer span.Finish()
	span.SetTag("path", path)

	err := v.writer.Write(ctx, data, path)
	v.metrics.exported(err)
	if err != nil {
		ext.Error.Set(span, true)
		log.FromCtx(ctx).Debug("Exporting view data failed", "path", path, "err", err)
		return err
	}
	log.FromCtx(ctx).Debug("Exported view data", "path", path)
	return nil
}

// Rebase returns a copy of the view where every filesystem path target
// below oldDir is moved to the same relative location below newDir. Nested
// views are rebased recursively. URI targets are never changed.
func (v *View) Rebase(oldDir, newDir string) *View {
	c := *v
	c.targets = make([]Target, 0, len(v.targets))
	for _, t := range v.targets {
		switch {
		case t.view != nil:
			c.targets = append(c.targets, Target{view: t.view.Rebase(oldDir, newDir)})
		case isURI(t.path):
			c.targets = append(c.targets, t)
		default:
			c.targets = append(c.targets, Target{path: rebasePath(t.path, oldDir, newDir)})
		}
	}
	return &c
}

// rebasePath keeps the offset of p relative to oldDir and applies it to
// newDir. Paths outside oldDir keep their ../ offset and move as well. URIs
// and paths on another volume, which have no relative form, are returned
// unchanged.
func rebasePath(p, oldDir, newDir string) string {
	if isURI(p) {
		return p
	}
	rel, err := filepath.Rel(oldDir, p)
	if err != nil {
		return p
	}
	return filepath.Join(newDir, rel)
}
