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

package view

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/clane9/dataviews/pkg/log"
	"github.com/clane9/dataviews/pkg/private/serrors"
	"github.com/clane9/dataviews/pkg/view/op"
)

const (
	// Version is the version of the definition artifact format.
	Version = 1
	// Extension is the conventional file extension of definition artifacts.
	Extension = ".view"
)

// Definition is the persisted form of a view. Nested definitions carry
// neither version nor origin.
type Definition struct {
	Version int                `toml:"version,omitempty" json:"version,omitempty" yaml:"version,omitempty"`
	Origin  string             `toml:"origin,omitempty" json:"origin,omitempty" yaml:"origin,omitempty"`
	Reader  *op.Ref            `toml:"reader" json:"reader" yaml:"reader"`
	Writer  *op.Ref            `toml:"writer,omitempty" json:"writer,omitempty" yaml:"writer,omitempty"`
	Targets []TargetDefinition `toml:"targets" json:"targets" yaml:"targets"`
}

// TargetDefinition is the persisted form of a target. Exactly one field is
// set.
type TargetDefinition struct {
	Path string      `toml:"path,omitempty" json:"path,omitempty" yaml:"path,omitempty"`
	View *Definition `toml:"view,omitempty" json:"view,omitempty" yaml:"view,omitempty"`
}

// Definition returns the persistable definition of the view. It fails with
// ErrSerialization if an operation is not registry-backed or holds
// arguments that cannot be persisted.
func (v *View) Definition() (*Definition, error) {
	def, err := v.definition()
	if err != nil {
		return nil, err
	}
	def.Version = Version
	def.Origin = v.origin
	return def, nil
}

func (v *View) definition() (*Definition, error) {
	reader, err := encodeOp("reader", v.reader)
	if err != nil {
		return nil, err
	}
	def := &Definition{Reader: reader}
	if v.writer != nil {
		if def.Writer, err = encodeOp("writer", v.writer); err != nil {
			return nil, err
		}
	}
	for _, t := range v.targets {
		if t.view == nil {
			def.Targets = append(def.Targets, TargetDefinition{Path: t.path})
			continue
		}
		nested, err := t.view.definition()
		if err != nil {
			return nil, err
		}
		def.Targets = append(def.Targets, TargetDefinition{View: nested})
	}
	return def, nil
}

func encodeOp(role string, o any) (*op.Ref, error) {
	enc, ok := o.(op.Encoder)
	if !ok {
		return nil, serrors.JoinNoStack(ErrSerialization, nil, "op", role,
			"type", fmt.Sprintf("%T", o), "reason", "not a registered operation")
	}
	ref := enc.Ref()
	if err := ref.Args.Validate(); err != nil {
		return nil, serrors.JoinNoStack(ErrSerialization, err, "op", role, "name", ref.Name)
	}
	return &ref, nil
}

// Marshal encodes the definition of the view. The result does not record
// an origin, so loading it never rebases targets.
func (v *View) Marshal() ([]byte, error) {
	def, err := v.Definition()
	if err != nil {
		return nil, err
	}
	def.Origin = ""
	return encode(def)
}

func encode(def *Definition) ([]byte, error) {
	raw, err := toml.Marshal(def)
	if err != nil {
		return nil, serrors.JoinNoStack(ErrSerialization, err)
	}
	return raw, nil
}

// Save writes the definition of the view to path in a single write. The
// data targets are neither read nor required to exist. Nothing is written
// if the definition cannot be encoded.
func (v *View) Save(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return serrors.Wrap("resolving definition path", err, "path", path)
	}
	def, err := v.Definition()
	if err != nil {
		return err
	}
	def.Origin = abs
	raw, err := encode(def)
	if err != nil {
		return err
	}
	if filepath.Ext(abs) != Extension {
		log.Info("View definition saved without conventional extension",
			"path", abs, "extension", Extension)
	}
	if err := os.WriteFile(abs, raw, 0644); err != nil {
		return serrors.Wrap("writing view definition", err, "path", abs)
	}
	return nil
}

// FromPath loads a view from the definition artifact at path. Operations
// are resolved against op.DefaultRegistry unless WithRegistry is given.
//
// If the artifact was saved in another directory than it is loaded from,
// filesystem path targets are rebased to the new location. Relative path
// targets are resolved against the artifact directory.
func FromPath(path string, opts ...Option) (*View, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, serrors.Join(ErrDeserialization, err, "path", path)
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, serrors.Join(ErrDeserialization, err, "path", abs)
	}
	def, err := decode(raw)
	if err != nil {
		return nil, serrors.WrapNoStack("loading view definition", err, "path", abs)
	}
	dir := filepath.Dir(abs)
	if def.Origin != "" {
		if oldDir := filepath.Dir(def.Origin); oldDir != dir {
			log.Debug("Rebasing view targets", "from", oldDir, "to", dir)
			rebaseDefinition(def, oldDir, dir)
		}
	}
	v, err := fromDefinition(def, dir, applyOptions(options{}, opts))
	if err != nil {
		return nil, serrors.WrapNoStack("loading view definition", err, "path", abs)
	}
	v.origin = abs
	return v, nil
}

func rebaseDefinition(def *Definition, oldDir, newDir string) {
	for i := range def.Targets {
		t := &def.Targets[i]
		if t.View != nil {
			rebaseDefinition(t.View, oldDir, newDir)
			continue
		}
		if filepath.IsAbs(t.Path) {
			t.Path = rebasePath(t.Path, oldDir, newDir)
		}
	}
}

// Unmarshal decodes a view from an encoded definition. Relative path
// targets are resolved against the working directory and no rebasing takes
// place.
func Unmarshal(raw []byte, opts ...Option) (*View, error) {
	def, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return fromDefinition(def, "", applyOptions(options{}, opts))
}

func decode(raw []byte) (*Definition, error) {
	var def Definition
	dec := toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields()
	if err := dec.Decode(&def); err != nil {
		return nil, serrors.JoinNoStack(ErrDeserialization, err)
	}
	if err := checkVersion(&def); err != nil {
		return nil, err
	}
	return &def, nil
}

func checkVersion(def *Definition) error {
	if def.Version != Version {
		return serrors.JoinNoStack(ErrDeserialization,
			serrors.JoinNoStack(ErrUnsupportedVersion, nil,
				"version", def.Version, "supported", Version))
	}
	return nil
}

func fromDefinition(def *Definition, baseDir string, o options) (*View, error) {
	if def.Reader == nil {
		return nil, serrors.JoinNoStack(ErrDeserialization, nil, "reason", "missing reader")
	}
	reader, err := resolve(o.registry, *def.Reader)
	if err != nil {
		return nil, err
	}
	var writer op.Writer
	if def.Writer != nil {
		w, err := resolve(o.registry, *def.Writer)
		if err != nil {
			return nil, err
		}
		writer = w
	}
	targets := make([]Target, 0, len(def.Targets))
	for i, t := range def.Targets {
		switch {
		case t.View != nil && t.Path != "":
			return nil, serrors.JoinNoStack(ErrDeserialization, nil,
				"target", i, "reason", "both path and view set")
		case t.View != nil:
			nested, err := fromDefinition(t.View, baseDir, o)
			if err != nil {
				return nil, err
			}
			targets = append(targets, Nested(nested))
		default:
			targets = append(targets, Path(t.Path))
		}
	}
	v, err := newView(reader, writer, targets, baseDir, o)
	if err != nil {
		return nil, serrors.JoinNoStack(ErrDeserialization, err)
	}
	return v, nil
}

func resolve(r *op.Registry, ref op.Ref) (op.Format, error) {
	b, err := r.Resolve(ref)
	if err != nil {
		return nil, serrors.JoinNoStack(ErrResolution, err, "name", ref.Name)
	}
	return b, nil
}
