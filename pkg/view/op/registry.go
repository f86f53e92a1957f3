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
	"sort"
	"sync"

	"github.com/clane9/dataviews/pkg/private/serrors"
)

var (
	// ErrUnknownOperation indicates that no factory is registered for a name.
	ErrUnknownOperation = serrors.New("unknown operation")
	// ErrDuplicateOperation indicates that a name is already registered.
	ErrDuplicateOperation = serrors.New("operation already registered")
)

// DefaultRegistry is the registry views resolve against unless told
// otherwise. It starts out empty.
var DefaultRegistry = NewRegistry()

// Registry maps operation names to factories. It is safe for concurrent use.
type Registry struct {
	mtx       sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" {
		return serrors.New("empty operation name")
	}
	if f == nil {
		return serrors.New("nil factory", "name", name)
	}
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if _, ok := r.factories[name]; ok {
		return serrors.JoinNoStack(ErrDuplicateOperation, nil, "name", name)
	}
	r.factories[name] = f
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	f, ok := r.factories[name]
	if !ok {
		return nil, serrors.JoinNoStack(ErrUnknownOperation, nil, "name", name)
	}
	return f, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve binds ref to its registered factory. Only the name is checked;
// the arguments are interpreted on every call of the returned operation.
func (r *Registry) Resolve(ref Ref) (*Bound, error) {
	f, err := r.Lookup(ref.Name)
	if err != nil {
		return nil, err
	}
	return &Bound{
		ref:     Ref{Name: ref.Name, Args: ref.Args.Clone()},
		factory: f,
	}, nil
}

// Bind is a shorthand for Resolve(Ref{Name: name, Args: args}).
func (r *Registry) Bind(name string, args Args) (*Bound, error) {
	return r.Resolve(Ref{Name: name, Args: args})
}

// MustBind is like Bind but panics on error.
func (r *Registry) MustBind(name string, args Args) *Bound {
	b, err := r.Bind(name, args)
	if err != nil {
		panic(err)
	}
	return b
}
