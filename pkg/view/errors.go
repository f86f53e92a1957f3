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
	"github.com/clane9/dataviews/pkg/private/serrors"
)

var (
	// ErrInvalidTarget indicates a structurally invalid view: no targets, an
	// empty path, a nil nested view or a nil reader. Reachability of the
	// targets is never checked.
	ErrInvalidTarget = serrors.New("invalid view target")
	// ErrNoWriter is returned by Export and Solidify on views without writer.
	ErrNoWriter = serrors.New("view has no writer")
	// ErrNoPath is returned by Export when no target of the view is a path.
	ErrNoPath = serrors.New("view has no path target")
	// ErrSerialization indicates that the view definition cannot be encoded,
	// because an operation is not registry-backed or holds arguments that
	// cannot be persisted.
	ErrSerialization = serrors.New("view definition not serializable")
	// ErrDeserialization indicates a missing, unreadable, corrupted or
	// incompatible definition artifact.
	ErrDeserialization = serrors.New("view definition not deserializable")
	// ErrUnsupportedVersion is joined into ErrDeserialization for artifacts
	// of another format version.
	ErrUnsupportedVersion = serrors.New("unsupported definition version")
	// ErrResolution indicates that an artifact references an operation that
	// is not registered in the loading process.
	ErrResolution = serrors.New("operation not resolvable")
)
