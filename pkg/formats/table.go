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
	"slices"
)

// Table is a table of string cells, as read from delimited text files and
// sqlite query results.
type Table struct {
	// Header holds the column names. It is empty for headerless tables.
	Header []string `json:"header,omitempty" yaml:"header,omitempty" toml:"header,omitempty"`
	// Rows holds the cells, row by row.
	Rows [][]string `json:"rows" yaml:"rows" toml:"rows"`
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Equal reports whether t and o have the same header and cells.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	return slices.Equal(t.Header, o.Header) &&
		slices.EqualFunc(t.Rows, o.Rows, func(a, b []string) bool {
			return slices.Equal(a, b)
		})
}

// Column returns the index of the named column, or -1.
func (t *Table) Column(name string) int {
	return slices.Index(t.Header, name)
}

func asTable(data any) (*Table, error) {
	switch t := data.(type) {
	case *Table:
		if t == nil {
			return nil, dataError("*formats.Table", data)
		}
		return t, nil
	case Table:
		return &t, nil
	case [][]string:
		return &Table{Rows: t}, nil
	default:
		return nil, dataError("*formats.Table", data)
	}
}
