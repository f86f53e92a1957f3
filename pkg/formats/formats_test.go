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

package formats_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clane9/dataviews/pkg/formats"
	"github.com/clane9/dataviews/pkg/private/xtest"
	"github.com/clane9/dataviews/pkg/view/op"
)

var update = xtest.UpdateGoldenFiles()

func newRegistry(t *testing.T) *op.Registry {
	t.Helper()
	reg := op.NewRegistry()
	require.NoError(t, formats.Register(reg))
	return reg
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestRegister(t *testing.T) {
	reg := newRegistry(t)
	assert.Equal(t, []string{"bolt", "bytes", "delim", "json", "sqlite", "text", "toml", "yaml"},
		reg.Names())
	assert.ErrorIs(t, formats.Register(reg), op.ErrDuplicateOperation)
}

func TestDelim(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	dir := t.TempDir()

	t.Run("read tsv", func(t *testing.T) {
		p := writeTestFile(t, dir, "a.tsv", "name\tage\nada\t36\nbob\t41\n")
		got, err := reg.MustBind(formats.Delim, nil).Read(ctx, p)
		require.NoError(t, err)
		want := &formats.Table{
			Header: []string{"name", "age"},
			Rows:   [][]string{{"ada", "36"}, {"bob", "41"}},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("table mismatch (-want +got):\n%s", diff)
		}
	})
	t.Run("csv without header and comments", func(t *testing.T) {
		p := writeTestFile(t, dir, "b.csv", "# generated\n1,2\n3,4\n")
		d := reg.MustBind(formats.Delim, op.Args{"sep": ",", "header": false, "comment": "#"})
		got, err := d.Read(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, &formats.Table{Rows: [][]string{{"1", "2"}, {"3", "4"}}}, got)
	})
	t.Run("concatenate", func(t *testing.T) {
		p1 := writeTestFile(t, dir, "c1.tsv", "k\tv\na\t1\n")
		p2 := writeTestFile(t, dir, "c2.tsv", "k\tv\nb\t2\n")
		got, err := reg.MustBind(formats.Delim, nil).Read(ctx, p1, p2)
		require.NoError(t, err)
		assert.Equal(t, 2, got.(*formats.Table).Len())
	})
	t.Run("header mismatch", func(t *testing.T) {
		p1 := writeTestFile(t, dir, "d1.tsv", "k\tv\na\t1\n")
		p2 := writeTestFile(t, dir, "d2.tsv", "x\ty\nb\t2\n")
		_, err := reg.MustBind(formats.Delim, nil).Read(ctx, p1, p2)
		assert.Error(t, err)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := reg.MustBind(formats.Delim, nil).Read(ctx, filepath.Join(dir, "nope.tsv"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("invalid separator", func(t *testing.T) {
		_, err := reg.MustBind(formats.Delim, op.Args{"sep": "ab"}).Read(ctx, "x")
		assert.ErrorIs(t, err, op.ErrInvalidArgument)
	})
	t.Run("nested input", func(t *testing.T) {
		_, err := reg.MustBind(formats.Delim, nil).Read(ctx, &formats.Table{})
		assert.ErrorIs(t, err, formats.ErrInput)
	})
	t.Run("write round trip", func(t *testing.T) {
		d := reg.MustBind(formats.Delim, op.Args{"sep": ";"})
		p := filepath.Join(dir, "out.csv")
		in := &formats.Table{
			Header: []string{"a", "b"},
			Rows:   [][]string{{"x;y", "1"}, {"z", ""}},
		}
		require.NoError(t, d.Write(ctx, in, p))
		got, err := d.Read(ctx, p)
		require.NoError(t, err)
		assert.True(t, in.Equal(got.(*formats.Table)))
	})
	t.Run("write wrong data", func(t *testing.T) {
		err := reg.MustBind(formats.Delim, nil).Write(ctx, "text", filepath.Join(dir, "x"))
		assert.ErrorIs(t, err, formats.ErrData)
	})
}

func TestWriteGolden(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	tests := map[string]struct {
		op   *op.Bound
		ext  string
		data any
	}{
		"delim": {
			op:  reg.MustBind(formats.Delim, op.Args{"sep": ";"}),
			ext: ".csv",
			data: &formats.Table{
				Header: []string{"a", "b"},
				Rows:   [][]string{{"x;y", "1"}, {"z", ""}},
			},
		},
		"json": {
			op:  reg.MustBind(formats.JSON, op.Args{"indent": "  "}),
			ext: ".json",
			data: map[string]any{
				"name":  "foo",
				"count": int64(2),
				"tags":  []any{"a", "b"},
			},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "out"+tc.ext)
			require.NoError(t, tc.op.Write(ctx, tc.data, p))
			raw, err := os.ReadFile(p)
			require.NoError(t, err)
			xtest.AssertGolden(t, *update, xtest.SanitizedName(t)+tc.ext, raw)
		})
	}
}

func TestDocuments(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	dir := t.TempDir()

	tests := map[string]struct {
		name    string
		args    op.Args
		content string
		want    any
	}{
		"json": {
			name:    formats.JSON,
			content: `{"name": "ada", "langs": ["go", "c"], "age": 36, "ratio": 0.5}`,
			want: map[string]any{
				"name": "ada", "langs": []any{"go", "c"}, "age": int64(36), "ratio": 0.5,
			},
		},
		"yaml": {
			name:    formats.YAML,
			content: "name: ada\nlangs: [go, c]\nage: 36\nnested:\n  ok: true\n",
			want: map[string]any{
				"name": "ada", "langs": []any{"go", "c"}, "age": int64(36),
				"nested": map[string]any{"ok": true},
			},
		},
		"toml": {
			name:    formats.TOML,
			content: "name = \"ada\"\nlangs = [\"go\", \"c\"]\nage = 36\n",
			want: map[string]any{
				"name": "ada", "langs": []any{"go", "c"}, "age": int64(36),
			},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			f := reg.MustBind(tc.name, tc.args)
			p := writeTestFile(t, dir, "in."+name, tc.content)
			got, err := f.Read(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			out := filepath.Join(dir, "out."+name)
			require.NoError(t, f.Write(ctx, got, out))
			again, err := f.Read(ctx, out)
			require.NoError(t, err)
			assert.Equal(t, tc.want, again)
		})
	}

	t.Run("json indent", func(t *testing.T) {
		p := filepath.Join(dir, "indent.json")
		f := reg.MustBind(formats.JSON, op.Args{"indent": "  "})
		require.NoError(t, f.Write(ctx, map[string]any{"a": 1}, p))
		raw, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"a\": 1\n}", string(raw))
	})
	t.Run("corrupt", func(t *testing.T) {
		p := writeTestFile(t, dir, "corrupt.json", "{")
		_, err := reg.MustBind(formats.JSON, nil).Read(ctx, p)
		assert.Error(t, err)
	})
}

func TestText(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	dir := t.TempDir()
	p1 := writeTestFile(t, dir, "a.txt", "  hello ")
	p2 := writeTestFile(t, dir, "b.txt", "world\n")

	got, err := reg.MustBind(formats.Text, nil).Read(ctx, p1, p2)
	require.NoError(t, err)
	assert.Equal(t, "  hello world\n", got)

	got, err = reg.MustBind(formats.Text, op.Args{"trim": true}).Read(ctx, p1, p2)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)

	out := filepath.Join(dir, "out.txt")
	require.NoError(t, reg.MustBind(formats.Text, nil).Write(ctx, "new", out))
	got, err = reg.MustBind(formats.Text, nil).Read(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, "new", got)

	_, err = reg.MustBind(formats.Text, op.Args{"trim": "yes"}).Read(ctx, p1)
	assert.ErrorIs(t, err, op.ErrInvalidArgument)
}

func TestBytes(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	p := filepath.Join(t.TempDir(), "blob")

	f := reg.MustBind(formats.Bytes, op.Args{"mode": 0600})
	require.NoError(t, f.Write(ctx, []byte{0, 1, 2}, p))
	got, err := f.Read(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2}, got)

	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = f.Read(ctx, p, p)
	assert.ErrorIs(t, err, formats.ErrInput)
	assert.ErrorIs(t, f.Write(ctx, 42, p), formats.ErrData)

	t.Run("mode from flags", func(t *testing.T) {
		tests := map[string]os.FileMode{
			"mode=0644":   0644,
			"mode=0o640":  0640,
			`mode="0600"`: 0600,
			"mode=420":    0644,
		}
		for raw, want := range tests {
			args, err := op.ParseArgs([]string{raw})
			require.NoError(t, err)
			p := filepath.Join(t.TempDir(), "blob")
			require.NoError(t, reg.MustBind(formats.Bytes, args).Write(ctx, "x", p), raw)
			info, err := os.Stat(p)
			require.NoError(t, err)
			assert.Equal(t, want, info.Mode().Perm(), raw)
		}
	})
	t.Run("invalid mode", func(t *testing.T) {
		err := reg.MustBind(formats.Bytes, op.Args{"mode": "rw"}).Write(ctx, "x",
			filepath.Join(t.TempDir(), "blob"))
		assert.ErrorIs(t, err, op.ErrInvalidArgument)
	})
}

func TestSqlite(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	p := filepath.Join(t.TempDir(), "data.db")

	tbl := reg.MustBind(formats.Sqlite, op.Args{"table": "people"})
	in := &formats.Table{
		Header: []string{"name", "age"},
		Rows:   [][]string{{"ada", "36"}, {"bob", "41"}},
	}
	require.NoError(t, tbl.Write(ctx, in, p))
	got, err := tbl.Read(ctx, p)
	require.NoError(t, err)
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}

	// Writing replaces the table.
	require.NoError(t, tbl.Write(ctx, &formats.Table{
		Header: []string{"name"},
		Rows:   [][]string{{"eve"}},
	}, p))
	query := reg.MustBind(formats.Sqlite, op.Args{
		"query": "SELECT name, length(name) AS n FROM people",
	})
	got, err = query.Read(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, &formats.Table{
		Header: []string{"name", "n"},
		Rows:   [][]string{{"eve", "3"}},
	}, got)

	err = reg.MustBind(formats.Sqlite, op.Args{"query": "SELECT 1"}).Write(ctx, in, p)
	assert.ErrorIs(t, err, op.ErrInvalidArgument)
	_, err = reg.MustBind(formats.Sqlite, nil).Read(ctx, p)
	assert.ErrorIs(t, err, op.ErrInvalidArgument)

	t.Run("missing database", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing.db")
		_, err := tbl.Read(ctx, missing)
		assert.ErrorIs(t, err, os.ErrNotExist)
		_, err = os.Stat(missing)
		assert.ErrorIs(t, err, os.ErrNotExist, "reading must not create the database")
	})
}

func TestBolt(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	p := filepath.Join(t.TempDir(), "kv.db")

	f := reg.MustBind(formats.Bolt, op.Args{"bucket": "settings"})
	require.NoError(t, f.Write(ctx, map[string]string{"a": "1", "b": "2"}, p))
	got, err := f.Read(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, got)

	require.NoError(t, f.Write(ctx, map[string]any{"c": 3}, p))
	got, err = f.Read(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"c": "3"}, got)

	_, err = reg.MustBind(formats.Bolt, op.Args{"bucket": "other"}).Read(ctx, p)
	assert.Error(t, err)
	assert.ErrorIs(t, f.Write(ctx, []string{"x"}, p), formats.ErrData)
}

func TestTable(t *testing.T) {
	var nilTable *formats.Table
	assert.Zero(t, nilTable.Len())
	assert.True(t, nilTable.Equal(nil))

	a := &formats.Table{Header: []string{"x", "y"}, Rows: [][]string{{"1", "2"}}}
	b := &formats.Table{Header: []string{"x", "y"}, Rows: [][]string{{"1", "3"}}}
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(nil))
	assert.Equal(t, 1, a.Column("y"))
	assert.Equal(t, -1, a.Column("z"))

	// Field names agree across the document encodings.
	raw, err := toml.Marshal(a)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, toml.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "header")
	assert.Contains(t, decoded, "rows")
	var back formats.Table
	require.NoError(t, toml.Unmarshal(raw, &back))
	assert.True(t, a.Equal(&back))
}
