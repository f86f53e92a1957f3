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
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"slices"
	"unicode/utf8"

	"github.com/clane9/dataviews/pkg/private/serrors"
	"github.com/clane9/dataviews/pkg/view/op"
)

// delim reads and writes delimiter separated tables.
//
// Arguments:
//   - sep: the field separator, a single character. Default tab.
//   - header: whether the first record is the header. Default true.
//   - comment: lines starting with this character are skipped. Default none.
//
// Several input paths are concatenated; their headers must match.
type delim struct {
	sep     rune
	header  bool
	comment rune
}

func newDelim(args op.Args) (op.Format, error) {
	sep, err := runeArg(args, "sep", "\t")
	if err != nil {
		return nil, err
	}
	header, err := args.Bool("header", true)
	if err != nil {
		return nil, err
	}
	comment, err := runeArg(args, "comment", "")
	if err != nil {
		return nil, err
	}
	if sep == 0 || sep == comment {
		return nil, serrors.JoinNoStack(op.ErrInvalidArgument, nil,
			"arg", "sep", "reason", "must be set and differ from comment")
	}
	return delim{sep: sep, header: header, comment: comment}, nil
}

func runeArg(args op.Args, key, def string) (rune, error) {
	s, err := args.String(key, def)
	if err != nil {
		return 0, err
	}
	if s == "" {
		return 0, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError {
		return 0, serrors.JoinNoStack(op.ErrInvalidArgument, nil,
			"arg", key, "value", s, "reason", "expected single character")
	}
	return r, nil
}

func (d delim) Read(ctx context.Context, inputs ...any) (any, error) {
	paths, err := pathInputs(inputs)
	if err != nil {
		return nil, err
	}
	table := &Table{}
	for i, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := d.readRecords(p)
		if err != nil {
			return nil, err
		}
		if d.header {
			if len(records) == 0 {
				return nil, serrors.New("missing header", "path", p)
			}
			if i == 0 {
				table.Header = records[0]
			} else if !slices.Equal(table.Header, records[0]) {
				return nil, serrors.New("header mismatch", "path", p,
					"expected", table.Header, "actual", records[0])
			}
			records = records[1:]
		}
		table.Rows = append(table.Rows, records...)
	}
	return table, nil
}

func (d delim) readRecords(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, serrors.Wrap("opening table", err, "path", path)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.Comma = d.sep
	r.Comment = d.comment
	records, err := r.ReadAll()
	if err != nil {
		return nil, serrors.Wrap("parsing table", err, "path", path)
	}
	return records, nil
}

func (d delim) Write(_ context.Context, data any, path string) error {
	table, err := asTable(data)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = d.sep
	if d.header && len(table.Header) > 0 {
		if err := w.Write(table.Header); err != nil {
			return serrors.Wrap("encoding header", err)
		}
	}
	if err := w.WriteAll(table.Rows); err != nil {
		return serrors.Wrap("encoding table", err)
	}
	return writeFile(path, buf.Bytes(), 0644)
}
