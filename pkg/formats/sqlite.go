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
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/clane9/dataviews/pkg/private/serrors"
	"github.com/clane9/dataviews/pkg/view/op"
	"github.com/clane9/dataviews/private/storage/db"
)

// sqlite reads query results from and writes tables to sqlite databases.
//
// Arguments:
//   - query: the query to read. Takes precedence over table.
//   - table: the table to read in full, and the table to write. Writing
//     replaces the table.
//
// All cells are read as strings; NULL becomes the empty string.
type sqlite struct {
	query string
	table string
}

func newSqlite(args op.Args) (op.Format, error) {
	query, err := args.String("query", "")
	if err != nil {
		return nil, err
	}
	table, err := args.String("table", "")
	if err != nil {
		return nil, err
	}
	if query == "" && table == "" {
		return nil, serrors.JoinNoStack(op.ErrInvalidArgument, nil,
			"arg", "table", "reason", "query or table required")
	}
	return sqlite{query: query, table: table}, nil
}

func (s sqlite) Read(ctx context.Context, inputs ...any) (any, error) {
	p, err := singlePath(inputs)
	if err != nil {
		return nil, err
	}
	d, err := db.OpenSqliteReadOnly(p)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	query := s.query
	if query == "" {
		query = "SELECT * FROM " + db.QuoteIdent(s.table)
	}
	rows, err := d.QueryContext(ctx, query)
	if err != nil {
		return nil, db.NewReadError("querying", err, "path", p, "query", query)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, db.NewReadError("reading columns", err, "path", p)
	}
	table := &Table{Header: cols}
	values := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, db.NewReadError("scanning row", err, "path", p)
		}
		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = v.String
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, db.NewReadError("iterating rows", err, "path", p)
	}
	return table, nil
}

func (s sqlite) Write(ctx context.Context, data any, path string) error {
	if s.table == "" {
		return serrors.JoinNoStack(op.ErrInvalidArgument, nil,
			"arg", "table", "reason", "required for writing")
	}
	table, err := asTable(data)
	if err != nil {
		return err
	}
	if len(table.Header) == 0 {
		return db.NewInputDataError("table without header", nil, "table", s.table)
	}
	d, err := db.OpenSqlite(path)
	if err != nil {
		return err
	}
	defer d.Close()

	name := db.QuoteIdent(s.table)
	cols := make([]string, 0, len(table.Header))
	for _, c := range table.Header {
		cols = append(cols, db.QuoteIdent(c)+" TEXT")
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(table.Header)), ",")
	return db.WithTx(ctx, d, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
			return db.NewWriteError("dropping table", err, "table", s.table)
		}
		create := fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(cols, ", "))
		if _, err := tx.ExecContext(ctx, create); err != nil {
			return db.NewWriteError("creating table", err, "table", s.table)
		}
		stmt, err := tx.PrepareContext(ctx,
			fmt.Sprintf("INSERT INTO %s VALUES (%s)", name, placeholders))
		if err != nil {
			return db.NewWriteError("preparing insert", err, "table", s.table)
		}
		defer stmt.Close()
		args := make([]any, len(table.Header))
		for i, row := range table.Rows {
			if len(row) != len(table.Header) {
				return db.NewInputDataError("row width mismatch", nil,
					"row", i, "expected", len(table.Header), "actual", len(row))
			}
			for j := range row {
				args[j] = row[j]
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return db.NewWriteError("inserting row", err, "row", i)
			}
		}
		return nil
	})
}
