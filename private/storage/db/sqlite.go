// Copyright 2025 ETH Zurich
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

// Package db opens sqlite database files used as view targets.
package db

import (
	"context"
	"database/sql"
	"net/url"
	"os"
	"strings"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/clane9/dataviews/pkg/private/serrors"
)

// OpenSqlite opens the sqlite database file at path, creating it if it does
// not exist. The returned pool is limited to a single connection, so every
// statement observes the writes of the previous one. The caller closes the
// database.
func OpenSqlite(path string) (*sql.DB, error) {
	path, err := checkPath(path)
	if err != nil {
		return nil, err
	}
	connParams := make(url.Values)
	// Start transactions as write transactions, so that busy_timeout applies
	// when the database is locked by another process.
	connParams.Add("_txlock", "immediate")
	connParams.Add("_pragma", "busy_timeout(1000)")
	connParams.Add("_pragma", "foreign_keys(1)")
	return open(path, connParams)
}

// OpenSqliteReadOnly opens the existing sqlite database file at path for
// reading. It never creates the file; a missing file is reported with an
// error matching fs.ErrNotExist.
func OpenSqliteReadOnly(path string) (*sql.DB, error) {
	path, err := checkPath(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, NewReadError("opening database", err, "path", path)
	}
	connParams := make(url.Values)
	connParams.Add("mode", "ro")
	connParams.Add("_pragma", "busy_timeout(1000)")
	return open(path, connParams)
}

func checkPath(path string) (string, error) {
	if path == "" || strings.Contains(path, ":memory:") {
		return "", serrors.New("sqlite database must be a named file", "path", path)
	}
	return strings.TrimPrefix(path, "file:"), nil
}

func open(path string, connParams url.Values) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?"+connParams.Encode())
	if err != nil {
		return nil, NewReadError("opening database", err, "path", path)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// WithTx runs fn in a transaction. The transaction is committed if fn
// succeeds and rolled back otherwise.
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return NewTxError("starting transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return NewTxError("committing transaction", err)
	}
	return nil
}

// QuoteIdent quotes an identifier such as a table or column name.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
