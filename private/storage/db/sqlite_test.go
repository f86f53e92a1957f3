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

package db_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clane9/dataviews/private/storage/db"
)

func TestOpenSqlite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	d, err := db.OpenSqlite(path)
	require.NoError(t, err)
	defer d.Close()

	err = db.WithTx(ctx, d, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "CREATE TABLE "+db.QuoteIdent(`we"ird`)+" (v TEXT)"); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "INSERT INTO "+db.QuoteIdent(`we"ird`)+" VALUES (?)", "x")
		return err
	})
	require.NoError(t, err)

	var v string
	require.NoError(t, d.QueryRowContext(ctx, `SELECT v FROM "we""ird"`).Scan(&v))
	assert.Equal(t, "x", v)
}

func TestWithTxRollback(t *testing.T) {
	ctx := context.Background()
	d, err := db.OpenSqlite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer d.Close()

	_, err = d.ExecContext(ctx, "CREATE TABLE t (v INTEGER)")
	require.NoError(t, err)

	errFail := db.NewWriteError("test", nil)
	err = db.WithTx(ctx, d, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO t VALUES (1)"); err != nil {
			return err
		}
		return errFail
	})
	assert.ErrorIs(t, err, db.ErrWriteFailed)

	var n int
	require.NoError(t, d.QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&n))
	assert.Zero(t, n)
}

func TestOpenSqliteMemory(t *testing.T) {
	_, err := db.OpenSqlite(":memory:")
	assert.Error(t, err)
}

func TestOpenSqliteReadOnly(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	_, err := db.OpenSqliteReadOnly(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorIs(t, err, db.ErrReadFailed)
	_, statErr := os.Stat(path)
	assert.ErrorIs(t, statErr, os.ErrNotExist, "database file must not be created")

	rw, err := db.OpenSqlite(path)
	require.NoError(t, err)
	_, err = rw.ExecContext(ctx, "CREATE TABLE t (v TEXT)")
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	ro, err := db.OpenSqliteReadOnly(path)
	require.NoError(t, err)
	defer ro.Close()
	var n int
	require.NoError(t, ro.QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&n))
	assert.Zero(t, n)
	_, err = ro.ExecContext(ctx, "INSERT INTO t VALUES ('x')")
	assert.Error(t, err)
}
