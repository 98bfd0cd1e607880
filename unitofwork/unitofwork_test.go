/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package unitofwork

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type widget struct {
	bun.BaseModel `bun:"table:widgets,alias:w"`

	ID   int64  `bun:"id,pk"`
	Name string `bun:"name,notnull"`
}

func setupDB(t *testing.T) *bun.DB {
	t.Helper()
	sqlDB, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.NewCreateTable().Model((*widget)(nil)).Exec(context.Background())
	require.NoError(t, err)
	return db
}

func countWidgets(t *testing.T, db *bun.DB) int {
	t.Helper()
	n, err := db.NewSelect().Model((*widget)(nil)).Count(context.Background())
	require.NoError(t, err)
	return n
}

func insertOp(w *widget) Operation {
	return func(ctx context.Context, tx bun.IDB) error {
		_, err := tx.NewInsert().Model(w).Exec(ctx)
		return err
	}
}

func TestUnitOfWork_StartsActive(t *testing.T) {
	u := New(setupDB(t))
	defer u.Dispose()

	assert.Equal(t, StateActive, u.State())
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", u.ID().String())
	assert.Zero(t, u.Pending())
}

func TestUnitOfWork_CommitPersistsAllOperations(t *testing.T) {
	db := setupDB(t)
	u := New(db)
	defer u.Dispose()

	require.NoError(t, u.Register(insertOp(&widget{ID: 1, Name: "first"})))
	require.NoError(t, u.Register(insertOp(&widget{ID: 2, Name: "second"})))
	assert.Equal(t, 2, u.Pending())

	require.NoError(t, u.Commit(context.Background()))
	assert.Equal(t, StateCommitted, u.State())
	assert.Zero(t, u.Pending())
	assert.Equal(t, 2, countWidgets(t, db))
}

func TestUnitOfWork_CommitEmptyDelta(t *testing.T) {
	db := setupDB(t)
	u := New(db)
	defer u.Dispose()

	require.NoError(t, u.Commit(context.Background()))
	// A second commit with no intervening mutation persists an empty
	// delta without error and leaves storage untouched.
	require.NoError(t, u.Commit(context.Background()))
	assert.Equal(t, 0, countWidgets(t, db))
}

func TestUnitOfWork_DoubleCommitAfterMutation(t *testing.T) {
	db := setupDB(t)
	u := New(db)
	defer u.Dispose()

	require.NoError(t, u.Register(insertOp(&widget{ID: 1, Name: "only"})))
	require.NoError(t, u.Commit(context.Background()))
	require.NoError(t, u.Commit(context.Background()))

	assert.Equal(t, 1, countWidgets(t, db))
}

func TestUnitOfWork_FailedCommitRollsBackEverything(t *testing.T) {
	db := setupDB(t)
	u := New(db)
	defer u.Dispose()

	require.NoError(t, u.Register(insertOp(&widget{ID: 1, Name: "ok"})))
	// Duplicate primary key, failing the whole transaction.
	require.NoError(t, u.Register(insertOp(&widget{ID: 1, Name: "dup"})))

	err := u.Commit(context.Background())
	require.Error(t, err)

	// Atomic: the first insert must not survive the failed commit, and
	// the pending set stays for inspection.
	assert.Equal(t, 0, countWidgets(t, db))
	assert.Equal(t, 2, u.Pending())
}

func TestUnitOfWork_DisposeDiscardsPending(t *testing.T) {
	db := setupDB(t)
	u := New(db)

	require.NoError(t, u.Register(insertOp(&widget{ID: 1, Name: "gone"})))
	require.NoError(t, u.Register(insertOp(&widget{ID: 2, Name: "also gone"})))

	u.Dispose()

	assert.Equal(t, StateDisposed, u.State())
	assert.Equal(t, 0, countWidgets(t, db))
}

func TestUnitOfWork_DisposeIsIdempotent(t *testing.T) {
	u := New(setupDB(t))

	u.Dispose()
	u.Dispose()
	u.Dispose()

	assert.Equal(t, StateDisposed, u.State())
}

func TestUnitOfWork_OperationsAfterDisposeFail(t *testing.T) {
	u := New(setupDB(t))
	u.Dispose()

	assert.ErrorIs(t, u.Commit(context.Background()), ErrAlreadyDisposed)
	assert.ErrorIs(t, u.Register(insertOp(&widget{ID: 1, Name: "x"})), ErrAlreadyDisposed)

	_, err := u.DB()
	assert.ErrorIs(t, err, ErrAlreadyDisposed)
}

func TestUnitOfWork_CommitAfterDisposeDoesNotPersist(t *testing.T) {
	db := setupDB(t)
	u := New(db)

	require.NoError(t, u.Register(insertOp(&widget{ID: 1, Name: "x"})))
	u.Dispose()

	assert.ErrorIs(t, u.Commit(context.Background()), ErrAlreadyDisposed)
	assert.Equal(t, 0, countWidgets(t, db))
}

func TestUnitOfWork_CheckOnline(t *testing.T) {
	u := New(setupDB(t))
	assert.True(t, u.CheckOnline(context.Background()))

	u.Dispose()
	assert.False(t, u.CheckOnline(context.Background()))
}

func TestUnitOfWork_CheckOnlineWithNilDB(t *testing.T) {
	u := New(nil)
	defer u.Dispose()
	assert.False(t, u.CheckOnline(context.Background()))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "committed", StateCommitted.String())
	assert.Equal(t, "disposed", StateDisposed.String())
}
