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

package query

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID    int64   `bun:"id,pk"`
	Total float64 `bun:"total"`
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqlDB, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func render(t *testing.T, db *bun.DB, spec Specification[order]) string {
	t.Helper()
	q := db.NewSelect().Model((*order)(nil))
	return spec.Apply(q).String()
}

func TestSpec_WhereAnd(t *testing.T) {
	db := newTestDB(t)

	spec := Where[order]("total > ?", 10).And("id < ?", 100)
	sqlText := render(t, db, spec)

	assert.Contains(t, sqlText, "total > 10")
	assert.Contains(t, sqlText, "id < 100")
	assert.NoError(t, spec.Fetch().Err())
	assert.True(t, spec.Fetch().IsEmpty())
}

func TestSpec_Or(t *testing.T) {
	db := newTestDB(t)

	sqlText := render(t, db, Where[order]("total > ?", 10).Or("total = ?", 0))
	assert.Contains(t, sqlText, "OR")
}

func TestSpec_ZeroValueMatchesAll(t *testing.T) {
	db := newTestDB(t)

	sqlText := render(t, db, New[order]())
	assert.NotContains(t, sqlText, "WHERE")
}

func TestSpec_OrderByAndLimit(t *testing.T) {
	db := newTestDB(t)

	sqlText := render(t, db, New[order]().OrderBy("total DESC").Limit(5))
	assert.Contains(t, sqlText, "ORDER BY")
	assert.Contains(t, sqlText, "LIMIT 5")
}

func TestSpec_SelectMarksProjection(t *testing.T) {
	spec := New[order]().Select("id")
	assert.True(t, spec.Projects())

	db := newTestDB(t)
	sqlText := render(t, db, spec)
	assert.True(t, strings.Contains(sqlText, `"id"`))
}

func TestSpec_DefaultDoesNotProject(t *testing.T) {
	assert.False(t, New[order]().Projects())
	assert.False(t, Where[order]("total > ?", 1).Projects())
}

func TestSpec_IncludeBuildsFetchStrategy(t *testing.T) {
	spec := New[order]().Include("Items").Include("Customer", "Address")

	require.NoError(t, spec.Fetch().Err())
	assert.Equal(t, []string{"Items", "Customer.Address"}, spec.Fetch().Paths())
}

func TestSpec_WithFetch(t *testing.T) {
	f := NewFetchStrategy().Include("Items")
	spec := Where[order]("total > ?", 1).WithFetch(f)

	assert.Equal(t, []string{"Items"}, spec.Fetch().Paths())
}

func TestSpec_FetchDefaultsToEmpty(t *testing.T) {
	f := New[order]().Fetch()
	require.NotNil(t, f)
	assert.True(t, f.IsEmpty())
}

func TestAll_ComposesByWrapping(t *testing.T) {
	db := newTestDB(t)

	// The outer layer adds a filter without knowing how the inner one is
	// built.
	inner := Where[order]("total > ?", 10).Include("Items")
	outer := Where[order]("id < ?", 100).Include("Customer")
	spec := All[order](inner, outer)

	sqlText := render(t, db, spec)
	assert.Contains(t, sqlText, "total > 10")
	assert.Contains(t, sqlText, "id < 100")

	assert.Equal(t, []string{"Items", "Customer"}, spec.Fetch().Paths())
}

func TestAll_PropagatesFetchError(t *testing.T) {
	broken := New[order]().Include("not an identifier")
	spec := All[order](broken, New[order]())

	assert.ErrorIs(t, spec.Fetch().Err(), ErrUnsupportedPath)
}

func TestAll_ProjectsWhenAnyInnerProjects(t *testing.T) {
	plain := Where[order]("total > ?", 1)
	projecting := New[order]().Select("id")

	p, ok := All[order](plain, projecting).(Projector)
	require.True(t, ok)
	assert.True(t, p.Projects())

	p, ok = All[order](plain).(Projector)
	require.True(t, ok)
	assert.False(t, p.Projects())
}
