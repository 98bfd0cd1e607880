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

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/tomoncle/keel/database"
	"github.com/tomoncle/keel/query"
	"github.com/tomoncle/keel/types"
	"github.com/tomoncle/keel/unitofwork"
)

type settings struct {
	keyColumn          string
	surfaceLookupFault bool
}

// Option customizes a repository.
type Option func(*settings)

// WithKeyColumn overrides the column matched by GetByKey. The default is
// "id".
func WithKeyColumn(column string) Option {
	return func(s *settings) { s.keyColumn = column }
}

// SurfaceLookupFaults makes GetByKey return underlying storage faults
// instead of masking them as an absent value. Masking is the historical
// default; turning it off distinguishes "not found" from "lookup failed".
func SurfaceLookupFaults() Option {
	return func(s *settings) { s.surfaceLookupFault = true }
}

type baseRepositoryImpl[T Keyed[K], K comparable] struct {
	uow    *unitofwork.UnitOfWork
	logger database.Logger
	settings
}

// New returns a repository for entity type T bound to the given unit of
// work. The repository holds no state of its own beyond that binding and
// becomes invalid when the unit of work is disposed.
func New[T Keyed[K], K comparable](uow *unitofwork.UnitOfWork, opts ...Option) Repository[T, K] {
	s := settings{keyColumn: "id"}
	for _, opt := range opts {
		opt(&s)
	}
	return &baseRepositoryImpl[T, K]{
		uow:      uow,
		logger:   database.GetLogger(),
		settings: s,
	}
}

func (r *baseRepositoryImpl[T, K]) GetAll(ctx context.Context) ([]*T, error) {
	db, err := r.uow.DB()
	if err != nil {
		return nil, err
	}
	var entities []*T
	if err := db.NewSelect().Model(&entities).Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T, K]) GetByKey(ctx context.Context, key K) (types.Maybe[T], error) {
	db, err := r.uow.DB()
	if err != nil {
		return types.Empty[T](), err
	}
	var entity T
	err = db.NewSelect().Model(&entity).Where("? = ?", bun.Ident(r.keyColumn), key).Scan(ctx)
	if err == nil {
		return types.Of(entity), nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return types.Empty[T](), nil
	}
	if !r.surfaceLookupFault {
		// Historical behavior: a lookup fault reads as "not found". The
		// log entry is the only trace that storage actually failed.
		r.logger.Warn("lookup fault masked as absent",
			"key_column", r.keyColumn,
			"fault", database.Classify(err).String(),
			"error", err.Error(),
		)
		return types.Empty[T](), nil
	}
	return types.Empty[T](), err
}

func (r *baseRepositoryImpl[T, K]) Find(ctx context.Context, spec query.Specification[T]) ([]*T, error) {
	db, err := r.uow.DB()
	if err != nil {
		return nil, err
	}
	var entities []*T
	q, err := r.buildQuery(db.NewSelect().Model(&entities), spec)
	if err != nil {
		return nil, err
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T, K]) FindOne(ctx context.Context, spec query.Specification[T]) (types.Maybe[T], error) {
	entities, err := r.Find(ctx, spec)
	if err != nil {
		return types.Empty[T](), err
	}
	switch len(entities) {
	case 0:
		return types.Empty[T](), nil
	case 1:
		return types.Of(*entities[0]), nil
	default:
		return types.Empty[T](), fmt.Errorf("%w: got %d", ErrMultipleResults, len(entities))
	}
}

func (r *baseRepositoryImpl[T, K]) FindPage(ctx context.Context, spec query.Specification[T], page *types.PageRequest) (*types.Pagination[T], error) {
	db, err := r.uow.DB()
	if err != nil {
		return nil, err
	}
	var entities []*T
	q, err := r.buildQuery(db.NewSelect().Model(&entities), spec)
	if err != nil {
		return nil, err
	}
	pagination := types.NewPagination[T](page.Page(), page.PageSize())
	total, err := q.Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}
	err = q.
		Offset(page.Offset()).
		Limit(page.PageSize()).
		Order(page.Orders()...).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func (r *baseRepositoryImpl[T, K]) Exists(ctx context.Context, spec query.Specification[T]) (bool, error) {
	db, err := r.uow.DB()
	if err != nil {
		return false, err
	}
	q, err := r.buildQuery(db.NewSelect().Model((*T)(nil)), spec)
	if err != nil {
		return false, err
	}
	return q.Exists(ctx)
}

func (r *baseRepositoryImpl[T, K]) Add(entities ...*T) error {
	for _, entity := range entities {
		entity := entity
		err := r.uow.Register(func(ctx context.Context, tx bun.IDB) error {
			_, err := tx.NewInsert().Model(entity).Exec(ctx)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *baseRepositoryImpl[T, K]) Remove(entities ...*T) error {
	for _, entity := range entities {
		entity := entity
		err := r.uow.Register(func(ctx context.Context, tx bun.IDB) error {
			_, err := tx.NewDelete().Model(entity).WherePK().Exec(ctx)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *baseRepositoryImpl[T, K]) Update(entities ...*T) error {
	for _, entity := range entities {
		entity := entity
		err := r.uow.Register(func(ctx context.Context, tx bun.IDB) error {
			_, err := tx.NewUpdate().Model(entity).WherePK().Exec(ctx)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// buildQuery applies the fixed construction order: the specification's
// transform first, then every fetch path left to right. A strategy with a
// build failure, or a projecting specification carrying fetch paths, stops
// the query before it reaches storage.
func (r *baseRepositoryImpl[T, K]) buildQuery(q *bun.SelectQuery, spec query.Specification[T]) (*bun.SelectQuery, error) {
	fetch := spec.Fetch()
	if err := fetch.Err(); err != nil {
		return nil, err
	}
	if p, ok := spec.(query.Projector); ok && p.Projects() && !fetch.IsEmpty() {
		return nil, ErrProjectionWithFetch
	}
	q = spec.Apply(q)
	for _, path := range fetch.Paths() {
		q = q.Relation(path)
	}
	return q, nil
}
