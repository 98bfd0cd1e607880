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

// Package keel is a storage-agnostic data-access layer: declarative query
// specifications with eager-load fetch strategies, generic repositories,
// and a unit of work that commits a batch of changes atomically.
//
// Typical use, one unit of work per logical operation:
//
//	uow := keel.NewUnitOfWork()
//	defer uow.Dispose()
//
//	orders := keel.NewRepository[Order, int64](uow)
//	if err := orders.Add(&Order{ID: 1, Total: 10}); err != nil {
//	    return err
//	}
//	if err := uow.Commit(ctx); err != nil {
//	    return err
//	}
package keel

import (
	"context"

	"github.com/tomoncle/keel/database"
	"github.com/tomoncle/keel/repository"
	"github.com/tomoncle/keel/unitofwork"
)

// Init opens the global database connection from configuration. It must be
// called once before NewUnitOfWork.
func Init(cfg *database.Config) error {
	_, err := database.InitDB(cfg)
	return err
}

// Close releases the global database connection.
func Close() error {
	return database.CloseDB()
}

// NewUnitOfWork creates a unit of work over the global database connection.
// The caller owns its lifecycle: exactly one of Commit or Dispose ends it,
// and Dispose must run on every exit path.
func NewUnitOfWork(opts ...unitofwork.Option) *unitofwork.UnitOfWork {
	return unitofwork.New(database.GetDB(), opts...)
}

// NewRepository binds a repository for entity type T to the given unit of
// work.
func NewRepository[T repository.Keyed[K], K comparable](uow *unitofwork.UnitOfWork, opts ...repository.Option) repository.Repository[T, K] {
	return repository.New[T, K](uow, opts...)
}

// CheckDatabaseOnline probes global database connectivity. Ordinary
// connectivity failures report false rather than an error.
func CheckDatabaseOnline(ctx context.Context) bool {
	return database.GetHealthStatus(ctx).Healthy
}
