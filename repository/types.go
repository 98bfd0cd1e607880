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
	"errors"

	"github.com/tomoncle/keel/query"
	"github.com/tomoncle/keel/types"
)

// ErrMultipleResults reports a FindOne specification that matched more than
// one entity. The specification promised a 0..1 cardinality, so this is a
// caller contract violation and is never masked.
var ErrMultipleResults = errors.New("repository: specification matched more than one entity")

// ErrProjectionWithFetch reports a specification that projects away from
// the entity shape while also carrying fetch paths. Relation loading after
// a non-identity projection is meaningless, so the combination is rejected
// before the query runs.
var ErrProjectionWithFetch = errors.New("repository: projecting specification must use an empty fetch strategy")

// Keyed is the only structural requirement repositories place on entities:
// a unique identifier of key type K. Identity is key equality.
type Keyed[K comparable] interface {
	Key() K
}

// Reader defines specification-driven query operations for one entity type.
type Reader[T Keyed[K], K comparable] interface {
	// GetAll materializes every entity visible in the transactional scope.
	GetAll(ctx context.Context) ([]*T, error)

	// GetByKey looks up a single entity by key. Absence is types.Empty,
	// never an error. By default an underlying lookup fault is also masked
	// as Empty, matching the behavior this package was modeled on; see
	// SurfaceLookupFaults.
	GetByKey(ctx context.Context, key K) (types.Maybe[T], error)

	// Find applies the specification's transform, then each fetch path in
	// order, and materializes every match.
	Find(ctx context.Context, spec query.Specification[T]) ([]*T, error)

	// FindOne materializes the query like Find and enforces a 0..1
	// cardinality: zero matches is types.Empty, one match is wrapped, and
	// two or more fail with ErrMultipleResults.
	FindOne(ctx context.Context, spec query.Specification[T]) (types.Maybe[T], error)

	// FindPage materializes one page of matches with the total count.
	FindPage(ctx context.Context, spec query.Specification[T], page *types.PageRequest) (*types.Pagination[T], error)

	// Exists reports whether any entity matches without materializing the
	// result set.
	Exists(ctx context.Context, spec query.Specification[T]) (bool, error)
}

// Writer registers mutations into the owning unit of work's change set.
// Nothing is persisted until that unit of work commits. Multi-entity calls
// register sequentially with no atomicity at this layer; registration stops
// at the first failure.
type Writer[T Keyed[K], K comparable] interface {
	Add(entities ...*T) error
	Remove(entities ...*T) error
	Update(entities ...*T) error
}

// Repository combines specification-driven reads with deferred writes over
// one entity type bound to one unit of work. Many repositories may share a
// unit of work; all of them become invalid when it is disposed.
type Repository[T Keyed[K], K comparable] interface {
	Reader[T, K]
	Writer[T, K]
}
