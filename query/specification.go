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
	"github.com/uptrace/bun"
)

// Specification is a reusable, declarative description of a query over
// entities of type T. Apply transforms a base select query without touching
// storage; Fetch lists the relation paths to load alongside the result.
//
// A specification is stateless: the same value may be applied concurrently
// and across repositories of the same entity type.
type Specification[T any] interface {
	// Apply adds the specification's filtering and shaping to the base
	// query and returns it. Implementations must not execute the query.
	Apply(q *bun.SelectQuery) *bun.SelectQuery

	// Fetch returns the associated fetch strategy. Implementations with no
	// eager loading return an empty strategy, never nil semantics that
	// differ from empty.
	Fetch() *FetchStrategy
}

// Projector is implemented by specifications whose Apply changes the
// element shape away from the entity type, e.g. by selecting a subset of
// columns. Repositories refuse to combine such specifications with a
// non-empty fetch strategy: relation loading is only meaningful before a
// projection.
type Projector interface {
	Projects() bool
}

type condition struct {
	expr string
	args []interface{}
	or   bool
}

// Spec is the concrete specification builder. Conditions, ordering, and the
// fetch strategy accumulate through chained calls; the zero value matches
// every entity.
type Spec[T any] struct {
	conds   []condition
	columns []string
	orders  []string
	limit   int
	fetch   *FetchStrategy
}

var _ Specification[struct{}] = (*Spec[struct{}])(nil)
var _ Projector = (*Spec[struct{}])(nil)

// New returns a specification matching every entity of type T.
func New[T any]() *Spec[T] {
	return &Spec[T]{}
}

// Where starts a specification with one condition. The expression uses Bun
// placeholder syntax, e.g. Where[Order]("total > ?", 10).
func Where[T any](expr string, args ...interface{}) *Spec[T] {
	return New[T]().And(expr, args...)
}

// And appends a condition joined with AND.
func (s *Spec[T]) And(expr string, args ...interface{}) *Spec[T] {
	s.conds = append(s.conds, condition{expr: expr, args: args})
	return s
}

// Or appends a condition joined with OR.
func (s *Spec[T]) Or(expr string, args ...interface{}) *Spec[T] {
	s.conds = append(s.conds, condition{expr: expr, args: args, or: true})
	return s
}

// Select narrows the query to the given columns. This is a non-identity
// projection: the specification must then keep an empty fetch strategy.
func (s *Spec[T]) Select(columns ...string) *Spec[T] {
	s.columns = append(s.columns, columns...)
	return s
}

// OrderBy appends ordering clauses, e.g. OrderBy("total DESC", "id ASC").
func (s *Spec[T]) OrderBy(orders ...string) *Spec[T] {
	s.orders = append(s.orders, orders...)
	return s
}

// Limit caps the number of rows returned.
func (s *Spec[T]) Limit(n int) *Spec[T] {
	s.limit = n
	return s
}

// WithFetch associates a fetch strategy with the specification.
func (s *Spec[T]) WithFetch(f *FetchStrategy) *Spec[T] {
	s.fetch = f
	return s
}

// Include is shorthand for adding one relation path to the specification's
// fetch strategy.
func (s *Spec[T]) Include(segments ...string) *Spec[T] {
	if s.fetch == nil {
		s.fetch = NewFetchStrategy()
	}
	s.fetch.Include(segments...)
	return s
}

// Apply implements Specification.
func (s *Spec[T]) Apply(q *bun.SelectQuery) *bun.SelectQuery {
	for _, c := range s.conds {
		if c.or {
			q = q.WhereOr(c.expr, c.args...)
		} else {
			q = q.Where(c.expr, c.args...)
		}
	}
	if len(s.columns) > 0 {
		q = q.Column(s.columns...)
	}
	if len(s.orders) > 0 {
		q = q.Order(s.orders...)
	}
	if s.limit > 0 {
		q = q.Limit(s.limit)
	}
	return q
}

// Fetch implements Specification.
func (s *Spec[T]) Fetch() *FetchStrategy {
	if s.fetch == nil {
		return NewFetchStrategy()
	}
	return s.fetch
}

// Projects implements Projector.
func (s *Spec[T]) Projects() bool {
	return len(s.columns) > 0
}

// All composes specifications by wrapping: each inner specification is
// applied in order and the fetch strategies concatenate in the same order.
// Outer layers add filters without knowing how inner layers are stored.
func All[T any](specs ...Specification[T]) Specification[T] {
	return group[T](specs)
}

type group[T any] []Specification[T]

func (g group[T]) Apply(q *bun.SelectQuery) *bun.SelectQuery {
	for _, s := range g {
		q = s.Apply(q)
	}
	return q
}

func (g group[T]) Fetch() *FetchStrategy {
	merged := NewFetchStrategy()
	for _, s := range g {
		f := s.Fetch()
		if err := f.Err(); err != nil && merged.err == nil {
			merged.err = err
		}
		merged.paths = append(merged.paths, f.Paths()...)
	}
	return merged
}

func (g group[T]) Projects() bool {
	for _, s := range g {
		if p, ok := s.(Projector); ok && p.Projects() {
			return true
		}
	}
	return false
}
