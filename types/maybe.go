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

package types

import "errors"

// ErrNilValue is returned by From when the provided pointer is nil.
// A Maybe never wraps an absent value as present.
var ErrNilValue = errors.New("types: cannot build a present Maybe from a nil value")

// Maybe holds zero or one value of type T. The zero value is empty, so a
// Maybe is always safe to use without construction.
type Maybe[T any] struct {
	value   T
	present bool
}

// Empty returns a Maybe holding no value.
func Empty[T any]() Maybe[T] {
	return Maybe[T]{}
}

// Of wraps a plain value. Values are always present; use From or OfNullable
// for pointers that might be nil.
func Of[T any](v T) Maybe[T] {
	return Maybe[T]{value: v, present: true}
}

// From wraps the value behind p, failing with ErrNilValue when p is nil.
func From[T any](p *T) (Maybe[T], error) {
	if p == nil {
		return Maybe[T]{}, ErrNilValue
	}
	return Of(*p), nil
}

// OfNullable converts a possibly-nil pointer into a Maybe: nil becomes
// Empty, anything else becomes a present value.
func OfNullable[T any](p *T) Maybe[T] {
	if p == nil {
		return Empty[T]()
	}
	return Of(*p)
}

// IsPresent reports whether a value is held.
func (m Maybe[T]) IsPresent() bool { return m.present }

// IsEmpty reports whether no value is held.
func (m Maybe[T]) IsEmpty() bool { return !m.present }

// Get returns the held value and whether one is present. The returned value
// is the zero value of T when empty.
func (m Maybe[T]) Get() (T, bool) {
	return m.value, m.present
}

// MustGet returns the held value and panics when empty. Callers should
// prefer Get unless presence was already checked.
func (m Maybe[T]) MustGet() T {
	if !m.present {
		panic("types: MustGet called on an empty Maybe")
	}
	return m.value
}

// OrElse returns the held value, or fallback when empty.
func (m Maybe[T]) OrElse(fallback T) T {
	if m.present {
		return m.value
	}
	return fallback
}

// Ptr returns a pointer to a copy of the held value, or nil when empty.
func (m Maybe[T]) Ptr() *T {
	if !m.present {
		return nil
	}
	v := m.value
	return &v
}
