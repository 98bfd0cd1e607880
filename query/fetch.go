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
	"fmt"
	"strings"
	"unicode"
)

// ErrUnsupportedPath reports a fetch path segment that is not a plain
// property identifier. The strategy records the first such failure at build
// time and repositories refuse to execute it.
var ErrUnsupportedPath = fmt.Errorf("query: fetch path segment is not a plain property identifier")

// FetchStrategy is an ordered list of relation paths to load eagerly with a
// query. Paths keep insertion order and are never deduplicated; applying the
// same path twice is the caller's decision.
//
// A strategy is built once and then treated as read-only by convention; it
// carries no locking.
type FetchStrategy struct {
	paths []string
	err   error
}

// NewFetchStrategy returns an empty strategy.
func NewFetchStrategy() *FetchStrategy {
	return &FetchStrategy{}
}

// Include appends one relation path built from the given property segments,
// joined with ".". Each segment must be a plain exported identifier, e.g.
// Include("Parent", "Children") appends "Parent.Children". An invalid
// segment records ErrUnsupportedPath; the strategy keeps accepting calls so
// chains stay intact, and the error surfaces through Err before execution.
func (f *FetchStrategy) Include(segments ...string) *FetchStrategy {
	if f.err != nil {
		return f
	}
	if len(segments) == 0 {
		f.err = fmt.Errorf("%w: empty segment list", ErrUnsupportedPath)
		return f
	}
	for _, s := range segments {
		if !isPropertyIdent(s) {
			f.err = fmt.Errorf("%w: %q", ErrUnsupportedPath, s)
			return f
		}
	}
	f.paths = append(f.paths, strings.Join(segments, "."))
	return f
}

// IncludePath appends a literal dotted path, validating each segment the
// same way Include does.
func (f *FetchStrategy) IncludePath(path string) *FetchStrategy {
	return f.Include(strings.Split(path, ".")...)
}

// Paths returns a copy of the relation paths added so far, in insertion
// order.
func (f *FetchStrategy) Paths() []string {
	if f == nil || len(f.paths) == 0 {
		return nil
	}
	out := make([]string, len(f.paths))
	copy(out, f.paths)
	return out
}

// Err returns the first build failure, or nil for a well-formed strategy.
func (f *FetchStrategy) Err() error {
	if f == nil {
		return nil
	}
	return f.err
}

// IsEmpty reports whether the strategy holds no paths.
func (f *FetchStrategy) IsEmpty() bool {
	return f == nil || len(f.paths) == 0
}

// isPropertyIdent accepts an exported Go identifier: a leading upper-case
// letter followed by letters, digits, or underscores.
func isPropertyIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !unicode.IsUpper(r) {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
