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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchStrategy_IncludeOrder(t *testing.T) {
	f := NewFetchStrategy().
		Include("Parent", "Children").
		Include("Owner")

	require.NoError(t, f.Err())
	assert.Equal(t, []string{"Parent.Children", "Owner"}, f.Paths())
}

func TestFetchStrategy_NoDeduplication(t *testing.T) {
	f := NewFetchStrategy().
		Include("Items").
		Include("Items")

	require.NoError(t, f.Err())
	assert.Equal(t, []string{"Items", "Items"}, f.Paths())
}

func TestFetchStrategy_IncludePathLiteral(t *testing.T) {
	f := NewFetchStrategy().IncludePath("Parent.Children.Pets")

	require.NoError(t, f.Err())
	assert.Equal(t, []string{"Parent.Children.Pets"}, f.Paths())
}

func TestFetchStrategy_RejectsNonPropertySegments(t *testing.T) {
	cases := []struct {
		name     string
		segments []string
	}{
		{"empty segment", []string{""}},
		{"unexported", []string{"children"}},
		{"method call", []string{"Children()"}},
		{"indexing", []string{"Children[0]"}},
		{"spaces", []string{"Children Pets"}},
		{"no segments", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFetchStrategy().Include(tc.segments...)
			assert.ErrorIs(t, f.Err(), ErrUnsupportedPath)
			assert.Empty(t, f.Paths())
		})
	}
}

func TestFetchStrategy_ErrorStopsFurtherPaths(t *testing.T) {
	f := NewFetchStrategy().
		Include("Valid").
		Include("not valid").
		Include("AlsoValid")

	assert.ErrorIs(t, f.Err(), ErrUnsupportedPath)
	// The valid prefix stays; nothing after the failure is recorded.
	assert.Equal(t, []string{"Valid"}, f.Paths())
}

func TestFetchStrategy_Empty(t *testing.T) {
	f := NewFetchStrategy()
	assert.True(t, f.IsEmpty())
	assert.Nil(t, f.Paths())
	assert.NoError(t, f.Err())

	var nilStrategy *FetchStrategy
	assert.True(t, nilStrategy.IsEmpty())
	assert.NoError(t, nilStrategy.Err())
}

func TestFetchStrategy_PathsReturnsCopy(t *testing.T) {
	f := NewFetchStrategy().Include("Items")
	paths := f.Paths()
	paths[0] = "mutated"

	assert.Equal(t, []string{"Items"}, f.Paths())
}
