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

const defaultPageSize = 10

// PageRequest describes the page window and ordering for a paged query.
// Filtering is expressed separately through a query specification.
type PageRequest struct {
	page     int
	pageSize int
	orders   []string // "id ASC", "name DESC"
}

// NewPageRequest constructs a PageRequest with the given ordering.
func NewPageRequest(page, pageSize int, orders ...string) *PageRequest {
	return &PageRequest{page: page, pageSize: pageSize, orders: orders}
}

// Page returns the 1-based page number, normalized to at least 1.
func (p *PageRequest) Page() int {
	if p.page < 1 {
		return 1
	}
	return p.page
}

// PageSize returns the page size, falling back to the default when unset.
func (p *PageRequest) PageSize() int {
	if p.pageSize < 1 {
		return defaultPageSize
	}
	return p.pageSize
}

// Offset returns the row offset for the requested page.
func (p *PageRequest) Offset() int {
	return (p.Page() - 1) * p.PageSize()
}

// Orders returns the ordering clauses in declaration order.
func (p *PageRequest) Orders() []string { return p.orders }

// Pagination holds one page of results together with the total match count.
type Pagination[T any] struct {
	Page     int
	PageSize int
	Total    int
	Items    []*T
}

// NewPagination constructs an empty page for the given window.
func NewPagination[T any](page, pageSize int) *Pagination[T] {
	return &Pagination[T]{Page: page, PageSize: pageSize, Items: make([]*T, 0)}
}
