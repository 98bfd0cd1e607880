// Package query provides declarative, reusable query specifications and
// fetch strategies applied by repositories when building Bun queries.
package query
