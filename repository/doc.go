// Package repository provides generic, specification-driven data access over
// one entity type, deferring all mutations to an owning unit of work.
package repository
