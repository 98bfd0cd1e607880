// Package database manages the Bun database connection shared by units of
// work: configuration, dialect wiring, health probing, query hooks, and
// migration verification.
package database
