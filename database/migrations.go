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

package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/uptrace/bun"
)

// Migration is an applied migration record stored in the database.
type Migration struct {
	bun.BaseModel `bun:"table:keel_migrations,alias:km"`

	Version   string    `bun:"version,pk"`
	Name      string    `bun:"name,notnull"`
	AppliedAt time.Time `bun:"applied_at,nullzero,notnull,default:current_timestamp"`
}

// MigrationFunc is one migration step, executed inside a transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem describes a single versioned migration.
type MigrationItem struct {
	Version string
	Name    string
	Up      MigrationFunc
}

var (
	registeredMigrations   []MigrationItem
	registeredMigrationsMu sync.Mutex
)

// RegisterMigration adds a migration to the set that RunMigrations executes
// and VerifyMigrations checks for.
func RegisterMigration(item MigrationItem) {
	registeredMigrationsMu.Lock()
	defer registeredMigrationsMu.Unlock()
	registeredMigrations = append(registeredMigrations, item)
}

func allMigrations() []MigrationItem {
	registeredMigrationsMu.Lock()
	defer registeredMigrationsMu.Unlock()
	out := make([]MigrationItem, len(registeredMigrations))
	copy(out, registeredMigrations)
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}

// MigrationRunner creates schema for registered models, executes registered
// migrations, and verifies that storage is at the expected schema version
// before any unit of work is constructed.
type MigrationRunner struct {
	db     *bun.DB
	logger Logger
}

// NewMigrationRunner constructs a runner over the given database.
func NewMigrationRunner(db *bun.DB, logger Logger) *MigrationRunner {
	if logger == nil {
		logger = GetLogger()
	}
	return &MigrationRunner{db: db, logger: logger}
}

// RunMigrations creates tables for registered models in priority order,
// then applies every registered migration not yet recorded, each inside its
// own transaction.
func (r *MigrationRunner) RunMigrations(ctx context.Context) error {
	if r.db == nil {
		return fmt.Errorf("database not initialized")
	}
	if err := r.createMigrationTable(ctx); err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}
	if err := r.createModelTables(ctx); err != nil {
		return err
	}

	applied, err := r.appliedVersions(ctx)
	if err != nil {
		return err
	}
	for _, item := range allMigrations() {
		if _, ok := applied[item.Version]; ok {
			continue
		}
		if err := r.apply(ctx, item); err != nil {
			return fmt.Errorf("failed to apply migration %s (%s): %w", item.Version, item.Name, err)
		}
		r.logger.Info("migration applied", "version", item.Version, "name", item.Name)
	}
	r.logger.Info("database migrations completed")
	return nil
}

// VerifyMigrations fails fast when any registered migration has not been
// applied, enumerating the missing ones by name. Callers run this before
// constructing units of work so the core can assume a compatible schema.
func (r *MigrationRunner) VerifyMigrations(ctx context.Context) error {
	if r.db == nil {
		return fmt.Errorf("database not initialized")
	}
	applied, err := r.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}
	var missing []string
	for _, item := range allMigrations() {
		if _, ok := applied[item.Version]; !ok {
			missing = append(missing, fmt.Sprintf("%s (%s)", item.Version, item.Name))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema is missing %d migration(s): %s", len(missing), strings.Join(missing, ", "))
	}
	return nil
}

func (r *MigrationRunner) createMigrationTable(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*Migration)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (r *MigrationRunner) createModelTables(ctx context.Context) error {
	for _, m := range RegisteredModels() {
		_, err := r.db.NewCreateTable().
			Model(m.Instance).
			IfNotExists().
			WithForeignKeys().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table for model %T: %w", m.Instance, err)
		}
	}
	return nil
}

func (r *MigrationRunner) appliedVersions(ctx context.Context) (map[string]struct{}, error) {
	var records []Migration
	if err := r.db.NewSelect().Model(&records).Scan(ctx); err != nil {
		return nil, err
	}
	applied := make(map[string]struct{}, len(records))
	for _, rec := range records {
		applied[rec.Version] = struct{}{}
	}
	return applied, nil
}

func (r *MigrationRunner) apply(ctx context.Context, item MigrationItem) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if item.Up != nil {
			if err := item.Up(ctx, tx); err != nil {
				return err
			}
		}
		record := &Migration{
			Version:   item.Version,
			Name:      item.Name,
			AppliedAt: time.Now(),
		}
		_, err := tx.NewInsert().Model(record).Exec(ctx)
		return err
	})
}
