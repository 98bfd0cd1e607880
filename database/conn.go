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

	"github.com/uptrace/bun"
)

var (
	globalManager Manager
	globalDB      *bun.DB
)

// InitDB opens the process-wide database connection described by cfg,
// registers known models, and — depending on the migration settings — runs
// or verifies schema migrations. Verification fails fast, listing missing
// migrations by name, so no unit of work is ever built over an incompatible
// schema.
func InitDB(cfg *Config) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}

	manager := NewManager(&cfg.Connection)
	ctx := context.Background()
	if err := manager.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := manager.GetDB()
	db.RegisterModel(RegisteredModelInstances()...)

	runner := NewMigrationRunner(db, GetLogger())
	if cfg.Migration.MigrateOnStartup {
		if err := runner.RunMigrations(ctx); err != nil {
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
	}
	if cfg.Migration.VerifyOnStartup {
		if err := runner.VerifyMigrations(ctx); err != nil {
			return nil, err
		}
	}

	globalManager = manager
	globalDB = db
	return db, nil
}

// GetDB returns the global Bun database instance, or nil before InitDB.
func GetDB() *bun.DB {
	if globalManager != nil {
		return globalManager.GetDB()
	}
	return globalDB
}

// GetManager returns the global database manager, or nil before InitDB.
func GetManager() Manager {
	return globalManager
}

// CloseDB closes the global database connection.
func CloseDB() error {
	if globalManager != nil {
		return globalManager.Disconnect()
	}
	return nil
}

// GetHealthStatus probes the global connection.
func GetHealthStatus(ctx context.Context) *HealthStatus {
	if globalManager != nil {
		return globalManager.HealthCheck(ctx)
	}
	return &HealthStatus{LastError: "database not initialized"}
}

// GetStats returns pool statistics for the global connection.
func GetStats() *DBStats {
	if globalManager != nil {
		return globalManager.GetStats()
	}
	return &DBStats{}
}
