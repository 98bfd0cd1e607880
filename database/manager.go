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
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// Manager owns one database connection: opening it with the right dialect,
// probing it, and releasing it. There is no automatic reconnect: a lost
// connection surfaces to callers, who decide what to do next.
type Manager interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Ping(ctx context.Context) error
	HealthCheck(ctx context.Context) *HealthStatus
	GetDB() *bun.DB
	GetSQLDB() *sql.DB
	GetStats() *DBStats
	SetLogger(logger Logger)
}

// HealthStatus holds the result of one connectivity probe.
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	Connected     bool          `json:"connected"`
	ResponseTime  time.Duration `json:"response_time"`
	ActiveConns   int           `json:"active_conns"`
	IdleConns     int           `json:"idle_conns"`
	MaxOpenConns  int           `json:"max_open_conns"`
	LastError     string        `json:"last_error,omitempty"`
	LastCheckTime time.Time     `json:"last_check_time"`
}

// DBStats mirrors database/sql pool statistics.
type DBStats struct {
	MaxOpenConns      int           `json:"max_open_conns"`
	OpenConns         int           `json:"open_conns"`
	InUse             int           `json:"in_use"`
	Idle              int           `json:"idle"`
	WaitCount         int64         `json:"wait_count"`
	WaitDuration      time.Duration `json:"wait_duration"`
	MaxIdleClosed     int64         `json:"max_idle_closed"`
	MaxLifetimeClosed int64         `json:"max_lifetime_closed"`
}

type defaultManager struct {
	config    *ConnectionConfig
	db        *bun.DB
	sqlDB     *sql.DB
	logger    Logger
	mu        sync.RWMutex
	connected bool
	lastError error
}

// NewManager returns a Manager backed by Bun. A nil config falls back to
// defaults.
func NewManager(config *ConnectionConfig) Manager {
	if config == nil {
		config = DefaultConnectionConfig()
	}
	return &defaultManager{config: config, logger: GetLogger()}
}

func (m *defaultManager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected && m.db != nil {
		return nil
	}

	sqlDB, db, err := m.open()
	if err != nil {
		m.lastError = err
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	m.sqlDB, m.db = sqlDB, db

	m.sqlDB.SetMaxIdleConns(m.config.MaxIdleConns)
	m.sqlDB.SetMaxOpenConns(m.config.MaxOpenConns)
	m.sqlDB.SetConnMaxLifetime(m.config.ConnMaxLifetime)
	m.sqlDB.SetConnMaxIdleTime(m.config.ConnMaxIdleTime)

	ctxTimeout, cancel := context.WithTimeout(ctx, m.config.ConnectTimeout)
	defer cancel()
	if err := m.db.PingContext(ctxTimeout); err != nil {
		m.lastError = err
		return fmt.Errorf("database connection test failed: %w", err)
	}

	m.connected = true
	m.lastError = nil
	m.logger.Info("database connected", "type", m.config.Type, "host", m.config.Host)
	return nil
}

func (m *defaultManager) open() (*sql.DB, *bun.DB, error) {
	if m.config.ConnectTimeout <= 0 {
		m.config.ConnectTimeout = 30 * time.Second
	}

	var sqlDB *sql.DB
	var db *bun.DB
	var err error

	switch m.config.Type {
	case "mysql":
		sqlDB, db, err = m.openMySQL()
	case "postgres", "postgresql":
		sqlDB, db, err = m.openPostgres()
	case "sqlite", "sqlite3":
		sqlDB, db, err = m.openSQLite()
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", m.config.Type)
	}
	if err != nil {
		return nil, nil, err
	}

	if m.config.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
	if m.config.SlowQueryTime > 0 {
		db.AddQueryHook(NewSlowQueryHook(m.config.SlowQueryTime, m.logger))
	}
	return sqlDB, db, nil
}

func (m *defaultManager) openMySQL() (*sql.DB, *bun.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%s&readTimeout=%s&writeTimeout=%s",
		m.config.Username,
		m.config.Password,
		m.config.Host,
		m.config.Port,
		m.config.DBName,
		m.config.ConnectTimeout,
		m.config.ReadTimeout,
		m.config.WriteTimeout,
	)
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, err
	}
	return sqlDB, bun.NewDB(sqlDB, mysqldialect.New()), nil
}

func (m *defaultManager) openPostgres() (*sql.DB, *bun.DB, error) {
	sslMode := m.config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
		m.config.Username,
		m.config.Password,
		m.config.Host,
		m.config.Port,
		m.config.DBName,
		sslMode,
		int(m.config.ConnectTimeout.Seconds()),
	)
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, err
	}
	return sqlDB, bun.NewDB(sqlDB, pgdialect.New()), nil
}

func (m *defaultManager) openSQLite() (*sql.DB, *bun.DB, error) {
	dsn := m.config.DBName
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	} else {
		dsn = fmt.Sprintf("%s.db", dsn)
	}
	sqlDB, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, nil, err
	}
	return sqlDB, bun.NewDB(sqlDB, sqlitedialect.New()), nil
}

func (m *defaultManager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	m.sqlDB = nil
	m.connected = false
	if err != nil {
		m.logger.Error("failed to close database connection", "error", err)
	} else {
		m.logger.Info("database connection closed")
	}
	return err
}

func (m *defaultManager) Ping(ctx context.Context) error {
	m.mu.RLock()
	db := m.db
	m.mu.RUnlock()

	if db == nil {
		return fmt.Errorf("database not connected")
	}
	return db.PingContext(ctx)
}

func (m *defaultManager) GetDB() *bun.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

func (m *defaultManager) GetSQLDB() *sql.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sqlDB
}

func (m *defaultManager) HealthCheck(ctx context.Context) *HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	status := &HealthStatus{
		LastCheckTime: start,
		Connected:     m.connected,
	}
	if m.db == nil {
		status.LastError = "database not initialized"
		return status
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	err := m.db.PingContext(ctxTimeout)
	status.ResponseTime = time.Since(start)

	if err != nil {
		status.Connected = false
		status.LastError = err.Error()
		m.lastError = err
	} else {
		status.Healthy = true
		status.Connected = true
		m.lastError = nil
	}

	if m.sqlDB != nil {
		stats := m.sqlDB.Stats()
		status.ActiveConns = stats.InUse
		status.IdleConns = stats.Idle
		status.MaxOpenConns = stats.MaxOpenConnections
	}
	return status
}

func (m *defaultManager) GetStats() *DBStats {
	m.mu.RLock()
	sqlDB := m.sqlDB
	m.mu.RUnlock()

	if sqlDB == nil {
		return &DBStats{}
	}
	stats := sqlDB.Stats()
	return &DBStats{
		MaxOpenConns:      stats.MaxOpenConnections,
		OpenConns:         stats.OpenConnections,
		InUse:             stats.InUse,
		Idle:              stats.Idle,
		WaitCount:         stats.WaitCount,
		WaitDuration:      stats.WaitDuration,
		MaxIdleClosed:     stats.MaxIdleClosed,
		MaxLifetimeClosed: stats.MaxLifetimeClosed,
	}
}

func (m *defaultManager) SetLogger(logger Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}
