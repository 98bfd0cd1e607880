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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "database.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
connection:
  type: postgres
  host: db.internal
  port: 5432
  username: app
  dbname: app_main
migration:
  verify_on_startup: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Connection.Type)
	assert.Equal(t, "db.internal", cfg.Connection.Host)
	assert.Equal(t, 5432, cfg.Connection.Port)
	assert.Equal(t, "app_main", cfg.Connection.DBName)
	assert.True(t, cfg.Migration.VerifyOnStartup)
	assert.False(t, cfg.Migration.MigrateOnStartup)

	// Pool defaults survive a partial file.
	assert.Equal(t, 100, cfg.Connection.MaxOpenConns)
	assert.Equal(t, time.Hour, cfg.Connection.ConnMaxLifetime)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
connection:
  type: mysql
  host: localhost
  port: 3306
  password: from-file
`)

	t.Setenv("DB_HOST", "db.prod.internal")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "db.prod.internal", cfg.Connection.Host)
	assert.Equal(t, 3307, cfg.Connection.Port)
	assert.Equal(t, "from-env", cfg.Connection.Password)
	assert.Equal(t, 50, cfg.Connection.MaxOpenConns)
}

func TestApplyEnvOverrides_QueryLogToggle(t *testing.T) {
	cfg := DefaultConnectionConfig()

	t.Setenv("DB_ENABLE_QUERY_LOG", "true")
	cfg.ApplyEnvOverrides()
	assert.True(t, cfg.EnableQueryLog)

	// "1" and "false" parse too; garbage leaves the current value alone.
	t.Setenv("DB_ENABLE_QUERY_LOG", "false")
	cfg.ApplyEnvOverrides()
	assert.False(t, cfg.EnableQueryLog)

	cfg.EnableQueryLog = true
	t.Setenv("DB_ENABLE_QUERY_LOG", "definitely")
	cfg.ApplyEnvOverrides()
	assert.True(t, cfg.EnableQueryLog)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := writeConfig(t, "connection: [not a mapping")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestDefaultConnectionConfig(t *testing.T) {
	cfg := DefaultConnectionConfig()
	assert.Equal(t, 10, cfg.MaxIdleConns)
	assert.Equal(t, time.Second*10, cfg.ConnectTimeout)
	assert.Equal(t, time.Second*2, cfg.SlowQueryTime)
}
