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
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tomoncle/keel/utils"
)

// ConnectionConfig describes how to reach a database and tune its pool.
type ConnectionConfig struct {
	Type            string        `yaml:"type" json:"type"` // mysql, postgres, sqlite
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port"`
	Username        string        `yaml:"username" json:"username"`
	Password        string        `yaml:"password" json:"password"`
	DBName          string        `yaml:"dbname" json:"dbname"`
	SSLMode         string        `yaml:"sslmode" json:"sslmode"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" json:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" json:"connect_timeout"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	EnableQueryLog  bool          `yaml:"enable_query_log" json:"enable_query_log"`
	SlowQueryTime   time.Duration `yaml:"slow_query_time" json:"slow_query_time"`
}

// MigrationConfig controls schema verification and migration on startup.
type MigrationConfig struct {
	MigrateOnStartup bool `yaml:"migrate_on_startup" json:"migrate_on_startup"`
	VerifyOnStartup  bool `yaml:"verify_on_startup" json:"verify_on_startup"`
}

// Config aggregates connection and migration settings.
type Config struct {
	Connection ConnectionConfig `yaml:"connection" json:"connection"`
	Migration  MigrationConfig  `yaml:"migration" json:"migration"`
}

// DefaultConnectionConfig returns a connection config with sensible pool
// defaults.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute * 30,
		ConnectTimeout:  time.Second * 10,
		ReadTimeout:     time.Second * 30,
		WriteTimeout:    time.Second * 30,
		EnableQueryLog:  false,
		SlowQueryTime:   time.Second * 2,
	}
}

// LoadConfig reads a YAML configuration file and applies environment
// overrides on top of it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := &Config{Connection: *DefaultConnectionConfig()}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.Connection.ApplyEnvOverrides()
	return cfg, nil
}

// ApplyEnvOverrides overrides sensitive or deployment-specific settings
// from environment variables.
func (c *ConnectionConfig) ApplyEnvOverrides() {
	if host := os.Getenv("DB_HOST"); host != "" {
		c.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Port = p
		}
	}
	if username := os.Getenv("DB_USERNAME"); username != "" {
		c.Username = username
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		c.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		c.DBName = dbname
	}
	if sslmode := os.Getenv("DB_SSLMODE"); sslmode != "" {
		c.SSLMode = sslmode
	}
	if maxIdle := os.Getenv("DB_MAX_IDLE_CONNS"); maxIdle != "" {
		if val, err := strconv.Atoi(maxIdle); err == nil {
			c.MaxIdleConns = val
		}
	}
	if maxOpen := os.Getenv("DB_MAX_OPEN_CONNS"); maxOpen != "" {
		if val, err := strconv.Atoi(maxOpen); err == nil {
			c.MaxOpenConns = val
		}
	}
	if maxLifetime := os.Getenv("DB_CONN_MAX_LIFETIME"); maxLifetime != "" {
		if val, err := strconv.Atoi(maxLifetime); err == nil {
			c.ConnMaxLifetime = time.Duration(val) * time.Second
		}
	}
	c.EnableQueryLog = utils.EnvDefaultBool("DB_ENABLE_QUERY_LOG", c.EnableQueryLog)
}
