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

// Package utils holds shared helpers: named logrus loggers configured from
// the environment, and small env-var accessors.
package utils

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the logrus logger type used throughout the module.
type Logger = logrus.Logger

var (
	loggerRegistryMu sync.RWMutex
	loggerRegistry   = map[string]*logrus.Logger{}

	defaultLevel  = parseLevel(EnvDefaultString("LOG_LEVEL", "info"))
	defaultFormat = EnvDefaultString("LOG_FORMAT", "text")
)

// GetLogger returns the named logger, creating and caching it on first use.
// Every logger for the same name is the same instance, so level changes
// apply everywhere.
func GetLogger(name string) *Logger {
	loggerRegistryMu.RLock()
	if l, ok := loggerRegistry[name]; ok {
		loggerRegistryMu.RUnlock()
		return l
	}
	loggerRegistryMu.RUnlock()

	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	if l, ok := loggerRegistry[name]; ok {
		return l
	}
	l := newLogger(name)
	loggerRegistry[name] = l
	return l
}

// SetLevel updates the level on every registered logger and on loggers
// created afterwards.
func SetLevel(level string) {
	parsed := parseLevel(level)
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	defaultLevel = parsed
	for _, l := range loggerRegistry {
		l.SetLevel(parsed)
	}
}

func newLogger(name string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(defaultLevel)
	if strings.EqualFold(defaultFormat, "json") {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}
	l.AddHook(&componentHook{component: name})
	return l
}

type componentHook struct {
	component string
}

func (h *componentHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *componentHook) Fire(e *logrus.Entry) error {
	e.Data["component"] = h.component
	return nil
}

func parseLevel(s string) logrus.Level {
	level, err := logrus.ParseLevel(strings.TrimSpace(strings.ToLower(s)))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// EnvDefaultString returns the environment value for key, or fallback when
// unset or blank.
func EnvDefaultString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// EnvDefaultBool returns the boolean environment value for key, or
// fallback when unset or unparsable.
func EnvDefaultBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
