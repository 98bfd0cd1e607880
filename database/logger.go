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
	"strings"
	"sync"

	"github.com/tomoncle/keel/utils"
)

// Logger is the narrow logging seam this module writes through. Fields are
// alternating key/value pairs.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

var (
	globalLogger   Logger
	globalLoggerMu sync.RWMutex
)

// InitLogger installs a process-wide logger. The first non-nil logger wins;
// later calls are ignored.
func InitLogger(log Logger) {
	if log == nil {
		return
	}
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	if globalLogger == nil {
		globalLogger = log
	}
}

// GetLogger returns the installed logger, falling back to a logrus-backed
// default.
func GetLogger() Logger {
	globalLoggerMu.RLock()
	l := globalLogger
	globalLoggerMu.RUnlock()
	if l != nil {
		return l
	}
	return defaultLog
}

var defaultLog Logger = &logrusBridge{log: utils.GetLogger("database")}

type logrusBridge struct {
	log *utils.Logger
}

func (b *logrusBridge) Debug(msg string, fields ...interface{}) {
	b.log.Debug(render(msg, fields))
}

func (b *logrusBridge) Info(msg string, fields ...interface{}) {
	b.log.Info(render(msg, fields))
}

func (b *logrusBridge) Warn(msg string, fields ...interface{}) {
	b.log.Warn(render(msg, fields))
}

func (b *logrusBridge) Error(msg string, fields ...interface{}) {
	b.log.Error(render(msg, fields))
}

func render(msg string, fields []interface{}) string {
	if len(fields) == 0 {
		return msg
	}
	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i+1 < len(fields); i += 2 {
		sb.WriteString(fmt.Sprintf(" %v=%v", fields[i], fields[i+1]))
	}
	if len(fields)%2 != 0 {
		sb.WriteString(fmt.Sprintf(" %v", fields[len(fields)-1]))
	}
	return sb.String()
}
