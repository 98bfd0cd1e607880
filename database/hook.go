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
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

// SlowQueryHook logs queries whose execution time crosses a threshold.
// Failed queries are skipped here; their errors already reach the caller.
type SlowQueryHook struct {
	slowTime time.Duration
	logger   Logger
}

var _ bun.QueryHook = (*SlowQueryHook)(nil)

// NewSlowQueryHook returns a hook reporting queries slower than slowTime.
func NewSlowQueryHook(slowTime time.Duration, logger Logger) *SlowQueryHook {
	return &SlowQueryHook{slowTime: slowTime, logger: logger}
}

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if event.Err != nil || h.logger == nil {
		return
	}
	duration := time.Since(event.StartTime)
	if duration > h.slowTime {
		h.logger.Warn(color.YellowString("slow query detected"),
			"duration", duration.Round(time.Microsecond),
			"slow_threshold", h.slowTime,
			"query", formatQuery(event),
		)
	}
}

func formatQuery(event *bun.QueryEvent) string {
	switch event.Operation() {
	case "SELECT":
		return color.GreenString(event.Query)
	case "INSERT":
		return color.BlueString(event.Query)
	case "UPDATE":
		return color.YellowString(event.Query)
	case "DELETE":
		return color.MagentaString(event.Query)
	default:
		return color.RedString(event.Query)
	}
}
