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
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// FaultClass is a coarse classification of storage engine errors, used for
// log context when a commit or lookup fails. Classification never changes
// what is returned to callers.
type FaultClass int

const (
	FaultUnknown FaultClass = iota
	FaultDuplicateKey
	FaultNotNullViolation
	FaultForeignKeyViolation
	FaultCheckViolation
	FaultNoTable
	FaultNoColumn
	FaultDataTruncated
	FaultTypeMismatch
	FaultConnectivity
)

func (c FaultClass) String() string {
	switch c {
	case FaultDuplicateKey:
		return "duplicate_key"
	case FaultNotNullViolation:
		return "not_null_violation"
	case FaultForeignKeyViolation:
		return "foreign_key_violation"
	case FaultCheckViolation:
		return "check_violation"
	case FaultNoTable:
		return "no_table"
	case FaultNoColumn:
		return "no_column"
	case FaultDataTruncated:
		return "data_truncated"
	case FaultTypeMismatch:
		return "type_mismatch"
	case FaultConnectivity:
		return "connectivity"
	default:
		return "unknown"
	}
}

// Classify maps a storage engine error onto a FaultClass. MySQL errors are
// matched by errno; PostgreSQL and SQLite by SQLSTATE and message text.
func Classify(err error) FaultClass {
	if err == nil {
		return FaultUnknown
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062:
			return FaultDuplicateKey
		case 1048:
			return FaultNotNullViolation
		case 1216, 1217, 1451, 1452:
			return FaultForeignKeyViolation
		case 3819:
			return FaultCheckViolation
		case 1146:
			return FaultNoTable
		case 1054:
			return FaultNoColumn
		case 1265:
			return FaultDataTruncated
		default:
			return FaultUnknown
		}
	}

	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "sqlstate 23505"),
		strings.Contains(s, "duplicate key value"),
		strings.Contains(s, "unique constraint failed"):
		return FaultDuplicateKey
	case strings.Contains(s, "sqlstate 23502"),
		strings.Contains(s, "not-null constraint"),
		strings.Contains(s, "not null constraint failed"):
		return FaultNotNullViolation
	case strings.Contains(s, "sqlstate 23503"),
		strings.Contains(s, "foreign key constraint failed"),
		strings.Contains(s, "foreign key violation"):
		return FaultForeignKeyViolation
	case strings.Contains(s, "sqlstate 23514"),
		strings.Contains(s, "check constraint"):
		return FaultCheckViolation
	case strings.Contains(s, "sqlstate 42p01"),
		strings.Contains(s, "undefined table"),
		strings.Contains(s, "no such table"):
		return FaultNoTable
	case strings.Contains(s, "sqlstate 42703"),
		strings.Contains(s, "undefined column"),
		strings.Contains(s, "no such column"):
		return FaultNoColumn
	case strings.Contains(s, "sqlstate 22001"),
		strings.Contains(s, "data truncated"),
		strings.Contains(s, "string data right truncation"):
		return FaultDataTruncated
	case strings.Contains(s, "sqlstate 42804"),
		strings.Contains(s, "datatype mismatch"):
		return FaultTypeMismatch
	case strings.Contains(s, "connection refused"),
		strings.Contains(s, "connection reset"),
		strings.Contains(s, "broken pipe"),
		strings.Contains(s, "bad connection"):
		return FaultConnectivity
	}
	return FaultUnknown
}
