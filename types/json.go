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

package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONObject stores a free-form object in a JSON text column.
type JSONObject map[string]interface{}

// JSONArray stores a list of free-form objects in a JSON text column.
type JSONArray []JSONObject

// jsonBytes normalizes the raw forms drivers hand back for text columns.
// MySQL and Postgres deliver []byte, SQLite delivers string.
func jsonBytes(src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("types: cannot scan %T into a JSON column", src)
	}
}

// Value implements driver.Valuer. A nil object stores SQL NULL.
func (j JSONObject) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner. NULL and empty text scan to a nil object.
func (j *JSONObject) Scan(src interface{}) error {
	raw, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*j = nil
		return nil
	}
	return json.Unmarshal(raw, j)
}

// Value implements driver.Valuer. A nil array stores SQL NULL.
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner. NULL and empty text scan to a nil array.
func (j *JSONArray) Scan(src interface{}) error {
	raw, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*j = nil
		return nil
	}
	return json.Unmarshal(raw, j)
}
