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
	"sort"
	"sync"
)

// Model is an entity struct registered for schema creation. Priority
// controls creation order (lower first), so referenced tables exist before
// tables that point at them.
type Model struct {
	Instance interface{}
	Priority int
}

type modelRegistry struct {
	models []Model
	mu     sync.RWMutex
}

var defaultRegistry = &modelRegistry{}

func (r *modelRegistry) register(m Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models = append(r.models, m)
}

func (r *modelRegistry) all() []Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Model, len(r.models))
	copy(out, r.models)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// RegisterModel adds an entity struct pointer to the default registry with
// the given creation priority.
func RegisterModel(instance interface{}, priority int) {
	defaultRegistry.register(Model{Instance: instance, Priority: priority})
}

// RegisteredModels returns all registered models sorted by priority.
func RegisteredModels() []Model {
	return defaultRegistry.all()
}

// RegisteredModelInstances returns the registered struct pointers in
// priority order, in the form Bun's RegisterModel expects.
func RegisteredModelInstances() []interface{} {
	models := RegisteredModels()
	instances := make([]interface{}, len(models))
	for i, m := range models {
		instances[i] = m.Instance
	}
	return instances
}
