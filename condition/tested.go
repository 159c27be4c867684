// Copyright 2026 The ideconf Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package condition

import (
	"sync"

	"github.com/scopeforge/ideconf/field"
)

// TestedFields is the grow-only, concurrency-safe set of fields that have
// appeared in some match leaf of a condition parsed with it. Parse
// augments it. query.Evaluate does not read it: every field in a block's
// Data is merged into the evaluator's value maps, whether or not any
// condition tests that field (see query.Query.Tested).
type TestedFields struct {
	mu  sync.RWMutex
	set map[*field.Field]bool
}

// NewTestedFields returns an empty set.
func NewTestedFields() *TestedFields {
	return &TestedFields{set: map[*field.Field]bool{}}
}

func (t *TestedFields) addAll(fields map[*field.Field]bool) {
	if len(fields) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for f := range fields {
		t.set[f] = true
	}
}

// Has reports whether f has ever been tested by a parsed condition.
func (t *TestedFields) Has(f *field.Field) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.set[f]
}
