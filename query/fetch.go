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

package query

import (
	"container/list"

	"github.com/scopeforge/ideconf/field"
)

// fetchField reconstructs field f's current global value from every
// already-decided entry of results, in list order. Like global_values, it
// is not filtered to tested fields; unlike global_values, it is computed
// on demand, for exactly the one field a compensation block needs, and
// synthetic compensation entries (global lens out of scope) are skipped.
func fetchField(f *field.Field, results *list.List) field.Value {
	var acc field.Value
	for e := results.Front(); e != nil; e = e.Next() {
		br := e.Value.(*blockResult)
		if br.globalOp != dAdd && br.globalOp != dRemove {
			continue
		}
		v, ok := br.source.Data[f]
		if !ok {
			continue
		}
		switch br.globalOp {
		case dAdd:
			acc = field.Merge(f, acc, v)
		case dRemove:
			acc, _ = field.Remove(f, acc, v)
		}
	}
	return acc
}
