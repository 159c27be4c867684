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

import "github.com/scopeforge/ideconf/field"

// NilMatchesAny and NilMatchesNone name the two match_on_nil policies a
// caller picks between: "absent data is compatible with anything" versus
// "absent data satisfies nothing". The evaluator's decision table (see
// package query) uses NilMatchesAny throughout; nothing in this engine
// currently needs the other policy, but both are named so call sites read
// as intent rather than a bare bool.
const (
	NilMatchesAny  = true
	NilMatchesNone = false
)

// MatchesValues reports whether c holds against values under the single
// scope point scope (may be nil), with no scope-coverage check.
func (c *Condition) MatchesValues(values field.ValueMap, scope field.Scope, matchOnNil bool) bool {
	return c.root.eval(values, scope, matchOnNil)
}

// FieldsTested returns the set of fields c's match leaves resolve
// against.
func (c *Condition) FieldsTested() map[*field.Field]bool {
	return c.tested
}

// coversScope reports whether every field that appears as a key in scope
// is among c's tested fields. A scope whose discriminating keys
// c never looks at cannot be meaningfully judged compatible or
// incompatible by c, so matches_scope_and_values skips it rather than
// defaulting it to a match via NilMatchesAny.
func (c *Condition) coversScope(scope field.Scope) bool {
	for f := range scope {
		if !c.tested[f] {
			return false
		}
	}
	return true
}

// MatchesScopeAndValues iterates chain from root to target; for each
// scope whose keys are fully covered by c, it evaluates MatchesValues
// and returns the index of the first match. It returns (0, false) if no
// scope in the chain is both covered and matching.
func (c *Condition) MatchesScopeAndValues(values field.ValueMap, chain field.ScopeChain, matchOnNil bool) (int, bool) {
	for i, scope := range chain {
		if !c.coversScope(scope) {
			continue
		}
		if c.root.eval(values, scope, matchOnNil) {
			return i, true
		}
	}
	return 0, false
}

// HasConflictingValues reports whether c is explicitly incompatible with
// every scope in chain: for each scope, MatchesValues is evaluated with
// NilMatchesAny (absence of data is a wildcard, not a mismatch), and
// HasConflictingValues is true only if every single one of those
// evaluations fails. A chain of length zero vacuously conflicts (there is
// nothing for c to be compatible with).
//
// The evaluator calls this with two different argument shapes (see
// package query): once passing a bare field.ValueMap recast as a
// one-element chain (asking "could any potential layer match at all?"),
// and once passing a real field.ScopeChain (asking "is the direct
// lineage compatible?"). AsChain below bridges the first shape.
func (c *Condition) HasConflictingValues(chain field.ScopeChain, values field.ValueMap) bool {
	for _, scope := range chain {
		if c.root.eval(values, scope, NilMatchesAny) {
			return false
		}
	}
	return true
}

// AsChain wraps a bare value map as the one-element scope chain
// HasConflictingValues's first call shape needs: spec.md §4.5 calls
// has_conflicting_values(global_values, global_values), passing the
// accumulated value map itself in the position the signature otherwise
// expects a scope chain. Treating a ValueMap as a single-scope chain
// (where the "scope" and the "values" being tested against happen to be
// the same map) gives that call exactly the coverage semantics spec.md
// §9 calls for.
func AsChain(values field.ValueMap) field.ScopeChain {
	return field.ScopeChain{field.Scope(values)}
}
