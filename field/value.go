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

package field

import "path"

// Value is the concrete representation of "a field's current value": an
// ordered slice of strings. Kind governs how two Values combine (Merge),
// how patterns subtract from one (Remove), and how a pattern tests one
// (Matches); the storage shape itself never changes across kinds, which
// keeps scope maps and value maps interchangeable (both are
// map[*Field]Value — see the Scope/ValueMap duality in package
// condition).
type Value []string

// ValueMap is the ordinary (non-scope) field→value map a condition and
// the evaluator accumulate contributions into.
type ValueMap map[*Field]Value

// Scope selects one point in the project hierarchy: a map from an
// is_scope field to the single value that identifies it there (e.g.
// {projects: ["P2"]}). Scope and ValueMap share the same underlying Go
// type by design (see package condition's duality note) but are named
// distinctly to keep call sites self-documenting.
type Scope map[*Field]Value

// ScopeChain is an ordered list of scopes from root to target, e.g.
// [{workspaces:W1}, {projects:P2}]. It is the unit condition evaluation
// walks when checking compatibility against a lineage rather than a
// single point.
type ScopeChain []Scope

// Clone returns a shallow copy of m, safe to mutate independently.
func (m ValueMap) Clone() ValueMap {
	out := make(ValueMap, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}

// Clone returns a shallow copy of v, safe to mutate independently.
func (v Value) Clone() Value {
	if v == nil {
		return nil
	}
	out := make(Value, len(v))
	copy(out, v)
	return out
}

// Merge combines current with an incoming contribution under field f's
// ADD semantics: overwrite for Scalar, append for List, first-seen-order
// union for Set and PathSet.
func Merge(f *Field, current, incoming Value) Value {
	if len(incoming) == 0 {
		return current
	}
	switch f.kind {
	case Scalar:
		return Value{incoming[len(incoming)-1]}
	case List:
		out := make(Value, 0, len(current)+len(incoming))
		out = append(out, current...)
		out = append(out, incoming...)
		return out
	default: // Set, PathSet
		return unionInOrder(current, incoming)
	}
}

func unionInOrder(a, b Value) Value {
	seen := make(map[string]bool, len(a)+len(b))
	out := make(Value, 0, len(a)+len(b))
	for _, v := range a {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Remove subtracts every element of current that matches any of patterns
// (wildcards in patterns expand against the concrete elements of
// current) and returns both the reduced Value and the concrete elements
// actually removed. A pattern matching nothing in current contributes
// nothing to the removed list — removing a value that was never present
// is a silent no-op, not an error (spec.md §9, Open Question 1).
func Remove(f *Field, current, patterns Value) (reduced, removed Value) {
	for _, v := range current {
		hit := false
		for _, p := range patterns {
			if matchOne(f.kind, v, p, true) {
				hit = true
				break
			}
		}
		if hit {
			removed = append(removed, v)
		} else {
			reduced = append(reduced, v)
		}
	}
	return reduced, removed
}

// Matches reports whether pattern matches any element of value under
// field f's kind-specific semantics: literal equality for Scalar,
// element-wise membership (with wildcards when wildcardOK) for List, Set
// and PathSet.
func Matches(f *Field, value Value, pattern string, wildcardOK bool) bool {
	if f.kind == Scalar {
		wildcardOK = false
	}
	for _, v := range value {
		if matchOne(f.kind, v, pattern, wildcardOK) {
			return true
		}
	}
	return false
}

func matchOne(k Kind, v, pattern string, wildcardOK bool) bool {
	if !wildcardOK || !containsStar(pattern) {
		return v == pattern
	}
	if k == PathSet {
		ok, err := path.Match(pattern, v)
		return err == nil && ok
	}
	return globMatch(pattern, v)
}

func containsStar(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '*' {
			return true
		}
	}
	return false
}

// globMatch reports whether s matches pattern, where '*' in pattern
// matches any run of characters (including none). It is a flat glob: no
// path-segment boundary is special, unlike PathSet's path.Match.
func globMatch(pattern, s string) bool {
	// Classic two-pointer wildcard match, tracking the last '*' seen so
	// a failed literal match can backtrack to it.
	p, si := 0, 0
	star, match := -1, 0
	for si < len(s) {
		switch {
		case p < len(pattern) && (pattern[p] == s[si]):
			p++
			si++
		case p < len(pattern) && pattern[p] == '*':
			star = p
			match = si
			p++
		case star != -1:
			p = star + 1
			match++
			si = match
		default:
			return false
		}
	}
	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}
