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

// MergeScopes flattens an ordered sequence of single-level scopes (e.g.
// {projects: P2}, then {configurations: Debug}) into the one concrete
// scope point they jointly describe.
func MergeScopes(levels ...Scope) Scope {
	out := Scope{}
	for _, lvl := range levels {
		for f, v := range lvl {
			out[f] = v
		}
	}
	return out
}

// ExactChain returns the one-element chain containing exactly the
// concrete scope point levels describes. It is the shape a query's
// "direct lineage" (global_scopes) test wants: no partial prefixes, just
// where we are.
func ExactChain(levels ...Scope) ScopeChain {
	return ScopeChain{MergeScopes(levels...)}
}

// InheritedChain returns the progressive-prefix chain — an empty root
// entry, then each level folded in one at a time — that lets an
// ancestor's condition (including the empty, unconditional one) match
// against any of the scope's ancestors on the way down to the concrete
// point levels describes. query.Evaluate uses it as the ancestry chain,
// and as the target chain when inheritance is enabled; with inheritance
// disabled the target chain is ExactChain instead.
func InheritedChain(levels ...Scope) ScopeChain {
	chain := make(ScopeChain, 0, len(levels)+1)
	cur := Scope{}
	chain = append(chain, cur.clone())
	for _, lvl := range levels {
		cur = cur.clone()
		for f, v := range lvl {
			cur[f] = v
		}
		chain = append(chain, cur)
	}
	return chain
}

func (s Scope) clone() Scope {
	out := make(Scope, len(s))
	for f, v := range s {
		out[f] = v
	}
	return out
}
