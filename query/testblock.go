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
	"github.com/scopeforge/ideconf/block"
	"github.com/scopeforge/ideconf/condition"
	"github.com/scopeforge/ideconf/field"
	"github.com/scopeforge/ideconf/internal/xdebug"
)

// testBlock is the decision table driving the main loop: given one
// source block and the current accumulated state, it decides whether the
// block is in scope at the global level and at the target level.
//
// ADD blocks become decidable once their condition is satisfiable
// against ancestryScopes, the target's full root-to-leaf ancestry chain
// — always present regardless of whether this query has inheritance
// enabled, since an unconditional block has to resolve somewhere even
// when it will go on to fail the narrower targetScopes check below.
// Whether the block also applies at the target follows the same test
// narrowed to the target's own values and targetScopes, which is that
// same ancestry chain when inheritance is on, or just the target's exact
// scope alone when it's off.
//
// REMOVE blocks are the subtle case: a REMOVE can be undecidable (not
// enough has accumulated yet to know), can apply directly at the target,
// or can apply only to some sibling — in which case the target still
// sees globalOp=REMOVE (so the removed values get folded out of
// global_values) but targetOp=ADD, the signal the main loop reads as
// "synthesize a compensation block". This decision never consults
// inheritance: it is tested against exactScopes, the query's own fixed
// lineage, since "does this REMOVE's condition conflict with where I
// actually am" does not depend on how far up the tree ADD blocks are
// allowed to reach.
func testBlock(b *block.Block, ancestryScopes, exactScopes field.ScopeChain, globalValues field.ValueMap, targetScopes field.ScopeChain, targetValues field.ValueMap) (globalOp, targetOp decision) {
	c := b.Condition
	switch b.Op {
	case block.ADD:
		if _, ok := c.MatchesScopeAndValues(globalValues, ancestryScopes, condition.NilMatchesAny); !ok {
			return unknown, unknown
		}
		if _, ok := c.MatchesScopeAndValues(targetValues, targetScopes, condition.NilMatchesAny); !ok {
			return dAdd, unknown
		}
		return dAdd, dAdd

	case block.REMOVE:
		if c.HasConflictingValues(condition.AsChain(globalValues), globalValues) {
			return unknown, unknown
		}
		if !c.HasConflictingValues(exactScopes, globalValues) {
			return dRemove, dRemove
		}
		return dRemove, dAdd
	}

	xdebug.Unreachable("testBlock", "unrecognized block.Op ", b.Op)
	return unknown, unknown
}
