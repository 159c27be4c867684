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

// Package query implements the evaluator: the fixed-point algorithm that
// turns a flat, ordered list of conditional blocks into the additive set
// of blocks that apply at one scope.
package query

import (
	"container/list"

	"github.com/scopeforge/ideconf/block"
	"github.com/scopeforge/ideconf/condition"
	"github.com/scopeforge/ideconf/field"
)

// decision is a block result's per-lens verdict: undecided, or one of the
// two terminal operations, or out of scope entirely (the target lens of a
// REMOVE that needed compensating, and the global lens of the synthetic
// compensation entry itself).
type decision int8

const (
	unknown decision = iota
	dAdd
	dRemove
	outOfScope
)

// Query bundles everything Evaluate needs. It is a pure function of its
// fields: no two calls with equal Query values can observe different
// state, beyond whatever the Field registry and condition.TestedFields
// accumulated during parsing (both are frozen by the time evaluation
// begins, per the concurrency model).
type Query struct {
	// SourceBlocks is the full, order-preserved list of blocks a script
	// declared.
	SourceBlocks []*block.Block
	// Levels is the query's scope path, root to leaf, one entry per
	// level actually selected (e.g. {projects: P2}, then
	// {configurations: Debug}). An empty Levels queries the root scope
	// itself.
	Levels []field.Scope
	// Inherit controls target-level ADD visibility: with inheritance,
	// an ancestor's unconditional (or otherwise coarser) block can
	// still reach this target; without it, only a block whose
	// condition explicitly covers every field of this exact scope can.
	// It has no bearing on REMOVE decisions (see testBlock): whether a
	// REMOVE applies directly here or needs compensating for a sibling
	// depends only on Levels, the query's own fixed lineage.
	Inherit bool
	// InitialValues seeds both target_values and global_values before
	// any block runs, e.g. with inherited platform defaults.
	InitialValues field.ValueMap
	// Tested is the set of fields some condition in this evaluation
	// actually tests. It is not consulted by Evaluate itself — a
	// block's Data map is already restricted to whatever fields the
	// script assigned, so filtering the merge step by Tested as well
	// would risk starving target_values/global_values of a field a
	// later compensation check needs even though no condition happens
	// to test it (defines is never a match-leaf target in any of this
	// package's scenarios, yet target_values[defines] must stay
	// accurate for compensation to suppress already-present values
	// correctly). Tested is kept on Query purely as a hint callers can
	// use for their own diagnostics or pre-sizing.
	Tested *condition.TestedFields
	// GlobalRootOverride, if non-nil, is prepended to the ancestry
	// chain used for ADD blocks' global-visibility check, widening it
	// to include scopes above Levels' own root (see DESIGN.md's Open
	// Question 2).
	GlobalRootOverride field.Scope
}

// blockResult is one entry of the evaluator's working list: a source
// block plus its two decided (or not yet decided) operations.
type blockResult struct {
	targetOp decision
	globalOp decision
	source   *block.Block
}

// Evaluate runs the fixed-point algorithm and returns the ordered,
// additive list of blocks that apply at the query's target scope.
// Synthetic compensation blocks are included inline, at the position of
// the REMOVE they offset.
func Evaluate(q *Query) []*block.Block {
	ancestryScopes := field.InheritedChain(q.Levels...)
	if q.GlobalRootOverride != nil {
		widened := make(field.ScopeChain, 0, len(ancestryScopes)+1)
		widened = append(widened, q.GlobalRootOverride)
		widened = append(widened, ancestryScopes...)
		ancestryScopes = widened
	}
	exactScopes := field.ExactChain(q.Levels...)
	targetScopes := exactScopes
	if q.Inherit {
		targetScopes = ancestryScopes
	}

	targetValues := q.InitialValues.Clone()
	if targetValues == nil {
		targetValues = field.ValueMap{}
	}
	globalValues := q.InitialValues.Clone()
	if globalValues == nil {
		globalValues = field.ValueMap{}
	}

	results := list.New()
	for _, b := range q.SourceBlocks {
		results.PushBack(&blockResult{source: b})
	}

	for e := results.Front(); e != nil; {
		br := e.Value.(*blockResult)
		if br.globalOp != unknown {
			e = e.Next()
			continue
		}

		globalOp, targetOp := testBlock(br.source, ancestryScopes, exactScopes, globalValues, targetScopes, targetValues)
		if globalOp == unknown {
			// Precondition not yet satisfied; leave undecided and come
			// back to it once more state has accumulated.
			e = e.Next()
			continue
		}

		if targetOp == dAdd && globalOp == dRemove {
			br.targetOp = outOfScope
			synth := buildCompensation(br.source, results, targetValues)
			results.InsertBefore(&blockResult{targetOp: dAdd, globalOp: outOfScope, source: synth}, e)
			applyOp(targetValues, synth.Data, dAdd)
		} else if targetOp == dAdd || targetOp == dRemove {
			br.targetOp = targetOp
			applyOp(targetValues, br.source.Data, targetOp)
		}

		br.globalOp = globalOp
		applyOp(globalValues, br.source.Data, globalOp)

		// global_op just transitioned from unknown to a terminal value:
		// previously-skipped blocks may now be decidable, so restart the
		// scan from the front.
		e = results.Front()
	}

	out := make([]*block.Block, 0, results.Len())
	for e := results.Front(); e != nil; e = e.Next() {
		br := e.Value.(*blockResult)
		switch br.targetOp {
		case dAdd:
			out = append(out, block.New(block.ADD, condition.Empty(), br.source.Data))
		case dRemove:
			out = append(out, block.New(block.REMOVE, condition.Empty(), br.source.Data))
		}
	}
	return out
}

// applyOp folds data into values under op's semantics: ADD merges,
// REMOVE subtracts.
func applyOp(values field.ValueMap, data field.ValueMap, op decision) {
	for f, v := range data {
		switch op {
		case dAdd:
			values[f] = field.Merge(f, values[f], v)
		case dRemove:
			reduced, _ := field.Remove(f, values[f], v)
			values[f] = reduced
		}
	}
}

// buildCompensation constructs the synthetic ADD block that offsets a
// REMOVE decided as applying to a sibling rather than the target: for
// each field the REMOVE touches, it reconstructs the field's current
// global value from already-decided results, figures out which concrete
// values that REMOVE would actually strip, and re-adds whichever of
// those the target doesn't already carry.
func buildCompensation(removeBlock *block.Block, results *list.List, targetValues field.ValueMap) *block.Block {
	synth := block.New(block.ADD, nil, nil)
	for f, patterns := range removeBlock.Data {
		currentGlobal := fetchField(f, results)
		_, removedValues := field.Remove(f, currentGlobal, patterns)
		for _, v := range removedValues {
			if !field.Matches(f, targetValues[f], v, false) {
				block.Receive(synth, f, field.Value{v})
			}
		}
	}
	return synth
}
