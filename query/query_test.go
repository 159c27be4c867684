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

package query_test

import (
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/scopeforge/ideconf/block"
	"github.com/scopeforge/ideconf/condition"
	"github.com/scopeforge/ideconf/field"
	"github.com/scopeforge/ideconf/query"
)

// fixture bundles the registry and fields every scenario below shares.
type fixture struct {
	reg            *field.Registry
	tested         *condition.TestedFields
	projects       *field.Field
	configurations *field.Field
	platforms      *field.Field
	defines        *field.Field
}

func newFixture() *fixture {
	r := field.NewRegistry()
	return &fixture{
		reg:            r,
		tested:         condition.NewTestedFields(),
		projects:       r.Register("projects", field.Set, true),
		configurations: r.Register("configurations", field.Set, true),
		platforms:      r.Register("platforms", field.Set, true),
		defines:        r.Register("defines", field.Set, false),
	}
}

// cond parses a single clause into a Condition, failing the test on any
// parse error. fieldName empty yields the unconditional
// condition.Empty() without parsing anything.
func (fx *fixture) cond(t *testing.T, fieldName, pattern string) *condition.Condition {
	t.Helper()
	if fieldName == "" {
		return condition.Empty()
	}
	c, err := condition.Parse(fx.reg, fx.tested, "", []condition.Clause{{Field: fieldName, Pattern: pattern}})
	qt.Assert(t, qt.IsNil(err), qt.Commentf("Parse(%s:%s)", fieldName, pattern))
	return c
}

func (fx *fixture) andCond(t *testing.T, clauses ...condition.Clause) *condition.Condition {
	t.Helper()
	c, err := condition.Parse(fx.reg, fx.tested, "", clauses)
	qt.Assert(t, qt.IsNil(err), qt.Commentf("Parse(%v)", clauses))
	return c
}

// withDefines builds an ADD or REMOVE block carrying a defines value.
func withDefines(op block.Op, cond *condition.Condition, defines *field.Field, values ...string) *block.Block {
	return block.New(op, cond, field.ValueMap{defines: field.Value(values)})
}

// accumulate folds Evaluate's emitted block list into the final effective
// value for f, mirroring what an emitter does: ADD merges, REMOVE
// subtracts, in list order.
func accumulate(blocks []*block.Block, f *field.Field) field.Value {
	var acc field.Value
	for _, b := range blocks {
		v, ok := b.Data[f]
		if !ok {
			continue
		}
		switch b.Op {
		case block.ADD:
			acc = field.Merge(f, acc, v)
		case block.REMOVE:
			acc, _ = field.Remove(f, acc, v)
		}
	}
	return acc
}

func wantValue(t *testing.T, got field.Value, want ...string) {
	t.Helper()
	var wantVal field.Value
	if len(want) > 0 {
		wantVal = field.Value(want)
	}
	// EquateEmpty treats a nil Value the same as an explicitly empty one,
	// since accumulate's zero-ops case and a deliberate "no values" Value
	// literal carry the same meaning here.
	qt.Assert(t, qt.CmpEquals(got, wantVal, cmpopts.EquateEmpty()))
}

// S1 — local add+remove. Script: defines {A,B,C}; removeDefines 'B' at
// global scope. Expected defines: [A,C].
func TestS1LocalAddRemove(t *testing.T) {
	fx := newFixture()
	add := withDefines(block.ADD, condition.Empty(), fx.defines, "A", "B", "C")
	rem := withDefines(block.REMOVE, condition.Empty(), fx.defines, "B")

	q := &query.Query{
		SourceBlocks: []*block.Block{add, rem},
	}
	out := query.Evaluate(q)
	wantValue(t, accumulate(out, fx.defines), "A", "C")
}

// scenarios S2-S6 share the same script: workspace W1 with defines
// {A,B,C} unconditionally, and a REMOVE of 'B' guarded by projects:P2.

func (fx *fixture) condProjects(t *testing.T, pattern string) *condition.Condition {
	return fx.cond(t, "projects", pattern)
}

// S2 — inspected at W1 (the workspace itself, no project selected).
// Expected defines: [A,C].
func TestS2WorkspaceLevel(t *testing.T) {
	fx := newFixture()
	add := withDefines(block.ADD, condition.Empty(), fx.defines, "A", "B", "C")
	rem := withDefines(block.REMOVE, fx.condProjects(t, "P2"), fx.defines, "B")

	q := &query.Query{
		SourceBlocks: []*block.Block{add, rem},
	}
	out := query.Evaluate(q)
	wantValue(t, accumulate(out, fx.defines), "A", "C")
}

// S3 — inspected at P2, inheritance disabled. Expected defines: [].
func TestS3P2NoInheritance(t *testing.T) {
	fx := newFixture()
	add := withDefines(block.ADD, condition.Empty(), fx.defines, "A", "B", "C")
	rem := withDefines(block.REMOVE, fx.condProjects(t, "P2"), fx.defines, "B")

	q := &query.Query{
		SourceBlocks: []*block.Block{add, rem},
		Levels:       []field.Scope{{fx.projects: {"P2"}}},
	}
	out := query.Evaluate(q)
	wantValue(t, accumulate(out, fx.defines))
}

// S4 — inspected at P2, inheritance enabled. Expected defines: [A,C].
func TestS4P2WithInheritance(t *testing.T) {
	fx := newFixture()
	add := withDefines(block.ADD, condition.Empty(), fx.defines, "A", "B", "C")
	rem := withDefines(block.REMOVE, fx.condProjects(t, "P2"), fx.defines, "B")

	q := &query.Query{
		SourceBlocks: []*block.Block{add, rem},
		Levels:       []field.Scope{{fx.projects: {"P2"}}},
		Inherit:      true,
	}
	out := query.Evaluate(q)
	wantValue(t, accumulate(out, fx.defines), "A", "C")
}

// S5 — inspected at P1 (a sibling of the REMOVE's guard), inheritance
// disabled. Expected defines: [B] (compensation add only).
func TestS5P1NoInheritance(t *testing.T) {
	fx := newFixture()
	add := withDefines(block.ADD, condition.Empty(), fx.defines, "A", "B", "C")
	rem := withDefines(block.REMOVE, fx.condProjects(t, "P2"), fx.defines, "B")

	q := &query.Query{
		SourceBlocks: []*block.Block{add, rem},
		Levels:       []field.Scope{{fx.projects: {"P1"}}},
	}
	out := query.Evaluate(q)
	wantValue(t, accumulate(out, fx.defines), "B")
}

// S6 — inspected at P1, inheritance enabled. Expected defines:
// [A,B,C].
func TestS6P1WithInheritance(t *testing.T) {
	fx := newFixture()
	add := withDefines(block.ADD, condition.Empty(), fx.defines, "A", "B", "C")
	rem := withDefines(block.REMOVE, fx.condProjects(t, "P2"), fx.defines, "B")

	q := &query.Query{
		SourceBlocks: []*block.Block{add, rem},
		Levels:       []field.Scope{{fx.projects: {"P1"}}},
		Inherit:      true,
	}
	out := query.Evaluate(q)
	wantValue(t, accumulate(out, fx.defines), "A", "B", "C")
}

// S7 — nested project+configuration remove. Workspace W1, projects
// [P1,P2,P3], configurations [Debug,Release], platforms [macOS,iOS],
// defines {A,B,C}, removeDefines 'B' guarded by projects:P2 AND
// configurations:Debug.
func (fx *fixture) s7Remove(t *testing.T) *block.Block {
	cond := fx.andCond(t,
		condition.Clause{Field: "projects", Pattern: "P2"},
		condition.Clause{Field: "configurations", Pattern: "Debug"},
	)
	return withDefines(block.REMOVE, cond, fx.defines, "B")
}

func TestS7NestedRemove(t *testing.T) {
	fx := newFixture()
	add := withDefines(block.ADD, condition.Empty(), fx.defines, "A", "B", "C")
	rem := fx.s7Remove(t)
	blocks := []*block.Block{add, rem}

	t.Run("P2,Debug,macOS without inheritance", func(t *testing.T) {
		q := &query.Query{
			SourceBlocks: blocks,
			Levels: []field.Scope{
				{fx.projects: {"P2"}}, {fx.configurations: {"Debug"}}, {fx.platforms: {"macOS"}},
			},
		}
		out := query.Evaluate(q)
		wantValue(t, accumulate(out, fx.defines))
	})

	t.Run("P2,Release,macOS without inheritance", func(t *testing.T) {
		q := &query.Query{
			SourceBlocks: blocks,
			Levels: []field.Scope{
				{fx.projects: {"P2"}}, {fx.configurations: {"Release"}}, {fx.platforms: {"macOS"}},
			},
		}
		out := query.Evaluate(q)
		wantValue(t, accumulate(out, fx.defines), "B")
	})

	t.Run("P1,Debug,macOS with inheritance", func(t *testing.T) {
		q := &query.Query{
			SourceBlocks: blocks,
			Levels: []field.Scope{
				{fx.projects: {"P1"}}, {fx.configurations: {"Debug"}}, {fx.platforms: {"macOS"}},
			},
			Inherit: true,
		}
		out := query.Evaluate(q)
		wantValue(t, accumulate(out, fx.defines), "A", "B", "C")
	})

	t.Run("W1", func(t *testing.T) {
		q := &query.Query{
			SourceBlocks: blocks,
		}
		out := query.Evaluate(q)
		wantValue(t, accumulate(out, fx.defines), "A", "C")
	})
}

// S8 — remove of an unset value. Workspace with defines {A,B,C},
// removeDefines {'B','D'} guarded by projects:P2. At P1: [B] (D is
// ignored; only B compensates).
func TestS8RemoveOfUnsetValue(t *testing.T) {
	fx := newFixture()
	add := withDefines(block.ADD, condition.Empty(), fx.defines, "A", "B", "C")
	rem := withDefines(block.REMOVE, fx.condProjects(t, "P2"), fx.defines, "B", "D")

	q := &query.Query{
		SourceBlocks: []*block.Block{add, rem},
		Levels:       []field.Scope{{fx.projects: {"P1"}}},
	}
	out := query.Evaluate(q)
	wantValue(t, accumulate(out, fx.defines), "B")
}

// Invariant 4: monotone decisions. A block result never reverts from a
// terminal op back to unknown; observable here as idempotence across
// repeated Evaluate calls on the same inputs (invariant 3).
func TestIdempotentEvaluation(t *testing.T) {
	fx := newFixture()
	add := withDefines(block.ADD, condition.Empty(), fx.defines, "A", "B", "C")
	rem := withDefines(block.REMOVE, fx.condProjects(t, "P2"), fx.defines, "B")

	mk := func() *query.Query {
		return &query.Query{
			SourceBlocks: []*block.Block{add, rem},
			Levels:       []field.Scope{{fx.projects: {"P1"}}},
			Inherit:      true,
		}
	}
	first := query.Evaluate(mk())
	second := query.Evaluate(mk())
	qt.Assert(t, qt.DeepEquals(accumulate(second, fx.defines), accumulate(first, fx.defines)),
		qt.Commentf("re-evaluation diverged"))
}
