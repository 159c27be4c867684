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

// Package condition implements Boolean condition trees: the "when" guard
// attached to a block. A Condition is a finite, acyclic tree of tagged
// variants (match leaf, and/or/not internal nodes), built once by Parse
// and evaluated many times by the query evaluator.
package condition

import (
	"strings"

	"github.com/scopeforge/ideconf/errs"
	"github.com/scopeforge/ideconf/field"
)

// node is the sealed set of condition tree variants. Kept as an
// unexported interface implemented only by the four node types below,
// rather than a public interface third parties could implement: the set
// of shapes a condition can take is closed.
type node interface {
	fieldsTested(out map[*field.Field]bool)
	eval(values field.ValueMap, scope field.Scope, matchOnNil bool) bool
}

// A Condition wraps a parsed node and caches its fields_tested attribute.
type Condition struct {
	root   node
	tested map[*field.Field]bool
}

// A clause resolves against field.ValueMap and field.Scope; this package
// declares no aliases of its own for them.

type matchLeaf struct {
	field   *field.Field
	pattern string
}

func (m *matchLeaf) fieldsTested(out map[*field.Field]bool) { out[m.field] = true }

func (m *matchLeaf) eval(values field.ValueMap, scope field.Scope, matchOnNil bool) bool {
	var tv field.Value
	var present bool
	if m.field.IsScope() && scope != nil {
		tv, present = scope[m.field]
	} else {
		tv, present = values[m.field]
	}
	if !present {
		return matchOnNil
	}
	return field.Matches(m.field, tv, m.pattern, true)
}

type notNode struct{ child node }

func (n *notNode) fieldsTested(out map[*field.Field]bool) { n.child.fieldsTested(out) }
func (n *notNode) eval(values field.ValueMap, scope field.Scope, matchOnNil bool) bool {
	return !n.child.eval(values, scope, matchOnNil)
}

type andNode struct{ children []node }

func (n *andNode) fieldsTested(out map[*field.Field]bool) {
	for _, c := range n.children {
		c.fieldsTested(out)
	}
}
func (n *andNode) eval(values field.ValueMap, scope field.Scope, matchOnNil bool) bool {
	for _, c := range n.children {
		if !c.eval(values, scope, matchOnNil) {
			return false
		}
	}
	return true
}

type orNode struct{ children []node }

func (n *orNode) fieldsTested(out map[*field.Field]bool) {
	for _, c := range n.children {
		c.fieldsTested(out)
	}
}
func (n *orNode) eval(values field.ValueMap, scope field.Scope, matchOnNil bool) bool {
	for _, c := range n.children {
		if c.eval(values, scope, matchOnNil) {
			return true
		}
	}
	return false
}

// Empty returns the always-true condition: the one attached to a
// synthetic compensation block and to an unconditional top-level block.
func Empty() *Condition {
	return &Condition{root: &andNode{}, tested: map[*field.Field]bool{}}
}

// Clause is one raw (key, pattern) pair as supplied by a script. Field is
// empty for a positional clause (an array slot with no key of its own);
// DefaultField then supplies the field the pattern is tested against
// unless the pattern itself retargets it with a "field:pattern" prefix.
type Clause struct {
	Field   string
	Pattern string
}

// Parse builds a Condition from a set of clauses, ANDing them together.
// DefaultField is the field positional clauses fall back to; it may be
// empty if every clause in the set carries its own Field.
//
// Parsing also augments tested, when it is non-nil, with every field
// resolved into a match leaf (spec's "global side effect").
func Parse(reg *field.Registry, tested *TestedFields, defaultField string, clauses []Clause) (*Condition, error) {
	if len(clauses) == 0 {
		return Empty(), nil
	}
	var errl errs.List
	children := make([]node, 0, len(clauses))
	for _, c := range clauses {
		enclosing := c.Field
		if enclosing == "" {
			enclosing = defaultField
		}
		n, err := parsePattern(reg, enclosing, c.Pattern)
		if err != nil {
			errl.Add(err.(*errs.Error))
			continue
		}
		children = append(children, n)
	}
	if err := errl.Err(); err != nil {
		return nil, err
	}
	var root node
	if len(children) == 1 {
		root = children[0]
	} else {
		root = &andNode{children: children}
	}
	out := map[*field.Field]bool{}
	root.fieldsTested(out)
	if tested != nil {
		tested.addAll(out)
	}
	return &Condition{root: root, tested: out}, nil
}

// parsePattern implements the "or_term (" or " or_term)*" grammar level.
func parsePattern(reg *field.Registry, enclosingField, pattern string) (node, error) {
	terms := strings.Split(pattern, " or ")
	nodes := make([]node, 0, len(terms))
	for _, t := range terms {
		n, err := parseOrTerm(reg, enclosingField, t)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return &orNode{children: nodes}, nil
}

// parseOrTerm implements "not atom | atom".
func parseOrTerm(reg *field.Registry, enclosingField, term string) (node, error) {
	term = strings.TrimSpace(term)
	negate := false
	if rest, ok := strings.CutPrefix(term, "not "); ok {
		negate = true
		term = rest
	}
	leaf, err := parseAtom(reg, enclosingField, term)
	if err != nil {
		return nil, err
	}
	if negate {
		return &notNode{child: leaf}, nil
	}
	return leaf, nil
}

// parseAtom implements "[field_name ":"] literal", retargeting the
// clause to field_name when the prefix names a registered field.
func parseAtom(reg *field.Registry, enclosingField, atom string) (*matchLeaf, error) {
	fname := enclosingField
	pattern := atom
	if idx := strings.IndexByte(atom, ':'); idx >= 0 {
		if f, ok := reg.Get(atom[:idx]); ok {
			fname = f.Name()
			pattern = atom[idx+1:]
		}
	}
	if fname == "" {
		return nil, errs.Newf(errs.BadCondition, []string{atom}, "positional clause has no default field")
	}
	f, ok := reg.Get(fname)
	if !ok {
		return nil, errs.Newf(errs.UnknownField, []string{fname}, "field %q is not registered", fname)
	}
	if pattern == "" {
		return nil, errs.Newf(errs.BadCondition, []string{fname}, "empty pattern")
	}
	return &matchLeaf{field: f, pattern: pattern}, nil
}
