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

// Package block defines Block, the immutable conditional contribution a
// script declares and the query evaluator consumes.
package block

import (
	"github.com/scopeforge/ideconf/condition"
	"github.com/scopeforge/ideconf/field"
)

// Op is a block's declared operation.
type Op int8

const (
	ADD Op = iota
	REMOVE
)

func (o Op) String() string {
	if o == REMOVE {
		return "remove"
	}
	return "add"
}

// A Block is an immutable conditional bundle of field assignments.
// Ordering is significant: a script's blocks are numbered by declaration
// order and that order is preserved end to end through evaluation.
type Block struct {
	Op        Op
	Condition *condition.Condition
	Data      field.ValueMap
}

// New constructs a Block. data may be nil, in which case it starts empty
// and is populated later via Receive (the shape the evaluator uses to
// build a synthetic compensation block).
func New(op Op, cond *condition.Condition, data field.ValueMap) *Block {
	if cond == nil {
		cond = condition.Empty()
	}
	if data == nil {
		data = field.ValueMap{}
	}
	return &Block{Op: op, Condition: cond, Data: data}
}

// Receive appends value into b.Data[f] using f's merge semantics. It is
// the only mutator a Block exposes, and exists solely so the evaluator
// can build up a synthetic compensation block's contents one value at a
// time as it discovers them.
func Receive(b *Block, f *field.Field, value field.Value) {
	b.Data[f] = field.Merge(f, b.Data[f], value)
}
