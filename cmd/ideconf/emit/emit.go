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

// Package emit replays an evaluator's block list into a final field→value
// map and renders it as YAML. It stands in for whatever an IDE-specific
// project-file writer would do with the same evaluator output; the core
// packages know nothing about it.
package emit

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/scopeforge/ideconf/block"
	"github.com/scopeforge/ideconf/field"
)

// Accumulate folds blocks in order into the effective value each field
// ends up with: ADD merges, REMOVE subtracts, exactly as a project file
// generator consuming the evaluator's output would.
func Accumulate(blocks []*block.Block) field.ValueMap {
	out := field.ValueMap{}
	for _, b := range blocks {
		for f, v := range b.Data {
			switch b.Op {
			case block.ADD:
				out[f] = field.Merge(f, out[f], v)
			case block.REMOVE:
				reduced, _ := field.Remove(f, out[f], v)
				out[f] = reduced
			}
		}
	}
	return out
}

// YAML renders an effective value map as a YAML document, one key per
// field sorted by name so repeated runs produce byte-identical output.
func YAML(values field.ValueMap) ([]byte, error) {
	plain := make(map[string][]string, len(values))
	names := make([]string, 0, len(values))
	for f, v := range values {
		plain[f.Name()] = []string(v)
		names = append(names, f.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return []byte("{}\n"), nil
	}

	var node yaml.Node
	node.Kind = yaml.MappingNode
	for _, name := range names {
		var keyNode, valNode yaml.Node
		if err := keyNode.Encode(name); err != nil {
			return nil, err
		}
		if err := valNode.Encode(plain[name]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &keyNode, &valNode)
	}
	return yaml.Marshal(&node)
}
