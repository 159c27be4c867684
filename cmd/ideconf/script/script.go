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

// Package script loads the demo YAML document the CLI evaluates: field
// registrations, an ordered list of blocks, and a set of named queries.
// This is deliberately a thin, separate layer — the engine packages
// (field, condition, block, query) never import it, and a real project
// generator would plug in its own ingestion here instead.
package script

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/scopeforge/ideconf/block"
	"github.com/scopeforge/ideconf/condition"
	"github.com/scopeforge/ideconf/errs"
	"github.com/scopeforge/ideconf/field"
	"github.com/scopeforge/ideconf/query"
)

type fieldDoc struct {
	Name  string `yaml:"name"`
	Kind  string `yaml:"kind"`
	Scope bool   `yaml:"scope"`
}

type clauseDoc struct {
	Field   string `yaml:"field"`
	Pattern string `yaml:"pattern"`
}

type blockDoc struct {
	Op   string              `yaml:"op"`
	When []clauseDoc         `yaml:"when"`
	Data map[string][]string `yaml:"data"`
}

type levelDoc struct {
	Field string `yaml:"field"`
	Value string `yaml:"value"`
}

type queryDoc struct {
	Name       string     `yaml:"name"`
	Levels     []levelDoc `yaml:"levels"`
	Inherit    bool       `yaml:"inherit"`
	GlobalRoot []levelDoc `yaml:"globalRoot"`
}

type scriptDoc struct {
	Fields  []fieldDoc `yaml:"fields"`
	Blocks  []blockDoc `yaml:"blocks"`
	Queries []queryDoc `yaml:"queries"`
}

// NamedQuery pairs a script's query entry with the name it was declared
// under, so the CLI and the golden-file harness can report which query a
// given effective value belongs to.
type NamedQuery struct {
	Name  string
	Query *query.Query
}

// Script is the parsed, ready-to-evaluate result of loading a document:
// the registry and blocks every named query shares, plus the queries
// themselves.
type Script struct {
	Registry *field.Registry
	Tested   *condition.TestedFields
	Blocks   []*block.Block
	Queries  []NamedQuery
}

var kindNames = map[string]field.Kind{
	"scalar":   field.Scalar,
	"list":     field.List,
	"set":      field.Set,
	"path-set": field.PathSet,
	"path_set": field.PathSet,
	"pathset":  field.PathSet,
}

// Load parses a script document from data. Every clause or data-map
// reference to an unregistered field name is collected and returned
// together as an errs.List, rather than stopping at the first.
func Load(data []byte) (*Script, error) {
	var doc scriptDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Newf(errs.BadCondition, nil, "parsing script: %v", err)
	}

	reg := field.NewRegistry()
	tested := condition.NewTestedFields()
	var errl errs.List

	for i, fd := range doc.Fields {
		path := []string{"fields", strconv.Itoa(i), "kind"}
		kind, ok := kindNames[fd.Kind]
		if !ok {
			errl.Add(errs.Newf(errs.BadCondition, path, "unrecognized field kind %q", fd.Kind))
			continue
		}
		reg.Register(fd.Name, kind, fd.Scope)
	}

	blocks := make([]*block.Block, 0, len(doc.Blocks))
	for i, bd := range doc.Blocks {
		base := []string{"blocks", strconv.Itoa(i)}
		op, ok := parseOp(bd.Op)
		if !ok {
			errl.Add(errs.Newf(errs.BadCondition, append(base, "op"), "unrecognized op %q", bd.Op))
			continue
		}

		clauses := make([]condition.Clause, len(bd.When))
		for j, w := range bd.When {
			clauses[j] = condition.Clause{Field: w.Field, Pattern: w.Pattern}
		}
		cond, err := condition.Parse(reg, tested, "", clauses)
		if err != nil {
			if list, ok := err.(errs.List); ok {
				errl = append(errl, list...)
			} else if e, ok := err.(*errs.Error); ok {
				errl.Add(e)
			}
			continue
		}

		values := make(field.ValueMap, len(bd.Data))
		for name, raw := range bd.Data {
			f, ok := reg.Get(name)
			if !ok {
				errl.Add(errs.Newf(errs.UnknownField, append(base, "data", name), "field %q is not registered", name))
				continue
			}
			values[f] = field.Value(raw)
		}

		blocks = append(blocks, block.New(op, cond, values))
	}

	queries := make([]NamedQuery, 0, len(doc.Queries))
	for i, qd := range doc.Queries {
		base := []string{"queries", strconv.Itoa(i)}
		levels := make([]field.Scope, len(qd.Levels))
		for j, ld := range qd.Levels {
			f, ok := reg.Get(ld.Field)
			if !ok {
				errl.Add(errs.Newf(errs.UnknownField, append(base, "levels", strconv.Itoa(j)), "field %q is not registered", ld.Field))
				continue
			}
			levels[j] = field.Scope{f: field.Value{ld.Value}}
		}

		var root field.Scope
		if len(qd.GlobalRoot) > 0 {
			rootLevels := make([]field.Scope, len(qd.GlobalRoot))
			for j, ld := range qd.GlobalRoot {
				f, ok := reg.Get(ld.Field)
				if !ok {
					errl.Add(errs.Newf(errs.UnknownField, append(base, "globalRoot", strconv.Itoa(j)), "field %q is not registered", ld.Field))
					continue
				}
				rootLevels[j] = field.Scope{f: field.Value{ld.Value}}
			}
			root = field.MergeScopes(rootLevels...)
		}

		queries = append(queries, NamedQuery{
			Name: qd.Name,
			Query: &query.Query{
				SourceBlocks:       blocks,
				Levels:             levels,
				Inherit:            qd.Inherit,
				Tested:             tested,
				GlobalRootOverride: root,
			},
		})
	}

	if err := errl.Err(); err != nil {
		return nil, err
	}
	return &Script{Registry: reg, Tested: tested, Blocks: blocks, Queries: queries}, nil
}

func parseOp(s string) (block.Op, bool) {
	switch s {
	case "add":
		return block.ADD, true
	case "remove":
		return block.REMOVE, true
	default:
		return 0, false
	}
}
