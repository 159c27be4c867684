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

package main

import (
	"testing"

	"github.com/scopeforge/ideconf/cmd/ideconf/emit"
	"github.com/scopeforge/ideconf/cmd/ideconf/script"
	"github.com/scopeforge/ideconf/internal/scopetest"
	"github.com/scopeforge/ideconf/query"
)

// TestScenarios drives the same eight spec scenarios query/query_test.go
// checks against the Block list, but end to end: through the YAML script
// format and the emitter, so what a user would actually see from
// `ideconf eval` is what's pinned down as golden output.
func TestScenarios(t *testing.T) {
	tt := scopetest.TxTarTest{
		Root: "../../testdata/eval",
		Name: "eval",
	}
	tt.Run(t, func(tc *scopetest.Test) {
		doc, err := script.Load(tc.Script())
		if err != nil {
			tc.Fatalf("loading script: %v", err)
		}
		for _, nq := range doc.Queries {
			out := query.Evaluate(nq.Query)
			y, err := emit.YAML(emit.Accumulate(out))
			if err != nil {
				tc.Fatalf("rendering query %q: %v", nq.Name, err)
			}
			if _, err := tc.Writer(nq.Name).Write(y); err != nil {
				tc.Fatalf("writing query %q: %v", nq.Name, err)
			}
		}
	})
}
