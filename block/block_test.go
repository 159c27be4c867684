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

package block_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/scopeforge/ideconf/block"
	"github.com/scopeforge/ideconf/field"
)

func TestNewDefaultsEmptyData(t *testing.T) {
	b := block.New(block.ADD, nil, nil)
	qt.Assert(t, qt.IsNotNil(b.Data))
	qt.Assert(t, qt.IsNotNil(b.Condition))
}

func TestReceiveMergesByKind(t *testing.T) {
	r := field.NewRegistry()
	defines := r.Register("defines", field.Set, false)
	b := block.New(block.ADD, nil, nil)
	block.Receive(b, defines, field.Value{"A", "B"})
	block.Receive(b, defines, field.Value{"B", "C"})
	qt.Assert(t, qt.DeepEquals(b.Data[defines], field.Value{"A", "B", "C"}))
}

func TestOpString(t *testing.T) {
	qt.Assert(t, qt.Equals(block.ADD.String(), "add"))
	qt.Assert(t, qt.Equals(block.REMOVE.String(), "remove"))
}
