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

package field_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/scopeforge/ideconf/field"
)

func TestRegisterIsIdempotent(t *testing.T) {
	r := field.NewRegistry()
	a := r.Register("defines", field.Set, false)
	b := r.Register("defines", field.List, true) // second call, different args
	qt.Assert(t, qt.Equals(b, a))
	qt.Assert(t, qt.Equals(b.ValueKind(), field.Set))
	qt.Assert(t, qt.IsFalse(b.IsScope()))
}

func TestGetUnregistered(t *testing.T) {
	r := field.NewRegistry()
	_, ok := r.Get("nope")
	qt.Assert(t, qt.IsFalse(ok))
}

func TestGetReturnsRegisteredHandle(t *testing.T) {
	r := field.NewRegistry()
	want := r.Register("projects", field.Set, true)
	got, ok := r.Get("projects")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(got, want))
}
