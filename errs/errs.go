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

// Package errs defines the two error kinds raised by condition parsing
// and by the demo script loader: the only caller-facing failures.
// The evaluator itself never returns an error (see internal/xdebug for how
// it handles what the design calls an unreachable decision).
package errs

import (
	"fmt"
	"strings"
)

// Kind classifies an Error. The set is closed: parsing is the only source
// of user-facing failure in this engine.
type Kind int8

const (
	// UnknownField means a clause referenced a field name that was never
	// registered.
	UnknownField Kind = iota
	// BadCondition means a clause's pattern string could not be parsed:
	// an empty pattern, or a positional clause with no default field.
	// The demo script loader also reports a malformed document, an
	// unrecognized field kind or an unrecognized op under this kind.
	BadCondition
)

func (k Kind) String() string {
	switch k {
	case UnknownField:
		return "unknown field"
	case BadCondition:
		return "bad condition"
	default:
		return "error"
	}
}

// Error is a single parse failure, with a Path identifying which clause
// produced it (e.g. the field name and/or the raw pattern string).
type Error struct {
	Kind    Kind
	Message string
	Path    []string
}

func (e *Error) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, strings.Join(e.Path, "."), e.Message)
}

// Newf builds an Error of the given kind, with a path and a formatted
// message.
func Newf(kind Kind, path []string, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Path: path}
}

// List aggregates zero or more Errors. A zero-value List is valid and
// empty. Parsing collects every clause failure instead of stopping at the
// first, mirroring how a script author wants every bad clause reported in
// one pass.
type List []*Error

// Add appends err to the list if it is non-nil.
func (l *List) Add(err *Error) {
	if err != nil {
		*l = append(*l, err)
	}
}

// Err returns l as an error, or nil if l is empty.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l List) Error() string {
	if len(l) == 1 {
		return l[0].Error()
	}
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(l), strings.Join(msgs, "; "))
}
