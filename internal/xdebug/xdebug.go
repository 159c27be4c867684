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

// Package xdebug holds process-wide tuning flags and the evaluator's
// invariant-violation panic helper. Neither is part of the core's
// contract with its callers: Flags is read-only tuning, and Unreachable
// only ever fires on a programming bug, not on malformed input.
package xdebug

import (
	"fmt"
	"log"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Settings is the set of process-wide knobs, populated once from the
// IDECONF_DEBUG environment variable (a comma-separated list of
// "name=value" pairs, mirroring how the teacher ecosystem's own
// debug-flag env var is shaped). Fields are discovered by struct tag, not
// by name, so the env var key and the Go field name can diverge.
type Settings struct {
	// Trace enables Tracef output. The CLI writes one trace line per
	// query it evaluates; the evaluator itself writes no trace lines.
	Trace bool `envflag:"trace"`
	// LogTimestamps includes wall-clock timestamps on trace lines.
	// Disabled by default so golden trace output is reproducible.
	LogTimestamps bool `envflag:"timestamps"`
}

// Flags is the process-wide, already-parsed Settings value. It is
// populated once at init time; the CLI's --trace flag may then set Trace
// before any evaluation runs, matching the "parse phase writes, evaluate
// phase reads" discipline the concurrency model calls for.
var Flags = Init[Settings]("IDECONF_DEBUG")

// Init parses the named environment variable into a fresh T and returns
// it. T must be a struct whose relevant fields carry an `envflag` tag;
// fields without the tag are ignored. Malformed entries are logged and
// skipped rather than treated as fatal, since this only ever configures
// optional diagnostics.
func Init[T any](envVar string) T {
	var t T
	Parse(envVar, &t)
	return t
}

// Parse populates *dst from the named environment variable. dst must be
// a pointer to a struct.
func Parse[T any](envVar string, dst *T) {
	raw := os.Getenv(envVar)
	if raw == "" {
		return
	}
	v := reflect.ValueOf(dst).Elem()
	typ := v.Type()
	byTag := make(map[string]int, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		if tag, ok := typ.Field(i).Tag.Lookup("envflag"); ok {
			byTag[tag] = i
		}
	}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, hasValue := strings.Cut(entry, "=")
		idx, ok := byTag[name]
		if !ok {
			log.Printf("xdebug: unknown %s setting %q", envVar, name)
			continue
		}
		field := v.Field(idx)
		switch field.Kind() {
		case reflect.Bool:
			b := true
			if hasValue {
				parsed, err := strconv.ParseBool(value)
				if err != nil {
					log.Printf("xdebug: bad bool for %q: %v", name, err)
					continue
				}
				b = parsed
			}
			field.SetBool(b)
		case reflect.String:
			field.SetString(value)
		default:
			log.Printf("xdebug: unsupported field kind %s for %q", field.Kind(), name)
		}
	}
}

var traceLog = log.New(os.Stderr, "", 0)

// Tracef emits a single evaluator trace line tagged with traceID, gated
// behind Flags.Trace so production evaluation pays nothing for it.
func Tracef(traceID uuid.UUID, format string, args ...any) {
	if !Flags.Trace {
		return
	}
	if Flags.LogTimestamps {
		traceLog.SetFlags(log.LstdFlags)
	} else {
		traceLog.SetFlags(0)
	}
	prefix := traceID.String()[:8]
	traceLog.Printf("[%s] %s", prefix, fmt.Sprintf(format, args...))
}

// NewTraceID returns a fresh identifier correlating every trace line
// produced by one evaluation.
func NewTraceID() uuid.UUID {
	return uuid.New()
}

var unreachableMu sync.Mutex

// Unreachable panics with a diagnostic naming where it was called from
// and the offending value(s). The evaluator's testBlock calls it for a
// block whose Op is neither ADD nor REMOVE; reaching here means the
// evaluator itself, not the input, is broken.
func Unreachable(where string, args ...any) {
	unreachableMu.Lock()
	defer unreachableMu.Unlock()
	panic(fmt.Sprintf("ideconf: unreachable decision in %s: %s", where, fmt.Sprint(args...)))
}
