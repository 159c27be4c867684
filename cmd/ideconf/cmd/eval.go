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

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scopeforge/ideconf/cmd/ideconf/emit"
	"github.com/scopeforge/ideconf/cmd/ideconf/script"
	"github.com/scopeforge/ideconf/field"
	"github.com/scopeforge/ideconf/internal/xdebug"
	"github.com/scopeforge/ideconf/query"
)

func newEvalCmd(c *Command) *cobra.Command {
	var (
		queryName  string
		scopeFlag  string
		noInherit  string
		globalRoot string
	)

	cmd := &cobra.Command{
		Use:   "eval <script.yaml>",
		Short: "evaluate a script's query (or queries) and print the effective values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				fmt.Fprintln(c.Stderr(), err)
				return ErrPrintedError
			}
			doc, err := script.Load(data)
			if err != nil {
				fmt.Fprintln(c.Stderr(), err)
				return ErrPrintedError
			}

			queries, err := selectQueries(doc, queryName, scopeFlag, noInherit, globalRoot)
			if err != nil {
				fmt.Fprintln(c.Stderr(), err)
				return ErrPrintedError
			}

			for _, nq := range queries {
				traceID := xdebug.NewTraceID()
				xdebug.Tracef(traceID, "evaluating query %q (%d levels, inherit=%v)", nq.Name, len(nq.Query.Levels), nq.Query.Inherit)

				out := query.Evaluate(nq.Query)
				y, err := emit.YAML(emit.Accumulate(out))
				if err != nil {
					fmt.Fprintln(c.Stderr(), err)
					return ErrPrintedError
				}
				if len(queries) > 1 {
					fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", nq.Name)
				}
				cmd.OutOrStdout().Write(y)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&queryName, "query", "", "run only the script's named query with this name")
	cmd.Flags().StringVar(&scopeFlag, "scope", "", "comma-separated field=value pairs, root to leaf, overriding the script's declared query scope")
	cmd.Flags().StringVar(&noInherit, "no-inherit-at", "", "disable inheritance for this evaluation (any non-empty value; the value itself is not used)")
	cmd.Flags().StringVar(&globalRoot, "global-root", "", "comma-separated field=value pairs widening the query's global-visibility ancestry")
	return cmd
}

// selectQueries resolves the queries to run for one eval invocation.
// Any of --scope, --no-inherit-at or --global-root, given, builds a
// single ad hoc query straight from the script's blocks, ignoring any
// queries the script itself declared;
// otherwise --query picks a single declared query by name, or every
// declared query runs in order.
func selectQueries(doc *script.Script, queryName, scopeFlag, noInherit, globalRoot string) ([]script.NamedQuery, error) {
	if scopeFlag != "" || noInherit != "" || globalRoot != "" {
		levels, err := parseLevels(doc.Registry, scopeFlag)
		if err != nil {
			return nil, err
		}
		root, err := parseScope(doc.Registry, globalRoot)
		if err != nil {
			return nil, err
		}
		return []script.NamedQuery{{
			Name: "ad-hoc",
			Query: &query.Query{
				SourceBlocks:       doc.Blocks,
				Levels:             levels,
				Inherit:            noInherit == "",
				Tested:             doc.Tested,
				GlobalRootOverride: root,
			},
		}}, nil
	}

	if queryName == "" {
		return doc.Queries, nil
	}
	for _, q := range doc.Queries {
		if q.Name == queryName {
			return []script.NamedQuery{q}, nil
		}
	}
	return nil, fmt.Errorf("no query named %q in script", queryName)
}

// parseLevels splits csv into an ordered []field.Scope, one level per
// "field=value" pair, root to leaf. An empty csv yields the root scope
// (no levels).
func parseLevels(reg *field.Registry, csv string) ([]field.Scope, error) {
	if csv == "" {
		return nil, nil
	}
	parts := strings.Split(csv, ",")
	levels := make([]field.Scope, len(parts))
	for i, p := range parts {
		f, v, err := splitPair(reg, p)
		if err != nil {
			return nil, err
		}
		levels[i] = field.Scope{f: field.Value{v}}
	}
	return levels, nil
}

// parseScope merges csv's "field=value" pairs into a single Scope, the
// shape --global-root wants.
func parseScope(reg *field.Registry, csv string) (field.Scope, error) {
	levels, err := parseLevels(reg, csv)
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, nil
	}
	return field.MergeScopes(levels...), nil
}

func splitPair(reg *field.Registry, pair string) (*field.Field, string, error) {
	name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
	if !ok {
		return nil, "", fmt.Errorf("malformed scope clause %q, want field=value", pair)
	}
	f, ok := reg.Get(name)
	if !ok {
		return nil, "", fmt.Errorf("field %q is not registered", name)
	}
	return f, value, nil
}
