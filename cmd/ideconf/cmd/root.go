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

// Package cmd wires the ideconf CLI together: a single "eval" subcommand
// over a cobra root, in the same shape as the teacher's own cmd/cue
// wrapper (error printing and exit-code bookkeeping centralized on one
// Command type rather than duplicated per subcommand).
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/scopeforge/ideconf/internal/xdebug"
)

// addGlobalFlags registers the flags shared by every subcommand, mirroring
// the teacher's own addGlobalFlags(cmd.PersistentFlags()) call in New.
func addGlobalFlags(fs *pflag.FlagSet) {
	fs.Bool("trace", false, "log one trace line per evaluated query to stderr (same effect as IDECONF_DEBUG=trace)")
}

// Command wraps the active cobra command plus the exit-code bookkeeping
// the teacher's Command does with its errWriter trick: any write to
// Stderr() flips hasErr, so Main can report failure even from code paths
// that print their own message instead of returning an error value.
type Command struct {
	*cobra.Command
	hasErr bool
}

type errWriter Command

func (w *errWriter) Write(b []byte) (int, error) {
	c := (*Command)(w)
	if len(b) > 0 {
		c.hasErr = true
	}
	return c.Command.OutOrStderr().Write(b)
}

// Stderr returns a writer that marks the command as failed once anything
// is written to it.
func (c *Command) Stderr() io.Writer {
	return (*errWriter)(c)
}

// ErrPrintedError signals that the failing RunE already printed its own
// message to Stderr(), so Main shouldn't print the error a second time.
var ErrPrintedError = errors.New("terminating because of errors")

// New builds the ideconf root command with its one subcommand wired in.
func New(args []string) *Command {
	root := &cobra.Command{
		Use:           "ideconf",
		Short:         "ideconf evaluates scoped configuration scripts",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	c := &Command{Command: root}
	addGlobalFlags(root.PersistentFlags())
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if trace, _ := cmd.Flags().GetBool("trace"); trace {
			xdebug.Flags.Trace = true
		}
		return nil
	}
	root.AddCommand(newEvalCmd(c))
	root.SetArgs(args)
	return c
}

// Main runs the tool and returns the process exit code.
func Main() int {
	c := New(os.Args[1:])
	if err := c.Command.Execute(); err != nil {
		if !errors.Is(err, ErrPrintedError) {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	if c.hasErr {
		return 1
	}
	return 0
}
