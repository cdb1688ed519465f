// Copyright 2018 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	shellwords "github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	prompt    = "\033[31m»\033[0m "
	txnPrompt = "\033[32mtxn»\033[0m "
)

// runShellLine runs one shell line. Quotes group words the way a POSIX
// shell does, so N-Quads with spaces can be passed as one argument.
func (c *cli) runShellLine(ctx context.Context, line string) error {
	args, err := shellwords.Parse(line)
	if err != nil {
		return errors.WithStack(err)
	}
	if len(args) == 0 {
		return nil
	}

	cmd := &cobra.Command{
		Use:           "shell",
		Short:         "graph shell command",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOutput(c.out)
	cmd.SetArgs(args)
	cmd.AddCommand(c.shellCommands(ctx)...)
	return cmd.Execute()
}

func (c *cli) shellCommands(ctx context.Context) []*cobra.Command {
	var (
		readOnly   bool
		bestEffort bool
		vars       []string
		dropAll    bool
		dropData   bool
		dropAttr   string
	)

	begin := &cobra.Command{
		Use:                   "begin [--read-only]",
		Short:                 "Begin a transaction",
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.begin(readOnly)
		},
	}
	begin.Flags().BoolVarP(&readOnly, "read-only", "r", false, "Begin a read-only transaction")

	query := &cobra.Command{
		Use:                   "query text [-v name=value ...]",
		Short:                 "Run a query",
		Args:                  cobra.ExactArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseVars(vars)
			if err != nil {
				return err
			}
			return c.query(ctx, args[0], parsed, bestEffort)
		},
	}
	query.Flags().StringSliceVarP(&vars, "var", "v", nil, "Query variable with name=value")
	query.Flags().BoolVar(&bestEffort, "best-effort", false, "Read without waiting for the latest timestamp")

	alter := &cobra.Command{
		Use:                   "alter [schema] [--drop-all|--drop-data|--drop-attr name]",
		Short:                 "Set the schema or drop data",
		Args:                  cobra.MaximumNArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := newOperation(args, dropAll, dropData, dropAttr)
			if err != nil {
				return err
			}
			return c.alter(ctx, op)
		},
	}
	alter.Flags().BoolVar(&dropAll, "drop-all", false, "Drop all data and the schema")
	alter.Flags().BoolVar(&dropData, "drop-data", false, "Drop all data but keep the schema")
	alter.Flags().StringVar(&dropAttr, "drop-attr", "", "Drop a predicate")

	return []*cobra.Command{
		begin,
		query,
		alter,
		{
			Use:                   "set nquad [nquad ...]",
			Short:                 "Set N-Quads",
			Args:                  cobra.MinimumNArgs(1),
			DisableFlagsInUseLine: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.mutate(ctx, args, nil)
			},
		},
		{
			Use:                   "delete nquad [nquad ...]",
			Short:                 "Delete N-Quads",
			Args:                  cobra.MinimumNArgs(1),
			DisableFlagsInUseLine: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.mutate(ctx, nil, args)
			},
		},
		{
			Use:                   "commit",
			Short:                 "Commit the open transaction",
			Args:                  cobra.NoArgs,
			DisableFlagsInUseLine: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.commit(ctx)
			},
		},
		{
			Use:                   "discard",
			Short:                 "Discard the open transaction",
			Args:                  cobra.NoArgs,
			DisableFlagsInUseLine: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.discard(ctx)
			},
		},
		{
			Use:                   "version",
			Short:                 "Print the server version",
			Args:                  cobra.NoArgs,
			DisableFlagsInUseLine: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.version(ctx)
			},
		},
	}
}

func shellLoop(c *cli) error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       filepath.Join(os.TempDir(), "graph-cli.history"),
		InterruptPrompt:   "^C",
		EOFPrompt:         "^D",
		HistorySearchFold: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	defer l.Close()
	defer c.close(globalContext)

	for {
		if c.txn != nil {
			l.SetPrompt(txnPrompt)
		} else {
			l.SetPrompt(prompt)
		}
		line, err := l.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				return nil
			} else if err == io.EOF {
				return nil
			}
			continue
		}
		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if err := c.runShellLine(globalContext, line); err != nil {
			fmt.Fprintf(c.out, "failed: %v\n", err)
		}
	}
}
