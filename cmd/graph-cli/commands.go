package main

import (
	"github.com/pingcap-incubator/tinygraph/proto/pkg/graphpb"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newQueryCommand() *cobra.Command {
	var (
		vars       []string
		bestEffort bool
	)
	m := &cobra.Command{
		Use:   "query text",
		Short: "Run a query in a read-only transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseVars(vars)
			if err != nil {
				return err
			}
			return globalCli.query(globalContext, args[0], parsed, bestEffort)
		},
	}
	m.Flags().StringSliceVarP(&vars, "var", "v", nil, "Query variable with name=value")
	m.Flags().BoolVar(&bestEffort, "best-effort", false, "Read without waiting for the latest timestamp")
	return m
}

func newMutateCommand() *cobra.Command {
	var set, del []string
	m := &cobra.Command{
		Use:   "mutate",
		Short: "Apply N-Quads and commit them at once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return globalCli.mutate(globalContext, set, del)
		},
	}
	m.Flags().StringArrayVarP(&set, "set", "s", nil, "N-Quad to set")
	m.Flags().StringArrayVarP(&del, "delete", "d", nil, "N-Quad to delete")
	return m
}

func newAlterCommand() *cobra.Command {
	var (
		dropAll  bool
		dropData bool
		dropAttr string
	)
	m := &cobra.Command{
		Use:   "alter [schema]",
		Short: "Set the schema or drop data",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := newOperation(args, dropAll, dropData, dropAttr)
			if err != nil {
				return err
			}
			return globalCli.alter(globalContext, op)
		},
	}
	m.Flags().BoolVar(&dropAll, "drop-all", false, "Drop all data and the schema")
	m.Flags().BoolVar(&dropData, "drop-data", false, "Drop all data but keep the schema")
	m.Flags().StringVar(&dropAttr, "drop-attr", "", "Drop a predicate")
	return m
}

func newOperation(args []string, dropAll, dropData bool, dropAttr string) (*graphpb.Operation, error) {
	op := &graphpb.Operation{}
	n := 0
	if len(args) == 1 {
		op.Schema = args[0]
		n++
	}
	if dropAll {
		op.DropOp = graphpb.Operation_ALL
		n++
	}
	if dropData {
		op.DropOp = graphpb.Operation_DATA
		n++
	}
	if dropAttr != "" {
		op.DropOp = graphpb.Operation_ATTR
		op.DropValue = dropAttr
		n++
	}
	if n != 1 {
		return nil, errors.New("alter needs exactly one of schema, --drop-all, --drop-data or --drop-attr")
	}
	return op, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return globalCli.version(globalContext)
		},
	}
}

func newShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell with explicit transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return shellLoop(globalCli)
		},
	}
}
