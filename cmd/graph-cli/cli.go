package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pingcap-incubator/tinygraph/client"
	"github.com/pingcap-incubator/tinygraph/proto/pkg/graphpb"
	"github.com/pkg/errors"
)

// cli runs commands against one session. The shell keeps an open
// transaction in txn between lines.
type cli struct {
	session *client.Session
	timeout time.Duration
	out     io.Writer

	txn *client.Txn
}

func newCli(session *client.Session, timeout time.Duration, out io.Writer) *cli {
	return &cli{session: session, timeout: timeout, out: out}
}

func (c *cli) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// parseVars turns name=value pairs into query variables.
func parseVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		seps := strings.SplitN(pair, "=", 2)
		if len(seps) != 2 || seps[0] == "" {
			return nil, errors.Errorf("bad variable: `%s`, expected format `name=value`", pair)
		}
		vars[seps[0]] = seps[1]
	}
	return vars, nil
}

func newMutation(set, del []string, commitNow bool) (*graphpb.Mutation, error) {
	if len(set) == 0 && len(del) == 0 {
		return nil, errors.New("mutation needs at least one set or delete N-Quad")
	}
	mu := &graphpb.Mutation{CommitNow: commitNow}
	if len(set) > 0 {
		mu.SetNquads = []byte(strings.Join(set, "\n"))
	}
	if len(del) > 0 {
		mu.DelNquads = []byte(strings.Join(del, "\n"))
	}
	return mu, nil
}

// query runs q in the open transaction, or in a fresh read-only one.
func (c *cli) query(ctx context.Context, q string, vars map[string]string, bestEffort bool) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if c.txn != nil {
		resp, err := c.txn.QueryWithVars(ctx, q, vars)
		if err != nil {
			c.closeTxn(err)
			return err
		}
		c.printResponse(resp)
		return nil
	}

	return c.session.RunTxn(ctx, true, func(ctx context.Context, txn *client.Txn) error {
		if bestEffort {
			if _, err := txn.BestEffort(); err != nil {
				return err
			}
		}
		resp, err := txn.QueryWithVars(ctx, q, vars)
		if err != nil {
			return err
		}
		c.printResponse(resp)
		return nil
	})
}

// mutate applies the N-Quads in the open transaction, or commits them at once.
func (c *cli) mutate(ctx context.Context, set, del []string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if c.txn != nil {
		mu, err := newMutation(set, del, false)
		if err != nil {
			return err
		}
		resp, err := c.txn.Mutate(ctx, mu)
		if err != nil {
			c.closeTxn(err)
			return err
		}
		c.printUids(resp)
		return nil
	}

	mu, err := newMutation(set, del, true)
	if err != nil {
		return err
	}
	return c.session.RunTxn(ctx, false, func(ctx context.Context, txn *client.Txn) error {
		resp, err := txn.Mutate(ctx, mu)
		if err != nil {
			return err
		}
		c.printUids(resp)
		return nil
	})
}

func (c *cli) alter(ctx context.Context, op *graphpb.Operation) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	payload, err := c.session.Alter(ctx, op)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s\n", payload.GetData())
	return nil
}

func (c *cli) version(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	v, err := c.session.CheckVersion(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Server version: %s\n", v.GetTag())
	return nil
}

func (c *cli) begin(readOnly bool) error {
	if c.txn != nil {
		return errors.Errorf("transaction %s is still open, commit or discard it first", c.txn.ID())
	}
	if readOnly {
		c.txn = c.session.NewReadOnlyTxn()
	} else {
		c.txn = c.session.NewTxn()
	}
	fmt.Fprintf(c.out, "Begin transaction %s\n", c.txn.ID())
	return nil
}

func (c *cli) commit(ctx context.Context) error {
	if c.txn == nil {
		return errors.New("no open transaction")
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	txn := c.txn
	c.txn = nil
	if err := txn.Commit(ctx); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Commit transaction %s ok\n", txn.ID())
	return nil
}

func (c *cli) discard(ctx context.Context) error {
	if c.txn == nil {
		return errors.New("no open transaction")
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	txn := c.txn
	c.txn = nil
	if err := txn.Discard(ctx); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Discard transaction %s ok\n", txn.ID())
	return nil
}

// closeTxn forgets a transaction the client already finished after err.
func (c *cli) closeTxn(err error) {
	if c.txn != nil && c.txn.Finished() {
		fmt.Fprintf(c.out, "Transaction %s is closed: %v\n", c.txn.ID(), err)
		c.txn = nil
	}
}

// close discards a transaction left open by the shell.
func (c *cli) close(ctx context.Context) {
	if c.txn != nil {
		if err := c.discard(ctx); err != nil {
			fmt.Fprintf(c.out, "Discard failed %v\n", err)
		}
	}
}

func (c *cli) printResponse(resp *graphpb.Response) {
	fmt.Fprintf(c.out, "%s\n", resp.GetJson())
}

func (c *cli) printUids(resp *graphpb.Response) {
	uids := resp.GetUids()
	if len(uids) == 0 {
		fmt.Fprintln(c.out, "Mutation ok")
		return
	}
	names := make([]string, 0, len(uids))
	for name := range uids {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(c.out, "%s=%s\n", name, uids[name])
	}
}
