package client

import (
	"context"

	"github.com/pingcap-incubator/tinygraph/proto/pkg/graphpb"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// Txn is a single optimistic transaction. Reads see a snapshot at the start
// timestamp assigned by the first response; the server checks for conflicts
// on commit using the keys and predicates the transaction collected.
//
// A Txn is not safe for concurrent use.
type Txn struct {
	id      string
	context *graphpb.TxnContext

	finished   bool
	mutated    bool
	readOnly   bool
	bestEffort bool

	session *Session
}

// ID identifies the transaction in logs.
func (txn *Txn) ID() string { return txn.id }

// StartTs returns the start timestamp, zero before the first response.
func (txn *Txn) StartTs() uint64 { return txn.context.GetStartTs() }

// Keys returns the conflict keys collected so far.
func (txn *Txn) Keys() []string { return append([]string(nil), txn.context.GetKeys()...) }

// Preds returns the predicates touched so far.
func (txn *Txn) Preds() []string { return append([]string(nil), txn.context.GetPreds()...) }

// Finished reports whether the transaction was committed or discarded.
func (txn *Txn) Finished() bool { return txn.finished }

// Mutated reports whether a mutation was sent.
func (txn *Txn) Mutated() bool { return txn.mutated }

// ReadOnly reports whether the transaction is read-only.
func (txn *Txn) ReadOnly() bool { return txn.readOnly }

// BestEffort lets the queries of a read-only transaction be served from any
// replica's latest state instead of a consistent snapshot.
func (txn *Txn) BestEffort() (*Txn, error) {
	if !txn.readOnly {
		return nil, ErrBestEffortRequiresReadOnly
	}
	txn.bestEffort = true
	return txn, nil
}

// Query runs a query in the transaction.
func (txn *Txn) Query(ctx context.Context, q string) (*graphpb.Response, error) {
	return txn.QueryWithVars(ctx, q, nil)
}

// QueryWithVars runs a query with named variables in the transaction.
func (txn *Txn) QueryWithVars(ctx context.Context, q string, vars map[string]string) (*graphpb.Response, error) {
	return txn.Do(ctx, &graphpb.Request{Query: q, Vars: vars})
}

// Mutate runs one mutation in the transaction. A mutation with CommitNow set
// commits the transaction along with it.
func (txn *Txn) Mutate(ctx context.Context, mu *graphpb.Mutation) (*graphpb.Response, error) {
	if mu == nil {
		return nil, ErrNilRequest
	}
	return txn.Do(ctx, &graphpb.Request{
		Mutations: []*graphpb.Mutation{mu},
		CommitNow: mu.GetCommitNow(),
	})
}

// Do sends req within the transaction. The start timestamp and the read
// flags of req are overwritten with the transaction's own.
//
// Any error from the endpoint discards the transaction before it is returned.
func (txn *Txn) Do(ctx context.Context, req *graphpb.Request) (*graphpb.Response, error) {
	if txn.finished {
		return nil, ErrFinished
	}
	if req == nil {
		return nil, ErrNilRequest
	}
	for _, mu := range req.GetMutations() {
		if mu == nil {
			return nil, ErrNilRequest
		}
	}
	if len(req.GetMutations()) > 0 {
		if txn.readOnly {
			return nil, ErrReadOnly
		}
		txn.mutated = true
	}

	req.StartTs = txn.context.GetStartTs()
	req.ReadOnly = txn.readOnly
	req.BestEffort = txn.bestEffort

	resp, err := txn.session.query(ctx, req)
	if err != nil {
		if derr := txn.Discard(ctx); derr != nil {
			log.Debug("[graph] discard after failed request", zap.String("txn", txn.id), zap.Error(derr))
		}
		return nil, err
	}

	if req.CommitNow {
		txn.finished = true
		txnCounterCommitNow.Inc()
	}
	if err := txn.mergeContext(resp.GetTxn()); err != nil {
		log.Warn("[graph] reject response context", zap.String("txn", txn.id),
			zap.Uint64("start-ts", txn.context.GetStartTs()), zap.Uint64("response-start-ts", resp.GetTxn().GetStartTs()),
			zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// mergeContext adopts the start timestamp of the first response and appends
// the conflict keys and predicates of every response. A response from another
// start timestamp is rejected and leaves the context untouched.
func (txn *Txn) mergeContext(src *graphpb.TxnContext) error {
	if src == nil {
		return ErrEmptyResponseContext
	}
	if txn.context.StartTs == 0 {
		txn.context.StartTs = src.StartTs
	}
	if txn.context.StartTs != src.StartTs {
		return ErrStartTsMismatch
	}
	txn.context.Keys = append(txn.context.Keys, src.Keys...)
	txn.context.Preds = append(txn.context.Preds, src.Preds...)
	return nil
}

// Commit commits the mutations of the transaction. It fails with ErrFinished
// on a finished transaction and ErrReadOnly on a read-only one. A transaction
// without mutations finishes without contacting the server.
//
// If the server reports a conflict the error is returned as is; the
// transaction is finished either way and must be retried as a new one.
func (txn *Txn) Commit(ctx context.Context) error {
	switch {
	case txn.finished:
		return ErrFinished
	case txn.readOnly:
		return ErrReadOnly
	}
	return txn.commitOrAbort(ctx)
}

// Discard aborts the transaction. It is a no-op on a finished transaction, so
// it is safe to defer right after creating one.
func (txn *Txn) Discard(ctx context.Context) error {
	if txn.finished {
		return nil
	}
	txn.context.Aborted = true
	return txn.commitOrAbort(ctx)
}

func (txn *Txn) commitOrAbort(ctx context.Context) error {
	if txn.finished {
		return nil
	}
	txn.finished = true
	if !txn.mutated {
		txnCounterReadOnly.Inc()
		return nil
	}

	if _, err := txn.session.commitOrAbort(ctx, txn.context); err != nil {
		txnCounterFailed.Inc()
		return err
	}
	if txn.context.Aborted {
		txnCounterAbort.Inc()
	} else {
		txnCounterCommit.Inc()
	}
	log.Debug("[graph] txn finished", zap.String("txn", txn.id),
		zap.Uint64("start-ts", txn.context.StartTs), zap.Bool("aborted", txn.context.Aborted))
	return nil
}
