package client

import (
	"fmt"

	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrFinished is returned when an operation is issued on a transaction
	// that has already been committed or discarded.
	ErrFinished = errors.New("[graph] transaction has already been committed or discarded")
	// ErrReadOnly is returned when a read-only transaction runs a mutation or
	// is committed.
	ErrReadOnly = errors.New("[graph] read-only transaction cannot run mutations or be committed")
	// ErrBestEffortRequiresReadOnly is returned by BestEffort on a read-write
	// transaction.
	ErrBestEffortRequiresReadOnly = errors.New("[graph] best effort only works for read-only queries")
	// ErrEmptyResponseContext is returned when a query response carries no
	// transaction context.
	ErrEmptyResponseContext = errors.New("[graph] got empty txn context back from query")
	// ErrStartTsMismatch is returned when a response belongs to a different
	// start timestamp than the transaction.
	ErrStartTsMismatch = errors.New("[graph] start ts mismatch")
	// ErrRefreshUnavailable is returned when the credential must be refreshed
	// but no refresh token is held.
	ErrRefreshUnavailable = errors.New("[graph] no refresh token to renew the credential")
	// ErrNilRequest is returned when a transaction is asked to send a nil
	// request or mutation.
	ErrNilRequest = errors.New("[graph] request or mutation is nil")
	// ErrNoEndpoints is returned when a session is built without endpoints.
	ErrNoEndpoints = errors.New("[graph] no endpoint present")
)

// TransportError wraps a failure returned by an endpoint RPC.
type TransportError struct {
	// Op names the RPC that failed, e.g. "query" or "commit_or_abort".
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("[graph] %s: %v", e.Op, e.Err)
}

// Cause returns the raw RPC error.
func (e *TransportError) Cause() error { return e.Err }

// Unwrap returns the raw RPC error.
func (e *TransportError) Unwrap() error { return e.Err }

func newTransportError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: err}
}

// IsAuthError reports whether err means the access token was rejected. It is
// the only condition under which a call refreshes the credential and retries.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	return status.Code(errors.Cause(err)) == codes.Unauthenticated
}
