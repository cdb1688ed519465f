package client

import (
	"context"
	"time"

	"github.com/juju/ratelimit"
	"github.com/pingcap-incubator/tinygraph/proto/pkg/graphpb"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
)

type limiter struct {
	bucket *ratelimit.Bucket
}

func newLimiter(rate float64, capacity int64) *limiter {
	if capacity < 1 {
		capacity = 1
	}
	return &limiter{bucket: ratelimit.NewBucketWithRate(rate, capacity)}
}

// wait takes one token, blocking until it is available or ctx is done.
func (l *limiter) wait(ctx context.Context) error {
	d := l.bucket.Take(1)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
}

// limitedEndpoint throttles every RPC of the wrapped endpoint.
type limitedEndpoint struct {
	graphpb.DgraphClient
	limiter *limiter
}

func (e *limitedEndpoint) Login(ctx context.Context, in *graphpb.LoginRequest, opts ...grpc.CallOption) (*graphpb.Response, error) {
	if err := e.limiter.wait(ctx); err != nil {
		return nil, err
	}
	return e.DgraphClient.Login(ctx, in, opts...)
}

func (e *limitedEndpoint) Query(ctx context.Context, in *graphpb.Request, opts ...grpc.CallOption) (*graphpb.Response, error) {
	if err := e.limiter.wait(ctx); err != nil {
		return nil, err
	}
	return e.DgraphClient.Query(ctx, in, opts...)
}

func (e *limitedEndpoint) Alter(ctx context.Context, in *graphpb.Operation, opts ...grpc.CallOption) (*graphpb.Payload, error) {
	if err := e.limiter.wait(ctx); err != nil {
		return nil, err
	}
	return e.DgraphClient.Alter(ctx, in, opts...)
}

func (e *limitedEndpoint) CommitOrAbort(ctx context.Context, in *graphpb.TxnContext, opts ...grpc.CallOption) (*graphpb.TxnContext, error) {
	if err := e.limiter.wait(ctx); err != nil {
		return nil, err
	}
	return e.DgraphClient.CommitOrAbort(ctx, in, opts...)
}

func (e *limitedEndpoint) CheckVersion(ctx context.Context, in *graphpb.Check, opts ...grpc.CallOption) (*graphpb.Version, error) {
	if err := e.limiter.wait(ctx); err != nil {
		return nil, err
	}
	return e.DgraphClient.CheckVersion(ctx, in, opts...)
}
