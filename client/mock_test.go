package client

import (
	"context"
	"sync"

	"github.com/golang/protobuf/proto"
	"github.com/pingcap-incubator/tinygraph/proto/pkg/graphpb"
	"go.uber.org/atomic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var errTokenExpired = status.Error(codes.Unauthenticated, "token is expired")

// mockEndpoint records every call and answers with the configured hooks.
type mockEndpoint struct {
	queryFn  func(ctx context.Context, req *graphpb.Request) (*graphpb.Response, error)
	loginFn  func(ctx context.Context, req *graphpb.LoginRequest) (*graphpb.Response, error)
	alterFn  func(ctx context.Context, op *graphpb.Operation) (*graphpb.Payload, error)
	commitFn func(ctx context.Context, tc *graphpb.TxnContext) (*graphpb.TxnContext, error)

	queryCalls  atomic.Int64
	loginCalls  atomic.Int64
	alterCalls  atomic.Int64
	commitCalls atomic.Int64

	mu       sync.Mutex
	requests []*graphpb.Request
	commits  []*graphpb.TxnContext
	tokens   []string
}

func newMockEndpoint() *mockEndpoint {
	return &mockEndpoint{}
}

// tokenOf returns the access token attached to an outgoing call.
func tokenOf(ctx context.Context) string {
	md, _ := metadata.FromOutgoingContext(ctx)
	if v := md.Get(accessTokenKey); len(v) > 0 {
		return v[len(v)-1]
	}
	return ""
}

func (m *mockEndpoint) record(ctx context.Context) {
	m.mu.Lock()
	m.tokens = append(m.tokens, tokenOf(ctx))
	m.mu.Unlock()
}

func (m *mockEndpoint) Login(ctx context.Context, in *graphpb.LoginRequest, opts ...grpc.CallOption) (*graphpb.Response, error) {
	m.loginCalls.Inc()
	if m.loginFn == nil {
		return loginResponse("access", "refresh"), nil
	}
	return m.loginFn(ctx, in)
}

func (m *mockEndpoint) Query(ctx context.Context, in *graphpb.Request, opts ...grpc.CallOption) (*graphpb.Response, error) {
	m.queryCalls.Inc()
	m.record(ctx)
	m.mu.Lock()
	m.requests = append(m.requests, proto.Clone(in).(*graphpb.Request))
	m.mu.Unlock()
	if m.queryFn == nil {
		return &graphpb.Response{Txn: &graphpb.TxnContext{StartTs: 1}}, nil
	}
	return m.queryFn(ctx, in)
}

func (m *mockEndpoint) Alter(ctx context.Context, in *graphpb.Operation, opts ...grpc.CallOption) (*graphpb.Payload, error) {
	m.alterCalls.Inc()
	m.record(ctx)
	if m.alterFn == nil {
		return &graphpb.Payload{Data: []byte("Success")}, nil
	}
	return m.alterFn(ctx, in)
}

func (m *mockEndpoint) CommitOrAbort(ctx context.Context, in *graphpb.TxnContext, opts ...grpc.CallOption) (*graphpb.TxnContext, error) {
	m.commitCalls.Inc()
	m.record(ctx)
	m.mu.Lock()
	m.commits = append(m.commits, proto.Clone(in).(*graphpb.TxnContext))
	m.mu.Unlock()
	if m.commitFn == nil {
		return &graphpb.TxnContext{StartTs: in.GetStartTs(), Aborted: in.GetAborted()}, nil
	}
	return m.commitFn(ctx, in)
}

func (m *mockEndpoint) CheckVersion(ctx context.Context, in *graphpb.Check, opts ...grpc.CallOption) (*graphpb.Version, error) {
	m.record(ctx)
	return &graphpb.Version{Tag: "v-mock"}, nil
}

func (m *mockEndpoint) lastRequest() *graphpb.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

func (m *mockEndpoint) commitLog() []*graphpb.TxnContext {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*graphpb.TxnContext(nil), m.commits...)
}

func (m *mockEndpoint) tokenLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tokens...)
}

func loginResponse(access, refresh string) *graphpb.Response {
	data, err := proto.Marshal(&graphpb.Jwt{AccessJwt: access, RefreshJwt: refresh})
	if err != nil {
		panic(err)
	}
	return &graphpb.Response{Json: data}
}

// respondWith answers queries with the given contexts in order, repeating
// the last one.
func respondWith(contexts ...*graphpb.TxnContext) func(context.Context, *graphpb.Request) (*graphpb.Response, error) {
	var mu sync.Mutex
	i := 0
	return func(context.Context, *graphpb.Request) (*graphpb.Response, error) {
		mu.Lock()
		defer mu.Unlock()
		tc := contexts[i]
		if i < len(contexts)-1 {
			i++
		}
		return &graphpb.Response{Json: []byte(`{}`), Txn: tc}, nil
	}
}

// failFirst fails the first n calls with err before delegating to next.
func failFirst(n int64, err error, next func(context.Context, *graphpb.Request) (*graphpb.Response, error)) func(context.Context, *graphpb.Request) (*graphpb.Response, error) {
	var calls atomic.Int64
	return func(ctx context.Context, req *graphpb.Request) (*graphpb.Response, error) {
		if calls.Inc() <= n {
			return nil, err
		}
		return next(ctx, req)
	}
}

func setNquads(nq string, commitNow bool) *graphpb.Mutation {
	return &graphpb.Mutation{SetNquads: []byte(nq), CommitNow: commitNow}
}
