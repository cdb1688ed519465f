// Copyright 2016 PingCAP, Inc.
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

package client

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/pingcap-incubator/tinygraph/pkg/grpcutil"
	"github.com/pingcap-incubator/tinygraph/proto/pkg/graphpb"
	"github.com/pingcap/log"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// accessTokenKey is the metadata key the server reads the access token from.
const accessTokenKey = "accessJwt"

// Session is a transaction aware client to a set of graph database endpoints.
// The endpoints may be connections to the same server or to several servers
// of one cluster; every call goes to one of them picked at random.
//
// A Session is safe for concurrent use by multiple goroutines.
type Session struct {
	endpoints []graphpb.DgraphClient
	conns     []*grpc.ClientConn

	credMu struct {
		sync.Mutex
		cred Credential
	}
	refreshGroup singleflight.Group
}

// Option configures a Session.
type Option func(*Session)

// WithCredential seeds the session with a credential obtained earlier, so it
// can refresh without a new login.
func WithCredential(cred Credential) Option {
	return func(s *Session) { s.credMu.cred = cred }
}

// WithRateLimit throttles the requests of the whole session to rate per
// second with bursts up to capacity. A rate of zero or less disables it.
func WithRateLimit(rate float64, capacity int64) Option {
	return func(s *Session) {
		if rate <= 0 {
			return
		}
		limiter := newLimiter(rate, capacity)
		for i, ep := range s.endpoints {
			s.endpoints[i] = &limitedEndpoint{DgraphClient: ep, limiter: limiter}
		}
	}
}

// NewSession creates a Session over endpoints. It fails with ErrNoEndpoints
// when endpoints is empty.
func NewSession(endpoints []graphpb.DgraphClient, opts ...Option) (*Session, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}
	s := &Session{endpoints: append([]graphpb.DgraphClient(nil), endpoints...)}
	for _, opt := range opts {
		opt(s)
	}
	log.Info("[graph] create session", zap.Int("endpoints", len(s.endpoints)))
	return s, nil
}

// Dial connects to every address and returns a Session owning the
// connections. Close releases them.
func Dial(addrs []string, security grpcutil.SecurityOption, opts ...Option) (*Session, error) {
	log.Info("[graph] dial endpoints", zap.Strings("address", addrs))
	conns := make([]*grpc.ClientConn, 0, len(addrs))
	endpoints := make([]graphpb.DgraphClient, 0, len(addrs))
	for _, addr := range addrs {
		cc, err := grpcutil.GetClientConn(addr, security)
		if err != nil {
			closeConns(conns)
			return nil, err
		}
		conns = append(conns, cc)
		endpoints = append(endpoints, graphpb.NewDgraphClient(cc))
	}
	s, err := NewSession(endpoints, opts...)
	if err != nil {
		closeConns(conns)
		return nil, err
	}
	s.conns = conns
	return s, nil
}

// Close closes the connections opened by Dial. Sessions built by NewSession
// do not own their endpoints and Close is a no-op for them.
func (s *Session) Close() {
	closeConns(s.conns)
	s.conns = nil
}

func closeConns(conns []*grpc.ClientConn) {
	for _, cc := range conns {
		if err := cc.Close(); err != nil {
			log.Error("[graph] failed close grpc clientConn", zap.Error(err))
		}
	}
}

// anyEndpoint picks an endpoint uniformly at random.
func (s *Session) anyEndpoint() (graphpb.DgraphClient, error) {
	if len(s.endpoints) == 0 {
		return nil, ErrNoEndpoints
	}
	return s.endpoints[rand.Intn(len(s.endpoints))], nil
}

// Credential returns a copy of the current credential.
func (s *Session) Credential() Credential {
	s.credMu.Lock()
	defer s.credMu.Unlock()
	return s.credMu.cred
}

func (s *Session) setCredential(cred Credential) {
	s.credMu.Lock()
	s.credMu.cred = cred
	s.credMu.Unlock()
}

// withCredential attaches the current access token to ctx. It is evaluated
// per call so a refresh is seen by every transaction immediately.
func (s *Session) withCredential(ctx context.Context) context.Context {
	cred := s.Credential()
	if cred.AccessToken == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, accessTokenKey, cred.AccessToken)
}

// Login authenticates the session as userid and stores the issued credential.
func (s *Session) Login(ctx context.Context, userid, password string) error {
	ep, err := s.anyEndpoint()
	if err != nil {
		return err
	}
	cred, err := s.login(ctx, ep, cmdLogin, &graphpb.LoginRequest{Userid: userid, Password: password})
	if err != nil {
		return err
	}
	s.setCredential(cred)
	log.Info("[graph] login", zap.String("user", userid), expiresAt(cred))
	return nil
}

func (s *Session) login(ctx context.Context, ep graphpb.DgraphClient, cmd string, req *graphpb.LoginRequest) (Credential, error) {
	start := time.Now()
	resp, err := ep.Login(ctx, req)
	if err == nil {
		var cred Credential
		if cred, err = decodeCredential(resp.GetJson()); err == nil {
			cmdDuration.WithLabelValues(cmd).Observe(time.Since(start).Seconds())
			return cred, nil
		}
	}
	cmdFailedDuration.WithLabelValues(cmd).Observe(time.Since(start).Seconds())
	return Credential{}, newTransportError(cmd, err)
}

// refreshCredential renews the credential with the stored refresh token.
// Concurrent callers share a single refresh call and each waits on its own
// ctx. The lock is only taken to read and to swap the credential, never
// across the RPC.
//
// The shared login runs on the ctx of the caller that started it. When that
// ctx ends the refresh early, a caller whose own ctx is still live refreshes
// again instead of taking the failure.
func (s *Session) refreshCredential(ctx context.Context) error {
	shared, err := s.joinRefresh(ctx)
	if err != nil && shared && ctx.Err() == nil && isContextError(err) {
		log.Info("[graph] shared refresh cancelled by another caller, refresh again", zap.Error(err))
		_, err = s.joinRefresh(ctx)
	}
	return err
}

// joinRefresh starts a refresh or joins the one in flight. shared reports
// whether the result was handed to more than one caller.
func (s *Session) joinRefresh(ctx context.Context) (shared bool, err error) {
	ch := s.refreshGroup.DoChan(cmdRefresh, func() (interface{}, error) {
		refreshToken := s.Credential().RefreshToken
		if refreshToken == "" {
			return nil, ErrRefreshUnavailable
		}
		ep, err := s.anyEndpoint()
		if err != nil {
			return nil, err
		}
		cred, err := s.login(ctx, ep, cmdRefresh, &graphpb.LoginRequest{RefreshToken: refreshToken})
		if err != nil {
			return nil, err
		}
		s.setCredential(cred)
		log.Info("[graph] credential refreshed", expiresAt(cred))
		return nil, nil
	})
	select {
	case res := <-ch:
		return res.Shared, res.Err
	case <-ctx.Done():
		return false, newTransportError(cmdRefresh, ctx.Err())
	}
}

// isContextError reports whether err comes from a cancelled or expired
// context, either raw or as the matching gRPC status.
func isContextError(err error) bool {
	cause := errors.Cause(err)
	if cause == context.Canceled || cause == context.DeadlineExceeded {
		return true
	}
	code := status.Code(cause)
	return code == codes.Canceled || code == codes.DeadlineExceeded
}

// expiresAt logs the expiry of cred, or nothing for an opaque token.
func expiresAt(cred Credential) zap.Field {
	if cred.ExpiresAt.IsZero() {
		return zap.Skip()
	}
	return zap.Time("expires-at", cred.ExpiresAt)
}

// call runs rpc with the current credential. When the access token is
// rejected it refreshes the credential once and retries once; whatever the
// retry returns is final.
func (s *Session) call(ctx context.Context, cmd string, rpc func(context.Context) error) error {
	if span := opentracing.SpanFromContext(ctx); span != nil {
		span = opentracing.StartSpan("graphclient."+cmd, opentracing.ChildOf(span.Context()))
		defer span.Finish()
	}

	start := time.Now()
	err := rpc(s.withCredential(ctx))
	if err != nil && IsAuthError(err) {
		log.Warn("[graph] access token rejected, refresh and retry", zap.String("cmd", cmd), zap.Error(err))
		authRetryCounter.WithLabelValues(cmd).Inc()
		if rerr := s.refreshCredential(ctx); rerr != nil {
			cmdFailedDuration.WithLabelValues(cmd).Observe(time.Since(start).Seconds())
			return rerr
		}
		err = rpc(s.withCredential(ctx))
	}
	if err != nil {
		cmdFailedDuration.WithLabelValues(cmd).Observe(time.Since(start).Seconds())
		return newTransportError(cmd, err)
	}
	cmdDuration.WithLabelValues(cmd).Observe(time.Since(start).Seconds())
	return nil
}

// Alter runs a schema or administrative operation, e.g. setting the schema
// or dropping data.
func (s *Session) Alter(ctx context.Context, op *graphpb.Operation) (*graphpb.Payload, error) {
	ep, err := s.anyEndpoint()
	if err != nil {
		return nil, err
	}
	var payload *graphpb.Payload
	err = s.call(ctx, cmdAlter, func(ctx context.Context) error {
		var err error
		payload, err = ep.Alter(ctx, op)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// CheckVersion returns the version of the server behind a random endpoint.
func (s *Session) CheckVersion(ctx context.Context) (*graphpb.Version, error) {
	ep, err := s.anyEndpoint()
	if err != nil {
		return nil, err
	}
	var version *graphpb.Version
	err = s.call(ctx, cmdCheckVersion, func(ctx context.Context) error {
		var err error
		version, err = ep.CheckVersion(ctx, &graphpb.Check{})
		return err
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

func (s *Session) query(ctx context.Context, req *graphpb.Request) (*graphpb.Response, error) {
	ep, err := s.anyEndpoint()
	if err != nil {
		return nil, err
	}
	var resp *graphpb.Response
	err = s.call(ctx, cmdQuery, func(ctx context.Context) error {
		var err error
		resp, err = ep.Query(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Session) commitOrAbort(ctx context.Context, tc *graphpb.TxnContext) (*graphpb.TxnContext, error) {
	ep, err := s.anyEndpoint()
	if err != nil {
		return nil, err
	}
	var resp *graphpb.TxnContext
	err = s.call(ctx, cmdCommitOrAbort, func(ctx context.Context) error {
		var err error
		resp, err = ep.CommitOrAbort(ctx, tc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// NewTxn creates a read-write transaction.
//
// The caller must end it with Commit or Discard. Deferring Discard right after
// NewTxn covers every exit path, since Discard after Commit is a no-op; a
// transaction that is simply dropped keeps its writes pending on the server.
// RunTxn wraps this pattern.
func (s *Session) NewTxn() *Txn {
	return s.newTxn(false)
}

// NewReadOnlyTxn creates a transaction that only runs queries. Read-only
// transactions never need to be committed.
func (s *Session) NewReadOnlyTxn() *Txn {
	return s.newTxn(true)
}

func (s *Session) newTxn(readOnly bool) *Txn {
	if len(s.endpoints) == 0 {
		panic(ErrNoEndpoints)
	}
	return &Txn{
		id:       uuid.New().String(),
		context:  &graphpb.TxnContext{},
		readOnly: readOnly,
		session:  s,
	}
}

// RunTxn runs fn in a new transaction. When fn returns nil a read-write
// transaction is committed, unless a commit-now mutation already finished it.
// On every other exit path, including a panic in fn, the transaction is
// discarded; errors from that discard are logged and dropped.
func (s *Session) RunTxn(ctx context.Context, readOnly bool, fn func(ctx context.Context, txn *Txn) error) error {
	txn := s.newTxn(readOnly)
	defer func() {
		if err := txn.Discard(ctx); err != nil {
			log.Warn("[graph] discard on scope exit failed", zap.String("txn", txn.ID()), zap.Error(err))
		}
	}()

	if err := fn(ctx, txn); err != nil {
		return err
	}
	if readOnly || txn.Finished() {
		return nil
	}
	return txn.Commit(ctx)
}
