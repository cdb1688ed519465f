package client

import (
	"context"

	"github.com/pingcap-incubator/tinygraph/proto/pkg/graphpb"
	. "github.com/pingcap/check"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var _ = Suite(&testTxnSuite{})

type testTxnSuite struct {
	ep      *mockEndpoint
	session *Session
}

func (s *testTxnSuite) SetUpTest(c *C) {
	s.ep = newMockEndpoint()
	var err error
	s.session, err = NewSession([]graphpb.DgraphClient{s.ep},
		WithCredential(Credential{AccessToken: "stale", RefreshToken: "refresh"}))
	c.Assert(err, IsNil)
}

func (s *testTxnSuite) TestNewTxnState(c *C) {
	txn := s.session.NewTxn()
	c.Assert(txn.ID(), Not(Equals), "")
	c.Assert(txn.StartTs(), Equals, uint64(0))
	c.Assert(txn.Finished(), IsFalse)
	c.Assert(txn.Mutated(), IsFalse)
	c.Assert(txn.ReadOnly(), IsFalse)
	c.Assert(s.session.NewReadOnlyTxn().ReadOnly(), IsTrue)
	c.Assert(s.session.NewTxn().ID(), Not(Equals), txn.ID())
}

func (s *testTxnSuite) TestFinishedRejectsCalls(c *C) {
	ctx := context.Background()

	committed := s.session.NewTxn()
	_, err := committed.Mutate(ctx, setNquads(`<0x1> <name> "a" .`, false))
	c.Assert(err, IsNil)
	c.Assert(committed.Commit(ctx), IsNil)

	discarded := s.session.NewTxn()
	c.Assert(discarded.Discard(ctx), IsNil)

	committedNow := s.session.NewTxn()
	_, err = committedNow.Mutate(ctx, setNquads(`<0x1> <name> "a" .`, true))
	c.Assert(err, IsNil)

	var dropped *Txn
	err = s.session.RunTxn(ctx, false, func(ctx context.Context, txn *Txn) error {
		dropped = txn
		return errors.New("give up")
	})
	c.Assert(err, ErrorMatches, "give up")

	for _, txn := range []*Txn{committed, discarded, committedNow, dropped} {
		c.Assert(txn.Finished(), IsTrue)
		queries := s.ep.queryCalls.Load()
		_, err = txn.Query(ctx, "{ q(func: has(name)) { name } }")
		c.Assert(err, Equals, ErrFinished)
		_, err = txn.Mutate(ctx, setNquads(`<0x2> <name> "b" .`, false))
		c.Assert(err, Equals, ErrFinished)
		c.Assert(txn.Commit(ctx), Equals, ErrFinished)
		c.Assert(txn.Discard(ctx), IsNil)
		c.Assert(s.ep.queryCalls.Load(), Equals, queries)
	}
}

func (s *testTxnSuite) TestReadOnlyRejectsMutation(c *C) {
	ctx := context.Background()
	txn := s.session.NewReadOnlyTxn()

	_, err := txn.Mutate(ctx, setNquads(`<0x1> <name> "a" .`, false))
	c.Assert(err, Equals, ErrReadOnly)
	_, err = txn.Do(ctx, &graphpb.Request{Mutations: []*graphpb.Mutation{{DelNquads: []byte(`<0x1> * * .`)}}})
	c.Assert(err, Equals, ErrReadOnly)
	c.Assert(s.ep.queryCalls.Load(), Equals, int64(0))
	c.Assert(txn.Mutated(), IsFalse)
	c.Assert(txn.Finished(), IsFalse)

	c.Assert(txn.Commit(ctx), Equals, ErrReadOnly)
	c.Assert(txn.Discard(ctx), IsNil)
	c.Assert(s.ep.commitCalls.Load(), Equals, int64(0))
}

func (s *testTxnSuite) TestBestEffort(c *C) {
	ctx := context.Background()

	txn := s.session.NewTxn()
	same, err := txn.BestEffort()
	c.Assert(err, Equals, ErrBestEffortRequiresReadOnly)
	c.Assert(same, IsNil)
	_, err = txn.Query(ctx, "{ q(func: uid(0x1)) { uid } }")
	c.Assert(err, IsNil)
	c.Assert(s.ep.lastRequest().BestEffort, IsFalse)
	c.Assert(s.ep.lastRequest().ReadOnly, IsFalse)

	ro := s.session.NewReadOnlyTxn()
	same, err = ro.BestEffort()
	c.Assert(err, IsNil)
	c.Assert(same, Equals, ro)
	_, err = ro.QueryWithVars(ctx, "query q($id: string) { q(func: uid($id)) { uid } }", map[string]string{"$id": "0x1"})
	c.Assert(err, IsNil)
	req := s.ep.lastRequest()
	c.Assert(req.ReadOnly, IsTrue)
	c.Assert(req.BestEffort, IsTrue)
	c.Assert(req.Vars, DeepEquals, map[string]string{"$id": "0x1"})
}

func (s *testTxnSuite) TestMergeAppendsKeysAndPreds(c *C) {
	ctx := context.Background()
	s.ep.queryFn = respondWith(
		&graphpb.TxnContext{StartTs: 5, Keys: []string{"a", "b"}, Preds: []string{"name"}},
		&graphpb.TxnContext{StartTs: 5, Keys: []string{"b", "c"}, Preds: []string{"name", "age"}},
	)
	txn := s.session.NewTxn()
	_, err := txn.Mutate(ctx, setNquads(`<0x1> <name> "a" .`, false))
	c.Assert(err, IsNil)
	c.Assert(s.ep.lastRequest().StartTs, Equals, uint64(0))
	c.Assert(txn.StartTs(), Equals, uint64(5))

	_, err = txn.Mutate(ctx, setNquads(`<0x2> <age> "3" .`, false))
	c.Assert(err, IsNil)
	c.Assert(s.ep.lastRequest().StartTs, Equals, uint64(5))
	c.Assert(txn.Keys(), DeepEquals, []string{"a", "b", "b", "c"})
	c.Assert(txn.Preds(), DeepEquals, []string{"name", "name", "age"})

	c.Assert(txn.Commit(ctx), IsNil)
	commits := s.ep.commitLog()
	c.Assert(commits, HasLen, 1)
	c.Assert(commits[0].StartTs, Equals, uint64(5))
	c.Assert(commits[0].Aborted, IsFalse)
	c.Assert(commits[0].Keys, DeepEquals, []string{"a", "b", "b", "c"})
}

func (s *testTxnSuite) TestStartTsMismatch(c *C) {
	ctx := context.Background()
	s.ep.queryFn = respondWith(
		&graphpb.TxnContext{StartTs: 5, Keys: []string{"a"}},
		&graphpb.TxnContext{StartTs: 7, Keys: []string{"z"}},
	)
	txn := s.session.NewTxn()
	_, err := txn.Query(ctx, "{ q(func: uid(0x1)) { uid } }")
	c.Assert(err, IsNil)
	resp, err := txn.Query(ctx, "{ q(func: uid(0x1)) { uid } }")
	c.Assert(err, Equals, ErrStartTsMismatch)
	c.Assert(resp, IsNil)
	c.Assert(txn.StartTs(), Equals, uint64(5))
	c.Assert(txn.Keys(), DeepEquals, []string{"a"})
}

func (s *testTxnSuite) TestEmptyResponseContext(c *C) {
	s.ep.queryFn = func(context.Context, *graphpb.Request) (*graphpb.Response, error) {
		return &graphpb.Response{Json: []byte(`{}`)}, nil
	}
	_, err := s.session.NewTxn().Query(context.Background(), "{ q(func: uid(0x1)) { uid } }")
	c.Assert(err, Equals, ErrEmptyResponseContext)
}

func (s *testTxnSuite) TestNoWriteSkipsServer(c *C) {
	ctx := context.Background()

	txn := s.session.NewTxn()
	_, err := txn.Query(ctx, "{ q(func: uid(0x1)) { uid } }")
	c.Assert(err, IsNil)
	c.Assert(txn.Commit(ctx), IsNil)

	txn = s.session.NewTxn()
	_, err = txn.Query(ctx, "{ q(func: uid(0x1)) { uid } }")
	c.Assert(err, IsNil)
	c.Assert(txn.Discard(ctx), IsNil)

	c.Assert(s.session.NewTxn().Commit(ctx), IsNil)
	c.Assert(s.ep.commitCalls.Load(), Equals, int64(0))
}

func (s *testTxnSuite) TestCommitNow(c *C) {
	ctx := context.Background()
	txn := s.session.NewTxn()
	_, err := txn.Mutate(ctx, setNquads(`<0x1> <name> "a" .`, true))
	c.Assert(err, IsNil)
	c.Assert(s.ep.lastRequest().CommitNow, IsTrue)
	c.Assert(txn.Mutated(), IsTrue)
	c.Assert(txn.Finished(), IsTrue)
	c.Assert(txn.Commit(ctx), Equals, ErrFinished)
	c.Assert(txn.Discard(ctx), IsNil)
	c.Assert(s.ep.queryCalls.Load(), Equals, int64(1))
	c.Assert(s.ep.commitCalls.Load(), Equals, int64(0))
}

func (s *testTxnSuite) TestAuthRetryOnce(c *C) {
	ctx := context.Background()
	s.ep.loginFn = func(_ context.Context, req *graphpb.LoginRequest) (*graphpb.Response, error) {
		c.Assert(req.GetRefreshToken(), Equals, "refresh")
		c.Assert(req.GetUserid(), Equals, "")
		return loginResponse("fresh", "refresh-2"), nil
	}
	s.ep.queryFn = failFirst(1, errTokenExpired, respondWith(&graphpb.TxnContext{StartTs: 3}))

	txn := s.session.NewTxn()
	resp, err := txn.Query(ctx, "{ q(func: uid(0x1)) { uid } }")
	c.Assert(err, IsNil)
	c.Assert(resp, NotNil)
	c.Assert(s.ep.loginCalls.Load(), Equals, int64(1))
	c.Assert(s.ep.queryCalls.Load(), Equals, int64(2))
	c.Assert(s.ep.tokenLog(), DeepEquals, []string{"stale", "fresh"})
	c.Assert(s.session.Credential().AccessToken, Equals, "fresh")
	c.Assert(s.session.Credential().RefreshToken, Equals, "refresh-2")
	c.Assert(txn.Finished(), IsFalse)
	c.Assert(txn.StartTs(), Equals, uint64(3))
}

func (s *testTxnSuite) TestAuthRetryBounded(c *C) {
	ctx := context.Background()
	s.ep.queryFn = func(context.Context, *graphpb.Request) (*graphpb.Response, error) {
		return nil, errTokenExpired
	}

	txn := s.session.NewTxn()
	_, err := txn.Mutate(ctx, setNquads(`<0x1> <name> "a" .`, false))
	c.Assert(err, NotNil)
	c.Assert(IsAuthError(err), IsTrue)
	_, ok := err.(*TransportError)
	c.Assert(ok, IsTrue)
	c.Assert(s.ep.queryCalls.Load(), Equals, int64(2))
	c.Assert(s.ep.loginCalls.Load(), Equals, int64(1))

	// The failed mutation discards the transaction on the server.
	c.Assert(txn.Finished(), IsTrue)
	commits := s.ep.commitLog()
	c.Assert(commits, HasLen, 1)
	c.Assert(commits[0].Aborted, IsTrue)
}

func (s *testTxnSuite) TestRefreshUnavailable(c *C) {
	session, err := NewSession([]graphpb.DgraphClient{s.ep})
	c.Assert(err, IsNil)
	s.ep.queryFn = func(context.Context, *graphpb.Request) (*graphpb.Response, error) {
		return nil, errTokenExpired
	}

	txn := session.NewTxn()
	_, err = txn.Query(context.Background(), "{ q(func: uid(0x1)) { uid } }")
	c.Assert(err, Equals, ErrRefreshUnavailable)
	c.Assert(s.ep.queryCalls.Load(), Equals, int64(1))
	c.Assert(s.ep.loginCalls.Load(), Equals, int64(0))
	c.Assert(txn.Finished(), IsTrue)
}

func (s *testTxnSuite) TestFailedRequestDiscards(c *C) {
	ctx := context.Background()
	unavailable := status.Error(codes.Unavailable, "connection refused")
	s.ep.queryFn = respondWith(&graphpb.TxnContext{StartTs: 9, Keys: []string{"k"}})

	txn := s.session.NewTxn()
	_, err := txn.Mutate(ctx, setNquads(`<0x1> <name> "a" .`, false))
	c.Assert(err, IsNil)

	s.ep.queryFn = func(context.Context, *graphpb.Request) (*graphpb.Response, error) {
		return nil, unavailable
	}
	_, err = txn.Query(ctx, "{ q(func: uid(0x1)) { uid } }")
	c.Assert(errors.Cause(err), Equals, unavailable)
	c.Assert(IsAuthError(err), IsFalse)
	c.Assert(s.ep.loginCalls.Load(), Equals, int64(0))
	c.Assert(txn.Finished(), IsTrue)

	commits := s.ep.commitLog()
	c.Assert(commits, HasLen, 1)
	c.Assert(commits[0].Aborted, IsTrue)
	c.Assert(commits[0].StartTs, Equals, uint64(9))
	c.Assert(commits[0].Keys, DeepEquals, []string{"k"})
}

func (s *testTxnSuite) TestCommitFailureFinishes(c *C) {
	ctx := context.Background()
	conflict := status.Error(codes.Aborted, "transaction has been aborted, please retry")
	s.ep.commitFn = func(context.Context, *graphpb.TxnContext) (*graphpb.TxnContext, error) {
		return nil, conflict
	}

	txn := s.session.NewTxn()
	_, err := txn.Mutate(ctx, setNquads(`<0x1> <name> "a" .`, false))
	c.Assert(err, IsNil)
	err = txn.Commit(ctx)
	c.Assert(errors.Cause(err), Equals, conflict)
	c.Assert(err, ErrorMatches, `\[graph\] commit_or_abort: .*aborted.*`)
	c.Assert(txn.Finished(), IsTrue)
	c.Assert(txn.Commit(ctx), Equals, ErrFinished)
	c.Assert(txn.Discard(ctx), IsNil)
	c.Assert(s.ep.commitCalls.Load(), Equals, int64(1))
}

func (s *testTxnSuite) TestCommitRetriesAuth(c *C) {
	ctx := context.Background()
	s.ep.loginFn = func(context.Context, *graphpb.LoginRequest) (*graphpb.Response, error) {
		return loginResponse("fresh", "refresh"), nil
	}
	rejected := false
	s.ep.commitFn = func(_ context.Context, tc *graphpb.TxnContext) (*graphpb.TxnContext, error) {
		if !rejected {
			rejected = true
			return nil, errTokenExpired
		}
		return tc, nil
	}

	txn := s.session.NewTxn()
	_, err := txn.Mutate(ctx, setNquads(`<0x1> <name> "a" .`, false))
	c.Assert(err, IsNil)
	c.Assert(txn.Commit(ctx), IsNil)
	c.Assert(s.ep.commitCalls.Load(), Equals, int64(2))
	c.Assert(s.ep.loginCalls.Load(), Equals, int64(1))
}

func (s *testTxnSuite) TestCommitAuthRetryBounded(c *C) {
	ctx := context.Background()
	s.ep.loginFn = func(context.Context, *graphpb.LoginRequest) (*graphpb.Response, error) {
		return loginResponse("fresh", "refresh"), nil
	}
	s.ep.commitFn = func(context.Context, *graphpb.TxnContext) (*graphpb.TxnContext, error) {
		return nil, errTokenExpired
	}

	txn := s.session.NewTxn()
	_, err := txn.Mutate(ctx, setNquads(`<0x1> <name> "a" .`, false))
	c.Assert(err, IsNil)
	err = txn.Commit(ctx)
	c.Assert(IsAuthError(err), IsTrue)
	c.Assert(txn.Finished(), IsTrue)
	c.Assert(s.ep.commitCalls.Load(), Equals, int64(2))
	c.Assert(s.ep.loginCalls.Load(), Equals, int64(1))
}

func (s *testTxnSuite) TestNilRequest(c *C) {
	ctx := context.Background()
	txn := s.session.NewTxn()

	_, err := txn.Do(ctx, nil)
	c.Assert(err, Equals, ErrNilRequest)
	_, err = txn.Mutate(ctx, nil)
	c.Assert(err, Equals, ErrNilRequest)
	_, err = txn.Do(ctx, &graphpb.Request{Mutations: []*graphpb.Mutation{nil}})
	c.Assert(err, Equals, ErrNilRequest)

	c.Assert(txn.Finished(), IsFalse)
	c.Assert(txn.Mutated(), IsFalse)
	c.Assert(s.ep.queryCalls.Load(), Equals, int64(0))
}

func (s *testTxnSuite) TestRunTxnCommits(c *C) {
	ctx := context.Background()
	err := s.session.RunTxn(ctx, false, func(ctx context.Context, txn *Txn) error {
		_, err := txn.Mutate(ctx, setNquads(`<0x1> <name> "a" .`, false))
		return err
	})
	c.Assert(err, IsNil)
	commits := s.ep.commitLog()
	c.Assert(commits, HasLen, 1)
	c.Assert(commits[0].Aborted, IsFalse)

	// A commit-now mutation already finished the transaction.
	err = s.session.RunTxn(ctx, false, func(ctx context.Context, txn *Txn) error {
		_, err := txn.Mutate(ctx, setNquads(`<0x1> <name> "b" .`, true))
		return err
	})
	c.Assert(err, IsNil)
	c.Assert(s.ep.commitCalls.Load(), Equals, int64(1))

	err = s.session.RunTxn(ctx, true, func(ctx context.Context, txn *Txn) error {
		_, err := txn.Query(ctx, "{ q(func: uid(0x1)) { name } }")
		return err
	})
	c.Assert(err, IsNil)
	c.Assert(s.ep.commitCalls.Load(), Equals, int64(1))
}

func (s *testTxnSuite) TestRunTxnDiscardsAbandoned(c *C) {
	ctx := context.Background()
	err := s.session.RunTxn(ctx, false, func(ctx context.Context, txn *Txn) error {
		if _, err := txn.Mutate(ctx, setNquads(`<0x1> <name> "a" .`, false)); err != nil {
			return err
		}
		return errors.New("validation failed")
	})
	c.Assert(err, ErrorMatches, "validation failed")
	commits := s.ep.commitLog()
	c.Assert(commits, HasLen, 1)
	c.Assert(commits[0].Aborted, IsTrue)
}

func (s *testTxnSuite) TestRunTxnDiscardsOnPanic(c *C) {
	ctx := context.Background()
	func() {
		defer func() {
			c.Assert(recover(), Equals, "boom")
		}()
		s.session.RunTxn(ctx, false, func(ctx context.Context, txn *Txn) error {
			if _, err := txn.Mutate(ctx, setNquads(`<0x1> <name> "a" .`, false)); err != nil {
				return err
			}
			panic("boom")
		})
	}()
	commits := s.ep.commitLog()
	c.Assert(commits, HasLen, 1)
	c.Assert(commits[0].Aborted, IsTrue)
}

func (s *testTxnSuite) TestRunTxnSwallowsDiscardError(c *C) {
	s.ep.commitFn = func(context.Context, *graphpb.TxnContext) (*graphpb.TxnContext, error) {
		return nil, status.Error(codes.Unavailable, "connection refused")
	}
	err := s.session.RunTxn(context.Background(), false, func(ctx context.Context, txn *Txn) error {
		if _, err := txn.Mutate(ctx, setNquads(`<0x1> <name> "a" .`, false)); err != nil {
			return err
		}
		return errors.New("validation failed")
	})
	c.Assert(err, ErrorMatches, "validation failed")
	c.Assert(s.ep.commitCalls.Load(), Equals, int64(1))
}
