package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/golang/protobuf/proto"
	"github.com/pingcap-incubator/tinygraph/proto/pkg/graphpb"
	"go.uber.org/atomic"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// TokenTTL is the lifetime written into the exp claim of issued tokens.
const TokenTTL = time.Hour

var signingKey = []byte("tinygraph-test")

// MockServer is an in-memory graph server speaking the transaction protocol.
// It hands out start timestamps, records the conflict keys of every
// transaction and rejects a commit whose keys were committed by another
// transaction after its start timestamp.
type MockServer struct {
	// RequireAuth makes every call but Login check the access token.
	RequireAuth bool
	// Version is returned by CheckVersion.
	Version string

	Logins   atomic.Int64
	Queries  atomic.Int64
	Alters   atomic.Int64
	Commits  atomic.Int64
	Aborts   atomic.Int64
	Rejected atomic.Int64

	mu       sync.Mutex
	users    map[string]string
	tokenSeq int
	access   string
	refresh  string
	ts       uint64
	// lastCommit maps a key to the commit timestamp of its last write.
	lastCommit map[string]uint64
	schema     []string
}

// NewMockServer creates a server accepting the given user/password pairs.
func NewMockServer(users map[string]string) *MockServer {
	return &MockServer{
		Version:    "v0.0.0-mock",
		users:      users,
		lastCommit: make(map[string]uint64),
	}
}

// ExpireAccessToken invalidates the current access token. The refresh token
// stays valid.
func (s *MockServer) ExpireAccessToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
}

// Schema returns the schema operations applied by Alter.
func (s *MockServer) Schema() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.schema...)
}

func (s *MockServer) issueTokens() (*graphpb.Jwt, error) {
	s.tokenSeq++
	claims := jwt.StandardClaims{
		Id:        fmt.Sprintf("%d", s.tokenSeq),
		ExpiresAt: time.Now().Add(TokenTTL).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		return nil, err
	}
	s.access = access
	s.refresh = fmt.Sprintf("refresh-%d", s.tokenSeq)
	return &graphpb.Jwt{AccessJwt: s.access, RefreshJwt: s.refresh}, nil
}

func (s *MockServer) checkAuth(ctx context.Context) error {
	if !s.RequireAuth {
		return nil
	}
	md, _ := metadata.FromIncomingContext(ctx)
	tokens := md.Get("accessJwt")
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(tokens) == 0 || s.access == "" || tokens[len(tokens)-1] != s.access {
		s.Rejected.Inc()
		return status.Error(codes.Unauthenticated, "token is expired")
	}
	return nil
}

// Login implements graphpb.DgraphServer.
func (s *MockServer) Login(ctx context.Context, req *graphpb.LoginRequest) (*graphpb.Response, error) {
	s.Logins.Inc()
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.GetRefreshToken() != "" {
		if req.GetRefreshToken() != s.refresh {
			return nil, status.Error(codes.Unauthenticated, "invalid refresh token")
		}
	} else if pw, ok := s.users[req.GetUserid()]; !ok || pw != req.GetPassword() {
		return nil, status.Error(codes.Unauthenticated, "invalid username or password")
	}
	token, err := s.issueTokens()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	data, err := proto.Marshal(token)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &graphpb.Response{Json: data}, nil
}

// Query implements graphpb.DgraphServer. Every set or delete N-Quad line of a
// mutation becomes a conflict key, its predicate the text after the subject.
func (s *MockServer) Query(ctx context.Context, req *graphpb.Request) (*graphpb.Response, error) {
	if err := s.checkAuth(ctx); err != nil {
		return nil, err
	}
	s.Queries.Inc()
	s.mu.Lock()
	defer s.mu.Unlock()

	startTs := req.GetStartTs()
	if startTs == 0 {
		s.ts++
		startTs = s.ts
	}
	tc := &graphpb.TxnContext{StartTs: startTs}
	for _, mu := range req.GetMutations() {
		for _, nq := range [][]byte{mu.GetSetNquads(), mu.GetDelNquads()} {
			if len(nq) == 0 {
				continue
			}
			for _, line := range strings.Split(string(nq), "\n") {
				key, pred, ok := splitNquad(line)
				if !ok {
					continue
				}
				tc.Keys = append(tc.Keys, key)
				tc.Preds = append(tc.Preds, pred)
			}
		}
	}
	resp := &graphpb.Response{
		Json: []byte(fmt.Sprintf(`{"start_ts":%d}`, startTs)),
		Txn:  tc,
	}
	if req.GetCommitNow() {
		if err := s.commitLocked(tc); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// Alter implements graphpb.DgraphServer.
func (s *MockServer) Alter(ctx context.Context, op *graphpb.Operation) (*graphpb.Payload, error) {
	if err := s.checkAuth(ctx); err != nil {
		return nil, err
	}
	s.Alters.Inc()
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case op.GetDropAll() || op.GetDropOp() == graphpb.Operation_ALL:
		s.schema = nil
		s.lastCommit = make(map[string]uint64)
	case op.GetSchema() != "":
		s.schema = append(s.schema, op.GetSchema())
	}
	return &graphpb.Payload{Data: []byte("Success")}, nil
}

// CommitOrAbort implements graphpb.DgraphServer.
func (s *MockServer) CommitOrAbort(ctx context.Context, tc *graphpb.TxnContext) (*graphpb.TxnContext, error) {
	if err := s.checkAuth(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tc.GetAborted() {
		s.Aborts.Inc()
		return &graphpb.TxnContext{StartTs: tc.GetStartTs(), Aborted: true}, nil
	}
	if err := s.commitLocked(tc); err != nil {
		return nil, err
	}
	return &graphpb.TxnContext{StartTs: tc.GetStartTs(), CommitTs: s.ts}, nil
}

func (s *MockServer) commitLocked(tc *graphpb.TxnContext) error {
	for _, key := range tc.GetKeys() {
		if s.lastCommit[key] > tc.GetStartTs() {
			s.Aborts.Inc()
			return status.Error(codes.Aborted, "transaction has been aborted, please retry")
		}
	}
	s.ts++
	for _, key := range tc.GetKeys() {
		s.lastCommit[key] = s.ts
	}
	s.Commits.Inc()
	return nil
}

// CheckVersion implements graphpb.DgraphServer.
func (s *MockServer) CheckVersion(ctx context.Context, _ *graphpb.Check) (*graphpb.Version, error) {
	if err := s.checkAuth(ctx); err != nil {
		return nil, err
	}
	return &graphpb.Version{Tag: s.Version}, nil
}

// splitNquad returns the subject-predicate pair of one N-Quad line as the
// key and the predicate. Blank lines yield ok false.
func splitNquad(line string) (key, pred string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", "", false
	}
	return fields[0] + " " + fields[1], fields[1], true
}
