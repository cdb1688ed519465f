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

package testutil

import (
	"net"
	"time"

	"github.com/pingcap-incubator/tinygraph/proto/pkg/graphpb"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1 << 20

// CleanupFunc closes what a test helper started.
type CleanupFunc func()

// MustStartServer serves srv on an in-memory listener and returns a client
// connection to it. It panics if the connection cannot be set up.
func MustStartServer(srv graphpb.DgraphServer) (*grpc.ClientConn, CleanupFunc) {
	lis := bufconn.Listen(bufSize)
	s := grpc.NewServer()
	graphpb.RegisterDgraphServer(s, srv)
	go func() {
		if err := s.Serve(lis); err != nil {
			log.Warn("[graph] test server stopped", zap.Error(err))
		}
	}()

	cc, err := grpc.Dial("bufnet",
		grpc.WithDialer(func(string, time.Duration) (net.Conn, error) { return lis.Dial() }),
		grpc.WithInsecure())
	if err != nil {
		s.Stop()
		panic(err)
	}
	return cc, func() {
		cc.Close()
		s.Stop()
	}
}

// MustNewGrpcClient starts srv and returns a graph client connected to it.
func MustNewGrpcClient(srv graphpb.DgraphServer) (graphpb.DgraphClient, CleanupFunc) {
	cc, cleanup := MustStartServer(srv)
	return graphpb.NewDgraphClient(cc), cleanup
}
