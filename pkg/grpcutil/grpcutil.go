// Copyright 2019 PingCAP, Inc.
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

package grpcutil

import (
	"crypto/tls"
	"crypto/x509"
	"io/ioutil"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

// SecurityOption records options about tls
type SecurityOption struct {
	CAPath   string
	CertPath string
	KeyPath  string
}

// Enabled reports whether a CA is configured. Without one the connection is
// plaintext and the cert/key pair is ignored.
func (s SecurityOption) Enabled() bool {
	return len(s.CAPath) != 0
}

// GetClientConn returns a gRPC client connection. addr may be a bare
// host:port or a URL; only the host part of a URL is dialed.
func GetClientConn(addr string, security SecurityOption, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opt := grpc.WithInsecure()
	if security.Enabled() {
		var certificates []tls.Certificate
		if len(security.CertPath) != 0 && len(security.KeyPath) != 0 {
			// Load the client certificates from disk
			certificate, err := tls.LoadX509KeyPair(security.CertPath, security.KeyPath)
			if err != nil {
				return nil, errors.Errorf("could not load client key pair: %s", err)
			}
			certificates = append(certificates, certificate)
		}

		// Create a certificate pool from the certificate authority
		certPool := x509.NewCertPool()
		ca, err := ioutil.ReadFile(security.CAPath)
		if err != nil {
			return nil, errors.Errorf("could not read ca certificate: %s", err)
		}

		// Append the certificates from the CA
		if !certPool.AppendCertsFromPEM(ca) {
			return nil, errors.New("failed to append ca certs")
		}

		creds := credentials.NewTLS(&tls.Config{
			Certificates: certificates,
			RootCAs:      certPool,
		})

		opt = grpc.WithTransportCredentials(creds)
	}
	u, err := url.Parse(AddrToURL(addr))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	cc, err := grpc.Dial(u.Host, append([]grpc.DialOption{opt}, opts...)...)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return cc, nil
}

// AddrToURL adds the default schema "http://" to addr when it has none.
func AddrToURL(addr string) string {
	if strings.Contains(addr, "://") {
		return addr
	}
	return "http://" + addr
}

// SplitAddrs splits a comma separated address list, dropping blanks.
func SplitAddrs(s string) []string {
	items := strings.Split(s, ",")
	addrs := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			addrs = append(addrs, item)
		}
	}
	return addrs
}
