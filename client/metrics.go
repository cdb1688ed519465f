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

import "github.com/prometheus/client_golang/prometheus"

var (
	cmdDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "graph_client",
			Subsystem: "cmd",
			Name:      "handle_cmds_duration_seconds",
			Help:      "Bucketed histogram of processing time (s) of handled success cmds.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 13),
		}, []string{"type"})

	cmdFailedDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "graph_client",
			Subsystem: "cmd",
			Name:      "handle_failed_cmds_duration_seconds",
			Help:      "Bucketed histogram of processing time (s) of failed handled cmds.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 13),
		}, []string{"type"})

	authRetryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graph_client",
			Subsystem: "auth",
			Name:      "retries_total",
			Help:      "Counter of calls retried after a credential refresh.",
		}, []string{"type"})

	txnCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graph_client",
			Subsystem: "txn",
			Name:      "finished_total",
			Help:      "Counter of finished transactions by outcome.",
		}, []string{"result"})
)

const (
	cmdLogin         = "login"
	cmdRefresh       = "refresh"
	cmdAlter         = "alter"
	cmdQuery         = "query"
	cmdCommitOrAbort = "commit_or_abort"
	cmdCheckVersion  = "check_version"
)

var (
	// WithLabelValues is a heavy operation, define variable to avoid call it every time.
	txnCounterCommit    = txnCounter.WithLabelValues("commit")
	txnCounterAbort     = txnCounter.WithLabelValues("abort")
	txnCounterCommitNow = txnCounter.WithLabelValues("commit_now")
	txnCounterReadOnly  = txnCounter.WithLabelValues("no_write")
	txnCounterFailed    = txnCounter.WithLabelValues("failed")
)

func init() {
	prometheus.MustRegister(cmdDuration)
	prometheus.MustRegister(cmdFailedDuration)
	prometheus.MustRegister(authRetryCounter)
	prometheus.MustRegister(txnCounter)
}
