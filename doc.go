package tinygraph

/*
TinyGraph is a transactional Go client for a distributed graph database that speaks the Dgraph gRPC protocol.
The server does the hard part: it hands out start timestamps, keeps snapshots and detects write conflicts on commit.
The client carries the per-transaction state the server needs to do that, and keeps an authenticated session alive.

The `tinygraph` module is organized into the following packages:

* `client`: the Session (endpoint pool, credential, login and refresh, schema operations) and the Txn (optimistic
  transaction with queries, mutations, commit and discard). Start here.
* `proto`: the protocol definition and its Go bindings in `proto/pkg/graphpb`.
* `config`: configuration of the command line client, from flags and a TOML file.
* `cmd/graph-cli`: a command line client with one-shot commands and an interactive shell.
* `pkg/grpcutil`: dialing endpoints, optionally over TLS.
* `pkg/testutil`: an in-memory server for tests.

A Txn must always be finished with Commit or Discard. Use Session.RunTxn, or defer Txn.Discard right after creating
the transaction; a transaction that is dropped without either keeps its writes pending on the server.
*/
