// Package main (cmd/registry_server) runs the product registry HTTP server.
//
// The server hosts the registry engine behind the REST API, exposes Prometheus
// metrics on a separate listener, and optionally persists snapshots to a
// configurable storage backend (filesystem, S3, IPFS, or Vault). On startup it
// can restore state from a stored snapshot; on shutdown it saves one.
package main
