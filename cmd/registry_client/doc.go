// Package main (cmd/registry_client) implements a command-line client for the
// product registry API.
//
// The client covers the full operation surface: product registration, partial
// updates, ownership transfers, record and history queries, and the admin
// operations (role management, pause switch, snapshots).
//
// Caller identity is sent with every mutating request. With --private-key the
// identity is derived from the secp256k1 key and each request body is signed,
// matching servers that run with --require-signatures; with --caller alone the
// identity is asserted unsigned, for servers that trust an upstream gateway.
package main
