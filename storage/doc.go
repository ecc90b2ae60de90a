// Package storage implements snapshot persistence backends for the registry.
// Backends are created from location URIs by the factory and store opaque
// JSON-encoded registry snapshots; they carry no registry semantics of their
// own. Supported schemes: file://, s3://, ipfs://, and vault://.
package storage
