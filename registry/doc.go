// Package registry implements the AuthentiEats record-registry engine:
// role-based write authorization, field validation, monotonic id allocation,
// atomic partial updates, and a bounded append-only per-product audit trail.
//
// The engine is composed of small single-purpose components — AccessControl,
// the validators, RecordStore, OwnershipLedger, and HistoryLog — orchestrated
// by Registry, which owns the single lock that serializes public operations.
// Every operation validates fully before mutating anything, so a failing call
// can never leave partially updated state behind.
package registry
