// Package store provides the authoritative Record Store.
//
// A Store maps record IDs to records and guarantees:
//   - Uniqueness: a Put for an ID that is already present fails with
//     record.ErrDuplicateID and leaves the store unchanged
//   - Linearizability: a Put that has returned is visible to every Get that
//     starts afterwards; of several concurrent Puts for one ID exactly one
//     succeeds
//   - Immutability: there is no update or delete
//
// # Backends
//
//   - Memory: a map guarded by a single RWMutex. The default.
//   - SQLite: a SQLite database, in-memory unless a file DSN is given, on a
//     single connection. Uniqueness comes from the PRIMARY KEY and
//     INSERT ... ON CONFLICT DO NOTHING.
//
// Delayed wraps any Store and adds latency to Get outside the store's lock.
// It stands in for a slow lookup path when measuring the cache.
//
// Operations are not cancellable: a caller that gives up never leaves partial
// state behind.
package store
