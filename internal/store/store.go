package store

import (
	"context"
	"fmt"

	"github.com/roach88/recstore/internal/record"
)

// Store is the Record Store contract shared by all backends.
type Store interface {
	// Put inserts rec. Returns a record.ErrDuplicateID error if a record with
	// the same ID exists.
	Put(ctx context.Context, rec record.Record) error

	// Get returns a copy of the record stored under id, or a
	// record.ErrNotFound error.
	Get(ctx context.Context, id string) (record.Record, error)

	// Close releases backend resources. The store must not be used afterwards.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Open creates a store for the named backend. dsn is only used by the SQLite
// backend; an empty dsn means a private in-memory database.
func Open(backend, dsn string) (Store, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendSQLite:
		if dsn == "" {
			dsn = MemoryDSN
		}
		return OpenSQLite(dsn)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
