package cache

import (
	"context"
	"time"

	"github.com/roach88/recstore/internal/record"
)

// Loader fetches a record from the authoritative store.
type Loader func(ctx context.Context, id string) (record.Record, error)

// Cache is the Lookup Cache contract.
type Cache interface {
	// GetOrPopulate returns the cached result for id, or calls load and caches
	// what it returns. NOT_FOUND results may be cached; other errors never are.
	GetOrPopulate(ctx context.Context, id string, load Loader) (record.Record, error)

	// Invalidate drops any entry for id. It must be called synchronously after
	// every successful write to id.
	Invalidate(id string)

	// Stats returns a snapshot of cache counters.
	Stats() Stats
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Loads         uint64 `json:"loads"`          // loader calls
	SharedLoads   uint64 `json:"shared_loads"`   // callers served by a collapsed load
	Evictions     uint64 `json:"evictions"`      // capacity or TTL removals
	Invalidations uint64 `json:"invalidations"`
	Size          int    `json:"size"`
}

// Clock abstracts time for TTL checks.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
