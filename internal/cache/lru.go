package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/roach88/recstore/internal/record"
)

// Defaults for Options.
const (
	DefaultCapacity    = 1000
	DefaultNegativeTTL = 30 * time.Second
)

// Options configures an LRU cache.
type Options struct {
	// Capacity is the maximum number of entries, positive and negative.
	// Zero means DefaultCapacity.
	Capacity int

	// TTL bounds the life of a cached record. Zero keeps records until they
	// are evicted or invalidated.
	TTL time.Duration

	// NegativeTTL bounds the life of a cached NOT_FOUND result. Zero disables
	// negative caching.
	NegativeTTL time.Duration

	// Clock is used for TTL checks. Nil means the system clock.
	Clock Clock
}

// DefaultOptions returns 1000 entries, no record TTL and a 30s negative TTL.
func DefaultOptions() Options {
	return Options{
		Capacity:    DefaultCapacity,
		NegativeTTL: DefaultNegativeTTL,
	}
}

type entry struct {
	rec       record.Record
	found     bool
	expiresAt time.Time // zero: no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

func (e entry) result(id string) (record.Record, error) {
	if !e.found {
		return record.Record{}, record.NewNotFoundError(id)
	}
	return e.rec, nil
}

// flight tracks the loads in flight for one ID. gen is bumped by every
// Invalidate of that ID while loads is non-zero.
type flight struct {
	gen   uint64
	loads int
}

// LRU is a capacity-bounded Cache with least-recently-used eviction.
//
// Concurrent misses for one ID are collapsed into a single load. The cache
// lock only covers bookkeeping; loads run without it.
type LRU struct {
	opts  Options
	clock Clock

	// mu makes the generation check and the insert in finish atomic with
	// respect to Invalidate. inflight only holds IDs with a load running.
	mu       sync.Mutex
	inflight map[string]*flight
	entries  *lru.Cache[string, entry]
	group    singleflight.Group

	hits          atomic.Uint64
	misses        atomic.Uint64
	loads         atomic.Uint64
	shared        atomic.Uint64
	evictions     atomic.Uint64
	invalidations atomic.Uint64
}

// NewLRU creates an LRU cache.
func NewLRU(opts Options) (*LRU, error) {
	if opts.Capacity == 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Capacity < 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", opts.Capacity)
	}
	if opts.TTL < 0 || opts.NegativeTTL < 0 {
		return nil, fmt.Errorf("cache ttl must not be negative")
	}

	entries, err := lru.New[string, entry](opts.Capacity)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}

	clock := opts.Clock
	if clock == nil {
		clock = systemClock{}
	}

	return &LRU{
		opts:     opts,
		clock:    clock,
		inflight: make(map[string]*flight),
		entries:  entries,
	}, nil
}

// GetOrPopulate returns the cached result for id or loads it.
func (c *LRU) GetOrPopulate(ctx context.Context, id string, load Loader) (record.Record, error) {
	if e, ok := c.lookup(id); ok {
		c.hits.Add(1)
		return e.result(id)
	}
	c.misses.Add(1)

	v, err, shared := c.group.Do(id, func() (any, error) {
		gen := c.begin(id)
		c.loads.Add(1)

		var (
			e     entry
			store bool
		)
		defer func() { c.finish(id, gen, e, store) }()

		rec, err := load(ctx, id)
		switch {
		case err == nil:
			e, store = entry{rec: rec, found: true, expiresAt: c.deadline(c.opts.TTL)}, true
		case record.IsNotFound(err) && c.opts.NegativeTTL > 0:
			e, store = entry{expiresAt: c.deadline(c.opts.NegativeTTL)}, true
		}
		return rec, err
	})
	if shared {
		c.shared.Add(1)
	}
	if err != nil {
		return record.Record{}, err
	}
	return v.(record.Record), nil
}

// Invalidate drops the entry for id and discards loads of id already in
// flight. Loads of other IDs are unaffected.
func (c *LRU) Invalidate(id string) {
	c.mu.Lock()
	if f, ok := c.inflight[id]; ok {
		f.gen++
	}
	c.entries.Remove(id)
	c.mu.Unlock()

	c.group.Forget(id)
	c.invalidations.Add(1)
}

// Stats returns a snapshot of the cache counters.
func (c *LRU) Stats() Stats {
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Loads:         c.loads.Load(),
		SharedLoads:   c.shared.Load(),
		Evictions:     c.evictions.Load(),
		Invalidations: c.invalidations.Load(),
		Size:          c.entries.Len(),
	}
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	return c.entries.Len()
}

func (c *LRU) lookup(id string) (entry, bool) {
	e, ok := c.entries.Get(id)
	if !ok {
		return entry{}, false
	}
	if !e.expired(c.clock.Now()) {
		return e, true
	}

	// Re-check under the lock: a fresh entry may have replaced the expired one.
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.entries.Peek(id); ok && cur.expired(c.clock.Now()) {
		c.entries.Remove(id)
		c.evictions.Add(1)
	}
	return entry{}, false
}

// begin registers a load of id and returns its generation.
func (c *LRU) begin(id string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.inflight[id]
	if !ok {
		f = &flight{}
		c.inflight[id] = f
	}
	f.loads++
	return f.gen
}

// finish ends a load of id. When store is set, e is cached unless id was
// invalidated since begin returned gen.
func (c *LRU) finish(id string, gen uint64, e entry, store bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.inflight[id]
	fresh := f.gen == gen
	if f.loads--; f.loads == 0 {
		delete(c.inflight, id)
	}
	if !store || !fresh {
		return
	}
	if evicted := c.entries.Add(id, e); evicted {
		c.evictions.Add(1)
	}
}

func (c *LRU) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return c.clock.Now().Add(ttl)
}
