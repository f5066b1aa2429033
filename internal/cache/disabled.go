package cache

import (
	"context"
	"sync/atomic"

	"github.com/roach88/recstore/internal/record"
)

// Disabled is a pass-through Cache that stores nothing.
type Disabled struct {
	loads atomic.Uint64
}

// NewDisabled creates a pass-through cache.
func NewDisabled() *Disabled {
	return &Disabled{}
}

// GetOrPopulate always calls load.
func (d *Disabled) GetOrPopulate(ctx context.Context, id string, load Loader) (record.Record, error) {
	d.loads.Add(1)
	return load(ctx, id)
}

// Invalidate is a no-op.
func (d *Disabled) Invalidate(string) {}

// Stats reports every lookup as a miss and a load.
func (d *Disabled) Stats() Stats {
	n := d.loads.Load()
	return Stats{Misses: n, Loads: n}
}
