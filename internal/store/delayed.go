package store

import (
	"context"
	"time"

	"github.com/roach88/recstore/internal/record"
)

// Delayed adds a fixed latency to every Get of the wrapped store.
//
// The sleep happens before the inner Get is called, so the inner store's lock
// is never held while waiting. Put is passed through untouched.
type Delayed struct {
	inner Store
	delay time.Duration
	sleep func(time.Duration)
}

// NewDelayed wraps inner. A zero delay returns inner unchanged.
func NewDelayed(inner Store, delay time.Duration) Store {
	if delay <= 0 {
		return inner
	}
	return &Delayed{inner: inner, delay: delay, sleep: time.Sleep}
}

func (d *Delayed) Put(ctx context.Context, rec record.Record) error {
	return d.inner.Put(ctx, rec)
}

func (d *Delayed) Get(ctx context.Context, id string) (record.Record, error) {
	d.sleep(d.delay)
	return d.inner.Get(ctx, id)
}

func (d *Delayed) Close() error {
	return d.inner.Close()
}
