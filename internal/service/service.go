// Package service is the recstore core: the two operations the transport
// shell calls, composed from a Record Store and a Lookup Cache.
package service

import (
	"context"
	"log/slog"

	"github.com/roach88/recstore/internal/cache"
	"github.com/roach88/recstore/internal/record"
	"github.com/roach88/recstore/internal/store"
)

// Service exposes Put and Get over a store and its cache.
//
// It is created by the process entry point and handed to the handlers; there
// is no package-level instance.
type Service struct {
	store  store.Store
	cache  cache.Cache
	logger *slog.Logger
}

// New creates a Service. A nil cache disables caching; a nil logger discards.
func New(st store.Store, c cache.Cache, logger *slog.Logger) *Service {
	if c == nil {
		c = cache.NewDisabled()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: st, cache: c, logger: logger}
}

// Put stores rec. The cache entry for rec.ID is invalidated before Put
// returns, so any Get that starts afterwards sees rec.
//
// Returns a record.ErrDuplicateID error if the ID is taken.
func (s *Service) Put(ctx context.Context, rec record.Record) error {
	if err := s.store.Put(ctx, rec); err != nil {
		if record.IsDuplicateID(err) {
			s.logger.Debug("duplicate record rejected", "id", rec.ID)
		}
		return err
	}
	s.cache.Invalidate(rec.ID)

	s.logger.Debug("record stored", "id", rec.ID, "name", rec.Name)
	return nil
}

// Get returns the record for id, through the cache.
//
// Returns a record.ErrNotFound error if no such record exists.
func (s *Service) Get(ctx context.Context, id string) (record.Record, error) {
	return s.cache.GetOrPopulate(ctx, id, s.store.Get)
}

// CacheStats returns the cache counters.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Close closes the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}
