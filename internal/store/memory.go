package store

import (
	"context"
	"sync"

	"github.com/roach88/recstore/internal/record"
)

// Memory is a Store backed by a Go map.
//
// All access goes through one RWMutex around the whole map. No I/O happens
// while it is held.
type Memory struct {
	mu      sync.RWMutex
	records map[string]record.Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]record.Record)}
}

// Put inserts rec unless its ID is already present.
func (m *Memory) Put(_ context.Context, rec record.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[rec.ID]; exists {
		return record.NewDuplicateIDError(rec.ID)
	}
	m.records[rec.ID] = rec
	return nil
}

// Get returns the record for id.
func (m *Memory) Get(_ context.Context, id string) (record.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return record.Record{}, record.NewNotFoundError(id)
	}
	return rec, nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Close is a no-op; the map is released with the store.
func (m *Memory) Close() error {
	return nil
}
