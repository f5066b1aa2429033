package testutil

import "sync"

// Sequence is a thread-safe monotonic counter used to stamp trace events.
//
// The first call to Next() returns 1. Reset makes a scenario reusable with
// identical seq values.
type Sequence struct {
	mu  sync.Mutex
	seq int64
}

// NewSequence creates a new sequence starting at 0.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next increments and returns the next sequence number.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Current returns the current sequence number without incrementing.
func (s *Sequence) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Reset resets the sequence to 0.
func (s *Sequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = 0
}
