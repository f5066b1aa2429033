package store

import (
	"testing"

	"github.com/roach88/recstore/internal/record"
)

// backends lists a constructor per Store implementation so the contract
// tests run against each of them.
var backends = []struct {
	name string
	open func(t *testing.T) Store
}{
	{"memory", func(t *testing.T) Store { return NewMemory() }},
	{"sqlite", createTestSQLite},
}

// createTestSQLite creates a new in-memory SQLite store for testing.
func createTestSQLite(t *testing.T) Store {
	t.Helper()
	s, err := OpenSQLite(MemoryDSN)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// movie creates a test record.
func movie(id, name string, year uint16, good bool) record.Record {
	return record.Record{ID: id, Name: name, Year: year, WasGood: good}
}
