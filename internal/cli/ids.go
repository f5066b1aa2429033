package cli

import "github.com/google/uuid"

// IDGenerator produces record ids for put when --id is omitted.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 ids.
//
// Safe for concurrent use. Panics if UUID generation fails.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
