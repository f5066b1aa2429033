package record

import "fmt"

// Record is a stored movie entry.
//
// Wire field names are id, name, year and was_good.
type Record struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Year    uint16 `json:"year" yaml:"year"`
	WasGood bool   `json:"was_good" yaml:"was_good"`
}

// String renders the record for text output and debug logs.
func (r Record) String() string {
	return fmt.Sprintf("%s: %q (%d) was_good=%t", r.ID, r.Name, r.Year, r.WasGood)
}

// Validate checks the invariants a Record must satisfy before it is handed to
// a store. Returns a *ValidationError.
//
// The ids "." and ".." are rejected: GET /movie/{id} cannot address them
// because request paths are cleaned before routing.
func (r Record) Validate() error {
	switch r.ID {
	case "":
		return &ValidationError{Field: "id", Message: "must not be empty"}
	case ".", "..":
		return &ValidationError{Field: "id", Message: fmt.Sprintf("%q is not addressable", r.ID)}
	}
	return nil
}
