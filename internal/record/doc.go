// Package record defines the unit of data held by recstore and the typed
// outcomes of the core operations.
//
// A Record is keyed by its ID and is immutable once stored. The core exposes
// exactly two failure kinds:
//
//   - DUPLICATE_ID: a put whose ID is already present
//   - NOT_FOUND: a get for an ID that was never stored
//
// Both are matched with errors.Is against ErrDuplicateID and ErrNotFound, or
// with the IsDuplicateID and IsNotFound helpers.
//
// Payload checks (field presence, types, the 16-bit year range, non-empty ID)
// belong to the transport shell. Schema validates raw JSON against an embedded
// CUE definition before a payload is turned into a Record.
package record
