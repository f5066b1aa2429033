package record

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes core errors.
type ErrorCode string

const (
	// CodeDuplicateID indicates a put for an ID that is already stored.
	CodeDuplicateID ErrorCode = "DUPLICATE_ID"

	// CodeNotFound indicates a get for an ID that is not stored.
	CodeNotFound ErrorCode = "NOT_FOUND"
)

// Error is returned by the core put and get operations.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// ID is the record identifier the operation was called with.
	ID string
}

// Sentinels for errors.Is. They carry no ID and match any *Error with the
// same code.
var (
	ErrDuplicateID = &Error{Code: CodeDuplicateID}
	ErrNotFound    = &Error{Code: CodeNotFound}
)

// Error implements the error interface.
func (e *Error) Error() string {
	var msg string
	switch e.Code {
	case CodeDuplicateID:
		msg = "record already exists"
	case CodeNotFound:
		msg = "record not found"
	default:
		msg = "record error"
	}
	if e.ID != "" {
		return fmt.Sprintf("%s: %s (id=%s)", e.Code, msg, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDuplicateIDError creates an Error for a put that lost to an existing record.
func NewDuplicateIDError(id string) *Error {
	return &Error{Code: CodeDuplicateID, ID: id}
}

// NewNotFoundError creates an Error for a get on an unknown ID.
func NewNotFoundError(id string) *Error {
	return &Error{Code: CodeNotFound, ID: id}
}

// IsDuplicateID returns true if err is, or wraps, a DUPLICATE_ID error.
func IsDuplicateID(err error) bool {
	return errors.Is(err, ErrDuplicateID)
}

// IsNotFound returns true if err is, or wraps, a NOT_FOUND error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ValidationError describes a payload that cannot become a Record.
// It is produced by the transport shell and never by a store.
type ValidationError struct {
	Field   string // offending field, empty if the payload as a whole is bad
	Message string
	Syntax  bool // payload is not parseable JSON
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid record: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid record: %s", e.Message)
}

// IsValidation returns true if err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
