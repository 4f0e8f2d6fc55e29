package metadata

import "errors"

// StoreError is a domain error from metadata store operations.
//
// These are business outcomes (record not found, invalid input) as opposed
// to infrastructure failures (connection loss, disk errors), which stores
// wrap with ErrIO. The API layer translates codes to HTTP statuses.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable description
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// ErrorCode is the category of a StoreError.
type ErrorCode int

const (
	// ErrNotFound indicates the requested record doesn't exist. Ownership
	// mismatches surface as this same code: callers must not be able to
	// distinguish "absent" from "not yours".
	ErrNotFound ErrorCode = iota

	// ErrInvalidArgument indicates malformed input: empty name, unknown
	// type, a record that violates its structural invariants.
	ErrInvalidArgument

	// ErrIO indicates an infrastructure failure while reading or writing
	// metadata. Never surfaced to API callers as-is.
	ErrIO
)

// NotFound builds a StoreError with code ErrNotFound.
func NotFound(msg string) *StoreError {
	return &StoreError{Code: ErrNotFound, Message: msg}
}

// InvalidArgument builds a StoreError with code ErrInvalidArgument.
func InvalidArgument(msg string) *StoreError {
	return &StoreError{Code: ErrInvalidArgument, Message: msg}
}

// IOError builds a StoreError with code ErrIO.
func IOError(msg string) *StoreError {
	return &StoreError{Code: ErrIO, Message: msg}
}

// IsNotFound reports whether err is a StoreError with code ErrNotFound.
func IsNotFound(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Code == ErrNotFound
}
