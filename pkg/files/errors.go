package files

import "errors"

// Service errors, grouped by how the API layer reports them.
//
// NotFound deliberately covers absent records, ownership mismatches and
// missing blobs alike: a caller must not be able to probe whether a
// private resource exists.
var (
	// ErrUnauthorized indicates a missing, unresolvable or stale token.
	ErrUnauthorized = errors.New("Unauthorized")

	// ErrNotFound indicates the resource is absent, not owned by the
	// caller, not visible to the caller, or has no stored content.
	ErrNotFound = errors.New("Not found")
)

// ValidationError indicates a malformed create request. The message is
// part of the API contract and returned verbatim to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validation builds a ValidationError.
func Validation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// BadRequestError indicates a structurally valid request that cannot be
// served, such as asking for the content of a folder.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return e.Message
}

// BadRequest builds a BadRequestError.
func BadRequest(msg string) *BadRequestError {
	return &BadRequestError{Message: msg}
}

// IsBadRequest reports whether err is a BadRequestError.
func IsBadRequest(err error) bool {
	var be *BadRequestError
	return errors.As(err, &be)
}
