package blob

import "errors"

// Standard blob store errors.
//
// Implementations wrap these with context:
//
//	return fmt.Errorf("blob %s: %w", id, blob.ErrBlobNotFound)
//
// The files service maps ErrBlobNotFound to a 404 regardless of whether
// the original was never written or a thumbnail has not been generated
// yet; the two cases are indistinguishable to callers on purpose.
var (
	// ErrBlobNotFound indicates the requested blob does not exist.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrStorageFull indicates the backend has no space left. Transient:
	// the write may succeed after cleanup.
	ErrStorageFull = errors.New("storage full")
)
