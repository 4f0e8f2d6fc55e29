package metadata

import "context"

// Store provides access to the files and users collections.
//
// The interface is deliberately thin: it mirrors the handful of document
// operations the service needs (insert-one, find-one-by-filter,
// find-many-with-skip-and-limit, update-one, count) rather than exposing a
// general query language. Hierarchy and access-control decisions live in
// the files service, not here.
//
// Implementations:
//   - mongo: document store, the primary deployment target
//   - badger: embedded persistent store for single-node deployments
//   - memory: ephemeral store for tests
//
// Ordering:
// ListFiles returns records in the store's natural order. For the memory
// and badger stores that is insertion order; for mongo it is whatever
// order the server returns without an explicit sort. Callers must not
// assume more than a stable-enough order for pagination.
//
// Thread safety:
// All implementations must be safe for concurrent use.
type Store interface {
	// InsertFile persists a new record and returns its assigned id.
	// The record is validated first; invalid records fail with
	// ErrInvalidArgument and nothing is written.
	InsertFile(ctx context.Context, record *FileRecord) (string, error)

	// FileByID returns the record with the given id regardless of owner.
	// Fails with ErrNotFound if absent or the id is malformed.
	FileByID(ctx context.Context, id string) (*FileRecord, error)

	// FileByIDForUser returns the record only if it is owned by userID.
	// An ownership mismatch is indistinguishable from absence: both fail
	// with ErrNotFound.
	FileByIDForUser(ctx context.Context, id, userID string) (*FileRecord, error)

	// ListFiles returns records owned by userID whose ParentID exactly
	// matches parentID, skipping skip records and returning at most limit.
	// A window past the end yields an empty slice, not an error.
	ListFiles(ctx context.Context, userID, parentID string, skip, limit int64) ([]*FileRecord, error)

	// SetFilePublic updates only the IsPublic flag of the record.
	// Concurrent updates race with last-write-wins semantics.
	SetFilePublic(ctx context.Context, id string, isPublic bool) error

	// CountFiles returns the total number of file records.
	CountFiles(ctx context.Context) (int64, error)

	// UserByID returns the user with the given id.
	UserByID(ctx context.Context, id string) (*User, error)

	// CountUsers returns the total number of users.
	CountUsers(ctx context.Context) (int64, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) bool

	// Close releases resources held by the store.
	Close(ctx context.Context) error
}
