// Package memory implements an in-memory metadata store.
//
// The store keeps every record in process memory with no persistence. It
// exists for tests and ephemeral deployments; the mongo and badger stores
// are the deployment targets.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/filedepot/filedepot/pkg/metadata"
)

// MemoryStore implements metadata.Store backed by maps.
//
// Records are returned in insertion order, which makes pagination
// deterministic in tests.
//
// Thread safety:
// All operations are protected by a sync.RWMutex. Records are copied on
// insert and on read so callers never share memory with the store.
type MemoryStore struct {
	mu sync.RWMutex

	// files holds records in insertion order for natural-order listing
	files []*metadata.FileRecord

	// byID indexes the same records for point lookups
	byID map[string]*metadata.FileRecord

	users map[string]*metadata.User
}

// NewMemoryStore creates an empty in-memory metadata store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]*metadata.FileRecord),
		users: make(map[string]*metadata.User),
	}
}

// AddUser seeds a user. Registration is handled by an external service in
// real deployments, so this exists for tests and bootstrap tooling only.
func (s *MemoryStore) AddUser(user metadata.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	u := user
	s.users[u.ID] = &u
}

// InsertFile persists a new record and returns its assigned id.
func (s *MemoryStore) InsertFile(ctx context.Context, record *metadata.FileRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := record.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	s.files = append(s.files, &stored)
	s.byID[stored.ID] = &stored
	record.ID = stored.ID

	return stored.ID, nil
}

// FileByID returns the record with the given id regardless of owner.
func (s *MemoryStore) FileByID(ctx context.Context, id string) (*metadata.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.byID[id]
	if !ok {
		return nil, metadata.NotFound("file " + id + " not found")
	}

	out := *record
	return &out, nil
}

// FileByIDForUser returns the record only if owned by userID.
func (s *MemoryStore) FileByIDForUser(ctx context.Context, id, userID string) (*metadata.FileRecord, error) {
	record, err := s.FileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		// Ownership mismatch must look exactly like absence
		return nil, metadata.NotFound("file " + id + " not found")
	}
	return record, nil
}

// ListFiles returns the user's records under parentID in insertion order.
func (s *MemoryStore) ListFiles(ctx context.Context, userID, parentID string, skip, limit int64) ([]*metadata.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]*metadata.FileRecord, 0)
	for _, record := range s.files {
		if record.UserID != userID || record.ParentID != parentID {
			continue
		}
		matches = append(matches, record)
	}

	if skip >= int64(len(matches)) {
		return []*metadata.FileRecord{}, nil
	}
	matches = matches[skip:]
	if limit > 0 && int64(len(matches)) > limit {
		matches = matches[:limit]
	}

	out := make([]*metadata.FileRecord, len(matches))
	for i, record := range matches {
		copied := *record
		out[i] = &copied
	}
	return out, nil
}

// SetFilePublic updates only the IsPublic flag.
func (s *MemoryStore) SetFilePublic(ctx context.Context, id string, isPublic bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byID[id]
	if !ok {
		return metadata.NotFound("file " + id + " not found")
	}
	record.IsPublic = isPublic
	return nil
}

// CountFiles returns the total number of records.
func (s *MemoryStore) CountFiles(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.files)), nil
}

// UserByID returns the user with the given id.
func (s *MemoryStore) UserByID(ctx context.Context, id string) (*metadata.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, metadata.NotFound("user " + id + " not found")
	}
	out := *user
	return &out, nil
}

// CountUsers returns the total number of users.
func (s *MemoryStore) CountUsers(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) bool {
	return ctx.Err() == nil
}

// Close is a no-op.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
