// Package memory implements an in-memory blob store for tests and
// ephemeral deployments.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/filedepot/filedepot/pkg/blob"
	"github.com/filedepot/filedepot/pkg/metadata"
)

// MemoryStore implements blob.Store backed by a map.
//
// Thread safety:
// Protected by a sync.RWMutex. Data is copied on write and read so the
// store never shares buffers with callers.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[metadata.BlobID][]byte
}

// NewMemoryStore creates an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[metadata.BlobID][]byte)}
}

// WriteBlob stores a copy of data under id.
func (s *MemoryStore) WriteBlob(ctx context.Context, id metadata.BlobID, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]byte, len(data))
	copy(copied, data)
	s.data[id] = copied
	return nil
}

// ReadBlob returns a reader over a snapshot of the blob.
func (s *MemoryStore) ReadBlob(ctx context.Context, id metadata.BlobID) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[id]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", id, blob.ErrBlobNotFound)
	}

	copied := make([]byte, len(data))
	copy(copied, data)
	return io.NopCloser(bytes.NewReader(copied)), nil
}

// BlobExists reports whether a blob exists under id.
func (s *MemoryStore) BlobExists(ctx context.Context, id metadata.BlobID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.data[id]
	return ok, nil
}

// Len returns the number of stored blobs. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
