// Package fs implements filesystem-backed blob storage.
//
// Blobs are stored as flat files under a root directory, one file per
// blob id. This is the default backend and matches the layout the
// thumbnail worker expects: variants live next to their original as
// sibling files with a width suffix.
package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/filedepot/filedepot/pkg/blob"
	"github.com/filedepot/filedepot/pkg/metadata"
)

// DefaultRoot is the blob root used when no path is configured.
const DefaultRoot = "/tmp/filedepot"

// FSStore implements blob.Store using the local filesystem.
//
// Thread safety:
// Filesystem operations are thread-safe at the OS level. Concurrent
// writes to the same blob id can interleave, but the service only writes
// a given id from one place at a time (fresh ids per upload, variant
// regeneration is idempotent).
type FSStore struct {
	root string
}

// NewFSStore creates a filesystem blob store rooted at root, creating the
// directory with mode 0755 if it does not exist. Creation is idempotent:
// two processes racing here both succeed.
func NewFSStore(ctx context.Context, root string) (*FSStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if root == "" {
		root = DefaultRoot
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob root: %w", err)
	}

	return &FSStore{root: root}, nil
}

// Root returns the root directory of the store.
func (s *FSStore) Root() string {
	return s.root
}

func (s *FSStore) path(id metadata.BlobID) string {
	return filepath.Join(s.root, string(id))
}

// WriteBlob stores data under id, overwriting any existing blob.
func (s *FSStore) WriteBlob(ctx context.Context, id metadata.BlobID, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.WriteFile(s.path(id), data, 0644); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", id, err)
	}
	return nil
}

// ReadBlob returns a streaming reader for the blob. The caller must close
// the returned file.
func (s *FSStore) ReadBlob(ctx context.Context, id metadata.BlobID) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob %s: %w", id, blob.ErrBlobNotFound)
		}
		return nil, fmt.Errorf("failed to open blob %s: %w", id, err)
	}
	return file, nil
}

// BlobExists reports whether a blob exists under id.
func (s *FSStore) BlobExists(ctx context.Context, id metadata.BlobID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(s.path(id))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat blob %s: %w", id, err)
}
