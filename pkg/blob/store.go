// Package blob defines the content side of the service: raw file bytes
// addressed by opaque blob ids.
//
// The blob store manages only bytes. It does NOT manage:
//   - File metadata (ownership, hierarchy, visibility) -> metadata.Store
//   - Access control -> files service
//   - Thumbnail scheduling -> thumbnail queue
//
// The metadata record references its content through FileRecord.LocalPath;
// thumbnail variants derive their ids from the original by suffix, so a
// variant never has metadata of its own.
package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/filedepot/filedepot/pkg/metadata"
)

// Store provides read/write access to blobs.
//
// Ids are opaque: the filesystem store maps them to paths under its root,
// the S3 store to object keys. Writers always use a freshly generated id
// per upload, so concurrent uploads never collide; the only deliberate
// overwrite is the thumbnail worker regenerating variant blobs.
//
// Thread safety:
// Implementations must be safe for concurrent use by multiple goroutines.
type Store interface {
	// WriteBlob stores data under id, overwriting any existing blob.
	WriteBlob(ctx context.Context, id metadata.BlobID, data []byte) error

	// ReadBlob returns a streaming reader for the blob. The caller must
	// close it. Fails with ErrBlobNotFound if the blob does not exist.
	ReadBlob(ctx context.Context, id metadata.BlobID) (io.ReadCloser, error)

	// BlobExists reports whether a blob exists under id.
	BlobExists(ctx context.Context, id metadata.BlobID) (bool, error)
}

// VariantBlobID returns the id of the width-sized thumbnail variant of the
// blob at id. Variants are addressed purely by this convention.
func VariantBlobID(id metadata.BlobID, width int) metadata.BlobID {
	return metadata.BlobID(fmt.Sprintf("%s_%d", id, width))
}

// ReadAll reads the entire blob into memory. Convenience wrapper used by
// the thumbnail worker, which needs the whole raster anyway.
func ReadAll(ctx context.Context, store Store, id metadata.BlobID) ([]byte, error) {
	reader, err := store.ReadBlob(ctx, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", id, err)
	}
	return data, nil
}
