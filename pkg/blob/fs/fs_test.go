package fs

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedepot/filedepot/pkg/blob"
)

func newTestStore(t *testing.T) *FSStore {
	t.Helper()

	store, err := NewFSStore(context.Background(), t.TempDir())
	require.NoError(t, err)
	return store
}

func TestWriteAndRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	payload := []byte("blob payload")

	require.NoError(t, store.WriteBlob(ctx, "abc", payload))

	reader, err := store.ReadBlob(ctx, "abc")
	require.NoError(t, err)
	defer reader.Close()

	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadMissingBlob(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ReadBlob(context.Background(), "nope")
	assert.ErrorIs(t, err, blob.ErrBlobNotFound)
}

func TestBlobExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	exists, err := store.BlobExists(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.WriteBlob(ctx, "abc", []byte("x")))

	exists, err = store.BlobExists(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestOverwrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteBlob(ctx, "abc", []byte("first")))
	require.NoError(t, store.WriteBlob(ctx, "abc", []byte("second")))

	got, err := blob.ReadAll(ctx, store, "abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func TestVariantLivesNextToOriginal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteBlob(ctx, "orig", []byte("full size")))
	require.NoError(t, store.WriteBlob(ctx, blob.VariantBlobID("orig", 100), []byte("small")))

	got, err := blob.ReadAll(ctx, store, "orig_100")
	require.NoError(t, err)
	assert.Equal(t, []byte("small"), got)
}

func TestNewFSStoreCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "blobs")

	store, err := NewFSStore(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, root, store.Root())

	// Idempotent on an existing directory
	_, err = NewFSStore(context.Background(), root)
	assert.NoError(t, err)
}
