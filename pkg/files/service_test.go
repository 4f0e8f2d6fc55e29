package files

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedepot/filedepot/pkg/blob"
	blobMemory "github.com/filedepot/filedepot/pkg/blob/memory"
	"github.com/filedepot/filedepot/pkg/metadata"
	metadataMemory "github.com/filedepot/filedepot/pkg/metadata/memory"
	"github.com/filedepot/filedepot/pkg/session"
	sessionMemory "github.com/filedepot/filedepot/pkg/session/memory"
	"github.com/filedepot/filedepot/pkg/thumbnail"
)

// recordingQueue captures enqueued jobs for assertions.
type recordingQueue struct {
	jobs []thumbnail.Job
	err  error
}

func (q *recordingQueue) Enqueue(ctx context.Context, job thumbnail.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type fixture struct {
	service  *Service
	store    *metadataMemory.MemoryStore
	blobs    *blobMemory.MemoryStore
	sessions *sessionMemory.MemoryStore
	queue    *recordingQueue
	userID   string
	token    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := metadataMemory.NewMemoryStore()
	blobs := blobMemory.NewMemoryStore()
	sessions := sessionMemory.NewMemoryStore()
	queue := &recordingQueue{}

	user := metadata.User{ID: "user-1", Email: "alice@example.com"}
	store.AddUser(user)

	token := "tok-abc"
	err := sessions.Set(context.Background(), session.AuthKey(token), user.ID, time.Hour)
	require.NoError(t, err)

	return &fixture{
		service:  NewService(store, blobs, sessions, queue, nil),
		store:    store,
		blobs:    blobs,
		sessions: sessions,
		queue:    queue,
		userID:   user.ID,
		token:    token,
	}
}

func encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)))
	require.NoError(t, err)
	return buf.Bytes()
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		userID, err := f.service.Authenticate(ctx, f.token)
		require.NoError(t, err)
		assert.Equal(t, f.userID, userID)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := f.service.Authenticate(ctx, "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := f.service.Authenticate(ctx, "tok-nope")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("token resolving to vanished user", func(t *testing.T) {
		err := f.sessions.Set(ctx, session.AuthKey("tok-stale"), "user-gone", time.Hour)
		require.NoError(t, err)

		_, err = f.service.Authenticate(ctx, "tok-stale")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestCreateResource_ValidationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     CreateRequest
		wantMsg string
	}{
		{
			name:    "missing name",
			req:     CreateRequest{Type: "file", Data: encode([]byte("x"))},
			wantMsg: "Missing name",
		},
		{
			name:    "missing type",
			req:     CreateRequest{Name: "a.txt", Type: "archive", Data: encode([]byte("x"))},
			wantMsg: "Missing type",
		},
		{
			name:    "missing data for file",
			req:     CreateRequest{Name: "a.txt", Type: "file"},
			wantMsg: "Missing data",
		},
		{
			name:    "missing data for image",
			req:     CreateRequest{Name: "a.png", Type: "image"},
			wantMsg: "Missing data",
		},
		{
			name:    "parent not found",
			req:     CreateRequest{Name: "a.txt", Type: "file", Data: encode([]byte("x")), ParentID: "does-not-exist"},
			wantMsg: "Parent not found",
		},
		{
			// Name is checked before type, which is checked before data:
			// a request missing everything reports the name first.
			name:    "name checked first",
			req:     CreateRequest{},
			wantMsg: "Missing name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateResource(ctx, f.userID, tt.req)
			require.Error(t, err)
			assert.True(t, IsValidation(err), "expected validation error, got %v", err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestCreateResource_ParentMustBeFolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	file, err := f.service.CreateResource(ctx, f.userID, CreateRequest{
		Name: "not-a-folder.txt",
		Type: "file",
		Data: encode([]byte("hello")),
	})
	require.NoError(t, err)

	_, err = f.service.CreateResource(ctx, f.userID, CreateRequest{
		Name:     "child.txt",
		Type:     "file",
		Data:     encode([]byte("hello")),
		ParentID: file.ID,
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "Parent is not a folder", err.Error())
}

func TestCreateResource_Folder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, err := f.service.CreateResource(ctx, f.userID, CreateRequest{
		Name: "documents",
		Type: "folder",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, metadata.TypeFolder, record.Type)
	assert.Equal(t, metadata.RootParentID, record.ParentID)
	assert.Empty(t, record.LocalPath)
	assert.Zero(t, f.blobs.Len(), "folders must not write blobs")
}

func TestCreateResource_FileRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	payload := []byte("Hello Webstack!\n")

	record, err := f.service.CreateResource(ctx, f.userID, CreateRequest{
		Name: "hello.txt",
		Type: "file",
		Data: encode(payload),
	})
	require.NoError(t, err)
	require.NotEmpty(t, record.LocalPath)

	stored, err := blob.ReadAll(ctx, f.blobs, record.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, payload, stored, "stored bytes must equal uploaded bytes")

	assert.Empty(t, f.queue.jobs, "plain files must not enqueue thumbnail jobs")
}

func TestCreateResource_InvalidBase64(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateResource(context.Background(), f.userID, CreateRequest{
		Name: "bad.txt",
		Type: "file",
		Data: "not/valid/base64!!!",
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Zero(t, f.blobs.Len())
}

func TestCreateResource_ImageEnqueuesJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, err := f.service.CreateResource(ctx, f.userID, CreateRequest{
		Name: "photo.png",
		Type: "image",
		Data: encode(pngBytes(t, 10, 10)),
	})
	require.NoError(t, err)

	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, thumbnail.Job{UserID: f.userID, FileID: record.ID}, f.queue.jobs[0])
}

func TestCreateResource_EnqueueFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	f.queue.err = errors.New("redis down")
	ctx := context.Background()

	record, err := f.service.CreateResource(ctx, f.userID, CreateRequest{
		Name: "photo.png",
		Type: "image",
		Data: encode(pngBytes(t, 10, 10)),
	})
	require.NoError(t, err, "upload must succeed even when the queue is down")

	// The record is committed and its content readable
	_, err = f.service.GetResource(ctx, f.userID, record.ID)
	assert.NoError(t, err)
}

func TestGetResource_OwnershipConflatedWithAbsence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, err := f.service.CreateResource(ctx, f.userID, CreateRequest{
		Name: "secret.txt",
		Type: "file",
		Data: encode([]byte("secret")),
	})
	require.NoError(t, err)

	_, err = f.service.GetResource(ctx, "user-2", record.ID)
	assert.ErrorIs(t, err, ErrNotFound, "another user's lookup must look like absence")

	_, err = f.service.GetResource(ctx, f.userID, "missing-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListResources_Pagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := f.service.CreateResource(ctx, f.userID, CreateRequest{
			Name: fmt.Sprintf("file-%02d.txt", i),
			Type: "file",
			Data: encode([]byte("x")),
		})
		require.NoError(t, err)
	}

	page0, err := f.service.ListResources(ctx, f.userID, "", 0)
	require.NoError(t, err)
	require.Len(t, page0, PageSize)
	assert.Equal(t, "file-00.txt", page0[0].Name)

	page1, err := f.service.ListResources(ctx, f.userID, "", 1)
	require.NoError(t, err)
	require.Len(t, page1, 5)
	assert.Equal(t, "file-20.txt", page1[0].Name)

	page2, err := f.service.ListResources(ctx, f.userID, "", 2)
	require.NoError(t, err)
	assert.Empty(t, page2, "pages past the end are empty, not errors")
}

func TestListResources_HugePageIsClamped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateResource(ctx, f.userID, CreateRequest{
		Name: "a.txt", Type: "file", Data: encode([]byte("x")),
	})
	require.NoError(t, err)

	records, err := f.service.ListResources(ctx, f.userID, "", math.MaxInt64)
	require.NoError(t, err)
	assert.Empty(t, records, "a page far past the end is empty, not an overflow")
}

func TestListResources_FiltersByParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	folder, err := f.service.CreateResource(ctx, f.userID, CreateRequest{Name: "docs", Type: "folder"})
	require.NoError(t, err)

	_, err = f.service.CreateResource(ctx, f.userID, CreateRequest{
		Name: "inside.txt", Type: "file", Data: encode([]byte("x")), ParentID: folder.ID,
	})
	require.NoError(t, err)

	_, err = f.service.CreateResource(ctx, f.userID, CreateRequest{
		Name: "outside.txt", Type: "file", Data: encode([]byte("x")),
	})
	require.NoError(t, err)

	inFolder, err := f.service.ListResources(ctx, f.userID, folder.ID, 0)
	require.NoError(t, err)
	require.Len(t, inFolder, 1)
	assert.Equal(t, "inside.txt", inFolder[0].Name)

	atRoot, err := f.service.ListResources(ctx, f.userID, "", 0)
	require.NoError(t, err)
	require.Len(t, atRoot, 2) // the folder itself and outside.txt
}

func TestSetVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, err := f.service.CreateResource(ctx, f.userID, CreateRequest{
		Name: "toggle.txt",
		Type: "file",
		Data: encode([]byte("x")),
	})
	require.NoError(t, err)
	require.False(t, record.IsPublic)

	published, err := f.service.SetVisibility(ctx, f.userID, record.ID, true)
	require.NoError(t, err)
	assert.True(t, published.IsPublic)

	unpublished, err := f.service.SetVisibility(ctx, f.userID, record.ID, false)
	require.NoError(t, err)
	assert.False(t, unpublished.IsPublic)

	_, err = f.service.SetVisibility(ctx, "user-2", record.ID, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadContent_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	payload := []byte("round trip payload")

	record, err := f.service.CreateResource(ctx, f.userID, CreateRequest{
		Name: "notes.txt",
		Type: "file",
		Data: encode(payload),
	})
	require.NoError(t, err)

	content, err := f.service.ReadContent(ctx, f.token, record.ID, 0)
	require.NoError(t, err)
	defer content.Reader.Close()

	got, err := io.ReadAll(content.Reader)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Contains(t, content.MimeType, "text/plain")
}

func TestReadContent_AccessControl(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	private, err := f.service.CreateResource(ctx, f.userID, CreateRequest{
		Name: "private.txt",
		Type: "file",
		Data: encode([]byte("x")),
	})
	require.NoError(t, err)

	t.Run("owner reads private", func(t *testing.T) {
		content, err := f.service.ReadContent(ctx, f.token, private.ID, 0)
		require.NoError(t, err)
		content.Reader.Close()
	})

	t.Run("no token on private is not found", func(t *testing.T) {
		_, err := f.service.ReadContent(ctx, "", private.ID, 0)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("other user's token on private is not found", func(t *testing.T) {
		f.store.AddUser(metadata.User{ID: "user-2", Email: "bob@example.com"})
		require.NoError(t, f.sessions.Set(ctx, session.AuthKey("tok-bob"), "user-2", time.Hour))

		_, err := f.service.ReadContent(ctx, "tok-bob", private.ID, 0)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("anyone reads public", func(t *testing.T) {
		_, err := f.service.SetVisibility(ctx, f.userID, private.ID, true)
		require.NoError(t, err)

		content, err := f.service.ReadContent(ctx, "", private.ID, 0)
		require.NoError(t, err)
		content.Reader.Close()
	})
}

func TestReadContent_Folder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	folder, err := f.service.CreateResource(ctx, f.userID, CreateRequest{Name: "docs", Type: "folder"})
	require.NoError(t, err)

	_, err = f.service.ReadContent(ctx, f.token, folder.ID, 0)
	require.Error(t, err)
	assert.True(t, IsBadRequest(err))
	assert.Equal(t, "A folder doesn't have content", err.Error())
}

func TestReadContent_SizeVariants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	original := pngBytes(t, 10, 10)
	record, err := f.service.CreateResource(ctx, f.userID, CreateRequest{
		Name: "photo.png",
		Type: "image",
		Data: encode(original),
	})
	require.NoError(t, err)

	t.Run("variant not generated yet", func(t *testing.T) {
		_, err := f.service.ReadContent(ctx, f.token, record.ID, 100)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("generated variant is served", func(t *testing.T) {
		variant := []byte("resized bytes")
		variantID := blob.VariantBlobID(record.LocalPath, 100)
		require.NoError(t, f.blobs.WriteBlob(ctx, variantID, variant))

		content, err := f.service.ReadContent(ctx, f.token, record.ID, 100)
		require.NoError(t, err)
		defer content.Reader.Close()

		got, err := io.ReadAll(content.Reader)
		require.NoError(t, err)
		assert.Equal(t, variant, got)
		assert.Equal(t, "image/png", content.MimeType)
	})

	t.Run("unsupported width serves the original", func(t *testing.T) {
		content, err := f.service.ReadContent(ctx, f.token, record.ID, 333)
		require.NoError(t, err)
		defer content.Reader.Close()

		got, err := io.ReadAll(content.Reader)
		require.NoError(t, err)
		assert.Equal(t, original, got, "a width outside the variant set falls back to the unresized content")
	})
}

// failingBlobStore fails existence checks to simulate storage trouble.
type failingBlobStore struct {
	blob.Store
}

func (s *failingBlobStore) BlobExists(ctx context.Context, id metadata.BlobID) (bool, error) {
	return false, errors.New("storage unreachable")
}

// failingBlobReader passes existence checks but fails to open the blob.
type failingBlobReader struct {
	blob.Store
}

func (s *failingBlobReader) ReadBlob(ctx context.Context, id metadata.BlobID) (io.ReadCloser, error) {
	return nil, errors.New("storage unreachable")
}

// failingSessionStore fails token lookups.
type failingSessionStore struct {
	session.Store
}

func (s *failingSessionStore) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("session store unreachable")
}

func TestReadContent_StoreFailuresLookLikeAbsence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, err := f.service.CreateResource(ctx, f.userID, CreateRequest{
		Name: "private.txt",
		Type: "file",
		Data: encode([]byte("x")),
	})
	require.NoError(t, err)

	t.Run("blob existence check fails", func(t *testing.T) {
		svc := NewService(f.store, &failingBlobStore{Store: f.blobs}, f.sessions, f.queue, nil)

		_, err := svc.ReadContent(ctx, f.token, record.ID, 0)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("blob open fails", func(t *testing.T) {
		svc := NewService(f.store, &failingBlobReader{Store: f.blobs}, f.sessions, f.queue, nil)

		_, err := svc.ReadContent(ctx, f.token, record.ID, 0)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("session lookup fails on private record", func(t *testing.T) {
		svc := NewService(f.store, f.blobs, &failingSessionStore{Store: f.sessions}, f.queue, nil)

		_, err := svc.ReadContent(ctx, f.token, record.ID, 0)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestReadContent_UnknownExtensionFallsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, err := f.service.CreateResource(ctx, f.userID, CreateRequest{
		Name: "blob.weirdext",
		Type: "file",
		Data: encode([]byte("x")),
	})
	require.NoError(t, err)

	content, err := f.service.ReadContent(ctx, f.token, record.ID, 0)
	require.NoError(t, err)
	defer content.Reader.Close()

	assert.Equal(t, DefaultMimeType, content.MimeType)
}

func TestStatsAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateResource(ctx, f.userID, CreateRequest{
		Name: "a.txt", Type: "file", Data: encode([]byte("x")),
	})
	require.NoError(t, err)

	users, fileCount, err := f.service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(1), fileCount)

	sessionsAlive, storeAlive := f.service.Status(ctx)
	assert.True(t, sessionsAlive)
	assert.True(t, storeAlive)
}
