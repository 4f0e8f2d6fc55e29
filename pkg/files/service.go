// Package files implements the file resource manager: upload validation,
// folder hierarchy, visibility, and access-controlled content reads.
//
// The service composes the metadata store, the blob store, the session
// store and the thumbnail queue. It owns every access-control and
// hierarchy decision; the stores underneath are deliberately dumb.
package files

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"mime"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/filedepot/filedepot/internal/logger"
	"github.com/filedepot/filedepot/pkg/blob"
	"github.com/filedepot/filedepot/pkg/metadata"
	"github.com/filedepot/filedepot/pkg/metrics"
	"github.com/filedepot/filedepot/pkg/session"
	"github.com/filedepot/filedepot/pkg/thumbnail"
)

// PageSize is the fixed number of records per listing page.
const PageSize = 20

// maxPage caps the listing page so the skip offset cannot overflow.
const maxPage = math.MaxInt64 / PageSize

// DefaultMimeType is served when the file name carries no known extension.
const DefaultMimeType = "application/octet-stream"

// ThumbnailWidths are the size variants ReadContent can resolve.
var ThumbnailWidths = map[int]bool{100: true, 250: true, 500: true}

// Service is the file resource manager.
type Service struct {
	store    metadata.Store
	blobs    blob.Store
	sessions session.Store
	queue    thumbnail.Queue
	metrics  metrics.Metrics
}

// NewService wires a Service from its collaborators. queue may be nil
// when thumbnail generation is disabled; image uploads then simply never
// gain variants.
func NewService(store metadata.Store, blobs blob.Store, sessions session.Store, queue thumbnail.Queue, m metrics.Metrics) *Service {
	if m == nil {
		m = metrics.NewMetrics()
	}

	return &Service{
		store:    store,
		blobs:    blobs,
		sessions: sessions,
		queue:    queue,
		metrics:  m,
	}
}

// Authenticate resolves a token to the owning user id.
//
// Fails with ErrUnauthorized if the token is empty, unknown, expired, or
// the resolved user no longer exists.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}

	userID, err := s.sessions.Get(ctx, session.AuthKey(token))
	if err != nil {
		return "", fmt.Errorf("failed to resolve token: %w", err)
	}
	if userID == "" {
		return "", ErrUnauthorized
	}

	if _, err := s.store.UserByID(ctx, userID); err != nil {
		if metadata.IsNotFound(err) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("failed to load user %s: %w", userID, err)
	}

	return userID, nil
}

// UserByID returns the profile of an authenticated user.
func (s *Service) UserByID(ctx context.Context, userID string) (*metadata.User, error) {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		if metadata.IsNotFound(err) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// CreateRequest carries a validated-on-entry upload request. Data holds
// the base64-encoded content and must be empty for folders.
type CreateRequest struct {
	Name     string
	Type     string
	ParentID string
	IsPublic bool
	Data     string
}

// CreateResource validates the request, persists content and metadata,
// and enqueues thumbnail generation for images.
//
// Checks run in a fixed order so clients get a deterministic first
// failure: name, type, data, then parent. On success the blob (if any) is
// written before the record is committed, so a visible record always has
// readable content; the thumbnail job is enqueued only after the commit,
// and an enqueue failure is logged and swallowed because the upload
// itself already succeeded.
func (s *Service) CreateResource(ctx context.Context, userID string, req CreateRequest) (*metadata.FileRecord, error) {
	if req.Name == "" {
		return nil, Validation("Missing name")
	}

	fileType := metadata.FileType(req.Type)
	if !fileType.Valid() {
		return nil, Validation("Missing type")
	}

	if fileType.HasContent() && req.Data == "" {
		return nil, Validation("Missing data")
	}

	parentID := req.ParentID
	if parentID == "" {
		parentID = metadata.RootParentID
	}
	if parentID != metadata.RootParentID {
		parent, err := s.store.FileByID(ctx, parentID)
		if err != nil {
			if metadata.IsNotFound(err) {
				return nil, Validation("Parent not found")
			}
			return nil, fmt.Errorf("failed to look up parent %s: %w", parentID, err)
		}
		if parent.Type != metadata.TypeFolder {
			return nil, Validation("Parent is not a folder")
		}
	}

	var record *metadata.FileRecord

	if fileType == metadata.TypeFolder {
		record = metadata.NewFolder(userID, req.Name, parentID, req.IsPublic)
	} else {
		data, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			return nil, Validation("Missing data")
		}

		blobID := metadata.BlobID(uuid.NewString())
		if err := s.blobs.WriteBlob(ctx, blobID, data); err != nil {
			return nil, fmt.Errorf("failed to store content: %w", err)
		}

		record = metadata.NewFile(userID, req.Name, fileType, parentID, req.IsPublic, blobID)
	}

	id, err := s.store.InsertFile(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to persist record: %w", err)
	}
	record.ID = id

	if fileType == metadata.TypeImage && s.queue != nil {
		job := thumbnail.Job{UserID: userID, FileID: id}
		if err := s.queue.Enqueue(ctx, job); err != nil {
			logger.Warn("failed to enqueue thumbnail job for file %s: %v", id, err)
		}
	}

	s.metrics.RecordUpload(string(fileType))
	return record, nil
}

// GetResource returns the record with the given id if it belongs to
// userID. Absence and ownership mismatch both fail with ErrNotFound.
func (s *Service) GetResource(ctx context.Context, userID, id string) (*metadata.FileRecord, error) {
	record, err := s.store.FileByIDForUser(ctx, id, userID)
	if err != nil {
		if metadata.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

// ListResources returns page page of the records owned by userID under
// parentID. An empty parentID means the root. Pages past the end return
// an empty slice.
func (s *Service) ListResources(ctx context.Context, userID, parentID string, page int64) ([]*metadata.FileRecord, error) {
	if parentID == "" {
		parentID = metadata.RootParentID
	}
	if page < 0 {
		page = 0
	}
	if page > maxPage {
		page = maxPage
	}

	records, err := s.store.ListFiles(ctx, userID, parentID, page*PageSize, PageSize)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*metadata.FileRecord{}
	}
	return records, nil
}

// SetVisibility flips the isPublic flag of a record the user owns and
// returns the updated record. Same ownership rule as GetResource.
func (s *Service) SetVisibility(ctx context.Context, userID, id string, isPublic bool) (*metadata.FileRecord, error) {
	record, err := s.store.FileByIDForUser(ctx, id, userID)
	if err != nil {
		if metadata.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.store.SetFilePublic(ctx, record.ID, isPublic); err != nil {
		if metadata.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	record.IsPublic = isPublic
	return record, nil
}

// Content is an open content stream plus its derived MIME type. The
// caller must close Reader.
type Content struct {
	Reader   io.ReadCloser
	MimeType string
}

// ReadContent streams the bytes of a file or image record.
//
// The record is looked up by id alone; if it is private, the token must
// resolve to the owner or the call fails with ErrNotFound rather than
// ErrUnauthorized. Folders have no content. A width in ThumbnailWidths
// selects the corresponding variant blob; any other width is ignored and
// the original content is served. A variant not generated yet fails with
// ErrNotFound, and so does any store failure along the way: a content
// read never exposes whether the id, the blob, or the infrastructure was
// the problem.
func (s *Service) ReadContent(ctx context.Context, token, id string, width int) (*Content, error) {
	record, err := s.store.FileByID(ctx, id)
	if err != nil {
		if !metadata.IsNotFound(err) {
			logger.Error("content read: failed to load record %s: %v", id, err)
		}
		return nil, ErrNotFound
	}

	if !record.IsPublic {
		userID := ""
		if token != "" {
			userID, err = s.sessions.Get(ctx, session.AuthKey(token))
			if err != nil {
				logger.Error("content read: failed to resolve token: %v", err)
				return nil, ErrNotFound
			}
		}
		if userID == "" || userID != record.UserID {
			return nil, ErrNotFound
		}
	}

	if record.Type == metadata.TypeFolder {
		return nil, BadRequest("A folder doesn't have content")
	}

	blobID := record.LocalPath
	if ThumbnailWidths[width] {
		blobID = blob.VariantBlobID(record.LocalPath, width)
	}

	exists, err := s.blobs.BlobExists(ctx, blobID)
	if err != nil {
		logger.Error("content read: failed to check blob %s: %v", blobID, err)
		return nil, ErrNotFound
	}
	if !exists {
		return nil, ErrNotFound
	}

	reader, err := s.blobs.ReadBlob(ctx, blobID)
	if err != nil {
		logger.Error("content read: failed to open blob %s: %v", blobID, err)
		return nil, ErrNotFound
	}

	return &Content{Reader: reader, MimeType: mimeTypeFor(record.Name)}, nil
}

// Stats reports the totals shown by the stats endpoint.
func (s *Service) Stats(ctx context.Context) (users, fileCount int64, err error) {
	users, err = s.store.CountUsers(ctx)
	if err != nil {
		return 0, 0, err
	}
	fileCount, err = s.store.CountFiles(ctx)
	if err != nil {
		return 0, 0, err
	}
	return users, fileCount, nil
}

// Status reports reachability of the session store and the metadata
// store, in that order.
func (s *Service) Status(ctx context.Context) (sessionsAlive, storeAlive bool) {
	return s.sessions.IsAlive(ctx), s.store.Ping(ctx)
}

// mimeTypeFor derives the Content-Type from the record name's extension.
func mimeTypeFor(name string) string {
	if mt := mime.TypeByExtension(filepath.Ext(name)); mt != "" {
		return mt
	}
	return DefaultMimeType
}
