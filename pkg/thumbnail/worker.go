package thumbnail

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/filedepot/filedepot/internal/logger"
	"github.com/filedepot/filedepot/pkg/blob"
	"github.com/filedepot/filedepot/pkg/metadata"
	"github.com/filedepot/filedepot/pkg/metrics"
)

// Worker generates resized image variants for uploaded images.
//
// Jobs arrive from the queue after each image upload; the worker loads
// the record, verifies ownership, and writes one variant blob per
// configured width next to the original.
type Worker struct {
	store   metadata.Store
	blobs   blob.Store
	metrics metrics.Metrics
}

// NewWorker creates a thumbnail worker backed by the given stores.
func NewWorker(store metadata.Store, blobs blob.Store, m metrics.Metrics) *Worker {
	if m == nil {
		m = metrics.NewMetrics()
	}

	return &Worker{
		store:   store,
		blobs:   blobs,
		metrics: m,
	}
}

// fatal marks an error as non-retryable. Malformed jobs and jobs that
// reference missing records can never succeed, so retrying them only
// wastes queue capacity.
func fatal(msg string) error {
	return fmt.Errorf("%s: %w", msg, asynq.SkipRetry)
}

// ProcessJob handles a single thumbnail job.
//
// Missing job fields and unknown records fail without retry. Non-image
// resources are skipped. Storage errors are returned as-is so the queue
// retries them.
func (w *Worker) ProcessJob(ctx context.Context, job Job) error {
	start := time.Now()
	outcome := "error"

	defer func() {
		w.metrics.RecordThumbnailJob(outcome, time.Since(start))
	}()

	if job.FileID == "" {
		outcome = "fatal"
		return fatal("Missing fileId")
	}

	if job.UserID == "" {
		outcome = "fatal"
		return fatal("Missing userId")
	}

	record, err := w.store.FileByIDForUser(ctx, job.FileID, job.UserID)
	if err != nil {
		if metadata.IsNotFound(err) {
			outcome = "fatal"
			return fatal("File not found")
		}

		return fmt.Errorf("loading file %s: %w", job.FileID, err)
	}

	if record.Type != metadata.TypeImage {
		logger.Debug("thumbnail: skipping non-image resource %s", record.ID)
		outcome = "skipped"
		return nil
	}

	data, err := blob.ReadAll(ctx, w.blobs, record.LocalPath)
	if err != nil {
		return fmt.Errorf("reading blob for file %s: %w", record.ID, err)
	}

	for _, width := range Widths {
		resized, err := Resize(data, width)
		if err != nil {
			return fmt.Errorf("resizing file %s to width %d: %w", record.ID, width, err)
		}

		variantID := blob.VariantBlobID(record.LocalPath, width)
		if err := w.blobs.WriteBlob(ctx, variantID, resized); err != nil {
			return fmt.Errorf("writing %d-wide variant of file %s: %w", width, record.ID, err)
		}
	}

	logger.Info("thumbnail: generated %d variants for file %s", len(Widths), record.ID)
	outcome = "ok"
	return nil
}
