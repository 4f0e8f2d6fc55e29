// Package s3 implements blob storage on Amazon S3 or any S3-compatible
// service (MinIO, Localstack).
//
// Object keys are the blob id with an optional prefix, so thumbnail
// variants keep the sibling-with-suffix convention used by the filesystem
// backend. No local caching: every read hits S3.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/filedepot/filedepot/pkg/blob"
	"github.com/filedepot/filedepot/pkg/metadata"
)

// S3Store implements blob.Store on an S3 bucket.
//
// Thread safety:
// Safe for concurrent use. Concurrent writes to the same id are
// last-write-wins under S3's consistency model, which matches the
// overwrite-idempotent contract of thumbnail regeneration.
type S3Store struct {
	client    *awss3.Client
	bucket    string
	keyPrefix string
}

// S3StoreConfig configures the S3 blob store.
type S3StoreConfig struct {
	// Client is the configured S3 client.
	Client *awss3.Client

	// Bucket is the bucket name. Must already exist.
	Bucket string

	// KeyPrefix is an optional prefix for all object keys.
	// Example: "filedepot/" results in keys like "filedepot/abc123".
	KeyPrefix string
}

// NewS3Store creates an S3 blob store. The bucket must already exist;
// this does not create it.
func NewS3Store(ctx context.Context, cfg S3StoreConfig) (*S3Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	return &S3Store{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

func (s *S3Store) key(id metadata.BlobID) string {
	return s.keyPrefix + string(id)
}

// isNotFound reports whether err is an S3 "object does not exist" error.
// HeadObject returns NotFound, GetObject returns NoSuchKey.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}

// WriteBlob uploads data under the blob's object key.
func (s *S3Store) WriteBlob(ctx context.Context, id metadata.BlobID, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to write blob %s to s3: %w", id, err)
	}
	return nil
}

// ReadBlob returns the object body as a streaming reader.
func (s *S3Store) ReadBlob(ctx context.Context, id metadata.BlobID) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("blob %s: %w", id, blob.ErrBlobNotFound)
		}
		return nil, fmt.Errorf("failed to read blob %s from s3: %w", id, err)
	}
	return result.Body, nil
}

// BlobExists checks object existence with a HeadObject request.
func (s *S3Store) BlobExists(ctx context.Context, id metadata.BlobID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat blob %s on s3: %w", id, err)
	}
	return true, nil
}
