package config

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hibiken/asynq"
	"github.com/mitchellh/mapstructure"

	"github.com/filedepot/filedepot/internal/logger"
	"github.com/filedepot/filedepot/pkg/blob"
	blobFs "github.com/filedepot/filedepot/pkg/blob/fs"
	blobMemory "github.com/filedepot/filedepot/pkg/blob/memory"
	blobS3 "github.com/filedepot/filedepot/pkg/blob/s3"
	"github.com/filedepot/filedepot/pkg/metadata"
	metadataBadger "github.com/filedepot/filedepot/pkg/metadata/badger"
	metadataMemory "github.com/filedepot/filedepot/pkg/metadata/memory"
	metadataMongo "github.com/filedepot/filedepot/pkg/metadata/mongo"
	"github.com/filedepot/filedepot/pkg/session"
	sessionMemory "github.com/filedepot/filedepot/pkg/session/memory"
	sessionRedis "github.com/filedepot/filedepot/pkg/session/redis"
)

// CreateBlobStore creates a blob store based on configuration.
//
// This factory function uses the Type field to determine which store
// implementation to create, then decodes the type-specific configuration
// from the corresponding map and passes it to the store's constructor.
//
// Supported types:
//   - "filesystem": Uses pkg/blob/fs (local filesystem storage)
//   - "memory": Uses pkg/blob/memory (ephemeral, tests and demos)
//   - "s3": Uses pkg/blob/s3 (Amazon S3 or compatible storage)
func CreateBlobStore(ctx context.Context, cfg *BlobConfig) (blob.Store, error) {
	switch cfg.Type {
	case "filesystem":
		return createFilesystemBlobStore(ctx, cfg.Filesystem)
	case "memory":
		return blobMemory.NewMemoryStore(), nil
	case "s3":
		return createS3BlobStore(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown blob store type: %q", cfg.Type)
	}
}

// createFilesystemBlobStore creates a filesystem-based blob store.
func createFilesystemBlobStore(ctx context.Context, options map[string]any) (blob.Store, error) {
	type FilesystemBlobStoreConfig struct {
		Path string `mapstructure:"path"`
	}

	var storeCfg FilesystemBlobStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode filesystem blob store config: %w", err)
	}

	if storeCfg.Path == "" {
		storeCfg.Path = blobFs.DefaultRoot
	}

	store, err := blobFs.NewFSStore(ctx, storeCfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem blob store: %w", err)
	}

	return store, nil
}

// createS3BlobStore creates an S3-based blob store.
func createS3BlobStore(ctx context.Context, options map[string]any) (blob.Store, error) {
	type S3BlobStoreConfig struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	var storeCfg S3BlobStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode S3 blob store config: %w", err)
	}

	if storeCfg.Bucket == "" {
		return nil, fmt.Errorf("S3 blob store: bucket is required")
	}
	if storeCfg.Region == "" {
		return nil, fmt.Errorf("S3 blob store: region is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error

	configOptions = append(configOptions, awsConfig.WithRegion(storeCfg.Region))

	// Custom endpoint supports MinIO, Localstack, etc.
	if storeCfg.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               storeCfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Static credentials if provided, otherwise the default chain
	if storeCfg.AccessKeyID != "" && storeCfg.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			storeCfg.AccessKeyID,
			storeCfg.SecretAccessKey,
			"",
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := storeCfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Path-style addressing for compatibility with MinIO/Localstack
		if storeCfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	store, err := blobS3.NewS3Store(ctx, blobS3.S3StoreConfig{
		Client:    client,
		Bucket:    storeCfg.Bucket,
		KeyPrefix: storeCfg.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 blob store: %w", err)
	}

	logger.Info("S3 blob store initialized: bucket=%s, region=%s, prefix=%s",
		storeCfg.Bucket, storeCfg.Region, storeCfg.KeyPrefix)

	return store, nil
}

// CreateMetadataStore creates a metadata store based on configuration.
//
// Supported types:
//   - "mongo": Uses pkg/metadata/mongo (document store, primary target)
//   - "badger": Uses pkg/metadata/badger (embedded persistent storage)
//   - "memory": Uses pkg/metadata/memory (ephemeral, tests only)
func CreateMetadataStore(ctx context.Context, cfg *MetadataConfig) (metadata.Store, error) {
	switch cfg.Type {
	case "mongo":
		return createMongoMetadataStore(ctx, cfg.Mongo)
	case "badger":
		return createBadgerMetadataStore(ctx, cfg.Badger)
	case "memory":
		return metadataMemory.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown metadata store type: %q (supported: mongo, badger, memory)", cfg.Type)
	}
}

// createMongoMetadataStore creates a MongoDB-backed metadata store.
func createMongoMetadataStore(ctx context.Context, options map[string]any) (metadata.Store, error) {
	type MongoMetadataStoreOptions struct {
		URI            string        `mapstructure:"uri"`
		Database       string        `mapstructure:"database"`
		ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	}

	var storeOpts MongoMetadataStoreOptions
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     &storeOpts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(options); err != nil {
		return nil, fmt.Errorf("failed to decode mongo metadata store options: %w", err)
	}

	if storeOpts.URI == "" {
		return nil, fmt.Errorf("mongo metadata store: uri is required")
	}
	if storeOpts.Database == "" {
		return nil, fmt.Errorf("mongo metadata store: database is required")
	}

	store, err := metadataMongo.NewMongoStore(ctx, metadataMongo.MongoStoreConfig{
		URI:            storeOpts.URI,
		Database:       storeOpts.Database,
		ConnectTimeout: storeOpts.ConnectTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo metadata store: %w", err)
	}

	return store, nil
}

// createBadgerMetadataStore creates a BadgerDB-backed metadata store.
func createBadgerMetadataStore(ctx context.Context, options map[string]any) (metadata.Store, error) {
	type BadgerMetadataStoreOptions struct {
		DBPath   string `mapstructure:"db_path"`
		InMemory bool   `mapstructure:"in_memory"`
	}

	var storeOpts BadgerMetadataStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode badger metadata store options: %w", err)
	}

	if storeOpts.DBPath == "" && !storeOpts.InMemory {
		return nil, fmt.Errorf("badger metadata store: db_path is required")
	}

	store, err := metadataBadger.NewBadgerStore(ctx, metadataBadger.BadgerStoreConfig{
		DBPath:   storeOpts.DBPath,
		InMemory: storeOpts.InMemory,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create badger metadata store: %w", err)
	}

	return store, nil
}

// CreateSessionStore creates a session store based on configuration.
//
// Supported types:
//   - "redis": Uses pkg/session/redis (shared with the auth service)
//   - "memory": Uses pkg/session/memory (ephemeral, tests only)
func CreateSessionStore(ctx context.Context, cfg *SessionConfig) (session.Store, error) {
	switch cfg.Type {
	case "redis":
		return createRedisSessionStore(ctx, cfg.Redis)
	case "memory":
		return sessionMemory.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session store type: %q (supported: redis, memory)", cfg.Type)
	}
}

// createRedisSessionStore creates a Redis-backed session store.
func createRedisSessionStore(ctx context.Context, options map[string]any) (session.Store, error) {
	type RedisSessionStoreOptions struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	}

	var storeOpts RedisSessionStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode redis session store options: %w", err)
	}

	if storeOpts.Addr == "" {
		return nil, fmt.Errorf("redis session store: addr is required")
	}

	store, err := sessionRedis.NewRedisStore(ctx, sessionRedis.RedisStoreConfig{
		Addr:     storeOpts.Addr,
		Password: storeOpts.Password,
		DB:       storeOpts.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis session store: %w", err)
	}

	return store, nil
}

// QueueRedisOpt builds the asynq Redis connection options from the queue
// configuration. Shared by the producer (API server) and the consumer
// (worker binary) so both sides always point at the same queue.
func QueueRedisOpt(cfg *QueueConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}
