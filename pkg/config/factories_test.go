package config

import (
	"context"
	"testing"
)

func TestCreateBlobStore_Memory(t *testing.T) {
	store, err := CreateBlobStore(context.Background(), &BlobConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("Failed to create memory blob store: %v", err)
	}
	if store == nil {
		t.Fatal("Expected non-nil store")
	}
}

func TestCreateBlobStore_Filesystem(t *testing.T) {
	cfg := &BlobConfig{
		Type:       "filesystem",
		Filesystem: map[string]any{"path": t.TempDir()},
	}

	store, err := CreateBlobStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create filesystem blob store: %v", err)
	}
	if store == nil {
		t.Fatal("Expected non-nil store")
	}
}

func TestCreateBlobStore_S3RequiresBucket(t *testing.T) {
	cfg := &BlobConfig{
		Type: "s3",
		S3:   map[string]any{"region": "us-east-1"},
	}

	if _, err := CreateBlobStore(context.Background(), cfg); err == nil {
		t.Fatal("Expected error for S3 store without bucket")
	}
}

func TestCreateBlobStore_UnknownType(t *testing.T) {
	if _, err := CreateBlobStore(context.Background(), &BlobConfig{Type: "carrier-pigeon"}); err == nil {
		t.Fatal("Expected error for unknown blob store type")
	}
}

func TestCreateMetadataStore_Memory(t *testing.T) {
	store, err := CreateMetadataStore(context.Background(), &MetadataConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("Failed to create memory metadata store: %v", err)
	}
	defer func() { _ = store.Close(context.Background()) }()
}

func TestCreateMetadataStore_Badger(t *testing.T) {
	cfg := &MetadataConfig{
		Type:   "badger",
		Badger: map[string]any{"db_path": t.TempDir()},
	}

	store, err := CreateMetadataStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create badger metadata store: %v", err)
	}
	defer func() { _ = store.Close(context.Background()) }()
}

func TestCreateMetadataStore_BadgerRequiresPath(t *testing.T) {
	cfg := &MetadataConfig{Type: "badger", Badger: map[string]any{}}

	if _, err := CreateMetadataStore(context.Background(), cfg); err == nil {
		t.Fatal("Expected error for badger store without db_path")
	}
}

func TestCreateMetadataStore_MongoRequiresURI(t *testing.T) {
	cfg := &MetadataConfig{Type: "mongo", Mongo: map[string]any{"database": "files"}}

	if _, err := CreateMetadataStore(context.Background(), cfg); err == nil {
		t.Fatal("Expected error for mongo store without uri")
	}
}

func TestCreateSessionStore_Memory(t *testing.T) {
	store, err := CreateSessionStore(context.Background(), &SessionConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("Failed to create memory session store: %v", err)
	}
	if store == nil {
		t.Fatal("Expected non-nil store")
	}
}

func TestCreateSessionStore_RedisRequiresAddr(t *testing.T) {
	cfg := &SessionConfig{Type: "redis", Redis: map[string]any{}}

	if _, err := CreateSessionStore(context.Background(), cfg); err == nil {
		t.Fatal("Expected error for redis store without addr")
	}
}

func TestQueueRedisOpt(t *testing.T) {
	opt := QueueRedisOpt(&QueueConfig{RedisAddr: "localhost:6380", RedisDB: 2})

	if opt.Addr != "localhost:6380" {
		t.Errorf("Expected addr localhost:6380, got %q", opt.Addr)
	}
	if opt.DB != 2 {
		t.Errorf("Expected db 2, got %d", opt.DB)
	}
}
