package config

import (
	"strings"
	"time"

	"github.com/filedepot/filedepot/pkg/blob/fs"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and
// environment variables to fill in any missing values.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Store-specific defaults are handled by store implementations
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyBlobDefaults(&cfg.Blob)
	applyMetadataDefaults(&cfg.Metadata)
	applySessionDefaults(&cfg.Session)
	applyQueueDefaults(&cfg.Queue)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)
}

// applyServerDefaults sets server defaults.
func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":5000"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.RateLimit > 0 && cfg.RateBurst == 0 {
		cfg.RateBurst = int(cfg.RateLimit)
	}
}

// applyBlobDefaults sets blob store defaults.
func applyBlobDefaults(cfg *BlobConfig) {
	if cfg.Type == "" {
		cfg.Type = "filesystem"
	}

	if cfg.Filesystem == nil {
		cfg.Filesystem = make(map[string]any)
	}
	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}
	if cfg.S3 == nil {
		cfg.S3 = make(map[string]any)
	}

	if _, ok := cfg.Filesystem["path"]; !ok {
		cfg.Filesystem["path"] = fs.DefaultRoot
	}
}

// applyMetadataDefaults sets metadata store defaults.
func applyMetadataDefaults(cfg *MetadataConfig) {
	if cfg.Type == "" {
		cfg.Type = "mongo"
	}

	if cfg.Mongo == nil {
		cfg.Mongo = make(map[string]any)
	}
	if cfg.Badger == nil {
		cfg.Badger = make(map[string]any)
	}
	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}

	if _, ok := cfg.Mongo["uri"]; !ok {
		cfg.Mongo["uri"] = "mongodb://localhost:27017"
	}
	if _, ok := cfg.Mongo["database"]; !ok {
		cfg.Mongo["database"] = "files_manager"
	}
}

// applySessionDefaults sets session store defaults.
func applySessionDefaults(cfg *SessionConfig) {
	if cfg.Type == "" {
		cfg.Type = "redis"
	}

	if cfg.Redis == nil {
		cfg.Redis = make(map[string]any)
	}

	if _, ok := cfg.Redis["addr"]; !ok {
		cfg.Redis["addr"] = "localhost:6379"
	}
}

// applyQueueDefaults sets thumbnail queue defaults.
func applyQueueDefaults(cfg *QueueConfig) {
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 4
	}
}
