package config

import (
	"strings"
	"testing"
)

func defaultTestConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Queue.Enabled = true
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := defaultTestConfig()

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidBlobType(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Blob.Type = "ftp"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for invalid blob store type")
	}
}

func TestValidate_InvalidMetadataType(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Metadata.Type = "postgres"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for unsupported metadata type")
	}
}

func TestValidate_InvalidSessionType(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Session.Type = "memcached"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for unsupported session type")
	}
}

func TestValidate_QueueEnabledWithoutRedis(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Queue.RedisAddr = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for enabled queue without redis_addr")
	}
	if !strings.Contains(err.Error(), "redis_addr") {
		t.Errorf("Expected 'redis_addr' error, got: %v", err)
	}
}

func TestValidate_BurstWithoutRate(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Server.RateLimit = 0
	cfg.Server.RateBurst = 10

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for burst without rate limit")
	}
}

func TestValidate_NegativeRateLimit(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Server.RateLimit = -1

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for negative rate limit")
	}
}
