package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/filedepot/filedepot/internal/logger"
	"github.com/filedepot/filedepot/pkg/config"
	"github.com/filedepot/filedepot/pkg/thumbnail"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: "+config.GetDefaultConfigPath()+")")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.SetLevel(cfg.Logging.Level)

	fmt.Println("filedepot-worker - thumbnail generation worker")
	logger.Info("Log level set to: %s", cfg.Logging.Level)

	ctx := context.Background()

	metadataStore, err := config.CreateMetadataStore(ctx, &cfg.Metadata)
	if err != nil {
		log.Fatalf("Failed to create metadata store: %v", err)
	}
	defer func() {
		if err := metadataStore.Close(context.Background()); err != nil {
			logger.Warn("Failed to close metadata store: %v", err)
		}
	}()
	logger.Info("Metadata store initialized: %s", cfg.Metadata.Type)

	blobStore, err := config.CreateBlobStore(ctx, &cfg.Blob)
	if err != nil {
		log.Fatalf("Failed to create blob store: %v", err)
	}
	logger.Info("Blob store initialized: %s", cfg.Blob.Type)

	m := config.InitializeMetrics(cfg)

	worker := thumbnail.NewWorker(metadataStore, blobStore, m)
	server := thumbnail.NewServer(config.QueueRedisOpt(&cfg.Queue), worker, cfg.Queue.Concurrency)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Run()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Worker is running (queue: %s, concurrency: %d). Press Ctrl+C to stop.",
		cfg.Queue.RedisAddr, cfg.Queue.Concurrency)

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, draining in-flight jobs...")
		server.Shutdown()

		if err := <-serverDone; err != nil {
			logger.Error("Worker shutdown error: %v", err)
			os.Exit(1)
		}
		logger.Info("Worker stopped gracefully")

	case err := <-serverDone:
		if err != nil {
			logger.Error("Worker error: %v", err)
			os.Exit(1)
		}
		logger.Info("Worker stopped")
	}
}
