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
	"github.com/filedepot/filedepot/pkg/api"
	"github.com/filedepot/filedepot/pkg/config"
	"github.com/filedepot/filedepot/pkg/files"
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

	fmt.Println("filedepot - file storage API")
	logger.Info("Log level set to: %s", cfg.Logging.Level)

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	sessionStore, err := config.CreateSessionStore(ctx, &cfg.Session)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}
	logger.Info("Session store initialized: %s", cfg.Session.Type)

	var queue thumbnail.Queue
	if cfg.Queue.Enabled {
		asynqQueue := thumbnail.NewAsynqQueue(config.QueueRedisOpt(&cfg.Queue))
		defer func() { _ = asynqQueue.Close() }()
		queue = asynqQueue
		logger.Info("Thumbnail queue enabled: %s", cfg.Queue.RedisAddr)
	} else {
		logger.Info("Thumbnail queue disabled: image uploads will not get variants")
	}

	m := config.InitializeMetrics(cfg)

	service := files.NewService(metadataStore, blobStore, sessionStore, queue, m)

	server := api.NewServer(api.ServerConfig{
		ListenAddr:      cfg.Server.ListenAddr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RateLimit:       cfg.Server.RateLimit,
		RateBurst:       cfg.Server.RateBurst,
	}, service, m)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running on %s. Press Ctrl+C to stop.", cfg.Server.ListenAddr)

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown...")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error: %v", err)
			os.Exit(1)
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		if err != nil {
			logger.Error("Server error: %v", err)
			os.Exit(1)
		}
		logger.Info("Server stopped")
	}
}
