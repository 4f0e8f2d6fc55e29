// Package api exposes the file service over HTTP.
//
// The surface is a small JSON API authenticated by the X-Token header;
// the only non-JSON response is content retrieval, which streams raw
// bytes with a derived Content-Type.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/filedepot/filedepot/internal/logger"
	"github.com/filedepot/filedepot/internal/ratelimiter"
	"github.com/filedepot/filedepot/pkg/files"
	"github.com/filedepot/filedepot/pkg/metrics"
)

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	// ListenAddr is the host:port to bind to.
	ListenAddr string

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// RateLimit is the sustained requests-per-second budget.
	// Zero disables rate limiting.
	RateLimit float64

	// RateBurst is the burst capacity on top of RateLimit.
	RateBurst int
}

// Server is the HTTP API server.
type Server struct {
	cfg     ServerConfig
	service *files.Service
	metrics metrics.Metrics
	httpSrv *http.Server
}

// NewServer builds the server and its route table.
func NewServer(cfg ServerConfig, service *files.Service, m metrics.Metrics) *Server {
	if m == nil {
		m = metrics.NewMetrics()
	}

	s := &Server{
		cfg:     cfg,
		service: service,
		metrics: m,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.metricsMiddleware())

	if cfg.RateLimit > 0 {
		limiter := ratelimiter.New(uint(cfg.RateLimit), uint(cfg.RateBurst))
		router.Use(rateLimitMiddleware(limiter))
	}

	s.registerRoutes(router)

	s.httpSrv = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	return s
}

func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/status", s.handleStatus)
	router.GET("/stats", s.handleStats)

	// Content retrieval does its own visibility check instead of the
	// auth middleware: public files are readable without a token.
	router.GET("/files/:id/data", s.handleReadContent)

	if metrics.IsEnabled() {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
			metrics.GetRegistry(),
			promhttp.HandlerOpts{},
		)))
	}

	authed := router.Group("/", s.authMiddleware())
	authed.GET("/users/me", s.handleUsersMe)
	authed.POST("/files", s.handleCreateFile)
	authed.GET("/files/:id", s.handleGetFile)
	authed.GET("/files", s.handleListFiles)
	authed.PUT("/files/:id/publish", s.handlePublish(true))
	authed.PUT("/files/:id/unpublish", s.handlePublish(false))
}

// Run serves requests until the context is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		logger.Info("API server listening on %s", s.cfg.ListenAddr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	return s.httpSrv.Shutdown(shutdownCtx)
}

// Handler returns the underlying HTTP handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}
