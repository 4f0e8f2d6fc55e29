package thumbnail

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/filedepot/filedepot/internal/logger"
)

// Server consumes thumbnail jobs from the queue and dispatches them to a
// Worker. It wraps an asynq server so the worker binary only deals in
// Jobs, never raw tasks.
type Server struct {
	srv    *asynq.Server
	worker *Worker
}

// NewServer creates a queue consumer with the given concurrency. A
// concurrency of zero or less falls back to asynq's default.
func NewServer(redisOpt asynq.RedisClientOpt, worker *Worker, concurrency int) *Server {
	cfg := asynq.Config{
		Concurrency: concurrency,
		Logger:      asynqLogger{},
	}

	return &Server{
		srv:    asynq.NewServer(redisOpt, cfg),
		worker: worker,
	}
}

// Run processes jobs until Shutdown is called. It blocks.
func (s *Server) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeGenerate, s.handleGenerate)

	if err := s.srv.Run(mux); err != nil {
		return fmt.Errorf("thumbnail server stopped: %w", err)
	}
	return nil
}

// Shutdown waits for in-flight jobs and stops the server.
func (s *Server) Shutdown() {
	s.srv.Shutdown()
}

func (s *Server) handleGenerate(ctx context.Context, task *asynq.Task) error {
	job, err := UnmarshalJob(task.Payload())
	if err != nil {
		// A payload that does not decode will never decode.
		return fmt.Errorf("malformed thumbnail job payload: %v: %w", err, asynq.SkipRetry)
	}

	return s.worker.ProcessJob(ctx, job)
}

// asynqLogger routes asynq's internal logging through the service logger.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...any) { logger.Debug("%s", fmt.Sprint(args...)) }
func (asynqLogger) Info(args ...any)  { logger.Info("%s", fmt.Sprint(args...)) }
func (asynqLogger) Warn(args ...any)  { logger.Warn("%s", fmt.Sprint(args...)) }
func (asynqLogger) Error(args ...any) { logger.Error("%s", fmt.Sprint(args...)) }
func (asynqLogger) Fatal(args ...any) { logger.Error("%s", fmt.Sprint(args...)) }
