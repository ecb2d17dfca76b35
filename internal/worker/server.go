package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/intermeet/backend/internal/service"
	"github.com/intermeet/backend/internal/tasks"
	"github.com/intermeet/backend/lib/logger/sl"
)

// Server runs the background task worker plus the scheduler that enqueues the
// periodic room sweep. Sweeping in a worker keeps policy evaluation free of
// cleanup side effects for rooms nobody visits anymore.
type Server struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	rooms     service.RoomInteractor
	log       *slog.Logger
}

func NewServer(redisOpt asynq.RedisClientOpt, rooms service.RoomInteractor, sweepInterval time.Duration, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error("task failed",
				slog.String("task_type", task.Type()),
				sl.Err(err),
			)
		}),
	})

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{})

	srv := &Server{
		server:    server,
		scheduler: scheduler,
		rooms:     rooms,
		log:       log,
	}

	if sweepInterval <= 0 {
		sweepInterval = 10 * time.Minute
	}
	spec := fmt.Sprintf("@every %s", sweepInterval)
	if _, err := scheduler.Register(spec, tasks.NewRoomSweepTask()); err != nil {
		log.Error("failed to register sweep schedule", sl.Err(err))
	}

	return srv
}

// Start runs the worker and scheduler. Blocks until Shutdown.
func (s *Server) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeRoomSweep, s.handleRoomSweep)

	go func() {
		if err := s.scheduler.Run(); err != nil {
			if !errors.Is(err, asynq.ErrServerClosed) {
				s.log.Error("scheduler stopped", sl.Err(err))
			}
		}
	}()

	s.log.Info("worker server starting")
	if err := s.server.Run(mux); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown() {
	s.scheduler.Shutdown()
	s.server.Shutdown()
}

func (s *Server) handleRoomSweep(ctx context.Context, _ *asynq.Task) error {
	swept, err := s.rooms.ExpireStale(ctx)
	if err != nil {
		return err
	}
	s.log.Debug("room sweep completed", slog.Int("swept", swept))
	return nil
}
