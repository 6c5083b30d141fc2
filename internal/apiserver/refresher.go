package apiserver

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	"github.com/robfig/cron/v3"

	"github.com/veaiops/veaiops/internal/apiserver/biz"
)

// taskSweeper periodically re-drives pending threshold tasks and fails
// tasks stuck past their running deadline.
type taskSweeper struct {
	tasks    *biz.TaskService
	interval time.Duration
	cron     *cron.Cron
}

func newTaskSweeper(tasks *biz.TaskService, interval time.Duration) *taskSweeper {
	return &taskSweeper{tasks: tasks, interval: interval}
}

// Name implements server.Runnable.
func (s *taskSweeper) Name() string { return "task-sweeper" }

// Start implements server.Runnable.
func (s *taskSweeper) Start(ctx context.Context) error {
	s.cron = cron.New()
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), s.interval)
		defer cancel()
		s.tasks.Sweep(sweepCtx)
	}); err != nil {
		return fmt.Errorf("failed to schedule task sweep: %w", err)
	}
	s.cron.Start()
	logger.Infow("Task sweeper started", "interval", s.interval.String())
	return nil
}

// Stop implements server.Runnable. It waits for a running sweep to finish
// unless the shutdown context expires first.
func (s *taskSweeper) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
