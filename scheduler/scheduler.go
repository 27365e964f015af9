// Package scheduler recomputes traces on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/vitalvas/mathtrace/xlogger"
)

// Job is run on every tick. The context is cancelled when the scheduler stops.
type Job func(ctx context.Context) error

// Scheduler runs jobs on cron specs with a leading seconds field.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	runs map[string]int
}

func New(ctx context.Context, logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)

	return &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: xlogger.OrDiscard(logger),
		ctx:    ctx,
		cancel: cancel,
		runs:   make(map[string]int),
	}
}

// Register adds job under name. A tick is skipped while the previous run of
// the same job is still in progress.
func (s *Scheduler) Register(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.run(name, job)
	})
	if err != nil {
		return fmt.Errorf("register %s task: %w", name, err)
	}
	return nil
}

// RunNow executes every registered job once on the caller's goroutine.
func (s *Scheduler) RunNow() {
	for _, entry := range s.cron.Entries() {
		entry.WrappedJob.Run()
	}
}

// Runs returns how many times name has run.
func (s *Scheduler) Runs(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.runs[name]
}

func (s *Scheduler) run(name string, job Job) {
	if s.ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	s.runs[name]++
	s.mu.Unlock()

	s.logger.Info("running scheduled task", "task", name)
	if err := job(s.ctx); err != nil {
		s.logger.Error("scheduled task failed", "task", name, "error", err)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop cancels running jobs and returns a context that is done once they
// have returned.
func (s *Scheduler) Stop() context.Context {
	s.cancel()
	ctx := s.cron.Stop()
	s.logger.Info("scheduler stopped")
	return ctx
}
