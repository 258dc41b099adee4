package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Job is a unit of periodic maintenance work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler owns the maintenance loop: ticks on an interval and runs each job sequentially.
type Scheduler struct {
	jobs     []Job
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that runs all jobs at the given interval.
func NewScheduler(jobs []Job, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		jobs:     jobs,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the loop. It runs one immediate cycle, then ticks on the
// configured interval. It returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"jobs", len(s.jobs),
	)

	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.RunOnce(ctx)
		}
	}
}

// RunOnce runs every job once. A failing job is logged and does not stop
// the others.
func (s *Scheduler) RunOnce(ctx context.Context) {
	for _, j := range s.jobs {
		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		if err := j.Run(ctx); err != nil {
			s.logger.Error("job failed",
				"job", j.Name(),
				"error", err,
			)
			continue
		}
		s.logger.Debug("job complete", "job", j.Name(), "elapsed", time.Since(start))
	}
}
