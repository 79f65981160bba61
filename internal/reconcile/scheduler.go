package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs a pass every minute.
const DefaultSchedule = "@every 1m"

// Scheduler runs reconciliation passes on a cron schedule. A pass that is
// still running when the next one is due causes that tick to be skipped.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers r to run on schedule, which accepts standard five
// field cron expressions and descriptors such as "@every 30s". Each pass is
// bounded by timeout.
func NewScheduler(r *Reconciler, schedule string, timeout time.Duration, logger *slog.Logger) (*Scheduler, error) {
	log := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := r.Run(ctx); err != nil {
			logger.Error("Reconciliation failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
	}
	return &Scheduler{cron: c}, nil
}

// Start begins running passes in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling. The returned context is done once a running pass
// has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
