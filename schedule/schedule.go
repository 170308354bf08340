// Package schedule runs registered jobs on daily cron schedules in a fixed
// timezone, replacing an external cron orchestrator when punchd is run as a
// long-lived daemon.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps a cron runner with timezone-aware schedules and structured
// logging.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a scheduler whose cron specs are interpreted in loc.
func New(loc *time.Location, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(&cronLogger{logger: logger}),
	)
	return &Scheduler{cron: c, logger: logger}
}

// Add registers job under the given cron spec. It returns an error when the
// spec does not parse.
func (s *Scheduler) Add(spec string, job func()) error {
	_, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("cron spec %q: %w", spec, err)
	}
	s.logger.Info("job scheduled", slog.String("spec", spec))
	return nil
}

// Run starts the scheduler and blocks until ctx is cancelled, then stops
// accepting triggers and waits for any in-flight job to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	s.logger.Info("scheduler started")

	<-ctx.Done()

	s.logger.Info("scheduler stopping")
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// cronLogger adapts cron's logging interface onto slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, slog.Any("error", err))...)
}
