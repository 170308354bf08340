// Package notify defines the collaborator that informs a user how a task run
// ended. Concrete push transports (WxPusher, webhooks, mail) live outside
// this module and plug in through the Notifier interface; when nothing is
// configured, notification is simply skipped.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Report is the final outcome of one task run, handed to notifiers after the
// run completes.
type Report struct {
	Task      string
	RunID     string
	Succeeded bool
	Attempts  int
	Err       error
	Finished  time.Time
}

// Summary renders a one-line human-readable outcome message.
func (r Report) Summary() string {
	if r.Succeeded {
		return fmt.Sprintf("%s succeeded on attempt %d at %s",
			r.Task, r.Attempts, r.Finished.Format("2006-01-02 15:04:05"))
	}
	return fmt.Sprintf("%s failed after %d attempts at %s: %v",
		r.Task, r.Attempts, r.Finished.Format("2006-01-02 15:04:05"), r.Err)
}

// Notifier forwards a final run report to the user. A notifier failure never
// affects the run outcome.
type Notifier interface {
	Notify(ctx context.Context, report Report) error
}

// Nop is the notifier used when none is configured.
type Nop struct{}

func (Nop) Notify(context.Context, Report) error { return nil }

// LogNotifier writes the report to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, report Report) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{
		slog.String("task", report.Task),
		slog.String("run_id", report.RunID),
		slog.Int("attempts", report.Attempts),
		slog.Time("finished", report.Finished),
	}
	if report.Succeeded {
		logger.Info(report.Summary(), attrs...)
	} else {
		logger.Error(report.Summary(), append(attrs, slog.Any("error", report.Err))...)
	}
	return nil
}

// Multi fans a report out to several notifiers; every notifier is attempted
// and the errors are joined.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, report Report) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
