package punchd

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kaitosh/punchd/notify"
)

// TaskRunner binds a named task (check-in, daily report) to a runner, a
// middleware chain, and an optional notifier. Each run is tagged with a run
// ID carried through logs and the final notification report.
type TaskRunner struct {
	*Runner
	name        string
	middlewares []Middleware
	notifier    notify.Notifier
	mu          sync.RWMutex
}

// NewTaskRunner creates a task runner for the named task.
func NewTaskRunner(name string, options ...Option) *TaskRunner {
	return &TaskRunner{
		Runner:   NewRunner(options...),
		name:     name,
		notifier: notify.Nop{},
	}
}

// Name returns the task name.
func (t *TaskRunner) Name() string { return t.name }

// AddMiddleware appends middleware to the chain. Middleware added first runs
// outermost.
func (t *TaskRunner) AddMiddleware(middleware Middleware) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.middlewares = append(t.middlewares, middleware)
}

// SetNotifier installs the notifier receiving the final report of every run.
func (t *TaskRunner) SetNotifier(notifier notify.Notifier) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if notifier == nil {
		notifier = notify.Nop{}
	}
	t.notifier = notifier
}

// Run executes the action through the middleware chain and the retry runner,
// then notifies the final outcome. The returned Result is authoritative; a
// notifier failure is logged but never changes it.
func (t *TaskRunner) Run(ctx context.Context, action Action) Result {
	t.mu.RLock()
	middlewares := t.middlewares
	notifier := t.notifier
	t.mu.RUnlock()

	runID := uuid.NewString()
	logger := t.logger().With(
		slog.String("task", t.name),
		slog.String("run_id", runID))

	logger.Info("task run starting")

	var result Result
	ran := false
	terminal := func(ctx context.Context, fn func(context.Context) error) error {
		ran = true
		result = t.Runner.Run(ctx, Action(fn))
		return result.Err
	}
	err := execute(ctx, middlewares, func(ctx context.Context) error { return action(ctx) }, terminal)
	if !ran {
		// A middleware short-circuited before any attempt was made.
		result = Result{Err: err}
	}

	report := notify.Report{
		Task:      t.name,
		RunID:     runID,
		Succeeded: result.Succeeded,
		Attempts:  result.Attempts,
		Err:       result.Err,
		Finished:  time.Now(),
	}
	if err := notifier.Notify(ctx, report); err != nil {
		logger.Warn("notification failed", slog.Any("error", err))
	}

	if result.Succeeded {
		logger.Info("task run succeeded", slog.Int("attempts", result.Attempts))
	} else {
		logger.Error("task run failed",
			slog.Int("attempts", result.Attempts),
			slog.Any("error", result.Err))
	}
	return result
}

func (t *TaskRunner) logger() *slog.Logger {
	if logger := t.Runner.Config().Logger; logger != nil {
		return logger
	}
	return slog.Default()
}

// execute threads fn through the middleware chain, ending at terminal.
func execute(ctx context.Context, middlewares []Middleware, fn func(context.Context) error, terminal func(context.Context, func(context.Context) error) error) error {
	if len(middlewares) == 0 {
		return terminal(ctx, fn)
	}

	head := middlewares[0]
	rest := middlewares[1:]
	return head.Execute(ctx, fn, func(ctx context.Context, fn func(context.Context) error) error {
		return execute(ctx, rest, fn, terminal)
	})
}
