package punchd

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kaitosh/punchd/strategies"
)

// RunnerConfig holds configuration for retry behavior.
type RunnerConfig struct {
	Policy        Policy
	DelayStrategy DelayStrategy
	ErrorFilter   ErrorFilter
	OnRetry       Hook
	OnSuccess     Hook
	OnFinalError  Hook
	Logger        *slog.Logger
}

// Runner executes actions under a retry policy. A Runner is safe for
// concurrent use; each Run invocation is strictly sequential internally, with
// exactly one attempt in flight at a time.
type Runner struct {
	config RunnerConfig
	mu     sync.RWMutex
}

// Option represents a configuration option for Runner.
type Option func(*RunnerConfig)

// NewRunner creates a new runner with the given options.
func NewRunner(options ...Option) *Runner {
	config := RunnerConfig{
		Policy:      DefaultPolicy(),
		ErrorFilter: RetryAllErrors,
	}

	for _, option := range options {
		option(&config)
	}

	return &Runner{config: config}
}

// Run attempts action up to Policy.MaxAttempts times, waiting between failed
// attempts with exponentially increasing delays. It stops at the first
// success. The wait is cancellable: when ctx is done, Run returns without
// further attempts. An invalid policy fails immediately with a ConfigError
// and zero attempts.
func (r *Runner) Run(ctx context.Context, action Action) Result {
	r.mu.RLock()
	config := r.config
	r.mu.RUnlock()

	if err := config.Policy.Validate(); err != nil {
		return Result{Attempts: 0, Err: err}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	strategy := config.DelayStrategy
	if strategy == nil {
		strategy = strategies.NewExponential(config.Policy.InitialDelay, config.Policy.BackoffFactor)
	}
	strategy.Reset()

	var lastErr error
	var lastDelay time.Duration

	for attempt := 1; attempt <= config.Policy.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return Result{Attempts: attempt - 1, Err: fmt.Errorf("run cancelled: %w", ctx.Err())}
		default:
		}

		err := runAttempt(ctx, action)
		if err == nil {
			if config.OnSuccess != nil {
				config.OnSuccess(ctx, attempt, nil, 0)
			}
			logger.Info("attempt succeeded",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", config.Policy.MaxAttempts))
			return Result{Succeeded: true, Attempts: attempt}
		}

		lastErr = err
		logger.Warn("attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", config.Policy.MaxAttempts),
			slog.Int("remaining", config.Policy.MaxAttempts-attempt),
			slog.Any("error", err))

		if config.ErrorFilter != nil && !config.ErrorFilter(err) {
			if config.OnFinalError != nil {
				config.OnFinalError(ctx, attempt, err, 0)
			}
			return Result{Attempts: attempt, Err: fmt.Errorf("non-retryable error: %w", err)}
		}

		if attempt == config.Policy.MaxAttempts {
			break
		}

		delay := strategy.NextDelay(attempt, lastDelay)
		lastDelay = delay

		if config.OnRetry != nil {
			config.OnRetry(ctx, attempt, err, delay)
		}
		logger.Info("waiting before retry",
			slog.Duration("delay", delay),
			slog.Int("next_attempt", attempt+1))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Result{Attempts: attempt, Err: fmt.Errorf("run cancelled: %w", ctx.Err())}
		case <-timer.C:
		}
	}

	if config.OnFinalError != nil {
		config.OnFinalError(ctx, config.Policy.MaxAttempts, lastErr, 0)
	}
	return Result{
		Attempts: config.Policy.MaxAttempts,
		Err:      &ExhaustedError{Attempts: config.Policy.MaxAttempts, LastErr: lastErr},
	}
}

// runAttempt invokes the action, converting a panic into that attempt's
// failure so a misbehaving action is still subject to retry.
func runAttempt(ctx context.Context, action Action) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("action panicked: %v", rec)
		}
	}()
	return action(ctx)
}

// UpdateConfig updates the runner configuration.
func (r *Runner) UpdateConfig(options ...Option) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, option := range options {
		option(&r.config)
	}
}

// Config returns a copy of the current configuration.
func (r *Runner) Config() RunnerConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.config
}
