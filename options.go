package punchd

import "log/slog"

// Option functions for configuring the runner.

// WithPolicy sets the retry policy.
func WithPolicy(policy Policy) Option {
	return func(c *RunnerConfig) {
		c.Policy = policy
	}
}

// WithMaxAttempts sets the attempt budget, keeping the rest of the policy.
func WithMaxAttempts(max int) Option {
	return func(c *RunnerConfig) {
		c.Policy.MaxAttempts = max
	}
}

// WithDelayStrategy overrides the delay strategy derived from the policy.
func WithDelayStrategy(strategy DelayStrategy) Option {
	return func(c *RunnerConfig) {
		c.DelayStrategy = strategy
	}
}

// WithErrorFilter sets the filter deciding which errors are retried.
func WithErrorFilter(filter ErrorFilter) Option {
	return func(c *RunnerConfig) {
		c.ErrorFilter = filter
	}
}

// WithOnRetry sets the hook invoked after a failed attempt, before the wait.
func WithOnRetry(hook Hook) Option {
	return func(c *RunnerConfig) {
		c.OnRetry = hook
	}
}

// WithOnSuccess sets the hook invoked on the succeeding attempt.
func WithOnSuccess(hook Hook) Option {
	return func(c *RunnerConfig) {
		c.OnSuccess = hook
	}
}

// WithOnFinalError sets the hook invoked when no further attempts will be made.
func WithOnFinalError(hook Hook) Option {
	return func(c *RunnerConfig) {
		c.OnFinalError = hook
	}
}

// WithLogger sets the logger used for attempt and wait diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *RunnerConfig) {
		c.Logger = logger
	}
}
