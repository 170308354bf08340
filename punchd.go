// Package punchd provides a retry runner for scheduled portal submissions.
// It executes a caller-supplied action up to a configured number of attempts
// with exponentially increasing delays between failures, and reports how the
// run ended. The actual submission (login, form post, browser automation) is
// an injected collaborator; punchd only drives attempts and interprets their
// outcomes.
package punchd

import (
	"context"
	"errors"
	"time"
)

// Action performs one login/submit cycle. A nil return means the submission
// succeeded. The action is called at most once at a time, never concurrently,
// and must be safe to call again after a failure: the remote portal is
// expected to deduplicate repeated submissions, or the action must check
// current status before resubmitting.
type Action func(ctx context.Context) error

// DelayStrategy defines how delays are calculated between attempts.
type DelayStrategy interface {
	NextDelay(attempt int, lastDelay time.Duration) time.Duration
	Reset()
}

// ErrorFilter determines if an error should trigger another attempt.
type ErrorFilter func(error) bool

// Hook is a callback invoked on retry events.
type Hook func(ctx context.Context, attempt int, err error, nextDelay time.Duration)

// Middleware wraps task execution for cross-cutting concerns (metrics,
// notification). Implementations call next to continue the chain.
type Middleware interface {
	Execute(ctx context.Context, fn func(context.Context) error, next func(context.Context, func(context.Context) error) error) error
}

// Policy is the immutable retry configuration for one use case. Check-in and
// daily report each carry their own Policy.
type Policy struct {
	// MaxAttempts is the number of tries before giving up. Must be >= 1.
	MaxAttempts int
	// InitialDelay is the wait before the second attempt.
	InitialDelay time.Duration
	// BackoffFactor multiplies the delay after each failed attempt. Must be >= 1.
	BackoffFactor float64
}

// Default policy values, matching the documented environment defaults.
var (
	DefaultMaxAttempts   = 3
	DefaultInitialDelay  = 90 * time.Second
	DefaultBackoffFactor = 1.5
)

// DefaultPolicy returns the documented default policy: 3 attempts, 90s
// initial delay, 1.5 backoff factor.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:   DefaultMaxAttempts,
		InitialDelay:  DefaultInitialDelay,
		BackoffFactor: DefaultBackoffFactor,
	}
}

// Validate reports a ConfigError if the policy is unusable. A runner rejects
// an invalid policy before making any attempt.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return &ConfigError{Field: "MaxAttempts", Reason: "must be at least 1"}
	}
	if p.InitialDelay < 0 {
		return &ConfigError{Field: "InitialDelay", Reason: "must not be negative"}
	}
	if p.BackoffFactor < 1 {
		return &ConfigError{Field: "BackoffFactor", Reason: "must be at least 1"}
	}
	return nil
}

// Result describes how a run ended. Attempts is the number of action calls
// made; on success it is the index of the succeeding attempt. Err is nil on
// success, otherwise the terminal error (an *ExhaustedError when the attempt
// budget ran out).
type Result struct {
	Succeeded bool
	Attempts  int
	Err       error
}

// Common error filters.
var (
	RetryAllErrors = func(err error) bool { return true }

	// RetryTransientErrors stops retrying once the surrounding context is
	// done; everything else is treated as transient.
	RetryTransientErrors = func(err error) bool {
		if errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, context.Canceled) {
			return false
		}
		return true
	}
)
