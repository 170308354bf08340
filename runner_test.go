package punchd

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func fastPolicy(maxAttempts int) Policy {
	return Policy{MaxAttempts: maxAttempts, InitialDelay: time.Millisecond, BackoffFactor: 1.5}
}

func TestRunner_Run_Success(t *testing.T) {
	runner := NewRunner(WithPolicy(fastPolicy(3)))
	ctx := context.Background()

	attempts := 0
	result := runner.Run(ctx, func(ctx context.Context) error {
		attempts++
		return nil
	})

	if !result.Succeeded {
		t.Errorf("Expected success, got %+v", result)
	}
	if result.Attempts != 1 || attempts != 1 {
		t.Errorf("Expected 1 attempt, got result=%d calls=%d", result.Attempts, attempts)
	}
	if result.Err != nil {
		t.Errorf("Expected nil error, got %v", result.Err)
	}
}

func TestRunner_Run_EventualSuccess(t *testing.T) {
	runner := NewRunner(WithPolicy(fastPolicy(3)))
	ctx := context.Background()

	attempts := 0
	result := runner.Run(ctx, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary failure")
		}
		return nil
	})

	if !result.Succeeded {
		t.Errorf("Expected success, got %+v", result)
	}
	if result.Attempts != 3 || attempts != 3 {
		t.Errorf("Expected 3 attempts, got result=%d calls=%d", result.Attempts, attempts)
	}
}

func TestRunner_Run_Exhausted(t *testing.T) {
	runner := NewRunner(WithPolicy(fastPolicy(3)))
	ctx := context.Background()

	lastErr := errors.New("persistent failure")
	attempts := 0
	result := runner.Run(ctx, func(ctx context.Context) error {
		attempts++
		return lastErr
	})

	if result.Succeeded {
		t.Error("Expected failure, got success")
	}
	if result.Attempts != 3 || attempts != 3 {
		t.Errorf("Expected 3 attempts, got result=%d calls=%d", result.Attempts, attempts)
	}

	var exhausted *ExhaustedError
	if !errors.As(result.Err, &exhausted) {
		t.Fatalf("Expected ExhaustedError, got %v", result.Err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("Expected 3 attempts in error, got %d", exhausted.Attempts)
	}
	if !errors.Is(result.Err, lastErr) {
		t.Errorf("Expected error to wrap the last attempt error, got %v", result.Err)
	}
}

func TestRunner_Run_SingleAttemptNeverWaits(t *testing.T) {
	runner := NewRunner(WithPolicy(Policy{
		MaxAttempts:   1,
		InitialDelay:  time.Hour,
		BackoffFactor: 2,
	}), WithOnRetry(func(ctx context.Context, attempt int, err error, nextDelay time.Duration) {
		t.Errorf("OnRetry must not fire with a single attempt (attempt=%d)", attempt)
	}))

	start := time.Now()
	result := runner.Run(context.Background(), func(ctx context.Context) error {
		return errors.New("failure")
	})

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Run with one attempt waited %v", elapsed)
	}
	if result.Succeeded || result.Attempts != 1 {
		t.Errorf("Expected one failed attempt, got %+v", result)
	}
}

func TestRunner_Run_InvalidPolicy(t *testing.T) {
	cases := []struct {
		name   string
		policy Policy
	}{
		{"zero attempts", Policy{MaxAttempts: 0, InitialDelay: time.Second, BackoffFactor: 1.5}},
		{"negative attempts", Policy{MaxAttempts: -2, InitialDelay: time.Second, BackoffFactor: 1.5}},
		{"backoff below one", Policy{MaxAttempts: 3, InitialDelay: time.Second, BackoffFactor: 0.5}},
		{"negative delay", Policy{MaxAttempts: 3, InitialDelay: -time.Second, BackoffFactor: 1.5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runner := NewRunner(WithPolicy(tc.policy))

			called := false
			result := runner.Run(context.Background(), func(ctx context.Context) error {
				called = true
				return nil
			})

			if called {
				t.Error("Action must not run under an invalid policy")
			}
			if result.Attempts != 0 {
				t.Errorf("Expected zero attempts, got %d", result.Attempts)
			}
			var configErr *ConfigError
			if !errors.As(result.Err, &configErr) {
				t.Errorf("Expected ConfigError, got %v", result.Err)
			}
		})
	}
}

func TestRunner_Run_DelaySequence(t *testing.T) {
	runner := NewRunner(WithPolicy(Policy{
		MaxAttempts:   3,
		InitialDelay:  90 * time.Millisecond,
		BackoffFactor: 1.5,
	}))

	var delays []time.Duration
	runner.UpdateConfig(WithOnRetry(func(ctx context.Context, attempt int, err error, nextDelay time.Duration) {
		delays = append(delays, nextDelay)
	}))

	result := runner.Run(context.Background(), func(ctx context.Context) error {
		return errors.New("failure")
	})

	if result.Succeeded {
		t.Error("Expected failure, got success")
	}
	expected := []time.Duration{90 * time.Millisecond, 135 * time.Millisecond}
	if len(delays) != len(expected) {
		t.Fatalf("Expected %d waits, got %v", len(expected), delays)
	}
	for i, want := range expected {
		if delays[i] != want {
			t.Errorf("Wait %d: expected %v, got %v", i+1, want, delays[i])
		}
	}
}

func TestRunner_Run_FailTwiceThenSucceed(t *testing.T) {
	runner := NewRunner(WithPolicy(Policy{
		MaxAttempts:   3,
		InitialDelay:  90 * time.Millisecond,
		BackoffFactor: 1.5,
	}))

	var delays []time.Duration
	runner.UpdateConfig(WithOnRetry(func(ctx context.Context, attempt int, err error, nextDelay time.Duration) {
		delays = append(delays, nextDelay)
	}))

	attempts := 0
	result := runner.Run(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("failure")
		}
		return nil
	})

	if !result.Succeeded || result.Attempts != 3 {
		t.Errorf("Expected success on attempt 3, got %+v", result)
	}
	expected := []time.Duration{90 * time.Millisecond, 135 * time.Millisecond}
	if len(delays) != len(expected) || delays[0] != expected[0] || delays[1] != expected[1] {
		t.Errorf("Expected waits %v, got %v", expected, delays)
	}
}

func TestRunner_Run_ContextCancellation(t *testing.T) {
	runner := NewRunner(WithPolicy(Policy{
		MaxAttempts:   5,
		InitialDelay:  time.Millisecond,
		BackoffFactor: 1,
	}))
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	result := runner.Run(ctx, func(ctx context.Context) error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("failure")
	})

	if result.Succeeded {
		t.Error("Expected failure, got success")
	}
	if !errors.Is(result.Err, context.Canceled) {
		t.Errorf("Expected context cancellation error, got %v", result.Err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts before cancellation, got %d", attempts)
	}
}

func TestRunner_Run_ContextTimeoutDuringWait(t *testing.T) {
	runner := NewRunner(WithPolicy(Policy{
		MaxAttempts:   10,
		InitialDelay:  200 * time.Millisecond,
		BackoffFactor: 1,
	}))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	attempts := 0
	result := runner.Run(ctx, func(ctx context.Context) error {
		attempts++
		return errors.New("failure")
	})

	if !errors.Is(result.Err, context.DeadlineExceeded) {
		t.Errorf("Expected timeout error, got %v", result.Err)
	}
	if attempts != 1 {
		t.Errorf("Expected the wait to be interrupted after 1 attempt, got %d", attempts)
	}
}

func TestRunner_Run_PanicIsRetried(t *testing.T) {
	runner := NewRunner(WithPolicy(fastPolicy(2)))

	attempts := 0
	result := runner.Run(context.Background(), func(ctx context.Context) error {
		attempts++
		panic("action blew up")
	})

	if result.Succeeded {
		t.Error("Expected failure, got success")
	}
	if attempts != 2 {
		t.Errorf("Expected a panicking action to be retried, got %d attempts", attempts)
	}
	if !strings.Contains(result.Err.Error(), "action panicked") {
		t.Errorf("Expected panic to surface as attempt error, got %v", result.Err)
	}
}

func TestRunner_Run_NonRetryableError(t *testing.T) {
	runner := NewRunner(
		WithPolicy(fastPolicy(3)),
		WithErrorFilter(func(err error) bool {
			return !strings.Contains(err.Error(), "non-retryable")
		}),
	)

	attempts := 0
	result := runner.Run(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("non-retryable failure")
	})

	if result.Succeeded {
		t.Error("Expected failure, got success")
	}
	if attempts != 1 || result.Attempts != 1 {
		t.Errorf("Expected a single attempt, got calls=%d result=%d", attempts, result.Attempts)
	}
	if !strings.Contains(result.Err.Error(), "non-retryable") {
		t.Errorf("Expected non-retryable error, got %v", result.Err)
	}
}

func TestRunner_Run_Hooks(t *testing.T) {
	var successAttempt, finalAttempt int
	runner := NewRunner(
		WithPolicy(fastPolicy(3)),
		WithOnSuccess(func(ctx context.Context, attempt int, err error, nextDelay time.Duration) {
			successAttempt = attempt
		}),
		WithOnFinalError(func(ctx context.Context, attempt int, err error, nextDelay time.Duration) {
			finalAttempt = attempt
		}),
	)

	attempts := 0
	runner.Run(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 2 {
			return errors.New("failure")
		}
		return nil
	})

	if successAttempt != 2 {
		t.Errorf("Expected OnSuccess with attempt 2, got %d", successAttempt)
	}
	if finalAttempt != 0 {
		t.Errorf("OnFinalError must not fire on success, got attempt %d", finalAttempt)
	}

	runner.Run(context.Background(), func(ctx context.Context) error {
		return errors.New("failure")
	})
	if finalAttempt != 3 {
		t.Errorf("Expected OnFinalError with attempt 3, got %d", finalAttempt)
	}
}

func TestRunner_UpdateConfig(t *testing.T) {
	runner := NewRunner(WithPolicy(fastPolicy(1)))
	runner.UpdateConfig(WithMaxAttempts(4))

	attempts := 0
	result := runner.Run(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("failure")
	})

	if attempts != 4 || result.Attempts != 4 {
		t.Errorf("Expected 4 attempts after update, got calls=%d result=%d", attempts, result.Attempts)
	}
}

func TestDefaultPolicy(t *testing.T) {
	policy := DefaultPolicy()

	if policy.MaxAttempts != 3 {
		t.Errorf("Expected 3 default attempts, got %d", policy.MaxAttempts)
	}
	if policy.InitialDelay != 90*time.Second {
		t.Errorf("Expected 90s default delay, got %v", policy.InitialDelay)
	}
	if policy.BackoffFactor != 1.5 {
		t.Errorf("Expected 1.5 default backoff, got %v", policy.BackoffFactor)
	}
	if err := policy.Validate(); err != nil {
		t.Errorf("Default policy must validate, got %v", err)
	}
}
