package strategies

import (
	"sync"
	"time"
)

// DelayStrategy interface for the strategies package.
type DelayStrategy interface {
	NextDelay(attempt int, lastDelay time.Duration) time.Duration
	Reset()
}

// Exponential implements exponential backoff: the wait after the first failed
// attempt is InitialDelay, and each subsequent wait is the previous one
// multiplied by Factor. A zero MaxDelay means no cap.
type Exponential struct {
	InitialDelay time.Duration
	Factor       float64
	MaxDelay     time.Duration
	mu           sync.Mutex
}

func (e *Exponential) NextDelay(attempt int, lastDelay time.Duration) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	if attempt == 1 {
		return e.clamp(e.InitialDelay)
	}

	return e.clamp(time.Duration(float64(lastDelay) * e.Factor))
}

func (e *Exponential) Reset() {}

func (e *Exponential) clamp(delay time.Duration) time.Duration {
	if e.MaxDelay > 0 && delay > e.MaxDelay {
		return e.MaxDelay
	}
	return delay
}

// NewExponential creates an uncapped exponential backoff strategy.
func NewExponential(initial time.Duration, factor float64) *Exponential {
	return &Exponential{InitialDelay: initial, Factor: factor}
}

// NewExponentialCapped creates an exponential backoff strategy whose delay
// never exceeds max.
func NewExponentialCapped(initial, max time.Duration, factor float64) *Exponential {
	return &Exponential{InitialDelay: initial, Factor: factor, MaxDelay: max}
}
