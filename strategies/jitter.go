package strategies

import (
	"math/rand"
	"sync"
	"time"
)

// Jitter wraps a base delay strategy with a jitter function. Useful in daemon
// mode so many instances retrying against the same portal do not align.
type Jitter struct {
	BaseStrategy DelayStrategy
	JitterFunc   func(time.Duration) time.Duration
	mu           sync.RWMutex
}

func (j *Jitter) NextDelay(attempt int, lastDelay time.Duration) time.Duration {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return j.JitterFunc(j.BaseStrategy.NextDelay(attempt, lastDelay))
}

func (j *Jitter) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.BaseStrategy.Reset()
}

// Common jitter functions.
var (
	// UniformJitter adds up to 100% of the delay.
	UniformJitter = func(delay time.Duration) time.Duration {
		return delay + time.Duration(rand.Float64()*float64(delay))
	}

	// ProportionalJitter adds up to 10% of the delay.
	ProportionalJitter = func(delay time.Duration) time.Duration {
		return delay + time.Duration(rand.Float64()*float64(delay)*0.1)
	}
)

// NewJitter wraps base with the given jitter function.
func NewJitter(base DelayStrategy, jitterFunc func(time.Duration) time.Duration) *Jitter {
	return &Jitter{BaseStrategy: base, JitterFunc: jitterFunc}
}

// ExponentialWithJitter builds an exponential backoff with proportional
// jitter applied on top.
func ExponentialWithJitter(initial time.Duration, factor float64) DelayStrategy {
	return NewJitter(NewExponential(initial, factor), ProportionalJitter)
}
