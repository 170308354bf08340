// Package middleware provides cross-cutting wrappers around task execution,
// composed in a chain where each middleware calls next to continue.
package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records attempt and run counters plus run duration for one task.
type Metrics struct {
	task     string
	attempts *prometheus.CounterVec
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates a metrics middleware registered on reg. Call it once per
// registry; share the returned value across tasks via For.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "punchd_attempts_total",
			Help: "Action attempts made, including retries.",
		}, []string{"task"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "punchd_runs_total",
			Help: "Completed task runs by outcome.",
		}, []string{"task", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "punchd_run_duration_seconds",
			Help:    "Wall-clock duration of task runs, waits included.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"task"}),
	}
	reg.MustRegister(m.attempts, m.runs, m.duration)
	return m
}

// For returns a copy of the middleware bound to the given task label.
func (m *Metrics) For(task string) *Metrics {
	bound := *m
	bound.task = task
	return &bound
}

func (m *Metrics) Execute(ctx context.Context, fn func(context.Context) error, next func(context.Context, func(context.Context) error) error) error {
	start := time.Now()

	wrapped := func(ctx context.Context) error {
		m.attempts.WithLabelValues(m.task).Inc()
		return fn(ctx)
	}

	err := next(ctx, wrapped)

	m.duration.WithLabelValues(m.task).Observe(time.Since(start).Seconds())
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.runs.WithLabelValues(m.task, outcome).Inc()

	return err
}
