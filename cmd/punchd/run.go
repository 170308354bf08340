package main

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/kaitosh/punchd"
	"github.com/kaitosh/punchd/config"
	"github.com/kaitosh/punchd/middleware"
	"github.com/kaitosh/punchd/schedule"
)

func newRunCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run both tasks on their daily schedules until stopped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runDaemon(cmd.Context(), logger, cfg)
		},
	}
}

func runDaemon(ctx context.Context, logger *slog.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(registry)

	sched := schedule.New(cfg.Location, logger)
	for _, task := range []config.TaskConfig{cfg.Checkin, cfg.DailyReport} {
		if task.Command == "" {
			logger.Warn("task not configured, skipping",
				slog.String("task", task.Name),
				slog.String("variable", task.Prefix+"_COMMAND"))
			continue
		}

		runner, action, err := buildTask(logger, task)
		if err != nil {
			return err
		}
		runner.AddMiddleware(metrics.For(task.Name))

		if err := sched.Add(task.Schedule, func() {
			runTask(ctx, logger, runner, action)
		}); err != nil {
			return &punchd.ConfigError{Field: task.Prefix + "_SCHEDULE", Reason: err.Error()}
		}
	}

	var server *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		server = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			logger.Info("metrics listener started", slog.String("addr", cfg.MetricsAddr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics listener failed", slog.Any("error", err))
			}
		}()
	}

	sched.Run(ctx)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics listener shutdown", slog.Any("error", err))
		}
	}
	return nil
}
