package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kaitosh/punchd"
	"github.com/kaitosh/punchd/command"
	"github.com/kaitosh/punchd/config"
	"github.com/kaitosh/punchd/notify"
)

func newTaskCmd(logger *slog.Logger, use, short, name, prefix string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadTask(name, prefix)
			if err != nil {
				return err
			}
			runner, action, err := buildTask(logger, cfg)
			if err != nil {
				return err
			}

			result := runner.Run(cmd.Context(), action)
			if !result.Succeeded {
				return result.Err
			}
			return nil
		},
	}
}

// buildTask assembles the task runner and the external command action for one
// configured task.
func buildTask(logger *slog.Logger, cfg config.TaskConfig) (*punchd.TaskRunner, punchd.Action, error) {
	if cfg.Command == "" {
		return nil, nil, &punchd.ConfigError{Field: cfg.Prefix + "_COMMAND", Reason: "must be set"}
	}

	taskLogger := logger.With(slog.String("task", cfg.Name))
	runner := punchd.NewTaskRunner(cfg.Name,
		punchd.WithPolicy(cfg.Policy),
		punchd.WithLogger(taskLogger),
	)
	runner.SetNotifier(notify.NewLogNotifier(taskLogger))

	action := punchd.Action(command.Shell(taskLogger, cfg.Command))
	return runner, action, nil
}

// runTask is the scheduled-job body in daemon mode: failures are logged, not
// propagated, so one bad slot never stops the scheduler.
func runTask(ctx context.Context, logger *slog.Logger, runner *punchd.TaskRunner, action punchd.Action) {
	result := runner.Run(ctx, action)
	if !result.Succeeded {
		logger.Error(fmt.Sprintf("%s run failed", runner.Name()), slog.Any("error", result.Err))
	}
}
