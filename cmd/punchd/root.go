package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func newRootCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "punchd",
		Short: "Retrying runner for daily check-in and report submissions",
		Long:  `punchd drives an external submission program under a retry policy.
Each task is configured through environment variables under its prefix
(CHECKIN, DAILY_REPORT): <PREFIX>_COMMAND, <PREFIX>_RETRY_ATTEMPTS,
<PREFIX>_RETRY_DELAY (seconds), <PREFIX>_RETRY_BACKOFF and, for daemon
mode, <PREFIX>_SCHEDULE (cron) plus PUNCHD_TZ and PUNCHD_METRICS_ADDR.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newTaskCmd(logger, "checkin", "Run the check-in task once", "checkin", "CHECKIN"),
		newTaskCmd(logger, "report", "Run the daily report task once", "daily-report", "DAILY_REPORT"),
		newRunCmd(logger),
	)

	return cmd
}
