// punchd submits daily check-ins and reports through external action
// programs, retrying with exponential backoff. Exit status: 0 the task
// succeeded, 1 the task ran and failed, 2 the configuration was unusable and
// no attempt was made.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/kaitosh/punchd"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := newRootCmd(logger).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var configErr *punchd.ConfigError
	if errors.As(err, &configErr) {
		return exitConfig
	}
	return exitFailed
}
