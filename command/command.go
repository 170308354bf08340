// Package command adapts an external program into a punchd Action. The
// program performs the real portal submission; punchd only observes its exit
// status. The program must be idempotent under re-execution, or check current
// submission status itself before resubmitting.
package command

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
)

// Shell returns an Action that runs the given shell command line once per
// attempt. Output is streamed to the logger line by line; a non-zero exit or
// a start failure is the attempt's error.
func Shell(logger *slog.Logger, line string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		cmd := exec.CommandContext(ctx, "/bin/sh", "-c", line)
		cmd.Stdout = &logWriter{logger: logger, level: slog.LevelInfo}
		cmd.Stderr = &logWriter{logger: logger, level: slog.LevelWarn}

		if err := cmd.Run(); err != nil {
			return fmt.Errorf("command %q: %w", line, err)
		}
		return nil
	}
}

// logWriter forwards process output to a structured logger, one line per
// record. Partial lines are buffered until the next write.
type logWriter struct {
	logger *slog.Logger
	level  slog.Level
	buf    bytes.Buffer
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Keep the partial line for the next write.
			w.buf.WriteString(line)
			break
		}
		w.log(line[:len(line)-1])
	}
	return len(p), nil
}

func (w *logWriter) log(line string) {
	if line == "" {
		return
	}
	w.logger.Log(context.Background(), w.level, line)
}
