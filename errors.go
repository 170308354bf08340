package punchd

import "fmt"

// ConfigError reports an unusable policy or configuration value. It is fatal:
// a run that fails with a ConfigError made zero attempts.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// ExhaustedError is the terminal error of a run whose every attempt failed.
// It carries the last attempt's error.
type ExhaustedError struct {
	Attempts int
	LastErr  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d attempts failed: %v", e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error {
	return e.LastErr
}
