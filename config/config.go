// Package config loads punchd configuration from the environment. Each task
// reads its settings under its own prefix (CHECKIN, DAILY_REPORT); missing
// variables fall back to documented defaults, malformed values are errors
// naming the variable.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kaitosh/punchd"
)

// Task prefixes and their default cron schedules (portal local time).
const (
	CheckinPrefix     = "CHECKIN"
	DailyReportPrefix = "DAILY_REPORT"

	defaultCheckinSchedule     = "0 7,17 * * *"
	defaultDailyReportSchedule = "40 17 * * *"

	defaultTimezone = "Asia/Shanghai"
)

// TaskConfig is the environment-derived configuration of one task.
type TaskConfig struct {
	Name     string
	Prefix   string
	Command  string
	Schedule string
	Policy   punchd.Policy
}

// Config is the full daemon configuration.
type Config struct {
	Location    *time.Location
	MetricsAddr string
	Checkin     TaskConfig
	DailyReport TaskConfig
}

// LoadTask reads one task's settings from the environment under the given
// prefix. The retry policy is validated before it is returned.
func LoadTask(name, prefix string) (TaskConfig, error) {
	cfg := TaskConfig{
		Name:     name,
		Prefix:   prefix,
		Command:  os.Getenv(prefix + "_COMMAND"),
		Schedule: os.Getenv(prefix + "_SCHEDULE"),
		Policy:   punchd.DefaultPolicy(),
	}

	if val := os.Getenv(prefix + "_RETRY_ATTEMPTS"); val != "" {
		attempts, err := strconv.Atoi(val)
		if err != nil {
			return TaskConfig{}, &punchd.ConfigError{Field: prefix + "_RETRY_ATTEMPTS", Reason: "not an integer"}
		}
		cfg.Policy.MaxAttempts = attempts
	}
	if val := os.Getenv(prefix + "_RETRY_DELAY"); val != "" {
		seconds, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return TaskConfig{}, &punchd.ConfigError{Field: prefix + "_RETRY_DELAY", Reason: "not a number of seconds"}
		}
		cfg.Policy.InitialDelay = time.Duration(seconds * float64(time.Second))
	}
	if val := os.Getenv(prefix + "_RETRY_BACKOFF"); val != "" {
		factor, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return TaskConfig{}, &punchd.ConfigError{Field: prefix + "_RETRY_BACKOFF", Reason: "not a number"}
		}
		cfg.Policy.BackoffFactor = factor
	}

	if err := cfg.Policy.Validate(); err != nil {
		return TaskConfig{}, fmt.Errorf("%s retry policy: %w", prefix, err)
	}

	return cfg, nil
}

// Load reads the full configuration: both tasks, the timezone, and the
// optional metrics listener address (empty disables the listener).
func Load() (Config, error) {
	tz := os.Getenv("PUNCHD_TZ")
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, &punchd.ConfigError{Field: "PUNCHD_TZ", Reason: fmt.Sprintf("unknown timezone %q", tz)}
	}

	checkin, err := LoadTask("checkin", CheckinPrefix)
	if err != nil {
		return Config{}, err
	}
	if checkin.Schedule == "" {
		checkin.Schedule = defaultCheckinSchedule
	}

	report, err := LoadTask("daily-report", DailyReportPrefix)
	if err != nil {
		return Config{}, err
	}
	if report.Schedule == "" {
		report.Schedule = defaultDailyReportSchedule
	}

	return Config{
		Location:    loc,
		MetricsAddr: os.Getenv("PUNCHD_METRICS_ADDR"),
		Checkin:     checkin,
		DailyReport: report,
	}, nil
}
