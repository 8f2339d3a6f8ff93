package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jpalmerr/hostpulse"
)

// ParseLogLevel maps a log-level label to an [slog.Level].
//
// Accepted labels are debug, info, warn (or warning) and error, case
// insensitive.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "":
		return 0, fmt.Errorf("log_level is required")
	default:
		return 0, fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", s)
	}
}

// BuildTasks converts task configuration into SDK Task values.
func BuildTasks(cfg *Config) ([]hostpulse.Task, error) {
	tasks := make([]hostpulse.Task, 0, len(cfg.Tasks))
	for i, tc := range cfg.Tasks {
		status, err := hostpulse.ParseTaskStatus(tc.Status)
		if err != nil {
			return nil, fmt.Errorf("tasks[%d] (%s): %w", i, tc.ID, err)
		}
		t, err := hostpulse.NewTask(tc.ID, tc.Title, status)
		if err != nil {
			return nil, fmt.Errorf("tasks[%d]: %w", i, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// BuildOptions converts parsed configuration into SDK options.
//
// The returned options do not include a logger; callers add
// [hostpulse.WithLogger] for the level they built from [ParseLogLevel].
func BuildOptions(cfg *Config) ([]hostpulse.Option, error) {
	tasks, err := BuildTasks(cfg)
	if err != nil {
		return nil, err
	}

	opts := []hostpulse.Option{
		hostpulse.WithAppName(cfg.AppName),
		hostpulse.WithVersion(cfg.Version),
		hostpulse.WithEnvironment(cfg.Environment),
		hostpulse.WithPort(cfg.Port),
		hostpulse.WithTasks(tasks...),
		hostpulse.WithRateLimit(float64(cfg.RateLimit)),
	}
	if d := cfg.ShutdownTimeout.Duration(); d > 0 {
		opts = append(opts, hostpulse.WithShutdownTimeout(d))
	}
	if cfg.CSRFToken != "" {
		opts = append(opts, hostpulse.WithCSRFToken(cfg.CSRFToken))
	}
	return opts, nil
}
