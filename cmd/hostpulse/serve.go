package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/hostpulse"
	"github.com/jpalmerr/hostpulse/config"
	"github.com/spf13/cobra"
)

// shutdownGrace is added to the configured drain timeout before the CLI
// stops waiting for the SDK to return.
const shutdownGrace = time.Second

// drainLimit is how long the CLI waits for the SDK to finish draining.
// A zero timeout leaves the SDK on its default, so the wait follows it.
func drainLimit(configured time.Duration) time.Duration {
	if configured <= 0 {
		configured = hostpulse.DefaultShutdownTimeout
	}
	return configured + shutdownGrace
}

// newLogger creates a JSON logger for CLI use.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// loadConfig resolves defaults, the optional file and environment overrides.
func loadConfig(path string, lookup config.LookupFunc) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	return cfg, nil
}

// serveCmd starts the HostPulse status server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the status server",
	Long: `Start the HostPulse status server.

The server will:
  - Resolve configuration from defaults, the optional YAML file and the environment
  - Serve the status page on /, the liveness probe on /health
  - Accept task status changes on POST /tasks/{id}/status/

The server runs until interrupted (Ctrl+C) or receives SIGTERM, then drains
in-flight requests before exiting.

Example:
  hostpulse serve
  hostpulse serve -c /etc/hostpulse/config.yaml
  PORT=8080 ENVIRONMENT=production hostpulse serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (optional)")
}

func runServe(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(configFile, os.LookupEnv)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, level)

	logger.Info("config loaded",
		"app", cfg.AppName,
		"environment", cfg.Environment,
		"tasks", len(cfg.Tasks),
	)
	logger.Info("starting server",
		"port", cfg.Port,
		"shutdown_timeout", cfg.ShutdownTimeout.Duration().String(),
	)

	opts, err := config.BuildOptions(cfg)
	if err != nil {
		return fmt.Errorf("failed to build options: %w", err)
	}
	opts = append(opts,
		hostpulse.WithLogger(logger),
		hostpulse.WithStatusCallback(func(c hostpulse.StatusChange) {
			logger.Info("task status changed",
				"task_id", c.TaskID,
				"from", c.From.String(),
				"to", c.To.String(),
			)
		}),
	)

	hp, err := hostpulse.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create HostPulse: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start server - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- hp.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, the SDK drains connections on its own
		limit := drainLimit(cfg.ShutdownTimeout.Duration())
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(limit):
			logger.Warn("shutdown timed out",
				"timeout", limit.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
