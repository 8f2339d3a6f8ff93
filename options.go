package hostpulse

import (
	"errors"
	"log/slog"
	"time"
)

// hpConfig holds mutable state during HostPulse construction.
type hpConfig struct {
	appName         string
	version         string
	environment     string
	port            int
	logger          *slog.Logger
	probe           HostProbe
	tasks           []Task
	csrfToken       string
	statusCallbacks []func(StatusChange)
	shutdownTimeout time.Duration
	rateLimit       float64
}

// Option is a function that configures a [HostPulse] instance during construction.
//
// Options return an error if validation fails.
type Option func(*hpConfig) error

// WithPort sets the HTTP port for the status server.
//
// Defaults to 3000 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *hpConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the HostPulse instance.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *hpConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithAppName sets the application name shown in the page title and header.
//
// Defaults to "HostPulse". An empty name is ignored.
func WithAppName(name string) Option {
	return func(cfg *hpConfig) error {
		if name != "" {
			cfg.appName = name
		}
		return nil
	}
}

// WithVersion sets the version shown on the status page. Defaults to "1.0.0".
func WithVersion(version string) Option {
	return func(cfg *hpConfig) error {
		if version != "" {
			cfg.version = version
		}
		return nil
	}
}

// WithEnvironment sets the environment label reported by the health probe
// and the status page. Defaults to "development".
func WithEnvironment(env string) Option {
	return func(cfg *hpConfig) error {
		if env != "" {
			cfg.environment = env
		}
		return nil
	}
}

// WithHostProbe replaces the host introspection used by the status page.
//
// Useful for tests and demos that need fixed host values. Defaults to a
// probe reading the live host.
//
// Returns an error if the probe is nil.
func WithHostProbe(p HostProbe) Option {
	return func(cfg *hpConfig) error {
		if p == nil {
			return errors.New("host probe cannot be nil")
		}
		cfg.probe = p
		return nil
	}
}

// WithTask adds a single [Task] to the board.
func WithTask(t Task) Option {
	return func(cfg *hpConfig) error {
		cfg.tasks = append(cfg.tasks, t)
		return nil
	}
}

// WithTasks adds multiple [Task] values to the board.
func WithTasks(tasks ...Task) Option {
	return func(cfg *hpConfig) error {
		cfg.tasks = append(cfg.tasks, tasks...)
		return nil
	}
}

// WithCSRFToken fixes the token the status page hands out and status changes
// must present. By default a random token is generated per process.
//
// Returns an error if the token is empty.
func WithCSRFToken(token string) Option {
	return func(cfg *hpConfig) error {
		if token == "" {
			return errors.New("csrf token cannot be empty")
		}
		cfg.csrfToken = token
		return nil
	}
}

// WithStatusCallback registers a function called after every accepted
// status change.
//
// Callbacks run in registration order on a single goroutine and must not
// block. Panics are recovered and logged. Nil callbacks are ignored.
//
// Example:
//
//	hp, err := hostpulse.New(
//	    hostpulse.WithTask(task),
//	    hostpulse.WithStatusCallback(func(c hostpulse.StatusChange) {
//	        if c.To == hostpulse.StatusCancelled {
//	            log.Printf("task %s cancelled", c.TaskID)
//	        }
//	    }),
//	)
func WithStatusCallback(cb func(StatusChange)) Option {
	return func(cfg *hpConfig) error {
		if cb == nil {
			return nil
		}
		cfg.statusCallbacks = append(cfg.statusCallbacks, cb)
		return nil
	}
}

// WithShutdownTimeout bounds how long Start waits for in-flight requests
// after the context is cancelled. Defaults to 5 seconds.
//
// Returns an error if the timeout is not positive.
func WithShutdownTimeout(d time.Duration) Option {
	return func(cfg *hpConfig) error {
		if d <= 0 {
			return errors.New("shutdown timeout must be positive")
		}
		cfg.shutdownTimeout = d
		return nil
	}
}

// WithRateLimit caps accepted status changes per second across all clients.
// Requests over the limit get 429 Too Many Requests. Zero, the default,
// disables limiting.
//
// Returns an error if the limit is negative.
func WithRateLimit(perSecond float64) Option {
	return func(cfg *hpConfig) error {
		if perSecond < 0 {
			return errors.New("rate limit cannot be negative")
		}
		cfg.rateLimit = perSecond
		return nil
	}
}
