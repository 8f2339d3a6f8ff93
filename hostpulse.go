package hostpulse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/hostpulse/dashboard"
	"github.com/jpalmerr/hostpulse/internal/hostinfo"
	"github.com/jpalmerr/hostpulse/internal/server"
	"github.com/jpalmerr/hostpulse/internal/store"
)

const (
	DefaultAppName     = "HostPulse"
	DefaultVersion     = "1.0.0"
	DefaultEnvironment = "development"
	DefaultPort        = 3000

	DefaultShutdownTimeout = 5 * time.Second
)

// processStart anchors the uptime reported by the health probe.
var processStart = time.Now()

// HostInfo is a snapshot of the host shown on the status page.
type HostInfo = hostinfo.Info

// HostProbe gathers [HostInfo]. Implementations must be safe for concurrent use.
type HostProbe = hostinfo.Probe

// HostPulse serves a status page with host metrics, a liveness probe and a
// task board whose statuses can be changed over HTTP.
//
// The typical lifecycle is:
//
//	hp, err := hostpulse.New(hostpulse.WithEnvironment("production"))
//	if err != nil {
//	    slog.Error("failed to create hostpulse", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	hp.Start(ctx) // blocks until context cancelled
type HostPulse struct {
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
	startedAt       time.Time
}

// New creates a new [HostPulse] instance with the given options.
//
// Defaults: app name "HostPulse", version "1.0.0", environment
// "development", port 3000, live host probe, random CSRF token, no tasks.
//
// Returns an error if any option is invalid or task ids are not unique.
func New(opts ...Option) (*HostPulse, error) {
	cfg := &hpConfig{
		appName:     DefaultAppName,
		version:     DefaultVersion,
		environment: DefaultEnvironment,
		port:        DefaultPort,

		shutdownTimeout: DefaultShutdownTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]bool, len(cfg.tasks))
	for _, t := range cfg.tasks {
		if t.id == "" {
			return nil, errors.New("task created without NewTask")
		}
		if seen[t.id] {
			return nil, fmt.Errorf("duplicate task id: %q", t.id)
		}
		seen[t.id] = true
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	probe := cfg.probe
	if probe == nil {
		probe = hostinfo.NewSystemProbe()
	}
	token := cfg.csrfToken
	if token == "" {
		token = uuid.NewString()
	}

	return &HostPulse{
		appName:         cfg.appName,
		version:         cfg.version,
		environment:     cfg.environment,
		port:            cfg.port,
		logger:          logger,
		probe:           probe,
		tasks:           cfg.tasks,
		csrfToken:       token,
		statusCallbacks: cfg.statusCallbacks,
		shutdownTimeout: cfg.shutdownTimeout,
		rateLimit:       cfg.rateLimit,
		startedAt:       processStart,
	}, nil
}

// Start serves the status page until the provided context is cancelled.
//
// Start is a blocking call. When the context is cancelled the server stops
// accepting connections and drains in-flight requests before Start returns.
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server fails to start.
func (hp *HostPulse) Start(ctx context.Context) error {
	hp.logger.Info("hostpulse starting",
		"app", hp.appName,
		"version", hp.version,
		"environment", hp.environment,
		"task_count", len(hp.tasks),
	)

	if ctx.Err() != nil {
		return nil
	}

	taskStore := store.NewMemoryStore()
	for _, t := range hp.tasks {
		taskStore.Put(store.Task{ID: t.id, Title: t.title, Status: string(t.status)})
	}

	// track the change consumer to ensure clean shutdown
	changes := taskStore.Subscribe()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for c := range changes {
			change := StatusChange{
				TaskID:    c.TaskID,
				From:      TaskStatus(c.From),
				To:        TaskStatus(c.To),
				ChangedAt: c.ChangedAt,
			}
			for _, cb := range hp.statusCallbacks {
				invokeCallbackSafe(cb, change, hp.logger)
			}
		}
	}()

	cleanup := func() {
		taskStore.Unsubscribe(changes) // closes the channel
		wg.Wait()
	}

	srv, err := server.NewServer(taskStore, hp.probe, dashboard.Assets, server.Config{
		Port:        hp.port,
		AppName:     hp.appName,
		Version:     hp.version,
		Environment: hp.environment,
		CSRFToken:   hp.csrfToken,
		StartedAt:   hp.startedAt,

		ShutdownTimeout: hp.shutdownTimeout,
		RateLimit:       hp.rateLimit,
	}, hp.logger)
	if err != nil {
		cleanup()
		return err
	}

	if err := srv.Start(ctx); err != nil {
		cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	hp.logger.Info("status page available", "url", fmt.Sprintf("http://localhost:%d", hp.port))

	<-ctx.Done()
	<-srv.Done()
	cleanup()
	hp.logger.Info("hostpulse stopped")
	return nil
}

// Port returns the configured HTTP port.
func (hp *HostPulse) Port() int {
	return hp.port
}

// CSRFToken returns the token the status page hands out.
func (hp *HostPulse) CSRFToken() string {
	return hp.csrfToken
}

// Tasks returns a copy of the configured tasks.
func (hp *HostPulse) Tasks() []Task {
	cp := make([]Task, len(hp.tasks))
	copy(cp, hp.tasks)
	return cp
}

// invokeCallbackSafe calls a status callback with panic recovery.
// Panics are logged with a correlation id but do not propagate.
func invokeCallbackSafe(cb func(StatusChange), change StatusChange, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("status callback panicked",
				"correlation_id", uuid.NewString(),
				"panic", r,
				"task_id", change.TaskID,
			)
		}
	}()
	cb(change)
}
