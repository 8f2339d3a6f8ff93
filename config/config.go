// Package config provides YAML and environment configuration for HostPulse.
//
// This package enables running HostPulse as a standalone binary, as an
// alternative to the programmatic SDK approach. Values are resolved in
// order: built-in defaults, then an optional YAML file, then environment
// variables.
//
// Example configuration:
//
//	app_name: Kubernetes Hello World
//	environment: ${DEPLOY_ENV:-staging}
//	port: 3000
//	log_level: debug
//	shutdown_timeout: 5s
//
//	tasks:
//	  - id: "42"
//	    title: Organize youth programs
//	    status: pending
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/hostpulse/internal/taskstatus"
)

const (
	DefaultAppName         = "HostPulse"
	DefaultVersion         = "1.0.0"
	DefaultEnvironment     = "development"
	DefaultLogLevel        = "info"
	DefaultPort            = 3000
	DefaultShutdownTimeout = 5 * time.Second
	DefaultRateLimit       = 100

	// maxShutdownTimeout bounds how long a stopping process may hold on to
	// in-flight requests.
	maxShutdownTimeout = time.Minute
)

// Config is the root configuration structure for HostPulse.
//
// It maps directly to the YAML configuration file structure.
// Use [Load], [Parse] or [Default] to create a Config.
type Config struct {
	// AppName is shown in the page title and header. Defaults to "HostPulse".
	AppName string `yaml:"app_name"`

	// Version is shown on the status page. Defaults to "1.0.0".
	Version string `yaml:"version"`

	// Environment is reported by the health probe. Defaults to "development".
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	Environment string `yaml:"environment"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level"`

	// Port is the HTTP server port. Defaults to 3000.
	Port int `yaml:"port"`

	// ShutdownTimeout bounds graceful draining on SIGINT/SIGTERM.
	// Accepts duration strings like "5s" or "500ms". Defaults to 5s.
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`

	// RateLimit caps accepted status changes per second. 0 disables
	// limiting. Defaults to 100.
	RateLimit int `yaml:"rate_limit"`

	// CSRFToken fixes the token status changes must present. When empty a
	// random token is generated at startup.
	// Supports environment variable substitution.
	CSRFToken string `yaml:"csrf_token"`

	// Tasks seeds the in-memory task board.
	Tasks []TaskConfig `yaml:"tasks"`
}

// TaskConfig defines a single task on the board.
type TaskConfig struct {
	// ID identifies the task in URLs; it must be unique.
	ID string `yaml:"id"`

	// Title is the display text.
	Title string `yaml:"title"`

	// Status is one of pending, in_progress, completed, cancelled.
	// Defaults to pending.
	Status string `yaml:"status"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// LookupFunc resolves an environment variable. [os.LookupEnv] satisfies it.
type LookupFunc func(key string) (string, bool)

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Default returns a Config holding the built-in defaults.
func Default() *Config {
	return &Config{
		AppName:         DefaultAppName,
		Version:         DefaultVersion,
		Environment:     DefaultEnvironment,
		LogLevel:        DefaultLogLevel,
		Port:            DefaultPort,
		ShutdownTimeout: Duration(DefaultShutdownTimeout),
		RateLimit:       DefaultRateLimit,
	}
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data on top of [Default].
//
// Environment variables are expanded in app_name, environment and
// csrf_token. Fields absent from the document keep their defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	cfg.applyTaskDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expand substitutes environment references in string fields.
func (c *Config) expand() error {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"app_name", &c.AppName},
		{"environment", &c.Environment},
		{"csrf_token", &c.CSRFToken},
	}
	for _, f := range fields {
		expanded, err := expandEnvVars(*f.ptr)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.ptr = expanded
	}
	return nil
}

func (c *Config) applyTaskDefaults() {
	for i := range c.Tasks {
		if c.Tasks[i].Status == "" {
			c.Tasks[i].Status = taskstatus.Pending
		}
	}
}

// ApplyEnv overrides configuration from environment variables and
// re-validates the result.
//
// Recognised variables: APP_NAME, VERSION, ENVIRONMENT (falling back to
// NODE_ENV), LOG_LEVEL and PORT. Unset or empty variables leave the current
// value untouched.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		return v, ok && v != ""
	}

	if v, ok := get("APP_NAME"); ok {
		c.AppName = v
	}
	if v, ok := get("VERSION"); ok {
		c.Version = v
	}
	if v, ok := get("ENVIRONMENT"); ok {
		c.Environment = v
	} else if v, ok := get("NODE_ENV"); ok {
		c.Environment = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := get("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: invalid port %q: %w", v, err)
		}
		c.Port = port
	}

	return c.Validate()
}

// Validate checks ranges, enumerations and task uniqueness.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	if c.ShutdownTimeout.Duration() < 0 {
		return fmt.Errorf("shutdown_timeout cannot be negative, got %s", c.ShutdownTimeout.Duration())
	}
	if c.ShutdownTimeout.Duration() > maxShutdownTimeout {
		return fmt.Errorf("shutdown_timeout must not exceed %s, got %s", maxShutdownTimeout, c.ShutdownTimeout.Duration())
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit cannot be negative, got %d", c.RateLimit)
	}

	seen := make(map[string]int, len(c.Tasks))
	for i, t := range c.Tasks {
		if t.ID == "" {
			return fmt.Errorf("tasks[%d]: id is required", i)
		}
		if prev, dup := seen[t.ID]; dup {
			return fmt.Errorf("tasks[%d] (%s): duplicate id, first defined at tasks[%d]", i, t.ID, prev)
		}
		seen[t.ID] = i

		if !taskstatus.Valid(t.Status) {
			return fmt.Errorf("tasks[%d] (%s): status must be one of %v, got %q", i, t.ID, taskstatus.All(), t.Status)
		}
	}

	return nil
}
