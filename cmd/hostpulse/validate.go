package main

import (
	"fmt"
	"os"

	"github.com/jpalmerr/hostpulse/config"
	"github.com/spf13/cobra"
)

// validateCmd validates configuration without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate the effective HostPulse configuration without starting the server.

This command parses the YAML, expands ${VAR} references, applies environment
overrides and validates all fields, including building every task. It's
useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  hostpulse validate -c config.yaml
  PORT=8080 hostpulse validate`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (optional)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(configFile, os.LookupEnv)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// catch task errors the SDK would report at startup
	if _, err := config.BuildOptions(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  App:          %s %s\n", cfg.AppName, cfg.Version)
	fmt.Fprintf(out, "  Environment:  %s\n", cfg.Environment)
	fmt.Fprintf(out, "  Port:         %d\n", cfg.Port)
	fmt.Fprintf(out, "  Log level:    %s\n", cfg.LogLevel)
	fmt.Fprintf(out, "  Shutdown:     %s\n", cfg.ShutdownTimeout.Duration())
	fmt.Fprintf(out, "  Rate limit:   %d/s\n", cfg.RateLimit)
	fmt.Fprintf(out, "  Tasks:        %d\n", len(cfg.Tasks))

	return nil
}
