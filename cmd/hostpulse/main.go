// Package main is the entry point for the hostpulse CLI.
//
// HostPulse can be run either as a library (SDK) or as a standalone binary
// configured by YAML and environment variables. This CLI provides the
// standalone binary approach plus a client for changing task statuses.
//
// Usage:
//
//	hostpulse serve -c config.yaml                  # Start the status server
//	hostpulse validate -c config.yaml               # Validate configuration
//	hostpulse set-status --task 42 --to completed   # Change a task's status
//	hostpulse version                               # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "hostpulse",
	Short: "A host status page with a live task board",
	Long: `HostPulse serves a small status page showing host metrics, a liveness
probe at /health and a task board whose statuses can be changed over HTTP.

Quick start:
  1. Run: hostpulse serve
  2. Open http://localhost:3000 in your browser
  3. Probe: curl http://localhost:3000/health

Configuration comes from built-in defaults, an optional YAML file (-c) and
the environment variables APP_NAME, VERSION, ENVIRONMENT (or NODE_ENV),
LOG_LEVEL and PORT, in that order.

Example config:
  app_name: Kubernetes Hello World
  port: 3000
  tasks:
    - id: "42"
      title: Organize youth programs
      status: pending`,
	SilenceUsage: true,
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this hostpulse binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "hostpulse %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
