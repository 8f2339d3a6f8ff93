package main

import (
	"testing"
	"time"

	"github.com/jpalmerr/hostpulse/config"
)

func TestDrainLimit(t *testing.T) {
	tests := []struct {
		name       string
		configured time.Duration
		want       time.Duration
	}{
		{"configured", 3 * time.Second, 3*time.Second + shutdownGrace},
		{"zero follows sdk default", 0, 5*time.Second + shutdownGrace},
		{"negative follows sdk default", -time.Second, 5*time.Second + shutdownGrace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := drainLimit(tt.configured); got != tt.want {
				t.Errorf("drainLimit(%v) = %v, want %v", tt.configured, got, tt.want)
			}
		})
	}
}

func TestDrainLimit_ZeroTimeoutConfig(t *testing.T) {
	cfg, err := config.Parse([]byte("shutdown_timeout: 0s\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := drainLimit(cfg.ShutdownTimeout.Duration()); got <= shutdownGrace {
		t.Errorf("drainLimit = %v, the CLI must wait for the SDK's own drain", got)
	}
}
