package hostpulse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/jpalmerr/hostpulse/internal/hostinfo"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProbe() HostProbe {
	return hostinfo.StaticProbe{Info: HostInfo{
		Hostname:      "test-host",
		Platform:      "linux",
		Architecture:  "amd64",
		UptimeMinutes: 90,
		FreeMemoryMB:  512,
		TotalMemoryMB: 2048,
		CPUCount:      4,
	}}
}

// waitReady polls /health until the server answers or the deadline passes.
func waitReady(t *testing.T, port int) {
	t.Helper()
	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server on port %d not ready", port)
}

// TestStart_BlocksUntilContextCancelled verifies that Start blocks until the
// provided context is cancelled.
func TestStart_BlocksUntilContextCancelled(t *testing.T) {
	// use a high port to avoid conflicts
	hp, err := New(
		WithPort(19001),
		WithLogger(testLogger()),
		WithHostProbe(testProbe()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- hp.Start(ctx)
	}()

	waitReady(t, 19001)

	select {
	case err := <-done:
		t.Fatalf("Start() returned early with error: %v", err)
	default:
		// expected: still blocking
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v, want nil", err)
		}
	case <-time.After(7 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
}

func TestStart_AlreadyCancelledContext(t *testing.T) {
	hp, err := New(WithPort(19002), WithLogger(testLogger()), WithHostProbe(testProbe()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- hp.Start(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Start() should return immediately for a cancelled context")
	}
}

func TestStart_ServesHealth(t *testing.T) {
	hp, err := New(
		WithPort(19003),
		WithEnvironment("staging"),
		WithLogger(testLogger()),
		WithHostProbe(testProbe()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hp.Start(ctx) }()

	waitReady(t, 19003)

	resp, err := http.Get("http://127.0.0.1:19003/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	defer resp.Body.Close()

	var health struct {
		Status      string `json:"status"`
		Uptime      int64  `json:"uptime"`
		Environment string `json:"environment"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("status = %q, want healthy", health.Status)
	}
	if health.Uptime < 0 {
		t.Errorf("uptime = %d, want >= 0", health.Uptime)
	}
	if health.Environment != "staging" {
		t.Errorf("environment = %q, want staging", health.Environment)
	}
}

func TestStart_PortInUse(t *testing.T) {
	first, _ := New(WithPort(19004), WithLogger(testLogger()), WithHostProbe(testProbe()))
	second, _ := New(WithPort(19004), WithLogger(testLogger()), WithHostProbe(testProbe()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = first.Start(ctx) }()
	waitReady(t, 19004)

	if err := second.Start(ctx); err == nil {
		t.Error("Start() expected error when port is already bound")
	}
}

func TestStart_SequentialRuns(t *testing.T) {
	hp, err := New(WithPort(19005), WithLogger(testLogger()), WithHostProbe(testProbe()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- hp.Start(ctx) }()
		waitReady(t, 19005)
		cancel()

		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("run %d: Start() error = %v", i, err)
			}
		case <-time.After(7 * time.Second):
			t.Fatalf("run %d: Start() did not return", i)
		}
	}
}
