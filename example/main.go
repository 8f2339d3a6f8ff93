package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/hostpulse"
)

func main() {
	tasks := []hostpulse.Task{}
	for _, seed := range []struct {
		id, title string
		status    hostpulse.TaskStatus
	}{
		{"1", "Provision staging cluster", hostpulse.StatusCompleted},
		{"2", "Rotate TLS certificates", hostpulse.StatusInProgress},
		{"42", "Organize youth programs", hostpulse.StatusPending},
	} {
		t, err := hostpulse.NewTask(seed.id, seed.title, seed.status)
		if err != nil {
			slog.Error("invalid task", "error", err)
			os.Exit(1)
		}
		tasks = append(tasks, t)
	}

	hp, err := hostpulse.New(
		hostpulse.WithAppName("HostPulse Demo"),
		hostpulse.WithEnvironment("demo"),
		hostpulse.WithPort(3000),
		hostpulse.WithTasks(tasks...),
		hostpulse.WithStatusCallback(func(c hostpulse.StatusChange) {
			slog.Info("status change", "task_id", c.TaskID, "from", c.From.Label(), "to", c.To.Label())
		}),
	)
	if err != nil {
		slog.Error("failed to create hostpulse", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   HostPulse Demo                                      ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:3000 in your browser          ║")
	fmt.Println("  ║   Probe:  http://localhost:3000/health                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Task 42 cycles its status every 20-60 seconds       ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// drive activity through the public client (see driver.go)
	go func() {
		time.Sleep(500 * time.Millisecond)
		RunStatusDriver(ctx, "http://localhost:3000", "42")
	}()

	if err := hp.Start(ctx); err != nil {
		slog.Error("hostpulse error", "error", err)
		os.Exit(1)
	}
}
