// Package hostpulse provides a small, embeddable status server: a liveness
// probe, a status page with live host metrics, and a task board whose
// statuses can be changed over HTTP.
//
// # Quick Start
//
//	task, _ := hostpulse.NewTask("42", "Organize cultural event", hostpulse.StatusPending)
//	hp, _ := hostpulse.New(hostpulse.WithTask(task))
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	hp.Start(ctx) // blocks until context is cancelled
//
// # Endpoints
//
//   - GET /health: {"status":"healthy","timestamp":...,"uptime":...,"environment":...}
//   - GET /: HTML status page with hostname, platform, memory and CPU count
//   - POST /tasks/{id}/status/: {"status":"completed"} → {"success":true,...}
//   - GET /api/tasks: JSON task list
//   - GET /api/sse: Server-Sent Events with task status changes
//
// Status changes must carry the page's CSRF token in the X-CSRFToken header.
// The statusupdate package implements the client side of that exchange.
//
// # Architecture
//
//   - internal/hostinfo: host introspection behind a narrow Probe interface
//   - internal/store: in-memory task board with pub/sub for changes
//   - internal/server: HTTP routes, CSRF check, SSE and graceful shutdown
//   - dashboard: embedded page template
//
// Nothing is persisted; the board is rebuilt from options at every start.
package hostpulse
