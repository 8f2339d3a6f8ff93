// Package server provides the HTTP server for the HostPulse status page and API.
//
// This package is internal to HostPulse and handles all HTTP concerns:
//
//   - Liveness probe: JSON health status at "/health"
//   - Status page: host metrics and task board rendered at "/"
//   - Task status changes: JSON endpoint at "/tasks/{id}/status/"
//   - REST API: task snapshot at "/api/tasks"
//   - Server-Sent Events: live task changes at "/api/sse"
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
//
// Users of the hostpulse library should not need to interact with this
// package directly. The server is started automatically by [hostpulse.HostPulse.Start].
package server
