package main

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/jpalmerr/hostpulse/statusupdate"
)

// RunStatusDriver cycles one task through every status, acting like a user
// changing the select on the page. Each change happens after 20-60 seconds.
// It returns when ctx is cancelled.
func RunStatusDriver(ctx context.Context, baseURL, taskID string) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		slog.Error("driver: cookie jar", "error", err)
		return
	}
	hc := &http.Client{Jar: jar, Timeout: 5 * time.Second}

	token, err := statusupdate.PageToken(ctx, hc, baseURL+"/")
	if err != nil {
		slog.Error("driver: page token", "error", err)
		return
	}

	client, err := statusupdate.NewClient(baseURL,
		statusupdate.WithHTTPClient(hc),
		statusupdate.WithTokenSource(statusupdate.StaticToken(token)),
	)
	if err != nil {
		slog.Error("driver: client", "error", err)
		return
	}
	defer client.Close()

	notifier := statusupdate.NewNotifier(statusupdate.WithOnShow(func(n statusupdate.Notification) {
		slog.Info("driver notification", "kind", n.Kind, "message", n.Message)
	}))
	defer notifier.Close()

	ctrl := statusupdate.NewController(client, statusupdate.NewBoard(), notifier, slog.Default())
	widget := statusupdate.NewWidget(taskID, "pending")
	statuses := []string{"in_progress", "completed", "cancelled", "pending"}

	for i := 0; ; i = (i + 1) % len(statuses) {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(20+rand.Intn(41)) * time.Second):
		}

		outcome, err := ctrl.Change(ctx, widget, statuses[i])
		slog.Info("driver change", "task_id", taskID, "to", statuses[i], "outcome", outcome.String(), "error", err)
	}
}
