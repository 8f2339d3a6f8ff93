package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/publicsuffix"

	"github.com/jpalmerr/hostpulse"
	"github.com/jpalmerr/hostpulse/config"
	"github.com/jpalmerr/hostpulse/statusupdate"
)

// errRolledBack marks a change the server refused or never answered.
var errRolledBack = errors.New("status change rolled back")

// setStatusCmd drives one status change through the widget state machine.
var setStatusCmd = &cobra.Command{
	Use:   "set-status",
	Short: "Change a task's status on a running server",
	Long: `Change the status of a task on a running HostPulse server.

The command behaves like the status select on the page: it loads the page to
obtain the CSRF token and cookie, sends one status change and reports the
outcome along with the notification a user would see.

Valid statuses: pending, in_progress, completed, cancelled.

Exit codes:
  0 - Change committed (or the task already had that status)
  1 - Change rolled back

Example:
  hostpulse set-status --task 42 --to completed
  hostpulse set-status --url http://status.internal:3000 --task 42 --from pending --to cancelled`,
	RunE: runSetStatus,
}

func init() {
	rootCmd.AddCommand(setStatusCmd)

	setStatusCmd.Flags().String("url", "http://localhost:3000", "base URL of the HostPulse server")
	setStatusCmd.Flags().String("task", "", "task id (required)")
	setStatusCmd.Flags().String("to", "", "new status (required)")
	setStatusCmd.Flags().String("from", "", "status currently shown; looked up from the server when empty")
	setStatusCmd.Flags().Duration("timeout", 10*time.Second, "request timeout")
	setStatusCmd.Flags().String("log-level", "warn", "log level: debug, info, warn, error")
	_ = setStatusCmd.MarkFlagRequired("task")
	_ = setStatusCmd.MarkFlagRequired("to")
}

func runSetStatus(cmd *cobra.Command, args []string) error {
	baseURL, _ := cmd.Flags().GetString("url")
	taskID, _ := cmd.Flags().GetString("task")
	to, _ := cmd.Flags().GetString("to")
	from, _ := cmd.Flags().GetString("from")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	levelLabel, _ := cmd.Flags().GetString("log-level")

	if _, err := hostpulse.ParseTaskStatus(to); err != nil {
		return err
	}

	level, err := config.ParseLogLevel(levelLabel)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), level)

	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return fmt.Errorf("invalid url %q", baseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return fmt.Errorf("failed to create cookie jar: %w", err)
	}
	hc := &http.Client{Jar: jar, Timeout: timeout}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// a missing page token is not fatal, the cookie may still carry one
	pageToken, err := statusupdate.PageToken(ctx, hc, base.String()+"/")
	if err != nil {
		logger.Warn("page token unavailable", "error", err)
	}

	if from == "" {
		from, err = currentStatus(ctx, hc, base.String(), taskID)
		if err != nil {
			return err
		}
	}

	client, err := statusupdate.NewClient(base.String(),
		statusupdate.WithHTTPClient(hc),
		statusupdate.WithTokenSource(statusupdate.FirstToken{
			statusupdate.StaticToken(pageToken),
			statusupdate.CookieToken{Jar: jar, URL: base},
		}),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	out := cmd.OutOrStdout()
	notifier := statusupdate.NewNotifier(statusupdate.WithOnShow(func(n statusupdate.Notification) {
		fmt.Fprintf(out, "[%s] %s\n", n.Kind, n.Message)
	}))
	defer notifier.Close()

	current := hostpulse.TaskStatus(from)
	board := statusupdate.NewBoard()
	board.AddBadge(taskID, current.Label(), "badge", current.BadgeClass())

	ctrl := statusupdate.NewController(client, board, notifier, logger)
	widget := statusupdate.NewWidget(taskID, from)

	outcome, err := ctrl.Change(ctx, widget, to)
	state := widget.State()
	fmt.Fprintf(out, "task %s: %s (status %s)\n", taskID, outcome, state.Value)
	for _, b := range board.Badges(taskID) {
		fmt.Fprintf(out, "  badge: %s [%s]\n", b.Text, b.ClassName())
	}

	if outcome == statusupdate.OutcomeRolledBack {
		if err != nil {
			return fmt.Errorf("%w: %w", errRolledBack, err)
		}
		return errRolledBack
	}
	return nil
}

// currentStatus reads a task's status from the server's task listing.
func currentStatus(ctx context.Context, hc *http.Client, baseURL, taskID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/tasks", nil)
	if err != nil {
		return "", err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to list tasks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to list tasks: HTTP %d", resp.StatusCode)
	}

	var tasks []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&tasks); err != nil {
		return "", fmt.Errorf("failed to decode tasks: %w", err)
	}
	for _, t := range tasks {
		if t.ID == taskID {
			return t.Status, nil
		}
	}
	return "", fmt.Errorf("task %q not found", taskID)
}
