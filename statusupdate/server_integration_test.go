package statusupdate

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jpalmerr/hostpulse/dashboard"
	"github.com/jpalmerr/hostpulse/internal/hostinfo"
	"github.com/jpalmerr/hostpulse/internal/server"
	"github.com/jpalmerr/hostpulse/internal/store"
)

func startHostPulse(t *testing.T) (*httptest.Server, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore()
	st.Put(store.Task{ID: "42", Title: "Coordinate volunteer training", Status: "pending"})

	srv, err := server.NewServer(st, hostinfo.StaticProbe{Info: hostinfo.Info{Hostname: "h", CPUCount: 1}},
		dashboard.Assets, server.Config{AppName: "HostPulse", CSRFToken: "integration-token"}, testLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func TestIntegration_ChangeThroughServer(t *testing.T) {
	ts, st := startHostPulse(t)

	jar, _ := cookiejar.New(nil)
	hc := &http.Client{Jar: jar}

	meta, err := PageToken(context.Background(), hc, ts.URL+"/")
	if err != nil {
		t.Fatalf("PageToken() error = %v", err)
	}
	u, _ := url.Parse(ts.URL)

	client, err := NewClient(ts.URL,
		WithHTTPClient(hc),
		WithTokenSource(FirstToken{StaticToken(meta), CookieToken{Jar: jar, URL: u}}),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	board := NewBoard()
	board.AddBadge("42", "Pending", "badge", "bg-warning")
	ctrl := NewController(client, board, NewNotifier(), testLogger())
	w := NewWidget("42", "pending")

	outcome, err := ctrl.Change(context.Background(), w, "in_progress")
	if err != nil || outcome != OutcomeCommitted {
		t.Fatalf("Change() = %v, %v; want committed", outcome, err)
	}
	task, _ := st.Get("42")
	if task.Status != "in_progress" {
		t.Errorf("server status = %q, want in_progress", task.Status)
	}
	if b := board.Badges("42")[0]; b.Text != "In Progress" || !b.HasClass("bg-info") {
		t.Errorf("badge = %+v, want In Progress / bg-info", b)
	}

	// the server rejects statuses outside the enum; the widget reverts
	outcome, err = ctrl.Change(context.Background(), w, "archived")
	if err != nil || outcome != OutcomeRolledBack {
		t.Fatalf("Change(archived) = %v, %v; want rolled_back", outcome, err)
	}
	if got := w.State().Value; got != "in_progress" {
		t.Errorf("Value = %q, want in_progress", got)
	}
	notes := ctrl.Notifier().Active()
	if last := notes[len(notes)-1]; last.Message != MsgFailedPrefix+"Invalid status" {
		t.Errorf("last notification = %q", last.Message)
	}
}

func TestIntegration_MissingTokenIsRejected(t *testing.T) {
	ts, st := startHostPulse(t)

	client, _ := NewClient(ts.URL)
	ctrl := NewController(client, nil, nil, testLogger())
	w := NewWidget("42", "pending")

	outcome, err := ctrl.Change(context.Background(), w, "completed")
	if err != nil || outcome != OutcomeRolledBack {
		t.Fatalf("Change() = %v, %v; want rolled_back", outcome, err)
	}
	if task, _ := st.Get("42"); task.Status != "pending" {
		t.Errorf("server status = %q, want pending", task.Status)
	}
	if w.State().Value != "pending" {
		t.Errorf("Value = %q, want pending", w.State().Value)
	}
}
