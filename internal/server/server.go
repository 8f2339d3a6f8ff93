package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/jpalmerr/hostpulse/internal/hostinfo"
	"github.com/jpalmerr/hostpulse/internal/store"
	"github.com/jpalmerr/hostpulse/internal/taskstatus"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write operation.
	// Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	shutdownTimeout = 5 * time.Second

	maxRequestBodySize = 1 << 20 // 1MB

	// CSRFHeader carries the page token on status change requests.
	CSRFHeader = "X-CSRFToken"

	// CSRFCookie is the cookie the status page sets with the page token.
	CSRFCookie = "csrftoken"

	// timestampLayout matches ISO-8601 with millisecond precision in UTC.
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"

	pageTemplate = "assets/index.html"
)

// Response messages for the task status endpoint.
const (
	msgUpdated     = "Status updated successfully"
	msgInvalid     = "Invalid status"
	msgInvalidJSON = "Invalid JSON data"
	msgNotFound    = "Task not found"
	msgCSRF        = "CSRF token missing or incorrect"
	msgRateLimited = "Too many requests"
)

// Config holds the static values the server reports. It is read once and
// never modified after [NewServer].
type Config struct {
	Port        int
	AppName     string
	Version     string
	Environment string

	// CSRFToken is embedded in the status page and required on status changes.
	CSRFToken string

	// StartedAt is the process start time used for health uptime.
	StartedAt time.Time

	// ShutdownTimeout bounds connection draining. Zero means 5s.
	ShutdownTimeout time.Duration

	// RateLimit caps accepted status changes per second across all
	// clients. Zero disables limiting.
	RateLimit float64
}

// HealthStatus is the body of the liveness probe.
type HealthStatus struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Uptime      int64  `json:"uptime"`
	Environment string `json:"environment"`
}

// StatusChangeResult is the body returned by the task status endpoint.
type StatusChangeResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// statusChangeRequest is the body accepted by the task status endpoint.
type statusChangeRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed cancelled"`
}

// Server handles HTTP requests for the HostPulse status page and API.
type Server struct {
	store    store.Store
	probe    hostinfo.Probe
	cfg      Config
	page     *template.Template
	validate *validator.Validate
	limiter  *rate.Limiter
	logger   *slog.Logger
	now      func() time.Time

	mu         sync.Mutex
	httpServer *http.Server
	addr       net.Addr
	done       chan struct{}
}

// NewServer creates a new HTTP [Server].
//
// Parameters:
//   - st: Store holding the task board
//   - probe: host introspection capability used by the status page
//   - assets: filesystem containing the page template (may be nil to disable "/")
//   - cfg: static values reported by the server
//   - logger: Logger for server events
//
// Returns an error if the page template cannot be parsed.
// The server is not started until [Server.Start] is called.
func NewServer(st store.Store, probe hostinfo.Probe, assets fs.FS, cfg Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		store:    st,
		probe:    probe,
		cfg:      cfg,
		validate: validator.New(),
		limiter:  newLimiter(cfg.RateLimit),
		logger:   logger,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	if s.cfg.StartedAt.IsZero() {
		s.cfg.StartedAt = time.Now()
	}

	if assets != nil {
		tmpl, err := template.ParseFS(assets, pageTemplate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page template: %w", err)
		}
		s.page = tmpl
	}

	return s, nil
}

// Handler returns the routed handler wrapped in request-id and access-log
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /tasks/{id}/status/{$}", s.withRateLimit(s.handleStatusChange))
	mux.HandleFunc("GET /api/tasks", s.handleTasks)
	mux.HandleFunc("GET /api/sse", s.handleSSE)

	if s.page != nil {
		mux.HandleFunc("GET /", s.handlePage)
	}

	return s.withRequestID(mux)
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it drains in-flight requests for up to Config.ShutdownTimeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.cfg.Port, err)
	}

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts derive from ctx so SSE streams end on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	s.mu.Lock()
	s.httpServer = httpServer
	s.addr = ln.Addr()
	s.mu.Unlock()

	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		defer close(s.done)
		<-ctx.Done()
		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = shutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// Done is closed once the server has finished draining after shutdown.
// It never closes if [Server.Start] was not called or failed.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Addr returns the bound listener address, or nil before [Server.Start].
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// handleHealth answers the liveness probe. It never fails.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	uptime := int64(now.Sub(s.cfg.StartedAt) / time.Second)
	if uptime < 0 {
		uptime = 0
	}

	w.Header().Set("Cache-Control", "no-cache")
	s.writeJSON(w, http.StatusOK, HealthStatus{
		Status:      "healthy",
		Timestamp:   now.UTC().Format(timestampLayout),
		Uptime:      uptime,
		Environment: s.cfg.Environment,
	})
}

type statusOption struct {
	Value    string
	Label    string
	Selected bool
}

type taskView struct {
	ID      string
	Title   string
	Label   string
	Class   string
	Options []statusOption
}

type pageData struct {
	AppName     string
	Version     string
	Environment string
	Timestamp   string
	CSRFToken   string
	Host        hostinfo.Info
	Tasks       []taskView
}

// handlePage renders the status page with a fresh host snapshot.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	info, err := s.probe.Snapshot(r.Context())
	if err != nil {
		s.logger.Error("host introspection failed", "error", err)
		http.Error(w, "Host information unavailable", http.StatusInternalServerError)
		return
	}

	tasks := s.store.GetAll()
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		opts := make([]statusOption, 0, len(taskstatus.All()))
		for _, st := range taskstatus.All() {
			opts = append(opts, statusOption{
				Value:    st,
				Label:    taskstatus.Label(st),
				Selected: st == t.Status,
			})
		}
		views = append(views, taskView{
			ID:      t.ID,
			Title:   t.Title,
			Label:   taskstatus.Label(t.Status),
			Class:   taskstatus.Class(t.Status),
			Options: opts,
		})
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookie,
		Value:    s.cfg.CSRFToken,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	err = s.page.Execute(w, pageData{
		AppName:     s.cfg.AppName,
		Version:     s.cfg.Version,
		Environment: s.cfg.Environment,
		Timestamp:   s.now().UTC().Format(timestampLayout),
		CSRFToken:   s.cfg.CSRFToken,
		Host:        info,
		Tasks:       views,
	})
	if err != nil {
		s.logger.Error("failed to render status page", "error", err)
	}
}

// handleTasks returns all tasks as JSON.
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	s.writeJSON(w, http.StatusOK, s.store.GetAll())
}

// handleStatusChange applies a status change to a single task.
//
// Application-level rejections (bad JSON, unknown status) answer 200 with
// success=false; only CSRF failures and unknown tasks use error codes.
func (s *Server) handleStatusChange(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	logger := s.logger.With("task_id", id, "request_id", RequestID(r.Context()))

	if !s.validCSRF(r.Header.Get(CSRFHeader)) {
		logger.Warn("status change rejected", "reason", "csrf")
		s.writeJSON(w, http.StatusForbidden, StatusChangeResult{Message: msgCSRF})
		return
	}

	if _, ok := s.store.Get(id); !ok {
		s.writeJSON(w, http.StatusNotFound, StatusChangeResult{Message: msgNotFound})
		return
	}

	var req statusChangeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize)).Decode(&req); err != nil {
		// well-formed JSON with a non-string status is an invalid status
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			s.writeJSON(w, http.StatusOK, StatusChangeResult{Message: msgInvalid})
			return
		}
		s.writeJSON(w, http.StatusOK, StatusChangeResult{Message: msgInvalidJSON})
		return
	}

	if err := s.validate.Struct(req); err != nil {
		logger.Debug("status change rejected", "reason", "invalid status", "status", req.Status)
		s.writeJSON(w, http.StatusOK, StatusChangeResult{Message: msgInvalid})
		return
	}

	change, err := s.store.SetStatus(id, req.Status)
	if err != nil {
		// task removed between lookup and update
		s.writeJSON(w, http.StatusNotFound, StatusChangeResult{Message: msgNotFound})
		return
	}

	logger.Info("task status changed", "from", change.From, "to", change.To)
	s.writeJSON(w, http.StatusOK, StatusChangeResult{Success: true, Message: msgUpdated})
}

func (s *Server) validCSRF(token string) bool {
	if token == "" || s.cfg.CSRFToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.CSRFToken)) == 1
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// handleSSE streams task snapshots and status changes via Server-Sent Events.
//
// Each task is sent once as a "task" event on connect, followed by a "change"
// event per accepted status change. Write deadlines keep a slow or vanished
// client from pinning the handler past shutdown.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)
	deadlinesSupported := true

	writeAndFlush := func(event string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return nil // skip the event, keep the stream
		}
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	for _, t := range s.store.GetAll() {
		if err := writeAndFlush("task", t); err != nil {
			return
		}
	}

	for {
		select {
		case change, ok := <-ch:
			if !ok {
				return
			}
			if err := writeAndFlush("change", change); err != nil {
				return
			}

		case <-r.Context().Done():
			// fires on both client disconnect and server shutdown
			return
		}
	}
}
