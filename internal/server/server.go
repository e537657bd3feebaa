package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kingrea/tourdesk/internal/catalog"
	"github.com/kingrea/tourdesk/internal/tour"
	"github.com/kingrea/tourdesk/internal/transport"
)

// ServerStatus is reported by GET /health.
type ServerStatus string

const (
	StatusIdle     ServerStatus = "idle"
	StatusReady    ServerStatus = "ready"
	StatusDraining ServerStatus = "draining"
	StatusStopped  ServerStatus = "stopped"
)

// Server exposes a Backend over the JSON API used by transport.HTTPClient.
// Call Listen, then Serve until the context is cancelled.
type Server struct {
	settings Settings
	backend  *Backend
	logger   *slog.Logger
	clock    func() time.Time
	handler  http.Handler

	mu       sync.Mutex
	listener net.Listener

	status    atomic.Value // ServerStatus
	startedAt atomic.Int64 // unix millis; zero until Serve runs
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger sets the structured logger used for requests and lifecycle.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock allows tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewServer prepares a server for backend using the provided settings.
func NewServer(settings Settings, backend *Backend, opts ...Option) *Server {
	settings.normalize()
	s := &Server{
		settings: settings,
		backend:  backend,
		logger:   slog.Default(),
		clock:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.status.Store(StatusIdle)
	s.handler = s.routes()
	return s
}

// Handler returns the routed API wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	for _, kind := range catalog.Kinds() {
		mux.HandleFunc("GET /"+kind.Plural(), s.handleCatalog(kind))
	}
	mux.HandleFunc("GET /tours", s.handleListTours)
	mux.HandleFunc("POST /tours", s.handleCreateTour)
	mux.HandleFunc("GET /tours/{id}", s.handleGetTour)
	mux.HandleFunc("PUT /tours/{id}", s.handleUpdateTour)
	return s.withLogging(mux)
}

// Listen binds the configured address. BaseURL reports the bound port
// afterwards, which matters when the address asks for port 0.
func (s *Server) Listen() error {
	if s.backend == nil {
		return fmt.Errorf("server: backend is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("server: already listening on %s", s.listener.Addr())
	}
	listener, err := net.Listen("tcp", s.settings.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.settings.Addr, err)
	}
	s.listener = listener
	return nil
}

// Serve handles requests on the bound listener until ctx is cancelled, then
// drains in-flight requests for at most the shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return fmt.Errorf("server: Listen must be called before Serve")
	}
	defer s.release()

	httpServer := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	served := make(chan error, 1)
	go func() { served <- httpServer.Serve(listener) }()
	s.startedAt.Store(s.clock().UnixMilli())
	s.status.Store(StatusReady)
	s.logger.Info("listening", "addr", listener.Addr().String())

	select {
	case err := <-served:
		s.status.Store(StatusStopped)
		return fmt.Errorf("server: serve: %w", err)
	case <-ctx.Done():
	}

	s.status.Store(StatusDraining)
	s.logger.Info("draining", "timeout", s.settings.ShutdownTimeout)
	drainCtx, cancel := context.WithTimeout(context.Background(), s.settings.ShutdownTimeout)
	defer cancel()
	err := httpServer.Shutdown(drainCtx)
	if serveErr := <-served; !errors.Is(serveErr, http.ErrServerClosed) && err == nil {
		err = serveErr
	}
	s.status.Store(StatusStopped)
	if err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.logger.Info("server closed")
	return nil
}

func (s *Server) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = nil
}

// Addr returns the bound TCP address, or "" when not listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the URL clients should use to reach the server.
func (s *Server) BaseURL() string {
	if addr := s.Addr(); addr != "" {
		return "http://" + addr
	}
	return s.settings.URL()
}

// Status reports the server's lifecycle state.
func (s *Server) Status() ServerStatus {
	return s.status.Load().(ServerStatus)
}

func (s *Server) uptime() time.Duration {
	started := s.startedAt.Load()
	if started == 0 || s.Status() != StatusReady {
		return 0
	}
	return s.clock().Sub(time.UnixMilli(started))
}

type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

type errorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        string(s.Status()),
		UptimeSeconds: int64(s.uptime().Seconds()),
	})
}

func (s *Server) handleCatalog(kind catalog.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.backend.Load(r.Context(), kind)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if entries == nil {
			entries = []catalog.Entry{}
		}
		writeJSON(w, http.StatusOK, transport.CatalogResponse{Success: true, Data: entries})
	}
}

func (s *Server) handleListTours(w http.ResponseWriter, r *http.Request) {
	tours, err := s.backend.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tour.ListResponse{Success: true, Data: tours})
}

func (s *Server) handleGetTour(w http.ResponseWriter, r *http.Request) {
	saved, err := s.backend.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tour.Response{Success: true, Data: &saved})
}

func (s *Server) handleCreateTour(w http.ResponseWriter, r *http.Request) {
	var payload tour.CreatePayload
	if !s.readJSON(w, r, &payload) {
		return
	}
	saved, err := s.backend.Create(r.Context(), payload)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("tour created", "id", saved.ID, "name", saved.Name)
	writeJSON(w, http.StatusCreated, tour.Response{Success: true, Data: &saved, Message: "tour created"})
}

func (s *Server) handleUpdateTour(w http.ResponseWriter, r *http.Request) {
	var payload tour.UpdatePayload
	if !s.readJSON(w, r, &payload) {
		return
	}
	id := r.PathValue("id")
	saved, err := s.backend.Update(r.Context(), id, payload)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("tour updated", "id", id, "days_replaced", payload.DailyItineraries != nil)
	writeJSON(w, http.StatusOK, tour.Response{Success: true, Data: &saved, Message: "tour updated"})
}

func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	if r.Body == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "empty body"})
		return false
	}
	reader := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Message: "payload exceeds limit"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "unable to read body"})
		return false
	}
	if err := json.Unmarshal(body, out); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid JSON"})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var invalid *ValidationError
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Message: "validation failed", Errors: invalid.Reasons})
	case errors.Is(err, transport.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "tour not found"})
	default:
		s.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
