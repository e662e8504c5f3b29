package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Runner is the job the /run endpoint triggers.
type Runner interface {
	Run(ctx context.Context) error
}

// Server is the HTTP front for the summarizer.
type Server struct {
	port        int
	metricsPath string
	runner      Runner
	logger      *slog.Logger

	runMu sync.Mutex
	srv   *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a Server around a runner.
func New(port int, metricsPath string, runner Runner, opts ...Option) *Server {
	s := &Server{
		port:        port,
		metricsPath: metricsPath,
		runner:      runner,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/run", s.handleRun)
	r.Handle(s.metricsPath, promhttp.Handler())

	return r
}

// Start begins serving in the background.
func (s *Server) Start() {
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	go func() {
		s.logger.Info("http server starting", "port", s.port)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("http server error", "err", err)
		}
	}()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleRun executes one summary run synchronously. Only one run may be in
// flight; a second trigger gets 409 instead of a second report.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if !s.runMu.TryLock() {
		writeJSON(w, http.StatusConflict, map[string]string{
			"status": "run already in progress",
		})
		return
	}
	defer s.runMu.Unlock()

	if err := s.runner.Run(r.Context()); err != nil {
		s.logger.Error("triggered run failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
