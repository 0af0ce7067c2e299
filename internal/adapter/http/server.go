// Package http serves the latest irrigation report together with health, readiness and
// metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/irrigation-report/internal/domain"
	"github.com/couchcryptid/irrigation-report/internal/pipeline"
)

// ReportSource produces reports and exposes the most recent one.
type ReportSource interface {
	CheckReadiness(ctx context.Context) error
	Latest() (pipeline.Result, bool)
	Run(ctx context.Context) (pipeline.Result, error)
}

// Server exposes the report and operational HTTP endpoints.
type Server struct {
	httpServer *http.Server
	source     ReportSource
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /, /data.json, /regenerate, /healthz, /readyz
// and /metrics routes.
func NewServer(addr string, source ReportSource, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		source: source,
		logger: logger,
	}

	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/", s.handleReport)
	router.Get("/data.json", s.handleData)
	router.Post("/regenerate", s.handleRegenerate)
	router.Get("/healthz", s.handleHealth)
	router.Get("/readyz", s.handleReady)
	router.Handle("/metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	res, ok := s.source.Latest()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no report generated yet"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.HTML)
}

func (s *Server) handleData(w http.ResponseWriter, _ *http.Request) {
	res, ok := s.source.Latest()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no report generated yet"})
		return
	}
	writeJSON(w, http.StatusOK, res.Dataset)
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	res, err := s.source.Run(r.Context())
	if err != nil {
		s.logger.Error("regenerate failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id": res.Dataset.RunID,
		"path":   res.Path,
		"start":  res.Dataset.Span.Start.Format(domain.DateLayout),
		"end":    res.Dataset.Span.End.Format(domain.DateLayout),
		"days":   res.Dataset.Span.Days(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.source.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// requestLogger logs one line per request with its status and latency.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote_ip", r.RemoteAddr,
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
