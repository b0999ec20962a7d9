package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/cyclist-scatter/internal/pipeline"
)

// SnapshotProvider exposes the latest built dataset.
type SnapshotProvider interface {
	sharedobs.ReadinessChecker
	Snapshot() *pipeline.Snapshot
	LastError() error
}

// Server exposes health, readiness, metrics and the chart data endpoints.
type Server struct {
	httpServer *http.Server
	data       SnapshotProvider
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and /api routes.
func NewServer(addr string, data SnapshotProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		data:   data,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(data))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/chart", s.withSnapshot(chartResponse))
	mux.HandleFunc("GET /api/dataset", s.withSnapshot(datasetResponse))
	mux.HandleFunc("GET /api/scales", s.withSnapshot(scalesResponse))

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

// withSnapshot serves render(snapshot), or 503 with the last build failure
// until a dataset exists. Responses carry the dataset id as ETag.
func (s *Server) withSnapshot(render func(*pipeline.Snapshot) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.data.Snapshot()
		if snap == nil {
			msg := "dataset not built yet"
			if err := s.data.LastError(); err != nil {
				msg = err.Error()
			}
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  msg,
			})
			return
		}

		etag := `"` + snap.ID + `"`
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		writeJSON(w, http.StatusOK, render(snap))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
