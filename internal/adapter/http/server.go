package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gridleaf/easee-telemetry-etl/internal/domain"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes health, readiness, metrics, and catalogue inspection
// HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /catalogue routes.
func NewServer(addr string, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /catalogue", handleCatalogue)

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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// catalogueEntry is the wire shape of one observation definition on the
// inspection endpoint.
type catalogueEntry struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	AltNames []string `json:"altNames,omitempty"`
	DataType string   `json:"dataType"`
	Unit     string   `json:"unit,omitempty"`
}

// handleCatalogue dumps the observation catalogue, or a single entry when
// queried by id or name. Handy for checking what a charger's readings
// will normalize to without replaying traffic.
func handleCatalogue(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("name"); name != "" {
		def, ok := domain.LookupByName(name)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown observation name"})
			return
		}
		writeJSON(w, http.StatusOK, toCatalogueEntry(*def))
		return
	}

	defs := domain.Definitions()
	entries := make([]catalogueEntry, len(defs))
	for i, def := range defs {
		entries[i] = toCatalogueEntry(def)
	}
	writeJSON(w, http.StatusOK, entries)
}

func toCatalogueEntry(def domain.Definition) catalogueEntry {
	return catalogueEntry{
		ID:       def.ID,
		Name:     def.Name,
		AltNames: def.AltNames,
		DataType: def.DataType.String(),
		Unit:     def.Unit,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
