// Package api serves the viewer page, the history API, and the health
// endpoint from a single handler.
package api

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"analysis-history/internal/config"
	"analysis-history/internal/history"
	"analysis-history/internal/metrics"
	"analysis-history/internal/source"
)

// Server handles HTTP requests for the history service.
type Server struct {
	cfg     config.Config
	src     source.Source
	store   history.Store // nil when records come from a remote backend
	metrics *metrics.Metrics
	logger  *slog.Logger
	static  http.Handler
}

// NewServer creates the HTTP handler. store may be nil for a viewer that
// fronts a remote backend; ingestion is then unavailable.
func NewServer(cfg config.Config, src source.Source, store history.Store, m *metrics.Metrics, staticFS fs.FS, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		src:     src,
		store:   store,
		metrics: m,
		logger:  logger,
		static:  http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))),
	}
}

// ServeHTTP routes requests. /metrics is wired separately in main so the
// Prometheus handler stays out of this package.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/" && r.Method == http.MethodGet:
		s.handlePage(w, r)
	case path == "/report" && r.Method == http.MethodGet:
		s.handleReport(w, r)
	case path == "/requests" && r.Method == http.MethodGet:
		s.handleListRequests(w, r)
	case path == "/requests" && r.Method == http.MethodPost:
		s.handleIngest(w, r, "request")
	case path == "/responses" && r.Method == http.MethodGet:
		s.handleListResponses(w, r)
	case path == "/responses" && r.Method == http.MethodPost:
		s.handleIngest(w, r, "response")
	case path == "/latest" && r.Method == http.MethodGet:
		s.handleLatest(w, r)
	case path == "/healthz" && r.Method == http.MethodGet:
		s.handleHealth(w, r)
	case strings.HasPrefix(path, "/static/") && r.Method == http.MethodGet:
		s.static.ServeHTTP(w, r)
	default:
		http.NotFound(w, r)
	}
}

// Helper functions

func (s *Server) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if s.cfg.CORSAllowOrigin != "" {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.CORSAllowOrigin)
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// parseLimit reads the limit query parameter, substituting def when it is
// missing or malformed and clamping the result into 1..max.
func parseLimit(r *http.Request, def, max int) int {
	n := parseInt(r.URL.Query().Get("limit"), def)
	if n < 1 {
		n = 1
	}
	if n > max {
		n = max
	}
	return n
}
