// Package server exposes the editor to the external renderer over HTTP,
// WebSocket and MJPEG.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/server/api"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	App       *app.App
	// Metrics enables /metrics and request instrumentation.
	Metrics bool
	// StateInterval is how often WebSocket clients are checked for a new
	// render state.
	StateInterval time.Duration
}

// Server represents the HTTP server for the editor.
type Server struct {
	config  Config
	mux     *http.ServeMux
	handler http.Handler
	hub     *StateHub
	start   time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.StateInterval <= 0 {
		config.StateInterval = DefaultStateInterval
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()

	s.handler = s.mux
	if config.Metrics && config.App != nil {
		s.handler = NewMetricsMiddleware(config.App.Metrics().Registry()).Wrap(s.mux)
	}
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if a := s.config.App; a != nil {
		s.mux.Handle("/api/state", api.NewStateHandler(a))
		s.mux.Handle("/api/tool", api.NewToolHandler(a))

		layers := api.NewLayerHandler(a)
		s.mux.Handle("/api/layers", layers)
		s.mux.Handle("/api/layers/", layers)

		pointer := api.NewPointerHandler(a)
		s.mux.Handle("/api/pointer/action", pointer)
		s.mux.Handle("/api/pointer/hover", pointer)

		s.mux.Handle("/api/scene/clear", api.NewClearHandler(a))

		s.hub = NewStateHub(a, s.config.StateInterval)
		s.mux.Handle("/api/state/ws", s.hub)
		s.mux.Handle("/api/stream", NewStreamHandler(a))

		if s.config.Metrics {
			s.mux.Handle("/metrics", promhttp.HandlerFor(a.Metrics().Registry(), promhttp.HandlerOpts{}))
		}
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.App != nil {
		response["tracking"] = s.config.App.IsEnabled()
		response["version"] = s.config.App.RenderState().Version
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Close stops the WebSocket broadcaster.
func (s *Server) Close() {
	if s.hub != nil {
		s.hub.Close()
	}
}
