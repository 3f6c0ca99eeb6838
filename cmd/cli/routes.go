package main

import (
	"net/http"
	"os"

	"github.com/cropwatch/plantmonitor/pkg/config"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// RouteManager handles all dashboard routes
type RouteManager struct {
	cfg      *config.Config
	pipeline *Pipeline
	Router   *mux.Router
}

// NewRouteManager creates a new RouteManager instance
func NewRouteManager(cfg *config.Config, pipeline *Pipeline) *RouteManager {
	return &RouteManager{
		cfg:      cfg,
		pipeline: pipeline,
		Router:   mux.NewRouter(),
	}
}

// Setup configures all routes
func (rm *RouteManager) Setup() {
	r := rm.Router

	// Health check
	r.HandleFunc("/health", rm.healthHandler).Methods("GET")

	// Prometheus
	r.Handle("/metrics", rm.pipeline.Metrics.Handler()).Methods("GET")

	// Dashboard page
	r.HandleFunc("/", rm.dashboardHandler).Methods("GET")

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	rm.setupAPIRoutes(api)
}

// setupAPIRoutes configures the series endpoints
func (rm *RouteManager) setupAPIRoutes(api *mux.Router) {
	api.HandleFunc("/series", rm.getSeriesHandler).Methods("GET")
	api.HandleFunc("/series/stream", rm.streamSeriesHandler).Methods("GET")
}

// Handler returns the router wrapped in CORS and access logging
func (rm *RouteManager) Handler() http.Handler {
	return handlers.LoggingHandler(os.Stdout, rm.corsMiddleware(rm.Router))
}
