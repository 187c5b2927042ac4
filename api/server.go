// Package api - Thin HTTP layer over the estimation engine, catalog,
// and scenario store. The API is only responsible for input ingestion,
// orchestration, and output serialization; it never performs cost logic.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vdi-cost/core/catalog"
	"vdi-cost/core/engine"
	"vdi-cost/db"
	"vdi-cost/db/feed"
	"vdi-cost/internal/errors"
)

// PriceStore is the catalog surface the API needs: engine lookups plus
// region listing
type PriceStore interface {
	catalog.Catalog
	PricesByRegion(ctx context.Context, region string) ([]catalog.Entry, error)
}

// CatalogRefresher triggers a full catalog refresh
type CatalogRefresher interface {
	RefreshAll(ctx context.Context) feed.Result
}

// Options carries the server's collaborators
type Options struct {
	Version   string
	Engine    *engine.Engine
	Prices    PriceStore
	Scenarios db.ScenarioStore
	Refresher CatalogRefresher
	Logger    *zap.Logger
}

// Server is the API server
type Server struct {
	mux       *http.ServeMux
	version   string
	engine    *engine.Engine
	prices    PriceStore
	scenarios db.ScenarioStore
	refresher CatalogRefresher
	logger    *zap.Logger

	mu          sync.RWMutex
	lastRefresh *refreshStatus
}

type refreshStatus struct {
	At      time.Time `json:"at"`
	Total   int       `json:"total"`
	Regions []string  `json:"regions"`
}

// NewServer creates the API server and registers its routes
func NewServer(opts Options) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		version:   opts.Version,
		engine:    opts.Engine,
		prices:    opts.Prices,
		scenarios: opts.Scenarios,
		refresher: opts.Refresher,
		logger:    opts.Logger,
	}
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/estimate", s.handleEstimate)

	s.mux.HandleFunc("POST /api/prices/refresh", s.handleRefreshPrices)
	s.mux.HandleFunc("GET /api/prices", s.handleListPrices)

	s.mux.HandleFunc("POST /api/scenarios", s.handleCreateScenario)
	s.mux.HandleFunc("GET /api/scenarios", s.handleListScenarios)
	s.mux.HandleFunc("GET /api/scenarios/{id}", s.handleGetScenario)
	s.mux.HandleFunc("PUT /api/scenarios/{id}", s.handleUpdateScenario)
	s.mux.HandleFunc("DELETE /api/scenarios/{id}", s.handleDeleteScenario)
	s.mux.HandleFunc("GET /api/scenarios/{id}/export", s.handleExportScenario)
	s.mux.HandleFunc("GET /api/scenarios/{id}/profit", s.handleScenarioProfit)

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/version", s.handleVersion)
}

// ServeHTTP implements http.Handler; every request gets an id for
// response correlation and logging
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	w.Header().Set("X-Request-ID", requestID)

	s.logger.Debug("request",
		zap.String("requestId", requestID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))

	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps a domain error to its HTTP status and serializes the
// error envelope
func (s *Server) writeError(w http.ResponseWriter, err error) {
	domainErr, ok := err.(*errors.Error)
	if !ok {
		domainErr = errors.Internal("unexpected error", err)
	}

	status := http.StatusInternalServerError
	switch domainErr.Type {
	case errors.TypeInput:
		status = http.StatusBadRequest
	case errors.TypePricing:
		status = http.StatusUnprocessableEntity
	case errors.TypeNotFound:
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}

	s.writeJSON(w, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    string(domainErr.Type),
			"message": domainErr.Message,
			"context": domainErr.Context,
		},
	}, status)
}
