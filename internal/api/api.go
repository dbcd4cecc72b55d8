// Package api provides the HTTP API for the triage engine.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/doctriage/doctriage/internal/calibration"
	"github.com/doctriage/doctriage/internal/engine"
	"github.com/doctriage/doctriage/internal/review"
)

// Server is the API server.
type Server struct {
	engine     *engine.Engine
	calibrator *calibration.Store
	reviews    review.Store
	mux        *http.ServeMux
}

// Config holds API server configuration.
type Config struct {
	Engine     *engine.Engine
	Calibrator *calibration.Store

	// Reviews backs the /api/review endpoints. Optional; without it
	// those endpoints report the queue as unavailable.
	Reviews review.Store
}

// NewServer creates a new API server.
func NewServer(cfg Config) *Server {
	s := &Server{
		engine:     cfg.Engine,
		calibrator: cfg.Calibrator,
		reviews:    cfg.Reviews,
		mux:        http.NewServeMux(),
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /api/categorize", s.handleCategorize)
	s.mux.HandleFunc("POST /api/feedback", s.handleFeedback)
	s.mux.HandleFunc("GET /api/calibration", s.handleGetCalibration)
	s.mux.HandleFunc("GET /api/review", s.handleListReview)
	s.mux.HandleFunc("PATCH /api/review/{reviewID}", s.handleUpdateReview)
	s.mux.HandleFunc("DELETE /api/review/{reviewID}", s.handleDeleteReview)
	s.mux.HandleFunc("GET /api/thresholds", s.handleGetThresholds)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
