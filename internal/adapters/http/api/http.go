// Package api declares HTTP contracts and route registration for the
// read-only audit API. It serves the persistence collaborator's read
// operations to whatever dashboard or tooling sits outside this repo.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tovu/retain/internal/adapters/repository"
)

// Dependencies bundles the store read side the handlers need.
type Dependencies interface {
	ListLatestRisks(ctx context.Context, limit int) ([]repository.RiskRow, error)
	Timeline(ctx context.Context, studentID string) (repository.Timeline, error)
}

// Server wires HTTP routes for the audit read API.
type Server struct {
	healthHandler   *HealthHandler
	risksHandler    *RisksHandler
	timelineHandler *TimelineHandler
}

// NewServer creates an API server with all handlers. maxListLimit caps
// GET /risks?limit.
func NewServer(deps Dependencies, maxListLimit int) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		risksHandler:    NewRisksHandler(deps, maxListLimit),
		timelineHandler: NewTimelineHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/risks", MetricsMiddleware(s.risksHandler.HandleGetRisks, "risks"))
	mux.HandleFunc("/students/", MetricsMiddleware(s.timelineHandler.HandleGetTimeline, "timeline"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
