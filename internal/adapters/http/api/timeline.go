package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/tovu/retain/internal/adapters/repository"
)

// TimelineDependencies defines the interface for timeline reads.
type TimelineDependencies interface {
	Timeline(ctx context.Context, studentID string) (repository.Timeline, error)
}

// TimelineHandler handles student timeline requests.
type TimelineHandler struct {
	deps TimelineDependencies
}

// NewTimelineHandler creates a new timeline handler.
func NewTimelineHandler(deps TimelineDependencies) *TimelineHandler {
	return &TimelineHandler{deps: deps}
}

// HandleGetTimeline handles GET /students/{student_id}/timeline.
func (h *TimelineHandler) HandleGetTimeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/students/")
	studentID, tail, ok := strings.Cut(rest, "/")
	if !ok || studentID == "" || tail != "timeline" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadPath)
		return
	}
	tl, err := h.deps.Timeline(r.Context(), studentID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, tl)
}
