package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/tovu/retain/internal/adapters/repository"
)

const defaultRiskListLimit = 50

// RisksDependencies defines the interface for the latest-risks listing.
type RisksDependencies interface {
	ListLatestRisks(ctx context.Context, limit int) ([]repository.RiskRow, error)
}

// RisksHandler handles latest-risk listing requests.
type RisksHandler struct {
	deps     RisksDependencies
	maxLimit int
}

// NewRisksHandler creates a new risks handler.
func NewRisksHandler(deps RisksDependencies, maxLimit int) *RisksHandler {
	return &RisksHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetRisks handles GET /risks?limit=N requests: the newest risk
// snapshot per student, highest score first.
func (h *RisksHandler) HandleGetRisks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limit := defaultRiskListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadLimit)
			return
		}
		limit = n
	}
	if h.maxLimit > 0 && limit > h.maxLimit {
		limit = h.maxLimit
	}
	rows, err := h.deps.ListLatestRisks(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if rows == nil {
		rows = []repository.RiskRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}
