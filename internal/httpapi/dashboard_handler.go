package httpapi

import (
	"net/http"

	"github.com/ForeverInLaw/airdealer/internal/reports"
)

// DashboardHandler serves the summary screen.
type DashboardHandler struct {
	Reports *reports.Service
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Reports.Dashboard(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
