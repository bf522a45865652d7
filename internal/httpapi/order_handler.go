package httpapi

import (
	"net/http"
	"strconv"

	"github.com/ForeverInLaw/airdealer/internal/workflow"
	"github.com/ForeverInLaw/airdealer/models"
	"github.com/ForeverInLaw/airdealer/repository"
)

// OrderHandler serves the order screens and the status workflow.
type OrderHandler struct {
	Workflow *workflow.Workflow
	Orders   repository.OrderRepositoryI
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	p := repository.ListOrdersParams{Limit: limit, Offset: offset}
	for _, s := range r.URL.Query()["status"] {
		st := models.OrderStatus(s)
		if !st.Valid() {
			respondError(w, http.StatusBadRequest, "bad_request", "unknown status filter: "+s)
			return
		}
		p.Statuses = append(p.Statuses, st)
	}
	if v := r.URL.Query().Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "bad_request", "invalid user_id")
			return
		}
		p.UserID = &id
	}
	list, err := h.Orders.List(r.Context(), p)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"orders": list})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	o, err := h.Orders.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if o == nil {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// Transitions returns the statuses the order can move to from its current
// status, for populating the status selector.
func (h *OrderHandler) Transitions(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	o, err := h.Orders.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if o == nil {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      o.Status,
		"transitions": workflow.AvailableTransitions(o.Status),
		"terminal":    workflow.IsTerminal(o.Status),
	})
}

type updateStatusRequest struct {
	CurrentStatus models.OrderStatus `json:"current_status"`
	TargetStatus  models.OrderStatus `json:"target_status"`
	AdminNotes    *string            `json:"admin_notes"`
}

// UpdateStatus applies a transition. current_status is what the client last
// saw; a stale value surfaces as concurrent_modification rather than quietly
// clobbering another admin's change.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.CurrentStatus.Valid() || !req.TargetStatus.Valid() {
		respondError(w, http.StatusBadRequest, "bad_request", "current_status and target_status must be valid statuses")
		return
	}
	o, err := h.Workflow.ApplyTransition(r.Context(), id, req.CurrentStatus, req.TargetStatus, req.AdminNotes)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}
