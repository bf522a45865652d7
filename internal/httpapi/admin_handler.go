package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ForeverInLaw/airdealer/internal/auth"
	"github.com/ForeverInLaw/airdealer/internal/gate"
	"github.com/ForeverInLaw/airdealer/models"
	"github.com/ForeverInLaw/airdealer/repository"
)

// AdminHandler serves the admin-approval screens.
type AdminHandler struct {
	Gate   *gate.Gate
	Admins repository.AdminRepositoryI
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	list, err := h.Admins.List(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []models.AdminRecord{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"admins": list})
}

func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, true)
}

func (h *AdminHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, false)
}

func (h *AdminHandler) setApproval(w http.ResponseWriter, r *http.Request, approve bool) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing_principal", "request is not authenticated")
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.Gate.SetApproval(r.Context(), p.IdentityID, id, approve); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"is_approved": approve})
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing_principal", "request is not authenticated")
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.Gate.DeleteAdmin(r.Context(), p.IdentityID, id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// idParam parses a positive integer URL parameter, writing a 400 on failure.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid "+name)
		return 0, false
	}
	return v, true
}

func pageParams(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}
