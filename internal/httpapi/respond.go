package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ForeverInLaw/airdealer/internal/gate"
	"github.com/ForeverInLaw/airdealer/internal/identity"
	"github.com/ForeverInLaw/airdealer/internal/workflow"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorBody{Error: code, Message: message})
}

// respondServiceError maps the error taxonomy onto HTTP statuses. Each kind
// keeps a distinct code so the presentation layer can never merge categories;
// anything unrecognized is treated as an infrastructure failure.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workflow.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, workflow.ErrConcurrentModification):
		respondError(w, http.StatusConflict, "concurrent_modification", err.Error())
	case errors.Is(err, workflow.ErrNotFound), errors.Is(err, gate.ErrNotFound), errors.Is(err, identity.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, gate.ErrAlreadyRegistered), errors.Is(err, identity.ErrAlreadyExists):
		respondError(w, http.StatusConflict, "already_registered", err.Error())
	case errors.Is(err, gate.ErrUnauthorized):
		respondError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, identity.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusServiceUnavailable, "unavailable", "temporary failure; retry the request")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return false
	}
	return true
}
