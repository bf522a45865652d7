package httpapi

import (
	"net/http"
	"time"

	"github.com/ForeverInLaw/airdealer/internal/auth"
	"github.com/ForeverInLaw/airdealer/internal/gate"
	"github.com/ForeverInLaw/airdealer/internal/identity"
)

// AuthHandler serves sign-up, sign-in, and session classification.
type AuthHandler struct {
	Identity identity.ProviderI
	Gate     *gate.Gate
	Secret   string
	TokenTTL time.Duration
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Register creates an identity plus its unapproved admin record. The caller
// is told the account awaits approval and receives no session token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "email and password are required")
		return
	}
	rec, err := h.Gate.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"admin":   rec,
		"message": "registration successful; the account is pending approval by an administrator",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and returns a session token together with the gate
// state, so the client can route to the admin area, the pending screen, or
// the registration prompt.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ident, err := h.Identity.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	state, rec, err := h.Gate.Classify(r.Context(), ident.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	token, err := auth.IssueToken(h.Secret, ident.ID, ident.Email, h.TokenTTL)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"state": state,
		"admin": rec,
	})
}

// Logout ends the session. Tokens are stateless, so there is nothing to
// revoke server-side; the client discards the token and this endpoint
// acknowledges that.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "missing_principal", "request is not authenticated")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "signed out; discard the session token"})
}

// Session reports the gate state for the authenticated caller.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing_principal", "request is not authenticated")
		return
	}
	state, rec, err := h.Gate.Classify(r.Context(), p.IdentityID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"identity_id": p.IdentityID,
		"email":       p.Email,
		"state":       state,
		"admin":       rec,
	})
}
