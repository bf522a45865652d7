package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ForeverInLaw/airdealer/internal/gate"
)

// Authenticate returns middleware that extracts and validates a Bearer token
// and injects the Principal into the request context. Requests without a
// valid token are rejected with 401.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeAuthError(w, http.StatusUnauthorized, "missing_token", "missing or malformed authorization header")
				return
			}
			p, err := ParseToken(strings.TrimSpace(parts[1]), secret)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid_token", "invalid or expired session token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireApproved returns middleware that admits only identities the gate
// classifies as approved. The token alone is never trusted: the record store
// is consulted on every request, mirroring the gate's own enforcement.
// A store failure is reported as 503, never as access denied.
func RequireApproved(g *gate.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := FromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "missing_principal", "request is not authenticated")
				return
			}
			state, _, err := g.Classify(r.Context(), p.IdentityID)
			if err != nil {
				writeAuthError(w, http.StatusServiceUnavailable, "store_unavailable", "could not verify admin standing; try again")
				return
			}
			switch state {
			case gate.StateApproved:
				next.ServeHTTP(w, r)
			case gate.StatePendingApproval:
				writeAuthError(w, http.StatusForbidden, "pending_approval", "account is awaiting approval by an administrator")
			default:
				writeAuthError(w, http.StatusForbidden, "not_registered", "identity is not registered as an administrator")
			}
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": msg})
}
