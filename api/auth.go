/*
auth.go - Caller identity resolution

PURPOSE:
  Resolves the header-carried opaque identifier to a User and rejects
  requests on protected routes that don't carry one. The identifier is
  the user's own ID; it is NOT a security credential and this middleware
  is NOT an authentication mechanism. It exists so the core receives a
  pre-validated caller identity.

HEADERS:
  Authorization: Bearer <userId>   preferred
  X-Auth-Token: <userId>           fallback

SEE ALSO:
  - handlers.go: Handlers read the identity via callerID()
*/
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/plantswap/marketplace/document"
)

type contextKey string

const callerKey contextKey = "caller"

// callerToken extracts the opaque identifier from the request headers.
func callerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return strings.TrimSpace(r.Header.Get("X-Auth-Token"))
}

// RequireCaller rejects requests without a resolvable caller identity.
func (h *Handler) RequireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := callerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Missing caller identity", nil)
			return
		}

		doc, err := h.Store.Load(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to resolve caller", err)
			return
		}
		if doc.UserByID(document.UserID(token)) == nil {
			writeError(w, http.StatusUnauthorized, "Unknown caller identity", nil)
			return
		}

		ctx := context.WithValue(r.Context(), callerKey, document.UserID(token))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// callerID returns the identity placed by RequireCaller.
func callerID(r *http.Request) document.UserID {
	id, _ := r.Context().Value(callerKey).(document.UserID)
	return id
}
