package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/prismforge/prism-api/internal/api/shared"
)

// AuthMiddleware provides header-key authentication for routes. Requests
// carry a service key in X-API-Key and the caller's identity in X-User-ID;
// there is no session state.
type AuthMiddleware struct {
	apiKey string
}

// NewAuthMiddleware creates a new AuthMiddleware with the given service key.
// An empty key disables the key check entirely; the identity header is still
// required.
func NewAuthMiddleware(apiKey string) *AuthMiddleware {
	return &AuthMiddleware{
		apiKey: apiKey,
	}
}

// Authenticate validates the X-API-Key header and adds the X-User-ID value
// to the request context for authorized requests.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.apiKey != "" {
			provided := r.Header.Get("X-API-Key")
			if provided == "" {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "X-API-Key header required")
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(m.apiKey)) != 1 {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid API key")
				return
			}
		}

		userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if userID == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "X-User-ID header required")
			return
		}

		// Add user ID to context
		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)

		// Continue with the authenticated request
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts the user ID from the request context.
// Returns the user ID and a boolean indicating if it was found.
func GetUserID(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(string)
	return userID, ok
}
