package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/prismforge/prism-api/internal/api/shared"
	"github.com/prismforge/prism-api/internal/store"
)

// getUserIDFromContext extracts the authenticated caller's identity from the
// request context. The value is placed there by the authentication middleware.
func getUserIDFromContext(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// getPathTaskID extracts and parses a task UUID from the URL path.
// Malformed IDs are indistinguishable from unknown ones to the caller,
// so both map to the not-found sentinel.
func getPathTaskID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, fmt.Errorf("%w: missing %s", store.ErrTaskNotFound, paramName)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed %s %q", store.ErrTaskNotFound, paramName, pathParam)
	}

	return id, nil
}
