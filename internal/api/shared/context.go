// Package shared holds the request/response plumbing used by every
// handler: request context keys, JSON body decoding and the error
// response shape.
package shared

import (
	"context"

	"github.com/google/uuid"
)

// ContextKey is the type for values this service stores on a request
// context.
type ContextKey string

const (
	// UserIDContextKey carries the authenticated caller identity.
	UserIDContextKey ContextKey = "userID"

	// TraceIDKey carries the per-request trace ID.
	TraceIDKey ContextKey = "traceID"
)

// SetTraceID attaches a fresh trace ID to the context so that logs and
// error responses for one request can be correlated.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, uuid.NewString())
}

// GetTraceID returns the trace ID from the context, or an empty string
// when none was set.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}
