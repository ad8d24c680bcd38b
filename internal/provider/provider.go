// Package provider defines the boundary between the application core and
// external generation backends. It contains the Invoker contract shared by
// all provider integrations, the router that resolves a model identifier to
// an invocation strategy, and the extractor that pulls a result locator out
// of an arbitrarily shaped provider response.
package provider

import (
	"context"
	"errors"
)

// Invoker is implemented by each provider integration. An invocation may
// take tens of seconds; implementations apply their own call-level timeout
// and must honor ctx cancellation, but never block the dispatcher's own
// control path (each task runs on its own goroutine).
type Invoker interface {
	// Invoke runs one generation with the given prompt and parameters and
	// returns the result locator URL. Params hold arbitrary scalar
	// parameters (aspect ratio, guidance scale, seed, safety tolerance,
	// reference image, ...); each invoker forwards the keys it recognizes
	// and drops the rest.
	Invoke(ctx context.Context, prompt string, params map[string]any) (string, error)
}

// Common errors returned by provider integrations
var (
	// ErrMissingCredentials is returned when an invoker has no API
	// credentials configured. A configuration problem, not a fault: the
	// dispatcher records it as a terminal task failure.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrNoRoute is returned when no invocation strategy can be resolved
	// for a model identifier.
	ErrNoRoute = errors.New("no provider route for model")

	// ErrNoResult is returned when a provider call succeeded but no result
	// locator could be extracted from its response.
	ErrNoResult = errors.New("no result URL in provider response")
)
