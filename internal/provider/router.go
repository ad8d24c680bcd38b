package provider

import (
	"fmt"

	"github.com/prismforge/prism-api/internal/catalog"
)

// RouteKind identifies the invocation strategy of a resolved route.
type RouteKind string

const (
	// RouteNative invokes a provider through its dedicated SDK.
	RouteNative RouteKind = "native"

	// RouteHosted invokes a hosted model addressed by an owner/name slug.
	RouteHosted RouteKind = "hosted"

	// RouteEndpoint posts to a per-model configured HTTP endpoint.
	RouteEndpoint RouteKind = "endpoint"
)

// Route is the resolved invocation strategy and configuration for a model
// identifier. Routes are resolved per invocation and never cached on task
// state, so configuration changes take effect on the next submission.
type Route struct {
	Kind    RouteKind
	Model   string
	Slug    string // set for hosted routes
	Invoker Invoker
}

// EndpointConfig is the per-model configuration consulted for raw-HTTP
// routes: a target URL plus an optional bearer token.
type EndpointConfig struct {
	URL   string `mapstructure:"url"   validate:"required,url"`
	Token string `mapstructure:"token"`
}

// HostedFactory builds an invoker bound to a hosted slug. The router holds
// a factory rather than a single invoker because the slug is part of the
// route, not of the task.
type HostedFactory func(slug string) Invoker

// EndpointFactory builds an invoker for a configured raw-HTTP endpoint.
type EndpointFactory func(cfg EndpointConfig) Invoker

// Router resolves a model identifier to a Route. Resolution is a layered
// lookup (exact native match, then slug table or owner/name shape, then
// configured endpoint), so the provider set grows through configuration
// alone while the handful of models needing bespoke request shaping keep a
// hard-coded fast path.
//
// All tables are fixed at construction; a Router is safe for concurrent use.
type Router struct {
	natives   map[string]Invoker
	slugs     *SlugTable
	endpoints map[string]EndpointConfig
	hosted    HostedFactory
	endpoint  EndpointFactory
}

// NewRouter constructs a Router from its routing tables and factories.
// Nil maps are treated as empty.
func NewRouter(
	natives map[string]Invoker,
	slugs *SlugTable,
	endpoints map[string]EndpointConfig,
	hosted HostedFactory,
	endpoint EndpointFactory,
) *Router {
	if slugs == nil {
		slugs = NewSlugTable(nil)
	}
	return &Router{
		natives:   natives,
		slugs:     slugs,
		endpoints: endpoints,
		hosted:    hosted,
		endpoint:  endpoint,
	}
}

// Resolve maps a model identifier to a Route. First match wins:
//
//  1. exact-match native-SDK models
//  2. slug table hit, or an identifier already shaped owner/name
//  3. per-model configured endpoint URL
//
// A model that matches none of the layers yields ErrNoRoute, which the
// dispatcher records as a terminal task failure rather than surfacing to
// the submitter.
func (r *Router) Resolve(model string) (Route, error) {
	if invoker, ok := r.natives[model]; ok {
		return Route{Kind: RouteNative, Model: model, Invoker: invoker}, nil
	}

	if slug, ok := r.slugs.Lookup(model); ok {
		return Route{Kind: RouteHosted, Model: model, Slug: slug, Invoker: r.hosted(slug)}, nil
	}
	if catalog.IsHostedReference(model) {
		return Route{Kind: RouteHosted, Model: model, Slug: model, Invoker: r.hosted(model)}, nil
	}

	if cfg, ok := r.endpoints[model]; ok {
		return Route{Kind: RouteEndpoint, Model: model, Invoker: r.endpoint(cfg)}, nil
	}

	return Route{}, fmt.Errorf("%w: %s", ErrNoRoute, model)
}
