package main

import (
	"fmt"
	"log/slog"

	"github.com/prismforge/prism-api/internal/catalog"
	"github.com/prismforge/prism-api/internal/config"
	"github.com/prismforge/prism-api/internal/dispatch"
	"github.com/prismforge/prism-api/internal/platform/endpoint"
	"github.com/prismforge/prism-api/internal/platform/imagen"
	"github.com/prismforge/prism-api/internal/platform/openaiimg"
	"github.com/prismforge/prism-api/internal/platform/replicate"
	"github.com/prismforge/prism-api/internal/provider"
	"github.com/prismforge/prism-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger

	// Task storage (durable Redis with an in-process fallback)
	taskStore store.TaskStore

	// Model catalog and provider routing
	catalog *catalog.Catalog
	router  *provider.Router

	// Task handling
	dispatcher *dispatch.Dispatcher
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration and logger
// that must be established before application initialization.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	// Initialize the task store. A Redis failure at startup is fatal;
	// runtime degradation is absorbed by the fallback decorator.
	redisStore, err := store.NewRedisTaskStore(cfg.Store.RedisURL, cfg.Store.TaskTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task store: %w", err)
	}
	memoryStore := store.NewMemoryTaskStore(cfg.Store.TaskTTL)
	app.taskStore = store.NewFallbackTaskStore(
		redisStore,
		memoryStore,
		logger.With("component", "task_store"),
	)
	logger.Info("Task store initialized", "task_ttl", cfg.Store.TaskTTL)

	// Initialize the model catalog
	app.catalog = catalog.Default()

	// Initialize the provider router
	app.router = setupRouter(cfg, logger)

	// Initialize the dispatcher
	app.dispatcher = dispatch.NewDispatcher(
		app.catalog,
		app.router,
		app.taskStore,
		logger.With("component", "dispatcher"),
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupRouter builds the provider routing tables: the fixed native-SDK
// invokers, the slug table with configured overrides, and the configured
// raw-HTTP endpoints.
func setupRouter(cfg *config.Config, logger *slog.Logger) *provider.Router {
	natives := map[string]provider.Invoker{
		"dalle-3": openaiimg.New(openaiimg.Config{
			APIKey: cfg.Provider.OpenAIAPIKey,
		}, logger.With("component", "openai_invoker")),
		"imagen-3": imagen.New(imagen.Config{
			APIKey: cfg.Provider.GeminiAPIKey,
		}, logger.With("component", "imagen_invoker")),
		"imagen-3-fast": imagen.New(imagen.Config{
			APIKey: cfg.Provider.GeminiAPIKey,
			Model:  "imagen-3.0-fast-generate-001",
		}, logger.With("component", "imagen_invoker")),
	}

	replicateClient := replicate.NewClient(replicate.Config{
		Token:   cfg.Provider.ReplicateToken,
		BaseURL: cfg.Provider.ReplicateBaseURL,
	}, logger.With("component", "replicate_client"))

	endpoints := make(map[string]provider.EndpointConfig, len(cfg.Provider.Endpoints))
	for model, ep := range cfg.Provider.Endpoints {
		endpoints[model] = provider.EndpointConfig{URL: ep.URL, Token: ep.Token}
	}

	return provider.NewRouter(
		natives,
		provider.NewSlugTable(cfg.Provider.SlugOverrides),
		endpoints,
		replicateClient.ForSlug,
		func(cfg provider.EndpointConfig) provider.Invoker {
			return endpoint.New(cfg)
		},
	)
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Let in-flight tasks reach a terminal state before exiting
	if app.dispatcher != nil {
		app.dispatcher.Wait()
	}

	app.logger.Info("Application shutdown completed")
}
