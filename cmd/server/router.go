package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/prismforge/prism-api/internal/api"
	apiMiddleware "github.com/prismforge/prism-api/internal/api/middleware"
)

// setupRoutes creates and configures the application router with all routes
// and middleware. Returns the configured router.
func (app *application) setupRoutes() http.Handler {
	// Create a router
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware) // Add trace IDs for improved error handling

	// Create API handlers using the application's services
	generationHandler := api.NewGenerationHandler(app.dispatcher, app.catalog)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.config.Auth.APIKey)

	// Register routes
	r.Route("/api/v1", func(r chi.Router) {
		// Model listing (public)
		r.Get("/models", generationHandler.ListModels)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/generations", generationHandler.CreateGeneration)
			r.Get("/generations/{id}", generationHandler.GetGeneration)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
