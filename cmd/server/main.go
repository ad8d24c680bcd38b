// Package main implements the entry point for the Prism API server,
// which accepts asynchronous media generation requests, routes them to
// the right provider and answers status polls.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/prismforge/prism-api/internal/config"
	"github.com/prismforge/prism-api/internal/platform/logger"
)

// main is the entry point for the prism-api server. It initializes
// configuration, sets up logging, wires the task store, provider router
// and dispatcher, and starts the HTTP server.
func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and sets up application components.
// Returns the initialized application and any initialization error.
func initializeApp() (*application, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Set up structured logging using the configured log level
	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	// Log configuration details using structured logging
	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	// Log credential presence at debug level; values are never logged
	slog.Debug("Provider configuration",
		"replicate_token_present", cfg.Provider.ReplicateToken != "",
		"openai_key_present", cfg.Provider.OpenAIAPIKey != "",
		"gemini_key_present", cfg.Provider.GeminiAPIKey != "",
		"endpoint_count", len(cfg.Provider.Endpoints))

	return newApplication(cfg, appLogger)
}
