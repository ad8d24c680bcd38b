package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Store    StoreConfig    `mapstructure:"store"    validate:"required"`
	Provider ProviderConfig `mapstructure:"provider"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// AuthConfig contains the internal authentication settings. The service
// sits behind a trusted frontend, which authenticates end users and
// forwards their identity; the service itself only checks a shared
// internal key.
type AuthConfig struct {
	// APIKey is the internal key expected in the X-API-Key header.
	// When empty, the check is disabled (local development).
	APIKey string `mapstructure:"api_key"`
}

// StoreConfig contains the task store settings.
type StoreConfig struct {
	RedisURL string `mapstructure:"redis_url" validate:"required"`

	// TaskTTL is the retention window for task records.
	TaskTTL time.Duration `mapstructure:"task_ttl" validate:"required"`
}

// EndpointConfig configures one raw-HTTP provider endpoint, keyed by
// model identifier.
type EndpointConfig struct {
	URL   string `mapstructure:"url"   validate:"required,url"`
	Token string `mapstructure:"token"`
}

// ProviderConfig contains credentials and routing overrides for the
// generation providers. Missing credentials are not a startup error:
// they surface as per-task failures when the affected route is used.
type ProviderConfig struct {
	ReplicateToken   string `mapstructure:"replicate_token"`
	ReplicateBaseURL string `mapstructure:"replicate_base_url"`
	OpenAIAPIKey     string `mapstructure:"openai_api_key"`
	GeminiAPIKey     string `mapstructure:"gemini_api_key"`

	// SlugOverrides repoints model identifiers to hosted slugs, keyed by
	// model identifier (normalization happens at the routing layer).
	SlugOverrides map[string]string `mapstructure:"slug_overrides"`

	// Endpoints maps model identifiers to raw-HTTP provider endpoints.
	Endpoints map[string]EndpointConfig `mapstructure:"endpoints" validate:"dive"`
}
