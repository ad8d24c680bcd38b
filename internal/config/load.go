package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for all environment variables read by Load;
// config key "server.port" maps to PRISM_SERVER_PORT.
const envPrefix = "PRISM"

// scalarKeys lists every scalar configuration key so that environment
// variables are picked up even when neither a default nor a config file
// entry exists for them. Map-valued keys (slug overrides, endpoints) can
// only come from a config file.
var scalarKeys = []string{
	"server.port",
	"server.log_level",
	"auth.api_key",
	"store.redis_url",
	"store.task_ttl",
	"provider.replicate_token",
	"provider.replicate_base_url",
	"provider.openai_api_key",
	"provider.gemini_api_key",
}

// Load configuration from environment variables and optionally a config
// file. Environment variables take precedence over values from config
// files. Returns a populated Config struct or an error if
// loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("store.redis_url", "redis://localhost:6379/0")
	v.SetDefault("store.task_ttl", "1h")

	// Optional config file in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables with the PRISM_ prefix override everything.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range scalarKeys {
		// Explicit binds so unmarshal sees env-only keys.
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
