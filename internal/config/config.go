// Package config loads application configuration from a .env file and the
// environment, with sensible defaults for local use.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application shell.
type Config struct {
	API APIConfig `mapstructure:"api"`
	Log LogConfig `mapstructure:"log"`
}

// APIConfig configures the market-data API client.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level string `mapstructure:"level"` // zerolog level name, e.g. "info"
}

// Load reads configuration from a .env file, environment variables, and defaults.
func Load() (*Config, error) {
	v := viper.New()

	// Load .env into the process environment first so the bindings below see it
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, relying on environment variables")
	}

	v.SetDefault("api.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("api.timeout_seconds", 30)
	v.SetDefault("log.level", "info")

	// Map dot-notation keys to underscore env vars (api.base_url -> API_BASE_URL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnv(v, "api.base_url", "api.timeout_seconds", "log.level")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %v", err)
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("api base URL cannot be empty")
	}
	if cfg.API.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("api timeout must be positive, got %d", cfg.API.TimeoutSeconds)
	}

	return &cfg, nil
}

// bindEnv explicitly binds flat env vars to nested config keys; required for
// viper to map APP-style env vars onto struct fields.
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to bind env var")
		}
	}
}
