package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment variable read by Load, so the
// server port comes from FISZKI_SERVER_PORT, the database URL from
// FISZKI_DATABASE_URL, and so on.
const envPrefix = "FISZKI"

// Default values applied when the corresponding environment variable is
// unset. Secrets and the database URL have no defaults on purpose.
const (
	defaultPort                        = 8080
	defaultLogLevel                    = "info"
	defaultTokenLifetimeMinutes        = 60
	defaultRefreshTokenLifetimeMinutes = 7 * 24 * 60
	defaultLLMEndpoint                 = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel                    = "openai/gpt-4o-mini"
	defaultLLMMaxAttempts              = 3
	defaultLLMRetryDelayMs             = 1000
)

// Load reads configuration from environment variables, applies defaults, and
// validates the result. Environment variables use the FISZKI_ prefix with
// underscores separating nested keys (e.g. FISZKI_AUTH_JWT_SECRET).
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", defaultPort)
	v.SetDefault("server.log_level", defaultLogLevel)
	v.SetDefault("auth.token_lifetime_minutes", defaultTokenLifetimeMinutes)
	v.SetDefault("auth.refresh_token_lifetime_minutes", defaultRefreshTokenLifetimeMinutes)
	v.SetDefault("llm.endpoint", defaultLLMEndpoint)
	v.SetDefault("llm.model", defaultLLMModel)
	v.SetDefault("llm.max_attempts", defaultLLMMaxAttempts)
	v.SetDefault("llm.retry_delay_ms", defaultLLMRetryDelayMs)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env-only keys to Unmarshal; each
	// key must be bound explicitly.
	for _, key := range []string{
		"server.port",
		"server.log_level",
		"database.url",
		"auth.jwt_secret",
		"auth.token_lifetime_minutes",
		"auth.refresh_token_lifetime_minutes",
		"llm.openrouter_api_key",
		"llm.endpoint",
		"llm.model",
		"llm.max_attempts",
		"llm.retry_delay_ms",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}
