package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
// Token lifetimes are expressed in minutes.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains all LLM integration related settings.
// MaxAttempts is the total number of tries per request, including the first;
// RetryDelayMs is the base delay multiplied by the attempt number between
// retries.
type LLMConfig struct {
	OpenRouterAPIKey string `mapstructure:"openrouter_api_key" validate:"required"`
	Endpoint         string `mapstructure:"endpoint" validate:"required,url"`
	Model            string `mapstructure:"model" validate:"required"`
	MaxAttempts      int    `mapstructure:"max_attempts" validate:"required,gte=1,lte=10"`
	RetryDelayMs     int    `mapstructure:"retry_delay_ms" validate:"gte=0"`
}
