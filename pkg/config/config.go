package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for cota-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// AI provider used for price analysis and report generation
	AI AIConfig `yaml:"ai"`

	// Outbound workflow webhook
	Webhook WebhookConfig `yaml:"webhook"`
}

// AuthConfig holds session token configuration.
type AuthConfig struct {
	// Secret signs HS256 session tokens. Server refuses to start without it.
	Secret string `yaml:"-" env:"JWT_SECRET"`

	// TokenTTLHours is the session token lifetime.
	TokenTTLHours int `yaml:"token_ttl_hours" env:"TOKEN_TTL_HOURS" env-default:"24"`

	// Issuer is embedded in issued tokens and checked on validation.
	Issuer string `yaml:"issuer" env:"TOKEN_ISSUER" env-default:"cota-engine"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"cota"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"cota_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// AIConfig selects and configures the external analysis provider.
type AIConfig struct {
	// Provider is "openai" or "anthropic".
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`

	// Endpoint overrides the provider base URL (for OpenAI-compatible gateways).
	Endpoint string `yaml:"endpoint" env:"AI_ENDPOINT" env-default:"https://api.openai.com/v1"`

	// Model is the chat model used for analysis and reports.
	Model string `yaml:"model" env:"AI_MODEL" env-default:"gpt-4o"`

	// APIKey authenticates with the provider. Secret - env only.
	APIKey string `yaml:"-" env:"AI_API_KEY"`

	// TimeoutSeconds bounds each external call so a slow provider cannot
	// stall the quotation pipeline.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"AI_TIMEOUT_SECONDS" env-default:"30"`
}

// WebhookConfig holds the external workflow notification endpoint.
type WebhookConfig struct {
	URL            string `yaml:"url" env:"WEBHOOK_URL" env-default:""`
	APIKey         string `yaml:"-" env:"WEBHOOK_API_KEY"`
	SigningSecret  string `yaml:"-" env:"WEBHOOK_SIGNING_SECRET"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"WEBHOOK_TIMEOUT_SECONDS" env-default:"10"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. When config.yaml is absent (containers configured purely via
// env), the environment alone is read. The version parameter is injected at
// build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks settings the server cannot run without.
func (c *Config) validate() error {
	if c.Auth.Secret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if c.Auth.TokenTTLHours <= 0 {
		return fmt.Errorf("token_ttl_hours must be positive")
	}
	switch c.AI.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown AI provider %q (want openai or anthropic)", c.AI.Provider)
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
