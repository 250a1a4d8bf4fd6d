package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("AI_PROVIDER", "anthropic")

	cfg, err := Load("test")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "test", cfg.Version)
	assert.Equal(t, "anthropic", cfg.AI.Provider)
	assert.Equal(t, 24, cfg.Auth.TokenTTLHours)
	assert.Equal(t, "cota-engine", cfg.Auth.Issuer)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load("test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_UnknownProvider(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("AI_PROVIDER", "bard")

	_, err := Load("test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown AI provider")
}

func TestConnectionString(t *testing.T) {
	c := &DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "cota",
		Password: "pw",
		Database: "cota_engine",
		SSLMode:  "require",
	}

	got := c.ConnectionString()
	assert.Equal(t, "host=db.internal port=5433 user=cota password=pw dbname=cota_engine sslmode=require", got)
}
