package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                 "development",
		Port:                "8080",
		JWTSecret:           "secure-secret-at-least-32-chars-long",
		JWTAccessTTLMinutes: 5,
		JWTRefreshTTLHours:  24,
		SessionTTLHours:     24,
		DBPassword:          "secure-password",
		DBSSLMode:           "require",
		TracingSamplerRatio: 1,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateProductionSecrets(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.JWTSecret = defaultJWTSecret
	assert.Error(t, c.Validate())

	c = validConfig()
	c.Env = "production"
	c.JWTSecret = "short"
	assert.Error(t, c.Validate())

	c = validConfig()
	c.Env = "production"
	c.DBPassword = "password"
	assert.Error(t, c.Validate())
}

func TestConfig_ValidateRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Port = "" }},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }},
		{"zero access ttl", func(c *Config) { c.JWTAccessTTLMinutes = 0 }},
		{"zero refresh ttl", func(c *Config) { c.JWTRefreshTTLHours = 0 }},
		{"zero session ttl", func(c *Config) { c.SessionTTLHours = 0 }},
		{"negative lifetime", func(c *Config) { c.DBConnMaxLifetimeMinutes = -1 }},
		{"sampler out of range", func(c *Config) { c.TracingSamplerRatio = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadConfig_EnvOverridesAndNormalization(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("PORT", "9999")
	t.Setenv("FEATURE_FLAGS", "legacy_relationship_paging=on")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "9999", c.Port)
	assert.Equal(t, "legacy_relationship_paging=on", c.FeatureFlags)
	assert.Equal(t, 5, c.JWTAccessTTLMinutes)
	assert.Equal(t, 24, c.JWTRefreshTTLHours)
	assert.False(t, c.IsProduction())
}
