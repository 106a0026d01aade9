package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		APIURL:               "http://localhost:8375/",
		HTTPTimeoutSeconds:   30,
		Port:                 "8375",
		JWTSecret:            "secure-secret-at-least-32-chars-long",
		DBDriver:             "postgres",
		DBPassword:           "secure-password",
		DBSSLMode:            "require",
		ImageMaxUploadSizeMB: 10,
	}
}

func TestConfig_ValidateProduction(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"Production with strong settings", func(c *Config) { c.Env = "production" }, false},
		{"Production with default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}, true},
		{"Prod with short secret", func(c *Config) {
			c.Env = "prod"
			c.JWTSecret = "short"
		}, true},
		{"Production with disabled SSL", func(c *Config) {
			c.Env = "production"
			c.DBSSLMode = "disable"
		}, true},
		{"Production sqlite ignores SSL", func(c *Config) {
			c.Env = "production"
			c.DBDriver = "sqlite"
			c.DBSSLMode = ""
		}, false},
		{"Development with defaults", func(c *Config) {
			c.Env = "development"
			c.JWTSecret = defaultJWTSecret
			c.DBSSLMode = "disable"
		}, false},
		{"Unknown driver", func(c *Config) { c.DBDriver = "mongo" }, true},
		{"Missing API URL", func(c *Config) { c.APIURL = "" }, true},
		{"Zero timeout", func(c *Config) { c.HTTPTimeoutSeconds = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Normalization(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("API_URL", "http://recipes.example.com")
	t.Setenv("SESSION_FILE", "/tmp/cookbook-test/session.json")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "http://recipes.example.com/", c.APIURL)
	assert.Equal(t, "/tmp/cookbook-test/session.json", c.SessionFile)
	assert.Equal(t, "sqlite", c.DBDriver)
}
