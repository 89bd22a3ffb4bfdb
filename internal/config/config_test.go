package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:          "production",
		DBDriver:     "postgres",
		DBSSLMode:    "require",
		JWTSecret:    "secure-secret-at-least-32-chars-long",
		DBPassword:   "secure-password",
		Port:         "8080",
		CacheBackend: "redis",
		PostsPerPage: 10,
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

func TestConfig_ValidateRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Port = "" }},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }},
		{"default secret in production", func(c *Config) { c.JWTSecret = defaultJWTSecret }},
		{"short secret in production", func(c *Config) { c.JWTSecret = "short" }},
		{"weak db password", func(c *Config) { c.DBPassword = "password" }},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }},
		{"sqlite in production", func(c *Config) { c.DBDriver = "sqlite"; c.DBPath = "x.db" }},
		{"unknown cache backend", func(c *Config) { c.CacheBackend = "memcached" }},
		{"negative page size", func(c *Config) { c.PostsPerPage = -1 }},
		{"partial rollout of a process-wide flag", func(c *Config) { c.FeatureFlags = "invalidate_on_create=25%" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestConfig_SQLiteNeedsPath(t *testing.T) {
	c := validConfig()
	c.Env = "development"
	c.DBDriver = "sqlite"
	c.DBPath = ""
	assert.Error(t, c.Validate())

	c.DBPath = ":memory:"
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Cleanup(viper.Reset)

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("POSTS_PER_PAGE", "5")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "memory", c.CacheBackend)
	assert.Equal(t, 5, c.PostsPerPage)
	assert.Equal(t, "pagecache", c.CachePrefix)
	assert.False(t, c.IsProduction())
}

func TestConfig_ValidateReportsEveryProblem(t *testing.T) {
	c := validConfig()
	c.Port = ""
	c.DBPassword = ""
	c.DBSSLMode = "disable"

	err := c.Validate()
	require.Error(t, err)
	for _, want := range []string{"PORT", "DB_PASSWORD", "DB_SSLMODE"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestConfig_ProcessWideFlagValues(t *testing.T) {
	for _, flags := range []string{"", "invalidate_on_create=on", "invalidate_on_create=off", "invalidate_on_create=100%", "other=25%"} {
		c := validConfig()
		c.FeatureFlags = flags
		assert.NoError(t, c.Validate(), flags)
	}
}
