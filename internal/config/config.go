// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"blogfeed/internal/featureflags"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	Port           string `mapstructure:"PORT"`
	DBDriver       string `mapstructure:"DB_DRIVER"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	DBPath         string `mapstructure:"DB_PATH"`
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	CacheBackend   string `mapstructure:"CACHE_BACKEND"`
	CachePrefix    string `mapstructure:"CACHE_PREFIX"`
	PostsPerPage   int    `mapstructure:"POSTS_PER_PAGE"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS"`
	Env            string `mapstructure:"APP_ENV"`

	TracingEnabled  bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampler  float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

var defaults = map[string]any{
	"PORT":                  "8080",
	"DB_DRIVER":             "postgres",
	"DB_HOST":               "localhost",
	"DB_PORT":               "5432",
	"DB_USER":               "user",
	"DB_PASSWORD":           "password",
	"DB_NAME":               "blogfeed",
	"DB_SSLMODE":            "disable",
	"DB_PATH":               "blogfeed.db",
	"DB_MAX_OPEN_CONNS":     25,
	"DB_MAX_IDLE_CONNS":     5,
	"REDIS_URL":             "localhost:6379",
	"CACHE_BACKEND":         "memory",
	"CACHE_PREFIX":          "pagecache",
	"POSTS_PER_PAGE":        10,
	"JWT_SECRET":            defaultJWTSecret,
	"ALLOWED_ORIGINS":       "http://localhost:5173,http://localhost:3000",
	"FEATURE_FLAGS":         "",
	"APP_ENV":               "development",
	"TRACING_ENABLED":       false,
	"TRACING_EXPORTER":      "stdout",
	"OTLP_ENDPOINT":         "localhost:4318",
	"TRACING_SAMPLER_RATIO": 1.0,
}

// LoadConfig reads config.yml (optional), then config.<APP_ENV>.yml for
// deployed environments, then the process environment.
func LoadConfig() (*Config, error) {
	for _, dir := range []string{".", "..", "../.."} {
		viper.AddConfigPath(dir)
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()

	env := strings.ToLower(viper.GetString("APP_ENV"))
	switch env {
	case "", "development", "test":
	default:
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("config.%s.yml: %w", env, err)
		}
		slog.Info("loaded profile configuration", slog.String("profile", env))
	}

	for key, value := range defaults {
		viper.SetDefault(key, value)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	for _, f := range []*string{&c.DBDriver, &c.DBSSLMode, &c.CacheBackend, &c.Env} {
		*f = strings.ToLower(strings.TrimSpace(*f))
	}
}

// IsProduction reports whether the config targets a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate reports every problem with c at once.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Port == "" {
		fail("PORT is required")
	}
	if c.JWTSecret == "" {
		fail("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case "", "postgres":
	case "sqlite":
		if c.DBPath == "" {
			fail("DB_PATH is required when DB_DRIVER is sqlite")
		}
	default:
		fail("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.CacheBackend {
	case "", "memory", "redis":
	default:
		fail("unsupported CACHE_BACKEND %q", c.CacheBackend)
	}
	if c.PostsPerPage < 0 {
		fail("POSTS_PER_PAGE must not be negative")
	}
	flags := featureflags.NewManager(c.FeatureFlags)
	for _, name := range featureflags.ProcessWide {
		if flags.Partial(name) {
			fail("FEATURE_FLAGS: %s applies to the whole process and takes on/off, not a partial percentage", name)
		}
	}

	if c.IsProduction() {
		errs = append(errs, c.productionProblems()...)
	} else if len(c.JWTSecret) < 32 {
		slog.Warn("JWT_SECRET is shorter than 32 characters")
	}
	return errors.Join(errs...)
}

func (c *Config) productionProblems() []error {
	var errs []error
	if c.JWTSecret == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET still has its default value"))
	} else if len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters in production"))
	}
	if c.DBDriver == "sqlite" {
		errs = append(errs, errors.New("DB_DRIVER sqlite is not allowed in production"))
	}
	if c.DBPassword == "" || c.DBPassword == "password" {
		errs = append(errs, errors.New("a strong DB_PASSWORD is required in production"))
	}
	if c.DBSSLMode == "" || c.DBSSLMode == "disable" {
		errs = append(errs, errors.New("DB_SSLMODE must enable TLS in production"))
	}
	if c.AllowedOrigins == "*" {
		slog.Warn("ALLOWED_ORIGINS is '*' in production")
	}
	return errs
}
