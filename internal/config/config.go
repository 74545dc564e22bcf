package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// Service Ports
	HTTPPort int `env:"HTTP_PORT" default:"8080"`

	// Database
	DatabasePath string `env:"DATABASE_PATH" default:"./data/questlog.db"`

	// Redis Cache (optional, empty URL disables it)
	RedisURL      string        `env:"REDIS_URL"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CACHE_TTL" default:"1h"`

	// IGDB
	IGDBClientID     string  `env:"IGDB_CLIENT_ID"`
	IGDBClientSecret string  `env:"IGDB_CLIENT_SECRET"`
	IGDBAPIURL       string  `env:"IGDB_API_URL" default:"https://api.igdb.com/v4"`
	TwitchTokenURL   string  `env:"TWITCH_TOKEN_URL" default:"https://id.twitch.tv/oauth2/token"`
	IGDBRateLimit    float64 `env:"IGDB_RATE_LIMIT" default:"4"`
	ImportWorkers    int     `env:"IMPORT_WORKERS" default:"4"`

	// Development
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

// LoadConfig loads configuration from environment variables, reading .env first
// when present.
func LoadConfig() (*Config, error) {
	// a missing .env is fine, system env vars still apply
	_ = godotenv.Load(".env")

	config := &Config{}

	loaders := []func() error{
		func() error { return loadEnvString(&config.GoEnv, "GO_ENV", "development") },
		func() error { return loadEnvInt(&config.HTTPPort, "HTTP_PORT", 8080) },
		func() error { return loadEnvString(&config.DatabasePath, "DATABASE_PATH", "./data/questlog.db") },

		func() error { return loadEnvString(&config.RedisURL, "REDIS_URL", "") },
		func() error { return loadEnvString(&config.RedisPassword, "REDIS_PASSWORD", "") },
		func() error { return loadEnvDuration(&config.CacheTTL, "CACHE_TTL", time.Hour) },

		func() error { return loadEnvString(&config.IGDBClientID, "IGDB_CLIENT_ID", "") },
		func() error { return loadEnvString(&config.IGDBClientSecret, "IGDB_CLIENT_SECRET", "") },
		func() error { return loadEnvString(&config.IGDBAPIURL, "IGDB_API_URL", "https://api.igdb.com/v4") },
		func() error {
			return loadEnvString(&config.TwitchTokenURL, "TWITCH_TOKEN_URL", "https://id.twitch.tv/oauth2/token")
		},
		func() error { return loadEnvFloat(&config.IGDBRateLimit, "IGDB_RATE_LIMIT", 4) },
		func() error { return loadEnvInt(&config.ImportWorkers, "IMPORT_WORKERS", 4) },

		func() error { return loadEnvString(&config.LogLevel, "LOG_LEVEL", "info") },
		func() error { return loadEnvString(&config.LogFormat, "LOG_FORMAT", "text") },
	}
	for _, load := range loaders {
		if err := load(); err != nil {
			return nil, err
		}
	}
	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvFloat(target *float64, key string, defaultValue float64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

// loadEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	value := os.Getenv(key)
	if value == "" {
		*target = defaultValue
		return nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		*target = time.Duration(secs) * time.Second
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid duration value for %s: %v", key, err)
	}
	*target = parsed
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		errors = append(errors, "DATABASE_PATH must not be empty")
	}
	if c.CacheTTL <= 0 {
		errors = append(errors, "CACHE_TTL must be positive")
	}
	if c.IGDBRateLimit <= 0 {
		errors = append(errors, "IGDB_RATE_LIMIT must be positive")
	}
	if c.ImportWorkers < 1 {
		errors = append(errors, "IMPORT_WORKERS must be at least 1")
	}
	if (c.IGDBClientID == "") != (c.IGDBClientSecret == "") {
		errors = append(errors, "IGDB_CLIENT_ID and IGDB_CLIENT_SECRET must be set together")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"text", "json"}
	if !slices.Contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IGDBEnabled reports whether credentials for the metadata source are present.
func (c *Config) IGDBEnabled() bool {
	return c.IGDBClientID != "" && c.IGDBClientSecret != ""
}

// CacheEnabled reports whether a redis projection cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.LogLevel)}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
