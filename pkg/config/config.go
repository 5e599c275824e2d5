// ABOUTME: Configuration management for the application with environment variable support
// ABOUTME: Defines configuration structures for the server, persistence, logging and capture pipeline

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"webclipper-api/pkg/utils/duration"
)

// Persistence backends
const (
	PersistMemory = "memory"
	PersistSQLite = "sqlite"
	PersistRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig

	// Persist selects where collected items and hidden domains are kept
	Persist PersistConfig

	// Log contains logging configuration
	Log LogConfig

	// RateLimit bounds requests per client
	RateLimit RateLimitConfig

	// Capture tunes the extraction pipeline
	Capture CaptureConfig

	// Broadcast sizes the push worker pool
	Broadcast BroadcastConfig

	// Summarizer points at an optional summarization service
	Summarizer SummarizerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	// Port is the HTTP server port
	Port string

	// AllowedOrigins lists CORS origins; "*" allows any
	AllowedOrigins []string
}

// PersistConfig holds key-value backend configuration
type PersistConfig struct {
	// Type is memory, sqlite or redis
	Type string

	// SQLitePath is the database file for the sqlite backend
	SQLitePath string

	// Redis contains Redis-specific configuration
	Redis RedisConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Address is the Redis server address
	Address string

	// Password is the Redis authentication password
	Password string

	// DB is the Redis database number
	DB int

	// JSON stores values as RedisJSON documents
	JSON bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	// Level is debug, info, warn or error
	Level string

	// Format is json or text
	Format string

	// Backend is logrus or zap
	Backend string

	// File, when set, receives a rotated copy of the log
	File string

	// MaxSizeMB is the size at which File is rotated
	MaxSizeMB int
}

// RateLimitConfig holds per-client rate limiting
type RateLimitConfig struct {
	// Rate is requests per second
	Rate float64

	// Burst is the bucket size
	Burst int
}

// CaptureConfig holds extraction settings
type CaptureConfig struct {
	// ImageTimeout bounds each image conversion
	ImageTimeout time.Duration

	// DebounceWindow ignores repeated double-clicks
	DebounceWindow time.Duration

	// MaxConcurrentImages bounds parallel image conversions per extraction
	MaxConcurrentImages int
}

// BroadcastConfig holds push delivery settings
type BroadcastConfig struct {
	// Workers is the number of delivery shards
	Workers int

	// QueueSize is the per-shard buffer
	QueueSize int

	// Timeout bounds one delivery
	Timeout time.Duration
}

// SummarizerConfig holds the summarization service settings
type SummarizerConfig struct {
	// URL is empty when no summarizer is available
	URL string

	// Timeout bounds one summarization request
	Timeout time.Duration
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	var errs []error
	durationOr := func(key string, def time.Duration) time.Duration {
		d, err := getEnvAsDurationOrDefault(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvOrDefault("PORT", "8000"),
			AllowedOrigins: splitList(getEnvOrDefault("ALLOWED_ORIGINS", "*")),
		},
		Persist: PersistConfig{
			Type:       strings.ToLower(getEnvOrDefault("PERSIST_TYPE", PersistMemory)),
			SQLitePath: getEnvOrDefault("SQLITE_PATH", "webclipper.db"),
			Redis: RedisConfig{
				Address:  getEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
				Password: getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
				JSON:     getEnvAsBoolOrDefault("REDIS_JSON", false),
			},
		},
		Log: LogConfig{
			Level:     strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
			Format:    strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),
			Backend:   strings.ToLower(getEnvOrDefault("LOG_BACKEND", "logrus")),
			File:      getEnvOrDefault("LOG_FILE", ""),
			MaxSizeMB: getEnvAsIntOrDefault("LOG_MAX_SIZE_MB", 50),
		},
		RateLimit: RateLimitConfig{
			Rate:  getEnvAsFloatOrDefault("RATE_LIMIT", 20),
			Burst: getEnvAsIntOrDefault("RATE_BURST", 40),
		},
		Capture: CaptureConfig{
			ImageTimeout:        durationOr("IMAGE_TIMEOUT", 5*time.Second),
			DebounceWindow:      durationOr("DEBOUNCE_WINDOW", 300*time.Millisecond),
			MaxConcurrentImages: getEnvAsIntOrDefault("MAX_CONCURRENT_IMAGES", 4),
		},
		Broadcast: BroadcastConfig{
			Workers:   getEnvAsIntOrDefault("BROADCAST_WORKERS", 4),
			QueueSize: getEnvAsIntOrDefault("BROADCAST_QUEUE_SIZE", 100),
			Timeout:   durationOr("BROADCAST_TIMEOUT", 5*time.Second),
		},
		Summarizer: SummarizerConfig{
			URL:     getEnvOrDefault("SUMMARIZER_URL", ""),
			Timeout: durationOr("SUMMARIZER_TIMEOUT", 30*time.Second),
		},
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := duration.Parse(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("port cannot be empty")
	}

	switch c.Persist.Type {
	case PersistMemory:
	case PersistSQLite:
		if c.Persist.SQLitePath == "" {
			return errors.New("sqlite path cannot be empty when using sqlite persistence")
		}
	case PersistRedis:
		if c.Persist.Redis.Address == "" {
			return errors.New("redis address cannot be empty when using redis persistence")
		}
	default:
		return errors.New("persist type must be 'memory', 'sqlite' or 'redis'")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return errors.New("log format must be 'json' or 'text'")
	}
	if c.Log.Backend != "logrus" && c.Log.Backend != "zap" {
		return errors.New("log backend must be 'logrus' or 'zap'")
	}

	if c.RateLimit.Rate <= 0 || c.RateLimit.Burst < 1 {
		return errors.New("rate limit must be positive with a burst of at least 1")
	}
	if c.Capture.ImageTimeout <= 0 {
		return errors.New("image timeout must be positive")
	}
	if c.Capture.MaxConcurrentImages < 1 {
		return errors.New("max concurrent images must be at least 1")
	}
	if c.Broadcast.Workers < 1 {
		return errors.New("broadcast workers must be at least 1")
	}

	return nil
}
