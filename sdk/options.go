// ABOUTME: Configuration options for the Web Clipper SDK client
// ABOUTME: Provides functional options pattern for flexible client configuration

package sdk

import (
	"net/http"
	"net/url"
	"time"

	"webclipper-api/core/interfaces"
)

// DefaultBaseURL is where a locally started server listens
const DefaultBaseURL = "http://localhost:8000"

// Config holds the configuration for the client
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     interfaces.Logger
	Timeout    time.Duration
	UserAgent  string
}

// Option is a functional option for configuring the client
type Option func(*Config) error

// WithBaseURL sets the server address
func WithBaseURL(raw string) Option {
	return func(c *Config) error {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return NewError(ErrorTypeConfiguration, "invalid base URL").WithContext("url", raw)
		}
		c.BaseURL = raw
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) error {
		if client == nil {
			return NewError(ErrorTypeConfiguration, "http client cannot be nil")
		}
		c.HTTPClient = client
		return nil
	}
}

// WithLogger sets a custom logger
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// WithTimeout bounds each request; event streams are not bounded
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout < 0 {
			return NewError(ErrorTypeConfiguration, "timeout cannot be negative")
		}
		c.Timeout = timeout
		return nil
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Config) error {
		c.UserAgent = ua
		return nil
	}
}

// defaultConfig returns the default client configuration
func defaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		HTTPClient: http.DefaultClient,
		Logger:     interfaces.NopLogger{},
		Timeout:    30 * time.Second,
		UserAgent:  "WebClipperSDK/1.0",
	}
}
