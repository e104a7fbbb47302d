// Package config defines inboxctl configuration and its loading hooks.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Defaults.
const (
	DefaultBaseURL   = "http://localhost:8000"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "inboxctl"
	DefaultWorkers   = 4
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// BaseURL is the root every API route is resolved against.
	BaseURL string `koanf:"base_url"`

	// Timeout bounds a single request round trip. Zero disables it.
	Timeout time.Duration `koanf:"timeout"`

	// APIToken is sent as a bearer token when non-empty.
	APIToken string `koanf:"api_token"`

	// UserAgent is sent on every request.
	UserAgent string `koanf:"user_agent"`

	// Trace dumps requests and responses at debug level.
	Trace bool `koanf:"trace"`

	// Workers bounds concurrent requests for multi-id commands.
	Workers int `koanf:"workers"`

	// RateLimit caps multi-id commands at this many requests per second.
	// Zero disables the cap.
	RateLimit float64 `koanf:"rate_limit"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		Workers:   DefaultWorkers,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: base_url: %w", ErrInvalidConfig, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: base_url must be an absolute http(s) URL, got %q", ErrInvalidConfig, c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: rate_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}
