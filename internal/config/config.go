// Package config defines segview configuration and its loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers defaults, an optional YAML file, an optional .env file
//   and SEGVIEW_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
	// APIBaseURL is the scheme://host[:port] of the segmentation backend.
	APIBaseURL string `koanf:"api_base_url"`
	// APIPrefix is the versioned path prefix of the backend API.
	APIPrefix string `koanf:"api_prefix"`
	// RequestTimeoutMS bounds every backend call.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`
	// AboutPath is the page path that triggers the statistics loaders.
	AboutPath string `koanf:"about_path"`
	// SessionCapacity bounds the number of live browser sessions.
	SessionCapacity int `koanf:"session_capacity"`
	// SecureCookie marks the session cookie Secure; enable behind HTTPS.
	SecureCookie bool `koanf:"secure_cookie"`
	// AppName and AppVersion are shown in page headers.
	AppName    string `koanf:"app_name"`
	AppVersion string `koanf:"app_version"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":8080",
		APIBaseURL:       "http://localhost:8000",
		APIPrefix:        "/api/v1",
		RequestTimeoutMS: 10_000,
		AboutPath:        "/about",
		SessionCapacity:  10_000,
		AppName:          "Customer Segmentation",
		AppVersion:       "1.0.0",
	}
}

// APIBase joins the backend base URL and the API prefix, e.g.
// "http://localhost:8000/api/v1".
func (c *Config) APIBase() string {
	base := strings.TrimRight(c.APIBaseURL, "/")
	prefix := "/" + strings.Trim(c.APIPrefix, "/")
	if prefix == "/" {
		return base
	}
	return base + prefix
}

// RequestTimeout returns the backend call timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.APIBaseURL == "":
		return fmt.Errorf("%w: api_base_url must not be empty", ErrInvalidConfig)
	case !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://"):
		return fmt.Errorf("%w: api_base_url must be an http(s) URL", ErrInvalidConfig)
	case c.RequestTimeoutMS <= 0:
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	case !strings.HasPrefix(c.AboutPath, "/"):
		return fmt.Errorf("%w: about_path must start with /", ErrInvalidConfig)
	case c.SessionCapacity <= 0:
		return fmt.Errorf("%w: session_capacity must be positive", ErrInvalidConfig)
	}
	return nil
}
