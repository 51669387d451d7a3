package site

import (
	"strings"

	"github.com/okian/segview/pkg/logger"
)

// Option applies a configuration option to the Handler.
type Option func(*Handler)

// WithLogger sets a custom logger for the handler.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithAppInfo sets the product name and version shown on every page.
func WithAppInfo(name, version string) Option {
	return func(h *Handler) {
		if name != "" {
			h.appName = name
		}
		if version != "" {
			h.appVersion = version
		}
	}
}

// WithAboutPath sets the path of the statistics page.
func WithAboutPath(path string) Option {
	return func(h *Handler) {
		if strings.HasPrefix(path, "/") && path != "/" {
			h.aboutPath = strings.TrimRight(path, "/")
		}
	}
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(h *Handler) {
		h.secureCookie = secure
	}
}
