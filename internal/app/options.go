package service

import (
	"strings"

	"github.com/okian/segview/pkg/logger"
)

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithLogger sets a custom logger for the controller.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAboutPath sets the path that triggers the statistics loaders.
func WithAboutPath(path string) Option {
	return func(c *Controller) {
		if strings.HasPrefix(path, "/") && path != "/" {
			c.aboutPath = strings.TrimRight(path, "/")
		}
	}
}
