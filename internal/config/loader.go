package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names and prefix.
const (
	envPrefix     = "SEGVIEW_"
	envConfigFile = "SEGVIEW_CONFIG"
	envDotenvFile = "SEGVIEW_DOTENV"
	defaultDotenv = ".env"
)

// Load builds a Config by layering defaults, optional file, .env and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SEGVIEW_CONFIG is set
//  3. .env file (SEGVIEW_DOTENV, or ./.env when present); never overrides
//     variables already set in the process environment
//  4. env (prefix SEGVIEW_)
func Load(_ context.Context) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	if err := loadDotenv(); err != nil {
		return nil, err
	}

	// SEGVIEW_API_BASE_URL -> api_base_url (flat keys, underscores preserved).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotenv populates the process environment from a .env file. An explicit
// SEGVIEW_DOTENV must exist; the implicit ./.env is optional.
func loadDotenv() error {
	path, explicit := os.LookupEnv(envDotenvFile)
	if !explicit || path == "" {
		path = defaultDotenv
		explicit = false
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: dotenv %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}
