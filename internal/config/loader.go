package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if SIDEOUT_CONFIG is set
//  3. env (prefix SIDEOUT_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("SIDEOUT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SIDEOUT_K_FACTOR, SIDEOUT_EPOCHS, ...
	// Map env keys like SIDEOUT_K_FACTOR -> k_factor (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("SIDEOUT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "sideout_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.KFactor <= 0 {
		return nil, fmt.Errorf("%w: k_factor must be positive", ErrInvalidConfig)
	}
	if cfg.DefaultRating <= 0 {
		return nil, fmt.Errorf("%w: default_rating must be positive", ErrInvalidConfig)
	}
	if cfg.Epochs <= 0 {
		return nil, fmt.Errorf("%w: epochs must be positive", ErrInvalidConfig)
	}
	if cfg.LearningRate <= 0 {
		return nil, fmt.Errorf("%w: learning_rate must be positive", ErrInvalidConfig)
	}
	if cfg.Lambda < 0 {
		return nil, fmt.Errorf("%w: lambda must not be negative", ErrInvalidConfig)
	}
	if len(cfg.TestMonths) == 0 {
		return nil, fmt.Errorf("%w: test_months must not be empty", ErrInvalidConfig)
	}
	return &cfg, nil
}
