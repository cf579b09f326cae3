// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DatabaseURL points at the PostgreSQL instance holding sets and
	// ratings. Empty means run against a generated synthetic season.
	DatabaseURL string `koanf:"database_url"`

	// KFactor controls the magnitude of rating change per set.
	KFactor float64 `koanf:"k_factor"`

	// DefaultRating is assigned to players with no processed sets.
	DefaultRating float64 `koanf:"default_rating"`

	// TestMonths and TestYear define the holdout window for the model
	// comparison.
	TestMonths []int `koanf:"test_months"`
	TestYear   int   `koanf:"test_year"`

	// Epochs, LearningRate and Lambda are the SGD hyperparameters shared
	// by the trained models.
	Epochs       int     `koanf:"epochs"`
	LearningRate float64 `koanf:"learning_rate"`
	Lambda       float64 `koanf:"lambda"`

	// GapTerm enables the partner skill-gap coefficient in the skill model.
	GapTerm bool `koanf:"gap_term"`

	// Seed drives the training shuffles and the synthetic generator.
	Seed int64 `koanf:"seed"`

	// TopN caps the ranked output printed after a recompute.
	TopN int `koanf:"top_n"`

	// StandingsCapacity pre-sizes the in-memory standings store.
	StandingsCapacity int `koanf:"standings_capacity"`
}

// New creates a Config using provided options. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use (e.g.,
// loading from env/files) and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:          "info",
		DatabaseURL:       "",
		KFactor:           32.0,
		DefaultRating:     1500.0,
		TestMonths:        []int{10, 11},
		TestYear:          2025,
		Epochs:            50,
		LearningRate:      0.01,
		Lambda:            1.0,
		GapTerm:           false,
		Seed:              42,
		TopN:              20,
		StandingsCapacity: 2048,
	}
	return c
}
