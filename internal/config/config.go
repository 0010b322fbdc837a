// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file and ECO_ environment variables.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// SubmissionQueueSize bounds the in-memory submission queue.
	SubmissionQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the submission id cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// MaxOutcomes bounds how many scored submissions are kept for lookup.
	MaxOutcomes int `koanf:"max_outcomes"`

	// MinConfidence drops detections below this confidence before scoring.
	MinConfidence float64 `koanf:"min_confidence"`

	// CatalogPath points to a YAML or TOML activity catalog. Empty uses the built-in catalog.
	CatalogPath string `koanf:"catalog_path"`

	// Detector configures the optional vision-model object detector.
	Detector DetectorConfig `koanf:"detector"`
}

// DetectorConfig configures the object detector used by POST /detect.
type DetectorConfig struct {
	Enabled   bool   `koanf:"enabled"`
	URL       string `koanf:"url"`
	Model     string `koanf:"model"`
	MaxDim    int    `koanf:"max_dim"`
	TimeoutMS int    `koanf:"timeout_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		SubmissionQueueSize: 10_000,
		WorkerCount:         runtime.NumCPU() * 2,
		DedupeSize:          100_000,
		MaxLeaderboardLimit: 100,
		MaxOutcomes:         10_000,
		MinConfidence:       0,
		CatalogPath:         "",
		Detector: DetectorConfig{
			Enabled:   false,
			URL:       "http://localhost:11434",
			Model:     "llava",
			MaxDim:    1024,
			TimeoutMS: 60_000,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.MinConfidence < 0 || c.MinConfidence > 1:
		return fmt.Errorf("%w: min_confidence must be within [0,1]", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	if c.Detector.Enabled {
		if strings.TrimSpace(c.Detector.URL) == "" {
			return fmt.Errorf("%w: detector.url must not be empty", ErrInvalidConfig)
		}
		if strings.TrimSpace(c.Detector.Model) == "" {
			return fmt.Errorf("%w: detector.model must not be empty", ErrInvalidConfig)
		}
	}
	return nil
}
