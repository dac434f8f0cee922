// Package config loads advisor configuration from environment variables.
package config

import (
	"math"
	"os"
	"runtime"
	"strconv"
)

// Config holds the server and search settings. Every field has a default,
// so the advisor runs with zero configuration.
type Config struct {
	Port           string
	Workers        int
	BatchSize      int
	Exploration    float64
	SampleInterval int
	ChanceNodes    bool
}

// Load reads configuration from environment variables with sensible
// defaults. Scores are banked points, so MCTS_EXPLORATION may need to be
// scaled up for positions where a few points of difference should not
// dominate exploration.
func Load() *Config {
	return &Config{
		Port:           envOrDefault("PORT", "8000"),
		Workers:        envIntOrDefault("MCTS_WORKERS", runtime.NumCPU()),
		BatchSize:      envIntOrDefault("MCTS_BATCH_SIZE", 64),
		Exploration:    envFloatOrDefault("MCTS_EXPLORATION", math.Sqrt2),
		SampleInterval: envIntOrDefault("MCTS_SAMPLE_INTERVAL", 100),
		ChanceNodes:    os.Getenv("MCTS_CHANCE_NODES") == "true",
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloatOrDefault(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
