package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
)

// GameConfig holds tunables for hosted roulette matches.
type GameConfig struct {
	MaxRounds int `json:"max_rounds" env:"roulette_max_rounds"`
	// TickRate is the Nakama match loop rate in ticks per second.
	TickRate    int   `json:"tick_rate" env:"roulette_tick_rate"`
	CuesEnabled bool  `json:"cues_enabled" env:"roulette_cues_enabled"`
	Seed        int64 `json:"seed" env:"roulette_seed"` // 0 means time-seeded
}

// Default returns the built-in configuration.
func Default() GameConfig {
	return GameConfig{
		MaxRounds:   10,
		TickRate:    5,
		CuesEnabled: true,
	}
}

// Load builds a configuration from defaults, then the JSON file at path (if it
// exists), then overrides from environ. A nil environ reads the process environment.
func Load(path string, environ map[string]string) (GameConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read game config: %w", err)
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to unmarshal game config: %w", err)
			}
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports configuration values the match handler cannot run with.
func (c GameConfig) Validate() error {
	if c.MaxRounds < 1 {
		return fmt.Errorf("max_rounds must be at least 1, got %d", c.MaxRounds)
	}
	if c.TickRate < 1 || c.TickRate > 60 {
		return fmt.Errorf("tick_rate must be within 1..60, got %d", c.TickRate)
	}
	return nil
}
