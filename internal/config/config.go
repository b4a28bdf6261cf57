package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// MaxWidth bounds the row width accepted from env and game files.
const MaxWidth = 16

// Config holds process settings read from the environment.
type Config struct {
	Width    int           `env:"WIDTH" envDefault:"9"`
	Tick     time.Duration `env:"TICK" envDefault:"100ms"`
	DB       string        `env:"DB"`
	LogLevel slog.Level    `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses TENPAIR_* variables from the process environment.
func Load() (*Config, error) {
	return LoadFrom(env.ToMap(os.Environ()))
}

// LoadFrom parses TENPAIR_* variables from the given environment.
func LoadFrom(environment map[string]string) (*Config, error) {
	var cfg Config
	err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      "TENPAIR_",
		Environment: environment,
	})
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the ranges env tags cannot express.
func (c *Config) Validate() error {
	if c.Width < 1 || c.Width > MaxWidth {
		return &ConfigError{Field: "TENPAIR_WIDTH", Message: fmt.Sprintf("must be in 1..%d, got %d", MaxWidth, c.Width)}
	}
	// Game files carry the tick in whole milliseconds.
	if c.Tick < time.Millisecond {
		return &ConfigError{Field: "TENPAIR_TICK", Message: fmt.Sprintf("must be at least 1ms, got %s", c.Tick)}
	}
	return nil
}
