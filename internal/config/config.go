// Package config loads featurecat settings from the environment
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds environment driven settings. CLI flags take precedence.
type Config struct {
	LogLevel      string        `env:"FEATURECAT_LOG_LEVEL" envDefault:"warn"`
	JSONLog       bool          `env:"FEATURECAT_JSON_LOG"`
	Locale        string        `env:"FEATURECAT_LOCALE"`
	WatchDebounce time.Duration `env:"FEATURECAT_WATCH_DEBOUNCE" envDefault:"100ms"`
}

var dotenvLoaded sync.Once

// Load parses the environment, reading a .env file in the working
// directory first if one exists
func Load() (Config, error) {
	dotenvLoaded.Do(func() {
		// Ignore errors - the .env file might not exist and that's ok
		_ = godotenv.Load()
	})

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		LogLevel:      "warn", // Default to warn for production safety
		WatchDebounce: 100 * time.Millisecond,
	}
}
