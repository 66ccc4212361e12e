package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App     AppConfig     `yaml:"app"`
	Timing  TimingConfig  `yaml:"timing"`
	Random  RandomConfig  `yaml:"random"`
	Logging LoggingConfig `yaml:"logging"`
}

type AppConfig struct {
	Name string `yaml:"name"`
}

// TimingConfig holds durations as strings ("800ms", "8s").
type TimingConfig struct {
	TickInterval    string `yaml:"tick_interval"`
	CompletionDelay string `yaml:"completion_delay"`
}

type RandomConfig struct {
	Seed int64 `yaml:"seed"` // 0 = non-deterministic
}

type LoggingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

// Default reveal timings.
const (
	DefaultTickInterval    = 800 * time.Millisecond
	DefaultCompletionDelay = 8 * time.Second
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		App: AppConfig{Name: "ML Forecast"},
		Timing: TimingConfig{
			TickInterval:    DefaultTickInterval.String(),
			CompletionDelay: DefaultCompletionDelay.String(),
		},
		Logging: LoggingConfig{
			Enabled:   true,
			Path:      "logs/mlforecast.jsonl",
			MaxSizeMB: 10,
		},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error;
// environment variables override both.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if _, _, err := cfg.Durations(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("MLFORECAST_TICK_INTERVAL"); v != "" {
		c.Timing.TickInterval = v
	}
	if v := os.Getenv("MLFORECAST_COMPLETION_DELAY"); v != "" {
		c.Timing.CompletionDelay = v
	}
	if v := os.Getenv("MLFORECAST_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MLFORECAST_SEED: %w", err)
		}
		c.Random.Seed = seed
	}
	if v := os.Getenv("MLFORECAST_LOG_PATH"); v != "" {
		c.Logging.Path = v
	}
	if v := os.Getenv("MLFORECAST_LOGGING_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid MLFORECAST_LOGGING_ENABLED: %w", err)
		}
		c.Logging.Enabled = enabled
	}
	return nil
}

// Durations parses the timing section. Empty or non-positive values fall
// back to the defaults.
func (c *Config) Durations() (tick, completion time.Duration, err error) {
	tick, err = parseDuration(c.Timing.TickInterval, DefaultTickInterval)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid timing.tick_interval: %w", err)
	}
	completion, err = parseDuration(c.Timing.CompletionDelay, DefaultCompletionDelay)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid timing.completion_delay: %w", err)
	}
	return tick, completion, nil
}

// MaxLogBytes converts the rotation threshold to bytes.
func (c *Config) MaxLogBytes() int64 {
	return int64(c.Logging.MaxSizeMB) * 1024 * 1024
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return fallback, nil
	}
	return d, nil
}
