// Package config loads and validates the tradesync configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the complete tradesync configuration.
type Config struct {
	Remote RemoteConfig `json:"remote" yaml:"remote"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Owner  string       `json:"owner" yaml:"owner"`
	Log    LogConfig    `json:"log" yaml:"log"`
}

// RemoteConfig locates the trades backend. Token may be left empty and
// supplied through the TRADESYNC_TOKEN environment variable instead.
type RemoteConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	Token   string `json:"token,omitempty" yaml:"token,omitempty"`
}

// StoreConfig locates the durable local store.
type StoreConfig struct {
	Path string `json:"path" yaml:"path"`
}

// LogConfig contains logging parameters.
type LogConfig struct {
	Level string `json:"level" yaml:"level"` // trace, debug, info, warn, error
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Remote.BaseURL == "" {
		return fmt.Errorf("remote.base_url is required")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Owner == "" {
		return fmt.Errorf("owner is required")
	}
	switch c.Log.Level {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log.level: %s", c.Log.Level)
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Remote: RemoteConfig{
			BaseURL: "http://localhost:8080",
		},
		Store: StoreConfig{
			Path: "./tradesync.sqlite",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
