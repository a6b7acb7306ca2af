// Package config loads tool settings from a TOML file, applying
// defaults for anything the file does not set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds user-tunable settings. Every field has a working
// default; a config file is optional.
type Config struct {
	Workers             int     `toml:"workers"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	MaxImages           int     `toml:"max_images"`
	UseTrash            bool    `toml:"use_trash"`
	LogFile             string  `toml:"log_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Workers:             8,
		SimilarityThreshold: 0.80,
		MaxImages:           300,
	}
}

// DefaultPath returns the conventional config file location
// (e.g. ~/.config/dupfinder/config.toml on Linux).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "dupfinder", "config.toml"), nil
}

// Load reads the config file at path over the defaults. A missing file
// is not an error; a malformed or invalid one is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in [0,1], got %g", c.SimilarityThreshold)
	}
	if c.MaxImages < 0 {
		return fmt.Errorf("max_images must not be negative, got %d", c.MaxImages)
	}
	return nil
}
