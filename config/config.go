// Package config loads troupe settings from YAML files. Configuration is
// layered: the user-level file in the home directory is read first, then a
// project-level file in the working directory overrides it.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/troupe-ai/troupe/logging"
	"gopkg.in/yaml.v3"
)

// Logging controls the structured logger built from configuration.
type Logging struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// Config holds the tunables of a troupe deployment.
type Config struct {
	// Provider selects the model backend, "openai" or "anthropic".
	Provider string `yaml:"provider"`
	// Model is the default model identifier passed to the backend when an
	// agent does not name one.
	Model string `yaml:"model"`
	// MaxTurns bounds every run started from this configuration. Zero
	// keeps the runner default.
	MaxTurns int     `yaml:"max_turns"`
	Logging  Logging `yaml:"logging"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Provider: "openai",
		Logging:  Logging{Level: "info", Format: "text"},
	}
}

// Load reads configuration from the user's home directory and the current
// working directory, with the latter taking precedence. Missing files are
// not errors; the defaults survive untouched.
func Load() (*Config, error) {
	cfg := Default()

	if home, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(home, ".troupe", "config.yaml")
		if _, err := os.Stat(userPath); err == nil {
			if err := LoadFromFile(userPath, cfg); err != nil {
				return nil, fmt.Errorf("user config: %w", err)
			}
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}
	projectPath := filepath.Join(wd, ".troupe", "config.yaml")
	if _, err := os.Stat(projectPath); err == nil {
		if err := LoadFromFile(projectPath, cfg); err != nil {
			return nil, fmt.Errorf("project config: %w", err)
		}
	}

	return cfg, nil
}

// BuildLogger constructs a structured logger from the logging section.
func (c *Config) BuildLogger() logging.Logger {
	return logging.New(&logging.Config{
		Level:     logging.ParseLevel(c.Logging.Level),
		Format:    c.Logging.Format,
		AddSource: c.Logging.AddSource,
	})
}

// LoadFromFile unmarshals one YAML file into cfg. Fields present in the file
// overwrite cfg; absent fields keep their previous values, which gives the
// layered override behavior.
func LoadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
