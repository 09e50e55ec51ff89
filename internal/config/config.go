// Package config handles global cfgclone configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the global cfgclone configuration.
type Config struct {
	// DefaultRepo is the name of the default repository (from Repos).
	DefaultRepo string `toml:"default_repo"`

	// Repos maps repository names to their root paths.
	Repos map[string]string `toml:"repos"`
}

// GetRepoPath returns the root path for a named repository.
// If name is empty, returns the default repository's path.
func (c *Config) GetRepoPath(name string) (string, error) {
	if name == "" {
		name = c.DefaultRepo
	}
	if name == "" {
		return "", fmt.Errorf("no default repository configured")
	}
	if c.Repos != nil {
		if path, ok := c.Repos[name]; ok {
			return path, nil
		}
	}
	return "", fmt.Errorf("repository '%s' not found in config", name)
}

// Load loads the configuration from the default location.
// Returns an empty config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &config, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/cfgclone/config.toml first (XDG style),
// then falls back to the OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "cfgclone", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "cfgclone", "config.toml")
	}
	return filepath.Join(".", "config.toml")
}

// CreateDefault creates a default config file if it doesn't exist and
// returns its path.
func CreateDefault() (string, error) {
	configPath := DefaultPath()
	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := `# cfgclone configuration

# Default repository name (must exist in [repos] below)
# default_repo = "erp"

# Named configuration repositories (XML dump roots)
# [repos]
# erp = "/path/to/erp-config-dump"
# test = "/path/to/test-config-dump"
`

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return configPath, nil
}
