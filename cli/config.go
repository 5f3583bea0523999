// ABOUTME: CLI configuration and credential storage for pipctl
// ABOUTME: Handles config at XDG paths with environment variable overrides
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Config stores the PIP deployment address and cached credentials for the
// CLI. The library itself never persists tokens; that is a CLI convenience.
type Config struct {
	APIRoot string `json:"api_root,omitempty"`
	Token   string `json:"token,omitempty"`
	APIKey  string `json:"api_key,omitempty"`
}

// ConfigDir returns the XDG-compliant directory for pipctl configuration.
func ConfigDir() string {
	return filepath.Join(xdg.DataHome, "pipctl")
}

// ConfigPath returns the XDG-compliant path of the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// LoadConfig loads configuration from the XDG data directory. A missing file
// yields an empty config. Environment variables override file values:
// - PIP_API_ROOT
// - PIP_TOKEN
// - PIP_API_KEY.
func LoadConfig() (*Config, error) {
	path := ConfigPath()

	cfg := &Config{}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if apiRoot := os.Getenv("PIP_API_ROOT"); apiRoot != "" {
		cfg.APIRoot = apiRoot
	}
	if token := os.Getenv("PIP_TOKEN"); token != "" {
		cfg.Token = token
	}
	if apiKey := os.Getenv("PIP_API_KEY"); apiKey != "" {
		cfg.APIKey = apiKey
	}
}

// SaveConfig persists the configuration with restricted permissions.
func SaveConfig(cfg *Config) error {
	path := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// IsConfigured checks whether the CLI can reach a deployment.
func (c *Config) IsConfigured() bool {
	return c.APIRoot != ""
}
