// Package config handles TOML-based configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// APIKeyEnv is the environment variable that overrides the configured API key.
const APIKeyEnv = "OMDB_API_KEY"

const appName = "marquee"

// Config holds all application configuration.
type Config struct {
	Base              string  `toml:"base"`
	APIKey            string  `toml:"api_key"`
	Type              string  `toml:"type"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	History           bool    `toml:"history"`
	DownloadDir       string  `toml:"download_dir"`
	Viewer            string  `toml:"viewer"`
	Debug             bool    `toml:"debug"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Base:              "www.omdbapi.com",
		Type:              "movie",
		RequestsPerSecond: 5,
		TimeoutSeconds:    15,
		History:           true,
		DownloadDir:       "~/Pictures/marquee",
		Viewer:            "auto",
		Debug:             false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults, then applies the
// API key environment override.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
// A missing API key is not a validation error; commands that reach the
// network check it with RequireAPIKey.
func (c *Config) Validate() error {
	validTypes := map[string]bool{
		"movie": true, "series": true, "episode": true, "": true,
	}
	if !validTypes[strings.ToLower(c.Type)] {
		return fmt.Errorf("unsupported type %q (valid: movie, series, episode)", c.Type)
	}

	validViewers := map[string]bool{
		"auto": true, "xdg-open": true, "open": true, "feh": true, "imv": true,
	}
	if !validViewers[strings.ToLower(c.Viewer)] {
		return fmt.Errorf("unsupported viewer %q (valid: auto, xdg-open, open, feh, imv)", c.Viewer)
	}

	if c.RequestsPerSecond <= 0 || c.RequestsPerSecond > 50 {
		return fmt.Errorf("requests_per_second must be in (0, 50], got %v", c.RequestsPerSecond)
	}

	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}

	if c.Base == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	return nil
}

// RequireAPIKey reports a descriptive error when no API key is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("no OMDb API key: set api_key in the config file or %s", APIKeyEnv)
	}
	return nil
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ExpandDownloadDir resolves ~ in the download directory path.
func (c *Config) ExpandDownloadDir() (string, error) {
	dir := c.DownloadDir
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}
	return filepath.Abs(dir)
}

// HistoryPath returns the path to the search history database.
func HistoryPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, appName, "history.db"), nil
}

// LogPath returns the path of the log file used while the TUI owns the terminal.
func LogPath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, appName, appName+".log"), nil
}
