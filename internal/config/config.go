// Package config loads candleterm's YAML configuration and applies
// environment variable overrides.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for candleterm.
type Config struct {
	Storage   Storage   `yaml:"storage"`
	Quotes    Quotes    `yaml:"quotes"`
	Logging   Logging   `yaml:"logging"`
	Watchlist Watchlist `yaml:"watchlist"`
}

// Storage holds paths for local persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`    // parquet bar cache root
	SQLitePath string `yaml:"sqlite_path"` // watchlist database
}

// Quotes selects and configures the market-data provider.
type Quotes struct {
	// Provider is "yahoo" (default, no credentials) or "alpaca".
	Provider string `yaml:"provider"`

	RefreshSeconds int `yaml:"refresh_seconds"`

	Alpaca Alpaca `yaml:"alpaca"`
}

// Alpaca holds credentials and endpoints for the Alpaca market-data API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	DataURL   string `yaml:"data_url"`
}

// Logging configures the application logger. Path is a log file; the
// terminal itself is owned by the TUI.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

// Watchlist seeds the ticker list on first run, before the store has any
// entries.
type Watchlist struct {
	Symbols []string `yaml:"symbols"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the built-in configuration used when no config file
// exists.
func Default() *Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".candleterm")
	return &Config{
		Storage: Storage{
			DataDir:    filepath.Join(base, "data"),
			SQLitePath: filepath.Join(base, "candleterm.db"),
		},
		Quotes: Quotes{
			Provider:       "yahoo",
			RefreshSeconds: 30,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
			Path:   filepath.Join(base, "candleterm.log"),
		},
		Watchlist: Watchlist{
			Symbols: []string{"AAPL", "MSFT", "BTC-USD"},
		},
	}
}

// Load reads the YAML configuration file at path into a Config on top of
// the defaults, then applies environment variable overrides. A missing
// file is not an error: defaults plus overrides are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CANDLETERM_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("CANDLETERM_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("CANDLETERM_PROVIDER"); v != "" {
		cfg.Quotes.Provider = v
	}
	if v := os.Getenv("CANDLETERM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Quotes.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Quotes.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Quotes.Alpaca.DataURL = v
	}

	// Canonical Alpaca SDK env vars take highest priority.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Quotes.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Quotes.Alpaca.APISecret = v
	}
}
