// Package config loads the PRISM TOML configuration file.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/codwats/prism/internal/prism"
)

// EnvDBPath overrides storage.db_path.
const EnvDBPath = "PRISM_DB_PATH"

// Config represents the application configuration.
type Config struct {
	Prism    PrismConfig    `toml:"prism"`
	Storage  StorageConfig  `toml:"storage"`
	API      APIConfig      `toml:"api"`
	Scryfall ScryfallConfig `toml:"scryfall"`
	Moxfield MoxfieldConfig `toml:"moxfield"`
	Log      LogConfig      `toml:"log"`
	Watch    WatchConfig    `toml:"watch"`
}

// PrismConfig contains the marking engine settings.
type PrismConfig struct {
	Palette  []string `toml:"palette"`   // Stripe colours in assignment order
	MaxDecks int      `toml:"max_decks"` // Decks per collection
	CSVSlots int      `toml:"csv_slots"` // Slot column triples in the cards CSV
}

// StorageConfig contains database settings.
type StorageConfig struct {
	DBPath            string `toml:"db_path"`            // SQLite file; empty means ~/.prism/prism.db
	SnapshotRetention int    `toml:"snapshot_retention"` // Snapshots kept per collection (0 = all)
}

// APIConfig contains REST server settings.
type APIConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RequestTimeout string   `toml:"request_timeout"` // e.g. "30s"
}

// ScryfallConfig contains card lookup settings.
type ScryfallConfig struct {
	Enabled   bool   `toml:"enabled"`
	CacheTTL  string `toml:"cache_ttl"`  // e.g. "168h"
	RateLimit string `toml:"rate_limit"` // Minimum delay between requests
}

// MoxfieldConfig contains deck import settings.
type MoxfieldConfig struct {
	RateLimit string `toml:"rate_limit"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"` // trace, debug, info, warn, error
	File  string `toml:"file"`  // Optional JSON log file
}

// WatchConfig contains watch mode settings.
type WatchConfig struct {
	Debounce     string `toml:"debounce"`      // Quiet period before reprocessing
	PollInterval string `toml:"poll_interval"` // Backup rescan interval
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	opts := prism.DefaultOptions()
	return &Config{
		Prism: PrismConfig{
			Palette:  opts.Palette,
			MaxDecks: opts.MaxDecks,
			CSVSlots: opts.MaxDecks,
		},
		Storage: StorageConfig{
			SnapshotRetention: 20,
		},
		API: APIConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RequestTimeout: "30s",
		},
		Scryfall: ScryfallConfig{
			Enabled:   true,
			CacheTTL:  "168h",
			RateLimit: "100ms",
		},
		Moxfield: MoxfieldConfig{
			RateLimit: "1s",
		},
		Log: LogConfig{
			Level: "info",
		},
		Watch: WatchConfig{
			Debounce:     "500ms",
			PollInterval: "30s",
		},
	}
}

// Dir returns ~/.prism.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".prism"), nil
}

// DefaultPath returns the path of the configuration file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the default path.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration at path. A missing file yields the defaults;
// keys absent from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvDBPath)); v != "" {
		config.Storage.DBPath = v
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	if err := c.Encode(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if len(c.Prism.Palette) == 0 {
		return fmt.Errorf("palette cannot be empty")
	}
	seen := make(map[string]bool, len(c.Prism.Palette))
	for _, color := range c.Prism.Palette {
		key := strings.ToUpper(strings.TrimSpace(color))
		if key == "" {
			return fmt.Errorf("palette contains an empty colour")
		}
		if seen[key] {
			return fmt.Errorf("palette colour %q listed twice", color)
		}
		seen[key] = true
	}

	if c.Prism.MaxDecks < 1 {
		return fmt.Errorf("max decks must be at least 1: %d", c.Prism.MaxDecks)
	}
	if c.Prism.MaxDecks > len(c.Prism.Palette) {
		return fmt.Errorf("max decks %d exceeds the %d palette colours", c.Prism.MaxDecks, len(c.Prism.Palette))
	}
	if c.Prism.CSVSlots < 0 {
		return fmt.Errorf("csv slots cannot be negative: %d", c.Prism.CSVSlots)
	}
	if c.Storage.SnapshotRetention < 0 {
		return fmt.Errorf("snapshot retention cannot be negative: %d", c.Storage.SnapshotRetention)
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid API port %d", c.API.Port)
	}

	durations := map[string]string{
		"api.request_timeout": c.API.RequestTimeout,
		"scryfall.cache_ttl":  c.Scryfall.CacheTTL,
		"scryfall.rate_limit": c.Scryfall.RateLimit,
		"moxfield.rate_limit": c.Moxfield.RateLimit,
		"watch.debounce":      c.Watch.Debounce,
		"watch.poll_interval": c.Watch.PollInterval,
	}
	for key, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return nil
}

// Options returns the processing options of the configured palette and deck limit.
func (c *Config) Options() prism.Options {
	return prism.Options{
		Palette:  append([]string{}, c.Prism.Palette...),
		MaxDecks: c.Prism.MaxDecks,
	}
}

// duration parses an already validated duration.
func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// RequestTimeout returns the API request timeout.
func (c *Config) RequestTimeout() time.Duration { return duration(c.API.RequestTimeout) }

// CacheTTL returns how long cached card lookups stay fresh.
func (c *Config) CacheTTL() time.Duration { return duration(c.Scryfall.CacheTTL) }

// ScryfallRateLimit returns the minimum delay between Scryfall requests.
func (c *Config) ScryfallRateLimit() time.Duration { return duration(c.Scryfall.RateLimit) }

// MoxfieldRateLimit returns the minimum delay between Moxfield requests.
func (c *Config) MoxfieldRateLimit() time.Duration { return duration(c.Moxfield.RateLimit) }

// WatchDebounce returns the quiet period of watch mode.
func (c *Config) WatchDebounce() time.Duration { return duration(c.Watch.Debounce) }

// WatchPollInterval returns the backup rescan interval of watch mode.
func (c *Config) WatchPollInterval() time.Duration { return duration(c.Watch.PollInterval) }
