package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 15, cfg.Prism.MaxDecks)
	assert.Len(t, cfg.Prism.Palette, 22)
	assert.Equal(t, 7*24*time.Hour, cfg.CacheTTL())
	assert.Equal(t, time.Second, cfg.MoxfieldRateLimit())
	assert.Equal(t, 500*time.Millisecond, cfg.WatchDebounce())
}

func TestLoadFrom_MissingFile(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFrom_PartialFile(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[prism]
palette = ["#111111", "#222222", "#333333"]
max_decks = 3

[api]
port = 9090

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"#111111", "#222222", "#333333"}, cfg.Prism.Palette)
	assert.Equal(t, 3, cfg.Prism.MaxDecks)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, "168h", cfg.Scryfall.CacheTTL)
	assert.Equal(t, 20, cfg.Storage.SnapshotRetention)

	opts := cfg.Options()
	assert.Equal(t, 3, opts.MaxDecks)
	assert.Equal(t, cfg.Prism.Palette, opts.Palette)
}

func TestLoadFrom_EnvOverride(t *testing.T) {
	t.Setenv(EnvDBPath, "/tmp/other.db")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.Storage.DBPath)
}

func TestLoadFrom_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[prism\n"), 0o644))
	_, err := LoadFrom(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("[watch]\ndebounce = \"soon\"\n"), 0o644))
	_, err = LoadFrom(invalid)
	assert.ErrorContains(t, err, "watch.debounce")
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Storage.DBPath = "/data/prism.db"
	cfg.Watch.Debounce = "2s"
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DefaultConfig().Encode(&buf))

	out := buf.String()
	assert.Contains(t, out, "[prism]")
	assert.Contains(t, out, "max_decks = 15")
	assert.Contains(t, out, "[watch]")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty palette", func(c *Config) { c.Prism.Palette = nil }},
		{"duplicate colour", func(c *Config) { c.Prism.Palette = []string{"#ECC933", "#ecc933"}; c.Prism.MaxDecks = 1 }},
		{"blank colour", func(c *Config) { c.Prism.Palette = []string{" "}; c.Prism.MaxDecks = 1 }},
		{"zero decks", func(c *Config) { c.Prism.MaxDecks = 0 }},
		{"more decks than colours", func(c *Config) { c.Prism.MaxDecks = 23 }},
		{"negative csv slots", func(c *Config) { c.Prism.CSVSlots = -1 }},
		{"negative retention", func(c *Config) { c.Storage.SnapshotRetention = -1 }},
		{"bad port", func(c *Config) { c.API.Port = 70000 }},
		{"bad ttl", func(c *Config) { c.Scryfall.CacheTTL = "forever" }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
