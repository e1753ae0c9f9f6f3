package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WATCHDECK_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "local", cfg.Backend.Mode)
	require.Equal(t, "WATCHDECK_API_TOKEN", cfg.Backend.TokenEnv)
	require.Equal(t, "WATCHDECK_USER", cfg.Auth.UsernameEnv)
	require.True(t, cfg.UI.ConfirmDelete)
	require.Equal(t, 150, cfg.UI.DeferredLoadMS)
	require.Contains(t, cfg.Database.Path, "watchdeck.db")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[backend]
mode = "remote"
base_url = "https://lists.example.com"

[ui]
confirm_delete = false
deferred_load_ms = 50
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("WATCHDECK_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "remote", cfg.Backend.Mode)
	require.Equal(t, "https://lists.example.com", cfg.Backend.BaseURL)
	require.False(t, cfg.UI.ConfirmDelete)
	require.Equal(t, 50, cfg.UI.DeferredLoadMS)
	// untouched keys keep their defaults
	require.Equal(t, "WATCHDECK_API_TOKEN", cfg.Backend.TokenEnv)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[backend]\nmode = \"local\"\n"), 0o644))
	t.Setenv("WATCHDECK_CONFIG", path)
	t.Setenv("WATCHDECK_BACKEND_MODE", "remote")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "remote", cfg.Backend.Mode)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("WATCHDECK_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.Backend.Mode = "remote"
	cfg.Backend.BaseURL = "https://lists.example.com"
	cfg.UI.ConfirmDelete = false

	require.NoError(t, Save(cfg))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, "remote", got.Backend.Mode)
	require.Equal(t, "https://lists.example.com", got.Backend.BaseURL)
	require.False(t, got.UI.ConfirmDelete)
	require.Equal(t, 150, got.UI.DeferredLoadMS)
}
