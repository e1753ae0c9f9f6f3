package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Backend  BackendConfig
	Auth     AuthConfig
	Database DatabaseConfig
	UI       UIConfig
}

// BackendConfig selects and parameterizes the persistence backend.
type BackendConfig struct {
	Mode     string // "local" or "remote"
	BaseURL  string `mapstructure:"base_url"`
	TokenEnv string `mapstructure:"token_env"`
	Token    string
}

// AuthConfig holds caller identity settings.
type AuthConfig struct {
	UsernameEnv string `mapstructure:"username_env"`
	Username    string
}

// DatabaseConfig holds sqlite settings for local mode.
type DatabaseConfig struct {
	Path       string
	Migrations string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	ConfirmDelete  bool `mapstructure:"confirm_delete"`
	DeferredLoadMS int  `mapstructure:"deferred_load_ms"`
}

// Load reads configuration from file and env. Env var overrides use prefix WATCHDECK_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("backend.mode", "local")
	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.token_env", "WATCHDECK_API_TOKEN")
	v.SetDefault("backend.token", "")
	v.SetDefault("auth.username_env", "WATCHDECK_USER")
	v.SetDefault("auth.username", "")
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "watchdeck", "watchdeck.db"))
	v.SetDefault("database.migrations", "internal/database/migrations")
	v.SetDefault("ui.confirm_delete", true)
	v.SetDefault("ui.deferred_load_ms", 150)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("WATCHDECK_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "watchdeck"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("WATCHDECK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// This is primarily used by the TUI for non-sensitive preferences. The backend
// token belongs in the secrets store or an env var, not here.
func Save(cfg Config) error {
	path := os.Getenv("WATCHDECK_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "watchdeck", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("backend.mode", cfg.Backend.Mode)
	v.Set("backend.base_url", cfg.Backend.BaseURL)
	v.Set("backend.token_env", cfg.Backend.TokenEnv)
	v.Set("backend.token", cfg.Backend.Token)
	v.Set("auth.username_env", cfg.Auth.UsernameEnv)
	v.Set("auth.username", cfg.Auth.Username)
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.migrations", cfg.Database.Migrations)
	v.Set("ui.confirm_delete", cfg.UI.ConfirmDelete)
	v.Set("ui.deferred_load_ms", cfg.UI.DeferredLoadMS)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
