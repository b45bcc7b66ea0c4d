// Package config loads and stores the awxmon configuration file.
//
// Priority for every setting is env var, then config file, then default.
// The token is read through Config.TokenProvider on every request so a
// login performed in another terminal is picked up without restarting.
package config

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// Config is the persisted configuration plus runtime overrides.
type Config struct {
	Host     string `toml:"host"`
	Token    string `toml:"token"`
	Insecure bool   `toml:"insecure"`

	PageSize int    `toml:"page_size"`
	OrderBy  string `toml:"order_by"`
	LogLevel string `toml:"log_level"`

	// Path the config was loaded from. Not serialized.
	Path string `toml:"-"`
}

// DefaultPath returns the config file location under the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "awxmon", "config.toml")
}

// StateDir returns the directory for persistent data such as the history
// database.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "awxmon")
}

// DatabasePath returns the path of the job history database.
func DatabasePath() string {
	return filepath.Join(StateDir(), "history.db")
}

// Load reads the config at path, or DefaultPath when path is empty. A missing
// file is not an error; defaults and env vars still apply.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := &Config{Path: path}
	if info, err := os.Stat(path); err == nil {
		if perm := info.Mode().Perm(); perm&0o077 != 0 {
			slog.Warn("config file has insecure permissions",
				"path", path, "mode", fmt.Sprintf("%04o", perm))
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	applyDefaults(cfg)
	applyEnv(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config back to its path with 0600 permissions; the file
// holds the API token.
func (cfg *Config) Save() error {
	path := cfg.Path
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), fs.FileMode(0o600)); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.PageSize == 0 {
		cfg.PageSize = 25
	}
	if cfg.OrderBy == "" {
		cfg.OrderBy = "-finished"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// Env vars win over everything.
func applyEnv(cfg *Config) {
	if v := os.Getenv("AWXMON_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("AWXMON_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("AWXMON_INSECURE"); v == "1" || v == "true" {
		cfg.Insecure = true
	}
}

func validate(cfg *Config) error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log_level: %q", cfg.LogLevel)
	}
	if cfg.PageSize < 1 || cfg.PageSize > 200 {
		return fmt.Errorf("page_size must be between 1 and 200, got %d", cfg.PageSize)
	}
	return nil
}

// TokenProvider returns a function that re-reads the token from env and the
// config file on every call.
func (cfg *Config) TokenProvider() func() string {
	return func() string {
		if v := os.Getenv("AWXMON_TOKEN"); v != "" {
			return v
		}
		fresh := &Config{}
		if _, err := toml.DecodeFile(cfg.Path, fresh); err == nil && fresh.Token != "" {
			return fresh.Token
		}
		return cfg.Token
	}
}

func (cfg *Config) SlogLevel() slog.Level {
	switch cfg.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
