package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PageSize != 25 {
		t.Errorf("PageSize = %d, want 25", cfg.PageSize)
	}
	if cfg.OrderBy != "-finished" {
		t.Errorf("OrderBy = %q, want -finished", cfg.OrderBy)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "host = \"https://awx.example.com\"\ntoken = \"abc\"\npage_size = 50\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Host != "https://awx.example.com" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if cfg.Token != "abc" {
		t.Errorf("Token = %q", cfg.Token)
	}
	if cfg.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", cfg.PageSize)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("host = \"https://file.example.com\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AWXMON_HOST", "https://env.example.com")
	t.Setenv("AWXMON_TOKEN", "env-token")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Host != "https://env.example.com" {
		t.Errorf("Host = %q, want env override", cfg.Host)
	}
	if cfg.Token != "env-token" {
		t.Errorf("Token = %q, want env override", cfg.Token)
	}
}

func TestLoad_RejectsBadLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("log_level = \"loud\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unsupported log_level")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := &Config{Host: "https://awx.example.com", Token: "secret", PageSize: 25, OrderBy: "-finished", LogLevel: "info", Path: path}

	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("permissions = %04o, want 0600", perm)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Host != cfg.Host || loaded.Token != cfg.Token {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestTokenProvider_PicksUpRotatedToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("token = \"old\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	provider := cfg.TokenProvider()
	if got := provider(); got != "old" {
		t.Fatalf("token = %q, want old", got)
	}

	if err := os.WriteFile(path, []byte("token = \"new\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := provider(); got != "new" {
		t.Errorf("token = %q, want new after rotation", got)
	}
}
