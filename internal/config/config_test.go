package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diogo/chatotp/internal/models"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvEndpoint, EnvTopK, EnvTimeout, EnvTheme} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Endpoint != models.DefaultEndpoint {
		t.Errorf("Expected endpoint %s, got %s", models.DefaultEndpoint, cfg.Endpoint)
	}
	if cfg.TopK != 3 {
		t.Errorf("Expected TopK 3, got %d", cfg.TopK)
	}
	if cfg.ModelLabel != "GPT-4o mini" {
		t.Errorf("Expected model label 'GPT-4o mini', got %s", cfg.ModelLabel)
	}
	if cfg.Verbose {
		t.Error("Expected Verbose to be false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigTimeout(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Timeout() != 120*time.Second {
		t.Errorf("expected 120s, got %v", cfg.Timeout())
	}

	cfg.RequestTimeout = 0
	if cfg.Timeout() != 0 {
		t.Errorf("expected no timeout, got %v", cfg.Timeout())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid https", func(c *Config) { c.Endpoint = "https://chat.example.org/api/chat" }, ""},
		{"bad scheme", func(c *Config) { c.Endpoint = "ftp://localhost/api/chat" }, "scheme"},
		{"no host", func(c *Config) { c.Endpoint = "http:///api/chat" }, "missing host"},
		{"zero top_k", func(c *Config) { c.TopK = 0 }, "top_k"},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -1 }, "request_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetConfigDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() returned error: %v", err)
	}
	if got != dir {
		t.Errorf("GetConfigDir() = %s, want %s", got, dir)
	}
}

func TestGetConfigDir_Home(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, "")
	t.Setenv("HOME", home)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() returned error: %v", err)
	}
	if got != filepath.Join(home, ".chatotp") {
		t.Errorf("GetConfigDir() = %s", got)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg.Endpoint != models.DefaultEndpoint {
		t.Errorf("expected default endpoint, got %s", cfg.Endpoint)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	t.Setenv(EnvHome, filepath.Join(t.TempDir(), "nested"))
	clearEnv(t)

	cfg := DefaultConfig()
	cfg.Endpoint = "http://rag.internal:9000/api/chat"
	cfg.TopK = 5
	cfg.Verbose = true
	cfg.Markdown.Style = "light"

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() returned error: %v", err)
	}

	path, _ := GetConfigPath()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if loaded.Endpoint != cfg.Endpoint || loaded.TopK != 5 || !loaded.Verbose {
		t.Errorf("loaded config mismatch: %+v", loaded)
	}
	if loaded.Markdown.Style != "light" {
		t.Errorf("expected markdown style 'light', got %s", loaded.Markdown.Style)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)
	clearEnv(t)

	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err == nil {
		t.Fatal("expected parse error")
	}
	if cfg.Endpoint != models.DefaultEndpoint {
		t.Error("expected defaults on parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvEndpoint, "https://chat.example.org/api/chat")
	t.Setenv(EnvTopK, "7")
	t.Setenv(EnvTimeout, "30")
	t.Setenv(EnvTheme, "nord")

	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv() returned error: %v", err)
	}

	if cfg.Endpoint != "https://chat.example.org/api/chat" {
		t.Errorf("endpoint = %s", cfg.Endpoint)
	}
	if cfg.TopK != 7 {
		t.Errorf("top_k = %d", cfg.TopK)
	}
	if cfg.RequestTimeout != 30 {
		t.Errorf("timeout = %d", cfg.RequestTimeout)
	}
	if cfg.TUITheme != "nord" {
		t.Errorf("theme = %s", cfg.TUITheme)
	}
}

func TestApplyEnv_InvalidNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTopK, "three")

	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg); err == nil {
		t.Error("expected error for non-numeric top_k")
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := EnvEndpoint + "=http://dotenv.local:8000/api/chat\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	// t.Setenv above registered cleanup for the variable; unset so the file value applies
	os.Unsetenv(EnvEndpoint)

	if err := LoadDotEnv(envFile, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() returned error: %v", err)
	}

	if got := os.Getenv(EnvEndpoint); got != "http://dotenv.local:8000/api/chat" {
		t.Errorf("expected endpoint from .env, got %q", got)
	}
}

func TestGetLogPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)

	cfg := DefaultConfig()
	path, err := GetLogPath(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "chatotp.log") {
		t.Errorf("default log path = %s", path)
	}

	cfg.LogFile = "custom.log"
	path, _ = GetLogPath(cfg)
	if path != filepath.Join(dir, "custom.log") {
		t.Errorf("relative log path = %s", path)
	}

	abs := filepath.Join(t.TempDir(), "abs.log")
	cfg.LogFile = abs
	path, _ = GetLogPath(cfg)
	if path != abs {
		t.Errorf("absolute log path = %s", path)
	}
}
