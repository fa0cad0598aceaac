// Package config handles configuration for the ChatOTP client.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/diogo/chatotp/internal/models"
)

// Environment variables that override file values
const (
	EnvHome     = "CHATOTP_HOME"
	EnvEndpoint = "CHATOTP_ENDPOINT"
	EnvTopK     = "CHATOTP_TOP_K"
	EnvTimeout  = "CHATOTP_TIMEOUT"
	EnvTheme    = "CHATOTP_THEME"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", "dracula", "notty" or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	// Endpoint is the full URL of the chat API.
	Endpoint string `json:"endpoint"`
	// TopK is sent with every question and controls how many articles the
	// backend retrieves.
	TopK int `json:"top_k"`
	// RequestTimeout is the per-request limit in seconds. Zero disables it.
	RequestTimeout int `json:"request_timeout"`
	// ModelLabel is shown under the title in the chat header.
	ModelLabel string `json:"model_label"`
	// Verbose enables debug logging and timing output for one-shot queries.
	Verbose         bool           `json:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	LogFile         string         `json:"log_file,omitempty"`
	LogLevel        string         `json:"log_level,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Endpoint:        models.DefaultEndpoint,
		TopK:            models.DefaultTopK,
		RequestTimeout:  120,
		ModelLabel:      models.DefaultModelTag,
		Verbose:         false,
		CopyToClipboard: false,
		TUITheme:        "tokyonight",
		LogLevel:        "info",
		Markdown:        DefaultMarkdownConfig(),
	}
}

// Timeout returns RequestTimeout as a duration
func (c Config) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// Validate checks the values that the chat client depends on
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", c.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", c.Endpoint)
	}
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be at least 1, got %d", c.TopK)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout cannot be negative, got %d", c.RequestTimeout)
	}
	return nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".chatotp"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the log file path, resolving relative names against the config dir
func GetLogPath(cfg Config) (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	if cfg.LogFile == "" {
		return filepath.Join(configDir, "chatotp.log"), nil
	}
	if filepath.IsAbs(cfg.LogFile) {
		return cfg.LogFile, nil
	}
	return filepath.Join(configDir, cfg.LogFile), nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" by default)
// into the process environment. Variables already set are kept and missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig loads the configuration from disk and applies environment overrides
func LoadConfig() (Config, error) {
	cfg, err := loadFile()
	if err != nil {
		return cfg, err
	}

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func loadFile() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides cfg with values from CHATOTP_* environment variables
func ApplyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvEndpoint)); v != "" {
		cfg.Endpoint = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvTopK)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTopK, v, err)
		}
		cfg.TopK = n
	}

	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		cfg.RequestTimeout = n
	}

	if v := strings.TrimSpace(os.Getenv(EnvTheme)); v != "" {
		cfg.TUITheme = v
	}

	return nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
