package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetOutputFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "warn")
	defer SetOutput(&bytes.Buffer{}, "info")

	Info("hidden message")
	Warn("exchange failed", "kind", "status", "status_code", 500)

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "exchange failed") || !strings.Contains(out, "status_code=500") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestInitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chatotp.log")

	if err := Init(Config{Enabled: true, Level: "debug", File: path}); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}
	Debug("submission accepted", "chars", 12)
	if err := Close(); err != nil {
		t.Fatalf("Close() returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "submission accepted") {
		t.Errorf("log file missing record: %s", data)
	}
}

func TestInitDisabled(t *testing.T) {
	if err := Init(Config{Enabled: false}); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}
	// Must not panic when disabled
	Error("ignored")
}
