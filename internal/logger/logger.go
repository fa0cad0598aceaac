// Package logger is a small log/slog wrapper. The chat TUI owns the terminal,
// so records normally go to a file; one-shot commands may mirror to stderr.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Config describes logger settings.
type Config struct {
	Enabled bool
	Level   string
	File    string
	Stderr  bool
}

var (
	mu   sync.RWMutex
	base = slog.New(slog.NewTextHandler(io.Discard, nil))
	file *os.File
)

// Init (re)configures the package logger. A previously opened log file is closed.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	closeFile()

	if !cfg.Enabled {
		base = slog.New(slog.NewTextHandler(io.Discard, nil))
		return nil
	}

	var writers []io.Writer
	var initErr error
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
			initErr = fmt.Errorf("logger: create log dir: %w", err)
		} else if f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600); err != nil {
			initErr = fmt.Errorf("logger: open log file: %w", err)
		} else {
			file = f
			writers = append(writers, f)
		}
	}
	if cfg.Stderr {
		writers = append(writers, os.Stderr)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	base = slog.New(slog.NewTextHandler(io.MultiWriter(writers...), opts))
	return initErr
}

// SetOutput routes records to w at the given level. Used by tests.
func SetOutput(w io.Writer, level string) {
	mu.Lock()
	defer mu.Unlock()
	closeFile()
	base = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeFile()
}

// must be called with mu held
func closeFile() error {
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	log(slog.LevelDebug, msg, args...)
}

// Info logs an info message.
func Info(msg string, args ...any) {
	log(slog.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	log(slog.LevelWarn, msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	log(slog.LevelError, msg, args...)
}

func log(level slog.Level, msg string, args ...any) {
	mu.RLock()
	l := base
	mu.RUnlock()

	l.Log(context.Background(), level, msg, args...)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
