// Package transcript exports a chat session to Markdown or JSON.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diogo/chatotp/internal/models"
)

// Format represents the format for exporting a session
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// FormatFromPath picks the format from the file extension. Anything that
// is not .json is written as Markdown.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatMarkdown
}

// DefaultFileName returns a timestamped file name for an export.
func DefaultFileName(now time.Time) string {
	return fmt.Sprintf("chatotp-%s.md", now.Format("20060102-150405"))
}

// Markdown renders the session as a Markdown document
func Markdown(title string, messages []models.Message) string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(title)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "**Messages:** %d\n", len(messages))
	if len(messages) > 0 {
		sb.WriteString("**Started:** ")
		sb.WriteString(messages[0].CreatedAt.Format("2006-01-02 15:04:05"))
		sb.WriteString("\n")
	}
	sb.WriteString("\n---\n\n")

	for i, msg := range messages {
		sb.WriteString("## ")
		sb.WriteString(msg.Role.Label())
		if !msg.CreatedAt.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.CreatedAt.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if len(msg.Sources) > 0 {
			sb.WriteString("\n**Sources:**\n\n")
			for _, a := range msg.Sources {
				sb.WriteString("- ")
				if a.URL != "" {
					fmt.Fprintf(&sb, "[%s](%s)", orURL(a), a.URL)
				} else {
					sb.WriteString(a.Title)
				}
				sb.WriteString("\n")
			}
		}

		if i < len(messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

func orURL(a models.Article) string {
	if a.Title == "" {
		return a.URL
	}
	return a.Title
}

type exportSession struct {
	Title      string           `json:"title"`
	ExportedAt time.Time        `json:"exported_at"`
	Messages   []models.Message `json:"messages"`
}

// JSON renders the session as indented JSON
func JSON(title string, messages []models.Message, exportedAt time.Time) ([]byte, error) {
	if messages == nil {
		messages = []models.Message{}
	}
	return json.MarshalIndent(exportSession{
		Title:      title,
		ExportedAt: exportedAt,
		Messages:   messages,
	}, "", "  ")
}

// WriteFile exports the session to path in the format implied by its
// extension. Parent directories are created as needed.
func WriteFile(path, title string, messages []models.Message) error {
	var data []byte
	switch FormatFromPath(path) {
	case FormatJSON:
		b, err := JSON(title, messages, time.Now())
		if err != nil {
			return fmt.Errorf("failed to encode transcript: %w", err)
		}
		data = b
	default:
		data = []byte(Markdown(title, messages))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}
