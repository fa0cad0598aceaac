package render

import (
	"fmt"
	"strings"

	"github.com/diogo/chatotp/internal/models"
)

// Markdown renders markdown content for terminal display.
func Markdown(content string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// MarkdownWithWidth renders with default options at the given width.
func MarkdownWithWidth(content string, width int) (string, error) {
	return Markdown(content, DefaultOptions().WithWidth(width))
}

// SourcesMarkdown formats the articles behind an answer as a numbered list.
// It returns "" when there are none.
func SourcesMarkdown(sources []models.Article) string {
	if len(sources) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("**Sources**\n\n")
	for i, a := range sources {
		title := a.Title
		if title == "" {
			title = a.URL
		}
		if a.URL != "" {
			fmt.Fprintf(&sb, "%d. [%s](%s)", i+1, title, a.URL)
		} else {
			fmt.Fprintf(&sb, "%d. %s", i+1, title)
		}
		if a.Relevance > 0 {
			fmt.Fprintf(&sb, " (%.0f%% match)", a.Relevance*100)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Answer renders an assistant message with its sources appended.
// Rendering errors fall back to the raw text.
func Answer(msg models.Message, opts Options) string {
	content := msg.Content
	if src := SourcesMarkdown(msg.Sources); src != "" {
		content += "\n\n" + src
	}

	rendered, err := Markdown(content, opts)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}
