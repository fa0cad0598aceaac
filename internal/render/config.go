package render

import (
	"os"

	"github.com/diogo/chatotp/internal/config"
)

// LoadOptions builds render options from the user configuration.
// GLAMOUR_STYLE takes precedence over the configured style.
func LoadOptions(cfg config.Config, width int) Options {
	opts := FromMarkdownConfig(cfg.Markdown).WithWidth(width)

	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}

	return opts
}
