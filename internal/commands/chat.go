package commands

import (
	"github.com/spf13/cobra"

	"github.com/diogo/chatotp/internal/logger"
	"github.com/diogo/chatotp/internal/render"
	"github.com/diogo/chatotp/internal/suggestions"
	"github.com/diogo/chatotp/internal/tui"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start the full-screen chat.

Two suggested questions are shown until you send your first message; press
Tab to highlight one and Enter to send it. Type /help for commands and
/exit, Esc or Ctrl+C to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd)
		},
	}
}

func (a *app) runChat(cmd *cobra.Command) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	a.initLogging(cfg, false)
	defer logger.Close()

	ctrl, client, err := a.newController(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	tui.UpdateTheme()

	return a.deps.TUI.RunChat(ctrl, tui.Options{
		ModelLabel:  cfg.ModelLabel,
		Markdown:    render.LoadOptions(cfg, 80),
		Suggestions: suggestions.NewPanel(a.deps.Rand),
	})
}
