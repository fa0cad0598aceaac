package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	apierrors "github.com/diogo/chatotp/internal/errors"
	"github.com/diogo/chatotp/internal/logger"
	"github.com/diogo/chatotp/internal/models"
	"github.com/diogo/chatotp/internal/render"
	"github.com/diogo/chatotp/internal/tui"
)

// clipboardWrite is replaced in tests
var clipboardWrite = clipboard.WriteAll

// askOptions are the flags of a one-shot question
type askOptions struct {
	raw    bool
	output string
	copy   bool
}

func (o *askOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.raw, "raw", false, "Print only the answer text, without styling or spinner")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Save the answer (and its sources) to a file")
	cmd.Flags().BoolVar(&o.copy, "copy", false, "Copy the answer to the clipboard")
}

func newAskCmd(a *app) *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question",
		Long: `Send one question and print the answer with its sources.

The question is read from stdin when no argument is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return a.runAsk(cmd, args[0], *opts)
			}
			if !hasPipedInput(a.deps.Stdin) {
				return apierrors.ErrEmptyQuestion
			}
			data, err := io.ReadAll(a.deps.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			return a.runAsk(cmd, string(data), *opts)
		},
	}
	opts.register(cmd)
	return cmd
}

// runAsk executes a single question and outputs the answer
func (a *app) runAsk(cmd *cobra.Command, question string, opts askOptions) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return apierrors.ErrEmptyQuestion
	}

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	a.initLogging(cfg, !opts.raw)
	defer logger.Close()

	stderr := a.deps.Stderr
	stdout := a.deps.Stdout
	verbose := cfg.Verbose && !opts.raw

	client, err := a.deps.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	if verbose {
		fmt.Fprintf(stderr, "[verbose] Endpoint: %s (top_k=%d)\n", client.Endpoint(), cfg.TopK)
	}

	var spin *spinner
	if !opts.raw && isTerminal(stderr) {
		spin = newSpinner(stderr, "Asking "+models.AppName)
		spin.start()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout := cfg.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	startTime := time.Now()
	resp, err := client.Ask(ctx, question)
	requestDuration := time.Since(startTime)

	if err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		logger.Warn("ask failed", "kind", apierrors.Kind(err), "err", err)
		if !opts.raw {
			fmt.Fprintln(stderr, formatErrorMessage(err, "Request failed"))
		}
		return fmt.Errorf("request failed: %w", err)
	}
	if spin != nil {
		spin.stopWithSuccess("Done")
	}

	if verbose {
		fmt.Fprintf(stderr, "[verbose] Request took %s\n", requestDuration.Round(time.Millisecond))
		fmt.Fprintf(stderr, "[verbose] Response includes %d sources\n", len(resp.Articles))
	}

	answer := models.Message{
		Role:    models.RoleAssistant,
		Content: resp.Answer,
		Sources: resp.Articles,
	}

	if opts.copy || cfg.CopyToClipboard {
		if err := clipboardWrite(resp.Answer); err != nil {
			if !opts.raw {
				fmt.Fprintln(stderr, warnStyle().Render(fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
			}
		} else if !opts.raw {
			fmt.Fprintln(stderr, successStyle().Render("✓ Copied to clipboard"))
		}
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(answerDocument(answer)), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !opts.raw {
			fmt.Fprintln(stderr, successStyle().Render(fmt.Sprintf("✓ Answer saved to %s", opts.output)))
		}
		return nil
	}

	if opts.raw {
		fmt.Fprint(stdout, resp.Answer)
		if !strings.HasSuffix(resp.Answer, "\n") {
			fmt.Fprintln(stdout)
		}
		return nil
	}

	bubbleWidth := getTerminalWidth(stdout) - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	theme := currentTheme()
	label := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("✦ " + models.AppName)
	bubble := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Foreground(theme.Text).
		Padding(0, 1).
		MarginBottom(1).
		Width(bubbleWidth).
		Render(render.Answer(answer, render.LoadOptions(cfg, contentWidth)))

	fmt.Fprintln(stdout, label)
	fmt.Fprintln(stdout, bubble)
	return nil
}

// answerDocument is the Markdown written by --output
func answerDocument(msg models.Message) string {
	doc := strings.TrimRight(msg.Content, "\n") + "\n"
	if src := render.SourcesMarkdown(msg.Sources); src != "" {
		doc += "\n" + src
	}
	return doc
}

// formatErrorMessage formats an error with a short context prefix
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}
	return tui.FormatError(fmt.Errorf("%s: %w", context, err))
}

func currentTheme() render.TUITheme {
	return render.GetTUITheme()
}

func successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(currentTheme().Success)
}

func warnStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(currentTheme().Warning)
}
