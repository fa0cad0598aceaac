package commands

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/diogo/chatotp/internal/chat"
	"github.com/diogo/chatotp/internal/logger"
	"github.com/diogo/chatotp/internal/models"
	"github.com/diogo/chatotp/internal/suggestions"
	"github.com/diogo/chatotp/internal/transcript"
)

// timeNow is replaced in tests
var timeNow = time.Now

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Line-based chat for pipes and plain terminals",
		Long: `Read questions line by line and print each answer when it arrives.

Type /1 or /2 to send a suggested question, /export [path] to save the
conversation and exit (or Ctrl+D) to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			defer ctrl.Close()

			label := cfg.ModelLabel
			if label == "" {
				label = models.DefaultModelTag
			}

			r := &repl{
				ctrl:  ctrl,
				panel: suggestions.NewPanel(a.deps.Rand),
				in:    a.deps.Stdin,
				out:   a.deps.Stdout,
				label: label,
			}
			return r.run()
		},
	}
}

// repl is a plain stdin/stdout front end for the controller
type repl struct {
	ctrl  *chat.Controller
	panel *suggestions.Panel
	in    io.Reader
	out   io.Writer
	label string
}

func (r *repl) run() error {
	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintln(r.out, boldGreen("✦ "+models.AppName))
	fmt.Fprintf(r.out, "Model: %s  •  Source: %s\n", boldCyan(r.label), models.KnowledgeSource)
	fmt.Fprintln(r.out, "Type your question and press Enter. Type 'exit' or press Ctrl+D to quit.")

	if r.panel.Visible() {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, "Suggestions:")
		for i, s := range r.panel.Items() {
			fmt.Fprintf(r.out, "  %s %s %s\n", boldCyan("/"+strconv.Itoa(i+1)), s.Title, faint(s.Label))
		}
	}
	fmt.Fprintln(r.out)

	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(r.out, boldGreen("You: "))
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			break
		}
		input := strings.TrimSpace(scanner.Text())

		switch {
		case input == "":
			continue
		case input == "exit" || input == "quit" || input == "/exit" || input == "/quit":
			return nil
		case input == "/help":
			fmt.Fprintln(r.out, faint("/1 /2 send a suggestion  •  /export [path] save the conversation  •  exit quit"))
			continue
		case strings.HasPrefix(input, "/export"):
			r.export(strings.TrimSpace(strings.TrimPrefix(input, "/export")), yellow)
			continue
		}

		question := input
		if n, ok := suggestionIndex(input); ok {
			s, chosen := r.panel.Choose(n - 1)
			if !chosen {
				fmt.Fprintln(r.out, yellow("No suggestion "+input))
				continue
			}
			question = s.Action
			fmt.Fprintln(r.out, faint(question))
		}
		r.panel.Hide()

		done := r.ctrl.Submit(question)
		if done == nil {
			fmt.Fprintln(r.out, yellow(models.BusyWarning))
			continue
		}
		<-done

		answer, ok := r.ctrl.Store().Last(models.RoleAssistant)
		if !ok {
			continue
		}
		fmt.Fprintf(r.out, "%s%s\n", boldCyan(models.AppName+": "), answer.Content)
		for i, a := range answer.Sources {
			fmt.Fprintln(r.out, faint(fmt.Sprintf("  [%d] %s", i+1, a.String())))
		}
		fmt.Fprintln(r.out)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

func (r *repl) export(path string, warn func(a ...interface{}) string) {
	messages := r.ctrl.Messages()
	if len(messages) == 0 {
		fmt.Fprintln(r.out, warn("Nothing to export yet"))
		return
	}
	if path == "" {
		path = transcript.DefaultFileName(timeNow())
	}
	if err := transcript.WriteFile(path, models.AppName, messages); err != nil {
		fmt.Fprintln(r.out, warn(err.Error()))
		return
	}
	fmt.Fprintf(r.out, "Exported %d messages to %s\n", len(messages), path)
}

// suggestionIndex parses "/1", "/2", ... into a 1-based index
func suggestionIndex(input string) (int, bool) {
	if !strings.HasPrefix(input, "/") {
		return 0, false
	}
	n, err := strconv.Atoi(input[1:])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
