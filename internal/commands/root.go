// Package commands provides CLI commands for chatotp.
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/chatotp/internal/api"
	"github.com/diogo/chatotp/internal/chat"
	"github.com/diogo/chatotp/internal/config"
	"github.com/diogo/chatotp/internal/logger"
	"github.com/diogo/chatotp/internal/render"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// globalFlags are the persistent flags shared by every subcommand
type globalFlags struct {
	endpoint string
	topK     int
	timeout  int
	verbose  bool
}

// app carries the dependencies and parsed flags into the command handlers
type app struct {
	deps  *Dependencies
	flags globalFlags
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(NewDependencies())

// NewRootCmd builds the full command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}
	a := &app{deps: deps}
	askOpts := &askOptions{}

	cmd := &cobra.Command{
		Use:   "chatotp [question]",
		Short: "Chat with the COTO Resources assistant",
		Long: `chatotp is a terminal client for the ChatOTP question-answering service.
Answers are grounded in COTO Resources and come back with the articles they
were drawn from.

Examples:
  chatotp                               Start the interactive chat
  chatotp "How do I renew my licence?"  Ask a single question
  cat question.txt | chatotp            Read the question from stdin
  chatotp ask "..." -o answer.md        Save the answer to a file
  chatotp repl                          Line-based chat for plain terminals
  chatotp health                        Check the server`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "chatotp %s (built %s)\n", Version, BuildTime)
				return nil
			}

			if len(args) > 0 {
				return a.runAsk(cmd, args[0], *askOpts)
			}

			if hasPipedInput(deps.Stdin) {
				data, err := io.ReadAll(deps.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				return a.runAsk(cmd, string(data), *askOpts)
			}

			if isTerminal(deps.Stdin) && isTerminal(deps.Stdout) {
				return a.runChat(cmd)
			}

			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&a.flags.endpoint, "endpoint", "", "Chat API endpoint (default "+config.DefaultConfig().Endpoint+")")
	cmd.PersistentFlags().IntVar(&a.flags.topK, "top-k", 0, "Number of articles to retrieve per question")
	cmd.PersistentFlags().IntVar(&a.flags.timeout, "timeout", 0, "Request timeout in seconds (0 disables)")
	cmd.PersistentFlags().BoolVar(&a.flags.verbose, "verbose", false, "Enable debug logging")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")
	askOpts.register(cmd)

	cmd.AddCommand(
		newChatCmd(a),
		newAskCmd(a),
		newReplCmd(a),
		newHealthCmd(a),
		newSuggestionsCmd(a),
		newConfigCmd(a),
	)

	cmd.SetIn(deps.Stdin)
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)

	return cmd
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration: flags > env > file > defaults
func (a *app) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := a.deps.LoadConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		cfg.Endpoint = strings.TrimSpace(a.flags.endpoint)
	}
	if flags.Changed("top-k") {
		cfg.TopK = a.flags.topK
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = a.flags.timeout
	}
	if a.flags.verbose {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	if cfg.TUITheme != "" && !render.SetTUITheme(cfg.TUITheme) {
		logger.Warn("unknown tui theme, keeping default", "theme", cfg.TUITheme)
	}

	return cfg, nil
}

// initLogging sends records to the log file, and to stderr when asked
func (a *app) initLogging(cfg config.Config, mirrorStderr bool) {
	path, err := config.GetLogPath(cfg)
	if err != nil {
		path = ""
	}

	level := cfg.LogLevel
	if cfg.Verbose {
		level = "debug"
	}

	if err := logger.Init(logger.Config{
		Enabled: true,
		Level:   level,
		File:    path,
		Stderr:  mirrorStderr && cfg.Verbose,
	}); err != nil {
		fmt.Fprintf(a.deps.Stderr, "Warning: %v\n", err)
	}
}

// newController wires a chat client into a submission controller
func (a *app) newController(cfg config.Config) (*chat.Controller, api.ChatClientInterface, error) {
	client, err := a.deps.NewClient(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create client: %w", err)
	}

	ctrl := chat.NewController(client, chat.WithTimeout(cfg.Timeout()))
	logger.Info("chat session started",
		"endpoint", client.Endpoint(),
		"top_k", cfg.TopK,
		"timeout", cfg.Timeout(),
	)
	return ctrl, client, nil
}

// hasPipedInput reports whether r is a pipe, a file or an in-memory reader
// rather than a terminal
func hasPipedInput(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// isTerminal returns true if v is a file connected to a terminal
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 80
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
