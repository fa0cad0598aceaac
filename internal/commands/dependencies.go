package commands

import (
	"io"
	"math/rand/v2"
	"os"

	"github.com/diogo/chatotp/internal/api"
	"github.com/diogo/chatotp/internal/chat"
	"github.com/diogo/chatotp/internal/config"
	"github.com/diogo/chatotp/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctrl *chat.Controller, opts tui.Options) error
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(ctrl *chat.Controller, opts tui.Options) error {
	return tui.RunChat(ctrl, opts)
}

// ClientFactory builds the chat API client from the effective configuration.
type ClientFactory func(cfg config.Config) (api.ChatClientInterface, error)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewClient creates the chat API client.
	NewClient ClientFactory

	// TUI is the terminal user interface.
	TUI TUIInterface

	// LoadConfig reads the configuration file and environment.
	LoadConfig func() (config.Config, error)

	// Rand draws the starter suggestions. Nil uses the global source.
	Rand *rand.Rand

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewClient:  newChatClient,
		TUI:        &DefaultTUI{},
		LoadConfig: config.LoadConfig,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

func newChatClient(cfg config.Config) (api.ChatClientInterface, error) {
	client, err := api.NewClient(
		api.WithEndpoint(cfg.Endpoint),
		api.WithTopK(cfg.TopK),
		api.WithTimeout(cfg.Timeout()),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}
