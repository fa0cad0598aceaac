package commands

import (
	"bytes"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/diogo/chatotp/internal/api"
	"github.com/diogo/chatotp/internal/chat"
	"github.com/diogo/chatotp/internal/config"
	"github.com/diogo/chatotp/internal/tui"
)

// fakeTUI records RunChat calls instead of starting bubbletea
type fakeTUI struct {
	calls int
	ctrl  *chat.Controller
	opts  tui.Options
	err   error
}

func (f *fakeTUI) RunChat(ctrl *chat.Controller, opts tui.Options) error {
	f.calls++
	f.ctrl = ctrl
	f.opts = opts
	return f.err
}

type testEnv struct {
	deps   *Dependencies
	client *api.MockChatClient
	tui    *fakeTUI
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	cfg    *config.Config // config seen by the client factory
}

func newTestEnv(t *testing.T, client *api.MockChatClient) *testEnv {
	t.Helper()
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv("GLAMOUR_STYLE", "notty")

	env := &testEnv{
		client: client,
		tui:    &fakeTUI{},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	env.deps = &Dependencies{
		NewClient: func(cfg config.Config) (api.ChatClientInterface, error) {
			c := cfg
			env.cfg = &c
			return client, nil
		},
		TUI:        env.tui,
		LoadConfig: func() (config.Config, error) { return config.DefaultConfig(), nil },
		Rand:       rand.New(rand.NewPCG(1, 2)),
		Stdout:     env.stdout,
		Stderr:     env.stderr,
	}
	return env
}

func (e *testEnv) withStdin(r io.Reader) *testEnv {
	e.deps.Stdin = r
	return e
}

func (e *testEnv) run(args ...string) error {
	cmd := NewRootCmd(e.deps)
	cmd.SetArgs(args)
	return cmd.Execute()
}
