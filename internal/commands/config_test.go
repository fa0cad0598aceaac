package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diogo/chatotp/internal/api"
	"github.com/diogo/chatotp/internal/config"
)

func TestConfigPath(t *testing.T) {
	env := newTestEnv(t, &api.MockChatClient{})
	home := os.Getenv(config.EnvHome)

	if err := env.run("config", "path"); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(home, "config.json")
	if strings.TrimSpace(env.stdout.String()) != want {
		t.Errorf("path = %q, want %q", env.stdout.String(), want)
	}
}

func TestConfigInit(t *testing.T) {
	env := newTestEnv(t, &api.MockChatClient{})
	path := filepath.Join(os.Getenv(config.EnvHome), "config.json")

	if err := env.run("config", "init"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var cfg config.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config is not valid JSON: %v", err)
	}
	if cfg.Endpoint != config.DefaultConfig().Endpoint {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}

	if err := env.run("config", "init"); err == nil {
		t.Error("second init without --force should fail")
	}
	if err := env.run("config", "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestConfigShow(t *testing.T) {
	env := newTestEnv(t, &api.MockChatClient{})

	if err := env.run("config", "show", "--top-k", "4"); err != nil {
		t.Fatal(err)
	}

	var cfg config.Config
	if err := json.Unmarshal(env.stdout.Bytes(), &cfg); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, env.stdout.String())
	}
	if cfg.TopK != 4 {
		t.Errorf("TopK = %d, want flag value 4", cfg.TopK)
	}
}
