package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	testhelpers "nebula-hq/nebula/internal/providers"
	"nebula-hq/nebula/pkg/config"
)

// newTestConfig returns a valid in-memory configuration whose only node and
// DeepSeek endpoint are served by mock.
func newTestConfig(mock *testhelpers.MockServer) *config.Config {
	cfg := &config.Config{}
	cfg.Storage.Path = config.StorageMemory
	cfg.Nodes.DisableBuiltin = true
	cfg.Nodes.Seed = []config.NodeEntry{{ID: "relay", Name: "Test relay", URL: mock.URL()}}
	cfg.Providers.DeepSeek.Endpoint = mock.URL() + testhelpers.DeepSeekPath
	cfg.Credentials.DeepSeek = "sk-config-deepseek"
	cfg.Telemetry.Metrics.Enabled = false
	config.ApplyDefaults(cfg)
	return cfg
}

func newTestApp(t *testing.T) (*app, *testhelpers.MockServer) {
	t.Helper()

	mock := testhelpers.NewMockServer()
	t.Cleanup(mock.Close)

	cfg := newTestConfig(mock)
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	a, err := newApp(context.Background(), cfg, io.Discard)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(a.Close)
	return a, mock
}

// newTestCommand returns a command whose streams are captured.
func newTestCommand(stdin string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(bytes.NewBufferString(stdin))
	return cmd, out
}

func TestNewApp(t *testing.T) {
	a, _ := newTestApp(t)

	active, ok := a.registry.Active()
	if !ok || active.ID != "relay" {
		t.Errorf("active node = %q (ok=%v), want relay", active.ID, ok)
	}
	if n := len(a.registry.Nodes()); n != 1 {
		t.Errorf("pool size = %d, want 1", n)
	}
	if got := strings.Join(a.health.Names(), ","); got != "store,credentials,nodes" {
		t.Errorf("health checks = %s, want store,credentials,nodes", got)
	}
}

func TestApp_CredentialsPrecedence(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	if got := a.credentials(ctx).DeepSeek; got != "sk-config-deepseek" {
		t.Errorf("deepseek credential = %q, want config value", got)
	}

	stored, err := a.store.Credentials(ctx)
	if err != nil {
		t.Fatal(err)
	}
	stored.DeepSeek = "sk-stored-deepseek"
	if err := a.store.SaveCredentials(ctx, stored); err != nil {
		t.Fatal(err)
	}

	if got := a.credentials(ctx).DeepSeek; got != "sk-stored-deepseek" {
		t.Errorf("deepseek credential = %q, want stored value to win", got)
	}
}

func TestApp_ApplyConfig(t *testing.T) {
	a, mock := newTestApp(t)

	cfg := newTestConfig(mock)
	cfg.Credentials.XAI = "xai-reloaded"
	cfg.Telemetry.Logging.Level = "debug"
	cfg.Nodes.Seed = append(cfg.Nodes.Seed, config.NodeEntry{ID: "second", Name: "Second relay", URL: "relay2.example.com/"})
	a.applyConfig(cfg)

	if got := a.credentials(context.Background()).XAI; got != "xai-reloaded" {
		t.Errorf("xai credential = %q, want xai-reloaded", got)
	}
	if got := a.levelVar.Level().String(); got != "DEBUG" {
		t.Errorf("log level = %s, want DEBUG", got)
	}

	pool := a.registry.Nodes()
	if len(pool) != 2 {
		t.Fatalf("pool size = %d, want 2", len(pool))
	}
	if pool[1].URL != "https://relay2.example.com" {
		t.Errorf("merged node URL = %q, want normalized https://relay2.example.com", pool[1].URL)
	}
}

func TestOpenStore_SQLite(t *testing.T) {
	cfg := config.StorageConfig{Path: t.TempDir() + "/nested/nebula.db"}
	s, err := openStore(cfg, nil)
	if err != nil {
		t.Fatalf("openStore() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
