package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nebula-hq/nebula/pkg/providers"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nebula.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
providers:
  timeout: "30s"
  google:
    base_url: "https://relay.example.com"
    thread_history: false
  deepseek:
    use_active_node: true

nodes:
  probe_timeout: "3s"
  refresh_schedule: "@every 5m"
  seed:
    - id: "lab"
      name: "Lab relay"
      url: "lab.example.com"

storage:
  path: ":memory:"

chat:
  user: "alice"
  default_model: "deepseek-v3"

telemetry:
  logging:
    level: "debug"
    format: "console"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Providers.Timeout != 30*time.Second {
		t.Errorf("expected timeout %v, got %v", 30*time.Second, cfg.Providers.Timeout)
	}
	if cfg.Providers.Google.BaseURL != "https://relay.example.com" {
		t.Errorf("expected google base URL override, got %q", cfg.Providers.Google.BaseURL)
	}
	if cfg.Providers.Google.ThreadHistoryEnabled() {
		t.Error("expected thread_history to be disabled")
	}
	if !cfg.Providers.DeepSeek.UseActiveNode {
		t.Error("expected deepseek to use the active node")
	}
	if cfg.Providers.DeepSeek.Endpoint == "" {
		t.Error("expected default deepseek endpoint")
	}
	if cfg.Nodes.ProbeTimeout != 3*time.Second {
		t.Errorf("expected probe timeout %v, got %v", 3*time.Second, cfg.Nodes.ProbeTimeout)
	}
	if len(cfg.Nodes.Seed) != 1 || cfg.Nodes.Seed[0].ID != "lab" {
		t.Errorf("expected one seed node, got %+v", cfg.Nodes.Seed)
	}
	if cfg.Chat.User != "alice" {
		t.Errorf("expected user %q, got %q", "alice", cfg.Chat.User)
	}
	if cfg.Telemetry.Logging.Format != "console" {
		t.Errorf("expected logging format %q, got %q", "console", cfg.Telemetry.Logging.Format)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "providers: [unclosed")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
storage:
  path: ":memory:"
chat:
  default_model: "no-such-model"
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Errors[0].Field != "chat.default_model" {
		t.Errorf("expected chat.default_model error, got %q", verr.Errors[0].Field)
	}
}

func TestLoadOptional_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("NEBULA_STORAGE_PATH", StorageMemory)

	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Chat.DefaultModel != DefaultModel {
		t.Errorf("expected default model %q, got %q", DefaultModel, cfg.Chat.DefaultModel)
	}
	if cfg.Storage.Path != StorageMemory {
		t.Errorf("expected env override of storage path, got %q", cfg.Storage.Path)
	}
}

func TestLoadOptional_InvalidFileStillFails(t *testing.T) {
	path := writeConfig(t, "telemetry: {logging: {level: loud}}")

	if _, err := LoadOptional(path); err == nil {
		t.Fatal("expected error for invalid logging level")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
storage:
  path: ":memory:"
nodes:
  probe_timeout: "3s"
`)

	t.Setenv("NEBULA_NODES_PROBE_TIMEOUT", "5s")
	t.Setenv("NEBULA_NODES_REFRESH_SCHEDULE", RefreshOff)
	t.Setenv("NEBULA_PROVIDERS_GOOGLE_THREAD_HISTORY", "false")
	t.Setenv("NEBULA_PROVIDERS_XAI_USE_ACTIVE_NODE", "true")
	t.Setenv("NEBULA_CHAT_USER", "bob")
	t.Setenv("NEBULA_TELEMETRY_METRICS_ENABLED", "true")
	t.Setenv("NEBULA_GOOGLE_API_KEY", "AIza-env")
	t.Setenv("NEBULA_DEEPSEEK_API_KEY", "sk-env")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Nodes.ProbeTimeout != 5*time.Second {
		t.Errorf("expected env probe timeout %v, got %v", 5*time.Second, cfg.Nodes.ProbeTimeout)
	}
	if cfg.Nodes.ScheduledRefresh() != "" {
		t.Errorf("expected scheduled refresh disabled, got %q", cfg.Nodes.ScheduledRefresh())
	}
	if cfg.Providers.Google.ThreadHistoryEnabled() {
		t.Error("expected thread_history disabled by env")
	}
	if !cfg.Providers.XAI.UseActiveNode {
		t.Error("expected xai use_active_node from env")
	}
	if cfg.Chat.User != "bob" {
		t.Errorf("expected user %q, got %q", "bob", cfg.Chat.User)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics enabled from env")
	}

	want := providers.Credentials{Google: "AIza-env", DeepSeek: "sk-env"}
	if got := cfg.Credentials.ProviderCredentials(); got != want {
		t.Errorf("expected credentials %+v, got %+v", want, got)
	}
}

func TestLoadConfigWithEnvOverrides_IgnoresMalformedValues(t *testing.T) {
	path := writeConfig(t, "storage: {path: \":memory:\"}")

	t.Setenv("NEBULA_PROVIDERS_TIMEOUT", "soon")
	t.Setenv("NEBULA_NODES_MAX_CONCURRENCY", "many")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Providers.Timeout != DefaultProviderTimeout {
		t.Errorf("expected default timeout, got %v", cfg.Providers.Timeout)
	}
	if cfg.Nodes.MaxConcurrency != 0 {
		t.Errorf("expected max concurrency 0, got %d", cfg.Nodes.MaxConcurrency)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "NEBULA_OPENAI_API_KEY=sk-from-file\nNEBULA_XAI_API_KEY=xai-from-file\n"
	if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	// An existing variable wins over the file.
	t.Setenv("NEBULA_XAI_API_KEY", "xai-from-env")
	t.Setenv("NEBULA_OPENAI_API_KEY", "")
	os.Unsetenv("NEBULA_OPENAI_API_KEY")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), envPath); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}

	if got := os.Getenv("NEBULA_OPENAI_API_KEY"); got != "sk-from-file" {
		t.Errorf("expected key from file, got %q", got)
	}
	if got := os.Getenv("NEBULA_XAI_API_KEY"); got != "xai-from-env" {
		t.Errorf("expected existing env to win, got %q", got)
	}
}
