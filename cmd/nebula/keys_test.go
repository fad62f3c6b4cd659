package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"nebula-hq/nebula/pkg/cli"
)

func TestKeysSet(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	cmd, out := newTestCommand("")
	if err := runKeysSet(ctx, a, cmd, []string{"google", "AIzaSyTestKey1234567890"}); err != nil {
		t.Fatalf("runKeysSet() error = %v", err)
	}
	if strings.Contains(out.String(), "AIzaSyTestKey1234567890") {
		t.Errorf("output leaks the key: %s", out.String())
	}

	stored, err := a.store.Credentials(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Google != "AIzaSyTestKey1234567890" {
		t.Errorf("stored google key = %q", stored.Google)
	}
}

func TestKeysSet_Stdin(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	cmd, _ := newTestCommand("  xai-from-stdin  \n")
	if err := runKeysSet(ctx, a, cmd, []string{"grok"}); err != nil {
		t.Fatalf("runKeysSet() error = %v", err)
	}

	stored, err := a.store.Credentials(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stored.XAI != "xai-from-stdin" {
		t.Errorf("stored xai key = %q, want trimmed stdin value", stored.XAI)
	}
}

func TestKeysSet_Errors(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	cmd, _ := newTestCommand("")
	if err := runKeysSet(ctx, a, cmd, []string{"anthropic", "key"}); err == nil {
		t.Error("expected error for unknown provider")
	}

	cmd, _ = newTestCommand("\n")
	if err := runKeysSet(ctx, a, cmd, []string{"openai"}); err == nil {
		t.Error("expected error for empty stdin key")
	}
}

func TestKeysShow(t *testing.T) {
	a, _ := newTestApp(t)
	a.format = cli.FormatJSON
	ctx := context.Background()

	cmd, _ := newTestCommand("")
	if err := runKeysSet(ctx, a, cmd, []string{"openai", "sk-stored-openai-key"}); err != nil {
		t.Fatalf("runKeysSet() error = %v", err)
	}

	cmd, out := newTestCommand("")
	if err := runKeysShow(ctx, a, cmd, nil); err != nil {
		t.Fatalf("runKeysShow() error = %v", err)
	}

	var views []struct {
		Provider string `json:"provider"`
		Source   string `json:"source"`
		Key      string `json:"key"`
	}
	if err := json.Unmarshal(out.Bytes(), &views); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out.String())
	}
	if len(views) != 4 {
		t.Fatalf("got %d providers, want 4", len(views))
	}

	sources := make(map[string]string)
	for _, v := range views {
		sources[v.Provider] = v.Source
		if strings.Contains(v.Key, "stored-openai") {
			t.Errorf("key not masked: %s", v.Key)
		}
	}
	want := map[string]string{"openai": "stored", "deepseek": "config", "google": "unset"}
	for provider, source := range want {
		if sources[provider] != source {
			t.Errorf("%s source = %q, want %q", provider, sources[provider], source)
		}
	}
}

func TestKeysClear(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	cmd, _ := newTestCommand("")
	if err := runKeysSet(ctx, a, cmd, []string{"openai", "sk-openai"}); err != nil {
		t.Fatal(err)
	}
	if err := runKeysSet(ctx, a, cmd, []string{"xai", "xai-key"}); err != nil {
		t.Fatal(err)
	}

	if err := runKeysClear(ctx, a, cmd, []string{"openai"}); err != nil {
		t.Fatalf("runKeysClear(openai) error = %v", err)
	}
	stored, err := a.store.Credentials(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stored.OpenAI != "" || stored.XAI != "xai-key" {
		t.Errorf("after clearing openai: openai=%q xai=%q", stored.OpenAI, stored.XAI)
	}

	if err := runKeysClear(ctx, a, cmd, nil); err != nil {
		t.Fatalf("runKeysClear() error = %v", err)
	}
	stored, err = a.store.Credentials(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stored.XAI != "" {
		t.Errorf("xai key = %q after clearing all", stored.XAI)
	}
}
