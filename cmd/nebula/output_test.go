package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"nebula-hq/nebula/pkg/catalog"
	"nebula-hq/nebula/pkg/chat"
	"nebula-hq/nebula/pkg/cli"
	"nebula-hq/nebula/pkg/providers"
)

func TestPrintModels(t *testing.T) {
	models := []catalog.Model{
		{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Provider: providers.ProviderGoogle, VendorModel: "gemini-2.5-flash"},
		{ID: "deepseek-v3", Name: "DeepSeek V3", Provider: providers.ProviderDeepSeek, VendorModel: "deepseek-chat"},
	}

	var out bytes.Buffer
	if err := printModels(&out, cli.FormatText, models, "deepseek-v3"); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[2], "*") || !strings.Contains(lines[2], "deepseek-chat") {
		t.Errorf("expected current model marked, got %q", lines[2])
	}
}

func TestPrintHistory(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msgs := []chat.Message{
		{Role: providers.RoleUser, Text: "look at this", Timestamp: ts,
			Attachments: []providers.Attachment{{Name: "cat.png"}}},
		{Role: providers.RoleAssistant, Text: "a cat", Timestamp: ts},
	}

	var out bytes.Buffer
	if err := printHistory(&out, cli.FormatText, msgs); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"user (attached: cat.png)", "look at this", "a cat"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := printHistory(&out, cli.FormatJSON, msgs); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out.String()), "[") {
		t.Errorf("expected JSON array, got %q", out.String())
	}
}
