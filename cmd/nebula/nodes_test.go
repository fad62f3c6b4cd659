package main

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	testhelpers "nebula-hq/nebula/internal/providers"
	"nebula-hq/nebula/pkg/cli"
	"nebula-hq/nebula/pkg/nodes"
)

func TestRunNodesCheck(t *testing.T) {
	a, mock := newTestApp(t)
	a.format = cli.FormatJSON

	cmd, out := newTestCommand("")
	if err := runNodesCheck(context.Background(), a, cmd, nil); err != nil {
		t.Fatalf("runNodesCheck() error = %v", err)
	}

	var views []struct {
		ID        string `json:"id"`
		Reachable bool   `json:"reachable"`
		Active    bool   `json:"active"`
	}
	if err := json.Unmarshal(out.Bytes(), &views); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out.String())
	}
	if len(views) != 1 {
		t.Fatalf("got %d nodes, want 1", len(views))
	}
	if v := views[0]; v.ID != "relay" || !v.Reachable || !v.Active {
		t.Errorf("node view = %+v, want reachable active relay", v)
	}
	if mock.GetRequestCount() == 0 {
		t.Error("expected the relay to be probed")
	}
}

func TestPrintNodes_Text(t *testing.T) {
	pool := []nodes.Node{
		{ID: "p_direct", Name: "Direct", URL: "https://generativelanguage.googleapis.com", LatencyMs: 120, Reachable: true},
		{ID: "p_cf_1", Name: "Relay 1", URL: "https://relay.example.com", LatencyMs: nodes.LatencyUnknown},
	}

	cmd, out := newTestCommand("")
	if err := printNodes(cmd.OutOrStdout(), cli.FormatText, pool, "p_direct"); err != nil {
		t.Fatalf("printNodes() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[1], "*") {
		t.Errorf("active row not marked: %q", lines[1])
	}
	if !strings.Contains(lines[2], "unprobed") {
		t.Errorf("unprobed row = %q", lines[2])
	}
}

func TestLatencyLabel(t *testing.T) {
	tests := []struct {
		name string
		node nodes.Node
		want string
	}{
		{"unprobed", nodes.Node{LatencyMs: nodes.LatencyUnknown}, "unprobed"},
		{"reachable", nodes.Node{LatencyMs: 250, Reachable: true}, "250ms"},
		{"unreachable", nodes.Node{LatencyMs: nodes.LatencyUnreachable}, "unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := latencyLabel(tt.node); got != tt.want {
				t.Errorf("latencyLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDoctor(t *testing.T) {
	a, _ := newTestApp(t)

	report := a.health.Run(context.Background())
	if !report.Healthy() {
		t.Fatalf("report not healthy: %+v", report.Checks)
	}

	cmd, out := newTestCommand("")
	if err := printReport(cmd, cli.FormatText, report); err != nil {
		t.Fatalf("printReport() error = %v", err)
	}
	for _, want := range []string{"credentials", "Overall: "} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("report missing %q:\n%s", want, out.String())
		}
	}
}

func TestDoctor_NoCredentials(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	cfg := newTestConfig(mock)
	cfg.Credentials.DeepSeek = ""
	a, err := newApp(context.Background(), cfg, io.Discard)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	defer a.Close()

	if report := a.health.Run(context.Background()); report.Healthy() {
		t.Error("expected an unhealthy report without credentials")
	}
}
