package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextFormatter_Table(t *testing.T) {
	buf := &bytes.Buffer{}
	table := &Table{
		Headers: []string{"ID", "LATENCY"},
		Rows: [][]string{
			{"p_direct", "120ms"},
			{"p_cf_1", "unreachable"},
		},
	}

	if err := NewFormatter(FormatText).FormatTo(buf, table); err != nil {
		t.Fatalf("FormatTo() error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), buf.String())
	}
	if strings.Index(lines[0], "LATENCY") != strings.Index(lines[1], "120ms") {
		t.Errorf("columns not aligned:\n%s", buf.String())
	}
}

func TestTextFormatter_Plain(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, "hello"); err != nil {
		t.Fatalf("FormatTo() error: %v", err)
	}
	if buf.String() != "hello\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestJSONFormatter_Table(t *testing.T) {
	type row struct {
		ID string `json:"id"`
	}

	buf := &bytes.Buffer{}
	table := &Table{
		Headers: []string{"ID"},
		Rows:    [][]string{{"p_direct"}},
		Data:    []row{{ID: "p_direct"}},
	}
	if err := NewFormatter(FormatJSON).FormatTo(buf, table); err != nil {
		t.Fatalf("FormatTo() error: %v", err)
	}

	var got []row
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(got) != 1 || got[0].ID != "p_direct" {
		t.Errorf("unexpected data: %+v", got)
	}

	buf.Reset()
	table.Data = nil
	if err := NewFormatter(FormatJSON).FormatTo(buf, table); err != nil {
		t.Fatalf("FormatTo() error: %v", err)
	}
	if !strings.Contains(buf.String(), `"p_direct"`) {
		t.Errorf("expected rows in output, got %s", buf.String())
	}
}
