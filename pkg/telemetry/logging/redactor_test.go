package logging

import (
	"testing"

	"nebula-hq/nebula/pkg/config"
)

func TestRedactor_RedactString(t *testing.T) {
	redactor := NewRedactor(nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "openai key", input: "key sk-proj-abc123XYZ used", want: "key sk-*** used"},
		{name: "deepseek key", input: "sk-1234abcd", want: "sk-***"},
		{name: "gemini key", input: "AIzaSyD-abc_123", want: "AIza***"},
		{name: "xai key", input: "xai-Zz9988", want: "xai-***"},
		{name: "bearer token", input: "Authorization: Bearer abc.def-ghi", want: "Authorization: Bearer ***"},
		{name: "key query parameter", input: "https://x.dev/v1beta/models?key=TEST&alt=json", want: "https://x.dev/v1beta/models?key=***&alt=json"},
		{name: "plain text untouched", input: "node p_direct is reachable", want: "node p_direct is reachable"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactor.RedactString(tt.input); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactor_CustomPatterns(t *testing.T) {
	redactor := NewRedactor([]config.RedactPattern{
		{Name: "relay_token", Pattern: `rt_[a-z0-9]+`, Replacement: "rt_***"},
		{Name: "broken", Pattern: `([`, Replacement: "x"},
	})

	if got := redactor.RedactString("token rt_abc123"); got != "token rt_***" {
		t.Errorf("custom pattern not applied: %q", got)
	}
	if len(redactor.patterns) != len(defaultPatterns)+1 {
		t.Errorf("expected invalid pattern to be skipped, have %d patterns", len(redactor.patterns))
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := map[string]bool{
		"api_key":       true,
		"API-Key":       true,
		"key":           true,
		"x_auth_token":  true,
		"Authorization": true,
		"node":          false,
		"model":         false,
		"keyboard":      false,
	}
	for key, want := range tests {
		if got := IsSensitiveKey(key); got != want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestRedactAPIKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"short", "***"},
		{"sk-abcdefghijkl", "sk-a***"},
		{"AIzaSyABCDEFG", "AIza***"},
	}
	for _, tt := range tests {
		if got := RedactAPIKey(tt.in); got != tt.want {
			t.Errorf("RedactAPIKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
