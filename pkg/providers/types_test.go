package providers

import (
	"errors"
	"testing"
)

func TestParseProviderTag(t *testing.T) {
	tests := []struct {
		input    string
		expected ProviderTag
		wantErr  bool
	}{
		{"google", ProviderGoogle, false},
		{"OpenAI", ProviderOpenAI, false},
		{" deepseek ", ProviderDeepSeek, false},
		{"xai", ProviderXAI, false},
		{"grok", ProviderXAI, false},
		{"anthropic", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tag, err := ParseProviderTag(tt.input)
			if tt.wantErr {
				var unsupported *UnsupportedProviderError
				if !errors.As(err, &unsupported) {
					t.Fatalf("expected UnsupportedProviderError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tag != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tag)
			}
		})
	}
}

func TestAttachment_IsInlineBinary(t *testing.T) {
	tests := []struct {
		mime     string
		expected bool
	}{
		{"image/png", true},
		{"image/jpeg", true},
		{"application/pdf", true},
		{"text/plain", false},
		{"application/json", false},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			a := Attachment{MimeType: tt.mime}
			if got := a.IsInlineBinary(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestAttachment_Base64Data(t *testing.T) {
	withPrefix := Attachment{Payload: "data:image/png;base64,iVBORw0KGgo="}
	if got := withPrefix.Base64Data(); got != "iVBORw0KGgo=" {
		t.Errorf("expected prefix to be stripped, got %q", got)
	}

	bare := Attachment{Payload: "iVBORw0KGgo="}
	if got := bare.Base64Data(); got != "iVBORw0KGgo=" {
		t.Errorf("expected bare payload unchanged, got %q", got)
	}
}

func TestCredentials(t *testing.T) {
	creds := Credentials{Google: "g", DeepSeek: "d"}

	if creds.For(ProviderGoogle) != "g" || creds.For(ProviderDeepSeek) != "d" {
		t.Errorf("unexpected lookup result: %+v", creds)
	}
	if creds.For(ProviderOpenAI) != "" {
		t.Error("expected openai key to be unset")
	}
	if creds.For("unknown") != "" {
		t.Error("expected unknown provider to have no key")
	}

	updated := creds.With(ProviderXAI, "x")
	if updated.XAI != "x" || creds.XAI != "" {
		t.Error("With must return a modified copy")
	}

	merged := Credentials{Google: "mine"}.Merge(Credentials{Google: "theirs", OpenAI: "o"})
	if merged.Google != "mine" || merged.OpenAI != "o" {
		t.Errorf("unexpected merge result: %+v", merged)
	}
}
