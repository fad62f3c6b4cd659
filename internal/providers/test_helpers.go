package providers

import (
	"errors"
	"testing"

	"nebula-hq/nebula/pkg/providers"
)

// TestCredentials returns a credential set with a key for every provider.
func TestCredentials() providers.Credentials {
	return providers.Credentials{
		Google:   "AIza-test",
		OpenAI:   "sk-openai-test",
		DeepSeek: "sk-deepseek-test",
		XAI:      "xai-test",
	}
}

// TestRequest creates a single-turn request for provider and model.
func TestRequest(provider providers.ProviderTag, model, prompt string) providers.Request {
	return providers.Request{
		Model:       model,
		Provider:    provider,
		Prompt:      prompt,
		Credentials: TestCredentials(),
	}
}

// TestTurn creates a conversation turn.
func TestTurn(role providers.Role, text string) providers.Turn {
	return providers.Turn{Role: role, Text: text}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertErrorAs fails the test unless err matches target with errors.As.
func AssertErrorAs(t *testing.T, err error, target interface{}) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.As(err, target) {
		t.Fatalf("expected error of type %T, got %T: %v", target, err, err)
	}
}
