package openai

import (
	"fmt"
	"log/slog"
	"strings"

	"nebula-hq/nebula/pkg/providers"
)

// Fixed chat completions endpoints per vendor.
const (
	OpenAIEndpoint   = "https://api.openai.com/v1/chat/completions"
	DeepSeekEndpoint = "https://api.deepseek.com/chat/completions"
	XAIEndpoint      = "https://api.x.ai/v1/chat/completions"
)

// DefaultRelayPath is appended to the active node URL when a vendor is
// configured to go through it.
const DefaultRelayPath = "/v1/chat/completions"

// Config configures one OpenAI-compatible vendor.
type Config struct {
	// Endpoint replaces the vendor's fixed endpoint when non-empty.
	Endpoint string

	// UseActiveNode routes the call through Request.BaseURLOverride + RelayPath
	// when an override is present.
	UseActiveNode bool

	// RelayPath defaults to DefaultRelayPath.
	RelayPath string

	// Logger receives debug output about dropped attachments.
	Logger *slog.Logger
}

// DefaultEndpoint returns the fixed endpoint of an OpenAI-compatible vendor,
// or "" for any other tag.
func DefaultEndpoint(tag providers.ProviderTag) string {
	switch tag {
	case providers.ProviderOpenAI:
		return OpenAIEndpoint
	case providers.ProviderDeepSeek:
		return DeepSeekEndpoint
	case providers.ProviderXAI:
		return XAIEndpoint
	}
	return ""
}

// NewAdapter returns the chat completions adapter for tag, which must be
// one of openai, deepseek or xai.
func NewAdapter(tag providers.ProviderTag, cfg Config) providers.Adapter {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint(tag)
	}
	if cfg.RelayPath == "" {
		cfg.RelayPath = DefaultRelayPath
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	logger := cfg.Logger.With("component", "providers.openai", "provider", tag)

	return providers.Adapter{
		Tag: tag,
		Build: func(req providers.Request) (providers.Call, error) {
			endpoint, err := resolveEndpoint(tag, cfg, req.BaseURLOverride)
			if err != nil {
				return providers.Call{}, err
			}
			return providers.Call{
				URL: endpoint,
				Headers: map[string]string{
					"Authorization": "Bearer " + req.Credentials.For(tag),
				},
				Body: BuildRequest(tag, req, logger),
			}, nil
		},
		Parse: func(body []byte) (string, error) {
			return ParseResponse(tag, body)
		},
	}
}

// resolveEndpoint picks the URL a call is posted to.
func resolveEndpoint(tag providers.ProviderTag, cfg Config, override string) (string, error) {
	if cfg.UseActiveNode {
		if base := strings.TrimRight(strings.TrimSpace(override), "/"); base != "" {
			return base + "/" + strings.TrimLeft(cfg.RelayPath, "/"), nil
		}
	}
	if cfg.Endpoint == "" {
		return "", fmt.Errorf("no chat completions endpoint for provider %q", tag)
	}
	return cfg.Endpoint, nil
}
