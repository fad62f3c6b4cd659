package google

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"nebula-hq/nebula/pkg/providers"
)

const (
	// DefaultBaseURL is the direct Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultAPIVersion is the API version path segment.
	DefaultAPIVersion = "v1beta"

	// defaultImageMime is assumed for inline response data without a media type.
	defaultImageMime = "image/png"
)

// Config configures the Gemini adapter.
type Config struct {
	// BaseURL is used when a request carries no override. Default: DefaultBaseURL.
	BaseURL string

	// APIVersion is the version path segment. Default: DefaultAPIVersion.
	APIVersion string

	// ThreadHistory sends prior turns as conversation contents. When false,
	// only the current prompt and its attachments are sent.
	ThreadHistory bool
}

// NewAdapter returns the request builder and response parser for Gemini.
func NewAdapter(cfg Config) providers.Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}

	return providers.Adapter{
		Tag: providers.ProviderGoogle,
		Build: func(req providers.Request) (providers.Call, error) {
			return buildCall(cfg, req), nil
		},
		Parse: ParseResponse,
	}
}

// buildCall assembles the generateContent POST for req.
func buildCall(cfg Config, req providers.Request) providers.Call {
	base := cfg.BaseURL
	if override := strings.TrimSpace(req.BaseURLOverride); override != "" {
		base = override
	}
	base = strings.TrimRight(base, "/")

	return providers.Call{
		URL: fmt.Sprintf("%s/%s/models/%s:generateContent", base, cfg.APIVersion, url.PathEscape(req.Model)),
		Headers: map[string]string{
			"x-goog-api-key": req.Credentials.Google,
		},
		Body: BuildRequest(req, cfg.ThreadHistory),
	}
}

// BuildRequest converts a provider-agnostic request to a generateContent body.
func BuildRequest(req providers.Request, threadHistory bool) *GenerateContentRequest {
	out := &GenerateContentRequest{}

	if threadHistory {
		for _, turn := range req.History {
			if turn.Text == "" {
				continue
			}
			role := roleUser
			if turn.Role == providers.RoleAssistant {
				role = roleModel
			}
			out.Contents = append(out.Contents, Content{
				Role:  role,
				Parts: []Part{{Text: turn.Text}},
			})
		}
	}

	out.Contents = append(out.Contents, Content{
		Role:  roleUser,
		Parts: buildParts(req.Prompt, req.Attachments),
	})

	if req.SystemInstruction != "" {
		out.SystemInstruction = &Content{Parts: []Part{{Text: req.SystemInstruction}}}
	}

	if req.ThinkingBudget != nil {
		budget := *req.ThinkingBudget
		out.GenerationConfig = &GenerationConfig{
			ThinkingConfig: &ThinkingConfig{ThinkingBudget: &budget},
		}
	}

	return out
}

// buildParts embeds images and PDFs as inline data and inlines every other
// attachment as a text block. The prompt comes last.
func buildParts(prompt string, attachments []providers.Attachment) []Part {
	parts := make([]Part, 0, len(attachments)+1)
	for _, att := range attachments {
		if att.IsInlineBinary() {
			parts = append(parts, Part{InlineData: &InlineData{
				MimeType: att.MimeType,
				Data:     att.Base64Data(),
			}})
			continue
		}
		parts = append(parts, Part{Text: fmt.Sprintf("\n[file: %s]\n%s\n", att.Name, att.Payload)})
	}
	if prompt != "" {
		parts = append(parts, Part{Text: prompt})
	}
	return parts
}

// ParseResponse extracts markdown from a generateContent response body.
// Generated images are appended as data-URI markdown images.
func ParseResponse(body []byte) (string, error) {
	var resp GenerateContentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &providers.ParseError{
			Provider:    providers.ProviderGoogle,
			RawResponse: string(body),
			Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
		}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" && !part.Thought {
			sb.WriteString(part.Text)
		}
		if part.InlineData != nil {
			mime := part.InlineData.MimeType
			if mime == "" {
				mime = defaultImageMime
			}
			fmt.Fprintf(&sb, "\n\n![AI Image](data:%s;base64,%s)\n\n", mime, part.InlineData.Data)
		}
	}
	return sb.String(), nil
}
