package providers

import "strings"

// ProviderTag identifies one of the fixed vendor API shapes the dispatcher
// knows how to talk to. The set is closed.
type ProviderTag string

// Supported provider tags.
const (
	ProviderGoogle   ProviderTag = "google"
	ProviderOpenAI   ProviderTag = "openai"
	ProviderDeepSeek ProviderTag = "deepseek"
	ProviderXAI      ProviderTag = "xai"
)

// AllProviders lists every supported tag in display order.
var AllProviders = []ProviderTag{ProviderGoogle, ProviderOpenAI, ProviderDeepSeek, ProviderXAI}

// Valid reports whether t is one of the supported tags.
func (t ProviderTag) Valid() bool {
	switch t {
	case ProviderGoogle, ProviderOpenAI, ProviderDeepSeek, ProviderXAI:
		return true
	}
	return false
}

// String returns the tag as a string.
func (t ProviderTag) String() string {
	return string(t)
}

// ParseProviderTag converts a user supplied name into a ProviderTag.
// Matching is case-insensitive; "grok" is accepted as an alias for xai.
func ParseProviderTag(s string) (ProviderTag, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "grok" {
		name = string(ProviderXAI)
	}
	tag := ProviderTag(name)
	if !tag.Valid() {
		return "", &UnsupportedProviderError{Provider: s}
	}
	return tag, nil
}

// Role identifies the author of a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// AttachmentKind distinguishes pictures from other files.
type AttachmentKind string

// Attachment kinds.
const (
	AttachmentImage    AttachmentKind = "image"
	AttachmentDocument AttachmentKind = "document"
)

// Attachment is a file the user attached to a prompt.
// Payload holds base64 data (optionally as a data URI) for images and PDFs,
// and the raw text for everything else.
type Attachment struct {
	Kind     AttachmentKind `json:"kind"`
	MimeType string         `json:"mime_type"`
	Name     string         `json:"name"`
	Payload  string         `json:"payload"`
}

// IsInlineBinary reports whether the attachment travels as binary data
// (images and PDFs) rather than as inlined text.
func (a Attachment) IsInlineBinary() bool {
	return strings.HasPrefix(a.MimeType, "image/") || a.MimeType == "application/pdf"
}

// Base64Data returns the payload with any "data:<mime>;base64," prefix removed.
func (a Attachment) Base64Data() string {
	if _, data, found := strings.Cut(a.Payload, ","); found {
		return data
	}
	return a.Payload
}

// Turn is one message of a conversation.
type Turn struct {
	Role        Role         `json:"role"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Credentials holds one API key per provider. An empty string means unset.
type Credentials struct {
	Google   string `json:"google,omitempty"`
	OpenAI   string `json:"openai,omitempty"`
	DeepSeek string `json:"deepseek,omitempty"`
	XAI      string `json:"xai,omitempty"`
}

// For returns the key configured for the given provider.
func (c Credentials) For(tag ProviderTag) string {
	switch tag {
	case ProviderGoogle:
		return c.Google
	case ProviderOpenAI:
		return c.OpenAI
	case ProviderDeepSeek:
		return c.DeepSeek
	case ProviderXAI:
		return c.XAI
	}
	return ""
}

// With returns a copy of c with the key for tag replaced.
func (c Credentials) With(tag ProviderTag, key string) Credentials {
	switch tag {
	case ProviderGoogle:
		c.Google = key
	case ProviderOpenAI:
		c.OpenAI = key
	case ProviderDeepSeek:
		c.DeepSeek = key
	case ProviderXAI:
		c.XAI = key
	}
	return c
}

// Merge returns c with every unset key filled from other.
func (c Credentials) Merge(other Credentials) Credentials {
	for _, tag := range AllProviders {
		if c.For(tag) == "" {
			c = c.With(tag, other.For(tag))
		}
	}
	return c
}

// Request is a single provider-agnostic send.
type Request struct {
	// Model is the vendor model id (e.g. "deepseek-chat").
	Model string

	// Provider selects the vendor API shape.
	Provider ProviderTag

	// Prompt is the new user message.
	Prompt string

	// History holds the prior turns, oldest first.
	History []Turn

	// Attachments belong to the new prompt.
	Attachments []Attachment

	// SystemInstruction is optional.
	SystemInstruction string

	// ThinkingBudget bounds reasoning tokens where the vendor supports it.
	ThinkingBudget *int

	// Credentials are read for this call only.
	Credentials Credentials

	// BaseURLOverride replaces the vendor base URL when the vendor honours it.
	BaseURLOverride string
}

// FallbackText is returned when a vendor answers successfully with no content.
const FallbackText = "No content returned."
