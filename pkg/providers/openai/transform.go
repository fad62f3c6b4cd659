package openai

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"nebula-hq/nebula/pkg/providers"
)

// Chat completions request/response types

// ChatRequest is the body of a chat completions call.
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// ChatMessage is one message in OpenAI format.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is the body of a successful chat completions call.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   *Usage       `json:"usage,omitempty"`
}

// ChatChoice is one completion choice.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Message roles on the wire.
const (
	roleSystem    = "system"
	roleUser      = "user"
	roleAssistant = "assistant"
)

// DeepSeekAttachmentNotice is appended to the prompt when files are attached
// to a DeepSeek request, since the API cannot read them.
const DeepSeekAttachmentNotice = "\n[The user attached files, but DeepSeek cannot read file content directly; ignore the attachments or ask the user to paste the text.]"

// Transformation functions

// BuildRequest converts a provider-agnostic request to a chat completions
// body for the given vendor. Messages are ordered system, history, prompt.
func BuildRequest(tag providers.ProviderTag, req providers.Request, logger *slog.Logger) *ChatRequest {
	if logger == nil {
		logger = slog.Default()
	}
	out := &ChatRequest{
		Model:    req.Model,
		Messages: make([]ChatMessage, 0, len(req.History)+2),
		Stream:   false,
	}

	if req.SystemInstruction != "" {
		out.Messages = append(out.Messages, ChatMessage{Role: roleSystem, Content: req.SystemInstruction})
	}

	for _, turn := range req.History {
		out.Messages = append(out.Messages, ChatMessage{
			Role:    transformRole(turn.Role),
			Content: turn.Text,
		})
	}

	out.Messages = append(out.Messages, ChatMessage{
		Role:    roleUser,
		Content: promptContent(tag, req.Prompt, req.Attachments, logger),
	})

	return out
}

// transformRole maps conversation roles to OpenAI roles.
func transformRole(role providers.Role) string {
	if role == providers.RoleAssistant {
		return roleAssistant
	}
	return roleUser
}

// promptContent folds attachments into the prompt text. DeepSeek never
// receives file content; the other vendors get text documents inlined and
// binary files dropped.
func promptContent(tag providers.ProviderTag, prompt string, attachments []providers.Attachment, logger *slog.Logger) string {
	if len(attachments) == 0 {
		return prompt
	}
	if tag == providers.ProviderDeepSeek {
		return prompt + DeepSeekAttachmentNotice
	}

	var sb strings.Builder
	for _, att := range attachments {
		if att.IsInlineBinary() {
			logger.Debug("dropping binary attachment",
				"provider", tag,
				"name", att.Name,
				"mime_type", att.MimeType,
			)
			continue
		}
		fmt.Fprintf(&sb, "\n[file: %s]\n%s\n", att.Name, att.Payload)
	}
	sb.WriteString(prompt)
	return sb.String()
}

// ParseResponse extracts the first choice's content from a chat completions
// response body for the given vendor.
func ParseResponse(tag providers.ProviderTag, body []byte) (string, error) {
	var resp ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &providers.ParseError{
			Provider:    tag,
			RawResponse: string(body),
			Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
