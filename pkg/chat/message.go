package chat

import (
	"time"

	"nebula-hq/nebula/pkg/providers"
)

// Message is one entry of a conversation as shown to the user.
type Message struct {
	ID          string                 `json:"id"`
	Role        providers.Role         `json:"role"`
	Text        string                 `json:"text"`
	Attachments []providers.Attachment `json:"attachments,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`

	// IsError marks a failed request. Such messages are shown but never sent
	// back to a vendor as context.
	IsError bool `json:"is_error,omitempty"`
}

// Histories maps a logical model id to its conversation, oldest first.
type Histories map[string][]Message

// Prefixes and markers written into histories.
const (
	ErrorPrefix    = "**Request failed**: "
	TransferMarker = "--- Context transferred ---\nPrevious conversation imported."
)

// contextTurns converts a history into vendor turns, dropping error entries.
func contextTurns(history []Message) []providers.Turn {
	turns := make([]providers.Turn, 0, len(history))
	for _, m := range history {
		if m.IsError {
			continue
		}
		turns = append(turns, providers.Turn{
			Role:        m.Role,
			Text:        m.Text,
			Attachments: m.Attachments,
		})
	}
	return turns
}

func cloneMessages(msgs []Message) []Message {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
