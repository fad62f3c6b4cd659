package logging

import (
	"context"
	"log/slog"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const (
	// UserKey is the context key for the chat profile name.
	UserKey contextKey = "user"

	// ModelKey is the context key for the logical model id.
	ModelKey contextKey = "model"

	// ProviderKey is the context key for the provider tag.
	ProviderKey contextKey = "provider"

	// NodeKey is the context key for the base URL of the active node.
	NodeKey contextKey = "node"
)

// contextKeys lists the keys copied onto every record, in output order.
var contextKeys = []contextKey{UserKey, ModelKey, ProviderKey, NodeKey}

// WithUser adds the chat profile name to the context.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// WithModel adds the logical model id to the context.
func WithModel(ctx context.Context, model string) context.Context {
	return context.WithValue(ctx, ModelKey, model)
}

// WithProvider adds the provider tag to the context.
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, ProviderKey, provider)
}

// WithNode adds the active node base URL to the context.
func WithNode(ctx context.Context, node string) context.Context {
	return context.WithValue(ctx, NodeKey, node)
}

// GetUser retrieves the chat profile name from the context.
func GetUser(ctx context.Context) string {
	return stringValue(ctx, UserKey)
}

// GetModel retrieves the logical model id from the context.
func GetModel(ctx context.Context) string {
	return stringValue(ctx, ModelKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// contextHandler adds context values to records logged with the *Context
// methods.
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, key := range contextKeys {
		if v := stringValue(ctx, key); v != "" {
			r.AddAttrs(slog.String(string(key), v))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
