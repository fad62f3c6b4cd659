package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by dispatch and chat spans.
const (
	AttrProvider    = "nebula.provider"
	AttrModel       = "nebula.model"
	AttrNode        = "nebula.node.url"
	AttrUser        = "nebula.user"
	AttrHistory     = "nebula.history.turns"
	AttrAttachments = "nebula.attachments"
	AttrErrorKind   = "nebula.error.kind"
)

// ProviderAttributes returns the provider and model attributes of a send.
func ProviderAttributes(provider, model string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrProvider, provider),
		attribute.String(AttrModel, model),
	}
}

// SetNode records the node base URL a call was offered. Empty URLs are skipped.
func SetNode(span trace.Span, baseURL string) {
	if baseURL == "" {
		return
	}
	span.SetAttributes(attribute.String(AttrNode, baseURL))
}

// SetError marks the span failed and records err with its kind.
// A nil err leaves the span untouched.
func SetError(span trace.Span, err error, kind string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(attribute.String(AttrErrorKind, kind))
	span.SetStatus(codes.Error, kind)
}
