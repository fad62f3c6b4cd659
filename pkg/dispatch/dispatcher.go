package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"nebula-hq/nebula/pkg/providers"
	"nebula-hq/nebula/pkg/providers/google"
	"nebula-hq/nebula/pkg/providers/openai"
	"nebula-hq/nebula/pkg/telemetry/logging"
	"nebula-hq/nebula/pkg/telemetry/tracing"
)

// Doer performs a built vendor call. *providers.Transport implements it.
type Doer interface {
	Do(ctx context.Context, provider providers.ProviderTag, call providers.Call) ([]byte, error)
}

// Observer receives the outcome of every send. kind is "" on success and
// providers.ErrorKind(err) otherwise.
type Observer interface {
	ObserveSend(provider, model, kind string, duration time.Duration)
}

// Config holds per-vendor adapter settings.
type Config struct {
	Google   google.Config
	OpenAI   openai.Config
	DeepSeek openai.Config
	XAI      openai.Config
}

// Options configures a Dispatcher. Only Doer is required.
type Options struct {
	Doer     Doer
	Config   Config
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Observer Observer
}

// Dispatcher sends one prompt to one vendor and normalizes the reply to
// markdown. It holds no conversation state and is safe for concurrent use.
type Dispatcher struct {
	doer     Doer
	config   Config
	logger   *slog.Logger
	tracer   trace.Tracer
	observer Observer
}

// New creates a dispatcher.
func New(opts Options) (*Dispatcher, error) {
	if opts.Doer == nil {
		return nil, fmt.Errorf("dispatch: transport is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("nebula/dispatch")
	}
	if opts.Config.OpenAI.Logger == nil {
		opts.Config.OpenAI.Logger = opts.Logger
	}
	if opts.Config.DeepSeek.Logger == nil {
		opts.Config.DeepSeek.Logger = opts.Logger
	}
	if opts.Config.XAI.Logger == nil {
		opts.Config.XAI.Logger = opts.Logger
	}

	return &Dispatcher{
		doer:     opts.Doer,
		config:   opts.Config,
		logger:   opts.Logger.With("component", "dispatch"),
		tracer:   opts.Tracer,
		observer: opts.Observer,
	}, nil
}

// adapterFor returns the wire adapter for tag. The table is closed.
func adapterFor(tag providers.ProviderTag, cfg Config) (providers.Adapter, bool) {
	switch tag {
	case providers.ProviderGoogle:
		return google.NewAdapter(cfg.Google), true
	case providers.ProviderOpenAI:
		return openai.NewAdapter(tag, cfg.OpenAI), true
	case providers.ProviderDeepSeek:
		return openai.NewAdapter(tag, cfg.DeepSeek), true
	case providers.ProviderXAI:
		return openai.NewAdapter(tag, cfg.XAI), true
	}
	return providers.Adapter{}, false
}

// Send dispatches req and returns the reply as markdown.
//
// Before any network I/O the provider tag, the matching credential and the
// request itself are checked, in that order. A successful reply with no
// content yields providers.FallbackText. Nothing is retried.
func (d *Dispatcher) Send(ctx context.Context, req providers.Request) (text string, err error) {
	start := time.Now()
	ctx, span := d.tracer.Start(ctx, "dispatch.Send",
		trace.WithAttributes(tracing.ProviderAttributes(req.Provider.String(), req.Model)...),
		trace.WithAttributes(
			attribute.Int(tracing.AttrHistory, len(req.History)),
			attribute.Int(tracing.AttrAttachments, len(req.Attachments)),
		),
	)
	tracing.SetNode(span, req.BaseURLOverride)
	defer func() {
		kind := providers.ErrorKind(err)
		tracing.SetError(span, err, kind)
		span.End()
		if d.observer != nil {
			d.observer.ObserveSend(req.Provider.String(), req.Model, kind, time.Since(start))
		}
	}()

	adapter, ok := adapterFor(req.Provider, d.config)
	if !ok {
		return "", &providers.UnsupportedProviderError{Provider: req.Provider.String()}
	}
	if req.Credentials.For(req.Provider) == "" {
		return "", &providers.MissingCredentialError{Provider: req.Provider}
	}
	if err := validate(req); err != nil {
		return "", err
	}

	call, err := adapter.Build(req)
	if err != nil {
		return "", fmt.Errorf("build %s request: %w", req.Provider, err)
	}

	ctx = logging.WithProvider(ctx, req.Provider.String())
	if req.BaseURLOverride != "" {
		ctx = logging.WithNode(ctx, req.BaseURLOverride)
	}

	body, err := d.doer.Do(ctx, req.Provider, call)
	if err != nil {
		d.logger.WarnContext(ctx, "send failed",
			"vendor_model", req.Model,
			"error_kind", providers.ErrorKind(err),
		)
		return "", err
	}

	text, err = adapter.Parse(body)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		d.logger.DebugContext(ctx, "provider returned no content", "vendor_model", req.Model)
		return providers.FallbackText, nil
	}

	d.logger.DebugContext(ctx, "send completed",
		"vendor_model", req.Model,
		"duration", time.Since(start),
		"chars", len(text),
	)
	return text, nil
}

// validate checks the parts of a request every vendor needs.
func validate(req providers.Request) error {
	if strings.TrimSpace(req.Model) == "" {
		return &providers.ValidationError{Field: "model", Message: "model is required"}
	}
	if strings.TrimSpace(req.Prompt) == "" && len(req.Attachments) == 0 {
		return &providers.ValidationError{Field: "prompt", Message: "prompt or attachments are required"}
	}
	return nil
}
