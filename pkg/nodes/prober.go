package nodes

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultProbeTimeout bounds a single probe.
	DefaultProbeTimeout = 8 * time.Second

	// DefaultHealthPath is appended to the node URL. The placeholder key
	// makes the API answer 400 quickly; any non-5xx answer proves the
	// route works.
	DefaultHealthPath = "/v1beta/models?key=TEST"
)

// Checker probes a single node. Implementations never fail: the outcome is
// folded into the returned node's stats.
type Checker interface {
	Probe(ctx context.Context, node Node) Node
}

// ProberConfig configures a Prober.
type ProberConfig struct {
	// Timeout bounds each probe. Default: DefaultProbeTimeout.
	Timeout time.Duration

	// HealthPath is appended to the node URL. Default: DefaultHealthPath.
	HealthPath string

	// HTTPClient replaces the default client.
	HTTPClient *http.Client
}

// Prober measures reachability and latency of nodes with a single GET.
type Prober struct {
	client  *resty.Client
	timeout time.Duration
	path    string
	logger  *slog.Logger
}

// NewProber creates a prober.
func NewProber(cfg ProberConfig, logger *slog.Logger) *Prober {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultProbeTimeout
	}
	if cfg.HealthPath == "" {
		cfg.HealthPath = DefaultHealthPath
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := resty.New()
	if cfg.HTTPClient != nil {
		client = resty.NewWithClient(cfg.HTTPClient)
	}
	// Relays commonly redirect; the first answer is what we time.
	client.SetRedirectPolicy(resty.NoRedirectPolicy())

	return &Prober{
		client:  client,
		timeout: cfg.Timeout,
		path:    cfg.HealthPath,
		logger:  logger.With("component", "nodes.prober"),
	}
}

// Probe issues GET node.URL+HealthPath under the probe timeout. A transport
// error, timeout or 5xx status marks the node unreachable; any other answer
// marks it reachable with the elapsed wall clock time as latency.
func (p *Prober) Probe(ctx context.Context, node Node) Node {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.client.R().SetContext(probeCtx).Get(node.URL + p.path)
	elapsed := time.Since(start)

	// A refused redirect still carries the relay's first answer.
	redirected := errors.Is(err, resty.ErrAutoRedirectDisabled) &&
		resp != nil && resp.RawResponse != nil
	if err != nil && (!redirected || probeCtx.Err() != nil) {
		p.logger.Debug("probe failed",
			"node", node.ID,
			"url", node.URL,
			"error", err,
		)
		return node.markUnreachable()
	}

	if resp.StatusCode() >= http.StatusInternalServerError {
		p.logger.Debug("probe returned server error",
			"node", node.ID,
			"status", resp.StatusCode(),
		)
		return node.markUnreachable()
	}

	node.LatencyMs = elapsed.Milliseconds()
	node.Reachable = true
	p.logger.Debug("probe succeeded",
		"node", node.ID,
		"status", resp.StatusCode(),
		"latency_ms", node.LatencyMs,
	)
	return node
}

// Close releases idle connections.
func (p *Prober) Close() {
	p.client.GetClient().CloseIdleConnections()
}
