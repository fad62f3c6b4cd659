package providers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultSendTimeout bounds a single vendor call when no timeout is configured.
const DefaultSendTimeout = 120 * time.Second

// TransportConfig configures the vendor HTTP transport.
type TransportConfig struct {
	// Timeout bounds each call. Zero means DefaultSendTimeout.
	Timeout time.Duration

	// UserAgent is sent with every request when non-empty
	UserAgent string

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int

	// IdleConnTimeout is how long an idle connection remains in the pool
	IdleConnTimeout time.Duration

	// HTTPClient replaces the default client (tests, custom proxies)
	HTTPClient *http.Client
}

// Transport performs single, non-retried JSON POSTs against vendor APIs and
// maps failures to the typed errors of this package.
type Transport struct {
	client  *resty.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewTransport creates a transport with connection pooling.
func NewTransport(cfg TransportConfig, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSendTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:             http.ProxyFromEnvironment,
				MaxIdleConns:      cfg.MaxIdleConns,
				IdleConnTimeout:   cfg.IdleConnTimeout,
				ForceAttemptHTTP2: true,
			},
		}
	}

	client := resty.NewWithClient(httpClient)
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}

	t := &Transport{
		client:  client,
		timeout: cfg.Timeout,
		logger:  logger.With("component", "providers.transport"),
	}

	client.OnAfterResponse(func(_ *resty.Client, r *resty.Response) error {
		t.logger.Debug("vendor response",
			"method", r.Request.Method,
			"status", r.StatusCode(),
			"latency", r.Time(),
			"bytes", len(r.Body()),
		)
		return nil
	})

	return t
}

// Timeout returns the per-call timeout.
func (t *Transport) Timeout() time.Duration {
	return t.timeout
}

// Do sends call as a JSON POST and returns the raw 2xx response body.
// Non-2xx answers become *VendorHTTPError carrying the body verbatim;
// transport failures and timeouts become *NetworkError. Nothing is retried.
func (t *Transport) Do(ctx context.Context, provider ProviderTag, call Call) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req := t.client.R().
		SetContext(callCtx).
		SetHeader("Content-Type", "application/json").
		SetHeaders(call.Headers)
	if call.Body != nil {
		req.SetBody(call.Body)
	}

	t.logger.Debug("sending request to provider",
		"provider", provider,
		"url", call.URL,
	)

	resp, err := req.Post(call.URL)
	if err != nil {
		return nil, t.networkError(ctx, callCtx, provider, err)
	}

	if !resp.IsSuccess() {
		t.logger.Warn("provider returned error status",
			"provider", provider,
			"status", resp.StatusCode(),
		)
		return nil, &VendorHTTPError{
			Provider:   provider,
			StatusCode: resp.StatusCode(),
			Body:       string(resp.Body()),
		}
	}

	return resp.Body(), nil
}

// networkError classifies a transport failure. A deadline hit by the
// per-call timeout reports that timeout; a cancelled parent context is
// reported as the cause.
func (t *Transport) networkError(parent, callCtx context.Context, provider ProviderTag, err error) error {
	netErr := &NetworkError{Provider: provider, Op: "send", Cause: err}
	if parent.Err() == nil && (errors.Is(callCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded)) {
		netErr.Timeout = t.timeout
	} else if parent.Err() != nil {
		netErr.Cause = parent.Err()
	}
	t.logger.Warn("request to provider failed",
		"provider", provider,
		"error", err,
	)
	return netErr
}

// Close releases idle connections.
func (t *Transport) Close() error {
	t.client.GetClient().CloseIdleConnections()
	return nil
}
