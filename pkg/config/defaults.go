package config

import (
	"os"
	"path/filepath"
	"time"

	"nebula-hq/nebula/pkg/catalog"
	"nebula-hq/nebula/pkg/providers/google"
	"nebula-hq/nebula/pkg/providers/openai"
)

// Default values for configuration fields.
const (
	// Provider defaults
	DefaultProviderTimeout  = 120 * time.Second
	DefaultUserAgent        = "nebula"
	DefaultMaxIdleConns     = 10
	DefaultIdleConnTimeout  = 90 * time.Second
	DefaultGoogleBaseURL    = google.DefaultBaseURL
	DefaultGoogleAPIVersion = google.DefaultAPIVersion
	DefaultRelayPath        = openai.DefaultRelayPath

	// Node defaults
	DefaultProbeTimeout    = 8 * time.Second
	DefaultHealthPath      = "/v1beta/models?key=TEST"
	DefaultRefreshSchedule = "@every 10m"

	// Storage defaults
	DefaultStorageFile        = "nebula.db"
	DefaultStorageBusyTimeout = 5 * time.Second

	// Chat defaults
	DefaultUser               = "default"
	DefaultModel              = catalog.DefaultModelID
	DefaultMaxAttachmentBytes = int64(20 << 20)

	// Telemetry defaults
	DefaultLoggingLevel         = "warn"
	DefaultLoggingFormat        = "text"
	DefaultMetricsListen        = "127.0.0.1:9464"
	DefaultPrometheusPath       = "/metrics"
	DefaultMetricsNamespace     = "nebula"
	DefaultTracingSampler       = "always"
	DefaultTracingSamplingRate  = 1.0
	DefaultTracingServiceName   = "nebula"
	DefaultTracingExportTimeout = 10 * time.Second
)

// DefaultSendDurationBuckets are histogram buckets for send duration in seconds.
var DefaultSendDurationBuckets = []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120}

// DefaultProbeLatencyBuckets are histogram buckets for probe latency in seconds.
var DefaultProbeLatencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8}

// DefaultStoragePath returns the database location under the user's config
// directory, or DefaultStorageFile in the working directory when that cannot
// be determined.
func DefaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return DefaultStorageFile
	}
	return filepath.Join(dir, "nebula", DefaultStorageFile)
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	applyProviderDefaults(&cfg.Providers)

	// Node defaults
	if cfg.Nodes.ProbeTimeout == 0 {
		cfg.Nodes.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.Nodes.HealthPath == "" {
		cfg.Nodes.HealthPath = DefaultHealthPath
	}
	if cfg.Nodes.RefreshSchedule == "" {
		cfg.Nodes.RefreshSchedule = DefaultRefreshSchedule
	}

	// Storage defaults
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath()
	}
	if cfg.Storage.BusyTimeout == 0 {
		cfg.Storage.BusyTimeout = DefaultStorageBusyTimeout
	}

	// Chat defaults
	if cfg.Chat.User == "" {
		cfg.Chat.User = DefaultUser
	}
	if cfg.Chat.DefaultModel == "" {
		cfg.Chat.DefaultModel = DefaultModel
	}
	if cfg.Chat.MaxAttachmentBytes == 0 {
		cfg.Chat.MaxAttachmentBytes = DefaultMaxAttachmentBytes
	}

	applyTelemetryDefaults(&cfg.Telemetry)
}

// applyProviderDefaults fills transport and per-vendor endpoint defaults.
func applyProviderDefaults(p *ProvidersConfig) {
	if p.Timeout == 0 {
		p.Timeout = DefaultProviderTimeout
	}
	if p.UserAgent == "" {
		p.UserAgent = DefaultUserAgent
	}
	if p.MaxIdleConns == 0 {
		p.MaxIdleConns = DefaultMaxIdleConns
	}
	if p.IdleConnTimeout == 0 {
		p.IdleConnTimeout = DefaultIdleConnTimeout
	}

	if p.Google.BaseURL == "" {
		p.Google.BaseURL = DefaultGoogleBaseURL
	}
	if p.Google.APIVersion == "" {
		p.Google.APIVersion = DefaultGoogleAPIVersion
	}

	if p.OpenAI.Endpoint == "" {
		p.OpenAI.Endpoint = openai.OpenAIEndpoint
	}
	if p.DeepSeek.Endpoint == "" {
		p.DeepSeek.Endpoint = openai.DeepSeekEndpoint
	}
	if p.XAI.Endpoint == "" {
		p.XAI.Endpoint = openai.XAIEndpoint
	}
	for _, cc := range []*ChatCompletionsConfig{&p.OpenAI, &p.DeepSeek, &p.XAI} {
		if cc.RelayPath == "" {
			cc.RelayPath = DefaultRelayPath
		}
	}
}

// applyTelemetryDefaults fills logging, metrics and tracing defaults.
func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}

	if t.Metrics.ListenAddress == "" {
		t.Metrics.ListenAddress = DefaultMetricsListen
	}
	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultPrometheusPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(t.Metrics.SendDurationBuckets) == 0 {
		t.Metrics.SendDurationBuckets = append([]float64(nil), DefaultSendDurationBuckets...)
	}
	if len(t.Metrics.ProbeLatencyBuckets) == 0 {
		t.Metrics.ProbeLatencyBuckets = append([]float64(nil), DefaultProbeLatencyBuckets...)
	}

	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
	}
	if t.Tracing.SampleRatio == 0 {
		t.Tracing.SampleRatio = DefaultTracingSamplingRate
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultTracingServiceName
	}
	if t.Tracing.ExportTimeout == 0 {
		t.Tracing.ExportTimeout = DefaultTracingExportTimeout
	}
}
