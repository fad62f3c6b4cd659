package config

import (
	"time"

	"nebula-hq/nebula/pkg/catalog"
	"nebula-hq/nebula/pkg/providers"
)

// Config is the root configuration structure for Nebula.
type Config struct {
	// Providers contains vendor endpoint and transport settings.
	Providers ProvidersConfig `yaml:"providers"`

	// Credentials holds API keys. Usually supplied through environment
	// variables or the key store rather than the file.
	Credentials CredentialsConfig `yaml:"credentials"`

	// Nodes contains endpoint health registry settings.
	Nodes NodesConfig `yaml:"nodes"`

	// Storage contains persisted state settings.
	Storage StorageConfig `yaml:"storage"`

	// Chat contains conversation defaults.
	Chat ChatConfig `yaml:"chat"`

	// Models declares catalogue entries added to the built-in models.
	// An entry whose id matches a built-in model replaces it.
	Models []catalog.Model `yaml:"models"`

	// Telemetry contains observability configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ProvidersConfig contains settings shared by all vendor calls plus the
// per-vendor endpoint settings.
type ProvidersConfig struct {
	// Timeout bounds a single send, including reading the body.
	// Default: 120s
	Timeout time.Duration `yaml:"timeout"`

	// UserAgent is sent with every vendor request.
	// Default: "nebula/<version>"
	UserAgent string `yaml:"user_agent"`

	// MaxIdleConns is the maximum number of idle pooled connections.
	// Default: 10
	MaxIdleConns int `yaml:"max_idle_conns"`

	// IdleConnTimeout is how long an idle connection stays pooled.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`

	// Google configures the Gemini adapter.
	Google GoogleConfig `yaml:"google"`

	// OpenAI configures the OpenAI adapter.
	OpenAI ChatCompletionsConfig `yaml:"openai"`

	// DeepSeek configures the DeepSeek adapter.
	DeepSeek ChatCompletionsConfig `yaml:"deepseek"`

	// XAI configures the xAI adapter.
	XAI ChatCompletionsConfig `yaml:"xai"`
}

// GoogleConfig configures the Gemini generateContent adapter.
type GoogleConfig struct {
	// BaseURL is used when no node is active.
	// Default: "https://generativelanguage.googleapis.com"
	BaseURL string `yaml:"base_url"`

	// APIVersion is the version path segment.
	// Default: "v1beta"
	APIVersion string `yaml:"api_version"`

	// ThreadHistory sends prior turns as conversation contents.
	// Set to false to send only the current prompt.
	// Default: true
	ThreadHistory *bool `yaml:"thread_history"`
}

// ThreadHistoryEnabled reports the effective thread_history setting.
func (g GoogleConfig) ThreadHistoryEnabled() bool {
	return g.ThreadHistory == nil || *g.ThreadHistory
}

// ChatCompletionsConfig configures an OpenAI-compatible adapter.
type ChatCompletionsConfig struct {
	// Endpoint is the full chat completions URL.
	// Default: the vendor's official endpoint
	Endpoint string `yaml:"endpoint"`

	// UseActiveNode routes the vendor through the active node.
	// Default: false
	UseActiveNode bool `yaml:"use_active_node"`

	// RelayPath is appended to the active node URL when UseActiveNode is set.
	// Default: "/v1/chat/completions"
	RelayPath string `yaml:"relay_path"`
}

// CredentialsConfig holds one API key per provider.
type CredentialsConfig struct {
	Google   string `yaml:"google"`
	OpenAI   string `yaml:"openai"`
	DeepSeek string `yaml:"deepseek"`
	XAI      string `yaml:"xai"`
}

// ProviderCredentials converts the configured keys to a provider credential set.
func (c CredentialsConfig) ProviderCredentials() providers.Credentials {
	return providers.Credentials{
		Google:   c.Google,
		OpenAI:   c.OpenAI,
		DeepSeek: c.DeepSeek,
		XAI:      c.XAI,
	}
}

// RefreshOff disables the background node refresh.
const RefreshOff = "off"

// NodesConfig contains endpoint health registry configuration.
type NodesConfig struct {
	// ProbeTimeout bounds each reachability probe.
	// Default: 8s
	ProbeTimeout time.Duration `yaml:"probe_timeout"`

	// HealthPath is appended to the node URL when probing.
	// Default: "/v1beta/models?key=TEST"
	HealthPath string `yaml:"health_path"`

	// RefreshSchedule is a cron expression for background refreshes.
	// RefreshOff disables scheduled refreshes.
	// Default: "@every 10m"
	RefreshSchedule string `yaml:"refresh_schedule"`

	// RefreshOnStart probes every node when the client starts.
	// Default: true
	RefreshOnStart *bool `yaml:"refresh_on_start"`

	// MaxConcurrency limits parallel probes (0 = one goroutine per node).
	// Default: 0
	MaxConcurrency int `yaml:"max_concurrency"`

	// DisableBuiltin drops the built-in seed nodes.
	// Default: false
	DisableBuiltin bool `yaml:"disable_builtin"`

	// Seed lists additional nodes known at startup.
	Seed []NodeEntry `yaml:"seed"`
}

// ScheduledRefresh returns the cron expression for background refreshes,
// or "" when they are disabled.
func (n NodesConfig) ScheduledRefresh() string {
	if n.RefreshSchedule == RefreshOff {
		return ""
	}
	return n.RefreshSchedule
}

// RefreshOnStartEnabled reports the effective refresh_on_start setting.
func (n NodesConfig) RefreshOnStartEnabled() bool {
	return n.RefreshOnStart == nil || *n.RefreshOnStart
}

// NodeEntry declares a seed node.
type NodeEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// StorageMemory selects the in-memory backend instead of SQLite.
const StorageMemory = ":memory:"

// StorageConfig contains persisted state configuration.
type StorageConfig struct {
	// Path is the SQLite database file. StorageMemory keeps state in
	// process memory only.
	// Default: "<user config dir>/nebula/nebula.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long SQLite waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// ChatConfig contains conversation defaults.
type ChatConfig struct {
	// User is the profile name histories are stored under.
	// Default: "default"
	User string `yaml:"user"`

	// DefaultModel is the logical model id selected at startup.
	// Default: "gemini-2.5-flash"
	DefaultModel string `yaml:"default_model"`

	// MaxAttachmentBytes caps the size of a single attached file.
	// Default: 20MB
	MaxAttachmentBytes int64 `yaml:"max_attachment_bytes"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "warn"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	AddSource bool `yaml:"add_source"`

	// RedactKeys masks API keys and bearer tokens in log output.
	// Default: true
	RedactKeys *bool `yaml:"redact_keys"`

	// RedactPatterns contains additional redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactKeysEnabled reports the effective redact_keys setting.
func (l LoggingConfig) RedactKeysEnabled() bool {
	return l.RedactKeys == nil || *l.RedactKeys
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled serves Prometheus metrics while the client runs.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address of the metrics HTTP listener.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "nebula"
	Namespace string `yaml:"namespace"`

	// SendDurationBuckets defines histogram buckets for send duration (seconds).
	// Default: [0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120]
	SendDurationBuckets []float64 `yaml:"send_duration_buckets"`

	// ProbeLatencyBuckets defines histogram buckets for probe latency (seconds).
	// Default: [0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8]
	ProbeLatencyBuckets []float64 `yaml:"probe_latency_buckets"`
}

// TracingConfig contains tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are recorded.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio", "parent_based"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio" or "parent_based".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is the service name in traces.
	// Default: "nebula"
	ServiceName string `yaml:"service_name"`

	// Endpoint is the OTLP gRPC collector address. When empty, spans are
	// sampled and recorded in process but not exported.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`

	// ExportTimeout bounds each export batch.
	// Default: 10s
	ExportTimeout time.Duration `yaml:"export_timeout"`
}
