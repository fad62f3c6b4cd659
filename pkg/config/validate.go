package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"nebula-hq/nebula/pkg/catalog"
	"nebula-hq/nebula/pkg/nodes"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "nodes.probe_timeout").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateProviders(&cfg.Providers)...)
	errs = append(errs, validateNodes(&cfg.Nodes)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateChat(cfg)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateProviders validates transport and endpoint settings.
func validateProviders(cfg *ProvidersConfig) []FieldError {
	var errs []FieldError

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "providers.timeout",
			Message: "timeout must be positive",
		})
	}
	if cfg.MaxIdleConns < 0 {
		errs = append(errs, FieldError{
			Field:   "providers.max_idle_conns",
			Message: "max idle connections must be non-negative",
		})
	}

	if msg := checkHTTPURL(cfg.Google.BaseURL); msg != "" {
		errs = append(errs, FieldError{Field: "providers.google.base_url", Message: msg})
	}
	if strings.Contains(cfg.Google.APIVersion, "/") {
		errs = append(errs, FieldError{
			Field:   "providers.google.api_version",
			Message: "api version must be a single path segment",
		})
	}

	vendors := []struct {
		name string
		cc   *ChatCompletionsConfig
	}{
		{"openai", &cfg.OpenAI},
		{"deepseek", &cfg.DeepSeek},
		{"xai", &cfg.XAI},
	}
	for _, v := range vendors {
		if msg := checkHTTPURL(v.cc.Endpoint); msg != "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("providers.%s.endpoint", v.name),
				Message: msg,
			})
		}
		if v.cc.RelayPath != "" && !strings.HasPrefix(v.cc.RelayPath, "/") {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("providers.%s.relay_path", v.name),
				Message: "relay path must start with /",
			})
		}
	}

	return errs
}

// validateNodes validates registry settings and seed entries.
func validateNodes(cfg *NodesConfig) []FieldError {
	var errs []FieldError

	if cfg.ProbeTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "nodes.probe_timeout",
			Message: "probe timeout must be positive",
		})
	} else if cfg.ProbeTimeout > time.Minute {
		errs = append(errs, FieldError{
			Field:   "nodes.probe_timeout",
			Message: "probe timeout exceeds reasonable limit (1m)",
		})
	}

	if cfg.HealthPath != "" && !strings.HasPrefix(cfg.HealthPath, "/") {
		errs = append(errs, FieldError{
			Field:   "nodes.health_path",
			Message: "health path must start with /",
		})
	}

	if err := nodes.ValidateSchedule(cfg.ScheduledRefresh()); err != nil {
		errs = append(errs, FieldError{
			Field:   "nodes.refresh_schedule",
			Message: err.Error(),
		})
	}

	if cfg.MaxConcurrency < 0 {
		errs = append(errs, FieldError{
			Field:   "nodes.max_concurrency",
			Message: "max concurrency must be non-negative",
		})
	}

	seen := make(map[string]bool, len(cfg.Seed))
	for i, entry := range cfg.Seed {
		prefix := fmt.Sprintf("nodes.seed[%d]", i)
		if entry.ID == "" {
			errs = append(errs, FieldError{Field: prefix + ".id", Message: "node id is required"})
		} else if seen[entry.ID] {
			errs = append(errs, FieldError{Field: prefix + ".id", Message: fmt.Sprintf("duplicate node id %q", entry.ID)})
		}
		seen[entry.ID] = true

		if strings.TrimSpace(entry.Name) == "" {
			errs = append(errs, FieldError{Field: prefix + ".name", Message: "node name is required"})
		}
		if _, err := nodes.NormalizeURL(entry.URL); err != nil {
			errs = append(errs, FieldError{Field: prefix + ".url", Message: err.Error()})
		}
	}

	return errs
}

// validateStorage validates persisted state settings.
func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	if cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "storage.path",
			Message: "storage path is required",
		})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "storage.busy_timeout",
			Message: "busy timeout must be non-negative",
		})
	}

	return errs
}

// validateChat validates the chat profile and the declared models. The
// default model must exist in the resulting catalogue.
func validateChat(cfg *Config) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(cfg.Chat.User) == "" {
		errs = append(errs, FieldError{
			Field:   "chat.user",
			Message: "user is required",
		})
	} else if strings.ContainsAny(cfg.Chat.User, "/\\") {
		errs = append(errs, FieldError{
			Field:   "chat.user",
			Message: "user must not contain path separators",
		})
	}

	if cfg.Chat.MaxAttachmentBytes <= 0 {
		errs = append(errs, FieldError{
			Field:   "chat.max_attachment_bytes",
			Message: "max attachment size must be positive",
		})
	}

	for i, m := range cfg.Models {
		if err := m.Validate(); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("models[%d]", i),
				Message: err.Error(),
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}

	cat, err := catalog.Default(cfg.Models...)
	if err != nil {
		return append(errs, FieldError{Field: "models", Message: err.Error()})
	}
	if _, ok := cat.Get(cfg.Chat.DefaultModel); !ok {
		errs = append(errs, FieldError{
			Field:   "chat.default_model",
			Message: fmt.Sprintf("unknown model %q", cfg.Chat.DefaultModel),
		})
	}

	return errs
}

// validateTelemetry validates logging, metrics and tracing configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text' or 'console'", cfg.Logging.Format),
		})
	}

	for i, p := range cfg.Logging.RedactPatterns {
		if _, err := regexp.Compile(p.Pattern); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.ListenAddress == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.listen_address",
				Message: "listen address is required when metrics are enabled",
			})
		}
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with /",
			})
		}
	}
	errs = append(errs, checkBuckets("telemetry.metrics.send_duration_buckets", cfg.Metrics.SendDurationBuckets)...)
	errs = append(errs, checkBuckets("telemetry.metrics.probe_latency_buckets", cfg.Metrics.ProbeLatencyBuckets)...)

	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true, "parent_based": true}
	if !validSamplers[cfg.Tracing.Sampler] {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', 'ratio' or 'parent_based'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}
	if cfg.Tracing.ExportTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.export_timeout",
			Message: "export timeout cannot be negative",
		})
	}

	return errs
}

// checkBuckets requires strictly increasing histogram bounds.
func checkBuckets(field string, buckets []float64) []FieldError {
	for i := 1; i < len(buckets); i++ {
		if buckets[i] <= buckets[i-1] {
			return []FieldError{{Field: field, Message: "buckets must be strictly increasing"}}
		}
	}
	return nil
}

// checkHTTPURL returns a message when raw is not an absolute http(s) URL.
func checkHTTPURL(raw string) string {
	if raw == "" {
		return "URL is required"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "URL scheme must be http or https"
	}
	if u.Host == "" {
		return "URL must include a host"
	}
	return ""
}
