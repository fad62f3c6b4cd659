package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "NEBULA_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML and applies defaults without validating.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention NEBULA_SECTION_FIELD (e.g., NEBULA_NODES_PROBE_TIMEOUT).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadOptional behaves like LoadConfigWithEnvOverrides but treats a missing
// file as an empty one, so the client runs on defaults and environment
// variables alone.
func LoadOptional(path string) (*Config, error) {
	if path != "" {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err == nil || !errors.Is(err, fs.ErrNotExist) {
			return cfg, err
		}
	}

	cfg, _ := Parse(nil)
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment. Missing
// files are skipped and variables already set are never replaced.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format NEBULA_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Provider overrides
	envDuration("PROVIDERS_TIMEOUT", &cfg.Providers.Timeout)
	envString("PROVIDERS_USER_AGENT", &cfg.Providers.UserAgent)
	envInt("PROVIDERS_MAX_IDLE_CONNS", &cfg.Providers.MaxIdleConns)
	envString("PROVIDERS_GOOGLE_BASE_URL", &cfg.Providers.Google.BaseURL)
	envString("PROVIDERS_GOOGLE_API_VERSION", &cfg.Providers.Google.APIVersion)
	envBoolPtr("PROVIDERS_GOOGLE_THREAD_HISTORY", &cfg.Providers.Google.ThreadHistory)
	applyChatCompletionsEnvOverrides("OPENAI", &cfg.Providers.OpenAI)
	applyChatCompletionsEnvOverrides("DEEPSEEK", &cfg.Providers.DeepSeek)
	applyChatCompletionsEnvOverrides("XAI", &cfg.Providers.XAI)

	// Credentials use the shorter NEBULA_<PROVIDER>_API_KEY form
	envString("GOOGLE_API_KEY", &cfg.Credentials.Google)
	envString("OPENAI_API_KEY", &cfg.Credentials.OpenAI)
	envString("DEEPSEEK_API_KEY", &cfg.Credentials.DeepSeek)
	envString("XAI_API_KEY", &cfg.Credentials.XAI)

	// Node overrides
	envDuration("NODES_PROBE_TIMEOUT", &cfg.Nodes.ProbeTimeout)
	envString("NODES_HEALTH_PATH", &cfg.Nodes.HealthPath)
	envString("NODES_REFRESH_SCHEDULE", &cfg.Nodes.RefreshSchedule)
	envBoolPtr("NODES_REFRESH_ON_START", &cfg.Nodes.RefreshOnStart)
	envInt("NODES_MAX_CONCURRENCY", &cfg.Nodes.MaxConcurrency)

	// Storage overrides
	envString("STORAGE_PATH", &cfg.Storage.Path)

	// Chat overrides
	envString("CHAT_USER", &cfg.Chat.User)
	envString("CHAT_DEFAULT_MODEL", &cfg.Chat.DefaultModel)
	if val := os.Getenv(EnvPrefix + "CHAT_MAX_ATTACHMENT_BYTES"); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Chat.MaxAttachmentBytes = n
		}
	}

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_LISTEN_ADDRESS", &cfg.Telemetry.Metrics.ListenAddress)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envBool("TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

// applyChatCompletionsEnvOverrides applies overrides for one OpenAI-compatible vendor.
func applyChatCompletionsEnvOverrides(vendor string, cc *ChatCompletionsConfig) {
	prefix := "PROVIDERS_" + strings.ToUpper(vendor) + "_"
	envString(prefix+"ENDPOINT", &cc.Endpoint)
	envBool(prefix+"USE_ACTIVE_NODE", &cc.UseActiveNode)
	envString(prefix+"RELAY_PATH", &cc.RelayPath)
}

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envBoolPtr(name string, dst **bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = &b
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
