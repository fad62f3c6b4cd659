// Package config provides configuration management for Nebula.
//
// Configuration is read from an optional YAML file, completed with defaults,
// overridden from the environment and validated. A missing file is not an
// error: the client runs on defaults and environment variables alone.
//
//	cfg, err := config.LoadOptional("nebula.yaml")
//
// # Environment Variables
//
// Overrides follow the naming convention NEBULA_SECTION_FIELD:
//
//   - NEBULA_PROVIDERS_TIMEOUT overrides providers.timeout
//   - NEBULA_NODES_REFRESH_SCHEDULE overrides nodes.refresh_schedule
//   - NEBULA_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// API keys use NEBULA_GOOGLE_API_KEY, NEBULA_OPENAI_API_KEY,
// NEBULA_DEEPSEEK_API_KEY and NEBULA_XAI_API_KEY. LoadDotEnv reads these
// from a .env file without replacing variables that are already set.
//
// # Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Hot Reload
//
// Watcher observes the file and reloads it after a debounce interval.
// Invalid edits are logged and the previous configuration stays in place.
package config
