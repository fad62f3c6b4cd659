package config

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// The process-wide configuration. Commands read it through GetConfig; the
// watcher swaps it on reload.
var (
	current atomic.Pointer[Config]

	initOnce sync.Once
	initErr  error
)

// Initialize loads the file at path (defaults when it is missing), applies
// NEBULA_* overrides and installs the result. Only the first call loads;
// later calls return the first call's error.
func Initialize(path string) error {
	initOnce.Do(func() {
		var cfg *Config
		cfg, initErr = LoadOptional(path)
		if initErr == nil {
			current.Store(cfg)
		}
	})
	return initErr
}

// GetConfig returns the installed configuration, or nil before Initialize.
func GetConfig() *Config {
	return current.Load()
}

// SetConfig installs cfg.
func SetConfig(cfg *Config) {
	current.Store(cfg)
}

// ReloadConfig reads path again. On failure the installed configuration is
// left untouched.
func ReloadConfig(path string) error {
	cfg, err := LoadOptional(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	SetConfig(cfg)
	return nil
}
