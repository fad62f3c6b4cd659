package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"nebula-hq/nebula/pkg/catalog"
	"nebula-hq/nebula/pkg/chat"
	"nebula-hq/nebula/pkg/cli"
	"nebula-hq/nebula/pkg/config"
	"nebula-hq/nebula/pkg/dispatch"
	"nebula-hq/nebula/pkg/nodes"
	"nebula-hq/nebula/pkg/providers"
	"nebula-hq/nebula/pkg/providers/google"
	"nebula-hq/nebula/pkg/providers/openai"
	"nebula-hq/nebula/pkg/store"
	"nebula-hq/nebula/pkg/telemetry/health"
	"nebula-hq/nebula/pkg/telemetry/logging"
	"nebula-hq/nebula/pkg/telemetry/metrics"
	"nebula-hq/nebula/pkg/telemetry/tracing"
)

// shutdownTimeout bounds span flushing on exit.
const shutdownTimeout = 5 * time.Second

// app is the assembled client: configuration, persistence, the node
// registry and the dispatcher, shared by every command.
type app struct {
	mu  sync.RWMutex
	cfg *config.Config

	logger   *slog.Logger
	levelVar *slog.LevelVar
	format   cli.OutputFormat

	store      *store.Store
	catalog    *catalog.Catalog
	prober     *nodes.Prober
	registry   *nodes.Registry
	transport  *providers.Transport
	dispatcher *dispatch.Dispatcher
	collector  *metrics.Collector
	tracer     *tracing.Tracer
	health     *health.Checker
}

// newApp wires every component from cfg. Log output goes to logOut.
func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	a := &app{
		cfg:      cfg,
		levelVar: new(slog.LevelVar),
		format:   cli.FormatText,
	}

	logCfg := logging.FromConfig(cfg.Telemetry.Logging, logOut)
	logCfg.LevelVar = a.levelVar
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	a.logger = logger
	slog.SetDefault(logger)

	a.tracer, err = tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.tracing", err.Error())
	}
	a.collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	a.catalog, err = catalog.Default(cfg.Models...)
	if err != nil {
		return nil, cli.NewConfigError("models", err.Error())
	}

	a.store, err = openStore(cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	if err := a.buildRegistry(ctx); err != nil {
		_ = a.store.Close()
		return nil, err
	}

	a.transport = providers.NewTransport(providers.TransportConfig{
		Timeout:         cfg.Providers.Timeout,
		UserAgent:       cfg.Providers.UserAgent,
		MaxIdleConns:    cfg.Providers.MaxIdleConns,
		IdleConnTimeout: cfg.Providers.IdleConnTimeout,
	}, logger)

	a.dispatcher, err = dispatch.New(dispatch.Options{
		Doer:     a.transport,
		Config:   dispatchConfig(cfg.Providers),
		Logger:   logger,
		Tracer:   a.tracer.Tracer("nebula/dispatch"),
		Observer: a.collector,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.health = health.New(cfg.Nodes.ProbeTimeout)
	a.health.Register("store", health.StoreCheck(a.store))
	a.health.Register("credentials", health.CredentialsCheck(func() providers.Credentials {
		return a.credentials(context.Background())
	}))
	a.health.Register("nodes", health.ActiveNodeCheck(a.registry))

	return a, nil
}

// openStore opens the SQLite database, or an in-memory store for
// config.StorageMemory.
func openStore(cfg config.StorageConfig, logger *slog.Logger) (*store.Store, error) {
	if cfg.Path == config.StorageMemory {
		return store.New(store.NewMemoryBackend(), logger), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
		return nil, err
	}
	backend, err := store.NewSQLiteBackend(store.SQLiteConfig{
		Path:        cfg.Path,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, err
	}
	return store.New(backend, logger), nil
}

// buildRegistry assembles the node pool from the built-in seed, configured
// nodes and persisted custom nodes, and restores the active node.
func (a *app) buildRegistry(ctx context.Context) error {
	cfg := a.cfg.Nodes

	var seed []nodes.Node
	if !cfg.DisableBuiltin {
		seed = nodes.SeedNodes()
	}
	configured, err := seedNodes(cfg.Seed)
	if err != nil {
		return err
	}
	seed = append(seed, configured...)

	custom, err := a.store.CustomNodes(ctx)
	if err != nil {
		return fmt.Errorf("failed to load custom nodes: %w", err)
	}
	seed = append(seed, custom...)

	activeID, err := a.store.ActiveNode(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active node: %w", err)
	}

	a.prober = nodes.NewProber(nodes.ProberConfig{
		Timeout:    cfg.ProbeTimeout,
		HealthPath: cfg.HealthPath,
	}, a.logger)

	a.registry = nodes.NewRegistry(seed, nodes.Options{
		Checker:        a.prober,
		MaxConcurrency: cfg.MaxConcurrency,
		ActiveID:       activeID,
		Logger:         a.logger,
		Tracer:         a.tracer.Tracer("nebula/nodes"),
		Observer:       a.collector,
		OnChange: func(s nodes.Snapshot) {
			if err := a.store.SaveNodes(context.Background(), s); err != nil {
				a.logger.Error("failed to save nodes", "error", err)
			}
		},
	})
	if n, ok := a.registry.Active(); ok {
		a.collector.SetActiveNode(n.ID)
	}
	return nil
}

// seedNodes converts the nodes.seed entries of the config file.
func seedNodes(entries []config.NodeEntry) ([]nodes.Node, error) {
	seed := make([]nodes.Node, 0, len(entries))
	for _, e := range entries {
		url, err := nodes.NormalizeURL(e.URL)
		if err != nil {
			return nil, cli.NewConfigError("nodes.seed", fmt.Sprintf("%s: %v", e.ID, err))
		}
		seed = append(seed, nodes.Node{ID: e.ID, Name: e.Name, URL: url, LatencyMs: nodes.LatencyUnknown})
	}
	return seed, nil
}

// dispatchConfig maps the providers section to adapter settings.
func dispatchConfig(p config.ProvidersConfig) dispatch.Config {
	chatCompletions := func(c config.ChatCompletionsConfig) openai.Config {
		return openai.Config{
			Endpoint:      c.Endpoint,
			UseActiveNode: c.UseActiveNode,
			RelayPath:     c.RelayPath,
		}
	}
	return dispatch.Config{
		Google: google.Config{
			BaseURL:       p.Google.BaseURL,
			APIVersion:    p.Google.APIVersion,
			ThreadHistory: p.Google.ThreadHistoryEnabled(),
		},
		OpenAI:   chatCompletions(p.OpenAI),
		DeepSeek: chatCompletions(p.DeepSeek),
		XAI:      chatCompletions(p.XAI),
	}
}

// config returns the current configuration.
func (a *app) config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// applyConfig installs a reloaded configuration. Credentials, the log
// level and new seed nodes take effect immediately; other sections need a
// restart.
func (a *app) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()

	if level, err := logging.ParseLevel(cfg.Telemetry.Logging.Level); err == nil {
		a.levelVar.Set(level)
	}

	seed, err := seedNodes(cfg.Nodes.Seed)
	if err != nil {
		a.logger.Warn("ignoring reloaded seed nodes", "error", err)
		return
	}
	if added := a.registry.Merge(seed); added > 0 {
		a.logger.Info("seed nodes added", "count", added)
	}
}

// credentials returns the stored keys, with keys from the config file and
// environment filling the providers that have none stored.
func (a *app) credentials(ctx context.Context) providers.Credentials {
	stored, err := a.store.Credentials(ctx)
	if err != nil {
		a.logger.Error("failed to load credentials", "error", err)
	}
	return stored.Merge(a.config().Credentials.ProviderCredentials())
}

// newSession opens the current user's chat session. An empty model selects
// the configured default.
func (a *app) newSession(ctx context.Context, model string) (*chat.Session, error) {
	cfg := a.config()
	if model == "" {
		model = cfg.Chat.DefaultModel
	}
	return chat.NewSession(ctx, chat.Options{
		User:    cfg.Chat.User,
		Catalog: a.catalog,
		Sender:  a.dispatcher,
		Model:   model,
		Credentials: func() providers.Credentials {
			return a.credentials(context.Background())
		},
		Nodes:  a.registry,
		Store:  a.store,
		Logger: a.logger,
		Tracer: a.tracer.Tracer("nebula/chat"),
	})
}

// serveMetrics exposes metrics and health routes until ctx is done. It is
// a no-op when metrics are disabled.
func (a *app) serveMetrics(ctx context.Context) {
	cfg := a.config().Telemetry.Metrics
	if !cfg.Enabled {
		return
	}
	a.collector.RegisterRuntimeCollectors()
	a.collector.Handle("/healthz", health.LivenessHandler())
	a.collector.Handle("/readyz", a.health.ReadinessHandler())

	go func() {
		if err := a.collector.Serve(ctx, a.logger); err != nil {
			a.logger.Error("metrics server stopped", "error", err)
		}
	}()
}

// Close releases every component. It is safe on a partially built app.
func (a *app) Close() {
	var errs []error
	if a.transport != nil {
		errs = append(errs, a.transport.Close())
	}
	if a.prober != nil {
		a.prober.Close()
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		errs = append(errs, a.tracer.Shutdown(ctx))
		cancel()
	}
	if err := errors.Join(errs...); err != nil && a.logger != nil {
		a.logger.Warn("shutdown incomplete", "error", err)
	}
}
