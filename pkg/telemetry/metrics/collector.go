package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"nebula-hq/nebula/pkg/config"
)

// maxModelLabels bounds the distinct model label values per collector.
// Models beyond the limit are reported as "other".
const maxModelLabels = 200

// Collector owns the Prometheus registry and the dispatch and node metric
// families. It satisfies the observer interfaces of the dispatch and nodes
// packages, so it can be passed to both directly.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	dispatch *DispatchMetrics
	nodes    *NodeMetrics

	models *CardinalityLimiter

	mu     sync.Mutex
	routes map[string]http.Handler
}

// NewCollector creates and registers all metric families. If registry is
// nil a fresh registry is used.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.SendDurationBuckets) == 0 {
		cfg.SendDurationBuckets = config.DefaultSendDurationBuckets
	}
	if len(cfg.ProbeLatencyBuckets) == 0 {
		cfg.ProbeLatencyBuckets = config.DefaultProbeLatencyBuckets
	}

	return &Collector{
		config:   cfg,
		registry: registry,
		dispatch: NewDispatchMetrics(cfg, registry),
		nodes:    NewNodeMetrics(cfg, registry),
		models:   NewCardinalityLimiter(maxModelLabels),
	}
}

// ObserveSend records the outcome of one dispatcher send. kind is "" on
// success and the error kind otherwise.
func (c *Collector) ObserveSend(provider, model, kind string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	if !c.models.Allow(model) {
		model = "other"
	}
	c.dispatch.Record(provider, model, kind, duration)
}

// ObserveProbe records one node probe.
func (c *Collector) ObserveProbe(nodeID string, reachable bool, latency time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.nodes.RecordProbe(nodeID, reachable, latency)
}

// SetActiveNode marks nodeID as the active node ("" clears it).
func (c *Collector) SetActiveNode(nodeID string) {
	if !c.config.Enabled {
		return
	}
	c.nodes.SetActive(nodeID)
}

// Handle adds a route served next to the metrics path by Serve.
func (c *Collector) Handle(pattern string, h http.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.routes == nil {
		c.routes = make(map[string]http.Handler)
	}
	c.routes[pattern] = h
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter caps the number of distinct values a label may take.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value may be used as a label. Known values are
// always allowed; new ones only while the limit has not been reached.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	_, exists := cl.current[value]
	cl.mu.RUnlock()
	if exists {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
