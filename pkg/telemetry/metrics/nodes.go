package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"nebula-hq/nebula/pkg/config"
)

// NodeMetrics tracks endpoint probing.
//
// Metrics:
//   - nebula_nodes_probes_total: probes by node and result
//   - nebula_nodes_probe_latency_seconds: latency of successful probes
//   - nebula_nodes_reachable: 1 when the last probe succeeded
//   - nebula_nodes_active: 1 for the active node, 0 for the others
type NodeMetrics struct {
	probesTotal  *prometheus.CounterVec
	probeLatency *prometheus.HistogramVec
	reachable    *prometheus.GaugeVec
	active       *prometheus.GaugeVec

	mu       sync.Mutex
	activeID string
}

// NewNodeMetrics creates and registers node metrics with the provided registry.
func NewNodeMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *NodeMetrics {
	nm := &NodeMetrics{
		probesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "nodes",
				Name:      "probes_total",
				Help:      "Total number of node probes",
			},
			[]string{"node", "result"},
		),
		probeLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "nodes",
				Name:      "probe_latency_seconds",
				Help:      "Round trip of successful node probes in seconds",
				Buckets:   cfg.ProbeLatencyBuckets,
			},
			[]string{"node"},
		),
		reachable: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "nodes",
				Name:      "reachable",
				Help:      "Whether the last probe of the node succeeded (1) or not (0)",
			},
			[]string{"node"},
		),
		active: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "nodes",
				Name:      "active",
				Help:      "1 for the node vendor traffic is routed through",
			},
			[]string{"node"},
		),
	}

	registry.MustRegister(nm.probesTotal, nm.probeLatency, nm.reachable, nm.active)

	return nm
}

// RecordProbe records one probe result.
func (nm *NodeMetrics) RecordProbe(nodeID string, reachable bool, latency time.Duration) {
	if !reachable {
		nm.probesTotal.WithLabelValues(nodeID, ResultError).Inc()
		nm.reachable.WithLabelValues(nodeID).Set(0)
		return
	}
	nm.probesTotal.WithLabelValues(nodeID, ResultSuccess).Inc()
	nm.probeLatency.WithLabelValues(nodeID).Observe(latency.Seconds())
	nm.reachable.WithLabelValues(nodeID).Set(1)
}

// SetActive moves the active marker to nodeID.
func (nm *NodeMetrics) SetActive(nodeID string) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	if nm.activeID == nodeID {
		return
	}
	if nm.activeID != "" {
		nm.active.WithLabelValues(nm.activeID).Set(0)
	}
	if nodeID != "" {
		nm.active.WithLabelValues(nodeID).Set(1)
	}
	nm.activeID = nodeID
}
