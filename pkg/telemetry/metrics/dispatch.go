package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"nebula-hq/nebula/pkg/config"
)

// Send results used as the "result" label.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// DispatchMetrics tracks vendor sends.
//
// Metrics:
//   - nebula_dispatch_sends_total: sends by provider, model and result
//   - nebula_dispatch_send_duration_seconds: send latency by provider
//   - nebula_dispatch_errors_total: failed sends by provider and error kind
type DispatchMetrics struct {
	sendsTotal   *prometheus.CounterVec
	sendDuration *prometheus.HistogramVec
	errorsTotal  *prometheus.CounterVec
}

// NewDispatchMetrics creates and registers dispatch metrics with the provided registry.
func NewDispatchMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DispatchMetrics {
	dm := &DispatchMetrics{
		sendsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "dispatch",
				Name:      "sends_total",
				Help:      "Total number of vendor sends",
			},
			[]string{"provider", "model", "result"},
		),
		sendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "dispatch",
				Name:      "send_duration_seconds",
				Help:      "Duration of vendor sends in seconds",
				Buckets:   cfg.SendDurationBuckets,
			},
			[]string{"provider"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "dispatch",
				Name:      "errors_total",
				Help:      "Total number of failed vendor sends by error kind",
			},
			[]string{"provider", "kind"},
		),
	}

	registry.MustRegister(dm.sendsTotal, dm.sendDuration, dm.errorsTotal)

	return dm
}

// Record records one send. An empty kind means success.
func (dm *DispatchMetrics) Record(provider, model, kind string, duration time.Duration) {
	result := ResultSuccess
	if kind != "" {
		result = ResultError
		dm.errorsTotal.WithLabelValues(provider, kind).Inc()
	}
	dm.sendsTotal.WithLabelValues(provider, model, result).Inc()
	dm.sendDuration.WithLabelValues(provider).Observe(duration.Seconds())
}
