package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"nebula-hq/nebula/pkg/config"
	"nebula-hq/nebula/pkg/dispatch"
	"nebula-hq/nebula/pkg/nodes"
)

// Compile-time checks that the collector plugs into both observers.
var (
	_ dispatch.Observer = (*Collector)(nil)
	_ nodes.Observer    = (*Collector)(nil)
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:             true,
		Namespace:           "test",
		Path:                "/metrics",
		SendDurationBuckets: []float64{0.1, 0.5, 1, 5},
		ProbeLatencyBuckets: []float64{0.05, 0.2, 1},
	}
}

func TestCollector_ObserveSend(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.ObserveSend("openai", "gpt-4o", "", 1200*time.Millisecond)
	c.ObserveSend("openai", "gpt-4o", "", 300*time.Millisecond)
	c.ObserveSend("deepseek", "deepseek-chat", "vendor_http", 50*time.Millisecond)

	if got := testutil.ToFloat64(c.dispatch.sendsTotal.WithLabelValues("openai", "gpt-4o", ResultSuccess)); got != 2 {
		t.Errorf("expected 2 successful openai sends, got %v", got)
	}
	if got := testutil.ToFloat64(c.dispatch.sendsTotal.WithLabelValues("deepseek", "deepseek-chat", ResultError)); got != 1 {
		t.Errorf("expected 1 failed deepseek send, got %v", got)
	}
	if got := testutil.ToFloat64(c.dispatch.errorsTotal.WithLabelValues("deepseek", "vendor_http")); got != 1 {
		t.Errorf("expected 1 vendor_http error, got %v", got)
	}
	if got := testutil.CollectAndCount(c.dispatch.sendDuration); got != 2 {
		t.Errorf("expected 2 duration series, got %d", got)
	}
}

func TestCollector_ModelCardinality(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())
	c.models = NewCardinalityLimiter(1)

	c.ObserveSend("xai", "grok-beta", "", time.Second)
	c.ObserveSend("xai", "grok-2", "", time.Second)

	if got := testutil.ToFloat64(c.dispatch.sendsTotal.WithLabelValues("xai", "other", ResultSuccess)); got != 1 {
		t.Errorf("expected overflow model reported as other, got %v", got)
	}
}

func TestCollector_ObserveProbe(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.ObserveProbe("p_direct", true, 120*time.Millisecond)
	c.ObserveProbe("p_cf_1", false, 0)

	if got := testutil.ToFloat64(c.nodes.reachable.WithLabelValues("p_direct")); got != 1 {
		t.Errorf("expected p_direct reachable, got %v", got)
	}
	if got := testutil.ToFloat64(c.nodes.reachable.WithLabelValues("p_cf_1")); got != 0 {
		t.Errorf("expected p_cf_1 unreachable, got %v", got)
	}
	if got := testutil.ToFloat64(c.nodes.probesTotal.WithLabelValues("p_cf_1", ResultError)); got != 1 {
		t.Errorf("expected 1 failed probe, got %v", got)
	}
}

func TestCollector_SetActiveNode(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.SetActiveNode("p_cf_1")
	c.SetActiveNode("p_direct")

	if got := testutil.ToFloat64(c.nodes.active.WithLabelValues("p_cf_1")); got != 0 {
		t.Errorf("expected previous node inactive, got %v", got)
	}
	if got := testutil.ToFloat64(c.nodes.active.WithLabelValues("p_direct")); got != 1 {
		t.Errorf("expected p_direct active, got %v", got)
	}

	c.SetActiveNode("")
	if got := testutil.ToFloat64(c.nodes.active.WithLabelValues("p_direct")); got != 0 {
		t.Errorf("expected no active node, got %v", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	c := NewCollector(cfg, prometheus.NewRegistry())

	c.ObserveSend("google", "gemini-2.5-flash", "", time.Second)
	c.ObserveProbe("p_direct", true, time.Millisecond)

	if got := testutil.CollectAndCount(c.dispatch.sendsTotal); got != 0 {
		t.Errorf("expected no series when disabled, got %d", got)
	}
	if got := testutil.CollectAndCount(c.nodes.probesTotal); got != 0 {
		t.Errorf("expected no probe series when disabled, got %d", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())
	c.ObserveSend("google", "gemini-2.5-flash", "", time.Second)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test_dispatch_sends_total") {
		t.Errorf("expected sends metric in exposition, got:\n%s", rec.Body.String())
	}
}

func TestCollector_Serve(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())
	c.RegisterRuntimeCollectors()
	c.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.serve(ctx, ln, nil) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	if err != nil {
		cancel()
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "go_goroutines") {
		t.Errorf("expected runtime metrics, got:\n%s", body)
	}

	resp, err = http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		cancel()
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected extra route to be served, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("expected first two values allowed")
	}
	if cl.Allow("c") {
		t.Error("expected third value rejected")
	}
	if !cl.Allow("a") {
		t.Error("expected known value allowed")
	}
	if cl.Count() != 2 {
		t.Errorf("expected count 2, got %d", cl.Count())
	}
}
