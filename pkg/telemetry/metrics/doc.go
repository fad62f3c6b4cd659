// Package metrics exposes Prometheus metrics for vendor sends and node
// probing.
//
// A Collector implements both dispatch.Observer and nodes.Observer:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	dispatcher, _ := dispatch.New(dispatch.Options{Observer: collector, ...})
//	registry := nodes.NewRegistry(seed, nodes.Options{Observer: collector, ...})
//	go collector.Serve(ctx, logger)
//
// # Metrics
//
//   - nebula_dispatch_sends_total{provider,model,result}
//   - nebula_dispatch_send_duration_seconds{provider}
//   - nebula_dispatch_errors_total{provider,kind}
//   - nebula_nodes_probes_total{node,result}
//   - nebula_nodes_probe_latency_seconds{node}
//   - nebula_nodes_reachable{node}
//   - nebula_nodes_active{node}
//
// The model label is capped; once the cap is reached new models are
// reported as "other".
package metrics
