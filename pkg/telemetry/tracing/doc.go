// Package tracing configures OpenTelemetry for the client.
//
// New reads telemetry.tracing from the configuration, builds a sampler and,
// when an endpoint is configured, an OTLP gRPC exporter. Components receive
// named tracers from Tracer.Tracer; the dispatcher opens one span per send
// and the node registry one per probe round.
//
// Example configuration:
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    sampler: ratio
//	    sample_ratio: 0.25
//	    endpoint: localhost:4317
//	    insecure: true
package tracing
