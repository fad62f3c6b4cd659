// Package telemetry groups the observability packages of the client.
//
//   - logging: slog construction, context attributes and API key redaction
//   - metrics: Prometheus counters for vendor sends and node probes
//   - tracing: OpenTelemetry spans around sends and probes, OTLP export
//   - health: readiness checks behind `nebula doctor` and /readyz
//
// All four are configured from the telemetry section of the config file and
// wired together in cmd/nebula.
package telemetry
