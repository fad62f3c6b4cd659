package tracing

import (
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Sampling strategies accepted in telemetry.tracing.sampler.
const (
	// SamplerAlways records every trace.
	SamplerAlways = "always"

	// SamplerNever records nothing.
	SamplerNever = "never"

	// SamplerRatio records a fraction of root traces.
	SamplerRatio = "ratio"

	// SamplerParentBased follows the parent's decision and applies the
	// ratio to root spans.
	SamplerParentBased = "parent_based"
)

// newSampler builds a sampler for strategy.
//
// always, never and ratio are used as-is: the client is always the root of
// its traces. parent_based wraps a ratio sampler in ParentBased, for embedding
// the dispatcher under a caller's span.
func newSampler(strategy string, ratio float64) (sdktrace.Sampler, error) {
	if ratio < 0.0 || ratio > 1.0 {
		return nil, fmt.Errorf("sample ratio must be between 0.0 and 1.0, got %f", ratio)
	}

	switch strategy {
	case SamplerAlways:
		return sdktrace.AlwaysSample(), nil
	case SamplerNever:
		return sdktrace.NeverSample(), nil
	case SamplerRatio:
		return sdktrace.TraceIDRatioBased(ratio), nil
	case SamplerParentBased:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio)), nil
	default:
		return nil, fmt.Errorf("unknown sampler strategy: %s (valid: always, never, ratio, parent_based)", strategy)
	}
}
