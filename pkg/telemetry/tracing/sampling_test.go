package tracing

import "testing"

func TestNewSampler(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		ratio    float64
		wantErr  bool
		wantDesc string
	}{
		{name: "always", strategy: SamplerAlways, ratio: 1.0, wantDesc: "AlwaysOnSampler"},
		{name: "never", strategy: SamplerNever, ratio: 1.0, wantDesc: "AlwaysOffSampler"},
		{name: "ratio 0%", strategy: SamplerRatio, ratio: 0.0, wantDesc: "TraceIDRatioBased{0}"},
		{name: "ratio 50%", strategy: SamplerRatio, ratio: 0.5, wantDesc: "TraceIDRatioBased{0.5}"},
		{name: "parent based", strategy: SamplerParentBased, ratio: 0.25},
		{name: "negative ratio", strategy: SamplerRatio, ratio: -0.1, wantErr: true},
		{name: "ratio above 1", strategy: SamplerRatio, ratio: 1.5, wantErr: true},
		{name: "unknown strategy", strategy: "unknown", ratio: 0.5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler, err := newSampler(tt.strategy, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newSampler() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if sampler == nil {
				t.Fatal("newSampler() returned nil sampler")
			}
			if tt.wantDesc != "" && sampler.Description() != tt.wantDesc {
				t.Errorf("Description() = %q, want %q", sampler.Description(), tt.wantDesc)
			}
		})
	}
}
