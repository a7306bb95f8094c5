package signal

import (
	"math"
	"testing"
)

func TestEntropyConfidence(t *testing.T) {
	config := DefaultEntropyConfig()

	tests := []struct {
		name        string
		uncertainty float64
		want        float64
	}{
		{"zero-uncertainty", 0.0, 1.0}, // boosted above 1, clamped
		{"at-threshold", 1.0, 0.525},
		{"at-double-threshold", 2.0, 0.0},
		{"beyond-normalization", 5.0, 0.0},
		{"negative-treated-as-zero", -0.5, 1.0},
		{"moderate", 0.5, 0.7875},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EntropyConfidence(&tt.uncertainty, config)
			if got == nil {
				t.Fatal("expected a score")
			}
			if math.Abs(*got-tt.want) > 1e-9 {
				t.Errorf("uncertainty %f: got %f, want %f", tt.uncertainty, *got, tt.want)
			}
		})
	}
}

func TestEntropyConfidenceMissing(t *testing.T) {
	if got := EntropyConfidence(nil, DefaultEntropyConfig()); got != nil {
		t.Fatalf("missing uncertainty must yield a missing signal, got %f", *got)
	}
}
