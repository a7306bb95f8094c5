package adaptive

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/kdowling/fin-reliability/go-engine/internal/calib"
	"github.com/kdowling/fin-reliability/go-engine/internal/composite"
	"github.com/kdowling/fin-reliability/go-engine/internal/scenario"
	"github.com/kdowling/fin-reliability/go-engine/internal/semantic"
)

// stubSim always reports the same similarity.
type stubSim struct {
	sim float64
}

func (s stubSim) Available() bool { return true }

func (s stubSim) Similarity(_ context.Context, _, _ string) (float64, error) {
	return s.sim, nil
}

// flakySim fails for one pinned question and reports a fixed
// similarity otherwise.
type flakySim struct {
	failFor string
	sim     float64
}

func (f flakySim) Available() bool { return true }

func (f flakySim) Similarity(_ context.Context, a, b string) (float64, error) {
	if a == f.failFor || b == f.failFor {
		return 0, errors.New("estimator unavailable")
	}
	return f.sim, nil
}

func fptr(v float64) *float64 { return &v }

func newTestScorer(sim semantic.Provider, store calib.Store) *Scorer {
	return NewScorer(composite.NewScorer(composite.DefaultConfig()), sim, store, DefaultConfig())
}

func TestContradictionEMA(t *testing.T) {
	s := newTestScorer(nil, nil)
	st := NewState("ema", nil)
	ctx := context.Background()

	raws := []float64{0.2, 0.8, 0.9}
	want := []float64{0.2, 0.56, 0.764}

	for i, raw := range raws {
		res := s.Compute(ctx, st, Input{
			Question:         "What is Apple's P/E ratio?",
			Answer:           "The P/E is 30.",
			ContradictionRaw: fptr(raw),
		})
		if res.SmoothedContradiction == nil {
			t.Fatalf("turn %d: no smoothed contradiction", i+1)
		}
		if math.Abs(*res.SmoothedContradiction-want[i]) > 1e-6 {
			t.Errorf("turn %d: smoothed %f, want %f", i+1, *res.SmoothedContradiction, want[i])
		}
		if res.RawContradiction == nil || *res.RawContradiction != raw {
			t.Errorf("turn %d: raw %v, want %f", i+1, res.RawContradiction, raw)
		}
	}
}

func TestContradictionMissing(t *testing.T) {
	s := newTestScorer(nil, nil)
	st := NewState("no-contra", nil)

	res := s.Compute(context.Background(), st, Input{
		Question: "What is Apple's P/E ratio?",
		Answer:   "The P/E is 30.",
	})
	if res.RawContradiction != nil || res.SmoothedContradiction != nil {
		t.Fatal("absent contradiction must stay absent, not default to a value")
	}
	for _, name := range res.Available {
		if name == SignalContradiction {
			t.Fatal("contradiction listed as available without an input")
		}
	}
}

func TestComparativeDiscount(t *testing.T) {
	s := newTestScorer(nil, nil)
	ctx := context.Background()

	// Explicit comparative intent.
	st := NewState("cmp-flag", nil)
	res := s.Compute(ctx, st, Input{
		Question:          "Is Apple's P/E better than Microsoft's?",
		Answer:            "Apple's is higher.",
		ContradictionRaw:  fptr(0.8),
		ComparativeIntent: true,
	})
	if res.SmoothedContradiction == nil || math.Abs(*res.SmoothedContradiction-0.4) > 1e-9 {
		t.Errorf("flagged comparison: smoothed %v, want 0.4", res.SmoothedContradiction)
	}
	if !hasWarning(res.Warnings, "comparative") {
		t.Errorf("missing comparative warning in %v", res.Warnings)
	}

	// Comparison scenario detected from the question alone.
	st = NewState("cmp-scen", nil)
	res = s.Compute(ctx, st, Input{
		Question:         "AAPL vs MSFT: which grew faster?",
		Answer:           "AAPL grew faster.",
		ContradictionRaw: fptr(0.8),
	})
	if res.SmoothedContradiction == nil || math.Abs(*res.SmoothedContradiction-0.4) > 1e-9 {
		t.Errorf("detected comparison: smoothed %v, want 0.4", res.SmoothedContradiction)
	}
}

func TestTopicShiftDiscount(t *testing.T) {
	s := newTestScorer(stubSim{sim: 0.5}, nil)
	st := NewState("shift", nil)
	ctx := context.Background()

	res := s.Compute(ctx, st, Input{
		Question:         "What is Apple's P/E ratio?",
		Answer:           "The P/E is 30.",
		ContradictionRaw: fptr(0.8),
	})
	if res.SmoothedContradiction == nil || math.Abs(*res.SmoothedContradiction-0.8) > 1e-9 {
		t.Fatalf("first turn has no previous question to shift from: got %v", res.SmoothedContradiction)
	}

	res = s.Compute(ctx, st, Input{
		Question:         "Does Coca-Cola pay a dividend?",
		Answer:           "Yes, quarterly.",
		ContradictionRaw: fptr(0.8),
	})
	if res.SmoothedContradiction == nil || math.Abs(*res.SmoothedContradiction-0.4) > 1e-9 {
		t.Errorf("topic shift: smoothed %v, want 0.4", res.SmoothedContradiction)
	}
	if !hasWarning(res.Warnings, "topic shift") {
		t.Errorf("missing topic shift warning in %v", res.Warnings)
	}
}

func TestDriftRequiresBothConditions(t *testing.T) {
	ctx := context.Background()
	high := []*float64{fptr(0.95), fptr(0.95), fptr(0.95)}
	low := []*float64{fptr(0.05), fptr(0.05), fptr(0.05)}

	run := func(sim semantic.Provider, second []*float64) Result {
		s := newTestScorer(sim, nil)
		st := NewState("drift", nil)
		s.Compute(ctx, st, Input{
			Question: "alpha beta gamma", Answer: "delta",
			Grounding: high[0], Numeric: high[1], Temporal: high[2],
		})
		return s.Compute(ctx, st, Input{
			Question: "alpha beta gamma", Answer: "delta",
			Grounding: second[0], Numeric: second[1], Temporal: second[2],
		})
	}

	// Similar question, stable score: no drift.
	if res := run(stubSim{sim: 0.95}, high); res.DriftDetected {
		t.Error("stable score must not flag drift")
	}
	// Similar question, large swing: drift.
	if res := run(stubSim{sim: 0.95}, low); !res.DriftDetected {
		t.Error("similar question with a large swing must flag drift")
	}
	// Different question, large swing: no drift.
	if res := run(stubSim{sim: 0.5}, low); res.DriftDetected {
		t.Error("dissimilar question must not flag drift")
	}
	// No provider: drift detection degrades to off.
	if res := run(nil, low); res.DriftDetected {
		t.Error("drift requires a similarity provider")
	}
}

func TestDriftSurvivesEstimatorError(t *testing.T) {
	ctx := context.Background()
	high := []*float64{fptr(0.95), fptr(0.95), fptr(0.95)}
	low := []*float64{fptr(0.05), fptr(0.05), fptr(0.05)}

	// The estimator fails for the oldest stored question; the later,
	// similar pair must still surface the swing.
	s := newTestScorer(flakySim{failFor: "alpha one", sim: 0.95}, nil)
	st := NewState("drift-flaky", nil)
	s.Compute(ctx, st, Input{
		Question: "alpha one", Answer: "delta",
		Grounding: high[0], Numeric: high[1], Temporal: high[2],
	})
	s.Compute(ctx, st, Input{
		Question: "beta two", Answer: "delta",
		Grounding: high[0], Numeric: high[1], Temporal: high[2],
	})
	res := s.Compute(ctx, st, Input{
		Question: "beta three", Answer: "delta",
		Grounding: low[0], Numeric: low[1], Temporal: low[2],
	})
	if !res.DriftDetected {
		t.Error("a failed similarity estimate must not mask drift in the rest of the history")
	}
}

func TestRetuneOnPersistentContradiction(t *testing.T) {
	store := calib.NewMemoryStore()
	s := newTestScorer(nil, store)
	st := NewState("sess-retune", nil)
	ctx := context.Background()

	in := Input{
		Question:         "What is Apple's P/E ratio?",
		Answer:           "The P/E is 30.",
		ContradictionRaw: fptr(0.9),
	}

	for turn := 1; turn <= 6; turn++ {
		res := s.Compute(ctx, st, in)
		switch turn {
		case 5:
			if !res.Retuned {
				t.Fatalf("turn 5: expected retune, warnings: %v", res.Warnings)
			}
		default:
			if res.Retuned {
				t.Fatalf("turn %d: unexpected retune", turn)
			}
		}
	}

	// Contradiction weight decayed by the configured factor relative to the
	// untouched signals, and the vector still sums to 1.
	contra := st.CurrentWeights[SignalContradiction]
	grounding := st.CurrentWeights[scenario.SignalGrounding]
	if math.Abs(contra/grounding-0.7) > 1e-9 {
		t.Errorf("decay ratio: got %f, want 0.7", contra/grounding)
	}
	if err := scenario.ValidateWeights(st.CurrentWeights); err != nil {
		t.Errorf("retuned weights: %v", err)
	}

	// Persistence is fire-and-forget; wait for the write to land.
	deadline := time.Now().Add(2 * time.Second)
	var recs []calib.Record
	for time.Now().Before(deadline) {
		var err error
		recs, err = store.History("sess-retune", 10)
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		if len(recs) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 persisted calibration, got %d", len(recs))
	}
	rec := recs[0]
	if rec.TotalTurns != 5 {
		t.Errorf("record turns: got %d, want 5", rec.TotalTurns)
	}
	if !strings.Contains(rec.Reason, "contradiction") {
		t.Errorf("record reason: %q", rec.Reason)
	}
	if math.Abs(scenario.WeightSum(rec.Weights)-1.0) > scenario.WeightSumTolerance {
		t.Errorf("persisted weights sum to %f", scenario.WeightSum(rec.Weights))
	}
}

func TestRetuneThrottled(t *testing.T) {
	s := newTestScorer(nil, nil)
	st := NewState("quiet", nil)
	ctx := context.Background()

	// Clean sessions hit the interval but have no reason to retune.
	in := Input{
		Question:         "What is Apple's P/E ratio?",
		Answer:           "The P/E is 30.",
		ContradictionRaw: fptr(0.1),
	}
	for turn := 1; turn <= 10; turn++ {
		if res := s.Compute(ctx, st, in); res.Retuned {
			t.Fatalf("turn %d: retuned a calm session", turn)
		}
	}
	if scenario.WeightSum(st.CurrentWeights) == 0 {
		t.Fatal("weights lost")
	}
}

func TestContradictionReliefWhenGrounded(t *testing.T) {
	s := newTestScorer(nil, nil)
	ctx := context.Background()

	base := Input{
		Question:         "What is Apple's P/E ratio?",
		Answer:           "The P/E is 30.",
		ContradictionRaw: fptr(0.9),
	}

	// Weakly grounded: contradiction keeps its full weight.
	weak := base
	weak.Grounding = fptr(0.3)
	weakRes := s.Compute(ctx, NewState("weak", nil), weak)

	// Well grounded: contradiction weight shrinks.
	strong := base
	strong.Grounding = fptr(0.9)
	strongRes := s.Compute(ctx, NewState("strong", nil), strong)

	if !hasWarning(strongRes.Warnings, "grounded divergence") {
		t.Errorf("missing relief warning in %v", strongRes.Warnings)
	}
	if hasWarning(weakRes.Warnings, "grounded divergence") {
		t.Error("weakly grounded answer got contradiction relief")
	}
	if strongRes.WeightsUsed[SignalContradiction] >= weakRes.WeightsUsed[SignalContradiction] {
		t.Errorf("relief did not shrink contradiction weight: %f vs %f",
			strongRes.WeightsUsed[SignalContradiction], weakRes.WeightsUsed[SignalContradiction])
	}
}

func TestUniformCalibrationReproducesProfile(t *testing.T) {
	s := newTestScorer(nil, nil)
	st := NewState("fresh", nil)

	// Grounding 0.30 vs numeric 0.20 in the default profile: an untouched
	// session must preserve that ratio in the weights actually used.
	res := s.Compute(context.Background(), st, Input{
		Question:  "alpha beta gamma",
		Answer:    "delta",
		Grounding: fptr(0.5),
		Numeric:   fptr(0.5),
	})

	wg := res.WeightsUsed[scenario.SignalGrounding]
	wn := res.WeightsUsed[scenario.SignalNumeric]
	if math.Abs(wg/wn-0.30/0.20) > 1e-9 {
		t.Errorf("profile ratio: got %f, want %f", wg/wn, 0.30/0.20)
	}
}

func TestStabilityIndex(t *testing.T) {
	if got := stabilityIndex([]float64{0.4, 0.9}); got != 1.0 {
		t.Errorf("short window: got %f, want 1.0", got)
	}
	if got := stabilityIndex([]float64{0.5, 0.5, 0.5, 0.5}); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("constant window: got %f, want 1.0", got)
	}
	got := stabilityIndex([]float64{0.1, 0.9, 0.1, 0.9})
	if math.Abs(got-0.6) > 1e-9 {
		t.Errorf("volatile window: got %f, want 0.6", got)
	}
}

func TestLabelFor(t *testing.T) {
	offset := DefaultConfig().LabelOffset
	tests := []struct {
		score float64
		want  Label
	}{
		{0.90, LabelHighlyReliable},
		{0.73, LabelHighlyReliable}, // within the smoothing offset of 0.75
		{0.60, LabelReliable},
		{0.53, LabelReliable}, // within the offset of 0.55
		{0.40, LabelUncertain},
		{0.10, LabelUnreliable},
	}
	for _, tt := range tests {
		if got := labelFor(tt.score, offset); got != tt.want {
			t.Errorf("labelFor(%f): got %s, want %s", tt.score, got, tt.want)
		}
	}
}

func hasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
