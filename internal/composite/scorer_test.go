package composite

import (
	"math"
	"reflect"
	"testing"

	"github.com/kdowling/fin-reliability/go-engine/internal/scenario"
	"github.com/kdowling/fin-reliability/go-engine/internal/signal"
)

func fptr(v float64) *float64 { return &v }

func TestComputeScoreBounds(t *testing.T) {
	s := NewScorer(DefaultConfig())

	inputs := []Input{
		{Answer: "", Question: ""},
		{
			Answer:   "AAPL trades at $101, up 2% today according to Bloomberg.",
			Question: "What is the current stock price of Apple?",
			Passages: []string{"AAPL closed at $101, a 2% gain."},
			Facts: &signal.Facts{
				Fields:   map[string]float64{signal.FieldPrice: 100.0, signal.FieldPercentChange: 2.0},
				Sources:  []string{"yfinance"},
				Entities: []string{"AAPL"},
			},
			Uncertainty: fptr(0.2),
		},
		{
			Answer:   "The price is $9999 and it rose and fell.",
			Question: "What is the current stock price of Apple?",
			Facts:    &signal.Facts{Fields: map[string]float64{signal.FieldPrice: 100.0}},
		},
		{
			Answer:      "Hard to say.",
			Question:    "Thoughts?",
			Uncertainty: fptr(3.0),
		},
	}

	for i, in := range inputs {
		res := s.Compute(in)
		if res.Score < 0 || res.Score > 1 {
			t.Errorf("input %d: score %f out of [0, 1]", i, res.Score)
		}
		if !res.NoData {
			var sum float64
			for _, w := range res.WeightsUsed {
				sum += w
			}
			if math.Abs(sum-1.0) > scenario.WeightSumTolerance {
				t.Errorf("input %d: used weights sum to %f", i, sum)
			}
		}
	}
}

func TestComputeDeterministic(t *testing.T) {
	s := NewScorer(DefaultConfig())
	in := Input{
		Answer:      "AAPL trades at $101 according to Bloomberg.",
		Question:    "What is the current stock price of Apple?",
		Passages:    []string{"AAPL closed at $101."},
		Uncertainty: fptr(0.4),
		Facts: &signal.Facts{
			Fields:   map[string]float64{signal.FieldPrice: 100.0},
			Entities: []string{"AAPL"},
		},
	}

	first := s.Compute(in)
	second := s.Compute(in)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs diverged:\n%+v\n%+v", first, second)
	}
}

func TestComposeSingleSignal(t *testing.T) {
	s := NewScorer(DefaultConfig())
	prof := scenario.Profiles[scenario.ScenarioDefault]

	// Only temporal present: its weight renormalizes to 1.0 and the score is
	// the (identity-transformed) signal value. 0.5 sits below every bonus.
	bundle := signal.Bundle{Temporal: fptr(0.5)}
	res := s.Compose(prof, prof.CloneWeights(), bundle)

	if res.NoData {
		t.Fatal("one signal is data")
	}
	if !res.Renormalized {
		t.Error("dropping four signals must flag renormalization")
	}
	if w := res.WeightsUsed[scenario.SignalTemporal]; math.Abs(w-1.0) > 1e-9 {
		t.Errorf("single available signal weight: got %f, want 1.0", w)
	}
	if math.Abs(res.Score-0.5) > 1e-9 {
		t.Errorf("score: got %f, want 0.5", res.Score)
	}
}

func TestComposeRenormalizationPreservesRatios(t *testing.T) {
	s := NewScorer(DefaultConfig())
	prof := scenario.Profiles[scenario.ScenarioDefault] // grounding 0.30, numeric 0.20

	bundle := signal.Bundle{Grounding: fptr(0.25), Numeric: fptr(0.25)}
	res := s.Compose(prof, prof.CloneWeights(), bundle)

	wg := res.WeightsUsed[scenario.SignalGrounding]
	wn := res.WeightsUsed[scenario.SignalNumeric]
	if math.Abs(wg+wn-1.0) > 1e-9 {
		t.Errorf("weights sum to %f", wg+wn)
	}
	if math.Abs(wg/wn-0.30/0.20) > 1e-9 {
		t.Errorf("weight ratio: got %f, want %f", wg/wn, 0.30/0.20)
	}

	// sqrt transform applies to grounding only.
	want := wg*math.Sqrt(0.25) + wn*0.25
	if math.Abs(res.Score-want) > 1e-9 {
		t.Errorf("score: got %f, want %f", res.Score, want)
	}
}

func TestComposeNoData(t *testing.T) {
	s := NewScorer(DefaultConfig())
	prof := scenario.Profiles[scenario.ScenarioDefault]

	res := s.Compose(prof, prof.CloneWeights(), signal.Bundle{})
	if !res.NoData {
		t.Fatal("empty bundle must flag NoData")
	}
	if res.Score != 0 {
		t.Errorf("no-data score: got %f, want 0", res.Score)
	}
}

func TestApplyBonuses(t *testing.T) {
	s := NewScorer(DefaultConfig())
	solid := signal.Bundle{
		Grounding: fptr(0.6),
		Numeric:   fptr(0.6),
		Entropy:   fptr(0.6),
	}

	// Baseline bonus lifts 0.5 to 0.55, which then earns the minimum boost.
	got := s.ApplyBonuses(0.5, solid)
	want := 0.55 * 1.05
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %f, want %f", got, want)
	}

	// A missing entropy signal withholds the bonus, leaving 0.5 unboosted.
	partial := signal.Bundle{Grounding: fptr(0.6), Numeric: fptr(0.6)}
	if got := s.ApplyBonuses(0.5, partial); got != 0.5 {
		t.Errorf("without entropy: got %f, want 0.5", got)
	}

	// The boost never pushes a score past 1.0.
	if got := s.ApplyBonuses(0.99, solid); got > 1.0 {
		t.Errorf("boosted score exceeds 1.0: %f", got)
	}
}

func TestQualityBoostMonotonic(t *testing.T) {
	s := NewScorer(DefaultConfig())
	prev := 0.0
	for v := 0.0; v <= 1.0; v += 0.05 {
		got := s.qualityBoost(v)
		if got < prev {
			t.Fatalf("boost not monotonic at %f: %f < %f", v, got, prev)
		}
		prev = got
	}
}
