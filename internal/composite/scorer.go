package composite

// #region imports
import (
	"math"

	"github.com/kdowling/fin-reliability/go-engine/internal/scenario"
	"github.com/kdowling/fin-reliability/go-engine/internal/signal"
)

// #endregion

// #region config

// Config holds the fusion constants for the static composite scorer.
type Config struct {
	Entropy signal.EntropyConfig

	// Soft baseline bonus: added when grounding, numeric, and entropy are
	// simultaneously above their floors.
	BaselineBonus  float64
	GroundingFloor float64
	NumericFloor   float64
	EntropyFloor   float64

	// Progressive quality boost applied above BoostStart, scaling from
	// BoostMin at the boundary to BoostMax as the score approaches 1.0.
	BoostStart float64
	BoostMin   float64
	BoostMax   float64
}

// DefaultConfig returns the calibrated fusion constants.
func DefaultConfig() Config {
	return Config{
		Entropy:        signal.DefaultEntropyConfig(),
		BaselineBonus:  0.05,
		GroundingFloor: 0.40,
		NumericFloor:   0.40,
		EntropyFloor:   0.35,
		BoostStart:     0.55,
		BoostMin:       1.05,
		BoostMax:       1.12,
	}
}

// #endregion config

// #region transforms

// transforms maps signals to their pre-composition nonlinear corrections.
// Grounding and citation get a square-root transform so partial matches are
// rewarded more generously than a linear scale: a mostly-correct answer
// should not score like a mostly-wrong one.
var transforms = map[scenario.SignalName]func(float64) float64{
	scenario.SignalGrounding: math.Sqrt,
	scenario.SignalCitation:  math.Sqrt,
}

// Transform applies the per-signal correction, identity when none is defined.
func Transform(name scenario.SignalName, v float64) float64 {
	if f, ok := transforms[name]; ok {
		return f(v)
	}
	return v
}

// #endregion transforms

// #region input-result

// Input is one stateless scoring request.
type Input struct {
	Answer           string
	Question         string
	Passages         []string
	Uncertainty      *float64 // external MC-dropout entropy, nil when unavailable
	Facts            *signal.Facts
	ScenarioOverride string
}

// Result is the immutable outcome of one composite scoring call.
type Result struct {
	Score        float64
	ScenarioID   string
	ScenarioName string
	WeightsUsed  map[scenario.SignalName]float64
	Available    []scenario.SignalName
	Renormalized bool
	NoData       bool // zero signals were available; Score is a defined 0.0
	Signals      signal.Bundle
}

// #endregion input-result

// #region scorer

// Scorer is the stateless composite scorer. Identical inputs always yield
// identical results.
type Scorer struct {
	config Config
}

// NewScorer creates a static composite scorer.
func NewScorer(config Config) *Scorer {
	return &Scorer{config: config}
}

// Compute classifies the question, extracts all five signals, and fuses
// them under the scenario's weight profile.
func (s *Scorer) Compute(in Input) Result {
	prof := scenario.Classify(in.Question, in.ScenarioOverride)
	bundle := s.Extract(in)
	return s.Compose(prof, prof.CloneWeights(), bundle)
}

// Extract runs the five signal extractors for one request.
func (s *Scorer) Extract(in Input) signal.Bundle {
	return signal.Bundle{
		Grounding: signal.Grounding(in.Answer, in.Question, in.Passages, in.Facts),
		Numeric:   signal.NumericConsistency(in.Answer, in.Facts),
		Temporal:  signal.TemporalValidity(in.Answer, in.Question),
		Citation:  signal.CitationCompleteness(in.Answer, in.Passages, in.Facts),
		Entropy:   signal.EntropyConfidence(in.Uncertainty, s.config.Entropy),
	}
}

// #endregion scorer

// #region compose

// Compose fuses available signals under the given weights: drop missing
// signals and redistribute their mass proportionally, weighted-sum with
// per-signal transforms, then apply the soft baseline bonus and the
// progressive quality boost. The weights argument may differ from the
// profile's table when the adaptive scorer has adjusted it.
func (s *Scorer) Compose(prof scenario.Profile, weights map[scenario.SignalName]float64, bundle signal.Bundle) Result {
	available := bundle.Available()
	if len(available) == 0 {
		return Result{
			ScenarioID:   prof.ID,
			ScenarioName: prof.DisplayName,
			WeightsUsed:  map[scenario.SignalName]float64{},
			NoData:       true,
			Signals:      bundle,
		}
	}

	// Renormalize over the signals actually present.
	var mass float64
	for _, name := range available {
		mass += weights[name]
	}
	used := make(map[scenario.SignalName]float64, len(available))
	var score float64
	for _, name := range available {
		w := weights[name] / mass
		used[name] = w
		score += w * Transform(name, *bundle.Get(name))
	}

	score = s.ApplyBonuses(score, bundle)

	return Result{
		Score:        score,
		ScenarioID:   prof.ID,
		ScenarioName: prof.DisplayName,
		WeightsUsed:  used,
		Available:    available,
		Renormalized: len(available) < len(scenario.AllSignals),
		Signals:      bundle,
	}
}

// ApplyBonuses runs the soft baseline bonus and progressive quality boost
// over a fused base score, clamping the result to [0, 1]. Exposed so the
// adaptive scorer shares the exact same correction stage.
func (s *Scorer) ApplyBonuses(score float64, bundle signal.Bundle) float64 {
	score = s.baselineBonus(score, bundle)
	score = s.qualityBoost(score)
	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}

// baselineBonus rewards answers that are decent across the board even when
// no single signal is excellent.
func (s *Scorer) baselineBonus(score float64, bundle signal.Bundle) float64 {
	g, n, e := bundle.Grounding, bundle.Numeric, bundle.Entropy
	if g != nil && n != nil && e != nil &&
		*g >= s.config.GroundingFloor &&
		*n >= s.config.NumericFloor &&
		*e >= s.config.EntropyFloor {
		return score + s.config.BaselineBonus
	}
	return score
}

// qualityBoost multiplies scores above the boundary by a factor growing
// from BoostMin at the boundary to BoostMax near 1.0.
func (s *Scorer) qualityBoost(score float64) float64 {
	if score < s.config.BoostStart {
		return score
	}
	progress := (score - s.config.BoostStart) / (1.0 - s.config.BoostStart)
	factor := s.config.BoostMin + progress*(s.config.BoostMax-s.config.BoostMin)
	return score * factor
}

// #endregion compose
