package adaptive

// #region imports
import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"

	"github.com/kdowling/fin-reliability/go-engine/internal/calib"
	"github.com/kdowling/fin-reliability/go-engine/internal/composite"
	"github.com/kdowling/fin-reliability/go-engine/internal/scenario"
	"github.com/kdowling/fin-reliability/go-engine/internal/semantic"
	"github.com/kdowling/fin-reliability/go-engine/internal/signal"
)

// #endregion

// #region config

// Config holds the smoothing, drift, and retune constants.
type Config struct {
	Alpha              float64 // EMA smoothing factor for contradiction
	ContradictionShare float64 // profile mass given to the contradiction channel

	ComparativeDiscount  float64 // smoothed contradiction multiplier on comparisons
	TopicShiftSimilarity float64 // prev-question similarity below this = topic shift

	HighContradiction   float64 // raw contradiction above this is "high"
	DecentGrounding     float64 // grounding above this is "well supported"
	ContradictionRelief float64 // per-call contradiction weight multiplier
	VerifiedRelief      float64 // stronger relief with enough verified sources
	VerifiedSourceMin   int
	LowUncertainty      float64 // raw uncertainty below this is "confident"
	GroundingEmphasis   float64 // per-call grounding weight multiplier

	DriftSimilarity      float64 // question similarity above this = same question
	FluctuationThreshold float64 // score delta above this flags drift

	RetuneInterval          int
	RetuneContradictionMean float64
	ContradictionDecay      float64
	GroundingIncrement      float64
	StabilityMin            float64
	VolatileDecay           float64
	StableGrowth            float64

	LabelOffset float64 // smoothing offset subtracted from label cut points
}

// DefaultConfig returns the calibrated adaptive constants.
func DefaultConfig() Config {
	return Config{
		Alpha:                   0.6,
		ContradictionShare:      0.20,
		ComparativeDiscount:     0.5,
		TopicShiftSimilarity:    0.75,
		HighContradiction:       0.8,
		DecentGrounding:         0.6,
		ContradictionRelief:     0.5,
		VerifiedRelief:          0.35,
		VerifiedSourceMin:       2,
		LowUncertainty:          0.5,
		GroundingEmphasis:       1.15,
		DriftSimilarity:         0.85,
		FluctuationThreshold:    0.15,
		RetuneInterval:          5,
		RetuneContradictionMean: 0.80,
		ContradictionDecay:      0.7,
		GroundingIncrement:      0.02,
		StabilityMin:            0.7,
		VolatileDecay:           0.85,
		StableGrowth:            1.10,
		LabelOffset:             0.025,
	}
}

// #endregion config

// #region label

// Label is the ordinal reliability verdict.
type Label string

const (
	LabelHighlyReliable Label = "highly_reliable"
	LabelReliable       Label = "reliable"
	LabelUncertain      Label = "uncertain"
	LabelUnreliable     Label = "unreliable"
)

// labelFor maps a score to a label using cut points smoothed downward by
// the offset, so scores hovering near a boundary get a stable verdict.
func labelFor(score, offset float64) Label {
	switch {
	case score >= 0.75-offset:
		return LabelHighlyReliable
	case score >= 0.55-offset:
		return LabelReliable
	case score >= 0.35-offset:
		return LabelUncertain
	default:
		return LabelUnreliable
	}
}

// #endregion label

// #region input-result

// Input is one adaptive scoring request. Externally computed sub-scores,
// when supplied, override the engine's own extraction for that signal.
type Input struct {
	Answer   string
	Question string
	Passages []string

	Uncertainty      *float64 // MC-dropout entropy from the estimator sidecar
	ContradictionRaw *float64 // NLI contradiction vs the prior answer, [0, 1]

	Grounding *float64
	Numeric   *float64
	Temporal  *float64

	Facts             *signal.Facts
	ComparativeIntent bool
}

// Result is the outcome of one adaptive turn.
type Result struct {
	Score        float64
	Label        Label
	ScenarioID   string
	ScenarioName string

	WeightsUsed  map[scenario.SignalName]float64
	Available    []scenario.SignalName
	Renormalized bool
	NoData       bool

	RawContradiction      *float64
	SmoothedContradiction *float64
	StabilityIndex        float64
	DriftDetected         bool
	Retuned               bool
	Warnings              []string
	TurnsProcessed        int
}

// #endregion input-result

// #region scorer

// Scorer is the stateful, session-scoped composite scorer. It wraps the
// static scorer with contradiction smoothing, stability tracking, drift
// detection, and periodic weight retuning.
type Scorer struct {
	static *composite.Scorer
	sim    semantic.Provider
	store  calib.Store
	config Config
}

// NewScorer creates an adaptive scorer. sim and store may be nil; drift
// detection and persistence degrade gracefully without them.
func NewScorer(static *composite.Scorer, sim semantic.Provider, store calib.Store, config Config) *Scorer {
	return &Scorer{static: static, sim: sim, store: store, config: config}
}

// #endregion scorer

// #region compute

// Compute scores one turn against the session's state. The state is locked
// for the whole turn; concurrent turns of the same session serialize.
func (s *Scorer) Compute(ctx context.Context, st *State, in Input) Result {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.TotalTurns++
	prof := scenario.Classify(in.Question, "")
	var warnings []string

	bundle := s.static.Extract(composite.Input{
		Answer:      in.Answer,
		Question:    in.Question,
		Passages:    in.Passages,
		Uncertainty: in.Uncertainty,
		Facts:       in.Facts,
	})
	applyOverrides(&bundle, in)

	rawC, smoothedC := s.smoothContradiction(ctx, st, in, prof, &warnings)

	if in.Uncertainty != nil {
		st.entropyWindow = push(st.entropyWindow, math.Max(0, *in.Uncertainty), entropyWindowCap)
	}

	eff := s.effectiveWeights(st, prof, bundle, in, rawC, &warnings)
	score, used, available, noData := s.fuse(eff, bundle, smoothedC)

	stability := stabilityIndex(st.scoreWindow)
	if stability < s.config.StabilityMin {
		warnings = append(warnings, "recent scores are unstable")
	}

	drift := s.detectDrift(ctx, st, in.Question, score)
	if drift {
		warnings = append(warnings, "drift: a similar question recently scored very differently")
	}

	st.scoreWindow = push(st.scoreWindow, score, scoreWindowCap)
	st.queryHistory = append(st.queryHistory, queryScore{Question: in.Question, Score: score})
	if len(st.queryHistory) > queryHistoryCap {
		st.queryHistory = st.queryHistory[1:]
	}
	st.lastQuestion = in.Question

	retuned := s.maybeRetune(st, stability, &warnings)

	return Result{
		Score:                 score,
		Label:                 labelFor(score, s.config.LabelOffset),
		ScenarioID:            prof.ID,
		ScenarioName:          prof.DisplayName,
		WeightsUsed:           used,
		Available:             available,
		Renormalized:          len(available) < len(adaptiveSignals),
		NoData:                noData,
		RawContradiction:      rawC,
		SmoothedContradiction: smoothedC,
		StabilityIndex:        stability,
		DriftDetected:         drift,
		Retuned:               retuned,
		Warnings:              warnings,
		TurnsProcessed:        st.TotalTurns,
	}
}

// applyOverrides replaces extracted sub-scores with externally supplied
// ones, clamped to [0, 1].
func applyOverrides(bundle *signal.Bundle, in Input) {
	if in.Grounding != nil {
		bundle.Grounding = clampPtr(*in.Grounding)
	}
	if in.Numeric != nil {
		bundle.Numeric = clampPtr(*in.Numeric)
	}
	if in.Temporal != nil {
		bundle.Temporal = clampPtr(*in.Temporal)
	}
}

// #endregion compute

// #region contradiction-smoothing

// smoothContradiction pushes the raw value into the 3-deep window and
// folds an EMA forward from the oldest entry. Comparative intent or a
// topic shift relative to the previous question halves the result:
// comparing two different subjects is not self-contradiction.
func (s *Scorer) smoothContradiction(ctx context.Context, st *State, in Input, prof scenario.Profile, warnings *[]string) (raw, smoothed *float64) {
	if in.ContradictionRaw == nil {
		return nil, nil
	}

	r := clamp01(*in.ContradictionRaw)
	st.contraWindow = push(st.contraWindow, r, contraWindowCap)
	sm := ema(st.contraWindow, s.config.Alpha)

	comparative := in.ComparativeIntent || prof.ID == scenario.ScenarioComparison
	switch {
	case comparative:
		sm *= s.config.ComparativeDiscount
		*warnings = append(*warnings, "comparative intent: contradiction discounted")
	case st.lastQuestion != "" && s.sim != nil && s.sim.Available():
		if simv, err := s.sim.Similarity(ctx, st.lastQuestion, in.Question); err == nil && simv < s.config.TopicShiftSimilarity {
			sm *= s.config.ComparativeDiscount
			*warnings = append(*warnings, "topic shift: contradiction discounted")
		}
	}

	st.smoothedWindow = push(st.smoothedWindow, sm, smoothedWindowCap)
	return &r, &sm
}

// ema seeds from the oldest window entry and folds forward.
func ema(window []float64, alpha float64) float64 {
	if len(window) == 0 {
		return 0
	}
	v := window[0]
	for _, x := range window[1:] {
		v = alpha*x + (1-alpha)*v
	}
	return v
}

// #endregion contradiction-smoothing

// #region effective-weights

// effectiveWeights composes the scenario's profile (extended with the
// contradiction channel) with the session's learned calibration, then
// applies the per-call adjustments. Per-call adjustments are never
// persisted.
func (s *Scorer) effectiveWeights(st *State, prof scenario.Profile, bundle signal.Bundle, in Input, rawC *float64, warnings *[]string) map[scenario.SignalName]float64 {
	base := extendedWeights(prof, s.config.ContradictionShare)
	eff := make(map[scenario.SignalName]float64, len(adaptiveSignals))
	for _, name := range adaptiveSignals {
		eff[name] = base[name] * st.CurrentWeights[name]
	}

	// Well-supported but divergently framed: high raw contradiction with
	// decent grounding shrinks the contradiction weight, harder when the
	// answer drew on enough independently verified sources.
	if rawC != nil && bundle.Grounding != nil &&
		*rawC > s.config.HighContradiction && *bundle.Grounding > s.config.DecentGrounding {
		relief := s.config.ContradictionRelief
		if in.Facts != nil && len(in.Facts.Sources) >= s.config.VerifiedSourceMin {
			relief = s.config.VerifiedRelief
		}
		eff[SignalContradiction] *= relief
		*warnings = append(*warnings, "grounded divergence: contradiction de-weighted")
	}

	if in.Uncertainty != nil && *in.Uncertainty < s.config.LowUncertainty {
		eff[scenario.SignalGrounding] *= s.config.GroundingEmphasis
	}

	return eff
}

// extendedWeights scales a profile's five weights by (1 - share) and gives
// the contradiction channel the remaining share.
func extendedWeights(prof scenario.Profile, share float64) map[scenario.SignalName]float64 {
	w := make(map[scenario.SignalName]float64, len(adaptiveSignals))
	for name, v := range prof.Weights {
		w[name] = v * (1 - share)
	}
	w[SignalContradiction] = share
	return w
}

// #endregion effective-weights

// #region fuse

// fuse renormalizes the effective weights over the available signals and
// produces the bonus-adjusted composite score.
func (s *Scorer) fuse(eff map[scenario.SignalName]float64, bundle signal.Bundle, smoothedC *float64) (float64, map[scenario.SignalName]float64, []scenario.SignalName, bool) {
	scores := make(map[scenario.SignalName]float64)
	var available []scenario.SignalName
	for _, name := range scenario.AllSignals {
		if v := bundle.Get(name); v != nil {
			scores[name] = composite.Transform(name, *v)
			available = append(available, name)
		}
	}
	if smoothedC != nil {
		scores[SignalContradiction] = 1 - clamp01(*smoothedC)
		available = append(available, SignalContradiction)
	}

	if len(scores) == 0 {
		return 0, map[scenario.SignalName]float64{}, nil, true
	}

	var mass float64
	for _, name := range available {
		mass += eff[name]
	}
	used := make(map[scenario.SignalName]float64, len(available))
	var score float64
	for _, name := range available {
		w := eff[name] / mass
		used[name] = w
		score += w * scores[name]
	}

	return s.static.ApplyBonuses(score, bundle), used, available, false
}

// #endregion fuse

// #region stability

// stabilityIndex is max(0, 1 - stdev(prior scores)); fewer than 3 prior
// scores is assumed stable.
func stabilityIndex(window []float64) float64 {
	if len(window) < 3 {
		return 1.0
	}
	sd, err := stats.StandardDeviation(stats.Float64Data(window))
	if err != nil {
		return 1.0
	}
	return math.Max(0, 1-sd)
}

// #endregion stability

// #region drift

// detectDrift compares the current question to the stored session history.
// Drift requires both high similarity and a large score delta.
func (s *Scorer) detectDrift(ctx context.Context, st *State, question string, score float64) bool {
	if s.sim == nil || !s.sim.Available() {
		return false
	}
	for _, q := range st.queryHistory {
		simv, err := s.sim.Similarity(ctx, q.Question, question)
		if err != nil {
			// One failed estimate should not hide drift visible in
			// the rest of the history.
			continue
		}
		if simv > s.config.DriftSimilarity && math.Abs(score-q.Score) > s.config.FluctuationThreshold {
			return true
		}
	}
	return false
}

// #endregion drift

// #region retune

// maybeRetune re-tunes the session's persisted calibration at most once
// every RetuneInterval turns, then renormalizes and persists it
// fire-and-forget. A persistence failure is logged and swallowed; only
// calibration continuity across restarts is lost.
func (s *Scorer) maybeRetune(st *State, stability float64, warnings *[]string) bool {
	if st.TotalTurns-st.LastRetuneTurn < s.config.RetuneInterval {
		return false
	}
	st.LastRetuneTurn = st.TotalTurns

	var reasons []string

	if m, err := stats.Mean(stats.Float64Data(st.smoothedWindow)); err == nil && m > s.config.RetuneContradictionMean {
		st.CurrentWeights[SignalContradiction] *= s.config.ContradictionDecay
		reasons = append(reasons, "persistent contradiction: contradiction weight decayed")
	}

	if m, err := stats.Mean(stats.Float64Data(st.entropyWindow)); err == nil && m < s.config.LowUncertainty {
		st.CurrentWeights[scenario.SignalGrounding] += s.config.GroundingIncrement
		st.CurrentWeights[scenario.SignalNumeric] += s.config.GroundingIncrement
		reasons = append(reasons, "confident window: grounding and numeric weights raised")
	}

	if stability < s.config.StabilityMin {
		st.CurrentWeights[scenario.SignalEntropy] *= s.config.VolatileDecay
		st.CurrentWeights[SignalContradiction] *= s.config.VolatileDecay
		st.CurrentWeights[scenario.SignalGrounding] *= s.config.StableGrowth
		st.CurrentWeights[scenario.SignalNumeric] *= s.config.StableGrowth
		reasons = append(reasons, "low stability: volatile weights shrunk")
	}

	if len(reasons) == 0 {
		return false
	}

	scenario.NormalizeWeights(st.CurrentWeights)
	*warnings = append(*warnings, "weights retuned: "+strings.Join(reasons, "; "))

	rec := calib.Record{
		VersionID:  uuid.New().String(),
		ParentID:   st.lastVersionID,
		SessionID:  st.SessionID,
		Weights:    cloneWeights(st.CurrentWeights),
		TotalTurns: st.TotalTurns,
		Reason:     strings.Join(reasons, "; "),
		CreatedAt:  time.Now().UTC(),
	}
	st.lastVersionID = rec.VersionID

	if s.store != nil {
		go func() {
			if err := s.store.Save(rec); err != nil {
				log.Printf("[CALIB] persist retune for %s: %v", rec.SessionID, err)
			}
		}()
	}
	return true
}

// #endregion retune

// #region helpers

func cloneWeights(w map[scenario.SignalName]float64) map[scenario.SignalName]float64 {
	out := make(map[scenario.SignalName]float64, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampPtr(v float64) *float64 {
	c := clamp01(v)
	return &c
}

// #endregion helpers
