package replay

// #region imports
import (
	"context"

	"github.com/kdowling/fin-reliability/go-engine/internal/adaptive"
	"github.com/kdowling/fin-reliability/go-engine/internal/calib"
	"github.com/kdowling/fin-reliability/go-engine/internal/composite"
	"github.com/kdowling/fin-reliability/go-engine/internal/risk"
	"github.com/kdowling/fin-reliability/go-engine/internal/scenario"
	"github.com/kdowling/fin-reliability/go-engine/internal/semantic"
)

// #endregion

// #region types

// TurnResult captures the outcome of replaying one recorded turn.
type TurnResult struct {
	TurnID     string
	Score      float64
	Label      adaptive.Label
	ScenarioID string
	Drift      bool
	Retuned    bool
	Warnings   []string
	Assessment risk.Assessment
}

// Summary aggregates a replay run.
type Summary struct {
	TotalTurns   int
	Retunes      int
	DriftFlags   int
	NeedsReview  int
	Labels       map[adaptive.Label]int
	FinalWeights map[scenario.SignalName]float64
}

// Config bundles the scorer configurations for a replay run.
type Config struct {
	Composite composite.Config
	Adaptive  adaptive.Config
	Risk      risk.Config
}

// DefaultConfig returns defaults for all pipeline stages.
func DefaultConfig() Config {
	return Config{
		Composite: composite.DefaultConfig(),
		Adaptive:  adaptive.DefaultConfig(),
		Risk:      risk.DefaultConfig(),
	}
}

// #endregion types

// #region replay

// Replay runs recorded turns through a fresh adaptive session entirely
// in-memory: no sidecar, no durable store, lexical similarity only.
func Replay(ctx context.Context, fixture *Fixture, config Config) ([]TurnResult, Summary) {
	store := calib.NewMemoryStore()
	static := composite.NewScorer(config.Composite)
	scorer := adaptive.NewScorer(static, semantic.Lexical{}, store, config.Adaptive)
	evaluator := risk.NewEvaluator(config.Risk)
	st := adaptive.NewState(fixture.SessionID, nil)

	results := make([]TurnResult, 0, len(fixture.Turns))
	summary := Summary{Labels: make(map[adaptive.Label]int)}

	for _, turn := range fixture.Turns {
		res := scorer.Compute(ctx, st, turn.ToInput())

		score := res.Score
		var scorePtr *float64
		if !res.NoData {
			scorePtr = &score
		}
		assessment := evaluator.Evaluate(scorePtr, res.ScenarioID, turn.Question, 0)

		results = append(results, TurnResult{
			TurnID:     turn.TurnID,
			Score:      res.Score,
			Label:      res.Label,
			ScenarioID: res.ScenarioID,
			Drift:      res.DriftDetected,
			Retuned:    res.Retuned,
			Warnings:   res.Warnings,
			Assessment: assessment,
		})

		summary.TotalTurns++
		summary.Labels[res.Label]++
		if res.DriftDetected {
			summary.DriftFlags++
		}
		if res.Retuned {
			summary.Retunes++
		}
		if assessment.NeedsReview {
			summary.NeedsReview++
		}
	}

	summary.FinalWeights = st.CurrentWeights
	return results, summary
}

// #endregion replay
