package risk

// #region imports
import (
	"regexp"

	"github.com/kdowling/fin-reliability/go-engine/internal/scenario"
)

// #endregion

// #region floor-policy

// FloorPolicy decides whether a high-risk numeric question below the floor
// forces a review on its own. The source configuration ships with the
// floor disabled, so high-risk detection is metadata by default; callers
// with stricter policies enable enforcement explicitly.
type FloorPolicy int

const (
	FloorOff FloorPolicy = iota
	FloorEnforce
)

// #endregion floor-policy

// #region config

// Config holds the evaluation policy.
type Config struct {
	Policy        FloorPolicy
	HighRiskFloor float64 // score floor applied to high-risk questions under FloorEnforce
}

// DefaultConfig returns the default metadata-only policy.
func DefaultConfig() Config {
	return Config{
		Policy:        FloorOff,
		HighRiskFloor: 0.65,
	}
}

// #endregion config

// #region high-risk-patterns

// highRiskPatterns detect numeric questions where a wrong figure is
// costly: live quotes, yields, valuation ratios, growth rates.
var highRiskPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(current|live|latest|today'?s?) (stock |share )?price\b`),
	regexp.MustCompile(`(?i)\bstock quote\b`),
	regexp.MustCompile(`(?i)\btrading at\b`),
	regexp.MustCompile(`(?i)\bdividend yield\b`),
	regexp.MustCompile(`(?i)\bp/?e\b`),
	regexp.MustCompile(`(?i)\bprice[- ]to[- ]earnings\b`),
	regexp.MustCompile(`(?i)\bmarket cap(italization)?\b`),
	regexp.MustCompile(`(?i)\beps\b`),
	regexp.MustCompile(`(?i)\bearnings per share\b`),
	regexp.MustCompile(`(?i)\b(percent|%) (growth|change|increase|decrease)\b`),
	regexp.MustCompile(`(?i)\bhow much (did|has|will) .* (grow|change|gain|lose)\b`),
}

// IsHighRiskQuestion reports whether the question matches the high-risk
// numeric vocabulary.
func IsHighRiskQuestion(question string) bool {
	for _, p := range highRiskPatterns {
		if p.MatchString(question) {
			return true
		}
	}
	return false
}

// #endregion high-risk-patterns

// #region assessment

// Assessment is the review decision for one scored answer. Derived per
// call, never stored.
type Assessment struct {
	Threshold           float64
	BelowThreshold      bool
	HighRiskQuestion    bool
	HighRiskFloorBreach bool
	NeedsReview         bool
}

// #endregion assessment

// #region evaluator

// Evaluator maps scores to review decisions against scenario thresholds.
type Evaluator struct {
	config Config
}

// NewEvaluator creates a risk evaluator with the given policy.
func NewEvaluator(config Config) *Evaluator {
	return &Evaluator{config: config}
}

// Evaluate checks a composite score against the scenario's threshold.
// score is nil when the scorer produced a no-data result; that always
// counts as below threshold. thresholdOverride, when positive, replaces
// the scenario's threshold.
func (e *Evaluator) Evaluate(score *float64, scenarioID, question string, thresholdOverride float64) Assessment {
	threshold := thresholdOverride
	if threshold <= 0 {
		if p, ok := scenario.Profiles[scenarioID]; ok {
			threshold = p.Threshold
		} else {
			threshold = scenario.Profiles[scenario.ScenarioDefault].Threshold
		}
	}

	below := score == nil || *score < threshold
	highRisk := IsHighRiskQuestion(question)

	breach := false
	if e.config.Policy == FloorEnforce && highRisk {
		breach = score == nil || *score < e.config.HighRiskFloor
	}

	return Assessment{
		Threshold:           threshold,
		BelowThreshold:      below,
		HighRiskQuestion:    highRisk,
		HighRiskFloorBreach: breach,
		NeedsReview:         below || breach,
	}
}

// #endregion evaluator
