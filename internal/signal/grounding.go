package signal

// #region imports
import (
	"math"
	"strings"
)

// #endregion

// #region constants

const (
	// groundingHardCap is applied when any numeric claim fails its
	// field tolerance, regardless of other evidence.
	groundingHardCap = 0.2

	// claimAttributionLimit is the max relative error at which an answer
	// number is still considered a claim about a fact field. Beyond it the
	// number is treated as unrelated rather than wrong.
	claimAttributionLimit = 0.5

	// overlapFloor is the minimum grounding score for any non-zero
	// lexical overlap with retrieved passages.
	overlapFloor = 0.35

	// echoBonus rewards figures from the passages repeated verbatim.
	echoBonus = 0.15
)

// #endregion constants

// #region grounding

// Grounding measures how well the answer's factual content is supported.
// With verified facts it validates numeric claims against the tolerance
// table; a single out-of-tolerance claim hard-caps the score at 0.2.
// Without facts it falls back to lexical overlap with the passages.
// Entity grounding applies a multiplicative penalty in [0.3, 1.0].
// Returns nil when there is nothing to ground against.
func Grounding(answer, question string, passages []string, facts *Facts) *float64 {
	var score float64
	var scored bool

	if facts.HasFields() {
		if s, ok := factScore(answer, facts); ok {
			score, scored = s, true
		}
	}
	if !scored {
		if len(passages) == 0 && !facts.HasFields() {
			return nil
		}
		score = lexicalScore(answer, passages)
	}

	score *= entityPenalty(answer, passages, facts)
	return ptr(score)
}

// #endregion grounding

// #region fact-mode

// factScore validates each attributable numeric claim in the answer against
// the verified fact fields. Returns ok=false when no answer number could be
// attributed to any field.
func factScore(answer string, facts *Facts) (float64, bool) {
	numbers := ExtractNumbers(answer)
	if len(numbers) == 0 {
		return 0, false
	}

	valid, invalid := 0, 0
	for _, n := range numbers {
		field, relErr, ok := attribute(n, facts)
		if !ok {
			continue
		}
		if relErr <= Tolerance(field) {
			valid++
		} else {
			invalid++
		}
	}

	if valid+invalid == 0 {
		return 0, false
	}
	if invalid > 0 {
		return groundingHardCap, true
	}
	return 0.5 + 0.5*float64(valid)/float64(len(numbers)), true
}

// attribute finds the fact field this number most plausibly claims:
// the compatible field with the smallest relative error, provided that
// error stays under the attribution limit.
func attribute(n Number, facts *Facts) (field string, relErr float64, ok bool) {
	best := math.Inf(1)
	for name, v := range facts.Fields {
		if n.IsPercent != percentField(name) {
			continue
		}
		e := relativeError(n.Value, v)
		if e < best {
			best = e
			field = name
		}
	}
	if field == "" || best > claimAttributionLimit {
		return "", 0, false
	}
	return field, best, true
}

func percentField(name string) bool {
	return name == FieldPercentChange || name == FieldDividendYield
}

func relativeError(claim, truth float64) float64 {
	if truth == 0 {
		return math.Abs(claim)
	}
	return math.Abs(claim-truth) / math.Abs(truth)
}

// #endregion fact-mode

// #region lexical-mode

// lexicalScore measures content-word overlap between answer and passages,
// with a floor for any non-zero overlap and a bonus for verbatim figures.
func lexicalScore(answer string, passages []string) float64 {
	answerTokens := Tokenize(answer)
	if len(answerTokens) == 0 {
		return 0
	}
	joined := strings.Join(passages, " ")
	passageTokens := Tokenize(joined)

	shared := sharedTokens(passageTokens, answerTokens)
	score := float64(shared) / float64(len(answerTokens))
	if shared > 0 && score < overlapFloor {
		score = overlapFloor
	}

	// Verbatim figure echo: any passage number repeated exactly in the answer.
	for _, n := range ExtractNumbers(joined) {
		if strings.Contains(answer, n.Raw) {
			score += echoBonus
			break
		}
	}
	return clamp(score)
}

// #endregion lexical-mode

// #region entity-penalty

// entityPenalty scales grounding by the fraction of mentioned entities that
// appear in the passages or verified facts. Range [0.3, 1.0]; no entities
// mentioned means no penalty.
func entityPenalty(answer string, passages []string, facts *Facts) float64 {
	entities := ExtractEntities(answer)
	if len(entities) == 0 {
		return 1.0
	}

	haystack := strings.ToUpper(strings.Join(passages, " "))
	if facts != nil {
		haystack += " " + strings.ToUpper(strings.Join(facts.Entities, " "))
	}

	grounded := 0
	for _, e := range entities {
		if strings.Contains(haystack, e) {
			grounded++
		}
	}
	frac := float64(grounded) / float64(len(entities))
	return 0.3 + 0.7*frac
}

// #endregion entity-penalty
