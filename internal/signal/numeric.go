package signal

// #region constants

const (
	numericBaseline   = 0.6
	numericFactMatch  = 0.9
	signMismatchScore = 0.3
	conflictingScore  = 0.4
	singleDirection   = 0.7
)

// #endregion constants

// #region numeric

// NumericConsistency scores the answer's numbers against verified facts,
// falling back to directional wording when the answer contains no numbers.
// Returns nil when the answer carries neither numbers nor direction words.
func NumericConsistency(answer string, facts *Facts) *float64 {
	numbers := ExtractNumbers(answer)
	if len(numbers) > 0 {
		return ptr(numberScore(answer, numbers, facts))
	}
	return directionScore(answer, facts)
}

// #endregion numeric

// #region number-path

// numberScore starts at a moderate-high baseline, rewards matches against
// verified fields, and penalizes a percent claim whose direction
// contradicts the verified percent change. An unsigned percent takes its
// sign from the answer's direction wording first: "fell 3%" claims -3,
// not +3.
func numberScore(answer string, numbers []Number, facts *Facts) float64 {
	score := numericBaseline
	if !facts.HasFields() {
		return score
	}

	up, down, _ := DirectionMention(answer)

	matched := false
	mismatch := false
	refPct, hasPct := facts.Field(FieldPercentChange)

	for _, n := range numbers {
		claim := n.Value
		if n.IsPercent && claim > 0 && down && !up {
			claim = -claim
		}
		for name, v := range facts.Fields {
			if n.IsPercent != percentField(name) {
				continue
			}
			if relativeError(claim, v) <= Tolerance(name) {
				matched = true
			}
		}
		if hasPct && n.IsPercent && claim != 0 && refPct != 0 {
			if (claim > 0) != (refPct > 0) {
				mismatch = true
			}
		}
	}

	if mismatch {
		return signMismatchScore
	}
	if matched {
		return numericFactMatch
	}
	return score
}

// #endregion number-path

// #region direction-path

// directionScore reconciles up/down/flat wording against the sign of the
// verified percent change when one is available. Conflicting direction
// words score low; a single consistent direction scores moderately high.
func directionScore(answer string, facts *Facts) *float64 {
	up, down, flat := DirectionMention(answer)
	if !up && !down && !flat {
		return nil
	}
	if up && down {
		return ptr(conflictingScore)
	}

	refPct, hasPct := facts.Field(FieldPercentChange)
	if !hasPct {
		return ptr(singleDirection)
	}

	consistent := (up && refPct > 0) ||
		(down && refPct < 0) ||
		(flat && refPct > -1.0 && refPct < 1.0)
	if !consistent {
		return ptr(signMismatchScore)
	}
	return ptr(singleDirection)
}

// #endregion direction-path
