package signal

// #region constants

const (
	temporalNeutral    = 0.7  // no markers anywhere: benefit of the doubt
	temporalOverlap    = 0.95 // shared markers between question and answer
	temporalAnswerOnly = 0.8  // answer volunteers time the question never asked
	temporalOmitted    = 0.45 // question asks about time, answer omits it
	temporalMismatch   = 0.5  // both sides carry markers, none overlap
)

// #endregion constants

// #region temporal

// TemporalValidity compares the temporal markers of answer and question.
// Always produces a score; absence of markers is neutral-positive rather
// than missing data.
func TemporalValidity(answer, question string) *float64 {
	qm := ExtractTemporalMarkers(question)
	am := ExtractTemporalMarkers(answer)

	switch {
	case len(qm) == 0 && len(am) == 0:
		return ptr(temporalNeutral)
	case len(qm) > 0 && len(am) == 0:
		return ptr(temporalOmitted)
	case len(qm) == 0:
		return ptr(temporalAnswerOnly)
	}

	for m := range qm {
		if am[m] {
			return ptr(temporalOverlap)
		}
	}
	return ptr(temporalMismatch)
}

// #endregion temporal
