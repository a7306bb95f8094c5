package signal

// #region config

// EntropyConfig holds the normalization threshold for the externally
// supplied uncertainty value.
type EntropyConfig struct {
	Threshold float64 // uncertainty is normalized against twice this value
}

// DefaultEntropyConfig returns the standard MC-dropout entropy threshold.
func DefaultEntropyConfig() EntropyConfig {
	return EntropyConfig{Threshold: 1.0}
}

// lowEntropyBoost mildly favors low and moderate uncertainty.
const lowEntropyBoost = 1.05

// #endregion config

// #region entropy-confidence

// EntropyConfidence maps an external uncertainty value to a confidence in
// [0, 1]: normalize against twice the threshold, invert, apply a small
// multiplicative boost, clamp. A missing uncertainty yields a missing
// signal, never zero.
func EntropyConfidence(uncertainty *float64, config EntropyConfig) *float64 {
	if uncertainty == nil {
		return nil
	}
	u := *uncertainty
	if u < 0 {
		u = 0
	}
	norm := u / (2 * config.Threshold)
	if norm > 1 {
		norm = 1
	}
	return ptr((1 - norm) * lowEntropyBoost)
}

// #endregion entropy-confidence
