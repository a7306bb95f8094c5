package signal

import "github.com/kdowling/fin-reliability/go-engine/internal/scenario"

// #region bundle

// Bundle holds the five optional sub-scores. A nil entry means the signal
// could not be computed from the available inputs; present values are
// clamped to [0, 1].
type Bundle struct {
	Grounding *float64
	Numeric   *float64
	Temporal  *float64
	Citation  *float64
	Entropy   *float64
}

// Get returns the sub-score for a signal name, nil when absent.
func (b Bundle) Get(name scenario.SignalName) *float64 {
	switch name {
	case scenario.SignalGrounding:
		return b.Grounding
	case scenario.SignalNumeric:
		return b.Numeric
	case scenario.SignalTemporal:
		return b.Temporal
	case scenario.SignalCitation:
		return b.Citation
	case scenario.SignalEntropy:
		return b.Entropy
	}
	return nil
}

// Available returns the names of present signals in composition order.
func (b Bundle) Available() []scenario.SignalName {
	var out []scenario.SignalName
	for _, name := range scenario.AllSignals {
		if b.Get(name) != nil {
			out = append(out, name)
		}
	}
	return out
}

// #endregion bundle

// #region facts

// Fact field names used in the tolerance table and by extractors.
const (
	FieldPrice         = "price"
	FieldPercentChange = "percent_change"
	FieldEPS           = "eps"
	FieldPERatio       = "pe_ratio"
	FieldMarketCap     = "market_cap"
	FieldDividendYield = "dividend_yield"
)

// Facts carries independently verified reference data supplied by an
// external fetcher. Fields maps fact field names to numeric values;
// Sources lists the data providers actually consulted; Entities lists
// tickers/company names the facts describe.
type Facts struct {
	Fields   map[string]float64
	Sources  []string
	Entities []string
}

// Field returns a named fact value and whether it is present.
func (f *Facts) Field(name string) (float64, bool) {
	if f == nil || f.Fields == nil {
		return 0, false
	}
	v, ok := f.Fields[name]
	return v, ok
}

// HasFields reports whether any verified numeric fact is present.
func (f *Facts) HasFields() bool {
	return f != nil && len(f.Fields) > 0
}

// #endregion facts

// #region tolerances

// tolerances is the field-specific relative-error table for validating
// numeric claims against verified facts.
var tolerances = map[string]float64{
	FieldPrice:         0.05,
	FieldPercentChange: 0.10,
	FieldEPS:           0.10,
	FieldPERatio:       0.15,
	FieldMarketCap:     0.10,
	FieldDividendYield: 0.10,
}

const defaultTolerance = 0.10

// Tolerance returns the relative-error tolerance for a fact field.
func Tolerance(field string) float64 {
	if t, ok := tolerances[field]; ok {
		return t
	}
	return defaultTolerance
}

// #endregion tolerances

// #region helpers

// clamp restricts v to [0, 1].
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ptr returns a pointer to a clamped score.
func ptr(v float64) *float64 {
	c := clamp(v)
	return &c
}

// #endregion helpers
