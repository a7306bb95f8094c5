package scenario

// #region scenario-ids

const (
	ScenarioComparison = "comparison"
	ScenarioLivePrice  = "live_price"
	ScenarioRatio      = "numeric_ratio"
	ScenarioDividend   = "dividend"
	ScenarioEarnings   = "earnings"
	ScenarioRegulatory = "regulatory"
	ScenarioHistorical = "historical"
	ScenarioTrend      = "trend"
	ScenarioMacro      = "macro"
	ScenarioNews       = "news"
	ScenarioDefault    = "default"
)

// #endregion scenario-ids

// #region profiles

// Profiles is the fixed table of scenario weight vectors. Every vector sums
// to 1.0; live-price over-weights numeric and temporal, regulatory
// over-weights citation, comparison keeps grounding dominant (contradiction
// desensitization for comparisons happens in the adaptive scorer, not here).
var Profiles = map[string]Profile{
	ScenarioComparison: {
		ID:          ScenarioComparison,
		DisplayName: "Multi-Entity Comparison",
		Weights: map[SignalName]float64{
			SignalGrounding: 0.30, SignalNumeric: 0.25, SignalTemporal: 0.10,
			SignalCitation: 0.15, SignalEntropy: 0.20,
		},
		Threshold: 0.55,
	},
	ScenarioLivePrice: {
		ID:          ScenarioLivePrice,
		DisplayName: "Live Price / Quote",
		Weights: map[SignalName]float64{
			SignalGrounding: 0.25, SignalNumeric: 0.35, SignalTemporal: 0.20,
			SignalCitation: 0.10, SignalEntropy: 0.10,
		},
		Threshold: 0.60,
	},
	ScenarioRatio: {
		ID:          ScenarioRatio,
		DisplayName: "Valuation Ratio / Fundamental Metric",
		Weights: map[SignalName]float64{
			SignalGrounding: 0.25, SignalNumeric: 0.35, SignalTemporal: 0.10,
			SignalCitation: 0.15, SignalEntropy: 0.15,
		},
		Threshold: 0.60,
	},
	ScenarioDividend: {
		ID:          ScenarioDividend,
		DisplayName: "Dividend / Payout",
		Weights: map[SignalName]float64{
			SignalGrounding: 0.25, SignalNumeric: 0.30, SignalTemporal: 0.15,
			SignalCitation: 0.20, SignalEntropy: 0.10,
		},
		Threshold: 0.55,
	},
	ScenarioEarnings: {
		ID:          ScenarioEarnings,
		DisplayName: "Earnings / Results",
		Weights: map[SignalName]float64{
			SignalGrounding: 0.30, SignalNumeric: 0.25, SignalTemporal: 0.15,
			SignalCitation: 0.20, SignalEntropy: 0.10,
		},
		Threshold: 0.55,
	},
	ScenarioRegulatory: {
		ID:          ScenarioRegulatory,
		DisplayName: "Regulatory / Filings",
		Weights: map[SignalName]float64{
			SignalGrounding: 0.25, SignalNumeric: 0.10, SignalTemporal: 0.10,
			SignalCitation: 0.40, SignalEntropy: 0.15,
		},
		Threshold: 0.60,
	},
	ScenarioHistorical: {
		ID:          ScenarioHistorical,
		DisplayName: "Historical Performance",
		Weights: map[SignalName]float64{
			SignalGrounding: 0.30, SignalNumeric: 0.20, SignalTemporal: 0.25,
			SignalCitation: 0.15, SignalEntropy: 0.10,
		},
		Threshold: 0.50,
	},
	ScenarioTrend: {
		ID:          ScenarioTrend,
		DisplayName: "Direction / Trend",
		Weights: map[SignalName]float64{
			SignalGrounding: 0.25, SignalNumeric: 0.30, SignalTemporal: 0.15,
			SignalCitation: 0.10, SignalEntropy: 0.20,
		},
		Threshold: 0.50,
	},
	ScenarioMacro: {
		ID:          ScenarioMacro,
		DisplayName: "Macro / Economy",
		Weights: map[SignalName]float64{
			SignalGrounding: 0.30, SignalNumeric: 0.15, SignalTemporal: 0.15,
			SignalCitation: 0.20, SignalEntropy: 0.20,
		},
		Threshold: 0.50,
	},
	ScenarioNews: {
		ID:          ScenarioNews,
		DisplayName: "Recent News / Events",
		Weights: map[SignalName]float64{
			SignalGrounding: 0.30, SignalNumeric: 0.10, SignalTemporal: 0.25,
			SignalCitation: 0.25, SignalEntropy: 0.10,
		},
		Threshold: 0.50,
	},
	ScenarioDefault: {
		ID:          ScenarioDefault,
		DisplayName: "General Finance",
		Weights: map[SignalName]float64{
			SignalGrounding: 0.30, SignalNumeric: 0.20, SignalTemporal: 0.15,
			SignalCitation: 0.15, SignalEntropy: 0.20,
		},
		Threshold: 0.50,
	},
}

// #endregion profiles
