package scenario

// #region imports
import (
	"log"
	"regexp"
	"strings"
)

// #endregion

// #region rules

// rule pairs a scenario ID with its match predicates. A rule matches when
// any regex OR any keyword matches (disjunctive, not conjunctive).
type rule struct {
	id       string
	patterns []*regexp.Regexp
	keywords []string
}

// tickerVsTicker matches two ticker-like tokens joined by "vs"/"vs." on the
// original (case-preserved) question text.
var tickerVsTicker = regexp.MustCompile(`\b[A-Z]{1,5}\s+vs\.?\s+[A-Z]{1,5}\b`)

// rules is the ordered scenario table. Order is priority: multi-entity
// comparison is checked before any single-entity rule, live quotes before
// fundamentals, fundamentals before trend wording.
var rules = []rule{
	{
		id: ScenarioComparison,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bvs\.?\b`),
			regexp.MustCompile(`\bversus\b`),
			regexp.MustCompile(`\bcompared? (to|with)\b`),
			regexp.MustCompile(`\bcompare\b`),
		},
		keywords: []string{"comparison", "better investment", "which is better", "outperform"},
	},
	{
		id: ScenarioLivePrice,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(current|live|latest|today'?s?) (stock |share )?price\b`),
			regexp.MustCompile(`\btrading at\b`),
			regexp.MustCompile(`\bprice (right )?now\b`),
		},
		keywords: []string{"stock quote", "share price today", "price of the stock right now"},
	},
	{
		id: ScenarioRatio,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bp/?e\b`),
			regexp.MustCompile(`\bprice[- ]to[- ]earnings\b`),
			regexp.MustCompile(`\beps\b`),
		},
		keywords: []string{
			"pe ratio", "earnings per share", "market cap", "market capitalization",
			"book value", "price-to-book", "valuation ratio",
		},
	},
	{
		id: ScenarioDividend,
		keywords: []string{"dividend", "payout ratio", "yield", "ex-dividend"},
	},
	{
		id: ScenarioEarnings,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bq[1-4]\b.*\b(earnings|results|revenue)\b`),
		},
		keywords: []string{
			"earnings", "quarterly results", "revenue", "net income", "guidance",
			"earnings call", "beat estimates", "missed estimates",
		},
	},
	{
		id: ScenarioRegulatory,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b10-[kq]\b`),
			regexp.MustCompile(`\b8-k\b`),
			regexp.MustCompile(`\bs-1\b`),
		},
		keywords: []string{
			"sec filing", "regulation", "regulatory", "compliance", "prospectus",
			"annual report", "proxy statement", "disclosure",
		},
	},
	{
		id: ScenarioHistorical,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bin (19|20)\d{2}\b`),
			regexp.MustCompile(`\b\d+ years? ago\b`),
		},
		keywords: []string{"historical", "history", "all-time high", "all-time low", "over the past"},
	},
	{
		id: ScenarioTrend,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bgo(ing)? (up|down)\b`),
		},
		keywords: []string{
			"trend", "outlook", "rising", "falling", "bullish", "bearish",
			"rally", "decline", "momentum", "forecast", "will it rise",
		},
	},
	{
		id: ScenarioMacro,
		keywords: []string{
			"inflation", "interest rate", "federal reserve", "the fed", "gdp",
			"unemployment", "recession", "economy", "treasury yield",
		},
	},
	{
		id: ScenarioNews,
		keywords: []string{
			"news", "announced", "announcement", "recently", "latest", "what happened",
		},
	},
}

// #endregion rules

// #region classify

// Classify maps a question to a scenario profile. A manual override naming a
// known scenario wins outright; an unknown override falls back to rule
// matching. If no rule matches, the default profile is returned. Pure
// function of its inputs aside from the malformed-weights warning log.
func Classify(question, override string) Profile {
	if override != "" {
		if p, ok := Profiles[override]; ok {
			return checked(p)
		}
		log.Printf("[SCEN] unknown scenario override %q, falling back to auto-detect", override)
	}

	lower := strings.ToLower(strings.TrimSpace(question))

	if tickerVsTicker.MatchString(question) {
		return checked(Profiles[ScenarioComparison])
	}

	for _, r := range rules {
		if matches(r, lower) {
			return checked(Profiles[r.id])
		}
	}
	return checked(Profiles[ScenarioDefault])
}

func matches(r rule, lower string) bool {
	for _, p := range r.patterns {
		if p.MatchString(lower) {
			return true
		}
	}
	for _, kw := range r.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// checked auto-normalizes a malformed weight vector with a logged warning
// instead of surfacing an error to the caller.
func checked(p Profile) Profile {
	if err := ValidateWeights(p.Weights); err != nil {
		log.Printf("[SCEN] profile %s: %v, renormalizing", p.ID, err)
		w := p.CloneWeights()
		NormalizeWeights(w)
		p.Weights = w
	}
	return p
}

// #endregion classify
