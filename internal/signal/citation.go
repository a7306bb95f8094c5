package signal

// #region imports
import "strings"

// #endregion

// #region vocabularies

// credibleSources are explicit mentions of filings, financial press, and
// data providers.
var credibleSources = []string{
	"sec filing", "10-k", "10-q", "8-k", "annual report", "quarterly report",
	"earnings report", "press release", "prospectus",
	"bloomberg", "reuters", "wall street journal", "wsj", "financial times",
	"cnbc", "morningstar", "yahoo finance", "s&p", "moody's", "fitch",
	"nasdaq", "nyse", "yfinance", "alpha vantage",
}

// hedgingPhrases attribute a claim to some source without naming it fully.
var hedgingPhrases = []string{
	"according to", "as reported", "reportedly", "sources say",
	"based on data", "as of", "per the", "cited by",
}

// implicitCitations softly gesture at a data source.
var implicitCitations = []string{
	"recent earnings", "official data", "latest filing", "company reports",
	"market data", "historical data", "public records", "analyst estimates",
}

// #endregion vocabularies

// #region bonus-caps

const (
	credibleBonus, credibleCap = 0.25, 0.50
	hedgingBonus, hedgingCap   = 0.10, 0.20
	implicitBonus, implicitCap = 0.05, 0.15
	passageBonus, passageCap   = 0.05, 0.15
	sourceBonus, sourceCap     = 0.07, 0.20
)

// #endregion bonus-caps

// #region citation

// CitationCompleteness sums capped bonuses for credible-source mentions,
// hedged attribution, implicit citation vocabulary, retrieved passage
// count, and independently verified data sources, clamped to [0, 1].
// Always produces a score; an uncited answer legitimately scores 0.
func CitationCompleteness(answer string, passages []string, facts *Facts) *float64 {
	lower := strings.ToLower(answer)

	score := cappedCount(lower, credibleSources, credibleBonus, credibleCap)
	score += cappedCount(lower, hedgingPhrases, hedgingBonus, hedgingCap)
	score += cappedCount(lower, implicitCitations, implicitBonus, implicitCap)

	score += capped(float64(len(passages))*passageBonus, passageCap)
	if facts != nil {
		score += capped(float64(len(facts.Sources))*sourceBonus, sourceCap)
	}
	return ptr(score)
}

func cappedCount(lower string, vocab []string, perHit, limit float64) float64 {
	var total float64
	for _, phrase := range vocab {
		if strings.Contains(lower, phrase) {
			total += perHit
		}
	}
	return capped(total, limit)
}

func capped(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	return v
}

// #endregion citation
