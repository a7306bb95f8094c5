package signal

// #region imports
import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// #endregion

// #region stopwords

// stopwords contains common English words excluded from overlap matching.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "do": true, "does": true, "did": true,
	"have": true, "has": true, "had": true, "be": true, "been": true,
	"being": true, "will": true, "would": true, "could": true, "should": true,
	"may": true, "might": true, "can": true, "shall": true, "not": true,
	"no": true, "and": true, "or": true, "but": true, "if": true,
	"then": true, "than": true, "so": true, "as": true, "at": true,
	"by": true, "for": true, "from": true, "in": true, "into": true,
	"of": true, "on": true, "to": true, "with": true, "about": true,
	"it": true, "its": true, "this": true, "that": true, "what": true,
	"which": true, "who": true, "how": true, "when": true, "where": true,
	"why": true, "you": true, "your": true, "we": true, "they": true,
}

// Tokenize splits text into unique lowercase non-stopword tokens.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool)
	var tokens []string
	for _, w := range words {
		if len(w) < 2 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		tokens = append(tokens, w)
	}
	return tokens
}

// sharedTokens returns the count of tokens present in both slices.
func sharedTokens(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	count := 0
	for _, t := range b {
		if set[t] {
			count++
		}
	}
	return count
}

// #endregion stopwords

// #region numbers

// Number is one numeric value extracted from answer text.
type Number struct {
	Value     float64
	IsPercent bool
	Raw       string
}

var numberPattern = regexp.MustCompile(`-?\$?\d{1,3}(?:,\d{3})*(?:\.\d+)?%?|-?\$?\d+(?:\.\d+)?%?`)

// magnitude suffixes immediately following a number ("$2.5 trillion").
var magnitudes = map[string]float64{
	"thousand": 1e3, "k": 1e3,
	"million": 1e6, "m": 1e6,
	"billion": 1e9, "b": 1e9,
	"trillion": 1e12, "t": 1e12,
}

// ExtractNumbers pulls numeric values from text, handling $ prefixes,
// thousands separators, % suffixes, and written magnitude suffixes.
func ExtractNumbers(text string) []Number {
	matches := numberPattern.FindAllStringIndex(text, -1)
	var out []Number
	for _, m := range matches {
		raw := text[m[0]:m[1]]
		cleaned := strings.NewReplacer("$", "", ",", "").Replace(raw)
		isPercent := strings.HasSuffix(cleaned, "%")
		cleaned = strings.TrimSuffix(cleaned, "%")
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			continue
		}
		if !isPercent {
			if mag, ok := magnitudes[nextWord(text, m[1])]; ok {
				v *= mag
			}
		}
		out = append(out, Number{Value: v, IsPercent: isPercent, Raw: raw})
	}
	return out
}

// nextWord returns the lowercase word starting at or after offset.
func nextWord(text string, offset int) string {
	rest := strings.TrimLeft(text[offset:], " \t")
	end := strings.IndexFunc(rest, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if end == -1 {
		end = len(rest)
	}
	return strings.ToLower(rest[:end])
}

// #endregion numbers

// #region direction-words

var upWords = []string{
	"up", "rose", "rise", "rising", "gained", "gain", "higher", "increase",
	"increased", "climbed", "surged", "rallied", "jumped", "advanced",
}

var downWords = []string{
	"down", "fell", "fall", "falling", "lost", "loss", "lower", "decrease",
	"decreased", "dropped", "declined", "plunged", "slid", "retreated",
}

var flatWords = []string{
	"flat", "unchanged", "steady", "stable", "sideways",
}

// DirectionMention reports which direction vocabularies appear in text.
func DirectionMention(text string) (up, down, flat bool) {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	for _, w := range upWords {
		if set[w] {
			up = true
			break
		}
	}
	for _, w := range downWords {
		if set[w] {
			down = true
			break
		}
	}
	for _, w := range flatWords {
		if set[w] {
			flat = true
			break
		}
	}
	return up, down, flat
}

// #endregion direction-words

// #region temporal-markers

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

var quarterPattern = regexp.MustCompile(`\bq[1-4](?:\s+(19|20)\d{2})?\b`)

// relativeTerms is the fixed vocabulary of relative temporal markers.
var relativeTerms = []string{
	"today", "yesterday", "this week", "last week", "this month", "last month",
	"this year", "last year", "this quarter", "last quarter", "year to date",
	"ytd", "recently", "currently", "right now", "at the moment",
}

var quarterWords = []string{
	"first quarter", "second quarter", "third quarter", "fourth quarter",
}

// ExtractTemporalMarkers returns the set of temporal markers found in text:
// explicit years, quarter labels, and relative terms.
func ExtractTemporalMarkers(text string) map[string]bool {
	lower := strings.ToLower(text)
	markers := make(map[string]bool)
	for _, y := range yearPattern.FindAllString(lower, -1) {
		markers[y] = true
	}
	for _, q := range quarterPattern.FindAllString(lower, -1) {
		markers[strings.Join(strings.Fields(q), " ")] = true
	}
	for i, qw := range quarterWords {
		if strings.Contains(lower, qw) {
			markers["q"+strconv.Itoa(i+1)] = true
		}
	}
	for _, term := range relativeTerms {
		if strings.Contains(lower, term) {
			markers[term] = true
		}
	}
	return markers
}

// #endregion temporal-markers

// #region entities

var tickerPattern = regexp.MustCompile(`\b[A-Z]{2,5}\b`)

// tickerBlocklist excludes all-caps finance vocabulary that is not a ticker.
var tickerBlocklist = map[string]bool{
	"EPS": true, "USD": true, "GAAP": true, "CEO": true, "CFO": true,
	"ETF": true, "IPO": true, "SEC": true, "GDP": true, "YTD": true,
	"AI": true, "US": true, "PE": true, "API": true, "FY": true,
}

// ExtractEntities returns ticker-like tokens from the original-case text.
func ExtractEntities(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range tickerPattern.FindAllString(text, -1) {
		if tickerBlocklist[m] || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// #endregion entities
