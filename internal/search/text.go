package search

import (
	"regexp"
	"strings"
)

// Match tiers. All tiers can stack for the same term and field.
const (
	tierExact    = 1.0
	tierBoundary = 0.8
	tierPartial  = 0.4
	tierFuzzy    = 0.2
)

// Fuzzy matching is only attempted for terms this long or longer, against
// tokens within fuzzyLengthWindow characters of the term's length. This
// bounds both cost and false positives on short words.
const (
	fuzzyMinTermLength = 4
	fuzzyLengthWindow  = 2
)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"was": {}, "were": {}, "with": {}, "from": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "have": {}, "has": {}, "had": {}, "will": {},
	"would": {}, "could": {}, "should": {}, "been": {}, "being": {},
	"does": {}, "did": {}, "into": {}, "about": {}, "your": {}, "our": {},
}

var nonWordPattern = regexp.MustCompile(`[^\w\s]+`)

// Tokenize lowercases text, strips punctuation, and splits on whitespace,
// discarding tokens of length <= 2 and common English stop-words.
func Tokenize(text string) []string {
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(text), " ")
	var tokens []string
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// textScorer scores fields against one query. Boundary patterns are
// compiled once per query rather than once per field.
type textScorer struct {
	query    string
	terms    []string
	boundary []*regexp.Regexp
}

func newTextScorer(query string) *textScorer {
	q := strings.ToLower(strings.TrimSpace(query))
	s := &textScorer{query: q, terms: Tokenize(q)}
	for _, term := range s.terms {
		s.boundary = append(s.boundary, regexp.MustCompile(`\b`+regexp.QuoteMeta(term)+`\b`))
	}
	return s
}

func (s *textScorer) empty() bool { return s.query == "" }

// scoreField returns the weighted relevance of one field's text.
//
// Scoring tiers, cumulative per term:
//   - full weight when the whole query appears as a substring of the field
//   - 0.8x weight when a term matches at a word boundary
//   - 0.4x weight per field token containing the term as a substring
//   - 0.2x weight when a term only matches fuzzily (edit distance within
//     a third of the term's length)
func (s *textScorer) scoreField(text string, weight float64) float64 {
	if s.query == "" || text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	var score float64
	exact := strings.Contains(lower, s.query)
	if exact {
		score += tierExact * weight
	}

	tokens := Tokenize(lower)
	for i, term := range s.terms {
		matched := exact
		if s.boundary[i].MatchString(lower) {
			score += tierBoundary * weight
			matched = true
		}
		for _, tok := range tokens {
			if strings.Contains(tok, term) {
				score += tierPartial * weight
				matched = true
			}
		}
		if !matched && fuzzyMatchesAny(term, tokens) {
			score += tierFuzzy * weight
		}
	}
	return score
}

func fuzzyMatchesAny(term string, tokens []string) bool {
	if len(term) < fuzzyMinTermLength {
		return false
	}
	maxDistance := len(term) / 3
	for _, tok := range tokens {
		diff := len(tok) - len(term)
		if diff < -fuzzyLengthWindow || diff > fuzzyLengthWindow {
			continue
		}
		if levenshtein(term, tok) <= maxDistance {
			return true
		}
	}
	return false
}

// levenshtein computes edit distance with a two-row table.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// prefixWords returns the words of text whose lowercase form starts with
// prefix, for autocomplete suggestions.
func prefixWords(text, prefix string) []string {
	if prefix == "" {
		return nil
	}
	cleaned := nonWordPattern.ReplaceAllString(text, " ")
	var words []string
	for _, word := range strings.Fields(cleaned) {
		if strings.HasPrefix(strings.ToLower(word), prefix) {
			words = append(words, word)
		}
	}
	return words
}
