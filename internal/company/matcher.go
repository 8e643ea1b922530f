package company

import (
	"sort"
	"strings"
	"unicode"

	"github.com/seenimoa/nsenews/pkg/models"
)

const (
	// MinConfidence is the lowest confidence a match needs to be reported.
	MinConfidence = 0.3
	// MaxMatches is how many matches an article keeps.
	MaxMatches = 5

	baseConfidence    = 0.4
	fullNameBonus     = 0.3
	contextWordBonus  = 0.1
	stopWordPenalty   = 0.5
	contextWindowSize = 10
	minVariantLength  = 2
)

var contextWords = []string{
	"company", "limited", "ltd", "corporation", "inc", "announces", "reports",
}

var stopWords = map[string]bool{
	"the": true, "and": true, "or": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "of": true, "with": true,
}

// Confidence scores a found variant: a base for the hit, a bonus when the
// unmodified full name also appears, a bonus per context word near any
// occurrence of the variant, and a penalty for common-word variants.
// The result is capped at 1 but may be negative.
func Confidence(text, variant, fullName string) float64 {
	lower := strings.ToLower(text)
	v := strings.ToLower(strings.TrimSpace(variant))

	score := 0.0
	if v != "" && strings.Contains(lower, v) {
		score += baseConfidence
	}
	if fn := strings.ToLower(strings.TrimSpace(fullName)); fn != "" && strings.Contains(lower, fn) {
		score += fullNameBonus
	}

	near := nearbyWords(strings.Fields(lower), v)
	for _, w := range contextWords {
		if near[w] {
			score += contextWordBonus
		}
	}

	if stopWords[v] {
		score -= stopWordPenalty
	}
	return min(score, 1.0)
}

// nearbyWords collects the punctuation-trimmed tokens lying within the
// context window of any occurrence of variant.
func nearbyWords(tokens []string, variant string) map[string]bool {
	near := make(map[string]bool)
	k := len(strings.Fields(variant))
	if k == 0 {
		return near
	}

	for i := range tokens {
		end := min(i+k, len(tokens))
		if !strings.Contains(strings.Join(tokens[i:end], " "), variant) {
			continue
		}
		lo := max(0, i-contextWindowSize)
		hi := min(len(tokens), end+contextWindowSize)
		for _, tok := range tokens[lo:hi] {
			near[trimPunct(tok)] = true
		}
	}
	return near
}

func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

type candidate struct {
	record   models.CompanyRecord
	variants []string // checking order, symbol last
}

// Matcher finds registry companies mentioned in text. It precomputes name
// variants once and is safe for concurrent use.
type Matcher struct {
	candidates []candidate
}

// NewMatcher prepares a matcher over every company in reg.
func NewMatcher(reg *Registry) *Matcher {
	return NewMatcherFromRecords(reg.Records())
}

// NewMatcherFromRecords prepares a matcher over records as given.
func NewMatcherFromRecords(records []models.CompanyRecord) *Matcher {
	m := &Matcher{candidates: make([]candidate, 0, len(records))}
	for _, rec := range records {
		vs := Variants(rec.Name)
		if rec.Symbol != "" {
			vs = append(vs, rec.Symbol)
		}
		m.candidates = append(m.candidates, candidate{record: rec, variants: vs})
	}
	return m
}

// Size returns the number of companies the matcher checks.
func (m *Matcher) Size() int {
	if m == nil {
		return 0
	}
	return len(m.candidates)
}

// Match returns the companies mentioned in text. Each company is scored on
// its first variant found in the text; matches under MinConfidence are
// dropped, one match per symbol is kept, and the best MaxMatches are
// returned in descending confidence. Count is taken before truncation.
func (m *Matcher) Match(text string) models.CompanySignals {
	sig := models.CompanySignals{Matched: []models.CompanyMatch{}}
	if m == nil || text == "" {
		return sig
	}

	lower := strings.ToLower(text)
	best := make(map[string]int)
	var matches []models.CompanyMatch

	for _, c := range m.candidates {
		for _, v := range c.variants {
			if len(v) <= minVariantLength || !strings.Contains(lower, strings.ToLower(v)) {
				continue
			}
			conf := Confidence(text, v, c.record.Name)
			if conf >= MinConfidence {
				match := models.CompanyMatch{
					Symbol:         c.record.Symbol,
					CompanyName:    c.record.Name,
					MatchedVariant: v,
					Confidence:     conf,
				}
				if i, seen := best[match.Symbol]; !seen {
					best[match.Symbol] = len(matches)
					matches = append(matches, match)
				} else if conf > matches[i].Confidence {
					matches[i] = match
				}
			}
			break
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})

	sig.Count = len(matches)
	if len(matches) > MaxMatches {
		matches = matches[:MaxMatches]
	}
	sig.Matched = append(sig.Matched, matches...)
	return sig
}

// Match is a convenience wrapper building a one-off Matcher over records.
func Match(text string, records []models.CompanyRecord) models.CompanySignals {
	return NewMatcherFromRecords(records).Match(text)
}
