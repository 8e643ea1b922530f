// Package lexicon holds the investment keyword table that drives keyword
// extraction and impact scoring.
//
// A Lexicon is built once through a Builder and is read-only afterwards;
// it is safe for concurrent use by any number of analyzers.
package lexicon

import (
	"sort"
	"strings"

	"github.com/seenimoa/nsenews/pkg/models"
)

// Categories lists the keyword categories in their canonical order.
var Categories = []string{models.CategoryPositive, models.CategoryNegative, models.CategoryNeutral}

// basePositive, baseNegative and baseNeutral are the investment keywords
// used to filter news for relevance.
var basePositive = []string{
	"new project", "expansion", "investment", "acquisition", "merger",
	"contract", "order", "partnership", "launch", "growth", "profit",
	"revenue increase", "earnings beat", "dividend", "buyback",
	"capacity expansion", "new facility", "joint venture", "collaboration",
	"funding", "ipo", "listing", "upgraded", "outperform", "buy rating",
	"tie-up", "agreement", "approval", "license", "patent", "innovation",
	"technology", "digital transformation", "renewable energy", "green",
	"sustainable", "export", "international expansion",
}

var baseNegative = []string{
	"loss", "decline", "fall", "drop", "downgrade", "sell rating",
	"bankruptcy", "debt", "lawsuit", "fine", "penalty", "investigation",
	"scandal", "fraud", "closure", "layoff", "restructuring", "warning",
	"miss", "disappointing", "weak", "poor performance", "regulatory action",
	"suspension", "delisting", "default", "impairment", "write-off",
}

var baseNeutral = []string{
	"announcement", "statement", "results", "quarterly", "annual",
	"meeting", "conference", "presentation", "update", "report",
	"guidance", "outlook", "forecast", "management change", "appointment",
}

// Market-reaction vocabulary layered on top of the base keywords.
var extraPositive = []string{
	"breakthrough", "milestone", "success", "achievement", "win",
	"record", "strong performance", "beat expectations", "exceed",
	"surge", "rally", "boost", "positive outlook", "optimistic",
	"upgrade", "recommend", "target price", "bull", "momentum",
}

var extraNegative = []string{
	"bear", "pessimistic", "concern", "worry", "risk", "threat",
	"challenge", "struggle", "disappointing", "miss estimates",
	"cut", "reduce", "lower", "below expectations", "uncertainty",
}

// Lexicon maps a category to its set of lower-cased phrases.
type Lexicon struct {
	phrases map[string][]string // sorted, deduplicated
}

// Phrases returns a copy of the phrases in category, sorted.
func (l *Lexicon) Phrases(category string) []string {
	p := l.phrases[category]
	out := make([]string, len(p))
	copy(out, p)
	return out
}

// Size returns the number of phrases in category.
func (l *Lexicon) Size(category string) int {
	return len(l.phrases[category])
}

// Contains reports whether phrase (case-insensitive) belongs to category.
func (l *Lexicon) Contains(category, phrase string) bool {
	p := l.phrases[category]
	key := normalize(phrase)
	i := sort.SearchStrings(p, key)
	return i < len(p) && p[i] == key
}

// Each calls fn for every category in canonical order with its phrases.
// The slice passed to fn must not be modified.
func (l *Lexicon) Each(fn func(category string, phrases []string)) {
	for _, c := range Categories {
		fn(c, l.phrases[c])
	}
}

// Builder accumulates phrases before freezing them into a Lexicon.
type Builder struct {
	sets map[string]map[string]struct{}
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	b := &Builder{sets: make(map[string]map[string]struct{}, len(Categories))}
	for _, c := range Categories {
		b.sets[c] = make(map[string]struct{})
	}
	return b
}

// Add puts phrases into category. Unknown categories are created; blank
// phrases are ignored.
func (b *Builder) Add(category string, phrases ...string) *Builder {
	category = normalize(category)
	set, ok := b.sets[category]
	if !ok {
		set = make(map[string]struct{})
		b.sets[category] = set
	}
	for _, p := range phrases {
		if p = normalize(p); p != "" {
			set[p] = struct{}{}
		}
	}
	return b
}

// Build freezes the accumulated phrases. The builder may keep being used;
// later additions do not affect lexicons already built.
func (b *Builder) Build() *Lexicon {
	l := &Lexicon{phrases: make(map[string][]string, len(b.sets))}
	for c, set := range b.sets {
		list := make([]string, 0, len(set))
		for p := range set {
			list = append(list, p)
		}
		sort.Strings(list)
		l.phrases[c] = list
	}
	return l
}

// DefaultBuilder returns a builder seeded with the base investment keywords
// and the market-reaction extensions.
func DefaultBuilder() *Builder {
	return NewBuilder().
		Add(models.CategoryPositive, basePositive...).
		Add(models.CategoryPositive, extraPositive...).
		Add(models.CategoryNegative, baseNegative...).
		Add(models.CategoryNegative, extraNegative...).
		Add(models.CategoryNeutral, baseNeutral...)
}

// Default returns the standard lexicon.
func Default() *Lexicon {
	return DefaultBuilder().Build()
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
