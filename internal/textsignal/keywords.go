package textsignal

import (
	"strings"

	"github.com/seenimoa/nsenews/internal/lexicon"
	"github.com/seenimoa/nsenews/pkg/models"
)

// Keywords finds every lexicon phrase contained (case-insensitively) in
// text. Each category lists a phrase at most once.
func Keywords(text string, lex *lexicon.Lexicon) models.KeywordSignals {
	lower := strings.ToLower(text)
	found := make(map[string][]string, len(lexicon.Categories))
	total := 0

	lex.Each(func(category string, phrases []string) {
		hits := []string{}
		for _, p := range phrases {
			if strings.Contains(lower, p) {
				hits = append(hits, p)
			}
		}
		found[category] = hits
		total += len(hits)
	})

	return models.KeywordSignals{
		Found:   found,
		Density: density(total, text),
		Total:   total,
	}
}

// density returns hits per whitespace token, 0 for empty text.
func density(hits int, text string) float64 {
	words := WordCount(text)
	if words == 0 {
		return 0
	}
	return float64(hits) / float64(words)
}
