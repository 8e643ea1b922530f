package batch

import (
	"sort"
	"strings"
	"time"

	"github.com/seenimoa/nsenews/pkg/models"
	"github.com/seenimoa/nsenews/pkg/utils"
)

const (
	// DefaultRelevanceThreshold is the minimum relevance kept by FilterRelevant.
	DefaultRelevanceThreshold = 0.3
	// DefaultDedupThreshold is the title similarity above which an article
	// is a duplicate.
	DefaultDedupThreshold = 0.7
)

// FilterRelevant keeps the analyses scoring at least minRelevance and
// sorts them by relevance, highest first. Equal scores keep input order.
// Rejected and failed analyses are always excluded.
func FilterRelevant(analyses []models.Analysis, minRelevance float64) []models.Analysis {
	out := make([]models.Analysis, 0, len(analyses))
	for _, a := range analyses {
		if a.Valid() && a.RelevanceScore() >= minRelevance {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore() > out[j].RelevanceScore()
	})
	return out
}

// Jaccard returns the Jaccard similarity of the lower-cased whitespace
// token sets of a and b, 0 when both are empty.
func Jaccard(a, b string) float64 {
	sa, sb := tokenSet(a), tokenSet(b)
	union := len(sa)
	inter := 0
	for tok := range sb {
		if sa[tok] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]bool {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

// Deduplicate drops every article whose title is more similar than
// threshold to a title already kept. Articles without a title are dropped.
func Deduplicate(articles []models.Article, threshold float64) []models.Article {
	out := make([]models.Article, 0, len(articles))
	var kept []string
	for _, art := range articles {
		title := strings.TrimSpace(art.Title)
		if title == "" {
			continue
		}
		dup := false
		for _, seen := range kept {
			if Jaccard(title, seen) > threshold {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, art)
			kept = append(kept, title)
		}
	}
	return out
}

// FilterRecent keeps articles published within the last days relative to
// now, and articles with no publish date.
func FilterRecent(articles []models.Article, days int, now time.Time) []models.Article {
	out := make([]models.Article, 0, len(articles))
	for _, art := range articles {
		if art.PublishedAt == nil || utils.WithinDays(*art.PublishedAt, now, days) {
			out = append(out, art)
		}
	}
	return out
}
