package analyzer

import (
	"math"
	"strings"
	"time"

	"github.com/seenimoa/nsenews/pkg/models"
	"github.com/seenimoa/nsenews/pkg/utils"
)

// CredibleSources are source names (matched as lower-case substrings)
// that earn the credibility bonus.
var CredibleSources = []string{"economic times", "business standard", "mint", "moneycontrol"}

// RecencyDays is the age at which an article stops earning recency credit.
const RecencyDays = 7

// InvestmentScore rates how actionable an article is for an investor,
// in [0,1]. It reads the extracted signals of a, not its scores.
func InvestmentScore(a models.Analysis, now time.Time) float64 {
	score := math.Abs(a.SentimentScore()) * 0.4

	keywordScore := 0.0
	if a.Keywords != nil {
		for category, hits := range a.Keywords.Found {
			switch category {
			case models.CategoryPositive, models.CategoryNegative:
				keywordScore += float64(len(hits)) * 0.1
			default:
				keywordScore += float64(len(hits)) * 0.05
			}
		}
	}
	score += min(keywordScore, 0.3)

	if a.PublishedAt != nil {
		days := max(0, utils.DaysSince(*a.PublishedAt, now))
		score += max(0, float64(RecencyDays-days)/RecencyDays) * 0.2
	}

	source := strings.ToLower(a.Source)
	for _, cs := range CredibleSources {
		if strings.Contains(source, cs) {
			score += 0.1
			break
		}
	}

	return min(score, 1.0)
}

// RelevanceScore rates how relevant an article is to listed companies,
// in [0,1].
func RelevanceScore(a models.Analysis) float64 {
	score := 0.0
	if a.Keywords != nil {
		score += min(float64(a.Keywords.Total)*0.05, 0.3)
	}
	score += math.Abs(a.SentimentScore()) * 0.25
	if a.Companies != nil {
		score += min(float64(a.Companies.Count)*0.1, 0.2)
	}
	if a.Financial != nil {
		score += a.Financial.Density * 0.15
	}
	score += min(float64(a.ContentLength)/1000, 1.0) * 0.1
	return min(score, 1.0)
}

// ImpactCategory classifies the expected market impact from the positive
// and negative keyword counts and the document polarity. The checks run
// in order and the first match wins.
func ImpactCategory(keywords *models.KeywordSignals, sentiment float64) models.ImpactCategory {
	pos := keywords.Count(models.CategoryPositive)
	neg := keywords.Count(models.CategoryNegative)

	switch {
	case pos > neg && sentiment > 0.1:
		return models.ImpactHighlyPositive
	case pos > 0 && sentiment > 0.05:
		return models.ImpactPositive
	case neg > pos && sentiment < -0.1:
		return models.ImpactHighlyNegative
	case neg > 0 && sentiment < -0.05:
		return models.ImpactNegative
	default:
		return models.ImpactNeutral
	}
}
