package batch

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/nsenews/internal/lexicon"
	"github.com/seenimoa/nsenews/pkg/models"
)

var (
	// ErrNoArticles is reported by Summarize for an empty batch.
	ErrNoArticles = errors.New("no articles to analyze")
	// ErrNoValidArticles is reported by Summarize when every analysis failed.
	ErrNoValidArticles = errors.New("no valid articles found")
)

const (
	topCompanyCount      = 10
	topKeywordCount      = 15
	highRelevanceCutoff  = 0.6
	summaryRoundingPlace = 3
)

// Summarize aggregates the valid analyses. For an empty batch, or one with
// no valid analysis, it returns a summary carrying only Error (and the
// article count) together with ErrNoArticles or ErrNoValidArticles.
func Summarize(analyses []models.Analysis) (models.Summary, error) {
	if len(analyses) == 0 {
		return models.Summary{Error: ErrNoArticles.Error()}, ErrNoArticles
	}

	valid := make([]models.Analysis, 0, len(analyses))
	for _, a := range analyses {
		if a.Valid() {
			valid = append(valid, a)
		}
	}
	if len(valid) == 0 {
		return models.Summary{Error: ErrNoValidArticles.Error(), TotalArticles: len(analyses)}, ErrNoValidArticles
	}

	s := models.Summary{
		TotalArticles:         len(analyses),
		ValidArticles:         len(valid),
		SentimentDistribution: make(map[models.SentimentLabel]int),
		ImpactDistribution:    make(map[models.ImpactCategory]int),
	}

	var sentiment, relevance, investment decimal.Decimal
	for _, a := range valid {
		s.SentimentDistribution[a.SentimentLabel()]++
		s.ImpactDistribution[a.Impact()]++

		sentiment = sentiment.Add(decimal.NewFromFloat(a.SentimentScore()))
		relevance = relevance.Add(decimal.NewFromFloat(a.RelevanceScore()))
		investment = investment.Add(decimal.NewFromFloat(a.InvestmentScore()))

		if a.RelevanceScore() > highRelevanceCutoff {
			s.HighlyRelevant++
		}
	}

	n := decimal.NewFromInt(int64(len(valid)))
	s.AverageSentiment = mean(sentiment, n)
	s.AverageRelevance = mean(relevance, n)
	s.AverageInvestment = mean(investment, n)

	s.TopCompanies = CompanyMentions(valid)
	if len(s.TopCompanies) > topCompanyCount {
		s.TopCompanies = s.TopCompanies[:topCompanyCount]
	}
	s.TopKeywords = topKeywords(valid, topKeywordCount)

	return s, nil
}

func mean(sum, n decimal.Decimal) float64 {
	f, _ := sum.Div(n).Round(summaryRoundingPlace).Float64()
	return f
}

// CompanyMentions counts matched symbols across valid analyses, most
// mentioned first. Ties keep first-seen order.
func CompanyMentions(analyses []models.Analysis) []models.CompanyCount {
	index := make(map[string]int)
	var counts []models.CompanyCount
	for _, a := range analyses {
		if !a.Valid() {
			continue
		}
		for _, sym := range a.Symbols() {
			if i, ok := index[sym]; ok {
				counts[i].Count++
				continue
			}
			index[sym] = len(counts)
			counts = append(counts, models.CompanyCount{Symbol: sym, Count: 1})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts
}

func topKeywords(analyses []models.Analysis, n int) []models.KeywordCount {
	type key struct{ keyword, category string }
	index := make(map[key]int)
	var counts []models.KeywordCount

	for _, a := range analyses {
		if a.Keywords == nil {
			continue
		}
		for _, category := range lexicon.Categories {
			for _, kw := range a.Keywords.Found[category] {
				k := key{kw, category}
				if i, ok := index[k]; ok {
					counts[i].Count++
					continue
				}
				index[k] = len(counts)
				counts = append(counts, models.KeywordCount{Keyword: kw, Category: category, Count: 1})
			}
		}
	}

	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
