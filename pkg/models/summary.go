package models

import "time"

// CompanyCount is a company symbol with its mention count.
type CompanyCount struct {
	Symbol string `json:"symbol"`
	Count  int    `json:"count"`
}

// KeywordCount is a lexicon phrase with its category and frequency.
type KeywordCount struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Summary aggregates a collection of analyses. When Error is set the
// remaining fields are zero and must not be read as averages.
type Summary struct {
	Error                 string                 `json:"error,omitempty"`
	TotalArticles         int                    `json:"total_articles"`
	ValidArticles         int                    `json:"valid_articles"`
	SentimentDistribution map[SentimentLabel]int `json:"sentiment_distribution,omitempty"`
	ImpactDistribution    map[ImpactCategory]int `json:"impact_distribution,omitempty"`
	TopCompanies          []CompanyCount         `json:"top_companies_mentioned,omitempty"`
	AverageSentiment      float64                `json:"average_sentiment_score"`
	AverageRelevance      float64                `json:"average_relevance_score"`
	AverageInvestment     float64                `json:"average_investment_score"`
	TopKeywords           []KeywordCount         `json:"top_keywords,omitempty"`
	HighlyRelevant        int                    `json:"highly_relevant_articles"`
}

// PipelineResult is the full output of one analysis run.
type PipelineResult struct {
	Timestamp            time.Time  `json:"timestamp"`
	ExecutionTimeSeconds float64    `json:"execution_time_seconds"`
	Error                string     `json:"error,omitempty"`
	TotalArticlesScraped int        `json:"total_articles_scraped"`
	UniqueArticles       int        `json:"unique_articles"`
	AnalyzedArticles     int        `json:"analyzed_articles"`
	RelevantArticles     int        `json:"relevant_articles"`
	TargetCompanies      []string   `json:"target_companies,omitempty"`
	TopCompaniesAnalyzed []string   `json:"top_companies_analyzed,omitempty"`
	Articles             []Analysis `json:"articles"`
	RelevantOnly         []Analysis `json:"relevant_articles_only"`
	Summary              Summary    `json:"summary"`
}
