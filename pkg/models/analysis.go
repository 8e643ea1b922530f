package models

import "time"

// SentimentLabel is the categorical reading of a polarity score.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNegative SentimentLabel = "Negative"
	SentimentNeutral  SentimentLabel = "Neutral"
)

// ImpactCategory describes the expected market impact of an article.
type ImpactCategory string

const (
	ImpactHighlyPositive ImpactCategory = "Highly Positive"
	ImpactPositive       ImpactCategory = "Positive"
	ImpactNeutral        ImpactCategory = "Neutral"
	ImpactNegative       ImpactCategory = "Negative"
	ImpactHighlyNegative ImpactCategory = "Highly Negative"
)

// AnalysisState is the terminal state an article reached in the analyzer.
type AnalysisState string

const (
	// StateScored means every signal and score was computed.
	StateScored AnalysisState = "scored"
	// StateRejected means the article had too little content to analyze.
	StateRejected AnalysisState = "rejected"
	// StateFailed means analysis aborted unexpectedly; only identity is kept.
	StateFailed AnalysisState = "failed"
)

// Keyword categories shared by the lexicon and the analysis record.
const (
	CategoryPositive = "positive"
	CategoryNegative = "negative"
	CategoryNeutral  = "neutral"
)

// SentimentSignals is the text-level opinion reading of an article.
type SentimentSignals struct {
	Score             float64        `json:"sentiment_score"` // polarity, -1..+1
	Subjectivity      float64        `json:"sentiment_subjectivity"`
	Label             SentimentLabel `json:"sentiment_label"`
	PositiveSentences int            `json:"positive_sentences"`
	NegativeSentences int            `json:"negative_sentences"`
	NeutralSentences  int            `json:"neutral_sentences"`
	SentenceScores    []float64      `json:"sentence_sentiments"`
	Error             string         `json:"error,omitempty"` // estimator failure, defaults were used
}

// KeywordSignals holds the lexicon phrases found in an article.
type KeywordSignals struct {
	Found   map[string][]string `json:"keywords_found"`
	Density float64             `json:"keyword_density"`
	Total   int                 `json:"total_investment_keywords"`
}

// Count returns the number of distinct phrases matched in category.
func (k *KeywordSignals) Count(category string) int {
	if k == nil {
		return 0
	}
	return len(k.Found[category])
}

// CompanySignals holds the companies an article mentions.
type CompanySignals struct {
	Matched []CompanyMatch `json:"matched_companies"` // top matches, confidence descending
	Count   int            `json:"company_count"`     // unique matches before truncation
}

// FinancialSignals holds figures and vocabulary extracted from an article.
type FinancialSignals struct {
	Numbers     []float64 `json:"financial_numbers"`
	Percentages []float64 `json:"percentages_mentioned"`
	Terms       []string  `json:"financial_terms"`
	Density     float64   `json:"financial_density"`
}

// Scores are the derived ratings of a scored article.
type Scores struct {
	Investment float64        `json:"investment_score"`
	Impact     ImpactCategory `json:"impact_category"`
	Relevance  float64        `json:"relevance_score"`
}

// Analysis is the per-article output of the analyzer.
//
// A rejected or failed analysis carries Error and never Scores; callers
// must check Valid before reading any score.
type Analysis struct {
	ArticleID     string            `json:"article_id"`
	Title         string            `json:"title"`
	Source        string            `json:"source"`
	URL           string            `json:"url,omitempty"`
	PublishedAt   *time.Time        `json:"published_date,omitempty"`
	State         AnalysisState     `json:"state"`
	Error         string            `json:"error,omitempty"`
	ContentLength int               `json:"content_length,omitempty"`
	Sentiment     *SentimentSignals `json:"sentiment,omitempty"`
	Keywords      *KeywordSignals   `json:"keywords,omitempty"`
	Companies     *CompanySignals   `json:"companies,omitempty"`
	Financial     *FinancialSignals `json:"financial,omitempty"`
	Scores        *Scores           `json:"scores,omitempty"`
}

// Valid reports whether the analysis reached the scored state.
func (a Analysis) Valid() bool {
	return a.Error == "" && a.State == StateScored && a.Scores != nil
}

// RelevanceScore returns the relevance score, or 0 for invalid analyses.
func (a Analysis) RelevanceScore() float64 {
	if !a.Valid() {
		return 0
	}
	return a.Scores.Relevance
}

// InvestmentScore returns the investment score, or 0 for invalid analyses.
func (a Analysis) InvestmentScore() float64 {
	if !a.Valid() {
		return 0
	}
	return a.Scores.Investment
}

// Impact returns the impact category, Neutral for invalid analyses.
func (a Analysis) Impact() ImpactCategory {
	if !a.Valid() {
		return ImpactNeutral
	}
	return a.Scores.Impact
}

// SentimentScore returns the document polarity, 0 when absent.
func (a Analysis) SentimentScore() float64 {
	if a.Sentiment == nil {
		return 0
	}
	return a.Sentiment.Score
}

// SentimentLabel returns the sentiment label, Neutral when absent.
func (a Analysis) SentimentLabel() SentimentLabel {
	if a.Sentiment == nil || a.Sentiment.Label == "" {
		return SentimentNeutral
	}
	return a.Sentiment.Label
}

// Symbols returns the matched company symbols in confidence order.
func (a Analysis) Symbols() []string {
	if a.Companies == nil {
		return nil
	}
	out := make([]string, 0, len(a.Companies.Matched))
	for _, m := range a.Companies.Matched {
		out = append(out, m.Symbol)
	}
	return out
}
