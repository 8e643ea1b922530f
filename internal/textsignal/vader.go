package textsignal

import (
	"github.com/jonreiter/govader"
)

// VaderEstimator adapts the VADER sentiment analyzer to Estimator.
// Polarity is the VADER compound score; subjectivity is the share of the
// text VADER rates as non-neutral.
type VaderEstimator struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderEstimator builds a VADER-backed estimator.
func NewVaderEstimator() *VaderEstimator {
	return &VaderEstimator{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Polarity implements Estimator.
func (v *VaderEstimator) Polarity(text string) float64 {
	return clamp(v.analyzer.PolarityScores(text).Compound, -1, 1)
}

// Subjectivity implements Estimator.
func (v *VaderEstimator) Subjectivity(text string) float64 {
	s := v.analyzer.PolarityScores(text)
	return clamp(s.Positive+s.Negative, 0, 1)
}

// Sentences implements Estimator.
func (v *VaderEstimator) Sentences(text string) []string {
	return SplitSentences(text)
}
