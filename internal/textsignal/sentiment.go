package textsignal

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/seenimoa/nsenews/pkg/models"
)

// ErrExtraction is returned when the estimator cannot score a text.
var ErrExtraction = errors.New("sentiment extraction failed")

// LabelThreshold is the polarity magnitude separating Neutral from
// Positive/Negative.
const LabelThreshold = 0.1

// minSentenceWords is the word count a sentence must exceed to be scored.
const minSentenceWords = 3

// Label maps a polarity to its sentiment label.
func Label(polarity float64) models.SentimentLabel {
	switch {
	case polarity > LabelThreshold:
		return models.SentimentPositive
	case polarity < -LabelThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// Sentiment scores text with est. On failure it returns neutral defaults
// with Error set, together with an error wrapping ErrExtraction; the
// returned signals are always safe to use.
func Sentiment(est Estimator, text string) (sig models.SentimentSignals, err error) {
	defer func() {
		if r := recover(); r != nil {
			sig, err = failedSentiment(fmt.Errorf("%w: %v", ErrExtraction, r))
		}
	}()

	if !utf8.ValidString(text) {
		return failedSentiment(fmt.Errorf("%w: text is not valid UTF-8", ErrExtraction))
	}

	polarity := est.Polarity(text)
	subjectivity := est.Subjectivity(text)
	if math.IsNaN(polarity) || math.IsNaN(subjectivity) {
		return failedSentiment(fmt.Errorf("%w: estimator returned NaN", ErrExtraction))
	}

	sig = models.SentimentSignals{
		Score:          polarity,
		Subjectivity:   subjectivity,
		Label:          Label(polarity),
		SentenceScores: []float64{},
	}

	for _, sentence := range est.Sentences(text) {
		if WordCount(sentence) <= minSentenceWords {
			continue
		}
		p := est.Polarity(sentence)
		sig.SentenceScores = append(sig.SentenceScores, p)
		switch Label(p) {
		case models.SentimentPositive:
			sig.PositiveSentences++
		case models.SentimentNegative:
			sig.NegativeSentences++
		default:
			sig.NeutralSentences++
		}
	}

	return sig, nil
}

func failedSentiment(err error) (models.SentimentSignals, error) {
	return models.SentimentSignals{
		Label:          models.SentimentNeutral,
		SentenceScores: []float64{},
		Error:          err.Error(),
	}, err
}
