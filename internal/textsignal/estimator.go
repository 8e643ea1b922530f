// Package textsignal extracts numeric signals from article text: opinion
// polarity and subjectivity, investment keywords, and financial figures.
package textsignal

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// Estimator is a generic polarity/subjectivity estimator.
//
// Polarity must lie in [-1,1] and Subjectivity in [0,1]. Sentences splits
// text into sentences for per-sentence scoring.
type Estimator interface {
	Polarity(text string) float64
	Subjectivity(text string) float64
	Sentences(text string) []string
}

// opinion is the polarity and subjectivity carried by a single word.
type opinion struct {
	polarity     float64
	subjectivity float64
}

// opinionWords is a compact opinion lexicon tuned for business news.
var opinionWords = map[string]opinion{
	// positive
	"good": {0.7, 0.6}, "great": {0.8, 0.75}, "excellent": {1.0, 1.0},
	"love": {0.5, 0.6}, "loves": {0.5, 0.6}, "best": {1.0, 0.3},
	"better": {0.5, 0.5}, "strong": {0.43, 0.73}, "stronger": {0.45, 0.7},
	"robust": {0.4, 0.5}, "positive": {0.23, 0.55}, "success": {0.3, 0.5},
	"successful": {0.75, 0.95}, "breakthrough": {0.5, 0.6}, "boost": {0.4, 0.5},
	"boosts": {0.4, 0.5}, "boosted": {0.4, 0.5}, "growth": {0.3, 0.4},
	"gain": {0.3, 0.4}, "gains": {0.3, 0.4}, "surge": {0.4, 0.5},
	"surged": {0.4, 0.5}, "surges": {0.4, 0.5}, "rally": {0.4, 0.5},
	"rallied": {0.4, 0.5}, "optimistic": {0.5, 0.8}, "upbeat": {0.5, 0.6},
	"upgrade": {0.4, 0.4}, "upgraded": {0.4, 0.4}, "significant": {0.375, 0.875},
	"major": {0.06, 0.5}, "new": {0.136, 0.454}, "profitable": {0.5, 0.6},
	"impressive": {1.0, 1.0}, "outperform": {0.5, 0.5}, "bullish": {0.6, 0.7},
	"win": {0.8, 0.4}, "wins": {0.8, 0.4}, "winning": {0.5, 0.75},
	"favourable": {0.5, 0.6}, "favorable": {0.5, 0.6}, "improved": {0.4, 0.5},
	"improve": {0.3, 0.4}, "healthy": {0.5, 0.5}, "solid": {0.3, 0.4},
	"exceed": {0.3, 0.4}, "exceeded": {0.3, 0.4}, "recovery": {0.3, 0.4},
	"record": {0.2, 0.3}, "happy": {0.8, 1.0}, "confident": {0.5, 0.8},

	// negative
	"bad": {-0.7, 0.67}, "poor": {-0.4, 0.6}, "weak": {-0.375, 0.625},
	"weaker": {-0.4, 0.6}, "loss": {-0.4, 0.5}, "losses": {-0.4, 0.5},
	"decline": {-0.3, 0.4}, "declined": {-0.3, 0.4}, "declines": {-0.3, 0.4},
	"fall": {-0.3, 0.4}, "falls": {-0.3, 0.4}, "fell": {-0.3, 0.4},
	"drop": {-0.3, 0.4}, "drops": {-0.3, 0.4}, "dropped": {-0.3, 0.4},
	"plunge": {-0.6, 0.6}, "plunged": {-0.6, 0.6}, "crash": {-0.7, 0.7},
	"slump": {-0.5, 0.5}, "warning": {-0.4, 0.5}, "warn": {-0.4, 0.5},
	"concern": {-0.3, 0.5}, "concerns": {-0.3, 0.5}, "concerned": {-0.3, 0.6},
	"debt": {-0.3, 0.3}, "risk": {-0.2, 0.4}, "risks": {-0.2, 0.4},
	"risky": {-0.5, 0.6}, "fraud": {-0.8, 0.8}, "scandal": {-0.7, 0.7},
	"penalty": {-0.4, 0.4}, "lawsuit": {-0.4, 0.4}, "default": {-0.5, 0.4},
	"bearish": {-0.6, 0.7}, "pessimistic": {-0.6, 0.8}, "disappointing": {-0.6, 0.7},
	"disappointed": {-0.6, 0.7}, "worst": {-1.0, 1.0}, "worse": {-0.4, 0.6},
	"uncertainty": {-0.3, 0.6}, "uncertain": {-0.3, 0.6}, "downgrade": {-0.4, 0.4},
	"downgraded": {-0.4, 0.4}, "layoffs": {-0.4, 0.4}, "bankruptcy": {-0.7, 0.6},
	"terrible": {-1.0, 1.0}, "hate": {-0.8, 0.9}, "worry": {-0.4, 0.6},
}

var intensifiers = map[string]float64{
	"very": 1.3, "extremely": 1.5, "highly": 1.4, "really": 1.2,
	"hugely": 1.4, "sharply": 1.3, "strongly": 1.3,
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "without": true,
	"hardly": true, "isn't": true, "wasn't": true, "don't": true,
	"doesn't": true, "didn't": true, "won't": true, "can't": true, "cannot": true,
}

// negationWindow is how many preceding tokens can negate an opinion word.
const negationWindow = 3

var wordPattern = regexp.MustCompile(`[a-z]+(?:['’-][a-z]+)*`)

// LexiconEstimator is a deterministic rule-based estimator: the polarity of
// a text is the mean polarity of its opinion words, each adjusted by a
// preceding intensifier and flipped (at half strength) by a nearby negator.
type LexiconEstimator struct{}

// NewLexiconEstimator returns the built-in estimator.
func NewLexiconEstimator() *LexiconEstimator { return &LexiconEstimator{} }

// Polarity implements Estimator.
func (e *LexiconEstimator) Polarity(text string) float64 {
	p, _ := e.score(text)
	return p
}

// Subjectivity implements Estimator.
func (e *LexiconEstimator) Subjectivity(text string) float64 {
	_, s := e.score(text)
	return s
}

// Sentences implements Estimator.
func (e *LexiconEstimator) Sentences(text string) []string {
	return SplitSentences(text)
}

func (e *LexiconEstimator) score(text string) (polarity, subjectivity float64) {
	tokens := wordPattern.FindAllString(strings.ToLower(text), -1)

	var polSum, subSum float64
	matched := 0
	for i, tok := range tokens {
		op, ok := opinionWords[tok]
		if !ok {
			continue
		}

		p, s := op.polarity, op.subjectivity
		if i > 0 {
			if mult, ok := intensifiers[tokens[i-1]]; ok {
				p *= mult
				s *= mult
			}
		}
		for j := i - 1; j >= 0 && j >= i-negationWindow; j-- {
			if negators[tokens[j]] {
				p *= -0.5
				break
			}
		}

		polSum += clamp(p, -1, 1)
		subSum += clamp(s, 0, 1)
		matched++
	}

	if matched == 0 {
		return 0, 0
	}
	return clamp(polSum/float64(matched), -1, 1), clamp(subSum/float64(matched), 0, 1)
}

// SplitSentences splits text after '.', '!' or '?' when followed by
// whitespace or end of input. Empty sentences are dropped.
func SplitSentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

// WordCount returns the number of whitespace-separated tokens in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
