package textsignal

import (
	"errors"
	"math"
	"testing"

	"github.com/seenimoa/nsenews/internal/lexicon"
	"github.com/seenimoa/nsenews/pkg/models"
)

func TestLabelThresholds(t *testing.T) {
	tests := []struct {
		polarity float64
		want     models.SentimentLabel
	}{
		{0.5, models.SentimentPositive},
		{0.1000001, models.SentimentPositive},
		{0.1, models.SentimentNeutral},
		{0, models.SentimentNeutral},
		{-0.1, models.SentimentNeutral},
		{-0.1000001, models.SentimentNegative},
		{-0.9, models.SentimentNegative},
	}
	for _, tt := range tests {
		if got := Label(tt.polarity); got != tt.want {
			t.Errorf("Label(%v) = %s, want %s", tt.polarity, got, tt.want)
		}
	}
}

func TestSentimentLabels(t *testing.T) {
	est := NewLexiconEstimator()

	pos, err := Sentiment(est, "I love this breakthrough success")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos.Label != models.SentimentPositive {
		t.Errorf("expected Positive, got %s (%.3f)", pos.Label, pos.Score)
	}

	neg, err := Sentiment(est, "warning: loss and debt concerns")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if neg.Label != models.SentimentNegative {
		t.Errorf("expected Negative, got %s (%.3f)", neg.Label, neg.Score)
	}
}

func TestSentimentSentenceCounts(t *testing.T) {
	text := "Profits were strong and growth was impressive this year. " +
		"The company faces a sharp loss and weak demand ahead. " +
		"Board meets on Monday. " +
		"The meeting will be held in Mumbai next week."

	sig, err := Sentiment(NewLexiconEstimator(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "Board meets on Monday." has four words, one above the minimum.
	if len(sig.SentenceScores) != 4 {
		t.Fatalf("expected 4 scored sentences, got %d", len(sig.SentenceScores))
	}
	if sig.PositiveSentences != 1 || sig.NegativeSentences != 1 || sig.NeutralSentences != 2 {
		t.Errorf("counts pos=%d neg=%d neu=%d, want 1/1/2",
			sig.PositiveSentences, sig.NegativeSentences, sig.NeutralSentences)
	}
}

func TestSentimentSkipsShortSentences(t *testing.T) {
	sig, _ := Sentiment(NewLexiconEstimator(), "Great results. Shares rose.")
	if len(sig.SentenceScores) != 0 {
		t.Errorf("expected no scored sentences, got %v", sig.SentenceScores)
	}
	if sig.Label != models.SentimentPositive {
		t.Errorf("document label should still reflect 'great', got %s", sig.Label)
	}
}

type panicEstimator struct{ *LexiconEstimator }

func (panicEstimator) Polarity(string) float64 { panic("boom") }

type nanEstimator struct{ *LexiconEstimator }

func (nanEstimator) Polarity(string) float64 { return math.NaN() }

func TestSentimentFailureRecovers(t *testing.T) {
	tests := []struct {
		name string
		est  Estimator
		text string
	}{
		{"panic", panicEstimator{NewLexiconEstimator()}, "anything goes here"},
		{"nan", nanEstimator{NewLexiconEstimator()}, "anything goes here"},
		{"invalid utf8", NewLexiconEstimator(), "bad \xff\xfe bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := Sentiment(tt.est, tt.text)
			if !errors.Is(err, ErrExtraction) {
				t.Fatalf("expected ErrExtraction, got %v", err)
			}
			if sig.Score != 0 || sig.Subjectivity != 0 || sig.Label != models.SentimentNeutral {
				t.Errorf("expected neutral defaults, got %+v", sig)
			}
			if sig.Error == "" {
				t.Error("expected error note on signals")
			}
		})
	}
}

func TestLexiconEstimatorNegationAndIntensifier(t *testing.T) {
	est := NewLexiconEstimator()

	if p := est.Polarity("results were not good"); p >= 0 {
		t.Errorf("negated 'good' should be negative, got %.3f", p)
	}
	plain := est.Polarity("a strong quarter")
	boosted := est.Polarity("a very strong quarter")
	if boosted <= plain {
		t.Errorf("intensifier should raise polarity: plain=%.3f boosted=%.3f", plain, boosted)
	}
	if p, s := est.Polarity("the board met today"), est.Subjectivity("the board met today"); p != 0 || s != 0 {
		t.Errorf("no opinion words should give 0/0, got %.3f/%.3f", p, s)
	}
}

func TestLexiconEstimatorRanges(t *testing.T) {
	est := NewLexiconEstimator()
	texts := []string{
		"extremely excellent extremely impressive extremely best",
		"extremely terrible worst hate",
		"",
	}
	for _, text := range texts {
		p, s := est.Polarity(text), est.Subjectivity(text)
		if p < -1 || p > 1 {
			t.Errorf("polarity out of range for %q: %f", text, p)
		}
		if s < 0 || s > 1 {
			t.Errorf("subjectivity out of range for %q: %f", text, s)
		}
	}
}

func TestVaderEstimator(t *testing.T) {
	est := NewVaderEstimator()
	sig, err := Sentiment(est, "I love this breakthrough success")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Label != models.SentimentPositive {
		t.Errorf("expected Positive from VADER, got %s (%.3f)", sig.Label, sig.Score)
	}
	if sig.Subjectivity < 0 || sig.Subjectivity > 1 {
		t.Errorf("subjectivity out of range: %f", sig.Subjectivity)
	}
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("Shares rose 2.5% today. Is it over?  Yes!trailing")
	want := []string{"Shares rose 2.5% today.", "Is it over?", "Yes!trailing"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestKeywords(t *testing.T) {
	lex := lexicon.Default()
	text := "Company reports profit growth and profit guidance despite debt"

	sig := Keywords(text, lex)

	if !contains(sig.Found[models.CategoryPositive], "profit") || !contains(sig.Found[models.CategoryPositive], "growth") {
		t.Errorf("positive hits missing: %v", sig.Found[models.CategoryPositive])
	}
	if !contains(sig.Found[models.CategoryNegative], "debt") {
		t.Errorf("negative hits missing: %v", sig.Found[models.CategoryNegative])
	}
	if !contains(sig.Found[models.CategoryNeutral], "guidance") || !contains(sig.Found[models.CategoryNeutral], "report") {
		t.Errorf("neutral hits missing: %v", sig.Found[models.CategoryNeutral])
	}
	for cat, hits := range sig.Found {
		seen := map[string]bool{}
		for _, h := range hits {
			if seen[h] {
				t.Errorf("duplicate %q in %s", h, cat)
			}
			seen[h] = true
		}
	}

	total := 0
	for _, hits := range sig.Found {
		total += len(hits)
	}
	if sig.Total != total {
		t.Errorf("Total = %d, want %d", sig.Total, total)
	}
	if want := float64(total) / 9; math.Abs(sig.Density-want) > 1e-9 {
		t.Errorf("Density = %f, want %f", sig.Density, want)
	}
}

func TestDensitiesEmptyText(t *testing.T) {
	lex := lexicon.Default()
	for _, text := range []string{"", "   \n\t"} {
		if d := Keywords(text, lex).Density; d != 0 {
			t.Errorf("keyword density for %q = %f, want 0", text, d)
		}
		if d := FinancialInfo(text).Density; d != 0 {
			t.Errorf("financial density for %q = %f, want 0", text, d)
		}
	}
}

func TestExtractNumbers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []float64
	}{
		{"crores with separators", "an investment of Rs 75,000 crores", []float64{75000}},
		{"lakh", "a bonus of 12.5 lakh", []float64{12.5}},
		{"million and billion", "USD 300 million deal, 2 billion shares", []float64{300, 2}},
		{"rupee prefix", "priced at ₹1,250.50 each", []float64{1250.5}},
		{"dollar prefix", "raised $ 40", []float64{40}},
		{"abbreviations", "5 cr order and 10k units", []float64{5, 10}},
		{"no amounts", "plain words only", []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractNumbers(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestExtractPercentages(t *testing.T) {
	got := ExtractPercentages("up 5% today, 12.5 percent YoY and 3 per cent QoQ, 7 Percent overall")
	want := []float64{5, 12.5, 3, 7}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestFinancialInfoTerms(t *testing.T) {
	sig := FinancialInfo("Revenue and EBITDA rose while Cash Flow improved")
	for _, term := range []string{"revenue", "ebitda", "cash flow"} {
		if !contains(sig.Terms, term) {
			t.Errorf("expected term %q in %v", term, sig.Terms)
		}
	}
	if want := float64(len(sig.Terms)) / 8; math.Abs(sig.Density-want) > 1e-9 {
		t.Errorf("Density = %f, want %f", sig.Density, want)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
