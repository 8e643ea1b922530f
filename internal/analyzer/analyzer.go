// Package analyzer turns a raw article into a scored Analysis.
//
// Each article moves through content extraction, signal extraction, and
// scoring. Articles with too little text stop at the rejected state and
// carry an error marker instead of scores.
package analyzer

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/seenimoa/nsenews/internal/company"
	"github.com/seenimoa/nsenews/internal/lexicon"
	"github.com/seenimoa/nsenews/internal/textsignal"
	"github.com/seenimoa/nsenews/pkg/models"
)

// ErrContentTooShort marks an article whose combined text is under the
// minimum length.
var ErrContentTooShort = errors.New("insufficient content")

// DefaultMinLength is the default minimum content length in characters.
const DefaultMinLength = 100

// Analyzer scores articles. It holds only read-only state and is safe for
// concurrent use.
type Analyzer struct {
	lexicon   *lexicon.Lexicon
	estimator textsignal.Estimator
	minLength int
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLexicon sets the keyword lexicon.
func WithLexicon(l *lexicon.Lexicon) Option {
	return func(a *Analyzer) { a.lexicon = l }
}

// WithEstimator sets the sentiment estimator.
func WithEstimator(e textsignal.Estimator) Option {
	return func(a *Analyzer) { a.estimator = e }
}

// WithMinLength sets the minimum content length.
func WithMinLength(n int) Option {
	return func(a *Analyzer) { a.minLength = n }
}

// WithClock sets the time source used for recency scoring.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// New creates an Analyzer with the default lexicon and the lexicon-based
// estimator unless overridden.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{minLength: DefaultMinLength, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	if a.lexicon == nil {
		a.lexicon = lexicon.Default()
	}
	if a.estimator == nil {
		a.estimator = textsignal.NewLexiconEstimator()
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Lexicon returns the lexicon the analyzer scores keywords with.
func (a *Analyzer) Lexicon() *lexicon.Lexicon { return a.lexicon }

// ExtractContent joins the non-empty text fields of an article in priority
// order: content, description, summary, title.
func ExtractContent(article models.Article) string {
	var parts []string
	for _, field := range []string{article.Content, article.Description, article.Summary, article.Title} {
		if strings.TrimSpace(field) != "" {
			parts = append(parts, field)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Analyze runs the full analysis of one article. When matcher is nil no
// company matching is done.
func (a *Analyzer) Analyze(article models.Article, matcher *company.Matcher) models.Analysis {
	res := models.Analysis{
		ArticleID:   article.Identifier(),
		Title:       article.Title,
		Source:      article.Source,
		URL:         article.URL,
		PublishedAt: article.PublishedAt,
	}

	content := ExtractContent(article)
	length := utf8.RuneCountInString(content)
	if length < a.minLength {
		res.State = models.StateRejected
		res.Error = fmt.Errorf("%w: %d characters, need %d", ErrContentTooShort, length, a.minLength).Error()
		a.logger.Debug("article rejected", "article", res.ArticleID, "length", length)
		return res
	}
	res.ContentLength = length

	sentiment, err := textsignal.Sentiment(a.estimator, content)
	if err != nil {
		a.logger.Warn("sentiment extraction failed, using neutral defaults",
			"article", res.ArticleID, "error", err)
	}
	res.Sentiment = &sentiment

	keywords := textsignal.Keywords(content, a.lexicon)
	res.Keywords = &keywords

	if matcher != nil {
		companies := matcher.Match(content)
		res.Companies = &companies
	}

	financial := textsignal.FinancialInfo(content)
	res.Financial = &financial

	res.Scores = &models.Scores{
		Investment: InvestmentScore(res, a.now()),
		Impact:     ImpactCategory(res.Keywords, sentiment.Score),
		Relevance:  RelevanceScore(res),
	}
	res.State = models.StateScored
	return res
}
