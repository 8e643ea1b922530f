// Package batch runs the analyzer over article collections and reduces the
// results: relevance filtering, title deduplication, recency filtering and
// corpus-level summary statistics.
package batch

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/nsenews/internal/analyzer"
	"github.com/seenimoa/nsenews/internal/company"
	"github.com/seenimoa/nsenews/pkg/models"
)

// Runner analyzes batches of articles with an Analyzer.
type Runner struct {
	analyzer *analyzer.Analyzer
	workers  int
	logger   *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets how many articles are analyzed concurrently. Values
// below 2 analyze sequentially.
func WithWorkers(n int) Option {
	return func(r *Runner) { r.workers = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a Runner around a.
func NewRunner(a *analyzer.Analyzer, opts ...Option) *Runner {
	r := &Runner{analyzer: a, workers: 1}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Analyze analyzes every article and returns one Analysis per article in
// input order. A failing article yields a failed Analysis carrying only its
// identity and the failure; it never stops the batch. Articles not started
// before ctx is done are marked failed with the context error.
func (r *Runner) Analyze(ctx context.Context, articles []models.Article, matcher *company.Matcher) []models.Analysis {
	results := make([]models.Analysis, len(articles))

	if r.workers < 2 {
		for i, art := range articles {
			if err := ctx.Err(); err != nil {
				results[i] = failed(i, art, err)
				continue
			}
			results[i] = r.analyzeOne(i, len(articles), art, matcher)
		}
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, art := range articles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = failed(i, art, err)
				return nil
			}
			results[i] = r.analyzeOne(i, len(articles), art, matcher)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return results
}

func (r *Runner) analyzeOne(i, total int, art models.Article, matcher *company.Matcher) (res models.Analysis) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("article analysis panicked", "index", i, "title", art.Title, "panic", p)
			res = failed(i, art, fmt.Errorf("analysis panicked: %v", p))
		}
	}()

	r.logger.Debug("analyzing article", "n", i+1, "of", total, "title", truncate(art.Title, 50))
	return r.analyzer.Analyze(art, matcher)
}

// failed builds the minimal record kept for an article whose analysis
// could not complete.
func failed(i int, art models.Article, err error) models.Analysis {
	id := art.Identifier()
	if id == "" {
		id = fmt.Sprintf("article_%d", i)
	}
	return models.Analysis{
		ArticleID: id,
		Title:     art.Title,
		Source:    art.Source,
		URL:       art.URL,
		State:     models.StateFailed,
		Error:     err.Error(),
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
