// Package pipeline composes the feed, analyzer and batch stages into
// complete analysis runs and persists their results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/seenimoa/nsenews/internal/analyzer"
	"github.com/seenimoa/nsenews/internal/batch"
	"github.com/seenimoa/nsenews/internal/company"
	"github.com/seenimoa/nsenews/pkg/models"
)

// ErrNoCompanies is returned when none of the requested symbols is listed.
var ErrNoCompanies = errors.New("no valid companies found")

// companyNewsBatch caps how many top companies a full run searches news for.
const companyNewsBatch = 20

// Fetcher is the news collaborator a pipeline reads articles from.
type Fetcher interface {
	GetGeneralNews(ctx context.Context, limitPerSource int) ([]models.Article, error)
	GetCompanyNews(ctx context.Context, names []string, limitPerSource, maxPerCompany int) (map[string][]models.Article, error)
	Enrich(ctx context.Context, articles []models.Article) []models.Article
}

// Options tunes a pipeline run.
type Options struct {
	RelevanceThreshold    float64
	DedupThreshold        float64
	DaysLookback          int
	TopCompanies          int
	PerSourceLimit        int
	CompanyNewsLimit      int
	MaxArticlesPerCompany int
	EnrichLimit           int
}

// DefaultOptions returns the standard run settings.
func DefaultOptions() Options {
	return Options{
		RelevanceThreshold:    batch.DefaultRelevanceThreshold,
		DedupThreshold:        batch.DefaultDedupThreshold,
		DaysLookback:          7,
		TopCompanies:          50,
		PerSourceLimit:        25,
		CompanyNewsLimit:      5,
		MaxArticlesPerCompany: 10,
		EnrichLimit:           50,
	}
}

// Pipeline runs end-to-end analyses.
type Pipeline struct {
	fetcher  Fetcher
	registry *company.Registry
	matcher  *company.Matcher
	runner   *batch.Runner
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a pipeline. fetcher may be nil when only AnalyzeArticles is
// used; registry may be nil to skip company matching.
func New(fetcher Fetcher, registry *company.Registry, runner *batch.Runner, opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = batch.NewRunner(analyzer.New(), batch.WithLogger(logger))
	}
	p := &Pipeline{
		fetcher:  fetcher,
		registry: registry,
		runner:   runner,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
	if registry.Len() > 0 {
		p.matcher = company.NewMatcher(registry)
	}
	return p
}

// Registry returns the company table used for matching.
func (p *Pipeline) Registry() *company.Registry { return p.registry }

// RunFull fetches general and company news, then deduplicates, enriches,
// analyzes, filters and summarizes it. A failing step ends the run with a
// result carrying Error.
func (p *Pipeline) RunFull(ctx context.Context) (models.PipelineResult, error) {
	start := p.now()
	res := models.PipelineResult{Timestamp: start}
	fail := func(step string, err error) (models.PipelineResult, error) {
		err = fmt.Errorf("%s: %w", step, err)
		p.logger.Error("full analysis failed", "error", err)
		res.Error = err.Error()
		res.ExecutionTimeSeconds = p.elapsed(start)
		return res, err
	}
	if p.fetcher == nil {
		return fail("fetch general news", errors.New("no news fetcher configured"))
	}

	p.logger.Info("step 1: fetching general news")
	general, err := p.fetcher.GetGeneralNews(ctx, p.opts.PerSourceLimit)
	if err != nil {
		return fail("fetch general news", err)
	}
	p.logger.Info("fetched general articles", "count", len(general))

	recent := batch.FilterRecent(general, p.opts.DaysLookback, p.now())
	p.logger.Info("step 2: filtered recent articles", "count", len(recent))

	names := companyNames(p.registry.Top(p.opts.TopCompanies))
	if len(names) > companyNewsBatch {
		names = names[:companyNewsBatch]
	}
	res.TopCompaniesAnalyzed = names

	var companyArticles []models.Article
	if len(names) > 0 {
		p.logger.Info("step 3: fetching company news", "companies", len(names))
		byCompany, err := p.fetcher.GetCompanyNews(ctx, names, p.opts.PerSourceLimit, p.opts.CompanyNewsLimit)
		if err != nil {
			return fail("fetch company news", err)
		}
		companyArticles = flatten(names, byCompany)
	}

	all := append(recent, companyArticles...)
	res.TotalArticlesScraped = len(all)
	unique := batch.Deduplicate(all, p.opts.DedupThreshold)
	res.UniqueArticles = len(unique)
	p.logger.Info("step 4: combined articles", "total", len(all), "unique", len(unique))

	n := min(p.opts.EnrichLimit, len(unique))
	enriched := append(p.fetcher.Enrich(ctx, unique[:n]), unique[n:]...)
	p.logger.Info("step 5: enriched articles", "count", n)

	p.analyze(ctx, enriched, &res)

	res.ExecutionTimeSeconds = p.elapsed(start)
	p.logger.Info("full analysis completed", "seconds", res.ExecutionTimeSeconds)
	return res, nil
}

// RunCompanies analyzes the news of the listed companies with the given
// symbols. Unknown symbols are logged and skipped.
func (p *Pipeline) RunCompanies(ctx context.Context, symbols []string) (models.PipelineResult, error) {
	start := p.now()
	res := models.PipelineResult{Timestamp: start, TargetCompanies: symbols}

	var names []string
	for _, sym := range symbols {
		rec, ok := p.registry.Lookup(sym)
		if !ok || rec.Name == "" {
			p.logger.Warn("company symbol not found in NSE list", "symbol", sym)
			continue
		}
		names = append(names, rec.Name)
	}
	if len(names) == 0 {
		res.Error = ErrNoCompanies.Error()
		return res, ErrNoCompanies
	}
	if p.fetcher == nil {
		err := errors.New("no news fetcher configured")
		res.Error = err.Error()
		return res, err
	}

	byCompany, err := p.fetcher.GetCompanyNews(ctx, names, p.opts.PerSourceLimit, p.opts.MaxArticlesPerCompany)
	if err != nil {
		err = fmt.Errorf("fetch company news: %w", err)
		res.Error = err.Error()
		res.ExecutionTimeSeconds = p.elapsed(start)
		return res, err
	}
	articles := flatten(names, byCompany)
	res.TotalArticlesScraped = len(articles)
	res.UniqueArticles = len(articles)

	p.analyze(ctx, articles, &res)
	res.ExecutionTimeSeconds = p.elapsed(start)
	p.logger.Info("targeted analysis completed", "companies", len(names), "articles", len(articles))
	return res, nil
}

// AnalyzeArticles analyzes supplied articles without fetching anything.
func (p *Pipeline) AnalyzeArticles(ctx context.Context, articles []models.Article) models.PipelineResult {
	start := p.now()
	res := models.PipelineResult{Timestamp: start, TotalArticlesScraped: len(articles)}

	unique := batch.Deduplicate(articles, p.opts.DedupThreshold)
	res.UniqueArticles = len(unique)

	p.analyze(ctx, unique, &res)
	res.ExecutionTimeSeconds = p.elapsed(start)
	return res
}

// analyze runs the batch stages over articles and fills res.
func (p *Pipeline) analyze(ctx context.Context, articles []models.Article, res *models.PipelineResult) {
	analyses := p.runner.Analyze(ctx, articles, p.matcher)
	relevant := batch.FilterRelevant(analyses, p.opts.RelevanceThreshold)
	summary, err := batch.Summarize(analyses)
	if err != nil {
		p.logger.Warn("summary unavailable", "error", err)
	}

	res.Articles = analyses
	res.RelevantOnly = relevant
	res.AnalyzedArticles = len(analyses)
	res.RelevantArticles = len(relevant)
	res.Summary = summary
	p.logger.Info("analyzed articles", "analyzed", len(analyses), "relevant", len(relevant))
}

func (p *Pipeline) elapsed(start time.Time) float64 {
	return math.Round(p.now().Sub(start).Seconds()*100) / 100
}

func companyNames(records []models.CompanyRecord) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	return names
}

// flatten concatenates per-company articles in the order of names.
func flatten(names []string, byCompany map[string][]models.Article) []models.Article {
	var out []models.Article
	for _, n := range names {
		out = append(out, byCompany[n]...)
	}
	return out
}
