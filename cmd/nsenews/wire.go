package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/seenimoa/nsenews/internal/analyzer"
	"github.com/seenimoa/nsenews/internal/batch"
	"github.com/seenimoa/nsenews/internal/company"
	"github.com/seenimoa/nsenews/internal/config"
	"github.com/seenimoa/nsenews/internal/datasource"
	"github.com/seenimoa/nsenews/internal/lexicon"
	"github.com/seenimoa/nsenews/internal/pipeline"
	"github.com/seenimoa/nsenews/internal/textsignal"
	"github.com/seenimoa/nsenews/pkg/models"
)

// buildLexicon returns the default lexicon extended with configured phrases.
func buildLexicon(c config.LexiconConfig) *lexicon.Lexicon {
	return lexicon.DefaultBuilder().
		Add(models.CategoryPositive, c.ExtraPositive...).
		Add(models.CategoryNegative, c.ExtraNegative...).
		Add(models.CategoryNeutral, c.ExtraNeutral...).
		Build()
}

func buildEstimator(engine string) (textsignal.Estimator, error) {
	switch strings.ToLower(engine) {
	case "", config.EngineLexicon:
		return textsignal.NewLexiconEstimator(), nil
	case config.EngineVader:
		return textsignal.NewVaderEstimator(), nil
	}
	return nil, fmt.Errorf("%w: unknown sentiment engine %q", config.ErrInvalid, engine)
}

func buildSources(cfgs []config.SourceConfig) []datasource.Source {
	if len(cfgs) == 0 {
		return datasource.DefaultSources
	}
	out := make([]datasource.Source, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, datasource.Source{Name: c.Name, BaseURL: c.BaseURL, RSSFeeds: c.RSSFeeds})
	}
	return out
}

func pipelineOptions(c *config.Config) pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.RelevanceThreshold = c.Analysis.RelevanceThreshold
	opts.DedupThreshold = c.Analysis.DedupThreshold
	opts.DaysLookback = c.Analysis.DaysLookback
	opts.TopCompanies = c.Analysis.TopCompanies
	opts.PerSourceLimit = c.Fetch.PerSourceLimit
	opts.MaxArticlesPerCompany = c.Analysis.MaxArticlesPerCompany
	opts.EnrichLimit = c.Analysis.EnrichLimit
	return opts
}

// loadRegistry reads the company table. A missing table disables company
// matching rather than failing the run.
func loadRegistry(path string, logger *slog.Logger) *company.Registry {
	if path == "" {
		logger.Warn("no company list configured, company matching disabled")
		return nil
	}
	reg, err := company.LoadCSV(path)
	if err != nil {
		logger.Warn("company list unavailable, company matching disabled", "path", path, "error", err)
		return nil
	}
	logger.Info("loaded company list", "path", path, "companies", reg.Len())
	return reg
}

// buildPipeline wires every stage from configuration.
func buildPipeline(c *config.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	est, err := buildEstimator(c.Sentiment.Engine)
	if err != nil {
		return nil, err
	}

	a := analyzer.New(
		analyzer.WithLexicon(buildLexicon(c.Lexicon)),
		analyzer.WithEstimator(est),
		analyzer.WithMinLength(c.Analysis.MinArticleLength),
		analyzer.WithLogger(logger),
	)
	runner := batch.NewRunner(a, batch.WithWorkers(c.Analysis.Workers), batch.WithLogger(logger))

	feed := datasource.NewFeed(buildSources(c.Sources),
		datasource.WithHTTPClient(&http.Client{Timeout: c.Fetch.Timeout()}),
		datasource.WithRateLimit(c.Fetch.RequestsPerSec),
		datasource.WithCacheTTL(c.Fetch.CacheTTL()),
		datasource.WithDedupThreshold(c.Analysis.DedupThreshold),
		datasource.WithFeedLogger(logger),
	)

	reg := loadRegistry(c.Registry.CompaniesFile, logger)
	return pipeline.New(feed, reg, runner, pipelineOptions(c), logger), nil
}
