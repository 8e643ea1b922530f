package datasource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/seenimoa/nsenews/internal/batch"
	"github.com/seenimoa/nsenews/internal/company"
	"github.com/seenimoa/nsenews/pkg/models"
)

// Source is a news site with one or more RSS feeds.
type Source struct {
	Name     string   `mapstructure:"name" json:"name"`
	BaseURL  string   `mapstructure:"base_url" json:"base_url"`
	RSSFeeds []string `mapstructure:"rss_feeds" json:"rss_feeds"`
}

// DefaultSources lists the Indian financial news sites read by default.
var DefaultSources = []Source{
	{
		Name:    "Economic Times",
		BaseURL: "https://economictimes.indiatimes.com",
		RSSFeeds: []string{
			"https://economictimes.indiatimes.com/markets/stocks/rssfeeds/2146842.cms",
			"https://economictimes.indiatimes.com/news/company/corporate-trends/rssfeeds/13358266.cms",
		},
	},
	{
		Name:    "Business Standard",
		BaseURL: "https://www.business-standard.com",
		RSSFeeds: []string{
			"https://www.business-standard.com/rss/markets-106.rss",
			"https://www.business-standard.com/rss/companies-101.rss",
		},
	},
	{
		Name:    "Mint",
		BaseURL: "https://www.livemint.com",
		RSSFeeds: []string{
			"https://www.livemint.com/rss/markets",
			"https://www.livemint.com/rss/companies",
		},
	},
	{
		Name:    "MoneyControl",
		BaseURL: "https://www.moneycontrol.com",
		RSSFeeds: []string{
			"https://www.moneycontrol.com/rss/business.xml",
			"https://www.moneycontrol.com/rss/results.xml",
		},
	},
}

// ErrAllSourcesFailed is returned when no configured source could be read.
var ErrAllSourcesFailed = errors.New("all news sources failed")

// Feed fetches articles from a set of news sources. It is safe for
// concurrent use.
type Feed struct {
	sources     []Source
	client      *http.Client
	parser      *gofeed.Parser
	cache       *Cache[[]models.Article]
	limiter     *rate.Limiter
	logger      *slog.Logger
	dedup       float64
	concurrency int
}

// FeedOption configures a Feed.
type FeedOption func(*Feed)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) FeedOption {
	return func(f *Feed) { f.client = c }
}

// WithRateLimit caps outgoing requests per second. Zero or less removes
// the cap.
func WithRateLimit(perSecond float64) FeedOption {
	return func(f *Feed) {
		if perSecond <= 0 {
			f.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		f.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithCacheTTL sets how long fetched feeds are reused. Zero disables the cache.
func WithCacheTTL(ttl time.Duration) FeedOption {
	return func(f *Feed) { f.cache = NewCache[[]models.Article](ttl) }
}

// WithDedupThreshold sets the title similarity used when merging company news.
func WithDedupThreshold(t float64) FeedOption {
	return func(f *Feed) { f.dedup = t }
}

// WithFeedLogger sets the logger.
func WithFeedLogger(l *slog.Logger) FeedOption {
	return func(f *Feed) { f.logger = l }
}

// NewFeed creates a Feed over sources; nil sources means DefaultSources.
func NewFeed(sources []Source, opts ...FeedOption) *Feed {
	if sources == nil {
		sources = DefaultSources
	}
	f := &Feed{
		sources:     sources,
		client:      &http.Client{Timeout: DefaultTimeout},
		parser:      gofeed.NewParser(),
		cache:       NewCache[[]models.Article](10 * time.Minute),
		limiter:     rate.NewLimiter(2, 1), // conservative: 2 req/s
		dedup:       batch.DefaultDedupThreshold,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Sources returns the configured sources.
func (f *Feed) Sources() []Source { return f.sources }

// GetGeneralNews reads every source concurrently, taking up to
// limitPerSource articles from each source split evenly over its feeds.
// Failing sources are logged and skipped; an error is returned only when
// every source fails.
func (f *Feed) GetGeneralNews(ctx context.Context, limitPerSource int) ([]models.Article, error) {
	cacheKey := fmt.Sprintf("general:%d", limitPerSource)
	if cached, ok := f.cache.Get(cacheKey); ok {
		return cached, nil
	}

	perSource := make([][]models.Article, len(f.sources))
	errs := make([]error, len(f.sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, src := range f.sources {
		g.Go(func() error {
			articles, err := f.fetchSource(gctx, src, limitPerSource)
			if err != nil {
				f.logger.Error("fetch source failed", "source", src.Name, "error", err)
				errs[i] = fmt.Errorf("%s: %w", src.Name, err)
			} else {
				f.logger.Info("fetched source", "source", src.Name, "articles", len(articles))
			}
			perSource[i] = articles
			return nil // non-fatal
		})
	}
	_ = g.Wait()

	var all []models.Article
	failures := 0
	for i := range f.sources {
		all = append(all, perSource[i]...)
		if errs[i] != nil {
			failures++
		}
	}
	if len(f.sources) > 0 && failures == len(f.sources) {
		return nil, fmt.Errorf("%w: %w", ErrAllSourcesFailed, errors.Join(errs...))
	}

	f.cache.Set(cacheKey, all)
	return all, nil
}

// GetCompanyNews returns, for each company name, the general news items
// whose title or description mention one of the name's variants,
// deduplicated by title and truncated to maxPerCompany.
func (f *Feed) GetCompanyNews(ctx context.Context, names []string, limitPerSource, maxPerCompany int) (map[string][]models.Article, error) {
	general, err := f.GetGeneralNews(ctx, limitPerSource)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]models.Article, len(names))
	for _, name := range names {
		variants := searchTerms(name)
		var hits []models.Article
		for _, a := range general {
			if mentions(a.Title+" "+a.Description, variants) {
				hits = append(hits, a)
			}
		}
		hits = batch.Deduplicate(hits, f.dedup)
		if maxPerCompany > 0 && len(hits) > maxPerCompany {
			hits = hits[:maxPerCompany]
		}
		out[name] = hits
		f.logger.Debug("company news", "company", name, "articles", len(hits))
	}
	return out, nil
}

// searchTerms returns the lower-cased variants of name long enough to search for.
func searchTerms(name string) []string {
	var terms []string
	for _, v := range company.Variants(name) {
		if len(v) > 2 {
			terms = append(terms, strings.ToLower(v))
		}
	}
	return terms
}

func mentions(text string, terms []string) bool {
	lower := strings.ToLower(text)
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// --- Internal helpers ---

func (f *Feed) fetchSource(ctx context.Context, src Source, limit int) ([]models.Article, error) {
	if len(src.RSSFeeds) == 0 {
		return nil, nil
	}
	perFeed := limit / len(src.RSSFeeds)

	var articles []models.Article
	var errs []error
	for _, url := range src.RSSFeeds {
		items, err := f.fetchRSS(ctx, src, url)
		if err != nil {
			f.logger.Warn("parse RSS feed failed", "feed", url, "error", err)
			errs = append(errs, err)
			continue
		}
		if limit > 0 && len(items) > perFeed {
			items = items[:perFeed]
		}
		articles = append(articles, items...)
	}
	if len(errs) == len(src.RSSFeeds) {
		return nil, errors.Join(errs...)
	}
	return articles, nil
}

// fetchRSS parses one RSS feed into articles.
func (f *Feed) fetchRSS(ctx context.Context, src Source, url string) ([]models.Article, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := doGet(ctx, f.client, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := f.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", url, err)
	}

	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.Article{
			ID:          item.GUID,
			URL:         item.Link,
			Title:       strings.TrimSpace(item.Title),
			Source:      src.Name,
			SourceURL:   url,
			Description: cleanHTML(item.Description),
			Content:     cleanHTML(item.Content),
		}
		if item.PublishedParsed != nil {
			t := *item.PublishedParsed
			a.PublishedAt = &t
		}
		for _, p := range item.Authors {
			if p != nil && p.Name != "" {
				a.Authors = append(a.Authors, p.Name)
			}
		}
		articles = append(articles, a)
	}
	return articles, nil
}
