package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/nsenews/pkg/models"
)

// minParagraphLength filters navigation crumbs and captions out of the
// extracted article body.
const minParagraphLength = 40

// Enrich downloads the page of every article hosted by a configured source
// and merges the page's title, body text, publish time and authors into
// it. Articles that cannot be fetched or parsed are returned unchanged.
// The result keeps input order.
func (f *Feed) Enrich(ctx context.Context, articles []models.Article) []models.Article {
	out := make([]models.Article, len(articles))
	copy(out, articles)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i := range out {
		if !f.hosted(out[i].URL) {
			continue
		}
		g.Go(func() error {
			page, err := f.fetchPage(gctx, out[i].URL)
			if err != nil {
				f.logger.Debug("enrich article failed", "url", out[i].URL, "error", err)
				return nil
			}
			out[i] = merge(out[i], page)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (f *Feed) hosted(url string) bool {
	if url == "" {
		return false
	}
	for _, src := range f.sources {
		if src.BaseURL != "" && strings.HasPrefix(url, src.BaseURL) {
			return true
		}
	}
	return false
}

// page is the content extracted from an article's HTML page.
type page struct {
	title       string
	content     string
	publishedAt *time.Time
	authors     []string
}

func (f *Feed) fetchPage(ctx context.Context, url string) (page, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return page{}, err
	}
	body, err := doGet(ctx, f.client, url)
	if err != nil {
		return page{}, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return page{}, fmt.Errorf("parse page %s: %w", url, err)
	}
	return extractPage(doc), nil
}

func extractPage(doc *goquery.Document) page {
	var p page

	p.title = strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	if p.title == "" {
		p.title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if p.title == "" {
		p.title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	scope := doc.Find("article")
	if scope.Length() == 0 {
		scope = doc.Selection
	}
	var paras []string
	scope.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if len(text) >= minParagraphLength {
			paras = append(paras, text)
		}
	})
	p.content = strings.Join(paras, "\n")

	for _, sel := range []string{`meta[property="article:published_time"]`, `meta[name="publish-date"]`} {
		if v, ok := doc.Find(sel).Attr("content"); ok {
			if t, err := time.Parse(time.RFC3339, strings.TrimSpace(v)); err == nil {
				p.publishedAt = &t
				break
			}
		}
	}

	doc.Find(`meta[name="author"]`).Each(func(_ int, s *goquery.Selection) {
		if v := strings.TrimSpace(s.AttrOr("content", "")); v != "" {
			p.authors = append(p.authors, v)
		}
	})

	return p
}

// merge overlays the non-empty page fields onto a.
func merge(a models.Article, p page) models.Article {
	if p.title != "" {
		a.Title = p.title
	}
	if p.content != "" {
		a.Content = p.content
	}
	if p.publishedAt != nil {
		a.PublishedAt = p.publishedAt
	}
	if len(p.authors) > 0 {
		a.Authors = p.authors
	}
	return a
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
