// Package report renders pipeline results as terminal text or as a
// self-contained HTML page with SVG distribution charts.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/seenimoa/nsenews/pkg/models"
	"github.com/seenimoa/nsenews/pkg/utils"
)

// NoDataMessage is the text report for an empty result.
const NoDataMessage = "No data available for report generation."

var (
	// ErrNoData is returned when an HTML report is requested for an empty result.
	ErrNoData = errors.New("report: no data available")
	// ErrUnknownFormat is returned for unsupported report formats.
	ErrUnknownFormat = errors.New("report: unknown format")
)

// Format selects the report renderer.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// ParseFormat maps a user supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Config controls report rendering.
type Config struct {
	Title    string
	TopN     int       // relevant articles listed as insights
	Styled   bool      // colour headings with lipgloss (text only)
	Now      time.Time // generation time, defaults to the current IST time
	maxTitle int
}

// DefaultConfig returns the standard report configuration.
func DefaultConfig() Config {
	return Config{
		Title: "NSE COMPANIES NEWS ANALYSIS REPORT",
		TopN:  5,
	}
}

// ════════════════════════════════════════════════════════════════════
// Report data
// ════════════════════════════════════════════════════════════════════

// DistributionRow is one bucket of a sentiment or impact distribution.
type DistributionRow struct {
	Label string
	Count int
}

// InsightRow is one relevant article in the insights section.
type InsightRow struct {
	Rank            int
	Title           string
	URL             string
	Companies       string
	Sentiment       string
	SentimentScore  string
	SentimentClass  string
	InvestmentScore string
	Relevance       string
	Impact          string
	Source          string
}

// Data is the rendering model shared by the text and HTML reports.
type Data struct {
	Title             string
	GeneratedAt       string
	AnalysisTimestamp string
	ExecutionTime     string
	TotalAnalyzed     string
	Relevant          string
	Scraped           string
	Unique            string
	TargetCompanies   string

	HasSummary       bool
	SummaryError     string
	Sentiment        []DistributionRow
	Impact           []DistributionRow
	AvgSentiment     string
	AvgInvestment    string
	AvgRelevance     string
	avgInvestmentRaw float64
	TopCompanies     []models.CompanyCount
	TopKeywords      []models.KeywordCount
	Insights         []InsightRow
	SentimentChart   template.HTML
	ImpactChart      template.HTML
	InvestmentGauge  template.HTML
}

var (
	sentimentOrder = []models.SentimentLabel{
		models.SentimentPositive, models.SentimentNeutral, models.SentimentNegative,
	}
	impactOrder = []models.ImpactCategory{
		models.ImpactHighlyPositive, models.ImpactPositive, models.ImpactNeutral,
		models.ImpactNegative, models.ImpactHighlyNegative,
	}
)

// IsEmpty reports whether res carries nothing to report on.
func IsEmpty(res models.PipelineResult) bool {
	return res.Timestamp.IsZero() && len(res.Articles) == 0
}

// BuildData converts a pipeline result into the report rendering model.
func BuildData(res models.PipelineResult, cfg Config) Data {
	if cfg.Title == "" {
		cfg.Title = DefaultConfig().Title
	}
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultConfig().TopN
	}
	if cfg.maxTitle == 0 {
		cfg.maxTitle = 80
	}
	now := cfg.Now
	if now.IsZero() {
		now = utils.NowIST()
	}

	d := Data{
		Title:         cfg.Title,
		GeneratedAt:   utils.FormatDateTimeIST(now),
		ExecutionTime: fmt.Sprintf("%.2f seconds", res.ExecutionTimeSeconds),
		TotalAnalyzed: utils.FormatIndian(float64(len(res.Articles))),
		Relevant:      utils.FormatIndian(float64(res.RelevantArticles)),
		Scraped:       utils.FormatIndian(float64(res.TotalArticlesScraped)),
		Unique:        utils.FormatIndian(float64(res.UniqueArticles)),
	}
	d.AnalysisTimestamp = "N/A"
	if !res.Timestamp.IsZero() {
		d.AnalysisTimestamp = utils.FormatDateTimeIST(res.Timestamp)
	}
	if len(res.TargetCompanies) > 0 {
		d.TargetCompanies = strings.Join(res.TargetCompanies, ", ")
	}

	s := res.Summary
	switch {
	case s.Error != "":
		d.SummaryError = s.Error
	case s.ValidArticles > 0:
		d.HasSummary = true
		for _, l := range sentimentOrder {
			if n := s.SentimentDistribution[l]; n > 0 {
				d.Sentiment = append(d.Sentiment, DistributionRow{Label: string(l), Count: n})
			}
		}
		for _, c := range impactOrder {
			if n := s.ImpactDistribution[c]; n > 0 {
				d.Impact = append(d.Impact, DistributionRow{Label: string(c), Count: n})
			}
		}
		d.AvgSentiment = utils.FormatScore(s.AverageSentiment)
		d.AvgInvestment = utils.FormatScore(s.AverageInvestment)
		d.AvgRelevance = utils.FormatScore(s.AverageRelevance)
		d.avgInvestmentRaw = s.AverageInvestment
		d.TopCompanies = s.TopCompanies
		d.TopKeywords = s.TopKeywords
	}

	top := res.RelevantOnly
	if len(top) > cfg.TopN {
		top = top[:cfg.TopN]
	}
	for i, a := range top {
		d.Insights = append(d.Insights, insightRow(i+1, a, cfg.maxTitle))
	}
	return d
}

func insightRow(rank int, a models.Analysis, maxTitle int) InsightRow {
	title := a.Title
	if title == "" {
		title = "No Title"
	}
	source := a.Source
	if source == "" {
		source = "N/A"
	}
	companies := "N/A"
	if syms := a.Symbols(); len(syms) > 0 {
		companies = strings.Join(syms[:min(3, len(syms))], ", ")
	}

	score := a.SentimentScore()
	class := ""
	switch {
	case score > 0:
		class = "positive"
	case score < 0:
		class = "negative"
	}

	return InsightRow{
		Rank:            rank,
		Title:           truncateTitle(title, maxTitle),
		URL:             a.URL,
		Companies:       companies,
		Sentiment:       string(a.SentimentLabel()),
		SentimentScore:  fmt.Sprintf("%.2f", score),
		SentimentClass:  class,
		InvestmentScore: utils.FormatScore(a.InvestmentScore()),
		Relevance:       utils.FormatScore(a.RelevanceScore()),
		Impact:          string(a.Impact()),
		Source:          source,
	}
}

// truncateTitle cuts s to n runes, marking the cut with an ellipsis.
func truncateTitle(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// ════════════════════════════════════════════════════════════════════
// Renderers
// ════════════════════════════════════════════════════════════════════

// Render renders res as a plain-text report with the default config.
func Render(res models.PipelineResult) string {
	return RenderText(res, DefaultConfig())
}

// Generate renders res in the requested format.
func Generate(res models.PipelineResult, format Format, cfg Config) (string, error) {
	switch format {
	case FormatText, "":
		return RenderText(res, cfg), nil
	case FormatHTML:
		return RenderHTML(res, cfg)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// RenderText renders res as a terminal report. An empty result yields
// NoDataMessage.
func RenderText(res models.PipelineResult, cfg Config) string {
	if IsEmpty(res) {
		return NoDataMessage
	}
	return renderTextReport(BuildData(res, cfg), newPalette(cfg.Styled))
}

// RenderHTML renders res as a standalone HTML page.
func RenderHTML(res models.PipelineResult, cfg Config) (string, error) {
	if IsEmpty(res) {
		return "", ErrNoData
	}

	d := BuildData(res, cfg)
	if d.HasSummary {
		d.SentimentChart = template.HTML(SentimentChart(d.Sentiment))
		d.ImpactChart = template.HTML(ImpactChart(d.Impact))
		d.InvestmentGauge = template.HTML(GaugeChart(d.avgInvestmentRaw, "Avg Investment Score", 200))
	}

	tmpl, err := template.New("report").Parse(ReportTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// --- Terminal styling ---

type palette struct {
	title, heading, positive, negative, muted lipgloss.Style
	styled                                    bool
}

func newPalette(styled bool) palette {
	return palette{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		heading:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2563EB")),
		positive: lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A")),
		negative: lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		styled:   styled,
	}
}

func (p palette) paint(st lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return st.Render(s)
}

func (p palette) sentiment(s, class string) string {
	switch class {
	case "positive":
		return p.paint(p.positive, s)
	case "negative":
		return p.paint(p.negative, s)
	}
	return s
}

func renderTextReport(d Data, p palette) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 30)

	sb.WriteString(line + "\n")
	sb.WriteString(p.paint(p.title, d.Title) + "\n")
	sb.WriteString(line + "\n")
	sb.WriteString(fmt.Sprintf("Generated on: %s\n", d.GeneratedAt))
	sb.WriteString(fmt.Sprintf("Analysis timestamp: %s\n", d.AnalysisTimestamp))
	sb.WriteString(fmt.Sprintf("Execution time: %s\n", d.ExecutionTime))
	if d.TargetCompanies != "" {
		sb.WriteString(fmt.Sprintf("Target companies: %s\n", d.TargetCompanies))
	}
	sb.WriteString("\n")

	sb.WriteString(p.paint(p.heading, "SUMMARY:") + "\n")
	sb.WriteString(fmt.Sprintf("  Total articles analyzed: %s\n", d.TotalAnalyzed))
	sb.WriteString(fmt.Sprintf("  Relevant articles: %s\n", d.Relevant))
	sb.WriteString("\n")

	if d.SummaryError != "" {
		sb.WriteString(p.paint(p.muted, fmt.Sprintf("Summary unavailable: %s", d.SummaryError)) + "\n\n")
	}
	if d.HasSummary {
		writeDist := func(title string, rows []DistributionRow) {
			sb.WriteString(p.paint(p.heading, title) + "\n")
			if len(rows) == 0 {
				sb.WriteString("  none\n")
			}
			for _, r := range rows {
				sb.WriteString(fmt.Sprintf("  %s: %d\n", r.Label, r.Count))
			}
			sb.WriteString("\n")
		}
		writeDist("SENTIMENT DISTRIBUTION:", d.Sentiment)
		writeDist("IMPACT DISTRIBUTION:", d.Impact)
		sb.WriteString(fmt.Sprintf("Average Sentiment Score: %s\n", d.AvgSentiment))
		sb.WriteString(fmt.Sprintf("Average Investment Score: %s\n", d.AvgInvestment))
		sb.WriteString("\n")
	}

	if len(d.Insights) > 0 {
		sb.WriteString(p.paint(p.heading, "TOP INVESTMENT INSIGHTS:") + "\n")
		sb.WriteString(thinLine + "\n")
		for _, in := range d.Insights {
			sb.WriteString(fmt.Sprintf("%d. %s\n", in.Rank, in.Title))
			sb.WriteString(fmt.Sprintf("   Companies: %s\n", in.Companies))
			sb.WriteString(fmt.Sprintf("   Sentiment: %s\n",
				p.sentiment(fmt.Sprintf("%s (%s)", in.Sentiment, in.SentimentScore), in.SentimentClass)))
			sb.WriteString(fmt.Sprintf("   Investment Score: %s\n", in.InvestmentScore))
			sb.WriteString(fmt.Sprintf("   Source: %s\n", in.Source))
			sb.WriteString("\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}
