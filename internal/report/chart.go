package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/nsenews/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// SVG charts for the HTML report
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 640)
	Height       int    // SVG height in pixels (default: 260)
	MarginTop    int    // top margin
	MarginRight  int    // right margin
	MarginBottom int    // bottom margin
	MarginLeft   int    // left margin, wide enough for category labels
	BgColor      string // background color
	TextColor    string // label color
	FontSize     int    // label font size
	Title        string // chart title
}

// DefaultChartConfig returns the defaults used by the HTML report.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        640,
		Height:       260,
		MarginTop:    40,
		MarginRight:  60,
		MarginBottom: 20,
		MarginLeft:   130,
		BgColor:      "#ffffff",
		TextColor:    "#333333",
		FontSize:     12,
	}
}

func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// BarItem is a single bar in a horizontal bar chart.
type BarItem struct {
	Label string
	Value float64
	Color string // optional
}

// Colors per sentiment label and impact category.
var (
	sentimentColors = map[models.SentimentLabel]string{
		models.SentimentPositive: "#16a34a",
		models.SentimentNeutral:  "#9ca3af",
		models.SentimentNegative: "#dc2626",
	}
	impactColors = map[models.ImpactCategory]string{
		models.ImpactHighlyPositive: "#15803d",
		models.ImpactPositive:       "#4ade80",
		models.ImpactNeutral:        "#9ca3af",
		models.ImpactNegative:       "#f87171",
		models.ImpactHighlyNegative: "#b91c1c",
	}
)

// HorizontalBarChart renders non-negative values as horizontal bars
// scaled to the largest value.
func HorizontalBarChart(items []BarItem, cfg ChartConfig) string {
	if len(items) == 0 {
		return emptySVG(cfg, "No data")
	}
	if cfg.Width == 0 {
		title := cfg.Title
		cfg = DefaultChartConfig()
		cfg.Title = title
	}

	px, py, pw, ph := cfg.plotArea()

	maxVal := 0.0
	for _, item := range items {
		maxVal = math.Max(maxVal, item.Value)
	}
	if maxVal <= 0 {
		maxVal = 1
	}

	barH := math.Min(float64(ph)/float64(len(items))*0.7, 30)
	gap := (float64(ph) - barH*float64(len(items))) / float64(len(items)+1)

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	if cfg.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="22" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
			cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))
	}

	for i, item := range items {
		by := float64(py) + gap + float64(i)*(barH+gap)
		bw := math.Max(item.Value, 0) / maxVal * float64(pw)
		color := item.Color
		if color == "" {
			color = "#2563eb"
		}

		sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="2"/>`,
			px, by, bw, barH, color))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-6, by+barH/2+4, cfg.FontSize, cfg.TextColor, escapeXML(item.Label)))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-size="%d" fill="%s">%s</text>`,
			float64(px)+bw+6, by+barH/2+4, cfg.FontSize, cfg.TextColor, formatBarValue(item.Value)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SentimentChart charts a sentiment distribution in label order.
func SentimentChart(rows []DistributionRow) string {
	cfg := DefaultChartConfig()
	cfg.Title = "Sentiment Distribution"
	items := make([]BarItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, BarItem{Label: r.Label, Value: float64(r.Count),
			Color: sentimentColors[models.SentimentLabel(r.Label)]})
	}
	return HorizontalBarChart(items, cfg)
}

// ImpactChart charts an impact distribution in category order.
func ImpactChart(rows []DistributionRow) string {
	cfg := DefaultChartConfig()
	cfg.Title = "Impact Distribution"
	items := make([]BarItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, BarItem{Label: r.Label, Value: float64(r.Count),
			Color: impactColors[models.ImpactCategory(r.Label)]})
	}
	return HorizontalBarChart(items, cfg)
}

// GaugeChart renders a semicircular gauge for a score in [0,1].
func GaugeChart(score float64, label string, width int) string {
	if width == 0 {
		width = 200
	}
	height := width/2 + 30

	cx := float64(width) / 2
	cy := float64(width)/2 - 10
	radius := float64(width)/2 - 20

	score = math.Max(0, math.Min(1, score))

	var color string
	switch {
	case score < 0.3:
		color = "#ef5350"
	case score < 0.5:
		color = "#ff9800"
	case score < 0.7:
		color = "#ffc107"
	default:
		color = "#4caf50"
	}

	angle := math.Pi - score*math.Pi
	endX := cx + radius*math.Cos(angle)
	endY := cy - radius*math.Sin(angle)
	needleX := cx + radius*0.85*math.Cos(angle)
	needleY := cy - radius*0.85*math.Sin(angle)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height))
	sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="white"/>`, width, height))
	sb.WriteString(fmt.Sprintf(`<path d="M%.1f,%.1f A%.1f,%.1f 0 0,1 %.1f,%.1f" fill="none" stroke="#e0e0e0" stroke-width="12" stroke-linecap="round"/>`,
		cx-radius, cy, radius, radius, cx+radius, cy))
	// The arc never spans more than 180 degrees, so large-arc is always 0.
	sb.WriteString(fmt.Sprintf(`<path d="M%.1f,%.1f A%.1f,%.1f 0 0,1 %.1f,%.1f" fill="none" stroke="%s" stroke-width="12" stroke-linecap="round"/>`,
		cx-radius, cy, radius, radius, endX, endY, color))
	sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333" stroke-width="2"/>`,
		cx, cy, needleX, needleY))
	sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="5" fill="#333"/>`, cx, cy))
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-size="20" font-weight="bold" fill="%s" text-anchor="middle">%.3f</text>`,
		cx, cy+25, color, score))
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="11" fill="#666" text-anchor="middle">%s</text>`,
		cx, height-5, escapeXML(label)))
	sb.WriteString("</svg>")
	return sb.String()
}

// --- SVG helpers ---

func formatBarValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
