package report

// ReportTemplate is the HTML template for the news analysis report.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 960px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { font-size: 1.5rem; color: var(--accent); margin-bottom: 4px; }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  .muted { color: var(--muted); font-size: 0.85rem; }
  .header { border-bottom: 3px solid var(--accent); padding-bottom: 12px; margin-bottom: 16px; }

  .stat-bar {
    display: grid;
    grid-template-columns: repeat(auto-fill, minmax(150px, 1fr));
    gap: 8px;
    background: var(--section-bg);
    padding: 12px;
    border-radius: 8px;
    margin-bottom: 16px;
  }
  .stat-item { text-align: center; }
  .stat-item .label { font-size: 0.75rem; color: var(--muted); text-transform: uppercase; }
  .stat-item .value { font-size: 1.05rem; font-weight: 600; }
  .positive { color: var(--green); }
  .negative { color: var(--red); }

  table { width: 100%; border-collapse: collapse; margin: 8px 0 16px; font-size: 0.9rem; }
  th { background: var(--section-bg); text-align: left; padding: 8px; font-weight: 600; }
  td { padding: 8px; border-bottom: 1px solid var(--border); vertical-align: top; }
  a { color: var(--accent); text-decoration: none; }

  .chart-row { display: flex; flex-wrap: wrap; gap: 12px; align-items: center; }
  .chart-container { margin: 12px 0; overflow-x: auto; }
  .chart-container svg { max-width: 100%; height: auto; }
  .notice { background: #fefce8; border-left: 5px solid #eab308; padding: 12px; border-radius: 6px; }

  .footer {
    margin-top: 30px;
    padding-top: 12px;
    border-top: 2px solid var(--border);
    font-size: 0.8rem;
    color: var(--muted);
    text-align: center;
  }
  @media print {
    body { max-width: 100%; padding: 10px; }
    .section { page-break-inside: avoid; }
  }
</style>
</head>
<body>

<div class="header">
  <h1>{{.Title}}</h1>
  <p class="muted">Generated on {{.GeneratedAt}} · Analysis timestamp {{.AnalysisTimestamp}} · Execution time {{.ExecutionTime}}</p>
  {{if .TargetCompanies}}<p class="muted">Target companies: {{.TargetCompanies}}</p>{{end}}
</div>

<div class="stat-bar">
  <div class="stat-item"><div class="label">Scraped</div><div class="value">{{.Scraped}}</div></div>
  <div class="stat-item"><div class="label">Unique</div><div class="value">{{.Unique}}</div></div>
  <div class="stat-item"><div class="label">Analyzed</div><div class="value">{{.TotalAnalyzed}}</div></div>
  <div class="stat-item"><div class="label">Relevant</div><div class="value">{{.Relevant}}</div></div>
  {{if .HasSummary}}
  <div class="stat-item"><div class="label">Avg Sentiment</div><div class="value">{{.AvgSentiment}}</div></div>
  <div class="stat-item"><div class="label">Avg Relevance</div><div class="value">{{.AvgRelevance}}</div></div>
  <div class="stat-item"><div class="label">Avg Investment</div><div class="value">{{.AvgInvestment}}</div></div>
  {{end}}
</div>

{{if .SummaryError}}
<div class="notice">Summary unavailable: {{.SummaryError}}</div>
{{end}}

{{if .HasSummary}}
<div class="section">
  <h2>Distributions</h2>
  <div class="chart-row">
    <div class="chart-container">{{.SentimentChart}}</div>
    <div class="chart-container">{{.ImpactChart}}</div>
    <div class="chart-container">{{.InvestmentGauge}}</div>
  </div>
</div>

{{if .TopCompanies}}
<div class="section">
  <h2>Most Mentioned Companies</h2>
  <table>
    <thead><tr><th>Symbol</th><th>Mentions</th></tr></thead>
    <tbody>
    {{range .TopCompanies}}<tr><td>{{.Symbol}}</td><td>{{.Count}}</td></tr>
    {{end}}
    </tbody>
  </table>
</div>
{{end}}

{{if .TopKeywords}}
<div class="section">
  <h2>Top Keywords</h2>
  <table>
    <thead><tr><th>Keyword</th><th>Category</th><th>Articles</th></tr></thead>
    <tbody>
    {{range .TopKeywords}}<tr><td>{{.Keyword}}</td><td>{{.Category}}</td><td>{{.Count}}</td></tr>
    {{end}}
    </tbody>
  </table>
</div>
{{end}}
{{end}}

{{if .Insights}}
<div class="section">
  <h2>Top Investment Insights</h2>
  <table>
    <thead><tr><th>#</th><th>Article</th><th>Companies</th><th>Sentiment</th><th>Impact</th><th>Investment</th><th>Source</th></tr></thead>
    <tbody>
    {{range .Insights}}
    <tr>
      <td>{{.Rank}}</td>
      <td>{{if .URL}}<a href="{{.URL}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}</td>
      <td>{{.Companies}}</td>
      <td class="{{.SentimentClass}}">{{.Sentiment}} ({{.SentimentScore}})</td>
      <td>{{.Impact}}</td>
      <td>{{.InvestmentScore}}</td>
      <td>{{.Source}}</td>
    </tr>
    {{end}}
    </tbody>
  </table>
</div>
{{end}}

<div class="footer">
  Scores are derived from headline and body text only. Not investment advice.
</div>

</body>
</html>
`
