package report

// ReportTemplate is the HTML template for the valuation report.
// It is embedded as a Go constant — no external file dependencies.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #0f1419;
    --panel: #1a2029;
    --border: #2a3544;
    --text: #d8dee9;
    --muted: #7a8699;
    --accent: #4fa3ff;
    --green: #3fb950;
    --red: #f85149;
    --amber: #d29922;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    background: var(--bg);
    color: var(--text);
    font-family: -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
    line-height: 1.5;
    padding: 2rem;
    max-width: 860px;
    margin: 0 auto;
  }
  header { border-bottom: 2px solid var(--border); padding-bottom: 1rem; margin-bottom: 1.5rem; }
  h1 { font-size: 1.5rem; }
  .meta { color: var(--muted); font-size: 0.85rem; margin-top: 0.25rem; }
  .panel {
    background: var(--panel);
    border: 1px solid var(--border);
    border-radius: 8px;
    padding: 1.25rem;
    margin-bottom: 1.25rem;
  }
  h2 { font-size: 1rem; color: var(--accent); margin-bottom: 0.75rem; text-transform: uppercase; letter-spacing: 0.05em; }
  table { width: 100%; border-collapse: collapse; font-size: 0.9rem; }
  th, td { text-align: left; padding: 0.4rem 0.6rem; border-bottom: 1px solid var(--border); }
  th { color: var(--muted); font-weight: 600; }
  .valid { color: var(--green); }
  .blocked { color: var(--red); }
  .badge {
    display: inline-block;
    padding: 0.3rem 0.9rem;
    border-radius: 999px;
    font-weight: 700;
    font-size: 1.05rem;
  }
  .strong-buy, .buy { background: rgba(63,185,80,0.15); color: var(--green); }
  .hold, .neutral { background: rgba(210,153,34,0.15); color: var(--amber); }
  .sell, .strong-sell { background: rgba(248,81,73,0.15); color: var(--red); }
  .kv { display: grid; grid-template-columns: 180px 1fr; gap: 0.25rem 1rem; font-size: 0.9rem; }
  .kv dt { color: var(--muted); }
  .warning { color: var(--amber); font-size: 0.85rem; padding: 0.2rem 0; }
  .block-note { color: var(--red); font-weight: 600; }
  footer { color: var(--muted); font-size: 0.75rem; border-top: 1px solid var(--border); padding-top: 1rem; margin-top: 1.5rem; }
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <div class="meta">{{.Ticker}} &middot; Current Price {{.CurrentPrice}} &middot; Generated {{.GeneratedAt}} &middot; {{.Author}}</div>
</header>

{{if .Blocked}}
<div class="panel">
  <h2>Valuation Blocked</h2>
  <p class="block-note">{{.Blocked}}</p>
</div>
{{end}}

{{if .Scenarios}}
<div class="panel">
  <h2>Scenarios{{if .Partial}} (partial){{end}}</h2>
  <table>
    <tr><th>Scenario</th><th>Prob.</th><th>Fair Value</th><th>Upside</th><th>Discount</th><th>Terminal g</th><th>Status</th></tr>
    {{range .Scenarios}}
    <tr>
      <td>{{.Name}}</td>
      <td>{{.Probability}}</td>
      <td>{{.FairValue}}</td>
      <td>{{.Upside}}</td>
      <td>{{.DiscountRate}}</td>
      <td>{{.TerminalGrowth}}</td>
      <td class="{{.StatusClass}}">{{.Status}}{{if .Diagnostic}} &mdash; {{.Diagnostic}}{{end}}</td>
    </tr>
    {{end}}
  </table>
</div>
{{end}}

{{if .HasRecommendation}}
<div class="panel">
  <h2>Recommendation</h2>
  <p><span class="badge {{.RecommendationClass}}">{{.Recommendation}}</span></p>
  <dl class="kv" style="margin-top: 0.75rem;">
    <dt>Confidence</dt><dd>{{.Confidence}}</dd>
    <dt>Weighted Fair Value</dt><dd>{{.WeightedFairValue}} ({{.WeightedUpside}})</dd>
    <dt>Downside Risk</dt><dd>{{.DownsideRisk}}</dd>
    <dt>Upside Potential</dt><dd>{{.UpsidePotential}}</dd>
    <dt>Risk / Reward</dt><dd>{{.RiskReward}}</dd>
  </dl>
</div>
{{end}}

{{if .Warnings}}
<div class="panel">
  <h2>Warnings</h2>
  {{range .Warnings}}
  <div class="warning">[{{.Code}}] {{.Message}}</div>
  {{end}}
</div>
{{end}}

<footer>
  Model-derived estimates for research purposes. Not financial advice.
</footer>
</body>
</html>`
