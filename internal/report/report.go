package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/seenimoa/intrinsiq/pkg/models"
	"github.com/seenimoa/intrinsiq/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report Generator — renders a valuation assessment
// ════════════════════════════════════════════════════════════════════

// ReportFormat specifies the output format.
type ReportFormat string

const (
	FormatHTML ReportFormat = "html"
	FormatText ReportFormat = "text"
)

// ReportConfig controls report generation behaviour.
type ReportConfig struct {
	Format ReportFormat // output format (default: text)
	Title  string       // custom report title (optional)
	Author string       // author name (optional)
}

// DefaultReportConfig returns sensible defaults.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Format: FormatText,
		Author: "Intrinsiq",
	}
}

// ════════════════════════════════════════════════════════════════════
// Report Data — flattened for template rendering
// ════════════════════════════════════════════════════════════════════

// ReportData is the template model passed to the HTML template.
type ReportData struct {
	// Header
	Title       string
	Ticker      string
	Author      string
	GeneratedAt string

	// Market context
	CurrentPrice string

	// Scenario table
	Scenarios []ScenarioRow
	Partial   bool

	// Recommendation
	HasRecommendation   bool
	Recommendation      string
	RecommendationClass string // CSS class: strong-buy, buy, hold, sell, strong-sell
	Confidence          string
	WeightedFairValue   string
	WeightedUpside      string
	DownsideRisk        string
	UpsidePotential     string
	RiskReward          string

	// Diagnostics
	Blocked  string // top-level blocking diagnostic, empty when none
	Warnings []WarningRow
}

// ScenarioRow is one flattened scenario outcome.
type ScenarioRow struct {
	Name           string
	Probability    string
	FairValue      string
	Upside         string
	DiscountRate   string
	TerminalGrowth string
	Status         string
	StatusClass    string // CSS class: valid, blocked
	Diagnostic     string
}

// WarningRow is a flattened warning for display.
type WarningRow struct {
	Code    string
	Message string
}

// ════════════════════════════════════════════════════════════════════
// Generate
// ════════════════════════════════════════════════════════════════════

// GenerateHTML renders an HTML valuation report from an assessment.
func GenerateHTML(a *models.Assessment, cfg ReportConfig) (string, error) {
	if a == nil {
		return "", fmt.Errorf("assessment is nil")
	}

	data := buildReportData(a, cfg)

	tmpl, err := template.New("report").Parse(ReportTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// GenerateText renders a plain-text report (terminal / CLI friendly).
func GenerateText(a *models.Assessment, cfg ReportConfig) (string, error) {
	if a == nil {
		return "", fmt.Errorf("assessment is nil")
	}
	return renderTextReport(buildReportData(a, cfg)), nil
}

// ════════════════════════════════════════════════════════════════════
// Internal — build template data
// ════════════════════════════════════════════════════════════════════

func buildReportData(a *models.Assessment, cfg ReportConfig) ReportData {
	data := ReportData{
		Title:        cfg.Title,
		Ticker:       a.Ticker,
		Author:       cfg.Author,
		GeneratedAt:  a.GeneratedAt.Format("02 Jan 2006, 15:04 MST"),
		CurrentPrice: utils.FormatUSD(a.CurrentPrice),
	}
	if data.Title == "" {
		data.Title = fmt.Sprintf("%s — Intrinsic Value Report", a.Ticker)
	}
	if a.Blocked != nil {
		data.Blocked = a.Blocked.Error()
	}

	if a.Scenarios != nil {
		data.Partial = a.Scenarios.Partial
		for _, id := range models.Scenarios() {
			res, ok := a.Scenarios.Results[id]
			if !ok {
				continue
			}
			row := ScenarioRow{
				Name:           scenarioName(id),
				Probability:    fmt.Sprintf("%.0f%%", a.Scenarios.Probabilities[id]*100),
				FairValue:      utils.FormatUSD(res.FairValue),
				Upside:         utils.FormatPct(res.Upside),
				DiscountRate:   fmt.Sprintf("%.2f%%", res.DiscountRate*100),
				TerminalGrowth: fmt.Sprintf("%.2f%%", res.TerminalGrowth*100),
				Status:         strings.ToUpper(string(res.Status)),
				StatusClass:    string(res.Status),
			}
			if res.Blocked != nil {
				row.Diagnostic = res.Blocked.Error()
			}
			data.Scenarios = append(data.Scenarios, row)
			for _, w := range res.Warnings {
				data.Warnings = append(data.Warnings, WarningRow{Code: string(w.Code), Message: w.Message})
			}
		}
	}

	if rec := a.Recommendation; rec != nil {
		data.HasRecommendation = true
		data.Recommendation = recommendationName(rec.Label)
		data.RecommendationClass = recommendationClass(rec.Label)
		data.Confidence = string(rec.Confidence)
		data.WeightedFairValue = utils.FormatUSD(rec.WeightedFairValue)
		data.WeightedUpside = utils.FormatPct(rec.WeightedUpside)
		data.DownsideRisk = utils.FormatPct(rec.DownsideRisk)
		data.UpsidePotential = utils.FormatPct(rec.UpsidePotential)
		data.RiskReward = fmt.Sprintf("%.2f", rec.RiskReward)
	}

	return data
}

func scenarioName(id models.ScenarioID) string {
	switch id {
	case models.ScenarioPessimistic:
		return "Pessimistic"
	case models.ScenarioBase:
		return "Base"
	case models.ScenarioOptimistic:
		return "Optimistic"
	default:
		return string(id)
	}
}

func recommendationName(r models.RecommendationLabel) string {
	switch r {
	case models.StrongBuy:
		return "Strong Buy"
	case models.Buy:
		return "Buy"
	case models.Hold:
		return "Hold"
	case models.Sell:
		return "Sell"
	case models.StrongSell:
		return "Strong Sell"
	default:
		return string(r)
	}
}

func recommendationClass(r models.RecommendationLabel) string {
	switch r {
	case models.StrongBuy:
		return "strong-buy"
	case models.Buy:
		return "buy"
	case models.Hold:
		return "hold"
	case models.Sell:
		return "sell"
	case models.StrongSell:
		return "strong-sell"
	default:
		return "neutral"
	}
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

func renderTextReport(d ReportData) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", d.Title))
	sb.WriteString(fmt.Sprintf("  Generated: %s | Author: %s\n", d.GeneratedAt, d.Author))
	sb.WriteString(line + "\n\n")

	sb.WriteString(fmt.Sprintf("  %s | Current Price: %s\n", d.Ticker, d.CurrentPrice))
	sb.WriteString(thinLine + "\n")

	if d.Blocked != "" {
		sb.WriteString("\n  ✖ VALUATION BLOCKED\n")
		sb.WriteString(fmt.Sprintf("  %s\n", d.Blocked))
		sb.WriteString(thinLine + "\n")
	}

	if len(d.Scenarios) > 0 {
		sb.WriteString("\n  ■ SCENARIOS\n")
		for _, s := range d.Scenarios {
			sb.WriteString(fmt.Sprintf("    %-12s (%s)  Fair: %s  Upside: %s  r: %s  g: %s  [%s]\n",
				s.Name, s.Probability, s.FairValue, s.Upside, s.DiscountRate, s.TerminalGrowth, s.Status))
			if s.Diagnostic != "" {
				sb.WriteString(fmt.Sprintf("      ! %s\n", s.Diagnostic))
			}
		}
		if d.Partial {
			sb.WriteString("    (partial result: at least one scenario blocked)\n")
		}
		sb.WriteString(thinLine + "\n")
	}

	if d.HasRecommendation {
		sb.WriteString("\n  ★ RECOMMENDATION\n")
		sb.WriteString(fmt.Sprintf("  %s (Confidence: %s)\n", d.Recommendation, d.Confidence))
		sb.WriteString(fmt.Sprintf("  Weighted Fair Value: %s (%s)\n", d.WeightedFairValue, d.WeightedUpside))
		sb.WriteString(fmt.Sprintf("  Downside: %s | Upside: %s | Risk/Reward: %s\n",
			d.DownsideRisk, d.UpsidePotential, d.RiskReward))
		sb.WriteString(thinLine + "\n")
	}

	if len(d.Warnings) > 0 {
		sb.WriteString("\n  ■ WARNINGS\n")
		for _, w := range d.Warnings {
			sb.WriteString(fmt.Sprintf("    [%s] %s\n", w.Code, w.Message))
		}
		sb.WriteString(thinLine + "\n")
	}

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  Disclaimer: Model-derived estimates for research purposes.\n")
	sb.WriteString("  Not financial advice.\n")
	sb.WriteString(line + "\n")

	return sb.String()
}
