package report

import (
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/intrinsiq/pkg/models"
)

func sampleAssessment() *models.Assessment {
	set := &models.ScenarioSet{
		Ticker: "ACME",
		Results: map[models.ScenarioID]*models.ValuationResult{
			models.ScenarioPessimistic: {
				Scenario:       models.ScenarioPessimistic,
				Status:         models.StatusValid,
				FairValue:      64.05,
				Upside:         0.28,
				DiscountRate:   0.1075,
				TerminalGrowth: 0.03,
				Interpretation: "VALID",
			},
			models.ScenarioBase: {
				Scenario:       models.ScenarioBase,
				Status:         models.StatusValid,
				FairValue:      98.43,
				Upside:         0.97,
				DiscountRate:   0.0875,
				TerminalGrowth: 0.04,
				Interpretation: "VALID",
				Warnings: []models.Warning{
					models.Warnf(models.WarnReinvestmentCapped, "growth capped at 8.0%%"),
				},
			},
			models.ScenarioOptimistic: {
				Scenario:       models.ScenarioOptimistic,
				Status:         models.StatusValid,
				FairValue:      136.10,
				Upside:         1.72,
				DiscountRate:   0.0775,
				TerminalGrowth: 0.045,
				Interpretation: "VALID",
			},
		},
		Probabilities: map[models.ScenarioID]float64{
			models.ScenarioPessimistic: 0.25,
			models.ScenarioBase:        0.50,
			models.ScenarioOptimistic:  0.25,
		},
	}
	return &models.Assessment{
		Ticker:       "ACME",
		CurrentPrice: 50,
		Scenarios:    set,
		Recommendation: &models.Recommendation{
			WeightedFairValue: 99.2525,
			CurrentPrice:      50,
			WeightedUpside:    0.985,
			DownsideRisk:      0.281,
			UpsidePotential:   1.722,
			RiskReward:        6.13,
			Label:             models.StrongBuy,
			Confidence:        models.ConfidenceHigh,
		},
		GeneratedAt: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
	}
}

func TestGenerateText(t *testing.T) {
	out, err := GenerateText(sampleAssessment(), DefaultReportConfig())
	if err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}

	for _, want := range []string{
		"ACME — Intrinsic Value Report",
		"Current Price: $50.00",
		"Pessimistic",
		"Base",
		"Optimistic",
		"$98.43",
		"Strong Buy",
		"Weighted Fair Value: $99.25",
		"[W1001]",
		"Not financial advice",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q", want)
		}
	}
}

func TestGenerateTextScenarioOrder(t *testing.T) {
	out, err := GenerateText(sampleAssessment(), DefaultReportConfig())
	if err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}
	pess := strings.Index(out, "Pessimistic")
	base := strings.Index(out, "Base")
	opt := strings.Index(out, "Optimistic")
	if !(pess < base && base < opt) {
		t.Errorf("scenarios out of order: pess=%d base=%d opt=%d", pess, base, opt)
	}
}

func TestGenerateHTML(t *testing.T) {
	out, err := GenerateHTML(sampleAssessment(), ReportConfig{Format: FormatHTML, Title: "Custom Title"})
	if err != nil {
		t.Fatalf("GenerateHTML failed: %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		"Custom Title",
		"ACME",
		"$136.10",
		"strong-buy",
		"Recommendation",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("html report missing %q", want)
		}
	}
}

func TestGenerateBlockedAssessment(t *testing.T) {
	a := &models.Assessment{
		Ticker:       "ZERO",
		CurrentPrice: 10,
		Scenarios: &models.ScenarioSet{
			Ticker:        "ZERO",
			Results:       map[models.ScenarioID]*models.ValuationResult{},
			Probabilities: map[models.ScenarioID]float64{},
		},
		Blocked:     models.Blockf(models.BlockNoShareData, "diluted shares is 0"),
		GeneratedAt: time.Now().UTC(),
	}

	out, err := GenerateText(a, DefaultReportConfig())
	if err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}
	if !strings.Contains(out, "VALUATION BLOCKED") {
		t.Error("blocked banner missing")
	}
	if !strings.Contains(out, "NO_SHARE_DATA") {
		t.Error("blocking diagnostic missing")
	}
	if strings.Contains(out, "RECOMMENDATION") {
		t.Error("blocked report must not carry a recommendation")
	}
}

func TestGeneratePartialSet(t *testing.T) {
	a := sampleAssessment()
	a.Recommendation = nil
	a.Scenarios.Partial = true
	a.Scenarios.Results[models.ScenarioPessimistic] = &models.ValuationResult{
		Scenario:       models.ScenarioPessimistic,
		Status:         models.StatusBlocked,
		Interpretation: "INVALID",
		Blocked:        models.Blockf(models.BlockDivergentPerpetuity, "growth 3.00%% >= rate 2.75%%"),
	}

	out, err := GenerateText(a, DefaultReportConfig())
	if err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}
	if !strings.Contains(out, "partial result") {
		t.Error("partial note missing")
	}
	if !strings.Contains(out, "DIVERGENT_PERPETUITY") {
		t.Error("per-scenario diagnostic missing")
	}
	if strings.Contains(out, "★ RECOMMENDATION") {
		t.Error("partial report must not carry a recommendation")
	}
}

func TestGenerateNilAssessment(t *testing.T) {
	if _, err := GenerateText(nil, DefaultReportConfig()); err == nil {
		t.Error("expected error for nil assessment")
	}
	if _, err := GenerateHTML(nil, DefaultReportConfig()); err == nil {
		t.Error("expected error for nil assessment")
	}
}
