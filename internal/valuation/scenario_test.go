package valuation

import (
	"math"
	"reflect"
	"testing"

	"github.com/seenimoa/intrinsiq/pkg/models"
)

func analyzerFinancials() *models.CompanyFinancials {
	return &models.CompanyFinancials{
		Ticker:            "ACME",
		FreeCashFlows:     []float64{100, 110, 120, 130, 140},
		ROE:               0.15,
		ROIC:              0.15,
		PayoutRatio:       0.40,
		SharesBasic:       100,
		TotalDebt:         200,
		CashEquivalents:   50,
		CurrentPrice:      10,
		MarketCap:         1000,
		RiskFreeRate:      0.04,
		EquityRiskPremium: 0.05,
		RawBeta:           1.0,
		CostOfDebt:        0.05,
		MarginalTaxRate:   0.25,
		Sector:            "technology",
	}
}

func newTestAnalyzer(cfg ScenarioConfig) *ScenarioAnalyzer {
	return NewScenarioAnalyzer(cfg, nil, nil, nil, nil, nil)
}

func TestAnalyze(t *testing.T) {
	a := newTestAnalyzer(ScenarioConfig{})

	out := a.Analyze("ACME", analyzerFinancials())
	if out.Blocked != nil {
		t.Fatalf("unexpected block: %v", out.Blocked)
	}
	if out.Scenarios.Partial {
		t.Fatal("expected all three scenarios to be valid")
	}
	if len(out.Scenarios.Results) != 3 {
		t.Fatalf("expected 3 scenario results, got %d", len(out.Scenarios.Results))
	}
	for _, id := range models.Scenarios() {
		res := out.Scenarios.Results[id]
		if res == nil {
			t.Fatalf("missing %s result", id)
		}
		if res.IsBlocked() {
			t.Errorf("%s: unexpected block: %v", id, res.Blocked)
		}
		if res.FairValue <= 0 {
			t.Errorf("%s: expected positive fair value, got %.4f", id, res.FairValue)
		}
	}

	pess := out.Scenarios.Results[models.ScenarioPessimistic]
	base := out.Scenarios.Results[models.ScenarioBase]
	opt := out.Scenarios.Results[models.ScenarioOptimistic]
	if !(pess.FairValue < base.FairValue && base.FairValue < opt.FairValue) {
		t.Errorf("expected pessimistic < base < optimistic fair values: %.2f / %.2f / %.2f",
			pess.FairValue, base.FairValue, opt.FairValue)
	}
	if pess.DiscountRate <= base.DiscountRate {
		t.Error("pessimistic discount rate should exceed the base case")
	}

	if out.Recommendation == nil {
		t.Fatal("expected a recommendation for a complete scenario set")
	}
	if out.Recommendation.Label == "" || out.Recommendation.Confidence == "" {
		t.Error("expected a populated recommendation label and confidence")
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	a := newTestAnalyzer(ScenarioConfig{})
	fin := analyzerFinancials()

	first := a.Analyze("ACME", fin)
	second := a.Analyze("ACME", fin)

	if !reflect.DeepEqual(first.Scenarios, second.Scenarios) {
		t.Error("same inputs must produce bit-identical scenario results")
	}
	if !reflect.DeepEqual(first.Recommendation, second.Recommendation) {
		t.Error("same inputs must produce an identical recommendation")
	}
}

func TestAnalyzeSharedInputFailFast(t *testing.T) {
	a := newTestAnalyzer(ScenarioConfig{})

	fin := analyzerFinancials()
	fin.SharesBasic = 0
	out := a.Analyze("ACME", fin)
	if out.Blocked == nil || out.Blocked.Kind != models.BlockNoShareData {
		t.Errorf("expected %s block, got %v", models.BlockNoShareData, out.Blocked)
	}
	if len(out.Scenarios.Results) != 0 {
		t.Error("shared-input failure must block before any scenario runs")
	}
	if out.Recommendation != nil {
		t.Error("blocked assessment must carry no recommendation")
	}

	fin = analyzerFinancials()
	fin.FreeCashFlows = []float64{100, 110, -5}
	out = a.Analyze("ACME", fin)
	if out.Blocked == nil || out.Blocked.Kind != models.BlockNonPositiveBaseFCF {
		t.Errorf("expected %s block, got %v", models.BlockNonPositiveBaseFCF, out.Blocked)
	}
}

func TestAnalyzeInvalidProbabilities(t *testing.T) {
	cfg := DefaultScenarioConfig()
	cfg.Probabilities = map[models.ScenarioID]float64{
		models.ScenarioPessimistic: 0.3,
		models.ScenarioBase:        0.5,
		models.ScenarioOptimistic:  0.3,
	}
	a := newTestAnalyzer(cfg)

	out := a.Analyze("ACME", analyzerFinancials())
	if out.Blocked == nil || out.Blocked.Kind != models.BlockInvalidProbabilities {
		t.Errorf("expected %s block, got %v", models.BlockInvalidProbabilities, out.Blocked)
	}
}

func TestAnalyzePartialScenarioSet(t *testing.T) {
	// A perturbation that collapses only the pessimistic discount rate: that
	// scenario blocks, the other two stand, and no recommendation is issued.
	cfg := DefaultScenarioConfig()
	cfg.Perturbations = map[models.ScenarioID]Perturbation{
		models.ScenarioPessimistic: {GrowthScale: 0.6, WACCDelta: -0.06, TerminalGrowthDelta: -0.01},
		models.ScenarioBase:        {GrowthScale: 1.0},
		models.ScenarioOptimistic:  {GrowthScale: 1.4, WACCDelta: -0.01, TerminalGrowthDelta: 0.005},
	}
	a := newTestAnalyzer(cfg)

	out := a.Analyze("ACME", analyzerFinancials())
	if out.Blocked != nil {
		t.Fatalf("shared inputs are fine, expected per-scenario block only: %v", out.Blocked)
	}
	if !out.Scenarios.Partial {
		t.Fatal("expected a partial scenario set")
	}
	pess := out.Scenarios.Results[models.ScenarioPessimistic]
	if !pess.IsBlocked() || pess.FairValue != 0 {
		t.Errorf("expected blocked pessimistic scenario with zero fair value, got %+v", pess)
	}
	if out.Scenarios.Results[models.ScenarioBase].IsBlocked() {
		t.Error("base scenario should still be valid")
	}
	if out.Recommendation != nil {
		t.Error("partial set must carry no recommendation")
	}
}

func makeScenarioSet(price float64, fair map[models.ScenarioID]float64) *models.ScenarioSet {
	set := &models.ScenarioSet{
		Results: make(map[models.ScenarioID]*models.ValuationResult),
		Probabilities: map[models.ScenarioID]float64{
			models.ScenarioPessimistic: 0.25,
			models.ScenarioBase:        0.50,
			models.ScenarioOptimistic:  0.25,
		},
	}
	for id, fv := range fair {
		set.Results[id] = &models.ValuationResult{
			Scenario:  id,
			Status:    models.StatusValid,
			FairValue: fv,
			Upside:    (fv - price) / price,
		}
	}
	return set
}

func TestRecommendWeightedFairValue(t *testing.T) {
	a := newTestAnalyzer(ScenarioConfig{})
	set := makeScenarioSet(100, map[models.ScenarioID]float64{
		models.ScenarioPessimistic: 64.05,
		models.ScenarioBase:        98.43,
		models.ScenarioOptimistic:  136.10,
	})

	rec := a.recommend(100, set)
	if math.Abs(rec.WeightedFairValue-99.2525) > 1e-9 {
		t.Errorf("expected weighted fair value 99.2525, got %.6f", rec.WeightedFairValue)
	}
}

func TestRecommendLadder(t *testing.T) {
	a := newTestAnalyzer(ScenarioConfig{})

	cases := []struct {
		name       string
		fair       map[models.ScenarioID]float64
		label      models.RecommendationLabel
		confidence models.ConfidenceLevel
	}{
		{
			"strong buy",
			map[models.ScenarioID]float64{models.ScenarioPessimistic: 110, models.ScenarioBase: 130, models.ScenarioOptimistic: 150},
			models.StrongBuy, models.ConfidenceHigh,
		},
		{
			"buy",
			map[models.ScenarioID]float64{models.ScenarioPessimistic: 95, models.ScenarioBase: 120, models.ScenarioOptimistic: 140},
			models.Buy, models.ConfidenceMediumHigh,
		},
		{
			"hold above water",
			map[models.ScenarioID]float64{models.ScenarioPessimistic: 80, models.ScenarioBase: 110, models.ScenarioOptimistic: 130},
			models.Hold, models.ConfidenceMedium,
		},
		{
			"hold near fair",
			map[models.ScenarioID]float64{models.ScenarioPessimistic: 70, models.ScenarioBase: 100, models.ScenarioOptimistic: 120},
			models.Hold, models.ConfidenceLow,
		},
		{
			"strong sell",
			map[models.ScenarioID]float64{models.ScenarioPessimistic: 60, models.ScenarioBase: 85, models.ScenarioOptimistic: 100},
			models.StrongSell, models.ConfidenceHigh,
		},
		{
			"sell",
			map[models.ScenarioID]float64{models.ScenarioPessimistic: 90, models.ScenarioBase: 90, models.ScenarioOptimistic: 95},
			models.Sell, models.ConfidenceMedium,
		},
	}
	for _, tc := range cases {
		rec := a.recommend(100, makeScenarioSet(100, tc.fair))
		if rec.Label != tc.label {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.label, rec.Label)
		}
		if rec.Confidence != tc.confidence {
			t.Errorf("%s: expected confidence %s, got %s", tc.name, tc.confidence, rec.Confidence)
		}
	}
}

func TestRecommendRiskReward(t *testing.T) {
	a := newTestAnalyzer(ScenarioConfig{})

	set := makeScenarioSet(100, map[models.ScenarioID]float64{
		models.ScenarioPessimistic: 80,
		models.ScenarioBase:        110,
		models.ScenarioOptimistic:  130,
	})
	rec := a.recommend(100, set)
	if math.Abs(rec.DownsideRisk-(-0.20)) > 1e-12 {
		t.Errorf("expected downside risk -0.20, got %.4f", rec.DownsideRisk)
	}
	if math.Abs(rec.UpsidePotential-0.30) > 1e-12 {
		t.Errorf("expected upside potential 0.30, got %.4f", rec.UpsidePotential)
	}
	if math.Abs(rec.RiskReward-1.5) > 1e-12 {
		t.Errorf("expected risk/reward 1.5, got %.4f", rec.RiskReward)
	}

	// Pessimistic fair value above the price: downside risk stays positive
	// and the ratio still divides by its magnitude.
	favorable := a.recommend(100, makeScenarioSet(100, map[models.ScenarioID]float64{
		models.ScenarioPessimistic: 110,
		models.ScenarioBase:        130,
		models.ScenarioOptimistic:  150,
	}))
	if math.Abs(favorable.DownsideRisk-0.10) > 1e-12 {
		t.Errorf("expected downside risk 0.10, got %.4f", favorable.DownsideRisk)
	}
	if math.Abs(favorable.RiskReward-5.0) > 1e-12 {
		t.Errorf("expected risk/reward 5.0, got %.4f", favorable.RiskReward)
	}

	// Pessimistic fair value exactly at the price: zero downside, the ratio
	// is clamped rather than infinite.
	clamped := a.recommend(100, makeScenarioSet(100, map[models.ScenarioID]float64{
		models.ScenarioPessimistic: 100,
		models.ScenarioBase:        130,
		models.ScenarioOptimistic:  150,
	}))
	if clamped.RiskReward != 1e6 {
		t.Errorf("expected clamped risk/reward 1e6, got %.4f", clamped.RiskReward)
	}
}
