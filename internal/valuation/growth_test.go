package valuation

import (
	"math"
	"testing"
)

func TestHistoricalGrowthLength(t *testing.T) {
	e := NewGrowthEstimator(GrowthConfig{})

	cases := [][]float64{
		{100, 0, 0, 150},
		{100, 110, 121},
		{0, 0, 0, 0, 0},
		{50, -10, 20},
	}
	for _, series := range cases {
		g := e.HistoricalGrowth(series)
		if len(g) != len(series)-1 {
			t.Errorf("series %v: expected %d growth entries, got %d", series, len(series)-1, len(g))
		}
	}

	if g := e.HistoricalGrowth([]float64{100}); g != nil {
		t.Errorf("expected nil for single-entry series, got %v", g)
	}
}

func TestHistoricalGrowthZeroBases(t *testing.T) {
	e := NewGrowthEstimator(GrowthConfig{})

	g := e.HistoricalGrowth([]float64{100, 0, 0, 150})
	if len(g) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(g))
	}
	if g[0] != -1.0 {
		t.Errorf("100→0: expected floor -1.0, got %.2f", g[0])
	}
	if g[1] != 0.0 {
		t.Errorf("0→0: expected exactly 0.0, got %.2f", g[1])
	}
	if g[2] != 5.0 {
		t.Errorf("0→150: expected cap 5.0, got %.2f", g[2])
	}
}

func TestHistoricalGrowthSignTransitions(t *testing.T) {
	e := NewGrowthEstimator(GrowthConfig{})

	// Narrowing losses is positive growth, turning unprofitable negative.
	g := e.HistoricalGrowth([]float64{-100, -50, 50, -25})
	if g[0] != 0.5 {
		t.Errorf("-100→-50: expected 0.5, got %.4f", g[0])
	}
	if g[1] != 2.0 {
		t.Errorf("-50→50: expected 2.0, got %.4f", g[1])
	}
	if g[2] != -1.0 {
		t.Errorf("50→-25: expected clamp at -1.0, got %.4f", g[2])
	}
}

func TestSustainableGrowth(t *testing.T) {
	e := NewGrowthEstimator(GrowthConfig{})

	g, warnings, blocked := e.SustainableGrowth(0.15, 0.40, false)
	if blocked != nil {
		t.Fatalf("unexpected block: %v", blocked)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if math.Abs(g-0.09) > 1e-12 {
		t.Errorf("expected 0.09, got %.6f", g)
	}
}

func TestSustainableGrowthPayoutOverride(t *testing.T) {
	e := NewGrowthEstimator(GrowthConfig{})

	if _, _, blocked := e.SustainableGrowth(0.15, 1.30, false); blocked == nil {
		t.Error("expected block for payout > 1 without override")
	}

	g, warnings, blocked := e.SustainableGrowth(0.15, 1.30, true)
	if blocked != nil {
		t.Fatalf("unexpected block under override: %v", blocked)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one override warning, got %d", len(warnings))
	}
	if g >= 0 {
		t.Errorf("expected negative sustainable growth for payout > 1, got %.4f", g)
	}
}

func TestSustainableGrowthUndefinedROE(t *testing.T) {
	e := NewGrowthEstimator(GrowthConfig{})
	if _, _, blocked := e.SustainableGrowth(math.NaN(), 0.4, true); blocked == nil {
		t.Error("expected block for NaN ROE even under override")
	}
}

func TestNormalizeForPerpetuity(t *testing.T) {
	e := NewGrowthEstimator(GrowthConfig{})

	// Raw historical growth near the cost of equity normalizes down to the
	// perpetuity cap and becomes usable again.
	ng := e.NormalizeForPerpetuity(0.1067, 0.1067, 0.1076)
	if ng.Rate != 0.04 {
		t.Errorf("expected normalized rate 0.04, got %.4f", ng.Rate)
	}
	if math.Abs(ng.Spread-0.0676) > 1e-12 {
		t.Errorf("expected spread 0.0676, got %.6f", ng.Spread)
	}
	if !ng.SpreadOK {
		t.Error("expected normalized spread to be acceptable")
	}
}

func TestNormalizeForPerpetuityThinSpread(t *testing.T) {
	e := NewGrowthEstimator(GrowthConfig{})

	ng := e.NormalizeForPerpetuity(0.04, 0.04, 0.05)
	if ng.SpreadOK {
		t.Error("expected thin spread to be flagged")
	}
	if len(ng.Warnings) != 1 {
		t.Errorf("expected one thin-spread warning, got %d", len(ng.Warnings))
	}
}
