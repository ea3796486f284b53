package valuation

import (
	"math"

	"github.com/seenimoa/intrinsiq/pkg/models"
)

// DDMConfig calibrates the dividend discount engine.
type DDMConfig struct {
	Terminal             TerminalConfig
	StageYears           int     // explicit high-growth years in the two-stage model (default 5)
	HighGrowthCap        float64 // cap on stage-1 growth (default 8%)
	PriceToDividendBound float64 // sanity bound on the Gordon price/dividend ratio (default 50×)
}

// DefaultDDMConfig returns the standard calibration.
func DefaultDDMConfig() DDMConfig {
	return DDMConfig{
		Terminal:             DefaultTerminalConfig(),
		StageYears:           5,
		HighGrowthCap:        0.08,
		PriceToDividendBound: 50,
	}
}

// DDMResult is the tagged output of a dividend discount valuation, per share.
// A blocked result carries Value == 0.
type DDMResult struct {
	Value           float64          `json:"value"` // per share
	Stage1PV        float64          `json:"stage1_pv,omitempty"`
	Stage2PV        float64          `json:"stage2_pv,omitempty"`
	PriceToDividend float64          `json:"price_to_dividend,omitempty"`
	Warnings        []models.Warning `json:"warnings,omitempty"`
	Blocked         *models.Blocked  `json:"blocked,omitempty"`
}

// DividendDiscountEngine values a stock from its dividend stream. Both stages
// are pure functions over validated inputs; nothing persists between calls.
type DividendDiscountEngine struct {
	cfg DDMConfig
}

// NewDividendDiscountEngine creates an engine. Zero-valued config fields fall
// back to defaults.
func NewDividendDiscountEngine(cfg DDMConfig) *DividendDiscountEngine {
	def := DefaultDDMConfig()
	if cfg.Terminal == (TerminalConfig{}) {
		cfg.Terminal = def.Terminal
	}
	if cfg.StageYears == 0 {
		cfg.StageYears = def.StageYears
	}
	if cfg.HighGrowthCap == 0 {
		cfg.HighGrowthCap = def.HighGrowthCap
	}
	if cfg.PriceToDividendBound == 0 {
		cfg.PriceToDividendBound = def.PriceToDividendBound
	}
	return &DividendDiscountEngine{cfg: cfg}
}

// Gordon is the single-stage model: V = D0 × (1+g) / (r − g), under the full
// set of perpetuity guard rails. An extreme price-to-dividend ratio is
// flagged as a warning, not a block — it is an empirical sanity bound, not a
// mathematical one.
func (e *DividendDiscountEngine) Gordon(d0, costOfEquity, g float64) DDMResult {
	tv := TerminalValue(d0, costOfEquity, g, e.cfg.Terminal)
	if tv.Blocked != nil {
		return DDMResult{Blocked: tv.Blocked}
	}

	res := DDMResult{
		Value:    tv.Value,
		Warnings: tv.Warnings,
	}
	if d0 > 0 && tv.Value > 0 {
		res.PriceToDividend = tv.Value / d0
		if res.PriceToDividend > e.cfg.PriceToDividendBound {
			res.Warnings = append(res.Warnings, models.Warnf(models.WarnExtremePriceToDividend,
				"price/dividend ratio %.1f× above %.0f× sanity bound", res.PriceToDividend, e.cfg.PriceToDividendBound))
		}
	}
	return res
}

// TwoStage projects explicit dividends at a finite high growth rate, then
// hands the terminal dividend to the Gordon rules at the normalized perpetual
// growth — never the raw historical rate. Stage-1 growth is capped but may
// exceed the cost of equity: the stage is finite and needs no convergence.
func (e *DividendDiscountEngine) TwoStage(d0, costOfEquity, highGrowth, normalizedGrowth float64) DDMResult {
	if d0 <= 0 {
		return DDMResult{
			Warnings: []models.Warning{models.Warnf(models.WarnNonPositiveTerminalCF,
				"base dividend %.2f is not positive: dividend model value is zero", d0)},
		}
	}
	if costOfEquity <= 0 {
		return DDMResult{Blocked: models.Blockf(models.BlockInvalidInput,
			"cost of equity %.4f is not positive", costOfEquity)}
	}

	gHigh := math.Min(highGrowth, e.cfg.HighGrowthCap)

	var res DDMResult
	div := d0
	for t := 1; t <= e.cfg.StageYears; t++ {
		div *= 1 + gHigh
		res.Stage1PV += div / math.Pow(1+costOfEquity, float64(t))
	}

	// Stage 2: Gordon on the terminal dividend, full guard rails.
	tv := TerminalValue(div, costOfEquity, normalizedGrowth, e.cfg.Terminal)
	if tv.Blocked != nil {
		return DDMResult{Blocked: tv.Blocked}
	}
	res.Warnings = append(res.Warnings, tv.Warnings...)
	res.Stage2PV = tv.Value / math.Pow(1+costOfEquity, float64(e.cfg.StageYears))

	res.Value = res.Stage1PV + res.Stage2PV
	if res.Value > 0 {
		res.PriceToDividend = res.Value / d0
	}
	return res
}
