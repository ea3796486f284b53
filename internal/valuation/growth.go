// Package valuation implements the intrinsic value engine: growth estimation,
// cost of capital (CAPM/WACC with a Blume-adjusted, Hamada-relevered beta),
// free-cash-flow projection, Gordon terminal values, single- and two-stage
// dividend discount models, the enterprise-to-equity bridge, and probability-
// weighted scenario analysis.
//
// Every component is a pure, stateless transformation over immutable inputs.
// Expected domain violations (divergent perpetuities, thin spreads, missing
// share data, ...) never surface as Go errors; they become tagged Blocked
// states on results, with the affected value forced to exactly zero.
package valuation

import (
	"math"

	"github.com/seenimoa/intrinsiq/pkg/models"
)

// GrowthConfig holds the calibration constants for growth estimation.
type GrowthConfig struct {
	GrowthFloor      float64 // lower clamp on a single period's growth (default −100%)
	GrowthCap        float64 // upper clamp, also the zero-base sentinel (default +500%)
	RealismCeiling   float64 // cap on each blend input, long-run nominal GDP growth (default 5%)
	PerpetuityCap    float64 // final conservative cap on normalized growth (default 4%)
	MinSpread        float64 // minimum r − g for perpetuity use (default 200 bps)
	WeightHistorical float64 // blend weight on capped historical growth (default 0.3)
}

// DefaultGrowthConfig returns the standard calibration.
func DefaultGrowthConfig() GrowthConfig {
	return GrowthConfig{
		GrowthFloor:      -1.00,
		GrowthCap:        5.00,
		RealismCeiling:   0.05,
		PerpetuityCap:    0.04,
		MinSpread:        0.02,
		WeightHistorical: 0.3,
	}
}

// GrowthEstimator derives historical and sustainable growth from fundamentals.
type GrowthEstimator struct {
	cfg GrowthConfig
}

// NewGrowthEstimator creates an estimator. Zero-valued config fields fall back
// to defaults.
func NewGrowthEstimator(cfg GrowthConfig) *GrowthEstimator {
	def := DefaultGrowthConfig()
	if cfg.GrowthFloor == 0 {
		cfg.GrowthFloor = def.GrowthFloor
	}
	if cfg.GrowthCap == 0 {
		cfg.GrowthCap = def.GrowthCap
	}
	if cfg.RealismCeiling == 0 {
		cfg.RealismCeiling = def.RealismCeiling
	}
	if cfg.PerpetuityCap == 0 {
		cfg.PerpetuityCap = def.PerpetuityCap
	}
	if cfg.MinSpread == 0 {
		cfg.MinSpread = def.MinSpread
	}
	if cfg.WeightHistorical == 0 {
		cfg.WeightHistorical = def.WeightHistorical
	}
	return &GrowthEstimator{cfg: cfg}
}

// HistoricalGrowth returns one growth value per consecutive pair of the input
// series — always exactly len(series)−1 entries, so positions stay aligned
// with the input even across zeros. Zero-base pairs map to sentinels: (0, +x)
// is the capped +500%, (0, −x) is −100%, and (0, 0) is 0. Otherwise growth is
// (curr − prev) / |prev|, which keeps sign-transition semantics: a company
// narrowing losses shows positive growth, one turning unprofitable negative.
func (e *GrowthEstimator) HistoricalGrowth(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}

	growth := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev, curr := series[i-1], series[i]

		var g float64
		switch {
		case prev == 0 && curr > 0:
			g = e.cfg.GrowthCap
		case prev == 0 && curr < 0:
			g = e.cfg.GrowthFloor
		case prev == 0 && curr == 0:
			g = 0
		default:
			g = (curr - prev) / math.Abs(prev)
		}

		growth = append(growth, clamp(g, e.cfg.GrowthFloor, e.cfg.GrowthCap))
	}
	return growth
}

// AverageGrowth returns the arithmetic mean of a growth series, 0 when empty.
func (e *GrowthEstimator) AverageGrowth(growth []float64) float64 {
	if len(growth) == 0 {
		return 0
	}
	var sum float64
	for _, g := range growth {
		sum += g
	}
	return sum / float64(len(growth))
}

// SustainableGrowth computes ROE × (1 − payout). A payout ratio outside [0,1]
// is rejected unless the caller passes an explicit override, in which case
// the computation proceeds with a warning. An undefined ROE is always rejected.
func (e *GrowthEstimator) SustainableGrowth(roe, payoutRatio float64, allowPayoutOverride bool) (float64, []models.Warning, *models.Blocked) {
	if math.IsNaN(roe) || math.IsInf(roe, 0) {
		return 0, nil, models.Blockf(models.BlockInvalidInput, "ROE is undefined")
	}
	if math.IsNaN(payoutRatio) || math.IsInf(payoutRatio, 0) {
		return 0, nil, models.Blockf(models.BlockInvalidInput, "payout ratio is undefined")
	}

	var warnings []models.Warning
	if payoutRatio < 0 || payoutRatio > 1 {
		if !allowPayoutOverride {
			return 0, nil, models.Blockf(models.BlockInvalidInput,
				"payout ratio %.2f outside [0,1] without override", payoutRatio)
		}
		warnings = append(warnings, models.Warnf(models.WarnPayoutOverride,
			"payout ratio %.2f outside [0,1] accepted under override", payoutRatio))
	}

	return roe * (1 - payoutRatio), warnings, nil
}

// NormalizedGrowth is the output of NormalizeForPerpetuity: the blended rate
// plus the diagnostic needed to decide whether it is usable in a perpetuity.
type NormalizedGrowth struct {
	Rate     float64 // blended, capped perpetual growth
	Spread   float64 // costOfEquity − Rate
	SpreadOK bool    // false when Spread < MinSpread
	Warnings []models.Warning
}

// NormalizeForPerpetuity caps historical and sustainable growth at the realism
// ceiling, blends them, and applies the final conservative cap. It reports the
// derived spread against the cost of equity; a spread below the minimum makes
// the rate invalid for perpetuity use, but the function returns the number
// plus the diagnostic rather than silently forcing validity.
func (e *GrowthEstimator) NormalizeForPerpetuity(histGrowth, sustGrowth, costOfEquity float64) NormalizedGrowth {
	histCapped := math.Min(histGrowth, e.cfg.RealismCeiling)
	sustCapped := math.Min(sustGrowth, e.cfg.RealismCeiling)

	w := e.cfg.WeightHistorical
	blended := w*histCapped + (1-w)*sustCapped
	rate := math.Min(blended, e.cfg.PerpetuityCap)

	spread := costOfEquity - rate
	ng := NormalizedGrowth{
		Rate:     rate,
		Spread:   spread,
		SpreadOK: spread >= e.cfg.MinSpread,
	}
	if !ng.SpreadOK {
		ng.Warnings = append(ng.Warnings, models.Warnf(models.WarnThinGrowthSpread,
			"spread %.4f below %.4f minimum: normalized growth unusable for perpetuity", spread, e.cfg.MinSpread))
	}
	return ng
}

// Estimate assembles the full growth view for a company at a given cost of
// equity.
func (e *GrowthEstimator) Estimate(fin *models.CompanyFinancials, costOfEquity float64, allowPayoutOverride bool) (*models.GrowthEstimate, *models.Blocked) {
	hist := e.HistoricalGrowth(fin.FreeCashFlows)
	avg := e.AverageGrowth(hist)

	sust, warnings, blocked := e.SustainableGrowth(fin.ROE, fin.PayoutRatio, allowPayoutOverride)
	if blocked != nil {
		return nil, blocked
	}

	ng := e.NormalizeForPerpetuity(avg, sust, costOfEquity)
	warnings = append(warnings, ng.Warnings...)

	return &models.GrowthEstimate{
		Historical:          hist,
		AvgHistorical:       avg,
		Sustainable:         sust,
		NormalizedPerpetual: ng.Rate,
		Spread:              ng.Spread,
		SpreadOK:            ng.SpreadOK,
		Warnings:            warnings,
	}, nil
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
