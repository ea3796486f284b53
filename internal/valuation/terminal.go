package valuation

import (
	"github.com/seenimoa/intrinsiq/pkg/models"
)

// TerminalConfig holds the guard rails on perpetuity terminal values.
type TerminalConfig struct {
	MinSpread     float64 // minimum r − g (default 200 bps)
	GrowthCeiling float64 // maximum perpetual g (default 5%)
}

// DefaultTerminalConfig returns the standard guard rails.
func DefaultTerminalConfig() TerminalConfig {
	return TerminalConfig{
		MinSpread:     0.02,
		GrowthCeiling: 0.05,
	}
}

// TerminalValueResult is the tagged output of a terminal value computation.
// A blocked result always carries Value == 0.
type TerminalValueResult struct {
	Value    float64          `json:"value"`
	Warnings []models.Warning `json:"warnings,omitempty"`
	Blocked  *models.Blocked  `json:"blocked,omitempty"`
}

// TerminalValue computes the Gordon perpetuity TV = cf × (1+g) / (r − g),
// enforcing three hard rules before computing:
//
//  1. g ≥ r is a DivergentPerpetuity block, never a silent default.
//  2. A spread r − g below MinSpread is rejected with value 0. The sensitivity
//     dV/dg = D/(r−g)² grows unboundedly as the spread shrinks; the floor
//     bounds the amplification of estimation noise.
//  3. g above the ceiling is rejected for perpetual use; a finite two-stage
//     model is the right tool for temporarily high growth.
//
// A non-positive terminal cash flow is not an error: the perpetuity value is
// forced to exactly 0 with a warning, leaving any explicit-period cash flows
// valid.
func TerminalValue(terminalCF, r, g float64, cfg TerminalConfig) TerminalValueResult {
	if cfg.MinSpread == 0 {
		cfg.MinSpread = DefaultTerminalConfig().MinSpread
	}
	if cfg.GrowthCeiling == 0 {
		cfg.GrowthCeiling = DefaultTerminalConfig().GrowthCeiling
	}

	if g >= r {
		return TerminalValueResult{Blocked: models.Blockf(models.BlockDivergentPerpetuity,
			"growth %.4f ≥ discount rate %.4f: perpetuity does not converge", g, r)}
	}
	if r-g < cfg.MinSpread {
		return TerminalValueResult{Blocked: models.Blockf(models.BlockSpreadTooSmall,
			"spread %.4f below %.4f minimum: terminal value unstable", r-g, cfg.MinSpread)}
	}
	if g > cfg.GrowthCeiling {
		return TerminalValueResult{Blocked: models.Blockf(models.BlockGrowthCeiling,
			"perpetual growth %.4f above %.4f ceiling: use a two-stage model for temporarily high growth", g, cfg.GrowthCeiling)}
	}

	if terminalCF <= 0 {
		return TerminalValueResult{
			Value: 0,
			Warnings: []models.Warning{models.Warnf(models.WarnNonPositiveTerminalCF,
				"terminal cash flow %.2f is not positive: no residual perpetuity value", terminalCF)},
		}
	}

	return TerminalValueResult{Value: terminalCF * (1 + g) / (r - g)}
}
