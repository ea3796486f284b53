package valuation

import (
	"math"

	"github.com/seenimoa/intrinsiq/pkg/models"
)

// Convention selects the discounting timing assumption.
type Convention string

const (
	// MidYear discounts each year's cash flow at t − 0.5, treating flows as
	// received at the midpoint of the period. Default.
	MidYear Convention = "midyear"
	// EndYear discounts at t, treating flows as received at period end.
	EndYear Convention = "endyear"
)

// DCFConfig calibrates the discounted-cash-flow engine.
type DCFConfig struct {
	Convention Convention     // default MidYear
	Terminal   TerminalConfig // guard rails on the terminal value
}

// DefaultDCFConfig returns the standard calibration.
func DefaultDCFConfig() DCFConfig {
	return DCFConfig{
		Convention: MidYear,
		Terminal:   DefaultTerminalConfig(),
	}
}

// DCFResult is the tagged output of an enterprise valuation. A blocked result
// carries EnterpriseValue == 0.
type DCFResult struct {
	EnterpriseValue float64          `json:"enterprise_value"`
	PVExplicit      float64          `json:"pv_explicit"` // discounted explicit-period cash flows
	PVTerminal      float64          `json:"pv_terminal"` // discounted terminal value
	TerminalValue   float64          `json:"terminal_value"`
	Warnings        []models.Warning `json:"warnings,omitempty"`
	Blocked         *models.Blocked  `json:"blocked,omitempty"`
}

// DCFEngine discounts a projected cash-flow path plus a Gordon terminal value
// into an Enterprise Value.
type DCFEngine struct {
	cfg DCFConfig
}

// NewDCFEngine creates an engine. An empty convention falls back to mid-year.
func NewDCFEngine(cfg DCFConfig) *DCFEngine {
	if cfg.Convention == "" {
		cfg.Convention = MidYear
	}
	if cfg.Terminal == (TerminalConfig{}) {
		cfg.Terminal = DefaultTerminalConfig()
	}
	return &DCFEngine{cfg: cfg}
}

// discountExponent returns the exponent for year t (1-based) under the
// configured convention.
func (e *DCFEngine) discountExponent(t int) float64 {
	if e.cfg.Convention == MidYear {
		return float64(t) - 0.5
	}
	return float64(t)
}

// DiscountCashFlows returns the present value of the explicit-period path.
func (e *DCFEngine) DiscountCashFlows(cashFlows []float64, r float64) float64 {
	var pv float64
	for i, cf := range cashFlows {
		pv += cf / math.Pow(1+r, e.discountExponent(i+1))
	}
	return pv
}

// EnterpriseValue discounts the explicit path and the terminal value on the
// final year's cash flow, at the same convention. A terminal value blocked by
// the perpetuity guard rails blocks the whole valuation; a zero terminal
// value from a non-positive terminal cash flow leaves the explicit-period
// value standing.
func (e *DCFEngine) EnterpriseValue(cashFlows []float64, r, terminalGrowth float64) DCFResult {
	if len(cashFlows) == 0 {
		return DCFResult{Blocked: models.Blockf(models.BlockInvalidInput, "empty projected cash flow path")}
	}
	if r <= 0 {
		return DCFResult{Blocked: models.Blockf(models.BlockInvalidInput, "discount rate %.4f is not positive", r)}
	}

	res := DCFResult{
		PVExplicit: e.DiscountCashFlows(cashFlows, r),
	}

	terminalCF := cashFlows[len(cashFlows)-1]
	tv := TerminalValue(terminalCF, r, terminalGrowth, e.cfg.Terminal)
	if tv.Blocked != nil {
		return DCFResult{Blocked: tv.Blocked}
	}
	res.Warnings = append(res.Warnings, tv.Warnings...)
	res.TerminalValue = tv.Value
	res.PVTerminal = tv.Value / math.Pow(1+r, e.discountExponent(len(cashFlows)))

	res.EnterpriseValue = res.PVExplicit + res.PVTerminal
	return res
}
