package valuation

import (
	"math"

	"github.com/seenimoa/intrinsiq/pkg/models"
)

// ProjectorConfig calibrates the free-cash-flow projection. The tier
// boundaries and starting rates are empirical calibration parameters, not
// theory; they are configuration precisely so they can be re-tuned without a
// code change.
type ProjectorConfig struct {
	Years int // projection horizon (default 5)

	// Average-historical-growth tier boundaries and the near-term growth each
	// tier starts from. Companies above TierBoundaryHigh start at
	// TierStartHigh, those above TierBoundaryMid at TierStartMid, the rest at
	// min(average growth, TierStartLow).
	TierBoundaryMid  float64 // default 0.30
	TierBoundaryHigh float64 // default 0.50
	TierStartLow     float64 // default 0.12
	TierStartMid     float64 // default 0.18
	TierStartHigh    float64 // default 0.25

	TerminalGrowthCeiling float64 // cap on the year-N convergence target (default 5%)
	MaxReinvestmentRate   float64 // plausibility cap on growth/ROIC (default 0.80)
}

// DefaultProjectorConfig returns the standard calibration.
func DefaultProjectorConfig() ProjectorConfig {
	return ProjectorConfig{
		Years:                 5,
		TierBoundaryMid:       0.30,
		TierBoundaryHigh:      0.50,
		TierStartLow:          0.12,
		TierStartMid:          0.18,
		TierStartHigh:         0.25,
		TerminalGrowthCeiling: 0.05,
		MaxReinvestmentRate:   0.80,
	}
}

// CashFlowProjector turns a historical FCF series into a multi-year projected
// path with decaying growth.
type CashFlowProjector struct {
	cfg    ProjectorConfig
	growth *GrowthEstimator
}

// NewCashFlowProjector creates a projector backed by the given growth
// estimator. Zero-valued config fields fall back to defaults.
func NewCashFlowProjector(cfg ProjectorConfig, growth *GrowthEstimator) *CashFlowProjector {
	def := DefaultProjectorConfig()
	if cfg.Years == 0 {
		cfg.Years = def.Years
	}
	if cfg.TierBoundaryMid == 0 {
		cfg.TierBoundaryMid = def.TierBoundaryMid
	}
	if cfg.TierBoundaryHigh == 0 {
		cfg.TierBoundaryHigh = def.TierBoundaryHigh
	}
	if cfg.TierStartLow == 0 {
		cfg.TierStartLow = def.TierStartLow
	}
	if cfg.TierStartMid == 0 {
		cfg.TierStartMid = def.TierStartMid
	}
	if cfg.TierStartHigh == 0 {
		cfg.TierStartHigh = def.TierStartHigh
	}
	if cfg.TerminalGrowthCeiling == 0 {
		cfg.TerminalGrowthCeiling = def.TerminalGrowthCeiling
	}
	if cfg.MaxReinvestmentRate == 0 {
		cfg.MaxReinvestmentRate = def.MaxReinvestmentRate
	}
	if growth == nil {
		growth = NewGrowthEstimator(GrowthConfig{})
	}
	return &CashFlowProjector{cfg: cfg, growth: growth}
}

// Projection is a projected free-cash-flow path.
type Projection struct {
	BaseFCF    float64          `json:"base_fcf"`
	CashFlows  []float64        `json:"cash_flows"`  // years 1..N
	GrowthPath []float64        `json:"growth_path"` // growth applied in each year
	Warnings   []models.Warning `json:"warnings,omitempty"`
}

// ImpliedReinvestmentRate returns growth / ROIC, the fraction of returns that
// must be reinvested to fund the growth. A non-positive ROIC is a hard
// failure: a company destroying capital has no meaningful reinvestment-implied
// growth rate, and masking that with a zero would poison everything downstream.
func ImpliedReinvestmentRate(growth, roic float64) (float64, *models.Blocked) {
	if roic <= 0 {
		return 0, models.Blockf(models.BlockNonPositiveROIC,
			"ROIC %.4f is not positive: implied reinvestment rate undefined", roic)
	}
	return growth / roic, nil
}

// Project builds an N-year FCF path from the historical series. The starting
// growth is tiered by the magnitude of average historical growth and decays
// linearly toward the (capped) sustainable growth by the final year. Each
// year's growth is bounded by the reinvestment consistency check:
// growth ≤ MaxReinvestmentRate × ROIC. growthScale perturbs every year's
// growth (1 = base case).
func (p *CashFlowProjector) Project(fcfHistory []float64, sustainable, roic, growthScale float64) (*Projection, *models.Blocked) {
	if len(fcfHistory) == 0 {
		return nil, models.Blockf(models.BlockInvalidInput, "empty free cash flow history")
	}
	if growthScale <= 0 {
		growthScale = 1
	}

	hist := p.growth.HistoricalGrowth(fcfHistory)
	avg := p.growth.AverageGrowth(hist)

	start := p.startingGrowth(avg)
	end := math.Min(sustainable, p.cfg.TerminalGrowthCeiling)

	// Reinvestment ceiling applies to every projected year.
	maxGrowth := math.Inf(1)
	capped := false
	if start > 0 {
		implied, blocked := ImpliedReinvestmentRate(start, roic)
		if blocked != nil {
			return nil, blocked
		}
		if implied > p.cfg.MaxReinvestmentRate {
			maxGrowth = p.cfg.MaxReinvestmentRate * roic
			capped = true
		}
	}

	proj := &Projection{
		BaseFCF:    fcfHistory[len(fcfHistory)-1],
		CashFlows:  make([]float64, 0, p.cfg.Years),
		GrowthPath: make([]float64, 0, p.cfg.Years),
	}
	if capped {
		proj.Warnings = append(proj.Warnings, models.Warnf(models.WarnReinvestmentCapped,
			"growth capped at %.4f: implied reinvestment above %.0f%% of ROIC %.4f",
			maxGrowth, p.cfg.MaxReinvestmentRate*100, roic))
	}

	fcf := proj.BaseFCF
	for t := 1; t <= p.cfg.Years; t++ {
		g := start
		if p.cfg.Years > 1 {
			g = start + (end-start)*float64(t-1)/float64(p.cfg.Years-1)
		}
		g *= growthScale
		g = math.Min(g, maxGrowth)

		fcf *= 1 + g
		proj.GrowthPath = append(proj.GrowthPath, g)
		proj.CashFlows = append(proj.CashFlows, fcf)
	}

	return proj, nil
}

// startingGrowth picks the near-term growth for the tier the average
// historical growth falls into.
func (p *CashFlowProjector) startingGrowth(avg float64) float64 {
	switch {
	case avg > p.cfg.TierBoundaryHigh:
		return p.cfg.TierStartHigh
	case avg > p.cfg.TierBoundaryMid:
		return p.cfg.TierStartMid
	default:
		return math.Min(avg, p.cfg.TierStartLow)
	}
}
