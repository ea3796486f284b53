package valuation

import (
	"math"

	"github.com/seenimoa/intrinsiq/internal/refdata"
	"github.com/seenimoa/intrinsiq/pkg/models"
)

// CountryRiskMethod selects how country risk enters the cost of equity.
type CountryRiskMethod string

const (
	// CountryRiskInBeta folds country risk into beta, scaled by exposure and
	// the equity risk premium. Default; avoids double-counting.
	CountryRiskInBeta CountryRiskMethod = "beta"
	// CountryRiskAdditive adds the premium as a separate term on the cost of
	// equity. Used explicitly or as the fallback when the ERP is too small to
	// scale against.
	CountryRiskAdditive CountryRiskMethod = "additive"
)

// WACCConfig holds the cost-of-capital calibration.
type WACCConfig struct {
	CountryRiskMethod CountryRiskMethod // default: CountryRiskInBeta
	ERPFloor          float64           // minimum ERP for the beta method (default 2%)
	WeightTolerance   float64           // tolerance on equity+debt weight sum (default 1e-6)
}

// DefaultWACCConfig returns the standard calibration.
func DefaultWACCConfig() WACCConfig {
	return WACCConfig{
		CountryRiskMethod: CountryRiskInBeta,
		ERPFloor:          0.02,
		WeightTolerance:   1e-6,
	}
}

// WACCEngine computes cost of equity and weighted cost of capital. Reference
// tables are injected at construction and treated as immutable.
type WACCEngine struct {
	cfg WACCConfig
	ref *refdata.Tables
}

// NewWACCEngine creates an engine. A nil Tables falls back to the built-in
// reference data; zero-valued config fields fall back to defaults.
func NewWACCEngine(cfg WACCConfig, ref *refdata.Tables) *WACCEngine {
	def := DefaultWACCConfig()
	if cfg.CountryRiskMethod == "" {
		cfg.CountryRiskMethod = def.CountryRiskMethod
	}
	if cfg.ERPFloor == 0 {
		cfg.ERPFloor = def.ERPFloor
	}
	if cfg.WeightTolerance == 0 {
		cfg.WeightTolerance = def.WeightTolerance
	}
	if ref == nil {
		ref = refdata.Load()
	}
	return &WACCEngine{cfg: cfg, ref: ref}
}

// WACCInputs are the raw capital-structure inputs for one company.
// GrossDebt is always gross: cash never enters the WACC weights — it is
// handled exclusively in the enterprise-to-equity bridge.
type WACCInputs struct {
	RiskFreeRate      float64
	EquityRiskPremium float64
	RawBeta           float64

	ComparableDebtEquity float64 // D/E of the comparable used to unlever
	MarginalTaxRate      float64

	MarketEquity float64 // market value of equity
	GrossDebt    float64
	CostOfDebt   float64 // pre-tax

	CountryRiskPremium float64 // 0 = look up by Country
	CountryExposure    float64 // fraction of value exposed, 0 = none
	Country            string
	Sector             string
}

// BlumeAdjust applies the Blume mean-reversion correction to a raw beta.
func BlumeAdjust(raw float64) float64 {
	return (2.0/3.0)*raw + (1.0 / 3.0)
}

// UnleverBeta strips the comparable firm's leverage from a beta via Hamada.
func UnleverBeta(levered, debtEquity, marginalTaxRate float64) float64 {
	return levered / (1 + (1-marginalTaxRate)*debtEquity)
}

// ReleverBeta applies the subject firm's leverage to an unlevered beta.
func ReleverBeta(unlevered, debtEquity, marginalTaxRate float64) float64 {
	return unlevered * (1 + (1-marginalTaxRate)*debtEquity)
}

// Compute runs the full cost-of-capital pipeline: Blume adjustment, Hamada
// unlever/relever against the subject capital structure (in that fixed
// order), country-risk handling, CAPM, and the weighted average. The result
// is clamped to the sector WACC band when one is known.
func (e *WACCEngine) Compute(in WACCInputs) (*models.CostOfCapitalResult, *models.Blocked) {
	if bad(in.RiskFreeRate) || bad(in.EquityRiskPremium) || bad(in.RawBeta) {
		return nil, models.Blockf(models.BlockInvalidInput, "rate or beta input is undefined")
	}
	if in.EquityRiskPremium < 0 {
		return nil, models.Blockf(models.BlockInvalidInput,
			"equity risk premium %.4f is negative", in.EquityRiskPremium)
	}
	if in.MarginalTaxRate < 0 || in.MarginalTaxRate >= 1 {
		return nil, models.Blockf(models.BlockInvalidInput,
			"marginal tax rate %.4f outside [0,1)", in.MarginalTaxRate)
	}
	if in.MarketEquity <= 0 {
		return nil, models.Blockf(models.BlockInvalidCapital,
			"market equity %.2f must be positive", in.MarketEquity)
	}
	if in.GrossDebt < 0 {
		return nil, models.Blockf(models.BlockInvalidCapital,
			"gross debt %.2f is negative", in.GrossDebt)
	}

	var warnings []models.Warning

	// Beta pipeline, fixed order: Blume → unlever (comparable) → relever (subject).
	trail := models.BetaTrail{Raw: in.RawBeta}
	trail.Blume = BlumeAdjust(in.RawBeta)
	trail.Unlevered = UnleverBeta(trail.Blume, in.ComparableDebtEquity, in.MarginalTaxRate)
	targetDE := in.GrossDebt / in.MarketEquity
	trail.Relevered = ReleverBeta(trail.Unlevered, targetDE, in.MarginalTaxRate)
	trail.Final = trail.Relevered

	// Country risk.
	crp := in.CountryRiskPremium
	if crp == 0 && in.Country != "" {
		if p, ok := e.ref.CountryRiskPremium(in.Country); ok {
			crp = p
		}
	}
	additiveCRP := 0.0
	if crp > 0 && in.CountryExposure > 0 {
		method := e.cfg.CountryRiskMethod
		if method == CountryRiskInBeta && in.EquityRiskPremium < e.cfg.ERPFloor {
			warnings = append(warnings, models.Warnf(models.WarnLowERPFallback,
				"equity risk premium %.4f below %.4f floor: country risk applied additively",
				in.EquityRiskPremium, e.cfg.ERPFloor))
			method = CountryRiskAdditive
		}
		switch method {
		case CountryRiskInBeta:
			trail.CountryAdjust = in.CountryExposure * (crp / in.EquityRiskPremium)
			trail.Final = trail.Relevered + trail.CountryAdjust
			trail.CountryInBeta = true
		case CountryRiskAdditive:
			additiveCRP = in.CountryExposure * crp
		}
	}

	// CAPM.
	costOfEquity := in.RiskFreeRate + trail.Final*in.EquityRiskPremium + additiveCRP
	costOfDebtAT := in.CostOfDebt * (1 - in.MarginalTaxRate)

	// Gross-debt weights.
	total := in.MarketEquity + in.GrossDebt
	equityWeight := in.MarketEquity / total
	debtWeight := in.GrossDebt / total
	if math.Abs(equityWeight+debtWeight-1) > e.cfg.WeightTolerance {
		return nil, models.Blockf(models.BlockInvalidCapital,
			"capital weights sum to %.8f, not 1", equityWeight+debtWeight)
	}

	wacc := equityWeight*costOfEquity + debtWeight*costOfDebtAT

	// Sector band clamp.
	if band, ok := e.ref.SectorBand(in.Sector); ok {
		if wacc < band.Floor {
			warnings = append(warnings, models.Warnf(models.WarnWACCFloorApplied,
				"WACC %.4f raised to sector floor %.4f", wacc, band.Floor))
			wacc = band.Floor
		} else if wacc > band.Ceiling {
			warnings = append(warnings, models.Warnf(models.WarnWACCCeilingApplied,
				"WACC %.4f lowered to sector ceiling %.4f", wacc, band.Ceiling))
			wacc = band.Ceiling
		}
	}

	if wacc <= 0 {
		return nil, models.Blockf(models.BlockInvalidCapital, "WACC %.4f is not positive", wacc)
	}

	return &models.CostOfCapitalResult{
		CostOfEquity:       costOfEquity,
		CostOfDebtAfterTax: costOfDebtAT,
		EquityWeight:       equityWeight,
		DebtWeight:         debtWeight,
		WACC:               wacc,
		Beta:               trail,
		Warnings:           warnings,
	}, nil
}

// bad reports whether v is NaN or infinite.
func bad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
