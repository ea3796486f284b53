package valuation

import (
	"math"

	"github.com/seenimoa/intrinsiq/pkg/models"
)

// Interpretation tags on a bridge result.
const (
	InterpretationValid   = "VALID"
	InterpretationInvalid = "INVALID"
)

// BridgeConfig calibrates the enterprise-to-equity bridge.
type BridgeConfig struct {
	LargeAdjustmentFraction float64 // warn when a single adjustment exceeds this fraction of EV (default 0.5)

	// IFRS-16 lease handling: off = perpetuity estimate (cost / rate),
	// on = finite annuity over the average lease term.
	IFRSLeases        bool
	LeaseTermYears    int     // default 7
	LeaseDiscountRate float64 // default 6%
}

// DefaultBridgeConfig returns the standard calibration.
func DefaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		LargeAdjustmentFraction: 0.5,
		LeaseTermYears:          7,
		LeaseDiscountRate:       0.06,
	}
}

// BridgeResult converts an enterprise value into a per-share fair value.
// A blocked result carries FairValue == 0.
type BridgeResult struct {
	EnterpriseValue float64          `json:"enterprise_value"`
	EquityValue     float64          `json:"equity_value"`
	DilutedShares   float64          `json:"diluted_shares"`
	FairValue       float64          `json:"fair_value"` // per share
	Upside          float64          `json:"upside"`     // (fair − price) / price
	Interpretation  string           `json:"interpretation"`
	Warnings        []models.Warning `json:"warnings,omitempty"`
	Blocked         *models.Blocked  `json:"blocked,omitempty"`
}

// ValuationBridge applies the enterprise-to-equity bridge and diluted-share
// adjustment. Cash is handled here and only here — never in the WACC weights.
type ValuationBridge struct {
	cfg BridgeConfig
}

// NewValuationBridge creates a bridge. Zero-valued config fields fall back to
// defaults.
func NewValuationBridge(cfg BridgeConfig) *ValuationBridge {
	def := DefaultBridgeConfig()
	if cfg.LargeAdjustmentFraction == 0 {
		cfg.LargeAdjustmentFraction = def.LargeAdjustmentFraction
	}
	if cfg.LeaseTermYears == 0 {
		cfg.LeaseTermYears = def.LeaseTermYears
	}
	if cfg.LeaseDiscountRate == 0 {
		cfg.LeaseDiscountRate = def.LeaseDiscountRate
	}
	return &ValuationBridge{cfg: cfg}
}

// LeaseLiability estimates the debt-like lease obligation from the annual
// lease cost: a perpetuity by default, a finite annuity over the configured
// average lease term when IFRS-16 treatment is on.
func (b *ValuationBridge) LeaseLiability(annualLeaseCost float64) float64 {
	if annualLeaseCost <= 0 {
		return 0
	}
	r := b.cfg.LeaseDiscountRate
	if !b.cfg.IFRSLeases {
		return annualLeaseCost / r
	}
	n := float64(b.cfg.LeaseTermYears)
	return annualLeaseCost * (1 - math.Pow(1+r, -n)) / r
}

// ToEquity converts an enterprise value into equity value and per-share fair
// value:
//
//	equity = EV − debt + cash − minority interest − preferred − pension − leases
//
// A negative enterprise value is surfaced with an INVALID tag, never silently
// clipped. Diluted shares ≤ 0 blocks the result with a zero fair value rather
// than dividing by zero.
func (b *ValuationBridge) ToEquity(enterpriseValue float64, fin *models.CompanyFinancials) BridgeResult {
	res := BridgeResult{
		EnterpriseValue: enterpriseValue,
		Interpretation:  InterpretationValid,
	}

	if enterpriseValue < 0 {
		res.Interpretation = InterpretationInvalid
		res.Warnings = append(res.Warnings, models.Warnf(models.WarnNegativeEnterpriseValue,
			"enterprise value %.2f is negative: inputs likely inconsistent", enterpriseValue))
	}

	leases := b.LeaseLiability(fin.AnnualLeaseCost)
	adjustments := []struct {
		name string
		amt  float64
	}{
		{"total debt", fin.TotalDebt},
		{"cash", fin.CashEquivalents},
		{"minority interest", fin.MinorityInterest},
		{"preferred stock", fin.PreferredStock},
		{"pension deficit", fin.PensionDeficit},
		{"lease liability", leases},
	}
	threshold := b.cfg.LargeAdjustmentFraction * math.Abs(enterpriseValue)
	if threshold > 0 {
		for _, adj := range adjustments {
			if math.Abs(adj.amt) > threshold {
				res.Warnings = append(res.Warnings, models.Warnf(models.WarnLargeBridgeAdjustment,
					"%s %.2f exceeds %.0f%% of enterprise value: check inputs",
					adj.name, adj.amt, b.cfg.LargeAdjustmentFraction*100))
			}
		}
	}

	res.EquityValue = enterpriseValue - fin.TotalDebt + fin.CashEquivalents -
		fin.MinorityInterest - fin.PreferredStock - fin.PensionDeficit - leases

	res.DilutedShares = fin.DilutedShares()
	if res.DilutedShares <= 0 {
		res.FairValue = 0
		res.Warnings = append(res.Warnings, models.Warnf(models.WarnNoShareData,
			"diluted shares %.2f: fair value forced to zero", res.DilutedShares))
		res.Blocked = models.Blockf(models.BlockNoShareData,
			"diluted shares %.2f is not positive", res.DilutedShares)
		return res
	}

	res.FairValue = res.EquityValue / res.DilutedShares
	if fin.CurrentPrice > 0 {
		res.Upside = (res.FairValue - fin.CurrentPrice) / fin.CurrentPrice
	}
	return res
}
