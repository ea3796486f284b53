package models

import "time"

// OptionTranche describes one tranche of outstanding employee options or
// warrants at a single strike price.
type OptionTranche struct {
	Count  float64 `json:"count"`  // number of options outstanding
	Strike float64 `json:"strike"` // exercise price per share
}

// CompanyFinancials is an immutable snapshot of the raw inputs a valuation
// needs. The engine reads it without mutation; the caller owns it.
type CompanyFinancials struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name,omitempty"`

	// Historical series, oldest → newest.
	FreeCashFlows     []float64 `json:"free_cash_flows"`
	DividendsPerShare []float64 `json:"dividends_per_share,omitempty"`

	// Profitability and payout.
	ROE         float64 `json:"roe"`          // return on equity, decimal
	ROIC        float64 `json:"roic"`         // return on invested capital, decimal
	PayoutRatio float64 `json:"payout_ratio"` // dividends / earnings, decimal

	// Share count: basic plus option tranches for treasury-stock dilution.
	SharesBasic    float64         `json:"shares_basic"`
	OptionTranches []OptionTranche `json:"option_tranches,omitempty"`

	// Capital structure and bridge items.
	TotalDebt        float64 `json:"total_debt"` // gross debt
	CashEquivalents  float64 `json:"cash_equivalents"`
	MinorityInterest float64 `json:"minority_interest"`
	PreferredStock   float64 `json:"preferred_stock"`
	PensionDeficit   float64 `json:"pension_deficit,omitempty"`
	AnnualLeaseCost  float64 `json:"annual_lease_cost,omitempty"`

	// Market data.
	CurrentPrice float64 `json:"current_price"`
	MarketCap    float64 `json:"market_cap"` // market value of equity

	// Rate environment and beta inputs.
	RiskFreeRate       float64 `json:"risk_free_rate"`
	EquityRiskPremium  float64 `json:"equity_risk_premium"`
	RawBeta            float64 `json:"raw_beta"`
	CostOfDebt         float64 `json:"cost_of_debt"` // pre-tax
	MarginalTaxRate    float64 `json:"marginal_tax_rate"`
	ComparableDebtEq   float64 `json:"comparable_debt_equity"` // D/E of the comparable used to unlever beta
	CountryRiskPremium float64 `json:"country_risk_premium,omitempty"`
	CountryExposure    float64 `json:"country_exposure,omitempty"` // fraction of value exposed to country risk
	Sector             string  `json:"sector,omitempty"`
	Country            string  `json:"country,omitempty"`

	AsOf time.Time `json:"as_of,omitempty"`
}

// DilutedShares returns basic shares plus in-the-money option dilution under
// the treasury-stock method. Out-of-the-money tranches do not dilute.
func (f *CompanyFinancials) DilutedShares() float64 {
	diluted := f.SharesBasic
	if f.CurrentPrice <= 0 {
		return diluted
	}
	for _, tr := range f.OptionTranches {
		if tr.Strike < f.CurrentPrice && tr.Count > 0 {
			diluted += tr.Count * (1 - tr.Strike/f.CurrentPrice)
		}
	}
	return diluted
}

// LatestFCF returns the most recent free cash flow, or 0 for an empty history.
func (f *CompanyFinancials) LatestFCF() float64 {
	if len(f.FreeCashFlows) == 0 {
		return 0
	}
	return f.FreeCashFlows[len(f.FreeCashFlows)-1]
}

// LatestDividend returns the most recent dividend per share, or 0 if the
// company pays none.
func (f *CompanyFinancials) LatestDividend() float64 {
	if len(f.DividendsPerShare) == 0 {
		return 0
	}
	return f.DividendsPerShare[len(f.DividendsPerShare)-1]
}
