package models

import "time"

// ResultStatus tags a valuation result as usable or short-circuited.
type ResultStatus string

const (
	StatusValid   ResultStatus = "valid"
	StatusBlocked ResultStatus = "blocked"
)

// ScenarioID identifies one branch of the scenario analysis.
type ScenarioID string

const (
	ScenarioPessimistic ScenarioID = "pessimistic"
	ScenarioBase        ScenarioID = "base"
	ScenarioOptimistic  ScenarioID = "optimistic"
)

// Scenarios returns all scenario identifiers in display order.
func Scenarios() []ScenarioID {
	return []ScenarioID{ScenarioPessimistic, ScenarioBase, ScenarioOptimistic}
}

// GrowthEstimate is the derived growth view of a company. Created per
// valuation call; never mutated after creation.
type GrowthEstimate struct {
	Historical          []float64 `json:"historical"`           // one entry per consecutive FCF pair
	AvgHistorical       float64   `json:"avg_historical"`
	Sustainable         float64   `json:"sustainable"`          // ROE × retention
	NormalizedPerpetual float64   `json:"normalized_perpetual"` // blended and capped for perpetuity use
	Spread              float64   `json:"spread"`               // cost of equity − normalized growth
	SpreadOK            bool      `json:"spread_ok"`            // false when the spread is too thin for perpetuity use
	Warnings            []Warning `json:"warnings,omitempty"`
}

// BetaTrail records each step of the beta adjustment pipeline so the final
// relevered beta can be audited.
type BetaTrail struct {
	Raw           float64 `json:"raw"`
	Blume         float64 `json:"blume"`           // (2/3)·raw + (1/3)·1.0
	Unlevered     float64 `json:"unlevered"`       // Hamada, comparable capital structure
	Relevered     float64 `json:"relevered"`       // Hamada, subject capital structure
	CountryAdjust float64 `json:"country_adjust"`  // added to beta under the beta method, 0 otherwise
	Final         float64 `json:"final"`
	CountryInBeta bool    `json:"country_in_beta"` // true = folded into beta, false = additive term
}

// CostOfCapitalResult is the full cost-of-capital computation for one company.
// Invariant: WACC > 0, and cost of equity exceeds the risk-free rate whenever
// the final beta is positive.
type CostOfCapitalResult struct {
	CostOfEquity       float64   `json:"cost_of_equity"`
	CostOfDebtAfterTax float64   `json:"cost_of_debt_after_tax"`
	EquityWeight       float64   `json:"equity_weight"`
	DebtWeight         float64   `json:"debt_weight"`
	WACC               float64   `json:"wacc"`
	Beta               BetaTrail `json:"beta"`
	Warnings           []Warning `json:"warnings,omitempty"`
}

// ValuationResult is the per-scenario output of the valuation pipeline.
// Invariant: a blocked result carries a fair value of exactly zero and must
// not be treated as a real estimate.
type ValuationResult struct {
	Scenario        ScenarioID   `json:"scenario"`
	Status          ResultStatus `json:"status"`
	EnterpriseValue float64      `json:"enterprise_value"`
	EquityValue     float64      `json:"equity_value"`
	FairValue       float64      `json:"fair_value"` // per share
	Upside          float64      `json:"upside"`     // (fair − price) / price, decimal
	DiscountRate    float64      `json:"discount_rate"`
	TerminalGrowth  float64      `json:"terminal_growth"`
	Interpretation  string       `json:"interpretation"` // "VALID" or "INVALID"
	Warnings        []Warning    `json:"warnings,omitempty"`
	Blocked         *Blocked     `json:"blocked,omitempty"`
}

// IsBlocked reports whether the result was short-circuited by a blocking error.
func (r *ValuationResult) IsBlocked() bool {
	return r.Status == StatusBlocked || r.Blocked != nil
}

// ScenarioSet maps each scenario to its result and assigned probability.
// Probabilities must sum to 1.0 within 1e-6.
type ScenarioSet struct {
	Ticker        string                          `json:"ticker"`
	Results       map[ScenarioID]*ValuationResult `json:"results"`
	Probabilities map[ScenarioID]float64          `json:"probabilities"`
	Partial       bool                            `json:"partial"` // true when at least one scenario is blocked
}

// RecommendationLabel is drawn from a fixed ordered scale.
type RecommendationLabel string

const (
	StrongBuy  RecommendationLabel = "STRONG_BUY"
	Buy        RecommendationLabel = "BUY"
	Hold       RecommendationLabel = "HOLD"
	Sell       RecommendationLabel = "SELL"
	StrongSell RecommendationLabel = "STRONG_SELL"
)

// ConfidenceLevel qualifies how much weight to put on a recommendation.
type ConfidenceLevel string

const (
	ConfidenceHigh       ConfidenceLevel = "high"
	ConfidenceMediumHigh ConfidenceLevel = "medium-high"
	ConfidenceMedium     ConfidenceLevel = "medium"
	ConfidenceLow        ConfidenceLevel = "low"
)

// Recommendation is the risk-adjusted verdict derived from a full scenario
// set. Derived, read-only, discarded after being reported.
type Recommendation struct {
	WeightedFairValue float64                `json:"weighted_fair_value"`
	CurrentPrice      float64                `json:"current_price"`
	WeightedUpside    float64                `json:"weighted_upside"` // decimal
	ScenarioUpside    map[ScenarioID]float64 `json:"scenario_upside"`
	DownsideRisk      float64                `json:"downside_risk"`    // pessimistic upside
	UpsidePotential   float64                `json:"upside_potential"` // optimistic upside
	RiskReward        float64                `json:"risk_reward"`      // upside potential / |downside risk|
	Label             RecommendationLabel    `json:"label"`
	Confidence        ConfidenceLevel        `json:"confidence"`
}

// Assessment bundles everything a presentation layer needs for one company.
type Assessment struct {
	Ticker         string          `json:"ticker"`
	CurrentPrice   float64         `json:"current_price"`
	Scenarios      *ScenarioSet    `json:"scenarios"`
	Recommendation *Recommendation `json:"recommendation,omitempty"` // nil when the set is partial or fully blocked
	Blocked        *Blocked        `json:"blocked,omitempty"`        // set when shared-input validation failed
	GeneratedAt    time.Time       `json:"generated_at"`
}
