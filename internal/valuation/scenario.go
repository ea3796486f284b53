package valuation

import (
	"math"
	"time"

	"github.com/seenimoa/intrinsiq/pkg/models"
)

// Perturbation shifts the base-case assumptions for one scenario.
type Perturbation struct {
	GrowthScale         float64 // multiplier on the explicit FCF growth path
	WACCDelta           float64 // additive shift on the discount rate
	TerminalGrowthDelta float64 // additive shift on the perpetual growth rate
}

// ScenarioConfig calibrates the three-scenario analysis.
type ScenarioConfig struct {
	Perturbations        map[models.ScenarioID]Perturbation
	Probabilities        map[models.ScenarioID]float64
	ProbabilityTolerance float64 // default 1e-6
	RiskRewardClamp      float64 // risk/reward when downside is zero, default 1e6
	AllowPayoutOverride  bool
}

// DefaultScenarioConfig returns the standard perturbations and a
// 25/50/25 probability split.
func DefaultScenarioConfig() ScenarioConfig {
	return ScenarioConfig{
		Perturbations: map[models.ScenarioID]Perturbation{
			models.ScenarioPessimistic: {GrowthScale: 0.6, WACCDelta: 0.02, TerminalGrowthDelta: -0.01},
			models.ScenarioBase:        {GrowthScale: 1.0},
			models.ScenarioOptimistic:  {GrowthScale: 1.4, WACCDelta: -0.01, TerminalGrowthDelta: 0.005},
		},
		Probabilities: map[models.ScenarioID]float64{
			models.ScenarioPessimistic: 0.25,
			models.ScenarioBase:        0.50,
			models.ScenarioOptimistic:  0.25,
		},
		ProbabilityTolerance: 1e-6,
		RiskRewardClamp:      1e6,
	}
}

// ScenarioAnalyzer runs the full valuation pipeline under pessimistic, base
// and optimistic assumptions and rolls the outcomes into a probability
// weighted fair value and a recommendation. Running the same inputs twice
// yields identical output.
type ScenarioAnalyzer struct {
	cfg       ScenarioConfig
	growth    *GrowthEstimator
	wacc      *WACCEngine
	projector *CashFlowProjector
	dcf       *DCFEngine
	bridge    *ValuationBridge
}

// NewScenarioAnalyzer wires an analyzer from its component engines.
// Nil engines and zero-valued config fields fall back to defaults.
func NewScenarioAnalyzer(cfg ScenarioConfig, growth *GrowthEstimator, wacc *WACCEngine, projector *CashFlowProjector, dcf *DCFEngine, bridge *ValuationBridge) *ScenarioAnalyzer {
	def := DefaultScenarioConfig()
	if cfg.Perturbations == nil {
		cfg.Perturbations = def.Perturbations
	}
	if cfg.Probabilities == nil {
		cfg.Probabilities = def.Probabilities
	}
	if cfg.ProbabilityTolerance == 0 {
		cfg.ProbabilityTolerance = def.ProbabilityTolerance
	}
	if cfg.RiskRewardClamp == 0 {
		cfg.RiskRewardClamp = def.RiskRewardClamp
	}
	if growth == nil {
		growth = NewGrowthEstimator(DefaultGrowthConfig())
	}
	if wacc == nil {
		wacc = NewWACCEngine(WACCConfig{}, nil)
	}
	if projector == nil {
		projector = NewCashFlowProjector(ProjectorConfig{}, growth)
	}
	if dcf == nil {
		dcf = NewDCFEngine(DCFConfig{})
	}
	if bridge == nil {
		bridge = NewValuationBridge(BridgeConfig{})
	}
	return &ScenarioAnalyzer{
		cfg:       cfg,
		growth:    growth,
		wacc:      wacc,
		projector: projector,
		dcf:       dcf,
		bridge:    bridge,
	}
}

// Analyze values the company under all three scenarios and attaches a
// recommendation. Shared-input failures block the whole assessment before
// any scenario runs. A single blocked scenario marks the set partial and
// suppresses the weighted fair value and recommendation.
func (a *ScenarioAnalyzer) Analyze(ticker string, fin *models.CompanyFinancials) *models.Assessment {
	out := &models.Assessment{
		Ticker:       ticker,
		CurrentPrice: fin.CurrentPrice,
		Scenarios: &models.ScenarioSet{
			Ticker:        ticker,
			Results:       make(map[models.ScenarioID]*models.ValuationResult),
			Probabilities: a.cfg.Probabilities,
		},
		GeneratedAt: time.Now().UTC(),
	}

	if blocked := a.validateShared(fin); blocked != nil {
		out.Blocked = blocked
		out.Scenarios.Partial = true
		return out
	}
	if blocked := a.validateProbabilities(); blocked != nil {
		out.Blocked = blocked
		out.Scenarios.Partial = true
		return out
	}

	for _, id := range models.Scenarios() {
		res := a.runScenario(id, fin)
		out.Scenarios.Results[id] = res
		if res.IsBlocked() {
			out.Scenarios.Partial = true
		}
	}
	if out.Scenarios.Partial {
		return out
	}

	out.Recommendation = a.recommend(fin.CurrentPrice, out.Scenarios)
	return out
}

func (a *ScenarioAnalyzer) validateShared(fin *models.CompanyFinancials) *models.Blocked {
	if fin.DilutedShares() <= 0 {
		return models.Blockf(models.BlockNoShareData,
			"diluted shares %.2f is not positive", fin.DilutedShares())
	}
	if fin.LatestFCF() <= 0 {
		return models.Blockf(models.BlockNonPositiveBaseFCF,
			"latest free cash flow %.2f is not positive", fin.LatestFCF())
	}
	return nil
}

func (a *ScenarioAnalyzer) validateProbabilities() *models.Blocked {
	sum := 0.0
	for _, id := range models.Scenarios() {
		p, ok := a.cfg.Probabilities[id]
		if !ok {
			return models.Blockf(models.BlockInvalidProbabilities,
				"missing probability for scenario %q", id)
		}
		if p < 0 || math.IsNaN(p) {
			return models.Blockf(models.BlockInvalidProbabilities,
				"probability %.6f for scenario %q is invalid", p, id)
		}
		sum += p
	}
	if math.Abs(sum-1) > a.cfg.ProbabilityTolerance {
		return models.Blockf(models.BlockInvalidProbabilities,
			"probabilities sum to %.8f, want 1", sum)
	}
	return nil
}

// runScenario executes one end-to-end pipeline pass under the scenario's
// perturbation. Any blocking failure along the chain blocks the scenario
// with a zero fair value.
func (a *ScenarioAnalyzer) runScenario(id models.ScenarioID, fin *models.CompanyFinancials) *models.ValuationResult {
	pert := a.cfg.Perturbations[id]
	res := &models.ValuationResult{
		Scenario:       id,
		Status:         models.StatusValid,
		Interpretation: InterpretationValid,
	}
	block := func(b *models.Blocked) *models.ValuationResult {
		res.Status = models.StatusBlocked
		res.Interpretation = InterpretationInvalid
		res.FairValue = 0
		res.Blocked = b
		return res
	}

	coc, blocked := a.wacc.Compute(WACCInputsFrom(fin))
	if blocked != nil {
		return block(blocked)
	}
	res.Warnings = append(res.Warnings, coc.Warnings...)

	growth, blocked := a.growth.Estimate(fin, coc.CostOfEquity, a.cfg.AllowPayoutOverride)
	if blocked != nil {
		return block(blocked)
	}
	res.Warnings = append(res.Warnings, growth.Warnings...)

	scale := pert.GrowthScale
	if scale == 0 {
		scale = 1
	}
	proj, blocked := a.projector.Project(fin.FreeCashFlows, growth.Sustainable, fin.ROIC, scale)
	if blocked != nil {
		return block(blocked)
	}
	res.Warnings = append(res.Warnings, proj.Warnings...)

	r := coc.WACC + pert.WACCDelta
	g := growth.NormalizedPerpetual + pert.TerminalGrowthDelta
	res.DiscountRate = r
	res.TerminalGrowth = g

	dcf := a.dcf.EnterpriseValue(proj.CashFlows, r, g)
	if dcf.Blocked != nil {
		return block(dcf.Blocked)
	}
	res.Warnings = append(res.Warnings, dcf.Warnings...)
	res.EnterpriseValue = dcf.EnterpriseValue

	bridge := a.bridge.ToEquity(dcf.EnterpriseValue, fin)
	res.Warnings = append(res.Warnings, bridge.Warnings...)
	res.EquityValue = bridge.EquityValue
	res.FairValue = bridge.FairValue
	res.Upside = bridge.Upside
	if bridge.Interpretation == InterpretationInvalid {
		res.Interpretation = InterpretationInvalid
	}
	if bridge.Blocked != nil {
		return block(bridge.Blocked)
	}
	return res
}

// recommend folds the three scenario outcomes into a weighted fair value,
// risk/reward profile and rating. Rules are evaluated strictly in order and
// the first match wins.
func (a *ScenarioAnalyzer) recommend(price float64, set *models.ScenarioSet) *models.Recommendation {
	rec := &models.Recommendation{
		CurrentPrice:   price,
		ScenarioUpside: make(map[models.ScenarioID]float64, len(set.Results)),
	}
	for _, id := range models.Scenarios() {
		res := set.Results[id]
		rec.WeightedFairValue += set.Probabilities[id] * res.FairValue
		rec.ScenarioUpside[id] = res.Upside
	}
	if price > 0 {
		rec.WeightedUpside = (rec.WeightedFairValue - price) / price

		// Downside risk is the pessimistic upside itself (signed), upside
		// potential the optimistic upside. The clamp applies only when the
		// downside is exactly zero.
		rec.DownsideRisk = rec.ScenarioUpside[models.ScenarioPessimistic]
		rec.UpsidePotential = rec.ScenarioUpside[models.ScenarioOptimistic]
		if rec.DownsideRisk == 0 {
			rec.RiskReward = a.cfg.RiskRewardClamp
		} else {
			rec.RiskReward = rec.UpsidePotential / math.Abs(rec.DownsideRisk)
		}
	}

	weighted := rec.WeightedUpside
	pessUp := rec.ScenarioUpside[models.ScenarioPessimistic]
	switch {
	case weighted > 0.25 && pessUp > 0:
		rec.Label = models.StrongBuy
		rec.Confidence = models.ConfidenceHigh
	case weighted > 0.15 && pessUp > -0.10:
		rec.Label = models.Buy
		rec.Confidence = models.ConfidenceMediumHigh
	case weighted > 0.05:
		rec.Label = models.Hold
		rec.Confidence = models.ConfidenceMedium
	case weighted > -0.05:
		rec.Label = models.Hold
		rec.Confidence = models.ConfidenceLow
	case pessUp < -0.15:
		rec.Label = models.StrongSell
		rec.Confidence = models.ConfidenceHigh
	default:
		rec.Label = models.Sell
		rec.Confidence = models.ConfidenceMedium
	}
	return rec
}

// WACCInputsFrom maps a financial snapshot onto cost-of-capital inputs.
// Market equity prefers the reported market cap and falls back to price
// times diluted shares.
func WACCInputsFrom(fin *models.CompanyFinancials) WACCInputs {
	equity := fin.MarketCap
	if equity <= 0 {
		equity = fin.CurrentPrice * fin.DilutedShares()
	}
	return WACCInputs{
		RiskFreeRate:         fin.RiskFreeRate,
		EquityRiskPremium:    fin.EquityRiskPremium,
		RawBeta:              fin.RawBeta,
		ComparableDebtEquity: fin.ComparableDebtEq,
		MarginalTaxRate:      fin.MarginalTaxRate,
		MarketEquity:         equity,
		GrossDebt:            fin.TotalDebt,
		CostOfDebt:           fin.CostOfDebt,
		CountryRiskPremium:   fin.CountryRiskPremium,
		CountryExposure:      fin.CountryExposure,
		Country:              fin.Country,
		Sector:               fin.Sector,
	}
}
