package models

import "fmt"

// WarningCode categorizes warnings by subsystem.
// W1xxx = growth/projection, W2xxx = perpetuity/dividend, W3xxx = cost of
// capital, W4xxx = enterprise-to-equity bridge, W5xxx = scenarios.
type WarningCode string

const (
	WarnReinvestmentCapped WarningCode = "W1001" // projected growth capped by reinvestment/ROIC check
	WarnThinGrowthSpread   WarningCode = "W1002" // normalized growth too close to cost of equity for perpetuity use
	WarnPayoutOverride     WarningCode = "W1003" // payout ratio outside [0,1] accepted under explicit override

	WarnNonPositiveTerminalCF  WarningCode = "W2001" // terminal cash flow ≤ 0, terminal value forced to zero
	WarnExtremePriceToDividend WarningCode = "W2002" // Gordon price/dividend ratio above sanity bound

	WarnLowERPFallback     WarningCode = "W3001" // equity risk premium below floor, country risk applied additively
	WarnWACCFloorApplied   WarningCode = "W3002" // sector floor raised the computed WACC
	WarnWACCCeilingApplied WarningCode = "W3003" // sector ceiling lowered the computed WACC

	WarnLargeBridgeAdjustment   WarningCode = "W4001" // single bridge adjustment exceeds half of enterprise value
	WarnNegativeEnterpriseValue WarningCode = "W4002" // negative EV, result tagged INVALID
	WarnNoShareData             WarningCode = "W4003" // diluted shares ≤ 0, fair value forced to zero
)

// Warning is a non-fatal notice attached to a valuation result. The
// computation proceeds; downstream consumers must display it.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// Warnf builds a Warning with a formatted message.
func Warnf(code WarningCode, format string, args ...any) Warning {
	return Warning{Code: code, Message: fmt.Sprintf(format, args...)}
}

// BlockKind identifies a blocking condition: the affected computation is
// short-circuited and its value is exactly zero, never a finite-but-
// meaningless number.
type BlockKind string

const (
	BlockDivergentPerpetuity  BlockKind = "DIVERGENT_PERPETUITY"   // g ≥ r
	BlockSpreadTooSmall       BlockKind = "SPREAD_TOO_SMALL"       // r − g below minimum spread
	BlockGrowthCeiling        BlockKind = "GROWTH_CEILING"         // perpetual g above ceiling
	BlockNonPositiveROIC      BlockKind = "NON_POSITIVE_ROIC"      // reinvestment check undefined
	BlockNoShareData          BlockKind = "NO_SHARE_DATA"          // diluted shares ≤ 0
	BlockInvalidProbabilities BlockKind = "INVALID_PROBABILITY_WEIGHTS"
	BlockInvalidInput         BlockKind = "INVALID_INPUT"
	BlockInvalidCapital       BlockKind = "INVALID_CAPITAL_STRUCTURE"
	BlockNonPositiveBaseFCF   BlockKind = "NON_POSITIVE_BASE_FCF" // shared-input validation for scenarios
)

// Blocked carries the specific failure that stopped a computation.
type Blocked struct {
	Kind       BlockKind `json:"kind"`
	Diagnostic string    `json:"diagnostic"`
}

// Error implements the error interface so a Blocked can propagate through
// plumbing that expects errors; domain code passes it as data.
func (b *Blocked) Error() string {
	return fmt.Sprintf("%s: %s", b.Kind, b.Diagnostic)
}

// Blockf builds a Blocked with a formatted diagnostic.
func Blockf(kind BlockKind, format string, args ...any) *Blocked {
	return &Blocked{Kind: kind, Diagnostic: fmt.Sprintf(format, args...)}
}
