// Package refdata holds the read-only reference tables shared by all
// valuations: sector WACC bands and country risk premia. The process-wide
// tables are populated exactly once behind an initialization guard and are
// never mutated afterwards, so concurrent valuations read them without
// synchronization.
package refdata

import (
	"strings"
	"sync"
)

// SectorBand bounds the plausible WACC range for a sector. A computed WACC
// outside the band is clamped to it, with a warning on the result.
type SectorBand struct {
	Floor   float64 `json:"floor"`
	Ceiling float64 `json:"ceiling"`
}

// Tables is an immutable snapshot of all reference data.
type Tables struct {
	sectorWACC  map[string]SectorBand
	countryRisk map[string]float64
}

var (
	once   sync.Once
	shared *Tables
)

// Load returns the process-wide reference tables, building them on first use.
func Load() *Tables {
	once.Do(func() {
		shared = NewTables(defaultSectorWACC(), defaultCountryRisk())
	})
	return shared
}

// NewTables builds an immutable Tables from the given maps. The maps are
// copied; later changes by the caller are not observed.
func NewTables(sectorWACC map[string]SectorBand, countryRisk map[string]float64) *Tables {
	t := &Tables{
		sectorWACC:  make(map[string]SectorBand, len(sectorWACC)),
		countryRisk: make(map[string]float64, len(countryRisk)),
	}
	for k, v := range sectorWACC {
		t.sectorWACC[normKey(k)] = v
	}
	for k, v := range countryRisk {
		t.countryRisk[normKey(k)] = v
	}
	return t
}

// SectorBand returns the WACC band for a sector, if one is known.
func (t *Tables) SectorBand(sector string) (SectorBand, bool) {
	b, ok := t.sectorWACC[normKey(sector)]
	return b, ok
}

// CountryRiskPremium returns the risk premium for a country, if one is known.
func (t *Tables) CountryRiskPremium(country string) (float64, bool) {
	p, ok := t.countryRisk[normKey(country)]
	return p, ok
}

func normKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// defaultSectorWACC returns the built-in sector WACC bands. Values are broad
// empirical bounds, not point estimates; the band only guards against clearly
// implausible discount rates.
func defaultSectorWACC() map[string]SectorBand {
	return map[string]SectorBand{
		"utilities":         {Floor: 0.050, Ceiling: 0.090},
		"consumer staples":  {Floor: 0.055, Ceiling: 0.100},
		"real estate":       {Floor: 0.055, Ceiling: 0.105},
		"industrials":       {Floor: 0.060, Ceiling: 0.110},
		"materials":         {Floor: 0.060, Ceiling: 0.115},
		"financials":        {Floor: 0.065, Ceiling: 0.120},
		"healthcare":        {Floor: 0.060, Ceiling: 0.120},
		"energy":            {Floor: 0.065, Ceiling: 0.125},
		"communication":     {Floor: 0.065, Ceiling: 0.125},
		"consumer cyclical": {Floor: 0.065, Ceiling: 0.130},
		"technology":        {Floor: 0.070, Ceiling: 0.140},
	}
}

// defaultCountryRisk returns built-in country risk premia over a mature
// equity market.
func defaultCountryRisk() map[string]float64 {
	return map[string]float64{
		"united states":  0.000,
		"germany":        0.000,
		"switzerland":    0.000,
		"united kingdom": 0.005,
		"japan":          0.007,
		"france":         0.006,
		"south korea":    0.009,
		"china":          0.011,
		"india":          0.022,
		"mexico":         0.024,
		"indonesia":      0.026,
		"brazil":         0.030,
		"south africa":   0.034,
		"turkey":         0.055,
		"argentina":      0.090,
	}
}
