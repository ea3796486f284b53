package refdata

import "testing"

func TestLoadSingleton(t *testing.T) {
	a := Load()
	b := Load()
	if a != b {
		t.Error("Load must return the same tables instance")
	}
}

func TestSectorBandLookup(t *testing.T) {
	tables := Load()

	band, ok := tables.SectorBand("technology")
	if !ok {
		t.Fatal("expected a technology band")
	}
	if band.Floor != 0.070 || band.Ceiling != 0.140 {
		t.Errorf("unexpected technology band %+v", band)
	}

	// Lookups are case- and whitespace-insensitive.
	if _, ok := tables.SectorBand("  Technology "); !ok {
		t.Error("expected normalized lookup to match")
	}
	if _, ok := tables.SectorBand("astrology"); ok {
		t.Error("expected unknown sector to miss")
	}
}

func TestSectorBandsWellFormed(t *testing.T) {
	for sector, band := range defaultSectorWACC() {
		if band.Floor <= 0 || band.Ceiling <= band.Floor {
			t.Errorf("%s: malformed band %+v", sector, band)
		}
	}
}

func TestCountryRiskPremium(t *testing.T) {
	tables := Load()

	if p, ok := tables.CountryRiskPremium("united states"); !ok || p != 0 {
		t.Errorf("expected mature-market premium 0, got %.4f (ok=%v)", p, ok)
	}
	if p, ok := tables.CountryRiskPremium("Argentina"); !ok || p != 0.090 {
		t.Errorf("expected 0.090 for argentina, got %.4f (ok=%v)", p, ok)
	}
	if _, ok := tables.CountryRiskPremium("atlantis"); ok {
		t.Error("expected unknown country to miss")
	}
}

func TestNewTablesCopiesInput(t *testing.T) {
	src := map[string]float64{"india": 0.022}
	tables := NewTables(nil, src)
	src["india"] = 0.5

	if p, _ := tables.CountryRiskPremium("india"); p != 0.022 {
		t.Errorf("tables must not observe caller mutations, got %.4f", p)
	}
}
