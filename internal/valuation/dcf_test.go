package valuation

import (
	"math"
	"testing"

	"github.com/seenimoa/intrinsiq/pkg/models"
)

func TestEnterpriseValueEndYear(t *testing.T) {
	e := NewDCFEngine(DCFConfig{Convention: EndYear})

	res := e.EnterpriseValue([]float64{100, 100, 100}, 0.10, 0.025)
	if res.Blocked != nil {
		t.Fatalf("unexpected block: %v", res.Blocked)
	}

	wantExplicit := 100/1.1 + 100/(1.1*1.1) + 100/(1.1*1.1*1.1)
	if math.Abs(res.PVExplicit-wantExplicit) > 1e-9 {
		t.Errorf("expected explicit PV %.6f, got %.6f", wantExplicit, res.PVExplicit)
	}
	wantTV := 100 * 1.025 / 0.075
	if math.Abs(res.TerminalValue-wantTV) > 1e-9 {
		t.Errorf("expected terminal value %.6f, got %.6f", wantTV, res.TerminalValue)
	}
	wantPVTerminal := wantTV / (1.1 * 1.1 * 1.1)
	if math.Abs(res.PVTerminal-wantPVTerminal) > 1e-9 {
		t.Errorf("expected terminal PV %.6f, got %.6f", wantPVTerminal, res.PVTerminal)
	}
	if math.Abs(res.EnterpriseValue-(wantExplicit+wantPVTerminal)) > 1e-9 {
		t.Errorf("enterprise value must equal explicit + terminal PV, got %.6f", res.EnterpriseValue)
	}
}

func TestEnterpriseValueMidYearExceedsEndYear(t *testing.T) {
	path := []float64{100, 110, 120}
	mid := NewDCFEngine(DCFConfig{Convention: MidYear}).EnterpriseValue(path, 0.10, 0.025)
	end := NewDCFEngine(DCFConfig{Convention: EndYear}).EnterpriseValue(path, 0.10, 0.025)
	if mid.Blocked != nil || end.Blocked != nil {
		t.Fatalf("unexpected block: %v / %v", mid.Blocked, end.Blocked)
	}
	if mid.EnterpriseValue <= end.EnterpriseValue {
		t.Errorf("mid-year discounting must value positive flows higher: %.4f <= %.4f",
			mid.EnterpriseValue, end.EnterpriseValue)
	}
}

func TestEnterpriseValueNegativeTerminalCashFlow(t *testing.T) {
	e := NewDCFEngine(DCFConfig{Convention: EndYear})

	res := e.EnterpriseValue([]float64{100, 80, 60, 40, -20}, 0.10, 0.025)
	if res.Blocked != nil {
		t.Fatalf("negative terminal cash flow should warn, not block: %v", res.Blocked)
	}
	if res.TerminalValue != 0 {
		t.Errorf("expected terminal value forced to 0, got %.4f", res.TerminalValue)
	}
	found := false
	for _, w := range res.Warnings {
		if w.Code == models.WarnNonPositiveTerminalCF {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a %s warning, got %v", models.WarnNonPositiveTerminalCF, res.Warnings)
	}
	if math.Abs(res.EnterpriseValue-res.PVExplicit) > 1e-12 {
		t.Errorf("enterprise value must equal explicit PV only, got %.6f vs %.6f",
			res.EnterpriseValue, res.PVExplicit)
	}
	want := 100/1.1 + 80/math.Pow(1.1, 2) + 60/math.Pow(1.1, 3) + 40/math.Pow(1.1, 4) - 20/math.Pow(1.1, 5)
	if math.Abs(res.EnterpriseValue-want) > 1e-9 {
		t.Errorf("expected %.6f, got %.6f", want, res.EnterpriseValue)
	}
}

func TestEnterpriseValueDivergentBlocks(t *testing.T) {
	e := NewDCFEngine(DCFConfig{})

	res := e.EnterpriseValue([]float64{100, 110, 120}, 0.04, 0.045)
	if res.Blocked == nil {
		t.Fatal("expected block for divergent perpetuity")
	}
	if res.Blocked.Kind != models.BlockDivergentPerpetuity {
		t.Errorf("expected %s, got %s", models.BlockDivergentPerpetuity, res.Blocked.Kind)
	}
	if res.EnterpriseValue != 0 {
		t.Errorf("blocked enterprise value must be 0, got %.4f", res.EnterpriseValue)
	}
}

func TestEnterpriseValueInvalidInputs(t *testing.T) {
	e := NewDCFEngine(DCFConfig{})

	if res := e.EnterpriseValue(nil, 0.10, 0.02); res.Blocked == nil {
		t.Error("expected block for empty path")
	}
	if res := e.EnterpriseValue([]float64{100}, 0, 0.02); res.Blocked == nil {
		t.Error("expected block for non-positive discount rate")
	}
}
