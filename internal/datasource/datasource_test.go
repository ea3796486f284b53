package datasource

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/intrinsiq/pkg/models"
)

func TestParseCompactNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1,234.56", 1234.56},
		{"$99.41", 99.41},
		{"2.5B", 2.5e9},
		{"1.2T", 1.2e12},
		{"150M", 150e6},
		{"12K", 12e3},
		{"(4.56)", -4.56},
		{"(1.2B)", -1.2e9},
		{"15.3%", 15.3},
		{"-", 0},
		{"", 0},
		{"n/a", 0},
		{"garbage", 0},
	}
	for _, tc := range cases {
		if got := parseCompactNumber(tc.in); got != tc.want {
			t.Errorf("parseCompactNumber(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseSeriesRow(t *testing.T) {
	// Most recent period leftmost, as the site renders it.
	html := `<table><tbody>
		<tr><td>Operating Cash Flow</td><td>200</td><td>180</td><td>160</td></tr>
		<tr><td>Free Cash Flow</td><td>140</td><td>120</td><td>100</td></tr>
	</tbody></table>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}

	s := NewStockAnalysis()
	series := s.parseSeriesRow(doc, "Free Cash Flow")
	want := []float64{100, 120, 140}
	if len(series) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(series))
	}
	for i := range want {
		if series[i] != want[i] {
			t.Errorf("entry %d: expected %.0f (oldest first), got %.0f", i, want[i], series[i])
		}
	}

	if s.parseSeriesRow(doc, "Dividends Per Share") != nil {
		t.Error("expected nil for a missing row")
	}
}

func TestParseStatistics(t *testing.T) {
	html := `<table>
		<tr><td>Market Cap</td><td>3.5B</td></tr>
		<tr><td>Shares Outstanding</td><td>120M</td></tr>
		<tr><td>Return on Equity (ROE)</td><td>18.2%</td></tr>
		<tr><td>Payout Ratio</td><td>35%</td></tr>
		<tr><td>Beta (5Y)</td><td>1.12</td></tr>
	</table>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}

	s := NewStockAnalysis()
	fin := &models.CompanyFinancials{}
	s.parseStatistics(doc, fin)

	if fin.MarketCap != 3.5e9 {
		t.Errorf("expected market cap 3.5e9, got %v", fin.MarketCap)
	}
	if fin.SharesBasic != 120e6 {
		t.Errorf("expected 120e6 shares, got %v", fin.SharesBasic)
	}
	if fin.ROE != 0.182 {
		t.Errorf("expected ROE 0.182, got %v", fin.ROE)
	}
	if fin.PayoutRatio != 0.35 {
		t.Errorf("expected payout 0.35, got %v", fin.PayoutRatio)
	}
	if fin.RawBeta != 1.12 {
		t.Errorf("expected beta 1.12, got %v", fin.RawBeta)
	}
}

// fakeSource serves canned snapshots for aggregator tests.
type fakeSource struct {
	fins map[string]*models.CompanyFinancials
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchFinancials(_ context.Context, ticker string) (*models.CompanyFinancials, error) {
	fin, ok := f.fins[ticker]
	if !ok {
		return nil, ErrTickerNotFound
	}
	return fin, nil
}

func TestAggregatorEnrich(t *testing.T) {
	src := &fakeSource{fins: map[string]*models.CompanyFinancials{
		"ACME": {Ticker: "ACME", MarketCap: 1e9},
	}}
	a := NewAggregatorWithSource(src, DefaultMacro(), 2)

	fin, err := a.FetchFinancials(context.Background(), "acme")
	if err != nil {
		t.Fatalf("FetchFinancials failed: %v", err)
	}
	if fin.RiskFreeRate != 0.042 {
		t.Errorf("expected macro risk-free rate, got %v", fin.RiskFreeRate)
	}
	if fin.EquityRiskPremium != 0.047 {
		t.Errorf("expected macro ERP, got %v", fin.EquityRiskPremium)
	}
	if fin.CostOfDebt != 0.042+0.015 {
		t.Errorf("expected rf + spread cost of debt, got %v", fin.CostOfDebt)
	}
	if fin.MarginalTaxRate != 0.21 {
		t.Errorf("expected fallback tax rate, got %v", fin.MarginalTaxRate)
	}
	if fin.RawBeta != 1.0 {
		t.Errorf("expected neutral beta fallback, got %v", fin.RawBeta)
	}
}

func TestAggregatorFetchMany(t *testing.T) {
	fins := make(map[string]*models.CompanyFinancials)
	for i := 0; i < 10; i++ {
		ticker := fmt.Sprintf("T%d", i)
		fins[ticker] = &models.CompanyFinancials{Ticker: ticker}
	}
	src := &fakeSource{fins: fins}
	a := NewAggregatorWithSource(src, DefaultMacro(), 3)

	tickers := []string{"T0", "T1", "T2", "T3", "MISSING", "T4"}
	results, failures := a.FetchMany(context.Background(), tickers)

	if len(results) != 5 {
		t.Errorf("expected 5 results, got %d", len(results))
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if _, ok := failures["MISSING"]; !ok {
		t.Error("expected MISSING to be reported as a failure")
	}
	for ticker, fin := range results {
		if fin.RiskFreeRate == 0 {
			t.Errorf("%s: expected enrichment to run for batch fetches", ticker)
		}
	}
}
