package datasource

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/intrinsiq/pkg/models"
	"github.com/seenimoa/intrinsiq/pkg/utils"
)

// Macro holds the rate environment applied to every snapshot. These are not
// on any company page; they come from configuration or the caller.
type Macro struct {
	RiskFreeRate      float64
	EquityRiskPremium float64
	DebtSpread        float64 // default pre-tax cost of debt is rf + spread
	DefaultTaxRate    float64 // fallback when the page shows no tax rate
}

// DefaultMacro returns a neutral mature-market rate environment.
func DefaultMacro() Macro {
	return Macro{
		RiskFreeRate:      0.042,
		EquityRiskPremium: 0.047,
		DebtSpread:        0.015,
		DefaultTaxRate:    0.21,
	}
}

// Aggregator fetches company snapshots and enriches them with the macro rate
// environment, fanning out over many tickers concurrently.
type Aggregator struct {
	source Source
	macro  Macro

	concurrency int
}

// NewAggregator creates an aggregator over the default scraping source.
func NewAggregator(macro Macro, concurrency int) *Aggregator {
	if concurrency <= 0 {
		concurrency = 5
	}
	return &Aggregator{
		source:      NewStockAnalysis(),
		macro:       macro,
		concurrency: concurrency,
	}
}

// NewAggregatorWithSource creates an aggregator over a specific source.
// Used by tests and by callers with their own data feed.
func NewAggregatorWithSource(src Source, macro Macro, concurrency int) *Aggregator {
	a := NewAggregator(macro, concurrency)
	a.source = src
	return a
}

// Source returns the underlying data source for direct access.
func (a *Aggregator) Source() Source { return a.source }

// FetchFinancials returns one enriched snapshot.
func (a *Aggregator) FetchFinancials(ctx context.Context, ticker string) (*models.CompanyFinancials, error) {
	fin, err := a.source.FetchFinancials(ctx, utils.NormalizeTicker(ticker))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.source.Name(), err)
	}
	a.enrich(fin)
	return fin, nil
}

// FetchMany fetches snapshots for all tickers concurrently, at most
// `concurrency` in flight. Per-ticker failures do not abort the batch; they
// are returned alongside the successes.
func (a *Aggregator) FetchMany(ctx context.Context, tickers []string) (map[string]*models.CompanyFinancials, map[string]error) {
	results := make(map[string]*models.CompanyFinancials, len(tickers))
	failures := make(map[string]error)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			fin, err := a.FetchFinancials(gctx, ticker)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[utils.NormalizeTicker(ticker)] = err
				return nil // non-fatal
			}
			results[fin.Ticker] = fin
			return nil
		})
	}
	g.Wait()

	return results, failures
}

// enrich fills in macro fields the source cannot know and conservative
// fallbacks for fields it failed to find.
func (a *Aggregator) enrich(fin *models.CompanyFinancials) {
	if fin.RiskFreeRate == 0 {
		fin.RiskFreeRate = a.macro.RiskFreeRate
	}
	if fin.EquityRiskPremium == 0 {
		fin.EquityRiskPremium = a.macro.EquityRiskPremium
	}
	if fin.CostOfDebt == 0 {
		fin.CostOfDebt = fin.RiskFreeRate + a.macro.DebtSpread
	}
	if fin.MarginalTaxRate <= 0 || fin.MarginalTaxRate >= 1 {
		fin.MarginalTaxRate = a.macro.DefaultTaxRate
	}
	if fin.RawBeta == 0 {
		fin.RawBeta = 1.0
	}
}
