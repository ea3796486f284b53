package datasource

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/intrinsiq/internal/infra"
	"github.com/seenimoa/intrinsiq/pkg/models"
	"github.com/seenimoa/intrinsiq/pkg/utils"
)

const stockAnalysisBaseURL = "https://stockanalysis.com"

// StockAnalysis implements Source by scraping stockanalysis.com.
type StockAnalysis struct {
	cache   *infra.Cache
	limiter *infra.RateLimiter
}

// NewStockAnalysis creates a new stockanalysis.com data source.
func NewStockAnalysis() *StockAnalysis {
	return &StockAnalysis{
		cache:   infra.NewCache(30 * time.Minute),
		limiter: infra.NewRateLimiter(1, time.Second), // conservative: 1 req/s
	}
}

// Name returns the data source name.
func (s *StockAnalysis) Name() string { return "stockanalysis.com" }

// FetchFinancials scrapes the statistics, cash flow, and balance sheet pages
// and assembles a company snapshot. Macro inputs (risk-free rate, equity risk
// premium) are not on the page; the aggregator fills them in.
func (s *StockAnalysis) FetchFinancials(ctx context.Context, ticker string) (*models.CompanyFinancials, error) {
	symbol := utils.NormalizeTicker(ticker)

	cacheKey := "sa:fin:" + symbol
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(*models.CompanyFinancials), nil
	}

	fin := &models.CompanyFinancials{
		Ticker: symbol,
		AsOf:   time.Now().UTC(),
	}

	stats, err := s.fetchPage(ctx, fmt.Sprintf("%s/stocks/%s/statistics/", stockAnalysisBaseURL, strings.ToLower(symbol)))
	if err != nil {
		return nil, fmt.Errorf("statistics %s: %w", symbol, err)
	}
	s.parseStatistics(stats, fin)

	cashflow, err := s.fetchPage(ctx, fmt.Sprintf("%s/stocks/%s/financials/cash-flow-statement/", stockAnalysisBaseURL, strings.ToLower(symbol)))
	if err != nil {
		return nil, fmt.Errorf("cash flow %s: %w", symbol, err)
	}
	fin.FreeCashFlows = s.parseSeriesRow(cashflow, "Free Cash Flow")
	fin.DividendsPerShare = s.parseSeriesRow(cashflow, "Dividends Per Share")

	balance, err := s.fetchPage(ctx, fmt.Sprintf("%s/stocks/%s/financials/balance-sheet/", stockAnalysisBaseURL, strings.ToLower(symbol)))
	if err != nil {
		return nil, fmt.Errorf("balance sheet %s: %w", symbol, err)
	}
	s.parseBalanceSheet(balance, fin)

	if len(fin.FreeCashFlows) == 0 && fin.MarketCap == 0 {
		return nil, ErrTickerNotFound
	}

	s.cache.SetWithTTL(cacheKey, fin, time.Hour)
	return fin, nil
}

// fetchPage downloads and parses one page under the shared rate limit.
func (s *StockAnalysis) fetchPage(ctx context.Context, url string) (*goquery.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, _, err := doGet(ctx, url, map[string]string{"Accept": "text/html"})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	return doc, nil
}

// parseStatistics fills in the label/value pairs from the statistics tables.
func (s *StockAnalysis) parseStatistics(doc *goquery.Document, fin *models.CompanyFinancials) {
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.TrimSpace(cells.Eq(0).Text())
		val := parseCompactNumber(strings.TrimSpace(cells.Eq(1).Text()))

		switch {
		case strings.Contains(label, "Market Cap"):
			fin.MarketCap = val
		case strings.Contains(label, "Current Stock Price") || label == "Stock Price":
			fin.CurrentPrice = val
		case strings.Contains(label, "Shares Outstanding"):
			fin.SharesBasic = val
		case strings.Contains(label, "Return on Equity"):
			fin.ROE = val / 100
		case strings.Contains(label, "Return on Capital"):
			fin.ROIC = val / 100
		case strings.Contains(label, "Payout Ratio"):
			fin.PayoutRatio = val / 100
		case strings.Contains(label, "Beta"):
			fin.RawBeta = val
		case strings.Contains(label, "Total Debt"):
			fin.TotalDebt = val
		case strings.Contains(label, "Cash & Cash Equivalents") || strings.Contains(label, "Total Cash"):
			fin.CashEquivalents = val
		case strings.Contains(label, "Effective Tax Rate"):
			fin.MarginalTaxRate = val / 100
		case strings.Contains(label, "Sector"):
			fin.Sector = strings.TrimSpace(cells.Eq(1).Text())
		case strings.Contains(label, "Country"):
			fin.Country = strings.TrimSpace(cells.Eq(1).Text())
		}
	})
}

// parseSeriesRow extracts one labelled row of the financials table as a
// series, reordered oldest first. The site renders the most recent period in
// the leftmost data column.
func (s *StockAnalysis) parseSeriesRow(doc *goquery.Document, label string) []float64 {
	var series []float64
	doc.Find("table tbody tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		name := strings.TrimSpace(row.Find("td").First().Text())
		if !strings.EqualFold(name, label) {
			return true
		}
		row.Find("td").Each(func(i int, cell *goquery.Selection) {
			if i == 0 {
				return
			}
			text := strings.TrimSpace(cell.Text())
			if text == "" || text == "-" || strings.EqualFold(text, "upgrade") {
				return
			}
			series = append(series, parseCompactNumber(text))
		})
		return false
	})

	// Oldest → newest.
	for i, j := 0, len(series)-1; i < j; i, j = i+1, j-1 {
		series[i], series[j] = series[j], series[i]
	}
	return series
}

// parseBalanceSheet fills bridge items from the latest balance sheet column.
func (s *StockAnalysis) parseBalanceSheet(doc *goquery.Document, fin *models.CompanyFinancials) {
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.TrimSpace(cells.Eq(0).Text())
		val := parseCompactNumber(strings.TrimSpace(cells.Eq(1).Text()))

		switch {
		case strings.Contains(label, "Total Debt"):
			fin.TotalDebt = val
		case strings.Contains(label, "Cash & Equivalents"):
			fin.CashEquivalents = val
		case strings.Contains(label, "Minority Interest"):
			fin.MinorityInterest = val
		case strings.Contains(label, "Preferred"):
			fin.PreferredStock = val
		}
	})
}

// parseCompactNumber parses numbers as the site renders them: thousands
// separators, percent signs, parenthesised negatives, and B/M/K magnitude
// suffixes.
func parseCompactNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "n/a" || s == "N/A" {
		return 0
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "T"):
		mult = 1e12
		s = strings.TrimSuffix(s, "T")
	case strings.HasSuffix(s, "B"):
		mult = 1e9
		s = strings.TrimSuffix(s, "B")
	case strings.HasSuffix(s, "M"):
		mult = 1e6
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		mult = 1e3
		s = strings.TrimSuffix(s, "K")
	}

	val, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	if negative {
		val = -val
	}
	return val * mult
}
