// Intrinsiq — scenario-weighted intrinsic value engine.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/intrinsiq/api"
	"github.com/seenimoa/intrinsiq/internal/config"
	"github.com/seenimoa/intrinsiq/internal/datasource"
	"github.com/seenimoa/intrinsiq/internal/report"
	"github.com/seenimoa/intrinsiq/internal/valuation"
	"github.com/seenimoa/intrinsiq/pkg/models"
	"github.com/seenimoa/intrinsiq/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "intrinsiq",
	Short: "Intrinsiq — scenario-weighted intrinsic value engine",
	Long: `Intrinsiq values listed companies from fundamentals: a five-year
free cash flow projection discounted at a bottom-up WACC, bridged from
enterprise to equity value, run under pessimistic, base and optimistic
assumptions, and rolled into a probability-weighted fair value and a
recommendation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(valueCmd)
	rootCmd.AddCommand(ddmCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// buildAggregator wires the data layer from configuration.
func buildAggregator(cfg *config.Config) *datasource.Aggregator {
	return datasource.NewAggregator(datasource.DefaultMacro(), cfg.Data.ConcurrentFetches)
}

// buildAnalyzer wires the valuation pipeline from configuration.
func buildAnalyzer(cfg *config.Config) *valuation.ScenarioAnalyzer {
	v := cfg.Valuation

	growthCfg := valuation.DefaultGrowthConfig()
	if v.GrowthPerpetuityCap > 0 {
		growthCfg.PerpetuityCap = v.GrowthPerpetuityCap
	}
	if v.GrowthRealismCeiling > 0 {
		growthCfg.RealismCeiling = v.GrowthRealismCeiling
	}
	if v.GrowthMinSpread > 0 {
		growthCfg.MinSpread = v.GrowthMinSpread
	}
	if v.GrowthWeightHist > 0 {
		growthCfg.WeightHistorical = v.GrowthWeightHist
	}
	growth := valuation.NewGrowthEstimator(growthCfg)

	waccCfg := valuation.DefaultWACCConfig()
	if v.CountryRiskMethod == "additive" {
		waccCfg.CountryRiskMethod = valuation.CountryRiskAdditive
	}
	if v.ERPFloor > 0 {
		waccCfg.ERPFloor = v.ERPFloor
	}
	wacc := valuation.NewWACCEngine(waccCfg, nil)

	projCfg := valuation.DefaultProjectorConfig()
	if v.ProjectionYears > 0 {
		projCfg.Years = v.ProjectionYears
	}
	if v.TierBoundaryMid > 0 {
		projCfg.TierBoundaryMid = v.TierBoundaryMid
	}
	if v.TierBoundaryHigh > 0 {
		projCfg.TierBoundaryHigh = v.TierBoundaryHigh
	}
	if v.TierStartLow > 0 {
		projCfg.TierStartLow = v.TierStartLow
	}
	if v.TierStartMid > 0 {
		projCfg.TierStartMid = v.TierStartMid
	}
	if v.TierStartHigh > 0 {
		projCfg.TierStartHigh = v.TierStartHigh
	}
	if v.MaxReinvestmentRate > 0 {
		projCfg.MaxReinvestmentRate = v.MaxReinvestmentRate
	}
	projector := valuation.NewCashFlowProjector(projCfg, growth)

	dcfCfg := valuation.DefaultDCFConfig()
	if v.Convention == string(valuation.EndYear) {
		dcfCfg.Convention = valuation.EndYear
	}
	if v.MinSpread > 0 {
		dcfCfg.Terminal.MinSpread = v.MinSpread
	}
	if v.GrowthCeiling > 0 {
		dcfCfg.Terminal.GrowthCeiling = v.GrowthCeiling
	}
	dcf := valuation.NewDCFEngine(dcfCfg)

	bridgeCfg := valuation.DefaultBridgeConfig()
	bridgeCfg.IFRSLeases = v.IFRSLeases
	if v.LeaseTermYears > 0 {
		bridgeCfg.LeaseTermYears = v.LeaseTermYears
	}
	if v.LeaseDiscountRate > 0 {
		bridgeCfg.LeaseDiscountRate = v.LeaseDiscountRate
	}
	bridge := valuation.NewValuationBridge(bridgeCfg)

	scenCfg := valuation.DefaultScenarioConfig()
	scenCfg.AllowPayoutOverride = v.AllowPayoutOverride
	s := cfg.Scenario
	if s.ProbPessimistic > 0 || s.ProbBase > 0 || s.ProbOptimistic > 0 {
		scenCfg.Probabilities = map[models.ScenarioID]float64{
			models.ScenarioPessimistic: s.ProbPessimistic,
			models.ScenarioBase:        s.ProbBase,
			models.ScenarioOptimistic:  s.ProbOptimistic,
		}
	}
	if s.PessimisticGrowthScale > 0 {
		scenCfg.Perturbations[models.ScenarioPessimistic] = valuation.Perturbation{
			GrowthScale:         s.PessimisticGrowthScale,
			WACCDelta:           s.PessimisticWACCDelta,
			TerminalGrowthDelta: s.PessimisticGrowthDelta,
		}
	}
	if s.OptimisticGrowthScale > 0 {
		scenCfg.Perturbations[models.ScenarioOptimistic] = valuation.Perturbation{
			GrowthScale:         s.OptimisticGrowthScale,
			WACCDelta:           s.OptimisticWACCDelta,
			TerminalGrowthDelta: s.OptimisticGrowthDelta,
		}
	}

	return valuation.NewScenarioAnalyzer(scenCfg, growth, wacc, projector, dcf, bridge)
}

// buildDDM wires the dividend discount engine from configuration.
func buildDDM(cfg *config.Config) *valuation.DividendDiscountEngine {
	v := cfg.Valuation

	ddmCfg := valuation.DefaultDDMConfig()
	if v.DDMStageYears > 0 {
		ddmCfg.StageYears = v.DDMStageYears
	}
	if v.DDMHighGrowthCap > 0 {
		ddmCfg.HighGrowthCap = v.DDMHighGrowthCap
	}
	if v.MinSpread > 0 {
		ddmCfg.Terminal.MinSpread = v.MinSpread
	}
	if v.GrowthCeiling > 0 {
		ddmCfg.Terminal.GrowthCeiling = v.GrowthCeiling
	}
	return valuation.NewDividendDiscountEngine(ddmCfg)
}

func fetchFinancials(ticker string) (*models.CompanyFinancials, error) {
	// The scraping source hits three pages per ticker.
	timeout := 60 * time.Second
	if cfg.Data.TimeoutSec > 0 {
		timeout = 3 * time.Duration(cfg.Data.TimeoutSec) * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return buildAggregator(cfg).FetchFinancials(ctx, ticker)
}

// loadSnapshot reads a CompanyFinancials JSON file for offline what-if runs.
func loadSnapshot(path string) (*models.CompanyFinancials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var fin models.CompanyFinancials
	if err := json.Unmarshal(data, &fin); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return &fin, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Intrinsiq %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Value Command ---

var valueCmd = &cobra.Command{
	Use:   "value [ticker]",
	Short: "Run the full three-scenario valuation on a stock",
	Long: `Fetch fundamentals, run the valuation pipeline under pessimistic,
base and optimistic assumptions, and print the weighted fair value and
recommendation.

Examples:
  intrinsiq value AAPL
  intrinsiq value MSFT --json
  intrinsiq value --snapshot acme.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		snapshot, _ := cmd.Flags().GetString("snapshot")

		var fin *models.CompanyFinancials
		var err error
		switch {
		case snapshot != "":
			fin, err = loadSnapshot(snapshot)
		case len(args) == 1:
			fin, err = fetchFinancials(args[0])
		default:
			return fmt.Errorf("provide a ticker or --snapshot")
		}
		if err != nil {
			return err
		}

		ticker := utils.NormalizeTicker(fin.Ticker)
		assessment := buildAnalyzer(cfg).Analyze(ticker, fin)

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(assessment)
		}

		out, err := report.GenerateText(assessment, report.DefaultReportConfig())
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	valueCmd.Flags().Bool("json", false, "emit the raw assessment as JSON")
	valueCmd.Flags().String("snapshot", "", "value a local CompanyFinancials JSON file instead of fetching")
}

// --- DDM Command ---

var ddmCmd = &cobra.Command{
	Use:   "ddm [ticker]",
	Short: "Cross-check fair value with the dividend discount model",
	Long: `Value the stock from its dividend stream: a Gordon perpetuity plus a
two-stage variant with a capped high-growth first stage. Useful as a
sanity check on the cash-flow valuation for mature payers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fin, err := fetchFinancials(args[0])
		if err != nil {
			return err
		}
		ticker := utils.NormalizeTicker(fin.Ticker)

		d0 := fin.LatestDividend()
		if d0 <= 0 {
			return fmt.Errorf("%s pays no dividend; use `intrinsiq value` instead", ticker)
		}

		wacc := valuation.NewWACCEngine(valuation.WACCConfig{}, nil)
		coc, blocked := wacc.Compute(valuation.WACCInputsFrom(fin))
		if blocked != nil {
			return fmt.Errorf("cost of capital: %s", blocked.Error())
		}

		growth := valuation.NewGrowthEstimator(valuation.DefaultGrowthConfig())
		est, blocked := growth.Estimate(fin, coc.CostOfEquity, cfg.Valuation.AllowPayoutOverride)
		if blocked != nil {
			return fmt.Errorf("growth estimation: %s", blocked.Error())
		}

		ddm := buildDDM(cfg)
		gordon := ddm.Gordon(d0, coc.CostOfEquity, est.NormalizedPerpetual)
		twoStage := ddm.TwoStage(d0, coc.CostOfEquity, est.Sustainable, est.NormalizedPerpetual)

		fmt.Printf("%s — Dividend Discount Model\n", ticker)
		fmt.Printf("  Dividend (D0):     %s\n", utils.FormatUSD(d0))
		fmt.Printf("  Cost of Equity:    %.2f%%\n", coc.CostOfEquity*100)
		fmt.Printf("  Perpetual Growth:  %.2f%%\n", est.NormalizedPerpetual*100)
		printDDMResult("Gordon", gordon, fin.CurrentPrice)
		printDDMResult("Two-Stage", twoStage, fin.CurrentPrice)
		return nil
	},
}

func printDDMResult(name string, res valuation.DDMResult, price float64) {
	if res.Blocked != nil {
		fmt.Printf("  %-10s BLOCKED: %s\n", name+":", res.Blocked.Error())
		return
	}
	line := fmt.Sprintf("  %-10s %s", name+":", utils.FormatUSD(res.Value))
	if price > 0 && res.Value > 0 {
		line += fmt.Sprintf(" (%s vs price)", utils.FormatPct((res.Value-price)/price))
	}
	fmt.Println(line)
	for _, w := range res.Warnings {
		fmt.Printf("             ! [%s] %s\n", w.Code, w.Message)
	}
}

// --- Report Command ---

var reportCmd = &cobra.Command{
	Use:   "report [ticker]",
	Short: "Generate a valuation report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")
		if format == "" {
			format = cfg.Report.Format
		}

		fin, err := fetchFinancials(args[0])
		if err != nil {
			return err
		}
		ticker := utils.NormalizeTicker(fin.Ticker)
		assessment := buildAnalyzer(cfg).Analyze(ticker, fin)

		repCfg := report.DefaultReportConfig()
		var out string
		if strings.EqualFold(format, "html") {
			repCfg.Format = report.FormatHTML
			out, err = report.GenerateHTML(assessment, repCfg)
		} else {
			out, err = report.GenerateText(assessment, repCfg)
		}
		if err != nil {
			return err
		}

		if outPath != "" {
			if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			fmt.Printf("Report written to %s\n", outPath)
			return nil
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	reportCmd.Flags().String("format", "", "report format: text or html (default from config)")
	reportCmd.Flags().String("out", "", "write the report to a file instead of stdout")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		srv := api.NewServer(cfg, buildAggregator(cfg), buildAnalyzer(cfg))

		fmt.Printf("Starting Intrinsiq API server on %s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  Intrinsiq — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:        %s (%s)\n", version, commit)
		fmt.Println()
		fmt.Println("  Configuration:")
		fmt.Printf("    Convention:     %s\n", cfg.Valuation.Convention)
		fmt.Printf("    Country Risk:   %s\n", cfg.Valuation.CountryRiskMethod)
		fmt.Printf("    Projection:     %d years\n", cfg.Valuation.ProjectionYears)
		fmt.Printf("    Probabilities:  %.0f/%.0f/%.0f\n",
			cfg.Scenario.ProbPessimistic*100, cfg.Scenario.ProbBase*100, cfg.Scenario.ProbOptimistic*100)
		fmt.Printf("    API Server:     %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
