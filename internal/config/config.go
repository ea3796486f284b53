// Package config handles configuration loading for Intrinsiq.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Valuation ValuationConfig `mapstructure:"valuation" yaml:"valuation"`
	Scenario  ScenarioConfig  `mapstructure:"scenario"  yaml:"scenario"`
	Data      DataConfig      `mapstructure:"data"      yaml:"data"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Report    ReportConfig    `mapstructure:"report"    yaml:"report"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// ValuationConfig holds the calibration knobs of the valuation engines.
type ValuationConfig struct {
	// Growth estimation.
	GrowthPerpetuityCap  float64 `mapstructure:"growth_perpetuity_cap"  yaml:"growth_perpetuity_cap"`
	GrowthRealismCeiling float64 `mapstructure:"growth_realism_ceiling" yaml:"growth_realism_ceiling"`
	GrowthMinSpread      float64 `mapstructure:"growth_min_spread"      yaml:"growth_min_spread"`
	GrowthWeightHist     float64 `mapstructure:"growth_weight_hist"     yaml:"growth_weight_hist"`
	AllowPayoutOverride  bool    `mapstructure:"allow_payout_override"  yaml:"allow_payout_override"`

	// Cost of capital.
	CountryRiskMethod string  `mapstructure:"country_risk_method" yaml:"country_risk_method"` // "beta" or "additive"
	ERPFloor          float64 `mapstructure:"erp_floor"           yaml:"erp_floor"`

	// Projection.
	ProjectionYears     int     `mapstructure:"projection_years"      yaml:"projection_years"`
	TierBoundaryMid     float64 `mapstructure:"tier_boundary_mid"     yaml:"tier_boundary_mid"`
	TierBoundaryHigh    float64 `mapstructure:"tier_boundary_high"    yaml:"tier_boundary_high"`
	TierStartLow        float64 `mapstructure:"tier_start_low"        yaml:"tier_start_low"`
	TierStartMid        float64 `mapstructure:"tier_start_mid"        yaml:"tier_start_mid"`
	TierStartHigh       float64 `mapstructure:"tier_start_high"       yaml:"tier_start_high"`
	MaxReinvestmentRate float64 `mapstructure:"max_reinvestment_rate" yaml:"max_reinvestment_rate"`

	// Discounting.
	Convention    string  `mapstructure:"convention"     yaml:"convention"` // "midyear" or "endyear"
	MinSpread     float64 `mapstructure:"min_spread"     yaml:"min_spread"`
	GrowthCeiling float64 `mapstructure:"growth_ceiling" yaml:"growth_ceiling"`

	// Dividend model.
	DDMStageYears    int     `mapstructure:"ddm_stage_years"     yaml:"ddm_stage_years"`
	DDMHighGrowthCap float64 `mapstructure:"ddm_high_growth_cap" yaml:"ddm_high_growth_cap"`

	// Bridge.
	IFRSLeases        bool    `mapstructure:"ifrs_leases"         yaml:"ifrs_leases"`
	LeaseTermYears    int     `mapstructure:"lease_term_years"    yaml:"lease_term_years"`
	LeaseDiscountRate float64 `mapstructure:"lease_discount_rate" yaml:"lease_discount_rate"`
}

// ScenarioConfig holds scenario probabilities and perturbations.
type ScenarioConfig struct {
	ProbPessimistic float64 `mapstructure:"prob_pessimistic" yaml:"prob_pessimistic"`
	ProbBase        float64 `mapstructure:"prob_base"        yaml:"prob_base"`
	ProbOptimistic  float64 `mapstructure:"prob_optimistic"  yaml:"prob_optimistic"`

	PessimisticGrowthScale float64 `mapstructure:"pessimistic_growth_scale" yaml:"pessimistic_growth_scale"`
	PessimisticWACCDelta   float64 `mapstructure:"pessimistic_wacc_delta"   yaml:"pessimistic_wacc_delta"`
	PessimisticGrowthDelta float64 `mapstructure:"pessimistic_growth_delta" yaml:"pessimistic_growth_delta"`
	OptimisticGrowthScale  float64 `mapstructure:"optimistic_growth_scale"  yaml:"optimistic_growth_scale"`
	OptimisticWACCDelta    float64 `mapstructure:"optimistic_wacc_delta"    yaml:"optimistic_wacc_delta"`
	OptimisticGrowthDelta  float64 `mapstructure:"optimistic_growth_delta"  yaml:"optimistic_growth_delta"`
}

// DataConfig holds data source settings.
type DataConfig struct {
	CacheTTL          int `mapstructure:"cache_ttl"          yaml:"cache_ttl"` // seconds
	ConcurrentFetches int `mapstructure:"concurrent_fetches" yaml:"concurrent_fetches"`
	RateLimitPerSec   int `mapstructure:"rate_limit_per_sec" yaml:"rate_limit_per_sec"`
	TimeoutSec        int `mapstructure:"timeout_sec"        yaml:"timeout_sec"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// ReportConfig holds report generation settings.
type ReportConfig struct {
	Format    string `mapstructure:"format"     yaml:"format"` // "text", "json", "html"
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.intrinsiq/config.yaml (home directory)
//  3. /etc/intrinsiq/config.yaml (system)
//
// Environment variables override config file values.
// Format: INTRINSIQ_<SECTION>_<KEY>, e.g., INTRINSIQ_API_PORT
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".intrinsiq"))
	v.AddConfigPath("/etc/intrinsiq")

	v.SetEnvPrefix("INTRINSIQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("INTRINSIQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects malformed configuration. Unlike domain violations, these
// are programmer/operator errors and surface as plain errors.
func (c *Config) Validate() error {
	if c.Valuation.Convention != "midyear" && c.Valuation.Convention != "endyear" {
		return fmt.Errorf("invalid discounting convention %q", c.Valuation.Convention)
	}
	if c.Valuation.CountryRiskMethod != "beta" && c.Valuation.CountryRiskMethod != "additive" {
		return fmt.Errorf("invalid country risk method %q", c.Valuation.CountryRiskMethod)
	}
	if c.Valuation.ProjectionYears < 1 {
		return fmt.Errorf("projection_years must be at least 1, got %d", c.Valuation.ProjectionYears)
	}
	if c.Scenario.ProbPessimistic < 0 || c.Scenario.ProbBase < 0 || c.Scenario.ProbOptimistic < 0 {
		return fmt.Errorf("scenario probabilities must be non-negative")
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid API port %d", c.API.Port)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Growth defaults
	v.SetDefault("valuation.growth_perpetuity_cap", 0.04)
	v.SetDefault("valuation.growth_realism_ceiling", 0.05)
	v.SetDefault("valuation.growth_min_spread", 0.02)
	v.SetDefault("valuation.growth_weight_hist", 0.3)
	v.SetDefault("valuation.allow_payout_override", false)

	// Cost of capital defaults
	v.SetDefault("valuation.country_risk_method", "beta")
	v.SetDefault("valuation.erp_floor", 0.02)

	// Projection defaults
	v.SetDefault("valuation.projection_years", 5)
	v.SetDefault("valuation.tier_boundary_mid", 0.30)
	v.SetDefault("valuation.tier_boundary_high", 0.50)
	v.SetDefault("valuation.tier_start_low", 0.12)
	v.SetDefault("valuation.tier_start_mid", 0.18)
	v.SetDefault("valuation.tier_start_high", 0.25)
	v.SetDefault("valuation.max_reinvestment_rate", 0.80)

	// Discounting defaults
	v.SetDefault("valuation.convention", "midyear")
	v.SetDefault("valuation.min_spread", 0.02)
	v.SetDefault("valuation.growth_ceiling", 0.05)

	// Dividend model defaults
	v.SetDefault("valuation.ddm_stage_years", 5)
	v.SetDefault("valuation.ddm_high_growth_cap", 0.08)

	// Bridge defaults
	v.SetDefault("valuation.ifrs_leases", false)
	v.SetDefault("valuation.lease_term_years", 7)
	v.SetDefault("valuation.lease_discount_rate", 0.06)

	// Scenario defaults
	v.SetDefault("scenario.prob_pessimistic", 0.25)
	v.SetDefault("scenario.prob_base", 0.50)
	v.SetDefault("scenario.prob_optimistic", 0.25)
	v.SetDefault("scenario.pessimistic_growth_scale", 0.6)
	v.SetDefault("scenario.pessimistic_wacc_delta", 0.02)
	v.SetDefault("scenario.pessimistic_growth_delta", -0.01)
	v.SetDefault("scenario.optimistic_growth_scale", 1.4)
	v.SetDefault("scenario.optimistic_wacc_delta", -0.01)
	v.SetDefault("scenario.optimistic_growth_delta", 0.005)

	// Data defaults
	v.SetDefault("data.cache_ttl", 300) // 5 minutes
	v.SetDefault("data.concurrent_fetches", 5)
	v.SetDefault("data.rate_limit_per_sec", 2)
	v.SetDefault("data.timeout_sec", 15)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Report defaults
	v.SetDefault("report.format", "text")
	v.SetDefault("report.output_dir", ".")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
