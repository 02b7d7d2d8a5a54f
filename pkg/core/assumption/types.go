// Package assumption holds the projection and valuation parameters for one
// analysis run, plus the profitability-convergence policy for entities that
// are not yet profitable. The modeling constants the projection applies
// (tax rate, depreciation and working-capital proxies, cost leverage) are
// provisional assumptions, so they live here as configuration rather than as
// hard-coded policy in the projection loop.
package assumption

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// Scenario names one growth/margin trajectory used to bound projection
// uncertainty.
type Scenario string

const (
	ScenarioBear Scenario = "bear"
	ScenarioBase Scenario = "base"
	ScenarioBull Scenario = "bull"
)

// Scenarios returns the three scenarios in canonical order.
func Scenarios() []Scenario {
	return []Scenario{ScenarioBear, ScenarioBase, ScenarioBull}
}

// Params configures one projection and valuation run. Immutable once passed
// to the pipeline.
type Params struct {
	RevenueGrowth map[Scenario]float64 `yaml:"revenue_growth"`

	YearsBack       int `yaml:"years_back"`
	CurrentYear     int `yaml:"current_year"`
	ProjectionYears int `yaml:"projection_years"`

	// Explicit profitability convergence; nil means infer from the band
	// table. Explicit values always take precedence over inference.
	TargetNetMargin      *float64 `yaml:"target_net_margin"`
	YearsToProfitability *int     `yaml:"years_to_profitability"`

	TerminalGrowthRate float64 `yaml:"terminal_growth_rate"`
	DiscountRate       float64 `yaml:"discount_rate"`

	TaxRate                  float64              `yaml:"tax_rate"`
	DepreciationPctRevenue   float64              `yaml:"depreciation_pct_revenue"`
	WorkingCapitalPctRevenue float64              `yaml:"working_capital_pct_revenue"`
	CapexPctRevenue          map[Scenario]float64 `yaml:"capex_pct_revenue"`
	DefaultCapexPctRevenue   float64              `yaml:"default_capex_pct_revenue"`
	DilutionRate             float64              `yaml:"dilution_rate"`

	COGSDefaultRatio   float64 `yaml:"cogs_default_ratio"`
	COGSEfficiencyGain float64 `yaml:"cogs_efficiency_gain"`
	RDGrowthFactor     float64 `yaml:"rd_growth_factor"`
	SGAGrowthFactor    float64 `yaml:"sga_growth_factor"`

	PEMultiples map[Scenario]float64 `yaml:"pe_multiples"`
}

// DefaultParams returns the standard parameter set: bear/base/bull revenue
// growth of 2/5/9 percent, a 10 percent discount rate against 2.5 percent
// terminal growth, and PE multiples of 12/15/20.
func DefaultParams() Params {
	return Params{
		RevenueGrowth: map[Scenario]float64{
			ScenarioBear: 0.02,
			ScenarioBase: 0.05,
			ScenarioBull: 0.09,
		},
		YearsBack:                5,
		ProjectionYears:          5,
		TerminalGrowthRate:       0.025,
		DiscountRate:             0.10,
		TaxRate:                  0.25,
		DepreciationPctRevenue:   0.02,
		WorkingCapitalPctRevenue: 0.01,
		DefaultCapexPctRevenue:   0.03,
		DilutionRate:             0.01,
		COGSDefaultRatio:         0.60,
		COGSEfficiencyGain:       0.005,
		RDGrowthFactor:           0.80,
		SGAGrowthFactor:          0.60,
		PEMultiples: map[Scenario]float64{
			ScenarioBear: 12,
			ScenarioBase: 15,
			ScenarioBull: 20,
		},
	}
}

// LoadParams reads a YAML parameter file over the defaults, so partial files
// only override what they mention.
func LoadParams(path string) (Params, error) {
	params := DefaultParams()
	data, err := os.ReadFile(path)
	if err != nil {
		return params, fmt.Errorf("read params file: %w", err)
	}
	if err := yaml.Unmarshal(data, &params); err != nil {
		return params, fmt.Errorf("parse params file %s: %w", path, err)
	}
	return params, nil
}

// Validate reports configuration errors, which are usage errors distinct
// from missing data.
func (p Params) Validate() error {
	if p.CurrentYear <= 0 {
		return fmt.Errorf("current_year must be set, got %d", p.CurrentYear)
	}
	if p.YearsBack < 1 {
		return fmt.Errorf("years_back must be at least 1, got %d", p.YearsBack)
	}
	if p.ProjectionYears < 0 {
		return fmt.Errorf("projection_years must not be negative, got %d", p.ProjectionYears)
	}
	if p.DiscountRate <= p.TerminalGrowthRate {
		return fmt.Errorf("discount rate %.4f must exceed terminal growth rate %.4f",
			p.DiscountRate, p.TerminalGrowthRate)
	}
	for _, s := range Scenarios() {
		if _, ok := p.RevenueGrowth[s]; !ok {
			return fmt.Errorf("missing revenue growth rate for scenario %q", s)
		}
	}
	return nil
}

// GrowthFor returns the revenue growth rate for one scenario.
func (p Params) GrowthFor(s Scenario) float64 {
	return p.RevenueGrowth[s]
}

// CapexFor returns the capex-as-percent-of-revenue rate for one scenario.
func (p Params) CapexFor(s Scenario) float64 {
	if rate, ok := p.CapexPctRevenue[s]; ok {
		return rate
	}
	return p.DefaultCapexPctRevenue
}

// PEFor returns the earnings multiple for one scenario.
func (p Params) PEFor(s Scenario) float64 {
	if pe, ok := p.PEMultiples[s]; ok {
		return pe
	}
	return DefaultParams().PEMultiples[s]
}

// HistoricalYears returns the fiscal years the history should cover: the
// YearsBack years ending the year before CurrentYear, ascending.
func (p Params) HistoricalYears() []int {
	end := p.CurrentYear - 1
	start := end - p.YearsBack + 1
	years := make([]int, 0, p.YearsBack)
	for y := start; y <= end; y++ {
		years = append(years, y)
	}
	return years
}
