package projection

import (
	"errors"
	"fmt"

	"github.com/zaguri8/earning-projections/pkg/core/assumption"
	"github.com/zaguri8/earning-projections/pkg/core/metrics"
)

// ErrEmptyHistory is returned when there is no historical row to project
// from.
var ErrEmptyHistory = errors.New("projection requires at least one historical year")

// Project runs one scenario forward from the last historical year for the
// configured number of projection years. It is a pure function of its
// inputs: the history is read-only and every projected row is derived only
// from the row before it. Projecting zero years returns a table with no
// rows. Every per-field computation is null-propagating; an undefined input
// leaves that field undefined for the year rather than defaulting it.
func Project(history *metrics.Table, params assumption.Params, scenario assumption.Scenario) (*Table, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid projection params: %w", err)
	}
	base := history.LastRow()
	if base == nil {
		return nil, ErrEmptyHistory
	}

	growth := params.GrowthFor(scenario)
	convergence := params.ConvergenceFor(scenario, base)

	table := &Table{
		Scenario: scenario,
		Assumptions: Assumptions{
			Scenario:             scenario,
			RevenueGrowth:        growth,
			CapexPctRevenue:      params.CapexFor(scenario),
			TargetNetMargin:      convergence.TargetMargin,
			YearsToProfitability: convergence.Horizon,
		},
		Rows: make([]*metrics.Record, 0, params.ProjectionYears),
	}

	prev := base
	for i := 0; i < params.ProjectionYears; i++ {
		row := projectYear(prev, params, scenario, i, params.CurrentYear+i)
		table.Rows = append(table.Rows, row)
		prev = row
	}
	return table, nil
}

// projectYear produces one projected row from the previous year's row.
// yearIndex counts elapsed projection years, starting at 0.
func projectYear(prev *metrics.Record, params assumption.Params, scenario assumption.Scenario, yearIndex, year int) *metrics.Record {
	row := &metrics.Record{Year: year}
	growth := params.GrowthFor(scenario)

	if prev.Revenue != nil {
		revenue := *prev.Revenue * (1 + growth)
		row.Revenue = &revenue
	}

	if row.Revenue != nil {
		// Cost ratio carries forward with a small efficiency gain per
		// elapsed projection year; without a historical ratio the default
		// applies.
		ratio := params.COGSDefaultRatio
		if prev.COGS != nil && prev.Revenue != nil && *prev.Revenue > 0 {
			ratio = *prev.COGS / *prev.Revenue
		}
		cogs := *row.Revenue * ratio * (1 - params.COGSEfficiencyGain*float64(yearIndex))
		row.COGS = &cogs

		// R&D and SG&A grow slower than revenue: operating leverage.
		rdBase := 0.0
		if prev.RDExpense != nil {
			rdBase = *prev.RDExpense
		}
		rd := rdBase * (1 + growth*params.RDGrowthFactor)
		row.RDExpense = &rd

		sgaBase := 0.0
		if prev.SGAExpense != nil {
			sgaBase = *prev.SGAExpense
		}
		sga := sgaBase * (1 + growth*params.SGAGrowthFactor)
		row.SGAExpense = &sga
	}

	if row.Revenue != nil && row.COGS != nil {
		grossProfit := *row.Revenue - *row.COGS
		row.GrossProfit = &grossProfit

		opex := 0.0
		if row.RDExpense != nil {
			opex += *row.RDExpense
		}
		if row.SGAExpense != nil {
			opex += *row.SGAExpense
		}
		operatingIncome := grossProfit - opex
		row.OperatingIncome = &operatingIncome
	}

	if row.OperatingIncome != nil {
		// Positive operating income is taxed; losses pass through with no
		// tax benefit. This asymmetry is what keeps projected losses from
		// compounding the way a naive growth multiplier would.
		netIncome := *row.OperatingIncome
		if netIncome > 0 {
			netIncome *= 1 - params.TaxRate
		}
		row.NetIncome = &netIncome
	}

	if row.NetIncome != nil && row.Revenue != nil {
		depreciation := *row.Revenue * params.DepreciationPctRevenue
		workingCapital := *row.Revenue * params.WorkingCapitalPctRevenue
		cfo := *row.NetIncome + depreciation - workingCapital
		row.CFO = &cfo
	}

	if row.Revenue != nil {
		capex := -(*row.Revenue * params.CapexFor(scenario))
		row.CapEx = &capex
	}

	if prev.SharesDiluted != nil {
		shares := *prev.SharesDiluted * (1 + params.DilutionRate)
		row.SharesDiluted = &shares
	}

	// Margins, free cash flow, and EPS derive exactly as they do for
	// historical rows.
	row.CalculateDerived()
	return row
}
