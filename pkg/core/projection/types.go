// Package projection advances a historical metrics table forward year by
// year under one scenario's growth and cost-structure assumptions. Each
// projected row derives only from the previous row, historical or projected,
// so the projection is an explicit left-to-right fold with no cross-year
// contamination.
package projection

import (
	"github.com/zaguri8/earning-projections/pkg/core/assumption"
	"github.com/zaguri8/earning-projections/pkg/core/metrics"
)

// Assumptions records the drivers resolved for one scenario run, including
// the profitability-convergence targets reported alongside the table.
type Assumptions struct {
	Scenario             assumption.Scenario
	RevenueGrowth        float64
	CapexPctRevenue      float64
	TargetNetMargin      *float64
	YearsToProfitability int
}

// Table is the projected metrics for one scenario: one row per projected
// year, same columns as the historical table, owned by the projector that
// built it and never mutated afterwards.
type Table struct {
	Scenario    assumption.Scenario
	Assumptions Assumptions
	Rows        []*metrics.Record
}

// FCFSeries returns the defined free-cash-flow values in year order;
// undefined years are dropped.
func (t *Table) FCFSeries() []float64 {
	series := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if row.FCF != nil {
			series = append(series, *row.FCF)
		}
	}
	return series
}

// FinalRow returns the last projected year's record, or nil when no years
// were projected.
func (t *Table) FinalRow() *metrics.Record {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[len(t.Rows)-1]
}
