package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaguri8/earning-projections/pkg/core/assumption"
	"github.com/zaguri8/earning-projections/pkg/core/metrics"
)

func f(v float64) *float64 { return &v }

func testParams() assumption.Params {
	p := assumption.DefaultParams()
	p.CurrentYear = 2024
	return p
}

func historyOf(rows ...*metrics.Record) *metrics.Table {
	for _, r := range rows {
		r.CalculateDerived()
	}
	return metrics.NewTable(rows)
}

func TestProjectEmptyHistory(t *testing.T) {
	_, err := Project(metrics.NewTable(nil), testParams(), assumption.ScenarioBase)
	assert.ErrorIs(t, err, ErrEmptyHistory)
}

func TestProjectInvalidParams(t *testing.T) {
	params := testParams()
	params.CurrentYear = 0
	_, err := Project(historyOf(&metrics.Record{Year: 2023, Revenue: f(100)}), params, assumption.ScenarioBase)
	assert.Error(t, err)
}

func TestProjectZeroYears(t *testing.T) {
	params := testParams()
	params.ProjectionYears = 0
	table, err := Project(historyOf(&metrics.Record{Year: 2023, Revenue: f(100)}), params, assumption.ScenarioBase)
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
	assert.Nil(t, table.FinalRow())
}

func TestProjectYearNumbering(t *testing.T) {
	table, err := Project(historyOf(&metrics.Record{Year: 2023, Revenue: f(100)}), testParams(), assumption.ScenarioBase)
	require.NoError(t, err)
	require.Len(t, table.Rows, 5)
	assert.Equal(t, 2024, table.Rows[0].Year)
	assert.Equal(t, 2028, table.Rows[4].Year)
}

func TestProjectRevenueCompounds(t *testing.T) {
	table, err := Project(historyOf(&metrics.Record{Year: 2023, Revenue: f(1000)}), testParams(), assumption.ScenarioBull)
	require.NoError(t, err)

	want := 1000.0
	for _, row := range table.Rows {
		want *= 1.09
		require.NotNil(t, row.Revenue)
		assert.InDelta(t, want, *row.Revenue, 1e-6)
	}
}

func TestProjectCostRatioCarriesForward(t *testing.T) {
	history := historyOf(&metrics.Record{Year: 2023, Revenue: f(1000), COGS: f(450)})
	table, err := Project(history, testParams(), assumption.ScenarioBase)
	require.NoError(t, err)

	first := table.Rows[0]
	require.NotNil(t, first.COGS)
	// Historical 45% ratio applies in year one with no efficiency gain yet.
	assert.InDelta(t, 1050*0.45, *first.COGS, 1e-6)

	second := table.Rows[1]
	require.NotNil(t, second.COGS)
	ratioYearTwo := *first.COGS / *first.Revenue
	assert.InDelta(t, *second.Revenue*ratioYearTwo*(1-0.005), *second.COGS, 1e-6)
}

func TestProjectDefaultCostRatioWithoutHistory(t *testing.T) {
	table, err := Project(historyOf(&metrics.Record{Year: 2023, Revenue: f(1000)}), testParams(), assumption.ScenarioBase)
	require.NoError(t, err)

	first := table.Rows[0]
	require.NotNil(t, first.COGS)
	assert.InDelta(t, 1050*0.60, *first.COGS, 1e-6)
}

func TestProjectTaxAsymmetry(t *testing.T) {
	params := testParams()
	params.RevenueGrowth[assumption.ScenarioBase] = 0

	// Historical ratio 0.90 on 10M revenue gives 1M operating income.
	profitable := historyOf(&metrics.Record{Year: 2023, Revenue: f(10_000_000), COGS: f(9_000_000)})
	table, err := Project(profitable, params, assumption.ScenarioBase)
	require.NoError(t, err)
	ni := table.Rows[0].NetIncome
	require.NotNil(t, ni)
	assert.InDelta(t, 750_000, *ni, 1e-6, "positive operating income is taxed at 25%")

	// Cost ratio 1.5 on 1M revenue gives a 500k operating loss.
	losing := historyOf(&metrics.Record{Year: 2023, Revenue: f(1_000_000), COGS: f(1_500_000)})
	table, err = Project(losing, params, assumption.ScenarioBase)
	require.NoError(t, err)
	ni = table.Rows[0].NetIncome
	require.NotNil(t, ni)
	assert.InDelta(t, -500_000, *ni, 1e-6, "losses pass through without a tax benefit")
}

func TestProjectOperatingLeverage(t *testing.T) {
	history := historyOf(&metrics.Record{
		Year:       2023,
		Revenue:    f(1000),
		COGS:       f(400),
		RDExpense:  f(100),
		SGAExpense: f(200),
	})
	table, err := Project(history, testParams(), assumption.ScenarioBull)
	require.NoError(t, err)

	first := table.Rows[0]
	require.NotNil(t, first.RDExpense)
	assert.InDelta(t, 100*(1+0.09*0.80), *first.RDExpense, 1e-6)
	require.NotNil(t, first.SGAExpense)
	assert.InDelta(t, 200*(1+0.09*0.60), *first.SGAExpense, 1e-6)

	require.NotNil(t, first.OperatingIncome)
	wantOI := *first.GrossProfit - *first.RDExpense - *first.SGAExpense
	assert.InDelta(t, wantOI, *first.OperatingIncome, 1e-6)
}

func TestProjectCashFlowAndCapex(t *testing.T) {
	history := historyOf(&metrics.Record{Year: 2023, Revenue: f(1000), COGS: f(400)})
	table, err := Project(history, testParams(), assumption.ScenarioBase)
	require.NoError(t, err)

	first := table.Rows[0]
	require.NotNil(t, first.CFO)
	// CFO = NI + 2% revenue depreciation - 1% revenue working capital.
	wantCFO := *first.NetIncome + *first.Revenue*0.02 - *first.Revenue*0.01
	assert.InDelta(t, wantCFO, *first.CFO, 1e-6)

	require.NotNil(t, first.CapEx)
	assert.InDelta(t, -*first.Revenue*0.03, *first.CapEx, 1e-6)
	require.NotNil(t, first.FCF)
	assert.InDelta(t, *first.CFO-(*first.Revenue*0.03), *first.FCF, 1e-6)
}

func TestProjectShareDilution(t *testing.T) {
	history := historyOf(&metrics.Record{Year: 2023, Revenue: f(1000), SharesDiluted: f(500)})
	table, err := Project(history, testParams(), assumption.ScenarioBase)
	require.NoError(t, err)

	require.NotNil(t, table.Rows[0].SharesDiluted)
	assert.InDelta(t, 505, *table.Rows[0].SharesDiluted, 1e-6)
	require.NotNil(t, table.Rows[1].SharesDiluted)
	assert.InDelta(t, 510.05, *table.Rows[1].SharesDiluted, 1e-6)
}

func TestProjectNullPropagation(t *testing.T) {
	// No revenue at all: nothing downstream of revenue can be computed.
	table, err := Project(historyOf(&metrics.Record{Year: 2023, NetIncome: f(-50)}), testParams(), assumption.ScenarioBase)
	require.NoError(t, err)

	for _, row := range table.Rows {
		assert.Nil(t, row.Revenue)
		assert.Nil(t, row.COGS)
		assert.Nil(t, row.NetIncome)
		assert.Nil(t, row.CFO)
		assert.Nil(t, row.CapEx)
	}

	// No share history: no projected share count, never a default.
	table, err = Project(historyOf(&metrics.Record{Year: 2023, Revenue: f(1000)}), testParams(), assumption.ScenarioBase)
	require.NoError(t, err)
	for _, row := range table.Rows {
		assert.Nil(t, row.SharesDiluted)
		assert.Nil(t, row.EPS)
	}
}

func TestProjectConvergenceMetadata(t *testing.T) {
	losing := historyOf(&metrics.Record{Year: 2023, Revenue: f(1_000_000), NetIncome: f(-200_000)})
	table, err := Project(losing, testParams(), assumption.ScenarioBull)
	require.NoError(t, err)

	require.NotNil(t, table.Assumptions.TargetNetMargin)
	assert.InDelta(t, 0.15, *table.Assumptions.TargetNetMargin, 1e-9)
	assert.Equal(t, 5, table.Assumptions.YearsToProfitability)

	profitable := historyOf(&metrics.Record{Year: 2023, Revenue: f(1_000_000), NetIncome: f(200_000)})
	table, err = Project(profitable, testParams(), assumption.ScenarioBull)
	require.NoError(t, err)
	assert.Nil(t, table.Assumptions.TargetNetMargin)
	assert.Equal(t, 0, table.Assumptions.YearsToProfitability)
}

func TestProjectLossMakerTrendsTowardProfit(t *testing.T) {
	// A growing loss-maker with no cost history: the default cost structure
	// plus operating leverage turns net income positive and keeps it
	// improving year over year.
	history := historyOf(
		&metrics.Record{Year: 2021, Revenue: f(100_000), NetIncome: f(-60_000)},
		&metrics.Record{Year: 2022, Revenue: f(150_000), NetIncome: f(-40_000)},
		&metrics.Record{Year: 2023, Revenue: f(250_000), NetIncome: f(-15_000)},
	)
	table, err := Project(history, testParams(), assumption.ScenarioBull)
	require.NoError(t, err)
	require.Len(t, table.Rows, 5)

	prev := history.LastRow().NetIncome
	for _, row := range table.Rows {
		require.NotNil(t, row.NetIncome, "year %d", row.Year)
		assert.Greater(t, *row.NetIncome, *prev, "net income improves every projected year")
		prev = row.NetIncome
	}
	assert.Positive(t, *table.FinalRow().NetIncome)
}

func TestProjectDoesNotMutateHistory(t *testing.T) {
	base := &metrics.Record{Year: 2023, Revenue: f(1000), COGS: f(400)}
	history := historyOf(base)
	_, err := Project(history, testParams(), assumption.ScenarioBase)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, *base.Revenue)
	assert.Equal(t, 400.0, *base.COGS)
	assert.Equal(t, 1, history.Len())
}

func TestFCFSeriesSkipsUndefinedYears(t *testing.T) {
	table := &Table{Rows: []*metrics.Record{
		{Year: 2024, FCF: f(10)},
		{Year: 2025},
		{Year: 2026, FCF: f(30)},
	}}
	assert.Equal(t, []float64{10, 30}, table.FCFSeries())
}
