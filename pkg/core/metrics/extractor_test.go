package metrics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaguri8/earning-projections/pkg/core/facts"
)

func annualFact(value float64, year int) []any {
	return []any{
		map[string]any{
			"value": value,
			"period": map[string]any{
				"startDate": fmt.Sprintf("%d-01-01", year),
				"endDate":   fmt.Sprintf("%d-12-31", year),
			},
			"filedAt": fmt.Sprintf("%d-02-01", year+1),
		},
	}
}

func TestExtractYearNestedDocument(t *testing.T) {
	doc := facts.FromAny(map[string]any{
		"StatementsOfIncome": map[string]any{
			"RevenueFromContractWithCustomerExcludingAssessedTax": annualFact(1_000_000, 2023),
			"CostOfRevenue": annualFact(600_000, 2023),
			"NetIncomeLoss": annualFact(120_000, 2023),
		},
		"StatementsOfCashFlows": map[string]any{
			"NetCashProvidedByUsedInOperatingActivities": annualFact(150_000, 2023),
			"PaymentsToAcquirePropertyPlantAndEquipment": annualFact(30_000, 2023),
		},
	})

	r := ExtractYear(doc, 2023)

	require.NotNil(t, r.Revenue)
	assert.Equal(t, 1_000_000.0, *r.Revenue)
	require.NotNil(t, r.COGS)
	assert.Equal(t, 600_000.0, *r.COGS)
	require.NotNil(t, r.NetIncome)
	assert.Equal(t, 120_000.0, *r.NetIncome)

	require.NotNil(t, r.GrossProfit)
	assert.Equal(t, 400_000.0, *r.GrossProfit)
	require.NotNil(t, r.FCF)
	assert.Equal(t, 120_000.0, *r.FCF)

	assert.Nil(t, r.RDExpense, "unreported metrics stay nil")
	assert.Nil(t, r.TotalDebt)
}

func TestExtractYearFlatDocument(t *testing.T) {
	doc := facts.FromAny(map[string]any{
		"Revenues":      2_500_000.0,
		"CostOfSales":   1_500_000.0,
		"NetIncomeLoss": 300_000.0,
	})

	r := ExtractYear(doc, 2023)

	require.NotNil(t, r.Revenue)
	assert.Equal(t, 2_500_000.0, *r.Revenue)
	require.NotNil(t, r.COGS)
	assert.Equal(t, 1_500_000.0, *r.COGS)
	require.NotNil(t, r.NetIncome)
	assert.Equal(t, 300_000.0, *r.NetIncome)
	require.NotNil(t, r.GrossProfit)
	assert.Equal(t, 1_000_000.0, *r.GrossProfit)
}

func TestExtractYearFlatAliasPriority(t *testing.T) {
	// Both spellings present: the earlier alias in the table wins.
	doc := facts.FromAny(map[string]any{
		"Revenue":  100.0,
		"Revenues": 200.0,
	})

	r := ExtractYear(doc, 2023)
	require.NotNil(t, r.Revenue)
	assert.Equal(t, 100.0, *r.Revenue)
}

func TestIsFlatDocument(t *testing.T) {
	assert.True(t, isFlatDocument(facts.FromAny(map[string]any{"Revenues": 1.0})))
	assert.False(t, isFlatDocument(facts.FromAny(map[string]any{"Revenues": "1.0"})),
		"string values force the nested path through the normalizer")
	assert.False(t, isFlatDocument(facts.FromAny(map[string]any{
		"Section": map[string]any{"Revenues": 1.0},
	})))
	assert.False(t, isFlatDocument(facts.FromAny(map[string]any{})))
	assert.False(t, isFlatDocument(facts.FromAny([]any{1.0})))
}

func TestExtractYearEmptyDocument(t *testing.T) {
	r := ExtractYear(facts.FromAny(map[string]any{}), 2023)
	require.NotNil(t, r)
	assert.Equal(t, 2023, r.Year)
	for _, m := range Columns() {
		assert.Nil(t, r.Value(m), "metric %s", m)
	}
}
