package metrics

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed alias_map.json
var aliasMapJSON []byte

// Metric names one canonical financial line item, independent of the source
// tag spelling it was reported under.
type Metric string

const (
	MetricRevenue         Metric = "revenue"
	MetricCOGS            Metric = "cogs"
	MetricRDExpense       Metric = "rd_expense"
	MetricSGAExpense      Metric = "sga_expense"
	MetricOperatingIncome Metric = "operating_income"
	MetricNetIncome       Metric = "net_income"
	MetricEPS             Metric = "eps"
	MetricSharesDiluted   Metric = "shares_diluted"
	MetricCFO             Metric = "cfo"
	MetricCapEx           Metric = "capex"
	MetricTotalDebt       Metric = "total_debt"
	MetricCash            Metric = "cash"
	MetricBookValue       Metric = "book_value"

	MetricGrossProfit     Metric = "gross_profit"
	MetricGrossMargin     Metric = "gross_margin"
	MetricOperatingMargin Metric = "operating_margin"
	MetricNetMargin       Metric = "net_margin"
	MetricFCF             Metric = "fcf"
	MetricFCFMargin       Metric = "fcf_margin"
)

// BaseMetrics lists the extracted metrics in table-column order. Derived
// metrics are appended by DerivedMetrics.
var BaseMetrics = []Metric{
	MetricRevenue, MetricCOGS, MetricGrossProfit, MetricRDExpense, MetricSGAExpense,
	MetricOperatingIncome, MetricNetIncome, MetricEPS, MetricSharesDiluted,
	MetricCFO, MetricCapEx, MetricFCF, MetricTotalDebt, MetricCash, MetricBookValue,
}

// DerivedRatios lists the ratio columns computed from base metrics.
var DerivedRatios = []Metric{
	MetricGrossMargin, MetricOperatingMargin, MetricNetMargin, MetricFCFMargin,
}

// Columns returns every table column in canonical order.
func Columns() []Metric {
	cols := make([]Metric, 0, len(BaseMetrics)+len(DerivedRatios))
	cols = append(cols, BaseMetrics...)
	cols = append(cols, DerivedRatios...)
	return cols
}

// AliasTable maps canonical metrics to their prioritized source-tag aliases
// and the statement sections searched first for each. Alias order is a
// priority: the first alias that yields a usable value wins.
type AliasTable struct {
	order    []Metric
	aliases  map[Metric][]string
	priority map[Metric][]string
}

type aliasMapFile struct {
	Description string `json:"description"`
	Version     string `json:"version"`
	Metrics     map[Metric]struct {
		Aliases          []string `json:"aliases"`
		PrioritySections []string `json:"priority_sections"`
	} `json:"metrics"`
}

var defaultAliases *AliasTable

func init() {
	var err error
	defaultAliases, err = loadAliasTable(aliasMapJSON)
	if err != nil {
		panic(fmt.Sprintf("failed to load alias_map.json: %v", err))
	}
}

func loadAliasTable(raw []byte) (*AliasTable, error) {
	var file aliasMapFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse alias map: %w", err)
	}

	table := &AliasTable{
		aliases:  make(map[Metric][]string, len(file.Metrics)),
		priority: make(map[Metric][]string, len(file.Metrics)),
	}
	for _, m := range extractedMetrics() {
		def, ok := file.Metrics[m]
		if !ok {
			return nil, fmt.Errorf("alias map missing metric %q", m)
		}
		if len(def.Aliases) == 0 {
			return nil, fmt.Errorf("alias map has no aliases for %q", m)
		}
		table.order = append(table.order, m)
		table.aliases[m] = def.Aliases
		table.priority[m] = def.PrioritySections
	}
	return table, nil
}

func extractedMetrics() []Metric {
	return []Metric{
		MetricRevenue, MetricCOGS, MetricRDExpense, MetricSGAExpense,
		MetricOperatingIncome, MetricNetIncome, MetricEPS, MetricSharesDiluted,
		MetricCFO, MetricCapEx, MetricTotalDebt, MetricCash, MetricBookValue,
	}
}

// DefaultAliases returns the embedded alias table.
func DefaultAliases() *AliasTable {
	return defaultAliases
}

// Metrics returns the extracted metrics in table order.
func (t *AliasTable) Metrics() []Metric {
	return t.order
}

// Aliases returns the prioritized source tags for one metric.
func (t *AliasTable) Aliases(m Metric) []string {
	return t.aliases[m]
}

// PrioritySections returns the sections to search first for one metric.
func (t *AliasTable) PrioritySections(m Metric) []string {
	return t.priority[m]
}
