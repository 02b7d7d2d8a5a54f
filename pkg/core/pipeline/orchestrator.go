// Package pipeline sequences one ticker's batch analysis: historical
// extraction, the three scenario projections, per-scenario valuations, and
// summary statistics.
package pipeline

import (
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/zaguri8/earning-projections/pkg/core/assumption"
	"github.com/zaguri8/earning-projections/pkg/core/facts"
	"github.com/zaguri8/earning-projections/pkg/core/metrics"
	"github.com/zaguri8/earning-projections/pkg/core/projection"
	"github.com/zaguri8/earning-projections/pkg/core/valuation"
)

// Result bundles everything produced for one ticker run.
type Result struct {
	Ticker      string
	Params      assumption.Params
	History     *metrics.Table
	Projections map[assumption.Scenario]*projection.Table
	Valuations  map[assumption.Scenario]*valuation.Summary
	Stats       SummaryStats
}

// SummaryStats are the headline statistics reported alongside the tables.
type SummaryStats struct {
	RevenueCAGR            map[assumption.Scenario]*float64 `json:"revenue_cagr"`
	HistoricalAvgNetMargin *float64                         `json:"historical_avg_net_margin"`
	HistoricalAvgFCFMargin *float64                         `json:"historical_avg_fcf_margin"`
}

// Orchestrator drives the batch for one parameter set.
type Orchestrator struct {
	params assumption.Params
	log    *zap.Logger
}

// NewOrchestrator builds an orchestrator. A nil logger disables logging.
func NewOrchestrator(params assumption.Params, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{params: params, log: log}
}

// Run extracts history from the supplied documents, projects the three
// scenarios, and valuates each. The scenarios are mutually independent and
// run concurrently. A scenario whose FCF series ends up empty is reported
// without a valuation rather than failing the run; invalid parameters fail
// up front.
func (o *Orchestrator) Run(ticker string, docs map[int]*facts.Node) (*Result, error) {
	if err := o.params.Validate(); err != nil {
		return nil, err
	}

	history := metrics.BuildHistory(docs, o.log.With(zap.String("ticker", ticker)))
	if history.Len() == 0 {
		return nil, fmt.Errorf("no historical data extracted for %s", ticker)
	}
	o.log.Info("historical extraction complete",
		zap.String("ticker", ticker),
		zap.Ints("years", history.Years()))

	result := &Result{
		Ticker:      ticker,
		Params:      o.params,
		History:     history,
		Projections: make(map[assumption.Scenario]*projection.Table, 3),
		Valuations:  make(map[assumption.Scenario]*valuation.Summary, 3),
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	for _, scenario := range assumption.Scenarios() {
		wg.Add(1)
		go func(scenario assumption.Scenario) {
			defer wg.Done()
			table, err := projection.Project(history, o.params, scenario)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("scenario %s: %w", scenario, err)
				}
				return
			}
			result.Projections[scenario] = table
		}(scenario)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	for _, scenario := range assumption.Scenarios() {
		table := result.Projections[scenario]
		summary, err := valuation.Valuate(table,
			o.params.DiscountRate, o.params.TerminalGrowthRate, o.params.PEFor(scenario))
		if err != nil {
			o.log.Warn("valuation skipped",
				zap.String("ticker", ticker),
				zap.String("scenario", string(scenario)),
				zap.Error(err))
			continue
		}
		result.Valuations[scenario] = summary
	}

	result.Stats = o.summarize(result)
	return result, nil
}

func (o *Orchestrator) summarize(result *Result) SummaryStats {
	stats := SummaryStats{
		RevenueCAGR: make(map[assumption.Scenario]*float64, 3),
	}

	for scenario, table := range result.Projections {
		stats.RevenueCAGR[scenario] = revenueCAGR(table.Rows)
	}

	stats.HistoricalAvgNetMargin = meanOf(result.History.Rows(), metrics.MetricNetMargin)
	stats.HistoricalAvgFCFMargin = meanOf(result.History.Rows(), metrics.MetricFCFMargin)
	return stats
}

// revenueCAGR is the compound annual growth rate between the first and last
// projected revenues, or nil when either endpoint is undefined.
func revenueCAGR(rows []*metrics.Record) *float64 {
	if len(rows) < 2 {
		return nil
	}
	first, last := rows[0].Revenue, rows[len(rows)-1].Revenue
	if first == nil || last == nil || *first <= 0 || *last <= 0 {
		return nil
	}
	years := float64(len(rows) - 1)
	cagr := math.Pow(*last / *first, 1/years) - 1
	return &cagr
}

func meanOf(rows []*metrics.Record, m metrics.Metric) *float64 {
	sum, n := 0.0, 0
	for _, row := range rows {
		if v := row.Value(m); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}
