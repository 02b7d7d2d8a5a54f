package assumption

import (
	"math"

	"github.com/zaguri8/earning-projections/pkg/core/metrics"
)

// Band maps a minimum revenue growth rate to a target net margin and a
// years-to-profitability horizon for a currently-unprofitable entity. Faster
// growers get longer, lower-margin convergence paths, consistent with
// reinvestment-stage companies; shrinking entities get the fastest path.
type Band struct {
	MinGrowth    float64
	TargetMargin float64
	Horizon      int
}

// DefaultBands is the convergence policy, ordered highest growth first; the
// first band whose threshold the growth rate meets wins. Kept as data so the
// policy is testable on its own and swappable.
var DefaultBands = []Band{
	{MinGrowth: 0.20, TargetMargin: 0.10, Horizon: 7},
	{MinGrowth: 0.15, TargetMargin: 0.12, Horizon: 6},
	{MinGrowth: 0.05, TargetMargin: 0.15, Horizon: 5},
	{MinGrowth: 0.00, TargetMargin: 0.18, Horizon: 4},
	{MinGrowth: math.Inf(-1), TargetMargin: 0.20, Horizon: 3},
}

// Inference is the profitability-convergence assumption selected for one
// scenario. A nil TargetMargin with horizon 0 means no convergence is
// needed: the entity is already profitable and historical margins carry
// forward directly.
type Inference struct {
	TargetMargin *float64
	Horizon      int
}

// NoConvergence is the inference for profitable entities.
func NoConvergence() Inference {
	return Inference{}
}

// InferProfitability selects a target margin and horizon from the default
// band table. See InferProfitabilityWithBands.
func InferProfitability(revenueGrowth float64, lastYear *metrics.Record) Inference {
	return InferProfitabilityWithBands(revenueGrowth, lastYear, DefaultBands)
}

// InferProfitabilityWithBands heuristically selects convergence assumptions
// for one scenario. A positive trailing net income short-circuits to no
// convergence. Otherwise the growth rate picks a band, and the horizon is
// shortened when the trailing operating margin is already close to
// breakeven: within 5 points shortens by two years (floor 2), within 10
// points by one year (floor 3).
func InferProfitabilityWithBands(revenueGrowth float64, lastYear *metrics.Record, bands []Band) Inference {
	if lastYear != nil && lastYear.NetIncome != nil && *lastYear.NetIncome > 0 {
		return NoConvergence()
	}

	inferred := Inference{Horizon: 3}
	for _, band := range bands {
		if revenueGrowth >= band.MinGrowth {
			margin := band.TargetMargin
			inferred = Inference{TargetMargin: &margin, Horizon: band.Horizon}
			break
		}
	}

	if lastYear != nil && lastYear.OperatingMargin != nil {
		switch om := *lastYear.OperatingMargin; {
		case om > -0.05:
			inferred.Horizon = max(2, inferred.Horizon-2)
		case om > -0.10:
			inferred.Horizon = max(3, inferred.Horizon-1)
		}
	}

	return inferred
}

// ConvergenceFor resolves the convergence assumption for one scenario:
// profitable entities get none, and explicitly configured values override
// whatever the band table would infer.
func (p Params) ConvergenceFor(s Scenario, lastYear *metrics.Record) Inference {
	if lastYear != nil && lastYear.NetIncome != nil && *lastYear.NetIncome > 0 {
		return NoConvergence()
	}

	inferred := InferProfitability(p.GrowthFor(s), lastYear)
	if p.TargetNetMargin != nil {
		margin := *p.TargetNetMargin
		inferred.TargetMargin = &margin
	}
	if p.YearsToProfitability != nil {
		inferred.Horizon = *p.YearsToProfitability
	}
	return inferred
}
