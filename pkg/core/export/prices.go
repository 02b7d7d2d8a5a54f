package export

import (
	"github.com/zaguri8/earning-projections/pkg/core/metrics"
)

// PriceProjector derives an implied share price path from projected EPS.
// Profitable years price at PERatio times EPS. For loss-making years with a
// known current price, the price walks linearly toward the level implied by
// TargetPE on a notional breakeven EPS, over YearsToProfitability steps.
type PriceProjector struct {
	PERatio              float64
	CurrentPrice         *float64
	TargetPE             float64
	YearsToProfitability int
}

// PricePoint pairs a projected year with its implied price. Price is nil
// when no price can be derived for the year.
type PricePoint struct {
	Year  int      `json:"year"`
	Price *float64 `json:"price"`
}

// Project computes one price point per projected row.
func (p PriceProjector) Project(rows []*metrics.Record) []PricePoint {
	points := make([]PricePoint, 0, len(rows))
	for i, row := range rows {
		points = append(points, PricePoint{Year: row.Year, Price: p.priceFor(row, i)})
	}
	return points
}

func (p PriceProjector) priceFor(row *metrics.Record, yearIndex int) *float64 {
	if row.EPS != nil && *row.EPS > 0 {
		v := *row.EPS * p.PERatio
		return &v
	}
	if p.CurrentPrice == nil || p.YearsToProfitability <= 0 {
		return nil
	}
	// Loss years: interpolate from the current price toward a floor price
	// implied by the target multiple on a near-breakeven EPS.
	floor := p.TargetPE * 0.01
	step := float64(yearIndex+1) / float64(p.YearsToProfitability)
	if step > 1 {
		step = 1
	}
	v := *p.CurrentPrice + (floor-*p.CurrentPrice)*step
	return &v
}
