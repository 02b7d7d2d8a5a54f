// Package metrics turns fact documents into flat per-year records of
// canonical financial metrics and derives the standard accounting ratios.
// A nil field means the metric could not be resolved for that year, which is
// a normal outcome; derivations propagate nil rather than defaulting to zero.
package metrics

import "math"

// Record holds one fiscal year's canonical metrics, base and derived.
// Values are in the filing's reporting currency units (typically USD).
type Record struct {
	Year int

	Revenue         *float64
	COGS            *float64
	GrossProfit     *float64
	RDExpense       *float64
	SGAExpense      *float64
	OperatingIncome *float64
	NetIncome       *float64
	EPS             *float64
	SharesDiluted   *float64
	CFO             *float64
	CapEx           *float64
	FCF             *float64
	TotalDebt       *float64
	Cash            *float64
	BookValue       *float64

	GrossMargin     *float64
	OperatingMargin *float64
	NetMargin       *float64
	FCFMargin       *float64
}

// CalculateDerived fills the derived metrics from the base metrics, in
// dependency order: gross profit before its margin, free cash flow before
// its margin. A missing input leaves the derived value nil.
func (r *Record) CalculateDerived() {
	if r.Revenue != nil && r.COGS != nil {
		gp := *r.Revenue - *r.COGS
		r.GrossProfit = &gp
	}

	if r.CFO != nil && r.CapEx != nil {
		fcf := *r.CFO - math.Abs(*r.CapEx)
		r.FCF = &fcf
	}

	if r.Revenue != nil && *r.Revenue > 0 {
		r.GrossMargin = ratio(r.GrossProfit, *r.Revenue)
		r.OperatingMargin = ratio(r.OperatingIncome, *r.Revenue)
		r.NetMargin = ratio(r.NetIncome, *r.Revenue)
		r.FCFMargin = ratio(r.FCF, *r.Revenue)
	}

	if r.NetIncome != nil && r.SharesDiluted != nil && *r.SharesDiluted > 0 {
		eps := *r.NetIncome / *r.SharesDiluted
		r.EPS = &eps
	}
}

func ratio(numerator *float64, denominator float64) *float64 {
	if numerator == nil {
		return nil
	}
	v := *numerator / denominator
	return &v
}

// Value returns one metric by canonical name.
func (r *Record) Value(m Metric) *float64 {
	switch m {
	case MetricRevenue:
		return r.Revenue
	case MetricCOGS:
		return r.COGS
	case MetricGrossProfit:
		return r.GrossProfit
	case MetricRDExpense:
		return r.RDExpense
	case MetricSGAExpense:
		return r.SGAExpense
	case MetricOperatingIncome:
		return r.OperatingIncome
	case MetricNetIncome:
		return r.NetIncome
	case MetricEPS:
		return r.EPS
	case MetricSharesDiluted:
		return r.SharesDiluted
	case MetricCFO:
		return r.CFO
	case MetricCapEx:
		return r.CapEx
	case MetricFCF:
		return r.FCF
	case MetricTotalDebt:
		return r.TotalDebt
	case MetricCash:
		return r.Cash
	case MetricBookValue:
		return r.BookValue
	case MetricGrossMargin:
		return r.GrossMargin
	case MetricOperatingMargin:
		return r.OperatingMargin
	case MetricNetMargin:
		return r.NetMargin
	case MetricFCFMargin:
		return r.FCFMargin
	default:
		return nil
	}
}

func (r *Record) set(m Metric, v *float64) {
	switch m {
	case MetricRevenue:
		r.Revenue = v
	case MetricCOGS:
		r.COGS = v
	case MetricRDExpense:
		r.RDExpense = v
	case MetricSGAExpense:
		r.SGAExpense = v
	case MetricOperatingIncome:
		r.OperatingIncome = v
	case MetricNetIncome:
		r.NetIncome = v
	case MetricEPS:
		r.EPS = v
	case MetricSharesDiluted:
		r.SharesDiluted = v
	case MetricCFO:
		r.CFO = v
	case MetricCapEx:
		r.CapEx = v
	case MetricTotalDebt:
		r.TotalDebt = v
	case MetricCash:
		r.Cash = v
	case MetricBookValue:
		r.BookValue = v
	}
}
