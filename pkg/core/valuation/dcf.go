// Package valuation turns one scenario's projected free-cash-flow series
// into a discounted-cash-flow value and a simple earnings-multiple value.
package valuation

import (
	"errors"
	"fmt"
	"math"

	"github.com/zaguri8/earning-projections/pkg/core/assumption"
	"github.com/zaguri8/earning-projections/pkg/core/projection"
)

var (
	// ErrEmptyFCFSeries indicates the projection produced no defined free
	// cash flow to discount.
	ErrEmptyFCFSeries = errors.New("free cash flow series is empty")
	// ErrInvalidRates indicates the discount rate does not exceed the
	// terminal growth rate, which makes the terminal value undefined.
	ErrInvalidRates = errors.New("discount rate must exceed terminal growth rate")
)

// Summary is the per-scenario valuation output, derived read-only from a
// projected table.
type Summary struct {
	Scenario assumption.Scenario `json:"scenario"`

	DCFValue float64 `json:"dcf_value"`
	PEValue  float64 `json:"pe_value"`

	FinalYearFCF float64  `json:"final_year_fcf"`
	FinalYearEPS *float64 `json:"final_year_eps"`

	DiscountRate   float64 `json:"discount_rate"`
	TerminalGrowth float64 `json:"terminal_growth"`
	PEMultiple     float64 `json:"pe_multiple"`
}

// Valuate computes the DCF and multiple-based values for one projected
// scenario. It fails with a configuration error, distinct from a data gap,
// when the FCF series is empty or the rates are inconsistent.
func Valuate(table *projection.Table, discountRate, terminalGrowth, peMultiple float64) (*Summary, error) {
	fcf := table.FCFSeries()
	dcf, err := DiscountFCF(fcf, discountRate, terminalGrowth)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", table.Scenario, err)
	}

	summary := &Summary{
		Scenario:       table.Scenario,
		DCFValue:       dcf,
		FinalYearFCF:   fcf[len(fcf)-1],
		DiscountRate:   discountRate,
		TerminalGrowth: terminalGrowth,
		PEMultiple:     peMultiple,
	}

	if final := table.FinalRow(); final != nil {
		if final.NetIncome != nil {
			summary.PEValue = *final.NetIncome * peMultiple
		}
		summary.FinalYearEPS = final.EPS
	}

	return summary, nil
}

// DiscountFCF computes the present value of a free-cash-flow series plus a
// Gordon-growth terminal value. Cash flows are discounted 1-indexed; the
// terminal value capitalizes the final flow grown one period and is
// discounted back by the series length.
func DiscountFCF(fcf []float64, discountRate, terminalGrowth float64) (float64, error) {
	if len(fcf) == 0 {
		return 0, ErrEmptyFCFSeries
	}
	if discountRate <= terminalGrowth {
		return 0, ErrInvalidRates
	}

	pv := 0.0
	for i, flow := range fcf {
		pv += flow / math.Pow(1+discountRate, float64(i+1))
	}

	terminal := fcf[len(fcf)-1] * (1 + terminalGrowth) / (discountRate - terminalGrowth)
	pv += terminal / math.Pow(1+discountRate, float64(len(fcf)))

	return pv, nil
}
