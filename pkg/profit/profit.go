// Package profit derives the profit views of a project from its cost and
// sales projections.
package profit

import (
	"github.com/iwvelando/construction-forecast/pkg/costs"
	"github.com/iwvelando/construction-forecast/pkg/mathutil"
	"github.com/iwvelando/construction-forecast/pkg/sales"
)

// Metrics are the figures of one profit view. ROI and Margin are percentages.
type Metrics struct {
	Revenue float64 `json:"revenue"`
	Cost    float64 `json:"cost"`
	Profit  float64 `json:"profit"`
	ROI     float64 `json:"roi"`
	Margin  float64 `json:"margin"`
}

// Summary holds the three profit views.
type Summary struct {
	// Nominal ignores inflation and the time value of money.
	Nominal Metrics `json:"nominal"`
	// Projected pairs discounted revenue with inflated cost.
	Projected Metrics `json:"projected"`
	// Pessimistic pairs today's revenue with inflated cost.
	Pessimistic Metrics `json:"pessimistic"`
}

// Compute derives one view. A zero cost or revenue reports a zero ratio.
func Compute(revenue, cost float64) Metrics {
	profit := revenue - cost
	return Metrics{
		Revenue: revenue,
		Cost:    cost,
		Profit:  profit,
		ROI:     mathutil.CalculatePercentage(profit, cost),
		Margin:  mathutil.CalculatePercentage(profit, revenue),
	}
}

// Synthesize combines the cost and sales projections.
func Synthesize(c costs.Breakdown, s sales.Projection) Summary {
	return Summary{
		Nominal:     Compute(s.CurrentTotalSales, c.TotalNominalCost),
		Projected:   Compute(s.NPVAdjustedSales, c.TotalInflatedCost),
		Pessimistic: Compute(s.CurrentTotalSales, c.TotalInflatedCost),
	}
}
