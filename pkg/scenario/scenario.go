// Package scenario perturbs the base revenue and cost into optimistic and
// pessimistic variants and evaluates each on a present-value basis.
package scenario

import (
	"github.com/iwvelando/construction-forecast/pkg/constants"
	"github.com/iwvelando/construction-forecast/pkg/mathutil"
)

// Names of the generated scenarios.
const (
	Optimistic  = "optimistic"
	Base        = "base"
	Pessimistic = "pessimistic"
)

// Result is the evaluation of one scenario. Margin and ROI are percentages.
type Result struct {
	Name         string  `json:"name"`
	TotalCost    float64 `json:"totalCost"`
	TotalRevenue float64 `json:"totalRevenue"`
	Profit       float64 `json:"profit"`
	Margin       float64 `json:"margin"`
	ROI          float64 `json:"roi"`
	NPVRevenue   float64 `json:"npvRevenue"`
	NPVProfit    float64 `json:"npvProfit"`
	NPVROI       float64 `json:"npvROI"`
}

// Set holds the three scenarios.
type Set struct {
	Optimistic  Result `json:"optimistic"`
	Base        Result `json:"base"`
	Pessimistic Result `json:"pessimistic"`
}

// All returns the scenarios from best to worst.
func (s Set) All() []Result {
	return []Result{s.Optimistic, s.Base, s.Pessimistic}
}

// Perturbation scales revenue and cost.
type Perturbation struct {
	Name          string
	RevenueFactor float64
	CostFactor    float64
}

// Perturbations returns the fixed scenario policy.
func Perturbations() []Perturbation {
	return []Perturbation{
		{Name: Optimistic, RevenueFactor: constants.OptimisticRevenueFactor, CostFactor: constants.OptimisticCostFactor},
		{Name: Base, RevenueFactor: 1, CostFactor: 1},
		{Name: Pessimistic, RevenueFactor: constants.PessimisticRevenueFactor, CostFactor: constants.PessimisticCostFactor},
	}
}

// Evaluate applies one perturbation. The factors act on the pre-discount
// revenue, which is then discounted over totalMonths.
func Evaluate(p Perturbation, baseRevenue, baseCost float64, totalMonths int, discountRate float64) Result {
	revenue := baseRevenue * p.RevenueFactor
	cost := baseCost * p.CostFactor
	profit := revenue - cost
	npvRevenue := mathutil.Discount(revenue, discountRate, totalMonths)
	npvProfit := npvRevenue - cost

	return Result{
		Name:         p.Name,
		TotalCost:    cost,
		TotalRevenue: revenue,
		Profit:       profit,
		Margin:       mathutil.CalculatePercentage(profit, revenue),
		ROI:          mathutil.CalculatePercentage(profit, cost),
		NPVRevenue:   npvRevenue,
		NPVProfit:    npvProfit,
		NPVROI:       mathutil.CalculatePercentage(npvProfit, cost),
	}
}

// Generate evaluates the optimistic, base and pessimistic scenarios.
func Generate(baseRevenue, baseCost float64, totalMonths int, discountRate float64) Set {
	var set Set
	for _, p := range Perturbations() {
		r := Evaluate(p, baseRevenue, baseCost, totalMonths, discountRate)
		switch p.Name {
		case Optimistic:
			set.Optimistic = r
		case Base:
			set.Base = r
		case Pessimistic:
			set.Pessimistic = r
		}
	}
	return set
}
