// Package sales projects sale revenue: the nominal value at today's prices,
// the value after post-construction appreciation and its present value.
package sales

import (
	"github.com/iwvelando/construction-forecast/pkg/mathutil"
)

// Projection is the projected sale revenue of a project.
type Projection struct {
	CurrentPricePerSqm   float64 `json:"currentPricePerSqm"`
	ProjectedPricePerSqm float64 `json:"projectedPricePerSqm"`
	SaleableArea         float64 `json:"saleableArea"`
	CurrentTotalSales    float64 `json:"currentTotalSales"`
	ProjectedTotalSales  float64 `json:"projectedTotalSales"`
	NPVAdjustedSales     float64 `json:"npvAdjustedSales"`
	AppreciationImpact   float64 `json:"appreciationImpact"`
	TimeValueLoss        float64 `json:"timeValueLoss"`
	MonthsUntilSale      int     `json:"monthsUntilSale"`
}

// ProjectSales prices the saleable area. The price is held flat during
// construction and appreciates only over the monthsToSell waiting period,
// while the discount runs over the whole horizon until the sale.
func ProjectSales(currentPricePerSqm, saleableArea float64, constructionMonths, monthsToSell int, appreciationRate, discountRate float64) Projection {
	if monthsToSell < 0 {
		monthsToSell = 0
	}
	p := Projection{
		CurrentPricePerSqm: currentPricePerSqm,
		SaleableArea:       saleableArea,
		MonthsUntilSale:    constructionMonths + monthsToSell,
	}
	p.ProjectedPricePerSqm = currentPricePerSqm * mathutil.CompoundFactor(appreciationRate, monthsToSell)
	p.CurrentTotalSales = currentPricePerSqm * saleableArea
	p.ProjectedTotalSales = p.ProjectedPricePerSqm * saleableArea
	p.NPVAdjustedSales = mathutil.Discount(p.ProjectedTotalSales, discountRate, p.MonthsUntilSale)
	p.AppreciationImpact = p.ProjectedTotalSales - p.CurrentTotalSales
	p.TimeValueLoss = p.ProjectedTotalSales - p.NPVAdjustedSales
	return p
}

// PricePerSqm applies the multiplicative premiums to a base price.
func PricePerSqm(base float64, multipliers ...float64) float64 {
	price := base
	for _, m := range multipliers {
		price *= m
	}
	return price
}

// SaleableArea is the net area that can be sold.
func SaleableArea(grossSqm, netToGrossRatio float64) float64 {
	return grossSqm * netToGrossRatio
}
