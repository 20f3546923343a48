// Package timeline derives the construction and sale calendar of a project
// and the shape of its monthly construction spend.
package timeline

import (
	"math"
	"time"

	"github.com/iwvelando/construction-forecast/pkg/constants"
	"github.com/iwvelando/construction-forecast/pkg/datetime"
	"github.com/iwvelando/construction-forecast/pkg/project"
	"github.com/iwvelando/construction-forecast/pkg/reference"
)

// MonthlySpend is one row of the construction spend schedule.
type MonthlySpend struct {
	Month             int     `json:"month"`
	Label             string  `json:"label"`
	PercentOfTotal    float64 `json:"percentOfTotal"`
	CumulativePercent float64 `json:"cumulativePercent"`
	NominalAmount     float64 `json:"nominalAmount"`
	InflatedAmount    float64 `json:"inflatedAmount"`
}

// Data is the resolved project timeline.
type Data struct {
	ConstructionMonths      int                  `json:"constructionMonths"`
	StartDate               time.Time            `json:"startDate"`
	CompletionDate          time.Time            `json:"completionDate"`
	SaleDate                time.Time            `json:"saleDate"`
	CostDistribution        project.Distribution `json:"costDistribution"`
	MonthlyInflationRate    float64              `json:"monthlyInflationRate"`
	MonthlyAppreciationRate float64              `json:"monthlyAppreciationRate"`
	MonthlyDiscountRate     float64              `json:"monthlyDiscountRate"`
	MonthsToSell            int                  `json:"monthsToSell"`
	MonthlyBreakdown        []MonthlySpend       `json:"monthlyBreakdown"`
}

// TotalMonths is the horizon from the start of construction until sale.
func (d Data) TotalMonths() int {
	return d.ConstructionMonths + d.MonthsToSell
}

// DefaultConstructionMonths applies the size banding rule for the project type.
func DefaultConstructionMonths(t project.Type, totalSqm float64) int {
	switch t {
	case project.Villa:
		if totalSqm < constants.VillaSmallAreaLimit {
			return constants.VillaSmallMonths
		}
		return constants.VillaLargeMonths
	case project.Apartment:
		switch {
		case totalSqm < constants.ApartmentSmallAreaLimit:
			return constants.ApartmentSmallMonths
		case totalSqm < constants.ApartmentMediumAreaLimit:
			return constants.ApartmentMediumMonths
		default:
			return constants.ApartmentLargeMonths
		}
	}
	return constants.DefaultConstructionMonths
}

// Build resolves the timeline from the inputs, falling back to the table
// defaults, and lays out the spend curve with zero amounts. now supplies the
// start date when the inputs carry none.
func Build(in project.Inputs, defaults reference.TimelineDefaults, now time.Time) Data {
	data := Data{
		ConstructionMonths:      DefaultConstructionMonths(in.ProjectType, in.TotalSqm),
		StartDate:               datetime.StartOfDay(now),
		CostDistribution:        project.SCurve,
		MonthlyInflationRate:    defaults.MonthlyInflationRate,
		MonthlyAppreciationRate: defaults.MonthlyAppreciationRate,
		MonthlyDiscountRate:     defaults.MonthlyDiscountRate,
		MonthsToSell:            defaults.MonthsToSell,
	}

	if d, err := project.ParseDistribution(defaults.CostDistribution); err == nil {
		data.CostDistribution = d
	}
	if in.ConstructionMonths != nil {
		data.ConstructionMonths = *in.ConstructionMonths
	}
	if data.ConstructionMonths < 1 {
		data.ConstructionMonths = 1
	}
	if in.StartDate != nil {
		data.StartDate = *in.StartDate
	}
	if in.CostDistribution != nil {
		data.CostDistribution = *in.CostDistribution
	}
	if in.MonthlyInflationRate != nil {
		data.MonthlyInflationRate = *in.MonthlyInflationRate
	}
	if in.MonthlyAppreciationRate != nil {
		data.MonthlyAppreciationRate = *in.MonthlyAppreciationRate
	}
	if in.MonthlyDiscountRate != nil {
		data.MonthlyDiscountRate = *in.MonthlyDiscountRate
	}
	if in.MonthsToSellAfterCompletion != nil {
		data.MonthsToSell = *in.MonthsToSellAfterCompletion
	}
	if data.MonthsToSell < 0 {
		data.MonthsToSell = 0
	}

	data.CompletionDate = datetime.AddMonths(data.StartDate, data.ConstructionMonths)
	data.SaleDate = datetime.AddMonths(data.StartDate, data.ConstructionMonths+data.MonthsToSell)
	data.MonthlyBreakdown = Schedule(data.StartDate, data.ConstructionMonths, data.CostDistribution)
	return data
}

// Schedule returns the spend rows for the given curve with amounts left at zero.
func Schedule(start time.Time, months int, dist project.Distribution) []MonthlySpend {
	shares := SpendCurve(months, dist)
	rows := make([]MonthlySpend, len(shares))
	cumulative := 0.0
	for i, share := range shares {
		cumulative += share
		rows[i] = MonthlySpend{
			Month:             i + 1,
			Label:             datetime.MonthLabel(start, i+1),
			PercentOfTotal:    share,
			CumulativePercent: cumulative,
		}
	}
	return rows
}

// SpendCurve returns the fraction of the total spent in each month. The
// fractions sum to 1. months below 1 are treated as 1.
func SpendCurve(months int, dist project.Distribution) []float64 {
	if months < 1 {
		months = 1
	}
	if dist == project.SCurve {
		return sCurve(months)
	}
	return linear(months)
}

func linear(months int) []float64 {
	shares := make([]float64, months)
	for i := range shares {
		shares[i] = 1 / float64(months)
	}
	return shares
}

// logistic is the cumulative progress of an s-curve at normalized time t.
func logistic(t float64) float64 {
	return 1 / (1 + math.Exp(-constants.SCurveSteepness*(t-constants.SCurveMidpoint)))
}

func sCurve(months int) []float64 {
	shares := make([]float64, months)
	previous := 0.0
	sum := 0.0
	for m := 1; m <= months; m++ {
		current := logistic(float64(m) / float64(months))
		shares[m-1] = current - previous
		sum += shares[m-1]
		previous = current
	}
	// The logistic never reaches 0 or 1, so the raw shares do not sum to 1.
	if sum <= 0 {
		return linear(months)
	}
	for i := range shares {
		shares[i] /= sum
	}
	return shares
}
