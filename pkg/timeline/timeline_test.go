package timeline

import (
	"math"
	"testing"
	"time"

	"github.com/iwvelando/construction-forecast/pkg/constants"
	"github.com/iwvelando/construction-forecast/pkg/datetime"
	"github.com/iwvelando/construction-forecast/pkg/project"
	"github.com/iwvelando/construction-forecast/pkg/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpendCurveSumsToOne(t *testing.T) {
	for _, dist := range []project.Distribution{project.Linear, project.SCurve} {
		for months := 1; months <= 60; months++ {
			shares := SpendCurve(months, dist)
			require.Len(t, shares, months)
			sum := 0.0
			for _, s := range shares {
				assert.GreaterOrEqual(t, s, 0.0)
				sum += s
			}
			assert.InDelta(t, 1.0, sum, constants.DistributionTolerance, "%s over %d months", dist, months)
		}
	}
}

func TestSpendCurveClampsMonths(t *testing.T) {
	assert.Equal(t, []float64{1}, SpendCurve(0, project.SCurve))
	assert.Equal(t, []float64{1}, SpendCurve(-3, project.Linear))
}

func TestLinearCurveIsFlat(t *testing.T) {
	for _, s := range SpendCurve(8, project.Linear) {
		assert.Equal(t, 0.125, s)
	}
}

func TestSCurveShape(t *testing.T) {
	shares := SpendCurve(12, project.SCurve)

	// Slow start, heaviest spend mid-curve, slow finish.
	assert.Less(t, shares[0], 0.02)
	assert.Less(t, shares[11], shares[6])
	peak := 0
	for i, s := range shares {
		if s > shares[peak] {
			peak = i
		}
	}
	assert.Contains(t, []int{5, 6}, peak)

	// Month 1 is measured from a zero baseline, then renormalized.
	raw := 1 / (1 + math.Exp(-10*(1.0/12-0.5)))
	norm := 1 / (1 + math.Exp(-10*(1.0-0.5)))
	assert.InDelta(t, raw/norm, shares[0], 1e-12)
}

func TestDefaultConstructionMonths(t *testing.T) {
	tests := []struct {
		name     string
		kind     project.Type
		sqm      float64
		expected int
	}{
		{"small villa", project.Villa, 499, 10},
		{"villa at limit", project.Villa, 500, 14},
		{"small apartment", project.Apartment, 2999, 14},
		{"medium apartment", project.Apartment, 3000, 18},
		{"medium apartment upper", project.Apartment, 7999, 18},
		{"large apartment", project.Apartment, 8000, 24},
		{"unknown type", project.Type("hangar"), 100, constants.DefaultConstructionMonths},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DefaultConstructionMonths(tt.kind, tt.sqm))
		})
	}
}

func defaults() reference.TimelineDefaults {
	return reference.TimelineDefaults{
		MonthlyInflationRate:    0.025,
		MonthlyAppreciationRate: 0.015,
		MonthlyDiscountRate:     0.01,
		MonthsToSell:            6,
		CostDistribution:        "s-curve",
	}
}

func TestBuildUsesDefaults(t *testing.T) {
	now := time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)
	data := Build(project.Inputs{ProjectType: project.Apartment, TotalSqm: 5000}, defaults(), now)

	assert.Equal(t, 18, data.ConstructionMonths)
	assert.Equal(t, "2026-10-14", data.StartDate.Format(datetime.DateLayout))
	assert.Equal(t, "2028-04-14", data.CompletionDate.Format(datetime.DateLayout))
	assert.Equal(t, "2028-10-14", data.SaleDate.Format(datetime.DateLayout))
	assert.Equal(t, project.SCurve, data.CostDistribution)
	assert.Equal(t, 0.025, data.MonthlyInflationRate)
	assert.Equal(t, 24, data.TotalMonths())
	require.Len(t, data.MonthlyBreakdown, 18)
	assert.Equal(t, "2026-10", data.MonthlyBreakdown[0].Label)
	for _, row := range data.MonthlyBreakdown {
		assert.Zero(t, row.NominalAmount)
		assert.Zero(t, row.InflatedAmount)
	}
	assert.InDelta(t, 1.0, data.MonthlyBreakdown[17].CumulativePercent, 1e-9)
}

func TestBuildHonoursInputOverrides(t *testing.T) {
	months := 9
	sell := 3
	inflation := 0.04
	appreciation := 0.02
	discount := 0.005
	dist := project.Linear
	start := datetime.MustParseTime(datetime.DateLayout, "2027-01-01")

	in := project.Inputs{
		ProjectType:                 project.Villa,
		TotalSqm:                    300,
		ConstructionMonths:          &months,
		StartDate:                   &start,
		CostDistribution:            &dist,
		MonthlyInflationRate:        &inflation,
		MonthlyAppreciationRate:     &appreciation,
		MonthlyDiscountRate:         &discount,
		MonthsToSellAfterCompletion: &sell,
	}
	data := Build(in, defaults(), time.Now())

	assert.Equal(t, 9, data.ConstructionMonths)
	assert.Equal(t, start, data.StartDate)
	assert.Equal(t, "2027-10-01", data.CompletionDate.Format(datetime.DateLayout))
	assert.Equal(t, "2028-01-01", data.SaleDate.Format(datetime.DateLayout))
	assert.Equal(t, project.Linear, data.CostDistribution)
	assert.Equal(t, 0.04, data.MonthlyInflationRate)
	assert.Equal(t, 0.02, data.MonthlyAppreciationRate)
	assert.Equal(t, 0.005, data.MonthlyDiscountRate)
	assert.Equal(t, 3, data.MonthsToSell)
}

func TestBuildClampsConstructionMonths(t *testing.T) {
	zero := 0
	data := Build(project.Inputs{ProjectType: project.Apartment, TotalSqm: 100, ConstructionMonths: &zero}, defaults(), time.Now())
	assert.Equal(t, 1, data.ConstructionMonths)
	require.Len(t, data.MonthlyBreakdown, 1)
	assert.Equal(t, 1.0, data.MonthlyBreakdown[0].PercentOfTotal)
}

func TestBuildMonthEndStart(t *testing.T) {
	months := 4
	sell := 1
	start := datetime.MustParseTime(datetime.DateLayout, "2027-01-31")
	in := project.Inputs{
		ProjectType:                 project.Apartment,
		TotalSqm:                    1000,
		ConstructionMonths:          &months,
		MonthsToSellAfterCompletion: &sell,
		StartDate:                   &start,
	}

	data := Build(in, defaults(), time.Time{})

	labels := make([]string, 0, len(data.MonthlyBreakdown))
	for _, row := range data.MonthlyBreakdown {
		labels = append(labels, row.Label)
	}
	assert.Equal(t, []string{"2027-01", "2027-02", "2027-03", "2027-04"}, labels)
	assert.Equal(t, "2027-05-31", data.CompletionDate.Format(datetime.DateLayout))
	assert.Equal(t, "2027-06-30", data.SaleDate.Format(datetime.DateLayout))
}
