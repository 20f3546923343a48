package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/iwvelando/construction-forecast/pkg/params"
	"github.com/iwvelando/construction-forecast/pkg/project"
	"github.com/iwvelando/construction-forecast/pkg/scenario"
	"github.com/iwvelando/construction-forecast/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var fixedNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	return New(nil, WithLogger(zaptest.NewLogger(t)), WithClock(func() time.Time { return fixedNow }))
}

func konyaaltiInputs() project.Inputs {
	return project.Inputs{
		Location:     "Konyaaltı",
		LandSize:     2000,
		EMSAL:        2.5,
		ProjectType:  project.Apartment,
		QualityLevel: project.Mid,
		TotalSqm:     5000,
	}
}

func TestCalculateIsIdempotent(t *testing.T) {
	c := newTestCalculator(t)
	overrides := params.Overrides{params.Contingency: 7, params.MarketCondition: 1.05}

	first := c.Calculate(konyaaltiInputs(), overrides)
	second := c.Calculate(konyaaltiInputs(), overrides)
	assert.Equal(t, first, second)
}

func TestCalculatePipelineConsistency(t *testing.T) {
	r := newTestCalculator(t).Calculate(konyaaltiInputs(), nil)

	// Timeline
	assert.Equal(t, 18, r.Timeline.ConstructionMonths)
	assert.Equal(t, 6, r.Timeline.MonthsToSell)
	assert.Equal(t, project.SCurve, r.Timeline.CostDistribution)
	require.Len(t, r.Timeline.MonthlyBreakdown, 18)

	// Costs: the monthly rows carry the construction subtotal, land sits outside.
	var nominal, inflated float64
	for _, row := range r.Timeline.MonthlyBreakdown {
		nominal += row.NominalAmount
		inflated += row.InflatedAmount
	}
	assert.InDelta(t, r.Costs.ConstructionSubtotal, nominal, 1e-3)
	assert.InDelta(t, nominal+r.Costs.LandCost, r.Costs.TotalNominalCost, 1e-3)
	assert.InDelta(t, inflated+r.Costs.LandCost, r.Costs.TotalInflatedCost, 1e-3)
	assert.Greater(t, r.Costs.TotalInflatedCost, r.Costs.TotalNominalCost)
	assert.Equal(t, 2000*65000.0, r.Costs.LandCost)

	// Sales: konyaaltı apartment price × location premium × mid quality × mid amenity × market.
	assert.InDelta(t, 85000*1.12*1.0*1.03*1.0, r.Sales.CurrentPricePerSqm, 1e-6)
	assert.InDelta(t, 4000, r.Sales.SaleableArea, 1e-9)
	assert.Equal(t, 24, r.Sales.MonthsUntilSale)
	assert.InDelta(t, r.Sales.CurrentPricePerSqm*math.Pow(1.015, 6), r.Sales.ProjectedPricePerSqm, 1e-6)
	assert.InDelta(t, r.Sales.ProjectedTotalSales/math.Pow(1.01, 24), r.Sales.NPVAdjustedSales, 1e-3)

	// Profit views
	assert.InDelta(t, r.Sales.CurrentTotalSales-r.Costs.TotalNominalCost, r.Profit.Nominal.Profit, 1e-3)
	assert.InDelta(t, r.Sales.NPVAdjustedSales-r.Costs.TotalInflatedCost, r.Profit.Projected.Profit, 1e-3)
	assert.InDelta(t, r.Sales.CurrentTotalSales-r.Costs.TotalInflatedCost, r.Profit.Pessimistic.Profit, 1e-3)

	// Scenarios start from the appreciated revenue and the inflated cost.
	assert.Equal(t, r.Sales.ProjectedTotalSales, r.Scenarios.Base.TotalRevenue)
	assert.Equal(t, r.Costs.TotalInflatedCost, r.Scenarios.Base.TotalCost)
	assert.LessOrEqual(t, r.Scenarios.Pessimistic.Profit, r.Scenarios.Base.Profit)
	assert.LessOrEqual(t, r.Scenarios.Base.Profit, r.Scenarios.Optimistic.Profit)

	// Zoning
	assert.InDelta(t, 5000, r.Zoning.PermittedArea, 1e-9)
}

func TestCalculateRecordsDerivedParameters(t *testing.T) {
	landCost := 90_000_000.0
	units := 30
	months := 20
	in := konyaaltiInputs()
	in.LandCost = &landCost
	in.UnitCount = &units
	in.ConstructionMonths = &months

	r := newTestCalculator(t).Calculate(in, params.Overrides{params.StructureCost: 12000})
	snapshot := r.Snapshot()

	tests := []struct {
		id     params.ID
		value  float64
		source params.Source
	}{
		{params.LandCost, landCost, params.SourceUserOverride},
		{params.UnitCount, 30, params.SourceUserOverride},
		{params.ConstructionMonths, 20, params.SourceUserOverride},
		{params.SaleableArea, 4000, params.SourceCalculated},
		{params.StructureCost, 12000, params.SourceUserOverride},
		{params.LandPrice, 65000, params.SourceLocationDerived},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			p, ok := snapshot.Get(tt.id)
			require.True(t, ok)
			assert.InDelta(t, tt.value, p.Value, 1e-9)
			assert.Equal(t, tt.source, p.Source)
		})
	}

	assert.Equal(t, landCost, r.Costs.LandCost)
	assert.Equal(t, 30, r.Quantities.Units)
	assert.Equal(t, 20, r.Timeline.ConstructionMonths)
}

func TestCalculateOverrideMovesCost(t *testing.T) {
	c := newTestCalculator(t)
	base := c.Calculate(konyaaltiInputs(), nil)
	dearer := c.Calculate(konyaaltiInputs(), params.Overrides{params.StructureCost: 20000})

	assert.Greater(t, dearer.Costs.TotalNominalCost, base.Costs.TotalNominalCost)
	assert.Equal(t, base.Sales, dearer.Sales)
	assert.Less(t, dearer.Profit.Projected.Profit, base.Profit.Projected.Profit)
}

func TestCalculateUnknownLocationUsesFallbackPrices(t *testing.T) {
	in := konyaaltiInputs()
	in.Location = "atlantis"
	in.ProjectType = project.Villa
	in.TotalSqm = 400

	r := newTestCalculator(t).Calculate(in, nil)

	base, ok := r.Snapshot().Get(params.BaseSalePrice)
	require.True(t, ok)
	assert.Equal(t, params.SourceDefault, base.Source)
	assert.Greater(t, r.Sales.CurrentTotalSales, 0.0)
	assert.Equal(t, 10, r.Timeline.ConstructionMonths)
}

func TestCalculateDerivesAreaFromZoning(t *testing.T) {
	in := project.Inputs{
		Location: "kepez",
		LandSize: 1000,
		EMSAL:    1.5,
		TAKS:     0.3,
		Cikma:    1.2,
	}

	r := newTestCalculator(t).Calculate(in, nil)

	assert.InDelta(t, 1800, r.Inputs.TotalSqm, 1e-9)
	assert.Equal(t, project.Apartment, r.Inputs.ProjectType)
	assert.Equal(t, project.Mid, r.Inputs.QualityLevel)
	assert.InDelta(t, 300, r.Zoning.Footprint, 1e-9)
	assert.InDelta(t, 1800, r.Zoning.GrossBuildable, 1e-9)
}

func TestCalculateStartsTodayByDefault(t *testing.T) {
	r := newTestCalculator(t).Calculate(konyaaltiInputs(), nil)
	assert.Equal(t, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), r.Timeline.StartDate)
	assert.Equal(t, "2026-10", r.Timeline.MonthlyBreakdown[0].Label)
}

func TestCalculateProjectCostsUsesEmbeddedTables(t *testing.T) {
	start := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	in := konyaaltiInputs()
	in.StartDate = &start

	a := CalculateProjectCosts(in, nil)
	b := New(nil).Calculate(in, nil)
	assert.Equal(t, a, b)
}

func TestCalculateOptionalTimelineInputs(t *testing.T) {
	start := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	in := konyaaltiInputs()
	in.StartDate = &start
	in.ConstructionMonths = testutil.Int(12)
	in.MonthlyInflationRate = testutil.Float(0.02)
	in.MonthsToSellAfterCompletion = testutil.Int(3)

	r := newTestCalculator(t).Calculate(in, nil)
	require.Len(t, r.Timeline.MonthlyBreakdown, 12)
	assert.Equal(t, 15, r.Timeline.TotalMonths())

	first := testutil.FindMonth(r.Timeline.MonthlyBreakdown, "2027-03")
	last := testutil.FindMonth(r.Timeline.MonthlyBreakdown, "2028-02")
	require.NotNil(t, first)
	require.NotNil(t, last)
	assert.Equal(t, first.NominalAmount, first.InflatedAmount)
	assert.InDelta(t, last.NominalAmount*math.Pow(1.02, 11), last.InflatedAmount, 1e-6)
	assert.Nil(t, testutil.FindMonth(r.Timeline.MonthlyBreakdown, "2028-03"))

	base := testutil.FindScenario(r.Scenarios, scenario.Base)
	require.NotNil(t, base)
	assert.Equal(t, r.Scenarios.Base, *base)
}

func TestCalculateDefaultUnitMix(t *testing.T) {
	r := newTestCalculator(t).Calculate(konyaaltiInputs(), nil)

	assert.True(t, r.Zoning.DefaultMix)
	assert.Equal(t, project.UnitMix{{Name: "1+1", NetSize: 65, Count: 20}, {Name: "2+1", NetSize: 100, Count: 20}, {Name: "3+1", NetSize: 140, Count: 5}}, r.Zoning.UnitMix)
	assert.Equal(t, 45, r.Quantities.Units)
	assert.InDelta(t, 4000, r.Zoning.SaleableArea, 1e-9)
	assert.InDelta(t, 0, r.Zoning.RemainingArea, 1e-9)

	units, ok := r.Snapshot().Get(params.UnitCount)
	require.True(t, ok)
	assert.Equal(t, 45.0, units.Value)
	assert.Equal(t, params.SourceCalculated, units.Source)
	assert.InDelta(t, 45*r.Snapshot().Value(params.UtilityConnections), r.Costs.Lines[indexOfLine(t, r, params.UtilityConnections)].Amount, 1e-6)
}

func TestCalculateExplicitUnitMix(t *testing.T) {
	in := konyaaltiInputs()
	in.UnitMix = project.UnitMix{
		{Name: "2+1", NetSize: 110, Count: 20},
		{Name: "3+1", NetSize: 150, Count: 10},
	}

	r := newTestCalculator(t).Calculate(in, nil)

	assert.False(t, r.Zoning.DefaultMix)
	assert.Equal(t, 30, r.Quantities.Units)
	assert.InDelta(t, 3700, r.Zoning.UsedArea, 1e-9)
	assert.InDelta(t, 300, r.Zoning.RemainingArea, 1e-9)
	assert.InDelta(t, 3700, r.Sales.SaleableArea, 1e-9)
	assert.InDelta(t, 3700, r.Quantities.NetSqm, 1e-9)
	assert.InDelta(t, r.Sales.CurrentPricePerSqm*3700, r.Sales.CurrentTotalSales, 1e-3)

	units, ok := r.Snapshot().Get(params.UnitCount)
	require.True(t, ok)
	assert.Equal(t, params.SourceUserOverride, units.Source)

	// An explicit unit count still wins over the mix for per-unit costs.
	in.UnitCount = testutil.Int(12)
	r = newTestCalculator(t).Calculate(in, nil)
	assert.Equal(t, 12, r.Quantities.Units)
	assert.Equal(t, 30, r.Zoning.Units)
}

func indexOfLine(t *testing.T, r Results, id params.ID) int {
	t.Helper()
	for i, line := range r.Costs.Lines {
		if line.ID == id {
			return i
		}
	}
	t.Fatalf("no cost line %s", id)
	return -1
}
