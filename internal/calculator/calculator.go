// Package calculator wires the feasibility pipeline together: parameter
// resolution, timeline, cost and sales projection, profit synthesis and the
// scenario set.
package calculator

import (
	"time"

	"github.com/iwvelando/construction-forecast/pkg/costs"
	"github.com/iwvelando/construction-forecast/pkg/params"
	"github.com/iwvelando/construction-forecast/pkg/profit"
	"github.com/iwvelando/construction-forecast/pkg/project"
	"github.com/iwvelando/construction-forecast/pkg/reference"
	"github.com/iwvelando/construction-forecast/pkg/resolver"
	"github.com/iwvelando/construction-forecast/pkg/sales"
	"github.com/iwvelando/construction-forecast/pkg/scenario"
	"github.com/iwvelando/construction-forecast/pkg/timeline"
	"go.uber.org/zap"
)

// Results is the complete output of one calculation.
type Results struct {
	Inputs     project.Inputs    `json:"inputs"`
	Zoning     project.Capacity  `json:"zoning"`
	Quantities costs.Quantities  `json:"quantities"`
	Timeline   timeline.Data     `json:"timeline"`
	Costs      costs.Breakdown   `json:"costs"`
	Sales      sales.Projection  `json:"sales"`
	Profit     profit.Summary    `json:"profit"`
	Scenarios  scenario.Set      `json:"scenarios"`
	Parameters []params.Resolved `json:"parameters"`
}

// Snapshot returns the resolved parameters as a snapshot.
func (r Results) Snapshot() params.Snapshot {
	return params.Snapshot{Parameters: r.Parameters}
}

// Calculator runs the pipeline against one set of reference tables.
type Calculator struct {
	tables *reference.Tables
	logger *zap.Logger
	now    func() time.Time
}

// Option customizes a Calculator.
type Option func(*Calculator)

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Calculator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock sets the clock that supplies the default start date.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns a Calculator over tables. Nil tables select the embedded defaults.
func New(tables *reference.Tables, opts ...Option) *Calculator {
	if tables == nil {
		tables = reference.MustDefault()
	}
	c := &Calculator{
		tables: tables,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tables returns the reference tables the calculator resolves against.
func (c *Calculator) Tables() *reference.Tables {
	return c.tables
}

// Now returns the calculator's clock reading, which supplies the start date
// when the inputs carry none.
func (c *Calculator) Now() time.Time {
	return c.now()
}

// CalculateProjectCosts runs the pipeline with the embedded tables.
func CalculateProjectCosts(in project.Inputs, overrides params.Overrides) Results {
	return New(nil).Calculate(in, overrides)
}

// Calculate runs the pipeline. It assumes the inputs were validated and
// performs no rejection of its own; identical inputs and clock readings give
// identical results.
func (c *Calculator) Calculate(in project.Inputs, overrides params.Overrides) Results {
	in = c.normalize(in)

	res := resolver.New(c.tables, in.ProjectType)
	snapshot := res.ResolveAll(in.QualityLevel, in.LocationKey(), overrides)

	tl := timeline.Build(in, c.tables.Timeline, c.now())

	// An explicit mix is what gets sold; the default mix only estimates the
	// unit count and the whole saleable envelope is priced.
	saleable := sales.SaleableArea(in.TotalSqm, snapshot.Value(params.NetToGrossRatio))
	zoning := project.ZoningCapacity(in.LandSize, in.TAKS, in.EMSAL, in.Cikma).Allocate(in.UnitMix, in.ProjectType, saleable)
	units := zoning.Units
	unitSource := params.SourceCalculated
	if !zoning.DefaultMix {
		saleable = zoning.UsedArea
		unitSource = params.SourceUserOverride
	}
	if in.UnitCount != nil {
		units = *in.UnitCount
		unitSource = params.SourceUserOverride
	}
	landCost := in.LandSize * snapshot.Value(params.LandPrice)
	landSource := params.SourceCalculated
	if in.LandCost != nil {
		landCost = *in.LandCost
		landSource = params.SourceUserOverride
	}
	monthsSource := params.SourceCalculated
	if in.ConstructionMonths != nil {
		monthsSource = params.SourceUserOverride
	}

	setDerived(&snapshot, params.ConstructionMonths, float64(tl.ConstructionMonths), monthsSource)
	setDerived(&snapshot, params.UnitCount, float64(units), unitSource)
	setDerived(&snapshot, params.LandCost, landCost, landSource)
	setDerived(&snapshot, params.SaleableArea, saleable, params.SourceCalculated)

	quantities := costs.Quantities{
		GrossSqm: in.TotalSqm,
		NetSqm:   saleable,
		LandSqm:  in.LandSize,
		Units:    units,
	}
	acc := costs.Accumulate(snapshot, quantities)
	projection := costs.Apply(tl.MonthlyBreakdown, acc.Subtotal, tl.MonthlyInflationRate)
	tl.MonthlyBreakdown = projection.MonthlyBreakdown
	breakdown := costs.Summarize(acc, projection, landCost, in.TotalSqm)

	var multipliers []float64
	for _, id := range params.Multipliers() {
		multipliers = append(multipliers, snapshot.Value(id))
	}
	price := sales.PricePerSqm(snapshot.Value(params.BaseSalePrice), multipliers...)
	projected := sales.ProjectSales(price, saleable, tl.ConstructionMonths, tl.MonthsToSell, tl.MonthlyAppreciationRate, tl.MonthlyDiscountRate)

	summary := profit.Synthesize(breakdown, projected)
	scenarios := scenario.Generate(projected.ProjectedTotalSales, breakdown.TotalInflatedCost, tl.TotalMonths(), tl.MonthlyDiscountRate)

	c.logger.Debug("calculated project",
		zap.String("op", "calculator.Calculate"),
		zap.String("location", in.LocationKey()),
		zap.String("projectType", string(in.ProjectType)),
		zap.String("quality", string(in.QualityLevel)),
		zap.Int("constructionMonths", tl.ConstructionMonths),
		zap.Float64("totalInflatedCost", breakdown.TotalInflatedCost),
		zap.Float64("npvAdjustedSales", projected.NPVAdjustedSales),
		zap.Float64("projectedProfit", summary.Projected.Profit),
	)

	return Results{
		Inputs:     in,
		Zoning:     zoning,
		Quantities: quantities,
		Timeline:   tl,
		Costs:      breakdown,
		Sales:      projected,
		Profit:     summary,
		Scenarios:  scenarios,
		Parameters: snapshot.Parameters,
	}
}

// normalize fills the enumerations and the derived area. Unparseable
// enumerations fall back to the defaults with a warning.
func (c *Calculator) normalize(in project.Inputs) project.Inputs {
	t, err := project.ParseType(string(in.ProjectType))
	if err != nil {
		c.logger.Warn("falling back to default project type",
			zap.String("op", "calculator.normalize"),
			zap.Error(err),
		)
		t = project.Apartment
	}
	in.ProjectType = t

	q, err := project.ParseQualityLevel(string(in.QualityLevel))
	if err != nil {
		c.logger.Warn("falling back to default quality level",
			zap.String("op", "calculator.normalize"),
			zap.Error(err),
		)
		q = project.Mid
	}
	in.QualityLevel = q

	return in.WithDerivedArea()
}

func setDerived(snapshot *params.Snapshot, id params.ID, value float64, source params.Source) {
	def, _ := params.Lookup(id)
	snapshot.Set(params.Resolved{
		ID:        def.ID,
		Label:     def.Label,
		Value:     value,
		Source:    source,
		AppliesTo: def.AppliesTo,
		Kind:      def.Kind,
	})
}
