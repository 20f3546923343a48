package costs

import (
	"time"

	"github.com/iwvelando/construction-forecast/pkg/mathutil"
	"github.com/iwvelando/construction-forecast/pkg/params"
	"github.com/iwvelando/construction-forecast/pkg/project"
	"github.com/iwvelando/construction-forecast/pkg/timeline"
)

// Impact expresses how much inflation added to the nominal cost.
type Impact struct {
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percent"`
}

// Projection is the construction spend projected month by month.
type Projection struct {
	MonthlyBreakdown  []timeline.MonthlySpend `json:"monthlyBreakdown"`
	TotalNominalCost  float64                 `json:"totalNominalCost"`
	TotalInflatedCost float64                 `json:"totalInflatedCost"`
	InflationImpact   Impact                  `json:"inflationImpact"`
}

// ProjectCost spreads subtotal over months following the distribution and
// compounds each month's spend: money spent in month m is inflated by
// (1+rate)^(m-1).
func ProjectCost(subtotal float64, months int, monthlyInflationRate float64, dist project.Distribution) Projection {
	return Apply(timeline.Schedule(time.Time{}, months, dist), subtotal, monthlyInflationRate)
}

// Apply fills the amounts of an existing spend schedule. The schedule rows
// are copied; the input slice is left untouched.
func Apply(schedule []timeline.MonthlySpend, subtotal, monthlyInflationRate float64) Projection {
	rows := make([]timeline.MonthlySpend, len(schedule))
	var p Projection
	for i, row := range schedule {
		row.NominalAmount = subtotal * row.PercentOfTotal
		row.InflatedAmount = row.NominalAmount * mathutil.CompoundFactor(monthlyInflationRate, row.Month-1)
		p.TotalNominalCost += row.NominalAmount
		p.TotalInflatedCost += row.InflatedAmount
		rows[i] = row
	}
	p.MonthlyBreakdown = rows
	p.InflationImpact = Impact{
		Amount:  p.TotalInflatedCost - p.TotalNominalCost,
		Percent: mathutil.CalculatePercentage(p.TotalInflatedCost-p.TotalNominalCost, p.TotalNominalCost),
	}
	return p
}

// Breakdown is the complete project cost.
type Breakdown struct {
	ConstructionCost     float64 `json:"constructionCost"`
	LandCost             float64 `json:"landCost"`
	PermitsAndFees       float64 `json:"permitsAndFees"`
	Design               float64 `json:"design"`
	Contingency          float64 `json:"contingency"`
	ContractorMargin     float64 `json:"contractorMargin"`
	ConstructionSubtotal float64 `json:"constructionSubtotal"`
	TotalNominalCost     float64 `json:"totalNominalCost"`
	TotalInflatedCost    float64 `json:"totalInflatedCost"`
	InflationImpact      Impact  `json:"inflationImpact"`
	CostPerGrossSqm      float64 `json:"costPerGrossSqm"`
	Lines                []Line  `json:"lines"`
}

// Summarize combines the accumulated line items, their projection and the
// land cost. Land is paid upfront, so it is added to both totals without
// compounding.
func Summarize(acc Accumulation, projection Projection, landCost, grossSqm float64) Breakdown {
	b := Breakdown{
		ConstructionCost:     acc.FixedSubtotal,
		LandCost:             landCost,
		PermitsAndFees:       acc.Amount(params.PermitsFees),
		Design:               acc.Amount(params.DesignFees),
		Contingency:          acc.Amount(params.Contingency),
		ContractorMargin:     acc.Amount(params.ContractorMargin),
		ConstructionSubtotal: acc.Subtotal,
		TotalNominalCost:     projection.TotalNominalCost + landCost,
		TotalInflatedCost:    projection.TotalInflatedCost + landCost,
		Lines:                acc.Lines,
	}
	b.InflationImpact = Impact{
		Amount:  b.TotalInflatedCost - b.TotalNominalCost,
		Percent: mathutil.CalculatePercentage(b.TotalInflatedCost-b.TotalNominalCost, b.TotalNominalCost),
	}
	b.CostPerGrossSqm = mathutil.SafeDivide(b.TotalNominalCost, grossSqm)
	return b
}
