// Package output provides utilities for formatting and displaying feasibility results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/construction-forecast/internal/calculator"
	"github.com/iwvelando/construction-forecast/pkg/constants"
	"github.com/iwvelando/construction-forecast/pkg/format"
	"github.com/iwvelando/construction-forecast/pkg/mathutil"
	"github.com/iwvelando/construction-forecast/pkg/profit"
	"github.com/iwvelando/construction-forecast/pkg/validation"
)

// Write renders results in the named format.
func Write(w io.Writer, outputFormat string, results calculator.Results, warnings []string) error {
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}
	switch outputFormat {
	case constants.OutputFormatCSV:
		return CsvFormat(w, results)
	case constants.OutputFormatJSON:
		return JSONFormat(w, results, warnings)
	default:
		return PrettyFormat(w, results, warnings)
	}
}

// lineWriter remembers the first write error so callers can print freely.
type lineWriter struct {
	w   io.Writer
	err error
}

func (l *lineWriter) printf(msg string, args ...any) {
	if l.err != nil {
		return
	}
	_, l.err = fmt.Fprintf(l.w, msg, args...)
}

// PrettyFormat outputs a human-readable report.
func PrettyFormat(w io.Writer, r calculator.Results, warnings []string) error {
	out := &lineWriter{w: w}
	in := r.Inputs
	tl := r.Timeline

	location := in.Location
	if location == "" {
		location = "unspecified location"
	}
	out.printf("--- Feasibility for %s (%s, %s) ---\n", location, in.ProjectType, in.QualityLevel)
	out.printf("Gross area %s | Saleable %s | Units %d | Land %s\n",
		format.Area(r.Quantities.GrossSqm), format.Area(r.Quantities.NetSqm), r.Quantities.Units, format.Area(r.Quantities.LandSqm))
	mixLabel := "Unit mix"
	if r.Zoning.DefaultMix {
		mixLabel = "Unit mix (default)"
	}
	out.printf("%s:", mixLabel)
	for _, u := range r.Zoning.UnitMix {
		out.printf(" %s × %d (%s)", u.Name, u.Count, format.Area(u.NetSize))
	}
	remaining := "Remaining " + format.Area(r.Zoning.RemainingArea)
	if r.Zoning.RemainingArea < 0 {
		remaining = "Over by " + format.Area(r.Zoning.RemainingArea)
	}
	out.printf(" | Used %s of %s | %s\n", format.Area(r.Zoning.UsedArea), format.Area(r.Zoning.SaleableArea), remaining)
	out.printf("Construction %s to %s (%d months, %s) | Sale %s\n\n",
		tl.StartDate.Format(constants.DateLayout), tl.CompletionDate.Format(constants.DateLayout),
		tl.ConstructionMonths, tl.CostDistribution, tl.SaleDate.Format(constants.DateLayout))

	out.printf("Costs\n")
	for _, line := range r.Costs.Lines {
		if mathutil.IsZero(line.Amount) {
			continue
		}
		out.printf("  %-36s %22s\n", line.Label, format.Currency(line.Amount))
	}
	out.printf("  %-36s %22s\n", "Land", format.Currency(r.Costs.LandCost))
	out.printf("  %-36s %22s\n", "Total nominal cost", format.Currency(r.Costs.TotalNominalCost))
	out.printf("  %-36s %22s\n", "Total inflated cost", format.Currency(r.Costs.TotalInflatedCost))
	out.printf("  %-36s %22s (%s)\n\n", "Inflation impact", format.Currency(r.Costs.InflationImpact.Amount), format.Percent(r.Costs.InflationImpact.Percent))

	out.printf("Sales\n")
	out.printf("  %-36s %22s\n", "Price per m² today", format.Currency(r.Sales.CurrentPricePerSqm))
	out.printf("  %-36s %22s\n", "Price per m² at sale", format.Currency(r.Sales.ProjectedPricePerSqm))
	out.printf("  %-36s %22s\n", "Current total sales", format.Currency(r.Sales.CurrentTotalSales))
	out.printf("  %-36s %22s\n", "Projected total sales", format.Currency(r.Sales.ProjectedTotalSales))
	out.printf("  %-36s %22s\n", "NPV adjusted sales", format.Currency(r.Sales.NPVAdjustedSales))
	out.printf("  %-36s %22s\n\n", "Time value loss", format.Currency(r.Sales.TimeValueLoss))

	out.printf("Profit      | %22s | %9s | %9s\n", "Profit", "ROI", "Margin")
	views := []struct {
		name string
		m    profit.Metrics
	}{
		{"Nominal", r.Profit.Nominal},
		{"Projected", r.Profit.Projected},
		{"Pessimistic", r.Profit.Pessimistic},
	}
	for _, v := range views {
		out.printf("%-11s | %22s | %9s | %9s\n", v.name, format.Currency(v.m.Profit), format.Percent(v.m.ROI), format.Percent(v.m.Margin))
	}
	out.printf("\n")

	out.printf("Scenario    | %22s | %22s | %22s | %9s\n", "Revenue", "Cost", "NPV profit", "NPV ROI")
	for _, s := range r.Scenarios.All() {
		out.printf("%-11s | %22s | %22s | %22s | %9s\n", s.Name,
			format.Currency(s.TotalRevenue), format.Currency(s.TotalCost), format.Currency(s.NPVProfit), format.Percent(s.NPVROI))
	}
	out.printf("\n")

	out.printf("Month   | Share  | %22s | %22s\n", "Nominal", "Inflated")
	for _, row := range tl.MonthlyBreakdown {
		out.printf("%s | %6s | %22s | %22s\n", row.Label, format.Percent(row.PercentOfTotal*100),
			format.Currency(row.NominalAmount), format.Currency(row.InflatedAmount))
	}

	if len(warnings) > 0 {
		out.printf("\nWarnings:\n")
		for _, warning := range warnings {
			out.printf("  - %s\n", warning)
		}
	}
	return out.err
}

func amount(v float64) string {
	return strconv.FormatFloat(mathutil.Round(v), 'f', 2, 64)
}

// CsvFormat outputs the summary figures followed by the monthly spend
// schedule in comma-separated value format.
func CsvFormat(w io.Writer, r calculator.Results) error {
	cw := csv.NewWriter(w)

	rows := [][]string{{"metric", "value"}}
	for _, line := range r.Costs.Lines {
		rows = append(rows, []string{string(line.ID), amount(line.Amount)})
	}
	rows = append(rows,
		[]string{"unit_count", strconv.Itoa(r.Quantities.Units)},
		[]string{"unit_mix_used_area", amount(r.Zoning.UsedArea)},
		[]string{"unit_mix_remaining_area", amount(r.Zoning.RemainingArea)},
		[]string{"land_cost", amount(r.Costs.LandCost)},
		[]string{"total_nominal_cost", amount(r.Costs.TotalNominalCost)},
		[]string{"total_inflated_cost", amount(r.Costs.TotalInflatedCost)},
		[]string{"current_total_sales", amount(r.Sales.CurrentTotalSales)},
		[]string{"projected_total_sales", amount(r.Sales.ProjectedTotalSales)},
		[]string{"npv_adjusted_sales", amount(r.Sales.NPVAdjustedSales)},
		[]string{"nominal_profit", amount(r.Profit.Nominal.Profit)},
		[]string{"projected_profit", amount(r.Profit.Projected.Profit)},
		[]string{"pessimistic_profit", amount(r.Profit.Pessimistic.Profit)},
	)
	for _, s := range r.Scenarios.All() {
		rows = append(rows, []string{s.Name + "_npv_profit", amount(s.NPVProfit)})
	}

	rows = append(rows, []string{}, []string{"month", "label", "percent_of_total", "cumulative_percent", "nominal_amount", "inflated_amount"})
	for _, row := range r.Timeline.MonthlyBreakdown {
		rows = append(rows, []string{
			strconv.Itoa(row.Month),
			row.Label,
			strconv.FormatFloat(row.PercentOfTotal, 'f', 6, 64),
			strconv.FormatFloat(row.CumulativePercent, 'f', 6, 64),
			amount(row.NominalAmount),
			amount(row.InflatedAmount),
		})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv output: %w", err)
	}
	return nil
}

// Report is the JSON document written by JSONFormat.
type Report struct {
	Results  calculator.Results `json:"results"`
	Warnings []string           `json:"warnings,omitempty"`
}

// JSONFormat outputs the results as an indented JSON document.
func JSONFormat(w io.Writer, r calculator.Results, warnings []string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Report{Results: r, Warnings: warnings}); err != nil {
		return fmt.Errorf("failed to encode json output: %w", err)
	}
	return nil
}
