// Package validation checks project inputs before they reach the calculation
// pipeline and reports non-blocking warnings about unusual values.
package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/construction-forecast/pkg/format"
	"github.com/iwvelando/construction-forecast/pkg/mathutil"
	"github.com/iwvelando/construction-forecast/pkg/params"
	"github.com/iwvelando/construction-forecast/pkg/project"
	"github.com/iwvelando/construction-forecast/pkg/reference"
)

// ErrInvalidInputs is wrapped by Report.Err when any error was recorded.
var ErrInvalidInputs = errors.New("invalid project inputs")

// Report collects validation findings. Errors block the calculation,
// warnings are informational.
type Report struct {
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Valid reports whether no errors were recorded.
func (r Report) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns nil for a valid report, otherwise an error wrapping
// ErrInvalidInputs that lists every problem.
func (r Report) Err() error {
	if r.Valid() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidInputs, strings.Join(r.Errors, "; "))
}

func (r *Report) errorf(msg string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(msg, args...))
}

func (r *Report) warnf(msg string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(msg, args...))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidateInputs checks the invariants the pipeline relies on. Call it on
// inputs whose area has already been derived from the zoning ratios.
func ValidateInputs(in project.Inputs) Report {
	var r Report

	numbers := []struct {
		name  string
		value float64
	}{
		{"landSize", in.LandSize},
		{"emsal", in.EMSAL},
		{"taks", in.TAKS},
		{"cikma", in.Cikma},
		{"totalSqm", in.TotalSqm},
	}
	for _, n := range numbers {
		if !finite(n.value) {
			r.errorf("%s must be a finite number", n.name)
		}
	}

	if !(in.TotalSqm > 0) {
		r.errorf("totalSqm must be greater than 0, got %v", in.TotalSqm)
	}
	if !(in.EMSAL > 0) {
		r.errorf("emsal must be greater than 0, got %v", in.EMSAL)
	}
	if in.LandSize < 0 {
		r.errorf("landSize must not be negative, got %v", in.LandSize)
	}
	if in.TAKS < 0 || in.TAKS > 1 {
		r.errorf("taks must be between 0 and 1, got %v", in.TAKS)
	}
	if in.Cikma < 0 {
		r.errorf("cikma must not be negative, got %v", in.Cikma)
	}

	if _, err := project.ParseType(string(in.ProjectType)); err != nil {
		r.errorf("%v", err)
	}
	if _, err := project.ParseQualityLevel(string(in.QualityLevel)); err != nil {
		r.errorf("%v", err)
	}
	if in.CostDistribution != nil {
		if _, err := project.ParseDistribution(string(*in.CostDistribution)); err != nil {
			r.errorf("%v", err)
		}
	}

	if in.LandCost != nil && (!finite(*in.LandCost) || *in.LandCost < 0) {
		r.errorf("landCost must be a non-negative number, got %v", *in.LandCost)
	}
	if in.UnitCount != nil && *in.UnitCount < 1 {
		r.errorf("unitCount must be at least 1, got %d", *in.UnitCount)
	}
	for i, u := range in.UnitMix {
		if !finite(u.NetSize) || u.NetSize <= 0 {
			r.errorf("unitMix[%d] netSize must be greater than 0, got %v", i, u.NetSize)
		}
		if u.Count < 0 {
			r.errorf("unitMix[%d] count must not be negative, got %d", i, u.Count)
		}
	}
	if len(in.UnitMix) > 0 && in.UnitMix.Units() < 1 {
		r.errorf("unitMix must contain at least one unit")
	}
	if len(in.UnitMix) > 0 && in.UnitCount != nil {
		r.warnf("unitCount %d replaces the %d units of the unit mix for per-unit costs", *in.UnitCount, in.UnitMix.Units())
	}
	if in.ConstructionMonths != nil && *in.ConstructionMonths < 1 {
		r.errorf("constructionMonths must be at least 1, got %d", *in.ConstructionMonths)
	}
	if in.MonthsToSellAfterCompletion != nil && *in.MonthsToSellAfterCompletion < 0 {
		r.errorf("monthsToSellAfterCompletion must not be negative, got %d", *in.MonthsToSellAfterCompletion)
	}

	rates := []struct {
		name  string
		value *float64
	}{
		{"monthlyInflationRate", in.MonthlyInflationRate},
		{"monthlyAppreciationRate", in.MonthlyAppreciationRate},
		{"monthlyDiscountRate", in.MonthlyDiscountRate},
	}
	for _, rate := range rates {
		if rate.value == nil {
			continue
		}
		v := *rate.value
		switch {
		case !finite(v):
			r.errorf("%s must be a finite number", rate.name)
		case v <= -1:
			r.errorf("%s must be greater than -1, got %v", rate.name, v)
		case v > 0.2:
			r.warnf("%s of %s per month is unusually high; rates are monthly fractions", rate.name, format.Percent(v*100))
		}
	}

	if in.LandSize > 0 && in.EMSAL > 0 {
		capacity := project.ZoningCapacity(in.LandSize, in.TAKS, in.EMSAL, in.Cikma)
		if in.TotalSqm > capacity.GrossBuildable*1.0001 {
			r.warnf("totalSqm %s exceeds the zoning capacity of %s", format.Area(in.TotalSqm), format.Area(capacity.GrossBuildable))
		}
	}

	return r
}

// ValidateLocation warns when the location is not in the reference tables,
// in which case fixed fallback prices apply.
func ValidateLocation(tables *reference.Tables, location string) []string {
	if _, ok := tables.Location(location); ok {
		return nil
	}
	if strings.TrimSpace(location) == "" {
		return []string{"no location given; fallback land and sale prices apply"}
	}
	return []string{fmt.Sprintf("location %q is not in the reference tables; fallback land and sale prices apply", location)}
}

// ValidateUnitMix warns when a planned unit mix needs more net area than the
// zoning envelope leaves saleable.
func ValidateUnitMix(zoning project.Capacity) []string {
	if zoning.DefaultMix || zoning.RemainingArea >= 0 || mathutil.IsZero(zoning.RemainingArea) {
		return nil
	}
	return []string{fmt.Sprintf("unit mix uses %s of net area but only %s is saleable",
		format.Area(zoning.UsedArea), format.Area(zoning.SaleableArea))}
}

// ValidateParameterRanges warns about user overrides that fall outside the
// quality-tier band of their parameter.
func ValidateParameterRanges(snapshot params.Snapshot) []string {
	var warnings []string
	for _, p := range snapshot.Parameters {
		if p.Source != params.SourceUserOverride || p.Range == nil {
			continue
		}
		if !p.Range.Contains(p.Value) {
			warnings = append(warnings, fmt.Sprintf("%s override %v is outside the typical range %v to %v",
				p.ID, p.Value, p.Range.Min, p.Range.Max))
		}
	}
	return warnings
}
