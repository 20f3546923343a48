package validation

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/construction-forecast/pkg/params"
	"github.com/iwvelando/construction-forecast/pkg/project"
	"github.com/iwvelando/construction-forecast/pkg/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInputs() project.Inputs {
	return project.Inputs{
		Location:     "lara",
		LandSize:     2000,
		EMSAL:        2.0,
		TAKS:         0.3,
		ProjectType:  project.Apartment,
		QualityLevel: project.Luxury,
		TotalSqm:     4000,
	}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func distPtr(v string) *project.Distribution {
	d := project.Distribution(v)
	return &d
}

func TestValidateInputsAcceptsValidProject(t *testing.T) {
	r := ValidateInputs(validInputs())
	assert.True(t, r.Valid())
	assert.NoError(t, r.Err())
	assert.Empty(t, r.Warnings)
}

func TestValidateInputsErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*project.Inputs)
		want   string
	}{
		{"zero area", func(in *project.Inputs) { in.TotalSqm = 0 }, "totalSqm must be greater than 0"},
		{"zero emsal", func(in *project.Inputs) { in.EMSAL = 0 }, "emsal must be greater than 0"},
		{"nan area", func(in *project.Inputs) { in.TotalSqm = math.NaN() }, "totalSqm must be a finite number"},
		{"negative land", func(in *project.Inputs) { in.LandSize = -1 }, "landSize must not be negative"},
		{"taks above one", func(in *project.Inputs) { in.TAKS = 1.5 }, "taks must be between 0 and 1"},
		{"bad type", func(in *project.Inputs) { in.ProjectType = "castle" }, "unsupported project type"},
		{"bad quality", func(in *project.Inputs) { in.QualityLevel = "gold" }, "unsupported quality level"},
		{"bad distribution", func(in *project.Inputs) { in.CostDistribution = distPtr("bell") }, "unsupported cost distribution"},
		{"zero months", func(in *project.Inputs) { in.ConstructionMonths = intPtr(0) }, "constructionMonths must be at least 1"},
		{"negative wait", func(in *project.Inputs) { in.MonthsToSellAfterCompletion = intPtr(-1) }, "monthsToSellAfterCompletion must not be negative"},
		{"zero units", func(in *project.Inputs) { in.UnitCount = intPtr(0) }, "unitCount must be at least 1"},
		{"negative land cost", func(in *project.Inputs) { in.LandCost = floatPtr(-5) }, "landCost must be a non-negative number"},
		{"infinite inflation", func(in *project.Inputs) { in.MonthlyInflationRate = floatPtr(math.Inf(1)) }, "monthlyInflationRate must be a finite number"},
		{"discount at minus one", func(in *project.Inputs) { in.MonthlyDiscountRate = floatPtr(-1) }, "monthlyDiscountRate must be greater than -1"},
		{"zero unit size", func(in *project.Inputs) { in.UnitMix = project.UnitMix{{Name: "2+1", Count: 3}} }, "unitMix[0] netSize must be greater than 0"},
		{"negative unit count", func(in *project.Inputs) {
			in.UnitMix = project.UnitMix{{Name: "2+1", NetSize: 100, Count: 4}, {Name: "3+1", NetSize: 140, Count: -1}}
		}, "unitMix[1] count must not be negative"},
		{"empty mix", func(in *project.Inputs) { in.UnitMix = project.UnitMix{{Name: "2+1", NetSize: 100}} }, "unitMix must contain at least one unit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInputs()
			tt.mutate(&in)
			r := ValidateInputs(in)
			require.False(t, r.Valid())
			assert.Contains(t, strings.Join(r.Errors, "\n"), tt.want)

			err := r.Err()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInputs))
		})
	}
}

func TestValidateInputsWarnings(t *testing.T) {
	in := validInputs()
	in.TotalSqm = 5000
	in.MonthlyInflationRate = floatPtr(0.25)

	r := ValidateInputs(in)
	assert.True(t, r.Valid())
	require.Len(t, r.Warnings, 2)
	assert.Contains(t, r.Warnings[0], "unusually high")
	assert.Contains(t, r.Warnings[1], "exceeds the zoning capacity")
}

func TestValidateLocation(t *testing.T) {
	tables := reference.MustDefault()
	assert.Empty(t, ValidateLocation(tables, "konyaalti"))
	assert.Contains(t, ValidateLocation(tables, "atlantis")[0], `"atlantis"`)
	assert.Contains(t, ValidateLocation(tables, " ")[0], "no location")
}

func TestValidateParameterRanges(t *testing.T) {
	snapshot := params.Snapshot{Parameters: []params.Resolved{
		{ID: params.StructureCost, Value: 20000, Source: params.SourceUserOverride, Range: &params.Range{Min: 8000, Max: 11000}},
		{ID: params.FinishingCost, Value: 7000, Source: params.SourceUserOverride, Range: &params.Range{Min: 6000, Max: 8000}},
		{ID: params.MEPCost, Value: 1, Source: params.SourceDefault, Range: &params.Range{Min: 3000, Max: 5000}},
		{ID: params.Contingency, Value: 50, Source: params.SourceUserOverride},
	}}

	warnings := ValidateParameterRanges(snapshot)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "structure_cost")
}

func TestValidateInputsWarnsWhenUnitCountReplacesMix(t *testing.T) {
	in := validInputs()
	in.UnitMix = project.UnitMix{{Name: "2+1", NetSize: 100, Count: 8}}
	in.UnitCount = intPtr(10)

	r := ValidateInputs(in)
	require.True(t, r.Valid())
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "unitCount 10 replaces the 8 units")
}

func TestValidateUnitMix(t *testing.T) {
	capacity := project.ZoningCapacity(2000, 0.3, 2.0, 0)

	fits := capacity.Allocate(project.UnitMix{{Name: "2+1", NetSize: 100, Count: 30}}, project.Apartment, 3200)
	assert.Empty(t, ValidateUnitMix(fits))

	defaulted := capacity.Allocate(nil, project.Villa, 100)
	assert.Empty(t, ValidateUnitMix(defaulted))

	tooLarge := capacity.Allocate(project.UnitMix{{Name: "3+1", NetSize: 140, Count: 30}}, project.Apartment, 3200)
	warnings := ValidateUnitMix(tooLarge)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "unit mix uses")
}
