package config

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/construction-forecast/pkg/params"
	"github.com/iwvelando/construction-forecast/pkg/project"
)

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Example project",
			configPath: "testdata/project.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	config, err := LoadConfiguration("testdata/project.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Project.Name != "Konyaaltı sea view" {
		t.Errorf("Expected project name, got %q", config.Project.Name)
	}
	if config.Project.LandSize != 2146 {
		t.Errorf("Expected LandSize = 2146, got %v", config.Project.LandSize)
	}
	if config.Project.QualityLevel != "luxury" {
		t.Errorf("Expected luxury quality, got %q", config.Project.QualityLevel)
	}
	if config.Project.MonthsToSellAfterCompletion == nil || *config.Project.MonthsToSellAfterCompletion != 9 {
		t.Errorf("Expected monthsToSellAfterCompletion = 9, got %v", config.Project.MonthsToSellAfterCompletion)
	}
	if config.Project.ConstructionMonths != nil {
		t.Errorf("Expected constructionMonths to stay unset, got %v", *config.Project.ConstructionMonths)
	}
	if config.Logging.Level != "debug" || config.Logging.Format != "console" {
		t.Errorf("Unexpected logging config %+v", config.Logging)
	}
	if config.Output.Format != "csv" {
		t.Errorf("Expected output format csv, got %q", config.Output.Format)
	}
}

func TestConfigurationInputs(t *testing.T) {
	config, err := LoadConfiguration("testdata/project.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	in, err := config.Inputs()
	if err != nil {
		t.Fatalf("Inputs() error = %v", err)
	}

	if in.ProjectType != project.Apartment || in.QualityLevel != project.Luxury {
		t.Errorf("Unexpected enumerations %s/%s", in.ProjectType, in.QualityLevel)
	}
	// 2146 × 0.60 × 1.70
	if math.Abs(in.TotalSqm-2188.92) > 1e-6 {
		t.Errorf("Expected TotalSqm derived from zoning = 2188.92, got %v", in.TotalSqm)
	}
	if in.StartDate == nil || !in.StartDate.Equal(time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected start date %v", in.StartDate)
	}
	if in.CostDistribution == nil || *in.CostDistribution != project.Linear {
		t.Errorf("Expected linear distribution, got %v", in.CostDistribution)
	}
	if in.MonthlyInflationRate == nil || *in.MonthlyInflationRate != 0.02 {
		t.Errorf("Expected inflation override 0.02, got %v", in.MonthlyInflationRate)
	}
	if in.MonthlyDiscountRate != nil {
		t.Errorf("Expected discount rate to stay unset")
	}
}

func TestConfigurationParsedOverrides(t *testing.T) {
	config, err := LoadConfiguration("testdata/project.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	overrides, err := config.ParsedOverrides()
	if err != nil {
		t.Fatalf("ParsedOverrides() error = %v", err)
	}
	if len(overrides) != 2 {
		t.Errorf("Expected 2 overrides, got %v", overrides)
	}
	if v, ok := overrides.Get(params.StructureCost); !ok || v != 12500 {
		t.Errorf("Expected structure_cost = 12500, got %v", v)
	}
	if _, ok := overrides.Get(params.MarketCondition); ok {
		t.Errorf("Null override should have been skipped")
	}
}

func TestUnknownOverrideFailsFast(t *testing.T) {
	config, err := LoadConfiguration("testdata/unknown_override.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	_, err = config.ParsedOverrides()
	if !errors.Is(err, params.ErrUnknownParameter) {
		t.Errorf("Expected ErrUnknownParameter, got %v", err)
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	yamlData := `
project:
  location: lara
  landSize: 1000
  emsal: 1.5
  projectType: Villa
  totalSqm: 450
`
	config, err := LoadConfigurationFromReader(strings.NewReader(yamlData))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	// Defaults apply when the sections are missing.
	if config.Logging.Level != "info" || config.Logging.Format != "json" {
		t.Errorf("Unexpected logging defaults %+v", config.Logging)
	}
	if config.Output.Format != "pretty" {
		t.Errorf("Expected default output format pretty, got %q", config.Output.Format)
	}

	in, err := config.Inputs()
	if err != nil {
		t.Fatalf("Inputs() error = %v", err)
	}
	if in.ProjectType != project.Villa {
		t.Errorf("Expected villa, got %s", in.ProjectType)
	}
	if in.QualityLevel != project.Mid {
		t.Errorf("Expected default quality mid, got %s", in.QualityLevel)
	}
	if in.TotalSqm != 450 {
		t.Errorf("Explicit TotalSqm should win over zoning, got %v", in.TotalSqm)
	}
}

func TestLoadConfigurationFromReaderInvalidYAML(t *testing.T) {
	if _, err := LoadConfigurationFromReader(strings.NewReader("project: [unclosed")); err == nil {
		t.Errorf("Expected error for malformed YAML")
	}
}

func TestEnvironmentOverridesConfig(t *testing.T) {
	t.Setenv("CONSTRUCTION_FORECAST_OUTPUT_FORMAT", "json")
	t.Setenv("CONSTRUCTION_FORECAST_PROJECT_LOCATION", "kemer")

	config, err := LoadConfiguration("testdata/project.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if config.Output.Format != "json" {
		t.Errorf("Expected env to override output format, got %q", config.Output.Format)
	}
	if config.Project.Location != "kemer" {
		t.Errorf("Expected env to override location, got %q", config.Project.Location)
	}
}

func TestConfigurationInputsErrors(t *testing.T) {
	tests := []struct {
		name    string
		project ProjectConfig
	}{
		{"bad type", ProjectConfig{ProjectType: "tower"}},
		{"bad quality", ProjectConfig{QualityLevel: "platinum"}},
		{"bad date", ProjectConfig{StartDate: "01/03/2027"}},
		{"bad distribution", ProjectConfig{CostDistribution: "front-loaded"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Configuration{Project: tt.project}
			if _, err := c.Inputs(); err == nil {
				t.Errorf("Inputs() expected error for %+v", tt.project)
			}
		})
	}
}

func TestFromInputsRoundTrip(t *testing.T) {
	start := time.Date(2027, 5, 1, 0, 0, 0, 0, time.UTC)
	dist := project.SCurve
	months := 16
	in := project.Inputs{
		Location:           "alanya",
		LandSize:           1500,
		EMSAL:              1.2,
		ProjectType:        project.Apartment,
		QualityLevel:       project.Standard,
		TotalSqm:           1800,
		StartDate:          &start,
		CostDistribution:   &dist,
		ConstructionMonths: &months,
		UnitMix:            project.UnitMix{{Name: "2+1", NetSize: 95, Count: 12}},
	}

	c := Configuration{Project: FromInputs("alanya block", in)}
	back, err := c.Inputs()
	if err != nil {
		t.Fatalf("Inputs() error = %v", err)
	}
	if back.Location != in.Location || back.TotalSqm != in.TotalSqm || *back.ConstructionMonths != 16 {
		t.Errorf("Round trip lost fields: %+v", back)
	}
	if !back.StartDate.Equal(start) || *back.CostDistribution != project.SCurve {
		t.Errorf("Round trip lost timeline fields: %+v", back)
	}
	if len(back.UnitMix) != 1 || back.UnitMix[0] != in.UnitMix[0] {
		t.Errorf("Round trip lost unit mix: %+v", back.UnitMix)
	}
}

func TestLoadConfigurationUnitMix(t *testing.T) {
	yamlData := `
project:
  location: lara
  landSize: 2000
  emsal: 1.5
  unitMix:
    - name: "1+1"
      netSize: 60
      count: 10
    - name: "3+1"
      netSize: 135.5
      count: 4
`
	config, err := LoadConfigurationFromReader(strings.NewReader(yamlData))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	in, err := config.Inputs()
	if err != nil {
		t.Fatalf("Inputs() error = %v", err)
	}

	want := project.UnitMix{{Name: "1+1", NetSize: 60, Count: 10}, {Name: "3+1", NetSize: 135.5, Count: 4}}
	if len(in.UnitMix) != len(want) {
		t.Fatalf("Expected %d unit types, got %+v", len(want), in.UnitMix)
	}
	for i := range want {
		if in.UnitMix[i] != want[i] {
			t.Errorf("unitMix[%d] = %+v, expected %+v", i, in.UnitMix[i], want[i])
		}
	}
	if in.UnitMix.Units() != 14 {
		t.Errorf("Expected 14 units, got %d", in.UnitMix.Units())
	}

	empty := Configuration{Project: ProjectConfig{Location: "lara", LandSize: 100, EMSAL: 1}}
	in, err = empty.Inputs()
	if err != nil {
		t.Fatalf("Inputs() error = %v", err)
	}
	if in.UnitMix != nil {
		t.Errorf("Expected no unit mix, got %+v", in.UnitMix)
	}
}

func TestLoadTablesDefault(t *testing.T) {
	c := Configuration{}
	tables, err := c.LoadTables()
	if err != nil {
		t.Fatalf("LoadTables() error = %v", err)
	}
	if _, ok := tables.Location("konyaalti"); !ok {
		t.Errorf("Expected embedded tables to contain konyaalti")
	}

	c.Tables = "testdata/missing-tables.yaml"
	if _, err := c.LoadTables(); err == nil {
		t.Errorf("Expected error for missing tables file")
	}
}
