package testutil

import (
	"testing"

	"github.com/iwvelando/construction-forecast/pkg/scenario"
	"github.com/iwvelando/construction-forecast/pkg/timeline"
)

func TestFindScenario(t *testing.T) {
	set := scenario.Generate(1_000_000, 800_000, 24, 0.01)

	tests := []struct {
		name     string
		scenario string
		wantNil  bool
	}{
		{name: "optimistic", scenario: scenario.Optimistic},
		{name: "base", scenario: scenario.Base},
		{name: "pessimistic", scenario: scenario.Pessimistic},
		{name: "unknown", scenario: "catastrophic", wantNil: true},
		{name: "empty name", scenario: "", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindScenario(set, tt.scenario)
			if tt.wantNil {
				if got != nil {
					t.Errorf("FindScenario(%q) = %+v, want nil", tt.scenario, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("FindScenario(%q) = nil", tt.scenario)
			}
			if got.Name != tt.scenario {
				t.Errorf("FindScenario(%q).Name = %q", tt.scenario, got.Name)
			}
		})
	}
}

func TestFindScenarioMatchesSetFields(t *testing.T) {
	set := scenario.Generate(1_000_000, 800_000, 24, 0.01)
	if got := FindScenario(set, scenario.Pessimistic); got.Profit != set.Pessimistic.Profit {
		t.Errorf("expected pessimistic profit %v, got %v", set.Pessimistic.Profit, got.Profit)
	}
}

func TestFindMonth(t *testing.T) {
	rows := []timeline.MonthlySpend{
		{Month: 1, Label: "2027-03"},
		{Month: 2, Label: "2027-04"},
	}

	if got := FindMonth(rows, "2027-04"); got == nil || got.Month != 2 {
		t.Errorf("FindMonth(2027-04) = %+v", got)
	}
	if got := FindMonth(rows, "2027-05"); got != nil {
		t.Errorf("FindMonth(2027-05) = %+v, want nil", got)
	}
	if got := FindMonth(nil, "2027-03"); got != nil {
		t.Errorf("FindMonth on empty rows = %+v, want nil", got)
	}
}

func TestPointers(t *testing.T) {
	if *Float(0.025) != 0.025 {
		t.Error("Float did not round trip")
	}
	if *Int(18) != 18 {
		t.Error("Int did not round trip")
	}
}
