// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/construction-forecast/pkg/scenario"
	"github.com/iwvelando/construction-forecast/pkg/timeline"
)

// FindScenario finds a scenario by name in the set.
// Returns a pointer to the result if found, nil otherwise.
func FindScenario(set scenario.Set, name string) *scenario.Result {
	all := set.All()
	for i := range all {
		if all[i].Name == name {
			return &all[i]
		}
	}
	return nil
}

// FindMonth finds the breakdown row with the given "2006-01" label.
func FindMonth(rows []timeline.MonthlySpend, label string) *timeline.MonthlySpend {
	for i := range rows {
		if rows[i].Label == label {
			return &rows[i]
		}
	}
	return nil
}

// Float returns a pointer to v, for optional inputs.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for optional inputs.
func Int(v int) *int { return &v }
