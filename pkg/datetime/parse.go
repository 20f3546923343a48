// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/construction-forecast/pkg/constants"
)

const (
	// DateLayout is the format expected in config files and is also the output
	// date format.
	DateLayout = constants.DateLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseOptionalDate parses a config date. An empty string yields a nil time.
// Both the full date layout and the month-only layout are accepted.
func ParseOptionalDate(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	for _, layout := range []string{constants.DateLayout, constants.MonthLayout} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q: expected %s or %s", value, constants.DateLayout, constants.MonthLayout)
}

// StartOfDay truncates t to midnight UTC so that timelines built from a
// wall-clock "now" are stable for the whole day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths offsets t by the given number of calendar months. The day is
// clamped to the length of the target month, so 31 January plus one month is
// the last day of February rather than early March.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := DaysIn(target.Year(), target.Month()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthLabel returns the calendar month label of the given 1-based month of a
// timeline that starts at start.
func MonthLabel(start time.Time, month int) string {
	return AddMonths(start, month-1).Format(constants.MonthLayout)
}
