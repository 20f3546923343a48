// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/construction-forecast/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons and display only; the pipeline never
// rounds intermediate values.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// SafeDivide divides numerator by denominator, reporting 0 instead of
// NaN or Inf when the denominator is zero.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	return SafeDivide(value, total) * constants.PercentageMultiplier
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}

// CompoundFactor returns (1+rate)^periods.
func CompoundFactor(rate float64, periods int) float64 {
	return math.Pow(1+rate, float64(periods))
}

// Discount converts a future amount to its present value.
func Discount(amount, rate float64, periods int) float64 {
	return SafeDivide(amount, CompoundFactor(rate, periods))
}
