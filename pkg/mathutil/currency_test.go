package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 1.235, 1.24},
		{"Round down below midpoint", 1.234, 1.23},
		{"Large amount", 11654321.678, 11654321.68},
		{"Negative number", -1.234, -1.23},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Exactly zero", 0.0, true},
		{"Within one kuruş", 0.009, true},
		{"Exactly tolerance", -0.01, true},
		{"Just above tolerance", 0.02, false},
		{"Large negative", -100.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsZero(tt.input); result != tt.expected {
				t.Errorf("IsZero(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSafeDivide(t *testing.T) {
	tests := []struct {
		name        string
		numerator   float64
		denominator float64
		expected    float64
	}{
		{"Regular division", 10.0, 4.0, 2.5},
		{"Zero denominator", 10.0, 0.0, 0.0},
		{"Negative numerator zero denominator", -10.0, 0.0, 0.0},
		{"Zero over zero", 0.0, 0.0, 0.0},
		{"Negative result", -10.0, 4.0, -2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SafeDivide(tt.numerator, tt.denominator)
			if result != tt.expected {
				t.Errorf("SafeDivide(%v, %v) = %v, expected %v", tt.numerator, tt.denominator, result, tt.expected)
			}
			if math.IsNaN(result) || math.IsInf(result, 0) {
				t.Errorf("SafeDivide(%v, %v) produced non-finite %v", tt.numerator, tt.denominator, result)
			}
		})
	}
}

func TestCalculatePercentage(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		total    float64
		expected float64
	}{
		{"50% of 100", 50.0, 100.0, 50.0},
		{"More than 100%", 150.0, 100.0, 150.0},
		{"Zero total", 50.0, 0.0, 0.0},
		{"Negative value", -50.0, 100.0, -50.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculatePercentage(tt.value, tt.total)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("CalculatePercentage(%v, %v) = %v, expected %v",
					tt.value, tt.total, result, tt.expected)
			}
		})
	}
}

func TestApplyPercentage(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		percentage float64
		expected   float64
	}{
		{"Permit fee on subtotal", 1000000.0, 3.0, 30000.0},
		{"0% of value", 100.0, 0.0, 0.0},
		{"Percentage of zero", 0.0, 50.0, 0.0},
		{"Fractional percentage", 200.0, 2.5, 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ApplyPercentage(tt.value, tt.percentage)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("ApplyPercentage(%v, %v) = %v, expected %v",
					tt.value, tt.percentage, result, tt.expected)
			}
		})
	}
}

func TestCompoundFactor(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		periods  int
		expected float64
	}{
		{"No periods", 0.025, 0, 1.0},
		{"One period", 0.025, 1, 1.025},
		{"Six months appreciation", 0.015, 6, 1.0934433},
		{"Zero rate", 0.0, 24, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CompoundFactor(tt.rate, tt.periods)
			if math.Abs(result-tt.expected) > 1e-6 {
				t.Errorf("CompoundFactor(%v, %v) = %v, expected %v", tt.rate, tt.periods, result, tt.expected)
			}
		})
	}
}

func TestDiscount(t *testing.T) {
	present := Discount(1.01*1.01*1000, 0.01, 2)
	if math.Abs(present-1000) > 1e-9 {
		t.Errorf("Discount() = %v, expected 1000", present)
	}

	if Discount(1000, 0, 12) != 1000 {
		t.Errorf("Discount() with zero rate should return the amount unchanged")
	}

	if Discount(1000, 0.01, 24) >= Discount(1000, 0.01, 23) {
		t.Errorf("Discount() should decrease as the horizon grows")
	}
}
