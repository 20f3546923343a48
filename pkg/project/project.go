// Package project defines the inputs of a feasibility calculation.
package project

import (
	"fmt"
	"strings"
	"time"
)

// Type is the kind of building being developed.
type Type string

const (
	Apartment Type = "apartment"
	Villa     Type = "villa"
)

// QualityLevel selects the cost and premium tier.
type QualityLevel string

const (
	Standard QualityLevel = "standard"
	Mid      QualityLevel = "mid"
	Luxury   QualityLevel = "luxury"
)

// QualityLevels lists the supported tiers from cheapest to most expensive.
func QualityLevels() []QualityLevel {
	return []QualityLevel{Standard, Mid, Luxury}
}

// ParseType normalizes a raw project type.
func ParseType(raw string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(raw))); t {
	case Apartment, Villa:
		return t, nil
	case "":
		return Apartment, nil
	}
	return "", fmt.Errorf("unsupported project type %q: expected %s or %s", raw, Apartment, Villa)
}

// ParseQualityLevel normalizes a raw quality tier.
func ParseQualityLevel(raw string) (QualityLevel, error) {
	switch q := QualityLevel(strings.ToLower(strings.TrimSpace(raw))); q {
	case Standard, Mid, Luxury:
		return q, nil
	case "":
		return Mid, nil
	}
	return "", fmt.Errorf("unsupported quality level %q: expected %s, %s or %s", raw, Standard, Mid, Luxury)
}

// Distribution is the shape of the monthly construction spend.
type Distribution string

const (
	Linear Distribution = "linear"
	SCurve Distribution = "s-curve"
)

// ParseDistribution normalizes a raw distribution name.
func ParseDistribution(raw string) (Distribution, error) {
	switch d := Distribution(strings.ToLower(strings.TrimSpace(raw))); d {
	case Linear, SCurve:
		return d, nil
	case "scurve", "s_curve":
		return SCurve, nil
	}
	return "", fmt.Errorf("unsupported cost distribution %q: expected %s or %s", raw, Linear, SCurve)
}

// Inputs holds everything the user enters for one project. Optional fields
// are nil when the table defaults apply.
type Inputs struct {
	Location     string       `json:"location"`
	LandSize     float64      `json:"landSize"`
	EMSAL        float64      `json:"emsal"`
	TAKS         float64      `json:"taks,omitempty"`
	Cikma        float64      `json:"cikma,omitempty"`
	ProjectType  Type         `json:"projectType"`
	QualityLevel QualityLevel `json:"qualityLevel"`
	TotalSqm     float64      `json:"totalSqm"`
	// UnitMix is the planned units. Empty selects the default mix.
	UnitMix UnitMix `json:"unitMix,omitempty"`

	LandCost                    *float64      `json:"landCost,omitempty"`
	UnitCount                   *int          `json:"unitCount,omitempty"`
	ConstructionMonths          *int          `json:"constructionMonths,omitempty"`
	StartDate                   *time.Time    `json:"startDate,omitempty"`
	CostDistribution            *Distribution `json:"costDistribution,omitempty"`
	MonthlyInflationRate        *float64      `json:"monthlyInflationRate,omitempty"`
	MonthlyAppreciationRate     *float64      `json:"monthlyAppreciationRate,omitempty"`
	MonthsToSellAfterCompletion *int          `json:"monthsToSellAfterCompletion,omitempty"`
	MonthlyDiscountRate         *float64      `json:"monthlyDiscountRate,omitempty"`
}

// LocationKey returns the normalized key used for location table lookups.
func (in Inputs) LocationKey() string {
	return NormalizeLocation(in.Location)
}

// NormalizeLocation lowercases and folds Turkish characters so that
// "Konyaaltı" and "konyaalti" address the same district.
func NormalizeLocation(raw string) string {
	replacer := strings.NewReplacer(
		"ı", "i", "İ", "i", "ş", "s", "Ş", "s", "ğ", "g", "Ğ", "g",
		"ü", "u", "Ü", "u", "ö", "o", "Ö", "o", "ç", "c", "Ç", "c",
		" ", "-",
	)
	return strings.ToLower(replacer.Replace(strings.TrimSpace(raw)))
}
