package project

import (
	"math"

	"github.com/iwvelando/construction-forecast/pkg/constants"
)

// UnitType is one row of a unit mix: a layout, its net area and how many
// of it are built.
type UnitType struct {
	Name    string  `json:"name"`
	NetSize float64 `json:"netSize"`
	Count   int     `json:"count"`
}

// NetArea is the saleable area of all units of this type.
func (u UnitType) NetArea() float64 {
	return u.NetSize * float64(u.Count)
}

// UnitMix lists the unit types of a project.
type UnitMix []UnitType

// Units returns the number of units in the mix.
func (m UnitMix) Units() int {
	n := 0
	for _, u := range m {
		n += u.Count
	}
	return n
}

// NetArea returns the saleable area the mix occupies.
func (m UnitMix) NetArea() float64 {
	total := 0.0
	for _, u := range m {
		total += u.NetArea()
	}
	return total
}

type mixShare struct {
	name    string
	netSize float64
	share   float64
}

func defaultShares(t Type) []mixShare {
	if t == Villa {
		return []mixShare{{"villa", constants.VillaNetSize, 1}}
	}
	return []mixShare{
		{"1+1", constants.OneBedroomNetSize, constants.OneBedroomShare},
		{"2+1", constants.TwoBedroomNetSize, constants.TwoBedroomShare},
		{"3+1", constants.ThreeBedroomNetSize, constants.ThreeBedroomShare},
	}
}

// DefaultUnitMix fills the saleable area with the standard layouts of the
// project type. Each layout gets whole units on its share of the area, and
// the leftover is topped up with the first (smallest) layout. An area too
// small for any layout becomes a single unit of that area.
func DefaultUnitMix(t Type, saleableArea float64) UnitMix {
	if !(saleableArea > 0) {
		return UnitMix{}
	}

	shares := defaultShares(t)
	mix := make(UnitMix, 0, len(shares))
	used := 0.0
	for _, s := range shares {
		count := int(math.Floor(saleableArea * s.share / s.netSize))
		mix = append(mix, UnitType{Name: s.name, NetSize: s.netSize, Count: count})
		used += s.netSize * float64(count)
	}
	if top := int(math.Floor((saleableArea - used) / mix[0].NetSize)); top > 0 {
		mix[0].Count += top
	}

	compact := mix[:0]
	for _, u := range mix {
		if u.Count > 0 {
			compact = append(compact, u)
		}
	}
	if len(compact) == 0 {
		return UnitMix{{Name: shares[0].name, NetSize: saleableArea, Count: 1}}
	}
	return compact
}
