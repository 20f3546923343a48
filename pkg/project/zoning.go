package project

// Capacity is the buildable envelope of a parcel under its zoning ratios.
type Capacity struct {
	// Footprint is the ground coverage permitted by TAKS.
	Footprint float64 `json:"footprint"`
	// PermittedArea is landSize × EMSAL (KAKS).
	PermittedArea float64 `json:"permittedArea"`
	// GrossBuildable adds the projection allowance (çıkma) to the permitted area.
	GrossBuildable float64 `json:"grossBuildable"`

	// The fields below are filled by Allocate.
	SaleableArea  float64 `json:"saleableArea"`
	UnitMix       UnitMix `json:"unitMix,omitempty"`
	DefaultMix    bool    `json:"defaultMix"`
	Units         int     `json:"units"`
	UsedArea      float64 `json:"usedArea"`
	RemainingArea float64 `json:"remainingArea"`
}

// Allocate places mix in the saleable part of the envelope and reports the
// net area it uses and what is left. An empty mix selects DefaultUnitMix.
// RemainingArea is negative when the mix does not fit.
func (c Capacity) Allocate(mix UnitMix, t Type, saleableArea float64) Capacity {
	c.SaleableArea = saleableArea
	c.DefaultMix = len(mix) == 0
	if c.DefaultMix {
		mix = DefaultUnitMix(t, saleableArea)
	}
	c.UnitMix = mix
	c.Units = mix.Units()
	c.UsedArea = mix.NetArea()
	c.RemainingArea = saleableArea - c.UsedArea
	return c
}

// ZoningCapacity computes the buildable envelope. A zero çıkma factor is
// treated as 1, i.e. no projections.
func ZoningCapacity(landSize, taks, emsal, cikma float64) Capacity {
	if cikma <= 0 {
		cikma = 1
	}
	permitted := landSize * emsal
	return Capacity{
		Footprint:      landSize * taks,
		PermittedArea:  permitted,
		GrossBuildable: permitted * cikma,
	}
}

// WithDerivedArea returns a copy of in whose TotalSqm is filled from the
// zoning capacity when the caller left it empty.
func (in Inputs) WithDerivedArea() Inputs {
	if in.TotalSqm > 0 {
		return in
	}
	in.TotalSqm = ZoningCapacity(in.LandSize, in.TAKS, in.EMSAL, in.Cikma).GrossBuildable
	return in
}
