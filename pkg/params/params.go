// Package params defines the closed set of cost and sales parameters used by
// the feasibility pipeline, together with their applicability tags,
// provenance tags and typed user overrides.
package params

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/construction-forecast/pkg/constants"
)

// ID identifies a parameter. Only the identifiers declared in this package
// are valid.
type ID string

// Cost parameters.
const (
	StructureCost      ID = "structure_cost"
	FinishingCost      ID = "finishing_cost"
	MEPCost            ID = "mep_cost"
	InteriorFitout     ID = "interior_fitout"
	SitePreparation    ID = "site_preparation"
	Landscaping        ID = "landscaping"
	UtilityConnections ID = "utility_connections"
	PermitsFees        ID = "permits_fees"
	DesignFees         ID = "design_fees"
	Contingency        ID = "contingency"
	ContractorMargin   ID = "contractor_margin"
)

// Sales parameters.
const (
	BaseSalePrice   ID = "base_sale_price"
	LandPrice       ID = "land_price"
	NetToGrossRatio ID = "net_to_gross_ratio"
	LocationPremium ID = "location_premium"
	QualityPremium  ID = "quality_premium"
	AmenityPremium  ID = "amenity_premium"
	MarketCondition ID = "market_condition"
)

// Values derived from the project inputs rather than the tables.
const (
	ConstructionMonths ID = "construction_months"
	UnitCount          ID = "unit_count"
	LandCost           ID = "land_cost"
	SaleableArea       ID = "saleable_area"
)

// Kind groups parameters by the table they are resolved from.
type Kind string

const (
	KindCost    Kind = "cost"
	KindSales   Kind = "sales"
	KindDerived Kind = "derived"
)

// AppliesTo tags what quantity a parameter value is multiplied by.
type AppliesTo string

const (
	PerGrossSqm       AppliesTo = "per-gross-m2"
	PerNetSqm         AppliesTo = "per-net-m2"
	PerLandSqm        AppliesTo = "per-land-m2"
	FixedPerUnit      AppliesTo = "fixed-per-unit"
	PercentOfSubtotal AppliesTo = "percentage-of-subtotal"
	Multiplier        AppliesTo = "multiplier"
	Ratio             AppliesTo = "ratio"
	Fixed             AppliesTo = "fixed"
)

// IsQuantityBased reports whether the tag multiplies a physical quantity,
// i.e. whether the parameter belongs to the first accumulation pass.
func (a AppliesTo) IsQuantityBased() bool {
	switch a {
	case PerGrossSqm, PerNetSqm, PerLandSqm, FixedPerUnit:
		return true
	}
	return false
}

// Source records where an effective value came from.
type Source string

const (
	SourceDefault         Source = "default"
	SourceLocationDerived Source = "location-derived"
	SourceUserOverride    Source = "user-override"
	SourceCalculated      Source = "calculated"
)

// Definition describes one parameter.
type Definition struct {
	ID        ID
	Label     string
	Kind      Kind
	AppliesTo AppliesTo
	// Fallback is the global constant used when neither the location nor the
	// quality tier table supplies a value.
	Fallback float64
	// LocationSensitive parameters may take their default from the location table.
	LocationSensitive bool
	// Sequence orders percentage-of-subtotal items; lower applies first.
	Sequence int
}

// Overridable reports whether callers may supply an override for the parameter.
func (d Definition) Overridable() bool {
	return d.Kind != KindDerived
}

var definitions = []Definition{
	{ID: StructureCost, Label: "Structure (rough construction)", Kind: KindCost, AppliesTo: PerGrossSqm, Fallback: 9000},
	{ID: FinishingCost, Label: "Finishing works", Kind: KindCost, AppliesTo: PerGrossSqm, Fallback: 7000},
	{ID: MEPCost, Label: "Mechanical, electrical and plumbing", Kind: KindCost, AppliesTo: PerGrossSqm, Fallback: 4000},
	{ID: InteriorFitout, Label: "Kitchen, bath and interior fit-out", Kind: KindCost, AppliesTo: PerNetSqm, Fallback: 2500},
	{ID: SitePreparation, Label: "Excavation and site preparation", Kind: KindCost, AppliesTo: PerLandSqm, Fallback: 400},
	{ID: Landscaping, Label: "Landscaping and exterior works", Kind: KindCost, AppliesTo: PerLandSqm, Fallback: 600},
	{ID: UtilityConnections, Label: "Utility subscriptions per unit", Kind: KindCost, AppliesTo: FixedPerUnit, Fallback: 85000},
	{ID: PermitsFees, Label: "Permits and municipal fees", Kind: KindCost, AppliesTo: PercentOfSubtotal, Fallback: 3, Sequence: 1},
	{ID: DesignFees, Label: "Architecture and engineering design", Kind: KindCost, AppliesTo: PercentOfSubtotal, Fallback: 4, Sequence: 2},
	{ID: Contingency, Label: "Contingency", Kind: KindCost, AppliesTo: PercentOfSubtotal, Fallback: 5, Sequence: 3},
	{ID: ContractorMargin, Label: "Contractor margin", Kind: KindCost, AppliesTo: PercentOfSubtotal, Fallback: 10, Sequence: 4},

	{ID: BaseSalePrice, Label: "Base sale price", Kind: KindSales, AppliesTo: PerNetSqm, Fallback: constants.FallbackApartmentPricePerSqm, LocationSensitive: true},
	{ID: LandPrice, Label: "Land price", Kind: KindSales, AppliesTo: PerLandSqm, Fallback: constants.FallbackLandPricePerSqm, LocationSensitive: true},
	{ID: NetToGrossRatio, Label: "Net to gross area ratio", Kind: KindSales, AppliesTo: Ratio, Fallback: 0.80},
	{ID: LocationPremium, Label: "Location premium", Kind: KindSales, AppliesTo: Multiplier, Fallback: constants.FallbackLocationPremium, LocationSensitive: true},
	{ID: QualityPremium, Label: "Quality premium", Kind: KindSales, AppliesTo: Multiplier, Fallback: 1.0},
	{ID: AmenityPremium, Label: "Amenity premium", Kind: KindSales, AppliesTo: Multiplier, Fallback: 1.0},
	{ID: MarketCondition, Label: "Market condition", Kind: KindSales, AppliesTo: Multiplier, Fallback: 1.0},

	{ID: ConstructionMonths, Label: "Construction months", Kind: KindDerived, AppliesTo: Fixed},
	{ID: UnitCount, Label: "Unit count", Kind: KindDerived, AppliesTo: Fixed},
	{ID: LandCost, Label: "Land cost", Kind: KindDerived, AppliesTo: Fixed},
	{ID: SaleableArea, Label: "Saleable (net) area", Kind: KindDerived, AppliesTo: Fixed},
}

var byID = func() map[ID]Definition {
	m := make(map[ID]Definition, len(definitions))
	for _, def := range definitions {
		m[def.ID] = def
	}
	return m
}()

// All returns every parameter definition in declaration order.
func All() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// OfKind returns the definitions of one kind in declaration order.
func OfKind(kind Kind) []Definition {
	var out []Definition
	for _, def := range definitions {
		if def.Kind == kind {
			out = append(out, def)
		}
	}
	return out
}

// Lookup returns the definition for id.
func Lookup(id ID) (Definition, bool) {
	def, ok := byID[id]
	return def, ok
}

// Parse converts a raw identifier into an ID, failing for unknown names.
func Parse(raw string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := byID[id]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownParameter, raw)
	}
	return id, nil
}

// Multipliers returns the multiplicative sales parameters in declaration order.
func Multipliers() []ID {
	var out []ID
	for _, def := range definitions {
		if def.AppliesTo == Multiplier {
			out = append(out, def.ID)
		}
	}
	return out
}

// PercentageSequence returns the percentage-of-subtotal cost parameters in
// the order they are applied to the running subtotal.
func PercentageSequence() []Definition {
	var out []Definition
	for _, def := range definitions {
		if def.AppliesTo == PercentOfSubtotal {
			out = append(out, def)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}
