// Package resolver merges table defaults, location-derived values and user
// overrides into the effective value of each parameter.
package resolver

import (
	"github.com/iwvelando/construction-forecast/pkg/constants"
	"github.com/iwvelando/construction-forecast/pkg/params"
	"github.com/iwvelando/construction-forecast/pkg/project"
	"github.com/iwvelando/construction-forecast/pkg/reference"
)

// Resolver resolves parameters against one set of reference tables.
type Resolver struct {
	tables      *reference.Tables
	projectType project.Type
}

// New returns a resolver over tables. The project type selects which district
// price the location table contributes to the base sale price.
func New(tables *reference.Tables, projectType project.Type) *Resolver {
	return &Resolver{tables: tables, projectType: projectType}
}

// Resolve returns the effective value of id. Precedence, highest first: user
// override, location-derived value, quality-tier default, global fallback.
// Unknown identifiers resolve to a zero-valued default entry.
func (r *Resolver) Resolve(id params.ID, quality project.QualityLevel, location string, overrides params.Overrides) params.Resolved {
	def, ok := params.Lookup(id)
	if !ok {
		return params.Resolved{ID: id, Source: params.SourceDefault}
	}

	resolved := params.Resolved{
		ID:        def.ID,
		Label:     def.Label,
		Kind:      def.Kind,
		AppliesTo: def.AppliesTo,
		Value:     r.fallback(def),
		Source:    params.SourceDefault,
	}

	rng, hasRange := r.tables.TierRange(id, quality)
	if hasRange {
		band := rng
		resolved.Range = &band
		resolved.Value = rng.Default
	}

	if def.LocationSensitive {
		if v, ok := r.locationValue(id, location); ok {
			resolved.Value = v
			resolved.Source = params.SourceLocationDerived
		}
	}

	if v, ok := overrides.Get(id); ok && def.Overridable() {
		resolved.Value = v
		resolved.Source = params.SourceUserOverride
	}

	return resolved
}

// ResolveAll resolves every table-backed parameter in declaration order.
func (r *Resolver) ResolveAll(quality project.QualityLevel, location string, overrides params.Overrides) params.Snapshot {
	var snapshot params.Snapshot
	for _, def := range params.All() {
		if !def.Overridable() {
			continue
		}
		snapshot.Parameters = append(snapshot.Parameters, r.Resolve(def.ID, quality, location, overrides))
	}
	return snapshot
}

func (r *Resolver) fallback(def params.Definition) float64 {
	if def.ID == params.BaseSalePrice && r.projectType == project.Villa {
		return constants.FallbackVillaPricePerSqm
	}
	return def.Fallback
}

func (r *Resolver) locationValue(id params.ID, location string) (float64, bool) {
	loc, ok := r.tables.Location(location)
	if !ok {
		return 0, false
	}
	var v float64
	switch id {
	case params.BaseSalePrice:
		v = loc.SalePrice(r.projectType)
	case params.LandPrice:
		v = loc.LandPricePerSqm
	case params.LocationPremium:
		v = loc.LocationPremium
	}
	// A zero entry means the table has no figure for this district.
	if v <= 0 {
		return 0, false
	}
	return v, true
}

// CombinedMultiplier returns the product of the multiplicative sales factors.
func CombinedMultiplier(snapshot params.Snapshot) float64 {
	product := 1.0
	for _, id := range params.Multipliers() {
		if p, ok := snapshot.Get(id); ok {
			product *= p.Value
		}
	}
	return product
}
