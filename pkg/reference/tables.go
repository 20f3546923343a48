// Package reference holds the read-only lookup data consumed by the
// pipeline: district prices, quality-tiered cost ranges and sales factors.
//
// Tables are immutable once loaded. Default returns the embedded Antalya
// tables, parsed once per process; Load parses substitute tables, e.g. for
// tests or a market update shipped as a YAML file.
package reference

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/iwvelando/construction-forecast/pkg/params"
	"github.com/iwvelando/construction-forecast/pkg/project"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultTables []byte

// Location is one district entry of the location table.
type Location struct {
	Name                 string  `yaml:"name" json:"name"`
	LandPricePerSqm      float64 `yaml:"landPricePerSqm" json:"landPricePerSqm"`
	ApartmentPricePerSqm float64 `yaml:"apartmentPricePerSqm" json:"apartmentPricePerSqm"`
	VillaPricePerSqm     float64 `yaml:"villaPricePerSqm" json:"villaPricePerSqm"`
	LocationPremium      float64 `yaml:"locationPremium" json:"locationPremium"`
	MarketTrend          string  `yaml:"marketTrend" json:"marketTrend"`
	Demand               string  `yaml:"demand" json:"demand"`
	Risk                 string  `yaml:"risk" json:"risk"`
}

// SalePrice returns the district price per m² for the project type.
func (l Location) SalePrice(t project.Type) float64 {
	if t == project.Villa {
		return l.VillaPricePerSqm
	}
	return l.ApartmentPricePerSqm
}

// TimelineDefaults are the table-level defaults for the project timeline.
type TimelineDefaults struct {
	MonthlyInflationRate    float64 `yaml:"monthlyInflationRate" json:"monthlyInflationRate"`
	MonthlyAppreciationRate float64 `yaml:"monthlyAppreciationRate" json:"monthlyAppreciationRate"`
	MonthlyDiscountRate     float64 `yaml:"monthlyDiscountRate" json:"monthlyDiscountRate"`
	MonthsToSell            int     `yaml:"monthsToSell" json:"monthsToSell"`
	CostDistribution        string  `yaml:"costDistribution" json:"costDistribution"`
}

// TierRanges maps quality tiers to their band for one parameter.
type TierRanges map[project.QualityLevel]params.Range

// Tables is the complete reference data set.
type Tables struct {
	Timeline  TimelineDefaults         `yaml:"timeline"`
	Locations map[string]Location      `yaml:"locations"`
	Costs     map[params.ID]TierRanges `yaml:"costs"`
	Sales     map[params.ID]TierRanges `yaml:"sales"`
}

var (
	defaultOnce sync.Once
	defaultSet  *Tables
	defaultErr  error
)

// Default returns the embedded tables.
func Default() (*Tables, error) {
	defaultOnce.Do(func() {
		defaultSet, defaultErr = Load(bytes.NewReader(defaultTables))
	})
	return defaultSet, defaultErr
}

// MustDefault is Default for callers that cannot proceed without tables.
func MustDefault() *Tables {
	t, err := Default()
	if err != nil {
		panic(fmt.Sprintf("embedded reference tables are invalid: %v", err))
	}
	return t
}

// LoadFile parses tables from a YAML file.
func LoadFile(path string) (*Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference tables: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses and validates tables from YAML.
func Load(r io.Reader) (*Tables, error) {
	var t Tables
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to parse reference tables: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	locations := make(map[string]Location, len(t.Locations))
	for key, loc := range t.Locations {
		locations[project.NormalizeLocation(key)] = loc
	}
	t.Locations = locations
	return &t, nil
}

func (t *Tables) validate() error {
	check := func(table string, kind params.Kind, entries map[params.ID]TierRanges) error {
		for id, tiers := range entries {
			def, ok := params.Lookup(id)
			if !ok {
				return fmt.Errorf("%s table: %w: %q", table, params.ErrUnknownParameter, id)
			}
			if def.Kind != kind {
				return fmt.Errorf("%s table: parameter %q is a %s parameter", table, id, def.Kind)
			}
			for tier, rng := range tiers {
				if _, err := project.ParseQualityLevel(string(tier)); err != nil || tier == "" {
					return fmt.Errorf("%s table: parameter %q: unknown quality tier %q", table, id, tier)
				}
				if rng.Min > rng.Max || !rng.Contains(rng.Default) {
					return fmt.Errorf("%s table: parameter %q tier %s: default %v outside [%v, %v]",
						table, id, tier, rng.Default, rng.Min, rng.Max)
				}
			}
		}
		return nil
	}
	if err := check("costs", params.KindCost, t.Costs); err != nil {
		return err
	}
	if err := check("sales", params.KindSales, t.Sales); err != nil {
		return err
	}
	if t.Timeline.CostDistribution != "" {
		if _, err := project.ParseDistribution(t.Timeline.CostDistribution); err != nil {
			return fmt.Errorf("timeline defaults: %w", err)
		}
	}
	return nil
}

// Location looks up a district by key.
func (t *Tables) Location(key string) (Location, bool) {
	if t == nil {
		return Location{}, false
	}
	loc, ok := t.Locations[project.NormalizeLocation(key)]
	return loc, ok
}

// LocationKeys returns the district keys sorted alphabetically.
func (t *Tables) LocationKeys() []string {
	keys := make([]string, 0, len(t.Locations))
	for key := range t.Locations {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// TierRange returns the quality-tier band of a cost or sales parameter.
func (t *Tables) TierRange(id params.ID, quality project.QualityLevel) (params.Range, bool) {
	if t == nil {
		return params.Range{}, false
	}
	if tiers, ok := t.Costs[id]; ok {
		rng, ok := tiers[quality]
		return rng, ok
	}
	if tiers, ok := t.Sales[id]; ok {
		rng, ok := tiers[quality]
		return rng, ok
	}
	return params.Range{}, false
}
