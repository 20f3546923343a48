package params

// Range is a quality-tier band for a parameter.
type Range struct {
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Default float64 `json:"default" yaml:"default"`
}

// Contains reports whether v lies inside the band, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Resolved is the effective value of a parameter together with its provenance.
type Resolved struct {
	ID        ID        `json:"id"`
	Label     string    `json:"label"`
	Value     float64   `json:"value"`
	Source    Source    `json:"source"`
	AppliesTo AppliesTo `json:"appliesTo"`
	Kind      Kind      `json:"kind"`
	Range     *Range    `json:"range,omitempty"`
}

// Snapshot is an ordered set of resolved parameters.
type Snapshot struct {
	Parameters []Resolved `json:"parameters"`
}

// Get returns the resolved entry for id.
func (s Snapshot) Get(id ID) (Resolved, bool) {
	for _, p := range s.Parameters {
		if p.ID == id {
			return p, true
		}
	}
	return Resolved{}, false
}

// Value returns the effective value for id, or 0 when absent.
func (s Snapshot) Value(id ID) float64 {
	p, _ := s.Get(id)
	return p.Value
}

// Set replaces the entry for p.ID or appends it.
func (s *Snapshot) Set(p Resolved) {
	for i := range s.Parameters {
		if s.Parameters[i].ID == p.ID {
			s.Parameters[i] = p
			return
		}
	}
	s.Parameters = append(s.Parameters, p)
}

// OfKind returns the entries of one kind, keeping snapshot order.
func (s Snapshot) OfKind(kind Kind) []Resolved {
	var out []Resolved
	for _, p := range s.Parameters {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}
