package params

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrUnknownParameter is returned for identifiers outside the closed enumeration.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrNotOverridable is returned for derived parameters, which are set
	// through the project inputs instead.
	ErrNotOverridable = errors.New("parameter cannot be overridden")

	// ErrInvalidValue is returned for NaN or infinite override values.
	ErrInvalidValue = errors.New("invalid parameter value")
)

// Overrides maps parameters to user-supplied effective values. A missing key
// means no override.
type Overrides map[ID]float64

// Get returns the override for id, if any.
func (o Overrides) Get(id ID) (float64, bool) {
	if o == nil {
		return 0, false
	}
	v, ok := o[id]
	return v, ok
}

// IDs returns the overridden identifiers sorted alphabetically.
func (o Overrides) IDs() []ID {
	ids := make([]ID, 0, len(o))
	for id := range o {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Validate checks every key against the enumeration.
func (o Overrides) Validate() error {
	for _, id := range o.IDs() {
		if err := check(id, o[id]); err != nil {
			return err
		}
	}
	return nil
}

// ParseOverrides converts raw string-keyed overrides into typed overrides.
func ParseOverrides(raw map[string]float64) (Overrides, error) {
	out := make(Overrides, len(raw))
	for _, key := range sortedKeys(raw) {
		id, err := Parse(key)
		if err != nil {
			return nil, err
		}
		if err := check(id, raw[key]); err != nil {
			return nil, err
		}
		out[id] = raw[key]
	}
	return out, nil
}

// ParseNullableOverrides is ParseOverrides for payloads where a null value
// means "use the default". Null entries are dropped.
func ParseNullableOverrides(raw map[string]*float64) (Overrides, error) {
	values := make(map[string]float64, len(raw))
	for key, value := range raw {
		if value == nil {
			if _, err := Parse(key); err != nil {
				return nil, err
			}
			continue
		}
		values[key] = *value
	}
	return ParseOverrides(values)
}

func check(id ID, value float64) error {
	def, ok := Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}
	if !def.Overridable() {
		return fmt.Errorf("%w: %q is derived from the project inputs", ErrNotOverridable, id)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %q = %v", ErrInvalidValue, id, value)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
