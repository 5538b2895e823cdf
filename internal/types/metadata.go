package types

import "github.com/samber/lo"

// Metadata represents a string key-value bag carried through the
// calculation and enriched by extension hooks.
type Metadata map[string]string

// Merge returns a new Metadata with the entries of other layered on top
// of m. Keys present in both take other's value. Neither input is mutated.
func (m Metadata) Merge(other Metadata) Metadata {
	return lo.Assign(Metadata{}, m, other)
}

// Clone returns an independent copy of the metadata map.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return Metadata{}
	}
	return lo.Assign(Metadata{}, m)
}
