// Package worldbuild implements the world builder (spec §4.I): turning
// a WorldDescriptor produced by evaluating the root module into an
// ordered ksystem.KWorld, plus spawning the descriptor's declarative
// entities.
package worldbuild

import "sort"

// SystemEntry is one entry of WorldDescriptor.Systems (spec §6).
type SystemEntry struct {
	ID       string
	Order    int
	StableID string
	Config   any
	index    int // declared position, used as the stable tie-break
}

// EntityEntry is one entry of WorldDescriptor.Entities (spec §6): a
// declarative spawn request. Only Name/Prefab are named by the spec;
// everything else travels through Extra for prefab-specific fields.
type EntityEntry struct {
	Name   string
	Prefab string
	Extra  map[string]any
}

// Descriptor is the parsed WorldDescriptor (spec §3/§6).
type Descriptor struct {
	Name     string
	Mode     string
	Systems  []SystemEntry
	Entities []EntityEntry
}

// SortSystems sorts entries by Order ascending, ties broken by declared
// index (spec §6 "ties broken by declared index"; spec §8 boundary
// behavior: equal order preserves declaration order).
func SortSystems(entries []SystemEntry) []SystemEntry {
	sorted := append([]SystemEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Order != sorted[j].Order {
			return sorted[i].Order < sorted[j].Order
		}
		return sorted[i].index < sorted[j].index
	})
	return sorted
}

// WithDeclaredIndex stamps each entry with its position in entries,
// filtering out any entry missing an Id (spec §4.I "filter entries
// missing id").
func WithDeclaredIndex(entries []SystemEntry) []SystemEntry {
	out := make([]SystemEntry, 0, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			continue
		}
		e.index = i
		out = append(out, e)
	}
	return out
}
