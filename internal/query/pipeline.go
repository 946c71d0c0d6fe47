// Package query derives the displayed subset and order of an organization's
// items from the raw collection. Everything here is pure and synchronous;
// the full output is recomputed on every input change, which is fine at
// single-organization collection sizes.
package query

import (
	"sort"
	"strings"

	"go-inventory-cloud/internal/model"
)

// FilterState is the ephemeral search/filter input for one list view.
type FilterState struct {
	SearchTerm string
	// Category filters by exact match when non-nil.
	Category *string
}

type SortKey string

const (
	SortByName     SortKey = "name"
	SortByStatus   SortKey = "status"
	SortByQuantity SortKey = "quantity"
)

type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// SortConfig is the ephemeral sort input for one list view.
type SortConfig struct {
	Key       SortKey
	Direction SortDirection
}

// Filter returns the items that pass the search term and category filter.
// An item passes when any of name, location, or category contains the term
// case-insensitively (an empty term matches everything), and the category
// matches exactly when one is selected.
func Filter(items []model.InventoryItem, state FilterState) []model.InventoryItem {
	term := strings.ToLower(state.SearchTerm)

	out := make([]model.InventoryItem, 0, len(items))
	for _, item := range items {
		if !matchesTerm(item, term) {
			continue
		}
		if state.Category != nil && item.Category != *state.Category {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesTerm(item model.InventoryItem, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item.Name), term) ||
		strings.Contains(strings.ToLower(item.Location), term) ||
		strings.Contains(strings.ToLower(item.Category), term)
}

// Sort stable-sorts items by the configured key. Desc reverses the
// comparator, not the final sequence, so equal keys keep their filtered
// order in both directions. The input slice is not modified.
func Sort(items []model.InventoryItem, cfg SortConfig) []model.InventoryItem {
	out := make([]model.InventoryItem, len(items))
	copy(out, items)

	less := comparator(cfg.Key)
	if cfg.Direction == Desc {
		asc := less
		less = func(a, b model.InventoryItem) bool { return asc(b, a) }
	}

	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

// comparator returns the strict-less ordering for a sort key. String keys
// compare byte-wise as stored, with no locale normalization.
func comparator(key SortKey) func(a, b model.InventoryItem) bool {
	switch key {
	case SortByQuantity:
		return func(a, b model.InventoryItem) bool { return a.Quantity < b.Quantity }
	case SortByStatus:
		return func(a, b model.InventoryItem) bool { return a.Status < b.Status }
	default:
		return func(a, b model.InventoryItem) bool { return a.Name < b.Name }
	}
}

// Apply runs the filter then, when cfg is non-nil, the stable sort.
func Apply(items []model.InventoryItem, state FilterState, cfg *SortConfig) []model.InventoryItem {
	filtered := Filter(items, state)
	if cfg == nil {
		return filtered
	}
	return Sort(filtered, *cfg)
}
