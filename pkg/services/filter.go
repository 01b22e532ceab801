package services

import (
	"slices"
	"strings"

	"portfolio-site/pkg/config"
	"portfolio-site/pkg/models"
)

// Selection holds the facet values and search text a listing is filtered by.
// A facet that is missing, empty or "All" does not filter.
type Selection struct {
	Facets map[string]string `json:"facets"`
	Search string            `json:"search"`
}

// NewSelection reads one value per configured facet through lookup
// (typically a query-string getter).
func NewSelection(facets []config.Facet, lookup func(string) string, search string) Selection {
	sel := Selection{Facets: make(map[string]string, len(facets)), Search: search}
	for _, f := range facets {
		if v := lookup(f.Name); v != "" {
			sel.Facets[f.Name] = v
		}
	}
	return sel
}

// Value returns the selected value of a facet, "All" when unset.
func (s Selection) Value(facet string) string {
	if v := s.Facets[facet]; v != "" {
		return v
	}
	return config.All
}

// Active reports whether the selection filters anything.
func (s Selection) Active() bool {
	if s.Search != "" {
		return true
	}
	for _, v := range s.Facets {
		if v != "" && v != config.All {
			return true
		}
	}
	return false
}

// Matches is the conjunction of every active facet and the search term.
// Search is a case-insensitive substring test over the record's search fields.
func Matches[T models.Record](r T, sel Selection) bool {
	for name, want := range sel.Facets {
		if want == "" || want == config.All {
			continue
		}
		if !slices.Contains(r.FacetValues(name), want) {
			return false
		}
	}
	if sel.Search == "" {
		return true
	}
	q := strings.ToLower(sel.Search)
	for _, field := range r.SearchFields() {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Filter returns the matching records in their original order. The input
// is not modified.
func Filter[T models.Record](items []T, sel Selection) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if Matches(it, sel) {
			out = append(out, it)
		}
	}
	return out
}
