// Package filter models the user-selected filter set that constrains
// which vehicles participate in a query.
package filter

import "strings"

// Field identifies a filterable column. Only these three columns may be
// used in a filter set; the store relies on this when building SQL
// identifiers, so the set of values here is closed.
type Field string

const (
	FieldBrand    Field = "brand"
	FieldSegment  Field = "segment"
	FieldBodyType Field = "car_body_type"
)

// NoFilterApplied is the summary text for an empty filter set.
const NoFilterApplied = "no filter applied"

// Fields returns the filterable fields in their canonical order.
// Iteration over a Set should go through this slice so that generated
// SQL and summaries are deterministic.
func Fields() []Field {
	return []Field{FieldBrand, FieldSegment, FieldBodyType}
}

// ParseField maps a user-supplied field name to a Field.
// The second result is false for names that are not filterable.
func ParseField(name string) (Field, bool) {
	switch Field(strings.TrimSpace(name)) {
	case FieldBrand:
		return FieldBrand, true
	case FieldSegment:
		return FieldSegment, true
	case FieldBodyType:
		return FieldBodyType, true
	}
	return "", false
}

// Set maps a field to the values a row may take for that field.
// A field absent from the set is unconstrained. Value slices in a
// normalized Set are never empty.
type Set map[Field][]string

// Normalize returns a new Set retaining only entries whose value list is
// non-empty. The order of values within each entry is preserved as given.
func Normalize(selection Set) Set {
	normalized := make(Set, len(selection))
	for field, values := range selection {
		if len(values) > 0 {
			normalized[field] = values
		}
	}
	return normalized
}

// Summarize renders the set as human-readable text, one clause per field
// joined by " | ", e.g. "brand: Tesla, BMW | segment: C - Medium".
// Returns NoFilterApplied for an empty set. Fields appear in canonical
// order regardless of how the set was built.
func Summarize(set Set) string {
	var parts []string
	for _, field := range Fields() {
		values := set[field]
		if len(values) == 0 {
			continue
		}
		parts = append(parts, string(field)+": "+strings.Join(values, ", "))
	}
	if len(parts) == 0 {
		return NoFilterApplied
	}
	return strings.Join(parts, " | ")
}
