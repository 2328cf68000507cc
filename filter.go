package facet

import (
	"sort"
)

// Clause is a single field/value condition. A negative clause excludes the
// items holding the value instead of requiring it.
type Clause struct {
	Field    string
	Value    string
	Negative bool
}

// Filter is one top-level entry of a filter list. A plain filter holds one
// clause; a disjunctive filter holds an OR group of positive clauses.
// Top-level filters are AND-ed together.
type Filter struct {
	Clauses     []Clause
	Disjunctive bool
}

// ClauseGroup is a conjunction of positive clauses as produced by
// ParseBooleanQuery. A list of groups is a disjunction.
type ClauseGroup []Clause

// Selection maps a field to the values selected for it.
type Selection map[string][]string

// Eq returns a filter requiring field to hold value.
func Eq(field, value string) Filter {
	return Filter{Clauses: []Clause{{Field: field, Value: value}}}
}

// Not returns a filter excluding items where field holds value.
func Not(field, value string) Filter {
	return Filter{Clauses: []Clause{{Field: field, Value: value, Negative: true}}}
}

// AnyOf returns a filter requiring field to hold at least one of values.
func AnyOf(field string, values ...string) Filter {
	f := Filter{Disjunctive: true, Clauses: make([]Clause, len(values))}
	for i, v := range values {
		f.Clauses[i] = Clause{Field: field, Value: v}
	}
	return f
}

// Has reports whether value is selected for field.
func (s Selection) Has(field, value string) bool {
	for _, v := range s[field] {
		if v == value {
			return true
		}
	}
	return false
}

// count returns the number of selected values over all fields.
func (s Selection) count() int {
	n := 0
	for _, values := range s {
		n += len(values)
	}
	return n
}

// orderedFields returns the selection's fields: first those listed in order,
// then the remaining ones alphabetically.
func (s Selection) orderedFields(order []string) []string {
	seen := make(map[string]bool, len(s))
	out := make([]string, 0, len(s))
	for _, f := range order {
		if _, ok := s[f]; ok && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	var rest []string
	for f := range s {
		if !seen[f] {
			rest = append(rest, f)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// FiltersFromSelection converts per-field selections into a filter list.
//
// Selected values of a conjunctive aggregation become one plain filter each,
// those of a disjunctive aggregation become a single OR group, and every
// value in notFilters becomes a negative filter. Selecting or excluding
// values of an aggregation that is not configured is a *ConfigurationError.
func FiltersFromSelection(filters, notFilters Selection, aggs *AggregationMap) ([]Filter, error) {
	order := aggregationNames(aggs)
	var out []Filter

	for _, field := range filters.orderedFields(order) {
		values := filters[field]
		if len(values) == 0 {
			continue
		}
		agg, ok := lookupAggregation(aggs, field)
		if !ok {
			return nil, configErrorf("aggregation %q not defined in config", field)
		}
		if agg.IsConjunctive() {
			for _, v := range values {
				out = append(out, Eq(field, v))
			}
			continue
		}
		out = append(out, AnyOf(field, values...))
	}

	for _, field := range notFilters.orderedFields(order) {
		if len(notFilters[field]) == 0 {
			continue
		}
		if _, ok := lookupAggregation(aggs, field); !ok {
			return nil, configErrorf("aggregation %q not defined in config", field)
		}
		for _, v := range notFilters[field] {
			out = append(out, Not(field, v))
		}
	}
	return out, nil
}
