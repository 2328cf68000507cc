package facet

import (
	"encoding/json"
	"sort"
	"strings"
)

// sortItems returns items ordered by s. Fields are compared in turn; each
// uses the order at the same index of s.Order, ascending when missing.
// Missing values sort after present ones in ascending order.
// The sort is stable.
func sortItems(items []Item, s Sorting) []Item {
	out := append([]Item(nil), items...)
	if len(s.Field.Values) == 0 {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		for n, field := range s.Field.Values {
			c := compareValues(out[i][field], out[j][field])
			if c == 0 {
				continue
			}
			if n < len(s.Order.Values) && s.Order.Values[n] == "desc" {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return out
}

// compareValues orders two item values: numbers numerically, booleans
// false before true, everything else by its string key. nil is greater than
// any value.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			return boolRank(ba) - boolRank(bb)
		}
	}
	return strings.Compare(valueKey(a), valueKey(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// resolveSorting picks the sorting requested by a search: a custom Sorting
// wins over a named one. A name missing from cfg.Sortings is a
// *ConfigurationError.
func resolveSorting(cfg *Config, opts *SearchOptions) (*Sorting, error) {
	if opts.SortBy != nil {
		return opts.SortBy, nil
	}
	if opts.Sort == "" {
		return nil, nil
	}
	s, ok := cfg.Sortings[opts.Sort]
	if !ok {
		return nil, configErrorf("sorting %q not defined in config", opts.Sort)
	}
	return &s, nil
}
