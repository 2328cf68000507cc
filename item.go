package facet

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// InternalIDField is the key under which every indexed item carries its
// internal numeric id.
const InternalIDField = "_id"

// Item is a single record: a free-form map from field name to value.
// Values may be scalars or lists of scalars; lists fan out to one bucket
// per element.
type Item map[string]any

// clone returns a shallow copy of the item.
func (it Item) clone() Item {
	out := make(Item, len(it)+1)
	for k, v := range it {
		out[k] = v
	}
	return out
}

// internalID returns the item's "_id" if it holds an integer in
// [1, math.MaxUint32].
func (it Item) internalID() (uint32, bool) {
	v, ok := it[InternalIDField]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case uint32:
		return n, n > 0
	case int:
		if n > 0 && uint64(n) <= math.MaxUint32 {
			return uint32(n), true
		}
	case int64:
		if n > 0 && n <= math.MaxUint32 {
			return uint32(n), true
		}
	case uint64:
		if n > 0 && n <= math.MaxUint32 {
			return uint32(n), true
		}
	case float64:
		if n > 0 && n <= math.MaxUint32 && n == math.Trunc(n) {
			return uint32(n), true
		}
	case json.Number:
		if i, err := strconv.ParseUint(string(n), 10, 32); err == nil && i > 0 {
			return uint32(i), true
		}
	}
	return 0, false
}

// fieldKeys returns the bucket keys contributed by a field of the item.
// Missing or nil values contribute nothing; lists contribute every element.
func (it Item) fieldKeys(field string) []string {
	v, ok := it[field]
	if !ok || v == nil {
		return nil
	}
	return valueKeys(v)
}

// valueKeys converts a raw value into its bucket keys.
func valueKeys(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		keys := make([]string, 0, len(t))
		for _, e := range t {
			if e == nil {
				continue
			}
			keys = append(keys, valueKey(e))
		}
		return keys
	case []string:
		return append([]string(nil), t...)
	case []int:
		keys := make([]string, len(t))
		for i, e := range t {
			keys[i] = strconv.Itoa(e)
		}
		return keys
	case []float64:
		keys := make([]string, len(t))
		for i, e := range t {
			keys[i] = strconv.FormatFloat(e, 'f', -1, 64)
		}
		return keys
	default:
		return []string{valueKey(v)}
	}
}

// valueKey normalizes a scalar to its string key.
func valueKey(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
