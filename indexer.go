// Package facet implements the facet index: per-field inverted indexes
// from value to the set of item ids carrying that value.
//
// HOW IT WORKS:
// Every configured field owns a map of bucket key -> BitSet. Scalar values add
// the item id to one bucket, list values add it to one bucket per element and
// missing values add it nowhere. Keys remember the order in which they were
// first seen, which is the tie-break order for bucket sorting.
//
// Each field also carries a vellum FST over its distinct keys so that facet
// values can be listed by prefix without scanning every bucket.
//
// IMMUTABILITY:
// A FacetIndex produced by BuildIndex is never modified afterwards. Search
// works on a Clone: the clone shares keys, FSTs and BitSets with the base and
// only replaces map entries, so cloning costs one map copy per field.
package facet

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/couchbase/vellum"
)

// FacetIndex maps field -> value -> BitSet of item ids.
//
// Thread-safety: an index returned by BuildIndex is read-only and may be
// shared by any number of goroutines.
type FacetIndex struct {
	fields []string
	data   map[string]*fieldIndex
	ids    *BitSet
}

type fieldIndex struct {
	// keys in first-seen order
	keys []string
	bits map[string]*BitSet
	// dict maps every key to its position in keys; nil when the field is empty
	dict *vellum.FST
}

// BuildIndex indexes items by the given fields, reading each field from the
// item attribute of the same name.
//
// Items without a usable "_id" are numbered by a counter starting at 1 that
// skips ids already claimed by other items. The items slice is not modified;
// see AssignIDs.
//
// Example:
//
//	idx, err := BuildIndex([]Item{{"tags": []any{"a", "b"}}}, []string{"tags"})
//	idx.Bits("tags", "a").ToArray() // [1]
func BuildIndex(items []Item, fields []string) (*FacetIndex, error) {
	return BuildIndexWithSources(items, fields, nil)
}

// BuildIndexWithSources is BuildIndex where a field may read its values from
// a differently named item attribute. sources maps field -> attribute; fields
// absent from sources read the attribute of their own name.
func BuildIndexWithSources(items []Item, fields []string, sources map[string]string) (*FacetIndex, error) {
	idx := &FacetIndex{
		fields: append([]string(nil), fields...),
		data:   make(map[string]*fieldIndex, len(fields)),
	}

	ids := AssignIDs(items)
	postings := make(map[string]map[string][]uint32, len(fields))
	for _, field := range fields {
		idx.data[field] = &fieldIndex{bits: make(map[string]*BitSet)}
		postings[field] = make(map[string][]uint32)
	}

	for i, item := range items {
		id := ids[i]
		for _, field := range fields {
			source := field
			if s, ok := sources[field]; ok && s != "" {
				source = s
			}
			fi := idx.data[field]
			for _, key := range item.fieldKeys(source) {
				if _, seen := postings[field][key]; !seen {
					fi.keys = append(fi.keys, key)
				}
				postings[field][key] = append(postings[field][key], id)
			}
		}
	}

	for _, field := range fields {
		fi := idx.data[field]
		for key, list := range postings[field] {
			sort.Slice(list, func(a, b int) bool { return list[a] < list[b] })
			fi.bits[key] = NewBitSet(list...)
		}
		dict, err := buildDictionary(fi.keys)
		if err != nil {
			return nil, fmt.Errorf("build dictionary of %q: %w", field, err)
		}
		fi.dict = dict
	}

	idx.ids = NewBitSet(ids...)
	return idx, nil
}

// AssignIDs returns the internal id of every item. An item keeps its own
// positive integer "_id" unless an earlier item already claimed it; every
// other item gets the next value of a counter that starts at 1 and skips
// claimed ids. No id is handed out twice.
func AssignIDs(items []Item) []uint32 {
	ids := make([]uint32, len(items))
	claimed := make(map[uint32]int, len(items))
	for i, item := range items {
		if id, ok := item.internalID(); ok {
			if _, taken := claimed[id]; !taken {
				claimed[id] = i
			}
		}
	}

	next := uint32(1)
	for i, item := range items {
		if id, ok := item.internalID(); ok && claimed[id] == i {
			ids[i] = id
			continue
		}
		for {
			if _, taken := claimed[next]; !taken {
				break
			}
			next++
		}
		ids[i] = next
		claimed[next] = i
		next++
	}
	return ids
}

// buildDictionary builds an FST mapping every key to its position in keys.
// vellum requires lexicographic insertion order, so the keys are sorted into
// a scratch slice first.
func buildDictionary(keys []string) (*vellum.FST, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	pos := make(map[string]uint64, len(keys))
	for i, k := range keys {
		pos[k] = uint64(i)
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	data, err := encodeDictionary(sorted, pos)
	if err != nil {
		return nil, err
	}
	return vellum.Load(data)
}

// encodeDictionary writes sorted keys with their values as a vellum FST.
func encodeDictionary(sorted []string, values map[string]uint64) ([]byte, error) {
	var buf bytes.Buffer
	builder, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, err
	}
	for _, k := range sorted {
		if err := builder.Insert([]byte(k), values[k]); err != nil {
			return nil, fmt.Errorf("insert %q: %w", k, err)
		}
	}
	if err := builder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Fields returns the indexed field names in configuration order.
func (idx *FacetIndex) Fields() []string {
	return idx.fields
}

// HasField reports whether field is part of the index.
func (idx *FacetIndex) HasField(field string) bool {
	_, ok := idx.data[field]
	return ok
}

// Values returns the keys of a field in first-seen order.
func (idx *FacetIndex) Values(field string) []string {
	fi, ok := idx.data[field]
	if !ok {
		return nil
	}
	return fi.keys
}

// Bits returns the ids holding value in field, or nil when the value does
// not exist.
func (idx *FacetIndex) Bits(field, value string) *BitSet {
	fi, ok := idx.data[field]
	if !ok {
		return nil
	}
	return fi.bits[value]
}

// IDs returns every internal id assigned while building the index.
func (idx *FacetIndex) IDs() *BitSet {
	return idx.ids
}

// ValuesWithPrefix returns the keys of field starting with prefix, in
// first-seen order. An empty prefix returns every key.
func (idx *FacetIndex) ValuesWithPrefix(field, prefix string) ([]string, error) {
	fi, ok := idx.data[field]
	if !ok {
		return nil, dataErrorf("the key %q does not exist in facets lists", field)
	}
	if prefix == "" {
		return append([]string(nil), fi.keys...), nil
	}
	if fi.dict == nil {
		return nil, nil
	}

	start := []byte(prefix)
	iter, err := fi.dict.Iterator(start, prefixSuccessor(start))
	var positions []int
	for err == nil {
		_, pos := iter.Current()
		positions = append(positions, int(pos))
		err = iter.Next()
	}
	if err != vellum.ErrIteratorDone {
		return nil, fmt.Errorf("iterate values of %q: %w", field, err)
	}

	sort.Ints(positions)
	out := make([]string, len(positions))
	for i, p := range positions {
		out[i] = fi.keys[p]
	}
	return out, nil
}

// prefixSuccessor returns the smallest key greater than every key with the
// given prefix, or nil when no such key exists.
func prefixSuccessor(prefix []byte) []byte {
	succ := append([]byte(nil), prefix...)
	for i := len(succ) - 1; i >= 0; i-- {
		if succ[i] < 0xff {
			succ[i]++
			return succ[:i+1]
		}
	}
	return nil
}

// Clone returns a copy of the index whose per-field bucket maps can be
// replaced without affecting idx. BitSets are shared; they are immutable.
func (idx *FacetIndex) Clone() *FacetIndex {
	out := &FacetIndex{
		fields: idx.fields,
		data:   make(map[string]*fieldIndex, len(idx.data)),
		ids:    idx.ids,
	}
	for field, fi := range idx.data {
		bits := make(map[string]*BitSet, len(fi.bits))
		for k, v := range fi.bits {
			bits[k] = v
		}
		out.data[field] = &fieldIndex{keys: fi.keys, bits: bits, dict: fi.dict}
	}
	return out
}

// apply replaces every bucket of every field with fn(field, bucket).
func (idx *FacetIndex) apply(fn func(field string, bs *BitSet) *BitSet) {
	for _, field := range idx.fields {
		fi := idx.data[field]
		for _, key := range fi.keys {
			fi.bits[key] = fn(field, fi.bits[key])
		}
	}
}
