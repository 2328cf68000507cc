package facet

// Matrix computes the temp index for a filter list.
//
// The returned index is a fresh clone of base; base itself is never touched.
// Filters are applied in three stages, each reading the buckets left by the
// previous one:
//
//  1. Conjunctive: the buckets of all plain positive clauses are intersected
//     into one accumulator, which then restricts every bucket of every field.
//     A value missing from the index turns the accumulator empty for good.
//  2. Negative: for each negative clause the value's current bucket is
//     subtracted from every bucket. A missing value subtracts nothing.
//  3. Disjunctive: each OR group yields the union of its values' base
//     buckets, which restricts the buckets of every other field. A field's
//     own buckets stay unrestricted so they keep showing every option.
//
// A clause naming a field that is not indexed returns a *DataError.
//
// Example:
//
//	temp, err := Matrix(idx, []Filter{Eq("tags", "c"), AnyOf("genre", "Drama", "Comedy")})
func Matrix(base *FacetIndex, filters []Filter) (*FacetIndex, error) {
	if err := checkFilterFields(base, filters); err != nil {
		return nil, err
	}
	temp := base.Clone()

	// OR groups read the base buckets, before any restriction happens.
	disjunctive := make(map[string]*BitSet)
	var disjunctiveOrder []string
	for _, f := range filters {
		if !f.Disjunctive {
			continue
		}
		union := NewBitSet()
		for _, c := range f.Clauses {
			union = union.Union(base.Bits(c.Field, c.Value))
			if _, ok := disjunctive[c.Field]; !ok {
				disjunctiveOrder = append(disjunctiveOrder, c.Field)
			}
			disjunctive[c.Field] = union
		}
	}

	var acc *BitSet
	for _, f := range filters {
		if f.Disjunctive {
			continue
		}
		for _, c := range f.Clauses {
			if !c.Negative {
				acc = accumulate(acc, temp.Bits(c.Field, c.Value))
			}
		}
	}
	if acc != nil {
		temp.apply(func(_ string, bs *BitSet) *BitSet {
			return bs.Intersection(acc)
		})
	}

	for _, f := range filters {
		if f.Disjunctive {
			continue
		}
		for _, c := range f.Clauses {
			if !c.Negative {
				continue
			}
			excluded := temp.Bits(c.Field, c.Value)
			if excluded == nil {
				continue
			}
			temp.apply(func(_ string, bs *BitSet) *BitSet {
				return bs.Difference(excluded)
			})
		}
	}

	if len(disjunctive) > 0 {
		temp.apply(func(field string, bs *BitSet) *BitSet {
			for _, other := range disjunctiveOrder {
				if other != field {
					bs = bs.Intersection(disjunctive[other])
				}
			}
			return bs
		})
	}

	return temp, nil
}

// FiltersMatrix restricts idx by a disjunction of clause groups, the form
// produced by ParseBooleanQuery.
//
// Every group is reduced to the intersection of its clauses' buckets, with
// the same empty-on-missing rule as Matrix. The union of all groups then
// restricts every bucket of every field. Negative clauses inside groups are
// not supported and are ignored. idx is not modified.
func FiltersMatrix(idx *FacetIndex, groups []ClauseGroup) (*FacetIndex, error) {
	for _, g := range groups {
		for _, c := range g {
			if !idx.HasField(c.Field) {
				return nil, unknownFieldError(c.Field)
			}
		}
	}
	temp := idx.Clone()
	if len(groups) == 0 {
		return temp, nil
	}

	union := NewBitSet()
	for _, g := range groups {
		var acc *BitSet
		for _, c := range g {
			if c.Negative {
				continue
			}
			acc = accumulate(acc, temp.Bits(c.Field, c.Value))
		}
		union = union.Union(acc)
	}

	temp.apply(func(_ string, bs *BitSet) *BitSet {
		return bs.Intersection(union)
	})
	return temp, nil
}

// accumulate intersects acc with bucket. The first bucket seeds the
// accumulator; a missing bucket empties it.
func accumulate(acc, bucket *BitSet) *BitSet {
	if bucket == nil {
		return NewBitSet()
	}
	if acc == nil {
		return bucket
	}
	return bucket.Intersection(acc)
}

// SelectedIDs returns the union of the temp buckets of every selected value,
// or nil when nothing is selected.
func SelectedIDs(temp *FacetIndex, selection Selection) *BitSet {
	if selection.count() == 0 {
		return nil
	}
	var sets []*BitSet
	for field, values := range selection {
		for _, v := range values {
			sets = append(sets, temp.Bits(field, v))
		}
	}
	return UnionAll(sets...)
}

// AllIDs returns the union of every bucket of every field.
func AllIDs(temp *FacetIndex) *BitSet {
	var sets []*BitSet
	for _, field := range temp.fields {
		fi := temp.data[field]
		for _, key := range fi.keys {
			sets = append(sets, fi.bits[key])
		}
	}
	return UnionAll(sets...)
}

// ExcludedIDs returns the union of the base buckets of every negatively
// filtered value, or nil when there are none.
func ExcludedIDs(base *FacetIndex, notFilters Selection) *BitSet {
	return SelectedIDs(base, notFilters)
}

func checkFilterFields(idx *FacetIndex, filters []Filter) error {
	for _, f := range filters {
		for _, c := range f.Clauses {
			if !idx.HasField(c.Field) {
				return unknownFieldError(c.Field)
			}
		}
	}
	return nil
}

func unknownFieldError(field string) error {
	return dataErrorf("the key %q does not exist in facets lists", field)
}
