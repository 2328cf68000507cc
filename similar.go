package facet

import (
	"sort"
)

// SimilarOptions configures a similarity lookup.
type SimilarOptions struct {
	// Field whose values are compared. Required.
	Field string
	// Minimum number of shared values for an item to be returned.
	Minimum int
	// Page is 1-based; PerPage defaults to 10.
	Page    int
	PerPage int
}

// SimilarItem is an item together with the number of values it shares with
// the reference item.
type SimilarItem struct {
	Item               Item `json:"item"`
	IntersectionLength int  `json:"intersection_length"`
}

// SimilarResult is one page of similar items.
type SimilarResult struct {
	Items      []SimilarItem `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

// Similar ranks the other items by how many distinct values of opts.Field
// they share with the item whose external id is id. Items sharing fewer
// than opts.Minimum values are left out; ties keep index order.
//
// Returns a *ConfigurationError when opts.Field is empty and a *UsageError
// when no item has the given id.
func (e *Engine) Similar(id any, opts SimilarOptions) (*SimilarResult, error) {
	if opts.Field == "" {
		return nil, configErrorf("field is required for similar items")
	}
	snap := e.snap.Load()

	internal, ok := snap.idMap[valueKey(id)]
	if id == nil || !ok {
		return nil, usageErrorf("item %v not found", id)
	}
	reference := distinctKeys(snap.byID[internal].fieldKeys(opts.Field))

	var ranked []SimilarItem
	for _, item := range snap.items {
		if other, _ := item.internalID(); other == internal {
			continue
		}
		shared := 0
		for key := range distinctKeys(item.fieldKeys(opts.Field)) {
			if _, ok := reference[key]; ok {
				shared++
			}
		}
		if shared >= opts.Minimum {
			ranked = append(ranked, SimilarItem{Item: item.clone(), IntersectionLength: shared})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].IntersectionLength > ranked[j].IntersectionLength
	})

	page := sanitize(opts.Page, 1)
	perPage := sanitize(opts.PerPage, DefaultSimilarPerPage)
	return &SimilarResult{
		Items:      paginate(ranked, page, perPage),
		Pagination: Pagination{Page: page, PerPage: perPage, Total: len(ranked)},
	}, nil
}

func distinctKeys(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
