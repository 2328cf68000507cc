package facet

import (
	"time"
)

// SearchOptions describes a search request. Every field is optional.
type SearchOptions struct {
	// Query is a free-text query for the full-text collaborator.
	Query string
	// Filter is a custom predicate applied through the full-text collaborator.
	Filter func(Item) bool

	// Filters selects facet values per aggregation.
	Filters Selection
	// NotFilters excludes items holding the given values.
	NotFilters Selection
	// ExcludeFilters is an alias of NotFilters; per field it takes
	// precedence.
	ExcludeFilters Selection
	// FiltersQuery is a boolean filter expression, see ParseBooleanQuery.
	FiltersQuery string

	// IDs restricts the search to items with these external ids, in this
	// order. A non-nil empty slice matches nothing.
	IDs []any
	// InternalIDs restricts the search to these internal ids, in this order.
	// It takes precedence over IDs and Query.
	InternalIDs []uint32

	// Sort names a sorting from the configuration; SortBy gives one inline
	// and takes precedence.
	Sort   string
	SortBy *Sorting

	// Page is 1-based; PerPage defaults to 12.
	Page    int
	PerPage int

	// IsAllFilteredItems also returns every matching item before pagination.
	IsAllFilteredItems bool
}

// Pagination describes the returned page.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

// Timings reports where a search spent its time.
type Timings struct {
	Total   time.Duration `json:"total"`
	Facets  time.Duration `json:"facets"`
	Search  time.Duration `json:"search"`
	Sorting time.Duration `json:"sorting"`
}

// SearchResult is the response to a search.
type SearchResult struct {
	Items            []Item             `json:"items"`
	AllFilteredItems []Item             `json:"all_filtered_items,omitempty"`
	Aggregations     AggregationResults `json:"aggregations"`
	Pagination       Pagination         `json:"pagination"`
	Timings          Timings            `json:"timings"`
}

// Search runs a faceted search.
//
// The result set is built in this order:
//  1. A restricting id list from InternalIDs, else IDs, else the full-text
//     collaborator when Query or Filter is set
//  2. The filter matrix over Filters and NotFilters, then FiltersQuery, gives
//     the temp index; its buckets are cut to the restricting ids
//  3. Final ids: the restricting ids (or every id), intersected with the
//     union of the selected values' temp buckets (every temp bucket when
//     FiltersQuery is set), minus every NotFilters value's base bucket
//  4. Sorted and paginated; without sorting, explicit and full-text ids keep
//     their order
//
// Facet buckets are computed from the temp index, so they reflect the text
// restriction but not NotFilters on the final ids.
//
// Returns a *UsageError for Query or Filter when full-text search is
// disabled, a *ConfigurationError for unknown aggregations or sortings, and a
// *DataError for malformed filter queries or unindexed fields.
func (e *Engine) Search(opts SearchOptions) (*SearchResult, error) {
	res, err := e.search(e.snap.Load(), e.cfg, &opts, sanitize(opts.PerPage, DefaultPerPage))
	e.opts.logger.LogSearch(res, err)
	return res, err
}

func (e *Engine) search(snap *snapshot, cfg *Config, opts *SearchOptions, perPage int) (*SearchResult, error) {
	start := time.Now()
	page := sanitize(opts.Page, 1)
	res := &SearchResult{Pagination: Pagination{Page: page, PerPage: perPage}}

	if !cfg.nativeSearch() && (opts.Query != "" || opts.Filter != nil) {
		return nil, usageErrorf(`"query" and "filter" options are not working once native search is disabled`)
	}

	sorting, err := resolveSorting(cfg, opts)
	if err != nil {
		return nil, err
	}

	var ordered []uint32
	restricted := true
	switch {
	case opts.InternalIDs != nil:
		ordered = opts.InternalIDs
	case opts.IDs != nil:
		ordered = snap.internalIDs(opts.IDs)
	case snap.fullText != nil && (opts.Query != "" || opts.Filter != nil):
		searchStart := time.Now()
		ordered, err = snap.fullText.Search(opts.Query, opts.Filter)
		res.Timings.Search = time.Since(searchStart)
		if err != nil {
			return nil, err
		}
	default:
		restricted = false
	}
	var queryIDs *BitSet
	if restricted {
		queryIDs = NewBitSet(ordered...)
	}

	facetsStart := time.Now()
	notFilters := mergeSelections(opts.NotFilters, opts.ExcludeFilters)
	filters, err := FiltersFromSelection(opts.Filters, notFilters, cfg.Aggregations)
	if err != nil {
		return nil, err
	}
	temp, err := Matrix(snap.index, filters)
	if err != nil {
		return nil, err
	}
	if opts.FiltersQuery != "" {
		groups, err := ParseBooleanQuery(opts.FiltersQuery)
		if err != nil {
			return nil, err
		}
		if temp, err = FiltersMatrix(temp, groups); err != nil {
			return nil, err
		}
	}
	if queryIDs != nil {
		temp.apply(func(_ string, bs *BitSet) *BitSet {
			return queryIDs.Intersection(bs)
		})
	}

	var facetIDs *BitSet
	if opts.FiltersQuery != "" {
		facetIDs = AllIDs(temp)
	} else {
		facetIDs = SelectedIDs(temp, opts.Filters)
	}
	notIDs := ExcludedIDs(snap.index, notFilters)
	res.Timings.Facets = time.Since(facetsStart)

	final := snap.index.IDs()
	if queryIDs != nil {
		final = queryIDs
	}
	if facetIDs != nil {
		final = final.Intersection(facetIDs)
	}
	if notIDs != nil {
		final = final.Difference(notIDs)
	}

	sortStart := time.Now()
	var matched []uint32
	if sorting == nil && restricted {
		matched = orderedMembers(ordered, final)
	} else {
		matched = final.ToArray()
	}
	res.Pagination.Total = len(matched)

	if sorting != nil {
		all := sortItems(snap.materialize(matched), *sorting)
		res.Items = paginate(all, page, perPage)
		if opts.IsAllFilteredItems {
			res.AllFilteredItems = all
		}
	} else {
		res.Items = snap.materialize(paginate(matched, page, perPage))
		if opts.IsAllFilteredItems {
			res.AllFilteredItems = snap.materialize(matched)
		}
	}
	res.Timings.Sorting = time.Since(sortStart)

	res.Aggregations, err = Aggregate(temp, opts.Filters, cfg.Aggregations)
	if err != nil {
		return nil, err
	}
	res.Timings.Total = time.Since(start)
	return res, nil
}

// orderedMembers keeps the ids of ordered that are in set, in order and
// without repeats.
func orderedMembers(ordered []uint32, set *BitSet) []uint32 {
	out := make([]uint32, 0, len(ordered))
	seen := make(map[uint32]struct{}, len(ordered))
	for _, id := range ordered {
		if _, dup := seen[id]; dup || !set.Has(id) {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// mergeSelections returns base with the fields of override replacing its
// own.
func mergeSelections(base, override Selection) Selection {
	if len(override) == 0 {
		return base
	}
	out := make(Selection, len(base)+len(override))
	for f, v := range base {
		out[f] = v
	}
	for f, v := range override {
		out[f] = v
	}
	return out
}
