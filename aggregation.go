package facet

// AggregationOptions lists the buckets of one facet.
type AggregationOptions struct {
	// Name of the configured aggregation. Required.
	Name string
	// Prefix keeps only bucket keys starting with it.
	Prefix string

	// Query, Filter, Filters, NotFilters and FiltersQuery narrow the items
	// counted, as in SearchOptions.
	Query        string
	Filter       func(Item) bool
	Filters      Selection
	NotFilters   Selection
	FiltersQuery string

	// Page is 1-based; PerPage defaults to 10.
	Page    int
	PerPage int
}

// AggregationListing is one page of a facet's buckets.
type AggregationListing struct {
	Buckets    []Bucket   `json:"buckets"`
	Pagination Pagination `json:"pagination"`
}

// Aggregation lists the buckets of a single facet, for autocompletion or
// "show all values" panels.
//
// The facet is computed by a search that returns no items and lifts the
// facet's bucket size to 10000 for this call only. Buckets keep the
// facet's configured sort order and are then filtered by Prefix and paged.
//
// Returns a *ConfigurationError when Name is empty or not configured.
//
// Example:
//
//	page, err := engine.Aggregation(AggregationOptions{Name: "tags", Prefix: "nov", PerPage: 20})
func (e *Engine) Aggregation(opts AggregationOptions) (*AggregationListing, error) {
	listing, err := e.aggregation(opts)
	n := 0
	if listing != nil {
		n = len(listing.Buckets)
	}
	e.opts.logger.LogAggregation(opts.Name, n, err)
	return listing, err
}

func (e *Engine) aggregation(opts AggregationOptions) (*AggregationListing, error) {
	if opts.Name == "" {
		return nil, configErrorf("aggregation name is required")
	}
	if _, ok := lookupAggregation(e.cfg.Aggregations, opts.Name); !ok {
		return nil, configErrorf("aggregation %q not defined in config", opts.Name)
	}

	snap := e.snap.Load()
	cfg := e.cfg.withAggregationSize(opts.Name, aggregationListingSize)
	res, err := e.search(snap, cfg, &SearchOptions{
		Query:        opts.Query,
		Filter:       opts.Filter,
		Filters:      opts.Filters,
		NotFilters:   opts.NotFilters,
		FiltersQuery: opts.FiltersQuery,
		Page:         1,
	}, 0)
	if err != nil {
		return nil, err
	}

	agg, ok := res.Aggregations.Get(opts.Name)
	if !ok {
		return nil, configErrorf("aggregation %q not defined in config", opts.Name)
	}
	buckets := agg.Buckets

	if opts.Prefix != "" {
		keys, err := snap.index.ValuesWithPrefix(opts.Name, opts.Prefix)
		if err != nil {
			return nil, err
		}
		allowed := make(map[string]struct{}, len(keys))
		for _, k := range keys {
			allowed[k] = struct{}{}
		}
		filtered := make([]Bucket, 0, len(keys))
		for _, b := range buckets {
			if _, ok := allowed[b.Key]; ok {
				filtered = append(filtered, b)
			}
		}
		buckets = filtered
	}

	page := sanitize(opts.Page, 1)
	perPage := sanitize(opts.PerPage, DefaultBucketsPerPage)
	return &AggregationListing{
		Buckets:    paginate(buckets, page, perPage),
		Pagination: Pagination{Page: page, PerPage: perPage, Total: len(buckets)},
	}, nil
}
