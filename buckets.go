package facet

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Bucket is one facet value with the number of matching items.
type Bucket struct {
	Key      string `json:"key"`
	DocCount int    `json:"doc_count"`
	Selected bool   `json:"selected"`
}

// FacetStats summarizes the numeric keys of a facet, each key counted once
// per matching item.
type FacetStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	Sum float64 `json:"sum"`
}

// AggregationResult holds the buckets of one facet.
type AggregationResult struct {
	Name       string      `json:"name"`
	Title      string      `json:"title"`
	Position   int         `json:"position"`
	Buckets    []Bucket    `json:"buckets"`
	FacetStats *FacetStats `json:"facet_stats,omitempty"`
}

// AggregationResults lists facet results in configuration order.
type AggregationResults []AggregationResult

// Get returns the result for the named facet.
func (r AggregationResults) Get(name string) (*AggregationResult, bool) {
	for i := range r {
		if r[i].Name == name {
			return &r[i], true
		}
	}
	return nil, false
}

// Aggregate turns a temp index into sorted, truncated facet buckets.
//
// For every indexed field, in index order:
//   - doc_count is the size of the value's temp bucket, and a bucket is
//     selected when its key is in selected[field]
//   - with HideZeroDocCount, empty buckets are dropped unless selected
//   - buckets are sorted per the aggregation's Sort and Order (see
//     sortCriteria) and cut to its Size
//   - with ShowFacetStats, min/max/avg/sum are computed over the keys,
//     which must all be numeric
//
// Aggregations missing from aggs use the defaults.
func Aggregate(temp *FacetIndex, selected Selection, aggs *AggregationMap) (AggregationResults, error) {
	results := make(AggregationResults, 0, len(temp.Fields()))
	position := 1

	for _, field := range temp.Fields() {
		agg, _ := lookupAggregation(aggs, field)
		fi := temp.data[field]

		buckets := make([]Bucket, 0, len(fi.keys))
		for _, key := range fi.keys {
			count := fi.bits[key].Size()
			isSelected := selected.Has(field, key)
			if agg != nil && agg.HideZeroDocCount && count == 0 && !isSelected {
				continue
			}
			buckets = append(buckets, Bucket{Key: key, DocCount: count, Selected: isSelected})
		}

		sortBuckets(buckets, sortCriteria(agg))
		if size := agg.size(); len(buckets) > size {
			buckets = buckets[:size]
		}

		res := AggregationResult{
			Name:     field,
			Title:    humanize(field),
			Position: position,
			Buckets:  buckets,
		}
		position++
		if agg != nil && agg.Title != "" {
			res.Title = agg.Title
		}

		if agg != nil && agg.ShowFacetStats {
			stats, err := facetStats(fi)
			if err != nil {
				return nil, err
			}
			res.FacetStats = stats
		}
		results = append(results, res)
	}
	return results, nil
}

type sortKey struct {
	name string
	desc bool
}

// sortCriteria resolves an aggregation's Sort/Order into comparison keys.
//
//   - list form: the listed keys, each with the order at the same index
//     (ascending when missing); an empty list sorts by key
//   - "term"/"key": key, ascending unless Order says otherwise
//   - anything else: doc_count descending (or Order), then key ascending
//
// Outside the list form, selected buckets go first when
// ChosenFiltersOnTop is on.
func sortCriteria(agg *Aggregation) []sortKey {
	var sortBy, order Keys
	if agg != nil {
		sortBy, order = agg.Sort, agg.Order
	}

	if sortBy.List {
		names := sortBy.Values
		if len(names) == 0 {
			names = []string{"key"}
		}
		keys := make([]sortKey, len(names))
		for i, n := range names {
			keys[i] = sortKey{name: canonicalSortKey(n)}
			if i < len(order.Values) {
				keys[i].desc = order.Values[i] == "desc"
			}
		}
		return keys
	}

	var keys []sortKey
	switch canonicalSortKey(sortBy.first("")) {
	case "key":
		keys = []sortKey{{name: "key", desc: order.first("asc") == "desc"}}
	default:
		keys = []sortKey{
			{name: "doc_count", desc: order.first("desc") == "desc"},
			{name: "key"},
		}
	}
	if agg.chosenOnTop() {
		keys = append([]sortKey{{name: "selected", desc: true}}, keys...)
	}
	return keys
}

func canonicalSortKey(name string) string {
	switch name {
	case "term":
		return "key"
	case "count":
		return "doc_count"
	}
	return name
}

// sortBuckets sorts stably, so buckets equal on every key keep the order in
// which their values were first indexed.
func sortBuckets(buckets []Bucket, keys []sortKey) {
	sort.SliceStable(buckets, func(i, j int) bool {
		a, b := buckets[i], buckets[j]
		for _, k := range keys {
			c := compareBuckets(a, b, k.name)
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compareBuckets(a, b Bucket, key string) int {
	switch key {
	case "key":
		return strings.Compare(a.Key, b.Key)
	case "doc_count":
		return a.DocCount - b.DocCount
	case "selected":
		return boolRank(a.Selected) - boolRank(b.Selected)
	}
	return 0
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// facetStats computes statistics over every key of the field, weighting each
// key by its doc_count. Keys are checked even when their bucket is empty.
func facetStats(fi *fieldIndex) (*FacetStats, error) {
	stats := &FacetStats{}
	n := 0
	for _, key := range fi.keys {
		v, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
		if err != nil {
			return nil, dataErrorf("cannot compute facet_stats on non-numeric values (%q)", key)
		}
		count := fi.bits[key].Size()
		if count == 0 {
			continue
		}
		if n == 0 || v < stats.Min {
			stats.Min = v
		}
		if n == 0 || v > stats.Max {
			stats.Max = v
		}
		stats.Sum += v * float64(count)
		n += count
	}
	if n > 0 {
		stats.Avg = stats.Sum / float64(n)
	}
	return stats, nil
}

var (
	edgeSeparators = regexp.MustCompile(`^[\s_]+|[\s_]+$`)
	innerSeparator = regexp.MustCompile(`[_\s]+`)
)

// humanize turns a field name into a title: "release_year " -> "Release year".
func humanize(s string) string {
	s = edgeSeparators.ReplaceAllString(s, "")
	s = innerSeparator.ReplaceAllString(s, " ")
	if s != "" && s[0] >= 'a' && s[0] <= 'z' {
		s = string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
