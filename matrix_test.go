package facet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nineRowIndex(tb testing.TB) *FacetIndex {
	rows := [][3]int{
		{1, 2, 3}, {1, 3, 3}, {2, 3, 3},
		{1, 2, 3}, {2, 3, 3}, {1, 2, 3},
		{1, 3, 3}, {2, 3, 3}, {2, 2, 3},
	}
	items := make([]Item, len(rows))
	for i, r := range rows {
		items[i] = Item{"a": r[0], "b": r[1], "c": r[2], "d": 3}
	}
	return buildIndex(tb, items, []string{"a", "b", "c"})
}

func threeRowIndex(tb testing.TB) *FacetIndex {
	return buildIndex(tb, []Item{
		{"a": 1, "b": 1, "c": 3},
		{"a": 2, "b": 2, "c": 3},
		{"a": 3, "b": 3, "c": 3},
	}, []string{"a", "b", "c"})
}

// buckets flattens a temp index to "field.value" -> ids.
func buckets(idx *FacetIndex) map[string][]uint32 {
	out := make(map[string][]uint32)
	for _, f := range idx.Fields() {
		for _, v := range idx.Values(f) {
			out[f+"."+v] = idx.Bits(f, v).ToArray()
		}
	}
	return out
}

func TestMatrix(t *testing.T) {
	all := []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9}

	tests := []struct {
		name    string
		idx     *FacetIndex
		filters []Filter
		want    map[string][]uint32
	}{
		{
			name: "no filters",
			idx:  nineRowIndex(t),
			want: map[string][]uint32{
				"a.1": {1, 2, 4, 6, 7}, "a.2": {3, 5, 8, 9},
				"b.2": {1, 4, 6, 9}, "b.3": {2, 3, 5, 7, 8},
				"c.3": all,
			},
		},
		{
			name:    "conjunctive value",
			idx:     nineRowIndex(t),
			filters: []Filter{Eq("a", "2")},
			want: map[string][]uint32{
				"a.1": {}, "a.2": {3, 5, 8, 9},
				"b.2": {9}, "b.3": {3, 5, 8},
				"c.3": {3, 5, 8, 9},
			},
		},
		{
			name:    "missing value empties the conjunction",
			idx:     nineRowIndex(t),
			filters: []Filter{Eq("a", "2"), Eq("c", "2")},
			want: map[string][]uint32{
				"a.1": {}, "a.2": {},
				"b.2": {}, "b.3": {},
				"c.3": {},
			},
		},
		{
			name:    "single missing value empties everything",
			idx:     nineRowIndex(t),
			filters: []Filter{Eq("a", "10")},
			want: map[string][]uint32{
				"a.1": {}, "a.2": {},
				"b.2": {}, "b.3": {},
				"c.3": {},
			},
		},
		{
			name:    "disjunctive group over one field",
			idx:     nineRowIndex(t),
			filters: []Filter{AnyOf("a", "1", "2")},
			want: map[string][]uint32{
				"a.1": {1, 2, 4, 6, 7}, "a.2": {3, 5, 8, 9},
				"b.2": {1, 4, 6, 9}, "b.3": {2, 3, 5, 7, 8},
				"c.3": all,
			},
		},
		{
			name:    "disjunctive groups over three fields",
			idx:     nineRowIndex(t),
			filters: []Filter{AnyOf("a", "1"), AnyOf("b", "2"), AnyOf("c", "3")},
			want: map[string][]uint32{
				"a.1": {1, 4, 6}, "a.2": {9},
				"b.2": {1, 4, 6}, "b.3": {2, 7},
				"c.3": {1, 4, 6},
			},
		},
		{
			name:    "disjunctive keeps own counts",
			idx:     threeRowIndex(t),
			filters: []Filter{AnyOf("a", "1", "2")},
			want: map[string][]uint32{
				"a.1": {1}, "a.2": {2}, "a.3": {3},
				"b.1": {1}, "b.2": {2}, "b.3": {},
				"c.3": {1, 2},
			},
		},
		{
			name:    "negative value",
			idx:     threeRowIndex(t),
			filters: []Filter{Not("a", "1")},
			want: map[string][]uint32{
				"a.1": {}, "a.2": {2}, "a.3": {3},
				"b.1": {}, "b.2": {2}, "b.3": {3},
				"c.3": {2, 3},
			},
		},
		{
			name:    "negative values accumulate",
			idx:     threeRowIndex(t),
			filters: []Filter{Not("a", "1"), Not("b", "2")},
			want: map[string][]uint32{
				"a.1": {}, "a.2": {}, "a.3": {3},
				"b.1": {}, "b.2": {}, "b.3": {3},
				"c.3": {3},
			},
		},
		{
			name:    "negative missing value excludes nothing",
			idx:     threeRowIndex(t),
			filters: []Filter{Not("a", "42")},
			want: map[string][]uint32{
				"a.1": {1}, "a.2": {2}, "a.3": {3},
				"b.1": {1}, "b.2": {2}, "b.3": {3},
				"c.3": {1, 2, 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			temp, err := Matrix(tt.idx, tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.want, buckets(temp))
		})
	}
}

func TestMatrixTagScenario(t *testing.T) {
	idx := buildIndex(t, tagItems(), []string{"tags", "actors", "category"})

	temp, err := Matrix(idx, []Filter{Eq("tags", "c")})
	require.NoError(t, err)

	assert.Equal(t, []uint32{1, 3, 4}, temp.Bits("tags", "a").ToArray())
	assert.Equal(t, []uint32{}, temp.Bits("tags", "e").ToArray())
	assert.Equal(t, []uint32{1}, temp.Bits("actors", "john").ToArray())
	assert.Equal(t, []uint32{3}, temp.Bits("category", "comedy").ToArray())
	assert.Equal(t, []uint32{1, 3, 4}, SelectedIDs(temp, Selection{"tags": {"c"}}).ToArray())
}

func TestMatrixDoesNotMutateBase(t *testing.T) {
	idx := nineRowIndex(t)
	before := buckets(idx)

	for i := 0; i < 2; i++ {
		_, err := Matrix(idx, []Filter{Eq("a", "2"), Not("b", "3"), AnyOf("c", "3")})
		require.NoError(t, err)
		_, err = FiltersMatrix(idx, []ClauseGroup{{{Field: "a", Value: "1"}}})
		require.NoError(t, err)
	}
	assert.Equal(t, before, buckets(idx))
}

func TestMatrixIdempotentConjunction(t *testing.T) {
	idx := nineRowIndex(t)
	once, err := Matrix(idx, []Filter{Eq("b", "3")})
	require.NoError(t, err)
	twice, err := Matrix(idx, []Filter{Eq("b", "3"), Eq("b", "3")})
	require.NoError(t, err)
	assert.Equal(t, buckets(once), buckets(twice))
}

func TestMatrixUnknownField(t *testing.T) {
	idx := nineRowIndex(t)

	_, err := Matrix(idx, []Filter{Eq("e", "10")})
	assert.ErrorIs(t, err, ErrData)

	_, err = Matrix(idx, []Filter{Not("e", "10")})
	assert.ErrorIs(t, err, ErrData)

	_, err = FiltersMatrix(idx, []ClauseGroup{{{Field: "e", Value: "10"}}})
	var dataErr *DataError
	require.ErrorAs(t, err, &dataErr)
	assert.Contains(t, dataErr.Error(), "does not exist in facets lists")
}

func TestFiltersMatrix(t *testing.T) {
	all := []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	empty := map[string][]uint32{"a.1": {}, "a.2": {}, "b.2": {}, "b.3": {}, "c.3": {}}

	tests := []struct {
		name    string
		query   string
		want    map[string][]uint32
		wantIDs []uint32
	}{
		{
			name:  "no query",
			query: "",
			want: map[string][]uint32{
				"a.1": {1, 2, 4, 6, 7}, "a.2": {3, 5, 8, 9},
				"b.2": {1, 4, 6, 9}, "b.3": {2, 3, 5, 7, 8},
				"c.3": all,
			},
			wantIDs: all,
		},
		{
			name:  "one value",
			query: "(a:2)",
			want: map[string][]uint32{
				"a.1": {}, "a.2": {3, 5, 8, 9},
				"b.2": {9}, "b.3": {3, 5, 8},
				"c.3": {3, 5, 8, 9},
			},
			wantIDs: []uint32{3, 5, 8, 9},
		},
		{
			name:  "OR returning all rows",
			query: "(a:2) OR c:3",
			want: map[string][]uint32{
				"a.1": {1, 2, 4, 6, 7}, "a.2": {3, 5, 8, 9},
				"b.2": {1, 4, 6, 9}, "b.3": {2, 3, 5, 7, 8},
				"c.3": all,
			},
			wantIDs: all,
		},
		{name: "AND without result", query: "a:2 AND a:1", want: empty, wantIDs: []uint32{}},
		{name: "AND with missing value", query: "a:2 AND a:10", want: empty, wantIDs: []uint32{}},
		{name: "missing value", query: "a:10", want: empty, wantIDs: []uint32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups, err := ParseBooleanQuery(tt.query)
			require.NoError(t, err)
			temp, err := FiltersMatrix(nineRowIndex(t), groups)
			require.NoError(t, err)
			assert.Equal(t, tt.want, buckets(temp))
			assert.Equal(t, tt.wantIDs, AllIDs(temp).ToArray())
		})
	}
}

func TestFiltersFromSelection(t *testing.T) {
	aggs := NewConfig().
		WithAggregation("tags", &Aggregation{Conjunction: Bool(false)}).
		WithAggregation("category", nil).
		WithAggregation("genre", &Aggregation{Conjunction: Bool(true)}).
		Aggregations

	tests := []struct {
		name       string
		filters    Selection
		notFilters Selection
		want       []Filter
	}{
		{
			name:    "conjunction",
			filters: Selection{"genre": {"novel", "90s"}},
			want:    []Filter{Eq("genre", "novel"), Eq("genre", "90s")},
		},
		{
			name:    "disjunction",
			filters: Selection{"tags": {"novel", "90s"}},
			want:    []Filter{AnyOf("tags", "novel", "90s")},
		},
		{
			name:    "conjunction and disjunction",
			filters: Selection{"tags": {"novel"}, "category": {"Western"}},
			want:    []Filter{AnyOf("tags", "novel"), Eq("category", "Western")},
		},
		{
			name:       "negative filters last",
			filters:    Selection{"tags": {"novel"}, "category": {"Western"}},
			notFilters: Selection{"tags": {"80s"}},
			want:       []Filter{AnyOf("tags", "novel"), Eq("category", "Western"), Not("tags", "80s")},
		},
		{
			name:    "empty selection is skipped",
			filters: Selection{"tags": {}},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FiltersFromSelection(tt.filters, tt.notFilters, aggs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := FiltersFromSelection(Selection{"unknown": {"x"}}, nil, aggs)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = FiltersFromSelection(nil, Selection{"unknown": {"x"}}, aggs)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, `aggregation "unknown" not defined in config`, cfgErr.Msg)

	got, err := FiltersFromSelection(nil, Selection{"unknown": {}}, aggs)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelectedAndExcludedIDs(t *testing.T) {
	idx := nineRowIndex(t)
	assert.Nil(t, SelectedIDs(idx, nil))
	assert.Nil(t, SelectedIDs(idx, Selection{"a": {}}))
	assert.Equal(t, []uint32{1, 2, 4, 6, 7, 9}, SelectedIDs(idx, Selection{"a": {"1"}, "b": {"2"}}).ToArray())
	assert.Equal(t, []uint32{}, SelectedIDs(idx, Selection{"a": {"10"}}).ToArray())
	assert.Equal(t, []uint32{3, 5, 8, 9}, ExcludedIDs(idx, Selection{"a": {"2"}}).ToArray())
}

func BenchmarkMatrix(b *testing.B) {
	items := make([]Item, 50000)
	for i := range items {
		items[i] = Item{"a": i % 7, "b": i % 13, "c": []any{i % 3, i % 5}}
	}
	idx := buildIndex(b, items, []string{"a", "b", "c"})
	filters := []Filter{Eq("a", "3"), AnyOf("b", "1", "2", "3"), Not("c", "4")}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Matrix(idx, filters); err != nil {
			b.Fatal(err)
		}
	}
}
