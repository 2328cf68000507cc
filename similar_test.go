package facet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func similarIDs(res *SimilarResult) ([]string, []int) {
	ids := make([]string, len(res.Items))
	shared := make([]int, len(res.Items))
	for i, it := range res.Items {
		ids[i] = it.Item["id"].(string)
		shared[i] = it.IntersectionLength
	}
	return ids, shared
}

func TestSimilar(t *testing.T) {
	e := newMovieEngine(t, movieConfig())

	tests := []struct {
		name       string
		id         any
		opts       SimilarOptions
		wantIDs    []string
		wantShared []int
		wantTotal  int
	}{
		{
			name:       "by tags",
			id:         "m1",
			opts:       SimilarOptions{Field: "tags"},
			wantIDs:    []string{"m3", "m4", "m2"},
			wantShared: []int{2, 2, 1},
			wantTotal:  3,
		},
		{
			name:       "minimum",
			id:         "m1",
			opts:       SimilarOptions{Field: "tags", Minimum: 2},
			wantIDs:    []string{"m3", "m4"},
			wantShared: []int{2, 2},
			wantTotal:  2,
		},
		{
			name:       "paged",
			id:         "m1",
			opts:       SimilarOptions{Field: "tags", Page: 2, PerPage: 1},
			wantIDs:    []string{"m4"},
			wantShared: []int{2},
			wantTotal:  3,
		},
		{
			name:       "scalar field",
			id:         "m2",
			opts:       SimilarOptions{Field: "category", Minimum: 1},
			wantIDs:    []string{"m3"},
			wantShared: []int{1},
			wantTotal:  1,
		},
		{
			name:       "field the item lacks",
			id:         "m2",
			opts:       SimilarOptions{Field: "director"},
			wantIDs:    []string{"m1", "m3", "m4"},
			wantShared: []int{0, 0, 0},
			wantTotal:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Similar(tt.id, tt.opts)
			require.NoError(t, err)
			ids, shared := similarIDs(res)
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantShared, shared)
			assert.Equal(t, tt.wantTotal, res.Pagination.Total)
		})
	}
}

func TestSimilarErrors(t *testing.T) {
	e := newMovieEngine(t, movieConfig())

	_, err := e.Similar("m1", SimilarOptions{})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = e.Similar("m42", SimilarOptions{Field: "tags"})
	var usage *UsageError
	require.ErrorAs(t, err, &usage)
	assert.Equal(t, "item m42 not found", usage.Msg)

	_, err = e.Similar(nil, SimilarOptions{Field: "tags"})
	assert.ErrorIs(t, err, ErrUsage)
}
