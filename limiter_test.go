package facet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageBounds(t *testing.T) {
	tests := []struct {
		name                 string
		page, perPage, total int
		start, end           int
	}{
		{name: "first page", page: 1, perPage: 12, total: 30, start: 0, end: 12},
		{name: "last partial page", page: 3, perPage: 12, total: 30, start: 24, end: 30},
		{name: "past the end", page: 4, perPage: 12, total: 30, start: 30, end: 30},
		{name: "page below one", page: 0, perPage: 5, total: 30, start: 0, end: 5},
		{name: "zero per page", page: 1, perPage: 0, total: 30, start: 0, end: 0},
		{name: "empty", page: 1, perPage: 10, total: 0, start: 0, end: 0},
		{name: "exact last page", page: 3, perPage: 10, total: 30, start: 20, end: 30},
		{name: "first page past exact end", page: 4, perPage: 10, total: 30, start: 30, end: 30},
		{name: "huge page", page: math.MaxInt, perPage: 12, total: 30, start: 30, end: 30},
		{name: "page that overflows the offset", page: math.MaxInt/12 + 2, perPage: 12, total: 30, start: 30, end: 30},
		{name: "huge per page", page: 1, perPage: math.MaxInt, total: 30, start: 0, end: 30},
		{name: "huge per page second page", page: 2, perPage: math.MaxInt, total: 30, start: 30, end: 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := pageBounds(tt.page, tt.perPage, tt.total)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestPaginate(t *testing.T) {
	entries := []string{"a", "b", "c", "d", "e"}
	assert.Equal(t, []string{"c", "d"}, paginate(entries, 2, 2))
	assert.Equal(t, []string{"e"}, paginate(entries, 3, 2))
	assert.Empty(t, paginate(entries, 4, 2))
	assert.Empty(t, paginate(entries, 1, 0))
	assert.Empty(t, paginate(entries, math.MaxInt/2+1, 3))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, 12, sanitize(0, 12))
	assert.Equal(t, 12, sanitize(-3, 12))
	assert.Equal(t, 5, sanitize(5, 12))
}
