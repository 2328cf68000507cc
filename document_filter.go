package facet

import (
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// DocumentFilter restricts full-text candidates to a set of item ids.
// A nil *DocumentFilter admits every id.
type DocumentFilter struct {
	bitmap *roaring.Bitmap
}

var documentFilterPool = sync.Pool{
	New: func() interface{} {
		return &DocumentFilter{bitmap: roaring.New()}
	},
}

// NewDocumentFilter returns a pooled filter admitting exactly ids, or nil
// when ids is empty. Release it with ReturnDocumentFilter.
func NewDocumentFilter(ids []uint32) *DocumentFilter {
	if len(ids) == 0 {
		return nil
	}
	filter := documentFilterPool.Get().(*DocumentFilter)
	filter.bitmap.Clear()
	filter.bitmap.AddMany(ids)
	return filter
}

// ReturnDocumentFilter puts a filter back into the pool. The filter must
// not be used afterwards.
func ReturnDocumentFilter(filter *DocumentFilter) {
	if filter != nil {
		documentFilterPool.Put(filter)
	}
}

// ShouldSkip reports whether id is outside the filter.
func (f *DocumentFilter) ShouldSkip(id uint32) bool {
	if f == nil {
		return false
	}
	return !f.bitmap.Contains(id)
}

// Count returns the number of admitted ids, or 0 for a nil filter.
func (f *DocumentFilter) Count() uint64 {
	if f == nil {
		return 0
	}
	return f.bitmap.GetCardinality()
}
