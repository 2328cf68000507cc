package facet

import (
	"github.com/RoaringBitmap/roaring"
)

// BitSet is an immutable-by-convention set of document ids backed by a
// roaring bitmap.
//
// The algebra methods (Union, Intersection, Difference) never modify their
// operands; each returns a freshly allocated set. A nil *BitSet behaves as
// the empty set everywhere, which lets callers keep "absent" buckets as nil.
//
// Thread-safety: a BitSet may be read concurrently. Nothing in this package
// mutates a BitSet after it has been published in a FacetIndex.
type BitSet struct {
	bm *roaring.Bitmap
}

// NewBitSet creates a set holding the given ids. Duplicates are collapsed.
//
// Example:
//
//	bs := NewBitSet(1, 3, 4)
//	bs.Has(3) // true
func NewBitSet(ids ...uint32) *BitSet {
	return &BitSet{bm: roaring.BitmapOf(ids...)}
}

func newBitSetFrom(bm *roaring.Bitmap) *BitSet {
	return &BitSet{bm: bm}
}

func (b *BitSet) bitmap() *roaring.Bitmap {
	if b == nil || b.bm == nil {
		return roaring.New()
	}
	return b.bm
}

// Union returns b ∪ other.
func (b *BitSet) Union(other *BitSet) *BitSet {
	return newBitSetFrom(roaring.Or(b.bitmap(), other.bitmap()))
}

// Intersection returns b ∩ other.
func (b *BitSet) Intersection(other *BitSet) *BitSet {
	return newBitSetFrom(roaring.And(b.bitmap(), other.bitmap()))
}

// Difference returns b − other.
func (b *BitSet) Difference(other *BitSet) *BitSet {
	return newBitSetFrom(roaring.AndNot(b.bitmap(), other.bitmap()))
}

// Has reports whether id is a member of the set.
func (b *BitSet) Has(id uint32) bool {
	if b == nil || b.bm == nil {
		return false
	}
	return b.bm.Contains(id)
}

// Size returns the cardinality of the set.
func (b *BitSet) Size() int {
	if b == nil || b.bm == nil {
		return 0
	}
	return int(b.bm.GetCardinality())
}

// IsEmpty reports whether the set has no members.
func (b *BitSet) IsEmpty() bool {
	return b.Size() == 0
}

// Clone returns an independent copy of the set.
func (b *BitSet) Clone() *BitSet {
	return newBitSetFrom(b.bitmap().Clone())
}

// ToArray returns the members in ascending order.
func (b *BitSet) ToArray() []uint32 {
	if b == nil || b.bm == nil {
		return []uint32{}
	}
	return b.bm.ToArray()
}

// Equals reports whether both sets hold exactly the same ids.
func (b *BitSet) Equals(other *BitSet) bool {
	return b.bitmap().Equals(other.bitmap())
}

// UnionAll returns the union of every given set. With no arguments it
// returns the empty set.
func UnionAll(sets ...*BitSet) *BitSet {
	bms := make([]*roaring.Bitmap, 0, len(sets))
	for _, s := range sets {
		if s == nil || s.bm == nil {
			continue
		}
		bms = append(bms, s.bm)
	}
	if len(bms) == 0 {
		return NewBitSet()
	}
	return newBitSetFrom(roaring.FastOr(bms...))
}
