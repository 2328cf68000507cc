package facet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitSetAlgebra(t *testing.T) {
	a := NewBitSet(1, 2, 3, 5)
	b := NewBitSet(2, 5, 8)

	tests := []struct {
		name string
		got  *BitSet
		want []uint32
	}{
		{name: "union", got: a.Union(b), want: []uint32{1, 2, 3, 5, 8}},
		{name: "intersection", got: a.Intersection(b), want: []uint32{2, 5}},
		{name: "difference", got: a.Difference(b), want: []uint32{1, 3}},
		{name: "union with empty", got: a.Union(NewBitSet()), want: []uint32{1, 2, 3, 5}},
		{name: "intersection with empty", got: a.Intersection(NewBitSet()), want: []uint32{}},
		{name: "nil operand", got: a.Union(nil), want: []uint32{1, 2, 3, 5}},
		{name: "nil receiver", got: (*BitSet)(nil).Union(b), want: []uint32{2, 5, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got.ToArray())
		})
	}

	// operands are untouched
	assert.Equal(t, []uint32{1, 2, 3, 5}, a.ToArray())
	assert.Equal(t, []uint32{2, 5, 8}, b.ToArray())
}

func TestBitSetMembership(t *testing.T) {
	bs := NewBitSet(4, 1, 4, 9)

	assert.Equal(t, []uint32{1, 4, 9}, bs.ToArray())
	assert.Equal(t, 3, bs.Size())
	assert.True(t, bs.Has(4))
	assert.False(t, bs.Has(2))
	assert.False(t, bs.IsEmpty())

	var empty *BitSet
	assert.True(t, empty.IsEmpty())
	assert.False(t, empty.Has(1))
	assert.Equal(t, []uint32{}, empty.ToArray())
}

func TestBitSetClone(t *testing.T) {
	bs := NewBitSet(1, 2)
	c := bs.Clone()
	assert.True(t, bs.Equals(c))

	c.bm.Add(3)
	assert.False(t, bs.Has(3))
	assert.False(t, bs.Equals(c))
}

func TestUnionAll(t *testing.T) {
	assert.Equal(t, []uint32{}, UnionAll().ToArray())
	assert.Equal(t, []uint32{1, 2, 7}, UnionAll(NewBitSet(1), nil, NewBitSet(2, 7), NewBitSet()).ToArray())
}

func BenchmarkBitSetIntersection(b *testing.B) {
	ids := make([]uint32, 0, 100000)
	for i := uint32(1); i <= 100000; i++ {
		ids = append(ids, i)
	}
	x := NewBitSet(ids...)
	y := NewBitSet(ids[:50000]...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = x.Intersection(y)
	}
}
