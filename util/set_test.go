package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_StringSet_UnionIntersectionDifference(t *testing.T) {
	assert := assert.New(t)

	a := StringSetOf([]string{"x", "y", "z"})
	b := StringSetOf([]string{"y", "z", "w"})

	assert.Equal([]string{"w", "x", "y", "z"}, a.Union(b).StringOrdered())
	assert.Equal([]string{"y", "z"}, a.Intersection(b).StringOrdered())
	assert.Equal([]string{"x"}, a.Difference(b).StringOrdered())
	assert.False(a.DisjointWith(b))

	c := StringSetOf([]string{"q"})
	assert.True(a.DisjointWith(c))
}

func Test_StringSet_EqualAndCopy(t *testing.T) {
	assert := assert.New(t)

	a := StringSetOf([]string{"a", "b"})
	cp := a.Copy()
	assert.True(a.Equal(cp))

	cp.Add("c")
	assert.False(a.Equal(cp))
}

func Test_KeySet_Generic(t *testing.T) {
	assert := assert.New(t)

	s := KeySetOf([]int{1, 2, 3})
	assert.True(s.Has(2))
	s.Remove(2)
	assert.False(s.Has(2))
	assert.Equal(2, s.Len())
}
