package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Stack_PushPop(t *testing.T) {
	assert := assert.New(t)

	s := Stack[string]{Of: []string{"$", "S"}}
	assert.Equal("S", s.Peek())

	s.Push("A")
	assert.Equal("A", s.Pop())
	assert.Equal(2, s.Len())
	assert.False(s.Empty())
}

func Test_Stack_Empty(t *testing.T) {
	assert := assert.New(t)

	var s Stack[int]
	assert.True(s.Empty())
	assert.Equal(0, s.Len())
}

func Test_Stack_Copy_isIndependent(t *testing.T) {
	assert := assert.New(t)

	s := Stack[string]{Of: []string{"a", "b"}}
	cp := s.Copy()
	cp.Push("c")

	assert.Equal(2, s.Len())
	assert.Equal(3, cp.Len())
}
