package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_TreeBuilder_BuildsNestedTree(t *testing.T) {
	assert := assert.New(t)

	b := NewTreeBuilder()
	class := NewTokenClass("id", "identifier")
	tok := NewToken(class, "x", 1, 1, "x", 0)

	b.OpenNonTerminal("E", 1)
	b.OpenNonTerminal("T", 1)
	b.AddToken(tok)
	b.CloseNonTerminal(3)
	b.CloseNonTerminal(7)

	root := b.Build()
	assert.NotNil(root)
	assert.Equal("E", root.Value)
	assert.Equal(7, root.Production)
	assert.Len(root.Children, 1)

	child := root.Children[0]
	assert.Equal("T", child.Value)
	assert.Equal(3, child.Production)
	assert.Len(child.Children, 1)

	leaf := child.Children[0]
	assert.True(leaf.Terminal)
	assert.Equal("id", leaf.Value)
	assert.Equal(-1, leaf.Production)
}
