package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thistlearc/parsegen/grammar"
	"github.com/thistlearc/parsegen/types"
)

const streamTestGrammarSrc = `
%start E
%grammar_type "ll(1)"
%line_comment "//"
%%
E : T EP ;
EP : "+" T EP | ;
T : id ;
`

func Test_Stream_ConsumesTokensInOrder(t *testing.T) {
	assert := assert.New(t)

	g, meta, err := grammar.Load(streamTestGrammarSrc)
	assert.NoError(err)

	s, err := New(g, meta, "id + id")
	assert.NoError(err)

	first, err := s.Consume()
	assert.NoError(err)
	assert.Equal("id", first.Class().ID())
	assert.Equal("id", first.Lexeme())

	second, err := s.Consume()
	assert.NoError(err)
	assert.Equal("+", second.Class().ID())

	third, err := s.Consume()
	assert.NoError(err)
	assert.Equal("id", third.Class().ID())

	fourth, err := s.Consume()
	assert.NoError(err)
	assert.Equal(types.TokenEndOfText.ID(), fourth.Class().ID())
}

func Test_Stream_LookaheadDoesNotConsume(t *testing.T) {
	assert := assert.New(t)

	g, meta, err := grammar.Load(streamTestGrammarSrc)
	assert.NoError(err)

	s, err := New(g, meta, "id")
	assert.NoError(err)

	peek, err := s.Lookahead(0)
	assert.NoError(err)
	assert.Equal("id", peek.Class().ID())

	consumed, err := s.Consume()
	assert.NoError(err)
	assert.Equal(peek.Lexeme(), consumed.Lexeme())
}

func Test_Stream_DrainComments(t *testing.T) {
	assert := assert.New(t)

	g, meta, err := grammar.Load(streamTestGrammarSrc)
	assert.NoError(err)

	s, err := New(g, meta, "id // trailing note\n+ id")
	assert.NoError(err)

	_, err = s.Consume()
	assert.NoError(err)
	// The comment sits between "id" and "+": scanning ahead for the next
	// consumable token passes over it, buffering it in s.comments.
	_, err = s.Consume()
	assert.NoError(err)

	comments, err := s.DrainComments()
	assert.NoError(err)
	assert.Len(comments, 1)
}
