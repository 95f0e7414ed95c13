package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thistlearc/parsegen/grammar"
	"github.com/thistlearc/parsegen/types"
)

func Test_Lexer_LongestMatchWins(t *testing.T) {
	assert := assert.New(t)

	// "if" is declared before the identifier pattern; "iffy" must still
	// tokenize as one identifier, not a keyword followed by "fy".
	g, meta, err := grammar.Load(`
%start S
%%
S : "if" A ;
A : /[a-z]+/ ;
`)
	assert.NoError(err)

	s, err := New(g, meta, "iffy")
	assert.NoError(err)

	tok, err := s.Consume()
	assert.NoError(err)
	assert.Equal("[a-z]+", tok.Class().ID())
	assert.Equal("iffy", tok.Lexeme())
}

func Test_Lexer_EqualLengthTieBreaksByDeclarationOrder(t *testing.T) {
	assert := assert.New(t)

	g, meta, err := grammar.Load(`
%start S
%%
S : "if" A ;
A : /[a-z]+/ ;
`)
	assert.NoError(err)

	s, err := New(g, meta, "if")
	assert.NoError(err)

	tok, err := s.Consume()
	assert.NoError(err)
	assert.Equal("if", tok.Class().ID())
}

func Test_Lexer_LiteralPrefixPairMatchesLongest(t *testing.T) {
	assert := assert.New(t)

	// "<" and "<=" share a prefix inside the literal automaton; on "<="
	// the longer branch must win, and on a lone "<" the shorter one.
	g, meta, err := grammar.Load(`
%start S
%%
S : "<" A | "<=" A ;
A : id ;
`)
	assert.NoError(err)

	s, err := New(g, meta, "<= id")
	assert.NoError(err)

	tok, err := s.Consume()
	assert.NoError(err)
	assert.Equal("<=", tok.Class().ID())

	s, err = New(g, meta, "< id")
	assert.NoError(err)

	tok, err = s.Consume()
	assert.NoError(err)
	assert.Equal("<", tok.Class().ID())
}

func Test_Lexer_PanicModeSkipsUnmatchableInput(t *testing.T) {
	assert := assert.New(t)

	g, meta, err := grammar.Load(`
%start S
%%
S : id ;
`)
	assert.NoError(err)

	s, err := New(g, meta, "?? id")
	assert.NoError(err)

	tok, err := s.Consume()
	assert.NoError(err)
	assert.Equal("id", tok.Class().ID())
}

func Test_Stream_PopScannerOnInitialStateFails(t *testing.T) {
	assert := assert.New(t)

	g, meta, err := grammar.Load(`
%start S
%%
S : id ;
`)
	assert.NoError(err)

	s, err := New(g, meta, "id")
	assert.NoError(err)

	assert.Error(s.PopScanner())
}

func Test_Stream_PushThenPopScannerRestoresState(t *testing.T) {
	assert := assert.New(t)

	g, meta, err := grammar.Load(`
%start S
%scanner INITIAL {
}
%scanner STR {
}
%%
S : id ;
`)
	assert.NoError(err)

	s, err := New(g, meta, "id")
	assert.NoError(err)

	assert.Equal("INITIAL", s.CurrentScanner())
	assert.NoError(s.PushScanner("STR"))
	assert.Equal("STR", s.CurrentScanner())
	assert.NoError(s.PopScanner())
	assert.Equal("INITIAL", s.CurrentScanner())
}

func Test_Stream_OnDirectiveSwitchesScannerAutomatically(t *testing.T) {
	assert := assert.New(t)

	// Matching lquote pushes the STR scanner; matching rquote pops it.
	// The switch happens at scan time, with no inline directive in the
	// production itself.
	g, meta, err := grammar.Load(`
%start S
%scanner INITIAL {
}
%scanner STR {
}
%on lquote %push STR
%on rquote %pop
%%
S : lquote rquote ;
`)
	assert.NoError(err)

	s, err := New(g, meta, "lquote rquote")
	assert.NoError(err)

	assert.Equal("INITIAL", s.CurrentScanner())

	tok, err := s.Consume()
	assert.NoError(err)
	assert.Equal("lquote", tok.Class().ID())
	assert.Equal("STR", s.CurrentScanner())

	tok, err = s.Consume()
	assert.NoError(err)
	assert.Equal("rquote", tok.Class().ID())
	assert.Equal("INITIAL", s.CurrentScanner())
}

func Test_Stream_RecoveryMutationsAreWindowRelative(t *testing.T) {
	assert := assert.New(t)

	g, meta, err := grammar.Load(`
%start S
%%
S : "a" "b" "c" ;
`)
	assert.NoError(err)

	s, err := New(g, meta, "a c")
	assert.NoError(err)

	// Consume "a" so the window starts at "c", then insert a synthetic
	// "b" at window position 0: it must land before "c", not before "a".
	_, err = s.Consume()
	assert.NoError(err)

	assert.NoError(s.InsertTokenAt(0, types.MakeDefaultClass("b")))

	tok, err := s.Lookahead(0)
	assert.NoError(err)
	assert.Equal("b", tok.Class().ID())

	tok, err = s.Lookahead(1)
	assert.NoError(err)
	assert.Equal("c", tok.Class().ID())

	assert.NoError(s.ReplaceTokenTypeAt(1, types.MakeDefaultClass("d")))
	tok, err = s.Lookahead(1)
	assert.NoError(err)
	assert.Equal("d", tok.Class().ID())
	assert.Equal("c", tok.Lexeme())
}
