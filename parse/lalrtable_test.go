package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thistlearc/parsegen/grammar"
)

const lalrTestGrammarSrc = `
%start E
%grammar_type "lalr(1)"
%%
E : E "+" T | T ;
T : id ;
`

func Test_NewLRParseTable_AcceptsSimpleExpressionGrammar(t *testing.T) {
	assert := assert.New(t)

	g, _, err := grammar.Load(lalrTestGrammarSrc)
	assert.NoError(err)

	table, err := NewLRParseTable(g)
	assert.NoError(err)
	assert.NotNil(table)
	assert.Equal(0, table.Initial())
}

func Test_NewLRParseTable_RejectsScannerSwitches(t *testing.T) {
	assert := assert.New(t)

	src := `
%start E
%grammar_type "lalr(1)"
%scanner INITIAL {
}
%%
E : %push(INITIAL) id %pop() ;
`
	g, _, err := grammar.Load(src)
	assert.NoError(err)

	_, err = NewLRParseTable(g)
	assert.Error(err)
}

func Test_LRParseTable_SnapshotRoundTrip(t *testing.T) {
	assert := assert.New(t)

	g, _, err := grammar.Load(lalrTestGrammarSrc)
	assert.NoError(err)

	orig, err := NewLRParseTable(g)
	assert.NoError(err)

	snap := orig.Snapshot()
	restored := TableFromSnapshot(g, snap)

	origAction := orig.Action(0, "id")
	restoredAction := restored.Action(0, "id")
	assert.Equal(origAction.Type, restoredAction.Type)
	assert.Equal(origAction.State, restoredAction.State)
}
