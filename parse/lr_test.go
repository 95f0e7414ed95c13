package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thistlearc/parsegen/grammar"
	"github.com/thistlearc/parsegen/lex"
)

func buildLRParser(t *testing.T, src string) (*LRParser, *grammar.Grammar, *grammar.Meta) {
	t.Helper()
	g, meta, err := grammar.Load(src)
	if err != nil {
		t.Fatalf("grammar.Load: %v", err)
	}
	table, err := NewLRParseTable(g)
	if err != nil {
		t.Fatalf("NewLRParseTable: %v", err)
	}
	return &LRParser{Table: table}, g, meta
}

func Test_LRParser_ParsesLeftRecursiveSum(t *testing.T) {
	assert := assert.New(t)

	p, g, meta := buildLRParser(t, lalrTestGrammarSrc)

	stream, err := lex.New(g, meta, "id + id + id")
	assert.NoError(err)

	actions := &fakeActions{}
	node, err := p.Parse(stream, actions)
	assert.NoError(err)
	assert.NotNil(node)
	assert.Equal("E", node.Value)

	// Three T reductions and three E reductions: reduce count equals the
	// number of productions applied in the derivation.
	assert.Len(actions.calls, 6)
}

func Test_LRParser_ReportsSyntaxErrorWithExpectations(t *testing.T) {
	assert := assert.New(t)

	p, g, meta := buildLRParser(t, lalrTestGrammarSrc)

	stream, err := lex.New(g, meta, "id +")
	assert.NoError(err)

	actions := &fakeActions{}
	_, err = p.Parse(stream, actions)
	assert.Error(err)
}

func Test_LRParser_ReducesEpsilonProduction(t *testing.T) {
	assert := assert.New(t)

	src := `
%start S
%grammar_type "lalr(1)"
%%
S : A "x" ;
A : "a" | ;
`
	p, g, meta := buildLRParser(t, src)

	stream, err := lex.New(g, meta, "x")
	assert.NoError(err)

	actions := &fakeActions{}
	node, err := p.Parse(stream, actions)
	assert.NoError(err)
	assert.NotNil(node)

	// The epsilon reduction must dispatch A's second alternative, not a
	// stray production index.
	var epsIdx int
	for _, ip := range g.AllProductions() {
		if ip.NonTerminal == "A" && ip.AltIndex == 1 {
			epsIdx = ip.Index
		}
	}
	assert.Contains(actions.calls, epsIdx)
}
