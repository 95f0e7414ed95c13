package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thistlearc/parsegen/grammar"
)

const dispatchTestGrammarSrc = `
%start E
%grammar_type "ll(1)"
%%
E : T^ "+" U ;
T : id ;
U : id ;
`

func Test_Dispatcher_Bind_InvokesRegisteredAction(t *testing.T) {
	assert := assert.New(t)

	g, meta, err := grammar.Load(dispatchTestGrammarSrc)
	assert.NoError(err)

	d := New(g, meta)

	var tIdx int
	for _, ip := range g.AllProductions() {
		if ip.NonTerminal == "T" {
			tIdx = ip.Index
		}
	}

	d.Bind(tIdx, func(children []any) (any, error) {
		return children[0], nil
	})

	result, err := d.CallSemanticAction(tIdx, []any{"id-token"})
	assert.NoError(err)
	assert.Equal("id-token", result)
}

func Test_Dispatcher_CallSemanticAction_PassThroughSingleChild(t *testing.T) {
	assert := assert.New(t)

	g, meta, err := grammar.Load(dispatchTestGrammarSrc)
	assert.NoError(err)

	d := New(g, meta)

	var tIdx int
	for _, ip := range g.AllProductions() {
		if ip.NonTerminal == "T" {
			tIdx = ip.Index
		}
	}

	result, err := d.CallSemanticAction(tIdx, []any{"id-token"})
	assert.NoError(err)
	assert.Equal("id-token", result)
}

func Test_Dispatcher_CallSemanticAction_FiltersCutChildren(t *testing.T) {
	assert := assert.New(t)

	g, meta, err := grammar.Load(dispatchTestGrammarSrc)
	assert.NoError(err)

	d := New(g, meta)

	var eIdx int
	for _, ip := range g.AllProductions() {
		if ip.NonTerminal == "E" {
			eIdx = ip.Index
		}
	}

	var seen []any
	d.Bind(eIdx, func(children []any) (any, error) {
		seen = children
		return nil, nil
	})

	// E's rhs is T^ "+" U: three semantic symbols, the first cut.
	_, err = d.CallSemanticAction(eIdx, []any{"first-T", "plus-tok", "second-T"})
	assert.NoError(err)
	assert.Equal([]any{"plus-tok", "second-T"}, seen)
}

func Test_Dispatcher_CallSemanticAction_UnknownProductionErrors(t *testing.T) {
	assert := assert.New(t)

	g, meta, err := grammar.Load(dispatchTestGrammarSrc)
	assert.NoError(err)

	d := New(g, meta)

	_, err = d.CallSemanticAction(9999, nil)
	assert.Error(err)
}

func Test_Dispatcher_BindRule_BindsByAlternativeOrder(t *testing.T) {
	assert := assert.New(t)

	g, meta, err := grammar.Load(dispatchTestGrammarSrc)
	assert.NoError(err)

	d := New(g, meta)

	called := false
	d.BindRule(g, "T", func(children []any) (any, error) {
		called = true
		return children[0], nil
	})

	var tIdx int
	for _, ip := range g.AllProductions() {
		if ip.NonTerminal == "T" {
			tIdx = ip.Index
		}
	}

	_, err = d.CallSemanticAction(tIdx, []any{"id-token"})
	assert.NoError(err)
	assert.True(called)
}
