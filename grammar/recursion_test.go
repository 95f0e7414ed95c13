package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Grammar_LeftRecursive_DirectRecursionDiagnosed(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar(
		[]string{"+", "id"},
		[]string{
			"E -> E + T | T",
			"T -> id",
		},
	)

	assert.Equal([]string{"E"}, g.LeftRecursive())
}

func Test_Grammar_LeftRecursive_IndirectThroughNullablePrefix(t *testing.T) {
	assert := assert.New(t)

	// A's production starts with nullable N, so B at position 1 is still a
	// left corner; B -> A closes the cycle.
	g := setupGrammar(
		[]string{"a", "b"},
		[]string{
			"A -> N B a",
			"N -> b | ε",
			"B -> A",
		},
	)

	leftRec := g.LeftRecursive()
	assert.Contains(leftRec, "A")
	assert.Contains(leftRec, "B")
	assert.NotContains(leftRec, "N")
}

func Test_Grammar_RightRecursive(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar(
		[]string{"+", "id"},
		[]string{
			"E -> T EP",
			"EP -> + T EP | ε",
			"T -> id",
		},
	)

	assert.Contains(g.RightRecursive(), "EP")
	assert.NotContains(g.RightRecursive(), "T")
	assert.Empty(g.LeftRecursive())
}

func Test_Grammar_RemoveLeftRecursion_Indirect(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar(
		[]string{"a", "b"},
		[]string{
			"S -> A a",
			"A -> S b | b",
		},
	)

	assert.Contains(g.LeftRecursive(), "S")

	out := g.RemoveLeftRecursion()
	assert.Empty(out.LeftRecursive())
}
