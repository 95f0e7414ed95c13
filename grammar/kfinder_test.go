package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Disjoint_NumericTupleSets(t *testing.T) {
	assert := assert.New(t)

	a := []KTuple{{"1", "2", "3"}, {"1", "2", "4"}}
	b := []KTuple{{"5", "6", "7"}, {"5", "8"}}
	assert.True(Disjoint(a, b))

	// Adding one of a's tuples to b makes the sets overlap.
	b = append(b, KTuple{"1", "2", "4"})
	assert.False(Disjoint(a, b))
}

func Test_Disjoint_SharedTupleIsPrefixOfLongerTuple(t *testing.T) {
	assert := assert.New(t)

	// Both sets contain (1, 2); the second also holds (1, 2, 3), so the
	// shared tuple's trie node has children. Intersection must match on
	// the node's tag, not on it being childless.
	a := []KTuple{{"1", "2"}}
	b := []KTuple{{"1", "2"}, {"1", "2", "3"}}
	assert.False(Disjoint(a, b))

	// Sharing only the prefix, not a whole tuple, stays disjoint.
	c := []KTuple{{"1", "2", "3"}}
	assert.True(Disjoint(a, c))
}

func Test_Trie_Insert_RejectsConflictingTag(t *testing.T) {
	assert := assert.New(t)

	tr := NewTrie()
	assert.NoError(tr.Insert(KTuple{"a", "b"}, 0))
	assert.NoError(tr.Insert(KTuple{"a", "c"}, 0))
	assert.Error(tr.Insert(KTuple{"a", "b"}, 1))
}

func Test_Grammar_FindK_SecondTokenDistinguishes(t *testing.T) {
	assert := assert.New(t)

	// Both alternatives start with "a"; only the second token tells them
	// apart, so the k-finder must land on k=2 exactly.
	g := setupGrammar(
		[]string{"a", "b", "c"},
		[]string{
			"S -> a b | a c",
		},
	)

	results, err := g.FindK()
	assert.NoError(err)

	res := results["S"]
	assert.Equal(2, res.K)
	assert.Equal(2, len(res.Tuples))
	assert.True(Disjoint(res.Tuples[0], res.Tuples[1]))
}

func Test_Grammar_FindK_SingleAlternativeNeedsNoLookahead(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar(
		[]string{"a"},
		[]string{
			"S -> a",
		},
	)

	results, err := g.FindK()
	assert.NoError(err)
	assert.Equal(0, results["S"].K)
}

func Test_Grammar_FindK_ReportsMaxKExceeded(t *testing.T) {
	assert := assert.New(t)

	// Identical alternatives can never be distinguished by any finite
	// lookahead.
	g := setupGrammar(
		[]string{"a"},
		[]string{
			"S -> a | a",
		},
	)

	_, err := g.FindK()
	assert.Error(err)
	var target *MaxKExceeded
	assert.ErrorAs(err, &target)
	assert.Equal(MaxK, target.MaxK)
	assert.Contains(target.NonTerminals, "S")
}
