package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Grammar_FollowK_SeedsStartWithPaddedEndOfInput(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar(
		[]string{"a"},
		[]string{
			"S -> A",
			"A -> a",
		},
	)

	// FOLLOW_2(S) must be the end-of-input marker padded out to k symbols,
	// not the empty tuple: a single "$" would truncate to the wrong length
	// when later concatenated against FIRST_k prefixes during the
	// non-terminal fixed point, so it is seeded here at full width.
	assert.Equal([]KTuple{{"$", "$"}}, g.FollowK("S", 2))

	// A appears at the end of S's only production, so it inherits the same
	// padded end-of-input tuple rather than an empty one.
	assert.Equal([]KTuple{{"$", "$"}}, g.FollowK("A", 2))
}

func Test_Grammar_FollowK_DistinguishesOverlappingTailsViaEndOfInput(t *testing.T) {
	assert := assert.New(t)

	// A can be followed by either one more "a" (from B's first alternative)
	// or by nothing at all (end of input, when B takes its second
	// alternative). With the end-of-input marker correctly padded to k
	// symbols, these two tuples stay distinguishable instead of both
	// degenerating to the empty tuple.
	g := setupGrammar(
		[]string{"a"},
		[]string{
			"S -> A B",
			"A -> a",
			"B -> a | ε",
		},
	)

	follow := g.FollowK("A", 2)
	assert.Contains(follow, KTuple{"a", "$"})
	assert.Contains(follow, KTuple{"$", "$"})
}
