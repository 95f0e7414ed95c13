package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thistlearc/parsegen/grammar"
)

func Test_LookaheadDFA_Predict(t *testing.T) {
	assert := assert.New(t)

	result := grammar.KResult{
		NonTerminal: "EP",
		K:           1,
		Tuples: [][]grammar.KTuple{
			{{"plus"}},
			{{"$"}},
		},
	}

	dfa, err := NewLookaheadDFA(result)
	assert.NoError(err)

	assert.Equal(0, dfa.Predict([]string{"plus"}))
	assert.Equal(1, dfa.Predict([]string{"$"}))
}

func Test_LookaheadDFA_SnapshotRoundTrip(t *testing.T) {
	assert := assert.New(t)

	result := grammar.KResult{
		NonTerminal: "EP",
		K:           1,
		Tuples: [][]grammar.KTuple{
			{{"plus"}},
			{{"$"}},
		},
	}

	orig, err := NewLookaheadDFA(result)
	assert.NoError(err)
	snap := orig.Snapshot()
	restored := DFAFromSnapshot(snap)

	assert.Equal(orig.K, restored.K)
	assert.Equal(orig.Prod0, restored.Prod0)
	assert.Equal(orig.StateCount(), restored.StateCount())
	assert.Equal(orig.Predict([]string{"plus"}), restored.Predict([]string{"plus"}))
	assert.Equal(orig.Predict([]string{"$"}), restored.Predict([]string{"$"}))
}

func Test_LookaheadDFA_ExpectedPaths(t *testing.T) {
	assert := assert.New(t)

	result := grammar.KResult{
		NonTerminal: "EP",
		K:           1,
		Tuples: [][]grammar.KTuple{
			{{"plus"}},
			{{"$"}},
		},
	}

	dfa, err := NewLookaheadDFA(result)
	assert.NoError(err)
	paths := dfa.ExpectedPaths()

	assert.Len(paths, 2)
	var flat [][]string
	for _, p := range paths {
		flat = append(flat, p)
	}
	assert.Contains(flat, []string{"plus"})
	assert.Contains(flat, []string{"$"})
}

func Test_LookaheadDFA_UniqueAlternativeHasNoTransitions(t *testing.T) {
	assert := assert.New(t)

	result := grammar.KResult{
		NonTerminal: "T",
		K:           1,
		Tuples: [][]grammar.KTuple{
			{{"id"}},
		},
	}

	dfa, err := NewLookaheadDFA(result)
	assert.NoError(err)

	assert.Equal(1, dfa.StateCount())
	assert.Equal(0, dfa.Prod0)
	assert.Equal(0, dfa.Predict([]string{"id"}))
	assert.Equal(0, dfa.Predict(nil))
}

func Test_NewLookaheadDFA_RejectsOverlappingTuples(t *testing.T) {
	assert := assert.New(t)

	// Production 0's tuple (a) is a strict prefix of production 1's tuple
	// (a, b): the trie node for "a" would have to both accept production
	// 0 and keep transitioning toward production 1.
	result := grammar.KResult{
		NonTerminal: "S",
		K:           2,
		Tuples: [][]grammar.KTuple{
			{{"a"}},
			{{"a", "b"}},
		},
	}

	dfa, err := NewLookaheadDFA(result)
	assert.Error(err)
	assert.Nil(dfa)
}
