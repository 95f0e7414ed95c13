package grammar

import (
	"sort"

	"github.com/thistlearc/parsegen/perr"
)

// trieNode is one node of a Trie of k-tuples: children keyed by terminal
// symbol, and a production tag recorded at the node where an inserted
// tuple ends.
type trieNode struct {
	children map[string]*trieNode
	// prod is the production index tagging this node, or -1 if untagged.
	prod int
}

func newTrieNode() *trieNode {
	return &trieNode{children: map[string]*trieNode{}, prod: -1}
}

// Trie indexes a collection of k-tuples, each tagged with the production
// index it distinguishes, used both to detect LL(k) decidability
// (disjointness of FIRST_k sets) and to build the lookahead DFA.
type Trie struct {
	root *trieNode
}

// NewTrie returns an empty Trie.
func NewTrie() *Trie {
	return &Trie{root: newTrieNode()}
}

// Insert adds tuple to the trie tagged with prod. It reports an error if
// the node the tuple ends at is already tagged with a different
// production (the same tuple distinguishes two productions). Tags on the
// other nodes along the path are not checked.
func (t *Trie) Insert(tuple KTuple, prod int) error {
	node := t.root
	for _, sym := range tuple {
		child, ok := node.children[sym]
		if !ok {
			child = newTrieNode()
			node.children[sym] = child
		}
		node = child
	}
	if node.prod != -1 && node.prod != prod {
		return perr.NewGrammarError("ambiguous lookahead tuple %s tags both production %d and %d", tuple, node.prod, prod)
	}
	node.prod = prod
	return nil
}

// Disjoint reports whether two sets of k-tuples (each internally already
// distinct) share no tuple in common, via trie intersection: build one
// trie per set and walk them together, following only symbols present in
// both.
func Disjoint(a, b []KTuple) bool {
	ta, tb := NewTrie(), NewTrie()
	for i, tup := range a {
		_ = ta.Insert(tup, i)
	}
	for i, tup := range b {
		_ = tb.Insert(tup, i)
	}
	return !intersects(ta.root, tb.root)
}

func intersects(a, b *trieNode) bool {
	if a == nil || b == nil {
		return false
	}
	if a.prod != -1 && b.prod != -1 {
		// A tuple ends exactly here in both tries: they share it. The tags
		// must be consulted rather than child counts, since a node can
		// terminate one tuple and still have children from a longer tuple
		// sharing the same prefix.
		return true
	}
	for sym, ca := range a.children {
		if cb, ok := b.children[sym]; ok {
			if intersects(ca, cb) {
				return true
			}
		}
	}
	return false
}

// KResult is the outcome of the k-finder for one non-terminal: the
// minimum k at which its alternatives become pairwise distinguishable,
// and the per-alternative distinguishing tuple sets used to build its
// lookahead DFA.
type KResult struct {
	NonTerminal string
	K           int
	Tuples      [][]KTuple // indexed by alternative/production index
}

// MaxKExceeded reports that no k up to MaxK made a non-terminal's
// alternatives pairwise disjoint.
type MaxKExceeded struct {
	MaxK          int
	NonTerminals []string
}

func (e *MaxKExceeded) Error() string {
	return perr.NewGrammarError("grammar is not LL(k) for any k <= %d: non-terminals %v remain ambiguous", e.MaxK, e.NonTerminals).Error()
}

// FindK computes, for every non-terminal with two or more productions,
// the smallest k <= MaxK at which FIRST_k(alt_i ++ FOLLOW_k(N)) are
// pairwise disjoint across alternatives. Non-terminals with fewer than
// two productions trivially need no lookahead and are reported at k=0.
func (g *Grammar) FindK() (map[string]KResult, error) {
	results := map[string]KResult{}
	var failing []string

	for _, nt := range g.ruleOrder {
		prods := g.rules[nt].Productions
		if len(prods) < 2 {
			tuples := make([][]KTuple, len(prods))
			for i := range prods {
				tuples[i] = []KTuple{{}}
			}
			results[nt] = KResult{NonTerminal: nt, K: 0, Tuples: tuples}
			continue
		}

		found := false
		for k := 1; k <= MaxK; k++ {
			followK := g.FollowK(nt, k)
			tuples := make([][]KTuple, len(prods))
			ok := true
			for i, p := range prods {
				rhsFirst := g.firstKOfSequence(p, k, map[string]bool{})
				combined := newTupleSet()
				for _, f := range rhsFirst.ordered() {
					if len(f) >= k {
						combined.add(f)
						continue
					}
					for _, fl := range followK {
						combined.add(concatTruncate(f, fl, k))
					}
				}
				tuples[i] = combined.ordered()
			}
			for i := 0; i < len(tuples) && ok; i++ {
				for j := i + 1; j < len(tuples); j++ {
					if !Disjoint(tuples[i], tuples[j]) {
						ok = false
						break
					}
				}
			}
			if ok {
				results[nt] = KResult{NonTerminal: nt, K: k, Tuples: tuples}
				found = true
				break
			}
		}
		if !found {
			failing = append(failing, nt)
		}
	}

	if len(failing) > 0 {
		sort.Strings(failing)
		return results, &MaxKExceeded{MaxK: MaxK, NonTerminals: failing}
	}
	return results, nil
}
