package grammar

import (
	"sort"
	"strings"

	"github.com/thistlearc/parsegen/perr"
)

// KTuple is a bounded-length sequence of terminal symbols, truncated to at
// most k elements; FIRST_k/FOLLOW_k sets are sets of KTuples.
type KTuple []string

// String renders a tuple as "(a, b, c)", or "(ε)" for the empty tuple.
func (t KTuple) String() string {
	if len(t) == 0 {
		return "(" + Epsilon[0] + ")"
	}
	return "(" + strings.Join(t, ", ") + ")"
}

// Equal reports whether t and o contain the same symbols in the same
// order.
func (t KTuple) Equal(o KTuple) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if t[i] != o[i] {
			return false
		}
	}
	return true
}

// concatTruncate appends b to a and truncates the result to at most k
// symbols, the operation used throughout FIRST_k/FOLLOW_k construction.
func concatTruncate(a, b KTuple, k int) KTuple {
	out := make(KTuple, 0, k)
	out = append(out, a...)
	for _, s := range b {
		if len(out) >= k {
			break
		}
		out = append(out, s)
	}
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// tupleSet is a set of k-tuples, keyed by their rendered string for easy
// deduplication and deterministic ordering.
type tupleSet map[string]KTuple

func newTupleSet() tupleSet { return tupleSet{} }

func (s tupleSet) add(t KTuple) {
	s[t.String()] = t
}

func (s tupleSet) has(t KTuple) bool {
	_, ok := s[t.String()]
	return ok
}

func (s tupleSet) ordered() []KTuple {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]KTuple, len(keys))
	for i, k := range keys {
		out[i] = s[k]
	}
	return out
}

func (s tupleSet) union(o tupleSet) tupleSet {
	out := newTupleSet()
	for k, v := range s {
		out[k] = v
	}
	for k, v := range o {
		out[k] = v
	}
	return out
}

// FirstK returns the FIRST_k set of symbol: the set of terminal k-tuples
// (truncated to length k, with the empty tuple standing in for ε) that
// can begin a string of at most k terminals derivable from symbol.
func (g *Grammar) FirstK(symbol string, k int) []KTuple {
	return g.firstKOfSymbol(symbol, k, map[string]bool{}).ordered()
}

func (g *Grammar) firstKOfSymbol(symbol string, k int, inProgress map[string]bool) tupleSet {
	if g.IsTerminal(symbol) {
		s := newTupleSet()
		s.add(KTuple{symbol})
		return s
	}
	if inProgress[symbol] {
		// Left recursion into this symbol during the same computation;
		// contributes nothing further at this depth.
		return newTupleSet()
	}
	inProgress[symbol] = true
	defer delete(inProgress, symbol)

	out := newTupleSet()
	for _, p := range g.rules[symbol].Productions {
		out = out.union(g.firstKOfSequence(p, k, inProgress))
	}
	return out
}

func (g *Grammar) firstKOfSequence(seq []string, k int, inProgress map[string]bool) tupleSet {
	if len(seq) == 0 || (len(seq) == 1 && seq[0] == Epsilon[0]) {
		s := newTupleSet()
		s.add(KTuple{})
		return s
	}

	acc := newTupleSet()
	acc.add(KTuple{})
	for _, sym := range seq {
		if IsScannerSwitch(sym) {
			continue
		}
		symFirst := g.firstKOfSymbol(sym, k, inProgress)
		next := newTupleSet()
		for _, prefix := range acc.ordered() {
			if len(prefix) >= k {
				next.add(prefix)
				continue
			}
			for _, suffix := range symFirst.ordered() {
				next.add(concatTruncate(prefix, suffix, k))
			}
		}
		acc = next
	}
	return acc
}

// FirstKOfSequence returns the FIRST_k set of a whole symbol sequence
// (terminals, non-terminals, or scanner-switch pseudo-symbols), the
// operation LALR(1) closure lookahead propagation needs that FirstK alone
// cannot give, since FirstK only covers a single symbol.
func (g *Grammar) FirstKOfSequence(seq []string, k int) []KTuple {
	return g.firstKOfSequence(seq, k, map[string]bool{}).ordered()
}

// FollowK returns the FOLLOW_k set of a non-terminal: the set of
// k-terminal tuples that can follow it in some derivation from the start
// symbol, computed via the standard relative-FIRST_k fixed point over
// every production's occurrences of the symbol.
func (g *Grammar) FollowK(symbol string, k int) []KTuple {
	return g.followKSets(k)[symbol].ordered()
}

func (g *Grammar) followKSets(k int) map[string]tupleSet {
	follow := map[string]tupleSet{}
	for _, nt := range g.ruleOrder {
		follow[nt] = newTupleSet()
	}
	start := newTupleSet()
	endOfInput := make(KTuple, k)
	for i := range endOfInput {
		endOfInput[i] = "$"
	}
	start.add(endOfInput)
	follow[g.start] = start

	changed := true
	for changed {
		changed = false
		for _, nt := range g.ruleOrder {
			for _, p := range g.rules[nt].Productions {
				for i, sym := range p {
					if !g.IsNonTerminal(sym) {
						continue
					}
					rest := g.firstKOfSequence(p[i+1:], k, map[string]bool{})
					before := len(follow[sym])
					merged := newTupleSet()
					for _, f := range follow[nt].ordered() {
						for _, r := range rest.ordered() {
							merged.add(concatTruncate(r, f, k))
						}
					}
					follow[sym] = follow[sym].union(merged)
					if len(follow[sym]) != before {
						changed = true
					}
				}
			}
		}
	}
	return follow
}

func grammarNotLL1Error(g *Grammar) error {
	for _, nt := range g.ruleOrder {
		seen := map[string]bool{}
		for _, p := range g.rules[nt].Productions {
			first, nullable := g.firstOfSequence(p)
			toCheck := map[string]bool{}
			for t := range first {
				toCheck[t] = true
			}
			if nullable || p.IsEpsilon() {
				for _, t := range g.FOLLOW(nt) {
					toCheck[t] = true
				}
			}
			for t := range toCheck {
				if seen[t] {
					return perr.NewGrammarError("grammar is not LL(1): non-terminal %q has overlapping FIRST/FOLLOW on terminal %q", nt, t)
				}
			}
			for t := range toCheck {
				seen[t] = true
			}
		}
	}
	return perr.NewGrammarError("grammar is not LL(1)")
}
