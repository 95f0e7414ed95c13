package automaton

import (
	"sort"

	"github.com/thistlearc/parsegen/grammar"
)

// LALRItemSet is one state of the LALR(1) viable-prefix automaton: the
// (core-merged) set of LR(1) items reachable at this point in a parse, and
// the goto transitions leading out of it.
type LALRItemSet struct {
	// Items is this state's LR(1) items with lookaheads already unioned
	// across every canonical LR(1) state that shares its LR(0) core.
	Items []grammar.LR1Item

	// Transitions maps a grammar symbol to the index of the state GOTO
	// reaches on that symbol.
	Transitions map[string]int
}

// coreKey renders the LR(0) core of a set of LR(1) items as a canonical
// string, used to detect when two canonical LR(1) states merge under
// LALR(1) (same core, different lookaheads).
func coreKey(items []grammar.LR1Item) string {
	core := grammar.CoreSet(items)
	strs := make([]string, len(core))
	for i, it := range core {
		strs[i] = it.String()
	}
	sort.Strings(strs)
	key := ""
	for _, s := range strs {
		key += s + "\x00"
	}
	return key
}

func closureLR1(g *grammar.Grammar, items []grammar.LR1Item) []grammar.LR1Item {
	seen := map[string]grammar.LR1Item{}
	for _, it := range items {
		seen[it.String()] = it
	}
	worklist := append([]grammar.LR1Item{}, items...)

	for len(worklist) > 0 {
		it := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if len(it.Right) == 0 {
			continue
		}
		b := it.Right[0]
		if !g.IsNonTerminal(b) {
			continue
		}
		beta := it.Right[1:]

		lookaheads := firstKOfBetaA(g, beta, it.Lookahead)
		for _, prod := range g.Rule(b).Productions {
			rhs := []string(prod)
			if prod.IsEpsilon() {
				rhs = nil
			}
			for _, la := range lookaheads {
				cand := grammar.LR1Item{
					LR0Item:   grammar.LR0Item{NonTerminal: b, Right: append([]string{}, rhs...)},
					Lookahead: la,
				}
				key := cand.String()
				if _, ok := seen[key]; !ok {
					seen[key] = cand
					worklist = append(worklist, cand)
				}
			}
		}
	}

	out := make([]grammar.LR1Item, 0, len(seen))
	for _, it := range seen {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// firstKOfBetaA returns FIRST_1(beta a): the set of single terminals that
// can begin beta followed by lookahead a, used to compute the lookaheads
// propagated into the closure of an LR(1) item.
func firstKOfBetaA(g *grammar.Grammar, beta []string, a string) []string {
	if len(beta) == 0 {
		return []string{a}
	}
	set := map[string]bool{}
	for _, t := range g.FirstKOfSequence(beta, 1) {
		if len(t) == 1 {
			set[t[0]] = true
		} else {
			// beta is nullable: the empty continuation's lookahead is a.
			set[a] = true
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func gotoLR1(g *grammar.Grammar, items []grammar.LR1Item, sym string) []grammar.LR1Item {
	var moved []grammar.LR1Item
	for _, it := range items {
		if len(it.Right) > 0 && it.Right[0] == sym {
			moved = append(moved, grammar.LR1Item{LR0Item: it.Advance(), Lookahead: it.Lookahead})
		}
	}
	if len(moved) == 0 {
		return nil
	}
	return closureLR1(g, moved)
}

// symbolsOf returns every terminal and non-terminal g declares, in a
// stable order, used to enumerate GOTO targets while building item sets.
func symbolsOf(g *grammar.Grammar) []string {
	var out []string
	out = append(out, g.NonTerminals()...)
	out = append(out, g.Terminals()...)
	return out
}

// NewLALR1ViablePrefixDFA builds the LALR(1) viable-prefix automaton for
// g (which must not already be augmented) from LR(1) item sets, merging
// each newly reached item set into the state sharing its LR(0) core as it
// is discovered and unioning their lookaheads, so the full canonical
// LR(1) collection is never materialized. g is
// augmented internally with a fresh S' -> start production to seed the
// initial item set.
func NewLALR1ViablePrefixDFA(g grammar.Grammar) ([]LALRItemSet, error) {
	aug := g.Augmented()
	initial := []grammar.LR1Item{{
		LR0Item:   grammar.LR0Item{NonTerminal: aug.StartSymbol(), Right: []string{g.StartSymbol()}},
		Lookahead: "$",
	}}
	initialSet := closureLR1(&aug, initial)

	type canonState struct {
		items       []grammar.LR1Item
		transitions map[string][]grammar.LR1Item
	}

	order := []string{coreKey(initialSet)}
	byCore := map[string]*canonState{order[0]: {items: initialSet}}
	symbols := symbolsOf(&aug)

	// States are merged by core as they are discovered; when a merge grows
	// an already-processed state's lookaheads, that state is re-queued so
	// the new lookaheads propagate through its transitions, iterating to a
	// fixed point (lookahead sets only ever grow, so this terminates).
	queue := []string{order[0]}
	queued := map[string]bool{order[0]: true}
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		queued[key] = false

		cur := byCore[key]
		cur.transitions = map[string][]grammar.LR1Item{}
		for _, sym := range symbols {
			next := gotoLR1(&aug, cur.items, sym)
			if len(next) == 0 {
				continue
			}
			nkey := coreKey(next)
			existing, ok := byCore[nkey]
			if !ok {
				existing = &canonState{items: next}
				byCore[nkey] = existing
				order = append(order, nkey)
				queue = append(queue, nkey)
				queued[nkey] = true
			} else {
				merged := unionLR1(existing.items, next)
				if len(merged) != len(existing.items) {
					existing.items = merged
					if !queued[nkey] {
						queue = append(queue, nkey)
						queued[nkey] = true
					}
				}
			}
			cur.transitions[sym] = next
		}
	}

	indexOf := map[string]int{}
	for i, key := range order {
		indexOf[key] = i
	}

	states := make([]LALRItemSet, len(order))
	for i, key := range order {
		cs := byCore[key]
		trans := map[string]int{}
		for sym, next := range cs.transitions {
			trans[sym] = indexOf[coreKey(next)]
		}
		states[i] = LALRItemSet{Items: cs.items, Transitions: trans}
	}

	return states, nil
}

// unionLR1 merges two LR(1) item sets that share an LR(0) core, unioning
// their lookaheads per item.
func unionLR1(a, b []grammar.LR1Item) []grammar.LR1Item {
	byCore := map[string]map[string]bool{}
	itemOf := map[string]grammar.LR0Item{}
	for _, it := range append(append([]grammar.LR1Item{}, a...), b...) {
		ck := it.LR0Item.String()
		if byCore[ck] == nil {
			byCore[ck] = map[string]bool{}
			itemOf[ck] = it.LR0Item
		}
		byCore[ck][it.Lookahead] = true
	}
	var out []grammar.LR1Item
	for ck, las := range byCore {
		for la := range las {
			out = append(out, grammar.LR1Item{LR0Item: itemOf[ck], Lookahead: la})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

