package grammar

import (
	"github.com/thistlearc/parsegen/perr"
	"github.com/thistlearc/parsegen/util"
)

// NonProductiveNonTerminalsError reports one or more non-terminals that
// derive no string of terminals at all, so no input could ever reach an
// accepting parse through them.
type NonProductiveNonTerminalsError struct {
	NonTerminals []string
}

func (e *NonProductiveNonTerminalsError) Error() string {
	return perr.NewGrammarError("non-productive non-terminals: %v", e.NonTerminals).Error()
}

// UnreachableNonTerminalsError reports one or more non-terminals that no
// production reachable from the start symbol ever mentions.
type UnreachableNonTerminalsError struct {
	NonTerminals []string
}

func (e *UnreachableNonTerminalsError) Error() string {
	return perr.NewGrammarError("unreachable non-terminals: %v", e.NonTerminals).Error()
}

// CalculateNullableNonTerminals returns the set of non-terminals N such
// that N derives the empty string in zero or more steps. It iterates a
// worklist to a fixed point: a production's rhs is nullable if every rhs
// symbol is either a non-terminal currently known nullable, or a
// scanner-switch symbol (which consumes nothing).
func (g *Grammar) CalculateNullableNonTerminals() util.StringSet {
	nullable := util.StringSet{}
	changed := true
	for changed {
		changed = false
		for _, nt := range g.ruleOrder {
			if nullable[nt] {
				continue
			}
			for _, p := range g.rules[nt].Productions {
				if p.IsEpsilon() || g.prodIsNullableGiven(p, nullable) {
					nullable[nt] = true
					changed = true
					break
				}
			}
		}
	}
	return nullable
}

func (g *Grammar) prodIsNullableGiven(p Production, nullable map[string]bool) bool {
	for _, sym := range p {
		if IsScannerSwitch(sym) {
			continue
		}
		if g.IsTerminal(sym) {
			return false
		}
		if !nullable[sym] {
			return false
		}
	}
	return true
}

// IsNullable reports whether sym (terminal or non-terminal) derives the
// empty string.
func (g *Grammar) IsNullable(sym string) bool {
	if g.IsTerminal(sym) {
		return false
	}
	return g.CalculateNullableNonTerminals()[sym]
}

// Productive returns the set of non-terminals that derive at least one
// string of terminals (possibly empty): those reachable from a production
// whose every symbol is either a terminal or already known productive.
func (g *Grammar) Productive() util.StringSet {
	productive := util.StringSet{}
	changed := true
	for changed {
		changed = false
		for _, nt := range g.ruleOrder {
			if productive[nt] {
				continue
			}
			for _, p := range g.rules[nt].Productions {
				if p.IsEpsilon() {
					productive[nt] = true
					changed = true
					break
				}
				ok := true
				for _, sym := range p {
					if g.IsTerminal(sym) || IsScannerSwitch(sym) {
						continue
					}
					if !productive[sym] {
						ok = false
						break
					}
				}
				if ok {
					productive[nt] = true
					changed = true
					break
				}
			}
		}
	}
	return productive
}

// Reachable returns the set of non-terminals reachable from the start
// symbol via zero or more production expansions.
func (g *Grammar) Reachable() util.StringSet {
	reached := util.StringSet{g.start: true}
	worklist := []string{g.start}
	for len(worklist) > 0 {
		nt := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, p := range g.rules[nt].Productions {
			for _, sym := range p {
				if g.IsNonTerminal(sym) && !reached[sym] {
					reached[sym] = true
					worklist = append(worklist, sym)
				}
			}
		}
	}
	return reached
}

// FIRST returns the FIRST set of a single symbol: the set of terminals
// that can begin a string derived from sym, plus Epsilon[0] if sym is
// nullable.
func (g *Grammar) FIRST(symbol string) []string {
	firstK := g.firstKOfSymbol(symbol, 1, map[string]bool{})
	out := map[string]bool{}
	for _, tup := range firstK {
		if len(tup) == 0 {
			out[Epsilon[0]] = true
		} else {
			out[tup[0]] = true
		}
	}
	return sortedStrings(keysOf(out))
}

// FOLLOW returns the FOLLOW set of a non-terminal: the set of terminals
// (plus "$" for end of input, if the start symbol can be followed by
// nothing) that can appear immediately after symbol in some derivation.
func (g *Grammar) FOLLOW(symbol string) []string {
	follow := g.followSets()
	return sortedStrings(keysOf(follow[symbol]))
}

func (g *Grammar) followSets() map[string]map[string]bool {
	follow := map[string]map[string]bool{}
	for _, nt := range g.ruleOrder {
		follow[nt] = map[string]bool{}
	}
	follow[g.start]["$"] = true

	changed := true
	for changed {
		changed = false
		for _, nt := range g.ruleOrder {
			for _, p := range g.rules[nt].Productions {
				for i, sym := range p {
					if !g.IsNonTerminal(sym) {
						continue
					}
					rest := p[i+1:]
					restFirst, restNullable := g.firstOfSequence(rest)
					for t := range restFirst {
						if t == Epsilon[0] {
							continue
						}
						if !follow[sym][t] {
							follow[sym][t] = true
							changed = true
						}
					}
					if restNullable {
						for t := range follow[nt] {
							if !follow[sym][t] {
								follow[sym][t] = true
								changed = true
							}
						}
					}
				}
			}
		}
	}
	return follow
}

// firstOfSequence computes FIRST of a sequence of symbols (terminals or
// non-terminals) and whether the whole sequence is nullable.
func (g *Grammar) firstOfSequence(seq []string) (map[string]bool, bool) {
	out := map[string]bool{}
	nullable := g.CalculateNullableNonTerminals()
	allNullableSoFar := true
	for _, sym := range seq {
		if IsScannerSwitch(sym) {
			continue
		}
		if g.IsTerminal(sym) {
			out[sym] = true
			allNullableSoFar = false
			break
		}
		for _, t := range g.FIRST(sym) {
			if t != Epsilon[0] {
				out[t] = true
			}
		}
		if !nullable[sym] {
			allNullableSoFar = false
			break
		}
	}
	return out, allNullableSoFar
}

func keysOf(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// IsLL1 reports whether g can be parsed with one token of lookahead: for
// every non-terminal, its alternatives' FIRST sets (extended with FOLLOW
// where an alternative is nullable) are pairwise disjoint.
func (g *Grammar) IsLL1() bool {
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
					return false
				}
				seen[t] = true
			}
		}
	}
	return true
}

// LL1Table maps a non-terminal to a map from lookahead terminal to the
// production to apply.
type LL1Table map[string]map[string]Production

// Get returns the production to apply for nt on lookahead term, or
// Error (nil) if there is none.
func (t LL1Table) Get(nt, term string) Production {
	row, ok := t[nt]
	if !ok {
		return Error
	}
	p, ok := row[term]
	if !ok {
		return Error
	}
	return p
}

// NonTerminals returns the table's row keys, sorted.
func (t LL1Table) NonTerminals() []string {
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	return sortedStrings(out)
}

// Terminals returns the union of column keys across all rows, sorted.
func (t LL1Table) Terminals() []string {
	set := map[string]bool{}
	for _, row := range t {
		for k := range row {
			set[k] = true
		}
	}
	return sortedStrings(keysOf(set))
}

// LLParseTable builds the LL(1) parse table for g, failing if g is not
// LL(1).
func (g *Grammar) LLParseTable() (LL1Table, error) {
	if !g.IsLL1() {
		return nil, grammarNotLL1Error(g)
	}
	table := LL1Table{}
	for _, nt := range g.ruleOrder {
		table[nt] = map[string]Production{}
		for _, p := range g.rules[nt].Productions {
			first, nullable := g.firstOfSequence(p)
			for t := range first {
				table[nt][t] = p
			}
			if nullable || p.IsEpsilon() {
				for _, t := range g.FOLLOW(nt) {
					table[nt][t] = p
				}
			}
		}
	}
	return table, nil
}
