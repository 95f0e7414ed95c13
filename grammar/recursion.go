package grammar

import "github.com/thistlearc/parsegen/perr"

// LeftRecursionError reports that one or more non-terminals are
// left-recursive, which LL(k) prediction cannot handle without the
// recursion-elimination transform being applied first.
type LeftRecursionError struct {
	NonTerminals []string
}

func (e *LeftRecursionError) Error() string {
	return perr.NewGrammarError("grammar is left-recursive in non-terminals %v", e.NonTerminals).Error()
}

// LeftRecursive returns the non-terminals that are left-recursive: N is
// left-recursive if N derives N α for some α, directly or through a chain
// of nullable-prefixed productions of other non-terminals.
func (g *Grammar) LeftRecursive() []string {
	nullable := g.CalculateNullableNonTerminals()
	var out []string
	for _, nt := range g.ruleOrder {
		if g.derivesLeft(nt, nt, nullable, map[string]bool{}) {
			out = append(out, nt)
		}
	}
	return out
}

// derivesLeft reports whether start can derive a string beginning with
// target as its leftmost non-terminal (i.e. target appears as the first
// non-nullable-skippable symbol of some production reachable from start).
func (g *Grammar) derivesLeft(start, target string, nullable map[string]bool, visited map[string]bool) bool {
	if visited[start] {
		return false
	}
	visited[start] = true
	for _, p := range g.rules[start].Productions {
		for _, sym := range p {
			if IsScannerSwitch(sym) {
				continue
			}
			if sym == target {
				return true
			}
			if g.IsTerminal(sym) {
				break
			}
			if g.derivesLeft(sym, target, nullable, visited) {
				return true
			}
			if !nullable[sym] {
				break
			}
		}
	}
	return false
}

// RightRecursive returns the non-terminals that are right-recursive: N
// derives α N as the rightmost portion of some production, directly or
// through a chain of nullable-suffixed productions. This is the symmetric
// analysis to LeftRecursive; right recursion is legal under LALR(1) (it
// does not block table construction the way left recursion blocks LL
// prediction without transformation) but grows the LR parse stack
// linearly with input length, so it is surfaced as a diagnostic.
func (g *Grammar) RightRecursive() []string {
	nullable := g.CalculateNullableNonTerminals()
	var out []string
	for _, nt := range g.ruleOrder {
		if g.derivesRight(nt, nt, nullable, map[string]bool{}) {
			out = append(out, nt)
		}
	}
	return out
}

func (g *Grammar) derivesRight(start, target string, nullable map[string]bool, visited map[string]bool) bool {
	if visited[start] {
		return false
	}
	visited[start] = true
	for _, p := range g.rules[start].Productions {
		for i := len(p) - 1; i >= 0; i-- {
			sym := p[i]
			if IsScannerSwitch(sym) {
				continue
			}
			if sym == target {
				return true
			}
			if g.IsTerminal(sym) {
				break
			}
			if g.derivesRight(sym, target, nullable, visited) {
				return true
			}
			if !nullable[sym] {
				break
			}
		}
	}
	return false
}

// RemoveLeftRecursion returns a grammar equivalent to g with all direct
// and indirect left recursion eliminated, using the classic
// non-terminal-ordering substitution algorithm: order the non-terminals
// A_1..A_n; for each A_i in order, substitute any production beginning
// with A_j (j < i) by inlining A_j's alternatives, then eliminate any
// remaining direct left recursion on A_i by splitting into A_i and a
// fresh auxiliary A_i-P carrying the recursive tail.
func (g *Grammar) RemoveLeftRecursion() Grammar {
	out := g.Copy()
	order := out.NonTerminals()
	existing := existingNonTerminalSet(&out)

	for i, ai := range order {
		for j := 0; j < i; j++ {
			aj := order[j]
			out.rules[ai] = substituteLeadingNonTerminal(out.rules[ai], aj, out.rules[aj])
		}
		mainRule, auxRule := eliminateDirectLeftRecursion(out.rules[ai], existing)
		out.rules[ai] = mainRule
		if auxRule != nil {
			out.rules[auxRule.NonTerminal] = *auxRule
			out.ruleOrder = append(out.ruleOrder, auxRule.NonTerminal)
		}
	}

	return out
}

func substituteLeadingNonTerminal(r Rule, target string, targetRule Rule) Rule {
	var newProds []Production
	for _, p := range r.Productions {
		if len(p) > 0 && p[0] == target && !p.IsEpsilon() {
			for _, tp := range targetRule.Productions {
				var combined Production
				if tp.IsEpsilon() {
					combined = append(Production{}, p[1:]...)
				} else {
					combined = append(append(Production{}, tp...), p[1:]...)
				}
				if len(combined) == 0 {
					combined = Production{Epsilon[0]}
				}
				newProds = append(newProds, combined)
			}
		} else {
			newProds = append(newProds, p)
		}
	}
	r.Productions = newProds
	return r
}

func eliminateDirectLeftRecursion(r Rule, existing map[string]bool) (Rule, *Rule) {
	var recursive, nonRecursive []Production
	for _, p := range r.Productions {
		if len(p) > 0 && p[0] == r.NonTerminal {
			recursive = append(recursive, p)
		} else {
			nonRecursive = append(nonRecursive, p)
		}
	}
	if len(recursive) == 0 {
		return r, nil
	}

	aux := nextAuxName(r.NonTerminal, existing)
	existing[aux] = true

	var newMain []Production
	for _, p := range nonRecursive {
		if p.IsEpsilon() {
			newMain = append(newMain, Production{aux})
		} else {
			newMain = append(newMain, append(append(Production{}, p...), aux))
		}
	}
	if len(newMain) == 0 {
		newMain = append(newMain, Production{aux})
	}

	var auxProds []Production
	for _, p := range recursive {
		tail := p[1:]
		auxProds = append(auxProds, append(append(Production{}, tail...), aux))
	}
	auxProds = append(auxProds, Production{Epsilon[0]})

	r.Productions = newMain
	return r, &Rule{NonTerminal: aux, Productions: auxProds}
}
