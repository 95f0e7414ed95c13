package grammar

// RemoveEpsilons returns a grammar equivalent to g with epsilon
// productions eliminated: for every production referencing a nullable
// symbol, every combination of that symbol's presence/absence is added as
// a separate alternative. A non-terminal left with no alternative keeps a
// single ε alternative, and if the start symbol is nullable a
// `start -> ε` alternative is appended.
func (g *Grammar) RemoveEpsilons() Grammar {
	nullable := g.CalculateNullableNonTerminals()
	out := g.Copy()

	startNullable := nullable[g.start]

	for _, nt := range out.ruleOrder {
		var newProds []Production
		for _, p := range out.rules[nt].Productions {
			if p.IsEpsilon() {
				continue
			}
			for _, variant := range expandNullableOmissions(p, nullable) {
				if len(variant) == 0 {
					continue
				}
				dup := false
				for _, existing := range newProds {
					if existing.Equal(variant) {
						dup = true
						break
					}
				}
				if !dup {
					newProds = append(newProds, variant)
				}
			}
		}
		if len(newProds) == 0 {
			newProds = append(newProds, Production{Epsilon[0]})
		}
		r := out.rules[nt]
		r.Productions = newProds
		out.rules[nt] = r
	}

	if startNullable {
		r := out.rules[out.start]
		r.Productions = append(r.Productions, Production{Epsilon[0]})
		out.rules[out.start] = r
	}

	return out
}

// expandNullableOmissions returns every production obtainable from p by
// independently keeping or dropping each symbol that is a nullable
// non-terminal. The result includes the empty variant when every symbol
// can be dropped, and may contain duplicates; RemoveEpsilons skips the
// empty variant and filters the duplicates.
func expandNullableOmissions(p Production, nullable map[string]bool) []Production {
	if len(p) == 0 {
		return []Production{{}}
	}
	head := p[0]
	restVariants := expandNullableOmissions(p[1:], nullable)

	var out []Production
	for _, rv := range restVariants {
		withHead := append(Production{head}, rv...)
		out = append(out, withHead)
	}
	if nullable[head] {
		for _, rv := range restVariants {
			out = append(out, rv.Copy())
		}
	}
	return out
}

// RemoveUnitProductions returns a grammar equivalent to g with unit
// productions (A -> B, where B is a single non-terminal) eliminated by
// transitively inlining B's alternatives in place of the unit production.
func (g *Grammar) RemoveUnitProductions() Grammar {
	out := g.Copy()

	for _, nt := range out.ruleOrder {
		reached := map[string]bool{nt: true}
		worklist := []string{nt}
		var nonUnit []Production
		seen := map[string]bool{}

		for len(worklist) > 0 {
			cur := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]
			for _, p := range out.rules[cur].Productions {
				if len(p) == 1 && out.IsNonTerminal(p[0]) {
					target := p[0]
					if !reached[target] {
						reached[target] = true
						worklist = append(worklist, target)
					}
					continue
				}
				key := p.String()
				if !seen[key] {
					seen[key] = true
					nonUnit = append(nonUnit, p)
				}
			}
		}

		r := out.rules[nt]
		r.Productions = nonUnit
		out.rules[nt] = r
	}

	return out
}

// LeftFactor returns a grammar equivalent to g with left-common-prefix
// ambiguity removed: at each iteration, for every non-terminal, find the
// prefix shared by at least two of its alternatives maximizing
// prefix_length * participant_count (ties broken by more participants),
// split it into `A -> prefix A'` plus `A' -> suffix_i` for each
// participant, and repeat to a fixed point across the whole grammar.
func (g *Grammar) LeftFactor() Grammar {
	out := g.Copy()
	existing := existingNonTerminalSet(&out)

	changed := true
	for changed {
		changed = false
		for _, nt := range append([]string{}, out.ruleOrder...) {
			prefix, participants := bestCommonPrefix(out.rules[nt].Productions)
			if len(prefix) == 0 {
				continue
			}
			changed = true

			aux := nextAuxName(nt, existing)
			existing[aux] = true

			var remaining []Production
			var auxProds []Production
			partSet := map[int]bool{}
			for _, idx := range participants {
				partSet[idx] = true
			}
			for i, p := range out.rules[nt].Productions {
				if !partSet[i] {
					remaining = append(remaining, p)
					continue
				}
				suffix := p[len(prefix):]
				if len(suffix) == 0 {
					suffix = Production{Epsilon[0]}
				}
				auxProds = append(auxProds, suffix)
			}
			newProd := append(append(Production{}, prefix...), aux)
			remaining = append(remaining, newProd)

			r := out.rules[nt]
			r.Productions = remaining
			out.rules[nt] = r

			out.rules[aux] = Rule{NonTerminal: aux, Productions: auxProds}
			out.ruleOrder = append(out.ruleOrder, aux)
		}
	}

	return out
}

// bestCommonPrefix finds the prefix shared by the most productions that
// maximizes prefix_length * participant_count, returning the prefix and
// the indices of the productions that share it. It returns a nil prefix
// if no two productions share any common first symbol.
func bestCommonPrefix(prods []Production) (Production, []int) {
	var bestPrefix Production
	var bestParticipants []int
	bestScore := 0

	for i := 0; i < len(prods); i++ {
		for j := i + 1; j < len(prods); j++ {
			prefix := commonPrefix(prods[i], prods[j])
			if len(prefix) == 0 {
				continue
			}
			participants := []int{i}
			for k := 0; k < len(prods); k++ {
				if k == i {
					continue
				}
				if hasPrefix(prods[k], prefix) {
					participants = append(participants, k)
				}
			}
			score := len(prefix) * len(participants)
			if score > bestScore {
				bestScore = score
				bestPrefix = prefix
				bestParticipants = participants
			} else if score == bestScore && len(participants) > len(bestParticipants) {
				bestPrefix = prefix
				bestParticipants = participants
			}
		}
	}
	return bestPrefix, bestParticipants
}

func commonPrefix(a, b Production) Production {
	var out Production
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			break
		}
		out = append(out, a[i])
	}
	return out
}

func hasPrefix(p, prefix Production) bool {
	if len(p) < len(prefix) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}
