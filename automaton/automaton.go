// Package automaton implements generic finite automata (DFA/NFA over any
// state-label type E) and the two automaton constructions this module
// needs on top of them: the LALR(1) viable-prefix DFA and the LL(k)
// lookahead DFA.
package automaton

import (
	"fmt"
	"sort"
	"strings"

	"github.com/thistlearc/parsegen/perr"
)

// FATransition is one edge of an automaton: on input, go from a state to
// another state.
type FATransition struct {
	Input string
	Next  string
}

// DFAState is one state of a DFA[E]: its transitions keyed by input
// symbol, and the accepting value attached to it (if any).
type DFAState[E any] struct {
	Transitions map[string]FATransition
	Accepting   bool
	Value       E
}

// DFA is a deterministic finite automaton whose states are named by
// string and whose accepting states carry a caller-supplied value of type
// E (e.g. a production index).
type DFA[E any] struct {
	States map[string]DFAState[E]
	Start  string
	order  []string
}

// NewDFA returns an empty DFA with no states.
func NewDFA[E any]() *DFA[E] {
	return &DFA[E]{States: map[string]DFAState[E]{}}
}

// AddState adds a new, transition-less state named name.
func (d *DFA[E]) AddState(name string) {
	if _, exists := d.States[name]; exists {
		return
	}
	d.States[name] = DFAState[E]{Transitions: map[string]FATransition{}}
	d.order = append(d.order, name)
	if d.Start == "" {
		d.Start = name
	}
}

// SetValue marks name as accepting with the given value.
func (d *DFA[E]) SetValue(name string, value E) {
	s := d.States[name]
	s.Accepting = true
	s.Value = value
	d.States[name] = s
}

// AddTransition adds an edge from -> to on input. It is an error for
// "from" to already have a transition on the same input to a different
// state (DFAs are deterministic by construction).
func (d *DFA[E]) AddTransition(from, input, to string) error {
	s, ok := d.States[from]
	if !ok {
		return perr.NewGrammarError("no such state %q", from)
	}
	if existing, ok := s.Transitions[input]; ok && existing.Next != to {
		return perr.NewGrammarError("state %q already has a transition on %q to %q", from, input, existing.Next)
	}
	s.Transitions[input] = FATransition{Input: input, Next: to}
	d.States[from] = s
	return nil
}

// Next returns the state reached from "from" on input, and whether such a
// transition exists.
func (d *DFA[E]) Next(from, input string) (string, bool) {
	s, ok := d.States[from]
	if !ok {
		return "", false
	}
	t, ok := s.Transitions[input]
	if !ok {
		return "", false
	}
	return t.Next, true
}

// StateNames returns the DFA's state names in the order they were added.
func (d *DFA[E]) StateNames() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// RemoveState deletes name and every transition targeting it.
func (d *DFA[E]) RemoveState(name string) {
	delete(d.States, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	for k, s := range d.States {
		for input, t := range s.Transitions {
			if t.Next == name {
				delete(s.Transitions, input)
			}
		}
		d.States[k] = s
	}
}

// AllTransitionsTo returns every (state, input) pair with a transition
// targeting name.
func (d *DFA[E]) AllTransitionsTo(name string) []FATransition {
	var out []FATransition
	for from, s := range d.States {
		for input, t := range s.Transitions {
			if t.Next == name {
				out = append(out, FATransition{Input: from + ":" + input, Next: name})
			}
		}
	}
	return out
}

// Validate reports an error if any transition targets a non-existent
// state or the start state is unset while states exist.
func (d *DFA[E]) Validate() error {
	if len(d.States) > 0 {
		if _, ok := d.States[d.Start]; !ok {
			return perr.NewGrammarError("DFA start state %q does not exist", d.Start)
		}
	}
	for from, s := range d.States {
		for input, t := range s.Transitions {
			if _, ok := d.States[t.Next]; !ok {
				return perr.NewGrammarError("state %q has transition on %q to non-existent state %q", from, input, t.Next)
			}
		}
	}
	return nil
}

// String renders the DFA's transition table, one line per state.
func (d *DFA[E]) String() string {
	var sb strings.Builder
	names := append([]string{}, d.order...)
	sort.Strings(names)
	for _, name := range names {
		s := d.States[name]
		marker := "  "
		if name == d.Start {
			marker = "->"
		}
		acc := ""
		if s.Accepting {
			acc = fmt.Sprintf(" [accept: %v]", s.Value)
		}
		sb.WriteString(fmt.Sprintf("%s %s%s\n", marker, name, acc))
		inputs := make([]string, 0, len(s.Transitions))
		for in := range s.Transitions {
			inputs = append(inputs, in)
		}
		sort.Strings(inputs)
		for _, in := range inputs {
			sb.WriteString(fmt.Sprintf("      %s -> %s\n", in, s.Transitions[in].Next))
		}
	}
	return sb.String()
}

// NFAState is one state of an NFA[E]: a set of (possibly non-
// deterministic) transitions per input symbol, plus an epsilon-transition
// set, and an accepting value.
type NFAState[E any] struct {
	Transitions map[string][]string
	Epsilons    []string
	Accepting   bool
	Value       E
}

// NFA is a non-deterministic finite automaton with epsilon transitions.
type NFA[E any] struct {
	States map[string]NFAState[E]
	Start  string
	order  []string
}

// NewNFA returns an empty NFA with no states.
func NewNFA[E any]() *NFA[E] {
	return &NFA[E]{States: map[string]NFAState[E]{}}
}

// AddState adds a new, transition-less state named name.
func (n *NFA[E]) AddState(name string) {
	if _, exists := n.States[name]; exists {
		return
	}
	n.States[name] = NFAState[E]{Transitions: map[string][]string{}}
	n.order = append(n.order, name)
	if n.Start == "" {
		n.Start = name
	}
}

// SetValue marks name as accepting with the given value.
func (n *NFA[E]) SetValue(name string, value E) {
	s := n.States[name]
	s.Accepting = true
	s.Value = value
	n.States[name] = s
}

// AddTransition adds a (possibly non-deterministic) edge from -> to on
// input.
func (n *NFA[E]) AddTransition(from, input, to string) {
	s := n.States[from]
	s.Transitions[input] = append(s.Transitions[input], to)
	n.States[from] = s
}

// AddEpsilon adds an epsilon edge from -> to.
func (n *NFA[E]) AddEpsilon(from, to string) {
	s := n.States[from]
	s.Epsilons = append(s.Epsilons, to)
	n.States[from] = s
}

// StateNames returns the NFA's state names in add order.
func (n *NFA[E]) StateNames() []string {
	out := make([]string, len(n.order))
	copy(out, n.order)
	return out
}

// EpsilonClosure returns the set of states reachable from start using
// only epsilon transitions, including start itself.
func (n *NFA[E]) EpsilonClosure(start string) map[string]bool {
	return n.EpsilonClosureOfSet(map[string]bool{start: true})
}

// EpsilonClosureOfSet returns the epsilon-closure of a whole set of
// states.
func (n *NFA[E]) EpsilonClosureOfSet(states map[string]bool) map[string]bool {
	closure := map[string]bool{}
	var worklist []string
	for s := range states {
		closure[s] = true
		worklist = append(worklist, s)
	}
	for len(worklist) > 0 {
		cur := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, next := range n.States[cur].Epsilons {
			if !closure[next] {
				closure[next] = true
				worklist = append(worklist, next)
			}
		}
	}
	return closure
}

// MOVE returns the set of states reachable from any state in "from" on a
// single transition on input (no epsilon-closure applied).
func (n *NFA[E]) MOVE(from map[string]bool, input string) map[string]bool {
	out := map[string]bool{}
	for s := range from {
		for _, next := range n.States[s].Transitions[input] {
			out[next] = true
		}
	}
	return out
}

// InputSymbols returns every non-epsilon input symbol used anywhere in
// the NFA, sorted.
func (n *NFA[E]) InputSymbols() []string {
	set := map[string]bool{}
	for _, s := range n.States {
		for in := range s.Transitions {
			set[in] = true
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// setKey renders a set of state names as a canonical, deterministic
// string key, used to name DFA states produced by subset construction.
func setKey(s map[string]bool) string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return "{" + strings.Join(names, ",") + "}"
}

// ToDFA converts n to an equivalent DFA via subset construction. When two
// or more NFA accepting states with different values end up merged into
// one DFA state, merge picks among them to produce the single value
// attached to that DFA state (e.g. earliest-declaration-wins for lexer
// patterns).
func (n *NFA[E]) ToDFA(merge func(values []E) E) *DFA[E] {
	d := NewDFA[E]()

	startSet := n.EpsilonClosure(n.Start)
	startKey := setKey(startSet)
	d.AddState(startKey)
	d.Start = startKey

	seen := map[string]map[string]bool{startKey: startSet}
	worklist := []string{startKey}

	for len(worklist) > 0 {
		curKey := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		curSet := seen[curKey]

		var values []E
		for s := range curSet {
			if n.States[s].Accepting {
				values = append(values, n.States[s].Value)
			}
		}
		if len(values) > 0 {
			d.SetValue(curKey, merge(values))
		}

		for _, input := range n.InputSymbols() {
			moved := n.MOVE(curSet, input)
			if len(moved) == 0 {
				continue
			}
			closure := n.EpsilonClosureOfSet(moved)
			key := setKey(closure)
			if _, exists := seen[key]; !exists {
				seen[key] = closure
				d.AddState(key)
				worklist = append(worklist, key)
			}
			_ = d.AddTransition(curKey, input, key)
		}
	}

	return d
}
