package automaton

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dekarrin/rosed"
	"github.com/thistlearc/parsegen/grammar"
	"github.com/thistlearc/parsegen/perr"
)

// LookaheadDFA predicts which alternative of a non-terminal to expand
// given up to K lookahead tokens, built from the per-alternative
// distinguishing k-tuples a grammar.KResult carries.
type LookaheadDFA struct {
	// K is the lookahead depth this DFA consults.
	K int

	// Prod0 is the default production chosen when state 0 is itself
	// accepting with no outgoing transitions (a unique unconditional
	// alternative), or -1 otherwise.
	Prod0 int

	states []lookaheadState
}

type lookaheadState struct {
	// transitions is nil for an early-accepting state (the whole
	// subtree beneath it belongs to one production, so no further
	// lookahead can change the answer).
	transitions map[string]int
	prodOnEntry int
}

// StateCount returns the number of states in d, state 0 being the start
// state.
func (d *LookaheadDFA) StateCount() int { return len(d.states) }

// ProdOnEntry returns the production tagging state s, or -1 if s is not
// accepting.
func (d *LookaheadDFA) ProdOnEntry(s int) int { return d.states[s].prodOnEntry }

// Predict walks tokens (up to d.K of them) from state 0 and returns the
// production index chosen: advance on
// a matching transition, and stop as soon as either no transition exists
// for the current token or the current state has no further transitions
// (it is accepting). Returns -1 if prediction fails outright.
func (d *LookaheadDFA) Predict(tokens []string) int {
	state := 0
	for j := 0; j < d.K; j++ {
		if d.states[state].transitions == nil {
			return d.states[state].prodOnEntry
		}
		var tok string
		if j < len(tokens) {
			tok = tokens[j]
		}
		next, ok := d.states[state].transitions[tok]
		if !ok {
			return d.states[state].prodOnEntry
		}
		state = next
	}
	return d.states[state].prodOnEntry
}

// tagNode is one node of the uncompacted trie built from a non-terminal's
// per-alternative distinguishing k-tuples: children keyed by terminal,
// and leafProd set when a tuple was inserted ending exactly at this node.
type tagNode struct {
	children map[string]*tagNode
	leafProd int
}

func newTagNode() *tagNode {
	return &tagNode{children: map[string]*tagNode{}, leafProd: -1}
}

// insertTagged inserts tuple into the trie rooted at root, tagging the
// node it terminates at with prod. It reports an error if any node along
// the path - including the terminal one - is already tagged as a leaf for
// a different production, or if the terminal node already has children
// leading to another production's tuples: that node would have to simultaneously accept
// one alternative and keep transitioning toward another, which is exactly
// the decidability failure the lookahead search is supposed to rule out
// before a DFA is ever built from it.
func insertTagged(root *tagNode, tuple grammar.KTuple, prod int) error {
	n := root
	if n.leafProd != -1 && n.leafProd != prod {
		return perr.NewGrammarError("ambiguous lookahead: tuple %s conflicts with shorter tuple already tagging production %d", tuple, n.leafProd)
	}
	for _, sym := range tuple {
		child, ok := n.children[sym]
		if !ok {
			child = newTagNode()
			n.children[sym] = child
		}
		n = child
		if n.leafProd != -1 && n.leafProd != prod {
			return perr.NewGrammarError("ambiguous lookahead: tuple %s conflicts with shorter tuple already tagging production %d", tuple, n.leafProd)
		}
	}
	for _, child := range n.children {
		if cp, ok := uniformProd(child); !ok || cp != prod {
			return perr.NewGrammarError("ambiguous lookahead: tuple %s is a prefix of a longer tuple tagging another production", tuple)
		}
	}
	n.leafProd = prod
	return nil
}

// uniformProd reports whether every leaf in n's subtree (including n
// itself) is tagged with the same production, returning that production
// and true if so.
func uniformProd(n *tagNode) (int, bool) {
	prod := n.leafProd
	set := prod != -1
	for _, child := range n.children {
		cp, ok := uniformProd(child)
		if !ok {
			return -1, false
		}
		if !set {
			prod, set = cp, true
		} else if cp != prod {
			return -1, false
		}
	}
	if !set {
		return -1, false
	}
	return prod, true
}

// NewLookaheadDFA builds the lookahead predictor for one non-terminal from
// its FindK result: insert each alternative's distinguishing
// tuples into a trie, early-accept any subtree that belongs to a single
// production, then minimize by hash-consing states bottom-up so that two
// subtrees with identical transitions and prodOnEntry collapse into one
// state automatically.
func NewLookaheadDFA(result grammar.KResult) (*LookaheadDFA, error) {
	root := newTagNode()
	for prod, tuples := range result.Tuples {
		for _, t := range tuples {
			if err := insertTagged(root, t, prod); err != nil {
				return nil, perr.WrapGrammarError(err, "building lookahead DFA for non-terminal %q", result.NonTerminal)
			}
		}
	}

	var states []lookaheadState
	memo := map[string]int{}

	var build func(n *tagNode) int
	build = func(n *tagNode) int {
		if prod, uniform := uniformProd(n); uniform {
			sig := "U:" + strconv.Itoa(prod)
			if id, ok := memo[sig]; ok {
				return id
			}
			id := len(states)
			states = append(states, lookaheadState{prodOnEntry: prod})
			memo[sig] = id
			return id
		}

		childIDs := make(map[string]int, len(n.children))
		for sym, child := range n.children {
			childIDs[sym] = build(child)
		}

		keys := make([]string, 0, len(childIDs))
		for sym := range childIDs {
			keys = append(keys, sym)
		}
		sort.Strings(keys)

		var sb strings.Builder
		fmt.Fprintf(&sb, "N:%d|", n.leafProd)
		for _, sym := range keys {
			fmt.Fprintf(&sb, "%s=%d;", sym, childIDs[sym])
		}
		sig := sb.String()
		if id, ok := memo[sig]; ok {
			return id
		}
		id := len(states)
		states = append(states, lookaheadState{transitions: childIDs, prodOnEntry: n.leafProd})
		memo[sig] = id
		return id
	}

	rootID := build(root)
	final := renumberFromRoot(states, rootID)

	prod0 := -1
	if final[0].transitions == nil && final[0].prodOnEntry >= 0 {
		prod0 = final[0].prodOnEntry
	}

	return &LookaheadDFA{K: result.K, Prod0: prod0, states: final}, nil
}

// renumberFromRoot reassigns state ids in breadth-first visit order from
// root so the returned slice's index 0 is always the start state, and
// remaps every transition target accordingly.
func renumberFromRoot(states []lookaheadState, root int) []lookaheadState {
	newID := map[int]int{}
	order := []int{root}
	newID[root] = 0
	for i := 0; i < len(order); i++ {
		cur := order[i]
		keys := make([]string, 0, len(states[cur].transitions))
		for sym := range states[cur].transitions {
			keys = append(keys, sym)
		}
		sort.Strings(keys)
		for _, sym := range keys {
			tgt := states[cur].transitions[sym]
			if _, ok := newID[tgt]; !ok {
				newID[tgt] = len(order)
				order = append(order, tgt)
			}
		}
	}

	out := make([]lookaheadState, len(order))
	for i, old := range order {
		s := states[old]
		if s.transitions == nil {
			out[i] = lookaheadState{prodOnEntry: s.prodOnEntry}
			continue
		}
		trans := make(map[string]int, len(s.transitions))
		for sym, tgt := range s.transitions {
			trans[sym] = newID[tgt]
		}
		out[i] = lookaheadState{transitions: trans, prodOnEntry: s.prodOnEntry}
	}
	return out
}

// String renders the DFA's states and transitions as a fixed-width table,
// in the same shape as the LALR action/goto table dump.
func (d *LookaheadDFA) String() string {
	data := [][]string{{"State", "Prod", "Transitions"}}
	for i, st := range d.states {
		keys := make([]string, 0, len(st.transitions))
		for sym := range st.transitions {
			keys = append(keys, sym)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for j, sym := range keys {
			parts[j] = fmt.Sprintf("%s -> %d", sym, st.transitions[sym])
		}
		data = append(data, []string{
			strconv.Itoa(i),
			strconv.Itoa(st.prodOnEntry),
			strings.Join(parts, ", "),
		})
	}
	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

// LookaheadDFASnapshot is the serializable form of a LookaheadDFA, used by
// the gen package's table cache.
type LookaheadDFASnapshot struct {
	K      int
	Prod0  int
	States []LookaheadStateSnapshot
}

// LookaheadStateSnapshot is one state of a LookaheadDFASnapshot. Transitions
// is nil for an accepting state with no further lookahead to consult.
type LookaheadStateSnapshot struct {
	Transitions map[string]int
	ProdOnEntry int
}

// Snapshot captures d's states for serialization.
func (d *LookaheadDFA) Snapshot() LookaheadDFASnapshot {
	snap := LookaheadDFASnapshot{K: d.K, Prod0: d.Prod0, States: make([]LookaheadStateSnapshot, len(d.states))}
	for i, s := range d.states {
		snap.States[i] = LookaheadStateSnapshot{Transitions: s.transitions, ProdOnEntry: s.prodOnEntry}
	}
	return snap
}

// DFAFromSnapshot rebuilds a LookaheadDFA from a previously-captured
// snapshot, skipping the trie-build/minimization NewLookaheadDFA performs.
func DFAFromSnapshot(snap LookaheadDFASnapshot) *LookaheadDFA {
	states := make([]lookaheadState, len(snap.States))
	for i, s := range snap.States {
		states[i] = lookaheadState{transitions: s.Transitions, prodOnEntry: s.ProdOnEntry}
	}
	return &LookaheadDFA{K: snap.K, Prod0: snap.Prod0, states: states}
}

// ExpectedPaths enumerates every root-to-accept path through d, each
// returned as the sequence of terminal ids labeling its transitions. Used
// by error recovery to re-derive the "expected" strings after a
// prediction failure. d is acyclic (states are built bottom-up from a
// finite trie) so a plain depth-first walk terminates.
func (d *LookaheadDFA) ExpectedPaths() [][]string {
	var out [][]string
	var walk func(state int, path []string)
	walk = func(state int, path []string) {
		st := d.states[state]
		if st.transitions == nil {
			if st.prodOnEntry >= 0 {
				cp := make([]string, len(path))
				copy(cp, path)
				out = append(out, cp)
			}
			return
		}
		keys := make([]string, 0, len(st.transitions))
		for sym := range st.transitions {
			keys = append(keys, sym)
		}
		sort.Strings(keys)
		for _, sym := range keys {
			walk(st.transitions[sym], append(path, sym))
		}
	}
	walk(0, nil)
	return out
}

// BuildLookaheadDFAs builds a LookaheadDFA for every non-terminal in
// results, the per-grammar entry point the LL(k) parser is driven from.
func BuildLookaheadDFAs(results map[string]grammar.KResult) (map[string]*LookaheadDFA, error) {
	out := make(map[string]*LookaheadDFA, len(results))
	for nt, res := range results {
		dfa, err := NewLookaheadDFA(res)
		if err != nil {
			return nil, err
		}
		out[nt] = dfa
	}
	return out, nil
}
