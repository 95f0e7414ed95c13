// Package lex builds a scanner from a grammar's terminal declarations and
// exposes it as a types.TokenStream: a lazily-filled lookahead buffer over
// a hybrid matcher (a subset-constructed DFA for literal terminals, a
// regex per pattern otherwise), with a scanner-state stack the parser
// drives through inline %sc/%push/%pop directives, and comment buffering
// kept in token-number order regardless of which channel produced a token.
package lex

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/thistlearc/parsegen/automaton"
	"github.com/thistlearc/parsegen/grammar"
	"github.com/thistlearc/parsegen/perr"
	"github.com/thistlearc/parsegen/types"
)

type actionKind int

const (
	actionScan actionKind = iota
	actionDiscard
	actionComment
)

type lexAction struct {
	kind  actionKind
	class types.TokenClass
}

// stateProgram is the compiled matcher for one scanner state. Literal
// terminals (legacy and raw kinds) are compiled into a single automaton:
// one rune-chain branch per literal, joined by epsilon edges from a shared
// start state and subset-constructed down to a DFA whose accepting states
// carry the action index (earliest-declared wins when two literals merge).
// Regex-kind terminals and the comment/whitespace patterns each keep their
// own anchored regexp, tried side by side. Across both matchers the
// longest match wins, with equal lengths broken by declaration order, the
// classic lex discipline. The regexes are deliberately not fused into one
// alternation: Go's regexp picks the leftmost-first alternative, not the
// longest, which would let an early-declared keyword shadow a longer
// identifier match.
type stateProgram struct {
	literals *automaton.DFA[int]

	patterns    []*regexp.Regexp
	patternActs []int

	actions []lexAction
}

// match finds the highest-priority match at the start of text: the
// longest match among the literal DFA and every regex pattern, and among
// equal-length matches the one declared earliest (lowest action index).
func (sp *stateProgram) match(text string) (actionIdx int, lexeme string, ok bool) {
	best, bestLen := -1, -1
	if idx, length, lok := sp.matchLiteral(text); lok {
		best, bestLen = idx, length
	}
	for i, re := range sp.patterns {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		length := loc[1]
		act := sp.patternActs[i]
		if length > bestLen || (length == bestLen && act < best) {
			bestLen, best = length, act
		}
	}
	if best < 0 {
		return 0, "", false
	}
	return best, text[:bestLen], true
}

// matchLiteral walks the literal DFA over text and returns the action
// index and byte length of the longest prefix ending in an accepting
// state.
func (sp *stateProgram) matchLiteral(text string) (actionIdx, length int, ok bool) {
	if sp.literals == nil {
		return 0, 0, false
	}
	state := sp.literals.Start
	consumed := 0
	best, bestLen := -1, 0
	for _, r := range text {
		next, hasNext := sp.literals.Next(state, string(r))
		if !hasNext {
			break
		}
		state = next
		consumed += len(string(r))
		if st := sp.literals.States[state]; st.Accepting {
			best, bestLen = st.Value, consumed
		}
	}
	if best < 0 {
		return 0, 0, false
	}
	return best, bestLen, true
}

// literalStart is the shared entry state of a state program's literal NFA;
// each literal's rune chain hangs off it by an epsilon edge.
const literalStart = "start"

// buildLiteralDFA compiles the literal terminals active in one scanner
// state into a DFA: an alternation NFA (epsilon edge per branch) run
// through subset construction, with merged accepting states resolved to
// the earliest-declared action index.
func buildLiteralDFA(lits map[int]string) *automaton.DFA[int] {
	if len(lits) == 0 {
		return nil
	}

	acts := make([]int, 0, len(lits))
	for act := range lits {
		acts = append(acts, act)
	}
	sort.Ints(acts)

	n := automaton.NewNFA[int]()
	n.AddState(literalStart)
	for _, act := range acts {
		entry := fmt.Sprintf("%d:0", act)
		n.AddState(entry)
		n.AddEpsilon(literalStart, entry)
		prev := entry
		for j, r := range []rune(lits[act]) {
			name := fmt.Sprintf("%d:%d", act, j+1)
			n.AddState(name)
			n.AddTransition(prev, string(r), name)
			prev = name
		}
		n.SetValue(prev, act)
	}

	return n.ToDFA(func(values []int) int {
		min := values[0]
		for _, v := range values[1:] {
			if v < min {
				min = v
			}
		}
		return min
	})
}

// Lexer is a compiled scanner: one stateProgram per scanner state declared
// in the source grammar.
type Lexer struct {
	programs map[string]*stateProgram
	start    string
}

// Build compiles a Lexer from g's declared scanner states and terminals.
// Each scanner state's program matches every terminal active in that
// state, plus the state's line/block comment patterns (as actionComment)
// and, governed by the state's AutoWSOff/AutoNewlineOff settings,
// trailing whitespace- and newline-discard patterns.
func Build(g *grammar.Grammar) (*Lexer, error) {
	scanners := g.Scanners()
	if len(scanners) == 0 {
		scanners = []grammar.ScannerConfig{{Name: "INITIAL"}}
	}
	termsByState := map[string][]grammar.TerminalDef{}
	for _, def := range g.GetOrderedTerminals() {
		states := def.ScannerStates
		if len(states) == 0 {
			states = []string{"INITIAL"}
		}
		for _, s := range states {
			termsByState[s] = append(termsByState[s], def)
		}
	}

	lx := &Lexer{programs: map[string]*stateProgram{}, start: scanners[0].Name}
	for _, sc := range scanners {
		prog, err := buildStateProgram(sc, termsByState[sc.Name])
		if err != nil {
			return nil, perr.WrapGrammarError(err, "building scanner state %q", sc.Name)
		}
		lx.programs[sc.Name] = prog
	}
	return lx, nil
}

func buildStateProgram(sc grammar.ScannerConfig, defs []grammar.TerminalDef) (*stateProgram, error) {
	sp := &stateProgram{}
	lits := map[int]string{}
	var regexSrcs []string

	addPattern := func(src string, act lexAction) {
		regexSrcs = append(regexSrcs, src)
		sp.patternActs = append(sp.patternActs, len(sp.actions))
		sp.actions = append(sp.actions, act)
	}

	for _, def := range defs {
		if def.Kind == grammar.KindRegex {
			addPattern(def.Pattern, lexAction{kind: actionScan, class: def.Class})
			continue
		}
		lits[len(sp.actions)] = def.Pattern
		sp.actions = append(sp.actions, lexAction{kind: actionScan, class: def.Class})
	}

	commentClass := types.NewTokenClass("COMMENT", "comment")
	if sc.LineComment != "" {
		addPattern(regexp.QuoteMeta(sc.LineComment)+".*", lexAction{kind: actionComment, class: commentClass})
	}
	if sc.BlockCommentL != "" && sc.BlockCommentR != "" {
		addPattern(regexp.QuoteMeta(sc.BlockCommentL)+`[\s\S]*?`+regexp.QuoteMeta(sc.BlockCommentR), lexAction{kind: actionComment, class: commentClass})
	}
	// Whitespace and newline discarding are separately toggled, so a
	// grammar can keep newlines significant while still skipping spaces.
	if !sc.AutoWSOff {
		addPattern(`[ \t\v\f\r]+`, lexAction{kind: actionDiscard})
	}
	if !sc.AutoNewlineOff {
		addPattern(`\r?\n`, lexAction{kind: actionDiscard})
	}

	sp.literals = buildLiteralDFA(lits)

	sp.patterns = make([]*regexp.Regexp, len(regexSrcs))
	for i, src := range regexSrcs {
		re, err := regexp.Compile("^(?:" + src + ")")
		if err != nil {
			return nil, err
		}
		sp.patterns[i] = re
	}
	return sp, nil
}

// scannerSwitcher applies %on-directive transitions as tokens are scanned:
// matching a governed terminal changes the active scanner state without any
// inline %sc/%push/%pop in the production itself. The %enter transitions
// form a deterministic automaton over scanner states keyed by terminal id;
// %push and %pop act on the stream's scanner stack directly.
type scannerSwitcher struct {
	enters *automaton.DFA[string]
	pushes map[string]string
	pops   map[string]bool
}

func buildSwitcher(g *grammar.Grammar, transitions []grammar.ScannerTransition) (*scannerSwitcher, error) {
	sw := &scannerSwitcher{
		enters: automaton.NewDFA[string](),
		pushes: map[string]string{},
		pops:   map[string]bool{},
	}

	names := []string{}
	seen := map[string]bool{}
	for _, sc := range g.Scanners() {
		names = append(names, sc.Name)
		seen[sc.Name] = true
	}
	if !seen["INITIAL"] {
		names = append(names, "INITIAL")
	}
	for _, n := range names {
		sw.enters.AddState(n)
		sw.enters.SetValue(n, n)
	}

	for _, tr := range transitions {
		for _, term := range tr.Terminals {
			switch {
			case tr.Enter != "":
				// %on applies regardless of the state the terminal was
				// matched in, so every state gets the same edge.
				for _, from := range names {
					if err := sw.enters.AddTransition(from, term, tr.Enter); err != nil {
						return nil, perr.WrapGrammarError(err, "conflicting %%on transitions for terminal %q", term)
					}
				}
			case tr.Push != "":
				sw.pushes[term] = tr.Push
			case tr.Pop:
				sw.pops[term] = true
			}
		}
	}
	return sw, nil
}
