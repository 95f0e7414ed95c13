package parse

import (
	"fmt"

	"github.com/dekarrin/rosed"
	"github.com/thistlearc/parsegen/automaton"
	"github.com/thistlearc/parsegen/grammar"
	"github.com/thistlearc/parsegen/perr"
)

// LRParseTable is the action/goto table an LRParser consults, built by
// NewLRParseTable from a grammar's LALR(1) viable-prefix automaton.
type LRParseTable struct {
	g       *grammar.Grammar
	states  []automaton.LALRItemSet
	actions []map[string]LRAction
	gotos   []map[string]int
}

// Initial returns the LR parser's start state.
func (t *LRParseTable) Initial() int { return 0 }

// Action returns the action for state on the given terminal ID (or "$"
// for end of input), LRError if no entry exists.
func (t *LRParseTable) Action(state int, symbol string) LRAction {
	if act, ok := t.actions[state][symbol]; ok {
		return act
	}
	return LRAction{Type: LRError}
}

// Goto returns the state reached from state on non-terminal symbol.
func (t *LRParseTable) Goto(state int, symbol string) (int, error) {
	if target, ok := t.gotos[state][symbol]; ok {
		return target, nil
	}
	return 0, perr.NewGrammarError("no GOTO entry for state %d on %q", state, symbol)
}

// ExpectedTerminals returns every terminal ID for which state has a
// non-error action, used to build "expected X, Y, or Z" diagnostics.
func (t *LRParseTable) ExpectedTerminals(state int) []string {
	var out []string
	for sym, act := range t.actions[state] {
		if act.Type != LRError {
			out = append(out, sym)
		}
	}
	return out
}

func actionsEqual(a, b LRAction) bool {
	return a.Type == b.Type && a.Symbol == b.Symbol && a.State == b.State && a.Production.Equal(b.Production)
}

// NewLRParseTable builds the LALR(1) action/goto table for g. Grammars
// containing inline scanner-switch directives are rejected: the LR
// runtime has no ScannerSwitch stack symbol, unlike the LL(k) runtime,
// so scanner switching is an LL(k)-only feature.
func NewLRParseTable(g *grammar.Grammar) (*LRParseTable, error) {
	if g.HasScannerSwitches() {
		return nil, perr.NewGrammarError("LALR(1) grammars may not contain inline scanner-switch directives (%%sc/%%push/%%pop); they are supported only in LL(k) mode")
	}

	states, err := automaton.NewLALR1ViablePrefixDFA(*g)
	if err != nil {
		return nil, err
	}

	prodIndex := map[string]int{}
	for _, ip := range g.AllProductions() {
		prodIndex[ip.NonTerminal+"\x00"+ip.Prod.String()] = ip.Index
	}

	t := &LRParseTable{
		g:       g,
		states:  states,
		actions: make([]map[string]LRAction, len(states)),
		gotos:   make([]map[string]int, len(states)),
	}

	var conflict error
	set := func(state int, sym string, act LRAction) {
		if existing, ok := t.actions[state][sym]; ok && !actionsEqual(existing, act) {
			if conflict == nil {
				conflict = perr.WrapGrammarError(makeLRConflictError(existing, act, sym), "LALR(1) table construction failed in state %d", state)
			}
			return
		}
		t.actions[state][sym] = act
	}

	for i, st := range states {
		t.actions[i] = map[string]LRAction{}
		t.gotos[i] = map[string]int{}

		for sym, target := range st.Transitions {
			if g.IsNonTerminal(sym) {
				t.gotos[i][sym] = target
				continue
			}
			set(i, sym, LRAction{Type: LRShift, State: target})
		}

		for _, it := range st.Items {
			if len(it.Right) != 0 {
				continue
			}
			if !g.IsNonTerminal(it.NonTerminal) {
				set(i, "$", LRAction{Type: LRAccept})
				continue
			}
			prod := grammar.Production(it.Production())
			if len(prod) == 0 {
				// Item construction strips the epsilon marker from empty
				// right-hand sides; restore it so the production-index
				// lookup and the reduce action agree with AllProductions.
				prod = grammar.Production{grammar.Epsilon[0]}
			}
			idx := prodIndex[it.NonTerminal+"\x00"+prod.String()]
			set(i, it.Lookahead, LRAction{Type: LRReduce, Symbol: it.NonTerminal, Production: prod, ProdIndex: idx})
		}
	}

	if conflict != nil {
		return nil, conflict
	}
	return t, nil
}

// String renders the full action/goto table, one row per state, in the
// same fixed-width table shape as the lookahead-DFA dump.
func (t *LRParseTable) String() string {
	terms := append([]string{}, t.g.Terminals()...)
	terms = append(terms, "$")
	nonTerms := t.g.NonTerminals()

	header := []string{"S", "|"}
	header = append(header, terms...)
	header = append(header, "|")
	header = append(header, nonTerms...)

	data := [][]string{header}
	for i := range t.actions {
		row := []string{fmt.Sprintf("%d", i), "|"}
		for _, term := range terms {
			act := t.Action(i, term)
			cell := ""
			switch act.Type {
			case LRAccept:
				cell = "acc"
			case LRReduce:
				cell = fmt.Sprintf("r%s -> %s", act.Symbol, act.Production.String())
			case LRShift:
				cell = fmt.Sprintf("s%d", act.State)
			}
			row = append(row, cell)
		}
		row = append(row, "|")
		for _, nt := range nonTerms {
			cell := ""
			if target, err := t.Goto(i, nt); err == nil {
				cell = fmt.Sprintf("%d", target)
			}
			row = append(row, cell)
		}
		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

// LRTableSnapshot is the serializable form of an LRParseTable's action/goto
// tables, used by the gen package's table cache. The LALR(1) viable-prefix
// item sets themselves are not retained: they are only scaffolding for
// constructing the tables, not needed to drive a parse.
type LRTableSnapshot struct {
	Actions []map[string]LRAction
	Gotos   []map[string]int
}

// Snapshot captures t's action/goto tables for serialization.
func (t *LRParseTable) Snapshot() LRTableSnapshot {
	return LRTableSnapshot{Actions: t.actions, Gotos: t.gotos}
}

// TableFromSnapshot rebuilds an LRParseTable from a previously-captured
// snapshot and the grammar it was built for; the grammar must be the same
// one (or an equivalent copy) the snapshot was taken against, since String()
// and ExpectedTerminals rely on its terminal/non-terminal lists.
func TableFromSnapshot(g *grammar.Grammar, snap LRTableSnapshot) *LRParseTable {
	return &LRParseTable{g: g, actions: snap.Actions, gotos: snap.Gotos}
}
