package grammar

import (
	"strings"

	"github.com/thistlearc/parsegen/perr"
	"github.com/thistlearc/parsegen/types"
)

// Grammar is an in-memory context-free grammar: a set of declared
// terminals, an ordered set of rules (one per non-terminal, each holding
// its alternative productions), scanner configurations, and a start
// symbol. The zero value is an empty grammar ready to accept AddTerm and
// AddRule calls.
type Grammar struct {
	terms     map[string]TerminalDef
	termOrder []string

	rules     map[string]Rule
	ruleOrder []string

	scanners     map[string]ScannerConfig
	scannerOrder []string

	start string
}

// AddTerm declares a terminal. Calling AddTerm twice for the same id
// overwrites the earlier declaration but preserves its original position
// in term order.
func (g *Grammar) AddTerm(id string, class types.TokenClass) {
	g.addTermDef(TerminalDef{ID: id, Kind: KindLegacy, Class: class, ScannerStates: []string{"INITIAL"}})
}

// AddTermDef declares a terminal with a full definition (pattern, kind,
// scanner states).
func (g *Grammar) AddTermDef(def TerminalDef) {
	g.addTermDef(def)
}

func (g *Grammar) addTermDef(def TerminalDef) {
	if g.terms == nil {
		g.terms = map[string]TerminalDef{}
	}
	if _, exists := g.terms[def.ID]; !exists {
		g.termOrder = append(g.termOrder, def.ID)
	}
	g.terms[def.ID] = def
}

// AddRule adds prod as one of the alternatives for nonTerminal, declaring
// nonTerminal if this is its first production. The first non-terminal
// ever added becomes the start symbol unless SetStart is called
// explicitly afterward.
func (g *Grammar) AddRule(nonTerminal string, prod Production) {
	if g.rules == nil {
		g.rules = map[string]Rule{}
	}
	r, exists := g.rules[nonTerminal]
	if !exists {
		r = Rule{NonTerminal: nonTerminal}
		g.ruleOrder = append(g.ruleOrder, nonTerminal)
		if g.start == "" {
			g.start = nonTerminal
		}
	}
	r.Productions = append(r.Productions, prod)
	g.rules[nonTerminal] = r
}

// SetStart explicitly sets the grammar's start symbol.
func (g *Grammar) SetStart(nt string) {
	g.start = nt
}

// StartSymbol returns the grammar's start non-terminal.
func (g *Grammar) StartSymbol() string {
	return g.start
}

// AddScanner declares a named scanner state.
func (g *Grammar) AddScanner(sc ScannerConfig) {
	if g.scanners == nil {
		g.scanners = map[string]ScannerConfig{}
	}
	if _, exists := g.scanners[sc.Name]; !exists {
		g.scannerOrder = append(g.scannerOrder, sc.Name)
	}
	g.scanners[sc.Name] = sc
}

// Rule returns the rule for name, or a Rule with a nil Productions slice
// if name has no declared productions.
func (g *Grammar) Rule(name string) Rule {
	return g.rules[name]
}

// HasRule reports whether name is a declared non-terminal.
func (g *Grammar) HasRule(name string) bool {
	_, ok := g.rules[name]
	return ok
}

// NonTerminals returns the grammar's non-terminals in first-declaration
// order.
func (g *Grammar) NonTerminals() []string {
	out := make([]string, len(g.ruleOrder))
	copy(out, g.ruleOrder)
	return out
}

// Terminals returns the grammar's declared terminal IDs in
// first-declaration order.
func (g *Grammar) Terminals() []string {
	out := make([]string, len(g.termOrder))
	copy(out, g.termOrder)
	return out
}

// GetOrderedTerminals returns each declared terminal's definition in
// first-appearance order, per the ordered-terminals operation used by the
// lexer builder.
func (g *Grammar) GetOrderedTerminals() []TerminalDef {
	out := make([]TerminalDef, len(g.termOrder))
	for i, id := range g.termOrder {
		out[i] = g.terms[id]
	}
	return out
}

// TermDef returns the declaration for terminal id.
func (g *Grammar) TermDef(id string) (TerminalDef, bool) {
	d, ok := g.terms[id]
	return d, ok
}

// IsTerminal reports whether sym is a declared terminal.
func (g *Grammar) IsTerminal(sym string) bool {
	_, ok := g.terms[sym]
	return ok
}

// IsNonTerminal reports whether sym is a declared non-terminal.
func (g *Grammar) IsNonTerminal(sym string) bool {
	_, ok := g.rules[sym]
	return ok
}

// Scanners returns the grammar's scanner configurations in declaration
// order. A grammar without any %scanner block has exactly one, "INITIAL";
// once %scanner blocks are declared, only those blocks are listed, and
// "INITIAL" is listed only if a block declares it, at that block's
// position.
func (g *Grammar) Scanners() []ScannerConfig {
	out := make([]ScannerConfig, len(g.scannerOrder))
	for i, name := range g.scannerOrder {
		out[i] = g.scanners[name]
	}
	return out
}

// AllProductions returns every (non-terminal, production index, Production)
// triple in the grammar, in non-terminal declaration order then
// alternative order; this is the canonical enumeration used to assign
// production indices across the whole grammar (used by LALR tables and
// the semantic dispatcher).
type IndexedProduction struct {
	NonTerminal string
	AltIndex    int
	Prod        Production
	Index       int
}

func (g *Grammar) AllProductions() []IndexedProduction {
	var out []IndexedProduction
	idx := 0
	for _, nt := range g.ruleOrder {
		for ai, p := range g.rules[nt].Productions {
			out = append(out, IndexedProduction{NonTerminal: nt, AltIndex: ai, Prod: p, Index: idx})
			idx++
		}
	}
	return out
}

// Validate checks the well-formedness invariants required before any
// analysis runs: a start symbol exists, every non-terminal referenced on
// some rhs has at least one production, every terminal referenced on some
// rhs was declared, every non-terminal is reachable from the start symbol
// and productive, and (for LL mode, where prediction cannot handle it)
// the grammar is free of left recursion.
func (g *Grammar) Validate(mode ParserMode) error {
	if g.start == "" {
		return perr.NewGrammarError("grammar has no start symbol")
	}
	if !g.HasRule(g.start) {
		return perr.NewGrammarError("start symbol %q has no productions", g.start)
	}
	for _, nt := range g.ruleOrder {
		for _, p := range g.rules[nt].Productions {
			if p.IsEpsilon() {
				continue
			}
			for _, sym := range p {
				if g.IsTerminal(sym) || g.IsNonTerminal(sym) || IsScannerSwitch(sym) {
					continue
				}
				return perr.NewGrammarError("rule %q references undefined symbol %q", nt, sym)
			}
		}
	}

	reachable := g.Reachable()
	var unreached []string
	for _, nt := range g.ruleOrder {
		if !reachable[nt] {
			unreached = append(unreached, nt)
		}
	}
	if len(unreached) > 0 {
		return &UnreachableNonTerminalsError{NonTerminals: unreached}
	}

	productive := g.Productive()
	var unproductive []string
	for _, nt := range g.ruleOrder {
		if !productive[nt] {
			unproductive = append(unproductive, nt)
		}
	}
	if len(unproductive) > 0 {
		return &NonProductiveNonTerminalsError{NonTerminals: unproductive}
	}

	if mode == ModeLLK {
		if leftRecursive := g.LeftRecursive(); len(leftRecursive) > 0 {
			return &LeftRecursionError{NonTerminals: leftRecursive}
		}
	}

	return nil
}

// HasScannerSwitches reports whether any production references an inline
// scanner-switch pseudo-symbol (%sc/%push/%pop). LALR(1) table
// construction rejects such grammars: scanner switching is defined only
// for the LL(k) runtime, which has a dedicated ScannerSwitch stack
// symbol; the LR runtime has no equivalent.
func (g *Grammar) HasScannerSwitches() bool {
	for _, nt := range g.ruleOrder {
		for _, p := range g.rules[nt].Productions {
			for _, sym := range p {
				if IsScannerSwitch(sym) {
					return true
				}
			}
		}
	}
	return false
}

// Copy returns a Grammar with its own backing maps and slices,
// independent of g.
func (g *Grammar) Copy() Grammar {
	cp := Grammar{start: g.start}
	cp.terms = make(map[string]TerminalDef, len(g.terms))
	for k, v := range g.terms {
		cp.terms[k] = v
	}
	cp.termOrder = append([]string{}, g.termOrder...)

	cp.rules = make(map[string]Rule, len(g.rules))
	for k, v := range g.rules {
		cp.rules[k] = v.Copy()
	}
	cp.ruleOrder = append([]string{}, g.ruleOrder...)

	cp.scanners = make(map[string]ScannerConfig, len(g.scanners))
	for k, v := range g.scanners {
		cp.scanners[k] = v
	}
	cp.scannerOrder = append([]string{}, g.scannerOrder...)

	return cp
}

// String renders every rule in declaration order, one per line.
func (g *Grammar) String() string {
	var sb strings.Builder
	for _, nt := range g.ruleOrder {
		sb.WriteString(g.rules[nt].String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// augmentedStart is the synthetic non-terminal added by Augmented to seed
// LR(0)/LR(1) item construction.
const augmentedStart = "S'"

// Augmented returns a copy of g with a new start rule S' -> start added,
// as required to seed canonical LR item-set construction.
func (g *Grammar) Augmented() Grammar {
	cp := g.Copy()
	name := augmentedStart
	for cp.HasRule(name) {
		name += "'"
	}
	newRules := map[string]Rule{name: {NonTerminal: name, Productions: []Production{{cp.start}}}}
	for k, v := range cp.rules {
		newRules[k] = v
	}
	cp.rules = newRules
	cp.ruleOrder = append([]string{name}, cp.ruleOrder...)
	cp.start = name
	return cp
}

func nextAuxName(base string, existing map[string]bool) string {
	suffix := "-P"
	candidate := base + suffix
	for existing[candidate] {
		suffix += "'"
		candidate = base + suffix
	}
	return candidate
}

func existingNonTerminalSet(g *Grammar) map[string]bool {
	out := map[string]bool{}
	for _, nt := range g.ruleOrder {
		out[nt] = true
	}
	return out
}
