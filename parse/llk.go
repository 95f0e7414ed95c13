package parse

import (
	"github.com/thistlearc/parsegen/automaton"
	"github.com/thistlearc/parsegen/grammar"
	"github.com/thistlearc/parsegen/perr"
	"github.com/thistlearc/parsegen/types"
	"github.com/thistlearc/parsegen/util"
)

// llSymbolKind distinguishes the four kinds of symbol the predictive
// parser pushes onto its parse stack.
type llSymbolKind int

const (
	llTerminal llSymbolKind = iota
	llNonTerminal
	llScannerSwitch
	llEndOfProduction
)

type llStackSymbol struct {
	kind llSymbolKind

	// name is the terminal class id for llTerminal, or the non-terminal
	// name for llNonTerminal.
	name string

	// scKind/scTarget describe an llScannerSwitch entry: scKind is
	// "set", "push", or "pop"; scTarget is the target scanner state
	// ("" for pop).
	scKind, scTarget string

	// prodIndex identifies the production an llEndOfProduction marker
	// closes out, by grammar-wide index.
	prodIndex int
}

// LLKParser drives a predictive pushdown parse: a stack of
// terminals, non-terminals, scanner-switch directives, and
// end-of-production markers, with non-terminal expansion chosen by a
// per-non-terminal LookaheadDFA.
type LLKParser struct {
	g    *grammar.Grammar
	dfas map[string]*automaton.LookaheadDFA

	// prodIndex[nt][alt] is the grammar-wide production index for the
	// alt-th alternative of non-terminal nt, in the same order the
	// k-finder enumerated alternatives (and therefore the same order
	// LookaheadDFA.Predict's results must be looked up in).
	prodIndex map[string][]int

	// byIndex maps a grammar-wide production index back to its rhs, for
	// the EndOfProduction handler.
	byIndex map[int]grammar.Production
}

// NewLLKParser builds an LLKParser from g's lookahead DFAs. g must
// already have passed FindK successfully.
func NewLLKParser(g *grammar.Grammar, dfas map[string]*automaton.LookaheadDFA) *LLKParser {
	idx := map[string][]int{}
	byIndex := map[int]grammar.Production{}
	for _, ip := range g.AllProductions() {
		idx[ip.NonTerminal] = append(idx[ip.NonTerminal], ip.Index)
		byIndex[ip.Index] = ip.Prod
	}
	return &LLKParser{g: g, dfas: dfas, prodIndex: idx, byIndex: byIndex}
}

// Parse runs the predictive parse to completion, invoking actions at every
// reduction and returning the concrete syntax tree built alongside it.
// Recoverable syntax errors are repaired in place and parsing
// continues; it aborts only once recovery cannot make further progress or
// the error cap is reached.
func (p *LLKParser) Parse(stream types.TokenStream, actions SemanticActions, tree types.TreeConstruct) (*types.ParseTree, []*perr.SyntaxError, error) {
	var rec recoveryState

	values := util.Stack[any]{}
	stack := util.Stack[llStackSymbol]{Of: []llStackSymbol{
		{kind: llTerminal, name: types.TokenEndOfText.ID()},
		{kind: llNonTerminal, name: p.g.StartSymbol()},
	}}

	for {
		top := stack.Peek()

		switch top.kind {
		case llNonTerminal:
			dfa, ok := p.dfas[top.name]
			if !ok {
				return nil, rec.errors, perr.NewGrammarError("no lookahead DFA for non-terminal %q", top.name)
			}

			window, toks, err := lookaheadWindow(stream, dfa.K)
			if err != nil {
				return nil, rec.errors, err
			}
			toksAsIDs := make([]string, len(window))
			for i, c := range window {
				toksAsIDs[i] = c.ID()
			}

			alt := dfa.Predict(toksAsIDs)
			if alt < 0 {
				if err := p.recoverPrediction(stream, &rec, dfa, top.name, window, toks); err != nil {
					return nil, rec.errors, err
				}
				continue
			}

			prodIdx := p.prodIndex[top.name][alt]
			prod := p.g.Rule(top.name).Productions[alt]

			stack.Pop()
			p.pushProduction(&stack, top.name, prodIdx, prod, tree)

		case llTerminal:
			tok, err := stream.Lookahead(0)
			if err != nil {
				return nil, rec.errors, err
			}
			if tok.Class().ID() != top.name {
				expectedClass := p.classForTerminal(top.name)
				if err := p.recoverMismatch(stream, &rec, expectedClass, tok); err != nil {
					return nil, rec.errors, err
				}
				continue
			}

			consumed, err := stream.Consume()
			if err != nil {
				return nil, rec.errors, err
			}
			if err := p.forwardComments(stream, actions); err != nil {
				return nil, rec.errors, err
			}
			// The end-of-input sentinel is matched but never becomes a
			// tree leaf or a semantic value: no production's rhs ever
			// names it, so nothing would consume it from either stack.
			if consumed.Class().ID() == types.TokenEndOfText.ID() {
				stack.Pop()
				node := tree.Build()
				return node, rec.errors, nil
			}

			tree.AddToken(consumed)
			values.Push(consumed)
			stack.Pop()

		case llScannerSwitch:
			var err error
			switch top.scKind {
			case "set":
				err = stream.SwitchScanner(top.scTarget)
			case "push":
				err = stream.PushScanner(top.scTarget)
			case "pop":
				err = stream.PopScanner()
			}
			if err != nil {
				return nil, rec.errors, err
			}
			stack.Pop()

		case llEndOfProduction:
			stack.Pop()
			prod := p.productionByIndex(top.prodIndex)
			n := semanticChildCount(prod)
			children := make([]any, n)
			for i := n - 1; i >= 0; i-- {
				children[i] = values.Pop()
			}
			value, err := actions.CallSemanticAction(top.prodIndex, children)
			if err != nil {
				return nil, rec.errors, err
			}
			values.Push(value)
			tree.CloseNonTerminal(top.prodIndex)
		}
	}
}

// pushProduction opens the tree node for nt's chosen alternative and pushes
// its rhs symbols (plus a trailing EndOfProduction marker) onto stack in
// reverse order, so the leftmost symbol ends up on top.
func (p *LLKParser) pushProduction(stack *util.Stack[llStackSymbol], nt string, prodIdx int, prod grammar.Production, tree types.TreeConstruct) {
	tree.OpenNonTerminal(nt, semanticChildCount(prod))

	stack.Push(llStackSymbol{kind: llEndOfProduction, prodIndex: prodIdx})
	if prod.IsEpsilon() {
		return
	}
	for i := len(prod) - 1; i >= 0; i-- {
		stack.Push(p.symbolToStackEntry(prod[i]))
	}
}

// semanticChildCount returns how many values a production's reduction pops
// off the semantic-value stack: every rhs symbol except scanner-switch
// pseudo-symbols, which never push a value.
func semanticChildCount(prod grammar.Production) int {
	return len(prod.SemanticSymbols())
}

func (p *LLKParser) symbolToStackEntry(sym string) llStackSymbol {
	if grammar.IsScannerSwitch(sym) {
		kind, target := grammar.ScannerSwitchKind(sym)
		return llStackSymbol{kind: llScannerSwitch, scKind: kind, scTarget: target}
	}
	if p.g.IsNonTerminal(sym) {
		return llStackSymbol{kind: llNonTerminal, name: sym}
	}
	return llStackSymbol{kind: llTerminal, name: sym}
}

func (p *LLKParser) productionByIndex(idx int) grammar.Production {
	return p.byIndex[idx]
}

func (p *LLKParser) classForTerminal(id string) types.TokenClass {
	if id == types.TokenEndOfText.ID() {
		return types.TokenEndOfText
	}
	if def, ok := p.g.TermDef(id); ok && def.Class != nil {
		return def.Class
	}
	return types.MakeDefaultClass(id)
}

func (p *LLKParser) forwardComments(stream types.TokenStream, actions SemanticActions) error {
	comments, err := stream.DrainComments()
	if err != nil {
		return err
	}
	for _, c := range comments {
		actions.OnCommentParsed(c)
	}
	return nil
}

// recoverMismatch handles a T(t) stack symbol whose lookahead token doesn't
// match: the expected string is the single expected terminal.
func (p *LLKParser) recoverMismatch(stream types.TokenStream, rec *recoveryState, expected types.TokenClass, actual types.Token) error {
	syn := perr.NewSyntaxErrorFromToken("unexpected "+actual.Class().Human(), actual, []string{expected.ID()})
	if err := rec.record(syn); err != nil {
		return err
	}
	window, _, err := lookaheadWindow(stream, grammar.MaxK)
	if err != nil {
		return err
	}
	return applyRecovery(stream, window, []types.TokenClass{expected})
}

// recoverPrediction handles a failed N(A) prediction: the
// candidate expected strings are the root-to-accept paths of A's lookahead
// DFA, each converted from terminal ids back to classes.
func (p *LLKParser) recoverPrediction(stream types.TokenStream, rec *recoveryState, dfa *automaton.LookaheadDFA, nt string, window []types.TokenClass, toks []types.Token) error {
	var tok types.Token
	if len(toks) > 0 {
		tok = toks[0]
	}
	syn := perr.NewSyntaxErrorFromToken("no valid continuation for "+nt, tok, p.expectedIDsForPaths(dfa))
	if err := rec.record(syn); err != nil {
		return err
	}

	candidates := p.expectedCandidates(dfa)
	chosen := bestExpectedMatch(window, candidates)
	if chosen == nil {
		return perr.NewRecoveryError("non-terminal %q has no accepting lookahead path to recover toward", nt)
	}
	return applyRecovery(stream, window, chosen)
}

func (p *LLKParser) expectedIDsForPaths(dfa *automaton.LookaheadDFA) []string {
	seen := map[string]bool{}
	var out []string
	for _, path := range dfa.ExpectedPaths() {
		if len(path) == 0 {
			continue
		}
		if !seen[path[0]] {
			seen[path[0]] = true
			out = append(out, path[0])
		}
	}
	return out
}

func (p *LLKParser) expectedCandidates(dfa *automaton.LookaheadDFA) [][]types.TokenClass {
	var out [][]types.TokenClass
	for _, path := range dfa.ExpectedPaths() {
		cand := make([]types.TokenClass, len(path))
		for i, id := range path {
			cand[i] = p.classForTerminal(id)
		}
		out = append(out, cand)
	}
	return out
}
