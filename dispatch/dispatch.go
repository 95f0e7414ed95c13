// Package dispatch implements the semantic action table a generated parser
// drives during reduction: one callback per production, bound by
// grammar-wide production index, with the cut operator's children filtered
// out before a bound action ever sees them.
package dispatch

import (
	"github.com/thistlearc/parsegen/grammar"
	"github.com/thistlearc/parsegen/perr"
	"github.com/thistlearc/parsegen/types"
)

// ActionFunc computes the value for one production's reduction from its
// non-cut children's values, in left-to-right order.
type ActionFunc func(children []any) (any, error)

// CommentFunc is invoked once per buffered comment token, in token-number
// order, interleaved with semantic actions at the point the comment was
// scanned.
type CommentFunc func(tok types.Token)

// Dispatcher implements parse.SemanticActions. It is handed to LLKParser.Parse
// or LRParser.Parse as the SemanticActions argument.
type Dispatcher struct {
	byIndex map[int]grammar.IndexedProduction
	cuts    map[string]bool

	actions   map[int]ActionFunc
	onComment CommentFunc
}

// New builds a Dispatcher for g, using meta.Cuts (as produced by
// grammar.Load / grammar.LowerEBNF) to resolve the cut operator. meta may
// be nil, in which case no symbol is treated as cut.
func New(g *grammar.Grammar, meta *grammar.Meta) *Dispatcher {
	byIndex := map[int]grammar.IndexedProduction{}
	for _, ip := range g.AllProductions() {
		byIndex[ip.Index] = ip
	}
	cuts := map[string]bool{}
	if meta != nil && meta.Cuts != nil {
		cuts = meta.Cuts
	}
	return &Dispatcher{byIndex: byIndex, cuts: cuts, actions: map[int]ActionFunc{}}
}

// Bind registers the action invoked when the production at prodIndex
// reduces. Binding the same index twice replaces the earlier action.
func (d *Dispatcher) Bind(prodIndex int, fn ActionFunc) {
	d.actions[prodIndex] = fn
}

// BindRule registers fn for every alternative of non-terminal nt, in
// alternative-declaration order, a convenience for grammars whose rule
// bodies are all handled by the same construction logic.
func (d *Dispatcher) BindRule(g *grammar.Grammar, nt string, fns ...ActionFunc) {
	alts := g.Rule(nt).Productions
	for i, fn := range fns {
		if i >= len(alts) {
			break
		}
		for _, ip := range d.byIndex {
			if ip.NonTerminal == nt && ip.AltIndex == i {
				d.Bind(ip.Index, fn)
			}
		}
	}
}

// OnComment registers the callback forwarded for every buffered comment.
func (d *Dispatcher) OnComment(fn CommentFunc) {
	d.onComment = fn
}

// CallSemanticAction implements parse.SemanticActions.
func (d *Dispatcher) CallSemanticAction(p int, children []any) (any, error) {
	ip, ok := d.byIndex[p]
	if !ok {
		return nil, perr.NewGrammarError("dispatch: no production registered at index %d", p)
	}

	filtered := d.filterCut(ip, children)

	fn, ok := d.actions[p]
	if !ok {
		// No action bound for this production. A single surviving child
		// (the common shape for a pass-through rule, e.g. `Expr : Term`)
		// passes its value through unchanged; anything else has no
		// sensible default.
		if len(filtered) == 1 {
			return filtered[0], nil
		}
		return nil, nil
	}
	return fn(filtered)
}

// OnCommentParsed implements parse.SemanticActions.
func (d *Dispatcher) OnCommentParsed(tok types.Token) {
	if d.onComment != nil {
		d.onComment(tok)
	}
}

// filterCut drops every child whose rhs symbol was marked `^` (clipped):
// the symbol is parsed normally but its child never reaches the semantic
// stack. children is indexed against ip.Prod's semantic symbols
// (scanner-switch pseudo-symbols already excluded by the parser, see
// grammar.Production.SemanticSymbols), so cuts are resolved against that
// same subsequence.
func (d *Dispatcher) filterCut(ip grammar.IndexedProduction, children []any) []any {
	syms := ip.Prod.SemanticSymbols()
	if len(d.cuts) == 0 {
		return children
	}
	out := make([]any, 0, len(children))
	for i, sym := range syms {
		if i >= len(children) {
			break
		}
		if d.cuts[ip.NonTerminal+"::"+sym] {
			continue
		}
		out = append(out, children[i])
	}
	return out
}
