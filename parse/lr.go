package parse

import (
	"github.com/thistlearc/parsegen/perr"
	"github.com/thistlearc/parsegen/types"
	"github.com/thistlearc/parsegen/util"
)

// SemanticActions is the callback table both parser runtimes drive: one
// entry point dispatched by production index, plus comment
// forwarding in token-number order.
type SemanticActions interface {
	// CallSemanticAction invokes the semantic action registered for
	// production p with children, the semantic-stack items consumed for
	// that production's rhs, and returns the value to push in their
	// place.
	CallSemanticAction(p int, children []any) (any, error)

	// OnCommentParsed is forwarded once per buffered comment token, in
	// token-number order, interleaved with semantic actions at the point
	// the comment was scanned.
	OnCommentParsed(tok types.Token)
}

// LRParser drives an LRParseTable over a token stream: a single
// state stack, shift/reduce/accept, no error recovery.
type LRParser struct {
	Table *LRParseTable
}

type lrStackEntry struct {
	tree  *types.ParseTree
	value any
}

// Parse runs the shift-reduce loop to completion, invoking actions at
// every reduction and returning the concrete syntax tree built alongside
// it.
func (p *LRParser) Parse(stream types.TokenStream, actions SemanticActions) (*types.ParseTree, error) {
	states := util.Stack[int]{Of: []int{p.Table.Initial()}}
	nodes := util.Stack[lrStackEntry]{}

	a, err := stream.Lookahead(0)
	if err != nil {
		return nil, err
	}

	for {
		s := states.Peek()
		act := p.Table.Action(s, a.Class().ID())

		switch act.Type {
		case LRShift:
			tok, err := stream.Consume()
			if err != nil {
				return nil, err
			}
			if err := p.forwardComments(stream, actions); err != nil {
				return nil, err
			}
			leaf := &types.ParseTree{Terminal: true, Value: tok.Class().ID(), Source: tok, Production: -1}
			nodes.Push(lrStackEntry{tree: leaf, value: tok})
			states.Push(act.State)

			a, err = stream.Lookahead(0)
			if err != nil {
				return nil, err
			}

		case LRReduce:
			rhsLen := len(act.Production)
			if act.Production.IsEpsilon() {
				rhsLen = 0
			}
			children := make([]lrStackEntry, rhsLen)
			for i := rhsLen - 1; i >= 0; i-- {
				children[i] = nodes.Pop()
				states.Pop()
			}

			node := &types.ParseTree{Value: act.Symbol, Production: act.ProdIndex}
			values := make([]any, rhsLen)
			for i, c := range children {
				node.Children = append(node.Children, c.tree)
				values[i] = c.value
			}

			value, err := actions.CallSemanticAction(act.ProdIndex, values)
			if err != nil {
				return nil, err
			}

			top := states.Peek()
			next, err := p.Table.Goto(top, act.Symbol)
			if err != nil {
				return nil, perr.NewSyntaxErrorFromToken("no valid continuation after reducing "+act.Symbol, a, nil)
			}
			states.Push(next)
			nodes.Push(lrStackEntry{tree: node, value: value})

		case LRAccept:
			final := nodes.Pop()
			if !stream.AllInputConsumed() {
				last, _ := stream.Lookahead(0)
				return nil, perr.NewUnprocessedInputError(last)
			}
			return final.tree, nil

		default:
			expected := util.Alphabetized(p.Table.ExpectedTerminals(s))
			return nil, perr.NewSyntaxErrorFromToken(getExpectedString(a, expected), a, expected)
		}
	}
}

// getExpectedString builds the "unexpected X; expected ..." diagnostic text
// for a state with no action on the current lookahead.
func getExpectedString(tok types.Token, expected []string) string {
	msg := "unexpected " + tok.Class().Human()
	switch len(expected) {
	case 0:
	case 1:
		msg += "; expected " + util.ArticleFor(expected[0], false) + " " + expected[0]
	default:
		msg += "; expected one of " + util.MakeTextList(expected)
	}
	return msg
}

func (p *LRParser) forwardComments(stream types.TokenStream, actions SemanticActions) error {
	comments, err := stream.DrainComments()
	if err != nil {
		return err
	}
	for _, c := range comments {
		actions.OnCommentParsed(c)
	}
	return nil
}
