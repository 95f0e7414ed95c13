package types

import "strings"

// ParseTree is a concrete syntax tree node produced by either parser
// runtime. Terminal nodes carry the Token that produced them; non-terminal
// nodes carry the grammar symbol they were reduced to or predicted for,
// the index of the production used (for dispatch, see the dispatch
// package), and their children in left-to-right order.
type ParseTree struct {
	// Terminal is true if this node is a leaf produced directly from a
	// token rather than from applying a production.
	Terminal bool

	// Value is the symbol name: a terminal's class ID, or a non-terminal's
	// name.
	Value string

	// Source is the token this node derives from. For a terminal node it
	// is the matched token; for a non-terminal node it is the first token
	// consumed under it, useful for error reporting.
	Source Token

	// Production is the index into the originating grammar's production
	// list used to expand this node, or -1 for terminal nodes.
	Production int

	Children []*ParseTree
}

// Copy returns a deep copy of the tree rooted at t.
func (t *ParseTree) Copy() *ParseTree {
	if t == nil {
		return nil
	}
	cp := &ParseTree{
		Terminal:   t.Terminal,
		Value:      t.Value,
		Source:     t.Source,
		Production: t.Production,
	}
	if t.Children != nil {
		cp.Children = make([]*ParseTree, len(t.Children))
		for i, c := range t.Children {
			cp.Children[i] = c.Copy()
		}
	}
	return cp
}

// Equal reports whether o is a *ParseTree with the same shape and values
// as t.
func (t *ParseTree) Equal(o any) bool {
	other, ok := o.(*ParseTree)
	if !ok {
		return false
	}
	if t == nil || other == nil {
		return t == other
	}
	if t.Terminal != other.Terminal || t.Value != other.Value || t.Production != other.Production {
		return false
	}
	if len(t.Children) != len(other.Children) {
		return false
	}
	for i := range t.Children {
		if !t.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// TreeBuilder is the default TreeConstruct implementation: a stack of
// in-progress non-terminal nodes, each attached to its parent as soon as
// it is opened so closing a node never needs to reach back into the
// stack's new top.
type TreeBuilder struct {
	stack []*ParseTree
	root  *ParseTree
}

// NewTreeBuilder returns an empty TreeBuilder ready to consume a parse.
func NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{}
}

func (b *TreeBuilder) attach(node *ParseTree) {
	if len(b.stack) > 0 {
		parent := b.stack[len(b.stack)-1]
		parent.Children = append(parent.Children, node)
	} else {
		b.root = node
	}
}

func (b *TreeBuilder) OpenNonTerminal(name string, sizeHint int) {
	node := &ParseTree{Value: name, Production: -1}
	if sizeHint >= 0 {
		node.Children = make([]*ParseTree, 0, sizeHint)
	}
	b.attach(node)
	b.stack = append(b.stack, node)
}

func (b *TreeBuilder) CloseNonTerminal(prodIndex int) {
	n := len(b.stack)
	node := b.stack[n-1]
	node.Production = prodIndex
	b.root = node
	b.stack = b.stack[:n-1]
}

func (b *TreeBuilder) AddToken(tok Token) {
	b.attach(&ParseTree{Terminal: true, Value: tok.Class().ID(), Source: tok, Production: -1})
}

// Build returns the finished tree. Valid only after every OpenNonTerminal
// has a matching CloseNonTerminal.
func (b *TreeBuilder) Build() *ParseTree {
	return b.root
}

// String renders t as a box-drawing tree, for debug output.
func (t *ParseTree) String() string {
	var sb strings.Builder
	t.leveledStr(&sb, "", true)
	return sb.String()
}

func (t *ParseTree) leveledStr(sb *strings.Builder, prefix string, last bool) {
	if t == nil {
		return
	}
	connector := "├── "
	if last {
		connector = "└── "
	}
	sb.WriteString(prefix)
	sb.WriteString(connector)
	sb.WriteString(t.Value)
	if t.Terminal && t.Source != nil {
		sb.WriteString(" <" + t.Source.Lexeme() + ">")
	}
	sb.WriteString("\n")

	childPrefix := prefix
	if last {
		childPrefix += "    "
	} else {
		childPrefix += "│   "
	}
	for i, c := range t.Children {
		c.leveledStr(sb, childPrefix, i == len(t.Children)-1)
	}
}
