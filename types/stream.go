package types

// TerminalIndex identifies a terminal symbol by its position in a
// grammar's ordered terminal list. Index 0 is reserved for the
// end-of-input sentinel.
type TerminalIndex int

// EndOfInputTerminal is the reserved terminal index for the end-of-input
// sentinel token.
const EndOfInputTerminal TerminalIndex = 0

// TokenStream is the protocol a generated parser consumes. It is owned
// exclusively by the running parser: the lookahead ring buffer and the
// scanner-state stack belong to the stream, and no other component
// mutates them concurrently.
type TokenStream interface {
	// Lookahead returns the token n positions ahead of the current
	// position without consuming it; Lookahead(0) is the next token to be
	// consumed. It never returns an error past end of input: it returns
	// the end-of-input sentinel token instead.
	Lookahead(n int) (Token, error)

	// Consume advances past and returns the next token.
	Consume() (Token, error)

	// SwitchScanner sets the active scanner state, replacing whatever is
	// on top of the scanner-state stack.
	SwitchScanner(state string) error

	// PushScanner pushes a new active scanner state, to be restored by a
	// matching PopScanner.
	PushScanner(state string) error

	// PopScanner restores the previously active scanner state. It is an
	// error to pop when the scanner stack holds only the initial state.
	PopScanner() error

	// CurrentScanner returns the name of the currently active scanner
	// state.
	CurrentScanner() string

	// DrainComments returns and clears all comment tokens buffered since
	// the last call, in token-number order.
	DrainComments() ([]Token, error)

	// InsertTokenAt splices a synthetic token of the given terminal class
	// into the stream i positions ahead of the current position (0 = just
	// before the next token to be consumed), for error recovery.
	InsertTokenAt(i int, class TokenClass) error

	// ReplaceTokenTypeAt changes the terminal class of the token i
	// positions ahead of the current position, for error recovery. The
	// token's lexeme is left unchanged.
	ReplaceTokenTypeAt(i int, class TokenClass) error

	// TokenTypes returns up to k terminal indices starting at the current
	// position, used by the LL(k) lookahead DFA evaluator.
	TokenTypes(k int) ([]TerminalIndex, error)

	// AllInputConsumed reports whether the stream has been fully consumed
	// (only the end-of-input sentinel remains).
	AllInputConsumed() bool
}

// TreeConstruct incrementally builds a ParseTree as the parser drives it;
// implementations may discard structure for a "trim" build mode that only
// keeps semantically meaningful nodes.
type TreeConstruct interface {
	// OpenNonTerminal begins a new non-terminal node named name. sizeHint,
	// if >= 0, is the expected number of children.
	OpenNonTerminal(name string, sizeHint int)

	// CloseNonTerminal finishes the most recently opened non-terminal
	// node, tagging it with the grammar-wide index of the production it
	// was expanded with, and making it a child of whatever is now on top.
	CloseNonTerminal(prodIndex int)

	// AddToken appends a terminal leaf built from tok to the node
	// currently open.
	AddToken(tok Token)

	// Build finalizes and returns the constructed tree.
	Build() *ParseTree
}
