package types

import "fmt"

// Token is a single lexical unit produced by a scanner: a class, the text
// it matched, and enough positional information to build error messages
// and to support error recovery's token-insertion and token-replacement
// operations.
type Token interface {
	// Class returns the token's terminal class.
	Class() TokenClass

	// Lexeme returns the exact text the token matched.
	Lexeme() string

	// Line returns the 1-based source line the token starts on.
	Line() int

	// LinePos returns the 1-based column the token starts at.
	LinePos() int

	// FullLine returns the complete source line the token appears on, for
	// use in caret-pointer style error messages.
	FullLine() string

	// Number returns the token's position in the overall token sequence
	// (comments included), used to keep comment buffering in document
	// order regardless of which channel delivered a token.
	Number() int

	String() string
}

// token is the default Token implementation used by the lexer and by the
// grammar file loader's bootstrap scanner.
type token struct {
	class    TokenClass
	lexeme   string
	line     int
	linePos  int
	fullLine string
	number   int
}

// NewToken builds a Token with the given class, lexeme, and position.
func NewToken(class TokenClass, lexeme string, line, linePos int, fullLine string, number int) Token {
	return token{
		class:    class,
		lexeme:   lexeme,
		line:     line,
		linePos:  linePos,
		fullLine: fullLine,
		number:   number,
	}
}

func (t token) Class() TokenClass  { return t.class }
func (t token) Lexeme() string     { return t.lexeme }
func (t token) Line() int          { return t.line }
func (t token) LinePos() int       { return t.linePos }
func (t token) FullLine() string   { return t.fullLine }
func (t token) Number() int        { return t.number }

func (t token) String() string {
	return fmt.Sprintf("(%s %q @ %d:%d)", t.class.ID(), t.lexeme, t.line, t.linePos)
}
