// Package perr defines parsegen's error types: a small set of concrete
// structs, each with a technical Error() string and the structured fields
// a diagnostic renderer would need (source position, expected/unexpected
// symbols), following the same dual technical/human shape used throughout
// this codebase's other error-producing packages.
package perr

import (
	"fmt"
	"strings"

	"github.com/thistlearc/parsegen/types"
)

// GrammarError reports a problem found while validating or transforming a
// grammar: an undefined non-terminal, a missing start symbol, an
// undecidable LL(k) choice, and similar.
type GrammarError struct {
	msg  string
	wrap error
}

// NewGrammarError builds a GrammarError with a formatted message.
func NewGrammarError(format string, args ...any) *GrammarError {
	return &GrammarError{msg: fmt.Sprintf(format, args...)}
}

// WrapGrammarError builds a GrammarError that wraps a lower-level cause.
func WrapGrammarError(cause error, format string, args ...any) *GrammarError {
	return &GrammarError{msg: fmt.Sprintf(format, args...), wrap: cause}
}

func (e *GrammarError) Error() string { return e.msg }
func (e *GrammarError) Unwrap() error { return e.wrap }

// SyntaxError reports a parse-time problem: an unexpected token, a failed
// prediction, or an unrecoverable error-recovery abort. It carries enough
// structure (the offending token, what was expected) for a caller to build
// a richer diagnostic without re-parsing.
type SyntaxError struct {
	msg      string
	Token    types.Token
	Expected []string
}

// NewSyntaxErrorFromToken builds a SyntaxError whose technical message
// embeds the offending token's position, in the style
// "<line>:<col>: <msg>, found "<lexeme>"".
func NewSyntaxErrorFromToken(msg string, tok types.Token, expected []string) *SyntaxError {
	full := msg
	if tok != nil {
		full = fmt.Sprintf("%d:%d: %s, found %q", tok.Line(), tok.LinePos(), msg, tok.Lexeme())
	}
	return &SyntaxError{msg: full, Token: tok, Expected: expected}
}

func (e *SyntaxError) Error() string { return e.msg }

// FullMessage renders a multi-line diagnostic including the source line
// and a caret under the offending column, when position information is
// available.
func (e *SyntaxError) FullMessage() string {
	var sb strings.Builder
	sb.WriteString(e.msg)
	if len(e.Expected) > 0 {
		sb.WriteString("\nexpected one of: ")
		sb.WriteString(strings.Join(e.Expected, ", "))
	}
	if e.Token != nil && e.Token.FullLine() != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Token.FullLine())
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", max(0, e.Token.LinePos()-1)))
		sb.WriteString("^")
	}
	return sb.String()
}

// RecoveryError reports that error recovery gave up: either the abort
// threshold (100 errors) was reached, or recovery was attempted twice at
// the same stream location without making progress.
type RecoveryError struct {
	msg string
}

// NewRecoveryError builds a RecoveryError with a formatted message.
func NewRecoveryError(format string, args ...any) *RecoveryError {
	return &RecoveryError{msg: fmt.Sprintf(format, args...)}
}

func (e *RecoveryError) Error() string { return e.msg }

// LexError reports a tokenization failure: no registered pattern matched
// at the current position in the current scanner state.
type LexError struct {
	msg  string
	Line int
	Col  int
}

// NewLexError builds a LexError positioned at line/col.
func NewLexError(line, col int, format string, args ...any) *LexError {
	return &LexError{msg: fmt.Sprintf(format, args...), Line: line, Col: col}
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.msg)
}

// UnprocessedInputError reports that the parser accepted before the token
// stream was exhausted: input remains after the start symbol's derivation
// completed.
type UnprocessedInputError struct {
	LastToken types.Token
}

func NewUnprocessedInputError(last types.Token) *UnprocessedInputError {
	return &UnprocessedInputError{LastToken: last}
}

func (e *UnprocessedInputError) Error() string {
	if e.LastToken == nil {
		return "unprocessed input remains after parse completed"
	}
	return fmt.Sprintf("%d:%d: unprocessed input remains after parse completed, starting at %q",
		e.LastToken.Line(), e.LastToken.LinePos(), e.LastToken.Lexeme())
}

// ScannerStackEmptyError reports a %pop directive executed while the
// scanner-state stack held only the initial state.
type ScannerStackEmptyError struct{}

func NewScannerStackEmptyError() *ScannerStackEmptyError {
	return &ScannerStackEmptyError{}
}

func (e *ScannerStackEmptyError) Error() string {
	return "cannot pop scanner state: stack holds only the initial state"
}

// EmptyGroupError reports a `( )` group with no alternatives inside it.
type EmptyGroupError struct{ Line, Col int }

func NewEmptyGroupError(line, col int) *EmptyGroupError { return &EmptyGroupError{Line: line, Col: col} }

func (e *EmptyGroupError) Error() string {
	return fmt.Sprintf("%d:%d: empty group has no alternatives", e.Line, e.Col)
}

// EmptyOptionalError reports a `[ ]` optional with no alternatives inside
// it.
type EmptyOptionalError struct{ Line, Col int }

func NewEmptyOptionalError(line, col int) *EmptyOptionalError {
	return &EmptyOptionalError{Line: line, Col: col}
}

func (e *EmptyOptionalError) Error() string {
	return fmt.Sprintf("%d:%d: empty optional has no alternatives", e.Line, e.Col)
}

// EmptyRepetitionError reports a `{ }` repetition with no alternatives
// inside it.
type EmptyRepetitionError struct{ Line, Col int }

func NewEmptyRepetitionError(line, col int) *EmptyRepetitionError {
	return &EmptyRepetitionError{Line: line, Col: col}
}

func (e *EmptyRepetitionError) Error() string {
	return fmt.Sprintf("%d:%d: empty repetition has no alternatives", e.Line, e.Col)
}

// UnknownScannerError reports a scanner state name referenced by `%on`,
// `%push`, or `%sc` that no `%scanner` block (nor the implicit INITIAL
// state) declares.
type UnknownScannerError struct {
	Name      string
	Line, Col int
}

func NewUnknownScannerError(name string, line, col int) *UnknownScannerError {
	return &UnknownScannerError{Name: name, Line: line, Col: col}
}

func (e *UnknownScannerError) Error() string {
	return fmt.Sprintf("%d:%d: unknown scanner state %q", e.Line, e.Col, e.Name)
}

// ConflictingTokenAliasesError reports a terminal literal redeclared with
// a different spelling kind (legacy/raw/regex) than its first declaration.
type ConflictingTokenAliasesError struct {
	Terminal  string
	Line, Col int
}

func NewConflictingTokenAliasesError(terminal string, line, col int) *ConflictingTokenAliasesError {
	return &ConflictingTokenAliasesError{Terminal: terminal, Line: line, Col: col}
}

func (e *ConflictingTokenAliasesError) Error() string {
	return fmt.Sprintf("%d:%d: terminal %q redeclared with a conflicting definition", e.Line, e.Col, e.Terminal)
}

// EmptyScannersError reports a declared `%scanner` state that no terminal
// is active in, making it unreachable by any token.
type EmptyScannersError struct {
	Name string
}

func NewEmptyScannersError(name string) *EmptyScannersError {
	return &EmptyScannersError{Name: name}
}

func (e *EmptyScannersError) Error() string {
	return fmt.Sprintf("scanner state %q has no active terminals", e.Name)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
