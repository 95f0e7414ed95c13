package lex

import (
	"strings"

	"github.com/thistlearc/parsegen/grammar"
	"github.com/thistlearc/parsegen/perr"
	"github.com/thistlearc/parsegen/types"
)

// stream is the types.TokenStream implementation this package produces: a
// lazily-grown slice of already-scanned tokens with a consumption cursor,
// a separate comment buffer, and a scanner-state stack the parser drives
// directly through SwitchScanner/PushScanner/PopScanner.
type stream struct {
	lexer *Lexer
	text  string

	// scanned is every token produced so far, in document order, ending
	// with a synthetic end-of-text sentinel once scanning reaches the end
	// of text. pos is the index of the next token Consume will return.
	scanned []types.Token
	pos     int
	atEOF   bool

	comments []types.Token

	cursor    int // byte offset into text not yet scanned
	line      int
	col       int
	lineStart int // byte offset of the start of the current line

	scStack []string

	termIndex map[string]types.TerminalIndex

	sw *scannerSwitcher

	nextNumber int
	panicMode  bool
}

// New builds a TokenStream over input, scanning with the terminals and
// scanner states g declares. meta carries the grammar's %on transitions;
// it may be nil, in which case only inline %sc/%push/%pop directives (as
// driven by the parser) change the scanner state.
func New(g *grammar.Grammar, meta *grammar.Meta, input string) (types.TokenStream, error) {
	lexer, err := Build(g)
	if err != nil {
		return nil, err
	}

	var sw *scannerSwitcher
	if meta != nil && len(meta.Transitions) > 0 {
		sw, err = buildSwitcher(g, meta.Transitions)
		if err != nil {
			return nil, err
		}
	}

	termIndex := map[string]types.TerminalIndex{}
	termIndex[types.TokenEndOfText.ID()] = types.EndOfInputTerminal
	for i, def := range g.GetOrderedTerminals() {
		termIndex[def.ID] = types.TerminalIndex(i + 1)
	}

	return &stream{
		lexer:     lexer,
		text:      input,
		line:      1,
		col:       1,
		scStack:   []string{lexer.start},
		termIndex: termIndex,
		sw:        sw,
	}, nil
}

func (s *stream) currentState() string {
	return s.scStack[len(s.scStack)-1]
}

// scanOne advances the cursor past any discarded/comment matches and
// appends exactly one consumable token (or the end-of-text sentinel) to
// s.scanned. It does not return a non-nil error: input that no pattern
// matches is skipped one rune at a time (panic mode).
func (s *stream) scanOne() error {
	if s.atEOF {
		s.scanned = append(s.scanned, s.eotToken())
		return nil
	}

	prog := s.lexer.programs[s.currentState()]
	for {
		if s.cursor >= len(s.text) {
			s.atEOF = true
			s.scanned = append(s.scanned, s.eotToken())
			return nil
		}

		idx, lexeme, ok := prog.match(s.text[s.cursor:])
		if !ok {
			// no registered pattern matches here: panic-mode recovery,
			// discard one rune and retry.
			r := []rune(s.text[s.cursor:])[0]
			s.advancePos(string(r))
			s.panicMode = true
			continue
		}
		s.panicMode = false

		act := prog.actions[idx]
		line, col, fullLine := s.line, s.col, s.currentFullLine()
		number := s.nextNumber
		s.nextNumber++
		s.advancePos(lexeme)

		switch act.kind {
		case actionDiscard:
			continue
		case actionComment:
			tok := types.NewToken(act.class, lexeme, line, col, fullLine, number)
			s.comments = append(s.comments, tok)
			continue
		default:
			tok := types.NewToken(act.class, lexeme, line, col, fullLine, number)
			s.scanned = append(s.scanned, tok)
			s.applyAutoSwitch(act.class.ID())
			return nil
		}
	}
}

// applyAutoSwitch applies any %on transition governed by the terminal just
// scanned. It runs at scan time, before any further token is tokenized, so
// lazily-scanned lookahead past this token already sees the new state.
func (s *stream) applyAutoSwitch(termID string) {
	if s.sw == nil {
		return
	}
	switch {
	case s.sw.pops[termID]:
		if len(s.scStack) > 1 {
			s.scStack = s.scStack[:len(s.scStack)-1]
		}
	case s.sw.pushes[termID] != "":
		s.scStack = append(s.scStack, s.sw.pushes[termID])
	default:
		if next, ok := s.sw.enters.Next(s.currentState(), termID); ok {
			s.scStack[len(s.scStack)-1] = next
		}
	}
}

func (s *stream) currentFullLine() string {
	end := strings.IndexByte(s.text[s.lineStart:], '\n')
	if end < 0 {
		return s.text[s.lineStart:]
	}
	return s.text[s.lineStart : s.lineStart+end]
}

func (s *stream) advancePos(lexeme string) {
	for _, r := range lexeme {
		if r == '\n' {
			s.line++
			s.col = 1
			s.lineStart = s.cursor + 1
		} else {
			s.col++
		}
		s.cursor += len(string(r))
	}
}

func (s *stream) eotToken() types.Token {
	return types.NewToken(types.TokenEndOfText, "", s.line, s.col, s.currentFullLine(), s.nextNumber)
}

// ensure guarantees at least n+1 tokens are available from pos, i.e. that
// index pos+n of s.scanned exists.
func (s *stream) ensure(n int) error {
	for s.pos+n >= len(s.scanned) {
		if err := s.scanOne(); err != nil {
			return err
		}
	}
	return nil
}

func (s *stream) Lookahead(n int) (types.Token, error) {
	if err := s.ensure(n); err != nil {
		return nil, err
	}
	return s.scanned[s.pos+n], nil
}

func (s *stream) Consume() (types.Token, error) {
	if err := s.ensure(0); err != nil {
		return nil, err
	}
	tok := s.scanned[s.pos]
	if tok.Class().ID() != types.TokenEndOfText.ID() {
		s.pos++
	}
	return tok, nil
}

// invalidateLookahead discards any scanned-but-unconsumed tokens: a
// scanner-state change only applies from the current position onward, and
// tokens beyond pos may have been tokenized under the now-stale state.
func (s *stream) invalidateLookahead() {
	s.scanned = s.scanned[:s.pos]
	s.atEOF = false
}

func (s *stream) SwitchScanner(state string) error {
	s.invalidateLookahead()
	s.scStack[len(s.scStack)-1] = state
	return nil
}

func (s *stream) PushScanner(state string) error {
	s.invalidateLookahead()
	s.scStack = append(s.scStack, state)
	return nil
}

func (s *stream) PopScanner() error {
	if len(s.scStack) <= 1 {
		return perr.NewScannerStackEmptyError()
	}
	s.invalidateLookahead()
	s.scStack = s.scStack[:len(s.scStack)-1]
	return nil
}

func (s *stream) CurrentScanner() string {
	return s.currentState()
}

func (s *stream) DrainComments() ([]types.Token, error) {
	out := s.comments
	s.comments = nil
	return out, nil
}

func (s *stream) InsertTokenAt(i int, class types.TokenClass) error {
	if err := s.ensure(i); err != nil {
		return err
	}
	at := s.pos + i
	ref := s.scanned[at]
	synthetic := types.NewToken(class, "", ref.Line(), ref.LinePos(), ref.FullLine(), ref.Number())
	out := make([]types.Token, 0, len(s.scanned)+1)
	out = append(out, s.scanned[:at]...)
	out = append(out, synthetic)
	out = append(out, s.scanned[at:]...)
	s.scanned = out
	return nil
}

func (s *stream) ReplaceTokenTypeAt(i int, class types.TokenClass) error {
	if err := s.ensure(i); err != nil {
		return err
	}
	at := s.pos + i
	old := s.scanned[at]
	s.scanned[at] = types.NewToken(class, old.Lexeme(), old.Line(), old.LinePos(), old.FullLine(), old.Number())
	return nil
}

func (s *stream) TokenTypes(k int) ([]types.TerminalIndex, error) {
	out := make([]types.TerminalIndex, 0, k)
	for i := 0; i < k; i++ {
		tok, err := s.Lookahead(i)
		if err != nil {
			return nil, err
		}
		idx, ok := s.termIndex[tok.Class().ID()]
		if !ok {
			idx = types.EndOfInputTerminal
		}
		out = append(out, idx)
		if tok.Class().ID() == types.TokenEndOfText.ID() {
			break
		}
	}
	return out, nil
}

func (s *stream) AllInputConsumed() bool {
	if err := s.ensure(0); err != nil {
		return false
	}
	return s.scanned[s.pos].Class().ID() == types.TokenEndOfText.ID()
}
