package grammar

import (
	"unicode"

	"github.com/thistlearc/parsegen/perr"
	"github.com/thistlearc/parsegen/types"
)

// ParserMode selects which backend a grammar is compiled for, set by the
// `%grammar_type` directive.
type ParserMode int

const (
	// ModeLLK selects the LL(k) lookahead-DFA front end.
	ModeLLK ParserMode = iota
	// ModeLALR1 selects the LALR(1) table front end.
	ModeLALR1
)

// ScannerTransition records one `%on IDENT_LIST (%enter|%push|%pop)`
// directive: the terminals it governs and what it does to the scanner
// stack once one of them is matched.
type ScannerTransition struct {
	Terminals []string
	Enter     string // non-empty for %enter IDENT
	Push      string // non-empty for %push IDENT
	Pop       bool   // true for %pop
}

// Meta carries everything the grammar file's directives declare besides
// the productions themselves.
type Meta struct {
	Start          string
	Title          string
	Comment        string
	Mode           ParserMode
	UserTypes      map[string]string // NAME -> QUALIFIED::NAME
	NTTypes        map[string]string
	TType          string
	LineComment    string
	BlockCommentL  string
	BlockCommentR  string
	AutoNewlineOff bool
	AutoWSOff      bool
	Transitions    []ScannerTransition
	Cuts           map[string]bool
}

// Load parses grammar source text in the surface syntax
// into a Grammar plus its directive metadata: %directives, then `%%`,
// then `LHS : ALT (| ALT)* ;` productions with EBNF factors `( )`, `[ ]`,
// `{ }`, terminal literals `"..."`/`'...'`/`/regex/`, and the `^`/`:
// Type`/`@member` suffixes.
func Load(src string) (g *Grammar, meta *Meta, err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = rerr
				return
			}
			err = perr.NewGrammarError("%v", r)
		}
	}()
	p := &loader{src: []rune(src)}
	return p.parse()
}

type loader struct {
	src []rune
	pos int
	nt  int // 1-based line for diagnostics
}

func (p *loader) parse() (*Grammar, *Meta, error) {
	g := &Grammar{}
	meta := &Meta{
		UserTypes: map[string]string{},
		NTTypes:   map[string]string{},
		Cuts:      map[string]bool{},
	}

	if err := p.parseDirectives(g, meta); err != nil {
		return nil, nil, err
	}
	if err := p.parseProductions(g, meta); err != nil {
		return nil, nil, err
	}
	if meta.Start != "" {
		g.SetStart(meta.Start)
	}
	if len(g.scannerOrder) == 0 {
		g.AddScanner(ScannerConfig{Name: "INITIAL"})
	}
	// Top-level %line_comment/%block_comment/%auto_* directives configure
	// the INITIAL scanner; a %scanner INITIAL block's own settings win.
	if sc, ok := g.scanners["INITIAL"]; ok {
		if sc.LineComment == "" {
			sc.LineComment = meta.LineComment
		}
		if sc.BlockCommentL == "" {
			sc.BlockCommentL = meta.BlockCommentL
			sc.BlockCommentR = meta.BlockCommentR
		}
		sc.AutoNewlineOff = sc.AutoNewlineOff || meta.AutoNewlineOff
		sc.AutoWSOff = sc.AutoWSOff || meta.AutoWSOff
		g.scanners["INITIAL"] = sc
	}
	if err := validateScanners(g, meta); err != nil {
		return nil, nil, err
	}
	return g, meta, nil
}

// validateScanners checks every scanner state name referenced by a %on
// directive against the set of declared scanner states (INITIAL always
// counts, since it is implicit when no %scanner block names it
// explicitly; inline %sc/%push switches are already checked as they are
// parsed, once every %scanner block is known), and reports any declared
// scanner state that no terminal is ever active in.
func validateScanners(g *Grammar, meta *Meta) error {
	known := map[string]bool{"INITIAL": true}
	for _, name := range g.scannerOrder {
		known[name] = true
	}

	for _, tr := range meta.Transitions {
		if tr.Enter != "" && !known[tr.Enter] {
			return perr.NewUnknownScannerError(tr.Enter, 0, 0)
		}
		if tr.Push != "" && !known[tr.Push] {
			return perr.NewUnknownScannerError(tr.Push, 0, 0)
		}
	}

	active := map[string]bool{}
	for _, t := range g.GetOrderedTerminals() {
		for _, s := range t.ScannerStates {
			active[s] = true
		}
	}
	for _, name := range g.scannerOrder {
		if !active[name] {
			return perr.NewEmptyScannersError(name)
		}
	}
	return nil
}

func (p *loader) parseDirectives(g *Grammar, meta *Meta) error {
	for {
		p.skipTrivia()
		if p.eof() {
			return perr.NewGrammarError("unexpected end of grammar source before %%")
		}
		if p.peekStr("%%") {
			p.pos += 2
			return nil
		}
		if !p.peekRune('%') {
			return perr.NewGrammarError("expected a %%directive or %%%%, got %q", p.remainder(20))
		}
		p.pos++
		directive := p.takeIdent()
		switch directive {
		case "start":
			meta.Start = p.takeIdentArg()
		case "title":
			meta.Title = p.takeStringArg()
		case "comment":
			meta.Comment = p.takeStringArg()
		case "grammar_type":
			gt := p.takeStringArg()
			if gt == "lalr(1)" {
				meta.Mode = ModeLALR1
			} else {
				meta.Mode = ModeLLK
			}
		case "user_type":
			name := p.takeIdentArg()
			p.skipTrivia()
			p.expectRune('=')
			qual := p.takeQualifiedArg()
			meta.UserTypes[name] = qual
		case "nt_type":
			name := p.takeIdentArg()
			p.skipTrivia()
			p.expectRune('=')
			qual := p.takeQualifiedArg()
			meta.NTTypes[name] = qual
		case "t_type":
			meta.TType = p.takeQualifiedArg()
		case "line_comment":
			meta.LineComment = p.takeStringArg()
		case "block_comment":
			meta.BlockCommentL = p.takeStringArg()
			meta.BlockCommentR = p.takeStringArg()
		case "auto_newline_off":
			meta.AutoNewlineOff = true
		case "auto_ws_off":
			meta.AutoWSOff = true
		case "on":
			tr, err := p.parseOnDirective()
			if err != nil {
				return err
			}
			meta.Transitions = append(meta.Transitions, tr)
		case "scanner":
			if err := p.parseScannerBlock(g); err != nil {
				return err
			}
		default:
			return perr.NewGrammarError("unknown directive %%%s", directive)
		}
	}
}

func (p *loader) parseOnDirective() (ScannerTransition, error) {
	var tr ScannerTransition
	tr.Terminals = append(tr.Terminals, p.takeIdentArg())
	p.skipTrivia()
	for p.peekRune(',') {
		p.pos++
		tr.Terminals = append(tr.Terminals, p.takeIdentArg())
		p.skipTrivia()
	}
	p.expectRune('%')
	action := p.takeIdent()
	switch action {
	case "enter":
		tr.Enter = p.takeIdentArg()
	case "push":
		tr.Push = p.takeIdentArg()
	case "pop":
		tr.Pop = true
	default:
		return tr, perr.NewGrammarError("unknown %%on action %%%s", action)
	}
	return tr, nil
}

func (p *loader) parseScannerBlock(g *Grammar) error {
	name := p.takeIdentArg()
	p.skipTrivia()
	p.expectRune('{')
	sc := ScannerConfig{Name: name}
	for {
		p.skipTrivia()
		if p.peekRune('}') {
			p.pos++
			break
		}
		if !p.peekRune('%') {
			return perr.NewGrammarError("expected directive inside %%scanner block, got %q", p.remainder(20))
		}
		p.pos++
		d := p.takeIdent()
		switch d {
		case "line_comment":
			sc.LineComment = p.takeStringArg()
		case "block_comment":
			sc.BlockCommentL = p.takeStringArg()
			sc.BlockCommentR = p.takeStringArg()
		case "auto_newline_off":
			sc.AutoNewlineOff = true
		case "auto_ws_off":
			sc.AutoWSOff = true
		default:
			return perr.NewGrammarError("unknown directive %%%s in %%scanner block", d)
		}
	}
	g.AddScanner(sc)
	return nil
}

func (p *loader) parseProductions(g *Grammar, meta *Meta) error {
	for {
		p.skipTrivia()
		if p.eof() {
			return nil
		}
		lhs := p.takeIdent()
		if lhs == "" {
			return perr.NewGrammarError("expected a non-terminal name, got %q", p.remainder(20))
		}
		p.skipTrivia()
		p.expectRune(':')

		var alts [][]Factor
		for {
			alt, err := p.parseAlt(g)
			if err != nil {
				return err
			}
			alts = append(alts, alt)
			p.skipTrivia()
			if p.peekRune('|') {
				p.pos++
				continue
			}
			break
		}
		p.skipTrivia()
		p.expectRune(';')

		LowerEBNF(g, lhs, alts, meta.Cuts)
	}
}

func (p *loader) parseAlt(g *Grammar) ([]Factor, error) {
	var out []Factor
	for {
		p.skipTrivia()
		if p.eof() || p.peekRune('|') || p.peekRune(';') || p.peekRune(')') || p.peekRune(']') || p.peekRune('}') {
			return out, nil
		}
		f, err := p.parseFactor(g)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
}

func (p *loader) parseFactor(g *Grammar) (Factor, error) {
	p.skipTrivia()
	switch {
	case p.peekRune('%'):
		return p.parseInlineScannerSwitch(g)
	case p.peekRune('('):
		openPos := p.pos
		p.pos++
		alts, err := p.parseGroupAlts(g)
		if err != nil {
			return Factor{}, err
		}
		p.expectRune(')')
		if isEmptyGroupBody(alts) {
			line, col := p.lineCol(openPos)
			return Factor{}, perr.NewEmptyGroupError(line, col)
		}
		return p.parseSuffixes(Factor{Kind: FactorGroup, Alts: alts})
	case p.peekRune('['):
		openPos := p.pos
		p.pos++
		alts, err := p.parseGroupAlts(g)
		if err != nil {
			return Factor{}, err
		}
		p.expectRune(']')
		if isEmptyGroupBody(alts) {
			line, col := p.lineCol(openPos)
			return Factor{}, perr.NewEmptyOptionalError(line, col)
		}
		return p.parseSuffixes(Factor{Kind: FactorOptional, Alts: alts})
	case p.peekRune('{'):
		openPos := p.pos
		p.pos++
		alts, err := p.parseGroupAlts(g)
		if err != nil {
			return Factor{}, err
		}
		p.expectRune('}')
		if isEmptyGroupBody(alts) {
			line, col := p.lineCol(openPos)
			return Factor{}, perr.NewEmptyRepetitionError(line, col)
		}
		return p.parseSuffixes(Factor{Kind: FactorRepetition, Alts: alts})
	case p.peekRune('"'):
		litPos := p.pos
		lit := p.takeQuoted('"')
		if err := p.declareLiteralTerminal(g, lit, KindLegacy, litPos); err != nil {
			return Factor{}, err
		}
		return p.parseSuffixes(Factor{Kind: FactorSymbol, Symbol: lit})
	case p.peekRune('\''):
		litPos := p.pos
		lit := p.takeQuoted('\'')
		if err := p.declareLiteralTerminal(g, lit, KindRaw, litPos); err != nil {
			return Factor{}, err
		}
		return p.parseSuffixes(Factor{Kind: FactorSymbol, Symbol: lit})
	case p.peekRune('/'):
		litPos := p.pos
		lit := p.takeQuoted('/')
		if err := p.declareLiteralTerminal(g, lit, KindRegex, litPos); err != nil {
			return Factor{}, err
		}
		return p.parseSuffixes(Factor{Kind: FactorSymbol, Symbol: lit})
	default:
		idPos := p.pos
		id := p.takeIdent()
		if id == "" {
			return Factor{}, perr.NewGrammarError("expected a grammar factor, got %q", p.remainder(20))
		}
		if isTerminalSpelling(id) {
			if err := p.declareLiteralTerminal(g, id, KindLegacy, idPos); err != nil {
				return Factor{}, err
			}
		}
		return p.parseSuffixes(Factor{Kind: FactorSymbol, Symbol: id})
	}
}

// knownScanner reports whether name is a declared %scanner state, or the
// implicit INITIAL state every grammar has even without one.
func (p *loader) knownScanner(g *Grammar, name string) bool {
	if name == "INITIAL" {
		return true
	}
	for _, sc := range g.scannerOrder {
		if sc == name {
			return true
		}
	}
	return false
}

// isEmptyGroupBody reports whether a parenthesized/bracketed/braced body
// parsed to exactly one alternative with zero factors: the body was
// written with literally nothing inside, as opposed to a legitimate
// epsilon alternative among others (e.g. `(a|)`).
func isEmptyGroupBody(alts [][]Factor) bool {
	return len(alts) == 1 && len(alts[0]) == 0
}

// lineCol converts a rune offset into the source into a 1-based
// line/column pair, for positioning fatal errors.
func (p *loader) lineCol(pos int) (int, int) {
	line, col := 1, 1
	for i := 0; i < pos && i < len(p.src); i++ {
		if p.src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// isTerminalSpelling reports whether id follows this grammar's
// lowercase-means-terminal convention.
func isTerminalSpelling(id string) bool {
	for _, r := range id {
		if unicode.IsUpper(r) {
			return false
		}
		break
	}
	return true
}

// declareLiteralTerminal registers lit as a terminal the first time it is
// encountered, named by its own spelling, active in every scanner state
// declared so far (or INITIAL if none yet). A later occurrence of the
// same spelling declared with a different quoting kind (legacy/raw/regex)
// is a conflicting alias and is rejected rather than silently ignored.
func (p *loader) declareLiteralTerminal(g *Grammar, lit string, kind TerminalKind, pos int) error {
	if existing, ok := g.TermDef(lit); ok {
		if existing.Kind != kind {
			line, col := p.lineCol(pos)
			return perr.NewConflictingTokenAliasesError(lit, line, col)
		}
		return nil
	}
	states := g.scannerOrder
	if len(states) == 0 {
		states = []string{"INITIAL"}
	}
	g.AddTermDef(TerminalDef{
		ID:            lit,
		Pattern:       lit,
		Kind:          kind,
		ScannerStates: append([]string{}, states...),
		Class:         types.NewTokenClass(lit, lit),
	})
	return nil
}

// parseInlineScannerSwitch parses one of the three inline scanner-switch
// directives that may appear as an rhs factor: `%sc(IDENT?)` (replaces the
// active scanner state, or restores INITIAL if IDENT is omitted),
// `%push(IDENT)`, or `%pop()`.
func (p *loader) parseInlineScannerSwitch(g *Grammar) (Factor, error) {
	startPos := p.pos
	p.pos++ // '%'
	name := p.takeIdent()
	p.skipTrivia()
	p.expectRune('(')
	arg := ""
	p.skipTrivia()
	if !p.peekRune(')') {
		arg = p.takeIdent()
	}
	p.skipTrivia()
	p.expectRune(')')

	var sym string
	switch name {
	case "sc":
		if arg == "" {
			arg = "INITIAL"
		}
		if !p.knownScanner(g, arg) {
			line, col := p.lineCol(startPos)
			return Factor{}, perr.NewUnknownScannerError(arg, line, col)
		}
		sym = ScannerSwitchSet(arg)
	case "push":
		if arg == "" {
			return Factor{}, perr.NewGrammarError("%%push() requires a scanner state argument")
		}
		if !p.knownScanner(g, arg) {
			line, col := p.lineCol(startPos)
			return Factor{}, perr.NewUnknownScannerError(arg, line, col)
		}
		sym = ScannerSwitchPush(arg)
	case "pop":
		sym = ScannerSwitchPop
	default:
		return Factor{}, perr.NewGrammarError("unknown inline scanner directive %%%s()", name)
	}
	return p.parseSuffixes(Factor{Kind: FactorScannerSwitch, Symbol: sym})
}

func (p *loader) parseGroupAlts(g *Grammar) ([][]Factor, error) {
	var alts [][]Factor
	for {
		alt, err := p.parseAlt(g)
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
		p.skipTrivia()
		if p.peekRune('|') {
			p.pos++
			continue
		}
		return alts, nil
	}
}

func (p *loader) parseSuffixes(f Factor) (Factor, error) {
	for {
		p.skipTrivia()
		switch {
		case p.peekRune('^'):
			p.pos++
			f.Cut = true
		case p.peekRune(':'):
			p.pos++
			p.skipTrivia()
			f.UserType = p.takeIdent()
		case p.peekRune('@'):
			p.pos++
			f.Member = p.takeIdent()
		default:
			return f, nil
		}
	}
}

// --- low-level scanning helpers ---

func (p *loader) eof() bool { return p.pos >= len(p.src) }

func (p *loader) peekRune(r rune) bool {
	return !p.eof() && p.src[p.pos] == r
}

func (p *loader) peekStr(s string) bool {
	rs := []rune(s)
	if p.pos+len(rs) > len(p.src) {
		return false
	}
	for i, r := range rs {
		if p.src[p.pos+i] != r {
			return false
		}
	}
	return true
}

func (p *loader) expectRune(r rune) {
	p.skipTrivia()
	if p.eof() || p.src[p.pos] != r {
		panic(perr.NewGrammarError("expected %q, got %q", string(r), p.remainder(10)))
	}
	p.pos++
}

func (p *loader) remainder(n int) string {
	end := p.pos + n
	if end > len(p.src) {
		end = len(p.src)
	}
	return string(p.src[p.pos:end])
}

func (p *loader) skipTrivia() {
	for !p.eof() {
		r := p.src[p.pos]
		switch {
		case unicode.IsSpace(r):
			p.pos++
		case p.peekStr("//"):
			for !p.eof() && p.src[p.pos] != '\n' {
				p.pos++
			}
		case p.peekStr("/*"):
			p.pos += 2
			for !p.eof() && !p.peekStr("*/") {
				p.pos++
			}
			if !p.eof() {
				p.pos += 2
			}
		default:
			return
		}
	}
}

func (p *loader) takeIdent() string {
	start := p.pos
	for !p.eof() {
		r := p.src[p.pos]
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			p.pos++
			continue
		}
		break
	}
	return string(p.src[start:p.pos])
}

func (p *loader) takeIdentArg() string {
	p.skipTrivia()
	return p.takeIdent()
}

func (p *loader) takeQualifiedArg() string {
	p.skipTrivia()
	start := p.pos
	for !p.eof() {
		r := p.src[p.pos]
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == ':' {
			p.pos++
			continue
		}
		break
	}
	return string(p.src[start:p.pos])
}

func (p *loader) takeStringArg() string {
	p.skipTrivia()
	if !p.peekRune('"') {
		return p.takeIdent()
	}
	return p.takeQuoted('"')
}

func (p *loader) takeQuoted(delim rune) string {
	p.pos++ // opening delimiter
	start := p.pos
	for !p.eof() && p.src[p.pos] != delim {
		if p.src[p.pos] == '\\' && p.pos+1 < len(p.src) {
			p.pos++
		}
		p.pos++
	}
	s := string(p.src[start:p.pos])
	if !p.eof() {
		p.pos++ // closing delimiter
	}
	return s
}
