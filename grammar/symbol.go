// Package grammar implements the context-free grammar intermediate
// representation and its analyses and transformations: nullability,
// FIRST_k/FOLLOW_k, productivity, reachability, left/right-recursion
// detection, EBNF lowering, left-factoring, the cut operator, and the
// LL(k) decidability search.
package grammar

import (
	"sort"
	"strings"

	"github.com/thistlearc/parsegen/types"
)

// MaxK is the largest lookahead depth the k-finder will try before giving
// up and reporting the grammar as not LL(k)-decidable.
const MaxK = 5

// Epsilon is the reserved production spelling for an empty right-hand
// side; Epsilon[0] is the symbol printed for it.
var Epsilon = [1]string{"ε"}

// Error is the sentinel Production returned by Rule lookups that miss.
var Error Production = nil

// Scanner-switch symbols occupy rhs positions like any other grammar
// symbol but are skipped when counting children for reduction; they
// are spelled with a "%" prefix so they can never collide with a
// terminal (lowercase-initial) or non-terminal (uppercase-initial) name.
const (
	scannerSwitchSetPrefix  = "%sc:"
	scannerSwitchPushPrefix = "%push:"
	scannerSwitchPop        = "%pop"
)

// ScannerSwitchSet returns the rhs symbol for an inline `%sc(state)`
// directive, which replaces the active scanner state outright.
func ScannerSwitchSet(state string) string { return scannerSwitchSetPrefix + state }

// ScannerSwitchPush returns the rhs symbol for an inline `%push(state)`
// directive, which saves the current scanner state and makes state active.
func ScannerSwitchPush(state string) string { return scannerSwitchPushPrefix + state }

// ScannerSwitchPop is the rhs symbol for an inline `%pop()` directive,
// which restores the scanner state saved by the matching push.
const ScannerSwitchPop = scannerSwitchPop

// IsScannerSwitch reports whether sym is one of the three scanner-switch
// pseudo-symbols rather than a terminal or non-terminal reference.
func IsScannerSwitch(sym string) bool {
	return sym == scannerSwitchPop || strings.HasPrefix(sym, scannerSwitchSetPrefix) || strings.HasPrefix(sym, scannerSwitchPushPrefix)
}

// ScannerSwitchTarget parses a ScannerSwitchSet/ScannerSwitchPush symbol
// back into its scanner-state name. It returns "" for a pop symbol.
func ScannerSwitchTarget(sym string) string {
	switch {
	case strings.HasPrefix(sym, scannerSwitchSetPrefix):
		return strings.TrimPrefix(sym, scannerSwitchSetPrefix)
	case strings.HasPrefix(sym, scannerSwitchPushPrefix):
		return strings.TrimPrefix(sym, scannerSwitchPushPrefix)
	default:
		return ""
	}
}

// ScannerSwitchKind parses sym (which must satisfy IsScannerSwitch) into
// its operation name ("set", "push", or "pop") and target state (empty
// for "pop").
func ScannerSwitchKind(sym string) (kind, target string) {
	switch {
	case sym == scannerSwitchPop:
		return "pop", ""
	case strings.HasPrefix(sym, scannerSwitchSetPrefix):
		return "set", strings.TrimPrefix(sym, scannerSwitchSetPrefix)
	case strings.HasPrefix(sym, scannerSwitchPushPrefix):
		return "push", strings.TrimPrefix(sym, scannerSwitchPushPrefix)
	default:
		return "", ""
	}
}

// SemanticSymbols returns p's rhs with scanner-switch pseudo-symbols
// removed: the subsequence that actually pushes a value onto a parser's
// semantic-value stack, and so the indexing a semantic action's
// children list and the cut-operator filter must agree on.
func (p Production) SemanticSymbols() []string {
	if p.IsEpsilon() {
		return nil
	}
	out := make([]string, 0, len(p))
	for _, sym := range p {
		if !IsScannerSwitch(sym) {
			out = append(out, sym)
		}
	}
	return out
}

// TerminalKind distinguishes how a terminal's pattern is interpreted.
type TerminalKind int

const (
	// KindLegacy is a terminal whose pattern is matched literally but
	// participates in keyword/identifier ambiguity resolution the way
	// hand-written legacy tokenizers historically did.
	KindLegacy TerminalKind = iota
	// KindRaw is a terminal matched as a literal string with no regex
	// metacharacters interpreted.
	KindRaw
	// KindRegex is a terminal matched as a regular expression.
	KindRegex
)

// Production is a right-hand side: an ordered sequence of symbol names.
// Lowercase names are terminals; uppercase names are non-terminals, per
// convention carried throughout this package. A production consisting of
// Epsilon[:] denotes the empty string.
type Production []string

// IsEpsilon reports whether p is the empty production.
func (p Production) IsEpsilon() bool {
	return len(p) == 1 && p[0] == Epsilon[0]
}

// Equal reports whether p and o contain the same symbols in the same
// order.
func (p Production) Equal(o Production) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// String renders p as space-separated symbols.
func (p Production) String() string {
	if p.IsEpsilon() {
		return Epsilon[0]
	}
	return strings.Join(p, " ")
}

// Copy returns a production with its own backing slice.
func (p Production) Copy() Production {
	cp := make(Production, len(p))
	copy(cp, p)
	return cp
}

// Rule is all of the productions for one non-terminal.
type Rule struct {
	NonTerminal string
	Productions []Production
}

// Copy returns a Rule with its own backing slices.
func (r Rule) Copy() Rule {
	cp := Rule{NonTerminal: r.NonTerminal}
	cp.Productions = make([]Production, len(r.Productions))
	for i, p := range r.Productions {
		cp.Productions[i] = p.Copy()
	}
	return cp
}

// String renders r as "NT -> ALT1 | ALT2 | ...".
func (r Rule) String() string {
	alts := make([]string, len(r.Productions))
	for i, p := range r.Productions {
		alts[i] = p.String()
	}
	return r.NonTerminal + " -> " + strings.Join(alts, " | ")
}

// TerminalDef is a declared terminal: its matching pattern, how the
// pattern should be interpreted, and the scanner states in which it is
// active.
type TerminalDef struct {
	ID            string
	Pattern       string
	Kind          TerminalKind
	ScannerStates []string
	Class         types.TokenClass
}

// ScannerConfig is one named lexer state, e.g. "INITIAL" or a
// user-declared nested scanner entered via %scanner.
type ScannerConfig struct {
	Name           string
	LineComment    string
	BlockCommentL  string
	BlockCommentR  string
	AutoNewlineOff bool
	AutoWSOff      bool
}

func sortedStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	sort.Strings(out)
	return out
}
