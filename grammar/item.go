package grammar

import (
	"fmt"
	"strings"

	"github.com/thistlearc/parsegen/perr"
)

// LR0Item is a grammar position: a non-terminal, the symbols already
// matched to its left of the dot, and the symbols still expected to its
// right.
type LR0Item struct {
	NonTerminal string
	Left        []string
	Right       []string
}

// Equal reports whether it and o are the same item.
func (it LR0Item) Equal(o LR0Item) bool {
	return it.NonTerminal == o.NonTerminal &&
		stringsEqual(it.Left, o.Left) &&
		stringsEqual(it.Right, o.Right)
}

// String renders it as "NONTERM -> ALPHA . BETA".
func (it LR0Item) String() string {
	left := strings.Join(it.Left, " ")
	right := strings.Join(it.Right, " ")
	mid := left
	if left != "" && right != "" {
		mid += " . " + right
	} else if right != "" {
		mid = ". " + right
	} else {
		mid = left + " ."
	}
	if left == "" && right == "" {
		mid = "."
	}
	return fmt.Sprintf("%s -> %s", it.NonTerminal, mid)
}

// Production returns the item's complete right-hand side (Left followed
// by Right), ignoring the dot.
func (it LR0Item) Production() Production {
	out := make(Production, 0, len(it.Left)+len(it.Right))
	out = append(out, it.Left...)
	out = append(out, it.Right...)
	return out
}

// Advance returns the item with the dot moved one symbol to the right.
// It panics if Right is empty.
func (it LR0Item) Advance() LR0Item {
	if len(it.Right) == 0 {
		panic("advance of item with no remaining symbols")
	}
	return LR0Item{
		NonTerminal: it.NonTerminal,
		Left:        append(append([]string{}, it.Left...), it.Right[0]),
		Right:       append([]string{}, it.Right[1:]...),
	}
}

// LR1Item is an LR0Item paired with a single lookahead terminal.
type LR1Item struct {
	LR0Item
	Lookahead string
}

// Equal reports whether it and o are the same item with the same
// lookahead.
func (it LR1Item) Equal(o LR1Item) bool {
	return it.LR0Item.Equal(o.LR0Item) && it.Lookahead == o.Lookahead
}

// Copy returns an LR1Item with its own backing slices.
func (it LR1Item) Copy() LR1Item {
	return LR1Item{
		LR0Item: LR0Item{
			NonTerminal: it.NonTerminal,
			Left:        append([]string{}, it.Left...),
			Right:       append([]string{}, it.Right...),
		},
		Lookahead: it.Lookahead,
	}
}

// String renders it as "NONTERM -> ALPHA . BETA, lookahead".
func (it LR1Item) String() string {
	return it.LR0Item.String() + ", " + it.Lookahead
}

// CoreSet extracts the LR0 cores (lookahead discarded) from a set of
// LR1Items, deduplicated, used to detect when two canonical LR1 states
// share a core for LALR merging.
func CoreSet(items []LR1Item) []LR0Item {
	var out []LR0Item
	for _, it := range items {
		dup := false
		for _, existing := range out {
			if existing.Equal(it.LR0Item) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, it.LR0Item)
		}
	}
	return out
}

// EqualCoreSets reports whether two LR1 item sets have identical LR0
// cores, ignoring lookaheads and ordering.
func EqualCoreSets(a, b []LR1Item) bool {
	ca, cb := CoreSet(a), CoreSet(b)
	if len(ca) != len(cb) {
		return false
	}
	for _, x := range ca {
		found := false
		for _, y := range cb {
			if x.Equal(y) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ParseLR0Item parses the "NONTERM -> ALPHA . BETA" notation, treating a
// lone "ε" as an item with no symbols at all (Left and Right both empty).
func ParseLR0Item(s string) (LR0Item, error) {
	parts := strings.SplitN(s, "->", 2)
	if len(parts) != 2 {
		return LR0Item{}, perr.NewGrammarError("malformed LR(0) item notation: %q", s)
	}
	nt := strings.TrimSpace(parts[0])
	rhs := strings.TrimSpace(parts[1])

	dotIdx := strings.Index(rhs, ".")
	if dotIdx < 0 {
		return LR0Item{}, perr.NewGrammarError("LR(0) item notation missing dot: %q", s)
	}
	leftStr := strings.TrimSpace(rhs[:dotIdx])
	rightStr := strings.TrimSpace(rhs[dotIdx+1:])

	var left, right []string
	if leftStr != "" && leftStr != Epsilon[0] {
		left = strings.Fields(leftStr)
	}
	if rightStr != "" && rightStr != Epsilon[0] {
		right = strings.Fields(rightStr)
	}

	return LR0Item{NonTerminal: nt, Left: left, Right: right}, nil
}

// MustParseLR0Item is ParseLR0Item but panics on error, for use in tests
// and other contexts where the notation is a compile-time literal.
func MustParseLR0Item(s string) LR0Item {
	it, err := ParseLR0Item(s)
	if err != nil {
		panic(err)
	}
	return it
}

// ParseLR1Item parses the "NONTERM -> ALPHA . BETA, lookahead" notation.
func ParseLR1Item(s string) (LR1Item, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return LR1Item{}, perr.NewGrammarError("malformed LR(1) item notation: %q", s)
	}
	it0, err := ParseLR0Item(strings.TrimSpace(parts[0]))
	if err != nil {
		return LR1Item{}, err
	}
	return LR1Item{LR0Item: it0, Lookahead: strings.TrimSpace(parts[1])}, nil
}

// MustParseLR1Item is ParseLR1Item but panics on error.
func MustParseLR1Item(s string) LR1Item {
	it, err := ParseLR1Item(s)
	if err != nil {
		panic(err)
	}
	return it
}
