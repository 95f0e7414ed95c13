package parse

import (
	"fmt"

	"github.com/thistlearc/parsegen/grammar"
)

// LRActionType distinguishes the kind of entry in an LR action table cell.
type LRActionType int

const (
	LRShift LRActionType = iota
	LRReduce
	LRAccept
	LRError
)

func (t LRActionType) String() string {
	switch t {
	case LRShift:
		return "shift"
	case LRReduce:
		return "reduce"
	case LRAccept:
		return "accept"
	default:
		return "error"
	}
}

// LRAction is one cell of an LR(1)/LALR(1) action table.
type LRAction struct {
	Type LRActionType

	// Production is used when Type is LRReduce: the β of A -> β.
	Production grammar.Production

	// Symbol is used when Type is LRReduce: the A of A -> β.
	Symbol string

	// State is the state to shift to, used only when Type is LRShift.
	State int

	// ProdIndex is the grammar-wide production index, used when Type is
	// LRReduce to invoke the semantic dispatcher for the right production.
	ProdIndex int
}

func (act LRAction) String() string {
	switch act.Type {
	case LRAccept:
		return "ACTION<accept>"
	case LRReduce:
		return fmt.Sprintf("ACTION<reduce %s -> %s>", act.Symbol, act.Production.String())
	case LRShift:
		return fmt.Sprintf("ACTION<shift %d>", act.State)
	default:
		return "ACTION<error>"
	}
}

// makeLRConflictError builds the diagnostic for two actions that both
// apply to the same (state, terminal) cell, describing a shift/reduce,
// reduce/reduce, or accept conflict in terms a grammar author can act on.
func makeLRConflictError(act1, act2 LRAction, onInput string) error {
	sr := (act1.Type == LRReduce && act2.Type == LRShift) || (act1.Type == LRShift && act2.Type == LRReduce)
	if sr {
		reduce := act1
		if act1.Type == LRShift {
			reduce = act2
		}
		return fmt.Errorf("shift/reduce conflict on terminal %q (shift, or reduce %s -> %s)",
			onInput, reduce.Symbol, reduce.Production.String())
	}
	if act1.Type == LRReduce && act2.Type == LRReduce {
		return fmt.Errorf("reduce/reduce conflict on terminal %q (reduce %s -> %s, or reduce %s -> %s)",
			onInput, act1.Symbol, act1.Production.String(), act2.Symbol, act2.Production.String())
	}
	if act1.Type == LRAccept || act2.Type == LRAccept {
		other := act2
		if act2.Type == LRAccept {
			other = act1
		}
		return fmt.Errorf("accept/%s conflict on terminal %q", other.Type, onInput)
	}
	return fmt.Errorf("LR action conflict on terminal %q (%s or %s)", onInput, act1, act2)
}
