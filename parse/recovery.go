package parse

import (
	"github.com/thistlearc/parsegen/perr"
	"github.com/thistlearc/parsegen/types"
)

// maxRecoveredErrors is recovery's abort threshold: recovery gives up
// once this many syntax errors have been synthesized in one parse.
const maxRecoveredErrors = 100

// recoveryState tracks per-parse error-recovery bookkeeping: the
// synthesized errors recorded so far and the location of the last
// recovery attempt, so a second attempt at the same location (recovery
// made no progress) aborts the parse instead of looping forever.
type recoveryState struct {
	errors            []*perr.SyntaxError
	hasLast           bool
	lastLine, lastCol int
}

func (r *recoveryState) record(e *perr.SyntaxError) error {
	if len(r.errors) >= maxRecoveredErrors {
		return perr.NewRecoveryError("too many syntax errors (%d); aborting", maxRecoveredErrors)
	}
	var line, col int
	if e.Token != nil {
		line, col = e.Token.Line(), e.Token.LinePos()
	}
	if r.hasLast && r.lastLine == line && r.lastCol == col {
		return perr.NewRecoveryError("recovery made no progress at %d:%d; aborting", line, col)
	}
	r.lastLine, r.lastCol, r.hasLast = line, col, true
	r.errors = append(r.errors, e)
	return nil
}

// matchRectangle finds the largest aligned equal-length run between
// actual and expected that reaches either the end of actual or the end
// of expected: a simple matrix scan over every
// (aStart, eStart) starting pair.
func matchRectangle(actual, expected []string) (aStart, aEnd, eStart, eEnd int, ok bool) {
	bestLen := 0
	for as := 0; as <= len(actual); as++ {
		for es := 0; es <= len(expected); es++ {
			l := 0
			for as+l < len(actual) && es+l < len(expected) && actual[as+l] == expected[es+l] {
				l++
			}
			if l == 0 {
				continue
			}
			ae, ee := as+l, es+l
			if ae != len(actual) && ee != len(expected) {
				continue
			}
			if l > bestLen {
				bestLen, aStart, aEnd, eStart, eEnd, ok = l, as, ae, es, ee, true
			}
		}
	}
	return
}

// applyRecovery adjusts stream given the actual
// lookahead window and one candidate expected token-class sequence,
// returning whether a match rectangle was found (and therefore the
// ordinary adjustment applied) as opposed to falling back to the
// steamroller.
func applyRecovery(stream types.TokenStream, actual, expected []types.TokenClass) error {
	actualIDs := classIDs(actual)
	expectedIDs := classIDs(expected)

	aStart, _, eStart, _, ok := matchRectangle(actualIDs, expectedIDs)
	if !ok {
		return steamroll(stream, actual, expected)
	}

	switch {
	case aStart < eStart:
		for i := aStart; i < eStart; i++ {
			if err := stream.InsertTokenAt(i, expected[i]); err != nil {
				return err
			}
		}
	case aStart == eStart:
		for i := 0; i < aStart; i++ {
			if i >= len(actual) || i >= len(expected) {
				break
			}
			if actual[i].ID() != expected[i].ID() {
				if err := stream.ReplaceTokenTypeAt(i, expected[i]); err != nil {
					return err
				}
			}
		}
	default: // aStart > eStart
		for i := 0; i < aStart-eStart; i++ {
			if _, err := stream.Consume(); err != nil {
				return err
			}
		}
	}
	return nil
}

// steamroll replaces the leading window token-by-token with expected,
// the fallback used when no match rectangle exists at all.
func steamroll(stream types.TokenStream, actual, expected []types.TokenClass) error {
	changed := false
	for i, cls := range expected {
		if i < len(actual) && actual[i].ID() == cls.ID() {
			continue
		}
		changed = true
		var err error
		if i < len(actual) {
			err = stream.ReplaceTokenTypeAt(i, cls)
		} else {
			err = stream.InsertTokenAt(i, cls)
		}
		if err != nil {
			return err
		}
	}
	if !changed {
		return perr.NewRecoveryError("no match rectangle and the steamroller fallback made no change")
	}
	return nil
}

func classIDs(classes []types.TokenClass) []string {
	out := make([]string, len(classes))
	for i, c := range classes {
		out[i] = c.ID()
	}
	return out
}

// lookaheadWindow reads up to maxK lookahead tokens' classes from stream.
func lookaheadWindow(stream types.TokenStream, maxK int) ([]types.TokenClass, []types.Token, error) {
	var classes []types.TokenClass
	var toks []types.Token
	for i := 0; i < maxK; i++ {
		tok, err := stream.Lookahead(i)
		if err != nil {
			return nil, nil, err
		}
		classes = append(classes, tok.Class())
		toks = append(toks, tok)
		if tok.Class().ID() == types.TokenEndOfText.ID() {
			break
		}
	}
	return classes, toks, nil
}

// bestExpectedMatch tries each candidate expected token-class sequence
// (the root-to-accept paths of a failed prediction's lookahead DFA, or a
// singleton for a plain token mismatch) and returns the one whose match
// rectangle against actual is longest.
func bestExpectedMatch(actual []types.TokenClass, candidates [][]types.TokenClass) []types.TokenClass {
	actualIDs := classIDs(actual)
	var best []types.TokenClass
	bestLen := -1
	for _, cand := range candidates {
		aStart, aEnd, _, _, ok := matchRectangle(actualIDs, classIDs(cand))
		if !ok {
			continue
		}
		if length := aEnd - aStart; length > bestLen {
			bestLen, best = length, cand
		}
	}
	if best == nil && len(candidates) > 0 {
		return candidates[0]
	}
	return best
}
