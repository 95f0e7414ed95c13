package gen

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	rezi "github.com/dekarrin/rezi/v2"
	"github.com/thistlearc/parsegen/automaton"
	"github.com/thistlearc/parsegen/grammar"
	"github.com/thistlearc/parsegen/parse"
	"github.com/thistlearc/parsegen/perr"
)

// grammarCacheKey hashes g's terminal list and production list (both
// already in first-declaration order) plus the selected mode, so any
// change that could alter analysis output changes the key, while
// unrelated directive reordering does not.
func grammarCacheKey(g *grammar.Grammar, meta *grammar.Meta) string {
	h := sha256.New()
	fmt.Fprintf(h, "mode=%d\n", meta.Mode)
	for _, t := range g.GetOrderedTerminals() {
		fmt.Fprintf(h, "term %s %d %q %v\n", t.ID, t.Kind, t.Pattern, t.ScannerStates)
	}
	for _, ip := range g.AllProductions() {
		fmt.Fprintf(h, "prod %d %s -> %s\n", ip.Index, ip.NonTerminal, ip.Prod.String())
	}
	return hex.EncodeToString(h.Sum(nil))
}

func cachePath(cacheDir, key string) string {
	return filepath.Join(cacheDir, key+".ptab")
}

// cacheEnvelope is the plain-data payload rezi.Enc/Dec serializes to a
// .ptab file: rezi's reflection-based codec for ordinary Go values, the
// reflection-based sibling of rezi's BinaryMarshaler-wrapping
// EncBinary/DecBinary entry points.
type cacheEnvelope struct {
	Mode  int
	DFAs  map[string]automaton.LookaheadDFASnapshot
	Table *parse.LRTableSnapshot
}

// saveCache writes res to cacheDir under key, creating cacheDir if needed.
func saveCache(cacheDir, key string, res *Result) error {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return perr.WrapGrammarError(err, "gen: creating cache directory %q", cacheDir)
	}

	env := cacheEnvelope{Mode: int(res.Mode)}
	if res.Table != nil {
		snap := res.Table.Snapshot()
		env.Table = &snap
	}
	if res.DFAs != nil {
		env.DFAs = make(map[string]automaton.LookaheadDFASnapshot, len(res.DFAs))
		for nt, dfa := range res.DFAs {
			env.DFAs[nt] = dfa.Snapshot()
		}
	}

	data, err := rezi.Enc(env)
	if err != nil {
		return perr.WrapGrammarError(err, "gen: encoding table cache")
	}

	return os.WriteFile(cachePath(cacheDir, key), data, 0o644)
}

// loadCache reads and decodes the cache entry for key, if one exists. A
// missing, corrupt, or format-mismatched file is reported as a cache miss
// (ok=false, err=nil) rather than a fatal error: callers fall through to
// recomputation and overwrite it.
func loadCache(cacheDir, key string, g *grammar.Grammar, meta *grammar.Meta) (*Result, bool, error) {
	data, err := os.ReadFile(cachePath(cacheDir, key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, perr.WrapGrammarError(err, "gen: reading table cache")
	}

	var env cacheEnvelope
	if _, err := rezi.Dec(data, &env); err != nil {
		return nil, false, nil
	}

	res := &Result{Mode: grammar.ParserMode(env.Mode)}
	if env.Table != nil {
		res.Table = parse.TableFromSnapshot(g, *env.Table)
	}
	if env.DFAs != nil {
		res.DFAs = make(map[string]*automaton.LookaheadDFA, len(env.DFAs))
		for nt, snap := range env.DFAs {
			res.DFAs[nt] = automaton.DFAFromSnapshot(snap)
		}
	}
	return res, true, nil
}
