// Package gen is the top-level orchestration a grammar file goes through to
// become a usable parser: load, validate, analyze (FindK or LALR(1) table
// construction), with a binary cache of the expensive analysis step so a
// second run against an unchanged grammar doesn't redo it. Modeled on
// ictiobus.go's Frontend[E] pipeline shape (lex, parse, dispatch), adapted
// to a build-time pipeline (load, analyze, cache) rather than a per-input
// analysis pipeline.
package gen

import (
	"github.com/thistlearc/parsegen/automaton"
	"github.com/thistlearc/parsegen/grammar"
	"github.com/thistlearc/parsegen/parse"
	"github.com/thistlearc/parsegen/perr"
)

// Result is the outcome of generating tables for a grammar: exactly one of
// DFAs or Table is populated, depending on meta.Mode.
type Result struct {
	Mode  grammar.ParserMode
	DFAs  map[string]*automaton.LookaheadDFA
	Table *parse.LRParseTable

	// FromCache reports whether Result was deserialized from cacheDir
	// instead of freshly computed.
	FromCache bool
}

// Generate builds the parser tables meta.Mode selects for g, consulting
// cacheDir first (see cache.go) and writing the result back to it on a
// cache miss. cacheDir may be empty, which disables caching outright.
func Generate(g *grammar.Grammar, meta *grammar.Meta, cacheDir string) (*Result, error) {
	if err := g.Validate(meta.Mode); err != nil {
		return nil, err
	}

	key := grammarCacheKey(g, meta)

	if cacheDir != "" {
		if res, ok, err := loadCache(cacheDir, key, g, meta); err != nil {
			return nil, err
		} else if ok {
			res.FromCache = true
			return res, nil
		}
	}

	res, err := analyze(g, meta)
	if err != nil {
		return nil, err
	}

	if cacheDir != "" {
		if err := saveCache(cacheDir, key, res); err != nil {
			return nil, err
		}
	}

	return res, nil
}

func analyze(g *grammar.Grammar, meta *grammar.Meta) (*Result, error) {
	switch meta.Mode {
	case grammar.ModeLALR1:
		table, err := parse.NewLRParseTable(g)
		if err != nil {
			return nil, err
		}
		return &Result{Mode: grammar.ModeLALR1, Table: table}, nil

	case grammar.ModeLLK:
		results, err := g.FindK()
		if err != nil {
			return nil, err
		}
		dfas, err := automaton.BuildLookaheadDFAs(results)
		if err != nil {
			return nil, err
		}
		return &Result{Mode: grammar.ModeLLK, DFAs: dfas}, nil

	default:
		return nil, perr.NewGrammarError("unknown grammar mode %d", meta.Mode)
	}
}
