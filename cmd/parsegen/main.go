/*
Parsegen generates parser tables from one or more grammar files.

It reads each file's EBNF-like grammar source, analyzes it
according to its %grammar_type directive (LL(k) lookahead DFAs or an
LALR(1) action/goto table), and either prints the result or leaves it in
the on-disk table cache for a later generated parser to load.

Usage:

	parsegen [flags] GRAMMAR_FILE...

The flags are:

	-v, --version
		Give the current version of parsegen and then exit.

	-o, --cache-dir DIR
		Directory to read/write the content-hashed table cache. Defaults
		to not caching at all.

	-p, --print
		Print the generated table (or DFA summary) for each grammar to
		stdout.

	-e, --explain
		Report each grammar's right-recursive non-terminals. Right
		recursion is legal under LALR(1) but grows the parse stack with
		input length, so this is informational rather than an error.

Each grammar file is analyzed on its own goroutine: per-grammar analysis
is wholly owned by the goroutine that runs it, and results are reported
back over a single fan-in channel, so no mutable state is shared between
grammars while they are being processed.
*/
package main

import (
	"fmt"
	"os"

	"github.com/dekarrin/rosed"
	"github.com/spf13/pflag"
	"github.com/thistlearc/parsegen/gen"
	"github.com/thistlearc/parsegen/grammar"
	"github.com/thistlearc/parsegen/util"
)

const (
	// ExitSuccess indicates every grammar was loaded and analyzed without
	// error.
	ExitSuccess = iota

	// ExitUsageError indicates the command was invoked without any
	// grammar files to process.
	ExitUsageError

	// ExitGenError indicates at least one grammar failed to load or
	// analyze.
	ExitGenError
)

// version is the current version of parsegen.
const version = "0.1.0"

var (
	returnCode  int     = ExitSuccess
	flagVersion *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	cacheDir    *string = pflag.StringP("cache-dir", "o", "", "Directory to read/write the generation cache in. Leave unset to disable caching")
	printTables *bool   = pflag.BoolP("print", "p", false, "Print the generated table or DFA summary for each grammar")
	explain     *bool   = pflag.BoolP("explain", "e", false, "Report each grammar's right-recursive non-terminals")
)

// genJob is one grammar file's analysis outcome, reported back over
// results. Exactly one of err or (g, meta, res) is meaningful.
type genJob struct {
	file string
	g    *grammar.Grammar
	meta *grammar.Meta
	res  *gen.Result
	err  error
}

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version)
		return
	}

	files := pflag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "ERROR: no grammar files given")
		returnCode = ExitUsageError
		return
	}

	results := generateAll(files, *cacheDir)

	hadError := false
	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s: %s\n", r.file, r.err.Error())
			hadError = true
			continue
		}
		if *printTables {
			printResult(r)
		} else {
			fmt.Printf("%s: ok (cached=%v)\n", r.file, r.res.FromCache)
		}
		if *explain {
			explainGrammar(r)
		}
	}

	if hadError {
		returnCode = ExitGenError
	}
}

// generateAll loads and analyzes every file concurrently, one goroutine
// per grammar, and returns the results in the same order files were
// given regardless of completion order.
func generateAll(files []string, cacheDir string) []genJob {
	type indexed struct {
		idx int
		job genJob
	}

	out := make(chan indexed, len(files))
	for i, f := range files {
		go func(idx int, file string) {
			out <- indexed{idx: idx, job: generateOne(file, cacheDir)}
		}(i, f)
	}

	results := make([]genJob, len(files))
	for range files {
		r := <-out
		results[r.idx] = r.job
	}
	return results
}

func generateOne(file string, cacheDir string) genJob {
	data, err := os.ReadFile(file)
	if err != nil {
		return genJob{file: file, err: err}
	}

	g, meta, err := grammar.Load(string(data))
	if err != nil {
		return genJob{file: file, err: err}
	}

	res, err := gen.Generate(g, meta, cacheDir)
	if err != nil {
		return genJob{file: file, err: err}
	}

	return genJob{file: file, g: g, meta: meta, res: res}
}

func explainGrammar(r genJob) {
	fmt.Printf("=== %s: right recursion ===\n", r.file)

	rightRecursive := util.Alphabetized(r.g.RightRecursive())
	if len(rightRecursive) == 0 {
		fmt.Println("(none)")
		return
	}

	data := [][]string{{"Non-terminal", "Note"}}
	for _, nt := range rightRecursive {
		data = append(data, []string{nt, "legal under LALR(1); grows the parse stack with input length"})
	}

	report := rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
	fmt.Println(report)
}

func printResult(r genJob) {
	fmt.Printf("=== %s (cached=%v) ===\n", r.file, r.res.FromCache)
	switch r.res.Mode {
	case grammar.ModeLALR1:
		fmt.Println(r.res.Table.String())
	case grammar.ModeLLK:
		for _, nt := range util.OrderedKeys(r.res.DFAs) {
			dfa := r.res.DFAs[nt]
			fmt.Printf("%s: k=%d states=%d\n", nt, dfa.K, dfa.StateCount())
			fmt.Println(dfa.String())
		}
	}
}
