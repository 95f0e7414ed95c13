package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func setupGrammar(terminals []string, rules []string) Grammar {
	g := Grammar{}
	for _, t := range terminals {
		g.AddTerm(t, nil)
	}
	for _, r := range rules {
		rule := mustParseRule(r)
		for _, p := range rule.Productions {
			g.AddRule(rule.NonTerminal, p)
		}
	}
	return g
}

func mustParseRule(s string) Rule {
	// "NT -> a b | c" style, reused from item notation conventions.
	parts := splitOnce(s, "->")
	nt := trimSpace(parts[0])
	alts := splitAll(parts[1], "|")
	r := Rule{NonTerminal: nt}
	for _, alt := range alts {
		alt = trimSpace(alt)
		if alt == "" || alt == Epsilon[0] {
			r.Productions = append(r.Productions, Production{Epsilon[0]})
			continue
		}
		r.Productions = append(r.Productions, Production(fields(alt)))
	}
	return r
}

func Test_Grammar_RemoveEpsilons(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar(
		[]string{"a", "b"},
		[]string{
			"S -> A B",
			"A -> a | ε",
			"B -> b | ε",
		},
	)

	out := g.RemoveEpsilons()
	nullable := g.CalculateNullableNonTerminals()
	assert.True(nullable["A"])
	assert.True(nullable["B"])

	sProds := out.Rule("S").Productions
	assert.True(len(sProds) >= 1)
	hasAB := false
	for _, p := range sProds {
		if p.Equal(Production{"A", "B"}) {
			hasAB = true
		}
	}
	assert.True(hasAB)
}

func Test_Grammar_RemoveUnitProductions(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar(
		[]string{"a"},
		[]string{
			"S -> A",
			"A -> a",
		},
	)

	out := g.RemoveUnitProductions()
	sProds := out.Rule("S").Productions
	assert.Equal(1, len(sProds))
	assert.True(sProds[0].Equal(Production{"a"}))
}

func Test_Grammar_RemoveLeftRecursion_direct(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar(
		[]string{"+", "id"},
		[]string{
			"E -> E + id | id",
		},
	)

	assert.Contains(g.LeftRecursive(), "E")

	out := g.RemoveLeftRecursion()
	assert.NotContains(out.LeftRecursive(), "E")
	assert.True(out.HasRule("E-P"))
}

func Test_Grammar_LeftFactor(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar(
		[]string{"a", "b", "c"},
		[]string{
			"S -> a b | a c",
		},
	)

	out := g.LeftFactor()
	sProds := out.Rule("S").Productions
	assert.Equal(1, len(sProds))
	assert.Equal(2, len(sProds[0]))
	assert.Equal("a", sProds[0][0])
}

func Test_Grammar_FIRST_FOLLOW(t *testing.T) {
	assert := assert.New(t)

	// Aiken-style arithmetic expression grammar.
	g := setupGrammar(
		[]string{"+", "*", "(", ")", "id"},
		[]string{
			"S -> T X",
			"X -> + T X | ε",
			"T -> F Y",
			"Y -> * F Y | ε",
			"F -> ( S ) | id",
		},
	)

	assert.ElementsMatch([]string{"(", "id"}, g.FIRST("F"))
	assert.ElementsMatch([]string{"(", "id"}, g.FIRST("T"))
	assert.ElementsMatch([]string{"(", "id"}, g.FIRST("S"))
	assert.ElementsMatch([]string{"+", Epsilon[0]}, g.FIRST("X"))

	assert.ElementsMatch([]string{")", "$"}, g.FOLLOW("X"))
	assert.ElementsMatch([]string{")", "$"}, g.FOLLOW("S"))
}

func Test_Grammar_IsLL1_and_LLParseTable(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar(
		[]string{"+", "*", "(", ")", "id"},
		[]string{
			"S -> T X",
			"X -> + T X | ε",
			"T -> F Y",
			"Y -> * F Y | ε",
			"F -> ( S ) | id",
		},
	)

	assert.True(g.IsLL1())

	table, err := g.LLParseTable()
	assert.NoError(err)
	assert.True(table.Get("F", "id").Equal(Production{"id"}))
	assert.True(table.Get("X", "+").Equal(Production{"+", "T", "X"}))
	assert.True(table.Get("X", ")").Equal(Production{Epsilon[0]}))
}

func Test_Grammar_NotLL1(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar(
		[]string{"a", "b"},
		[]string{
			"S -> a S | a b",
		},
	)
	assert.False(g.IsLL1())
	_, err := g.LLParseTable()
	assert.Error(err)
}

func Test_Grammar_FindK(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar(
		[]string{"a", "b", "c"},
		[]string{
			"S -> a b | a c",
		},
	)

	results, err := g.FindK()
	assert.NoError(err)
	assert.Equal(2, results["S"].K)
}

func Test_Disjoint_trieIntersection(t *testing.T) {
	assert := assert.New(t)

	a := []KTuple{{"a", "b"}}
	b := []KTuple{{"a", "c"}}
	assert.True(Disjoint(a, b))

	c := []KTuple{{"a", "b"}}
	assert.False(Disjoint(a, c))
}

func Test_Grammar_Validate(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar([]string{"a"}, []string{"S -> a"})
	assert.NoError(g.Validate(ModeLLK))

	bad := Grammar{}
	bad.AddRule("S", Production{"undefined"})
	assert.Error(bad.Validate(ModeLLK))
}

func Test_Grammar_Validate_RejectsLeftRecursionForLLMode(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar(
		[]string{"plus", "id"},
		[]string{
			"E -> E plus T | T",
			"T -> id",
		},
	)

	err := g.Validate(ModeLLK)
	assert.Error(err)
	var lrErr *LeftRecursionError
	assert.ErrorAs(err, &lrErr)
	assert.Contains(lrErr.NonTerminals, "E")

	// The same grammar is fine for LALR(1), which tolerates left
	// recursion.
	assert.NoError(g.Validate(ModeLALR1))
}

func Test_Grammar_Validate_RejectsUnreachableNonTerminal(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar(
		[]string{"a", "b"},
		[]string{
			"S -> a",
			"Unused -> b",
		},
	)

	err := g.Validate(ModeLLK)
	assert.Error(err)
	var unreachedErr *UnreachableNonTerminalsError
	assert.ErrorAs(err, &unreachedErr)
	assert.Contains(unreachedErr.NonTerminals, "Unused")
}

func Test_Grammar_Validate_RejectsNonProductiveNonTerminal(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar(
		[]string{"a"},
		[]string{
			"S -> a | Loop",
			"Loop -> Loop",
		},
	)

	err := g.Validate(ModeLLK)
	assert.Error(err)
	var nonProdErr *NonProductiveNonTerminalsError
	assert.ErrorAs(err, &nonProdErr)
	assert.Contains(nonProdErr.NonTerminals, "Loop")
}

// --- tiny string helpers local to the test file, avoiding strings import
// noise in fixture-building helpers above ---

func splitOnce(s, sep string) []string {
	for i := 0; i+len(sep) <= len(s); i++ {
		if s[i:i+len(sep)] == sep {
			return []string{s[:i], s[i+len(sep):]}
		}
	}
	return []string{s}
}

func splitAll(s, sep string) []string {
	var out []string
	cur := ""
	for i := 0; i < len(s); i++ {
		if i+len(sep) <= len(s) && s[i:i+len(sep)] == sep {
			out = append(out, cur)
			cur = ""
			i += len(sep) - 1
			continue
		}
		cur += string(s[i])
	}
	out = append(out, cur)
	return out
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}

func fields(s string) []string {
	var out []string
	cur := ""
	for _, r := range s {
		if r == ' ' || r == '\t' {
			if cur != "" {
				out = append(out, cur)
				cur = ""
			}
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}
