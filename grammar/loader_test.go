package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thistlearc/parsegen/perr"
)

func Test_Load_Directives(t *testing.T) {
	assert := assert.New(t)

	src := `
%start S
%title "test grammar"
%comment "for the loader tests"
%grammar_type "lalr(1)"
%user_type Num = model::Number
%nt_type S = model::Start
%t_type model::Token
%line_comment "//"
%block_comment "/*" "*/"
%%
S : id ;
`
	g, meta, err := Load(src)
	assert.NoError(err)
	assert.Equal("S", meta.Start)
	assert.Equal("test grammar", meta.Title)
	assert.Equal("for the loader tests", meta.Comment)
	assert.Equal(ModeLALR1, meta.Mode)
	assert.Equal("model::Number", meta.UserTypes["Num"])
	assert.Equal("model::Start", meta.NTTypes["S"])
	assert.Equal("model::Token", meta.TType)
	assert.Equal("//", meta.LineComment)
	assert.Equal("/*", meta.BlockCommentL)
	assert.Equal("*/", meta.BlockCommentR)
	assert.Equal("S", g.StartSymbol())
}

func Test_Load_DefaultsToLLKMode(t *testing.T) {
	assert := assert.New(t)

	g, meta, err := Load(`
%start S
%%
S : id ;
`)
	assert.NoError(err)
	assert.Equal(ModeLLK, meta.Mode)
	assert.True(g.IsTerminal("id"))
}

func Test_Load_NullableDetection(t *testing.T) {
	assert := assert.New(t)

	// S derives A B where A is nullable but B is not, so S itself is not
	// nullable and FIRST_1(S) is exactly B's first terminal.
	g, _, err := Load(`
%start S
%%
S : A B ;
A : ;
B : "x" ;
`)
	assert.NoError(err)

	nullable := g.CalculateNullableNonTerminals()
	assert.True(nullable["A"])
	assert.False(nullable["S"])
	assert.False(nullable["B"])

	assert.Equal([]KTuple{{"x"}}, g.FirstK("S", 1))
}

func Test_Load_ThenLeftFactor_DanglingElse(t *testing.T) {
	assert := assert.New(t)

	g, _, err := Load(`
%start A
%%
A : "if" E "then" S | "if" E "then" S "else" S ;
S : id ;
E : id ;
`)
	assert.NoError(err)

	out := g.LeftFactor()

	aProds := out.Rule("A").Productions
	assert.Equal(1, len(aProds))
	assert.True(aProds[0].Equal(Production{"if", "E", "then", "S", "A-P"}))

	auxProds := out.Rule("A-P").Productions
	assert.Equal(2, len(auxProds))
	assert.True(auxProds[0].IsEpsilon())
	assert.True(auxProds[1].Equal(Production{"else", "S"}))
}

func Test_Load_LowersOptional(t *testing.T) {
	assert := assert.New(t)

	g, _, err := Load(`
%start S
%%
S : [ "a" ] "b" ;
`)
	assert.NoError(err)

	assert.True(g.HasRule("S-Opt"))
	prods := g.Rule("S-Opt").Productions
	assert.Equal(2, len(prods))
	assert.True(prods[0].Equal(Production{"a"}))
	assert.True(prods[1].IsEpsilon())
	assert.True(g.Rule("S").Productions[0].Equal(Production{"S-Opt", "b"}))
}

func Test_Load_LowersRepetitionRightRecursive(t *testing.T) {
	assert := assert.New(t)

	g, _, err := Load(`
%start S
%%
S : { "a" } "b" ;
`)
	assert.NoError(err)

	assert.True(g.HasRule("S-Rep"))
	prods := g.Rule("S-Rep").Productions
	assert.Equal(2, len(prods))
	assert.True(prods[0].Equal(Production{"a", "S-Rep"}))
	assert.True(prods[1].IsEpsilon())

	// The lowering is right-recursive, never left-recursive, so it stays
	// usable under LL prediction without another transformation pass.
	assert.Empty(g.LeftRecursive())
	assert.Contains(g.RightRecursive(), "S-Rep")
}

func Test_Load_LowersGroupAlternatives(t *testing.T) {
	assert := assert.New(t)

	g, _, err := Load(`
%start S
%%
S : ( "a" | "b" ) "c" ;
`)
	assert.NoError(err)

	assert.True(g.HasRule("S-Grp"))
	prods := g.Rule("S-Grp").Productions
	assert.Equal(2, len(prods))
	assert.True(prods[0].Equal(Production{"a"}))
	assert.True(prods[1].Equal(Production{"b"}))
}

func Test_Load_RecordsCutSymbols(t *testing.T) {
	assert := assert.New(t)

	_, meta, err := Load(`
%start S
%%
S : "a"^ id ;
`)
	assert.NoError(err)
	assert.True(meta.Cuts["S::a"])
}

func Test_Load_RejectsEmptyGroupOptionalRepetition(t *testing.T) {
	assert := assert.New(t)

	testCases := []struct {
		name string
		src  string
		want any
	}{
		{"group", `%start S` + "\n%%\nS : ( ) id ;\n", &perr.EmptyGroupError{}},
		{"optional", `%start S` + "\n%%\nS : [ ] id ;\n", &perr.EmptyOptionalError{}},
		{"repetition", `%start S` + "\n%%\nS : { } id ;\n", &perr.EmptyRepetitionError{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Load(tc.src)
			if !assert.Error(err) {
				return
			}
			switch tc.want.(type) {
			case *perr.EmptyGroupError:
				var target *perr.EmptyGroupError
				assert.ErrorAs(err, &target)
			case *perr.EmptyOptionalError:
				var target *perr.EmptyOptionalError
				assert.ErrorAs(err, &target)
			case *perr.EmptyRepetitionError:
				var target *perr.EmptyRepetitionError
				assert.ErrorAs(err, &target)
			}
		})
	}
}

func Test_Load_AllowsEpsilonAlternative(t *testing.T) {
	assert := assert.New(t)

	// `EP : "+" T EP | ;` is a legitimate epsilon alternative at the rule
	// level, not an empty group.
	g, _, err := Load(`
%start E
%%
E : T EP ;
EP : "+" T EP | ;
T : id ;
`)
	assert.NoError(err)
	prods := g.Rule("EP").Productions
	assert.Equal(2, len(prods))
	assert.True(prods[1].IsEpsilon())
}

func Test_Load_RejectsUnknownScannerInInlineSwitch(t *testing.T) {
	assert := assert.New(t)

	_, _, err := Load(`
%start S
%%
S : %push(NOPE) id %pop() ;
`)
	assert.Error(err)
	var target *perr.UnknownScannerError
	assert.ErrorAs(err, &target)
	assert.Equal("NOPE", target.Name)
}

func Test_Load_RejectsUnknownScannerInOnDirective(t *testing.T) {
	assert := assert.New(t)

	_, _, err := Load(`
%start S
%on id %enter NOPE
%%
S : id ;
`)
	assert.Error(err)
	var target *perr.UnknownScannerError
	assert.ErrorAs(err, &target)
}

func Test_Load_RejectsConflictingTokenAliases(t *testing.T) {
	assert := assert.New(t)

	// The same spelling declared once as a legacy literal and once as a
	// raw literal is a conflicting alias, not a silent re-declaration.
	_, _, err := Load(`
%start S
%%
S : "x" A ;
A : 'x' ;
`)
	assert.Error(err)
	var target *perr.ConflictingTokenAliasesError
	assert.ErrorAs(err, &target)
	assert.Equal("x", target.Terminal)
}

func Test_Load_RejectsScannerWithNoActiveTerminals(t *testing.T) {
	assert := assert.New(t)

	_, _, err := Load(`
%start S
%scanner STR {
	%auto_ws_off
}
%%
S : ;
`)
	assert.Error(err)
	var target *perr.EmptyScannersError
	assert.ErrorAs(err, &target)
	assert.Equal("STR", target.Name)
}

func Test_Load_ScannerBlockSettings(t *testing.T) {
	assert := assert.New(t)

	g, _, err := Load(`
%start S
%scanner STR {
	%auto_ws_off
	%line_comment "#"
}
%%
S : "x" ;
`)
	assert.NoError(err)

	scanners := g.Scanners()
	assert.Equal(1, len(scanners))
	assert.Equal("STR", scanners[0].Name)
	assert.True(scanners[0].AutoWSOff)
	assert.Equal("#", scanners[0].LineComment)
}

func Test_Load_OnDirectiveVariants(t *testing.T) {
	assert := assert.New(t)

	_, meta, err := Load(`
%start S
%scanner STR {
}
%on lquote %push STR
%on rquote %pop
%on semi, comma %enter INITIAL
%%
S : lquote rquote semi comma ;
`)
	assert.NoError(err)

	assert.Equal(3, len(meta.Transitions))
	assert.Equal([]string{"lquote"}, meta.Transitions[0].Terminals)
	assert.Equal("STR", meta.Transitions[0].Push)
	assert.True(meta.Transitions[1].Pop)
	assert.Equal([]string{"semi", "comma"}, meta.Transitions[2].Terminals)
	assert.Equal("INITIAL", meta.Transitions[2].Enter)
}

func Test_Load_SkipsCommentsInGrammarSource(t *testing.T) {
	assert := assert.New(t)

	g, _, err := Load(`
%start S
// a line comment before the separator
%%
/* a block comment
   spanning lines */
S : id ; // trailing note
`)
	assert.NoError(err)
	assert.True(g.HasRule("S"))
}
