package stdlib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	parsing "github.com/slaakko/cminor-sub003"
	"github.com/slaakko/cminor-sub003/stdlib"
)

func load(t *testing.T) *parsing.Grammar {
	t.Helper()
	g, err := stdlib.New(parsing.NewDomain(nil))
	require.NoError(t, err)
	return g
}

func TestValues(t *testing.T) {
	g := load(t)

	for _, test := range []struct {
		rule     string
		input    string
		expected any
	}{
		{"int", "42", int64(42)},
		{"int", "-12", int64(-12)},
		{"int", "+7", int64(7)},
		{"uint", "42", uint64(42)},
		{"hex", "ff", uint64(255)},
		{"hex_literal", "0X1f", uint64(31)},
		{"real", "1.5e3", 1500.0},
		{"real", "-.5", -0.5},
		{"real", "3.", 3.0},
		{"real", "2E-1", 0.2},
		{"ureal", "0.25", 0.25},
		{"num", "12", 12.0},
		{"num", "-1.5", -1.5},
		{"bool", "true", true},
		{"bool", "false", false},
		{"identifier", "_foo1", "_foo1"},
		{"qualified_id", "a.b.c", "a.b.c"},
		{"escape", `\n`, '\n'},
		{"escape", `\x41`, 'A'},
		{"escape", `\d66`, 'B'},
		{"escape", `\101`, 'A'},
		{"escape", `\q`, 'q'},
		{"char", "'a'", 'a'},
		{"char", `'\t'`, '\t'},
		{"string", `""`, ""},
		{"string", `"a\tb"`, "a\tb"},
		{"string", `"say \"hi\"\x21"`, `say "hi"!`},
	} {
		t.Run(test.rule+" "+test.input, func(t *testing.T) {
			v, err := g.ParseRule(test.rule, test.input, 0, "")
			require.NoError(t, err)
			assert.Equal(t, test.expected, v)
		})
	}
}

func TestRejected(t *testing.T) {
	g := load(t)

	for _, test := range []struct {
		rule  string
		input string
	}{
		{"int", "--1"},
		{"real", "12"},
		{"real", "1 . 5"},
		{"bool", "trueish"},
		{"identifier", "1abc"},
		{"qualified_id", "a..b"},
		{"char", "''"},
		{"hex_literal", "0x"},
	} {
		t.Run(test.rule+" "+test.input, func(t *testing.T) {
			_, err := g.ParseRule(test.rule, test.input, 0, "")
			assert.Error(t, err)
		})
	}
}

func TestUnterminatedLiterals(t *testing.T) {
	g := load(t)

	_, err := g.ParseRule("string", `"abc`, 0, "s.cm")
	require.True(t, parsing.IsExpectationFailure(err))
	assert.Equal(t, `s.cm:1:5: '"' expected in rule `+"`stdlib.string`", err.Error())

	_, err = g.ParseRule("char", "'ab'", 0, "")
	assert.True(t, parsing.IsExpectationFailure(err))
}

func TestConversionErrorsAbortTheParse(t *testing.T) {
	g := load(t)

	_, err := g.ParseRule("int", "99999999999999999999", 0, "big.cm")
	require.Error(t, err)
	assert.False(t, parsing.IsExpectationFailure(err))
	assert.Contains(t, err.Error(), `big.cm:0..20: invalid integer "99999999999999999999"`)
}

// numbers is a grammar that skips white space and comments between
// numbers terminated by semicolons
type numbers struct{}

func (numbers) Name() string         { return "numbers" }
func (numbers) Namespace() string    { return "" }
func (numbers) References() []string { return []string{stdlib.Name} }

func (numbers) CreateRules(g *parsing.Grammar) {
	g.AddRule("list",
		parsing.Many(parsing.Seq(parsing.CallAs("n", "stdlib.num", 0), parsing.Char(';'))),
		parsing.Returns[[]float64]())
	g.SetStart("list")
	g.SetSkip("stdlib.spaces_and_comments")
}

func (numbers) Link(g *parsing.Grammar) error {
	g.Rule("list").Nonterminal("n").SetPostCall(func(ctx *parsing.Context, value any) {
		ctx.SetValue(append(parsing.Value[[]float64](ctx), value.(float64)))
	})
	return nil
}

func TestSkippingSpacesAndComments(t *testing.T) {
	d := parsing.NewDomain(nil)
	stdlib.Register(d)
	d.Register(func() parsing.Definition { return numbers{} })
	g := d.MustGrammar("numbers")

	v, err := g.Parse(`
		// leading comment
		1 ; 2.5; /* a * block / comment */
		-3 /**/ ;
	`, 0, "")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, -3}, v)

	_, err = g.Parse("1 . 5;", 0, "")
	assert.Error(t, err)

	_, err = g.Parse("1; /* never closed", 0, "")
	assert.Error(t, err)
}
