// Package stdlib provides the grammar every other grammar can borrow
// lexical rules from: white space and comments to skip, numbers,
// identifiers, and character and string literals.
package stdlib

import (
	"strconv"
	"strings"

	parsing "github.com/slaakko/cminor-sub003"
)

// Name is the full name of the grammar in a domain
const Name = "stdlib"

// Register makes the grammar available to `d`
func Register(d *parsing.Domain) {
	d.Register(func() parsing.Definition { return grammar{} })
}

// New registers and builds the grammar within `d`
func New(d *parsing.Domain) (*parsing.Grammar, error) {
	Register(d)
	return d.Grammar(Name)
}

type grammar struct{}

func (grammar) Name() string         { return Name }
func (grammar) Namespace() string    { return "" }
func (grammar) References() []string { return nil }

func (grammar) CreateRules(g *parsing.Grammar) {
	var (
		Alt, Seq, Opt     = parsing.Alt, parsing.Seq, parsing.Opt
		Many, Many1       = parsing.Many, parsing.Many1
		Char, Str, Call   = parsing.Char, parsing.Str, parsing.Call
		Token, Action     = parsing.Token, parsing.Action
		CharSet, Keyword  = parsing.CharSet, parsing.Keyword
		Digit, HexDigit   = parsing.Digit, parsing.HexDigit
		Letter, AnyChar   = parsing.Letter, parsing.AnyChar
		Diff, Space       = parsing.Diff, parsing.Space
		Expect            = parsing.Expect
		identifierStart   = Alt(Letter(), Char('_'))
		identifierPartFor = func() *parsing.Parser { return Alt(Letter(), Digit(), Char('_')) }
	)

	g.AddRule("spaces", Many1(Space()))
	g.AddRule("newline", Alt(Str("\r\n"), Char('\n'), Char('\r')))
	g.AddRule("comment", Alt(Call("line_comment"), Call("block_comment")))
	g.AddRule("line_comment", Token(Seq(Str("//"), Many(CharSet("^\r\n")), Opt(Call("newline")))))
	g.AddRule("block_comment", Token(Seq(Str("/*"), Many(Diff(AnyChar(), Str("*/"))), Str("*/"))))
	g.AddRule("spaces_and_comments", Many1(Alt(Space(), Call("comment"))))

	g.AddRule("digit_sequence", Token(Many1(Digit())))
	g.AddRule("sign", Alt(Char('+'), Char('-')))
	g.AddRule("int",
		Action("A0", Token(Seq(Opt(Call("sign")), Call("digit_sequence")))),
		parsing.Returns[int64]())
	g.AddRule("uint",
		Action("A0", Call("digit_sequence")),
		parsing.Returns[uint64]())
	g.AddRule("hex",
		Action("A0", Token(Many1(HexDigit()))),
		parsing.Returns[uint64]())
	g.AddRule("hex_literal",
		Action("A0", Token(Seq(Alt(Str("0x"), Str("0X")), Call("hex")))),
		parsing.Returns[uint64]())

	g.AddRule("exponent_part", Token(Seq(CharSet("eE"), Opt(Call("sign")), Call("digit_sequence"))))
	g.AddRule("fractional_real", Alt(
		Token(Seq(Opt(Call("digit_sequence")), Char('.'), Call("digit_sequence"), Opt(Call("exponent_part")))),
		Token(Seq(Call("digit_sequence"), Char('.')))))
	g.AddRule("exponent_real", Token(Seq(Call("digit_sequence"), Call("exponent_part"))))
	g.AddRule("real",
		Action("A0", Token(Seq(Opt(Call("sign")), Alt(Call("fractional_real"), Call("exponent_real"))))),
		parsing.Returns[float64]())
	g.AddRule("ureal",
		Action("A0", Alt(Call("fractional_real"), Call("exponent_real"))),
		parsing.Returns[float64]())
	g.AddRule("num",
		Alt(Action("A0", Call("real")), Action("A1", Call("int"))),
		parsing.Returns[float64]())
	g.AddRule("bool",
		Alt(Action("A0", Keyword("true")), Action("A1", Keyword("false"))),
		parsing.Returns[bool]())

	g.AddRule("identifier",
		Action("A0", Token(Seq(identifierStart, Many(identifierPartFor())))),
		parsing.Returns[string]())
	g.AddRule("qualified_id",
		Action("A0", Token(Seq(Call("identifier"), Many(Seq(Char('.'), Call("identifier")))))),
		parsing.Returns[string]())

	g.AddRule("escape",
		Token(Seq(Char('\\'), Alt(
			Action("hex", Seq(CharSet("xX"), Call("hex"))),
			Action("dec", Seq(CharSet("dD"), Call("uint"))),
			Action("oct", Many1(CharSet("0-7"))),
			Action("char", AnyChar())))),
		parsing.Returns[rune]())
	g.AddRule("char",
		Token(Seq(Char('\''),
			Alt(Action("A0", CharSet("^\\\\'\r\n")), Action("A1", Call("escape"))),
			Expect(Char('\'')))),
		parsing.Returns[rune]())
	g.AddRule("string",
		Action("A2", Token(Seq(
			Action("A0", Char('"')),
			Many(Alt(Action("A1", Call("stringchars")), Action("A3", Call("escape")))),
			Expect(Char('"'))))),
		parsing.Returns[string]())
	g.AddRule("stringchars", Token(Many1(CharSet("^\"\\\\\r\n"))))
}

func (grammar) Link(g *parsing.Grammar) error {
	g.Rule("int").Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		v, err := strconv.ParseInt(m.Text(), 10, 64)
		if err != nil {
			return m.Errorf("invalid integer %q: %s", m.Text(), err)
		}
		ctx.SetValue(v)
		return nil
	})
	g.Rule("uint").Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		v, err := strconv.ParseUint(m.Text(), 10, 64)
		if err != nil {
			return m.Errorf("invalid unsigned integer %q: %s", m.Text(), err)
		}
		ctx.SetValue(v)
		return nil
	})
	g.Rule("hex").Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		v, err := strconv.ParseUint(m.Text(), 16, 64)
		if err != nil {
			return m.Errorf("invalid hexadecimal number %q: %s", m.Text(), err)
		}
		ctx.SetValue(v)
		return nil
	})
	g.Rule("hex_literal").Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(parsing.FromChild[uint64](ctx, "hex"))
		return nil
	})

	parseReal := func(ctx *parsing.Context, m *parsing.Match) error {
		v, err := strconv.ParseFloat(m.Text(), 64)
		if err != nil {
			return m.Errorf("invalid real number %q: %s", m.Text(), err)
		}
		ctx.SetValue(v)
		return nil
	}
	g.Rule("real").Action("A0").SetAction(parseReal)
	g.Rule("ureal").Action("A0").SetAction(parseReal)

	num := g.Rule("num")
	num.Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(parsing.FromChild[float64](ctx, "real"))
		return nil
	})
	num.Action("A1").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(float64(parsing.FromChild[int64](ctx, "int")))
		return nil
	})

	boolean := g.Rule("bool")
	boolean.Action("A0").SetAction(setValue(true))
	boolean.Action("A1").SetAction(setValue(false))

	matchedText := func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(m.Text())
		return nil
	}
	g.Rule("identifier").Action("A0").SetAction(matchedText)
	g.Rule("qualified_id").Action("A0").SetAction(matchedText)

	escape := g.Rule("escape")
	escape.Action("hex").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(rune(parsing.FromChild[uint64](ctx, "hex")))
		return nil
	})
	escape.Action("dec").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(rune(parsing.FromChild[uint64](ctx, "uint")))
		return nil
	})
	escape.Action("oct").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		v, err := strconv.ParseUint(m.Text(), 8, 32)
		if err != nil {
			return m.Errorf("invalid octal escape %q: %s", m.Text(), err)
		}
		ctx.SetValue(rune(v))
		return nil
	})
	escape.Action("char").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(unescape([]rune(m.Text())[0]))
		return nil
	})

	char := g.Rule("char")
	char.Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue([]rune(m.Text())[0])
		return nil
	})
	char.Action("A1").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(parsing.FromChild[rune](ctx, "escape"))
		return nil
	})

	str := g.Rule("string")
	str.Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.Set("s", &strings.Builder{})
		return nil
	})
	str.Action("A1").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		parsing.Var[*strings.Builder](ctx, "s").WriteString(m.Text())
		return nil
	})
	str.Action("A3").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		parsing.Var[*strings.Builder](ctx, "s").WriteRune(parsing.FromChild[rune](ctx, "escape"))
		return nil
	})
	str.Action("A2").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(parsing.Var[*strings.Builder](ctx, "s").String())
		return nil
	})
	return nil
}

func setValue(v any) parsing.ActionFunc {
	return func(ctx *parsing.Context, _ *parsing.Match) error {
		ctx.SetValue(v)
		return nil
	}
}

func unescape(r rune) rune {
	switch r {
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'v':
		return '\v'
	default:
		return r
	}
}
