package cpp

import (
	parsing "github.com/slaakko/cminor-sub003"
	"github.com/slaakko/cminor-sub003/codedom"
)

type literalGrammar struct{ namespaced }

func (literalGrammar) Name() string         { return "Literal" }
func (literalGrammar) References() []string { return []string{"stdlib"} }

func (literalGrammar) CreateRules(g *parsing.Grammar) {
	var (
		Seq, Alt, Opt   = parsing.Seq, parsing.Alt, parsing.Opt
		Many, Many1     = parsing.Many, parsing.Many1
		Char, Str, Call = parsing.Char, parsing.Str, parsing.Call
		CharSet, Token  = parsing.CharSet, parsing.Token
		Action, Expect  = parsing.Action, parsing.Expect
	)
	g.LinkRule("DigitSequence", "stdlib.digit_sequence")
	g.LinkRule("ExponentPart", "stdlib.exponent_part")
	g.LinkRule("EscapeSequence", "stdlib.escape")
	g.SetSkip(skipRule)
	g.SetStart("Literal")

	g.AddRule("Literal", Alt(
		Call("FloatingLiteral"),
		Call("IntegerLiteral"),
		Call("CharacterLiteral"),
		Call("StringLiteral"),
		Call("BooleanLiteral"),
		Call("PointerLiteral")),
		parsing.Returns[*codedom.Literal]())

	g.AddRule("IntegerLiteral",
		Action("A0", Token(Seq(
			Alt(Call("HexadecimalLiteral"), Call("OctalLiteral"), Call("DecimalLiteral")),
			Opt(Call("IntegerSuffix"))))),
		parsing.Returns[*codedom.Literal]())
	g.AddRule("DecimalLiteral", Token(Seq(CharSet("1-9"), Many(parsing.Digit()))))
	g.AddRule("OctalLiteral", Token(Seq(Char('0'), Many(CharSet("0-7")))))
	g.AddRule("HexadecimalLiteral", Token(Seq(Alt(Str("0x"), Str("0X")), Many1(parsing.HexDigit()))))
	g.AddRule("IntegerSuffix", Token(Alt(
		Seq(Call("UnsignedSuffix"), Opt(Call("LongSuffix"))),
		Seq(Call("LongSuffix"), Opt(Call("UnsignedSuffix"))))))
	g.AddRule("UnsignedSuffix", CharSet("uU"))
	g.AddRule("LongSuffix", Alt(Str("ll"), Str("LL"), CharSet("lL")))

	g.AddRule("FloatingLiteral",
		Action("A0", Token(Seq(
			Alt(
				Seq(Call("FractionalConstant"), Opt(Call("ExponentPart"))),
				Seq(Call("DigitSequence"), Call("ExponentPart"))),
			Opt(CharSet("fFlL"))))),
		parsing.Returns[*codedom.Literal]())
	g.AddRule("FractionalConstant", Token(Alt(
		Seq(Opt(Call("DigitSequence")), Char('.'), Call("DigitSequence")),
		Seq(Call("DigitSequence"), Char('.')))))

	g.AddRule("CharacterLiteral",
		Action("A0", Token(Seq(
			Opt(CharSet("LuU")),
			Char('\''),
			Many1(Alt(CharSet("^'\\\\\r\n"), Call("EscapeSequence"))),
			Expect(Char('\''))))),
		parsing.Returns[*codedom.Literal]())
	g.AddRule("StringLiteral",
		Action("A0", Token(Seq(
			Opt(Alt(Str("u8"), CharSet("LuU"))),
			Char('"'),
			Many(Alt(CharSet("^\"\\\\\r\n"), Call("EscapeSequence"))),
			Expect(Char('"'))))),
		parsing.Returns[*codedom.Literal]())
	g.AddRule("BooleanLiteral",
		Alt(Action("A0", parsing.Keyword("true")), Action("A1", parsing.Keyword("false"))),
		parsing.Returns[*codedom.Literal]())
	g.AddRule("PointerLiteral",
		Action("A0", parsing.Keyword("nullptr")),
		parsing.Returns[*codedom.Literal]())
}

func (literalGrammar) Link(g *parsing.Grammar) error {
	forwardAll(g.Rule("Literal"),
		"FloatingLiteral", "IntegerLiteral", "CharacterLiteral",
		"StringLiteral", "BooleanLiteral", "PointerLiteral")

	g.Rule("IntegerLiteral").Action("A0").SetAction(literal(codedom.IntegerLiteral))
	g.Rule("FloatingLiteral").Action("A0").SetAction(literal(codedom.FloatingLiteral))
	g.Rule("CharacterLiteral").Action("A0").SetAction(literal(codedom.CharLiteral))
	g.Rule("StringLiteral").Action("A0").SetAction(literal(codedom.StringLiteral))
	g.Rule("BooleanLiteral").Action("A0").SetAction(literal(codedom.BooleanLiteral))
	g.Rule("BooleanLiteral").Action("A1").SetAction(literal(codedom.BooleanLiteral))
	g.Rule("PointerLiteral").Action("A0").SetAction(literal(codedom.NullPtrLiteral))
	return nil
}

func literal(kind codedom.LiteralKind) parsing.ActionFunc {
	return func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(codedom.NewLiteral(kind, m.Text()))
		return nil
	}
}
