package cpp

import (
	parsing "github.com/slaakko/cminor-sub003"
	"github.com/slaakko/cminor-sub003/codedom"
)

type expressionGrammar struct{ namespaced }

func (expressionGrammar) Name() string { return "Expression" }

func (expressionGrammar) References() []string {
	return []string{"Literal", "Identifier", "Declarator", "stdlib"}
}

// binaryLevels lists the left associative binary operator levels,
// loosest first.  Each level's operands are matched by the next one.
var binaryLevels = []struct {
	name string
	op   func() *parsing.Parser
}{
	{"LogicalOrExpression", func() *parsing.Parser { return parsing.Str("||") }},
	{"LogicalAndExpression", func() *parsing.Parser { return parsing.Str("&&") }},
	{"InclusiveOrExpression", func() *parsing.Parser {
		return parsing.Diff(parsing.Char('|'), parsing.Alt(parsing.Str("||"), parsing.Str("|=")))
	}},
	{"ExclusiveOrExpression", func() *parsing.Parser {
		return parsing.Diff(parsing.Char('^'), parsing.Str("^="))
	}},
	{"AndExpression", func() *parsing.Parser {
		return parsing.Diff(parsing.Char('&'), parsing.Alt(parsing.Str("&&"), parsing.Str("&=")))
	}},
	{"EqualityExpression", func() *parsing.Parser {
		return parsing.Alt(parsing.Str("=="), parsing.Str("!="))
	}},
	{"RelationalExpression", func() *parsing.Parser {
		return parsing.Diff(
			parsing.Alt(parsing.Str("<="), parsing.Str(">="), parsing.Char('<'), parsing.Char('>')),
			parsing.Alt(parsing.Str("<<"), parsing.Str(">>")))
	}},
	{"ShiftExpression", func() *parsing.Parser {
		return parsing.Diff(
			parsing.Alt(parsing.Str("<<"), parsing.Str(">>")),
			parsing.Alt(parsing.Str("<<="), parsing.Str(">>=")))
	}},
	{"AdditiveExpression", func() *parsing.Parser {
		return parsing.Diff(parsing.CharSet("+-"),
			parsing.Alt(parsing.Str("++"), parsing.Str("--"), parsing.Str("+="), parsing.Str("-="), parsing.Str("->")))
	}},
	{"MultiplicativeExpression", func() *parsing.Parser {
		return parsing.Diff(parsing.CharSet("*/%"),
			parsing.Alt(parsing.Str("*="), parsing.Str("/="), parsing.Str("%=")))
	}},
}

// operandOf is the rule matching the operands of the innermost binary
// level
const operandOf = "UnaryExpression"

func (expressionGrammar) CreateRules(g *parsing.Grammar) {
	var (
		Seq, Alt, Opt   = parsing.Seq, parsing.Alt, parsing.Opt
		Many            = parsing.Many
		Char, Str, Call = parsing.Char, parsing.Str, parsing.Call
		CallAs, Action  = parsing.CallAs, parsing.Action
		Expect, Keyword = parsing.Expect, parsing.Keyword
	)
	g.LinkRule("Literal", "Literal.Literal")
	g.LinkRule("Identifier", "Identifier.Identifier")
	g.LinkRule("QualifiedId", "Identifier.QualifiedId")
	g.LinkRule("TypeId", "Declarator.TypeId")
	g.SetSkip(skipRule)
	g.SetStart("Expression")

	g.AddRule("Expression",
		Seq(
			Action("A0", CallAs("Left", "AssignmentExpression", 0)),
			Many(Action("A1", Seq(Action("op", Char(',')), CallAs("Right", "AssignmentExpression", 0))))),
		parsing.Returns[codedom.Expr]())
	g.AddRule("ExpressionList",
		parsing.List(Action("A0", Call("AssignmentExpression")), Char(',')),
		parsing.Returns[[]codedom.Expr]())
	g.AddRule("AssignmentExpression",
		Seq(
			Action("A0", CallAs("Left", "ConditionalExpression", 0)),
			Opt(Action("A1", Seq(Action("op", Call("AssignmentOperator")), CallAs("Right", "AssignmentExpression", 0))))),
		parsing.Returns[codedom.Expr]())
	g.AddRule("AssignmentOperator", Alt(
		Str("*="), Str("/="), Str("%="), Str("+="), Str("-="),
		Str(">>="), Str("<<="), Str("&="), Str("^="), Str("|="),
		parsing.Diff(Char('='), Str("=="))))
	g.AddRule("ConditionalExpression",
		Seq(
			Action("A0", Call("LogicalOrExpression")),
			Opt(Action("A1", Seq(
				Char('?'),
				CallAs("Then", "Expression", 0),
				Expect(Char(':')),
				CallAs("Else", "AssignmentExpression", 0))))),
		parsing.Returns[codedom.Expr]())

	for i, level := range binaryLevels {
		operand := operandOf
		if i+1 < len(binaryLevels) {
			operand = binaryLevels[i+1].name
		}
		binary(g, level.name, operand, level.op())
	}

	g.AddRule("UnaryExpression",
		Alt(
			Seq(Keyword("sizeof"), Alt(
				Action("sizeofType", Seq(Char('('), Call("TypeId"), Char(')'))),
				Action("sizeofExpr", CallAs("Operand", "UnaryExpression", 0)))),
			Action("prefix", Seq(
				Action("op", Alt(Str("++"), Str("--"), parsing.CharSet("*&+!~-"))),
				Call("UnaryExpression"))),
			Action("postfix", Call("PostfixExpression"))),
		parsing.Returns[codedom.Expr]())

	g.AddRule("PostfixExpression",
		Seq(
			Action("A0", Call("PrimaryExpression")),
			Many(Alt(
				Action("index", Seq(Char('['), Call("Expression"), Expect(Char(']')))),
				Action("invoke", Seq(Char('('), Opt(Call("ExpressionList")), Expect(Char(')')))),
				Action("member", Seq(Action("access", Alt(Str("->"), Char('.'))), Call("Identifier"))),
				Action("step", Alt(Str("++"), Str("--")))))),
		parsing.Returns[codedom.Expr]())

	g.AddRule("PrimaryExpression",
		Alt(
			Action("literal", Call("Literal")),
			Action("this", Keyword("this")),
			Action("paren", Seq(Char('('), Call("Expression"), Expect(Char(')')))),
			Action("id", Call("IdExpression"))),
		parsing.Returns[codedom.Expr]())

	g.AddRule("IdExpression",
		Action("A0", Call("QualifiedId")),
		parsing.Returns[codedom.Expr]())
}

// binary adds the rule `name` matching operands of the rule `operand`
// joined by the left associative operator `op`
func binary(g *parsing.Grammar, name, operand string, op *parsing.Parser) {
	g.AddRule(name,
		parsing.Seq(
			parsing.Action("A0", parsing.CallAs("Left", operand, 0)),
			parsing.Many(parsing.Action("A1", parsing.Seq(
				parsing.Action("op", op),
				parsing.CallAs("Right", operand, 0))))),
		parsing.Returns[codedom.Expr]())
}

// linkBinary binds the actions of a rule shaped by binary, or of any
// rule using the same action names
func linkBinary(r *parsing.Rule) {
	r.Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(parsing.FromChild[codedom.Expr](ctx, "Left"))
		return nil
	})
	r.Action("op").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.Set("op", m.Text())
		return nil
	})
	r.Action("A1").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.BinaryOpExpr{
			Op:    parsing.Var[string](ctx, "op"),
			Left:  parsing.Value[codedom.Expr](ctx),
			Right: parsing.FromChild[codedom.Expr](ctx, "Right"),
		})
		return nil
	})
}

func (expressionGrammar) Link(g *parsing.Grammar) error {
	linkBinary(g.Rule("Expression"))
	linkBinary(g.Rule("AssignmentExpression"))
	for _, level := range binaryLevels {
		linkBinary(g.Rule(level.name))
	}

	g.Rule("ExpressionList").Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		list := parsing.Value[[]codedom.Expr](ctx)
		ctx.SetValue(append(list, parsing.FromChild[codedom.Expr](ctx, "AssignmentExpression")))
		return nil
	})

	cond := g.Rule("ConditionalExpression")
	cond.Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(parsing.FromChild[codedom.Expr](ctx, "LogicalOrExpression"))
		return nil
	})
	cond.Action("A1").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.ConditionalExpr{
			Cond: parsing.Value[codedom.Expr](ctx),
			Then: parsing.FromChild[codedom.Expr](ctx, "Then"),
			Else: parsing.FromChild[codedom.Expr](ctx, "Else"),
		})
		return nil
	})

	unary := g.Rule("UnaryExpression")
	unary.Action("sizeofType").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.SizeOfExpr{Subject: parsing.FromChild[*codedom.TypeID](ctx, "TypeId")})
		return nil
	})
	unary.Action("sizeofExpr").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.SizeOfExpr{Subject: parsing.FromChild[codedom.Expr](ctx, "Operand")})
		return nil
	})
	unary.Action("op").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.Set("op", m.Text())
		return nil
	})
	unary.Action("prefix").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.PrefixOpExpr{
			Op:      parsing.Var[string](ctx, "op"),
			Operand: parsing.FromChild[codedom.Expr](ctx, "UnaryExpression"),
		})
		return nil
	})
	unary.Action("postfix").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(parsing.FromChild[codedom.Expr](ctx, "PostfixExpression"))
		return nil
	})

	linkPostfix(g.Rule("PostfixExpression"))

	primary := g.Rule("PrimaryExpression")
	primary.Action("literal").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(parsing.FromChild[codedom.Expr](ctx, "Literal"))
		return nil
	})
	primary.Action("this").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.ThisExpr{})
		return nil
	})
	primary.Action("paren").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.ParenExpr{Inner: parsing.FromChild[codedom.Expr](ctx, "Expression")})
		return nil
	})
	primary.Action("id").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(parsing.FromChild[codedom.Expr](ctx, "IdExpression"))
		return nil
	})

	g.Rule("IdExpression").Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.IdExpr{ID: parsing.FromChild[string](ctx, "QualifiedId")})
		return nil
	})
	return nil
}

func linkPostfix(r *parsing.Rule) {
	subject := func(ctx *parsing.Context) codedom.Expr { return parsing.Value[codedom.Expr](ctx) }

	r.Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(parsing.FromChild[codedom.Expr](ctx, "PrimaryExpression"))
		return nil
	})
	r.Action("index").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.IndexExpr{Subject: subject(ctx), Index: parsing.FromChild[codedom.Expr](ctx, "Expression")})
		return nil
	})
	// the argument list is optional, so its value is moved to a
	// variable that the invocation consumes
	r.Nonterminal("ExpressionList").SetPostCall(func(ctx *parsing.Context, value any) {
		ctx.Set("args", value)
	})
	r.Action("invoke").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.InvokeExpr{Subject: subject(ctx), Arguments: parsing.Var[[]codedom.Expr](ctx, "args")})
		ctx.Set("args", nil)
		return nil
	})
	r.Action("access").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.Set("arrow", m.Text() == "->")
		return nil
	})
	r.Action("member").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.MemberAccessExpr{
			Subject: subject(ctx),
			Member:  parsing.FromChild[string](ctx, "Identifier"),
			Arrow:   parsing.Var[bool](ctx, "arrow"),
		})
		return nil
	})
	r.Action("step").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.PostfixOpExpr{Op: m.Text(), Operand: subject(ctx)})
		return nil
	})
}
