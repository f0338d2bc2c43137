package cpp

import (
	parsing "github.com/slaakko/cminor-sub003"
	"github.com/slaakko/cminor-sub003/codedom"
)

type declaratorGrammar struct{ namespaced }

func (declaratorGrammar) Name() string { return "Declarator" }

func (declaratorGrammar) References() []string {
	return []string{"Expression", "Declaration", "Identifier", "stdlib"}
}

func (declaratorGrammar) CreateRules(g *parsing.Grammar) {
	var (
		Seq, Alt, Opt  = parsing.Seq, parsing.Alt, parsing.Opt
		Many, Many1    = parsing.Many, parsing.Many1
		Char, Call     = parsing.Char, parsing.Call
		CallAs, Action = parsing.CallAs, parsing.Action
		Expect, Empty  = parsing.Expect, parsing.Empty
	)
	g.LinkRule("AssignmentExpression", "Expression.AssignmentExpression")
	g.LinkRule("ConstantExpression", "Expression.ConditionalExpression")
	g.LinkRule("ExpressionList", "Expression.ExpressionList")
	g.LinkRule("QualifiedId", "Identifier.QualifiedId")
	g.LinkRule("TypeName", "Declaration.TypeName")
	g.LinkRule("TypeSpecifier", "Declaration.TypeSpecifier")
	g.LinkRule("CVQualifier", "Declaration.CVQualifier")
	g.SetSkip(skipRule)
	g.SetStart("InitDeclaratorList")

	g.AddRule("InitDeclaratorList",
		Seq(
			Action("A0", Empty()),
			parsing.List(Action("A1", Call("InitDeclarator")), Char(','))),
		parsing.Returns[*codedom.InitDeclaratorList]())
	g.AddRule("InitDeclarator",
		Action("A0", Seq(Call("Declarator"), Opt(Call("Initializer")))),
		parsing.Returns[*codedom.InitDeclarator]())

	g.AddRule("Declarator",
		Action("A0", Alt(
			Call("DirectDeclarator"),
			Seq(Call("PtrOperator"), Call("Declarator")))),
		parsing.Returns[string]())
	g.AddRule("DirectDeclarator", Seq(
		Alt(
			Call("DeclaratorId"),
			Seq(Char('('), Call("Declarator"), Expect(Char(')')))),
		Many(Call("ArraySuffix"))))
	g.AddRule("DeclaratorId", Call("QualifiedId"))
	g.AddRule("ArraySuffix", Seq(Char('['), Opt(Call("ConstantExpression")), Expect(Char(']'))))
	g.AddRule("PtrOperator", Alt(
		Seq(Char('*'), Many(Call("CVQualifier"))),
		Char('&')))

	g.AddRule("TypeId",
		Seq(
			Action("A0", Empty()),
			CallAs("TypeSpecifierSeq", "TypeSpecifierSeq", 1),
			Opt(Action("A1", Call("AbstractDeclarator")))),
		parsing.Returns[*codedom.TypeID]())
	g.AddRule("TypeSpecifierSeq",
		Seq(
			Many(Action("cv0", CallAs("Leading", "CVQualifier", 0))),
			Alt(
				Many1(Action("A0", Call("TypeSpecifier"))),
				Action("A1", Call("TypeName"))),
			Many(Action("cv1", CallAs("Trailing", "CVQualifier", 0)))),
		parsing.Inherit[*codedom.TypeID]("typeId"))
	g.AddRule("AbstractDeclarator", Alt(
		Seq(Call("PtrOperator"), Opt(Call("AbstractDeclarator"))),
		Call("DirectAbstractDeclarator")))
	g.AddRule("DirectAbstractDeclarator", Many1(Call("ArraySuffix")))

	g.AddRule("Initializer",
		Alt(
			Action("assign", Seq(parsing.Diff(Char('='), parsing.Str("==")), Call("InitializerClause"))),
			Action("paren", Seq(Char('('), Call("ExpressionList"), Expect(Char(')'))))),
		parsing.Returns[*codedom.Initializer]())
	g.AddRule("InitializerClause",
		Alt(
			Seq(
				Action("open", Char('{')),
				Opt(Seq(
					parsing.List(Action("add", Call("InitializerClause")), Char(',')),
					Opt(Char(',')))),
				Expect(Char('}'))),
			Action("expr", Call("AssignmentExpression"))),
		parsing.Returns[*codedom.Initializer]())
}

func (declaratorGrammar) Link(g *parsing.Grammar) error {
	list := g.Rule("InitDeclaratorList")
	list.Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.InitDeclaratorList{})
		return nil
	})
	list.Action("A1").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		parsing.Value[*codedom.InitDeclaratorList](ctx).Add(parsing.FromChild[*codedom.InitDeclarator](ctx, "InitDeclarator"))
		return nil
	})

	g.Rule("InitDeclarator").Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.InitDeclarator{
			Declarator:  parsing.FromChild[string](ctx, "Declarator"),
			Initializer: parsing.FromChild[*codedom.Initializer](ctx, "Initializer"),
		})
		return nil
	})
	g.Rule("Declarator").Action("A0").SetAction(setText)

	typeID := g.Rule("TypeId")
	typeID.Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.TypeID{})
		return nil
	})
	typeID.Nonterminal("TypeSpecifierSeq").SetArgs(func(ctx *parsing.Context) any {
		return parsing.Value[*codedom.TypeID](ctx)
	})
	typeID.Action("A1").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		parsing.Value[*codedom.TypeID](ctx).Declarator = m.Text()
		return nil
	})

	seq := g.Rule("TypeSpecifierSeq")
	addTo := func(child string) parsing.ActionFunc {
		return func(ctx *parsing.Context, m *parsing.Match) error {
			parsing.Arg[*codedom.TypeID](ctx, "typeId").Add(parsing.FromChild[codedom.Node](ctx, child))
			return nil
		}
	}
	seq.Action("cv0").SetAction(addTo("Leading"))
	seq.Action("A0").SetAction(addTo("TypeSpecifier"))
	seq.Action("A1").SetAction(addTo("TypeName"))
	seq.Action("cv1").SetAction(addTo("Trailing"))

	initializer := g.Rule("Initializer")
	initializer.Action("assign").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(parsing.FromChild[*codedom.Initializer](ctx, "InitializerClause"))
		return nil
	})
	initializer.Action("paren").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.Initializer{
			Paren:     true,
			Arguments: parsing.FromChild[[]codedom.Expr](ctx, "ExpressionList"),
		})
		return nil
	})

	clause := g.Rule("InitializerClause")
	clause.Action("open").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.Initializer{Braced: true})
		return nil
	})
	clause.Action("add").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		in := parsing.Value[*codedom.Initializer](ctx)
		in.List = append(in.List, parsing.FromChild[*codedom.Initializer](ctx, "InitializerClause"))
		return nil
	})
	clause.Action("expr").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.Initializer{Expr: parsing.FromChild[codedom.Expr](ctx, "AssignmentExpression")})
		return nil
	})
	return nil
}
