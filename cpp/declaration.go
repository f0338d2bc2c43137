package cpp

import (
	parsing "github.com/slaakko/cminor-sub003"
	"github.com/slaakko/cminor-sub003/codedom"
)

var (
	storageClasses = []string{"register", "static", "extern", "mutable", "thread_local"}
	simpleTypes    = []string{
		"char", "char16_t", "char32_t", "wchar_t", "bool", "short", "int",
		"long", "signed", "unsigned", "float", "double", "void", "auto",
	}
	cvQualifiers = []string{"const", "volatile"}
)

type declarationGrammar struct{ namespaced }

func (declarationGrammar) Name() string { return "Declaration" }

func (declarationGrammar) References() []string {
	return []string{"Declarator", "Expression", "Identifier", "stdlib"}
}

func (declarationGrammar) CreateRules(g *parsing.Grammar) {
	var (
		Seq, Alt, Opt   = parsing.Seq, parsing.Alt, parsing.Opt
		Many, Many1     = parsing.Many, parsing.Many1
		Char, Call      = parsing.Char, parsing.Call
		CallAs, Action  = parsing.CallAs, parsing.Action
		Keyword, Expect = parsing.Keyword, parsing.Expect
	)
	g.LinkRule("InitDeclaratorList", "Declarator.InitDeclaratorList")
	g.LinkRule("TypeId", "Declarator.TypeId")
	g.LinkRule("AssignmentExpression", "Expression.AssignmentExpression")
	g.LinkRule("Identifier", "Identifier.Identifier")
	g.LinkRule("QualifiedId", "Identifier.QualifiedId")
	g.SetSkip(skipRule)
	g.SetStart("Declaration")

	g.AddRule("Declarations",
		Many(Action("A0", Call("Declaration"))),
		parsing.Returns[[]codedom.Node]())
	g.AddRule("Declaration",
		Alt(
			Call("NamespaceAliasDefinition"),
			Call("UsingDirective"),
			Call("UsingDeclaration"),
			Call("SimpleDeclaration")),
		parsing.Returns[codedom.Node]())

	g.AddRule("SimpleDeclaration",
		Seq(
			Action("A0", parsing.Empty()),
			CallAs("DeclSpecifierSeq", "DeclSpecifierSeq", 1),
			Opt(Action("A1", Call("InitDeclaratorList"))),
			Char(';')),
		parsing.Returns[*codedom.SimpleDeclaration]())

	// A type name is only taken when no simple type specifier was,
	// so in `T x;` the x is left for the declarators
	g.AddRule("DeclSpecifierSeq",
		Seq(
			Many(Action("A0", CallAs("Leading", "NonTypeSpecifier", 0))),
			Alt(
				Many1(Action("A1", Call("DeclSpecifier"))),
				Action("A2", Call("TypeName"))),
			Many(Action("A3", CallAs("Trailing", "NonTypeSpecifier", 0)))),
		parsing.Inherit[*codedom.SimpleDeclaration]("declaration"))
	g.AddRule("DeclSpecifier",
		Alt(Call("NonTypeSpecifier"), Call("SimpleTypeSpecifier")),
		parsing.Returns[codedom.Node]())
	g.AddRule("NonTypeSpecifier",
		Alt(Call("StorageClassSpecifier"), Call("Typedef"), Call("CVQualifier")),
		parsing.Returns[codedom.Node]())
	g.AddRule("TypeSpecifier",
		Alt(Call("SimpleTypeSpecifier"), Call("CVQualifier")),
		parsing.Returns[codedom.Node]())

	g.AddRule("StorageClassSpecifier",
		Action("A0", parsing.KeywordList("storage-class-specifier", storageClasses)),
		parsing.Returns[*codedom.StorageClassSpecifier]())
	g.AddRule("Typedef",
		Action("A0", Keyword("typedef")),
		parsing.Returns[*codedom.Typedef]())
	g.AddRule("SimpleTypeSpecifier",
		Action("A0", parsing.KeywordList("simple-type-specifier", simpleTypes)),
		parsing.Returns[*codedom.TypeSpecifier]())
	g.AddRule("CVQualifier",
		Action("A0", parsing.KeywordList("cv-qualifier", cvQualifiers)),
		parsing.Returns[*codedom.TypeSpecifier]())

	g.AddRule("TypeName",
		Seq(
			Action("A0", Call("QualifiedId")),
			Opt(Action("A1", Seq(
				Action("open", Char('<')),
				CallAs("TemplateArgumentList", "TemplateArgumentList", 1),
				Expect(Char('>')))))),
		parsing.Returns[*codedom.TypeName]())
	g.AddRule("TemplateArgumentList",
		parsing.List(CallAs("TemplateArgument", "TemplateArgument", 1), Char(',')),
		parsing.Inherit[*codedom.TypeName]("typeName"))
	// A type id that an expression could extend, like `N` in `N + 1`,
	// is left for the expression
	g.AddRule("TemplateArgument",
		Alt(
			Action("A0", parsing.Diff(Call("TypeId"), Call("AssignmentExpression"))),
			Action("A1", Call("AssignmentExpression"))),
		parsing.Inherit[*codedom.TypeName]("typeName"))

	g.AddRule("UsingDeclaration",
		Action("A0", Seq(Keyword("using"), Call("QualifiedId"), Char(';'))),
		parsing.Returns[*codedom.UsingDeclaration]())
	g.AddRule("UsingDirective",
		Action("A0", Seq(Keyword("using"), Keyword("namespace"), Call("QualifiedId"), Char(';'))),
		parsing.Returns[*codedom.UsingDirective]())
	g.AddRule("NamespaceAliasDefinition",
		Action("A0", Seq(
			Keyword("namespace"), Call("Identifier"), Char('='), Call("QualifiedId"), Char(';'))),
		parsing.Returns[*codedom.NamespaceAlias]())
}

func (declarationGrammar) Link(g *parsing.Grammar) error {
	g.Rule("Declarations").Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(append(parsing.Value[[]codedom.Node](ctx), parsing.FromChild[codedom.Node](ctx, "Declaration")))
		return nil
	})
	forwardAll(g.Rule("Declaration"),
		"NamespaceAliasDefinition", "UsingDirective", "UsingDeclaration", "SimpleDeclaration")

	simple := g.Rule("SimpleDeclaration")
	simple.Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.SimpleDeclaration{})
		return nil
	})
	simple.Nonterminal("DeclSpecifierSeq").SetArgs(func(ctx *parsing.Context) any {
		return parsing.Value[*codedom.SimpleDeclaration](ctx)
	})
	simple.Action("A1").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		parsing.Value[*codedom.SimpleDeclaration](ctx).Declarators =
			parsing.FromChild[*codedom.InitDeclaratorList](ctx, "InitDeclaratorList")
		return nil
	})

	specs := g.Rule("DeclSpecifierSeq")
	add := func(child string) parsing.ActionFunc {
		return func(ctx *parsing.Context, m *parsing.Match) error {
			parsing.Arg[*codedom.SimpleDeclaration](ctx, "declaration").Add(parsing.FromChild[codedom.Node](ctx, child))
			return nil
		}
	}
	specs.Action("A0").SetAction(add("Leading"))
	specs.Action("A1").SetAction(add("DeclSpecifier"))
	specs.Action("A2").SetAction(add("TypeName"))
	specs.Action("A3").SetAction(add("Trailing"))

	forwardAll(g.Rule("DeclSpecifier"), "NonTypeSpecifier", "SimpleTypeSpecifier")
	forwardAll(g.Rule("NonTypeSpecifier"), "StorageClassSpecifier", "Typedef", "CVQualifier")
	forwardAll(g.Rule("TypeSpecifier"), "SimpleTypeSpecifier", "CVQualifier")

	g.Rule("StorageClassSpecifier").Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.StorageClassSpecifier{Name: m.Text()})
		return nil
	})
	g.Rule("Typedef").Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.Typedef{})
		return nil
	})
	typeSpecifier := func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.TypeSpecifier{Name: m.Text()})
		return nil
	}
	g.Rule("SimpleTypeSpecifier").Action("A0").SetAction(typeSpecifier)
	g.Rule("CVQualifier").Action("A0").SetAction(typeSpecifier)

	linkTypeName(g.Rule("TypeName"))
	g.Rule("TemplateArgumentList").Nonterminal("TemplateArgument").SetArgs(func(ctx *parsing.Context) any {
		return parsing.Arg[*codedom.TypeName](ctx, "typeName")
	})
	arg := g.Rule("TemplateArgument")
	arg.Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		parsing.Arg[*codedom.TypeName](ctx, "typeName").AddTemplateArgument(parsing.FromChild[*codedom.TypeID](ctx, "TypeId"))
		return nil
	})
	arg.Action("A1").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		parsing.Arg[*codedom.TypeName](ctx, "typeName").AddTemplateArgument(parsing.FromChild[codedom.Expr](ctx, "AssignmentExpression"))
		return nil
	})

	g.Rule("UsingDeclaration").Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.UsingDeclaration{Name: parsing.FromChild[string](ctx, "QualifiedId")})
		return nil
	})
	g.Rule("UsingDirective").Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.UsingDirective{Namespace: parsing.FromChild[string](ctx, "QualifiedId")})
		return nil
	})
	g.Rule("NamespaceAliasDefinition").Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(&codedom.NamespaceAlias{
			Alias:  parsing.FromChild[string](ctx, "Identifier"),
			Target: parsing.FromChild[string](ctx, "QualifiedId"),
		})
		return nil
	})
	return nil
}

func linkTypeName(r *parsing.Rule) {
	r.Action("A0").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		ctx.SetValue(codedom.NewTypeName(parsing.FromChild[string](ctx, "QualifiedId")))
		return nil
	})
	r.Action("open").SetAction(func(ctx *parsing.Context, m *parsing.Match) error {
		parsing.Value[*codedom.TypeName](ctx).IsTemplate = true
		return nil
	})
	r.Nonterminal("TemplateArgumentList").SetArgs(func(ctx *parsing.Context) any {
		return parsing.Value[*codedom.TypeName](ctx)
	})
	r.Action("A1").
		SetAction(func(ctx *parsing.Context, m *parsing.Match) error { return nil }).
		SetFailure(func(ctx *parsing.Context) {
			if t := parsing.Value[*codedom.TypeName](ctx); t != nil {
				t.IsTemplate = false
				t.TemplateArguments = nil
			}
		})
}
