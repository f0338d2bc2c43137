package cpp_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	parsing "github.com/slaakko/cminor-sub003"
	"github.com/slaakko/cminor-sub003/codedom"
	"github.com/slaakko/cminor-sub003/cpp"
)

func load(t *testing.T) *cpp.Grammars {
	t.Helper()
	gs, err := cpp.Load(parsing.NewDomain(nil))
	require.NoError(t, err)
	return gs
}

func TestGrammarsAreSharedWithinADomain(t *testing.T) {
	d := parsing.NewDomain(nil)
	gs, err := cpp.Load(d)
	require.NoError(t, err)

	assert.Same(t, gs.Identifier.References()[0], gs.Literal.References()[0])
	assert.Equal(t, "stdlib", gs.Literal.References()[0].FullName())

	// Declarator, Declaration and Expression reference each other
	refs := gs.Declarator.References()
	require.Len(t, refs, 4)
	assert.Same(t, gs.Expression, refs[0])
	assert.Same(t, gs.Declaration, refs[1])
	assert.Same(t, gs.Declarator, gs.Expression.References()[2])
	assert.Same(t, gs.Declarator, gs.Declaration.References()[0])

	assert.Equal(t, []string{
		"cpp.Declaration", "cpp.Declarator", "cpp.Expression",
		"cpp.Identifier", "cpp.Literal", "stdlib",
	}, d.Grammars())

	again, err := cpp.Load(d)
	require.NoError(t, err)
	assert.Same(t, gs.Expression, again.Expression)
}

func TestIdentifiers(t *testing.T) {
	gs := load(t)

	v, err := gs.Identifier.Parse(" integer ", 0, "")
	require.NoError(t, err)
	assert.Equal(t, "integer", v)

	_, err = gs.Identifier.Parse("int", 0, "")
	assert.Error(t, err)

	v, err = gs.Identifier.ParseRule("QualifiedId", "::std::vector", 0, "")
	require.NoError(t, err)
	assert.Equal(t, "::std::vector", v)

	_, err = gs.Identifier.ParseRule("QualifiedId", "std:: vector", 0, "")
	assert.Error(t, err)
}

func TestLiterals(t *testing.T) {
	gs := load(t)

	for _, test := range []struct {
		input string
		kind  codedom.LiteralKind
	}{
		{"42", codedom.IntegerLiteral},
		{"0", codedom.IntegerLiteral},
		{"017", codedom.IntegerLiteral},
		{"0x1Fu", codedom.IntegerLiteral},
		{"10ULL", codedom.IntegerLiteral},
		{"1.5e3f", codedom.FloatingLiteral},
		{".5", codedom.FloatingLiteral},
		{"2e10", codedom.FloatingLiteral},
		{`'a'`, codedom.CharLiteral},
		{`L'\n'`, codedom.CharLiteral},
		{`"a\tb"`, codedom.StringLiteral},
		{`u8"text"`, codedom.StringLiteral},
		{"false", codedom.BooleanLiteral},
		{"nullptr", codedom.NullPtrLiteral},
	} {
		t.Run(test.input, func(t *testing.T) {
			v, err := gs.Literal.Parse(test.input, 0, "")
			require.NoError(t, err)
			lit, ok := v.(*codedom.Literal)
			require.True(t, ok)
			assert.Equal(t, test.kind, lit.Kind)
			assert.Equal(t, test.input, lit.Text)
		})
	}

	v, err := gs.Literal.Parse("true", 0, "")
	require.NoError(t, err)
	assert.True(t, v.(*codedom.Literal).Bool())

	_, err = gs.Literal.ParseRule("BooleanLiteral", "truelove", 0, "")
	assert.Error(t, err)

	_, err = gs.Literal.Parse("1 . 5", 0, "")
	assert.Error(t, err)

	_, err = gs.Literal.Parse(`"open`, 0, "")
	assert.True(t, parsing.IsExpectationFailure(err))
}

func TestExpressions(t *testing.T) {
	gs := load(t)

	for _, test := range []struct {
		input    string
		expected string
	}{
		{"a+b*c", "a + b * c"},
		{"a = b ? c : d", "a = b ? c : d"},
		{"x <<= 1 , y", "x <<= 1, y"},
		{"(a || b) && !c", "(a || b) && !c"},
		{"a < b == c >= d", "a < b == c >= d"},
		{"a << 2 | b & ~c ^ d", "a << 2 | b & ~c ^ d"},
		{"f()", "f()"},
		{"f(a, g(b))[i]", "f(a, g(b))[i]"},
		{"p->x.y++", "p->x.y++"},
		{"--*p", "--*p"},
		{"this->n % 2", "this->n % 2"},
		{"std::max(1, 'c')", "std::max(1, 'c')"},
		{"sizeof(unsigned int*)", "sizeof(unsigned int*)"},
		{"sizeof n", "sizeof n"},
		{"a /* inline */ - // trailing\n b", "a - b"},
	} {
		t.Run(test.input, func(t *testing.T) {
			v, err := gs.Expression.Parse(test.input, 0, "")
			require.NoError(t, err)
			assert.Equal(t, test.expected, v.(codedom.Expr).String())
		})
	}
}

func TestExpressionStructure(t *testing.T) {
	gs := load(t)
	parse := func(input string) codedom.Expr {
		t.Helper()
		v, err := gs.Expression.Parse(input, 0, "")
		require.NoError(t, err)
		return v.(codedom.Expr)
	}

	// multiplication binds tighter than addition
	sum, ok := parse("a + b * c").(*codedom.BinaryOpExpr)
	require.True(t, ok)
	assert.Equal(t, "+", sum.Op)
	assert.Equal(t, "*", sum.Right.(*codedom.BinaryOpExpr).Op)

	// binary operators associate to the left
	diff := parse("a - b - c").(*codedom.BinaryOpExpr)
	assert.Equal(t, "a - b", diff.Left.String())
	assert.Equal(t, "c", diff.Right.String())

	// assignments associate to the right
	assign := parse("x = y = 1").(*codedom.BinaryOpExpr)
	assert.Equal(t, "x", assign.Left.String())
	assert.Equal(t, "y = 1", assign.Right.String())

	invoke := parse("f(1, 2)").(*codedom.InvokeExpr)
	assert.Len(t, invoke.Arguments, 2)
	assert.Empty(t, parse("g()").(*codedom.InvokeExpr).Arguments)

	member := parse("p->m").(*codedom.MemberAccessExpr)
	assert.True(t, member.Arrow)
	assert.Equal(t, "m", member.Member)

	assert.True(t, parse("sizeof(int)").(*codedom.SizeOfExpr).IsType())
	assert.False(t, parse("sizeof n").(*codedom.SizeOfExpr).IsType())
	assert.IsType(t, &codedom.ParenExpr{}, parse("sizeof(a + b)").(*codedom.SizeOfExpr).Subject)

	assert.IsType(t, &codedom.ConditionalExpr{}, parse("a ? b : c"))
	assert.IsType(t, &codedom.ThisExpr{}, parse("this"))
}

func TestExpressionErrors(t *testing.T) {
	gs := load(t)

	_, err := gs.Expression.Parse("(a", 0, "e.cpp")
	var ef *parsing.ExpectationFailure
	require.True(t, errors.As(err, &ef))
	assert.Equal(t, "')'", ef.Expected)
	assert.Equal(t, 1, ef.Location.Line)
	assert.Equal(t, 3, ef.Location.Column)
	assert.Equal(t, "cpp.Expression.PrimaryExpression", ef.Rule)

	_, err = gs.Expression.Parse("a ? b", 0, "")
	assert.True(t, parsing.IsExpectationFailure(err))

	_, err = gs.Expression.Parse("v[1", 0, "")
	assert.True(t, parsing.IsExpectationFailure(err))

	_, err = gs.Expression.Parse("a +", 0, "")
	assert.Error(t, err)
}

func TestTypedef(t *testing.T) {
	gs := load(t)

	v, err := gs.Declaration.Parse("typedef int x;", 0, "")
	require.NoError(t, err)
	decl, ok := v.(*codedom.SimpleDeclaration)
	require.True(t, ok)

	require.Len(t, decl.Specifiers, 2)
	assert.IsType(t, &codedom.Typedef{}, decl.Specifiers[0])
	assert.Equal(t, &codedom.TypeSpecifier{Name: "int"}, decl.Specifiers[1])
	assert.True(t, decl.IsTypedef())

	require.NotNil(t, decl.Declarators)
	require.Len(t, decl.Declarators.Declarators, 1)
	assert.Equal(t, "x", decl.Declarators.Declarators[0].Declarator)
	assert.Nil(t, decl.Declarators.Declarators[0].Initializer)
	assert.Equal(t, "typedef int x;", decl.String())
}

func TestTemplateTypeNames(t *testing.T) {
	gs := load(t)

	v, err := gs.Declaration.ParseRule("TypeName", "vector<int,float>", 0, "")
	require.NoError(t, err)
	name := v.(*codedom.TypeName)
	assert.Equal(t, "vector", name.Name)
	assert.True(t, name.IsTemplate)
	require.Len(t, name.TemplateArguments, 2)
	for _, arg := range name.TemplateArguments {
		assert.IsType(t, &codedom.TypeID{}, arg)
	}
	assert.Equal(t, "vector<int, float>", name.String())

	v, err = gs.Declaration.ParseRule("TypeName", "array<const char*, N + 1>", 0, "")
	require.NoError(t, err)
	name = v.(*codedom.TypeName)
	require.Len(t, name.TemplateArguments, 2)
	assert.Equal(t, "const char*", name.TemplateArguments[0].String())
	assert.IsType(t, &codedom.BinaryOpExpr{}, name.TemplateArguments[1])

	v, err = gs.Declaration.ParseRule("TypeName", "std::string", 0, "")
	require.NoError(t, err)
	assert.False(t, v.(*codedom.TypeName).IsTemplate)

	_, err = gs.Declaration.ParseRule("TypeName", "map<int", 0, "")
	assert.True(t, parsing.IsExpectationFailure(err))
}

func TestDeclarations(t *testing.T) {
	gs := load(t)

	v, err := gs.Declaration.ParseRule("Declarations", `
		// directives first
		using namespace std;
		using std::string;
		namespace fs = std::filesystem;

		/* then declarations */
		static const int x = 1, *p, arr[10];
		std::vector<int> v(3, 0);
		T t;
		unsigned long grid[2][3] = { { 1, 2, 3 }, { 4 }, };
		mutable int &r = x;
	`, 0, "decls.cpp")
	require.NoError(t, err)

	nodes := v.([]codedom.Node)
	var printed []string
	for _, n := range nodes {
		printed = append(printed, n.String())
	}
	assert.Equal(t, []string{
		"using namespace std;",
		"using std::string;",
		"namespace fs = std::filesystem;",
		"static const int x = 1, *p, arr[10];",
		"std::vector<int> v(3, 0);",
		"T t;",
		"unsigned long grid[2][3] = { { 1, 2, 3 }, { 4 } };",
		"mutable int &r = x;",
	}, printed)

	assert.IsType(t, &codedom.UsingDirective{}, nodes[0])
	assert.IsType(t, &codedom.UsingDeclaration{}, nodes[1])
	alias := nodes[2].(*codedom.NamespaceAlias)
	assert.Equal(t, "fs", alias.Alias)
	assert.Equal(t, "std::filesystem", alias.Target)

	typed := nodes[5].(*codedom.SimpleDeclaration)
	require.Len(t, typed.Specifiers, 1)
	assert.Equal(t, "T", typed.Specifiers[0].(*codedom.TypeName).Name)

	ctor := nodes[4].(*codedom.SimpleDeclaration).Declarators.Declarators[0].Initializer
	assert.True(t, ctor.Paren)
	assert.Len(t, ctor.Arguments, 2)
}

func TestDeclarationErrors(t *testing.T) {
	gs := load(t)

	_, err := gs.Declaration.Parse("int x", 0, "")
	assert.Error(t, err)

	_, err = gs.Declaration.Parse("int a[3;", 0, "")
	assert.True(t, parsing.IsExpectationFailure(err))

	_, err = gs.Declaration.Parse("int v = { 1, 2;", 0, "")
	assert.True(t, parsing.IsExpectationFailure(err))
}
