// Package cpp holds grammars for a subset of C++: identifiers,
// literals, expressions, declarators and declarations.  They
// reference each other in cycles and produce codedom nodes.
package cpp

import (
	parsing "github.com/slaakko/cminor-sub003"
	"github.com/slaakko/cminor-sub003/stdlib"
)

// Namespace is the scope every cpp grammar lives in
const Namespace = "cpp"

const skipRule = "stdlib.spaces_and_comments"

// Keywords are the reserved words Identifier refuses to match
var Keywords = []string{
	"alignas", "alignof", "asm", "auto", "bool", "break", "case", "catch",
	"char", "char16_t", "char32_t", "class", "const", "constexpr",
	"const_cast", "continue", "decltype", "default", "delete", "do",
	"double", "dynamic_cast", "else", "enum", "explicit", "export",
	"extern", "false", "float", "for", "friend", "goto", "if", "inline",
	"int", "long", "mutable", "namespace", "new", "noexcept", "nullptr",
	"operator", "private", "protected", "public", "register",
	"reinterpret_cast", "return", "short", "signed", "sizeof", "static",
	"static_assert", "static_cast", "struct", "switch", "template", "this",
	"thread_local", "throw", "true", "try", "typedef", "typeid", "typename",
	"union", "unsigned", "using", "virtual", "void", "volatile", "wchar_t",
	"while",
}

// Register makes the cpp grammars, and the stdlib grammar they use,
// available to `d`
func Register(d *parsing.Domain) {
	stdlib.Register(d)
	d.Register(func() parsing.Definition { return identifierGrammar{} })
	d.Register(func() parsing.Definition { return literalGrammar{} })
	d.Register(func() parsing.Definition { return expressionGrammar{} })
	d.Register(func() parsing.Definition { return declaratorGrammar{} })
	d.Register(func() parsing.Definition { return declarationGrammar{} })
}

// Grammars are the linked cpp grammars of a domain
type Grammars struct {
	Identifier  *parsing.Grammar
	Literal     *parsing.Grammar
	Expression  *parsing.Grammar
	Declarator  *parsing.Grammar
	Declaration *parsing.Grammar
}

// Load registers and builds every cpp grammar within `d`
func Load(d *parsing.Domain) (*Grammars, error) {
	Register(d)
	gs := &Grammars{}
	for _, item := range []struct {
		name string
		dst  **parsing.Grammar
	}{
		{"Declaration", &gs.Declaration},
		{"Declarator", &gs.Declarator},
		{"Expression", &gs.Expression},
		{"Literal", &gs.Literal},
		{"Identifier", &gs.Identifier},
	} {
		g, err := d.Grammar(Namespace + "." + item.name)
		if err != nil {
			return nil, err
		}
		*item.dst = g
	}
	return gs, nil
}

// namespaced has the methods every cpp grammar shares
type namespaced struct{}

func (namespaced) Namespace() string { return Namespace }

func setText(ctx *parsing.Context, m *parsing.Match) error {
	ctx.SetValue(m.Text())
	return nil
}

// forward makes the value synthesized by a nonterminal the value of
// the calling rule
func forward(ctx *parsing.Context, value any) { ctx.SetValue(value) }

func forwardAll(r *parsing.Rule, names ...string) {
	for _, name := range names {
		r.Nonterminal(name).SetPostCall(forward)
	}
}
