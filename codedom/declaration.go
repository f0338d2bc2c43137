package codedom

import (
	"strings"
)

// TypeName is a possibly qualified name of a type, optionally
// followed by a template argument list
type TypeName struct {
	Name              string
	IsTemplate        bool
	TemplateArguments []Node
}

func NewTypeName(name string) *TypeName { return &TypeName{Name: name} }

// AddTemplateArgument appends a type id or an expression
func (t *TypeName) AddTemplateArgument(arg Node) {
	t.TemplateArguments = append(t.TemplateArguments, arg)
}

func (t *TypeName) String() string {
	if !t.IsTemplate {
		return t.Name
	}
	return t.Name + "<" + join(t.TemplateArguments, ", ") + ">"
}

// TypeSpecifier is a built in type name such as `int` or `unsigned`,
// or a cv qualifier
type TypeSpecifier struct {
	Name string
}

func (t *TypeSpecifier) String() string { return t.Name }

// IsCVQualifier tells if the specifier is `const` or `volatile`
func (t *TypeSpecifier) IsCVQualifier() bool {
	return t.Name == "const" || t.Name == "volatile"
}

type StorageClassSpecifier struct {
	Name string
}

func (s *StorageClassSpecifier) String() string { return s.Name }

type Typedef struct{}

func (*Typedef) String() string { return "typedef" }

// TypeID is a type as written in casts, sizeof and template
// arguments: specifiers followed by an abstract declarator
type TypeID struct {
	TypeSpecifiers []Node
	Declarator     string
}

func (t *TypeID) Add(spec Node) { t.TypeSpecifiers = append(t.TypeSpecifiers, spec) }

func (t *TypeID) String() string {
	s := join(t.TypeSpecifiers, " ")
	if t.Declarator != "" {
		s += t.Declarator
	}
	return s
}

// Initializer is one of `= expr`, `= { list }` or `( args )`.  Lists
// nest, expressions within a list have just Expr set.
type Initializer struct {
	Expr      Expr
	List      []*Initializer
	Arguments []Expr
	Braced    bool
	Paren     bool
}

func (i *Initializer) String() string {
	switch {
	case i.Paren:
		return "(" + join(i.Arguments, ", ") + ")"
	case i.Braced:
		return "{ " + join(i.List, ", ") + " }"
	case i.Expr != nil:
		return i.Expr.String()
	default:
		return ""
	}
}

type InitDeclarator struct {
	Declarator  string
	Initializer *Initializer
}

func (d *InitDeclarator) String() string {
	switch {
	case d.Initializer == nil:
		return d.Declarator
	case d.Initializer.Paren:
		return d.Declarator + d.Initializer.String()
	default:
		return d.Declarator + " = " + d.Initializer.String()
	}
}

type InitDeclaratorList struct {
	Declarators []*InitDeclarator
}

func (l *InitDeclaratorList) Add(d *InitDeclarator) { l.Declarators = append(l.Declarators, d) }

func (l *InitDeclaratorList) String() string { return join(l.Declarators, ", ") }

// SimpleDeclaration is a list of declaration specifiers followed by
// the declarators they apply to
type SimpleDeclaration struct {
	Specifiers  []Node
	Declarators *InitDeclaratorList
}

func (d *SimpleDeclaration) Add(spec Node) { d.Specifiers = append(d.Specifiers, spec) }

// IsTypedef tells if one of the specifiers is `typedef`
func (d *SimpleDeclaration) IsTypedef() bool {
	for _, s := range d.Specifiers {
		if _, ok := s.(*Typedef); ok {
			return true
		}
	}
	return false
}

func (d *SimpleDeclaration) String() string {
	var s strings.Builder
	s.WriteString(join(d.Specifiers, " "))
	if d.Declarators != nil && len(d.Declarators.Declarators) > 0 {
		s.WriteString(" ")
		s.WriteString(d.Declarators.String())
	}
	s.WriteString(";")
	return s.String()
}

type UsingDeclaration struct {
	Name string
}

func (u *UsingDeclaration) String() string { return "using " + u.Name + ";" }

type UsingDirective struct {
	Namespace string
}

func (u *UsingDirective) String() string { return "using namespace " + u.Namespace + ";" }

type NamespaceAlias struct {
	Alias  string
	Target string
}

func (a *NamespaceAlias) String() string { return "namespace " + a.Alias + " = " + a.Target + ";" }
