// Package codedom is the object model of the C++ subset understood by
// the cpp grammars.  Nodes print back as C++ source.
package codedom

import (
	"strings"
)

// Node is any element of the object model
type Node interface {
	String() string
}

// Expr is a node that can appear where an expression is expected
type Expr interface {
	Node
	expr()
}

// LiteralKind classifies literals
type LiteralKind int

const (
	IntegerLiteral LiteralKind = iota
	FloatingLiteral
	CharLiteral
	StringLiteral
	BooleanLiteral
	NullPtrLiteral
)

func (k LiteralKind) String() string {
	switch k {
	case IntegerLiteral:
		return "integer"
	case FloatingLiteral:
		return "floating"
	case CharLiteral:
		return "char"
	case StringLiteral:
		return "string"
	case BooleanLiteral:
		return "boolean"
	case NullPtrLiteral:
		return "nullptr"
	default:
		return "unknown"
	}
}

// Literal keeps the source text of the literal it was parsed from
type Literal struct {
	Kind LiteralKind
	Text string
}

func NewLiteral(kind LiteralKind, text string) *Literal {
	return &Literal{Kind: kind, Text: text}
}

// Bool returns the value of a boolean literal
func (l *Literal) Bool() bool { return l.Kind == BooleanLiteral && l.Text == "true" }

func (l *Literal) String() string { return l.Text }
func (*Literal) expr()            {}

// IdExpr is a possibly qualified name used as an expression
type IdExpr struct {
	ID string
}

func (e *IdExpr) String() string { return e.ID }
func (*IdExpr) expr()            {}

type ThisExpr struct{}

func (*ThisExpr) String() string { return "this" }
func (*ThisExpr) expr()          {}

// BinaryOpExpr covers the comma, assignment and every binary operator
type BinaryOpExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

func (e *BinaryOpExpr) String() string {
	if e.Op == "," {
		return e.Left.String() + ", " + e.Right.String()
	}
	return e.Left.String() + " " + e.Op + " " + e.Right.String()
}
func (*BinaryOpExpr) expr() {}

type ConditionalExpr struct {
	Cond, Then, Else Expr
}

func (e *ConditionalExpr) String() string {
	return e.Cond.String() + " ? " + e.Then.String() + " : " + e.Else.String()
}
func (*ConditionalExpr) expr() {}

type PrefixOpExpr struct {
	Op      string
	Operand Expr
}

func (e *PrefixOpExpr) String() string { return e.Op + e.Operand.String() }
func (*PrefixOpExpr) expr()            {}

type PostfixOpExpr struct {
	Op      string
	Operand Expr
}

func (e *PostfixOpExpr) String() string { return e.Operand.String() + e.Op }
func (*PostfixOpExpr) expr()            {}

type IndexExpr struct {
	Subject Expr
	Index   Expr
}

func (e *IndexExpr) String() string { return e.Subject.String() + "[" + e.Index.String() + "]" }
func (*IndexExpr) expr()            {}

type InvokeExpr struct {
	Subject   Expr
	Arguments []Expr
}

func (e *InvokeExpr) String() string {
	return e.Subject.String() + "(" + join(e.Arguments, ", ") + ")"
}
func (*InvokeExpr) expr() {}

// MemberAccessExpr is `a.b`, or `a->b` when Arrow is set
type MemberAccessExpr struct {
	Subject Expr
	Member  string
	Arrow   bool
}

func (e *MemberAccessExpr) String() string {
	if e.Arrow {
		return e.Subject.String() + "->" + e.Member
	}
	return e.Subject.String() + "." + e.Member
}
func (*MemberAccessExpr) expr() {}

// SizeOfExpr has either a type id or an expression as subject
type SizeOfExpr struct {
	Subject Node
}

// IsType tells if the subject is a type id
func (e *SizeOfExpr) IsType() bool {
	_, ok := e.Subject.(*TypeID)
	return ok
}

func (e *SizeOfExpr) String() string {
	if e.IsType() {
		return "sizeof(" + e.Subject.String() + ")"
	}
	return "sizeof " + e.Subject.String()
}
func (*SizeOfExpr) expr() {}

// ParenExpr keeps the parentheses written around an expression
type ParenExpr struct {
	Inner Expr
}

func (e *ParenExpr) String() string { return "(" + e.Inner.String() + ")" }
func (*ParenExpr) expr()            {}

func join[T Node](nodes []T, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, sep)
}
