package parsing

import (
	"fmt"
	"reflect"
)

// Param is an inherited attribute declared by a rule
type Param struct {
	Name string
	Type reflect.Type
}

// Rule is a named production.  The same Rule is shared by all of its
// activations, including recursive ones; each activation gets its
// own Context.
type Rule struct {
	id      int
	name    string
	grammar *Grammar
	body    *Parser

	params []Param
	result reflect.Type

	actions      map[string]*Parser
	nonterminals map[string]*Parser
}

// RuleOption configures a rule when it's added to a grammar
type RuleOption func(*Rule)

// Inherit declares an inherited attribute of type T.  Attributes are
// passed in declaration order.
func Inherit[T any](name string) RuleOption {
	return func(r *Rule) {
		r.params = append(r.params, Param{Name: name, Type: typeOf[T]()})
	}
}

// Returns declares the type of the value the rule synthesizes
func Returns[T any]() RuleOption {
	return func(r *Rule) { r.result = typeOf[T]() }
}

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func (r *Rule) ID() int              { return r.id }
func (r *Rule) Name() string         { return r.name }
func (r *Rule) Grammar() *Grammar    { return r.grammar }
func (r *Rule) Body() *Parser        { return r.body }
func (r *Rule) Params() []Param      { return r.params }
func (r *Rule) Result() reflect.Type { return r.result }

// FullName qualifies the rule name with the grammar's full name
func (r *Rule) FullName() string { return r.grammar.FullName() + "." + r.name }

// Action returns the action expression named `name`.  It panics if
// the rule has no such action.
func (r *Rule) Action(name string) *Parser {
	p, ok := r.actions[name]
	if !ok {
		panic(fmt.Sprintf("rule `%s` has no action `%s`", r.FullName(), name))
	}
	return p
}

// Nonterminal returns the first nonterminal instance named `name`.
// It panics if the rule has no such instance.
func (r *Rule) Nonterminal(name string) *Parser {
	p, ok := r.nonterminals[name]
	if !ok {
		panic(fmt.Sprintf("rule `%s` has no nonterminal `%s`", r.FullName(), name))
	}
	return p
}

func (r *Rule) index() error {
	r.actions = map[string]*Parser{}
	r.nonterminals = map[string]*Parser{}
	return r.body.walk(func(p *Parser) error {
		switch p.Kind {
		case KindAction:
			// List shares its item, so the same node can be seen twice
			if prev, ok := r.actions[p.name]; ok && prev != p {
				return grammarErrorf(r.grammar, r, "duplicated action `%s`", p.name)
			}
			r.actions[p.name] = p
		case KindNonterminal:
			if _, ok := r.nonterminals[p.name]; !ok {
				r.nonterminals[p.name] = p
			}
		}
		return nil
	})
}

func (r *Rule) paramIndex(name string) int {
	for i, p := range r.params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// apply runs one activation of the rule.  The synthesized value is
// only meaningful when the rule matched.
func (r *Rule) apply(s *Scanner, args []any) (any, bool, error) {
	if err := r.checkArgs(args); err != nil {
		return nil, false, err
	}
	if err := s.data.enter(r); err != nil {
		loc := s.index().LocationAt(s.pos)
		return nil, false, fmt.Errorf("%w: rule `%s` at %s", err, r.FullName(), loc)
	}
	defer s.data.leave(r)

	s.pushRule(r)
	defer s.popRule()

	tracing := s.tracer != nil && !s.skipping
	start := s.pos
	depth := s.data.Total() - 1
	if tracing {
		s.tracer.Enter(r, s.Span(start), depth)
	}

	ctx := newContext(r, args)
	ok, err := r.body.match(s, ctx)

	if tracing {
		s.tracer.Leave(r, s.Span(start), ok && err == nil, depth)
	}
	if err != nil {
		return nil, false, err
	}
	if !ok {
		s.pos = start
		return nil, false, nil
	}
	if ctx.value != nil && r.result != nil && !reflect.TypeOf(ctx.value).AssignableTo(r.result) {
		return nil, false, grammarErrorf(r.grammar, r, "synthesized %T isn't a %s", ctx.value, r.result)
	}
	return ctx.value, true, nil
}

func (r *Rule) checkArgs(args []any) error {
	if len(args) != len(r.params) {
		return grammarErrorf(r.grammar, r, "expects %d inherited attributes, got %d", len(r.params), len(args))
	}
	for i, p := range r.params {
		if args[i] == nil {
			continue
		}
		if !reflect.TypeOf(args[i]).AssignableTo(p.Type) {
			return grammarErrorf(r.grammar, r, "attribute `%s` must be a %s, got %T", p.Name, p.Type, args[i])
		}
	}
	return nil
}

// Context is the activation record of a rule: its inherited
// attributes, local variables, the values synthesized by the
// nonterminals it called, and its own synthesized value
type Context struct {
	rule     *Rule
	args     []any
	vars     map[string]any
	children map[string]any
	value    any
}

func newContext(r *Rule, args []any) *Context {
	return &Context{rule: r, args: args}
}

// Rule returns the rule this activation belongs to
func (c *Context) Rule() *Rule { return c.rule }

// Set assigns a local variable
func (c *Context) Set(name string, v any) {
	if c.vars == nil {
		c.vars = map[string]any{}
	}
	c.vars[name] = v
}

// SetValue assigns the value synthesized by the activation
func (c *Context) SetValue(v any) { c.value = v }

func (c *Context) setChild(name string, v any) {
	if c.children == nil {
		c.children = map[string]any{}
	}
	c.children[name] = v
}

// Arg returns the inherited attribute `name` of the activation
func Arg[T any](c *Context, name string) T {
	i := c.rule.paramIndex(name)
	if i < 0 {
		panic(fmt.Sprintf("rule `%s` has no attribute `%s`", c.rule.FullName(), name))
	}
	return cast[T](c.args[i], name)
}

// Var returns the local variable `name`, or the zero value of T if
// it hasn't been set
func Var[T any](c *Context, name string) T { return cast[T](c.vars[name], name) }

// FromChild returns the value synthesized by the last successful
// call of the nonterminal instance `name`
func FromChild[T any](c *Context, name string) T { return cast[T](c.children[name], name) }

// Value returns the value synthesized so far by the activation
func Value[T any](c *Context) T { return cast[T](c.value, "value") }

func cast[T any](v any, name string) T {
	var zero T
	if v == nil {
		return zero
	}
	t, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("`%s` holds a %T, not a %s", name, v, typeOf[T]()))
	}
	return t
}
