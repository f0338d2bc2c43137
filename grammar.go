package parsing

import (
	"errors"
	"fmt"
	"strings"
)

// Definition is implemented by concrete grammars.  A grammar is built
// in two phases: CreateRules adds the rules and records the links to
// rules of other grammars, then, once every grammar named by
// References exists, the runtime resolves nonterminals and calls Link
// so the definition can bind its callbacks.
type Definition interface {
	// Name of the grammar, without its namespace
	Name() string

	// Namespace is the dotted path of the scope the grammar lives in
	Namespace() string

	// References returns the names of the grammars this one uses
	// rules from.  Names are resolved relative to the grammar's
	// namespace.
	References() []string

	CreateRules(g *Grammar)

	Link(g *Grammar) error
}

// Grammar is a named set of rules with a start rule and an optional
// skip rule.  It's immutable once linked and can be used by many
// sequential or concurrent parses, as long as the domain's tracer is
// safe for concurrent use.
type Grammar struct {
	domain *Domain
	def    Definition
	name   string
	scope  *Scope

	rules map[string]*Rule
	order []*Rule

	startName string
	start     *Rule
	skipName  string
	skip      *Rule

	// links maps local rule names to `Grammar.Rule` names
	links      map[string]string
	references []*Grammar

	buildErrs []error
	linked    bool
}

func newGrammar(d *Domain, def Definition) *Grammar {
	return &Grammar{
		domain: d,
		def:    def,
		name:   def.Name(),
		scope:  d.Scope(def.Namespace()),
		rules:  map[string]*Rule{},
		links:  map[string]string{},
	}
}

func (g *Grammar) Name() string           { return g.name }
func (g *Grammar) Scope() *Scope          { return g.scope }
func (g *Grammar) Domain() *Domain        { return g.domain }
func (g *Grammar) Rules() []*Rule         { return g.order }
func (g *Grammar) References() []*Grammar { return g.references }
func (g *Grammar) StartRule() *Rule       { return g.start }
func (g *Grammar) SkipRule() *Rule        { return g.skip }
func (g *Grammar) Linked() bool           { return g.linked }

// FullName qualifies the grammar name with its namespace
func (g *Grammar) FullName() string { return g.scope.qualify(g.name) }

// AddRule creates a rule named `name` matching `body`.  Rule ids are
// handed out by the domain.
func (g *Grammar) AddRule(name string, body *Parser, opts ...RuleOption) *Rule {
	r := &Rule{name: name, grammar: g, body: body}
	for _, opt := range opts {
		opt(r)
	}
	if _, ok := g.rules[name]; ok {
		g.buildErrs = append(g.buildErrs, grammarErrorf(g, r, "rule defined twice"))
		return r
	}
	if err := r.index(); err != nil {
		g.buildErrs = append(g.buildErrs, err)
	}
	r.id = g.domain.nextRuleID()
	g.rules[name] = r
	g.order = append(g.order, r)
	return r
}

// Rule returns the rule `name` of this grammar, or nil
func (g *Grammar) Rule(name string) *Rule { return g.rules[name] }

// SetStart names the rule Parse starts from
func (g *Grammar) SetStart(name string) { g.startName = name }

// SetSkip names the rule applied between lexemes.  It may be a local
// rule, a linked rule or a `Grammar.Rule` name.
func (g *Grammar) SetSkip(name string) { g.skipName = name }

// LinkRule makes `local` an alias of `target`, a `Grammar.Rule` name
func (g *Grammar) LinkRule(local, target string) { g.links[local] = target }

// Link resolves every nonterminal of the grammar, then lets the
// definition bind its callbacks.  All referenced grammars must exist.
func (g *Grammar) Link() error {
	if g.linked {
		return nil
	}
	if len(g.buildErrs) > 0 {
		return errors.Join(g.buildErrs...)
	}
	for _, r := range g.order {
		if err := g.linkRule(r); err != nil {
			return err
		}
	}
	if g.startName != "" {
		if g.start = g.rules[g.startName]; g.start == nil {
			return grammarErrorf(g, nil, "start rule `%s` not found", g.startName)
		}
	}
	if g.skipName != "" {
		skip, err := g.resolve(g.skipName)
		if err != nil {
			return grammarErrorf(g, nil, "skip rule: %s", err)
		}
		if len(skip.params) > 0 {
			return grammarErrorf(g, nil, "skip rule `%s` can't take inherited attributes", skip.FullName())
		}
		g.skip = skip
	}
	if g.def != nil {
		if err := g.def.Link(g); err != nil {
			return err
		}
	}
	for _, r := range g.order {
		if err := g.checkBindings(r); err != nil {
			return err
		}
	}
	g.linked = true
	g.domain.log.Debugf("domain %s: linked grammar %s (%d rules)", g.domain.id, g.FullName(), len(g.order))
	return nil
}

func (g *Grammar) linkRule(r *Rule) error {
	return r.body.walk(func(p *Parser) error {
		if p.Kind != KindNonterminal {
			return nil
		}
		target, err := g.resolve(p.text)
		if err != nil {
			return grammarErrorf(g, r, "%s", err)
		}
		if p.nargs != len(target.params) {
			return grammarErrorf(g, r, "`%s` takes %d inherited attributes but the call passes %d",
				target.FullName(), len(target.params), p.nargs)
		}
		p.rule = target
		return nil
	})
}

func (g *Grammar) checkBindings(r *Rule) error {
	return r.body.walk(func(p *Parser) error {
		switch {
		case p.Kind == KindAction && p.action == nil:
			return grammarErrorf(g, r, "action `%s` isn't bound", p.name)
		case p.Kind == KindNonterminal && len(p.args) != p.nargs:
			return grammarErrorf(g, r, "nonterminal `%s` needs %d arguments bound, got %d", p.name, p.nargs, len(p.args))
		}
		return nil
	})
}

// resolve finds the rule a nonterminal named `name` refers to: a
// local rule, a linked rule, or a rule of an already loaded grammar
func (g *Grammar) resolve(name string) (*Rule, error) {
	if r, ok := g.rules[name]; ok {
		return r, nil
	}
	if target, ok := g.links[name]; ok {
		name = target
	}
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return nil, fmt.Errorf("rule `%s` not found", name)
	}
	gname, rname := name[:idx], name[idx+1:]
	other := g.domain.lookup(gname, g.scope)
	if other == nil {
		return nil, fmt.Errorf("grammar `%s` isn't loaded; it must be listed in the references of `%s`", gname, g.FullName())
	}
	r, ok := other.rules[rname]
	if !ok {
		return nil, fmt.Errorf("rule `%s` not found in grammar `%s`", rname, other.FullName())
	}
	return r, nil
}

// Parse matches the whole `input` with the start rule and returns the
// value it synthesizes.  `args` are the inherited attributes of the
// start rule.
func (g *Grammar) Parse(input string, fileIndex int, fileName string, args ...any) (any, error) {
	if !g.linked {
		return nil, grammarErrorf(g, nil, "grammar isn't linked")
	}
	if g.start == nil {
		return nil, grammarErrorf(g, nil, "no start rule")
	}
	value, _, err := g.parse(g.start, input, fileIndex, fileName, args)
	return value, err
}

// ParseRule is like Parse but starts from the rule `name`
func (g *Grammar) ParseRule(name string, input string, fileIndex int, fileName string, args ...any) (any, error) {
	r := g.rules[name]
	if r == nil {
		return nil, grammarErrorf(g, nil, "rule `%s` not found", name)
	}
	value, _, err := g.parse(r, input, fileIndex, fileName, args)
	return value, err
}

func (g *Grammar) parse(r *Rule, input string, fileIndex int, fileName string, args []any) (any, *ParsingData, error) {
	if !g.linked {
		return nil, nil, grammarErrorf(g, nil, "grammar isn't linked")
	}
	if args == nil {
		args = []any{}
	}
	cfg := g.domain.cfg
	s := newScanner(input, fileIndex, fileName)
	s.data = newParsingData(g.domain.RuleCount(), cfg.GetInt("parser.max_depth"))
	s.tracer = g.domain.Tracer()
	if cfg.GetBool("parser.skip") {
		s.skipRule = g.skip
	}

	value, err := g.run(s, r, args)
	if err != nil {
		g.domain.log.Infof("parse of %q with %s failed: %s", fileName, r.FullName(), err)
		return nil, s.data, err
	}
	return value, s.data, nil
}

func (g *Grammar) run(s *Scanner, r *Rule, args []any) (any, error) {
	if err := s.skip(); err != nil {
		return nil, err
	}
	value, ok, err := r.apply(s, args)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newExpectationFailure(s, r.FullName(), s.expectedAtFarthest(r.name), s.ffp)
	}
	if err := s.skip(); err != nil {
		return nil, err
	}
	if !s.AtEnd() {
		if s.ffp > s.pos {
			return nil, newExpectationFailure(s, r.FullName(), s.expectedAtFarthest("end of input"), s.ffp)
		}
		return nil, newExpectationFailure(s, r.FullName(), "end of input", s.pos)
	}
	return value, nil
}
