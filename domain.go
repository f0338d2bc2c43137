package parsing

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
)

// Factory returns a fresh definition of a grammar
type Factory func() Definition

// Domain ties grammars together.  It hands out rule ids, which are
// unique across all of its grammars, and owns the registry grammars
// are looked up from by name.  Asking for a grammar that isn't built
// yet builds it along with everything it references.
type Domain struct {
	// builds serializes grammar requests, so a grammar is only handed
	// out once its whole closure is linked
	builds sync.Mutex
	// mu guards the fields below
	mu sync.Mutex

	id  uuid.UUID
	cfg *Config
	log commonlog.Logger

	root      *Scope
	factories map[string]Factory
	grammars  map[string]*Grammar

	// building marks grammars whose rules are being created, so a
	// reference cycle gets the instance under construction
	building map[string]bool

	// pending holds the grammars built by the outermost request
	// that are still waiting to be linked.  Only touched while
	// holding builds.
	pending []*Grammar
	nesting int

	ruleCount int
	tracer    Tracer
}

// NewDomain creates an empty domain.  A nil configuration means the
// defaults of NewConfig.
func NewDomain(cfg *Config) *Domain {
	if cfg == nil {
		cfg = NewConfig()
	}
	d := &Domain{
		id:        uuid.New(),
		cfg:       cfg,
		log:       commonlog.GetLogger("cminor.parsing"),
		root:      newScope("", nil),
		factories: map[string]Factory{},
		grammars:  map[string]*Grammar{},
		building:  map[string]bool{},
	}
	if cfg.GetBool("parser.trace") {
		d.tracer = NewLogTracer()
	}
	if d.log.AllowLevel(commonlog.Debug) {
		d.log.Debugf("domain %s: created with\n%s", d.id, cfg)
	}
	return d
}

// ID identifies the domain in log messages
func (d *Domain) ID() uuid.UUID { return d.id }

// Config returns the domain's configuration
func (d *Domain) Config() *Config { return d.cfg }

// SetTracer installs a tracer used by every parse of the domain's
// grammars.  A nil tracer disables tracing.
func (d *Domain) SetTracer(t Tracer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tracer = t
}

func (d *Domain) Tracer() Tracer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tracer
}

// RuleCount returns how many rules were created in the domain
func (d *Domain) RuleCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ruleCount
}

func (d *Domain) nextRuleID() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.ruleCount
	d.ruleCount++
	return id
}

// Register makes a grammar buildable by its full name.  Registering
// the same name twice keeps the first factory.
func (d *Domain) Register(f Factory) {
	def := f()
	name := d.Scope(def.Namespace()).qualify(def.Name())

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.factories[name]; !ok {
		d.factories[name] = f
	}
}

// Grammar returns the grammar `name`, building and linking it, and
// every grammar it references, if needed.  Requesting the same name
// again returns the same instance.  Concurrent requests wait for each
// other.  Definitions must not call it from CreateRules or Link.
func (d *Domain) Grammar(name string) (*Grammar, error) {
	d.builds.Lock()
	defer d.builds.Unlock()
	return d.acquire(name, d.root)
}

// Grammars returns the full names of all the grammars in the domain
func (d *Domain) Grammars() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.grammars))
	for name := range d.grammars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Domain) acquire(name string, from *Scope) (*Grammar, error) {
	d.mu.Lock()
	if g := d.findLocked(name, from); g != nil {
		d.mu.Unlock()
		return g, nil
	}
	full, f := d.findFactoryLocked(name, from)
	if f == nil {
		d.mu.Unlock()
		return nil, &GrammarError{Grammar: name, Message: "no such grammar registered"}
	}
	d.nesting++
	d.mu.Unlock()

	g, err := d.build(full, f)

	d.mu.Lock()
	d.nesting--
	outermost := d.nesting == 0
	var pending []*Grammar
	if outermost {
		pending, d.pending = d.pending, nil
	}
	d.mu.Unlock()

	if err == nil && outermost {
		for _, p := range pending {
			if err = p.Link(); err != nil {
				break
			}
		}
	}
	if err != nil {
		if outermost {
			d.forget(pending)
		}
		return nil, err
	}
	return g, nil
}

// build creates the rules of a new grammar and then acquires the
// grammars it references.  Linking is left to the outermost request.
func (d *Domain) build(full string, f Factory) (*Grammar, error) {
	def := f()
	g := newGrammar(d, def)

	d.mu.Lock()
	d.grammars[full] = g
	d.building[full] = true
	d.pending = append(d.pending, g)
	d.mu.Unlock()

	d.log.Debugf("domain %s: creating grammar %s", d.id, full)
	def.CreateRules(g)

	var err error
	for _, ref := range def.References() {
		var rg *Grammar
		if rg, err = d.acquire(ref, g.scope); err != nil {
			err = fmt.Errorf("grammar `%s` references `%s`: %w", full, ref, err)
			break
		}
		g.references = append(g.references, rg)
	}

	d.mu.Lock()
	delete(d.building, full)
	d.mu.Unlock()
	return g, err
}

// forget drops grammars whose build failed, so a later request can
// try again from scratch
func (d *Domain) forget(gs []*Grammar) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, g := range gs {
		delete(d.grammars, g.FullName())
	}
}

// Building tells if the grammar `name` has its rules being created
func (d *Domain) Building(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.building[name]
}

// lookup finds an existing grammar, resolving `name` from the scope
// `from` outwards
func (d *Domain) lookup(name string, from *Scope) *Grammar {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.findLocked(name, from)
}

func (d *Domain) findLocked(name string, from *Scope) *Grammar {
	for sc := from; sc != nil; sc = sc.parent {
		if g, ok := d.grammars[sc.qualify(name)]; ok {
			return g
		}
	}
	return nil
}

func (d *Domain) findFactoryLocked(name string, from *Scope) (string, Factory) {
	for sc := from; sc != nil; sc = sc.parent {
		full := sc.qualify(name)
		if f, ok := d.factories[full]; ok {
			return full, f
		}
	}
	return "", nil
}

// Scope returns the namespace scope with the dotted `path`, creating
// the missing ones.  The empty path is the root scope.
func (d *Domain) Scope(path string) *Scope {
	d.mu.Lock()
	defer d.mu.Unlock()
	sc := d.root
	if path == "" {
		return sc
	}
	for _, part := range strings.Split(path, ".") {
		sc = sc.child(part)
	}
	return sc
}

// Scope is a namespace grammars live in
type Scope struct {
	name     string
	parent   *Scope
	children map[string]*Scope
}

func newScope(name string, parent *Scope) *Scope {
	return &Scope{name: name, parent: parent, children: map[string]*Scope{}}
}

func (s *Scope) Name() string   { return s.name }
func (s *Scope) Parent() *Scope { return s.parent }

// FullName is the dotted path from the root scope
func (s *Scope) FullName() string {
	if s.parent == nil {
		return s.name
	}
	return s.parent.qualify(s.name)
}

func (s *Scope) qualify(name string) string {
	full := s.FullName()
	if full == "" {
		return name
	}
	return full + "." + name
}

func (s *Scope) child(name string) *Scope {
	if c, ok := s.children[name]; ok {
		return c
	}
	c := newScope(name, s)
	s.children[name] = c
	return c
}

// MustGrammar is like Grammar but panics on error.  It's meant for
// package level initialization of grammars that are known to build.
func (d *Domain) MustGrammar(name string) *Grammar {
	g, err := d.Grammar(name)
	if err != nil {
		panic(err)
	}
	return g
}
