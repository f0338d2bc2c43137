package parsing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testGrammar is a Definition assembled from functions, so each test
// can describe its grammar inline
type testGrammar struct {
	name   string
	ns     string
	refs   []string
	create func(g *Grammar)
	link   func(g *Grammar) error
}

func (tg *testGrammar) Name() string         { return tg.name }
func (tg *testGrammar) Namespace() string    { return tg.ns }
func (tg *testGrammar) References() []string { return tg.refs }

func (tg *testGrammar) CreateRules(g *Grammar) {
	if tg.create != nil {
		tg.create(g)
	}
}

func (tg *testGrammar) Link(g *Grammar) error {
	if tg.link == nil {
		return nil
	}
	return tg.link(g)
}

func register(d *Domain, tg *testGrammar) {
	d.Register(func() Definition { return tg })
}

// single builds, in a new domain, the grammar `G` whose start rule
// `S` matches body
func single(t *testing.T, body *Parser, opts ...RuleOption) *Grammar {
	t.Helper()
	d := NewDomain(nil)
	register(d, &testGrammar{name: "G", create: func(g *Grammar) {
		g.AddRule("S", body, opts...)
		g.SetStart("S")
	}})
	g, err := d.Grammar("G")
	require.NoError(t, err)
	return g
}

func setValue(v any) ActionFunc {
	return func(ctx *Context, m *Match) error {
		ctx.SetValue(v)
		return nil
	}
}
