package parsing

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nestingGrammar matches balanced parentheses and synthesizes how
// deep they nest
func nestingGrammar() *testGrammar {
	return &testGrammar{
		name: "P",
		create: func(g *Grammar) {
			g.AddRule("nest",
				Alt(
					Action("A0", Seq(Char('('), Call("nest"), Char(')'))),
					Action("A1", Empty())),
				Returns[int]())
			g.SetStart("nest")
		},
		link: func(g *Grammar) error {
			nest := g.Rule("nest")
			nest.Action("A0").SetAction(func(ctx *Context, m *Match) error {
				ctx.SetValue(FromChild[int](ctx, "nest") + 1)
				return nil
			})
			nest.Action("A1").SetAction(setValue(0))
			return nil
		},
	}
}

func TestRecursiveActivationsHaveTheirOwnContext(t *testing.T) {
	d := NewDomain(nil)
	register(d, nestingGrammar())
	g := d.MustGrammar("P")

	for input, depth := range map[string]int{"": 0, "()": 1, "((()))": 3} {
		v, err := g.Parse(input, 0, "")
		require.NoError(t, err)
		assert.Equal(t, depth, v, input)
	}
}

func TestActivationsAreBalanced(t *testing.T) {
	d := NewDomain(nil)
	tracer := &RecordingTracer{}
	d.SetTracer(tracer)
	register(d, nestingGrammar())
	g := d.MustGrammar("P")

	for _, input := range []string{"((()))", "((()", "(()))"} {
		tracer.Events = nil
		_, data, _ := g.parse(g.StartRule(), input, 0, "", nil)
		require.NotNil(t, data)
		assert.True(t, data.Balanced(), input)
		assert.Equal(t, 0, data.Depth(g.StartRule().ID()))

		open := 0
		for _, e := range tracer.Events {
			if e.Enter {
				open++
			} else {
				open--
			}
			require.GreaterOrEqual(t, open, 0)
		}
		assert.Equal(t, 0, open, input)
	}
}

func TestTracingDoesNotChangeResults(t *testing.T) {
	plain := NewDomain(nil)
	register(plain, nestingGrammar())

	cfg := NewConfig()
	cfg.SetBool("parser.trace", true)
	traced := NewDomain(cfg)
	register(traced, nestingGrammar())
	require.IsType(t, &LogTracer{}, traced.Tracer())

	for _, input := range []string{"(())", "(()"} {
		v1, err1 := plain.MustGrammar("P").Parse(input, 0, "")
		v2, err2 := traced.MustGrammar("P").Parse(input, 0, "")
		assert.Equal(t, v1, v2)
		assert.Equal(t, err1 == nil, err2 == nil)
	}
}

// depthTracer records the depth of every rule entry and exit
type depthTracer struct {
	enter, leave []int
}

func (t *depthTracer) Enter(r *Rule, at Span, depth int) { t.enter = append(t.enter, depth) }
func (t *depthTracer) Leave(r *Rule, span Span, matched bool, depth int) {
	t.leave = append(t.leave, depth)
}

func TestTracersSeeTheDepthOfTheParse(t *testing.T) {
	d := NewDomain(nil)
	tracer := &depthTracer{}
	d.SetTracer(tracer)
	register(d, nestingGrammar())

	_, err := d.MustGrammar("P").Parse("(())", 0, "")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, tracer.enter)
	assert.Equal(t, []int{2, 1, 0}, tracer.leave)
}

func TestConcurrentTracedParses(t *testing.T) {
	cfg := NewConfig()
	cfg.SetBool("parser.trace", true)
	d := NewDomain(cfg)
	register(d, nestingGrammar())
	g := d.MustGrammar("P")

	parseAll := func() {
		values := make([]any, 8)
		errs := make([]error, 8)
		var wg sync.WaitGroup
		for i := range values {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				values[i], errs[i] = g.Parse("((()))", 0, "")
			}(i)
		}
		wg.Wait()
		for i := range values {
			require.NoError(t, errs[i])
			assert.Equal(t, 3, values[i])
		}
	}
	parseAll()

	tracer := &RecordingTracer{}
	d.SetTracer(tracer)
	_, err := g.Parse("((()))", 0, "")
	require.NoError(t, err)
	single := len(tracer.Events)
	tracer.Events = nil

	parseAll()
	assert.Len(t, tracer.Events, 8*single)
}

func TestMaxDepth(t *testing.T) {
	cfg := NewConfig()
	cfg.SetInt("parser.max_depth", 5)
	d := NewDomain(cfg)
	register(d, nestingGrammar())
	g := d.MustGrammar("P")

	_, err := g.Parse("(())", 0, "")
	require.NoError(t, err)

	deep := strings.Repeat("(", 10) + strings.Repeat(")", 10)
	_, data, err := g.parse(g.StartRule(), deep, 0, "", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMaxDepth))
	assert.True(t, data.Balanced())
}

func TestInheritedAttributes(t *testing.T) {
	var seen []any
	d := NewDomain(nil)
	register(d, &testGrammar{
		name: "A",
		create: func(g *Grammar) {
			g.AddRule("S", CallAs("sum", "add", 2), Returns[int]())
			g.AddRule("add",
				Action("A0", Many1(Digit())),
				Inherit[int]("x"), Inherit[string]("label"), Returns[int]())
			g.SetStart("S")
		},
		link: func(g *Grammar) error {
			g.Rule("S").Nonterminal("sum").
				SetArgs(
					func(ctx *Context) any { return 40 },
					func(ctx *Context) any { return "answer" }).
				SetPostCall(func(ctx *Context, value any) {
					seen = append(seen, value)
					ctx.SetValue(value)
				})
			g.Rule("add").Action("A0").SetAction(func(ctx *Context, m *Match) error {
				assert.Equal(t, "answer", Arg[string](ctx, "label"))
				ctx.SetValue(Arg[int](ctx, "x") + len(m.Text()))
				return nil
			})
			return nil
		},
	})
	g := d.MustGrammar("A")

	v, err := g.Parse("12", 0, "")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, []any{42}, seen)

	_, err = g.Parse("x", 0, "")
	require.Error(t, err)
	assert.Len(t, seen, 1)

	params := g.Rule("add").Params()
	require.Len(t, params, 2)
	assert.Equal(t, "x", params[0].Name)
	assert.Equal(t, "int", params[0].Type.String())
}

func TestAttributeTypesAreChecked(t *testing.T) {
	t.Run("argument", func(t *testing.T) {
		d := NewDomain(nil)
		register(d, &testGrammar{
			name: "A",
			create: func(g *Grammar) {
				g.AddRule("S", CallAs("r", "r", 1))
				g.AddRule("r", Empty(), Inherit[int]("n"))
				g.SetStart("S")
			},
			link: func(g *Grammar) error {
				g.Rule("S").Nonterminal("r").SetArgs(func(ctx *Context) any { return "one" })
				return nil
			},
		})
		_, err := d.MustGrammar("A").Parse("", 0, "")

		var gerr *GrammarError
		require.True(t, errors.As(err, &gerr))
		assert.Equal(t, "r", gerr.Rule)
		assert.Contains(t, gerr.Message, "attribute `n` must be a int")
	})

	t.Run("result", func(t *testing.T) {
		d := NewDomain(nil)
		register(d, &testGrammar{
			name: "A",
			create: func(g *Grammar) {
				g.AddRule("S", Action("A0", Empty()), Returns[int]())
				g.SetStart("S")
			},
			link: func(g *Grammar) error {
				g.Rule("S").Action("A0").SetAction(setValue("one"))
				return nil
			},
		})
		_, err := d.MustGrammar("A").Parse("", 0, "")

		var gerr *GrammarError
		require.True(t, errors.As(err, &gerr))
		assert.Contains(t, gerr.Message, "synthesized string isn't a int")
	})

	t.Run("start rule arguments", func(t *testing.T) {
		d := NewDomain(nil)
		register(d, &testGrammar{
			name: "A",
			create: func(g *Grammar) {
				g.AddRule("S", Action("A0", Empty()), Inherit[int]("n"), Returns[int]())
				g.SetStart("S")
			},
			link: func(g *Grammar) error {
				g.Rule("S").Action("A0").SetAction(func(ctx *Context, m *Match) error {
					ctx.SetValue(Arg[int](ctx, "n") * 2)
					return nil
				})
				return nil
			},
		})
		g := d.MustGrammar("A")

		v, err := g.Parse("", 0, "", 21)
		require.NoError(t, err)
		assert.Equal(t, 42, v)

		_, err = g.Parse("", 0, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expects 1 inherited attributes, got 0")
	})
}

func TestContextAccessors(t *testing.T) {
	r := &Rule{name: "r", grammar: &Grammar{name: "G", scope: newScope("", nil)}, params: []Param{{Name: "n"}}}
	ctx := newContext(r, []any{7})

	assert.Equal(t, 7, Arg[int](ctx, "n"))
	assert.Panics(t, func() { Arg[int](ctx, "missing") })
	assert.Panics(t, func() { Arg[string](ctx, "n") })

	assert.Equal(t, "", Var[string](ctx, "unset"))
	ctx.Set("s", "text")
	assert.Equal(t, "text", Var[string](ctx, "s"))

	assert.Nil(t, FromChild[*Rule](ctx, "child"))
	ctx.setChild("child", r)
	assert.Same(t, r, FromChild[*Rule](ctx, "child"))

	ctx.SetValue(3)
	assert.Equal(t, 3, Value[int](ctx))
	assert.Same(t, r, ctx.Rule())
}
