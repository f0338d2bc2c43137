package parsing

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Kind tags each one of the closed set of parsing expressions a
// Parser can be
type Kind uint8

const (
	KindChar Kind = iota
	KindString
	KindCharSet
	KindKeyword
	KindKeywordList
	KindAnyChar
	KindLetter
	KindDigit
	KindHexDigit
	KindPunctuation
	KindSpace
	KindEmpty
	KindSequence
	KindAlternative
	KindOptional
	KindZeroOrMore
	KindOneOrMore
	KindDifference
	KindToken
	KindExpectation
	KindAction
	KindNonterminal
)

var kindNames = map[Kind]string{
	KindChar:        "Char",
	KindString:      "String",
	KindCharSet:     "CharSet",
	KindKeyword:     "Keyword",
	KindKeywordList: "KeywordList",
	KindAnyChar:     "AnyChar",
	KindLetter:      "Letter",
	KindDigit:       "Digit",
	KindHexDigit:    "HexDigit",
	KindPunctuation: "Punctuation",
	KindSpace:       "Space",
	KindEmpty:       "Empty",
	KindSequence:    "Sequence",
	KindAlternative: "Alternative",
	KindOptional:    "Optional",
	KindZeroOrMore:  "ZeroOrMore",
	KindOneOrMore:   "OneOrMore",
	KindDifference:  "Difference",
	KindToken:       "Token",
	KindExpectation: "Expectation",
	KindAction:      "Action",
	KindNonterminal: "Nonterminal",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ActionFunc is the semantic callback of an action expression.  It
// runs after the action's child matched.  Returning an error aborts
// the parse, calling `m.Reject()` turns the match into an ordinary
// failure.
type ActionFunc func(ctx *Context, m *Match) error

// FailureFunc runs when the child of an action expression fails
type FailureFunc func(ctx *Context)

// ArgFunc computes one inherited attribute of a nonterminal call.  It
// runs within the caller's context.
type ArgFunc func(ctx *Context) any

// PostCallFunc receives the value synthesized by a nonterminal call.
// It only runs if the call matched, and never within the right hand
// side of a Difference.
type PostCallFunc func(ctx *Context, value any)

// Parser is a node of a parsing expression tree.  The behavior of
// each node is selected by its Kind.  Children are owned by their
// parent, and recursion only happens through nonterminals, which refer
// to rules by name.
type Parser struct {
	Kind Kind

	// name of action and nonterminal instances, used to bind
	// callbacks and to store values coming from nonterminals
	name     string
	children []*Parser

	char     rune
	text     string
	set      *charSet
	keywords map[string]struct{}

	// nonterminal bindings, resolved by Grammar.Link
	rule     *Rule
	nargs    int
	args     []ArgFunc
	postCall PostCallFunc

	action  ActionFunc
	failure FailureFunc
}

func Char(c rune) *Parser { return &Parser{Kind: KindChar, char: c} }

func Str(s string) *Parser { return &Parser{Kind: KindString, text: s} }

// CharSet matches one rune within `spec`.  The spec is a list of
// runes and `a-z` ranges.  A leading `^` inverts the set and a
// backslash escapes the next rune.
func CharSet(spec string) *Parser {
	return &Parser{Kind: KindCharSet, text: spec, set: parseCharSet(spec)}
}

// Keyword matches `kw` when it isn't immediately followed by a rune
// that could continue an identifier
func Keyword(kw string) *Parser { return &Parser{Kind: KindKeyword, text: kw} }

// KeywordList matches an identifier shaped lexeme that is a member
// of `words`.  The slice can be shared with other parts of a program
// that need the same set of reserved words.
func KeywordList(name string, words []string) *Parser {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return &Parser{Kind: KindKeywordList, name: name, keywords: set}
}

func AnyChar() *Parser     { return &Parser{Kind: KindAnyChar} }
func Letter() *Parser      { return &Parser{Kind: KindLetter} }
func Digit() *Parser       { return &Parser{Kind: KindDigit} }
func HexDigit() *Parser    { return &Parser{Kind: KindHexDigit} }
func Punctuation() *Parser { return &Parser{Kind: KindPunctuation} }
func Space() *Parser       { return &Parser{Kind: KindSpace} }
func Empty() *Parser       { return &Parser{Kind: KindEmpty} }

func Seq(ps ...*Parser) *Parser { return &Parser{Kind: KindSequence, children: ps} }
func Alt(ps ...*Parser) *Parser { return &Parser{Kind: KindAlternative, children: ps} }
func Opt(p *Parser) *Parser     { return &Parser{Kind: KindOptional, children: []*Parser{p}} }

// Many matches `p` zero or more times
func Many(p *Parser) *Parser { return &Parser{Kind: KindZeroOrMore, children: []*Parser{p}} }

// Many1 matches `p` one or more times
func Many1(p *Parser) *Parser { return &Parser{Kind: KindOneOrMore, children: []*Parser{p}} }

// Diff matches `left` unless `right` matches at least as much input
// at the same position
func Diff(left, right *Parser) *Parser {
	return &Parser{Kind: KindDifference, children: []*Parser{left, right}}
}

// List matches one or more `item`s separated by `sep`
func List(item, sep *Parser) *Parser {
	return Seq(item, Many(Seq(sep, item)))
}

// Token makes `p` a single lexeme: the skip rule isn't applied
// within it
func Token(p *Parser) *Parser { return &Parser{Kind: KindToken, children: []*Parser{p}} }

// Expect commits to `p`: if it fails, the whole parse fails with an
// ExpectationFailure
func Expect(p *Parser) *Parser { return &Parser{Kind: KindExpectation, children: []*Parser{p}} }

// Action attaches a semantic callback named `name` to `p`.  The
// callback is bound with `SetAction`, usually when the grammar is
// linked.
func Action(name string, p *Parser) *Parser {
	return &Parser{Kind: KindAction, name: name, children: []*Parser{p}}
}

// Call invokes the rule `ruleName`; the instance is named after it
func Call(ruleName string) *Parser { return CallAs(ruleName, ruleName, 0) }

// CallAs invokes the rule `ruleName` passing `nargs` inherited
// attributes.  `name` is the key under which the value synthesized
// by the rule is stored in the caller's context.
func CallAs(name, ruleName string, nargs int) *Parser {
	return &Parser{Kind: KindNonterminal, name: name, text: ruleName, nargs: nargs}
}

// SetAction binds the callback of an action expression
func (p *Parser) SetAction(fn ActionFunc) *Parser {
	p.mustBe(KindAction)
	p.action = fn
	return p
}

// SetFailure binds the failure callback of an action expression
func (p *Parser) SetFailure(fn FailureFunc) *Parser {
	p.mustBe(KindAction)
	p.failure = fn
	return p
}

// SetArgs binds the functions computing the inherited attributes of
// a nonterminal call, in declaration order
func (p *Parser) SetArgs(fns ...ArgFunc) *Parser {
	p.mustBe(KindNonterminal)
	p.args = fns
	return p
}

// SetPostCall binds the callback that receives the value synthesized
// by a nonterminal call
func (p *Parser) SetPostCall(fn PostCallFunc) *Parser {
	p.mustBe(KindNonterminal)
	p.postCall = fn
	return p
}

func (p *Parser) mustBe(k Kind) {
	if p.Kind != k {
		panic(fmt.Sprintf("can't bind a %s callback to a %s expression", k, p.Kind))
	}
}

// Name returns the instance name of actions and nonterminals
func (p *Parser) Name() string { return p.name }

// Info describes what the expression expects to find in the input
func (p *Parser) Info() string {
	switch p.Kind {
	case KindChar:
		return strconv.QuoteRune(p.char)
	case KindString, KindKeyword:
		return strconv.Quote(p.text)
	case KindCharSet:
		return "[" + p.text + "]"
	case KindKeywordList:
		return p.name
	case KindAnyChar:
		return "anychar"
	case KindLetter:
		return "letter"
	case KindDigit:
		return "digit"
	case KindHexDigit:
		return "hexdigit"
	case KindPunctuation:
		return "punctuation"
	case KindSpace:
		return "space"
	case KindEmpty:
		return "empty"
	case KindNonterminal:
		return p.text
	case KindAlternative:
		infos := make([]string, len(p.children))
		for i, c := range p.children {
			infos[i] = c.Info()
		}
		return strings.Join(infos, " | ")
	case KindSequence:
		if len(p.children) == 0 {
			return "empty"
		}
		return p.children[0].Info()
	default:
		return p.children[0].Info()
	}
}

// walk calls fn on p and all of its descendants, depth first
func (p *Parser) walk(fn func(*Parser) error) error {
	if err := fn(p); err != nil {
		return err
	}
	for _, c := range p.children {
		if err := c.walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// match runs the expression at the scanner's position.  A soft
// failure is reported as `false, nil` and leaves the scanner where it
// was.  Errors are hard failures that must not be backtracked.
func (p *Parser) match(s *Scanner, ctx *Context) (bool, error) {
	switch p.Kind {
	case KindChar, KindString, KindCharSet, KindKeyword, KindKeywordList,
		KindAnyChar, KindLetter, KindDigit, KindHexDigit, KindPunctuation, KindSpace:
		return p.matchTerminal(s)

	case KindEmpty:
		return true, nil

	case KindSequence:
		start := s.pos
		for _, c := range p.children {
			ok, err := c.match(s, ctx)
			if err != nil {
				return false, err
			}
			if !ok {
				s.pos = start
				return false, nil
			}
		}
		return true, nil

	case KindAlternative:
		start := s.pos
		for _, c := range p.children {
			ok, err := c.match(s, ctx)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
			s.pos = start
		}
		return false, nil

	case KindOptional:
		start := s.pos
		ok, err := p.children[0].match(s, ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			s.pos = start
		}
		return true, nil

	case KindZeroOrMore:
		return true, p.repeat(s, ctx)

	case KindOneOrMore:
		ok, err := p.children[0].match(s, ctx)
		if err != nil || !ok {
			return false, err
		}
		return true, p.repeat(s, ctx)

	case KindDifference:
		return p.matchDifference(s, ctx)

	case KindToken:
		if err := s.skip(); err != nil {
			return false, err
		}
		s.token++
		ok, err := p.children[0].match(s, ctx)
		s.token--
		return ok, err

	case KindExpectation:
		start := s.pos
		ok, err := p.children[0].match(s, ctx)
		if err != nil || ok {
			return ok, err
		}
		s.pos = start
		if s.predicate > 0 {
			return false, nil
		}
		return false, newExpectationFailure(s, s.currentRule(), p.children[0].Info(), start)

	case KindAction:
		return p.matchAction(s, ctx)

	case KindNonterminal:
		return p.matchNonterminal(s, ctx)

	default:
		panic(fmt.Sprintf("unknown parser kind %s", p.Kind))
	}
}

// repeat matches the first child until it fails or stops consuming
// input
func (p *Parser) repeat(s *Scanner, ctx *Context) error {
	for {
		start := s.pos
		ok, err := p.children[0].match(s, ctx)
		if err != nil {
			return err
		}
		if !ok {
			s.pos = start
			return nil
		}
		if s.pos == start {
			return nil
		}
	}
}

func (p *Parser) matchTerminal(s *Scanner) (bool, error) {
	if err := s.skip(); err != nil {
		return false, err
	}
	start := s.pos
	if p.matchRunes(s) {
		return true, nil
	}
	s.pos = start
	s.fail(start, p)
	return false, nil
}

func (p *Parser) matchRunes(s *Scanner) bool {
	switch p.Kind {
	case KindChar:
		return s.accept(func(r rune) bool { return r == p.char })
	case KindString:
		return s.acceptString(p.text)
	case KindCharSet:
		return s.accept(p.set.contains)
	case KindKeyword:
		return s.acceptString(p.text) && !isIdentifierCont(s.Peek())
	case KindKeywordList:
		start := s.pos
		if !s.accept(isIdentifierStart) {
			return false
		}
		for s.accept(isIdentifierCont) {
		}
		_, ok := p.keywords[string(s.input[start:s.pos])]
		return ok
	case KindAnyChar:
		return s.accept(func(rune) bool { return true })
	case KindLetter:
		return s.accept(unicode.IsLetter)
	case KindDigit:
		return s.accept(func(r rune) bool { return r >= '0' && r <= '9' })
	case KindHexDigit:
		return s.accept(isHexDigit)
	case KindPunctuation:
		return s.accept(unicode.IsPunct)
	case KindSpace:
		return s.accept(unicode.IsSpace)
	}
	return false
}

func (p *Parser) matchDifference(s *Scanner, ctx *Context) (bool, error) {
	start := s.pos
	ok, err := p.children[0].match(s, ctx)
	if err != nil || !ok {
		s.pos = start
		return false, err
	}
	leftEnd := s.pos

	s.pos = start
	s.predicate++
	rok, err := p.children[1].match(s, ctx)
	s.predicate--
	if err != nil {
		return false, err
	}
	if rok && s.pos >= leftEnd {
		s.pos = start
		return false, nil
	}
	s.pos = leftEnd
	return true, nil
}

func (p *Parser) matchAction(s *Scanner, ctx *Context) (bool, error) {
	if s.predicate > 0 {
		return p.children[0].match(s, ctx)
	}
	if err := s.skip(); err != nil {
		return false, err
	}
	start := s.pos
	ok, err := p.children[0].match(s, ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		if p.failure != nil {
			p.failure(ctx)
		}
		return false, nil
	}
	m := &Match{
		Span:     NewSpan(s.fileIndex, start, s.pos),
		FileName: s.fileName,
		text:     s.input[start:s.pos],
		pass:     true,
	}
	if err := p.action(ctx, m); err != nil {
		return false, err
	}
	if !m.pass {
		s.pos = start
		return false, nil
	}
	return true, nil
}

func (p *Parser) matchNonterminal(s *Scanner, ctx *Context) (bool, error) {
	args := make([]any, len(p.args))
	for i, fn := range p.args {
		args[i] = fn(ctx)
	}
	value, ok, err := p.rule.apply(s, args)
	if err != nil || !ok {
		return false, err
	}
	ctx.setChild(p.name, value)
	if p.postCall != nil && s.predicate == 0 {
		p.postCall(ctx, value)
	}
	return true, nil
}

// Match is what an action callback gets to know about the input
// matched by the action's child
type Match struct {
	Span     Span
	FileName string

	text []rune
	pass bool
}

// Text returns the matched input
func (m *Match) Text() string { return string(m.text) }

// Reject makes the action fail as if its child hadn't matched
func (m *Match) Reject() { m.pass = false }

// Errorf creates an error located at the match, for actions that
// find the matched input unacceptable
func (m *Match) Errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if m.FileName == "" {
		return fmt.Errorf("%s: %s", m.Span, msg)
	}
	return fmt.Errorf("%s:%s: %s", m.FileName, m.Span, msg)
}

func isIdentifierStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentifierCont(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// ---- Character sets ----

type runeRange struct{ lo, hi rune }

type charSet struct {
	inverse bool
	ranges  []runeRange
}

func parseCharSet(spec string) *charSet {
	var (
		cs    = &charSet{}
		runes = []rune(spec)
		i     = 0
	)
	if len(runes) > 0 && runes[0] == '^' {
		cs.inverse = true
		i++
	}
	next := func() rune {
		r := runes[i]
		i++
		if r == '\\' && i < len(runes) {
			r = unescapeRune(runes[i])
			i++
		}
		return r
	}
	for i < len(runes) {
		lo := next()
		hi := lo
		if i+1 < len(runes) && runes[i] == '-' {
			i++
			hi = next()
		}
		cs.ranges = append(cs.ranges, runeRange{lo, hi})
	}
	return cs
}

func (cs *charSet) contains(r rune) bool {
	for _, rg := range cs.ranges {
		if r >= rg.lo && r <= rg.hi {
			return !cs.inverse
		}
	}
	return cs.inverse
}

func unescapeRune(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case '0':
		return 0
	default:
		return r
	}
}
