package parsing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMaxDepth is wrapped by the error returned when rule activations
// nest deeper than the `parser.max_depth` setting allows
var ErrMaxDepth = errors.New("maximum rule nesting depth exceeded")

// ExpectationFailure is the error returned when a committed part of
// a grammar can't be matched.  It can't be caught by the backtracking
// done by alternatives, and aborts the whole parse.
type ExpectationFailure struct {
	// Rule is the full name of the innermost rule active when the
	// failure happened
	Rule     string
	FileName string
	Expected string
	Span     Span
	Location Location

	source *posIndex
}

func newExpectationFailure(s *Scanner, rule, expected string, pos int) *ExpectationFailure {
	idx := s.index()
	return &ExpectationFailure{
		Rule:     rule,
		FileName: s.fileName,
		Expected: expected,
		Span:     NewSpan(s.fileIndex, pos, pos),
		Location: idx.LocationAt(pos),
		source:   idx,
	}
}

// Error returns the human readable representation of the failure
func (e *ExpectationFailure) Error() string {
	var s strings.Builder
	if e.FileName != "" {
		s.WriteString(e.FileName)
		s.WriteString(":")
	}
	fmt.Fprintf(&s, "%s: %s expected", e.Location, e.Expected)
	if e.Rule != "" {
		fmt.Fprintf(&s, " in rule `%s`", e.Rule)
	}
	return s.String()
}

// Caret returns the source line the failure points at followed by a
// line with a caret under the failing column
func (e *ExpectationFailure) Caret() string {
	if e.source == nil {
		return ""
	}
	line := e.source.Line(e.Span.Start)
	col := e.Location.Column - 1
	if col > len([]rune(line)) {
		col = len([]rune(line))
	}
	return line + "\n" + strings.Repeat(" ", col) + "^"
}

// GrammarError reports a grammar that is not correctly built or
// linked, or a rule used against its declared attributes
type GrammarError struct {
	Grammar string
	Rule    string
	Message string
}

func (e *GrammarError) Error() string {
	switch {
	case e.Rule != "":
		return fmt.Sprintf("grammar `%s`, rule `%s`: %s", e.Grammar, e.Rule, e.Message)
	case e.Grammar != "":
		return fmt.Sprintf("grammar `%s`: %s", e.Grammar, e.Message)
	default:
		return e.Message
	}
}

func grammarErrorf(g *Grammar, r *Rule, format string, args ...any) error {
	e := &GrammarError{Message: fmt.Sprintf(format, args...)}
	if g != nil {
		e.Grammar = g.FullName()
	}
	if r != nil {
		e.Rule = r.name
	}
	return e
}

// IsExpectationFailure tells if err carries a failure raised by a
// committed expression
func IsExpectationFailure(err error) bool {
	var e *ExpectationFailure
	return errors.As(err, &e)
}
