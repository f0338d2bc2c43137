package parsing

import (
	"sort"
	"strings"
)

// Scanner keeps the state of one parse: the input with its cursor,
// the skip rule applied between lexemes, and the bookkeeping needed
// to report errors.  A scanner is never shared between parses.
type Scanner struct {
	input     []rune
	pos       int
	fileIndex int
	fileName  string

	skipRule *Rule
	skipping bool

	// token and predicate are depth counters for Token expressions
	// and for the right hand side of Difference expressions
	token     int
	predicate int

	tracer Tracer
	data   *ParsingData
	rules  []*Rule

	// farthest failure position and what was expected there
	ffp      int
	expected []string

	idx *posIndex
}

func newScanner(input string, fileIndex int, fileName string) *Scanner {
	return &Scanner{
		input:     []rune(input),
		fileIndex: fileIndex,
		fileName:  fileName,
	}
}

// Pos returns the cursor
func (s *Scanner) Pos() int { return s.pos }

// SetPos moves the cursor to `pos`, clamped to the input
func (s *Scanner) SetPos(pos int) {
	s.pos = max(0, min(pos, len(s.input)))
}

// FileName returns the name of the file being parsed
func (s *Scanner) FileName() string { return s.fileName }

// FileIndex returns the index of the file being parsed
func (s *Scanner) FileIndex() int { return s.fileIndex }

// AtEnd tells if the whole input has been consumed
func (s *Scanner) AtEnd() bool { return s.pos >= len(s.input) }

// Peek returns the rune under the cursor, or eof if the entire input
// has been consumed
func (s *Scanner) Peek() rune {
	if s.pos >= len(s.input) {
		return eof
	}
	return s.input[s.pos]
}

// Advance moves the cursor one rune forward
func (s *Scanner) Advance() {
	if s.pos < len(s.input) {
		s.pos++
	}
}

// Span returns the region between start and the cursor
func (s *Scanner) Span(start int) Span {
	return NewSpan(s.fileIndex, start, s.pos)
}

func (s *Scanner) accept(fn func(rune) bool) bool {
	if s.AtEnd() || !fn(s.input[s.pos]) {
		return false
	}
	s.pos++
	return true
}

func (s *Scanner) acceptString(str string) bool {
	for _, r := range str {
		if s.AtEnd() || s.input[s.pos] != r {
			return false
		}
		s.pos++
	}
	return true
}

// skip applies the skip rule for as long as it consumes input.  It
// does nothing within tokens or while the skip rule itself runs.
func (s *Scanner) skip() error {
	if s.skipRule == nil || s.skipping || s.token > 0 {
		return nil
	}
	s.skipping = true
	defer func() { s.skipping = false }()
	for {
		start := s.pos
		_, ok, err := s.skipRule.apply(s, nil)
		if err != nil {
			return err
		}
		if !ok || s.pos == start {
			s.pos = start
			return nil
		}
	}
}

// fail records that `p` couldn't match at `pos`, so the farthest
// failure can be reported if the parse doesn't succeed
func (s *Scanner) fail(pos int, p *Parser) {
	if s.predicate > 0 || s.skipping || pos < s.ffp {
		return
	}
	if pos > s.ffp {
		s.ffp = pos
		s.expected = s.expected[:0]
	}
	info := p.Info()
	for _, e := range s.expected {
		if e == info {
			return
		}
	}
	s.expected = append(s.expected, info)
}

func (s *Scanner) expectedAtFarthest(fallback string) string {
	if len(s.expected) == 0 {
		return fallback
	}
	items := append([]string(nil), s.expected...)
	sort.Strings(items)
	return strings.Join(items, ", ")
}

func (s *Scanner) pushRule(r *Rule) { s.rules = append(s.rules, r) }
func (s *Scanner) popRule()         { s.rules = s.rules[:len(s.rules)-1] }

// currentRule returns the full name of the innermost active rule
func (s *Scanner) currentRule() string {
	if len(s.rules) == 0 {
		return ""
	}
	return s.rules[len(s.rules)-1].FullName()
}

func (s *Scanner) index() *posIndex {
	if s.idx == nil {
		s.idx = newPosIndex(s.input)
	}
	return s.idx
}
