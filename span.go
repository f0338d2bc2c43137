package parsing

import (
	"fmt"
	"sort"
)

const eof = -1

//  ---- Span ----

// Span is a [Start, End) region of rune offsets within the input of
// the file identified by FileIndex.
type Span struct{ FileIndex, Start, End int }

func NewSpan(fileIndex, start, end int) Span {
	return Span{FileIndex: fileIndex, Start: start, End: end}
}

// Len is the number of runes covered by the span
func (s Span) Len() int { return s.End - s.Start }

func (s Span) String() string {
	if s.Start == s.End {
		return fmt.Sprintf("%d", s.Start)
	}
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

func (s Span) Contains(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

//  ---- Location ----

// Location is the human friendly position of a cursor: both Line and
// Column start from 1, Cursor is the rune offset.
type Location struct {
	Line   int
	Column int
	Cursor int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// ---- Position index ----

// posIndex maps rune offsets to lines and columns.  It's only built
// when an error needs to be reported.
type posIndex struct {
	input []rune

	// lineStart holds 0-based rune offsets of each line start
	lineStart []int
}

func newPosIndex(input []rune) *posIndex {
	// Always include line 1 starting at offset 0.
	lineStart := make([]int, 1, 64)
	for i, r := range input {
		if r == '\n' {
			lineStart = append(lineStart, i+1)
		}
	}
	return &posIndex{input: input, lineStart: lineStart}
}

func (pi *posIndex) LocationAt(cursor int) Location {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(pi.input) {
		cursor = len(pi.input)
	}

	// Find first lineStart > cursor, then step back one.
	lineIdx := sort.Search(len(pi.lineStart), func(i int) bool {
		return pi.lineStart[i] > cursor
	}) - 1
	if lineIdx < 0 {
		lineIdx = 0
	}
	return Location{
		Line:   lineIdx + 1,
		Column: cursor - pi.lineStart[lineIdx] + 1,
		Cursor: cursor,
	}
}

// Line returns the text of the line containing cursor, without the
// line terminator.
func (pi *posIndex) Line(cursor int) string {
	loc := pi.LocationAt(cursor)
	start := pi.lineStart[loc.Line-1]
	end := len(pi.input)
	if loc.Line < len(pi.lineStart) {
		end = pi.lineStart[loc.Line] - 1
	}
	if end > start && pi.input[end-1] == '\r' {
		end--
	}
	return string(pi.input[start:end])
}
