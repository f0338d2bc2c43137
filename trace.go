package parsing

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
)

// Tracer observes rule activations.  `depth` is the number of
// activations of the same parse that enclose this one.  A domain's
// tracer is shared by all the parses of its grammars, so it must be
// safe for concurrent use.  Tracing never changes the outcome of a
// parse.
type Tracer interface {
	Enter(r *Rule, at Span, depth int)
	Leave(r *Rule, span Span, matched bool, depth int)
}

// LogTracer writes rule activations to the `cminor.parsing.trace`
// logger at debug level, indented by nesting depth
type LogTracer struct {
	log commonlog.Logger
}

func NewLogTracer() *LogTracer {
	return &LogTracer{log: commonlog.GetLogger("cminor.parsing.trace")}
}

func (t *LogTracer) Enter(r *Rule, at Span, depth int) {
	if t.log.AllowLevel(commonlog.Debug) {
		t.log.Debugf("%s> %s @ %s", strings.Repeat("  ", depth), r.FullName(), at)
	}
}

func (t *LogTracer) Leave(r *Rule, span Span, matched bool, depth int) {
	if t.log.AllowLevel(commonlog.Debug) {
		mark := "fail"
		if matched {
			mark = "match"
		}
		t.log.Debugf("%s< %s @ %s %s", strings.Repeat("  ", depth), r.FullName(), span, mark)
	}
}

// TraceEvent is one rule entry or exit seen by a RecordingTracer
type TraceEvent struct {
	Rule    string
	Enter   bool
	Matched bool
	Span    Span
}

func (e TraceEvent) String() string {
	switch {
	case e.Enter:
		return fmt.Sprintf("> %s @ %s", e.Rule, e.Span)
	case e.Matched:
		return fmt.Sprintf("< %s @ %s", e.Rule, e.Span)
	default:
		return fmt.Sprintf("< %s @ %s (fail)", e.Rule, e.Span)
	}
}

// RecordingTracer keeps every event in memory.  Events of concurrent
// parses interleave; read Events once the parses are done.
type RecordingTracer struct {
	mu     sync.Mutex
	Events []TraceEvent
}

func (t *RecordingTracer) Enter(r *Rule, at Span, _ int) {
	t.record(TraceEvent{Rule: r.FullName(), Enter: true, Span: at})
}

func (t *RecordingTracer) Leave(r *Rule, span Span, matched bool, _ int) {
	t.record(TraceEvent{Rule: r.FullName(), Matched: matched, Span: span})
}

func (t *RecordingTracer) record(e TraceEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Events = append(t.Events, e)
}
