package trace

import (
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns the next global event sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// Span is an open interval of work. A span that was filtered out by level
// has ID 0 and ignores every call.
type Span struct {
	tracer   Tracer
	id       uint64
	parentID uint64
	task     string
	scope    Scope
	name     string
	started  time.Time
	attrs    map[string]string
}

// Begin emits a begin event and returns the span. parent is 0 for roots;
// task labels the file or job the span belongs to.
func Begin(t Tracer, scope Scope, name string, parent uint64, task string) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{}
	}
	sp := &Span{
		tracer:   t,
		id:       spanCounter.Add(1),
		parentID: parent,
		task:     task,
		scope:    scope,
		name:     name,
		started:  time.Now(),
	}
	t.Emit(&Event{
		Time:     sp.started,
		Seq:      NextSeq(),
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   sp.id,
		ParentID: parent,
		Task:     task,
		Name:     name,
	})
	return sp
}

// Set attaches an attribute reported with the end event.
func (s *Span) Set(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	if s.attrs == nil {
		s.attrs = make(map[string]string, 2)
	}
	s.attrs[key] = value
	return s
}

// End emits the end event with its elapsed time.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 {
		return 0
	}
	now := time.Now()
	elapsed := now.Sub(s.started)
	s.tracer.Emit(&Event{
		Time:     now,
		Seq:      NextSeq(),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parentID,
		Task:     s.task,
		Name:     s.name,
		Detail:   detail,
		Elapsed:  elapsed,
		Extra:    s.attrs,
	})
	return elapsed
}

// ID returns the span ID, 0 for a suppressed span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}
