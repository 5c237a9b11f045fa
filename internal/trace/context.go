package trace

import (
	"context"
	"time"
)

type ctxKey struct{}

// FromContext returns the Tracer stored in ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches a Tracer to context.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

// SpanContext is what nested work inherits: the parent span and task label.
type SpanContext struct {
	SpanID uint64
	Task   string
}

type spanCtxKey struct{}

// CurrentSpan returns the span context stored in ctx.
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx == nil {
		return SpanContext{}
	}
	sc, _ := ctx.Value(spanCtxKey{}).(SpanContext)
	return sc
}

// WithTask labels spans started from ctx with task, e.g. a file path.
func WithTask(ctx context.Context, task string) context.Context {
	sc := CurrentSpan(ctx)
	sc.Task = task
	return context.WithValue(ctx, spanCtxKey{}, sc)
}

// Start begins a span under the span stored in ctx and returns a context
// carrying the new span as parent for nested work.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	parent := CurrentSpan(ctx)
	sp := Begin(FromContext(ctx), scope, name, parent.SpanID, parent.Task)
	if sp.ID() == 0 {
		return ctx, sp
	}
	return context.WithValue(ctx, spanCtxKey{}, SpanContext{SpanID: sp.id, Task: parent.Task}), sp
}

// Point emits an instant event under the span stored in ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	parent := CurrentSpan(ctx)
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent.SpanID,
		Task:     parent.Task,
		Name:     name,
		Detail:   detail,
	})
}
