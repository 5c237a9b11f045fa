// Package trace records span events for lint runs.
//
// # Usage
//
//	surgelint lint --trace=- --trace-level=detail src/
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelPhase: run boundaries only
//   - LevelDetail: per-file and workspace tasks
//   - LevelDebug: fix-convergence iterations as well
//
// # Context Propagation
//
// The tracer, the current span and the task label travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(trace.WithTask(ctx, "src/a.sg"), trace.ScopeTask, "lint-file")
//	defer span.End("")
package trace
