// Package trace provides the tracing subsystem used as the toolchain's log.
//
// The driver and CLI report what they do as trace events: a span per command,
// a span per formatted file, and point events for individual line edits.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	vic fmt --trace=- --trace-level=detail src/
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Only failures
//   - LevelPhase: Command boundaries
//   - LevelDetail: Per-file events
//   - LevelDebug: Everything including per-line edits
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeFile, "format", parentID)
//	defer span.End("")
package trace
