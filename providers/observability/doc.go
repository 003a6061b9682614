// Package observability defines the interfaces and semantic conventions used
// for tracing, metrics and structured logging across mirror.
//
// [Provider] composes [Tracer], [Metrics] and [Logger] into one injectable
// dependency. It travels through a [context.Context] via
// [ContextWithObserver] and [ObserverFromContext]; the active [Span] uses
// [ContextWithSpan] and [SpanFromContext].
//
// semconv.go holds the attribute keys, span names and metric names. Use
// them instead of ad-hoc strings so log queries keep working.
package observability
