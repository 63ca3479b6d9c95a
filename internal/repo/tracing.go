package repo

import (
	"context"

	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// startSpan opens a span for one store operation. Without a started tracer
// this is a no-op span.
func startSpan(ctx context.Context, op string, opts ...ddtrace.StartSpanOption) (ddtrace.Span, context.Context) {
	opts = append(opts, tracer.SpanType("mongodb"), tracer.ServiceName("innovatex-mongo"))
	return tracer.StartSpanFromContext(ctx, op, opts...)
}

func finish(sp ddtrace.Span, err error) {
	sp.Finish(tracer.WithError(err))
}
