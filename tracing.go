package shoot

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const traceScope = "github.com/Jack4Code/shoot"

// TraceOption configures the tracing middleware.
type TraceOption func(*tracing)

type tracing struct {
	system string
	tracer trace.Tracer
}

// WithTracerProvider sets the TracerProvider spans are created from.
// The global provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) TraceOption {
	return func(t *tracing) {
		t.tracer = tp.Tracer(traceScope)
	}
}

// WithSystem tags every span with the name of the rendering system, e.g. "html".
func WithSystem(system string) TraceOption {
	return func(t *tracing) {
		t.system = system
	}
}

// Tracing returns middleware that wraps the rest of the chain in a span named
// "render <view name>". Errors are recorded on the span.
func Tracing(opts ...TraceOption) Middleware {
	t := &tracing{
		system: "template",
		tracer: otel.GetTracerProvider().Tracer(traceScope),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *tracing) Process(ctx context.Context, view View, r *http.Request, next Next) (View, error) {
	ctx, span := t.tracer.Start(ctx, "render "+view.Name(), trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	attrs := []attribute.KeyValue{
		attribute.String("shoot.system", t.system),
		attribute.String("shoot.view.name", view.Name()),
		attribute.String("http.request.method", r.Method),
	}
	if r.URL != nil {
		attrs = append(attrs, attribute.String("url.path", r.URL.Path))
	}
	if model := view.PresentationModel(); model != nil {
		attrs = append(attrs,
			attribute.String("shoot.presentation_model.name", model.Name()),
			attribute.Int("shoot.presentation_model.variables", len(model.Variables())),
		)
	}
	span.SetAttributes(attrs...)

	result, err := next(ctx, view)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	span.SetStatus(codes.Ok, "")
	return result, nil
}
