package registry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/opticshield/opticshield/internal/person"
	"github.com/opticshield/opticshield/internal/tracing"
)

// tracedRegistry wraps every call in a client span.
type tracedRegistry struct {
	next   Registry
	tracer trace.Tracer
}

// Traced decorates next with spans from tracer. With a no-op tracer the
// overhead is a few interface calls.
func Traced(next Registry, tracer trace.Tracer) Registry {
	return &tracedRegistry{next: next, tracer: tracer}
}

// SetBaseURL forwards to the wrapped client when it supports base URL
// changes.
func (t *tracedRegistry) SetBaseURL(baseURL string) {
	if s, ok := t.next.(interface{ SetBaseURL(string) }); ok {
		s.SetBaseURL(baseURL)
	}
}

func (t *tracedRegistry) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func finish(span trace.Span, err error) {
	if err != nil {
		if status := StatusCode(err); status != 0 {
			span.SetAttributes(attribute.Int(tracing.AttrHTTPStatus, status))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func (t *tracedRegistry) Create(ctx context.Context, req CreateRequest) (person.Person, error) {
	ctx, span := t.start(ctx, tracing.SpanRegistryCreate,
		attribute.String(tracing.AttrClassification, string(req.Classification)),
		attribute.Bool(tracing.AttrHasImage, req.Image != ""),
	)
	p, err := t.next.Create(ctx, req)
	if err == nil {
		span.SetAttributes(attribute.String(tracing.AttrPersonID, p.ID))
	}
	finish(span, err)
	return p, err
}

func (t *tracedRegistry) List(ctx context.Context) ([]person.Person, error) {
	ctx, span := t.start(ctx, tracing.SpanRegistryList)
	persons, err := t.next.List(ctx)
	if err == nil {
		span.SetAttributes(attribute.Int(tracing.AttrResultCount, len(persons)))
	}
	finish(span, err)
	return persons, err
}

func (t *tracedRegistry) UpdateClassification(ctx context.Context, id string, c person.Classification) error {
	ctx, span := t.start(ctx, tracing.SpanRegistryUpdate,
		attribute.String(tracing.AttrPersonID, id),
		attribute.String(tracing.AttrClassification, string(c)),
	)
	err := t.next.UpdateClassification(ctx, id, c)
	finish(span, err)
	return err
}

func (t *tracedRegistry) Remove(ctx context.Context, id string) error {
	ctx, span := t.start(ctx, tracing.SpanRegistryRemove, attribute.String(tracing.AttrPersonID, id))
	err := t.next.Remove(ctx, id)
	finish(span, err)
	return err
}
