package emit

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func attrString(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// OTelEmitter implements Emitter by creating an OpenTelemetry span per
// event, grounded on the teacher's OTelEmitter (graph/emit/otel.go). Each
// span is started and ended immediately — events are points in time, not
// durations — carrying workflow_id/task_id and the event's Meta as
// attributes, with span status set to error when Meta["error"] is present.
type OTelEmitter struct {
	tracer trace.Tracer
}

// NewOTelEmitter builds an OTelEmitter over tracer (e.g. otel.Tracer("workgraph")).
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer}
}

func (o *OTelEmitter) Emit(event Event) {
	_, span := o.tracer.Start(context.Background(), event.Msg)
	defer span.End()
	o.annotate(span, event)
}

func (o *OTelEmitter) EmitBatch(ctx context.Context, events []Event) error {
	for _, event := range events {
		_, span := o.tracer.Start(ctx, event.Msg)
		o.annotate(span, event)
		span.End()
	}
	return nil
}

func (o *OTelEmitter) annotate(span trace.Span, event Event) {
	span.SetAttributes(
		attrString("workflow_id", event.WorkflowID),
		attrString("task_id", event.TaskID),
	)
	for k, v := range event.Meta {
		span.SetAttributes(attrString(k, fmt.Sprintf("%v", v)))
	}
	if errMsg, ok := event.Meta["error"].(string); ok {
		span.SetStatus(codes.Error, errMsg)
		span.RecordError(fmt.Errorf("%s", errMsg))
	}
}

// Flush is a no-op here: the tracer provider (configured by the caller)
// owns batching/export; OTelEmitter has no buffer of its own to drain.
func (o *OTelEmitter) Flush(context.Context) error { return nil }

var _ Emitter = (*OTelEmitter)(nil)
