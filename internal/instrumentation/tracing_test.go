package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestStartGoogleAPISpan(t *testing.T) {
	recorder := installRecorder(t)

	ctx, span := StartGoogleAPISpan(context.Background(), ServiceGmail, OperationMessagesGet,
		attribute.String(SpanAttrMessageID, "m1"))
	if GetTraceID(ctx) == "" {
		t.Error("expected a trace id in the span context")
	}
	EndSpan(span, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	got := spans[0]
	if got.Name() != "google.gmail.messages.get" {
		t.Errorf("unexpected span name %q", got.Name())
	}
	if got.SpanKind() != trace.SpanKindClient {
		t.Errorf("expected client span, got %s", got.SpanKind())
	}
	if got.Status().Code != codes.Ok {
		t.Errorf("expected OK status, got %v", got.Status().Code)
	}

	attrs := map[attribute.Key]string{}
	for _, kv := range got.Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	if attrs[SpanAttrService] != ServiceGmail {
		t.Errorf("unexpected service attribute %q", attrs[SpanAttrService])
	}
	if attrs[SpanAttrOperation] != OperationMessagesGet {
		t.Errorf("unexpected operation attribute %q", attrs[SpanAttrOperation])
	}
	if attrs[SpanAttrMessageID] != "m1" {
		t.Errorf("unexpected message id attribute %q", attrs[SpanAttrMessageID])
	}
}

func TestEndSpan_Error(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartSpan(context.Background(), "export.run")
	EndSpan(span, errors.New("label not found"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status().Code)
	}
	if spans[0].Status().Description != "label not found" {
		t.Errorf("unexpected status description %q", spans[0].Status().Description)
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
}

func TestGetTraceID_NoSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("expected empty trace id, got %q", id)
	}
}
