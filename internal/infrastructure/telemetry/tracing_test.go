package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/fulluproar/backoffice/internal/infrastructure/telemetry"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	return sr
}

func attrMap(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

type format string

func (f format) String() string { return "fmt:" + string(f) }

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, span := telemetry.StartServiceSpan(context.Background(), "designer", "export_raster",
		telemetry.WithAttribute(telemetry.SpanAttrSessionID, "s-1"),
		telemetry.WithAttribute(telemetry.SpanAttrMultiplier, 4.0),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "designer.export_raster", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())

	attrs := attrMap(spans[0])
	assert.Equal(t, "s-1", attrs[telemetry.SpanAttrSessionID].AsString())
	assert.Equal(t, 4.0, attrs[telemetry.SpanAttrMultiplier].AsFloat64())
}

func TestSetAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "op")
	telemetry.SetAttributes(span,
		"count", 3,
		"ids", []string{"a", "b"},
		"flag", true,
		"kind", format("png"),
		42, "ignored non-string key",
		"dangling",
	)
	span.End()

	attrs := attrMap(sr.Ended()[0])
	assert.Equal(t, int64(3), attrs["count"].AsInt64())
	assert.Equal(t, []string{"a", "b"}, attrs["ids"].AsStringSlice())
	assert.True(t, attrs["flag"].AsBool())
	assert.Equal(t, "fmt:png", attrs["kind"].AsString())
	_, hasDangling := attrs["dangling"]
	assert.False(t, hasDangling)
}

func TestRecordErrorAndOK(t *testing.T) {
	sr := setupTestTracer(t)

	_, failed := telemetry.StartSpan(context.Background(), "failed")
	telemetry.RecordError(failed, errors.New("decode failed"))
	failed.End()

	_, ok := telemetry.StartSpan(context.Background(), "ok")
	telemetry.RecordError(ok, nil)
	telemetry.SetOK(ok)
	telemetry.AddEvent(ok, "font_loaded", "family", "Lobster")
	ok.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "decode failed", spans[0].Status().Description)
	assert.Equal(t, codes.Ok, spans[1].Status().Code)
	require.Len(t, spans[1].Events(), 1)
	assert.Equal(t, "font_loaded", spans[1].Events()[0].Name)
}

func TestNilSpanHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttributes(nil, "a", 1)
		telemetry.RecordError(nil, errors.New("x"))
		telemetry.SetOK(nil)
		telemetry.AddEvent(nil, "e")
	})
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
}
