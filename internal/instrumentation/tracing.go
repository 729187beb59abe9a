package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of every span this module starts.
const TracerName = "github.com/teemow/ga4mcp"

// Span attribute keys.
const (
	SpanAttrTool        = "mcp.tool"
	SpanAttrService     = "google.service"
	SpanAttrOperation   = "google.operation"
	SpanAttrUserHash    = "ga4.user_hash"
	SpanAttrProperty    = "ga4.property"
	SpanAttrGranularity = "ga4.granularity"
	SpanAttrDimensions  = "ga4.dimension_count"
	SpanAttrMetrics     = "ga4.metric_count"
	SpanAttrRowCount    = "ga4.row_count"
	SpanAttrErrorKind   = "error.kind"
)

// ReportAttributes describes a report query on a span. userHash must already
// be anonymized; raw user ids never go into traces.
func ReportAttributes(userHash, property, granularity string, dimensions, metrics int) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 5)
	if userHash != "" {
		attrs = append(attrs, attribute.String(SpanAttrUserHash, userHash))
	}
	if property != "" {
		attrs = append(attrs, attribute.String(SpanAttrProperty, property))
	}
	return append(attrs,
		attribute.String(SpanAttrGranularity, GranularityLabel(granularity)),
		attribute.Int(SpanAttrDimensions, dimensions),
		attribute.Int(SpanAttrMetrics, metrics),
	)
}

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(TracerName)
}

// StartSpan starts an internal span. The caller must End it.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartToolSpan starts the server span "tool.<name>" for an MCP tool call.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{attribute.String(SpanAttrTool, toolName)}, attrs...)
	return tracer().Start(ctx, "tool."+toolName,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartGoogleAPISpan starts the client span "google.<service>.<operation>".
func StartGoogleAPISpan(ctx context.Context, service, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{
		attribute.String(SpanAttrService, service),
		attribute.String(SpanAttrOperation, operation),
	}, attrs...)
	return tracer().Start(ctx, "google."+service+"."+operation,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records err on the span. kind is the error kind and may be empty.
func SetSpanError(span trace.Span, err error, kind string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	if kind != "" {
		span.SetAttributes(attribute.String(SpanAttrErrorKind, kind))
	}
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// TraceID returns the trace id of the span in ctx, or "" without a valid span.
func TraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
